package fs

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const (
	appDirName      = "CaseKeeper"
	adminSecretFile = "admin_secret"
	actorFile       = "actor"
)

// SettingsFSStore - файловое хранилище настроек CLI: секрет администратора
// и имя сотрудника по умолчанию.
type SettingsFSStore struct{}

func configDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	p := filepath.Join(dir, appDirName)
	if err := os.MkdirAll(p, 0o700); err != nil {
		return "", err
	}
	return p, nil
}

func settingPath(name string) (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

func save(name, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return errors.New("empty " + name)
	}
	p, err := settingPath(name)
	if err != nil {
		return err
	}
	return os.WriteFile(p, []byte(value), 0o600)
}

func load(name string) (string, error) {
	p, err := settingPath(name)
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return "", err
	}
	v := strings.TrimSpace(string(b))
	if v == "" {
		return "", errors.New("empty " + name + " file")
	}
	return v, nil
}

// SaveAdminSecret сохраняет секрет администратора (права 0600).
func (SettingsFSStore) SaveAdminSecret(secret string) error { return save(adminSecretFile, secret) }

// LoadAdminSecret читает секрет администратора.
func (SettingsFSStore) LoadAdminSecret() (string, error) { return load(adminSecretFile) }

// SaveActor сохраняет имя сотрудника для выдачи/возврата.
func (SettingsFSStore) SaveActor(name string) error { return save(actorFile, name) }

// LoadActor читает сохранённое имя сотрудника.
func (SettingsFSStore) LoadActor() (string, error) { return load(actorFile) }
