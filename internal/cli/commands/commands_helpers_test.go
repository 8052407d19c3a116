package commands

import (
	"CaseKeeper/internal/config"
	"CaseKeeper/internal/handlers"
	"CaseKeeper/internal/repo"
	"CaseKeeper/internal/service"
	"net/http/httptest"
	"runtime"
	"testing"
	"time"

	"go.uber.org/zap"
)

// withTempConfig переопределяет пользовательский каталог настроек на время теста,
// чтобы секрет и имя сотрудника сохранялись в temp.
func withTempConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if runtime.GOOS == "windows" {
		t.Setenv("APPDATA", dir)
	} else {
		t.Setenv("XDG_CONFIG_HOME", dir)
	}
	return dir
}

// newCaseServer поднимает настоящий API поверх хранилища в памяти.
func newCaseServer(t *testing.T, adminPassword string) (*service.CaseService, *config.Config) {
	t.Helper()
	logger := zap.NewNop().Sugar()
	svc := service.NewCaseService(repo.NewMemoryCaseRepository(), logger, time.UTC)
	h := handlers.NewHandler(svc, logger, &config.Config{AdminPassword: adminPassword})
	ts := httptest.NewServer(h.Router)
	t.Cleanup(ts.Close)
	return svc, &config.Config{ServerURL: ts.URL}
}
