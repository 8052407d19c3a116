package commands

import (
	"CaseKeeper/internal/config"
	"context"
	"fmt"
)

// adminCmd сохраняет секрет администратора для case-edit и case-delete.
type adminCmd struct{}

func (adminCmd) Name() string        { return "admin" }
func (adminCmd) Description() string { return "Store the admin secret locally" }
func (adminCmd) Usage() string       { return "admin <secret>" }

func (adminCmd) Run(_ context.Context, _ *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	if err := settings.SaveAdminSecret(args[0]); err != nil {
		return err
	}
	fmt.Fprintln(Out, "Admin secret saved")
	return nil
}

// actorCmd запоминает имя сотрудника по умолчанию.
type actorCmd struct{}

func (actorCmd) Name() string        { return "actor" }
func (actorCmd) Description() string { return "Store the default borrower name" }
func (actorCmd) Usage() string       { return "actor <name>" }

func (actorCmd) Run(_ context.Context, _ *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	if err := settings.SaveActor(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(Out, "Default actor set to %s\n", args[0])
	return nil
}

func init() {
	RegisterCmd(adminCmd{})
	RegisterCmd(actorCmd{})
}
