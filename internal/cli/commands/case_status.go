package commands

import (
	"CaseKeeper/internal/cli/api"
	"CaseKeeper/internal/config"
	"context"
	"errors"
	"fmt"
	"net/http"
)

var errNoActor = errors.New("borrower name required: pass it as an argument, use --actor or run `actor <name>`")

// statusCmd выдаёт (borrow) или возвращает (return) дело.
type statusCmd struct {
	action string
}

func (c statusCmd) Name() string { return c.action }

func (c statusCmd) Description() string {
	if c.action == "borrow" {
		return "Take a case out of the room"
	}
	return "Put a case back into the room"
}

func (c statusCmd) Usage() string { return c.action + " <id> [name]" }

func (c statusCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return ErrUsage
	}
	explicit := ""
	if len(args) == 2 {
		explicit = args[1]
	}
	name := actorName(cfg, explicit)
	if name == "" {
		return errNoActor
	}

	payload := map[string]string{"action": c.action, "borrower_name": name}
	resp, body, err := api.DoJSON(ctx, http.MethodPatch, casesURL(cfg, args[0])+"/status", payload, nil)
	if err != nil {
		return err
	}
	if err := checkResponse(resp, body); err != nil {
		return err
	}
	updated, err := decodeCase(body)
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "Case %s is now %s (by %s)\n", updated.ID, updated.Status, name)
	return nil
}

func init() {
	RegisterCmd(statusCmd{action: "borrow"})
	RegisterCmd(statusCmd{action: "return"})
}
