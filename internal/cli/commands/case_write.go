package commands

import (
	"CaseKeeper/internal/cli/api"
	"CaseKeeper/internal/config"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

var editableFields = map[string]bool{
	"farmer_name":       false,
	"farmer_account_no": false,
	"cabinet_no":        true,
	"shelf_no":          true,
	"sequence_no":       true,
}

// caseAddCmd регистрирует новое дело.
type caseAddCmd struct{}

func (caseAddCmd) Name() string        { return "case-add" }
func (caseAddCmd) Description() string { return "Register a new case" }
func (caseAddCmd) Usage() string {
	return "case-add <name> <account> <cabinet> <shelf> <seq>"
}

func (caseAddCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 5 {
		return ErrUsage
	}
	payload := map[string]any{
		"farmer_name":       args[0],
		"farmer_account_no": args[1],
	}
	for i, key := range []string{"cabinet_no", "shelf_no", "sequence_no"} {
		n, err := strconv.Atoi(args[2+i])
		if err != nil {
			return fmt.Errorf("%s must be an integer, got %q", key, args[2+i])
		}
		payload[key] = n
	}

	resp, body, err := api.DoJSON(ctx, http.MethodPost, casesURL(cfg), payload, nil)
	if err != nil {
		return err
	}
	if err := checkResponse(resp, body); err != nil {
		return err
	}
	c, err := decodeCase(body)
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "Created case %s at %s\n", c.ID, location(c))
	return nil
}

// caseEditCmd правит описательные поля дела (нужен секрет администратора).
type caseEditCmd struct{}

func (caseEditCmd) Name() string        { return "case-edit" }
func (caseEditCmd) Description() string { return "Edit descriptive case fields" }
func (caseEditCmd) Usage() string       { return "case-edit <id> <field>=<value>..." }
func (caseEditCmd) NeedsAdmin() bool    { return true }

func (caseEditCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 2 {
		return ErrUsage
	}
	payload, err := parseAssignments(args[1:])
	if err != nil {
		return err
	}
	headers := map[string]string{
		adminHeader: adminSecret(cfg),
		actorHeader: actorName(cfg, ""),
	}
	resp, body, err := api.DoJSON(ctx, http.MethodPut, casesURL(cfg, args[0]), payload, headers)
	if err != nil {
		return err
	}
	if err := checkResponse(resp, body); err != nil {
		return err
	}
	c, err := decodeCase(body)
	if err != nil {
		return err
	}
	printCase(c)
	return nil
}

// parseAssignments разбирает пары field=value; числовые поля должны быть целыми.
func parseAssignments(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("expected field=value, got %q", p)
		}
		numeric, known := editableFields[key]
		if !known {
			return nil, fmt.Errorf("unknown field %q", key)
		}
		if !numeric {
			out[key] = value
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("%s must be an integer, got %q", key, value)
		}
		out[key] = n
	}
	return out, nil
}

// caseDeleteCmd удаляет дело навсегда (нужен секрет администратора).
type caseDeleteCmd struct{}

func (caseDeleteCmd) Name() string        { return "case-delete" }
func (caseDeleteCmd) Description() string { return "Delete a case permanently" }
func (caseDeleteCmd) Usage() string       { return "case-delete <id>" }
func (caseDeleteCmd) NeedsAdmin() bool    { return true }

func (caseDeleteCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	headers := map[string]string{adminHeader: adminSecret(cfg)}
	resp, body, err := api.DoJSON(ctx, http.MethodDelete, casesURL(cfg, args[0]), nil, headers)
	if err != nil {
		return err
	}
	if err := checkResponse(resp, body); err != nil {
		return err
	}
	fmt.Fprintln(Out, api.ErrorMessage(body))
	return nil
}

func init() {
	RegisterCmd(caseAddCmd{})
	RegisterCmd(caseEditCmd{})
	RegisterCmd(caseDeleteCmd{})
}
