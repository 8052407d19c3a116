package commands

import (
	"CaseKeeper/internal/cli/api"
	"CaseKeeper/internal/config"
	"CaseKeeper/internal/model"
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"
)

// casesCmd выводит все дела таблицей и итоги по статусам.
type casesCmd struct{}

func (casesCmd) Name() string        { return "cases" }
func (casesCmd) Description() string { return "List all cases with totals" }
func (casesCmd) Usage() string       { return "cases" }

func (casesCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	resp, body, err := api.GetJSON(ctx, casesURL(cfg))
	if err != nil {
		return err
	}
	if err := checkResponse(resp, body); err != nil {
		return err
	}
	var cases []model.Case
	if err := json.Unmarshal(body, &cases); err != nil {
		return fmt.Errorf("decode cases: %w", err)
	}

	inRoom, borrowed := 0, 0
	w := tabwriter.NewWriter(Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFARMER\tACCOUNT\tLOCATION\tSTATUS\tBORROWED BY")
	for _, c := range cases {
		by := "-"
		if c.Status == model.StatusBorrowed {
			borrowed++
			if c.BorrowedByUserName != nil {
				by = *c.BorrowedByUserName
			}
		} else {
			inRoom++
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", c.ID, c.FarmerName, c.FarmerAccountNo, location(c), c.Status, by)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(Out, "\nTotal: %d  In room: %d  Borrowed: %d\n", len(cases), inRoom, borrowed)
	return nil
}

// caseGetCmd показывает одно дело.
type caseGetCmd struct{}

func (caseGetCmd) Name() string        { return "case-get" }
func (caseGetCmd) Description() string { return "Show one case" }
func (caseGetCmd) Usage() string       { return "case-get <id>" }

func (caseGetCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	resp, body, err := api.GetJSON(ctx, casesURL(cfg, args[0]))
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

func init() {
	RegisterCmd(casesCmd{})
	RegisterCmd(caseGetCmd{})
}
