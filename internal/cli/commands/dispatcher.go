package commands

import (
	"CaseKeeper/internal/config"
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
)

// Exit codes returned by Dispatch.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// Dispatch runs the command named by args[0] and returns the process exit code.
// "help [command]", -h and --help print usage instead.
func Dispatch(ctx context.Context, cfg *config.Config, args []string) int {
	if slices.ContainsFunc(os.Args[1:], func(a string) bool { return a == "-h" || a == "--help" }) {
		fmt.Fprint(Out, FormatGlobalUsage())
		return ExitOK
	}
	if len(args) == 0 {
		fmt.Fprint(Out, FormatGlobalUsage())
		return ExitUsage
	}

	name := strings.ToLower(args[0])
	if name == "help" {
		return help(args[1:])
	}

	c, ok := Get(name)
	if !ok {
		return unknown(name)
	}

	err := c.Run(ctx, cfg, args[1:])
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrUsage):
		fmt.Fprintf(Out, "Usage: %s\n", c.Usage())
		return ExitUsage
	}
	fmt.Fprintf(Out, "%s error: %v\n", name, err)
	return ExitError
}

func help(args []string) int {
	if len(args) == 0 {
		fmt.Fprint(Out, FormatGlobalUsage())
		return ExitOK
	}
	c, ok := Get(strings.ToLower(args[0]))
	if !ok {
		return unknown(args[0])
	}
	fmt.Fprintf(Out, "Usage: %s\n  %s\n", c.Usage(), c.Description())
	if needsAdmin(c) {
		fmt.Fprintln(Out, "  Requires the admin secret.")
	}
	return ExitOK
}

func unknown(name string) int {
	fmt.Fprintf(Out, "Unknown command: %s\n\n", name)
	fmt.Fprint(Out, FormatGlobalUsage())
	return ExitUsage
}
