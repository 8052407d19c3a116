package commands

import (
	"CaseKeeper/internal/config"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
)

// ErrUsage makes the dispatcher print the command's usage line and exit 2.
var ErrUsage = errors.New("usage")

// Command is one ckcli subcommand talking to the case archive API.
type Command interface {
	Name() string
	Description() string
	// Usage is the synopsis printed by help, e.g. "borrow <id> [name]".
	Usage() string
	// Run gets the arguments after the command name.
	Run(ctx context.Context, cfg *config.Config, args []string) error
}

// adminCommand marks commands that send the admin secret.
type adminCommand interface {
	NeedsAdmin() bool
}

func needsAdmin(c Command) bool {
	a, ok := c.(adminCommand)
	return ok && a.NeedsAdmin()
}

var registry = map[string]Command{}

// Out - куда CLI пишет результат. В тестах подменяется буфером.
var Out io.Writer = os.Stdout

// RegisterCmd вызывается из init() файлов с командами.
func RegisterCmd(cmd Command) {
	registry[cmd.Name()] = cmd
}

func Get(name string) (Command, bool) {
	c, ok := registry[name]
	return c, ok
}

// List returns the registered commands ordered by name.
func List() []Command {
	list := make([]Command, 0, len(registry))
	for _, c := range registry {
		list = append(list, c)
	}
	slices.SortFunc(list, func(a, b Command) int { return strings.Compare(a.Name(), b.Name()) })
	return list
}

// FormatGlobalUsage renders the help screen: staff commands first, then
// the ones guarded by the admin secret.
func FormatGlobalUsage() string {
	var b strings.Builder
	b.WriteString("CaseKeeper CLI - track case folders in the archive room\n\n")
	b.WriteString("Usage:\n  ckcli [--base-url <host:port>] [--https] [--actor <name>] <command> [args]\n")

	var staff, admin []Command
	for _, c := range List() {
		if needsAdmin(c) {
			admin = append(admin, c)
		} else {
			staff = append(staff, c)
		}
	}
	writeSection(&b, "Commands:", staff)
	writeSection(&b, "Admin commands (secret from ADMIN_PASSWORD or `ckcli admin <secret>`):", admin)

	b.WriteString("\nBorrow and return record the name given on the command line,\n")
	b.WriteString("else --actor / CLIENT_ACTOR, else the name saved with `ckcli actor <name>`.\n")
	return b.String()
}

func writeSection(b *strings.Builder, title string, cmds []Command) {
	if len(cmds) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s\n", title)
	for _, c := range cmds {
		fmt.Fprintf(b, "  %-52s %s\n", c.Usage(), c.Description())
	}
}
