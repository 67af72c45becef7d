package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/wolfeidau/recruitify/internal/client"
	"github.com/wolfeidau/recruitify/internal/selection"
	"github.com/wolfeidau/recruitify/internal/workspace"
)

const shellHelp = `Commands:
  orgs                 list organizations
  org <id>             switch organization
  new-org <name>       create an organization and switch to it
  rename-org <name>    rename the current organization
  cycles               list recruitment cycles of the current organization
  cycle <id>           switch recruitment cycle
  new-cycle <name>     create a recruitment cycle and switch to it
  rename-cycle <name>  rename the current recruitment cycle
  status               show the current selection
  refresh              reload organizations and cycles
  help                 show this help
  quit                 leave the shell`

var errUnknownShellCommand = errors.New("unknown command, type 'help' for a list")

// ShellCmd runs an interactive session, one command per line.
// The current recruitment cycle is kept until the shell exits.
type ShellCmd struct{}

func (c *ShellCmd) Run(ctx context.Context, globals *Globals) error {
	sess, err := globals.load(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	sh := &shell{
		ws:  sess.workspace,
		out: globals.stdout(),
	}

	unsubscribe := sess.store.Subscribe(sh.selectionChanged)
	defer unsubscribe()

	fmt.Fprintf(sh.out, "Logged in as %s. Type 'help' for commands.\n", sess.user.DisplayName())
	printSelection(sh.out, sess.workspace.Selection())

	return sh.run(ctx, globals.stdin())
}

type shellCommand struct {
	name string
	arg  string
}

func parseShellLine(line string) (shellCommand, error) {
	name, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "":
		return shellCommand{}, nil
	case "exit":
		name = "quit"
	}

	switch name {
	case "orgs", "cycles", "status", "refresh", "help", "quit":
		if arg != "" {
			return shellCommand{}, fmt.Errorf("%s takes no arguments", name)
		}
	case "org", "cycle":
		if arg == "" || strings.ContainsAny(arg, " \t") {
			return shellCommand{}, fmt.Errorf("usage: %s <id>", name)
		}
	case "new-org", "new-cycle", "rename-org", "rename-cycle":
		if arg == "" {
			return shellCommand{}, fmt.Errorf("usage: %s <name>", name)
		}
	default:
		return shellCommand{}, fmt.Errorf("%q: %w", name, errUnknownShellCommand)
	}

	return shellCommand{name: name, arg: arg}, nil
}

type shell struct {
	ws  *workspace.Workspace
	out io.Writer
}

func (s *shell) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)

	s.prompt()
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		cmd, err := parseShellLine(scanner.Text())
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
			s.prompt()
			continue
		}

		if cmd.name == "quit" {
			return nil
		}

		if err := s.exec(ctx, cmd); err != nil {
			if errors.Is(err, client.ErrFetch) {
				return loginHint(err)
			}
			fmt.Fprintf(s.out, "error: %v\n", err)
		}

		s.prompt()
	}

	return scanner.Err()
}

func (s *shell) exec(ctx context.Context, cmd shellCommand) error {
	var err error

	switch cmd.name {
	case "":
	case "help":
		fmt.Fprintln(s.out, shellHelp)
	case "status":
		printSelection(s.out, s.ws.Selection())
	case "orgs":
		printOrganizations(s.out, s.ws.Organizations(), s.ws.Selection())
	case "cycles":
		if s.ws.Selection().IsEmpty() {
			return selection.ErrNoOrganization
		}
		printCycles(s.out, s.ws.Cycles(), s.ws.Selection())
	case "org":
		_, err = s.ws.SelectOrganization(ctx, cmd.arg)
	case "cycle":
		_, err = s.ws.SelectCycle(cmd.arg)
	case "new-org":
		_, err = s.ws.CreateOrganization(ctx, cmd.arg)
	case "new-cycle":
		_, err = s.ws.CreateCycle(ctx, cmd.arg)
	case "rename-org":
		_, err = s.ws.RenameOrganization(ctx, cmd.arg)
	case "rename-cycle":
		_, err = s.ws.RenameCycle(ctx, cmd.arg)
	case "refresh":
		ctx = client.WithNoCache(ctx)
		if _, err = s.ws.RefreshOrganizations(ctx); err == nil {
			_, err = s.ws.RefreshCycles(ctx)
		}
	}

	return err
}

func (s *shell) selectionChanged(sel selection.Selection) {
	org, cycle := describeSelection(sel)
	fmt.Fprintf(s.out, "Now in organization %s, cycle %s\n", org, cycle)
}

func (s *shell) prompt() {
	sel := s.ws.Selection()

	location := "-"
	if sel.Organization != nil {
		location = sel.Organization.Name
		if sel.Cycle != nil {
			location += "/" + sel.Cycle.Name
		}
	}

	fmt.Fprintf(s.out, "recruitify [%s]> ", location)
}
