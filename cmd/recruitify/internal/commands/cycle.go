package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/wolfeidau/recruitify/internal/models"
	"github.com/wolfeidau/recruitify/internal/selection"
	"github.com/wolfeidau/recruitify/internal/workspace"
)

// CycleCmd manages the recruitment cycles of the current organization.
//
// The current cycle lives only as long as a session; use the shell to work in one.
type CycleCmd struct {
	List   CycleListCmd   `cmd:"" help:"List recruitment cycles"`
	Create CycleCreateCmd `cmd:"" help:"Create a recruitment cycle"`
	Rename CycleRenameCmd `cmd:"" help:"Rename a recruitment cycle"`
}

// CycleListCmd lists the cycles of the current organization.
type CycleListCmd struct{}

func (c *CycleListCmd) Run(ctx context.Context, globals *Globals) error {
	sess, err := globals.load(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	if sess.workspace.Selection().IsEmpty() {
		return noOrganization()
	}

	printCycles(globals.stdout(), sess.workspace.Cycles(), sess.workspace.Selection())
	return nil
}

// CycleCreateCmd creates a cycle in the current organization.
type CycleCreateCmd struct {
	Name string `arg:"" help:"Recruitment cycle name"`
}

func (c *CycleCreateCmd) Run(ctx context.Context, globals *Globals) error {
	sess, err := globals.load(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	if sess.workspace.Selection().IsEmpty() {
		return noOrganization()
	}

	sel, err := sess.workspace.CreateCycle(ctx, c.Name)
	if err != nil {
		return loginHint(err)
	}

	fmt.Fprintf(globals.stdout(), "Created recruitment cycle %s (%s) in %s\n",
		sel.Cycle.Name, sel.Cycle.ID, sel.Organization.Name)
	return nil
}

// CycleRenameCmd renames a cycle of the current organization.
type CycleRenameCmd struct {
	ID   string `arg:"" help:"Recruitment cycle ID"`
	Name string `arg:"" help:"New recruitment cycle name"`
}

func (c *CycleRenameCmd) Run(ctx context.Context, globals *Globals) error {
	sess, err := globals.load(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	if sess.workspace.Selection().IsEmpty() {
		return noOrganization()
	}

	if _, err := sess.workspace.SelectCycle(c.ID); err != nil {
		return err
	}

	sel, err := sess.workspace.RenameCycle(ctx, c.Name)
	if err != nil {
		return loginHint(err)
	}
	if sel.Cycle == nil {
		return fmt.Errorf("%w: %s", workspace.ErrCycleNotFound, c.ID)
	}

	fmt.Fprintf(globals.stdout(), "Renamed recruitment cycle %s to %s\n", sel.Cycle.ID, sel.Cycle.Name)
	return nil
}

func noOrganization() error {
	return fmt.Errorf("%w\n\nRun 'recruitify org list' and 'recruitify org select <id>' to choose one", selection.ErrNoOrganization)
}

func printCycles(out io.Writer, cycles []models.RecruitmentCycle, sel selection.Selection) {
	if len(cycles) == 0 {
		fmt.Fprintln(out, "No recruitment cycles found.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCREATED\tCURRENT")

	for _, cycle := range cycles {
		created := ""
		if !cycle.CreatedAt.IsZero() {
			created = cycle.CreatedAt.Local().Format("2006-01-02 15:04:05")
		}
		current := ""
		if cycle.ID == sel.CycleID() {
			current = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", cycle.ID, cycle.Name, created, current)
	}

	w.Flush()
}
