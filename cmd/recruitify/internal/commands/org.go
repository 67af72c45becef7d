package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/wolfeidau/recruitify/internal/models"
	"github.com/wolfeidau/recruitify/internal/selection"
)

// OrgCmd manages organizations.
type OrgCmd struct {
	List   OrgListCmd   `cmd:"" help:"List organizations"`
	Select OrgSelectCmd `cmd:"" help:"Switch to an organization"`
	Create OrgCreateCmd `cmd:"" help:"Create an organization and switch to it"`
	Rename OrgRenameCmd `cmd:"" help:"Rename the current organization"`
}

// OrgListCmd lists the organizations the user can access.
type OrgListCmd struct{}

func (c *OrgListCmd) Run(ctx context.Context, globals *Globals) error {
	sess, err := globals.load(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	printOrganizations(globals.stdout(), sess.workspace.Organizations(), sess.workspace.Selection())
	return nil
}

// OrgSelectCmd switches the current organization.
type OrgSelectCmd struct {
	ID string `arg:"" help:"Organization ID"`
}

func (c *OrgSelectCmd) Run(ctx context.Context, globals *Globals) error {
	sess, err := globals.load(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	sel, err := sess.workspace.SelectOrganization(ctx, c.ID)
	if err != nil {
		return loginHint(err)
	}

	printSelection(globals.stdout(), sel)
	return nil
}

// OrgCreateCmd creates an organization.
type OrgCreateCmd struct {
	Name string `arg:"" help:"Organization name"`
}

func (c *OrgCreateCmd) Run(ctx context.Context, globals *Globals) error {
	sess, err := globals.load(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	sel, err := sess.workspace.CreateOrganization(ctx, c.Name)
	if err != nil {
		return loginHint(err)
	}

	fmt.Fprintf(globals.stdout(), "Created organization %s (%s)\n", sel.Organization.Name, sel.Organization.ID)
	return nil
}

// OrgRenameCmd renames the current organization.
type OrgRenameCmd struct {
	Name string `arg:"" help:"New organization name"`
}

func (c *OrgRenameCmd) Run(ctx context.Context, globals *Globals) error {
	sess, err := globals.load(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	sel, err := sess.workspace.RenameOrganization(ctx, c.Name)
	if err != nil {
		return loginHint(err)
	}

	fmt.Fprintf(globals.stdout(), "Renamed organization %s to %s\n", sel.Organization.ID, sel.Organization.Name)
	return nil
}

func printOrganizations(out io.Writer, orgs []models.Organization, sel selection.Selection) {
	if len(orgs) == 0 {
		fmt.Fprintln(out, "No organizations found.")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "To create one:")
		fmt.Fprintln(out, "  recruitify org create <name>")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCURRENT")

	for _, org := range orgs {
		current := ""
		if org.ID == sel.OrganizationID() {
			current = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", org.ID, org.Name, current)
	}

	w.Flush()
}
