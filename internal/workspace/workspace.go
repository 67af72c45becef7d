// Package workspace coordinates the selection store with the organizations and
// cycles providers: fetch, then reconcile, one user action at a time.
//
// Fetch failures are returned to the caller unchanged. Deciding what to do about
// them, such as sending the user back to login, is up to the caller.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/wolfeidau/recruitify/internal/models"
	"github.com/wolfeidau/recruitify/internal/selection"
	"github.com/wolfeidau/recruitify/internal/telemetry"
)

var (
	// ErrOrganizationNotFound is returned when an organization id is not in the loaded list.
	ErrOrganizationNotFound = errors.New("organization not found")

	// ErrCycleNotFound is returned when a cycle id is not in the loaded list.
	ErrCycleNotFound = errors.New("recruitment cycle not found")

	// ErrNoCycle is returned when an operation needs a current cycle and there is none.
	ErrNoCycle = errors.New("no recruitment cycle selected")

	// ErrEmptyName is returned when creating or renaming with a blank name.
	ErrEmptyName = errors.New("name must not be empty")
)

// OrganizationsProvider supplies the organizations a user can access.
type OrganizationsProvider interface {
	ListOrganizations(ctx context.Context, user models.User) ([]models.Organization, error)
	CreateOrganization(ctx context.Context, user models.User, name string) (*models.Organization, error)
	UpdateOrganization(ctx context.Context, org models.Organization) (*models.Organization, error)
}

// CyclesProvider supplies the recruitment cycles of an organization.
type CyclesProvider interface {
	ListCycles(ctx context.Context, organizationID string) ([]models.RecruitmentCycle, error)
	CreateCycle(ctx context.Context, organizationID, name string) (*models.RecruitmentCycle, error)
	UpdateCycle(ctx context.Context, cycle models.RecruitmentCycle) (*models.RecruitmentCycle, error)
}

// Workspace is one user's working session.
type Workspace struct {
	user   models.User
	store  *selection.Store
	orgs   OrganizationsProvider
	cycles CyclesProvider

	unsubscribe func()
}

// New creates a workspace for user. Call Load before anything else.
func New(user models.User, store *selection.Store, orgs OrganizationsProvider, cycles CyclesProvider) *Workspace {
	w := &Workspace{
		user:   user,
		store:  store,
		orgs:   orgs,
		cycles: cycles,
	}

	w.unsubscribe = store.Subscribe(func(sel selection.Selection) {
		kind := "cleared"
		switch {
		case sel.Cycle != nil:
			kind = "cycle"
		case sel.Organization != nil:
			kind = "organization"
		}
		telemetry.GetMetrics().SelectionChangesTotal.Add(context.Background(), 1,
			metric.WithAttributes(attribute.String("kind", kind)))
	})

	return w
}

// User returns the workspace's user.
func (w *Workspace) User() models.User {
	return w.user
}

// Selection returns the current selection.
func (w *Workspace) Selection() selection.Selection {
	return w.store.Current()
}

// Organizations returns the loaded organizations.
func (w *Workspace) Organizations() []models.Organization {
	return w.store.Organizations()
}

// Cycles returns the loaded cycles of the current organization.
func (w *Workspace) Cycles() []models.RecruitmentCycle {
	return w.store.Cycles()
}

// Load restores the user's last organization, validates it against the organizations
// provider and loads its cycles.
//
// When the organizations fetch fails the tentative restored selection is returned
// together with the error.
func (w *Workspace) Load(ctx context.Context) (selection.Selection, error) {
	sel := w.store.Initialize(w.user.ID)

	log.Debug().
		Str("userID", w.user.ID).
		Str("restoredOrganizationID", sel.OrganizationID()).
		Msg("workspace initialized")

	sel, err := w.RefreshOrganizations(ctx)
	if err != nil {
		return sel, err
	}

	return w.RefreshCycles(ctx)
}

// RefreshOrganizations fetches the organizations and reconciles the selection.
// A response that arrives after a newer fetch has been applied is discarded.
func (w *Workspace) RefreshOrganizations(ctx context.Context) (selection.Selection, error) {
	seq := w.store.Begin()

	orgs, err := w.orgs.ListOrganizations(ctx, w.user)
	if err != nil {
		return w.store.Current(), fmt.Errorf("failed to list organizations: %w", err)
	}

	sel, applied := w.store.ReconcileAt(seq, orgs)
	if !applied {
		telemetry.GetMetrics().StaleResponsesTotal.Add(ctx, 1)
	}

	return sel, nil
}

// RefreshCycles fetches the cycles of the current organization and reconciles the
// selected cycle. Without a current organization there is nothing to fetch.
func (w *Workspace) RefreshCycles(ctx context.Context) (selection.Selection, error) {
	orgID := w.store.Current().OrganizationID()
	if orgID == "" {
		return w.store.Current(), nil
	}

	cycles, err := w.cycles.ListCycles(ctx, orgID)
	if err != nil {
		return w.store.Current(), fmt.Errorf("failed to list recruitment cycles: %w", err)
	}

	return w.store.ReconcileCycles(orgID, cycles), nil
}

// SelectOrganization switches to the loaded organization with the given id and loads its cycles.
func (w *Workspace) SelectOrganization(ctx context.Context, id string) (selection.Selection, error) {
	org := models.FindOrganization(w.store.Organizations(), id)
	if org == nil {
		return w.store.Current(), fmt.Errorf("%w: %s", ErrOrganizationNotFound, id)
	}

	sel, err := w.store.SelectOrganization(*org)
	if err != nil {
		return sel, err
	}

	return w.RefreshCycles(ctx)
}

// SelectCycle switches to the loaded cycle with the given id.
func (w *Workspace) SelectCycle(id string) (selection.Selection, error) {
	if w.store.Current().IsEmpty() {
		return w.store.Current(), selection.ErrNoOrganization
	}

	cycle := models.FindCycle(w.store.Cycles(), id)
	if cycle == nil {
		return w.store.Current(), fmt.Errorf("%w: %s", ErrCycleNotFound, id)
	}

	return w.store.SelectCycle(*cycle)
}

// CreateOrganization creates an organization and makes it current.
func (w *Workspace) CreateOrganization(ctx context.Context, name string) (selection.Selection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return w.store.Current(), ErrEmptyName
	}

	org, err := w.orgs.CreateOrganization(ctx, w.user, name)
	if err != nil {
		return w.store.Current(), fmt.Errorf("failed to create organization: %w", err)
	}

	log.Info().Str("organizationID", org.ID).Str("name", org.Name).Msg("organization created")

	orgs := append(w.store.Organizations(), *org)
	w.store.Reconcile(orgs)

	return w.SelectOrganization(ctx, org.ID)
}

// RenameOrganization renames the current organization.
func (w *Workspace) RenameOrganization(ctx context.Context, name string) (selection.Selection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return w.store.Current(), ErrEmptyName
	}

	current := w.store.Current()
	if current.IsEmpty() {
		return current, selection.ErrNoOrganization
	}

	updated, err := w.orgs.UpdateOrganization(ctx, models.Organization{ID: current.Organization.ID, Name: name})
	if err != nil {
		return current, fmt.Errorf("failed to update organization: %w", err)
	}

	orgs := w.store.Organizations()
	for i := range orgs {
		if orgs[i].ID == updated.ID {
			orgs[i] = *updated
		}
	}

	return w.store.Reconcile(orgs), nil
}

// CreateCycle creates a recruitment cycle in the current organization and makes it current.
func (w *Workspace) CreateCycle(ctx context.Context, name string) (selection.Selection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return w.store.Current(), ErrEmptyName
	}

	orgID := w.store.Current().OrganizationID()
	if orgID == "" {
		return w.store.Current(), selection.ErrNoOrganization
	}

	cycle, err := w.cycles.CreateCycle(ctx, orgID, name)
	if err != nil {
		return w.store.Current(), fmt.Errorf("failed to create recruitment cycle: %w", err)
	}
	if cycle.OrganizationID == "" {
		cycle.OrganizationID = orgID
	}

	log.Info().
		Str("organizationID", orgID).
		Str("cycleID", cycle.ID).
		Str("name", cycle.Name).
		Msg("recruitment cycle created")

	cycles := append(w.store.Cycles(), *cycle)
	w.store.ReconcileCycles(orgID, cycles)

	return w.store.SelectCycle(*cycle)
}

// RenameCycle renames the current recruitment cycle.
func (w *Workspace) RenameCycle(ctx context.Context, name string) (selection.Selection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return w.store.Current(), ErrEmptyName
	}

	current := w.store.Current()
	if current.Cycle == nil {
		return current, ErrNoCycle
	}

	rename := *current.Cycle
	rename.Name = name

	updated, err := w.cycles.UpdateCycle(ctx, rename)
	if err != nil {
		return current, fmt.Errorf("failed to update recruitment cycle: %w", err)
	}
	if updated.OrganizationID == "" {
		updated.OrganizationID = current.Cycle.OrganizationID
	}
	if !updated.BelongsTo(current.Organization) {
		return current, fmt.Errorf("%w: cycle %s now belongs to %s",
			selection.ErrCycleOutsideOrganization, updated.ID, updated.OrganizationID)
	}

	cycles := w.store.Cycles()
	for i := range cycles {
		if cycles[i].ID == updated.ID {
			cycles[i] = *updated
		}
	}

	return w.store.ReconcileCycles(current.Organization.ID, cycles), nil
}

// Logout drops the selection. With forget the user's persisted organization is deleted too.
// The workspace stops observing the store; create a new one for the next login.
func (w *Workspace) Logout(forget bool) error {
	defer w.unsubscribe()

	if forget {
		return w.store.Forget()
	}
	w.store.Clear()
	return nil
}
