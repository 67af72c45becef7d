// Package selection tracks which organization and recruitment cycle a user is
// currently working in, and persists the organization across sessions.
package selection

import (
	"github.com/wolfeidau/recruitify/internal/models"
)

// Selection is the user's current working context.
// A nil field means nothing is selected.
type Selection struct {
	Organization *models.Organization     `json:"organization,omitempty"`
	Cycle        *models.RecruitmentCycle `json:"cycle,omitempty"`
}

// IsEmpty returns true if no organization is selected.
func (s Selection) IsEmpty() bool {
	return s.Organization == nil
}

// OrganizationID returns the selected organization's ID, or "" when none is selected.
func (s Selection) OrganizationID() string {
	if s.Organization == nil {
		return ""
	}
	return s.Organization.ID
}

// CycleID returns the selected cycle's ID, or "" when none is selected.
func (s Selection) CycleID() string {
	if s.Cycle == nil {
		return ""
	}
	return s.Cycle.ID
}

// Equal compares selections by identity.
func (s Selection) Equal(other Selection) bool {
	if s.OrganizationID() != other.OrganizationID() || s.CycleID() != other.CycleID() {
		return false
	}
	// names are display only, but a rename is still a change observers care about
	if s.Organization != nil && other.Organization != nil && s.Organization.Name != other.Organization.Name {
		return false
	}
	if s.Cycle != nil && other.Cycle != nil && s.Cycle.Name != other.Cycle.Name {
		return false
	}
	return true
}

func (s Selection) clone() Selection {
	var out Selection
	if s.Organization != nil {
		org := *s.Organization
		out.Organization = &org
	}
	if s.Cycle != nil {
		cycle := *s.Cycle
		out.Cycle = &cycle
	}
	return out
}

// Reconcile validates sel against a freshly fetched organizations list.
//
// The organization survives only if its ID is in organizations, in which case the
// fresh element replaces it. Losing the organization drops the cycle with it.
// Reconcile is idempotent.
func Reconcile(sel Selection, organizations []models.Organization) Selection {
	if sel.Organization == nil {
		return Selection{}
	}

	org := models.FindOrganization(organizations, sel.Organization.ID)
	if org == nil {
		return Selection{}
	}

	out := Selection{Organization: org}
	if sel.Cycle != nil && sel.Cycle.BelongsTo(org) {
		cycle := *sel.Cycle
		out.Cycle = &cycle
	}

	return out
}

// ReconcileCycles validates the selected cycle against the freshly fetched cycles
// of the selected organization. A cycle that disappeared, or that belongs to some
// other organization, is dropped.
func ReconcileCycles(sel Selection, cycles []models.RecruitmentCycle) Selection {
	out := sel.clone()
	if out.Cycle == nil {
		return out
	}

	cycle := models.FindCycle(cycles, out.Cycle.ID)
	if cycle == nil || !cycle.BelongsTo(out.Organization) {
		out.Cycle = nil
		return out
	}

	out.Cycle = cycle
	return out
}
