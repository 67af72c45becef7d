package models

import (
	"time"
)

// Organization represents an organization (tenant) the user works in.
// Identity is ID; Name is for display only and may change.
type Organization struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RecruitmentCycle is a time-boxed hiring campaign owned by exactly one organization.
type RecruitmentCycle struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	CreatedAt      time.Time `json:"created_at"`
	OrganizationID string    `json:"organization_id"` // FK to organizations
}

// BelongsTo returns true if the cycle is owned by the given organization.
func (c *RecruitmentCycle) BelongsTo(org *Organization) bool {
	return org != nil && c.OrganizationID == org.ID
}

// FindOrganization returns the organization with the given ID, or nil.
func FindOrganization(orgs []Organization, id string) *Organization {
	for i := range orgs {
		if orgs[i].ID == id {
			org := orgs[i]
			return &org
		}
	}
	return nil
}

// FindCycle returns the recruitment cycle with the given ID, or nil.
func FindCycle(cycles []RecruitmentCycle, id string) *RecruitmentCycle {
	for i := range cycles {
		if cycles[i].ID == id {
			cycle := cycles[i]
			return &cycle
		}
	}
	return nil
}
