package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/wolfeidau/recruitify/internal/models"
)

type createCycleRequest struct {
	Name string `json:"name"`
}

func cyclesPath(organizationID string) string {
	return "/api/organizations/" + url.PathEscape(organizationID) + "/recruitment-cycles"
}

// ListCycles returns the recruitment cycles of an organization.
func (c *Client) ListCycles(ctx context.Context, organizationID string) ([]models.RecruitmentCycle, error) {
	var cycles []models.RecruitmentCycle
	if err := c.do(ctx, "ListCycles", http.MethodGet, cyclesPath(organizationID), nil, &cycles); err != nil {
		return nil, err
	}
	return cycles, nil
}

// CreateCycle creates a recruitment cycle in an organization.
func (c *Client) CreateCycle(ctx context.Context, organizationID, name string) (*models.RecruitmentCycle, error) {
	var cycle models.RecruitmentCycle
	if err := c.do(ctx, "CreateCycle", http.MethodPost, cyclesPath(organizationID), createCycleRequest{Name: name}, &cycle); err != nil {
		return nil, err
	}
	if err := requireID("CreateCycle", cycle.ID); err != nil {
		return nil, err
	}
	return &cycle, nil
}

// UpdateCycle saves cycle's editable fields and returns the stored cycle.
func (c *Client) UpdateCycle(ctx context.Context, cycle models.RecruitmentCycle) (*models.RecruitmentCycle, error) {
	var updated models.RecruitmentCycle
	path := "/api/recruitment-cycles/" + url.PathEscape(cycle.ID)
	if err := c.do(ctx, "UpdateCycle", http.MethodPatch, path, updateRequest{Name: cycle.Name}, &updated); err != nil {
		return nil, err
	}
	if err := requireID("UpdateCycle", updated.ID); err != nil {
		return nil, err
	}
	return &updated, nil
}
