package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/wolfeidau/recruitify/internal/models"
)

type createOrganizationRequest struct {
	Name string      `json:"name"`
	User models.User `json:"user"`
}

type updateRequest struct {
	Name string `json:"name"`
}

// ListOrganizations returns the organizations user has access to.
// The server identifies the user from the request body as well as the bearer token.
func (c *Client) ListOrganizations(ctx context.Context, user models.User) ([]models.Organization, error) {
	var orgs []models.Organization
	if err := c.do(ctx, "ListOrganizations", http.MethodPost, "/api/organizations", user, &orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}

// CreateOrganization creates an organization owned by user.
func (c *Client) CreateOrganization(ctx context.Context, user models.User, name string) (*models.Organization, error) {
	var org models.Organization
	req := createOrganizationRequest{Name: name, User: user}
	if err := c.do(ctx, "CreateOrganization", http.MethodPost, "/api/organizations/create", req, &org); err != nil {
		return nil, err
	}
	if err := requireID("CreateOrganization", org.ID); err != nil {
		return nil, err
	}
	return &org, nil
}

// UpdateOrganization saves org's editable fields and returns the stored organization.
func (c *Client) UpdateOrganization(ctx context.Context, org models.Organization) (*models.Organization, error) {
	var updated models.Organization
	path := "/api/organizations/" + url.PathEscape(org.ID)
	if err := c.do(ctx, "UpdateOrganization", http.MethodPatch, path, updateRequest{Name: org.Name}, &updated); err != nil {
		return nil, err
	}
	if err := requireID("UpdateOrganization", updated.ID); err != nil {
		return nil, err
	}
	return &updated, nil
}

func requireID(op, id string) error {
	if id == "" {
		return &FetchError{Op: op, StatusCode: http.StatusOK, Err: ErrMalformedResponse}
	}
	return nil
}
