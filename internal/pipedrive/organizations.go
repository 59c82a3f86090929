package pipedrive

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

var validOrgVisibility = map[int]bool{1: true, 2: true, 3: true, 4: true}

// OrganizationInput carries the writable fields of an organization.
type OrganizationInput struct {
	Name      *string        `json:"name,omitempty"`
	OwnerID   *int           `json:"owner_id,omitempty"`
	Address   map[string]any `json:"address,omitempty"`
	VisibleTo *int           `json:"visible_to,omitempty"`
	LabelIDs  []int          `json:"label_ids,omitempty"`
}

// Validate enforces visibility rules.
func (o *OrganizationInput) Validate() error {
	if o.VisibleTo != nil && !validOrgVisibility[*o.VisibleTo] {
		return fmt.Errorf("invalid visible_to: %d, must be one of: 1, 2, 3, 4", *o.VisibleTo)
	}
	return nil
}

func (o *OrganizationInput) empty() bool {
	return o.Name == nil && o.OwnerID == nil && o.Address == nil &&
		o.VisibleTo == nil && o.LabelIDs == nil
}

// OrganizationListOptions are the filters accepted by List.
type OrganizationListOptions struct {
	Limit         int
	Cursor        string
	FilterID      *int
	OwnerID       *int
	UpdatedSince  string
	UpdatedUntil  string
	SortBy        string
	SortDirection string
	IncludeFields []string
}

// OrganizationSearchOptions are the filters accepted by Search.
type OrganizationSearchOptions struct {
	Term          string
	Fields        []string
	ExactMatch    bool
	IncludeFields []string
	Limit         int
	Cursor        string
}

// OrganizationsService accesses the v2 /organizations endpoints plus the v1
// follower endpoints.
type OrganizationsService struct {
	client *Client
}

// Create adds a new organization.
func (s *OrganizationsService) Create(ctx context.Context, in *OrganizationInput) (map[string]any, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, errors.New("organization name cannot be empty")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	resp, err := s.client.Request(ctx, "POST", "/organizations", nil, in, "v2")
	if err != nil {
		return nil, err
	}
	return dataMap(resp), nil
}

// Get fetches one organization by ID.
func (s *OrganizationsService) Get(ctx context.Context, id int, includeFields []string) (map[string]any, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid organization ID: %d, must be a positive integer", id)
	}
	query := url.Values{}
	setOptional(query, "include_fields", joinFields(includeFields))
	resp, err := s.client.Request(ctx, "GET", fmt.Sprintf("/organizations/%d", id), query, nil, "v2")
	if err != nil {
		return nil, err
	}
	return dataMap(resp), nil
}

// List returns one page of organizations and the next-page cursor.
func (s *OrganizationsService) List(ctx context.Context, opts OrganizationListOptions) ([]any, string, error) {
	if opts.Limit < 1 || opts.Limit > 500 {
		return nil, "", fmt.Errorf("invalid limit: %d, must be between 1 and 500", opts.Limit)
	}
	query := url.Values{}
	query.Set("limit", strconv.Itoa(opts.Limit))
	setOptional(query, "cursor", opts.Cursor)
	setOptionalInt(query, "filter_id", opts.FilterID)
	setOptionalInt(query, "owner_id", opts.OwnerID)
	setOptional(query, "updated_since", opts.UpdatedSince)
	setOptional(query, "updated_until", opts.UpdatedUntil)
	setOptional(query, "sort_by", opts.SortBy)
	setOptional(query, "sort_direction", opts.SortDirection)
	setOptional(query, "include_fields", joinFields(opts.IncludeFields))

	resp, err := s.client.Request(ctx, "GET", "/organizations", query, nil, "v2")
	if err != nil {
		return nil, "", err
	}
	return dataList(resp), nextCursor(resp), nil
}

// Update patches an existing organization. At least one field must be set.
func (s *OrganizationsService) Update(ctx context.Context, id int, in *OrganizationInput) (map[string]any, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid organization ID: %d, must be a positive integer", id)
	}
	if in.empty() {
		return nil, errors.New("at least one field must be provided for updating an organization")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	resp, err := s.client.Request(ctx, "PATCH", fmt.Sprintf("/organizations/%d", id), nil, in, "v2")
	if err != nil {
		return nil, err
	}
	return dataMap(resp), nil
}

// Delete removes an organization.
func (s *OrganizationsService) Delete(ctx context.Context, id int) (map[string]any, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid organization ID: %d, must be a positive integer", id)
	}
	resp, err := s.client.Request(ctx, "DELETE", fmt.Sprintf("/organizations/%d", id), nil, nil, "v2")
	if err != nil {
		return nil, err
	}
	return dataMap(resp), nil
}

// Search performs a term search over organizations.
func (s *OrganizationsService) Search(ctx context.Context, opts OrganizationSearchOptions) ([]any, string, error) {
	term := strings.TrimSpace(opts.Term)
	minLen := 2
	if opts.ExactMatch {
		minLen = 1
	}
	if len(term) < minLen {
		return nil, "", fmt.Errorf("search term must be at least %d characters long", minLen)
	}
	if opts.Limit < 1 || opts.Limit > 500 {
		return nil, "", fmt.Errorf("invalid limit: %d, must be between 1 and 500", opts.Limit)
	}

	query := url.Values{}
	query.Set("term", term)
	query.Set("limit", strconv.Itoa(opts.Limit))
	setOptional(query, "fields", joinFields(opts.Fields))
	if opts.ExactMatch {
		setOptionalBool(query, "exact_match", true)
	}
	setOptional(query, "include_fields", joinFields(opts.IncludeFields))
	setOptional(query, "cursor", opts.Cursor)

	resp, err := s.client.Request(ctx, "GET", "/organizations/search", query, nil, "v2")
	if err != nil {
		return nil, "", err
	}
	return searchItems(resp), nextCursor(resp), nil
}

// Followers lists the users following an organization (v1 API).
func (s *OrganizationsService) Followers(ctx context.Context, orgID int) ([]any, error) {
	if orgID <= 0 {
		return nil, fmt.Errorf("invalid organization ID: %d, must be a positive integer", orgID)
	}
	resp, err := s.client.Request(ctx, "GET", fmt.Sprintf("/organizations/%d/followers", orgID), nil, nil, "v1")
	if err != nil {
		return nil, err
	}
	return dataList(resp), nil
}

// AddFollower adds a user as a follower of an organization (v1 API).
func (s *OrganizationsService) AddFollower(ctx context.Context, orgID, userID int) (map[string]any, error) {
	if orgID <= 0 {
		return nil, fmt.Errorf("invalid organization ID: %d, must be a positive integer", orgID)
	}
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user ID: %d, must be a positive integer", userID)
	}
	body := map[string]any{"user_id": userID}
	resp, err := s.client.Request(ctx, "POST", fmt.Sprintf("/organizations/%d/followers", orgID), nil, body, "v1")
	if err != nil {
		return nil, err
	}
	return dataMap(resp), nil
}

// DeleteFollower removes a follower from an organization (v1 API).
func (s *OrganizationsService) DeleteFollower(ctx context.Context, orgID, followerID int) (map[string]any, error) {
	if orgID <= 0 {
		return nil, fmt.Errorf("invalid organization ID: %d, must be a positive integer", orgID)
	}
	if followerID <= 0 {
		return nil, fmt.Errorf("invalid follower ID: %d, must be a positive integer", followerID)
	}
	resp, err := s.client.Request(ctx, "DELETE", fmt.Sprintf("/organizations/%d/followers/%d", orgID, followerID), nil, nil, "v1")
	if err != nil {
		return nil, err
	}
	return dataMap(resp), nil
}
