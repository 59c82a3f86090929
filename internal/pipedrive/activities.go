package pipedrive

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

// ActivityInput carries the writable fields of an activity. Pointer fields
// distinguish "not provided" from zero values so the same struct serves both
// create and update calls.
type ActivityInput struct {
	Subject *string `json:"subject,omitempty"`
	Type    *string `json:"type,omitempty"`
	OwnerID *int    `json:"owner_id,omitempty"`
	DealID  *int    `json:"deal_id,omitempty"`
	LeadID  *string `json:"lead_id,omitempty"`
	// PersonID is read-only in the Pipedrive API; participants are the
	// supported way to link persons. Kept for parity with the wire format.
	PersonID          *int             `json:"person_id,omitempty"`
	OrgID             *int             `json:"org_id,omitempty"`
	DueDate           *string          `json:"due_date,omitempty"`
	DueTime           *string          `json:"due_time,omitempty"`
	Duration          *string          `json:"duration,omitempty"`
	Busy              *bool            `json:"busy,omitempty"`
	Done              *bool            `json:"done,omitempty"`
	Note              *string          `json:"note,omitempty"`
	Location          map[string]any   `json:"location,omitempty"`
	PublicDescription *string          `json:"public_description,omitempty"`
	Priority          *int             `json:"priority,omitempty"`
	Participants      []map[string]any `json:"participants,omitempty"`
}

func (a *ActivityInput) validateCreate() error {
	if a.Subject == nil || *a.Subject == "" {
		return errors.New("activity subject cannot be empty")
	}
	if a.Type == nil || *a.Type == "" {
		return errors.New("activity type cannot be empty")
	}
	return nil
}

func (a *ActivityInput) empty() bool {
	return a.Subject == nil && a.Type == nil && a.OwnerID == nil && a.DealID == nil &&
		a.LeadID == nil && a.PersonID == nil && a.OrgID == nil && a.DueDate == nil &&
		a.DueTime == nil && a.Duration == nil && a.Busy == nil && a.Done == nil &&
		a.Note == nil && a.Location == nil && a.PublicDescription == nil &&
		a.Priority == nil && a.Participants == nil
}

// ActivityListOptions are the filters accepted by List.
type ActivityListOptions struct {
	Limit         int
	Cursor        string
	FilterID      *int
	OwnerID       *int
	DealID        *int
	LeadID        string
	PersonID      *int
	OrgID         *int
	UpdatedSince  string
	UpdatedUntil  string
	SortBy        string
	SortDirection string
	IncludeFields []string
}

// ActivitiesService accesses the v2 /activities endpoints plus the v1
// activity-type endpoints.
type ActivitiesService struct {
	client *Client
}

// Create adds a new activity.
func (s *ActivitiesService) Create(ctx context.Context, in *ActivityInput) (map[string]any, error) {
	if err := in.validateCreate(); err != nil {
		return nil, err
	}
	resp, err := s.client.Request(ctx, "POST", "/activities", nil, in, "v2")
	if err != nil {
		return nil, err
	}
	return dataMap(resp), nil
}

// Get fetches one activity by ID.
func (s *ActivitiesService) Get(ctx context.Context, id int, includeFields []string) (map[string]any, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid activity ID: %d, must be a positive integer", id)
	}
	query := url.Values{}
	if len(includeFields) > 0 {
		query.Set("include_fields", joinFields(includeFields))
	}
	resp, err := s.client.Request(ctx, "GET", fmt.Sprintf("/activities/%d", id), query, nil, "v2")
	if err != nil {
		return nil, err
	}
	return dataMap(resp), nil
}

// List returns one page of activities and the cursor for the next page, or
// "" when there are no more results.
func (s *ActivitiesService) List(ctx context.Context, opts ActivityListOptions) ([]any, string, error) {
	if opts.Limit < 1 || opts.Limit > 500 {
		return nil, "", fmt.Errorf("invalid limit: %d, must be between 1 and 500", opts.Limit)
	}
	if opts.SortDirection != "" && opts.SortDirection != "asc" && opts.SortDirection != "desc" {
		return nil, "", fmt.Errorf("invalid sort_direction: %s, must be 'asc' or 'desc'", opts.SortDirection)
	}
	switch opts.SortBy {
	case "", "id", "update_time", "add_time":
	default:
		return nil, "", fmt.Errorf("invalid sort_by: %s, must be one of: id, update_time, add_time", opts.SortBy)
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(opts.Limit))
	setOptional(query, "cursor", opts.Cursor)
	setOptionalInt(query, "filter_id", opts.FilterID)
	setOptionalInt(query, "owner_id", opts.OwnerID)
	setOptionalInt(query, "deal_id", opts.DealID)
	setOptional(query, "lead_id", opts.LeadID)
	setOptionalInt(query, "person_id", opts.PersonID)
	setOptionalInt(query, "org_id", opts.OrgID)
	setOptional(query, "updated_since", opts.UpdatedSince)
	setOptional(query, "updated_until", opts.UpdatedUntil)
	setOptional(query, "sort_by", opts.SortBy)
	setOptional(query, "sort_direction", opts.SortDirection)
	setOptional(query, "include_fields", joinFields(opts.IncludeFields))

	resp, err := s.client.Request(ctx, "GET", "/activities", query, nil, "v2")
	if err != nil {
		return nil, "", err
	}
	return dataList(resp), nextCursor(resp), nil
}

// Update patches an existing activity. At least one field must be set.
func (s *ActivitiesService) Update(ctx context.Context, id int, in *ActivityInput) (map[string]any, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid activity ID: %d, must be a positive integer", id)
	}
	if in.empty() {
		return nil, errors.New("at least one field must be provided for updating an activity")
	}
	resp, err := s.client.Request(ctx, "PATCH", fmt.Sprintf("/activities/%d", id), nil, in, "v2")
	if err != nil {
		return nil, err
	}
	return dataMap(resp), nil
}

// Delete removes an activity. Unlike the other write operations Pipedrive
// reports delete outcomes in the envelope, but failures are surfaced as
// errors here too.
func (s *ActivitiesService) Delete(ctx context.Context, id int) (map[string]any, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid activity ID: %d, must be a positive integer", id)
	}
	resp, err := s.client.Request(ctx, "DELETE", fmt.Sprintf("/activities/%d", id), nil, nil, "v2")
	if err != nil {
		return nil, err
	}
	return dataMap(resp), nil
}

// Types lists all activity types. Activity types only exist on the v1 API.
func (s *ActivitiesService) Types(ctx context.Context) ([]any, error) {
	resp, err := s.client.Request(ctx, "GET", "/activityTypes", nil, nil, "v1")
	if err != nil {
		return nil, err
	}
	return dataList(resp), nil
}

// ActivityTypeInput carries the writable fields of an activity type.
type ActivityTypeInput struct {
	Name    string `json:"name"`
	IconKey string `json:"icon_key"`
	Color   string `json:"color,omitempty"`
	OrderNr *int   `json:"order_nr,omitempty"`
}

// CreateType adds a new activity type (v1 API).
func (s *ActivitiesService) CreateType(ctx context.Context, in *ActivityTypeInput) (map[string]any, error) {
	if in.Name == "" {
		return nil, errors.New("activity type name cannot be empty")
	}
	if in.IconKey == "" {
		return nil, errors.New("activity type icon_key cannot be empty")
	}
	resp, err := s.client.Request(ctx, "POST", "/activityTypes", nil, in, "v1")
	if err != nil {
		return nil, err
	}
	return dataMap(resp), nil
}

func setOptional(query url.Values, key, value string) {
	if value != "" {
		query.Set(key, value)
	}
}

func setOptionalInt(query url.Values, key string, value *int) {
	if value != nil {
		query.Set(key, strconv.Itoa(*value))
	}
}

func setOptionalBool(query url.Values, key string, value bool) {
	query.Set(key, strconv.FormatBool(value))
}
