package pipedrive

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

var validPersonVisibility = map[int]bool{1: true, 2: true, 3: true}

// ContactInfo is one email address or phone number attached to a person.
type ContactInfo struct {
	Value   string `json:"value"`
	Label   string `json:"label,omitempty"`
	Primary bool   `json:"primary,omitempty"`
}

// PersonInput carries the writable fields of a person.
type PersonInput struct {
	Name      *string       `json:"name,omitempty"`
	OwnerID   *int          `json:"owner_id,omitempty"`
	OrgID     *int          `json:"org_id,omitempty"`
	Emails    []ContactInfo `json:"emails,omitempty"`
	Phones    []ContactInfo `json:"phones,omitempty"`
	VisibleTo *int          `json:"visible_to,omitempty"`
	LabelIDs  []int         `json:"label_ids,omitempty"`
}

// Validate enforces contact and visibility rules.
func (p *PersonInput) Validate() error {
	if err := validateContacts(p.Emails, "email"); err != nil {
		return err
	}
	if err := validateContacts(p.Phones, "phone"); err != nil {
		return err
	}
	if p.VisibleTo != nil && !validPersonVisibility[*p.VisibleTo] {
		return fmt.Errorf("invalid visible_to: %d, must be one of: 1, 2, 3", *p.VisibleTo)
	}
	return nil
}

func validateContacts(contacts []ContactInfo, kind string) error {
	primaries := 0
	for _, c := range contacts {
		if strings.TrimSpace(c.Value) == "" {
			return fmt.Errorf("%s value cannot be empty", kind)
		}
		if c.Primary {
			primaries++
		}
	}
	if primaries > 1 {
		return fmt.Errorf("only one %s can be marked as primary", kind)
	}
	return nil
}

func (p *PersonInput) empty() bool {
	return p.Name == nil && p.OwnerID == nil && p.OrgID == nil &&
		p.Emails == nil && p.Phones == nil && p.VisibleTo == nil && p.LabelIDs == nil
}

// PersonListOptions are the filters accepted by List.
type PersonListOptions struct {
	Limit         int
	Cursor        string
	FilterID      *int
	OwnerID       *int
	OrgID         *int
	UpdatedSince  string
	UpdatedUntil  string
	SortBy        string
	SortDirection string
	IncludeFields []string
}

// PersonSearchOptions are the filters accepted by Search.
type PersonSearchOptions struct {
	Term           string
	Fields         []string
	ExactMatch     bool
	OrganizationID *int
	IncludeFields  []string
	Limit          int
	Cursor         string
}

// PersonsService accesses the v2 /persons endpoints.
type PersonsService struct {
	client *Client
}

// Create adds a new person.
func (s *PersonsService) Create(ctx context.Context, in *PersonInput) (map[string]any, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, errors.New("person name cannot be empty")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	resp, err := s.client.Request(ctx, "POST", "/persons", nil, in, "v2")
	if err != nil {
		return nil, err
	}
	return dataMap(resp), nil
}

// Get fetches one person by ID.
func (s *PersonsService) Get(ctx context.Context, id int, includeFields []string) (map[string]any, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid person ID: %d, must be a positive integer", id)
	}
	query := url.Values{}
	setOptional(query, "include_fields", joinFields(includeFields))
	resp, err := s.client.Request(ctx, "GET", fmt.Sprintf("/persons/%d", id), query, nil, "v2")
	if err != nil {
		return nil, err
	}
	return dataMap(resp), nil
}

// List returns one page of persons and the next-page cursor.
func (s *PersonsService) List(ctx context.Context, opts PersonListOptions) ([]any, string, error) {
	if opts.Limit < 1 || opts.Limit > 500 {
		return nil, "", fmt.Errorf("invalid limit: %d, must be between 1 and 500", opts.Limit)
	}
	query := url.Values{}
	query.Set("limit", strconv.Itoa(opts.Limit))
	setOptional(query, "cursor", opts.Cursor)
	setOptionalInt(query, "filter_id", opts.FilterID)
	setOptionalInt(query, "owner_id", opts.OwnerID)
	setOptionalInt(query, "org_id", opts.OrgID)
	setOptional(query, "updated_since", opts.UpdatedSince)
	setOptional(query, "updated_until", opts.UpdatedUntil)
	setOptional(query, "sort_by", opts.SortBy)
	setOptional(query, "sort_direction", opts.SortDirection)
	setOptional(query, "include_fields", joinFields(opts.IncludeFields))

	resp, err := s.client.Request(ctx, "GET", "/persons", query, nil, "v2")
	if err != nil {
		return nil, "", err
	}
	return dataList(resp), nextCursor(resp), nil
}

// Update patches an existing person. At least one field must be set.
func (s *PersonsService) Update(ctx context.Context, id int, in *PersonInput) (map[string]any, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid person ID: %d, must be a positive integer", id)
	}
	if in.empty() {
		return nil, errors.New("at least one field must be provided for updating a person")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	resp, err := s.client.Request(ctx, "PATCH", fmt.Sprintf("/persons/%d", id), nil, in, "v2")
	if err != nil {
		return nil, err
	}
	return dataMap(resp), nil
}

// Delete removes a person.
func (s *PersonsService) Delete(ctx context.Context, id int) (map[string]any, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid person ID: %d, must be a positive integer", id)
	}
	resp, err := s.client.Request(ctx, "DELETE", fmt.Sprintf("/persons/%d", id), nil, nil, "v2")
	if err != nil {
		return nil, err
	}
	return dataMap(resp), nil
}

// Search performs a term search over persons.
func (s *PersonsService) Search(ctx context.Context, opts PersonSearchOptions) ([]any, string, error) {
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
	setOptionalInt(query, "organization_id", opts.OrganizationID)
	setOptional(query, "include_fields", joinFields(opts.IncludeFields))
	setOptional(query, "cursor", opts.Cursor)

	resp, err := s.client.Request(ctx, "GET", "/persons/search", query, nil, "v2")
	if err != nil {
		return nil, "", err
	}
	return searchItems(resp), nextCursor(resp), nil
}
