package pipedrive

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

var validLeadVisibility = map[int]bool{1: true, 3: true, 5: true, 7: true}

// LeadValue is the monetary value of a lead. Unlike deals, the API wants
// amount and currency as one nested object.
type LeadValue struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// LeadInput carries the writable fields of a lead. Lead IDs and label IDs
// are UUID strings, not integers.
type LeadInput struct {
	Title             *string    `json:"title,omitempty"`
	OwnerID           *int       `json:"owner_id,omitempty"`
	PersonID          *int       `json:"person_id,omitempty"`
	OrganizationID    *int       `json:"organization_id,omitempty"`
	Value             *LeadValue `json:"value,omitempty"`
	LabelIDs          []string   `json:"label_ids,omitempty"`
	ExpectedCloseDate *string    `json:"expected_close_date,omitempty"`
	VisibleTo         *int       `json:"visible_to,omitempty"`
	WasSeen           *bool      `json:"was_seen,omitempty"`
}

// Validate enforces the cross-field rules shared by create and update.
func (l *LeadInput) Validate() error {
	if l.Value != nil {
		cur := strings.ToUpper(strings.TrimSpace(l.Value.Currency))
		if len(cur) != 3 {
			return fmt.Errorf("invalid lead value currency: %s, must be a 3-letter ISO code", l.Value.Currency)
		}
		l.Value.Currency = cur
		if l.Value.Amount < 0 {
			return errors.New("lead value amount cannot be negative")
		}
	}
	if l.VisibleTo != nil && !validLeadVisibility[*l.VisibleTo] {
		return fmt.Errorf("invalid visible_to: %d, must be one of: 1, 3, 5, 7", *l.VisibleTo)
	}
	return nil
}

func (l *LeadInput) empty() bool {
	return l.Title == nil && l.OwnerID == nil && l.PersonID == nil &&
		l.OrganizationID == nil && l.Value == nil && l.LabelIDs == nil &&
		l.ExpectedCloseDate == nil && l.VisibleTo == nil && l.WasSeen == nil
}

// LeadListOptions are the filters accepted by List. Leads live on the v1
// API, which paginates with limit/start offsets instead of cursors.
type LeadListOptions struct {
	Limit          int
	Start          int
	ArchivedStatus string
	OwnerID        *int
	PersonID       *int
	OrgID          *int
	FilterID       *int
	Sort           string
}

// LeadSearchOptions are the filters accepted by Search (v2 API).
type LeadSearchOptions struct {
	Term           string
	Fields         []string
	ExactMatch     bool
	PersonID       *int
	OrganizationID *int
	IncludeFields  []string
	Limit          int
	Cursor         string
}

// LeadsService accesses the v1 /leads endpoints plus the v2 lead search.
type LeadsService struct {
	client *Client
}

// Create adds a new lead. A lead must be linked to a person or an
// organization.
func (s *LeadsService) Create(ctx context.Context, in *LeadInput) (map[string]any, error) {
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return nil, errors.New("lead title cannot be empty")
	}
	if in.PersonID == nil && in.OrganizationID == nil {
		return nil, errors.New("a lead must be linked to a person_id or an organization_id")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	resp, err := s.client.Request(ctx, "POST", "/leads", nil, in, "v1")
	if err != nil {
		return nil, err
	}
	return dataMap(resp), nil
}

// Get fetches one lead by its UUID.
func (s *LeadsService) Get(ctx context.Context, id string) (map[string]any, error) {
	if id == "" {
		return nil, errors.New("lead ID cannot be empty")
	}
	resp, err := s.client.Request(ctx, "GET", "/leads/"+id, nil, nil, "v1")
	if err != nil {
		return nil, err
	}
	return dataMap(resp), nil
}

// List returns one page of leads. The v1 API has no cursor; callers page
// with Start offsets.
func (s *LeadsService) List(ctx context.Context, opts LeadListOptions) ([]any, error) {
	if opts.Limit < 1 || opts.Limit > 500 {
		return nil, fmt.Errorf("invalid limit: %d, must be between 1 and 500", opts.Limit)
	}
	if opts.ArchivedStatus != "" {
		switch opts.ArchivedStatus {
		case "archived", "not_archived", "all":
		default:
			return nil, fmt.Errorf("invalid archived_status: %s, must be one of: archived, not_archived, all", opts.ArchivedStatus)
		}
	}
	query := url.Values{}
	query.Set("limit", strconv.Itoa(opts.Limit))
	if opts.Start > 0 {
		query.Set("start", strconv.Itoa(opts.Start))
	}
	setOptional(query, "archived_status", opts.ArchivedStatus)
	setOptionalInt(query, "owner_id", opts.OwnerID)
	setOptionalInt(query, "person_id", opts.PersonID)
	setOptionalInt(query, "organization_id", opts.OrgID)
	setOptionalInt(query, "filter_id", opts.FilterID)
	setOptional(query, "sort", opts.Sort)

	resp, err := s.client.Request(ctx, "GET", "/leads", query, nil, "v1")
	if err != nil {
		return nil, err
	}
	return dataList(resp), nil
}

// Update patches an existing lead. At least one field must be set.
func (s *LeadsService) Update(ctx context.Context, id string, in *LeadInput) (map[string]any, error) {
	if id == "" {
		return nil, errors.New("lead ID cannot be empty")
	}
	if in.empty() {
		return nil, errors.New("at least one field must be provided for updating a lead")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	resp, err := s.client.Request(ctx, "PATCH", "/leads/"+id, nil, in, "v1")
	if err != nil {
		return nil, err
	}
	return dataMap(resp), nil
}

// Delete removes a lead by its UUID.
func (s *LeadsService) Delete(ctx context.Context, id string) (map[string]any, error) {
	if id == "" {
		return nil, errors.New("lead ID cannot be empty")
	}
	resp, err := s.client.Request(ctx, "DELETE", "/leads/"+id, nil, nil, "v1")
	if err != nil {
		return nil, err
	}
	return dataMap(resp), nil
}

// Search performs a term search over leads (v2 API).
func (s *LeadsService) Search(ctx context.Context, opts LeadSearchOptions) ([]any, string, error) {
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
	setOptionalInt(query, "person_id", opts.PersonID)
	setOptionalInt(query, "organization_id", opts.OrganizationID)
	setOptional(query, "include_fields", joinFields(opts.IncludeFields))
	setOptional(query, "cursor", opts.Cursor)

	resp, err := s.client.Request(ctx, "GET", "/leads/search", query, nil, "v2")
	if err != nil {
		return nil, "", err
	}
	return searchItems(resp), nextCursor(resp), nil
}

// Labels lists all lead labels (v1 API).
func (s *LeadsService) Labels(ctx context.Context) ([]any, error) {
	resp, err := s.client.Request(ctx, "GET", "/leadLabels", nil, nil, "v1")
	if err != nil {
		return nil, err
	}
	return dataList(resp), nil
}

// Sources lists all lead sources (v1 API).
func (s *LeadsService) Sources(ctx context.Context) ([]any, error) {
	resp, err := s.client.Request(ctx, "GET", "/leadSources", nil, nil, "v1")
	if err != nil {
		return nil, err
	}
	return dataList(resp), nil
}
