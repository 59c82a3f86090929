package pipedrive

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

var validDealVisibility = map[int]bool{0: true, 1: true, 3: true, 7: true}

// DealInput carries the writable fields of a deal.
type DealInput struct {
	Title             *string  `json:"title,omitempty"`
	Value             *float64 `json:"value,omitempty"`
	Currency          *string  `json:"currency,omitempty"`
	PersonID          *int     `json:"person_id,omitempty"`
	OrgID             *int     `json:"org_id,omitempty"`
	PipelineID        *int     `json:"pipeline_id,omitempty"`
	StageID           *int     `json:"stage_id,omitempty"`
	OwnerID           *int     `json:"owner_id,omitempty"`
	Status            *string  `json:"status,omitempty"`
	LostReason        *string  `json:"lost_reason,omitempty"`
	Probability       *int     `json:"probability,omitempty"`
	ExpectedCloseDate *string  `json:"expected_close_date,omitempty"`
	VisibleTo         *int     `json:"visible_to,omitempty"`
	LabelIDs          []int    `json:"label_ids,omitempty"`
}

// Validate enforces the cross-field rules shared by create and update.
func (d *DealInput) Validate() error {
	if d.Status != nil {
		switch *d.Status {
		case "open", "won", "lost":
		default:
			return fmt.Errorf("invalid deal status: %s, must be one of: open, won, lost", *d.Status)
		}
	}
	if d.LostReason != nil && (d.Status == nil || *d.Status != "lost") {
		return errors.New("lost_reason can only be set when status is 'lost'")
	}
	if d.Probability != nil && (*d.Probability < 0 || *d.Probability > 100) {
		return fmt.Errorf("invalid probability: %d, must be between 0 and 100", *d.Probability)
	}
	if d.Currency != nil {
		cur := strings.ToUpper(strings.TrimSpace(*d.Currency))
		if len(cur) != 3 {
			return fmt.Errorf("invalid currency: %s, must be a 3-letter ISO code", *d.Currency)
		}
		d.Currency = &cur
	}
	if d.VisibleTo != nil && !validDealVisibility[*d.VisibleTo] {
		return fmt.Errorf("invalid visible_to: %d, must be one of: 0, 1, 3, 7", *d.VisibleTo)
	}
	return nil
}

func (d *DealInput) empty() bool {
	return d.Title == nil && d.Value == nil && d.Currency == nil && d.PersonID == nil &&
		d.OrgID == nil && d.PipelineID == nil && d.StageID == nil && d.OwnerID == nil &&
		d.Status == nil && d.LostReason == nil && d.Probability == nil &&
		d.ExpectedCloseDate == nil && d.VisibleTo == nil && d.LabelIDs == nil
}

// DealProductInput carries the writable fields of a product attached to a
// deal.
type DealProductInput struct {
	ProductID              *int     `json:"product_id,omitempty"`
	ItemPrice              *float64 `json:"item_price,omitempty"`
	Quantity               *float64 `json:"quantity,omitempty"`
	Discount               *float64 `json:"discount,omitempty"`
	DiscountType           *string  `json:"discount_type,omitempty"`
	Tax                    *float64 `json:"tax,omitempty"`
	TaxMethod              *string  `json:"tax_method,omitempty"`
	Comments               *string  `json:"comments,omitempty"`
	IsEnabled              *bool    `json:"is_enabled,omitempty"`
	BillingFrequency       *string  `json:"billing_frequency,omitempty"`
	BillingFrequencyCycles *int     `json:"billing_frequency_cycles,omitempty"`
	BillingStartDate       *string  `json:"billing_start_date,omitempty"`
}

// Validate enforces the pricing and billing rules for a deal product.
func (p *DealProductInput) Validate() error {
	if p.ItemPrice != nil && *p.ItemPrice <= 0 {
		return errors.New("item_price must be greater than 0")
	}
	if p.Quantity != nil && *p.Quantity <= 0 {
		return errors.New("quantity must be greater than 0")
	}
	if p.Discount != nil && *p.Discount < 0 {
		return errors.New("discount cannot be negative")
	}
	if p.Tax != nil && *p.Tax < 0 {
		return errors.New("tax cannot be negative")
	}
	if p.DiscountType != nil {
		switch *p.DiscountType {
		case "percentage", "amount":
		default:
			return fmt.Errorf("invalid discount_type: %s, must be one of: percentage, amount", *p.DiscountType)
		}
	}
	if p.TaxMethod != nil {
		switch *p.TaxMethod {
		case "inclusive", "exclusive", "none":
		default:
			return fmt.Errorf("invalid tax_method: %s, must be one of: inclusive, exclusive, none", *p.TaxMethod)
		}
	}
	if p.BillingFrequency != nil {
		switch *p.BillingFrequency {
		case "one-time":
			if p.BillingFrequencyCycles != nil {
				return errors.New("billing_frequency_cycles must be null when billing_frequency is 'one-time'")
			}
		case "weekly":
			if p.BillingFrequencyCycles == nil {
				return errors.New("billing_frequency_cycles is required when billing_frequency is 'weekly'")
			}
		case "monthly", "quarterly", "semi-annually", "annually":
		default:
			return fmt.Errorf("invalid billing_frequency: %s, must be one of: one-time, weekly, monthly, quarterly, semi-annually, annually", *p.BillingFrequency)
		}
	}
	if p.BillingFrequencyCycles != nil && (*p.BillingFrequencyCycles < 1 || *p.BillingFrequencyCycles > 208) {
		return fmt.Errorf("invalid billing_frequency_cycles: %d, must be between 1 and 208", *p.BillingFrequencyCycles)
	}
	return nil
}

func (p *DealProductInput) empty() bool {
	return p.ProductID == nil && p.ItemPrice == nil && p.Quantity == nil &&
		p.Discount == nil && p.DiscountType == nil && p.Tax == nil &&
		p.TaxMethod == nil && p.Comments == nil && p.IsEnabled == nil &&
		p.BillingFrequency == nil && p.BillingFrequencyCycles == nil &&
		p.BillingStartDate == nil
}

// DealListOptions are the filters accepted by List.
type DealListOptions struct {
	Limit         int
	Cursor        string
	FilterID      *int
	OwnerID       *int
	PersonID      *int
	OrgID         *int
	PipelineID    *int
	StageID       *int
	Status        string
	UpdatedSince  string
	UpdatedUntil  string
	SortBy        string
	SortDirection string
	IncludeFields []string
}

// DealSearchOptions are the filters accepted by Search.
type DealSearchOptions struct {
	Term          string
	Fields        []string
	ExactMatch    bool
	PersonID      *int
	OrgID         *int
	Status        string
	IncludeFields []string
	Limit         int
	Cursor        string
}

// DealsService accesses the v2 /deals endpoints, including attached
// products and search.
type DealsService struct {
	client *Client
}

// Create adds a new deal.
func (s *DealsService) Create(ctx context.Context, in *DealInput) (map[string]any, error) {
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return nil, errors.New("deal title cannot be empty")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	resp, err := s.client.Request(ctx, "POST", "/deals", nil, in, "v2")
	if err != nil {
		return nil, err
	}
	return dataMap(resp), nil
}

// Get fetches one deal by ID.
func (s *DealsService) Get(ctx context.Context, id int, includeFields []string) (map[string]any, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid deal ID: %d, must be a positive integer", id)
	}
	query := url.Values{}
	setOptional(query, "include_fields", joinFields(includeFields))
	resp, err := s.client.Request(ctx, "GET", fmt.Sprintf("/deals/%d", id), query, nil, "v2")
	if err != nil {
		return nil, err
	}
	return dataMap(resp), nil
}

// List returns one page of deals and the next-page cursor.
func (s *DealsService) List(ctx context.Context, opts DealListOptions) ([]any, string, error) {
	if opts.Limit < 1 || opts.Limit > 500 {
		return nil, "", fmt.Errorf("invalid limit: %d, must be between 1 and 500", opts.Limit)
	}
	if opts.Status != "" {
		switch opts.Status {
		case "open", "won", "lost", "deleted":
		default:
			return nil, "", fmt.Errorf("invalid status filter: %s, must be one of: open, won, lost, deleted", opts.Status)
		}
	}
	query := url.Values{}
	query.Set("limit", strconv.Itoa(opts.Limit))
	setOptional(query, "cursor", opts.Cursor)
	setOptionalInt(query, "filter_id", opts.FilterID)
	setOptionalInt(query, "owner_id", opts.OwnerID)
	setOptionalInt(query, "person_id", opts.PersonID)
	setOptionalInt(query, "org_id", opts.OrgID)
	setOptionalInt(query, "pipeline_id", opts.PipelineID)
	setOptionalInt(query, "stage_id", opts.StageID)
	setOptional(query, "status", opts.Status)
	setOptional(query, "updated_since", opts.UpdatedSince)
	setOptional(query, "updated_until", opts.UpdatedUntil)
	setOptional(query, "sort_by", opts.SortBy)
	setOptional(query, "sort_direction", opts.SortDirection)
	setOptional(query, "include_fields", joinFields(opts.IncludeFields))

	resp, err := s.client.Request(ctx, "GET", "/deals", query, nil, "v2")
	if err != nil {
		return nil, "", err
	}
	return dataList(resp), nextCursor(resp), nil
}

// Update patches an existing deal. At least one field must be set.
func (s *DealsService) Update(ctx context.Context, id int, in *DealInput) (map[string]any, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid deal ID: %d, must be a positive integer", id)
	}
	if in.empty() {
		return nil, errors.New("at least one field must be provided for updating a deal")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	resp, err := s.client.Request(ctx, "PATCH", fmt.Sprintf("/deals/%d", id), nil, in, "v2")
	if err != nil {
		return nil, err
	}
	return dataMap(resp), nil
}

// Delete removes a deal.
func (s *DealsService) Delete(ctx context.Context, id int) (map[string]any, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid deal ID: %d, must be a positive integer", id)
	}
	resp, err := s.client.Request(ctx, "DELETE", fmt.Sprintf("/deals/%d", id), nil, nil, "v2")
	if err != nil {
		return nil, err
	}
	return dataMap(resp), nil
}

// Search performs a term search over deals.
func (s *DealsService) Search(ctx context.Context, opts DealSearchOptions) ([]any, string, error) {
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
	if opts.Status != "" {
		switch opts.Status {
		case "open", "won", "lost":
		default:
			return nil, "", fmt.Errorf("invalid status filter: %s, must be one of: open, won, lost", opts.Status)
		}
	}

	query := url.Values{}
	query.Set("term", term)
	query.Set("limit", strconv.Itoa(opts.Limit))
	setOptional(query, "fields", joinFields(opts.Fields))
	if opts.ExactMatch {
		setOptionalBool(query, "exact_match", true)
	}
	setOptionalInt(query, "person_id", opts.PersonID)
	setOptionalInt(query, "organization_id", opts.OrgID)
	setOptional(query, "status", opts.Status)
	setOptional(query, "include_fields", joinFields(opts.IncludeFields))
	setOptional(query, "cursor", opts.Cursor)

	resp, err := s.client.Request(ctx, "GET", "/deals/search", query, nil, "v2")
	if err != nil {
		return nil, "", err
	}
	return searchItems(resp), nextCursor(resp), nil
}

// Products lists the products attached to a deal.
func (s *DealsService) Products(ctx context.Context, dealID int, limit int, cursor string) ([]any, string, error) {
	if dealID <= 0 {
		return nil, "", fmt.Errorf("invalid deal ID: %d, must be a positive integer", dealID)
	}
	if limit < 1 || limit > 500 {
		return nil, "", fmt.Errorf("invalid limit: %d, must be between 1 and 500", limit)
	}
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	setOptional(query, "cursor", cursor)
	resp, err := s.client.Request(ctx, "GET", fmt.Sprintf("/deals/%d/products", dealID), query, nil, "v2")
	if err != nil {
		return nil, "", err
	}
	return dataList(resp), nextCursor(resp), nil
}

// AddProduct attaches a product to a deal. product_id, item_price, and
// quantity are required.
func (s *DealsService) AddProduct(ctx context.Context, dealID int, in *DealProductInput) (map[string]any, error) {
	if dealID <= 0 {
		return nil, fmt.Errorf("invalid deal ID: %d, must be a positive integer", dealID)
	}
	if in.ProductID == nil || *in.ProductID <= 0 {
		return nil, errors.New("product_id must be a positive integer")
	}
	if in.ItemPrice == nil {
		return nil, errors.New("item_price is required when attaching a product")
	}
	if in.Quantity == nil {
		return nil, errors.New("quantity is required when attaching a product")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	resp, err := s.client.Request(ctx, "POST", fmt.Sprintf("/deals/%d/products", dealID), nil, in, "v2")
	if err != nil {
		return nil, err
	}
	return dataMap(resp), nil
}

// UpdateProduct patches a product attachment on a deal.
func (s *DealsService) UpdateProduct(ctx context.Context, dealID, attachmentID int, in *DealProductInput) (map[string]any, error) {
	if dealID <= 0 {
		return nil, fmt.Errorf("invalid deal ID: %d, must be a positive integer", dealID)
	}
	if attachmentID <= 0 {
		return nil, fmt.Errorf("invalid product attachment ID: %d, must be a positive integer", attachmentID)
	}
	if in.empty() {
		return nil, errors.New("at least one field must be provided for updating a deal product")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	resp, err := s.client.Request(ctx, "PATCH", fmt.Sprintf("/deals/%d/products/%d", dealID, attachmentID), nil, in, "v2")
	if err != nil {
		return nil, err
	}
	return dataMap(resp), nil
}

// DeleteProduct detaches a product from a deal.
func (s *DealsService) DeleteProduct(ctx context.Context, dealID, attachmentID int) (map[string]any, error) {
	if dealID <= 0 {
		return nil, fmt.Errorf("invalid deal ID: %d, must be a positive integer", dealID)
	}
	if attachmentID <= 0 {
		return nil, fmt.Errorf("invalid product attachment ID: %d, must be a positive integer", attachmentID)
	}
	resp, err := s.client.Request(ctx, "DELETE", fmt.Sprintf("/deals/%d/products/%d", dealID, attachmentID), nil, nil, "v2")
	if err != nil {
		return nil, err
	}
	return dataMap(resp), nil
}

// searchItems extracts data.items from a search response envelope.
func searchItems(resp map[string]any) []any {
	data, ok := resp["data"].(map[string]any)
	if !ok {
		return nil
	}
	items, _ := data["items"].([]any)
	return items
}
