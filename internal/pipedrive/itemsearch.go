package pipedrive

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// validItemTypes are the entity types the cross-entity search can cover.
var validItemTypes = map[string]bool{
	"deal":            true,
	"person":          true,
	"organization":    true,
	"product":         true,
	"lead":            true,
	"file":            true,
	"mail_attachment": true,
	"project":         true,
}

// ItemSearchOptions are the parameters of a cross-entity search.
type ItemSearchOptions struct {
	Term                  string
	ItemTypes             []string
	Fields                []string
	SearchForRelatedItems bool
	ExactMatch            bool
	IncludeFields         []string
	Limit                 int
	Cursor                string
}

// FieldSearchOptions are the parameters of a single-field search.
type FieldSearchOptions struct {
	Term       string
	EntityType string
	Field      string
	Match      string
	Limit      int
	Cursor     string
}

// ItemSearchResults is a search result page with per-type counts.
type ItemSearchResults struct {
	Items               []any  `json:"items"`
	TotalCount          int    `json:"total_count"`
	DealCount           int    `json:"deal_count"`
	PersonCount         int    `json:"person_count"`
	OrganizationCount   int    `json:"organization_count"`
	ProductCount        int    `json:"product_count"`
	LeadCount           int    `json:"lead_count"`
	FileCount           int    `json:"file_count"`
	MailAttachmentCount int    `json:"mail_attachment_count"`
	ProjectCount        int    `json:"project_count"`
	NextCursor          string `json:"next_cursor,omitempty"`
}

// ItemSearchService accesses the v2 /itemSearch endpoints.
type ItemSearchService struct {
	client *Client
}

// Search runs a term search across multiple entity types and tallies the
// results per type.
func (s *ItemSearchService) Search(ctx context.Context, opts ItemSearchOptions) (*ItemSearchResults, error) {
	term := strings.TrimSpace(opts.Term)
	minLen := 2
	if opts.ExactMatch {
		minLen = 1
	}
	if len(term) < minLen {
		return nil, fmt.Errorf("search term must be at least %d characters long", minLen)
	}
	if opts.Limit < 1 || opts.Limit > 500 {
		return nil, fmt.Errorf("invalid limit: %d, must be between 1 and 500", opts.Limit)
	}
	for _, it := range opts.ItemTypes {
		if !validItemTypes[it] {
			return nil, fmt.Errorf("invalid item type: %s, must be one of: deal, person, organization, product, lead, file, mail_attachment, project", it)
		}
	}

	query := url.Values{}
	query.Set("term", term)
	query.Set("limit", strconv.Itoa(opts.Limit))
	setOptional(query, "item_types", joinFields(opts.ItemTypes))
	setOptional(query, "fields", joinFields(opts.Fields))
	if opts.SearchForRelatedItems {
		setOptionalBool(query, "search_for_related_items", true)
	}
	if opts.ExactMatch {
		setOptionalBool(query, "exact_match", true)
	}
	setOptional(query, "include_fields", joinFields(opts.IncludeFields))
	setOptional(query, "cursor", opts.Cursor)

	resp, err := s.client.Request(ctx, "GET", "/itemSearch", query, nil, "v2")
	if err != nil {
		return nil, err
	}
	results := tallyResults(searchItems(resp))
	results.NextCursor = nextCursor(resp)
	return results, nil
}

// SearchField searches a single field of one entity type.
func (s *ItemSearchService) SearchField(ctx context.Context, opts FieldSearchOptions) ([]any, string, error) {
	term := strings.TrimSpace(opts.Term)
	if len(term) < 2 {
		return nil, "", fmt.Errorf("search term must be at least %d characters long", 2)
	}
	switch opts.EntityType {
	case "deal", "person", "organization", "product", "lead", "project":
	default:
		return nil, "", fmt.Errorf("invalid entity type: %s, must be one of: deal, person, organization, product, lead, project", opts.EntityType)
	}
	if opts.Field == "" {
		return nil, "", fmt.Errorf("field cannot be empty")
	}
	match := opts.Match
	if match == "" {
		match = "exact"
	}
	switch match {
	case "exact", "beginning", "middle":
	default:
		return nil, "", fmt.Errorf("invalid match: %s, must be one of: exact, beginning, middle", opts.Match)
	}
	if opts.Limit < 1 || opts.Limit > 500 {
		return nil, "", fmt.Errorf("invalid limit: %d, must be between 1 and 500", opts.Limit)
	}

	query := url.Values{}
	query.Set("term", term)
	query.Set("entity_type", opts.EntityType)
	query.Set("field", opts.Field)
	query.Set("match", match)
	query.Set("limit", strconv.Itoa(opts.Limit))
	setOptional(query, "cursor", opts.Cursor)

	resp, err := s.client.Request(ctx, "GET", "/itemSearch/field", query, nil, "v2")
	if err != nil {
		return nil, "", err
	}
	return dataList(resp), nextCursor(resp), nil
}

// tallyResults counts the items of each entity type in a result page.
func tallyResults(items []any) *ItemSearchResults {
	results := &ItemSearchResults{Items: items, TotalCount: len(items)}
	if items == nil {
		results.Items = []any{}
	}
	for _, raw := range items {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		item, ok := entry["item"].(map[string]any)
		if !ok {
			continue
		}
		itemType, _ := item["type"].(string)
		switch itemType {
		case "deal":
			results.DealCount++
		case "person":
			results.PersonCount++
		case "organization":
			results.OrganizationCount++
		case "product":
			results.ProductCount++
		case "lead":
			results.LeadCount++
		case "file":
			results.FileCount++
		case "mail_attachment":
			results.MailAttachmentCount++
		case "project":
			results.ProjectCount++
		}
	}
	return results
}
