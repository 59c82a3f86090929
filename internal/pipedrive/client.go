// Package pipedrive is a typed client for the Pipedrive REST API (v1 and
// v2). A single Client normalizes URL construction, auth, and the three
// heterogeneous failure shapes (transport error, HTTP error status, and
// application-level "success": false bodies) into one *APIError; per-entity
// services hang off it and expose the CRUD, list, and search operations the
// MCP tool surface needs.
package pipedrive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

const defaultAPIVersion = "v2"

// Client holds the shared transport state for all Pipedrive API calls.
type Client struct {
	token       string
	domain      string
	apiVersion  string
	httpClient  *http.Client
	tokenSource oauth2.TokenSource
	logger      *slog.Logger

	logRequests  bool
	logResponses bool

	Activities    *ActivitiesService
	Deals         *DealsService
	Leads         *LeadsService
	Persons       *PersonsService
	Organizations *OrganizationsService
	ItemSearch    *ItemSearchService
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTokenSource switches auth from the api_token query parameter to an
// OAuth2 bearer token supplied by ts. When set, the api_token may be empty.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(c *Client) { c.tokenSource = ts }
}

// WithLogger sets the structured logger used for request/response logging.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithRequestLogging enables debug logging of outgoing requests and/or raw
// response bodies.
func WithRequestLogging(requests, responses bool) Option {
	return func(c *Client) {
		c.logRequests = requests
		c.logResponses = responses
	}
}

// New creates a Client for the given company domain. The api_token is
// required unless WithTokenSource is used.
func New(apiToken, companyDomain string, opts ...Option) (*Client, error) {
	if companyDomain == "" {
		return nil, errors.New("pipedrive: company domain is required")
	}
	c := &Client{
		token:      apiToken,
		domain:     companyDomain,
		apiVersion: defaultAPIVersion,
		httpClient: http.DefaultClient,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.token == "" && c.tokenSource == nil {
		return nil, errors.New("pipedrive: API token is required")
	}

	c.Activities = &ActivitiesService{client: c}
	c.Deals = &DealsService{client: c}
	c.Leads = &LeadsService{client: c}
	c.Persons = &PersonsService{client: c}
	c.Organizations = &OrganizationsService{client: c}
	c.ItemSearch = &ItemSearchService{client: c}
	return c, nil
}

// URL builds the fully qualified endpoint URL for the given API version.
// Version "" means the client default ("v2"). Note the asymmetry inherited
// from Pipedrive: v2 lives under /api/v2, v1 under a bare /v1 prefix.
func (c *Client) URL(endpoint, version string) (string, error) {
	if version == "" {
		version = c.apiVersion
	}
	switch version {
	case "v2":
		return fmt.Sprintf("https://%s.pipedrive.com/api/v2%s", c.domain, endpoint), nil
	case "v1":
		return fmt.Sprintf("https://%s.pipedrive.com/v1%s", c.domain, endpoint), nil
	default:
		return "", fmt.Errorf("pipedrive: unsupported API version: %s", version)
	}
}

// Request performs one API call and returns the parsed JSON envelope. Query
// parameters with empty values are dropped. Any failure — network, HTTP
// status, or a body with "success": false — is returned as an *APIError.
func (c *Client) Request(ctx context.Context, method, endpoint string, query url.Values, body any, version string) (map[string]any, error) {
	target, err := c.URL(endpoint, version)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	if c.tokenSource == nil {
		params.Set("api_token", c.token)
	}
	for key, values := range query {
		for _, v := range values {
			if v != "" {
				params.Add(key, v)
			}
		}
	}
	target += "?" + params.Encode()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("pipedrive: marshal payload: %w", err)
		}
		if c.logRequests {
			c.logger.Debug("pipedrive request payload", "method", method, "endpoint", endpoint, "payload", string(payload))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("pipedrive: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.tokenSource != nil {
		tok, err := c.tokenSource.Token()
		if err != nil {
			return nil, &APIError{Message: fmt.Sprintf("obtaining OAuth token: %v", err)}
		}
		tok.SetAuthHeader(req)
	}

	if c.logRequests {
		c.logger.Debug("pipedrive request", "method", method, "url", target)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Message: fmt.Sprintf("reading response body: %v", err), StatusCode: resp.StatusCode}
	}
	if c.logResponses {
		c.logger.Debug("pipedrive response", "status", resp.StatusCode, "body", truncate(string(raw), 1000))
	}

	var parsed map[string]any
	parseErr := json.Unmarshal(raw, &parsed)

	if resp.StatusCode >= 400 {
		apiErr := &APIError{
			Message:    fmt.Sprintf("HTTP error %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
		if parseErr == nil {
			if msg, ok := parsed["error"].(string); ok && msg != "" {
				apiErr.Message = fmt.Sprintf("HTTP error %d: %s", resp.StatusCode, msg)
			}
			if info, ok := parsed["error_info"].(string); ok {
				apiErr.ErrorInfo = info
			}
			apiErr.Response = parsed
		} else {
			apiErr.ErrorInfo = "Response body was not valid JSON."
			apiErr.Response = map[string]any{"raw_error": string(raw)}
		}
		return nil, apiErr
	}

	if parseErr != nil {
		return nil, &APIError{
			Message:    fmt.Sprintf("decoding response: %v", parseErr),
			StatusCode: resp.StatusCode,
			Response:   map[string]any{"raw_error": string(raw)},
		}
	}

	if success, _ := parsed["success"].(bool); !success {
		msg := "Unknown Pipedrive API error"
		if m, ok := parsed["error"].(string); ok && m != "" {
			msg = m
		}
		info, _ := parsed["error_info"].(string)
		return nil, &APIError{
			Message:    msg,
			StatusCode: resp.StatusCode,
			ErrorInfo:  info,
			Response:   parsed,
		}
	}

	return parsed, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// dataMap extracts the object payload from a response envelope.
func dataMap(resp map[string]any) map[string]any {
	if data, ok := resp["data"].(map[string]any); ok {
		return data
	}
	return map[string]any{}
}

// dataList extracts the array payload from a response envelope.
func dataList(resp map[string]any) []any {
	if data, ok := resp["data"].([]any); ok {
		return data
	}
	return nil
}

// nextCursor extracts additional_data.next_cursor, or "" when absent.
func nextCursor(resp map[string]any) string {
	additional, ok := resp["additional_data"].(map[string]any)
	if !ok {
		return ""
	}
	cursor, _ := additional["next_cursor"].(string)
	return cursor
}

// String, Int, Float, and Bool allocate pointers for optional input fields.
func String(v string) *string { return &v }

func Int(v int) *int { return &v }

func Float(v float64) *float64 { return &v }

func Bool(v bool) *bool { return &v }

func joinFields(fields []string) string {
	return strings.Join(fields, ",")
}
