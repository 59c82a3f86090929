package pipedrive

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/crmhub/pipedrive-mcp/internal/pipedrivetest"
)

func testClient(t *testing.T) (*Client, *pipedrivetest.Server) {
	t.Helper()
	fake := pipedrivetest.New(t)
	client, err := New("token123456", "testco", WithHTTPClient(fake.HTTPClient()))
	require.NoError(t, err)
	return client, fake
}

// ---------------------------------------------------------------------------
// Construction and URL building
// ---------------------------------------------------------------------------

func TestNewRequiresDomain(t *testing.T) {
	_, err := New("token123456", "")
	assert.Error(t, err)
}

func TestNewRequiresTokenOrSource(t *testing.T) {
	_, err := New("", "testco")
	assert.Error(t, err)
}

func TestURLVersions(t *testing.T) {
	client, err := New("token123456", "testco")
	require.NoError(t, err)

	u, err := client.URL("/deals", "v2")
	require.NoError(t, err)
	assert.Equal(t, "https://testco.pipedrive.com/api/v2/deals", u)

	u, err = client.URL("/leads", "v1")
	require.NoError(t, err)
	assert.Equal(t, "https://testco.pipedrive.com/v1/leads", u)

	// Default version is v2.
	u, err = client.URL("/persons", "")
	require.NoError(t, err)
	assert.Equal(t, "https://testco.pipedrive.com/api/v2/persons", u)

	_, err = client.URL("/deals", "v3")
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// Request: auth, query filtering, envelope handling
// ---------------------------------------------------------------------------

func TestRequestAddsAPIToken(t *testing.T) {
	client, fake := testClient(t)
	fake.HandleData("GET /api/v2/deals/1", map[string]any{"id": 1})

	_, err := client.Deals.Get(context.Background(), 1, nil)
	require.NoError(t, err)

	req := fake.LastRequest(t)
	assert.Equal(t, "token123456", req.Query.Get("api_token"))
}

func TestRequestDropsEmptyQueryValues(t *testing.T) {
	client, fake := testClient(t)
	fake.HandlePage("GET /api/v2/deals", []any{}, "")

	_, _, err := client.Deals.List(context.Background(), DealListOptions{Limit: 100})
	require.NoError(t, err)

	req := fake.LastRequest(t)
	assert.Equal(t, "100", req.Query.Get("limit"))
	_, hasCursor := req.Query["cursor"]
	assert.False(t, hasCursor, "empty cursor should not be sent")
	_, hasStatus := req.Query["status"]
	assert.False(t, hasStatus, "empty status should not be sent")
}

func TestRequestHTTPErrorStatus(t *testing.T) {
	client, fake := testClient(t)
	fake.HandleError("GET /api/v2/deals/99", http.StatusNotFound, "Deal not found", "The deal does not exist")

	_, err := client.Deals.Get(context.Background(), 99, nil)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "Deal not found")
	assert.Equal(t, "The deal does not exist", apiErr.ErrorInfo)
}

func TestRequestSuccessFalse(t *testing.T) {
	client, fake := testClient(t)
	fake.Handle("GET /api/v2/deals/7", http.StatusOK, map[string]any{
		"success": false,
		"error":   "scope and url mismatch",
	})

	_, err := client.Deals.Get(context.Background(), 7, nil)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "scope and url mismatch", apiErr.Message)
	assert.Equal(t, http.StatusOK, apiErr.StatusCode)
}

func TestRequestNonJSONErrorBody(t *testing.T) {
	client, fake := testClient(t)
	fake.Mux.HandleFunc("GET /api/v2/deals/3", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	})

	_, err := client.Deals.Get(context.Background(), 3, nil)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Contains(t, apiErr.Response["raw_error"], "bad gateway")
}

func TestRequestTransportError(t *testing.T) {
	client, err := New("token123456", "testco", WithHTTPClient(&http.Client{
		Transport: failingTransport{},
	}))
	require.NoError(t, err)

	_, err = client.Deals.Get(context.Background(), 1, nil)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Zero(t, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "request failed")
}

type failingTransport struct{}

func (failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

// ---------------------------------------------------------------------------
// Pagination
// ---------------------------------------------------------------------------

func TestListReturnsNextCursor(t *testing.T) {
	client, fake := testClient(t)
	fake.HandlePage("GET /api/v2/activities", []any{
		map[string]any{"id": 1.0},
		map[string]any{"id": 2.0},
	}, "next-page-token")

	items, cursor, err := client.Activities.List(context.Background(), ActivityListOptions{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, "next-page-token", cursor)
}

func TestListLastPageHasEmptyCursor(t *testing.T) {
	client, fake := testClient(t)
	fake.HandlePage("GET /api/v2/activities", []any{}, "")

	_, cursor, err := client.Activities.List(context.Background(), ActivityListOptions{Limit: 100})
	require.NoError(t, err)
	assert.Empty(t, cursor)
}

// ---------------------------------------------------------------------------
// OAuth2 bearer auth
// ---------------------------------------------------------------------------

func TestTokenSourceSendsBearerAuth(t *testing.T) {
	fake := pipedrivetest.New(t)
	fake.HandleData("GET /api/v2/deals/1", map[string]any{"id": 1})

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "access-abc", TokenType: "Bearer"})
	client, err := New("", "testco", WithTokenSource(ts), WithHTTPClient(fake.HTTPClient()))
	require.NoError(t, err)

	_, err = client.Deals.Get(context.Background(), 1, nil)
	require.NoError(t, err)

	req := fake.LastRequest(t)
	assert.Equal(t, "Bearer access-abc", req.Header.Get("Authorization"))
	// Bearer auth replaces the api_token query parameter entirely.
	assert.Empty(t, req.Query.Get("api_token"))
}

func TestTokenSourceFailureIsAPIError(t *testing.T) {
	fake := pipedrivetest.New(t)

	client, err := New("", "testco",
		WithTokenSource(failingTokenSource{}),
		WithHTTPClient(fake.HTTPClient()))
	require.NoError(t, err)

	_, err = client.Deals.Get(context.Background(), 1, nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Message, "OAuth token")
}

type failingTokenSource struct{}

func (failingTokenSource) Token() (*oauth2.Token, error) {
	return nil, errors.New("token endpoint unreachable")
}
