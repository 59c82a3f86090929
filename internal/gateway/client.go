// Package gateway is a client for the Codex Gateway: a JSON-RPC-over-HTTP
// conversation service with an exec endpoint and an interactive WebSocket
// mode.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync/atomic"

	"github.com/coder/websocket"
)

// JSONRPCRequest is a JSON-RPC 2.0 request.
type JSONRPCRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// JSONRPCResponse is a JSON-RPC 2.0 response.
type JSONRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *JSONRPCError   `json:"error,omitempty"`
}

// JSONRPCError is the error member of a JSON-RPC response.
type JSONRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *JSONRPCError) Error() string {
	return fmt.Sprintf("gateway error %d: %s", e.Code, e.Message)
}

// Event is one entry of an exec-mode response.
type Event struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
	Tool    string `json:"tool,omitempty"`
	Message string `json:"message,omitempty"`
}

// Client talks to one gateway instance.
type Client struct {
	baseURL    string
	apiKey     string
	sessionID  string
	httpClient *http.Client
	nextID     atomic.Int64
}

// NewFromEnv builds a client from GATEWAY_URL and GATEWAY_KEY (or
// GATEWAY_API_KEY). The URL argument, when non-empty, wins over the env.
func NewFromEnv(rawURL string) (*Client, error) {
	if rawURL == "" {
		rawURL = os.Getenv("GATEWAY_URL")
	}
	if rawURL == "" {
		rawURL = "http://localhost:8080"
	}
	key := os.Getenv("GATEWAY_KEY")
	if key == "" {
		key = os.Getenv("GATEWAY_API_KEY")
	}
	return New(rawURL, key)
}

// New builds a client for the given base URL. WebSocket URLs are accepted
// and normalized to their HTTP form.
func New(rawURL, apiKey string) (*Client, error) {
	base, err := NormalizeHTTP(rawURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL:    base,
		apiKey:     apiKey,
		sessionID:  fmt.Sprintf("cli-%d", os.Getpid()),
		httpClient: &http.Client{},
	}, nil
}

// NormalizeHTTP rewrites ws/wss URLs to http/https and strips any trailing
// slash.
func NormalizeHTTP(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("invalid gateway URL %q: %w", rawURL, err)
	}
	switch u.Scheme {
	case "http", "https":
	case "ws":
		u.Scheme = "http"
	case "wss":
		u.Scheme = "https"
	default:
		return "", fmt.Errorf("invalid gateway URL %q: scheme must be http(s) or ws(s)", rawURL)
	}
	return strings.TrimRight(u.String(), "/"), nil
}

// WebSocketURL is the ws/wss form of the base URL with the /ws path and the
// API key attached.
func (c *Client) WebSocketURL() string {
	wsURL := c.baseURL
	if strings.HasPrefix(wsURL, "https://") {
		wsURL = "wss://" + strings.TrimPrefix(wsURL, "https://")
	} else {
		wsURL = "ws://" + strings.TrimPrefix(wsURL, "http://")
	}
	wsURL += "/ws"
	if c.apiKey != "" {
		wsURL += "?api_key=" + url.QueryEscape(c.apiKey)
	}
	return wsURL
}

func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("gateway request: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	return raw, resp.StatusCode, nil
}

// Health checks GET /health and returns an error unless the gateway reports
// itself healthy.
func (c *Client) Health(ctx context.Context) error {
	raw, status, err := c.do(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("gateway unhealthy: http status %d", status)
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return fmt.Errorf("decode health response: %w", err)
	}
	if body.Status != "healthy" {
		return fmt.Errorf("gateway unhealthy: status %q", body.Status)
	}
	return nil
}

// Prompt sends one conversation.prompt call and returns the raw JSON-RPC
// result.
func (c *Client) Prompt(ctx context.Context, prompt string) (json.RawMessage, error) {
	req := &JSONRPCRequest{
		JSONRPC: "2.0",
		ID:      int(c.nextID.Add(1)),
		Method:  "conversation.prompt",
		Params: map[string]any{
			"prompt":     prompt,
			"session_id": c.sessionID,
		},
	}
	raw, status, err := c.do(ctx, http.MethodPost, "/jsonrpc", req)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("http status %d: %s", status, string(raw))
	}
	var resp JSONRPCResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	if resp.ID != req.ID {
		return nil, fmt.Errorf("response id %d does not match request id %d", resp.ID, req.ID)
	}
	return resp.Result, nil
}

// Exec runs a one-shot prompt through POST /exec and returns the event
// stream the gateway produced.
func (c *Client) Exec(ctx context.Context, prompt string) ([]Event, error) {
	raw, status, err := c.do(ctx, http.MethodPost, "/exec", map[string]any{
		"prompt":     prompt,
		"session_id": c.sessionID,
	})
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("http status %d: %s", status, string(raw))
	}
	var body struct {
		Events []Event `json:"events"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("decode exec response: %w", err)
	}
	return body.Events, nil
}

// Dial opens the interactive WebSocket connection.
func (c *Client) Dial(ctx context.Context) (*websocket.Conn, error) {
	conn, _, err := websocket.Dial(ctx, c.WebSocketURL(), &websocket.DialOptions{
		HTTPClient: c.httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("dial websocket: %w", err)
	}
	return conn, nil
}
