// Package pipedrivetest provides an in-process fake of the Pipedrive REST
// API for client tests. The fake serves canned envelope responses and
// records the requests it receives, and its HTTP client transparently
// rewrites https://{domain}.pipedrive.com URLs to the local test server.
package pipedrivetest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
)

// Request is one recorded call to the fake API.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   map[string]any
}

// Server is a fake Pipedrive API backed by httptest.
type Server struct {
	Mux *http.ServeMux

	server *httptest.Server

	mu       sync.Mutex
	requests []Request
}

// New starts a fake API server that is shut down when the test ends.
func New(t *testing.T) *Server {
	t.Helper()
	s := &Server{Mux: http.NewServeMux()}
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.record(r)
		s.Mux.ServeHTTP(w, r)
	}))
	t.Cleanup(s.server.Close)
	return s
}

func (s *Server) record(r *http.Request) {
	req := Request{Method: r.Method, Path: r.URL.Path, Query: r.URL.Query(), Header: r.Header.Clone()}
	if raw, err := io.ReadAll(r.Body); err == nil && len(raw) > 0 {
		var body map[string]any
		if json.Unmarshal(raw, &body) == nil {
			req.Body = body
		}
	}
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
}

// LastRequest returns the most recent recorded request.
func (s *Server) LastRequest(t *testing.T) Request {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		t.Fatal("no requests recorded")
	}
	return s.requests[len(s.requests)-1]
}

// Handle registers a canned JSON response for method+pattern (ServeMux
// "METHOD /path" syntax).
func (s *Server) Handle(pattern string, status int, body any) {
	s.Mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	})
}

// HandleData registers a 200 success envelope wrapping data.
func (s *Server) HandleData(pattern string, data any) {
	s.Handle(pattern, http.StatusOK, map[string]any{"success": true, "data": data})
}

// HandlePage registers a 200 success envelope with a next_cursor.
func (s *Server) HandlePage(pattern string, data any, cursor string) {
	body := map[string]any{"success": true, "data": data}
	if cursor != "" {
		body["additional_data"] = map[string]any{"next_cursor": cursor}
	}
	s.Handle(pattern, http.StatusOK, body)
}

// HandleError registers an error envelope with the given HTTP status.
func (s *Server) HandleError(pattern string, status int, message, info string) {
	body := map[string]any{"success": false, "error": message}
	if info != "" {
		body["error_info"] = info
	}
	s.Handle(pattern, status, body)
}

// HTTPClient returns a client whose transport rewrites every request to the
// fake server, preserving path and query so handlers can assert on them.
func (s *Server) HTTPClient() *http.Client {
	target, _ := url.Parse(s.server.URL)
	return &http.Client{Transport: rewriteTransport{target: target}}
}

type rewriteTransport struct {
	target *url.URL
}

func (t rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = t.target.Scheme
	req.URL.Host = t.target.Host
	return http.DefaultTransport.RoundTrip(req)
}
