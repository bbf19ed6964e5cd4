// Package apitest provides a fake platform backend for tests.
package apitest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

const AdminScopeHeader = "X-Admin-Scope"

// Recorded is one request as seen by the fake backend
type Recorded struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	AdminScope    string
	RequestID     string
	Body          string
}

// Bearer returns the token part of the Authorization header
func (r Recorded) Bearer() string {
	return strings.TrimPrefix(r.Authorization, "Bearer ")
}

type Server struct {
	*httptest.Server
	Router   chi.Router
	lock     sync.Mutex
	requests []Recorded
}

// New starts a fake backend; handlers are registered on Router before use
func New(t *testing.T) *Server {
	t.Helper()
	s := &Server{}
	r := chi.NewRouter()
	r.Use(s.recordMiddleware)
	s.Router = r
	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

func (s *Server) recordMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(strings.NewReader(string(body)))
		}
		s.lock.Lock()
		s.requests = append(s.requests, Recorded{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			AdminScope:    r.Header.Get(AdminScopeHeader),
			RequestID:     r.Header.Get("X-Request-ID"),
			Body:          string(body),
		})
		s.lock.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) Requests() []Recorded {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]Recorded(nil), s.requests...)
}

// Count returns how many requests matched method and path
func (s *Server) Count(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// Matching returns the requests for method and path in arrival order
func (s *Server) Matching(method, path string) []Recorded {
	var out []Recorded
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// WriteData writes a success envelope
func WriteData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  "success",
		"message": "ok",
		"data":    data,
	})
}

// WriteError writes a failure envelope
func WriteError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  "error",
		"message": message,
		"error":   map[string]any{"code": status},
	})
}
