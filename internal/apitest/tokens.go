package apitest

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
)

// Tokens simulates the backend's token bookkeeping: one current access token
// per refresh token, and a fixed admin token.
type Tokens struct {
	lock        sync.Mutex
	current     map[string]string // refresh -> current access
	valid       map[string]bool   // access -> still valid
	adminTokens map[string]bool
	issued      int
}

func NewTokens() *Tokens {
	return &Tokens{
		current:     make(map[string]string),
		valid:       make(map[string]bool),
		adminTokens: make(map[string]bool),
	}
}

// IssueUser returns a fresh access/refresh pair
func (t *Tokens) IssueUser() (access, refresh string) {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.issued++
	access = fmt.Sprintf("access-%d", t.issued)
	refresh = fmt.Sprintf("refresh-%d", t.issued)
	t.current[refresh] = access
	t.valid[access] = true
	return access, refresh
}

func (t *Tokens) IssueAdmin() string {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.issued++
	tok := fmt.Sprintf("admin-%d", t.issued)
	t.adminTokens[tok] = true
	return tok
}

// Expire invalidates an access token so the next use gets 401 "Token expired"
func (t *Tokens) Expire(access string) {
	t.lock.Lock()
	defer t.lock.Unlock()
	delete(t.valid, access)
}

// RevokeRefresh makes the refresh token unusable
func (t *Tokens) RevokeRefresh(refresh string) {
	t.lock.Lock()
	defer t.lock.Unlock()
	delete(t.current, refresh)
}

// Rotate mints a new access token for refresh
func (t *Tokens) Rotate(refresh string) (string, bool) {
	t.lock.Lock()
	defer t.lock.Unlock()
	old, ok := t.current[refresh]
	if !ok {
		return "", false
	}
	delete(t.valid, old)
	t.issued++
	access := fmt.Sprintf("access-%d", t.issued)
	t.current[refresh] = access
	t.valid[access] = true
	return access, true
}

func (t *Tokens) validUser(access string) bool {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.valid[access]
}

func (t *Tokens) validAdmin(tok string) bool {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.adminTokens[tok]
}

// RequireUser rejects requests without a valid user access token
func (t *Tokens) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		access := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if access == "" {
			WriteError(w, http.StatusUnauthorized, "Not authorized")
			return
		}
		if !t.validUser(access) {
			WriteError(w, http.StatusUnauthorized, "Token expired")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects requests without the admin scope header and a valid admin token
func (t *Tokens) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if r.Header.Get(AdminScopeHeader) != "true" {
			WriteError(w, http.StatusForbidden, "Admin access required")
			return
		}
		if !t.validAdmin(tok) {
			WriteError(w, http.StatusUnauthorized, "Token expired")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RefreshHandler serves GET /user/refresh-token
func (t *Tokens) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		refresh := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		access, ok := t.Rotate(refresh)
		if !ok {
			WriteError(w, http.StatusUnauthorized, "Invalid refresh token")
			return
		}
		WriteData(w, http.StatusOK, map[string]string{"accessToken": access})
	}
}
