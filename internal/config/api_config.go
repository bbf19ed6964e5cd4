package config

import (
	"strings"
	"time"
)

type APIConfig interface {
	GetBaseURL() string
	GetRequestTimeout() time.Duration
	GetRefreshPath() string
	GetAdminScopeHeader() string
	GetCoalesceRefresh() bool
}

type API struct{}

var _ APIConfig = API{}

// GetBaseURL returns the backend API root without a trailing slash (e.g. "https://api.example.com/api/v1")
func (API) GetBaseURL() string {
	return strings.TrimRight(GetEnv("API_BASE_URL", "http://localhost:5000/api/v1"), "/")
}

func (API) GetRequestTimeout() time.Duration {
	return GetEnvDuration("REQUEST_TIMEOUT", 30*time.Second)
}

func (API) GetRefreshPath() string {
	return "/user/refresh-token"
}

func (API) GetAdminScopeHeader() string {
	return "X-Admin-Scope"
}

func (API) GetCoalesceRefresh() bool {
	return GetEnvBool("REFRESH_COALESCE", true)
}
