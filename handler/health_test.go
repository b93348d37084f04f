package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mstgnz/storepay/infra/config"
	"github.com/mstgnz/storepay/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedSearch bool

func (f fixedSearch) IsEnabled() bool { return bool(f) }

func TestCheckHealth(t *testing.T) {
	registry := provider.NewProviderRegistry()
	registry.Register("paytr", nil)
	registry.Register("iyzico", nil)

	tests := []struct {
		name       string
		store      *memoryStore
		wantCode   int
		wantStatus string
	}{
		{"active provider", &memoryStore{settings: storedIyzico()}, http.StatusOK, "healthy"},
		{"offline provider", &memoryStore{settings: &config.PaymentSettings{Provider: "offline"}}, http.StatusOK, "healthy"},
		{"inactive provider", &memoryStore{settings: &config.PaymentSettings{Provider: "paytr"}}, http.StatusOK, "degraded"},
		{"not configured", &memoryStore{}, http.StatusOK, "degraded"},
		{"store down", &memoryStore{loadErr: errors.New("db")}, http.StatusServiceUnavailable, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.store, fixedSearch(true), registry, "1.2.3")

			rr := httptest.NewRecorder()
			h.CheckHealth(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantCode, rr.Code)

			var env struct {
				Success bool         `json:"success"`
				Data    HealthStatus `json:"data"`
			}
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
			assert.Equal(t, tt.wantStatus, env.Data.Status)
			assert.Equal(t, "1.2.3", env.Data.Version)
			assert.Equal(t, []string{"iyzico", "paytr"}, env.Data.Providers)
			assert.True(t, env.Data.Logging.OpenSearch)
			assert.NotNil(t, env.Data.System)
			assert.NotContains(t, rr.Body.String(), "sandbox-secret")
		})
	}
}

func TestCheckHealth_NilSearch(t *testing.T) {
	h := NewHealthHandler(&memoryStore{}, nil, nil, "1.0.0")

	rr := httptest.NewRecorder()
	h.CheckHealth(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.0 KB", formatBytes(1024))
	assert.Equal(t, "1.5 MB", formatBytes(1536*1024))
}
