package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/mstgnz/storepay/provider"
	v1 "github.com/mstgnz/storepay/router/v1"
	"github.com/stretchr/testify/assert"
)

func TestRoutes_MountsV1(t *testing.T) {
	r := chi.NewRouter()
	assert.NotPanics(t, func() {
		Routes(r, v1.Dependencies{APIKey: "admin-key"})
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/admin/payment-settings", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestProvidersRegistered(t *testing.T) {
	names := provider.DefaultRegistry.GetProviderNames()
	assert.Contains(t, names, provider.ProviderPayTR)
	assert.Contains(t, names, provider.ProviderIyzico)
}
