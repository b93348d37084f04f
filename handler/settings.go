package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/mstgnz/storepay/infra/config"
	"github.com/mstgnz/storepay/infra/logger"
	"github.com/mstgnz/storepay/infra/response"
	"github.com/mstgnz/storepay/provider"
)

// SettingsStore loads and saves the merchant payment settings
type SettingsStore interface {
	LoadPaymentSettings(ctx context.Context) (*config.PaymentSettings, error)
	SavePaymentSettings(ctx context.Context, settings config.PaymentSettings) error
}

// SettingsHandler serves the admin payment settings form
type SettingsHandler struct {
	store    SettingsStore
	validate *validator.Validate
	now      func() time.Time
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(store SettingsStore, validate *validator.Validate) *SettingsHandler {
	return &SettingsHandler{
		store:    store,
		validate: validate,
		now:      time.Now,
	}
}

// GetSettings returns the stored settings with secrets masked
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.LoadPaymentSettings(r.Context())
	if errors.Is(err, config.ErrSettingsNotFound) {
		response.Error(w, http.StatusNotFound, "Payment settings not configured", nil)
		return
	}
	if err != nil {
		logger.Error("Failed to load payment settings", err)
		response.Error(w, http.StatusInternalServerError, "Failed to load payment settings", nil)
		return
	}

	response.Success(w, http.StatusOK, "Payment settings", settings.Masked())
}

// UpdateSettings validates and persists new settings. Secrets sent back in
// their masked form keep the stored value.
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var incoming config.PaymentSettings
	if err := json.NewDecoder(r.Body).Decode(&incoming); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request format", nil)
		return
	}
	incoming.Provider = strings.ToLower(strings.TrimSpace(incoming.Provider))

	if err := h.validate.Struct(incoming); err != nil {
		response.Error(w, http.StatusBadRequest, "Validation error", validationError(err))
		return
	}

	current, err := h.store.LoadPaymentSettings(r.Context())
	if err != nil && !errors.Is(err, config.ErrSettingsNotFound) {
		logger.Error("Failed to load payment settings", err)
		response.Error(w, http.StatusInternalServerError, "Failed to save payment settings", nil)
		return
	}
	if current != nil {
		keepMaskedSecrets(&incoming, *current)
	}

	if err := provider.ValidateSettings(incoming); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid provider configuration", err)
		return
	}

	incoming.UpdatedAt = h.now().UTC()
	if err := h.store.SavePaymentSettings(r.Context(), incoming); err != nil {
		logger.Error("Failed to save payment settings", err)
		response.Error(w, http.StatusInternalServerError, "Failed to save payment settings", nil)
		return
	}

	logger.Info("Payment settings updated", logger.LogContext{
		Provider: incoming.Provider,
		Fields:   map[string]any{"is_active": incoming.IsActive, "test_mode": incoming.TestMode},
	})

	response.Success(w, http.StatusOK, "Payment settings saved", incoming.Masked())
}

// GetProviderFields lists the fields the admin form must collect for a provider
func (h *SettingsHandler) GetProviderFields(w http.ResponseWriter, r *http.Request) {
	name := strings.ToLower(chi.URLParam(r, "provider"))

	if name == provider.ProviderOffline {
		response.Success(w, http.StatusOK, "Provider fields", []provider.ConfigField{})
		return
	}

	fields := provider.RequiredConfig(name)
	if fields == nil {
		response.Error(w, http.StatusNotFound, "Unknown provider", nil)
		return
	}

	response.Success(w, http.StatusOK, "Provider fields", fields)
}

func keepMaskedSecrets(incoming *config.PaymentSettings, current config.PaymentSettings) {
	masked := current.Masked()
	if incoming.APIKey != "" && incoming.APIKey == masked.APIKey {
		incoming.APIKey = current.APIKey
	}
	if incoming.SecretKey != "" && incoming.SecretKey == masked.SecretKey {
		incoming.SecretKey = current.SecretKey
	}
	if incoming.MerchantSalt != "" && incoming.MerchantSalt == masked.MerchantSalt {
		incoming.MerchantSalt = current.MerchantSalt
	}
}
