package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrSettingsNotFound is returned when no payment settings row has been saved yet
var ErrSettingsNotFound = errors.New("payment settings not found")

// PaymentSettings is the merchant's persisted payment configuration.
// Only one row is active at a time.
type PaymentSettings struct {
	Provider     string    `json:"provider" validate:"required,oneof=paytr iyzico offline"`
	IsActive     bool      `json:"is_active"`
	APIKey       string    `json:"api_key,omitempty"`
	SecretKey    string    `json:"secret_key,omitempty"`
	MerchantID   string    `json:"merchant_id,omitempty"`
	MerchantSalt string    `json:"merchant_salt,omitempty"`
	BaseURL      string    `json:"base_url,omitempty" validate:"omitempty,url"`
	TestMode     bool      `json:"test_mode"`
	SiteURL      string    `json:"site_url,omitempty" validate:"omitempty,url"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Masked returns a copy that is safe to render in the admin panel
func (s PaymentSettings) Masked() PaymentSettings {
	s.APIKey = maskSecret(s.APIKey)
	s.SecretKey = maskSecret(s.SecretKey)
	s.MerchantSalt = maskSecret(s.MerchantSalt)
	return s
}

// AsMap flattens the settings into the key set used by provider config validation
func (s PaymentSettings) AsMap() map[string]string {
	return map[string]string{
		"provider":      s.Provider,
		"api_key":       s.APIKey,
		"secret_key":    s.SecretKey,
		"merchant_id":   s.MerchantID,
		"merchant_salt": s.MerchantSalt,
		"base_url":      s.BaseURL,
		"site_url":      s.SiteURL,
		"test_mode":     fmt.Sprintf("%t", s.TestMode),
	}
}

func maskSecret(v string) string {
	if v == "" {
		return ""
	}
	if len(v) <= 4 {
		return strings.Repeat("*", len(v))
	}
	return strings.Repeat("*", len(v)-4) + v[len(v)-4:]
}

// SettingsStore persists and loads the active payment settings
type SettingsStore interface {
	LoadPaymentSettings(ctx context.Context) (*PaymentSettings, error)
	SavePaymentSettings(ctx context.Context, settings PaymentSettings) error
	Close() error
}

// NewSettingsStore opens the store selected by the application config
func NewSettingsStore(cfg *AppConfig) (SettingsStore, error) {
	switch strings.ToLower(cfg.DBDriver) {
	case "", "sqlite", "sqlite3":
		return NewSQLiteStorage(cfg.DBPath)
	case "postgres", "postgresql":
		if cfg.DBDSN == "" {
			return nil, errors.New("DB_DSN is required for postgres driver")
		}
		return NewPostgresStorage(cfg.DBDSN)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s", cfg.DBDriver)
	}
}
