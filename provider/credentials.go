package provider

import (
	"fmt"
	"strings"

	"github.com/mstgnz/storepay/infra/config"
)

// Provider keys stored in payment settings
const (
	ProviderPayTR   = "paytr"
	ProviderIyzico  = "iyzico"
	ProviderOffline = "offline"
)

// Credentials is the resolved, provider-specific view of the payment settings
type Credentials struct {
	Provider     string
	APIKey       string
	SecretKey    string
	MerchantID   string
	MerchantKey  string
	MerchantSalt string
	BaseURL      string
	SiteURL      string
	TestMode     bool
}

// ResolveCredentials extracts the credentials the named provider needs.
// It fails with ErrProviderNotConfigured when the settings are absent, inactive
// or belong to another provider, and with a *CredentialError when a required
// value is empty.
func ResolveCredentials(settings *config.PaymentSettings, name string) (Credentials, error) {
	if settings == nil || !settings.IsActive || !strings.EqualFold(settings.Provider, name) {
		return Credentials{}, fmt.Errorf("%s: %w", name, ErrProviderNotConfigured)
	}

	creds := Credentials{
		Provider:   name,
		APIKey:     strings.TrimSpace(settings.APIKey),
		SecretKey:  strings.TrimSpace(settings.SecretKey),
		MerchantID: strings.TrimSpace(settings.MerchantID),
		BaseURL:    strings.TrimRight(strings.TrimSpace(settings.BaseURL), "/"),
		SiteURL:    strings.TrimRight(strings.TrimSpace(settings.SiteURL), "/"),
		TestMode:   settings.TestMode,
	}
	if creds.SiteURL == "" {
		creds.SiteURL = strings.TrimRight(config.GetAppConfig().AppURL, "/")
	}

	var missing []string
	switch name {
	case ProviderPayTR:
		creds.MerchantKey = creds.APIKey
		creds.MerchantSalt = strings.TrimSpace(settings.MerchantSalt)
		if creds.MerchantSalt == "" {
			creds.MerchantSalt = creds.SecretKey
		}
		if creds.MerchantID == "" {
			missing = append(missing, "merchant_id")
		}
		if creds.MerchantKey == "" {
			missing = append(missing, "merchant_key")
		}
		if creds.MerchantSalt == "" {
			missing = append(missing, "merchant_salt")
		}
	case ProviderIyzico:
		if creds.APIKey == "" {
			missing = append(missing, "api_key")
		}
		if creds.SecretKey == "" {
			missing = append(missing, "secret_key")
		}
	default:
		return Credentials{}, fmt.Errorf("%s: %w", name, ErrProviderNotConfigured)
	}

	if len(missing) > 0 {
		return Credentials{}, &CredentialError{Provider: name, Missing: missing}
	}

	return creds, nil
}

// RequiredConfig lists the settings fields the admin panel must collect for a provider
func RequiredConfig(name string) []ConfigField {
	common := []ConfigField{
		{
			Key:         "base_url",
			Required:    false,
			Type:        "url",
			Description: "Gateway API base URL override",
		},
		{
			Key:         "site_url",
			Required:    false,
			Type:        "url",
			Description: "Storefront URL used to build callback URLs",
			Example:     "https://shop.example.com",
		},
	}

	switch name {
	case ProviderPayTR:
		return append([]ConfigField{
			{
				Key:         "merchant_id",
				Required:    true,
				Type:        "string",
				Description: "PayTR merchant number",
				Example:     "123456",
				Pattern:     "^[0-9]+$",
			},
			{
				Key:         "api_key",
				Required:    true,
				Type:        "string",
				Description: "PayTR merchant key",
				MinLength:   8,
				MaxLength:   64,
			},
			{
				Key:         "merchant_salt",
				Required:    false,
				Type:        "string",
				Description: "PayTR merchant salt, secret_key is used when empty",
				MaxLength:   64,
			},
		}, common...)
	case ProviderIyzico:
		return append([]ConfigField{
			{
				Key:         "api_key",
				Required:    true,
				Type:        "string",
				Description: "iyzico API key",
				Example:     "sandbox-xxxxxxxx",
				MinLength:   10,
			},
			{
				Key:         "secret_key",
				Required:    true,
				Type:        "string",
				Description: "iyzico secret key",
				Example:     "sandbox-xxxxxxxx",
				MinLength:   10,
			},
		}, common...)
	default:
		return nil
	}
}

// ValidateSettings checks the settings against the provider's required fields
// before they are persisted. Inactive and offline settings need no credentials.
func ValidateSettings(settings config.PaymentSettings) error {
	if !settings.IsActive || settings.Provider == ProviderOffline {
		return nil
	}

	fields := RequiredConfig(settings.Provider)
	if fields == nil {
		return fmt.Errorf("%s: %w", settings.Provider, ErrProviderNotConfigured)
	}

	values := settings.AsMap()
	if err := ValidateConfigFields(settings.Provider, values, fields); err != nil {
		return err
	}

	if settings.Provider == ProviderPayTR && values["merchant_salt"] == "" && values["secret_key"] == "" {
		return &CredentialError{Provider: ProviderPayTR, Missing: []string{"merchant_salt"}}
	}

	return nil
}
