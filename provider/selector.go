package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mstgnz/storepay/infra/config"
)

// SettingsSource loads the store's current payment settings
type SettingsSource interface {
	LoadPaymentSettings(ctx context.Context) (*config.PaymentSettings, error)
}

// Selection is the outcome of provider selection. When Offline is true the
// store takes payment outside the system and Provider is nil.
type Selection struct {
	Name     string
	Offline  bool
	Provider PaymentProvider
}

// Selector picks the active provider from settings read on every call,
// so merchants can switch gateways without a restart.
type Selector struct {
	source   SettingsSource
	registry *ProviderRegistry
}

// NewSelector creates a selector; a nil registry means DefaultRegistry
func NewSelector(source SettingsSource, registry *ProviderRegistry) *Selector {
	if registry == nil {
		registry = DefaultRegistry
	}
	return &Selector{source: source, registry: registry}
}

// Select resolves the currently configured provider
func (s *Selector) Select(ctx context.Context) (Selection, error) {
	settings, err := s.source.LoadPaymentSettings(ctx)
	if err != nil {
		if errors.Is(err, config.ErrSettingsNotFound) {
			return Selection{}, fmt.Errorf("no payment settings saved: %w", ErrProviderNotConfigured)
		}
		return Selection{}, fmt.Errorf("loading payment settings: %w", err)
	}

	name := strings.ToLower(strings.TrimSpace(settings.Provider))
	if name == ProviderOffline {
		return Selection{Name: ProviderOffline, Offline: true}, nil
	}

	if !settings.IsActive {
		return Selection{Name: name}, fmt.Errorf("%s is inactive: %w", name, ErrProviderNotConfigured)
	}

	snapshot := *settings
	snapshot.Provider = name

	p, err := s.registry.CreateProvider(snapshot)
	if err != nil {
		return Selection{Name: name}, err
	}

	return Selection{Name: name, Provider: p}, nil
}
