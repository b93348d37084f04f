package iyzico

import (
	"github.com/mstgnz/storepay/infra/config"
	"github.com/mstgnz/storepay/provider"
)

// Register iyzico provider with the gateway registry
func init() {
	provider.Register(provider.ProviderIyzico, func(settings config.PaymentSettings) provider.PaymentProvider {
		return NewProvider(settings)
	})
}
