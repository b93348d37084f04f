package paytr

import (
	"github.com/mstgnz/storepay/infra/config"
	"github.com/mstgnz/storepay/provider"
)

// Register PayTR provider with the gateway registry
func init() {
	provider.Register(provider.ProviderPayTR, func(settings config.PaymentSettings) provider.PaymentProvider {
		return NewProvider(settings)
	})
}
