// Package provider implements the payment-initialization layer that puts
// several hosted card-payment gateways behind one interface.
//
// # Core Concepts
//
//   - PaymentProvider: implemented once per gateway; InitializePayment never
//     returns an error, every failure is a PaymentResult with Status failure
//   - PaymentResult: tagged union built only through IframeResult, HTMLResult
//     and FailureResult
//   - Selector: reads the store's payment settings on every call and builds
//     the active provider from the ProviderRegistry
//   - PaymentService: runs one initialization with logging, timing and
//     attempt recording
//
// # Registering Providers
//
// Gateway packages register themselves from init:
//
//	func init() {
//	    provider.Register(provider.ProviderPayTR, func(s config.PaymentSettings) provider.PaymentProvider {
//	        return NewProvider(s)
//	    })
//	}
//
// and the binary blank-imports them:
//
//	import (
//	    _ "github.com/mstgnz/storepay/provider/iyzico"
//	    _ "github.com/mstgnz/storepay/provider/paytr"
//	)
//
// # Basic Usage
//
//	store, _ := config.NewSettingsStore(config.GetAppConfig())
//	service := provider.NewPaymentService(provider.NewSelector(store, nil), nil)
//
//	outcome := service.InitializePayment(ctx, order, buyer, items, clientIP)
//	switch {
//	case outcome.Offline:
//	    // take payment outside the system
//	case outcome.Result.Success():
//	    // render outcome.Result.IframeURL or outcome.Result.HTMLContent
//	default:
//	    // show a generic error, outcome.Result.ErrorMessage is for logs
//	}
//
// # Money
//
// Amounts are shopspring/decimal values. ToMinorUnits multiplies by 100 and
// rounds half away from zero; FormatPrice renders two fractional digits.
package provider
