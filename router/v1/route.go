package v1

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/mstgnz/storepay/handler"
	"github.com/mstgnz/storepay/infra/middle"
	"github.com/mstgnz/storepay/infra/validate"
)

// Dependencies are the collaborators the v1 handlers are built from
type Dependencies struct {
	Checkout    handler.CheckoutService
	Settings    handler.SettingsStore
	Logs        handler.AttemptLogReader
	APIKey      string
	Validate    *validator.Validate
	RateLimiter *middle.RateLimiter
}

// Routes registers all v1 API routes
func Routes(r chi.Router, deps Dependencies) {
	v := deps.Validate
	if v == nil {
		v = validate.New()
	}

	checkoutHandler := handler.NewCheckoutHandler(deps.Checkout, v)
	settingsHandler := handler.NewSettingsHandler(deps.Settings, v)
	logsHandler := handler.NewLogsHandler(deps.Logs)

	// Storefront checkout
	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(middle.RateLimitMiddleware(deps.RateLimiter))
		}
		r.Post("/checkout", checkoutHandler.Checkout)
	})

	// Admin panel
	r.Route("/admin", func(r chi.Router) {
		r.Use(middle.AuthMiddleware(deps.APIKey))

		r.Route("/payment-settings", func(r chi.Router) {
			r.Get("/", settingsHandler.GetSettings)
			r.Put("/", settingsHandler.UpdateSettings)
			r.Get("/fields/{provider}", settingsHandler.GetProviderFields)
		})

		r.Route("/payment-logs/{provider}", func(r chi.Router) {
			r.Get("/orders/{orderID}", logsHandler.GetOrderLogs)
			r.Get("/failures", logsHandler.GetRecentFailures)
		})
	})
}
