package router

import (
	"github.com/go-chi/chi/v5"
	v1 "github.com/mstgnz/storepay/router/v1"

	// Import for side-effect registration
	_ "github.com/mstgnz/storepay/provider/iyzico"
	_ "github.com/mstgnz/storepay/provider/paytr"
)

// Routes mounts the versioned API
func Routes(r chi.Router, deps v1.Dependencies) {
	r.Route("/v1", func(r chi.Router) {
		v1.Routes(r, deps)
	})
}
