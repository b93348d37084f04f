// Package storepay is the payment-initialization service of an e-commerce
// storefront. It puts two Turkish card-payment gateways behind one interface
// and serves the storefront checkout and the admin payment settings over HTTP.
//
// # Overview
//
// When a buyer commits an order the storefront calls POST /v1/checkout. The
// service reads the merchant's payment settings, builds the active provider
// and asks it for a hosted payment page:
//
//	┌─────────────┐    ┌──────────────────┐    ┌──────────────────┐
//	│ Storefront  │───►│ PaymentService   │───►│ PayTR / iyzico   │
//	│ checkout    │◄───│ Selector         │◄───│ hosted payment   │
//	└─────────────┘    └──────────────────┘    └──────────────────┘
//
// # Providers
//
//   - paytr: iFrame API. The token is an HMAC-SHA256 over an order-sensitive
//     canonical string and the result is an iframe URL.
//   - iyzico: Checkout Form API, signed with IYZWSv2 by the iyzipay client.
//     The result is embeddable HTML.
//   - offline: no gateway; the store collects payment outside the system.
//
// # Layout
//
//   - provider: domain types, money and basket normalization, credential
//     resolution, registry, selector and PaymentService
//   - provider/paytr, provider/iyzico: gateway implementations
//   - infra/config: environment config and the SQLite/PostgreSQL settings store
//   - infra/logger, infra/opensearch: zap console logging and the attempt log index
//   - handler, router, infra/middle, infra/response: HTTP surface
//   - cmd: the server binary
//
// # Configuration
//
// Settings come from the environment, optionally through a .env file:
//
//	APP_PORT=9999
//	APP_URL=https://shop.example.com
//	API_KEY=admin-api-key
//	DB_DRIVER=sqlite3            # or postgres with DB_DSN
//	SQLITE_PATH=./data/storepay.db
//	ENABLE_OPENSEARCH_LOGGING=false
//	OPENSEARCH_URL=http://localhost:9200
//	HTTP_CLIENT_TIMEOUT=30s
//	RATE_LIMIT_PER_MINUTE=60
//
// Gateway credentials are not environment variables; the admin panel stores
// them through PUT /v1/admin/payment-settings.
package storepay
