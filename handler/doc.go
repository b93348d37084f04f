// Package handler provides the HTTP handlers of the storepay service.
//
// # Handlers
//
//   - CheckoutHandler: POST /v1/checkout starts a payment with the active provider
//   - SettingsHandler: admin payment settings, secrets masked on the way out
//   - LogsHandler: payment attempt logs from OpenSearch
//   - HealthHandler: GET /health
//
// # Checkout
//
//	POST /v1/checkout
//	Content-Type: application/json
//
//	{
//	  "order": {"id": "1001", "total": "149.90", "shippingAddress": "Moda Cad. 5", "phone": "+905551112233"},
//	  "buyer": {"name": "Ayşe Kaya", "email": "ayse@example.com"},
//	  "items": [{"id": "p1", "name": "Kulaklık", "price": "149.90", "quantity": 1}]
//	}
//
// A successful response carries exactly one of iframeUrl or htmlContent:
//
//	{
//	  "code": 200,
//	  "success": true,
//	  "message": "Payment initialized",
//	  "data": {"provider": "paytr", "offline": false, "iframeUrl": "https://www.paytr.com/odeme/guvenlik/<token>", "paymentId": "10011718000000000042"}
//	}
//
// Failures return a generic message. The gateway reason is only logged.
//
// # Admin
//
// Admin routes require the API key as a bearer token:
//
//	GET  /v1/admin/payment-settings
//	PUT  /v1/admin/payment-settings
//	GET  /v1/admin/payment-settings/fields/{provider}
//	GET  /v1/admin/payment-logs/{provider}/orders/{orderID}
//	GET  /v1/admin/payment-logs/{provider}/failures?hours=24
package handler
