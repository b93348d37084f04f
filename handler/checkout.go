package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mstgnz/storepay/infra/logger"
	"github.com/mstgnz/storepay/infra/middle"
	"github.com/mstgnz/storepay/infra/response"
	"github.com/mstgnz/storepay/provider"
)

// CheckoutService starts a payment with whichever provider is active
type CheckoutService interface {
	InitializePayment(ctx context.Context, order provider.Order, buyer provider.Buyer, items []provider.BasketItem, remoteIP string) provider.CheckoutOutcome
}

// CheckoutRequest is the body of POST /v1/checkout
type CheckoutRequest struct {
	Order provider.Order        `json:"order" validate:"required"`
	Buyer provider.Buyer        `json:"buyer" validate:"required"`
	Items []provider.BasketItem `json:"items" validate:"required,min=1,dive"`
}

// CheckoutData is rendered by the storefront: an iframe, raw HTML, or the offline notice
type CheckoutData struct {
	Provider    string `json:"provider"`
	Offline     bool   `json:"offline"`
	IframeURL   string `json:"iframeUrl,omitempty"`
	HTMLContent string `json:"htmlContent,omitempty"`
	PaymentID   string `json:"paymentId,omitempty"`
}

// CheckoutHandler handles checkout related HTTP requests
type CheckoutHandler struct {
	service  CheckoutService
	validate *validator.Validate
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(service CheckoutService, validate *validator.Validate) *CheckoutHandler {
	return &CheckoutHandler{
		service:  service,
		validate: validate,
	}
}

// Checkout initializes a payment for a committed order
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request format", nil)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.Error(w, http.StatusBadRequest, "Validation error", validationError(err))
		return
	}

	ctx := provider.WithRequestID(r.Context(), middle.GetRequestID(r.Context()))
	outcome := h.service.InitializePayment(ctx, req.Order, req.Buyer, req.Items, middle.GetClientIP(r))

	if outcome.Offline {
		response.Success(w, http.StatusOK, "Offline payment selected", CheckoutData{
			Provider: outcome.Provider,
			Offline:  true,
		})
		return
	}

	result := outcome.Result
	if !result.Success() {
		// the gateway reason stays in the logs
		status, message := failureResponse(result.Kind)
		logger.Debug("Checkout failed", logger.LogContext{
			Provider:  outcome.Provider,
			RequestID: middle.GetRequestID(r.Context()),
			OrderID:   req.Order.ID,
			Fields:    map[string]any{"kind": string(result.Kind)},
		})
		response.Error(w, status, message, nil)
		return
	}

	response.Success(w, http.StatusOK, "Payment initialized", CheckoutData{
		Provider:    outcome.Provider,
		IframeURL:   result.IframeURL,
		HTMLContent: result.HTMLContent,
		PaymentID:   result.PaymentID,
	})
}

func failureResponse(kind provider.FailureKind) (int, string) {
	switch kind {
	case provider.KindConfiguration:
		return http.StatusServiceUnavailable, "Online payment is currently unavailable"
	case provider.KindValidation:
		return http.StatusBadRequest, "Payment request could not be processed"
	default:
		return http.StatusBadGateway, "Payment could not be started, please try again"
	}
}

// validationError lists the failing fields without echoing their values
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.New("invalid request")
	}

	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fe.Namespace()+" "+fe.Tag())
	}
	return errors.New("invalid fields: " + strings.Join(fields, ", "))
}
