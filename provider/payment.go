package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when an order does not name one
const DefaultCurrency = "TRY"

// Order is the committed order a payment is initialized for
type Order struct {
	ID              string          `json:"id" validate:"required"`
	Total           decimal.Decimal `json:"total" validate:"gt=0"`
	ShippingAddress string          `json:"shippingAddress"`
	Phone           string          `json:"phone"`
	Currency        string          `json:"currency,omitempty"`
}

// CurrencyOrDefault returns the order currency, TRY when empty
func (o Order) CurrencyOrDefault() string {
	if o.Currency == "" {
		return DefaultCurrency
	}
	return o.Currency
}

// BasketItem is a single line of the basket
type BasketItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name" validate:"required"`
	Price    decimal.Decimal `json:"price" validate:"gte=0"`
	Quantity int             `json:"quantity" validate:"gte=1"`
	Category string          `json:"category,omitempty"`
}

// LineTotal is unit price times quantity
func (i BasketItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Buyer identifies the person paying
type Buyer struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email" validate:"required,email"`
}

// IdentifierOrGuest returns the buyer id, or a fresh guest token for anonymous checkouts
func (b Buyer) IdentifierOrGuest() string {
	if b.ID != "" {
		return b.ID
	}
	return "guest-" + uuid.NewString()
}

// ResultStatus tags a PaymentResult
type ResultStatus string

const (
	ResultSuccess ResultStatus = "success"
	ResultFailure ResultStatus = "failure"
)

// FailureKind classifies why an initialization failed
type FailureKind string

const (
	KindConfiguration FailureKind = "configuration"
	KindValidation    FailureKind = "validation"
	KindTransport     FailureKind = "transport"
	KindRemote        FailureKind = "remote"
)

// PaymentResult is the outcome of a payment initialization.
// A success carries exactly one of IframeURL or HTMLContent; a failure
// carries only ErrorMessage and Kind.
type PaymentResult struct {
	Status       ResultStatus `json:"status"`
	IframeURL    string       `json:"iframeUrl,omitempty"`
	HTMLContent  string       `json:"htmlContent,omitempty"`
	PaymentID    string       `json:"paymentId,omitempty"`
	ErrorMessage string       `json:"errorMessage,omitempty"`
	Kind         FailureKind  `json:"kind,omitempty"`
}

// IframeResult is a success that the storefront embeds as an iframe
func IframeResult(iframeURL, paymentID string) PaymentResult {
	return PaymentResult{Status: ResultSuccess, IframeURL: iframeURL, PaymentID: paymentID}
}

// HTMLResult is a success carrying gateway-provided markup
func HTMLResult(htmlContent, paymentID string) PaymentResult {
	return PaymentResult{Status: ResultSuccess, HTMLContent: htmlContent, PaymentID: paymentID}
}

// FailureResult is a failed initialization
func FailureResult(kind FailureKind, message string) PaymentResult {
	return PaymentResult{Status: ResultFailure, ErrorMessage: message, Kind: kind}
}

// Failure classifies err into a failed PaymentResult
func Failure(err error) PaymentResult {
	return FailureResult(KindOf(err), err.Error())
}

// Success reports whether the initialization succeeded
func (r PaymentResult) Success() bool {
	return r.Status == ResultSuccess
}

// Validate checks the tag exclusivity invariant
func (r PaymentResult) Validate() error {
	switch r.Status {
	case ResultSuccess:
		hasIframe, hasHTML := r.IframeURL != "", r.HTMLContent != ""
		if hasIframe == hasHTML {
			return errors.New("success result must carry exactly one of iframe url or html content")
		}
		if r.ErrorMessage != "" {
			return errors.New("success result must not carry an error message")
		}
	case ResultFailure:
		if r.ErrorMessage == "" {
			return errors.New("failure result must carry an error message")
		}
		if r.IframeURL != "" || r.HTMLContent != "" || r.PaymentID != "" {
			return errors.New("failure result must not carry success fields")
		}
	default:
		return fmt.Errorf("unknown result status %q", r.Status)
	}
	return nil
}

// PaymentProvider initializes hosted payments against one gateway.
// Implementations never return errors or panic: every failure is a ResultFailure.
type PaymentProvider interface {
	// Name returns the provider key, e.g. "paytr"
	Name() string

	// InitializePayment starts a payment for the order and returns where to send the buyer
	InitializePayment(ctx context.Context, order Order, buyer Buyer, items []BasketItem, remoteIP string) PaymentResult
}

// ConfigField represents a required configuration field for a payment provider
type ConfigField struct {
	Key         string `json:"key"`
	Required    bool   `json:"required"`
	Type        string `json:"type"` // "string", "url", "boolean"
	Description string `json:"description"`
	Example     string `json:"example"`
	Pattern     string `json:"pattern,omitempty"`
	MinLength   int    `json:"minLength,omitempty"`
	MaxLength   int    `json:"maxLength,omitempty"`
}
