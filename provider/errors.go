package provider

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrProviderNotConfigured means no usable provider is selected for the store
	ErrProviderNotConfigured = errors.New("payment provider not configured")
	// ErrCredentialsMissing means the active settings lack a required credential
	ErrCredentialsMissing = errors.New("credentials missing")
	// ErrEmptyBasket means the basket has no items
	ErrEmptyBasket = errors.New("basket is empty")
	// ErrInvalidAmount means the order total is below one minor unit
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrInvalidBasketItem means an item has a non-positive quantity or negative price
	ErrInvalidBasketItem = errors.New("invalid basket item")
)

// CredentialError lists the credential keys that are missing for a provider
type CredentialError struct {
	Provider string
	Missing  []string
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("%s: credentials missing: %s", e.Provider, strings.Join(e.Missing, ", "))
}

func (e *CredentialError) Is(target error) bool {
	return target == ErrCredentialsMissing
}

// TransportError wraps network failures, unexpected HTTP status codes and unparsable responses
type TransportError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: transport error (HTTP %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: transport error: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RemoteError is a well-formed rejection returned by the gateway
type RemoteError struct {
	Provider string
	Reason   string
	Code     string
}

func (e *RemoteError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Provider, e.Reason, e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Reason)
}

// KindOf maps an error onto the failure taxonomy
func KindOf(err error) FailureKind {
	var (
		transportErr *TransportError
		remoteErr    *RemoteError
	)

	switch {
	case errors.Is(err, ErrProviderNotConfigured), errors.Is(err, ErrCredentialsMissing):
		return KindConfiguration
	case errors.Is(err, ErrEmptyBasket), errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInvalidBasketItem):
		return KindValidation
	case errors.As(err, &remoteErr):
		return KindRemote
	case errors.As(err, &transportErr):
		return KindTransport
	default:
		return KindTransport
	}
}
