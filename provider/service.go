package provider

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mstgnz/storepay/infra/logger"
	"github.com/mstgnz/storepay/infra/opensearch"
)

const redacted = "***REDACTED***"

// keys whose values never reach a log sink
var secretKeys = map[string]struct{}{
	"paytr_token":   {},
	"merchant_key":  {},
	"merchant_salt": {},
	"api_key":       {},
	"secret_key":    {},
	"authorization": {},
}

// RedactFields returns a copy of fields with secret values replaced
func RedactFields(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		if _, secret := secretKeys[k]; secret && v != "" {
			v = redacted
		}
		out[k] = v
	}
	return out
}

type attemptKey struct{}

type requestIDKey struct{}

// WithRequestID attaches the inbound request id so attempt logs can be correlated
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return uuid.NewString()
}

// attempt collects what a provider sent so the service can log it next to the outcome
type attempt struct {
	mu      sync.Mutex
	request map[string]string
}

// RecordRequest stores the outbound request fields for the current attempt, redacted.
// It is a no-op when the context carries no attempt.
func RecordRequest(ctx context.Context, fields map[string]string) {
	a, ok := ctx.Value(attemptKey{}).(*attempt)
	if !ok {
		return
	}
	a.mu.Lock()
	a.request = RedactFields(fields)
	a.mu.Unlock()
}

func (a *attempt) snapshot() map[string]string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return maps.Clone(a.request)
}

// AttemptLogger persists payment initialization attempts
type AttemptLogger interface {
	LogPaymentAttempt(ctx context.Context, log opensearch.PaymentLog) error
}

// CheckoutOutcome is what the checkout edge renders
type CheckoutOutcome struct {
	Provider string
	Offline  bool
	Result   PaymentResult
}

// PaymentService runs an initialization through the selected provider with logging and timing
type PaymentService struct {
	selector *Selector
	attempts AttemptLogger
}

// NewPaymentService creates a new payment service; attempts may be nil
func NewPaymentService(selector *Selector, attempts AttemptLogger) *PaymentService {
	return &PaymentService{
		selector: selector,
		attempts: attempts,
	}
}

// InitializePayment selects the active provider and initializes a payment with it
func (s *PaymentService) InitializePayment(ctx context.Context, order Order, buyer Buyer, items []BasketItem, remoteIP string) CheckoutOutcome {
	requestID := requestIDFrom(ctx)

	selection, err := s.selector.Select(ctx)
	if err != nil {
		logger.Error("Payment provider selection failed", err, logger.LogContext{
			Provider:  selection.Name,
			RequestID: requestID,
			OrderID:   order.ID,
		})
		return CheckoutOutcome{Provider: selection.Name, Result: Failure(err)}
	}

	if selection.Offline {
		logger.Info("Offline payment selected", logger.LogContext{
			Provider:  ProviderOffline,
			RequestID: requestID,
			OrderID:   order.ID,
		})
		return CheckoutOutcome{Provider: ProviderOffline, Offline: true}
	}

	if total := BasketTotal(items); len(items) > 0 && !total.Equal(order.Total) {
		logger.Warn("Basket total differs from order total", logger.LogContext{
			Provider:  selection.Name,
			RequestID: requestID,
			OrderID:   order.ID,
			Fields: map[string]any{
				"basket_total": FormatPrice(total),
				"order_total":  FormatPrice(order.Total),
			},
		})
	}

	a := &attempt{}
	attemptCtx := context.WithValue(ctx, attemptKey{}, a)

	start := time.Now()
	result := s.safeInitialize(attemptCtx, selection.Provider, order, buyer, items, remoteIP)
	elapsed := time.Since(start)

	logCtx := logger.LogContext{
		Provider:  selection.Name,
		RequestID: requestID,
		OrderID:   order.ID,
		Fields: map[string]any{
			"payment_id":         result.PaymentID,
			"processing_time_ms": elapsed.Milliseconds(),
		},
	}

	if result.Success() {
		logger.Info("Payment initialized", logCtx)
	} else {
		logCtx.Fields["kind"] = string(result.Kind)
		logCtx.Fields["reason"] = result.ErrorMessage
		if result.Kind == KindRemote || result.Kind == KindTransport {
			logCtx.Fields["request"] = a.snapshot()
		}
		logger.Warn("Payment initialization failed", logCtx)
	}

	s.recordAttempt(ctx, requestID, remoteIP, selection.Name, order, result, elapsed, a.snapshot())

	return CheckoutOutcome{Provider: selection.Name, Result: result}
}

// safeInitialize keeps a misbehaving provider from taking down the request
func (s *PaymentService) safeInitialize(ctx context.Context, p PaymentProvider, order Order, buyer Buyer, items []BasketItem, remoteIP string) (result PaymentResult) {
	defer func() {
		if r := recover(); r != nil {
			result = FailureResult(KindTransport, fmt.Sprintf("%s: internal error", p.Name()))
			logger.Error("Payment provider panicked", fmt.Errorf("%v", r), logger.LogContext{Provider: p.Name(), OrderID: order.ID})
		}
	}()

	result = p.InitializePayment(ctx, order, buyer, items, remoteIP)
	if err := result.Validate(); err != nil {
		logger.Error("Payment provider returned malformed result", err, logger.LogContext{Provider: p.Name(), OrderID: order.ID})
		return FailureResult(KindTransport, fmt.Sprintf("%s: malformed result", p.Name()))
	}
	return result
}

func (s *PaymentService) recordAttempt(ctx context.Context, requestID, remoteIP, providerName string, order Order, result PaymentResult, elapsed time.Duration, request map[string]string) {
	if s.attempts == nil {
		return
	}

	entry := opensearch.PaymentLog{
		Timestamp:        time.Now().UTC(),
		Provider:         providerName,
		RequestID:        requestID,
		ClientIP:         remoteIP,
		OrderID:          order.ID,
		PaymentID:        result.PaymentID,
		Amount:           FormatPrice(order.Total),
		Currency:         order.CurrencyOrDefault(),
		Status:           string(result.Status),
		ProcessingTimeMs: elapsed.Milliseconds(),
		Request:          request,
	}
	if !result.Success() {
		entry.Error = &opensearch.ErrorInfo{Kind: string(result.Kind), Message: result.ErrorMessage}
	}

	if err := s.attempts.LogPaymentAttempt(ctx, entry); err != nil {
		logger.Warn("Failed to record payment attempt", logger.LogContext{
			Provider:  providerName,
			RequestID: requestID,
			Fields:    map[string]any{"error": err.Error()},
		})
	}
}
