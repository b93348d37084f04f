package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/mstgnz/storepay/infra/config"
	"github.com/mstgnz/storepay/infra/opensearch"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingAttempts struct {
	logs []opensearch.PaymentLog
	err  error
}

func (r *recordingAttempts) LogPaymentAttempt(_ context.Context, log opensearch.PaymentLog) error {
	r.logs = append(r.logs, log)
	return r.err
}

func newServiceWith(t *testing.T, settings *config.PaymentSettings, stub *stubProvider) (*PaymentService, *recordingAttempts) {
	t.Helper()

	registry := NewProviderRegistry()
	registry.Register(settings.Provider, func(config.PaymentSettings) PaymentProvider { return stub })

	attempts := &recordingAttempts{}
	return NewPaymentService(NewSelector(&memorySettings{settings: settings}, registry), attempts), attempts
}

func testOrder() (Order, Buyer, []BasketItem) {
	order := Order{ID: "1001", Total: decimal.RequireFromString("149.90")}
	buyer := Buyer{ID: "u1", Name: "Ali Veli", Email: "ali@example.com"}
	items := []BasketItem{{ID: "p1", Name: "Kulaklık", Price: decimal.RequireFromString("149.90"), Quantity: 1}}
	return order, buyer, items
}

func TestPaymentService_Success(t *testing.T) {
	stub := &stubProvider{name: "paytr", result: IframeResult("https://www.paytr.com/odeme/guvenlik/abc", "10011")}
	service, attempts := newServiceWith(t, &config.PaymentSettings{Provider: "paytr", IsActive: true}, stub)

	order, buyer, items := testOrder()
	outcome := service.InitializePayment(context.Background(), order, buyer, items, "10.0.0.1")

	assert.Equal(t, "paytr", outcome.Provider)
	assert.False(t, outcome.Offline)
	assert.True(t, outcome.Result.Success())
	assert.Equal(t, 1, stub.calls)

	require.Len(t, attempts.logs, 1)
	entry := attempts.logs[0]
	assert.Equal(t, "success", entry.Status)
	assert.Equal(t, "1001", entry.OrderID)
	assert.Equal(t, "149.90", entry.Amount)
	assert.Equal(t, "TRY", entry.Currency)
	assert.Equal(t, "10.0.0.1", entry.ClientIP)
	assert.Nil(t, entry.Error)
	assert.Equal(t, "***REDACTED***", entry.Request["paytr_token"], "secrets never reach the attempt log")
	assert.Equal(t, "1001", entry.Request["merchant_oid"])
}

func TestPaymentService_RemoteFailure(t *testing.T) {
	stub := &stubProvider{name: "paytr", result: FailureResult(KindRemote, "PAYTR_TOKEN_INVALID")}
	service, attempts := newServiceWith(t, &config.PaymentSettings{Provider: "paytr", IsActive: true}, stub)
	attempts.err = errors.New("opensearch down")

	order, buyer, items := testOrder()
	outcome := service.InitializePayment(context.Background(), order, buyer, items, "10.0.0.1")

	assert.Equal(t, ResultFailure, outcome.Result.Status)
	assert.Equal(t, "PAYTR_TOKEN_INVALID", outcome.Result.ErrorMessage)

	require.Len(t, attempts.logs, 1)
	require.NotNil(t, attempts.logs[0].Error)
	assert.Equal(t, "remote", attempts.logs[0].Error.Kind)
}

func TestPaymentService_Offline(t *testing.T) {
	stub := &stubProvider{name: "offline"}
	service, attempts := newServiceWith(t, &config.PaymentSettings{Provider: "offline"}, stub)

	order, buyer, items := testOrder()
	outcome := service.InitializePayment(context.Background(), order, buyer, items, "10.0.0.1")

	assert.True(t, outcome.Offline)
	assert.Equal(t, 0, stub.calls)
	assert.Empty(t, attempts.logs)
}

func TestPaymentService_NotConfigured(t *testing.T) {
	stub := &stubProvider{name: "paytr"}
	service, _ := newServiceWith(t, &config.PaymentSettings{Provider: "paytr", IsActive: false}, stub)

	order, buyer, items := testOrder()
	outcome := service.InitializePayment(context.Background(), order, buyer, items, "10.0.0.1")

	assert.Equal(t, ResultFailure, outcome.Result.Status)
	assert.Equal(t, KindConfiguration, outcome.Result.Kind)
	assert.Equal(t, 0, stub.calls)
}

func TestPaymentService_ProviderPanicBecomesFailure(t *testing.T) {
	stub := &stubProvider{name: "iyzico", panics: true}
	service, _ := newServiceWith(t, &config.PaymentSettings{Provider: "iyzico", IsActive: true}, stub)

	order, buyer, items := testOrder()
	outcome := service.InitializePayment(context.Background(), order, buyer, items, "10.0.0.1")

	assert.Equal(t, ResultFailure, outcome.Result.Status)
	assert.NoError(t, outcome.Result.Validate())
}

func TestPaymentService_MalformedResult(t *testing.T) {
	stub := &stubProvider{name: "iyzico", result: PaymentResult{Status: ResultSuccess, IframeURL: "u", HTMLContent: "h"}}
	service, _ := newServiceWith(t, &config.PaymentSettings{Provider: "iyzico", IsActive: true}, stub)

	order, buyer, items := testOrder()
	outcome := service.InitializePayment(context.Background(), order, buyer, items, "10.0.0.1")

	assert.Equal(t, ResultFailure, outcome.Result.Status)
}

func TestRedactFields(t *testing.T) {
	in := map[string]string{"paytr_token": "sig", "merchant_id": "1", "api_key": "", "secret_key": "s"}
	out := RedactFields(in)

	assert.Equal(t, "***REDACTED***", out["paytr_token"])
	assert.Equal(t, "***REDACTED***", out["secret_key"])
	assert.Equal(t, "1", out["merchant_id"])
	assert.Equal(t, "", out["api_key"])
	assert.Equal(t, "sig", in["paytr_token"], "input is not modified")
}

func TestRecordRequest_WithoutAttempt(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordRequest(context.Background(), map[string]string{"k": "v"})
	})
}

func TestPaymentService_RequestIDFromContext(t *testing.T) {
	stub := &stubProvider{name: "paytr", result: IframeResult("https://www.paytr.com/odeme/guvenlik/abc", "10011")}
	service, attempts := newServiceWith(t, &config.PaymentSettings{Provider: "paytr", IsActive: true}, stub)

	order, buyer, items := testOrder()
	ctx := WithRequestID(context.Background(), "req-123")
	service.InitializePayment(ctx, order, buyer, items, "10.0.0.1")

	require.Len(t, attempts.logs, 1)
	assert.Equal(t, "req-123", attempts.logs[0].RequestID)
}

func TestWithRequestID_Empty(t *testing.T) {
	ctx := WithRequestID(context.Background(), "")
	assert.NotEmpty(t, requestIDFrom(ctx))
}
