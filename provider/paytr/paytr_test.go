package paytr

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mstgnz/storepay/infra/config"
	"github.com/mstgnz/storepay/provider"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testMerchantID   = "123456"
	testMerchantKey  = "merchant-key-123"
	testMerchantSalt = "merchant-salt-456"
)

// fakePayTR counts token requests and replies with a fixed body
type fakePayTR struct {
	mu       sync.Mutex
	requests []url.Values
	status   int
	body     string
}

func newFakePayTR(t *testing.T, body string) (*fakePayTR, *httptest.Server) {
	t.Helper()

	fake := &fakePayTR{status: http.StatusOK, body: body}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, endpointIFrameToken, r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.NoError(t, r.ParseForm())

		fake.mu.Lock()
		fake.requests = append(fake.requests, r.PostForm)
		fake.mu.Unlock()

		w.WriteHeader(fake.status)
		_, _ = io.WriteString(w, fake.body)
	}))
	t.Cleanup(srv.Close)

	return fake, srv
}

func (f *fakePayTR) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func testSettings(baseURL string) config.PaymentSettings {
	return config.PaymentSettings{
		Provider:     "paytr",
		IsActive:     true,
		MerchantID:   testMerchantID,
		APIKey:       testMerchantKey,
		MerchantSalt: testMerchantSalt,
		BaseURL:      baseURL,
		TestMode:     true,
		SiteURL:      "https://shop.example.com",
	}
}

func headphoneCheckout() (provider.Order, provider.Buyer, []provider.BasketItem) {
	order := provider.Order{
		ID:              "1001",
		Total:           decimal.RequireFromString("149.90"),
		ShippingAddress: "Bağdat Caddesi No:1, Kadıköy",
		Phone:           "05551234567",
	}
	buyer := provider.Buyer{ID: "u-1", Name: "Ayşe Yılmaz", Email: "ayse@example.com"}
	items := []provider.BasketItem{
		{ID: "p-1", Name: "Kulaklık", Price: decimal.RequireFromString("149.90"), Quantity: 1},
	}
	return order, buyer, items
}

func TestPayTRProvider_HappyPath(t *testing.T) {
	fake, srv := newFakePayTR(t, `{"status":"success","token":"abc123"}`)
	p := NewProvider(testSettings(srv.URL))

	order, buyer, items := headphoneCheckout()
	result := p.InitializePayment(context.Background(), order, buyer, items, "88.77.66.55")

	require.Equal(t, provider.ResultSuccess, result.Status, result.ErrorMessage)
	assert.NoError(t, result.Validate())
	assert.True(t, strings.HasSuffix(result.IframeURL, "/abc123"))
	assert.Equal(t, "https://www.paytr.com/odeme/guvenlik/abc123", result.IframeURL)
	assert.True(t, strings.HasPrefix(result.PaymentID, order.ID))
	assert.Empty(t, result.ErrorMessage)
	assert.Empty(t, result.HTMLContent)

	require.Equal(t, 1, fake.count())
	form := fake.requests[0]

	assert.Equal(t, testMerchantID, form.Get("merchant_id"))
	assert.Equal(t, "88.77.66.55", form.Get("user_ip"))
	assert.Equal(t, result.PaymentID, form.Get("merchant_oid"))
	assert.Equal(t, "ayse@example.com", form.Get("email"))
	assert.Equal(t, "14990", form.Get("payment_amount"))
	assert.Equal(t, "0", form.Get("no_installment"))
	assert.Equal(t, "0", form.Get("max_installment"))
	assert.Equal(t, "TL", form.Get("currency"))
	assert.Equal(t, "1", form.Get("test_mode"))
	assert.Equal(t, "1", form.Get("debug_on"))
	assert.Equal(t, "30", form.Get("timeout_limit"))
	assert.Equal(t, "tr", form.Get("lang"))
	assert.Equal(t, "Ayşe Yılmaz", form.Get("user_name"))
	assert.Equal(t, "Bağdat Caddesi No:1, Kadıköy", form.Get("user_address"))
	assert.Equal(t, "05551234567", form.Get("user_phone"))
	assert.Equal(t, "https://shop.example.com/checkout/success", form.Get("merchant_ok_url"))
	assert.Equal(t, "https://shop.example.com/checkout/fail", form.Get("merchant_fail_url"))

	// UTF-8 survives JSON, base64 and form encoding byte-for-byte
	raw, err := base64.StdEncoding.DecodeString(form.Get("user_basket"))
	require.NoError(t, err)
	assert.Equal(t, `[["Kulaklık","149.90",1]]`, string(raw))

	// the gateway can recompute the signature from what it received
	expected := signToken(tokenFields{
		MerchantID:     form.Get("merchant_id"),
		UserIP:         form.Get("user_ip"),
		MerchantOID:    form.Get("merchant_oid"),
		Email:          form.Get("email"),
		PaymentAmount:  form.Get("payment_amount"),
		UserBasket:     form.Get("user_basket"),
		NoInstallment:  form.Get("no_installment"),
		MaxInstallment: form.Get("max_installment"),
		Currency:       form.Get("currency"),
		TestMode:       form.Get("test_mode"),
	}, testMerchantKey, testMerchantSalt)
	assert.Equal(t, expected, form.Get("paytr_token"))
}

func TestPayTRProvider_SignatureRejected(t *testing.T) {
	fake, srv := newFakePayTR(t, `{"status":"failed","reason":"PAYTR_TOKEN_INVALID"}`)
	p := NewProvider(testSettings(srv.URL))

	order, buyer, items := headphoneCheckout()
	result := p.InitializePayment(context.Background(), order, buyer, items, "88.77.66.55")

	assert.Equal(t, provider.ResultFailure, result.Status)
	assert.Equal(t, "PAYTR_TOKEN_INVALID", result.ErrorMessage)
	assert.Equal(t, provider.KindRemote, result.Kind)
	assert.Empty(t, result.IframeURL)
	assert.Empty(t, result.PaymentID)
	assert.Equal(t, 1, fake.count())
}

func TestPayTRProvider_NoNetworkOnInvalidInput(t *testing.T) {
	order, buyer, items := headphoneCheckout()

	tests := []struct {
		name     string
		mutate   func(s *config.PaymentSettings, o *provider.Order, items *[]provider.BasketItem)
		kind     provider.FailureKind
		contains string
	}{
		{
			name:     "missing_merchant_id",
			mutate:   func(s *config.PaymentSettings, _ *provider.Order, _ *[]provider.BasketItem) { s.MerchantID = "" },
			kind:     provider.KindConfiguration,
			contains: "paytr: credentials missing: merchant_id",
		},
		{
			name:     "missing_merchant_key",
			mutate:   func(s *config.PaymentSettings, _ *provider.Order, _ *[]provider.BasketItem) { s.APIKey = "" },
			kind:     provider.KindConfiguration,
			contains: "merchant_key",
		},
		{
			name: "missing_salt_and_secret",
			mutate: func(s *config.PaymentSettings, _ *provider.Order, _ *[]provider.BasketItem) {
				s.MerchantSalt = ""
				s.SecretKey = ""
			},
			kind:     provider.KindConfiguration,
			contains: "merchant_salt",
		},
		{
			name:     "inactive",
			mutate:   func(s *config.PaymentSettings, _ *provider.Order, _ *[]provider.BasketItem) { s.IsActive = false },
			kind:     provider.KindConfiguration,
			contains: "not configured",
		},
		{
			name:     "empty_basket",
			mutate:   func(_ *config.PaymentSettings, _ *provider.Order, items *[]provider.BasketItem) { *items = nil },
			kind:     provider.KindValidation,
			contains: "basket is empty",
		},
		{
			name:     "zero_total",
			mutate:   func(_ *config.PaymentSettings, o *provider.Order, _ *[]provider.BasketItem) { o.Total = decimal.Zero },
			kind:     provider.KindValidation,
			contains: "amount must be positive",
		},
		{
			name: "total_below_one_kurus",
			mutate: func(_ *config.PaymentSettings, o *provider.Order, items *[]provider.BasketItem) {
				o.Total = decimal.RequireFromString("0.004")
				(*items)[0].Price = decimal.RequireFromString("0.004")
			},
			kind:     provider.KindValidation,
			contains: "amount must be positive",
		},
		{
			name: "zero_quantity",
			mutate: func(_ *config.PaymentSettings, _ *provider.Order, items *[]provider.BasketItem) {
				(*items)[0].Quantity = 0
			},
			kind:     provider.KindValidation,
			contains: "invalid basket item",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake, srv := newFakePayTR(t, `{"status":"success","token":"abc123"}`)

			settings := testSettings(srv.URL)
			o := order
			its := append([]provider.BasketItem(nil), items...)
			tt.mutate(&settings, &o, &its)

			result := NewProvider(settings).InitializePayment(context.Background(), o, buyer, its, "88.77.66.55")

			assert.Equal(t, provider.ResultFailure, result.Status)
			assert.Equal(t, tt.kind, result.Kind)
			assert.Contains(t, result.ErrorMessage, tt.contains)
			assert.NoError(t, result.Validate())
			assert.Zero(t, fake.count(), "no request may reach the gateway")
		})
	}
}

func TestPayTRProvider_SecretKeyUsedAsSalt(t *testing.T) {
	fake, srv := newFakePayTR(t, `{"status":"success","token":"t"}`)

	settings := testSettings(srv.URL)
	settings.MerchantSalt = ""
	settings.SecretKey = "fallback-salt"

	order, buyer, items := headphoneCheckout()
	result := NewProvider(settings).InitializePayment(context.Background(), order, buyer, items, "1.1.1.1")
	require.True(t, result.Success())

	form := fake.requests[0]
	fields := tokenFields{
		MerchantID: form.Get("merchant_id"), UserIP: form.Get("user_ip"), MerchantOID: form.Get("merchant_oid"),
		Email: form.Get("email"), PaymentAmount: form.Get("payment_amount"), UserBasket: form.Get("user_basket"),
		NoInstallment: "0", MaxInstallment: "0", Currency: "TL", TestMode: "1",
	}
	assert.Equal(t, signToken(fields, testMerchantKey, "fallback-salt"), form.Get("paytr_token"))
}

func TestPayTRProvider_TransportFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"http_500", http.StatusInternalServerError, "internal error"},
		{"not_json", http.StatusOK, "<html>maintenance</html>"},
		{"success_without_token", http.StatusOK, `{"status":"success"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake, srv := newFakePayTR(t, tt.body)
			fake.status = tt.status

			order, buyer, items := headphoneCheckout()
			result := NewProvider(testSettings(srv.URL)).InitializePayment(context.Background(), order, buyer, items, "1.1.1.1")

			assert.Equal(t, provider.ResultFailure, result.Status)
			assert.Equal(t, provider.KindTransport, result.Kind)
			assert.NotEmpty(t, result.ErrorMessage)
		})
	}
}

func TestPayTRProvider_Unreachable(t *testing.T) {
	client := &http.Client{Timeout: 100 * time.Millisecond}
	p := NewProvider(testSettings("http://127.0.0.1:1"), WithHTTPClient(client))

	order, buyer, items := headphoneCheckout()
	result := p.InitializePayment(context.Background(), order, buyer, items, "1.1.1.1")

	assert.Equal(t, provider.KindTransport, result.Kind)
}

func TestPayTRProvider_DeterministicSignature(t *testing.T) {
	fake, srv := newFakePayTR(t, `{"status":"success","token":"t"}`)

	p := NewProvider(testSettings(srv.URL))
	p.now = func() time.Time { return time.UnixMilli(1718000000000) }
	p.suffix = func() string { return "0042" }

	order, buyer, items := headphoneCheckout()
	items = append(items, provider.BasketItem{ID: "p-2", Name: "Kablo", Price: decimal.RequireFromString("9.99"), Quantity: 2})

	p.InitializePayment(context.Background(), order, buyer, items, "1.1.1.1")
	p.InitializePayment(context.Background(), order, buyer, items, "1.1.1.1")

	swapped := []provider.BasketItem{items[1], items[0]}
	p.InitializePayment(context.Background(), order, buyer, swapped, "1.1.1.1")

	require.Equal(t, 3, fake.count())
	assert.Equal(t, "100117180000000000042", fake.requests[0].Get("merchant_oid"))
	assert.Equal(t, fake.requests[0].Get("paytr_token"), fake.requests[1].Get("paytr_token"))
	assert.NotEqual(t, fake.requests[0].Get("paytr_token"), fake.requests[2].Get("paytr_token"))
}

func TestTokenFields_Canonical(t *testing.T) {
	fields := tokenFields{
		MerchantID:     "123456",
		UserIP:         "1.2.3.4",
		MerchantOID:    "OID1",
		Email:          "a@b.c",
		PaymentAmount:  "14990",
		UserBasket:     "W10=",
		NoInstallment:  "0",
		MaxInstallment: "0",
		Currency:       "TL",
		TestMode:       "1",
	}

	assert.Equal(t, "1234561.2.3.4OID1a@b.c14990W10=00TL1", fields.canonical())

	// base64(HMAC-SHA256(key="key", message=canonical+"salt"))
	assert.Equal(t, "qLaRKxaVB9OYY/A7bdxOzVfQFF0WKJhV0QUZs4cA+F4=", signToken(fields, "key", "salt"))

	base := signToken(fields, "key", "salt")
	assert.Equal(t, base, signToken(fields, "key", "salt"))

	changed := fields
	changed.UserIP = "1.2.3.5"
	assert.NotEqual(t, base, signToken(changed, "key", "salt"))
	assert.NotEqual(t, base, signToken(fields, "key", "other-salt"))
}

func TestPayTRProvider_MerchantOrderID(t *testing.T) {
	p := NewProvider(testSettings(""))
	alnum := regexp.MustCompile(`^[A-Za-z0-9]+$`)

	tests := []struct {
		orderID string
		prefix  string
	}{
		{"1001", "1001"},
		{"ORD-2024/15", "ORD202415"},
		{"sipariş_7", "sipari7"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.orderID, func(t *testing.T) {
			oid := p.merchantOrderID(tt.orderID)
			assert.True(t, strings.HasPrefix(oid, tt.prefix))
			assert.Regexp(t, alnum, oid)
			assert.LessOrEqual(t, len(oid), 64)
		})
	}

	long := p.merchantOrderID(strings.Repeat("a", 100))
	assert.LessOrEqual(t, len(long), 64)
}

func TestPayTRProvider_PunctuatedOrderID(t *testing.T) {
	fake, srv := newFakePayTR(t, `{"status":"success","token":"abc123"}`)
	p := NewProvider(testSettings(srv.URL))

	order, buyer, items := headphoneCheckout()
	order.ID = "ORD-1001"

	result := p.InitializePayment(context.Background(), order, buyer, items, "88.77.66.55")
	require.True(t, result.Success(), result.ErrorMessage)

	// PayTR accepts only alphanumeric merchant_oid values
	assert.True(t, strings.HasPrefix(result.PaymentID, "ORD1001"))
	assert.False(t, strings.HasPrefix(result.PaymentID, order.ID))
	assert.Regexp(t, `^ORD1001[0-9]{17}$`, result.PaymentID)

	require.Equal(t, 1, fake.count())
	assert.Equal(t, result.PaymentID, fake.requests[0].Get("merchant_oid"))
}

func TestPayTRProvider_Name(t *testing.T) {
	assert.Equal(t, "paytr", NewProvider(config.PaymentSettings{}).Name())
}

func TestRegistered(t *testing.T) {
	factory, err := provider.Get("paytr")
	require.NoError(t, err)

	p := factory(testSettings(""))
	_, ok := p.(*PayTRProvider)
	assert.True(t, ok)
}
