package paytr

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/mstgnz/storepay/infra/config"
	"github.com/mstgnz/storepay/infra/logger"
	"github.com/mstgnz/storepay/provider"
)

const (
	// API URLs
	apiBaseURL   = "https://www.paytr.com"
	iframeURLFmt = "https://www.paytr.com/odeme/guvenlik/%s"

	// API Endpoints
	endpointIFrameToken = "/odeme/api/get-token"

	// PayTR Status Codes
	statusSuccess = "success"

	// Storefront callback paths
	callbackSuccessPath = "/checkout/success"
	callbackFailPath    = "/checkout/fail"

	// Default Values
	defaultCurrency = "TL"
	noInstallment   = "0"
	maxInstallment  = "0"
	timeoutLimit    = "30"
	defaultLang     = "tr"

	// PayTR limits merchant_oid to 64 alphanumeric characters
	maxOrderPrefixLen = 40
)

// PayTRProvider implements provider.PaymentProvider with PayTR's iFrame API
type PayTRProvider struct {
	settings config.PaymentSettings
	client   *http.Client
	now      func() time.Time
	suffix   func() string
}

// Option customizes a PayTRProvider
type Option func(*PayTRProvider)

// WithHTTPClient replaces the outbound HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(p *PayTRProvider) {
		p.client = client
	}
}

// NewProvider creates a PayTR provider bound to a settings snapshot
func NewProvider(settings config.PaymentSettings, opts ...Option) *PayTRProvider {
	p := &PayTRProvider{
		settings: settings,
		now:      time.Now,
		suffix: func() string {
			return fmt.Sprintf("%04d", rand.IntN(10000))
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the provider key
func (p *PayTRProvider) Name() string {
	return provider.ProviderPayTR
}

// InitializePayment requests an iFrame token and returns the iFrame URL
func (p *PayTRProvider) InitializePayment(ctx context.Context, order provider.Order, buyer provider.Buyer, items []provider.BasketItem, remoteIP string) provider.PaymentResult {
	log := logger.WithProvider(provider.ProviderPayTR).SetOrderID(order.ID)

	creds, err := provider.ResolveCredentials(&p.settings, provider.ProviderPayTR)
	if err != nil {
		log.Warn(err.Error())
		return provider.Failure(err)
	}

	if err := provider.ValidateBasket(items); err != nil {
		return provider.Failure(fmt.Errorf("paytr: %w", err))
	}
	if err := provider.ValidateAmount(order.Total); err != nil {
		return provider.Failure(fmt.Errorf("paytr: %w", err))
	}

	// encoded once; the same bytes go into the form and the signature
	userBasket, err := provider.EncodeBasket(items)
	if err != nil {
		return provider.Failure(fmt.Errorf("paytr: %w: %v", provider.ErrInvalidBasketItem, err))
	}

	fields := tokenFields{
		MerchantID:     creds.MerchantID,
		UserIP:         remoteIP,
		MerchantOID:    p.merchantOrderID(order.ID),
		Email:          buyer.Email,
		PaymentAmount:  provider.MinorUnitString(order.Total),
		UserBasket:     userBasket,
		NoInstallment:  noInstallment,
		MaxInstallment: maxInstallment,
		Currency:       defaultCurrency,
		TestMode:       boolFlag(creds.TestMode),
	}

	form := url.Values{}
	form.Set("merchant_id", fields.MerchantID)
	form.Set("user_ip", fields.UserIP)
	form.Set("merchant_oid", fields.MerchantOID)
	form.Set("email", fields.Email)
	form.Set("payment_amount", fields.PaymentAmount)
	form.Set("paytr_token", signToken(fields, creds.MerchantKey, creds.MerchantSalt))
	form.Set("user_basket", fields.UserBasket)
	form.Set("debug_on", fields.TestMode)
	form.Set("no_installment", fields.NoInstallment)
	form.Set("max_installment", fields.MaxInstallment)
	form.Set("user_name", buyer.Name)
	form.Set("user_address", order.ShippingAddress)
	form.Set("user_phone", order.Phone)
	form.Set("merchant_ok_url", creds.SiteURL+callbackSuccessPath)
	form.Set("merchant_fail_url", creds.SiteURL+callbackFailPath)
	form.Set("timeout_limit", timeoutLimit)
	form.Set("currency", fields.Currency)
	form.Set("test_mode", fields.TestMode)
	form.Set("lang", defaultLang)

	provider.RecordRequest(ctx, flatten(form))

	token, err := p.requestToken(ctx, creds, form)
	if err != nil {
		log.AddField("request", provider.RedactFields(flatten(form))).Error("iFrame token request failed", err)
		var remoteErr *provider.RemoteError
		if errors.As(err, &remoteErr) {
			return provider.FailureResult(provider.KindRemote, remoteErr.Reason)
		}
		return provider.Failure(err)
	}

	log.AddField("merchant_oid", fields.MerchantOID).Debug("iFrame token issued")

	return provider.IframeResult(fmt.Sprintf(iframeURLFmt, token), fields.MerchantOID)
}

// tokenFields are the signed inputs, in PayTR's canonical order
type tokenFields struct {
	MerchantID     string
	UserIP         string
	MerchantOID    string
	Email          string
	PaymentAmount  string
	UserBasket     string
	NoInstallment  string
	MaxInstallment string
	Currency       string
	TestMode       string
}

func (f tokenFields) canonical() string {
	return provider.BuildCanonicalString(
		f.MerchantID,
		f.UserIP,
		f.MerchantOID,
		f.Email,
		f.PaymentAmount,
		f.UserBasket,
		f.NoInstallment,
		f.MaxInstallment,
		f.Currency,
		f.TestMode,
	)
}

// signToken is base64(HMAC-SHA256(merchant_key, canonical + merchant_salt))
func signToken(f tokenFields, merchantKey, merchantSalt string) string {
	return provider.SignBase64(merchantKey, f.canonical()+merchantSalt)
}

type tokenResponse struct {
	Status string `json:"status"`
	Token  string `json:"token"`
	Reason string `json:"reason"`
}

func (p *PayTRProvider) requestToken(ctx context.Context, creds provider.Credentials, form url.Values) (string, error) {
	baseURL := creds.BaseURL
	if baseURL == "" {
		baseURL = apiBaseURL
	}

	cfg := provider.CreateHTTPClientConfig(provider.ProviderPayTR, baseURL)
	cfg.Client = p.client
	client := provider.NewProviderHTTPClient(cfg)

	resp, err := client.SendForm(ctx, &provider.HTTPRequest{
		Method:   http.MethodPost,
		Endpoint: endpointIFrameToken,
		FormData: form,
	})
	if err != nil {
		return "", err
	}

	var body tokenResponse
	if err := client.ParseJSONResponse(resp, &body); err != nil {
		return "", err
	}

	if body.Status != statusSuccess {
		reason := body.Reason
		if reason == "" {
			reason = "token request rejected with status " + strconv.Quote(body.Status)
		}
		return "", &provider.RemoteError{Provider: provider.ProviderPayTR, Reason: reason}
	}

	if body.Token == "" {
		return "", &provider.TransportError{Provider: provider.ProviderPayTR, StatusCode: resp.StatusCode, Err: errors.New("success response without token")}
	}

	return body.Token, nil
}

// merchantOrderID is the order id reduced to alphanumerics, then unix millis and 4 random digits
func (p *PayTRProvider) merchantOrderID(orderID string) string {
	prefix := strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return r
		}
		return -1
	}, orderID)
	if len(prefix) > maxOrderPrefixLen {
		prefix = prefix[:maxOrderPrefixLen]
	}

	return prefix + strconv.FormatInt(p.now().UnixMilli(), 10) + p.suffix()
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func flatten(form url.Values) map[string]string {
	out := make(map[string]string, len(form))
	for k := range form {
		out[k] = form.Get(k)
	}
	return out
}
