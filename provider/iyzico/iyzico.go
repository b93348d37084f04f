package iyzico

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/mstgnz/storepay/infra/config"
	"github.com/mstgnz/storepay/infra/logger"
	"github.com/mstgnz/storepay/provider"
	"github.com/mstgnz/storepay/provider/iyzico/iyzipay"
	"github.com/shopspring/decimal"
)

const (
	// Storefront callback path
	callbackPath = "/checkout/iyzico/callback"

	// Default Values
	defaultCategory  = "Genel"
	defaultSurname   = "-"
	defaultIdentity  = "11111111111"
	defaultCity      = "Istanbul"
	defaultCountry   = "Turkey"
	defaultZipCode   = "34000"
	defaultBasketCap = 64
)

var enabledInstallments = []int{1, 2, 3, 6, 9}

// IyzicoProvider implements provider.PaymentProvider with iyzico's Checkout Form
type IyzicoProvider struct {
	settings       config.PaymentSettings
	client         *http.Client
	conversationID func() string
}

// Option customizes an IyzicoProvider
type Option func(*IyzicoProvider)

// WithHTTPClient replaces the outbound HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(p *IyzicoProvider) {
		p.client = client
	}
}

// NewProvider creates an iyzico provider bound to a settings snapshot
func NewProvider(settings config.PaymentSettings, opts ...Option) *IyzicoProvider {
	p := &IyzicoProvider{
		settings:       settings,
		conversationID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the provider key
func (p *IyzicoProvider) Name() string {
	return provider.ProviderIyzico
}

// InitializePayment creates a checkout form and returns its embeddable content
func (p *IyzicoProvider) InitializePayment(ctx context.Context, order provider.Order, buyer provider.Buyer, items []provider.BasketItem, remoteIP string) provider.PaymentResult {
	log := logger.WithProvider(provider.ProviderIyzico).SetOrderID(order.ID)

	creds, err := provider.ResolveCredentials(&p.settings, provider.ProviderIyzico)
	if err != nil {
		log.Warn(err.Error())
		return provider.Failure(err)
	}

	if err := provider.ValidateBasket(items); err != nil {
		return provider.Failure(fmt.Errorf("iyzico: %w", err))
	}
	if err := provider.ValidateAmount(order.Total); err != nil {
		return provider.Failure(fmt.Errorf("iyzico: %w", err))
	}
	if err := validateLinePrices(items); err != nil {
		return provider.Failure(fmt.Errorf("iyzico: %w", err))
	}

	client, err := iyzipay.NewClient(iyzipay.Options{
		APIKey:     creds.APIKey,
		SecretKey:  creds.SecretKey,
		BaseURL:    baseURL(creds),
		HTTPClient: p.client,
	})
	if err != nil {
		return provider.Failure(fmt.Errorf("iyzico: %w: %v", provider.ErrCredentialsMissing, err))
	}

	req := p.checkoutRequest(creds, order, buyer, items, remoteIP)
	provider.RecordRequest(ctx, requestFields(req))

	resp, err := client.CheckoutFormInitialize(ctx, req)
	if err != nil {
		log.AddField("conversation_id", req.ConversationID).Error("checkout form request failed", err)
		return provider.Failure(err)
	}

	if resp.Status != iyzipay.StatusSuccess {
		remoteErr := &provider.RemoteError{Provider: provider.ProviderIyzico, Reason: resp.ErrorMessage, Code: resp.ErrorCode}
		if remoteErr.Reason == "" {
			remoteErr.Reason = "checkout form rejected with status " + resp.Status
		}
		log.AddField("request", provider.RedactFields(requestFields(req))).Error("checkout form rejected", remoteErr)
		return provider.FailureResult(provider.KindRemote, remoteErr.Reason)
	}

	if resp.CheckoutFormContent == "" {
		err := &provider.TransportError{Provider: provider.ProviderIyzico, StatusCode: http.StatusOK, Err: errors.New("success response without checkout form content")}
		log.Error("checkout form response incomplete", err)
		return provider.Failure(err)
	}

	log.AddField("token", resp.Token).Debug("checkout form created")

	return provider.HTMLResult(resp.CheckoutFormContent, resp.Token)
}

func (p *IyzicoProvider) checkoutRequest(creds provider.Credentials, order provider.Order, buyer provider.Buyer, items []provider.BasketItem, remoteIP string) *iyzipay.CheckoutFormInitializeRequest {
	name, surname := splitName(buyer.Name)

	address := iyzipay.Address{
		ContactName: strings.TrimSpace(name + " " + surname),
		City:        defaultCity,
		Country:     defaultCountry,
		Address:     order.ShippingAddress,
		ZipCode:     defaultZipCode,
	}

	basketItems := make([]iyzipay.BasketItem, 0, len(items))
	price := decimal.Zero
	for i, item := range items {
		category := item.Category
		if category == "" {
			category = defaultCategory
		}
		id := item.ID
		if id == "" {
			id = fmt.Sprintf("item-%d", i+1)
		}
		line := item.LineTotal().Round(2)
		price = price.Add(line)
		basketItems = append(basketItems, iyzipay.BasketItem{
			ID:        id,
			Name:      truncate(item.Name, defaultBasketCap),
			Category1: category,
			ItemType:  iyzipay.BasketItemTypePhysical,
			Price:     provider.FormatPrice(line),
		})
	}

	return &iyzipay.CheckoutFormInitializeRequest{
		Locale:              iyzipay.LocaleTR,
		ConversationID:      p.conversationID(),
		Price:               provider.FormatPrice(price),
		PaidPrice:           provider.FormatPrice(order.Total),
		Currency:            iyzipay.CurrencyTRY,
		BasketID:            order.ID,
		PaymentGroup:        iyzipay.PaymentGroupProduct,
		CallbackURL:         creds.SiteURL + callbackPath,
		EnabledInstallments: enabledInstallments,
		Buyer: iyzipay.Buyer{
			ID:                  buyer.IdentifierOrGuest(),
			Name:                name,
			Surname:             surname,
			GsmNumber:           order.Phone,
			Email:               buyer.Email,
			IdentityNumber:      defaultIdentity,
			RegistrationAddress: order.ShippingAddress,
			IP:                  remoteIP,
			City:                defaultCity,
			Country:             defaultCountry,
			ZipCode:             defaultZipCode,
		},
		ShippingAddress: address,
		BillingAddress:  address,
		BasketItems:     basketItems,
	}
}

// validateLinePrices rejects lines that round to 0.00; iyzico requires every basket item price to be positive
func validateLinePrices(items []provider.BasketItem) error {
	for i, item := range items {
		if provider.ToMinorUnits(item.LineTotal()) <= 0 {
			return fmt.Errorf("%w: item %d (%s) has line price %s", provider.ErrInvalidBasketItem, i, item.Name, provider.FormatPrice(item.LineTotal()))
		}
	}
	return nil
}

// splitName splits on the first space; iyzico rejects an empty surname
func splitName(full string) (string, string) {
	full = strings.TrimSpace(full)
	name, surname, _ := strings.Cut(full, " ")
	surname = strings.TrimSpace(surname)
	if surname == "" {
		surname = defaultSurname
	}
	return name, surname
}

func baseURL(creds provider.Credentials) string {
	switch {
	case creds.BaseURL != "":
		return creds.BaseURL
	case creds.TestMode:
		return iyzipay.SandboxBaseURL
	default:
		return iyzipay.ProductionBaseURL
	}
}

func requestFields(req *iyzipay.CheckoutFormInitializeRequest) map[string]string {
	return map[string]string{
		"conversation_id": req.ConversationID,
		"basket_id":       req.BasketID,
		"price":           req.Price,
		"paid_price":      req.PaidPrice,
		"currency":        req.Currency,
		"callback_url":    req.CallbackURL,
		"buyer_id":        req.Buyer.ID,
		"buyer_email":     req.Buyer.Email,
		"buyer_ip":        req.Buyer.IP,
		"basket_items":    fmt.Sprint(len(req.BasketItems)),
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
