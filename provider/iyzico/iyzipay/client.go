// Package iyzipay is a minimal iyzico API client covering Checkout Form
// initialization with the IYZWSv2 authorization scheme.
package iyzipay

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"github.com/mstgnz/storepay/provider"
)

const (
	SandboxBaseURL    = "https://sandbox-api.iyzipay.com"
	ProductionBaseURL = "https://api.iyzipay.com"

	CheckoutFormInitializePath = "/payment/iyzipos/checkoutform/initialize/auth/ecom"

	authScheme    = "IYZWSv2"
	clientVersion = "storepay-iyzipay-go-1.0"
)

// ErrMissingKeys is returned by NewClient when the API or secret key is empty
var ErrMissingKeys = errors.New("iyzipay: api key and secret key are required")

// Options configures a Client
type Options struct {
	APIKey     string
	SecretKey  string
	BaseURL    string
	HTTPClient *http.Client
}

// Client signs and sends requests to the iyzico API
type Client struct {
	apiKey    string
	secretKey string
	http      *provider.ProviderHTTPClient
	randomKey func() string
}

// NewClient creates a client; BaseURL defaults to the sandbox
func NewClient(opts Options) (*Client, error) {
	if opts.APIKey == "" || opts.SecretKey == "" {
		return nil, ErrMissingKeys
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = SandboxBaseURL
	}

	cfg := provider.CreateHTTPClientConfig(provider.ProviderIyzico, baseURL)
	cfg.Client = opts.HTTPClient
	cfg.DefaultHeaders["x-iyzi-client-version"] = clientVersion

	return &Client{
		apiKey:    opts.APIKey,
		secretKey: opts.SecretKey,
		http:      provider.NewProviderHTTPClient(cfg),
		randomKey: newRandomKey,
	}, nil
}

// CheckoutFormInitialize creates a checkout form session. A well-formed
// rejection comes back as a response with Status failure and a nil error.
func (c *Client) CheckoutFormInitialize(ctx context.Context, req *CheckoutFormInitializeRequest) (*CheckoutFormInitializeResponse, error) {
	var resp CheckoutFormInitializeResponse
	if err := c.post(ctx, CheckoutFormInitializePath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, path string, payload, target any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("iyzipay: marshal request: %w", err)
	}

	rnd := c.randomKey()
	httpResp, err := c.http.SendJSON(ctx, &provider.HTTPRequest{
		Method:   http.MethodPost,
		Endpoint: path,
		Body:     body,
		Headers: map[string]string{
			"Authorization": AuthorizationHeader(c.apiKey, c.secretKey, rnd, path, body),
			"x-iyzi-rnd":    rnd,
		},
	})
	if err != nil {
		// iyzico reports some rejections with a 4xx and a regular error body
		if httpResp != nil && json.Unmarshal(httpResp.Body, target) == nil && hasErrorBody(target) {
			return nil
		}
		return err
	}

	return c.http.ParseJSONResponse(httpResp, target)
}

func hasErrorBody(target any) bool {
	resp, ok := target.(*CheckoutFormInitializeResponse)
	return ok && resp.Status == StatusFailure && resp.ErrorMessage != ""
}

// AuthorizationHeader builds the IYZWSv2 header value:
// "IYZWSv2 " + base64("apiKey:<k>&randomKey:<r>&signature:<hex(HMAC-SHA256(secret, r+path+body))>")
func AuthorizationHeader(apiKey, secretKey, randomKey, path string, body []byte) string {
	payload := make([]byte, 0, len(randomKey)+len(path)+len(body))
	payload = append(payload, randomKey...)
	payload = append(payload, path...)
	payload = append(payload, body...)

	signature := hex.EncodeToString(provider.HMACSHA256([]byte(secretKey), payload))
	params := "apiKey:" + apiKey + "&randomKey:" + randomKey + "&signature:" + signature

	return authScheme + " " + base64.StdEncoding.EncodeToString([]byte(params))
}

func newRandomKey() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10) + fmt.Sprintf("%09d", rand.IntN(1_000_000_000))
}
