package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mstgnz/storepay/infra/config"
)

const defaultHTTPTimeout = 30 * time.Second

// HTTPClientConfig represents configuration for HTTP client
type HTTPClientConfig struct {
	Provider       string
	BaseURL        string
	Timeout        time.Duration
	DefaultHeaders map[string]string
	// Client overrides the underlying *http.Client, mostly for tests
	Client *http.Client
}

// HTTPRequest represents a standardized HTTP request
type HTTPRequest struct {
	Method   string
	Endpoint string
	Headers  map[string]string
	Body     any
	FormData url.Values
}

// HTTPResponse represents a standardized HTTP response
type HTTPResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// ProviderHTTPClient provides standardized HTTP operations for payment providers
type ProviderHTTPClient struct {
	config *HTTPClientConfig
	client *http.Client
}

// NewProviderHTTPClient creates a new provider HTTP client
func NewProviderHTTPClient(cfg *HTTPClientConfig) *ProviderHTTPClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultHTTPTimeout
	}

	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &ProviderHTTPClient{
		config: cfg,
		client: client,
	}
}

// CreateHTTPClientConfig creates a standard HTTP client configuration for providers
// using the configured outbound timeout.
func CreateHTTPClientConfig(providerName, baseURL string) *HTTPClientConfig {
	return &HTTPClientConfig{
		Provider: providerName,
		BaseURL:  baseURL,
		Timeout:  config.GetAppConfig().HTTPClientTimeout,
		DefaultHeaders: map[string]string{
			"Accept":     "application/json",
			"User-Agent": "StorePay/1.0",
		},
	}
}

// SendJSON sends a JSON request and returns the response
func (c *ProviderHTTPClient) SendJSON(ctx context.Context, req *HTTPRequest) (*HTTPResponse, error) {
	var body io.Reader
	if req.Body != nil {
		switch b := req.Body.(type) {
		case []byte:
			body = bytes.NewReader(b)
		default:
			jsonData, err := json.Marshal(req.Body)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal JSON body: %w", err)
			}
			body = bytes.NewReader(jsonData)
		}
	}
	return c.sendRequest(ctx, req, body, "application/json")
}

// SendForm sends a form-encoded request and returns the response
func (c *ProviderHTTPClient) SendForm(ctx context.Context, req *HTTPRequest) (*HTTPResponse, error) {
	return c.sendRequest(ctx, req, strings.NewReader(req.FormData.Encode()), "application/x-www-form-urlencoded")
}

// sendRequest issues the request; every failure comes back as a *TransportError
func (c *ProviderHTTPClient) sendRequest(ctx context.Context, req *HTTPRequest, body io.Reader, contentType string) (*HTTPResponse, error) {
	method := req.Method
	if method == "" {
		method = http.MethodPost
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.buildURL(req.Endpoint), body)
	if err != nil {
		return nil, c.transportError(0, fmt.Errorf("failed to create HTTP request: %w", err))
	}

	for key, value := range c.config.DefaultHeaders {
		httpReq.Header.Set(key, value)
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
	httpReq.Header.Set("Content-Type", contentType)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, c.transportError(0, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.transportError(resp.StatusCode, fmt.Errorf("failed to read response body: %w", err))
	}

	response := &HTTPResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       respBody,
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return response, c.transportError(resp.StatusCode, fmt.Errorf("unexpected status: %s", truncate(string(respBody), 256)))
	}

	return response, nil
}

func (c *ProviderHTTPClient) transportError(status int, err error) *TransportError {
	return &TransportError{Provider: c.config.Provider, StatusCode: status, Err: err}
}

// ParseJSONResponse decodes the response body; malformed JSON is a transport error
func (c *ProviderHTTPClient) ParseJSONResponse(response *HTTPResponse, target any) error {
	if err := json.Unmarshal(response.Body, target); err != nil {
		return c.transportError(response.StatusCode, fmt.Errorf("invalid JSON response: %w", err))
	}
	return nil
}

func (c *ProviderHTTPClient) buildURL(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	return joinURL(c.config.BaseURL, endpoint)
}

func joinURL(base, endpoint string) string {
	if strings.HasSuffix(base, "/") && strings.HasPrefix(endpoint, "/") {
		return base + endpoint[1:]
	}
	if !strings.HasSuffix(base, "/") && !strings.HasPrefix(endpoint, "/") {
		return base + "/" + endpoint
	}
	return base + endpoint
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
