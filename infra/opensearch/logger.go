package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
)

// ErrLoggingDisabled is returned by queries when OpenSearch logging is turned off
var ErrLoggingDisabled = errors.New("logging is disabled")

// PaymentLog is one payment initialization attempt against a gateway
type PaymentLog struct {
	Timestamp        time.Time         `json:"timestamp"`
	Provider         string            `json:"provider"`
	RequestID        string            `json:"request_id"`
	ClientIP         string            `json:"client_ip,omitempty"`
	OrderID          string            `json:"order_id,omitempty"`
	PaymentID        string            `json:"payment_id,omitempty"`
	Amount           string            `json:"amount,omitempty"`
	Currency         string            `json:"currency,omitempty"`
	Status           string            `json:"status"`
	ProcessingTimeMs int64             `json:"processing_time_ms"`
	Request          map[string]string `json:"request,omitempty"`
	Error            *ErrorInfo        `json:"error,omitempty"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message,omitempty"`
}

// Logger handles OpenSearch logging operations
type Logger struct {
	client *Client
}

// NewLogger creates a new OpenSearch logger
func NewLogger(client *Client) *Logger {
	return &Logger{
		client: client,
	}
}

// Enabled reports whether documents are actually shipped
func (l *Logger) Enabled() bool {
	return l != nil && l.client.IsEnabled()
}

// LogPaymentAttempt indexes a payment initialization attempt
func (l *Logger) LogPaymentAttempt(ctx context.Context, log PaymentLog) error {
	if !l.Enabled() {
		return nil
	}

	if log.Timestamp.IsZero() {
		log.Timestamp = time.Now()
	}
	if log.RequestID == "" {
		log.RequestID = uuid.New().String()
	}

	return l.index(ctx, l.client.GetLogIndexName(log.Provider), log)
}

// SearchLogs searches for payment logs of a provider
func (l *Logger) SearchLogs(ctx context.Context, provider string, query map[string]any) ([]PaymentLog, error) {
	if !l.Enabled() {
		return nil, ErrLoggingDisabled
	}

	searchQuery := map[string]any{
		"query": query,
		"sort": []map[string]any{
			{"timestamp": map[string]string{"order": "desc"}},
		},
		"size": 100,
	}

	queryJSON, err := json.Marshal(searchQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	req := opensearchapi.SearchRequest{
		Index: []string{l.client.GetLogIndexName(provider)},
		Body:  bytes.NewReader(queryJSON),
	}

	res, err := req.Do(ctx, l.client.GetClient())
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("opensearch search error: %s", res.String())
	}

	var searchResult struct {
		Hits struct {
			Hits []struct {
				Source PaymentLog `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&searchResult); err != nil {
		return nil, fmt.Errorf("failed to decode search results: %w", err)
	}

	logs := make([]PaymentLog, len(searchResult.Hits.Hits))
	for i, hit := range searchResult.Hits.Hits {
		logs[i] = hit.Source
	}

	return logs, nil
}

// GetOrderLogs retrieves every attempt made for an order
func (l *Logger) GetOrderLogs(ctx context.Context, provider, orderID string) ([]PaymentLog, error) {
	query := map[string]any{
		"term": map[string]any{
			"order_id": orderID,
		},
	}

	return l.SearchLogs(ctx, provider, query)
}

// GetRecentFailures retrieves failed attempts from the last given hours
func (l *Logger) GetRecentFailures(ctx context.Context, provider string, hours int) ([]PaymentLog, error) {
	query := map[string]any{
		"bool": map[string]any{
			"must": []map[string]any{
				{
					"range": map[string]any{
						"timestamp": map[string]any{
							"gte": fmt.Sprintf("now-%dh", hours),
						},
					},
				},
				{
					"term": map[string]any{
						"status": "failure",
					},
				},
			},
		},
	}

	return l.SearchLogs(ctx, provider, query)
}

// LogSystemEvent logs a system event to OpenSearch
func (l *Logger) LogSystemEvent(ctx context.Context, log any) error {
	if !l.Enabled() {
		return nil
	}

	return l.index(ctx, systemLogsIndex, log)
}

func (l *Logger) index(ctx context.Context, indexName string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal log: %w", err)
	}

	req := opensearchapi.IndexRequest{
		Index: indexName,
		Body:  bytes.NewReader(body),
	}

	res, err := req.Do(ctx, l.client.GetClient())
	if err != nil {
		return fmt.Errorf("failed to index log: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("opensearch error: %s", res.String())
	}

	return nil
}

var sensitiveFields = []string{
	"cardNumber", "card_number", "cvv", "cvc",
	"apiKey", "api_key", "secretKey", "secret_key", "password", "token",
	"merchant_key", "merchant_salt", "paytr_token", "authorization",
}

var sensitivePatterns = compileSensitivePatterns()

func compileSensitivePatterns() map[string][]*regexp.Regexp {
	patterns := make(map[string][]*regexp.Regexp, len(sensitiveFields))
	for _, field := range sensitiveFields {
		name := regexp.QuoteMeta(field)
		patterns[field] = []*regexp.Regexp{
			regexp.MustCompile(fmt.Sprintf(`"%s"\s*:\s*"[^"]*"`, name)),
			regexp.MustCompile(fmt.Sprintf(`(^|[&?])%s=[^&]*`, name)),
		}
	}
	return patterns
}

// SanitizeForLog removes sensitive values from a JSON or form-encoded body
func SanitizeForLog(data string) string {
	result := data
	for _, field := range sensitiveFields {
		jsonPattern, formPattern := sensitivePatterns[field][0], sensitivePatterns[field][1]
		result = jsonPattern.ReplaceAllString(result, fmt.Sprintf(`"%s":"***REDACTED***"`, field))
		result = formPattern.ReplaceAllString(result, fmt.Sprintf(`${1}%s=***REDACTED***`, field))
	}
	return result
}
