package opensearch

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/mstgnz/storepay/infra/config"
	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
)

const (
	indexPrefix     = "storepay-"
	systemLogsIndex = indexPrefix + "system-logs"
)

// providers that get a dedicated payment log index
var logProviders = []string{"paytr", "iyzico"}

// Client wraps the OpenSearch client
type Client struct {
	client  *opensearch.Client
	enabled bool
}

// NewClient creates a new OpenSearch client
func NewClient(cfg *config.AppConfig) (*Client, error) {
	opensearchConfig := opensearch.Config{
		Addresses: []string{cfg.OpenSearchURL},
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: cfg.Environment != "production",
			},
		},
		MaxRetries:    3,
		RetryOnStatus: []int{502, 503, 504, 429},
		RetryBackoff: func(i int) time.Duration {
			return time.Duration(i) * 100 * time.Millisecond
		},
	}

	if cfg.OpenSearchUser != "" && cfg.OpenSearchPass != "" {
		opensearchConfig.Username = cfg.OpenSearchUser
		opensearchConfig.Password = cfg.OpenSearchPass
	}

	client, err := opensearch.NewClient(opensearchConfig)
	if err != nil {
		return nil, err
	}

	osClient := &Client{
		client:  client,
		enabled: cfg.EnableLogging,
	}

	if err := osClient.setupIndices(context.Background()); err != nil {
		log.Printf("Warning: Failed to setup OpenSearch indices: %v", err)
	}

	return osClient, nil
}

// GetClient returns the underlying OpenSearch client
func (c *Client) GetClient() *opensearch.Client {
	return c.client
}

// setupIndices creates the payment log indices when they are missing
func (c *Client) setupIndices(ctx context.Context) error {
	for _, provider := range logProviders {
		indexName := c.GetLogIndexName(provider)

		exists, err := c.indexExists(ctx, indexName)
		if err != nil {
			return fmt.Errorf("checking index %s: %w", indexName, err)
		}

		if !exists {
			if err := c.createLogIndex(ctx, indexName); err != nil {
				log.Printf("Error creating index %s: %v", indexName, err)
				continue
			}
			log.Printf("Created OpenSearch index: %s", indexName)
		}
	}

	return nil
}

func (c *Client) indexExists(ctx context.Context, indexName string) (bool, error) {
	req := opensearchapi.IndicesExistsRequest{
		Index: []string{indexName},
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return false, err
	}
	defer res.Body.Close()

	return res.StatusCode == http.StatusOK, nil
}

// createLogIndex creates a new index for payment attempt logs
func (c *Client) createLogIndex(ctx context.Context, indexName string) error {
	mapping := `{
		"mappings": {
			"properties": {
				"timestamp":          {"type": "date", "format": "strict_date_optional_time||epoch_millis"},
				"provider":           {"type": "keyword"},
				"request_id":         {"type": "keyword"},
				"client_ip":          {"type": "ip"},
				"order_id":           {"type": "keyword"},
				"payment_id":         {"type": "keyword"},
				"amount":             {"type": "keyword"},
				"currency":           {"type": "keyword"},
				"status":             {"type": "keyword"},
				"processing_time_ms": {"type": "integer"},
				"request":            {"type": "object", "enabled": false},
				"error": {
					"type": "object",
					"properties": {
						"kind":    {"type": "keyword"},
						"message": {"type": "text"}
					}
				}
			}
		},
		"settings": {
			"number_of_shards": 1,
			"number_of_replicas": 0
		}
	}`

	req := opensearchapi.IndicesCreateRequest{
		Index: indexName,
		Body:  strings.NewReader(mapping),
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index creation error: %s", res.String())
	}

	return nil
}

// GetLogIndexName returns the index name for a provider's payment logs
func (c *Client) GetLogIndexName(provider string) string {
	return indexPrefix + strings.ToLower(provider) + "-logs"
}

// IsEnabled returns whether OpenSearch logging is enabled
func (c *Client) IsEnabled() bool {
	return c != nil && c.enabled
}
