package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mstgnz/storepay/infra/logger"
	"github.com/mstgnz/storepay/infra/opensearch"
	"github.com/mstgnz/storepay/infra/response"
	"github.com/mstgnz/storepay/provider"
)

const (
	defaultFailureHours = 24
	maxFailureHours     = 24 * 30
)

// AttemptLogReader queries indexed payment attempts
type AttemptLogReader interface {
	GetOrderLogs(ctx context.Context, provider, orderID string) ([]opensearch.PaymentLog, error)
	GetRecentFailures(ctx context.Context, provider string, hours int) ([]opensearch.PaymentLog, error)
}

// LogsHandler exposes payment attempt logs to the admin panel
type LogsHandler struct {
	logs AttemptLogReader
}

// NewLogsHandler creates a new logs handler
func NewLogsHandler(logs AttemptLogReader) *LogsHandler {
	return &LogsHandler{logs: logs}
}

// GetOrderLogs lists every attempt made for an order
func (h *LogsHandler) GetOrderLogs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	providerName, ok := logProvider(w, r)
	if !ok {
		return
	}

	orderID := chi.URLParam(r, "orderID")
	if orderID == "" {
		response.Error(w, http.StatusBadRequest, "Missing order ID", nil)
		return
	}

	logs, err := h.logs.GetOrderLogs(ctx, providerName, orderID)
	if err != nil {
		h.writeLogError(w, providerName, err)
		return
	}

	response.Success(w, http.StatusOK, "Payment logs", map[string]any{
		"provider": providerName,
		"orderId":  orderID,
		"count":    len(logs),
		"logs":     logs,
	})
}

// GetRecentFailures lists failed attempts of the last ?hours= hours (default 24)
func (h *LogsHandler) GetRecentFailures(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	providerName, ok := logProvider(w, r)
	if !ok {
		return
	}

	hours := defaultFailureHours
	if raw := r.URL.Query().Get("hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxFailureHours {
			response.Error(w, http.StatusBadRequest, "hours must be between 1 and 720", nil)
			return
		}
		hours = parsed
	}

	logs, err := h.logs.GetRecentFailures(ctx, providerName, hours)
	if err != nil {
		h.writeLogError(w, providerName, err)
		return
	}

	response.Success(w, http.StatusOK, "Recent payment failures", map[string]any{
		"provider": providerName,
		"hours":    hours,
		"count":    len(logs),
		"logs":     logs,
	})
}

func logProvider(w http.ResponseWriter, r *http.Request) (string, bool) {
	name := strings.ToLower(chi.URLParam(r, "provider"))
	if name != provider.ProviderPayTR && name != provider.ProviderIyzico {
		response.Error(w, http.StatusBadRequest, "Provider must be paytr or iyzico", nil)
		return "", false
	}
	return name, true
}

func (h *LogsHandler) writeLogError(w http.ResponseWriter, providerName string, err error) {
	if errors.Is(err, opensearch.ErrLoggingDisabled) {
		response.Error(w, http.StatusServiceUnavailable, "Payment log storage is disabled", nil)
		return
	}

	logger.Error("Failed to query payment logs", err, logger.LogContext{Provider: providerName})
	response.Error(w, http.StatusInternalServerError, "Failed to query payment logs", nil)
}
