package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/mstgnz/storepay/infra/config"
	"github.com/mstgnz/storepay/infra/response"
	"github.com/mstgnz/storepay/provider"
)

const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

// SearchStatus reports whether attempt logging is shipping to OpenSearch
type SearchStatus interface {
	IsEnabled() bool
}

// HealthHandler handles health check requests
type HealthHandler struct {
	store     SettingsStore
	search    SearchStatus
	registry  *provider.ProviderRegistry
	version   string
	startTime time.Time
}

// HealthStatus represents overall system health
type HealthStatus struct {
	Status      string          `json:"status"`
	Version     string          `json:"version"`
	Timestamp   time.Time       `json:"timestamp"`
	Uptime      string          `json:"uptime"`
	Environment string          `json:"environment"`
	Settings    *SettingsHealth `json:"settings"`
	Logging     *LoggingHealth  `json:"logging"`
	Providers   []string        `json:"providers"`
	System      *SystemHealth   `json:"system"`
}

// SettingsHealth represents the settings store and the active provider
type SettingsHealth struct {
	Status       string `json:"status"`
	Configured   bool   `json:"configured"`
	Provider     string `json:"provider,omitempty"`
	Active       bool   `json:"active"`
	TestMode     bool   `json:"test_mode"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

// LoggingHealth represents the attempt log sink
type LoggingHealth struct {
	OpenSearch bool `json:"opensearch"`
}

// SystemHealth represents runtime resource usage
type SystemHealth struct {
	GoRoutines int    `json:"goroutines"`
	Alloc      string `json:"alloc"`
	Sys        string `json:"sys"`
	GCRuns     uint32 `json:"gc_runs"`
}

// NewHealthHandler creates a new health handler; search and registry may be nil
func NewHealthHandler(store SettingsStore, search SearchStatus, registry *provider.ProviderRegistry, version string) *HealthHandler {
	if registry == nil {
		registry = provider.DefaultRegistry
	}
	return &HealthHandler{
		store:     store,
		search:    search,
		registry:  registry,
		version:   version,
		startTime: time.Now(),
	}
}

// CheckHealth reports the service status; 503 only when settings cannot be read
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health := &HealthStatus{
		Version:     h.version,
		Timestamp:   time.Now().UTC(),
		Uptime:      time.Since(h.startTime).Round(time.Second).String(),
		Environment: config.GetAppConfig().Environment,
		Settings:    h.checkSettings(ctx),
		Logging:     &LoggingHealth{OpenSearch: h.search != nil && h.search.IsEnabled()},
		Providers:   h.registry.GetProviderNames(),
		System:      checkSystem(),
	}
	health.Status = health.Settings.Status

	statusCode := http.StatusOK
	if health.Status == statusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	response.WriteJSON(w, statusCode, response.Response{
		Code:    statusCode,
		Success: health.Status != statusUnhealthy,
		Message: fmt.Sprintf("Service is %s", health.Status),
		Data:    health,
	})
}

func (h *HealthHandler) checkSettings(ctx context.Context) *SettingsHealth {
	start := time.Now()
	settings, err := h.store.LoadPaymentSettings(ctx)
	result := &SettingsHealth{ResponseTime: time.Since(start).String()}

	switch {
	case errors.Is(err, config.ErrSettingsNotFound):
		result.Status = statusDegraded
	case err != nil:
		result.Status = statusUnhealthy
		result.Error = "settings store unavailable"
	default:
		result.Configured = true
		result.Provider = settings.Provider
		result.Active = settings.IsActive
		result.TestMode = settings.TestMode
		result.Status = statusHealthy
		if !settings.IsActive && settings.Provider != provider.ProviderOffline {
			result.Status = statusDegraded
		}
	}

	return result
}

func checkSystem() *SystemHealth {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return &SystemHealth{
		GoRoutines: runtime.NumGoroutine(),
		Alloc:      formatBytes(mem.Alloc),
		Sys:        formatBytes(mem.Sys),
		GCRuns:     mem.NumGC,
	}
}

func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
