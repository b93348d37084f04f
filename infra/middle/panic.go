package middle

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/mstgnz/storepay/infra/logger"
	"github.com/mstgnz/storepay/infra/response"
)

// PanicRecoveryMiddleware handles panics and converts them to HTTP 500 errors
func PanicRecoveryMiddleware() func(http.Handler) http.Handler {
	return PanicRecoveryWithCustomHandler(func(w http.ResponseWriter, r *http.Request, recovered any) {
		requestID := GetRequestID(r.Context())
		if requestID == "" {
			requestID = r.Header.Get(RequestIDHeader)
		}

		logger.Error("Panic recovered", fmt.Errorf("%v", recovered), logger.LogContext{
			RequestID: requestID,
			Fields: map[string]any{
				"method": r.Method,
				"url":    r.URL.String(),
				"stack":  string(debug.Stack()),
			},
		})

		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		response.Error(w, http.StatusInternalServerError, "Internal server error", nil)
	})
}

// PanicRecoveryWithCustomHandler allows custom panic handling
func PanicRecoveryWithCustomHandler(handler func(http.ResponseWriter, *http.Request, any)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if recovered := recover(); recovered != nil {
					if recovered == http.ErrAbortHandler {
						panic(recovered)
					}
					handler(w, r, recovered)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
