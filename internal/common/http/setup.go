package http

import (
	"net/http"

	"github.com/glimmer-social/backend/internal/common/constants"
	"github.com/glimmer-social/backend/internal/common/httpmetrics"
	"github.com/glimmer-social/backend/internal/common/logger"
)

// BuildBaseHandler wraps a handler with the cross-cutting middleware stack
// shared by every route group.
func BuildBaseHandler(log *logger.Logger, rl *RateLimiter, handler http.Handler) http.Handler {
	metrics := httpmetrics.New()
	recovery := RecoveryMiddleware(log)
	traceID := TraceIDMiddleware
	maxRequestSize := MaxRequestSizeMiddleware(constants.DefaultMaxRequestSize)
	securityHeaders := SecurityHeadersMiddleware

	wrapped := recovery(traceID(maxRequestSize(metrics.Wrap(handler))))
	if rl != nil {
		wrapped = rl.Middleware()(wrapped)
	}
	return securityHeaders(wrapped)
}
