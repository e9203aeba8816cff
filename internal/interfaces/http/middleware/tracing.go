package middleware

import (
	"net/http"

	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware
type TracingConfig struct {
	ServiceName string
	Enabled     bool
	// TracerProvider overrides the global provider, used by tests
	TracerProvider trace.TracerProvider
	// SkipPaths are not traced (health probes, docs)
	SkipPaths []string
}

// Tracing starts a server span per request with otelgin. After the handler
// ran it tags the span with the request, tenant and user IDs bound further
// down the chain and marks 5xx responses as errors.
func Tracing(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	opts := []otelgin.Option{
		otelgin.WithFilter(func(r *http.Request) bool {
			_, skipped := skip[r.URL.Path]
			return !skipped
		}),
	}
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgin.WithTracerProvider(cfg.TracerProvider))
	}
	return otelgin.Middleware(cfg.ServiceName, opts...)
}

// SpanEnricher tags the active span after the rest of the chain has run.
// It must be registered after Tracing.
func SpanEnricher() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		ctx := c.Request.Context()
		span := trace.SpanFromContext(ctx)
		if !span.IsRecording() {
			return
		}

		kv := []any{}
		if id := logger.RequestID(ctx); id != "" {
			kv = append(kv, telemetry.SpanAttrRequestID, id)
		}
		if id := logger.TenantID(ctx); id != uuid.Nil {
			kv = append(kv, telemetry.SpanAttrTenantID, id.String())
		}
		if id := logger.UserID(ctx); id != uuid.Nil {
			kv = append(kv, telemetry.SpanAttrUserID, id.String())
		}
		telemetry.SetAttributes(span, kv...)

		if c.Writer.Status() >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(c.Writer.Status()))
		}
	}
}
