package middleware

import (
	"strconv"
	"time"

	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
)

const unmatchedRoute = "unmatched"

type httpMetrics struct {
	requests *telemetry.Counter
	latency  *telemetry.Histogram
	inFlight metric.Int64UpDownCounter
}

// HTTPMetrics counts requests and records their latency by method, route and
// status. Unknown paths share the "unmatched" route so probes cannot inflate
// the series count.
func HTTPMetrics(meter metric.Meter) (gin.HandlerFunc, error) {
	requests, err := telemetry.NewCounter(meter, "http_server_request_total",
		"Total number of HTTP requests", "{request}")
	if err != nil {
		return nil, err
	}
	latency, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_request_duration_seconds",
		Description: "HTTP request latency distribution in seconds",
		Unit:        "s",
		Boundaries:  telemetry.HTTPDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	inFlight, err := meter.Int64UpDownCounter("http_server_active_requests",
		metric.WithDescription("Number of HTTP requests being served"),
		metric.WithUnit("{request}"))
	if err != nil {
		return nil, err
	}

	m := &httpMetrics{requests: requests, latency: latency, inFlight: inFlight}
	return m.handle, nil
}

func (m *httpMetrics) handle(c *gin.Context) {
	ctx := c.Request.Context()
	start := time.Now()
	m.inFlight.Add(ctx, 1)
	defer m.inFlight.Add(ctx, -1)

	c.Next()

	route := c.FullPath()
	if route == "" {
		route = unmatchedRoute
	}
	method := telemetry.AttrHTTPMethod.String(c.Request.Method)
	path := telemetry.AttrHTTPRoute.String(route)

	m.requests.Inc(ctx, method, path, telemetry.AttrHTTPStatus.String(strconv.Itoa(c.Writer.Status())))
	m.latency.RecordDuration(ctx, time.Since(start), method, path)
}
