package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wozzarvl/InterfazInAction/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// InterfaceParam is the route parameter naming the mapped interface
const InterfaceParam = "interfaceName"

// unmatchedRoute labels requests that hit no registered route
const unmatchedRoute = "unknown"

// Payload directions on http_server_payload_bytes.
const (
	payloadIn  = "in"
	payloadOut = "out"
)

// payloadSizeBuckets cover small master data messages up to multi-megabyte IDocs.
var payloadSizeBuckets = []float64{1000, 5000, 10000, 50000, 100000, 500000, 1000000, 5000000, 20000000}

var attrStatusClass = attribute.Key("http_status_class")

type httpInstruments struct {
	requests *telemetry.Counter
	latency  *telemetry.Histogram
	payload  *telemetry.Histogram
	inFlight metric.Int64UpDownCounter
}

func newHTTPInstruments(meter metric.Meter) (*httpInstruments, error) {
	var (
		m   httpInstruments
		err error
	)
	if m.requests, err = telemetry.NewCounter(meter,
		"http_server_requests_total", "HTTP requests by route and status class", "{request}"); err != nil {
		return nil, err
	}
	if m.latency, err = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_request_duration_seconds",
		Description: "HTTP request latency in seconds",
		Unit:        "s",
		Boundaries:  telemetry.HTTPDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.payload, err = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_payload_bytes",
		Description: "Request and response body sizes in bytes",
		Unit:        "By",
		Boundaries:  payloadSizeBuckets,
	}); err != nil {
		return nil, err
	}
	if m.inFlight, err = meter.Int64UpDownCounter("http_server_in_flight_requests",
		metric.WithDescription("HTTP requests being served"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, err
	}
	return &m, nil
}

// HTTPMetrics records request counts, latency and payload sizes per route.
// Integration routes also carry the interface name. Without an enabled
// provider the middleware only calls the next handler.
func HTTPMetrics(mp *telemetry.MeterProvider, log *zap.Logger) gin.HandlerFunc {
	if mp == nil || !mp.IsEnabled() {
		return passThrough
	}
	return HTTPMetricsWithMeter(mp.Meter("http.server"), log)
}

// HTTPMetricsWithMeter is HTTPMetrics on an explicit meter
func HTTPMetricsWithMeter(meter metric.Meter, log *zap.Logger) gin.HandlerFunc {
	m, err := newHTTPInstruments(meter)
	if err != nil {
		if log != nil {
			log.Warn("HTTP metrics disabled", zap.Error(err))
		}
		return passThrough
	}
	return m.observe
}

func passThrough(c *gin.Context) {
	c.Next()
}

func (m *httpInstruments) observe(c *gin.Context) {
	ctx := c.Request.Context()
	start := time.Now()

	m.inFlight.Add(ctx, 1)
	defer m.inFlight.Add(ctx, -1)
	c.Next()

	attrs := requestAttributes(c)
	m.requests.Inc(ctx, append(attrs, attrStatusClass.String(statusClass(c.Writer.Status())))...)
	m.latency.RecordDuration(ctx, time.Since(start), attrs...)

	if in := c.Request.ContentLength; in > 0 {
		m.payload.Record(ctx, float64(in), append(attrs, telemetry.AttrDirection.String(payloadIn))...)
	}
	if out := c.Writer.Size(); out > 0 {
		m.payload.Record(ctx, float64(out), append(attrs, telemetry.AttrDirection.String(payloadOut))...)
	}
}

// requestAttributes labels by matched route, never the raw path
func requestAttributes(c *gin.Context) []attribute.KeyValue {
	route := c.FullPath()
	if route == "" {
		route = unmatchedRoute
	}
	attrs := []attribute.KeyValue{
		telemetry.AttrHTTPMethod.String(c.Request.Method),
		telemetry.AttrHTTPRoute.String(route),
	}
	if name := c.Param(InterfaceParam); name != "" {
		attrs = append(attrs, telemetry.AttrInterface.String(name))
	}
	return attrs
}

// statusClass folds a status code into 1xx..5xx
func statusClass(status int) string {
	if status < 100 || status > 599 {
		return "other"
	}
	return strconv.Itoa(status/100) + "xx"
}
