package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Outcomes recorded on credential operations.
const (
	OutcomeSuccess   = "success"
	OutcomeInvalid   = "invalid_input"
	OutcomeDuplicate = "duplicate"
	OutcomeRejected  = "rejected"
	OutcomeError     = "error"
)

// instruments creates instruments in order and remembers the first
// failure, so constructors read as a flat list.
type instruments struct {
	meter metric.Meter
	err   error
}

func (b *instruments) counter(name, desc string) metric.Int64Counter {
	c, err := b.meter.Int64Counter(name, metric.WithDescription(desc))
	b.keep(name, err)
	return c
}

func (b *instruments) upDown(name, desc string) metric.Int64UpDownCounter {
	c, err := b.meter.Int64UpDownCounter(name, metric.WithDescription(desc))
	b.keep(name, err)
	return c
}

func (b *instruments) seconds(name, desc string) metric.Float64Histogram {
	h, err := b.meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("s"))
	b.keep(name, err)
	return h
}

func (b *instruments) keep(name string, err error) {
	if err != nil && b.err == nil {
		b.err = fmt.Errorf("creating %s: %w", name, err)
	}
}

// HTTPMetrics are recorded by the server's telemetry middleware.
type HTTPMetrics struct {
	total    metric.Int64Counter
	duration metric.Float64Histogram
	active   metric.Int64UpDownCounter
}

func NewHTTPMetrics(meter metric.Meter) (*HTTPMetrics, error) {
	b := &instruments{meter: meter}
	m := &HTTPMetrics{
		total:    b.counter("http.server.request.total", "Total number of HTTP requests"),
		duration: b.seconds("http.server.request.duration", "Duration of HTTP requests in seconds"),
		active:   b.upDown("http.server.active_requests", "Number of in-flight HTTP requests"),
	}
	if b.err != nil {
		return nil, b.err
	}
	return m, nil
}

func (m *HTTPMetrics) RecordRequestStart(ctx context.Context) {
	m.active.Add(ctx, 1)
}

// RecordRequestEnd closes what RecordRequestStart opened. route is the
// matched pattern, never the raw path.
func (m *HTTPMetrics) RecordRequestEnd(ctx context.Context, route, method string, status int, d time.Duration) {
	m.active.Add(ctx, -1)
	routeAttrs := []attribute.KeyValue{
		attribute.String("http.route", route),
		attribute.String("http.method", method),
	}
	m.total.Add(ctx, 1, metric.WithAttributes(append(routeAttrs, attribute.Int("http.status_code", status))...))
	m.duration.Record(ctx, d.Seconds(), metric.WithAttributes(routeAttrs...))
}

// CredentialMetrics count register and login attempts by outcome.
type CredentialMetrics struct {
	register metric.Int64Counter
	login    metric.Int64Counter
	duration metric.Float64Histogram
}

func NewCredentialMetrics(meter metric.Meter) (*CredentialMetrics, error) {
	b := &instruments{meter: meter}
	m := &CredentialMetrics{
		register: b.counter("credential.register.total", "Registration attempts by outcome"),
		login:    b.counter("credential.login.total", "Login attempts by outcome"),
		duration: b.seconds("credential.operation.duration", "Duration of credential operations in seconds, hashing included"),
	}
	if b.err != nil {
		return nil, b.err
	}
	return m, nil
}

// Record counts one operation. Unknown operation names only feed the
// duration histogram.
func (m *CredentialMetrics) Record(ctx context.Context, operation, outcome string, d time.Duration) {
	outcomeOnly := metric.WithAttributes(outcomeAttr(outcome))
	switch operation {
	case OperationRegister:
		m.register.Add(ctx, 1, outcomeOnly)
	case OperationLogin:
		m.login.Add(ctx, 1, outcomeOnly)
	}
	m.duration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String(AttrOperation, operation),
		outcomeAttr(outcome),
	))
}
