package observability

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	apperrors "github.com/kbukum/userservice/errors"
)

func installTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})
	return exporter
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumFor(t *testing.T, data metricdata.Aggregation, outcome string) int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected int64 sum, got %T", data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(attribute.Key(AttrOutcome)); ok && v.AsString() == outcome {
			total += dp.Value
		}
	}
	return total
}

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("Endpoint = %q", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("SampleRate = %v", cfg.SampleRate)
	}
	if cfg.MetricsInterval != 15*time.Second {
		t.Errorf("MetricsInterval = %v", cfg.MetricsInterval)
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{Enabled: true, SampleRate: 1.5}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for sample rate above 1")
	}
	cfg = Config{Enabled: false, SampleRate: 7}
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled config should not be validated: %v", err)
	}
}

func TestSetup_DisabledIsNoop(t *testing.T) {
	prev := otel.GetTracerProvider()
	shutdown, err := Setup(context.Background(), Config{}, Resource{ServiceName: "test"})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if shutdown == nil {
		t.Fatal("expected non-nil shutdown")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
	if otel.GetTracerProvider() != prev {
		t.Error("disabled Setup must not replace the tracer provider")
	}
}

func TestNewResource(t *testing.T) {
	res, err := newResource(context.Background(), Resource{ServiceName: "userservice", ServiceVersion: "1.2.3", Environment: "test"})
	if err != nil {
		t.Fatalf("newResource: %v", err)
	}
	v, ok := res.Set().Value("service.name")
	if !ok || v.AsString() != "userservice" {
		t.Errorf("service.name = %v", v)
	}
}

func TestSampler(t *testing.T) {
	if got := sampler(0).Description(); got != sdktrace.NeverSample().Description() {
		t.Errorf("rate 0 should never sample, got %s", got)
	}
	if got := sampler(1).Description(); got == sdktrace.NeverSample().Description() {
		t.Errorf("rate 1 should sample, got %s", got)
	}
}

func TestStartSpanAndTraceID(t *testing.T) {
	exporter := installTestTracer(t)

	ctx, span := StartSpan(context.Background(), "test-operation")
	if TraceID(ctx) == "" {
		t.Error("expected trace id inside a span")
	}
	SetSpanError(ctx, fmt.Errorf("boom"))
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 || spans[0].Name != "test-operation" {
		t.Fatalf("unexpected spans: %+v", spans)
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("expected error status, got %v", spans[0].Status.Code)
	}
	if TraceID(context.Background()) != "" {
		t.Error("expected empty trace id without a span")
	}
}

func TestNewHTTPMetrics(t *testing.T) {
	metrics, err := NewHTTPMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("NewHTTPMetrics: %v", err)
	}
	ctx := context.Background()
	metrics.RecordRequestStart(ctx)
	metrics.RecordRequestEnd(ctx, "/user/login", "POST", 200, 10*time.Millisecond)
}

func TestCredentialMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	metrics, err := NewCredentialMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewCredentialMetrics: %v", err)
	}

	ctx := context.Background()
	metrics.Record(ctx, OperationRegister, OutcomeSuccess, time.Millisecond)
	metrics.Record(ctx, OperationRegister, OutcomeDuplicate, time.Millisecond)
	metrics.Record(ctx, OperationLogin, OutcomeRejected, time.Millisecond)
	metrics.Record(ctx, OperationLogin, OutcomeRejected, time.Millisecond)

	data := collect(t, reader)
	if got := sumFor(t, data["credential.register.total"], OutcomeSuccess); got != 1 {
		t.Errorf("register success = %d, want 1", got)
	}
	if got := sumFor(t, data["credential.register.total"], OutcomeDuplicate); got != 1 {
		t.Errorf("register duplicate = %d, want 1", got)
	}
	if got := sumFor(t, data["credential.login.total"], OutcomeRejected); got != 2 {
		t.Errorf("login rejected = %d, want 2", got)
	}
	if _, ok := data["credential.operation.duration"]; !ok {
		t.Error("expected duration histogram")
	}
}

func TestOperation_End(t *testing.T) {
	exporter := installTestTracer(t)

	ctx, op := StartOperation(context.Background(), OperationLogin, nil)
	op.SetUserID(42)
	op.End(ctx, OutcomeRejected, apperrors.AuthenticationFailed())

	ctx, op = StartOperation(context.Background(), OperationRegister, nil)
	op.End(ctx, OutcomeError, apperrors.Storage(fmt.Errorf("disk full")))

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}

	login := spans[0]
	if login.Name != OperationLogin {
		t.Errorf("span name = %q", login.Name)
	}
	if login.Status.Code == codes.Error {
		t.Error("rejected login should not mark the span as errored")
	}
	attrs := attribute.NewSet(login.Attributes...)
	if v, _ := attrs.Value(AttrErrorCode); v.AsString() != string(apperrors.ErrCodeAuthenticationFailed) {
		t.Errorf("error.code = %q", v.AsString())
	}
	if v, _ := attrs.Value(AttrUserID); v.AsInt64() != 42 {
		t.Errorf("user.id = %d", v.AsInt64())
	}

	if spans[1].Status.Code != codes.Error {
		t.Error("storage failure should mark the span as errored")
	}
}
