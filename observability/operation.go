package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/kbukum/userservice/errors"
)

// Credential operation names, used as span names and metric attributes.
const (
	OperationRegister = "credential.register"
	OperationLogin    = "credential.login"
)

// Operation tracks one traced and measured unit of work.
type Operation struct {
	name    string
	start   time.Time
	span    trace.Span
	metrics *CredentialMetrics
}

// StartOperation starts a span named name. metrics may be nil.
func StartOperation(ctx context.Context, name string, metrics *CredentialMetrics) (context.Context, *Operation) {
	ctx, span := StartSpan(ctx, name, trace.WithAttributes(attribute.String(AttrOperation, name)))
	return ctx, &Operation{
		name:    name,
		start:   time.Now(),
		span:    span,
		metrics: metrics,
	}
}

// SetUserID tags the span with the authenticated user.
func (o *Operation) SetUserID(id int64) {
	o.span.SetAttributes(attribute.Int64(AttrUserID, id))
}

// End records the outcome on the span and in metrics, then ends the span.
// Expected business failures (duplicate, rejected) do not mark the span as
// errored; err is still recorded with its code.
func (o *Operation) End(ctx context.Context, outcome string, err error) {
	duration := time.Since(o.start)

	o.span.SetAttributes(outcomeAttr(outcome))
	if err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok {
			o.span.SetAttributes(attribute.String(AttrErrorCode, string(appErr.Code)))
		}
		if outcome == OutcomeError {
			o.span.RecordError(err)
			o.span.SetStatus(codes.Error, err.Error())
		}
	}
	o.span.End()

	if o.metrics != nil {
		o.metrics.Record(ctx, o.name, outcome, duration)
	}
}
