// Package observability wires OpenTelemetry tracing and metrics.
//
// Exporters speak OTLP over HTTP. When observability is disabled the global
// no-op providers stay in place and every span and instrument in the
// service becomes free:
//
//	shutdown, err := observability.Setup(ctx, cfg.Observability, observability.Resource{
//	    ServiceName: "userservice", ServiceVersion: version.GetVersionInfo().Version,
//	})
//	defer shutdown(ctx)
//
//	metrics, err := observability.NewCredentialMetrics(observability.Meter(observability.InstrumentationName))
//	ctx, op := observability.StartOperation(ctx, "credential.login", metrics)
//	defer op.End(ctx, observability.OutcomeSuccess, nil)
package observability
