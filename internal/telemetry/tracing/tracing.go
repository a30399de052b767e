package tracing

import (
	"github.com/honeycombio/otel-config-go/otelconfig"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var GlobalTracer = otel.Tracer("fittracker-backend")

// HoneycombSetup configures the OpenTelemetry SDK via the otel-config-go
// distro. When disabled, the global tracer provider stays a no-op and the
// returned shutdown func does nothing.
func HoneycombSetup(tracingEnabled bool, serviceName string) (func(), error) {
	if !tracingEnabled {
		return func() {}, nil
	}

	otelShutdown, err := otelconfig.ConfigureOpenTelemetry(
		otelconfig.WithServiceName(serviceName),
	)
	if err != nil {
		return nil, err
	}

	return otelShutdown, nil
}

// EndSpanWithErrCheck records err on the span (if any) and ends it.
func EndSpanWithErrCheck(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
