package atrium

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracerName is the instrumentation scope reported on every span this
// package creates.
const tracerName = "impractical.co/atrium"

var (
	attrUnit  = attribute.Key("atrium.unit")
	attrDepth = attribute.Key("atrium.depth")
)

// tracer resolves against the globally registered TracerProvider on every
// call, so spans show up even when the provider is installed after package
// initialization. Without a registered provider this is a no-op.
func tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
