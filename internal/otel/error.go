package otel

import (
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// RecordError marks the span as failed and records err on it. A nil err or
// nil span is a no-op so callers can use it unconditionally on error paths.
func RecordError(err error, span trace.Span) {
	if err == nil || span == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.AddEvent(err.Error())
}
