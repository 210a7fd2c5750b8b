// Package service holds the ward's business operations. Handlers and the CLI
// call into it; it talks to the record store only through repository
// interfaces.
package service

import (
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/dmehra2102/prod-golang-projects/wardtrack/internal/service")

// Clock returns the current time. Services use it instead of time.Now so
// windowed behaviour can be tested.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
