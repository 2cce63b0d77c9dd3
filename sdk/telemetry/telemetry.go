// Package telemetry assigns a trace id to every request context.
package telemetry

import (
	"context"

	"github.com/jrazmi/tasklists/sdk/cryptids"
)

type telKey int

const traceIDKey telKey = iota + 1

// NoTrace is reported when a context carries no trace id.
const NoTrace = "--------NOTRACE--------"

type Telemetry struct{}

func NewTelemetry() Telemetry {
	return Telemetry{}
}

// SetTraceID returns a copy of ctx carrying a fresh trace id.
func (t Telemetry) SetTraceID(ctx context.Context) context.Context {
	tid, err := cryptids.GenerateID()
	if err != nil {
		return context.WithValue(ctx, traceIDKey, NoTrace)
	}
	return context.WithValue(ctx, traceIDKey, tid)
}

func (t Telemetry) GetTraceID(ctx context.Context) string {
	return TraceID(ctx)
}

// TraceID returns the trace id stored in ctx, or NoTrace.
func TraceID(ctx context.Context) string {
	v, ok := ctx.Value(traceIDKey).(string)
	if !ok {
		return NoTrace
	}
	return v
}
