package placementlog

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
)

type TraceInfo struct {
	TraceID string
	SpanID  string
}

// ExtractTraceInfo returns the hex ids of the span active in ctx, or empty
// strings when there is none.
func ExtractTraceInfo(ctx context.Context) TraceInfo {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return TraceInfo{}
	}
	return TraceInfo{
		TraceID: sc.TraceID().String(),
		SpanID:  sc.SpanID().String(),
	}
}

// NewEntry builds an entry stamped with the current trace and time.
func NewEntry(ctx context.Context, placementID string, status Status, step, payload string, errs []string) *Entry {
	ti := ExtractTraceInfo(ctx)
	return &Entry{
		PlacementID: placementID,
		Status:      status,
		Step:        step,
		Payload:     payload,
		Errors:      errs,
		TraceID:     ti.TraceID,
		SpanID:      ti.SpanID,
		RecordedAt:  time.Now().UTC(),
	}
}
