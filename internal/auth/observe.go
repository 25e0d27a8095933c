package auth

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"markbook.org/internal/obs"
)

// Observed runs fn as a named operation wrapped in uniform telemetry: a
// trace span carrying the operation name and actor role, one structured
// log line at completion, and a counter/histogram update labeled by
// surface, operation and outcome. The wrapper never alters control flow —
// fn's error is returned unchanged — and the span is ended exactly once
// on every exit path.
func Observed(ctx context.Context, op Operation, fn func(context.Context) error) error {
	surface := obs.SurfaceFromContext(ctx)
	identity, hasIdentity := IdentityFromContext(ctx)

	attrs := []attribute.KeyValue{
		attribute.String("operation", string(op)),
		attribute.String("surface", surface),
	}
	if hasIdentity {
		attrs = append(attrs,
			attribute.String("actor.username", identity.Username),
			attribute.String("actor.role", identity.Role.String()),
		)
	}

	ctx, span := obs.Tracer().Start(ctx, string(op), trace.WithAttributes(attrs...))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start)

	outcome := outcomeOf(err)
	obs.RecordOperation(surface, string(op), outcome, duration.Seconds())

	entry := map[string]any{
		"ts":          time.Now().UTC().Format(time.RFC3339Nano),
		"level":       levelOf(outcome),
		"msg":         "operation_complete",
		"operation":   string(op),
		"surface":     surface,
		"outcome":     outcome,
		"duration_ms": duration.Milliseconds(),
	}
	if hasIdentity {
		entry["username"] = identity.Username
		entry["role"] = identity.Role.String()
	}
	if err != nil {
		entry["error"] = err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}
	obs.Emit(entry)

	return err
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return obs.OutcomeSuccess
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, ErrForbidden):
		return obs.OutcomeDenied
	default:
		return obs.OutcomeError
	}
}

func levelOf(outcome string) string {
	switch outcome {
	case obs.OutcomeSuccess:
		return "info"
	case obs.OutcomeDenied:
		return "warn"
	default:
		return "error"
	}
}
