package obs

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "markbook.org/obs"

// InitTracing installs the global tracer provider and returns a shutdown
// function. With exportStdout false the provider keeps spans in-process
// only (no exporter), which is what tests and quiet deployments want.
func InitTracing(ctx context.Context, service, version string, exportStdout bool) (func(context.Context) error, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(service),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, err
	}

	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if exportStdout {
		exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, err
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	provider := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(provider)
	return provider.Shutdown, nil
}

// Tracer returns the tracer all operation spans are started from.
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

type surfaceContextKey struct{}

// ContextWithSurface tags the request context with the API surface name,
// so operation telemetry can be labeled rest vs graphql.
func ContextWithSurface(ctx context.Context, surface string) context.Context {
	return context.WithValue(ctx, surfaceContextKey{}, surface)
}

// SurfaceFromContext returns the surface label, defaulting to "unknown".
func SurfaceFromContext(ctx context.Context) string {
	if ctx != nil {
		if s, ok := ctx.Value(surfaceContextKey{}).(string); ok && s != "" {
			return s
		}
	}
	return "unknown"
}
