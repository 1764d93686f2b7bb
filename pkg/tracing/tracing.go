// Package tracing wires an OpenTelemetry SDK TracerProvider for the gRPC
// server's otelgrpc stats handler, mirroring the teacher's pkg/tracing
// Config/Init shape. No span exporter ships in this module's dependency set
// (the spec names no tracing backend), so spans are created, sampled, and
// ended through the SDK but never exported anywhere; this still exercises
// the real otel/otel-sdk/otelgrpc stack end to end, which is what the
// OTEL_SDK_DISABLED toggle in cmd/server/main.go gates.
package tracing

import (
	"context"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Config controls TracerProvider construction.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
}

// DefaultConfig returns the service's baseline tracing configuration.
func DefaultConfig() Config {
	return Config{ServiceName: "desktop-automation-service", ServiceVersion: "1.0.0", Environment: "development"}
}

// Init builds a TracerProvider and returns it alongside a shutdown func.
func Init(cfg Config) (*sdktrace.TracerProvider, func(context.Context) error, error) {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.AlwaysSample()))
	return tp, tp.Shutdown, nil
}
