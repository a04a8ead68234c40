// Package otel configures OpenTelemetry tracing for service processes.
package otel

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/louisbranch/gmworkspace/internal/platform/config"
)

// Settings controls trace export.
type Settings struct {
	Endpoint string `env:"GMWORKSPACE_OTEL_ENDPOINT"`
	// Enabled turns export off when set to "false", even with an endpoint.
	Enabled     string  `env:"GMWORKSPACE_OTEL_ENABLED"`
	SampleRatio float64 `env:"GMWORKSPACE_OTEL_SAMPLE_RATIO" envDefault:"1"`
}

func (s Settings) active() bool {
	return !strings.EqualFold(strings.TrimSpace(s.Enabled), "false") && strings.TrimSpace(s.Endpoint) != ""
}

// Setup initialises tracing for serviceName from the process environment.
//
// Tracing is opt-in: without GMWORKSPACE_OTEL_ENDPOINT, or with
// GMWORKSPACE_OTEL_ENABLED=false, Setup returns a no-op shutdown and
// registers no global provider. The returned shutdown flushes pending spans.
func Setup(ctx context.Context, serviceName string) (func(context.Context) error, error) {
	var settings Settings
	if err := config.ParseEnv(&settings); err != nil {
		return noop, err
	}
	return SetupWith(ctx, serviceName, settings)
}

// SetupFrom is Setup with an explicit environment.
func SetupFrom(ctx context.Context, serviceName string, environment map[string]string) (func(context.Context) error, error) {
	var settings Settings
	if err := config.ParseEnvFrom(&settings, environment); err != nil {
		return noop, err
	}
	return SetupWith(ctx, serviceName, settings)
}

// SetupWith registers a batching OTLP/HTTP tracer provider for settings.
// Parent sampling decisions are honoured; root spans use SampleRatio.
func SetupWith(ctx context.Context, serviceName string, settings Settings) (func(context.Context) error, error) {
	if !settings.active() {
		return noop, nil
	}
	if settings.SampleRatio < 0 || settings.SampleRatio > 1 {
		return noop, fmt.Errorf("otel sample ratio %v is outside [0, 1]", settings.SampleRatio)
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(strings.TrimSpace(settings.Endpoint)),
	)
	if err != nil {
		return noop, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return noop, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(settings.SampleRatio))),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}

func noop(context.Context) error { return nil }
