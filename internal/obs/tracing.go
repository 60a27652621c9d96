package obs

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/noah-isme/overstock-orders/internal/config"
)

// SetupTracing installs the global tracer provider for one of the binaries
// and returns its shutdown function. Only the OTLP HTTP exporter is wired;
// endpoint and sampling come from configuration, with the usual
// OTEL_EXPORTER_* environment variables as fallback.
func SetupTracing(ctx context.Context, serviceName string, cfg *config.Config) (func(context.Context) error, error) {
	if strings.TrimSpace(serviceName) == "" {
		serviceName = "overstock"
	}

	var opts []otlptracehttp.Option
	if endpoint := strings.TrimSpace(cfg.TracingEndpoint); endpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpointURL(endpoint))
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
		semconv.DeploymentEnvironmentKey.String(cfg.AppEnv),
	)

	ratio := cfg.TracingSampleRatio
	if ratio <= 0 || ratio > 1 {
		ratio = 1
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp.Shutdown, nil
}
