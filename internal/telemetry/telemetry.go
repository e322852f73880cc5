// Package telemetry wires OpenTelemetry tracing and build metrics for the
// apicatalog command.
//
// Tracing is off unless an OTLP endpoint is configured. Metrics go to the
// global meter provider, which records nothing until an SDK is installed.
package telemetry

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/erraggy/apicatalog"
	"github.com/erraggy/apicatalog/parser"
)

// InstrumentationName names the tracer and meter of this module.
const InstrumentationName = "github.com/erraggy/apicatalog"

// Config selects the trace exporter.
type Config struct {
	// Endpoint is the OTLP gRPC collector address; empty disables tracing
	Endpoint string
	// Insecure uses a plaintext connection to the collector
	Insecure    bool
	ServiceName string
}

// Provider owns the tracer and meter providers of one process.
type Provider struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	shutdown       func(context.Context) error
}

// Setup builds the providers described by cfg. With an endpoint it installs
// a batching OTLP exporter as the global tracer provider.
func Setup(ctx context.Context, cfg Config, logger parser.Logger) (*Provider, error) {
	logger = parser.LoggerOrNop(logger)
	p := &Provider{
		tracerProvider: noop.NewTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
		shutdown:       func(context.Context) error { return nil },
	}
	if cfg.Endpoint == "" {
		logger.Debug("tracing disabled, no OTLP endpoint")
		return p, nil
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "apicatalog"
	}

	var opts []grpc.DialOption
	if cfg.Insecure {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
		logger.Warn("using insecure connection for OTLP exporter", "endpoint", cfg.Endpoint)
	}
	conn, err := grpc.NewClient(cfg.Endpoint, opts...)
	if err != nil {
		return nil, fmt.Errorf("telemetry: connect to %s: %w", cfg.Endpoint, err)
	}
	exporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("telemetry: create OTLP exporter: %w", err)
	}
	res, err := resource.New(ctx,
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(apicatalog.Version()),
		),
	)
	if err != nil {
		_ = exporter.Shutdown(ctx)
		_ = conn.Close()
		return nil, fmt.Errorf("telemetry: create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	logger.Info("tracing enabled", "endpoint", cfg.Endpoint)

	p.tracerProvider = tp
	p.shutdown = func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), conn.Close())
	}
	return p, nil
}

// Tracer returns the module tracer.
func (p *Provider) Tracer() trace.Tracer {
	return p.tracerProvider.Tracer(InstrumentationName)
}

// Meter returns the module meter.
func (p *Provider) Meter() metric.Meter {
	return p.meterProvider.Meter(InstrumentationName)
}

// Shutdown flushes pending spans and closes the exporter connection.
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.shutdown(ctx)
}
