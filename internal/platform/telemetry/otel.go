// Package telemetry wires up OpenTelemetry for the service: OTLP trace and
// metric export, context propagation, and the sync-cycle instruments.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// shutdownTimeout caps how long provider shutdown may block, so a hung
// collector cannot stall service exit.
const shutdownTimeout = 5 * time.Second

// Config selects the OTLP endpoint and the identity stamped on every signal.
type Config struct {
	Enabled      bool
	Endpoint     string
	SamplingRate float64

	// Identity reported with every span and metric.
	ServiceName string
	Version     string
	Environment string
}

// Provider owns the SDK trace and meter providers so they can be flushed and
// shut down together. A Provider from a disabled Config is a usable noop.
type Provider struct {
	tracerProvider *trace.TracerProvider
	meterProvider  *metric.MeterProvider
}

// New installs OTLP-exporting tracer and meter providers as the otel
// globals, plus W3C trace-context and baggage propagation. With telemetry
// disabled it returns a noop Provider and touches no globals.
//
// Exporter connections are plaintext gRPC; the collector is expected to sit
// next to the service.
func New(ctx context.Context, cfg *Config) (*Provider, error) {
	if !cfg.Enabled {
		return &Provider{}, nil
	}

	res, err := newResource(cfg)
	if err != nil {
		return nil, err
	}

	tracerProvider, err := newTracerProvider(ctx, cfg, res)
	if err != nil {
		return nil, err
	}

	meterProvider, err := newMeterProvider(ctx, cfg, res)
	if err != nil {
		return nil, err
	}

	otel.SetTracerProvider(tracerProvider)
	otel.SetMeterProvider(meterProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &Provider{
		tracerProvider: tracerProvider,
		meterProvider:  meterProvider,
	}, nil
}

// newResource merges the service identity into the default SDK resource.
func newResource(cfg *Config) (*resource.Resource, error) {
	identity := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.Version),
		semconv.DeploymentEnvironment(cfg.Environment),
	)

	res, err := resource.Merge(resource.Default(), identity)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	return res, nil
}

// newTracerProvider builds a batching OTLP tracer provider. Sampling is
// parent-based so incoming decisions win over the local ratio.
func newTracerProvider(ctx context.Context, cfg *Config, res *resource.Resource) (*trace.TracerProvider, error) {
	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}

	return trace.NewTracerProvider(
		trace.WithResource(res),
		trace.WithBatcher(exporter),
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(cfg.SamplingRate))),
	), nil
}

// newMeterProvider builds an OTLP meter provider with periodic export.
func newMeterProvider(ctx context.Context, cfg *Config, res *resource.Resource) (*metric.MeterProvider, error) {
	exporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	return metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(metric.NewPeriodicReader(exporter)),
	), nil
}

// Shutdown flushes and stops both providers, bounded by shutdownTimeout.
// On a noop Provider it returns nil immediately.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tracerProvider == nil && p.meterProvider == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	var tracerErr, meterErr error
	if p.tracerProvider != nil {
		tracerErr = p.tracerProvider.Shutdown(shutdownCtx)
	}

	if p.meterProvider != nil {
		meterErr = p.meterProvider.Shutdown(shutdownCtx)
	}

	return errors.Join(
		wrapErr("shutting down tracer provider", tracerErr),
		wrapErr("shutting down meter provider", meterErr),
	)
}

func wrapErr(msg string, err error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%s: %w", msg, err)
}
