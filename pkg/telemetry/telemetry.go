// Package telemetry provides OpenTelemetry integration for distributed tracing
// and metrics around the graph compiler's Compile call. It is purely additive:
// Compile behaves identically whether or not a Provider is wired in through an
// observer.Manager.
package telemetry

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/trace"
)

const (
	serviceName = "audio-graph-compiler"

	metricCompileTotal         = "compile.total"
	metricCompileDuration      = "compile.duration"
	metricCompileCycleRejected = "compile.cycle_rejected.total"
)

// Provider manages OpenTelemetry setup and provides access to a tracer and the
// metric instruments the TelemetryObserver records against.
type Provider struct {
	meterProvider  *sdkmetric.MeterProvider
	tracerProvider trace.TracerProvider
	meter          metric.Meter
	tracer         trace.Tracer

	compileTotal         metric.Int64Counter
	compileDuration      metric.Float64Histogram
	compileCycleRejected metric.Int64Counter

	mu sync.RWMutex
}

// Config holds telemetry configuration.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	EnableTracing  bool
	EnableMetrics  bool
}

// DefaultConfig returns default telemetry configuration.
func DefaultConfig() Config {
	return Config{
		ServiceName:    serviceName,
		ServiceVersion: "0.1.0",
		Environment:    "development",
		EnableTracing:  true,
		EnableMetrics:  true,
	}
}

// NewProvider creates a telemetry provider backed by a Prometheus metrics
// exporter and the global OpenTelemetry tracer provider.
func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	p := &Provider{}

	res, err := resource.New(ctx, resource.WithAttributes())
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if cfg.EnableMetrics {
		if err := p.initMetrics(res); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	if cfg.EnableTracing {
		p.initTracing()
	}

	return p, nil
}

func (p *Provider) initMetrics(res *resource.Resource) error {
	exporter, err := prometheus.New()
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	p.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(p.meterProvider)
	p.meter = p.meterProvider.Meter(serviceName)

	return p.createMetricInstruments()
}

func (p *Provider) initTracing() {
	p.tracerProvider = otel.GetTracerProvider()
	p.tracer = p.tracerProvider.Tracer(serviceName)
}

func (p *Provider) createMetricInstruments() error {
	var err error

	p.compileTotal, err = p.meter.Int64Counter(
		metricCompileTotal,
		metric.WithDescription("Total number of Compile calls"),
	)
	if err != nil {
		return err
	}

	p.compileDuration, err = p.meter.Float64Histogram(
		metricCompileDuration,
		metric.WithDescription("Compile call duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	p.compileCycleRejected, err = p.meter.Int64Counter(
		metricCompileCycleRejected,
		metric.WithDescription("Total number of Connect calls rejected as cycle-forming"),
	)
	return err
}

// Tracer returns the provider's tracer, or a no-op tracer if tracing is disabled.
func (p *Provider) Tracer() trace.Tracer {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.tracer == nil {
		return otel.Tracer(serviceName)
	}
	return p.tracer
}

// Shutdown flushes and releases the underlying meter provider, if any.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.meterProvider == nil {
		return nil
	}
	return p.meterProvider.Shutdown(ctx)
}
