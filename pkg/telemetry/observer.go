package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/MeadowlarkDAW/audio-graph/pkg/observer"
)

// TelemetryObserver implements observer.Observer and records OpenTelemetry
// traces/metrics for compile-lifecycle events. Spans are keyed by CompileID
// since Compile is not reentrant but a single Provider may be shared across
// several Graph instances.
type TelemetryObserver struct {
	provider *Provider

	mu           sync.Mutex
	compileSpans map[string]trace.Span
	compileStart map[string]time.Time
}

// NewTelemetryObserver creates an observer that reports through provider.
func NewTelemetryObserver(provider *Provider) *TelemetryObserver {
	return &TelemetryObserver{
		provider:     provider,
		compileSpans: make(map[string]trace.Span),
		compileStart: make(map[string]time.Time),
	}
}

// OnEvent implements observer.Observer.
func (o *TelemetryObserver) OnEvent(ctx context.Context, event observer.Event) {
	switch event.Type {
	case observer.EventCompileStart:
		o.handleCompileStart(ctx, event)
	case observer.EventCompileEnd:
		o.handleCompileEnd(ctx, event)
	case observer.EventCycleRejected:
		o.handleCycleRejected(ctx)
	}
}

func (o *TelemetryObserver) handleCompileStart(ctx context.Context, event observer.Event) {
	_, span := o.provider.Tracer().Start(ctx, "compiler.compile",
		trace.WithAttributes(
			attribute.String("compile.id", event.CompileID),
			attribute.Int("graph.node_count", event.NodeCount),
			attribute.Int("graph.edge_count", event.EdgeCount),
		),
	)

	o.mu.Lock()
	o.compileSpans[event.CompileID] = span
	o.compileStart[event.CompileID] = time.Now()
	o.mu.Unlock()
}

func (o *TelemetryObserver) handleCompileEnd(_ context.Context, event observer.Event) {
	o.mu.Lock()
	span := o.compileSpans[event.CompileID]
	started := o.compileStart[event.CompileID]
	delete(o.compileSpans, event.CompileID)
	delete(o.compileStart, event.CompileID)
	o.mu.Unlock()

	duration := event.Duration
	if duration == 0 && !started.IsZero() {
		duration = time.Since(started)
	}

	if o.provider.compileTotal != nil {
		o.provider.compileTotal.Add(context.Background(), 1)
	}
	if o.provider.compileDuration != nil {
		o.provider.compileDuration.Record(context.Background(), float64(duration.Microseconds())/1000.0)
	}

	if span != nil {
		if event.Status == observer.StatusFailure {
			span.SetStatus(codes.Error, errString(event.Err))
		}
		span.SetAttributes(attribute.Int("graph.buffer_count", bufferCount(event.Metadata)))
		span.End()
	}
}

func (o *TelemetryObserver) handleCycleRejected(_ context.Context) {
	if o.provider.compileCycleRejected != nil {
		o.provider.compileCycleRejected.Add(context.Background(), 1)
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func bufferCount(metadata map[string]any) int {
	if metadata == nil {
		return 0
	}
	if v, ok := metadata["buffer_count"].(int); ok {
		return v
	}
	return 0
}
