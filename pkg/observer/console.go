package observer

import (
	"context"

	"github.com/MeadowlarkDAW/audio-graph/pkg/logging"
)

// ConsoleObserver logs compile-lifecycle events through a *logging.Logger.
// Useful for development and debugging; production hosts typically prefer
// telemetry.TelemetryObserver instead.
type ConsoleObserver struct {
	logger *logging.Logger
}

// NewConsoleObserver creates a ConsoleObserver backed by the given logger.
// A nil logger is replaced with logging.NoOp().
func NewConsoleObserver(logger *logging.Logger) *ConsoleObserver {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &ConsoleObserver{logger: logger}
}

// OnEvent implements Observer.
func (o *ConsoleObserver) OnEvent(_ context.Context, event Event) {
	log := o.logger.WithCompileID(event.CompileID).
		WithField("node_count", event.NodeCount).
		WithField("edge_count", event.EdgeCount)

	switch event.Type {
	case EventCompileStart:
		log.Debug("compile started")
	case EventCompileEnd:
		log.WithField("duration", event.Duration.String()).Info("compile finished")
	case EventCycleRejected:
		log.WithError(event.Err).Warn("connect rejected: would introduce a cycle")
	case EventNodeScheduled:
		log.WithField("metadata", event.Metadata).Debug("node scheduled")
	}
}
