// Package logging emits structured logs for bus events using zerolog.
package logging

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"

	eventbus "github.com/graphmount/graphmount/internal/eventbus"
	events "github.com/graphmount/graphmount/internal/events"
	reqid "github.com/graphmount/graphmount/internal/reqid"
)

// Setup builds the process logger and attaches the event subscribers.
// level accepts zerolog level names ("debug", "info", ...); unknown values
// fall back to info.
func Setup(w io.Writer, level string) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	logger := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	Register(logger)
	return logger
}

// Register attaches log subscribers for transport, execution, and lifecycle
// events to the global event bus.
func Register(logger zerolog.Logger) {
	eventbus.Subscribe(func(ctx context.Context, e events.HTTPFinish) {
		rid, _ := reqid.FromContext(ctx)
		logger.Info().
			Str("adapter", e.Adapter).
			Str("method", e.Method).
			Str("path", e.Path).
			Int("status", e.Status).
			Dur("duration", e.Duration).
			Str("request_id", rid).
			Msg("request served")
	})
	eventbus.Subscribe(func(ctx context.Context, e events.GraphQLFinish) {
		rid, _ := reqid.FromContext(ctx)
		ev := logger.Debug()
		if len(e.Errors) > 0 {
			ev = logger.Warn().Int("errors", len(e.Errors)).Err(e.Errors[0])
		}
		ev.
			Str("operation", e.OperationName).
			Str("type", e.OperationType).
			Dur("duration", e.Duration).
			Str("request_id", rid).
			Msg("operation executed")
	})
	eventbus.Subscribe(func(ctx context.Context, e events.LifecycleTransition) {
		logger.Info().Str("from", e.From).Str("to", e.To).Msg("lifecycle transition")
	})
	eventbus.Subscribe(func(ctx context.Context, e events.AdapterAttached) {
		logger.Info().
			Str("adapter", e.Adapter).
			Str("path", e.Path).
			Str("health_path", e.HealthPath).
			Msg("adapter attached")
	})
	eventbus.Subscribe(func(ctx context.Context, e events.DrainHookDone) {
		ev := logger.Info()
		if e.Err != nil {
			ev = logger.Error().Err(e.Err)
		}
		ev.Str("hook", e.Name).Dur("duration", e.Duration).Msg("drain hook finished")
	})
	eventbus.Subscribe(func(ctx context.Context, e events.DrainFinish) {
		ev := logger.Info()
		if e.Err != nil {
			ev = logger.Error().Err(e.Err)
		}
		ev.Dur("duration", e.Duration).Msg("drain complete")
	})
}
