// Package notify holds observer sinks for app handler events.
package notify

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/launcher/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/types"
)

// ErrChannelFull is returned when a Channel observer's buffer has no room
var ErrChannelFull = errors.New("notify: channel full")

// Channel forwards events into a buffered channel without blocking
type Channel struct {
	ch chan types.Event
}

// NewChannel creates a channel observer with the given buffer
func NewChannel(buffer int) *Channel {
	if buffer < 1 {
		buffer = 1
	}
	return &Channel{ch: make(chan types.Event, buffer)}
}

// Events is the receiving side
func (c *Channel) Events() <-chan types.Event {
	return c.ch
}

// Notify implements apphandler.Observer. A full buffer drops the event.
func (c *Channel) Notify(ctx context.Context, event types.Event) error {
	select {
	case c.ch <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrChannelFull
	}
}

// Log writes every event to a logger
type Log struct {
	logger *logging.Logger
}

// NewLog creates a log observer
func NewLog(logger *logging.Logger) *Log {
	return &Log{logger: logger}
}

// Notify implements apphandler.Observer
func (l *Log) Notify(_ context.Context, event types.Event) error {
	fields := []zap.Field{
		zap.Uint64("seq", event.Seq),
		zap.String("category", string(event.Category)),
		zap.String("app_id", event.AppID.String()),
		zap.Bool("present", event.Present),
	}
	if event.App != nil {
		fields = append(fields, zap.Uint32("reference_count", event.App.ReferenceCount))
	}
	l.logger.Info("App event", fields...)
	return nil
}
