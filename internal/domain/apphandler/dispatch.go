package apphandler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/launcher/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/types"
)

var errNotifyTimeout = errors.New("observer did not return before the notify timeout")

// dispatcher delivers one event to a list of handles, in order. A handle
// that fails, panics or hangs costs at most one timeout and never stops the
// delivery to the handles after it.
type dispatcher struct {
	timeout time.Duration
	logger  *logging.Logger
	metrics *monitoring.Metrics
}

func (d *dispatcher) dispatch(ctx context.Context, handles []*handle, event types.Event) {
	for _, h := range handles {
		ev := event
		if event.App != nil {
			app := event.App.Clone()
			ev.App = &app
		}
		d.deliver(ctx, h, ev)
	}
}

func (d *dispatcher) deliver(ctx context.Context, h *handle, event types.Event) {
	err := h.breaker.Execute(func() error {
		return d.call(ctx, h, event)
	})

	outcome := "delivered"
	switch {
	case err == nil:
	case errors.Is(err, resilience.ErrCircuitOpen), errors.Is(err, resilience.ErrTooManyRequests):
		outcome = "skipped"
	case errors.Is(err, errNotifyTimeout):
		outcome = "timeout"
	default:
		outcome = "failed"
	}
	d.metrics.RecordNotification(string(event.Category), outcome)

	if err != nil && outcome != "skipped" {
		d.logger.Warn("Observer notification failed",
			zap.String("handle", h.id.String()),
			zap.String("category", string(event.Category)),
			zap.Uint64("seq", event.Seq),
			zap.String("outcome", outcome),
			zap.Error(err),
		)
	}
}

// call runs Notify on its own goroutine so the controller can stop waiting
// at the deadline even if the observer ignores ctx.
func (d *dispatcher) call(ctx context.Context, h *handle, event types.Event) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("observer panicked: %v", r)
			}
		}()
		done <- h.observer.Notify(ctx, event)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return errNotifyTimeout
	}
}
