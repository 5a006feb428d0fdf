package relay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vigilz/homebase/internal/actuator"
	"github.com/vigilz/homebase/internal/config"
	"github.com/vigilz/homebase/internal/logger"
)

// State names accepted by Run.
const (
	StateOn     = "on"
	StateOff    = "off"
	StateToggle = "toggle"
)

// DefaultToggleDelay is how long a toggle holds the relay on.
const DefaultToggleDelay = time.Second

// ErrUnknownState indicates an unrecognized state argument.
var ErrUnknownState = errors.New("state must be on, off or toggle")

// Options controls a single relay invocation.
type Options struct {
	// Pin is the BCM pin number driving the relay.
	Pin int
	// Simulate skips real GPIO and only logs state changes.
	Simulate bool
	// State is the requested relay state: on, off or toggle.
	State string
	// Delay is how long a toggle holds the relay on.
	Delay time.Duration
}

// Run drives the relay once and returns. A toggle asserts the relay,
// waits for the delay, then releases it; cancelling the context during
// the wait releases the relay early.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "homebase-relay")

	relay := actuator.New(ctx, config.ActuatorConfig{
		Pin:     opts.Pin,
		Enabled: !opts.Simulate,
	})

	defer func() {
		if err := relay.Close(ctx); err != nil {
			logger.WarnKV(ctx, "Failed to release relay", "error", err)
		}
	}()

	switch opts.State {
	case StateOn:
		return relay.SetAlarmState(ctx, true)
	case StateOff:
		return relay.SetAlarmState(ctx, false)
	case StateToggle:
		return toggle(ctx, relay, opts.Delay)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownState, opts.State)
	}
}

// toggle holds the relay on for the delay, then releases it.
func toggle(ctx context.Context, relay actuator.Actuator, delay time.Duration) error {
	if delay <= 0 {
		delay = DefaultToggleDelay
	}

	if err := relay.SetAlarmState(ctx, true); err != nil {
		return err
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		logger.Info(ctx, "Toggle interrupted, releasing relay")
	}

	return relay.SetAlarmState(ctx, false)
}
