package actuator

import (
	"context"

	"github.com/vigilz/homebase/internal/logger"
)

// Actuator asserts or clears the physical alarm signal.
// SetAlarmState must be idempotent: setting an already-asserted state again
// is harmless.
type Actuator interface {
	SetAlarmState(ctx context.Context, on bool) error
	Close(ctx context.Context) error
}

// Simulated is the actuator used when GPIO is disabled in configuration or
// unavailable on the host. It only logs the requested states, mirroring what
// the real relay would do.
type Simulated struct{}

// NewSimulated creates an actuator that logs instead of driving hardware.
func NewSimulated() *Simulated {
	return &Simulated{}
}

// SetAlarmState logs the requested alarm state.
func (s *Simulated) SetAlarmState(ctx context.Context, on bool) error {
	logger.InfoKV(ctx, "Simulated relay state change", "on", on)

	return nil
}

// Close logs the shutdown; there is nothing to release.
func (s *Simulated) Close(ctx context.Context) error {
	logger.Info(ctx, "Simulated relay closed")

	return nil
}
