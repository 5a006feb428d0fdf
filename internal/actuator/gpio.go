package actuator

import (
	"context"
	"fmt"

	rpio "github.com/stianeikeland/go-rpio/v4"

	"github.com/vigilz/homebase/internal/logger"
)

// GPIO drives a relay through a BCM-numbered output pin.
type GPIO struct {
	// pin is the memory-mapped output pin.
	pin rpio.Pin
}

// OpenGPIO maps the GPIO memory range and initialises the pin as a low
// output, so the relay starts de-asserted.
func OpenGPIO(ctx context.Context, pinNumber int) (*GPIO, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("open gpio memory range: %w", err)
	}

	pin := rpio.Pin(pinNumber)
	pin.Output()
	pin.Low()

	logger.InfoKV(ctx, "GPIO pin initialised for alarm relay", "pin", pinNumber)

	return &GPIO{pin: pin}, nil
}

// SetAlarmState drives the pin high or low. Writing the current state again
// is a no-op at the hardware level, which gives the required idempotency.
func (g *GPIO) SetAlarmState(ctx context.Context, on bool) error {
	if on {
		g.pin.High()
	} else {
		g.pin.Low()
	}

	logger.InfoKV(ctx, "Relay state changed", "pin", uint8(g.pin), "on", on)

	return nil
}

// Close de-asserts the relay and unmaps the GPIO memory range.
func (g *GPIO) Close(ctx context.Context) error {
	g.pin.Low()

	if err := rpio.Close(); err != nil {
		return fmt.Errorf("close gpio memory range: %w", err)
	}

	logger.Info(ctx, "GPIO resources released")

	return nil
}
