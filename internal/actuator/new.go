package actuator

import (
	"context"

	"github.com/vigilz/homebase/internal/config"
	"github.com/vigilz/homebase/internal/logger"
)

// New selects the actuator implementation for the given settings.
// When GPIO is disabled, or the memory range cannot be mapped on this host,
// the simulated actuator is used so the rest of the pipeline keeps working.
func New(ctx context.Context, cfg config.ActuatorConfig) Actuator {
	if !cfg.Enabled {
		logger.Info(ctx, "GPIO disabled in settings, using simulated relay")

		return NewSimulated()
	}

	gpio, err := OpenGPIO(ctx, cfg.Pin)
	if err != nil {
		logger.WarnKV(ctx, "GPIO unavailable, falling back to simulated relay", "error", err)

		return NewSimulated()
	}

	return gpio
}
