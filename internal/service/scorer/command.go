package scorer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/vigilz/homebase/internal/actuator"
	"github.com/vigilz/homebase/internal/bus"
	"github.com/vigilz/homebase/internal/config"
	"github.com/vigilz/homebase/internal/correlator"
	"github.com/vigilz/homebase/internal/dispatch"
	"github.com/vigilz/homebase/internal/logger"
	"github.com/vigilz/homebase/internal/metrics"
	"github.com/vigilz/homebase/internal/pending"
	"github.com/vigilz/homebase/internal/repository/state"
	"github.com/vigilz/homebase/internal/scoring"
)

// Options controls the scorer process and configuration.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
}

const (
	// metricsReadHeaderTimeout bounds header reads on the metrics listener.
	metricsReadHeaderTimeout = 5 * time.Second
	// shutdownTimeout bounds the metrics listener shutdown.
	shutdownTimeout = 5 * time.Second
)

// Run starts the scorer and blocks until the context is cancelled.
// A broker connection or subscription failure at startup is returned to the
// caller and ends the process with a non-zero status; mid-run transport
// problems are only logged.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "homebase-scorer")

	cfg, err := config.Load(opts.ConfigPath)

	switch {
	case errors.Is(err, os.ErrNotExist):
		// No settings file means stock settings, so the scorer works out
		// of the box next to a broker named "mosquitto".
		logger.InfoKV(ctx, "Settings file not found, using defaults", "path", opts.ConfigPath)

		cfg = config.Default()
	case err != nil:
		return fmt.Errorf("load settings: %w", err)
	}

	if level, ok := logger.ParseLogLevel(cfg.LogLevel); ok {
		logger.SetLevel(level)
	}

	// The relay falls back to a simulated implementation on hosts without
	// GPIO, so a scorer without hardware still functions.
	relay := actuator.New(ctx, cfg.Actuator)

	journal := openJournal(cfg.StateFile)
	restoreAlarm(ctx, journal, relay)

	client, err := bus.Connect(ctx, cfg.Broker.Address(), cfg.Broker.ClientID)
	if err != nil {
		closeRelay(ctx, relay)

		return fmt.Errorf("connect to broker: %w", err)
	}

	c := correlator.New(
		correlator.Config{
			AlarmThreshold:   cfg.Scoring.AlarmThreshold,
			InquiryThreshold: cfg.Scoring.InquiryThreshold,
			InquiryTopicBase: cfg.Topics.InquiryBase,
			PendingTTL:       cfg.PendingTTL,
		},
		scoring.NewCalculator(detectionWeights(cfg)),
		scoring.NewAdjuster(audioWeights(cfg), cfg.Audio.ThreatKeywords, cfg.Audio.CalmMarkers),
		pending.NewStore(),
		client,
		newDispatcher(client, relay, cfg.Topics.Alert, journal),
	)
	c.Start(ctx)

	if err := client.Subscribe(ctx, cfg.Topics.Detection, c.OnDetectionMessage); err != nil {
		cleanup(ctx, c, client, relay)

		return fmt.Errorf("subscribe to detection events: %w", err)
	}

	if err := client.Subscribe(ctx, cfg.Topics.Audio, c.OnAudioMessage); err != nil {
		cleanup(ctx, c, client, relay)

		return fmt.Errorf("subscribe to audio results: %w", err)
	}

	metricsServer := startMetricsServer(ctx, cfg.MetricsAddress)

	logger.InfoKV(ctx, "Scorer service started",
		"detection_topic", cfg.Topics.Detection,
		"audio_topic", cfg.Topics.Audio,
		"alarm_threshold", cfg.Scoring.AlarmThreshold,
		"inquiry_threshold", cfg.Scoring.InquiryThreshold,
		"pending_ttl", cfg.PendingTTL)

	<-ctx.Done()
	logger.Info(ctx, "Shutting down scorer service")

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.WarnKV(ctx, "Metrics listener shutdown failed", "error", err)
		}
	}

	cleanup(ctx, c, client, relay)
	logger.Info(ctx, "Scorer service stopped")

	return nil
}

// cleanup drains the correlator and releases the transport and relay.
func cleanup(ctx context.Context, c *correlator.Correlator, client *bus.MQTTClient, relay actuator.Actuator) {
	c.Close()
	client.Close()
	closeRelay(ctx, relay)
}

// closeRelay releases the relay, logging instead of failing.
func closeRelay(ctx context.Context, relay actuator.Actuator) {
	if err := relay.Close(ctx); err != nil {
		logger.WarnKV(ctx, "Failed to release relay", "error", err)
	}
}

// openJournal returns the alarm state repository, or nil when persistence
// is disabled.
func openJournal(path string) *state.FileRepository {
	if path == "" {
		return nil
	}

	return state.NewFileRepository(path)
}

// newDispatcher builds the alarm dispatcher, passing through a disabled journal.
func newDispatcher(client *bus.MQTTClient, relay actuator.Actuator, alertTopic string, journal *state.FileRepository) *dispatch.Dispatcher {
	if journal == nil {
		return dispatch.New(client, relay, alertTopic, nil)
	}

	return dispatch.New(client, relay, alertTopic, journal)
}

// restoreAlarm re-asserts the relay when the persisted state says an alarm
// was active at shutdown. GPIO pins initialize LOW, so without this a
// restart would silently release a latched alarm.
func restoreAlarm(ctx context.Context, journal *state.FileRepository, relay actuator.Actuator) {
	if journal == nil {
		return
	}

	saved, err := journal.Load(ctx)

	switch {
	case errors.Is(err, state.ErrNotFound):
		return
	case err != nil:
		logger.WarnKV(ctx, "Failed to load alarm state", "error", err)

		return
	}

	if !saved.Active {
		return
	}

	logger.WarnKV(ctx, "Restoring active alarm from previous run",
		"alert_id", saved.AlertID, "event_id", saved.EventID, "raised_at", saved.Timestamp)

	if err := relay.SetAlarmState(ctx, true); err != nil {
		logger.ErrorKV(ctx, "Failed to restore alarm relay", "error", err)
	}
}

// startMetricsServer serves /metrics on the configured address, if any.
func startMetricsServer(ctx context.Context, address string) *http.Server {
	if address == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	server := &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: metricsReadHeaderTimeout,
	}

	go func() {
		logger.InfoKV(ctx, "Metrics listener started", "address", address)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorKV(ctx, "Metrics listener failed", "error", err)
		}
	}()

	return server
}

// detectionWeights maps the settings to the calculator's weight table.
func detectionWeights(cfg *config.Config) scoring.Weights {
	return scoring.Weights{
		BasePerson:  cfg.Scoring.BasePerson,
		WeaponBonus: cfg.Scoring.WeaponBonus,
		MaskBonus:   cfg.Scoring.MaskBonus,
		HoodieBonus: cfg.Scoring.HoodieBonus,
		PoseBonus:   cfg.Scoring.PoseBonus,
	}
}

// audioWeights maps the settings to the adjuster's weight table.
func audioWeights(cfg *config.Config) scoring.AudioWeights {
	return scoring.AudioWeights{
		NegativeTone:   cfg.Audio.NegativeToneWeight,
		ThreatKeyword:  cfg.Audio.ThreatKeywordWeight,
		CalmDelivery:   cfg.Audio.CalmDeliveryWeight,
		EvasiveSilence: cfg.Audio.EvasiveSilenceWeight,
	}
}
