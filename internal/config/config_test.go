package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidate checks required fields and threshold ordering.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Empty configuration is missing the broker host.
	err := Validate(new(Config))
	require.Error(t, err)

	// Bad port.
	cfg := Default()
	cfg.Broker.Port = 0
	require.Error(t, Validate(cfg))

	// Missing topic.
	cfg = Default()
	cfg.Topics.Alert = ""
	require.Error(t, Validate(cfg))

	// Inquiry threshold above alarm threshold.
	cfg = Default()
	cfg.Scoring.InquiryThreshold = 0.9
	require.Error(t, Validate(cfg))

	// Defaults validate cleanly and a non-positive TTL is replaced.
	cfg = Default()
	cfg.PendingTTL = 0
	require.NoError(t, Validate(cfg))
	require.Equal(t, DefaultPendingTTL, cfg.PendingTTL)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")

	cfg := Default()
	cfg.Broker.Host = "127.0.0.1"
	cfg.Scoring.AlarmThreshold = 0.9
	cfg.PendingTTL = 30 * time.Second

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
}

// TestLoadAppliesDefaults verifies that keys omitted from the YAML file
// keep the stock values.
func TestLoadAppliesDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	contents := "broker:\n  host: broker.local\nscoring:\n  alarm_threshold: 0.95\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), DefaultFilePermissions))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "broker.local", loaded.Broker.Host)
	require.InDelta(t, 0.95, loaded.Scoring.AlarmThreshold, 1e-9)

	// Untouched sections keep defaults.
	require.Equal(t, 1883, loaded.Broker.Port)
	require.Equal(t, "vz/alert", loaded.Topics.Alert)
	require.InDelta(t, 0.2, loaded.Scoring.BasePerson, 1e-9)
	require.Equal(t, DefaultPendingTTL, loaded.PendingTTL)
}

// TestLoadMissingFile ensures a useful error is returned for absent files.
func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.Error(t, err)
}
