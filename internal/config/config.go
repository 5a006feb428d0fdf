package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all settings for the scorer and relay binaries.
type Config struct {
	// Broker holds MQTT broker connection parameters.
	Broker BrokerConfig `yaml:"broker"`
	// Topics holds the subscribed and published MQTT topics.
	Topics TopicsConfig `yaml:"topics"`
	// Scoring holds thresholds and detection weights.
	Scoring ScoringConfig `yaml:"scoring"`
	// Audio holds the audio-adjustment weights and keyword sets.
	Audio AudioConfig `yaml:"audio"`
	// Actuator holds the GPIO relay settings.
	Actuator ActuatorConfig `yaml:"actuator"`
	// PendingTTL is how long an event may wait for its audio verdict
	// before the expiry sweep removes it.
	PendingTTL time.Duration `yaml:"pending_ttl"`
	// MetricsAddress is the optional listen address for the Prometheus
	// /metrics endpoint. Empty disables the endpoint.
	MetricsAddress string `yaml:"metrics_addr"`
	// StateFile is the path where the latest alarm state is persisted.
	// Empty disables alarm state persistence.
	StateFile string `yaml:"state_file"`
	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
}

// BrokerConfig holds MQTT broker connection parameters.
type BrokerConfig struct {
	// Host is the broker hostname or IP address.
	Host string `yaml:"host"`
	// Port is the broker TCP port.
	Port int `yaml:"port"`
	// ClientID identifies this process to the broker.
	ClientID string `yaml:"client_id"`
}

// Address returns the broker address in tcp://host:port form for paho.
func (b BrokerConfig) Address() string {
	return fmt.Sprintf("tcp://%s:%d", b.Host, b.Port)
}

// TopicsConfig holds the MQTT topics the scorer subscribes to and publishes on.
type TopicsConfig struct {
	// Detection is the subscription pattern for detection events.
	Detection string `yaml:"detection"`
	// Audio is the subscription pattern for audio analysis results.
	Audio string `yaml:"audio"`
	// InquiryBase is the base topic for audio inquiry requests;
	// the event id is appended as the final topic segment.
	InquiryBase string `yaml:"inquiry_base"`
	// Alert is the fixed topic alarm alerts are published to.
	Alert string `yaml:"alert"`
}

// ScoringConfig holds the thresholds and the additive detection weight table.
type ScoringConfig struct {
	// AlarmThreshold is the score at or above which an alarm is raised.
	AlarmThreshold float64 `yaml:"alarm_threshold"`
	// InquiryThreshold is the score at or above which an audio inquiry
	// is requested (when below the alarm threshold).
	InquiryThreshold float64 `yaml:"inquiry_threshold"`
	// BasePerson is the base weight for a "person" label.
	BasePerson float64 `yaml:"base_person"`
	// WeaponBonus is added when a weapon attribute is present.
	WeaponBonus float64 `yaml:"weapon_bonus"`
	// MaskBonus is added when a mask clothing attribute is present.
	MaskBonus float64 `yaml:"mask_bonus"`
	// HoodieBonus is added when a hoodie clothing attribute is present.
	HoodieBonus float64 `yaml:"hoodie_bonus"`
	// PoseBonus is added when the pose is crouch or prone.
	PoseBonus float64 `yaml:"pose_bonus"`
}

// AudioConfig holds the audio-adjustment weights and keyword sets.
type AudioConfig struct {
	// NegativeToneWeight is added when the reply tone is negative.
	NegativeToneWeight float64 `yaml:"negative_tone_weight"`
	// ThreatKeywordWeight is added when the transcript contains a threat keyword.
	ThreatKeywordWeight float64 `yaml:"threat_keyword_weight"`
	// CalmDeliveryWeight is added when a calm marker is present and the tone
	// is not negative. Configured negative to reduce the score.
	CalmDeliveryWeight float64 `yaml:"calm_delivery_weight"`
	// EvasiveSilenceWeight is added when the transcript is blank and the tone
	// is neutral.
	EvasiveSilenceWeight float64 `yaml:"evasive_silence_weight"`
	// ThreatKeywords are matched as substrings of the lowercased transcript.
	ThreatKeywords []string `yaml:"threat_keywords"`
	// CalmMarkers are matched as substrings of the lowercased transcript.
	CalmMarkers []string `yaml:"calm_markers"`
}

// ActuatorConfig holds the GPIO relay settings.
type ActuatorConfig struct {
	// Pin is the BCM pin number driving the alarm relay.
	Pin int `yaml:"pin"`
	// Enabled selects the real GPIO actuator; when false the actuator
	// only logs the requested state.
	Enabled bool `yaml:"enabled"`
}

const (
	// DefaultConfigFilename is the default filename for scorer settings.
	DefaultConfigFilename = "homebase-scorer.yaml"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600

	// DefaultStateFilename is the default path for the persisted alarm state.
	DefaultStateFilename = "homebase-state.json"

	// DefaultPendingTTL is the default lifetime of a pending audio inquiry.
	DefaultPendingTTL = 60 * time.Second
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errBrokerHostRequired is returned when the broker host is missing.
	errBrokerHostRequired = errors.New("broker host must be provided")
	// errInvalidBrokerPort is returned when the broker port is out of range.
	errInvalidBrokerPort = errors.New("broker port must be between 1 and 65535")
	// errTopicRequired is returned when a required topic is empty.
	errTopicRequired = errors.New("all topics must be provided")
	// errThresholdOrder is returned when the inquiry threshold exceeds the alarm threshold.
	errThresholdOrder = errors.New("inquiry threshold must not exceed alarm threshold")
)

// Default returns a configuration populated with the stock Homebase values.
// Load unmarshals on top of it, so omitted YAML keys keep these values.
func Default() *Config {
	return &Config{
		Broker: BrokerConfig{
			Host:     "mosquitto",
			Port:     1883,
			ClientID: "homebase-scorer",
		},
		Topics: TopicsConfig{
			Detection:   "frigate/events/#",
			Audio:       "vz/audio/#",
			InquiryBase: "vz/inquiry",
			Alert:       "vz/alert",
		},
		Scoring: ScoringConfig{
			AlarmThreshold:   0.8,
			InquiryThreshold: 0.3,
			BasePerson:       0.2,
			WeaponBonus:      0.5,
			MaskBonus:        0.1,
			HoodieBonus:      0.1,
			PoseBonus:        0.15,
		},
		Audio: AudioConfig{
			NegativeToneWeight:   0.3,
			ThreatKeywordWeight:  0.2,
			CalmDeliveryWeight:   -0.2,
			EvasiveSilenceWeight: 0.1,
			ThreatKeywords:       []string{"help", "police", "intruder", "attack"},
			CalmMarkers:          []string{"delivery"},
		},
		Actuator: ActuatorConfig{
			Pin:     17,
			Enabled: true,
		},
		PendingTTL: DefaultPendingTTL,
		StateFile:  DefaultStateFilename,
		LogLevel:   "info",
	}
}

// Load reads configuration from the provided path and validates essential fields.
// Missing keys fall back to the defaults from Default.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and formatting.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.Broker.Host == "" {
		return errBrokerHostRequired
	}

	if cfg.Broker.Port < 1 || cfg.Broker.Port > 65535 {
		return errInvalidBrokerPort
	}

	if cfg.Topics.Detection == "" || cfg.Topics.Audio == "" ||
		cfg.Topics.InquiryBase == "" || cfg.Topics.Alert == "" {
		return errTopicRequired
	}

	if cfg.Scoring.InquiryThreshold > cfg.Scoring.AlarmThreshold {
		return errThresholdOrder
	}

	// Set default TTL if not specified.
	if cfg.PendingTTL <= 0 {
		cfg.PendingTTL = DefaultPendingTTL
	}

	return nil
}
