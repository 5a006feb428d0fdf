// Package config defines the settings used by the scorer and relay binaries
// and provides helpers to load, validate and save them in YAML format.
//
// The Config type covers the broker connection, topics, scoring weights,
// audio-adjustment weights, actuator pin and the pending-inquiry lifetime.
package config
