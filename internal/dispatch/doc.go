// Package dispatch raises the alarm: it publishes the structured alert
// message and asserts the relay actuator, treating the actuator as
// best-effort.
package dispatch
