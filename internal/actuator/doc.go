// Package actuator drives the physical alarm relay. The real implementation
// toggles a BCM GPIO pin; a simulated implementation stands in when GPIO is
// disabled or unavailable, logging the state changes instead.
package actuator
