// Package scorer assembles and runs the threat-scoring service: it wires
// the broker client, the correlator, the alarm dispatcher and the relay
// actuator together from the loaded settings.
package scorer
