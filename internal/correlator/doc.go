// Package correlator implements the event-correlation state machine at the
// heart of the scorer. Detection events and audio results for the same event
// id are serialised onto a single lane, scored against configured thresholds,
// and resolved into drop, inquiry or alarm verdicts.
package correlator
