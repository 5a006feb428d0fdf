// Package pending implements the in-memory correlation table of events
// awaiting an audio verdict. Entries are keyed by event id, carry the score
// frozen at inquiry time, and expire after a configured lifetime.
package pending
