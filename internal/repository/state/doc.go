// Package state implements persistence for the alarm state.
//
// The FileRepository stores and loads the state as JSON on disk and exposes a
// Repository interface that the dispatcher and the scorer service depend on,
// so an active alarm survives a scorer restart.
package state
