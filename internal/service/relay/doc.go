// Package relay implements the standalone relay control command used to
// exercise the alarm hardware without the scorer.
package relay
