package bus

import (
	"context"
	"strings"
)

// Handler processes one inbound message delivered by the broker.
// Handlers must not panic; anything recoverable is logged and dropped.
type Handler func(ctx context.Context, topic string, payload []byte)

// Publisher is the outbound side of the message bus, as consumed by the
// correlator and the alarm dispatcher.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// Subscriber is the inbound side of the message bus.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string, handler Handler) error
}

// Join builds a topic from a base path and additional segments.
// Empty segments are skipped and a trailing slash on the base is tolerated.
func Join(base string, segments ...string) string {
	parts := make([]string, 0, len(segments)+1)
	parts = append(parts, strings.TrimSuffix(base, "/"))

	for _, segment := range segments {
		if segment != "" {
			parts = append(parts, segment)
		}
	}

	return strings.Join(parts, "/")
}
