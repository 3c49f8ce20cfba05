// Package messaging publishes registry events to a broker. The registry
// only emits; downstream indexers and mirrors consume elsewhere.
package messaging

import (
	"context"
	"io"
	"time"
)

// Publisher sends messages to a named topic or subject.
type Publisher interface {
	io.Closer

	// Publish sends msg to destination and reports the broker outcome.
	Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error)
}

// OutgoingMessage is a message to be published.
type OutgoingMessage struct {
	// Body is the message payload.
	Body []byte
	// Headers carries broker headers where the driver supports them.
	Headers map[string]string
}

// PublishResult reports where and when a message was accepted.
type PublishResult struct {
	// Topic is the destination the broker accepted the message on.
	Topic string
	// Timestamp is when the publish completed.
	Timestamp time.Time
}
