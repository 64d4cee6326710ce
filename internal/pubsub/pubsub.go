package pubsub

import (
	"context"
)

// Message is the structure passed between components on the bus. It wraps
// a raw payload with the relay-level identifiers most subscribers need.
type Message struct {
	// Topic identifies the channel the message belongs to (e.g., "relay.session.joined").
	Topic string
	// RoomID identifies the room the event is scoped to, when there is one.
	RoomID int64
	// UserID identifies the user who triggered the event.
	UserID int64
	// Payload contains the raw event data as JSON.
	Payload []byte
	// Metadata can contain arbitrary key-value pairs for context.
	Metadata map[string]string
}

// Handler defines the function signature for processing a received message.
type Handler func(ctx context.Context, msg Message) error

// Publisher defines the contract for sending messages to the bus.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// Subscriber defines the contract for receiving messages from the bus.
type Subscriber interface {
	// Subscribe starts listening to the given topic, processing messages
	// with the handler. The subscription runs until ctx is canceled.
	Subscribe(ctx context.Context, topic string, handler Handler) error
	Close() error
}
