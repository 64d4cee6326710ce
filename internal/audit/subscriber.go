// Package audit turns relay bus events into structured log entries. It is
// the sole consumer of the dispatcher's fire-and-forget results: gateway
// failures end up here and nowhere else.
package audit

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nfrund/relay/internal/pubsub"
	"github.com/nfrund/relay/internal/relay"
)

// Subscriber listens on every relay topic and logs what it sees.
type Subscriber struct {
	subscriber pubsub.Subscriber
}

// NewSubscriber creates a new audit subscriber.
func NewSubscriber(sub pubsub.Subscriber) *Subscriber {
	return &Subscriber{subscriber: sub}
}

// Start subscribes to all relay topics. Subscriptions run in the
// background until the context is canceled.
func (s *Subscriber) Start(ctx context.Context) {
	slog.Info("Starting relay audit subscriber")

	topics := []string{
		relay.TopicSessionJoined,
		relay.TopicSessionLeft,
		relay.TopicMessageRelayed,
		relay.TopicGatewayError,
	}
	for _, topic := range topics {
		if err := s.subscriber.Subscribe(ctx, topic, s.handle); err != nil {
			slog.Error("Audit subscriber failed to subscribe", "topic", topic, "error", err)
		}
	}
}

// handle logs one bus event at a level matching its topic.
func (s *Subscriber) handle(ctx context.Context, msg pubsub.Message) error {
	switch msg.Topic {
	case relay.TopicGatewayError:
		var ev relay.GatewayErrorEvent
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			return err
		}
		slog.Error("Gateway call failed", "op", ev.Op, "roomID", ev.RoomID, "userID", ev.UserID, "cause", ev.Error)
	case relay.TopicMessageRelayed:
		var ev relay.MessageRelayedEvent
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			return err
		}
		slog.Info("Message relayed", "roomID", ev.RoomID, "userID", ev.UserID, "recipients", ev.Recipients)
	default:
		slog.Info("Session event", "topic", msg.Topic, "roomID", msg.RoomID, "userID", msg.UserID)
	}
	return nil
}
