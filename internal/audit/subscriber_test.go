package audit_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/relay/internal/audit"
	"github.com/nfrund/relay/internal/pubsub"
	"github.com/nfrund/relay/internal/relay"
)

// mockSubscriber records subscriptions and lets tests invoke handlers.
type mockSubscriber struct {
	mu       sync.Mutex
	handlers map[string]pubsub.Handler
}

func newMockSubscriber() *mockSubscriber {
	return &mockSubscriber{handlers: make(map[string]pubsub.Handler)}
}

func (m *mockSubscriber) Subscribe(ctx context.Context, topic string, handler pubsub.Handler) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[topic] = handler
	return nil
}

func (m *mockSubscriber) Close() error { return nil }

func (m *mockSubscriber) handlerFor(topic string) (pubsub.Handler, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.handlers[topic]
	return h, ok
}

func TestSubscriber_StartCoversAllRelayTopics(t *testing.T) {
	sub := newMockSubscriber()
	audit.NewSubscriber(sub).Start(context.Background())

	for _, topic := range []string{
		relay.TopicSessionJoined,
		relay.TopicSessionLeft,
		relay.TopicMessageRelayed,
		relay.TopicGatewayError,
	} {
		_, ok := sub.handlerFor(topic)
		assert.True(t, ok, "expected subscription on %s", topic)
	}
}

func TestSubscriber_HandlesWellFormedEvents(t *testing.T) {
	sub := newMockSubscriber()
	audit.NewSubscriber(sub).Start(context.Background())

	tests := []struct {
		topic   string
		payload string
	}{
		{relay.TopicGatewayError, `{"op":"persist","room_id":7,"user_id":1,"error":"backend down"}`},
		{relay.TopicMessageRelayed, `{"room_id":7,"user_id":1,"recipients":2}`},
		{relay.TopicSessionJoined, `{"room_id":7,"user_id":1,"name":"alice"}`},
	}
	for _, tt := range tests {
		handler, ok := sub.handlerFor(tt.topic)
		require.True(t, ok)

		err := handler(context.Background(), pubsub.Message{
			Topic:   tt.topic,
			RoomID:  7,
			UserID:  1,
			Payload: []byte(tt.payload),
		})
		assert.NoError(t, err, "handler for %s", tt.topic)
	}
}

func TestSubscriber_RejectsMalformedPayload(t *testing.T) {
	sub := newMockSubscriber()
	audit.NewSubscriber(sub).Start(context.Background())

	handler, ok := sub.handlerFor(relay.TopicGatewayError)
	require.True(t, ok)

	err := handler(context.Background(), pubsub.Message{
		Topic:   relay.TopicGatewayError,
		Payload: []byte(`{broken`),
	})
	assert.Error(t, err)
}
