package relay_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/nfrund/relay/internal/pubsub"
)

// fakeConn implements relay.Conn and records every frame written to it.
type fakeConn struct {
	id       string
	mu       sync.Mutex
	frames   [][]byte
	failSend bool
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id}
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failSend {
		return errors.New("connection is closed")
	}
	c.frames = append(c.frames, payload)
	return nil
}

// outFrame is a decoded outbound envelope.
type outFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// events decodes every recorded frame.
func (c *fakeConn) events() []outFrame {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]outFrame, 0, len(c.frames))
	for _, frame := range c.frames {
		var f outFrame
		if err := json.Unmarshal(frame, &f); err != nil {
			panic("fakeConn recorded an unparseable frame: " + err.Error())
		}
		out = append(out, f)
	}
	return out
}

// gatewayCall records the arguments of one Persist or Notify call.
type gatewayCall struct {
	op     string
	roomID int64
	userID int64
	body   string
}

// fakeGateway implements relay.Gateway and records calls in order.
type fakeGateway struct {
	mu         sync.Mutex
	calls      []gatewayCall
	stored     json.RawMessage
	persistErr error
	notifyErr  error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		stored: json.RawMessage(`{"id":42,"room_id":7,"user_id":1,"body":"hi"}`),
	}
}

func (g *fakeGateway) Persist(ctx context.Context, roomID, userID int64, body string) (json.RawMessage, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, gatewayCall{op: "persist", roomID: roomID, userID: userID, body: body})
	if g.persistErr != nil {
		return nil, g.persistErr
	}
	return g.stored, nil
}

func (g *fakeGateway) Notify(ctx context.Context, roomID, userID int64, body string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, gatewayCall{op: "notify", roomID: roomID, userID: userID, body: body})
	return g.notifyErr
}

func (g *fakeGateway) callsFor(op string) []gatewayCall {
	g.mu.Lock()
	defer g.mu.Unlock()

	var out []gatewayCall
	for _, call := range g.calls {
		if call.op == op {
			out = append(out, call)
		}
	}
	return out
}

func (g *fakeGateway) callOrder() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]string, len(g.calls))
	for i, call := range g.calls {
		out[i] = call.op
	}
	return out
}

// fakeBus implements pubsub.Publisher and records published messages.
type fakeBus struct {
	mu       sync.Mutex
	messages []pubsub.Message
}

func newFakeBus() *fakeBus {
	return &fakeBus{}
}

func (b *fakeBus) Publish(ctx context.Context, msg pubsub.Message) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, msg)
	return nil
}

func (b *fakeBus) Close() error { return nil }

func (b *fakeBus) byTopic(topic string) []pubsub.Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []pubsub.Message
	for _, msg := range b.messages {
		if msg.Topic == topic {
			out = append(out, msg)
		}
	}
	return out
}
