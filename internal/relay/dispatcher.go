package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/nfrund/relay/internal/pubsub"
)

// Gateway is the external collaborator that durably stores messages and
// triggers out-of-band push notifications. Both calls are best-effort from
// the relay's point of view: failures are logged and published to the bus,
// never surfaced to the sending client.
type Gateway interface {
	// Persist durably records a message and returns the backend's
	// persisted-message record, which is echoed back to clients verbatim.
	Persist(ctx context.Context, roomID, userID int64, body string) (json.RawMessage, error)

	// Notify triggers an out-of-band notification for offline participants.
	Notify(ctx context.Context, roomID, userID int64, body string) error
}

// Dispatcher parses inbound frames, validates them, and routes them to
// per-event-type handlers. It is the only component that mutates the
// directory or talks to the gateway.
type Dispatcher struct {
	directory *Directory
	sender    *Sender
	gateway   Gateway
	bus       pubsub.Publisher
	validate  *validator.Validate
}

// NewDispatcher creates a Dispatcher wired to the given collaborators.
func NewDispatcher(directory *Directory, sender *Sender, gateway Gateway, bus pubsub.Publisher) *Dispatcher {
	return &Dispatcher{
		directory: directory,
		sender:    sender,
		gateway:   gateway,
		bus:       bus,
		validate:  validator.New(),
	}
}

// HandleFrame processes one inbound frame from a connection. Unparseable
// frames are dropped and logged; unrecognized event types are silently
// ignored. No failure here is fatal to the connection or the relay.
func (d *Dispatcher) HandleFrame(ctx context.Context, conn Conn, frame []byte) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		slog.Error("Dropping unparseable frame", "connID", conn.ID(), "error", err)
		return
	}

	switch env.Type {
	case EventJoin:
		d.handleJoin(ctx, conn, frame)
	case EventHeartbeat:
		d.handleHeartbeat(conn)
	case EventChatMessage:
		d.handleChatMessage(ctx, conn, frame)
	case EventTyping:
		d.handleTyping(conn, frame)
	default:
		// Unknown event types are ignored without a reply.
	}
}

// HandleClose removes every session bound to a closing connection, deleting
// rooms it leaves empty. One left event is published per removed session.
// Safe to call for connections that never joined.
func (d *Dispatcher) HandleClose(ctx context.Context, conn Conn) {
	for _, session := range d.directory.Leave(conn.ID()) {
		d.publish(ctx, TopicSessionLeft, session.RoomID, session.User.ID, SessionEvent{
			RoomID: session.RoomID,
			UserID: session.User.ID,
			Name:   session.User.Name,
		})
	}
}

// handleJoin registers the connection in the requested room. No
// acknowledgment frame is sent; clients infer success from subsequent
// traffic.
func (d *Dispatcher) handleJoin(ctx context.Context, conn Conn, frame []byte) {
	var ev JoinEvent
	if err := d.decode(frame, &ev); err != nil {
		slog.Error("Dropping invalid join event", "connID", conn.ID(), "error", err)
		return
	}

	roomID, user := *ev.RoomID, *ev.User
	_, created := d.directory.Join(roomID, user, conn)
	d.publish(ctx, TopicSessionJoined, roomID, user.ID, SessionEvent{
		RoomID:   roomID,
		UserID:   user.ID,
		Name:     user.Name,
		Rejoined: !created,
	})
}

// handleHeartbeat replies directly to the sender. The directory is not
// consulted; heartbeats are valid before a join.
func (d *Dispatcher) handleHeartbeat(conn Conn) {
	if err := d.sender.Send(conn, EventHeartbeatAck, Envelope{Type: EventHeartbeatAck}); err != nil {
		slog.Warn("Failed to send heartbeat ack", "connID", conn.ID(), "error", err)
	}
}

// handleChatMessage relays a message to the sender's room. When no peer is
// connected, the gateway's push notification is triggered before
// persistence. Persistence always runs; its failure suppresses the
// ack/broadcast step because there is no stored record to echo back.
func (d *Dispatcher) handleChatMessage(ctx context.Context, conn Conn, frame []byte) {
	var ev ChatMessageEvent
	if err := d.decode(frame, &ev); err != nil {
		slog.Error("Dropping invalid chat message", "connID", conn.ID(), "error", err)
		return
	}

	roomID, user, body := *ev.RoomID, *ev.User, *ev.Body
	if _, ok := d.directory.Lookup(roomID); !ok {
		slog.Error("Dropping message for unknown room", "roomID", roomID, "userID", user.ID)
		return
	}
	if _, ok := d.directory.Session(roomID, user.ID); !ok {
		slog.Error("No session found for sender", "user", user.Name, "roomID", roomID)
		return
	}

	if others := d.directory.Others(roomID, user.ID); len(others) == 0 {
		slog.Info("No peer online, sending push notification", "roomID", roomID, "userID", user.ID)
		if err := d.gateway.Notify(ctx, roomID, user.ID, body); err != nil {
			slog.Error("Push notification failed", "roomID", roomID, "userID", user.ID, "error", err)
			d.publishGatewayError(ctx, "notify", roomID, user.ID, err)
		}
	}

	stored, err := d.gateway.Persist(ctx, roomID, user.ID, body)
	if err != nil {
		slog.Error("Persisting message failed", "roomID", roomID, "userID", user.ID, "error", err)
		d.publishGatewayError(ctx, "persist", roomID, user.ID, err)
		return
	}

	// Membership may have changed while the persist call was in flight, so
	// the broadcast targets are resolved against the current directory. A
	// room emptied in the meantime simply yields no targets.
	targets := d.directory.Others(roomID, user.ID)
	if err := d.sender.Send(conn, EventMessageAck, stored); err != nil {
		slog.Warn("Failed to ack message to sender", "userID", user.ID, "error", err)
	}
	d.sender.Broadcast(targets, EventNewMessage, stored)

	d.publish(ctx, TopicMessageRelayed, roomID, user.ID, MessageRelayedEvent{
		RoomID:     roomID,
		UserID:     user.ID,
		Recipients: len(targets),
	})
}

// handleTyping resolves the sender the same way a chat message does but
// relays an intentionally empty payload. The typing indicator carries no
// real signal yet; this is the placeholder for it.
func (d *Dispatcher) handleTyping(conn Conn, frame []byte) {
	var ev TypingEvent
	if err := d.decode(frame, &ev); err != nil {
		slog.Error("Dropping invalid typing event", "connID", conn.ID(), "error", err)
		return
	}

	roomID, user := *ev.RoomID, *ev.User
	if _, ok := d.directory.Lookup(roomID); !ok {
		return
	}
	session, ok := d.directory.Session(roomID, user.ID)
	if !ok {
		slog.Error("No session found for sender", "user", user.Name, "roomID", roomID)
		return
	}
	session.Typing = true

	empty := struct{}{}
	if err := d.sender.Send(conn, EventMessageAck, empty); err != nil {
		slog.Warn("Failed to ack typing event", "userID", user.ID, "error", err)
	}
	d.sender.Broadcast(d.directory.Others(roomID, user.ID), EventNewMessage, empty)
}

// decode unmarshals a frame into a typed event and checks that its
// required fields are present. Field content is not judged here; zero IDs
// and empty bodies are valid.
func (d *Dispatcher) decode(frame []byte, v any) error {
	if err := json.Unmarshal(frame, v); err != nil {
		return fmt.Errorf("unmarshal event: %w", err)
	}
	if err := d.validate.Struct(v); err != nil {
		return fmt.Errorf("validate event: %w", err)
	}
	return nil
}

func (d *Dispatcher) publish(ctx context.Context, topic string, roomID, userID int64, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Failed to marshal bus event", "topic", topic, "error", err)
		return
	}
	if err := d.bus.Publish(ctx, pubsub.Message{
		Topic:   topic,
		RoomID:  roomID,
		UserID:  userID,
		Payload: data,
	}); err != nil {
		slog.Error("Failed to publish relay event", "topic", topic, "error", err)
	}
}

func (d *Dispatcher) publishGatewayError(ctx context.Context, op string, roomID, userID int64, cause error) {
	d.publish(ctx, TopicGatewayError, roomID, userID, GatewayErrorEvent{
		Op:     op,
		RoomID: roomID,
		UserID: userID,
		Error:  cause.Error(),
	})
}
