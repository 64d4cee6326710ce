package relay

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// Sender serializes outbound events and writes them to client transports.
type Sender struct{}

// NewSender creates a Sender.
func NewSender() *Sender {
	return &Sender{}
}

// Send wraps data in a {type, data} envelope and writes it to exactly one
// connection.
func (s *Sender) Send(conn Conn, eventType string, data any) error {
	payload, err := json.Marshal(OutboundEvent{Type: eventType, Data: data})
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}
	if err := conn.Send(payload); err != nil {
		return fmt.Errorf("write %s to connection %s: %w", eventType, conn.ID(), err)
	}
	return nil
}

// Broadcast delivers one event to every target independently. A failed
// target is logged and skipped; it never blocks delivery to the rest.
func (s *Sender) Broadcast(targets []*Session, eventType string, data any) {
	for _, target := range targets {
		if err := s.Send(target.Conn, eventType, data); err != nil {
			slog.Warn("Dropping broadcast for unreachable session",
				"userID", target.User.ID, "roomID", target.RoomID, "error", err)
		}
	}
}
