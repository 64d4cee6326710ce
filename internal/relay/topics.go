package relay

// Bus topics published by the dispatcher. Subscribers observe these for
// logging and future fan-in; nothing in the relay path depends on them.
const (
	// TopicSessionJoined is published when a user joins a room.
	TopicSessionJoined = "relay.session.joined"
	// TopicSessionLeft is published when a connection closes and its session is removed.
	TopicSessionLeft = "relay.session.left"
	// TopicMessageRelayed is published after a chat message is persisted and fanned out.
	TopicMessageRelayed = "relay.message.relayed"
	// TopicGatewayError is published when a persist or notify call fails.
	TopicGatewayError = "relay.gateway.error"
)

// SessionEvent is the payload for session joined/left topics.
type SessionEvent struct {
	RoomID   int64  `json:"room_id"`
	UserID   int64  `json:"user_id"`
	Name     string `json:"name"`
	Rejoined bool   `json:"rejoined,omitempty"`
}

// MessageRelayedEvent is the payload for the message relayed topic.
type MessageRelayedEvent struct {
	RoomID     int64 `json:"room_id"`
	UserID     int64 `json:"user_id"`
	Recipients int   `json:"recipients"`
}

// GatewayErrorEvent is the payload for the gateway error topic. It is the
// only place a failed gateway call is visible outside the logs.
type GatewayErrorEvent struct {
	Op     string `json:"op"`
	RoomID int64  `json:"room_id"`
	UserID int64  `json:"user_id"`
	Error  string `json:"error"`
}
