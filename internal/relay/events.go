package relay

// Inbound event types. One JSON frame per event, tagged by "type".
const (
	EventJoin        = "join"
	EventHeartbeat   = "heartbeat"
	EventChatMessage = "chat_message"
	EventTyping      = "typing"
)

// Outbound event types.
const (
	EventHeartbeatAck = "heartbeat_ack"
	EventMessageAck   = "message_ack"
	EventNewMessage   = "new_message"
)

// User is the denormalized profile carried in join and message events.
// Identity arrives pre-validated from the upstream auth layer; the relay
// never checks credentials itself. IDs are opaque, so zero is as valid as
// any other value.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Envelope is the minimal decode used to tag an inbound frame before
// routing it to a type-specific handler.
type Envelope struct {
	Type string `json:"type"`
}

// The event fields below are pointers so validation checks presence, not
// content: a frame that omits room_id is malformed, but room 0, user 0,
// and an empty message body are all legitimate values and pass through.

// JoinEvent registers the sending connection as a member of a room.
type JoinEvent struct {
	RoomID *int64 `json:"room_id" validate:"required"`
	User   *User  `json:"user" validate:"required"`
}

// ChatMessageEvent carries a chat message for everyone else in the room.
type ChatMessageEvent struct {
	RoomID *int64  `json:"room_id" validate:"required"`
	User   *User   `json:"user" validate:"required"`
	Body   *string `json:"body" validate:"required"`
}

// TypingEvent signals that the sender is composing a message. The payload
// relayed for it is intentionally empty; the hook exists so clients can
// already subscribe to the shape.
type TypingEvent struct {
	RoomID *int64 `json:"room_id" validate:"required"`
	User   *User  `json:"user" validate:"required"`
}

// OutboundEvent is the envelope written to clients.
type OutboundEvent struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}
