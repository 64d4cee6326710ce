package relay

// Conn is the borrowed transport handle for one client connection. The
// websocket layer owns the connection lifecycle; the relay only writes to
// it and identifies it by its generated connection ID when it closes.
type Conn interface {
	// ID returns the connection's unique identifier.
	ID() string

	// Send queues a payload for delivery to the client. It returns an
	// error when the connection is gone or its buffer is full; callers
	// treat that the same as a close.
	Send(payload []byte) error
}

// Session is the live binding of a user identity to one active connection
// within one room. It is owned exclusively by its room entry in the
// directory.
type Session struct {
	RoomID int64
	User   User
	Conn   Conn

	// Typing is set by typing events but not yet broadcast anywhere.
	Typing bool
}
