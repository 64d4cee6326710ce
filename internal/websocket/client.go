package websocket

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/nfrund/relay/internal/relay"
)

// writeTimeout bounds a single frame write to a client.
const writeTimeout = 10 * time.Second

// Client wraps one WebSocket connection. It owns the connection's
// lifecycle: the relay core only holds it as a relay.Conn and identifies
// it by its generated ID.
type Client struct {
	id   string
	conn *websocket.Conn

	// send is a buffered channel of outbound frames. nil after close.
	send chan []byte
	mu   sync.RWMutex
}

var _ relay.Conn = (*Client)(nil)

func newClient(conn *websocket.Conn, sendBuffer int) *Client {
	return &Client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
}

// ID returns the generated connection ID.
func (c *Client) ID() string {
	return c.id
}

// Send queues a frame for the write pump. It fails when the client is
// gone or so far behind that its buffer is full; callers treat both the
// same as a closed connection.
func (c *Client) Send(payload []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.send == nil {
		return fmt.Errorf("connection %s is closed", c.id)
	}

	select {
	case c.send <- payload:
		return nil
	default:
		return fmt.Errorf("send buffer full for connection %s", c.id)
	}
}

// close shuts the send channel so the write pump drains and exits.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.send != nil {
		close(c.send)
		c.send = nil
	}
}

// readPump pumps frames from the connection into the dispatcher. There is
// at most one reader per connection. When the read loop ends, for any
// reason, the client's session is removed from the directory.
func (c *Client) readPump(dispatcher *relay.Dispatcher) {
	defer func() {
		dispatcher.HandleClose(context.Background(), c)
		c.close()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		_, frame, err := c.conn.Read(context.Background())
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				slog.Info("WebSocket closed normally by client", "connID", c.id)
			} else if err != io.EOF {
				slog.Error("WebSocket read error", "connID", c.id, "error", err)
			}
			break
		}

		dispatcher.HandleFrame(context.Background(), c, frame)
	}
}

// writePump pumps frames from the send channel to the connection. There
// is at most one writer per connection. A write error abandons the
// connection; the read pump then fails and runs the cleanup path.
func (c *Client) writePump() {
	defer c.conn.Close(websocket.StatusNormalClosure, "server-side cleanup")

	for frame := range c.send {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := c.conn.Write(ctx, websocket.MessageText, frame)
		cancel()
		if err != nil {
			slog.Error("WebSocket write error", "connID", c.id, "error", err)
			return
		}
	}
}
