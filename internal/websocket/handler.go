// Package websocket is the transport layer of the relay: it upgrades HTTP
// requests, runs one read and one write pump per connection, and feeds
// inbound frames to the dispatcher.
package websocket

import (
	"log/slog"

	"github.com/coder/websocket"
	"github.com/labstack/echo/v4"

	"github.com/nfrund/relay/internal/relay"
)

// Handler upgrades HTTP requests to WebSocket connections.
type Handler struct {
	dispatcher *relay.Dispatcher
	sendBuffer int
}

// NewHandler creates a Handler that feeds the given dispatcher.
func NewHandler(dispatcher *relay.Dispatcher, sendBuffer int) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		sendBuffer: sendBuffer,
	}
}

// Serve returns the echo handler for WebSocket upgrade requests.
func (h *Handler) Serve() echo.HandlerFunc {
	return func(c echo.Context) error {
		conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
			InsecureSkipVerify: true, // In production, check origin.
		})
		if err != nil {
			slog.Error("Failed to upgrade connection to WebSocket", "error", err)
			return err
		}

		client := newClient(conn, h.sendBuffer)
		slog.Info("WebSocket client connected", "connID", client.ID())

		go client.writePump()
		go client.readPump(h.dispatcher)

		return nil
	}
}
