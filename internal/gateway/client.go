// Package gateway is the HTTP client for the backend that owns message
// persistence and offline push notifications. The relay treats both
// endpoints as best-effort collaborators behind a bounded timeout.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	persistEndpoint = "/log-message"
	notifyEndpoint  = "/push-chat-notification"
)

// Client posts JSON payloads to the backend API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// messagePayload is the request body shared by both endpoints.
type messagePayload struct {
	RoomID int64  `json:"room_id"`
	Body   string `json:"body"`
	UserID int64  `json:"user_id"`
}

// New creates a Client for the backend at baseURL, e.g.
// "http://localhost:8000/api". The timeout bounds each call end to end.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}
}

// Persist durably records a message and returns the backend's stored
// record verbatim.
func (c *Client) Persist(ctx context.Context, roomID, userID int64, body string) (json.RawMessage, error) {
	stored, err := c.post(ctx, persistEndpoint, messagePayload{RoomID: roomID, UserID: userID, Body: body})
	if err != nil {
		return nil, fmt.Errorf("persist message: %w", err)
	}
	return stored, nil
}

// Notify triggers an out-of-band push notification for the room's offline
// participants.
func (c *Client) Notify(ctx context.Context, roomID, userID int64, body string) error {
	if _, err := c.post(ctx, notifyEndpoint, messagePayload{RoomID: roomID, UserID: userID, Body: body}); err != nil {
		return fmt.Errorf("push notification: %w", err)
	}
	return nil
}

// post sends one JSON request and returns the raw response body. Any
// non-2xx status is a failure.
func (c *Client) post(ctx context.Context, endpoint string, payload any) (json.RawMessage, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response from %s: %w", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("POST %s: backend returned %d: %s", endpoint, resp.StatusCode, respBody)
	}

	return respBody, nil
}
