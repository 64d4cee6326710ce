package gateway_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/relay/internal/gateway"
)

// recordingBackend captures the requests the client makes.
type recordingBackend struct {
	mu       sync.Mutex
	requests map[string][]json.RawMessage
	status   int
	response string
}

func newRecordingBackend() *recordingBackend {
	return &recordingBackend{
		requests: make(map[string][]json.RawMessage),
		status:   http.StatusOK,
		response: `{"id":42,"room_id":7,"user_id":1,"body":"hi"}`,
	}
}

func (b *recordingBackend) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.requests[r.URL.Path] = append(b.requests[r.URL.Path], body)
		b.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(b.status)
		w.Write([]byte(b.response))
	}
}

func (b *recordingBackend) requestsTo(path string) []json.RawMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests[path]
}

func TestClient_PersistPostsPayloadAndReturnsRecord(t *testing.T) {
	backend := newRecordingBackend()
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	client := gateway.New(server.URL, 5*time.Second)
	stored, err := client.Persist(context.Background(), 7, 1, "hi")
	require.NoError(t, err)
	assert.JSONEq(t, backend.response, string(stored))

	requests := backend.requestsTo("/log-message")
	require.Len(t, requests, 1)
	assert.JSONEq(t, `{"room_id":7,"user_id":1,"body":"hi"}`, string(requests[0]))
}

func TestClient_NotifyPostsPayload(t *testing.T) {
	backend := newRecordingBackend()
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	client := gateway.New(server.URL, 5*time.Second)
	err := client.Notify(context.Background(), 7, 1, "hi")
	require.NoError(t, err)

	requests := backend.requestsTo("/push-chat-notification")
	require.Len(t, requests, 1)
	assert.JSONEq(t, `{"room_id":7,"user_id":1,"body":"hi"}`, string(requests[0]))
}

func TestClient_NonSuccessStatusIsAnError(t *testing.T) {
	backend := newRecordingBackend()
	backend.status = http.StatusInternalServerError
	backend.response = `{"error":"database down"}`
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	client := gateway.New(server.URL, 5*time.Second)

	_, err := client.Persist(context.Background(), 7, 1, "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")

	err = client.Notify(context.Background(), 7, 1, "hi")
	assert.Error(t, err)
}

func TestClient_TimeoutIsBounded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := gateway.New(server.URL, 20*time.Millisecond)

	_, err := client.Persist(context.Background(), 7, 1, "hi")
	assert.Error(t, err)
}

func TestClient_UnreachableBackendIsAnError(t *testing.T) {
	// Port 0 is never routable.
	client := gateway.New("http://127.0.0.1:0", time.Second)

	_, err := client.Persist(context.Background(), 7, 1, "hi")
	assert.Error(t, err)
}
