package hub

import (
	"context"
	"testing"
	"time"

	"Chatline/internal/auth"
	"Chatline/internal/event"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	verifier, err := auth.NewVerifier("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	h := NewHub(verifier, []string{"*"}, zap.NewNop())
	t.Cleanup(h.Stop)
	return h
}

// newTestClient builds a client without a transport so registry and
// dispatch paths can be exercised directly; events land in its egress
// buffer instead of a socket.
func newTestClient(h *Hub, userID int64) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		ID:         uuid.New().String(),
		userID:     userID,
		hub:        h,
		egress:     make(chan event.Envelope, sendBufSize),
		logger:     zap.NewNop(),
		rooms:      make(map[string]struct{}),
		cancel:     cancel,
		ctx:        ctx,
		connClosed: make(chan struct{}),
	}
}

func recvEvent(t *testing.T, c *Client) event.Envelope {
	t.Helper()
	select {
	case env := <-c.egress:
		return env
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return event.Envelope{}
	}
}

func assertNoEvent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case env := <-c.egress:
		t.Fatalf("unexpected event %q", env.Event)
	default:
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition never became true")
}

func containsClient(clients []*Client, c *Client) bool {
	for _, m := range clients {
		if m.ID == c.ID {
			return true
		}
	}
	return false
}
