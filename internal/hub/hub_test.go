package hub

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"Chatline/internal/auth"
	"Chatline/internal/event"
	"Chatline/internal/model"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

func TestAddClientRegistersAndAcks(t *testing.T) {
	h := newTestHub(t)
	c := newTestClient(h, 42)

	h.addClient(c)

	if !h.presence.IsOnline(42) {
		t.Fatal("user 42 should be online after admission")
	}
	if !containsClient(h.rooms.MembersOf(UserRoom(42)), c) {
		t.Fatal("connection should be auto-joined to its personal room")
	}

	env := recvEvent(t, c)
	if env.Event != event.EventConnectionReady {
		t.Fatalf("event = %q, want %q", env.Event, event.EventConnectionReady)
	}
	var p event.ConnectionReadyPayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.UserID != 42 || p.ConnID != c.ID {
		t.Errorf("payload = %+v", p)
	}
}

func TestAddClientWithoutIdentityIsForceClosed(t *testing.T) {
	h := newTestHub(t)
	c := newTestClient(h, 0)

	h.addClient(c)

	if !c.IsClosed() {
		t.Fatal("connection without a bound identity must be force-closed")
	}
	if h.presence.OnlineCount() != 0 {
		t.Error("presence must not record the rejected connection")
	}
	if len(c.Rooms()) != 0 {
		t.Error("rejected connection must never appear in any room")
	}
}

func TestRemoveClientConvergesCleanup(t *testing.T) {
	h := newTestHub(t)
	c := newTestClient(h, 42)
	h.addClient(c)
	recvEvent(t, c) // connection:ready

	h.rooms.Join(c, ChatRoom(10))
	h.rooms.Join(c, ChatRoom(11))

	h.removeClient(c)

	if h.presence.IsOnline(42) {
		t.Error("user should be offline after last connection is removed")
	}
	for _, room := range []string{ChatRoom(10), ChatRoom(11), UserRoom(42)} {
		if containsClient(h.rooms.MembersOf(room), c) {
			t.Errorf("connection still member of %s after removal", room)
		}
	}
	if !c.IsClosed() {
		t.Error("client must be closed")
	}
}

func TestSecondTabKeepsUserOnline(t *testing.T) {
	h := newTestHub(t)
	a := newTestClient(h, 1)
	b := newTestClient(h, 1)
	h.addClient(a)
	h.addClient(b)

	h.removeClient(a)
	if !h.presence.IsOnline(1) {
		t.Fatal("user must stay online while a second connection lives")
	}

	h.removeClient(b)
	if h.presence.IsOnline(1) {
		t.Fatal("user must go offline with the last connection")
	}
}

func TestHandleJoinLeaveChat(t *testing.T) {
	h := newTestHub(t)
	c := newTestClient(h, 42)
	h.addClient(c)
	recvEvent(t, c) // connection:ready

	h.handleEvent(inboundEnvelope(t, event.EventJoinChat, event.JoinChatPayload{ChatID: 5}), c)
	if !containsClient(h.rooms.MembersOf(ChatRoom(5)), c) {
		t.Fatal("join:chat must subscribe the connection")
	}
	ack := recvEvent(t, c)
	if ack.Event != event.EventJoinedChat {
		t.Fatalf("ack = %q, want joined:chat", ack.Event)
	}

	h.handleEvent(inboundEnvelope(t, event.EventLeaveChat, event.JoinChatPayload{ChatID: 5}), c)
	if containsClient(h.rooms.MembersOf(ChatRoom(5)), c) {
		t.Fatal("leave:chat must unsubscribe the connection")
	}
	ack = recvEvent(t, c)
	if ack.Event != event.EventLeftChat {
		t.Fatalf("ack = %q, want left:chat", ack.Event)
	}
}

func TestHandleBulkJoin(t *testing.T) {
	h := newTestHub(t)
	c := newTestClient(h, 42)
	h.addClient(c)
	recvEvent(t, c)

	h.handleEvent(inboundEnvelope(t, event.EventJoinChats, event.JoinChatsPayload{ChatIDs: []int64{10, 11}}), c)

	for _, chatID := range []int64{10, 11} {
		if !containsClient(h.rooms.MembersOf(ChatRoom(chatID)), c) {
			t.Errorf("connection missing from chat:%d", chatID)
		}
	}
	ack := recvEvent(t, c)
	if ack.Event != event.EventJoinedChats {
		t.Fatalf("ack = %q, want joined:chats", ack.Event)
	}
	var p event.JoinChatsPayload
	if err := json.Unmarshal(ack.Payload, &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(p.ChatIDs) != 2 {
		t.Errorf("ack chatIds = %v", p.ChatIDs)
	}
}

func TestTypingBroadcastExcludesSender(t *testing.T) {
	h := newTestHub(t)
	sender := newTestClient(h, 1)
	peer := newTestClient(h, 2)
	h.addClient(sender)
	h.addClient(peer)
	recvEvent(t, sender)
	recvEvent(t, peer)

	h.rooms.Join(sender, ChatRoom(5))
	h.rooms.Join(peer, ChatRoom(5))

	h.handleEvent(inboundEnvelope(t, event.EventTypingStart, event.TypingPayload{ChatID: 5}), sender)

	env := recvEvent(t, peer)
	if env.Event != event.EventUserTyping {
		t.Fatalf("event = %q, want user:typing", env.Event)
	}
	var p event.UserTypingPayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.UserID != 1 || p.ChatID != 5 {
		t.Errorf("payload = %+v", p)
	}
	assertNoEvent(t, sender)

	h.handleEvent(inboundEnvelope(t, event.EventTypingStop, event.TypingPayload{ChatID: 5}), sender)
	env = recvEvent(t, peer)
	if env.Event != event.EventUserStoppedTyping {
		t.Fatalf("event = %q, want user:stopped-typing", env.Event)
	}
}

func TestMessageReadBroadcast(t *testing.T) {
	h := newTestHub(t)
	reader := newTestClient(h, 1)
	peer := newTestClient(h, 2)
	h.addClient(reader)
	h.addClient(peer)
	recvEvent(t, reader)
	recvEvent(t, peer)

	h.rooms.Join(reader, ChatRoom(5))
	h.rooms.Join(peer, ChatRoom(5))

	h.handleEvent(inboundEnvelope(t, event.EventMessageRead, event.MessageReadPayload{MessageID: 9, ChatID: 5}), reader)

	env := recvEvent(t, peer)
	if env.Event != event.EventMessageReadStatus {
		t.Fatalf("event = %q, want message:read-status", env.Event)
	}
	var p event.ReadStatusPayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.MessageID != 9 || p.UserID != 1 || p.Status != "read" {
		t.Errorf("payload = %+v", p)
	}
	assertNoEvent(t, reader)
}

func TestMalformedPayloadDropsEventNotConnection(t *testing.T) {
	h := newTestHub(t)
	c := newTestClient(h, 42)
	h.addClient(c)
	recvEvent(t, c)

	h.handleEvent(event.Envelope{Event: event.EventJoinChat, Payload: []byte(`{"chatId":"not-a-number"}`)}, c)

	if c.IsClosed() {
		t.Fatal("a malformed payload must not close the connection")
	}
	assertNoEvent(t, c)
}

func inboundEnvelope(t *testing.T, name string, payload any) event.Envelope {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return event.Envelope{Event: name, Payload: raw}
}

// TestWebSocketLifecycle drives the full path over a real transport:
// refused handshake without a token, admission with one, bulk rejoin,
// live fan-out, and offline transition on disconnect.
func TestWebSocketLifecycle(t *testing.T) {
	verifier, err := auth.NewVerifier("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	h := NewHub(verifier, []string{"*"}, zap.NewNop())
	t.Cleanup(h.Stop)
	d := NewDispatcher(h, zap.NewNop())

	srv := httptest.NewServer(http.HandlerFunc(h.ServeWS))
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	// Missing token: handshake refused, never admitted.
	if _, resp, err := websocket.DefaultDialer.Dial(wsURL, nil); err == nil {
		t.Fatal("dial without token must fail")
	} else if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 refusal, got %+v", resp)
	}

	token, err := verifier.Sign(42)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?token="+token, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	env := readEnvelope(t, conn)
	if env.Event != event.EventConnectionReady {
		t.Fatalf("first event = %q, want connection:ready", env.Event)
	}

	// Membership never survives a reconnect, so the client resubscribes.
	writeEnvelope(t, conn, inboundEnvelope(t, event.EventJoinChats, event.JoinChatsPayload{ChatIDs: []int64{10, 11}}))
	env = readEnvelope(t, conn)
	if env.Event != event.EventJoinedChats {
		t.Fatalf("event = %q, want joined:chats", env.Event)
	}

	d.EmitNewMessage(10, &model.Message{MessageID: 99, ChatID: 10, SenderID: 7, Content: "hello"})
	env = readEnvelope(t, conn)
	if env.Event != event.EventMessageNew {
		t.Fatalf("event = %q, want message:new", env.Event)
	}
	var msg model.Message
	if err := json.Unmarshal(env.Payload, &msg); err != nil {
		t.Fatalf("unmarshal message: %v", err)
	}
	if msg.MessageID != 99 {
		t.Errorf("message id = %d, want 99", msg.MessageID)
	}

	conn.Close()
	waitFor(t, 2*time.Second, func() bool { return !h.Presence().IsOnline(42) })

	// A further emit hits nobody and must still complete quietly.
	d.EmitNewMessage(10, &model.Message{MessageID: 100, ChatID: 10, SenderID: 7, Content: "anyone?"})
	if got := len(h.Rooms().MembersOf(ChatRoom(10))); got != 0 {
		t.Errorf("chat:10 members = %d, want 0", got)
	}
}

func readEnvelope(t *testing.T, conn *websocket.Conn) event.Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env event.Envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read envelope: %v", err)
	}
	return env
}

func writeEnvelope(t *testing.T, conn *websocket.Conn, env event.Envelope) {
	t.Helper()
	if err := conn.WriteJSON(env); err != nil {
		t.Fatalf("write envelope: %v", err)
	}
}
