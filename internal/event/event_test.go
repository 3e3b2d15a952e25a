package event

import (
	"encoding/json"
	"testing"
)

func TestOutbound(t *testing.T) {
	env := Outbound(EventJoinedChat, JoinChatPayload{ChatID: 5})
	if env.Event != EventJoinedChat {
		t.Errorf("event = %q, want %q", env.Event, EventJoinedChat)
	}

	var p JoinChatPayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if p.ChatID != 5 {
		t.Errorf("chatId = %d, want 5", p.ChatID)
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	env := Outbound(EventMessageReadStatus, ReadStatusPayload{MessageID: 9, UserID: 42, Status: "read"})

	raw, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}

	var decoded Envelope
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if decoded.Event != EventMessageReadStatus {
		t.Errorf("event = %q, want %q", decoded.Event, EventMessageReadStatus)
	}

	var p ReadStatusPayload
	if err := json.Unmarshal(decoded.Payload, &p); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if p.UserID != 42 || p.Status != "read" {
		t.Errorf("payload = %+v", p)
	}
}
