package event

import "encoding/json"

// Envelope is the wire frame for every WebSocket message in both
// directions: an event name plus a JSON payload whose shape depends on
// the name. Inbound payloads are decoded by the hub's event switch;
// outbound payloads are marshalled by Outbound.
type Envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Outbound builds an envelope for sending. Payloads are our own structs,
// so a marshal failure would be a programming error; it degrades to an
// envelope with an empty payload rather than dropping the event name.
func Outbound(name string, payload any) Envelope {
	raw, _ := json.Marshal(payload)
	return Envelope{Event: name, Payload: raw}
}
