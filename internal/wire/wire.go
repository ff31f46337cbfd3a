// Package wire defines the frames exchanged with clients. Inbound frames
// are an envelope of kind plus raw payload; outbound frames are typed
// events. Transport is someone else's problem.
package wire

import "encoding/json"

// Inbound message kinds. Anything else is ignored by the room.
const (
	KindMove     = "move"
	KindSelect   = "select"
	KindDeselect = "deselect"
	KindRestart  = "restart"
	KindReady    = "ready"
)

// Envelope is one inbound client frame.
type Envelope struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MovePayload accompanies a "move" frame.
type MovePayload struct {
	FromRow int `json:"fromRow"`
	FromCol int `json:"fromCol"`
	ToRow   int `json:"toRow"`
	ToCol   int `json:"toCol"`
}

// SelectPayload accompanies a "select" frame.
type SelectPayload struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// DecodeMove unmarshals a move payload.
func DecodeMove(raw json.RawMessage) (MovePayload, error) {
	var p MovePayload
	err := json.Unmarshal(raw, &p)
	return p, err
}

// DecodeSelect unmarshals a select payload.
func DecodeSelect(raw json.RawMessage) (SelectPayload, error) {
	var p SelectPayload
	err := json.Unmarshal(raw, &p)
	return p, err
}
