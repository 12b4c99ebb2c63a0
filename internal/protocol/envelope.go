// Package protocol defines the JSON envelope exchanged over the game websocket.
//
// Every frame, in both directions, is an object of the form
//
//	{"type": "<discriminator>", "payload": {...}}
//
// Inbound frames decode into a closed set of message types (see Decode);
// outbound frames are built with the constructors in outbound.go.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformed is returned when a frame is not a valid envelope or its payload
// does not match the shape its type requires.
var ErrMalformed = errors.New("malformed message")

// Envelope is the raw wire format of an inbound frame
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Outbound is a server -> client frame
type Outbound struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Marshal encodes the frame for the wire
func (o Outbound) Marshal() ([]byte, error) {
	data, err := json.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", o.Type, err)
	}
	return data, nil
}
