package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Inbound message types
const (
	TypeCreateRoom     = "createRoom"
	TypeJoinRoom       = "joinRoom"
	TypeStartGame      = "startGame"
	TypeUseCard        = "useCard"
	TypeProblemSolved  = "problemSolved"
	TypeSubmitSolution = "submitSolution"
)

// Inbound is implemented by every decoded client message. The set is closed:
// only the types in this file satisfy it.
type Inbound interface {
	inboundType() string
}

// CreateRoom asks for a new room hosted by the sender
type CreateRoom struct {
	PlayerName string `json:"playerName"`
}

// JoinRoom asks to enter an existing lobby
type JoinRoom struct {
	PlayerName string `json:"playerName"`
	RoomCode   string `json:"roomCode"`
}

// StartGame is sent by the host to leave the lobby
type StartGame struct{}

// UseCard plays a power-up against a target
type UseCard struct {
	CardName       string `json:"cardName"`
	PlayerID       string `json:"playerId"`
	TargetPlayerID string `json:"targetPlayerId"`
}

// ProblemSolved reports a solve checked on the client. Round 0 means the current round.
type ProblemSolved struct {
	Round int `json:"round"`
}

// SubmitSolution asks the server to judge source code against the current problem
type SubmitSolution struct {
	SourceCode string `json:"sourceCode"`
	LanguageID int    `json:"languageId"`
}

// Unrecognized carries a well-formed envelope whose type is not part of the protocol
type Unrecognized struct {
	Type    string
	Payload json.RawMessage
}

func (CreateRoom) inboundType() string     { return TypeCreateRoom }
func (JoinRoom) inboundType() string       { return TypeJoinRoom }
func (StartGame) inboundType() string      { return TypeStartGame }
func (UseCard) inboundType() string        { return TypeUseCard }
func (ProblemSolved) inboundType() string  { return TypeProblemSolved }
func (SubmitSolution) inboundType() string { return TypeSubmitSolution }
func (u Unrecognized) inboundType() string { return u.Type }

// TypeOf returns the discriminator of a decoded message
func TypeOf(msg Inbound) string {
	return msg.inboundType()
}

// Decode parses one frame into its typed message. Unknown discriminators decode
// to Unrecognized rather than failing, so callers can log protocol drift.
func Decode(data []byte) (Inbound, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrMalformed)
	}

	switch env.Type {
	case TypeCreateRoom:
		var m CreateRoom
		if err := decodePayload(env, &m); err != nil {
			return nil, err
		}
		return m, nil
	case TypeJoinRoom:
		var m JoinRoom
		if err := decodePayload(env, &m); err != nil {
			return nil, err
		}
		return m, nil
	case TypeStartGame:
		return StartGame{}, nil
	case TypeUseCard:
		var m UseCard
		if err := decodePayload(env, &m); err != nil {
			return nil, err
		}
		return m, nil
	case TypeProblemSolved:
		var m ProblemSolved
		if err := decodePayload(env, &m); err != nil {
			return nil, err
		}
		return m, nil
	case TypeSubmitSolution:
		var m SubmitSolution
		if err := decodePayload(env, &m); err != nil {
			return nil, err
		}
		return m, nil
	default:
		return Unrecognized{Type: env.Type, Payload: env.Payload}, nil
	}
}

func decodePayload(env Envelope, dst any) error {
	payload := bytes.TrimSpace(env.Payload)
	if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		return fmt.Errorf("%w: %s payload: %v", ErrMalformed, env.Type, err)
	}
	return nil
}
