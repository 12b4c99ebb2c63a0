package service

import (
	"log"

	"codeduel/internal/protocol"
)

// Conn is the outbound side of a client connection (implemented by ws.Connection).
// Send must not block: it reports false when the frame was dropped because the
// connection is closed or its buffer is full.
type Conn interface {
	Send(data []byte) bool
}

// sendTo encodes msg and pushes it to one connection
func sendTo(conn Conn, msg protocol.Outbound) {
	if conn == nil {
		return
	}
	data, err := msg.Marshal()
	if err != nil {
		log.Printf("[Room] ERROR: %v", err)
		return
	}
	conn.Send(data)
}
