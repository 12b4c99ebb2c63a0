package ws

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"codeduel/internal/model"
	"codeduel/internal/protocol"
	"codeduel/internal/service"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 256
	judgeTimeout   = 2 * time.Minute
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// Connection is one client socket. It implements service.Conn.
type Connection struct {
	PlayerID string

	send    chan []byte
	mu      sync.Mutex
	closed  bool
	judging atomic.Bool
}

func newConnection(playerID string) *Connection {
	return &Connection{
		PlayerID: playerID,
		send:     make(chan []byte, sendBuffer),
	}
}

// Send queues a frame without blocking. Frames for a closed connection or a
// full queue are dropped.
func (c *Connection) Send(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		log.Printf("[WS] Send buffer full for %s, dropping frame", c.PlayerID)
		return false
	}
}

// Close closes the send queue. It is safe to call more than once.
func (c *Connection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Connection) reply(msg protocol.Outbound) {
	data, err := msg.Marshal()
	if err != nil {
		log.Printf("[WS] ERROR: %v", err)
		return
	}
	c.Send(data)
}

// Handler handles WebSocket connections
type Handler struct {
	hub      *Hub
	rooms    *service.RoomService
	rotation *service.RotationService
	cards    *service.CardService
	verbose  bool
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, rooms *service.RoomService, rotation *service.RotationService, cards *service.CardService, verbose bool) *Handler {
	return &Handler{
		hub:      hub,
		rooms:    rooms,
		rotation: rotation,
		cards:    cards,
		verbose:  verbose,
	}
}

func (h *Handler) logf(format string, args ...any) {
	if !h.verbose {
		return
	}
	log.Printf("[WS] "+format, args...)
}

// ServeWS handles GET /ws
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	conn := newConnection(uuid.NewString())
	h.hub.Register(conn)
	log.Printf("[WS] Player %s connected from %s", conn.PlayerID, r.RemoteAddr)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[WS] PANIC for %s: %v", conn.PlayerID, rec)
		}
		h.rooms.PlayerDisconnected(conn.PlayerID)
		h.hub.Unregister(conn)
		log.Printf("[WS] Connection closed for player %s", conn.PlayerID)
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] Read error for %s: %v", conn.PlayerID, err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			h.logf("Ignoring non-text frame from %s", conn.PlayerID)
			continue
		}

		h.logf("Received from %s: %s", conn.PlayerID, data)
		msg, err := protocol.Decode(data)
		if err != nil {
			log.Printf("[WS] Bad message from %s: %v", conn.PlayerID, err)
			continue
		}
		h.dispatch(conn, msg)
	}
}

func (h *Handler) dispatch(conn *Connection, msg protocol.Inbound) {
	switch m := msg.(type) {
	case protocol.CreateRoom:
		name := strings.TrimSpace(m.PlayerName)
		if name == "" {
			conn.reply(protocol.JoinFailed("Player name is required.", service.CodeInvalidRequest))
			return
		}
		if _, err := h.rooms.CreateRoom(conn, conn.PlayerID, name); err != nil {
			log.Printf("[WS] createRoom failed for %s: %v", conn.PlayerID, err)
			conn.reply(failure(err, true))
		}

	case protocol.JoinRoom:
		name := strings.TrimSpace(m.PlayerName)
		code := strings.ToUpper(strings.TrimSpace(m.RoomCode))
		if name == "" || code == "" {
			conn.reply(protocol.JoinFailed("Player name and room code are required.", service.CodeInvalidRequest))
			return
		}
		if _, err := h.rooms.JoinRoom(conn, conn.PlayerID, name, code); err != nil {
			h.logf("joinRoom %s failed for %s: %v", code, conn.PlayerID, err)
			conn.reply(failure(err, false))
		}

	case protocol.StartGame:
		if err := h.rooms.StartGame(conn.PlayerID); err != nil {
			h.logf("startGame failed for %s: %v", conn.PlayerID, err)
			conn.reply(failure(err, false))
		}

	case protocol.UseCard:
		if m.PlayerID != "" && m.PlayerID != conn.PlayerID {
			h.logf("useCard from %s claims actor %s, using connection identity", conn.PlayerID, m.PlayerID)
		}
		if err := h.cards.UseCard(conn.PlayerID, m.CardName, m.TargetPlayerID); err != nil {
			log.Printf("[WS] useCard %s from %s rejected: %v", m.CardName, conn.PlayerID, err)
		}

	case protocol.ProblemSolved:
		if err := h.rotation.PlayerSolved(conn.PlayerID, m.Round); err != nil {
			log.Printf("[WS] problemSolved from %s rejected: %v", conn.PlayerID, err)
		}

	case protocol.SubmitSolution:
		h.submit(conn, m)

	case protocol.Unrecognized:
		log.Printf("[WS] Unknown message type from %s: %s", conn.PlayerID, m.Type)
	}
}

// submit judges off the read loop; one submission per connection is in flight at a time
func (h *Handler) submit(conn *Connection, m protocol.SubmitSolution) {
	if !conn.judging.CompareAndSwap(false, true) {
		conn.reply(protocol.SubmissionResult(rejected(model.VerdictRejected, "A submission is already being judged.")))
		return
	}

	go func() {
		defer conn.judging.Store(false)

		ctx, cancel := context.WithTimeout(context.Background(), judgeTimeout)
		defer cancel()

		result, err := h.rotation.SubmitSolution(ctx, conn.PlayerID, m.SourceCode, m.LanguageID)
		switch {
		case errors.Is(err, service.ErrSubmissionBlocked):
			conn.reply(protocol.SubmissionResult(rejected(model.VerdictBlocked, "Submissions are blocked by a compiler attack.")))
		case err != nil && result == nil:
			log.Printf("[WS] submitSolution from %s rejected: %v", conn.PlayerID, err)
			conn.reply(protocol.SubmissionResult(rejected(model.VerdictRejected, err.Error())))
		default:
			if err != nil {
				log.Printf("[WS] submitSolution from %s judged but not recorded: %v", conn.PlayerID, err)
			}
			conn.reply(protocol.SubmissionResult(result))
		}
	}()
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "Connection closed by server"))
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func failure(err error, create bool) protocol.Outbound {
	reason, code := service.FailureReply(err, create)
	return protocol.JoinFailed(reason, code)
}

func rejected(status, message string) *model.SubmissionResult {
	return &model.SubmissionResult{
		Results:       []model.CaseResult{},
		OverallStatus: status,
		ErrorOutput:   message,
	}
}
