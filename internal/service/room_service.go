package service

import (
	"crypto/rand"
	"fmt"
	"log"
	"sort"
	"sync"

	"codeduel/internal/model"
	"codeduel/internal/protocol"

	"github.com/google/uuid"
)

const (
	codeAlphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	maxCodeAttempts = 10

	// largest multiple of len(codeAlphabet) that fits in a byte
	codeByteLimit = 256 - 256%len(codeAlphabet)
)

// RoomOptions are the registry limits taken from config
type RoomOptions struct {
	MaxPlayers int
	CodeLength int
	MaxHealth  int
}

// RoomService is the authoritative in-memory registry of rooms and players.
//
// Lock order: a room's mutex may be held while taking mu, never the reverse.
type RoomService struct {
	opts RoomOptions

	mu      sync.RWMutex
	rooms   map[string]*Room
	players map[string]*Player

	rotation *RotationService
	codeGen  func(n int) (string, error)
}

// NewRoomService creates an empty registry
func NewRoomService(opts RoomOptions) *RoomService {
	return &RoomService{
		opts:    opts,
		rooms:   make(map[string]*Room),
		players: make(map[string]*Player),
		codeGen: generateRoomCode,
	}
}

// SetRotation wires the rotation controller started by StartGame
func (s *RoomService) SetRotation(r *RotationService) {
	s.rotation = r
}

// CreateRoom registers a new room hosted by the given player and replies
// roomCreated on conn.
func (s *RoomService) CreateRoom(conn Conn, playerID, playerName string) (*Room, error) {
	host := &Player{
		ID:     playerID,
		Name:   playerName,
		Conn:   conn,
		Health: s.opts.MaxHealth,
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := s.codeGen(s.opts.CodeLength)
		if err != nil {
			return nil, fmt.Errorf("failed to generate room code: %w", err)
		}

		room := newRoom(code, uuid.NewString(), host)
		host.RoomCode = code

		inserted, err := s.insertRoom(room, host)
		if err != nil {
			return nil, err
		}
		if !inserted {
			log.Printf("[Room] Code collision on %s, retrying", code)
			continue
		}

		log.Printf("[Room] Room %s created by %s (%s). GameID: %s", code, playerName, playerID, room.GameID)
		sendTo(conn, protocol.RoomCreated(code, playerID, playerName, room.GameID, playerID))
		return room, nil
	}

	return nil, fmt.Errorf("%w: no free room code after %d attempts", ErrRegistryRace, maxCodeAttempts)
}

// insertRoom adds room and its host in one step. It reports false on a code collision.
func (s *RoomService) insertRoom(room *Room, host *Player) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.players[host.ID]; ok {
		return false, fmt.Errorf("%w: player %s already registered", ErrRegistryRace, host.ID)
	}
	if _, ok := s.rooms[room.Code]; ok {
		return false, nil
	}
	s.rooms[room.Code] = room
	s.players[host.ID] = host
	return true, nil
}

// JoinRoom adds a player to an existing room. On success the joiner receives
// joinSuccess and the other members playerJoinedLobby.
func (s *RoomService) JoinRoom(conn Conn, playerID, playerName, roomCode string) (*Room, error) {
	room := s.Room(roomCode)
	if room == nil {
		return nil, ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.closed {
		return nil, ErrRoomNotFound
	}
	if len(room.members) >= s.opts.MaxPlayers {
		return nil, ErrRoomFull
	}
	if room.hasIdentity(playerID, playerName) {
		return nil, ErrDuplicateIdentity
	}

	p := &Player{
		ID:       playerID,
		Name:     playerName,
		Conn:     conn,
		RoomCode: room.Code,
		Health:   s.opts.MaxHealth,
	}
	room.members = append(room.members, p)

	s.mu.Lock()
	if _, exists := s.players[playerID]; exists {
		s.mu.Unlock()
		room.removeMember(playerID)
		log.Printf("[Room] ERROR: Failed to add player %s to global player list for room %s", playerID, room.Code)
		return nil, fmt.Errorf("%w: player %s already registered", ErrRegistryRace, playerID)
	}
	s.players[playerID] = p
	s.mu.Unlock()

	log.Printf("[Room] Player %s (%s) joined room %s. GameID: %s", playerName, playerID, room.Code, room.GameID)

	sendTo(conn, protocol.JoinSuccess(room.Code, playerID, playerName, room.GameID, room.HostID, room.roster(playerID)))
	room.broadcast(protocol.PlayerJoinedLobby(playerID, playerName), playerID)

	if room.state == model.RoomStateInProgress && s.rotation != nil {
		s.rotation.catchUp(room, p)
	}
	return room, nil
}

// StartGame moves the requesting host's room to InProgress and starts the rotation
func (s *RoomService) StartGame(playerID string) error {
	player, room := s.lookup(playerID)
	if player == nil {
		log.Printf("[Room] StartGame: player %s not found", playerID)
		return ErrPlayerNotFound
	}
	if room == nil {
		log.Printf("[Room] StartGame: room %s not found for player %s", player.RoomCode, playerID)
		return ErrRoomNotFound
	}

	room.mu.Lock()
	if room.closed {
		room.mu.Unlock()
		return ErrRoomNotFound
	}
	if room.HostID != playerID {
		room.mu.Unlock()
		return ErrNotHost
	}
	if room.state != model.RoomStateLobby {
		state := room.state
		room.mu.Unlock()
		return &StateError{State: state}
	}
	room.state = model.RoomStateInProgress
	room.broadcast(protocol.GameStarted(room.roster("")), "")
	room.mu.Unlock()

	log.Printf("[Room] Game started in room %s by host %s", room.Code, playerID)

	if s.rotation != nil {
		s.rotation.StartRotation(room.Code)
	}
	return nil
}

// PlayerDisconnected removes a player from the registry and its room. It is
// safe to call more than once and for players that never joined a room.
func (s *RoomService) PlayerDisconnected(playerID string) {
	s.mu.Lock()
	player, ok := s.players[playerID]
	if ok {
		delete(s.players, playerID)
	}
	var room *Room
	if ok {
		room = s.rooms[player.RoomCode]
	}
	s.mu.Unlock()

	if !ok {
		return
	}
	log.Printf("[Room] Player %s (%s) disconnected", player.Name, playerID)
	if room == nil {
		return
	}

	room.mu.Lock()
	if !room.removeMember(playerID) {
		room.mu.Unlock()
		return
	}
	room.broadcast(protocol.PlayerLeftLobby(playerID, player.Name), "")
	empty := len(room.members) == 0
	if empty {
		room.closed = true
		room.stopTimer()
	}
	room.mu.Unlock()

	if empty {
		s.mu.Lock()
		if s.rooms[room.Code] == room {
			delete(s.rooms, room.Code)
		}
		s.mu.Unlock()
		log.Printf("[Room] Room %s is empty and has been removed", room.Code)
	}
}

// Broadcast sends msg to every member of the room except exclude
func (s *RoomService) Broadcast(roomCode string, msg protocol.Outbound, exclude string) {
	room := s.Room(roomCode)
	if room == nil {
		return
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	room.broadcast(msg, exclude)
}

// Room returns the live room with the given code, or nil
func (s *RoomService) Room(code string) *Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rooms[code]
}

// Rooms returns summaries of every live room, oldest first
func (s *RoomService) Rooms() []model.RoomSummary {
	s.mu.RLock()
	rooms := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		rooms = append(rooms, r)
	}
	s.mu.RUnlock()

	summaries := make([]model.RoomSummary, 0, len(rooms))
	for _, r := range rooms {
		summaries = append(summaries, r.summary())
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.Before(summaries[j].CreatedAt)
	})
	return summaries
}

// RoomCount returns the number of live rooms
func (s *RoomService) RoomCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// Shutdown cancels every pending rotation timer
func (s *RoomService) Shutdown() {
	s.mu.RLock()
	rooms := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		rooms = append(rooms, r)
	}
	s.mu.RUnlock()

	for _, r := range rooms {
		r.mu.Lock()
		r.closed = true
		r.stopTimer()
		r.mu.Unlock()
	}
	log.Printf("[Room] Stopped rotation in %d rooms", len(rooms))
}

// lookup resolves a player and the room it belongs to
func (s *RoomService) lookup(playerID string) (*Player, *Room) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[playerID]
	if !ok {
		return nil, nil
	}
	return p, s.rooms[p.RoomCode]
}

// generateRoomCode creates an n-char code over A-Z0-9
func generateRoomCode(n int) (string, error) {
	code := make([]byte, 0, n)
	buf := make([]byte, n)
	for len(code) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		code = appendCodeChars(code, buf, n)
	}
	return string(code), nil
}

// appendCodeChars maps random bytes onto codeAlphabet until code holds n chars.
// Bytes at or above codeByteLimit are discarded so every symbol is equally likely.
func appendCodeChars(code, random []byte, n int) []byte {
	for _, b := range random {
		if len(code) == n {
			break
		}
		if int(b) >= codeByteLimit {
			continue
		}
		code = append(code, codeAlphabet[int(b)%len(codeAlphabet)])
	}
	return code
}
