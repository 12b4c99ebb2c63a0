package service

import (
	"strings"
	"sync"
	"time"

	"codeduel/internal/model"
	"codeduel/internal/protocol"
)

// Player is a connected participant. Every field except ID, Name and Conn is
// guarded by the mutex of the room the player belongs to.
type Player struct {
	ID       string
	Name     string
	Conn     Conn
	RoomCode string

	Health       int
	Shield       int
	Blocking     bool
	BlockedUntil time.Time // submissions rejected before this instant
}

func (p *Player) info() model.PlayerInfo {
	return model.PlayerInfo{ID: p.ID, Name: p.Name}
}

type rotationPhase int

const (
	phaseIdle rotationPhase = iota
	phaseActive
	phaseAward
	phasePenalty
	phaseStalled
)

func (p rotationPhase) String() string {
	switch p {
	case phaseActive:
		return "active"
	case phaseAward:
		return "award"
	case phasePenalty:
		return "penalty"
	case phaseStalled:
		return "stalled"
	default:
		return "idle"
	}
}

// Room is a live game room. mu guards everything below it, including the
// mutable fields of its members.
type Room struct {
	Code      string
	GameID    string
	HostID    string
	CreatedAt time.Time

	mu      sync.Mutex
	members []*Player
	state   model.RoomState
	closed  bool // set once the room is removed from the registry

	// rotation
	round    int
	gen      uint64
	timer    *time.Timer
	phase    rotationPhase
	current  *model.Problem
	upcoming *model.Problem
}

func newRoom(code, gameID string, host *Player) *Room {
	return &Room{
		Code:      code,
		GameID:    gameID,
		HostID:    host.ID,
		CreatedAt: time.Now(),
		members:   []*Player{host},
		state:     model.RoomStateLobby,
	}
}

// member returns the member with the given id. Caller holds mu.
func (r *Room) member(playerID string) *Player {
	for _, p := range r.members {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// hasIdentity reports whether the id or the case-insensitive name is taken. Caller holds mu.
func (r *Room) hasIdentity(playerID, name string) bool {
	for _, p := range r.members {
		if p.ID == playerID || strings.EqualFold(p.Name, name) {
			return true
		}
	}
	return false
}

// removeMember drops a member and reports whether it was present. Caller holds mu.
func (r *Room) removeMember(playerID string) bool {
	for i, p := range r.members {
		if p.ID == playerID {
			r.members = append(r.members[:i], r.members[i+1:]...)
			return true
		}
	}
	return false
}

// roster returns the public view of every member except exclude. Caller holds mu.
func (r *Room) roster(exclude string) []model.PlayerInfo {
	infos := make([]model.PlayerInfo, 0, len(r.members))
	for _, p := range r.members {
		if p.ID != exclude {
			infos = append(infos, p.info())
		}
	}
	return infos
}

// broadcast sends msg to every member except exclude. Caller holds mu.
func (r *Room) broadcast(msg protocol.Outbound, exclude string) {
	data, err := msg.Marshal()
	if err != nil {
		return
	}
	for _, p := range r.members {
		if p.ID == exclude || p.Conn == nil {
			continue
		}
		p.Conn.Send(data)
	}
}

// stopTimer cancels the pending rotation timer and invalidates any callback
// already in flight. Caller holds mu.
func (r *Room) stopTimer() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.gen++
}

func (r *Room) summary() model.RoomSummary {
	r.mu.Lock()
	defer r.mu.Unlock()

	players := make([]model.PlayerStatus, 0, len(r.members))
	for _, p := range r.members {
		players = append(players, model.PlayerStatus{PlayerInfo: p.info(), HP: p.Health})
	}
	return model.RoomSummary{
		Code:         r.Code,
		GameID:       r.GameID,
		HostPlayerID: r.HostID,
		State:        r.state,
		Round:        r.round,
		Players:      players,
		CreatedAt:    r.CreatedAt,
	}
}
