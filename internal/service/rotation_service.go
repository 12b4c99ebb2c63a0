package service

import (
	"context"
	"errors"
	"log"
	"time"

	"codeduel/internal/model"
	"codeduel/internal/protocol"
)

const fetchTimeout = 5 * time.Second

// RotationOptions are the rotation timings taken from config
type RotationOptions struct {
	Deadline           time.Duration
	TimeoutPenalty     int
	TimeoutResumeDelay time.Duration
	SolveResumeDelay   time.Duration
}

// Scoreboard records accepted solves (implemented by cache.LeaderboardCache)
type Scoreboard interface {
	IncrSolves(ctx context.Context, gameID, playerID, playerName string) error
}

// RotationService drives the per-room problem cycle:
//
//	active --solve--> award --delay--> active (next round)
//	active --deadline--> penalty --delay--> active (next round)
//
// Every armed timer carries the room generation it was armed under; a callback
// whose generation no longer matches is stale and does nothing.
type RotationService struct {
	rooms      *RoomService
	problems   ProblemSource
	catalog    *Catalog
	rng        RandSource
	opts       RotationOptions
	scoreboard Scoreboard
	judge      *JudgeService
}

// NewRotationService creates a rotation controller and wires it into rooms
func NewRotationService(rooms *RoomService, problems ProblemSource, catalog *Catalog, rng RandSource, opts RotationOptions) *RotationService {
	if rng == nil {
		rng = DefaultRand
	}
	s := &RotationService{
		rooms:    rooms,
		problems: problems,
		catalog:  catalog,
		rng:      rng,
		opts:     opts,
	}
	rooms.SetRotation(s)
	return s
}

// SetScoreboard enables solve tracking
func (s *RotationService) SetScoreboard(sb Scoreboard) {
	s.scoreboard = sb
}

// SetJudge enables server-side judging of submitted solutions
func (s *RotationService) SetJudge(j *JudgeService) {
	s.judge = j
}

// StartRotation issues the next problem to a room and arms its deadline. With
// no problem available the room stalls until the rotation is started again.
func (s *RotationService) StartRotation(roomCode string) {
	room := s.rooms.Room(roomCode)
	if room == nil {
		return
	}

	room.mu.Lock()
	if room.closed || room.state != model.RoomStateInProgress {
		room.mu.Unlock()
		return
	}
	room.stopTimer()
	gen := room.gen
	next := room.upcoming
	room.upcoming = nil
	room.mu.Unlock()

	if next == nil {
		next = s.fetch(roomCode)
	}
	var upcoming *model.Problem
	if next != nil {
		upcoming = s.fetch(roomCode)
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.closed || room.gen != gen {
		return
	}
	if next == nil {
		room.phase = phaseStalled
		room.current = nil
		log.Printf("[Rotation] No problem available for room %s, rotation stalled", roomCode)
		return
	}

	room.round++
	room.current = next
	room.upcoming = upcoming
	room.phase = phaseActive
	room.broadcast(protocol.NewProblem(*next, room.round, s.deadlineSeconds()), "")
	room.timer = time.AfterFunc(s.opts.Deadline, func() {
		s.handleTimeout(roomCode, gen)
	})
	log.Printf("[Rotation] Room %s round %d: %q (deadline %s)", roomCode, room.round, next.Title, s.opts.Deadline)
}

// handleTimeout applies the deadline penalty to every member of the room
func (s *RotationService) handleTimeout(roomCode string, gen uint64) {
	room := s.rooms.Room(roomCode)
	if room == nil {
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.closed || room.gen != gen || room.phase != phaseActive {
		return
	}
	room.timer = nil
	room.phase = phasePenalty

	log.Printf("[Rotation] Room %s round %d timed out", roomCode, room.round)
	room.broadcast(protocol.ProblemTimeout(room.round, s.opts.TimeoutPenalty), "")
	for _, p := range room.members {
		p.Health = max(0, p.Health-s.opts.TimeoutPenalty)
		room.broadcast(protocol.PlayerHpUpdate(p.ID, p.Health), "")
	}

	s.armResume(room, s.opts.TimeoutResumeDelay)
}

// PlayerSolved closes the active round in favour of playerID and awards a card.
// round 0 means the current round; a solve for any other round, or one that
// arrives after the round closed, is ignored.
func (s *RotationService) PlayerSolved(playerID string, round int) error {
	player, room := s.rooms.lookup(playerID)
	if player == nil {
		return ErrPlayerNotFound
	}
	if room == nil {
		return ErrRoomNotFound
	}

	room.mu.Lock()
	if room.closed {
		room.mu.Unlock()
		return ErrRoomNotFound
	}
	if room.phase != phaseActive || (round != 0 && round != room.round) {
		room.mu.Unlock()
		log.Printf("[Rotation] Late solve from %s in room %s ignored", playerID, room.Code)
		return nil
	}

	room.stopTimer()
	room.phase = phaseAward
	solvedRound := room.round
	card := s.catalog.Draw(s.rng)

	room.broadcast(protocol.ProblemSolvedBy(player.ID, player.Name, solvedRound), "")
	sendTo(player.Conn, protocol.CardAwarded(card))
	s.armResume(room, s.opts.SolveResumeDelay)
	gameID := room.GameID
	room.mu.Unlock()

	log.Printf("[Rotation] %s solved round %d in room %s, awarded %s (%s)", player.Name, solvedRound, room.Code, card.Name, card.Rarity)

	if s.scoreboard != nil {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		if err := s.scoreboard.IncrSolves(ctx, gameID, player.ID, player.Name); err != nil {
			log.Printf("[Rotation] WARNING: failed to record solve: %v", err)
		}
	}
	return nil
}

// CurrentProblem returns the active problem of the player's room and its round.
// It fails when no round is active or the player is locked out of submitting.
func (s *RotationService) CurrentProblem(playerID string) (*model.Problem, int, error) {
	player, room := s.rooms.lookup(playerID)
	if player == nil {
		return nil, 0, ErrPlayerNotFound
	}
	if room == nil {
		return nil, 0, ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.phase != phaseActive || room.current == nil {
		return nil, 0, ErrNoProblem
	}
	if time.Now().Before(player.BlockedUntil) {
		return nil, 0, ErrSubmissionBlocked
	}
	p := *room.current
	return &p, room.round, nil
}

// SubmitSolution judges source against the active problem of the player's room.
// A submission that passes every case solves the round it was judged for.
func (s *RotationService) SubmitSolution(ctx context.Context, playerID, source string, languageID int) (*model.SubmissionResult, error) {
	if s.judge == nil {
		return nil, errors.New("judging is not configured")
	}
	problem, round, err := s.CurrentProblem(playerID)
	if err != nil {
		return nil, err
	}

	result, err := s.judge.Evaluate(ctx, source, languageID, CasesFor(problem))
	if err != nil {
		return nil, err
	}
	if result.AllPassed() {
		if err := s.PlayerSolved(playerID, round); err != nil {
			return result, err
		}
	}
	return result, nil
}

// armResume schedules the next round after delay. Caller holds room.mu.
func (s *RotationService) armResume(room *Room, delay time.Duration) {
	gen := room.gen
	code := room.Code
	room.timer = time.AfterFunc(delay, func() {
		room.mu.Lock()
		stale := room.closed || room.gen != gen
		room.mu.Unlock()
		if stale {
			return
		}
		s.StartRotation(code)
	})
}

// catchUp sends the active problem to a player who joined mid-game. Caller holds room.mu.
func (s *RotationService) catchUp(room *Room, p *Player) {
	if room.phase != phaseActive || room.current == nil {
		return
	}
	sendTo(p.Conn, protocol.NewProblem(*room.current, room.round, s.deadlineSeconds()))
}

func (s *RotationService) fetch(roomCode string) *model.Problem {
	if s.problems == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	p, err := s.problems.GetRandomProblem(ctx)
	if err != nil {
		log.Printf("[Rotation] ERROR: failed to fetch problem for room %s: %v", roomCode, err)
		return nil
	}
	return p
}

func (s *RotationService) deadlineSeconds() int {
	return int(s.opts.Deadline / time.Second)
}
