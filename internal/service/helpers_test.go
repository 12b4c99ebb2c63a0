package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"codeduel/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// recordingConn captures every frame sent to it
type recordingConn struct {
	mu     sync.Mutex
	frames []map[string]json.RawMessage
	closed bool
}

func (c *recordingConn) Send(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	var frame map[string]json.RawMessage
	if err := json.Unmarshal(data, &frame); err != nil {
		return false
	}
	c.frames = append(c.frames, frame)
	return true
}

func (c *recordingConn) types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.frames))
	for _, f := range c.frames {
		var t string
		_ = json.Unmarshal(f["type"], &t)
		out = append(out, t)
	}
	return out
}

// last decodes the payload of the most recent frame of msgType into dst
func (c *recordingConn) last(t *testing.T, msgType string, dst any) bool {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.frames) - 1; i >= 0; i-- {
		var typ string
		_ = json.Unmarshal(c.frames[i]["type"], &typ)
		if typ == msgType {
			require.NoError(t, json.Unmarshal(c.frames[i]["payload"], dst))
			return true
		}
	}
	return false
}

func (c *recordingConn) count(msgType string) int {
	n := 0
	for _, t := range c.types() {
		if t == msgType {
			n++
		}
	}
	return n
}

// fixedRand returns scripted rolls
type fixedRand struct {
	roll float64
	n    int
}

func (r fixedRand) Float64() float64 { return r.roll }
func (r fixedRand) IntN(n int) int {
	if r.n >= n {
		return n - 1
	}
	return r.n
}

// countingSource hands out numbered problems
type countingSource struct {
	mu    sync.Mutex
	calls int
	empty bool
}

func (s *countingSource) GetRandomProblem(ctx context.Context) (*model.Problem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.empty {
		return nil, nil
	}
	s.calls++
	return &model.Problem{
		Title:       "Problem " + string(rune('A'+s.calls-1)),
		Statement:   "Add two numbers.",
		Constraints: "1 <= a, b <= 10",
		TestCases: []model.TestCase{
			{Title: "1", IsTest: true, TestIn: "1 2", TestOut: "3"},
			{Title: "2", IsValidator: true, TestIn: "2 2", TestOut: "4"},
		},
	}, nil
}

func testRoomOptions() RoomOptions {
	return RoomOptions{MaxPlayers: 10, CodeLength: 5, MaxHealth: 100}
}

func fastRotation() RotationOptions {
	return RotationOptions{
		Deadline:           time.Hour,
		TimeoutPenalty:     30,
		TimeoutResumeDelay: time.Hour,
		SolveResumeDelay:   time.Hour,
	}
}

// seatedRoom creates a room with n players and returns their conns and ids
func seatedRoom(t *testing.T, rooms *RoomService, n int) (*Room, []*recordingConn, []string) {
	t.Helper()
	conns := make([]*recordingConn, n)
	ids := make([]string, n)
	for i := range conns {
		conns[i] = &recordingConn{}
		ids[i] = uuid.NewString()
	}

	room, err := rooms.CreateRoom(conns[0], ids[0], "host")
	require.NoError(t, err)
	for i := 1; i < n; i++ {
		_, err := rooms.JoinRoom(conns[i], ids[i], "player"+string(rune('0'+i)), room.Code)
		require.NoError(t, err)
	}
	return room, conns, ids
}

// health reads a member's health under the room lock
func health(room *Room, playerID string) int {
	room.mu.Lock()
	defer room.mu.Unlock()
	if p := room.member(playerID); p != nil {
		return p.Health
	}
	return -1
}
