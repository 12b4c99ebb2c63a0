package service

import (
	"testing"
	"time"

	"codeduel/internal/model"
	"codeduel/internal/protocol"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startedRoom(t *testing.T, opts RotationOptions, src ProblemSource, n int) (*RoomService, *RotationService, *Room, []*recordingConn, []string) {
	t.Helper()
	rooms := NewRoomService(testRoomOptions())
	rot := NewRotationService(rooms, src, NewCatalog(), fixedRand{roll: 0.1}, opts)
	room, conns, ids := seatedRoom(t, rooms, n)
	require.NoError(t, rooms.StartGame(ids[0]))
	t.Cleanup(rooms.Shutdown)
	return rooms, rot, room, conns, ids
}

func currentGen(room *Room) uint64 {
	room.mu.Lock()
	defer room.mu.Unlock()
	return room.gen
}

func TestStartRotationBroadcastsProblem(t *testing.T) {
	_, _, room, conns, _ := startedRoom(t, fastRotation(), &countingSource{}, 2)

	for _, c := range conns {
		var np protocol.NewProblemPayload
		require.True(t, c.last(t, protocol.TypeNewProblem, &np))
		assert.Equal(t, "Problem A", np.Title)
		assert.Equal(t, 1, np.Round)
		assert.Equal(t, 3600, np.DeadlineSeconds)
		assert.Equal(t, model.DefaultInputDescription, np.InputDescription)
		assert.Len(t, np.TestCases, 2)
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	assert.Equal(t, phaseActive, room.phase)
	require.NotNil(t, room.upcoming)
	assert.Equal(t, "Problem B", room.upcoming.Title)
}

func TestStartRotationStallsWithoutProblems(t *testing.T) {
	_, _, room, conns, _ := startedRoom(t, fastRotation(), &countingSource{empty: true}, 2)

	assert.Equal(t, 0, conns[0].count(protocol.TypeNewProblem))
	room.mu.Lock()
	defer room.mu.Unlock()
	assert.Equal(t, phaseStalled, room.phase)
	assert.Nil(t, room.timer)
}

func TestTimeoutAppliesPenalty(t *testing.T) {
	_, rot, room, conns, ids := startedRoom(t, fastRotation(), &countingSource{}, 3)

	rot.handleTimeout(room.Code, currentGen(room))

	for _, id := range ids {
		assert.Equal(t, 70, health(room, id))
	}
	var timeout protocol.ProblemTimeoutPayload
	require.True(t, conns[1].last(t, protocol.TypeProblemTimeout, &timeout))
	assert.Equal(t, 1, timeout.Round)
	assert.Equal(t, 3, conns[1].count(protocol.TypePlayerHpUpdate))

	room.mu.Lock()
	assert.Equal(t, phasePenalty, room.phase)
	room.mu.Unlock()
}

func TestTimeoutFloorsHealthAtZero(t *testing.T) {
	_, rot, room, _, ids := startedRoom(t, fastRotation(), &countingSource{}, 1)

	for i := 0; i < 4; i++ {
		room.mu.Lock()
		room.phase = phaseActive
		room.mu.Unlock()
		rot.handleTimeout(room.Code, currentGen(room))
	}
	assert.Equal(t, 0, health(room, ids[0]))
}

func TestTimeoutIgnoresShield(t *testing.T) {
	_, rot, room, _, ids := startedRoom(t, fastRotation(), &countingSource{}, 1)
	room.mu.Lock()
	room.member(ids[0]).Shield = 50
	room.mu.Unlock()

	rot.handleTimeout(room.Code, currentGen(room))
	assert.Equal(t, 70, health(room, ids[0]))
}

func TestStaleTimeoutIsNoop(t *testing.T) {
	_, rot, room, conns, ids := startedRoom(t, fastRotation(), &countingSource{}, 2)
	stale := currentGen(room)

	rot.StartRotation(room.Code)
	rot.handleTimeout(room.Code, stale)

	assert.Equal(t, 100, health(room, ids[0]))
	assert.Equal(t, 0, conns[0].count(protocol.TypeProblemTimeout))
	assert.Equal(t, 2, conns[0].count(protocol.TypeNewProblem))
}

func TestPlayerSolvedAwardsOnlySolver(t *testing.T) {
	_, rot, room, conns, ids := startedRoom(t, fastRotation(), &countingSource{}, 3)

	require.NoError(t, rot.PlayerSolved(ids[1], 0))

	var card protocol.CardAwardedPayload
	require.True(t, conns[1].last(t, protocol.TypeCardAwarded, &card))
	assert.Equal(t, model.RarityCommon, card.Rarity)
	assert.Equal(t, 0, conns[0].count(protocol.TypeCardAwarded))
	assert.Equal(t, 0, conns[2].count(protocol.TypeCardAwarded))

	for _, c := range conns {
		var solved protocol.ProblemSolvedPayload
		require.True(t, c.last(t, protocol.TypeProblemSolvedBy, &solved))
		assert.Equal(t, ids[1], solved.PlayerID)
		assert.Equal(t, 1, solved.Round)
	}

	// the deadline of the solved round can no longer fire
	room.mu.Lock()
	assert.Equal(t, phaseAward, room.phase)
	room.mu.Unlock()
	rot.handleTimeout(room.Code, currentGen(room)-1)
	assert.Equal(t, 100, health(room, ids[0]))
}

func TestPlayerSolvedTwiceIsNoop(t *testing.T) {
	_, rot, _, conns, ids := startedRoom(t, fastRotation(), &countingSource{}, 2)

	require.NoError(t, rot.PlayerSolved(ids[0], 0))
	require.NoError(t, rot.PlayerSolved(ids[1], 0))

	assert.Equal(t, 1, conns[0].count(protocol.TypeCardAwarded))
	assert.Equal(t, 0, conns[1].count(protocol.TypeCardAwarded))
	assert.Equal(t, 1, conns[1].count(protocol.TypeProblemSolvedBy))
}

func TestPlayerSolvedWrongRoundIgnored(t *testing.T) {
	_, rot, _, conns, ids := startedRoom(t, fastRotation(), &countingSource{}, 1)

	require.NoError(t, rot.PlayerSolved(ids[0], 7))
	assert.Equal(t, 0, conns[0].count(protocol.TypeCardAwarded))
}

func TestPlayerSolvedUnknownPlayer(t *testing.T) {
	_, rot, _, _, _ := startedRoom(t, fastRotation(), &countingSource{}, 1)
	assert.ErrorIs(t, rot.PlayerSolved("ghost", 0), ErrPlayerNotFound)
}

func TestRotationAdvancesOnTimers(t *testing.T) {
	opts := RotationOptions{
		Deadline:           30 * time.Millisecond,
		TimeoutPenalty:     30,
		TimeoutResumeDelay: 10 * time.Millisecond,
		SolveResumeDelay:   10 * time.Millisecond,
	}
	_, rot, room, conns, ids := startedRoom(t, opts, &countingSource{}, 2)

	require.Eventually(t, func() bool {
		return conns[0].count(protocol.TypeProblemTimeout) >= 1 && conns[0].count(protocol.TypeNewProblem) >= 2
	}, 2*time.Second, 5*time.Millisecond)
	assert.LessOrEqual(t, health(room, ids[0]), 70)

	require.Eventually(t, func() bool {
		return rot.PlayerSolved(ids[1], 0) == nil && conns[1].count(protocol.TypeCardAwarded) == 1
	}, 2*time.Second, time.Millisecond)
}

func TestRoomDeletionCancelsRotation(t *testing.T) {
	opts := RotationOptions{
		Deadline:           20 * time.Millisecond,
		TimeoutPenalty:     30,
		TimeoutResumeDelay: 10 * time.Millisecond,
		SolveResumeDelay:   10 * time.Millisecond,
	}
	rooms, _, room, conns, ids := startedRoom(t, opts, &countingSource{}, 1)

	rooms.PlayerDisconnected(ids[0])
	time.Sleep(80 * time.Millisecond)

	assert.Nil(t, rooms.Room(room.Code))
	assert.Equal(t, 0, conns[0].count(protocol.TypeProblemTimeout))
}

func TestJoinMidGameReceivesCurrentProblem(t *testing.T) {
	rooms, _, room, _, _ := startedRoom(t, fastRotation(), &countingSource{}, 1)

	late := &recordingConn{}
	_, err := rooms.JoinRoom(late, "late", "Late", room.Code)
	require.NoError(t, err)

	var np protocol.NewProblemPayload
	require.True(t, late.last(t, protocol.TypeNewProblem, &np))
	assert.Equal(t, 1, np.Round)
}

func TestCurrentProblemRespectsLockout(t *testing.T) {
	_, rot, room, _, ids := startedRoom(t, fastRotation(), &countingSource{}, 1)

	p, round, err := rot.CurrentProblem(ids[0])
	require.NoError(t, err)
	assert.Equal(t, "Problem A", p.Title)
	assert.Equal(t, 1, round)

	room.mu.Lock()
	room.member(ids[0]).BlockedUntil = time.Now().Add(time.Minute)
	room.mu.Unlock()

	_, _, err = rot.CurrentProblem(ids[0])
	assert.ErrorIs(t, err, ErrSubmissionBlocked)
}
