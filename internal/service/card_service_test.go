package service

import (
	"testing"
	"time"

	"codeduel/internal/protocol"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cardFixture(t *testing.T, rng RandSource) (*CardService, *Room, []*recordingConn, []string) {
	t.Helper()
	rooms, _, room, conns, ids := startedRoom(t, fastRotation(), &countingSource{}, 3)
	return NewCardService(rooms, NewCatalog(), rng, 100), room, conns, ids
}

func TestAttack(t *testing.T) {
	cards, room, conns, ids := cardFixture(t, nil)

	require.NoError(t, cards.UseCard(ids[0], "Attack", ids[1]))
	assert.Equal(t, 80, health(room, ids[1]))

	var dmg protocol.DamagePayload
	require.True(t, conns[1].last(t, protocol.TypeDamage, &dmg))
	assert.Equal(t, ids[0], dmg.PlayerID)
	assert.Equal(t, ids[1], dmg.TargetPlayerID)
	assert.Equal(t, 20, dmg.Damage)
	assert.Equal(t, 80, dmg.HP)
	assert.Equal(t, 0, conns[0].count(protocol.TypeDamage))

	// every member sees the authoritative health
	for _, c := range conns {
		var hp protocol.HpUpdatePayload
		require.True(t, c.last(t, protocol.TypePlayerHpUpdate, &hp))
		assert.Equal(t, ids[1], hp.PlayerID)
		assert.Equal(t, 80, hp.HP)
	}
}

func TestAttackFloorsAtZero(t *testing.T) {
	cards, room, _, ids := cardFixture(t, nil)
	for i := 0; i < 6; i++ {
		require.NoError(t, cards.UseCard(ids[0], "Attack", ids[1]))
	}
	assert.Equal(t, 0, health(room, ids[1]))
}

func TestVibeCodeUsesRandomDamage(t *testing.T) {
	cards, room, conns, ids := cardFixture(t, fixedRand{n: 17})

	require.NoError(t, cards.UseCard(ids[0], "VibeCode", ids[2]))
	assert.Equal(t, 83, health(room, ids[2]))

	var dmg protocol.DamagePayload
	require.True(t, conns[2].last(t, protocol.TypeVibeCode, &dmg))
	assert.Equal(t, 17, dmg.Damage)
}

func TestHealCapsAtMax(t *testing.T) {
	cards, room, conns, ids := cardFixture(t, nil)

	require.NoError(t, cards.UseCard(ids[0], "Attack", ids[1]))
	require.NoError(t, cards.UseCard(ids[1], "Heal", ids[1]))
	assert.Equal(t, 100, health(room, ids[1]))

	var heal protocol.HealPayload
	require.True(t, conns[1].last(t, protocol.TypeHeal, &heal))
	assert.Equal(t, 20, heal.Amount)

	require.NoError(t, cards.UseCard(ids[1], "Heal", ids[1]))
	require.True(t, conns[1].last(t, protocol.TypeHeal, &heal))
	assert.Equal(t, 0, heal.Amount)
	assert.Equal(t, 100, heal.HP)
}

func TestDefendAbsorbsDamage(t *testing.T) {
	cards, room, conns, ids := cardFixture(t, nil)

	require.NoError(t, cards.UseCard(ids[1], "Defend", ids[1]))
	var sig protocol.SignalPayload
	require.True(t, conns[1].last(t, protocol.TypeDefend, &sig))
	assert.Equal(t, 15, sig.Shield)

	require.NoError(t, cards.UseCard(ids[0], "Attack", ids[1]))
	assert.Equal(t, 95, health(room, ids[1]))

	var dmg protocol.DamagePayload
	require.True(t, conns[1].last(t, protocol.TypeDamage, &dmg))
	assert.Equal(t, 15, dmg.Absorbed)
	assert.Equal(t, 5, dmg.Damage)

	require.NoError(t, cards.UseCard(ids[0], "Attack", ids[1]))
	assert.Equal(t, 75, health(room, ids[1]))
}

func TestBlockNegatesNextHit(t *testing.T) {
	cards, room, conns, ids := cardFixture(t, nil)

	require.NoError(t, cards.UseCard(ids[1], "Block", ids[1]))
	assert.Equal(t, 1, conns[1].count(protocol.TypeBlock))

	require.NoError(t, cards.UseCard(ids[0], "Attack", ids[1]))
	assert.Equal(t, 100, health(room, ids[1]))

	require.NoError(t, cards.UseCard(ids[0], "Attack", ids[1]))
	assert.Equal(t, 80, health(room, ids[1]))
}

func TestCompilerAttackBlocksSubmissions(t *testing.T) {
	cards, room, conns, ids := cardFixture(t, nil)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cards.now = func() time.Time { return now }

	require.NoError(t, cards.UseCard(ids[0], "CompilerAttack", ids[2]))

	var sig protocol.SignalPayload
	require.True(t, conns[2].last(t, protocol.TypeCompilerAttack, &sig))
	assert.Equal(t, 5, sig.DurationSeconds)

	room.mu.Lock()
	defer room.mu.Unlock()
	assert.Equal(t, now.Add(5*time.Second), room.member(ids[2]).BlockedUntil)
	assert.Equal(t, 100, room.member(ids[2]).Health)
}

func TestSyntaxScrambleIsCosmetic(t *testing.T) {
	cards, room, conns, ids := cardFixture(t, nil)

	require.NoError(t, cards.UseCard(ids[0], "SyntaxScramble", ids[1]))
	assert.Equal(t, 1, conns[1].count(protocol.TypeSyntaxScramble))
	assert.Equal(t, 100, health(room, ids[1]))
}

func TestLeakRevealsUpcomingProblem(t *testing.T) {
	cards, _, conns, ids := cardFixture(t, nil)

	require.NoError(t, cards.UseCard(ids[0], "Leak", ids[0]))

	var leak protocol.LeakPayload
	require.True(t, conns[0].last(t, protocol.TypeLeak, &leak))
	assert.Equal(t, "Problem B", leak.Title)
	assert.Equal(t, "1 <= a, b <= 10", leak.Constraints)
	assert.Equal(t, 2, leak.TestCaseCount)
}

func TestUseCardRejections(t *testing.T) {
	cards, room, conns, ids := cardFixture(t, nil)

	t.Run("unknown card ignored", func(t *testing.T) {
		before := len(conns[1].types())
		assert.NoError(t, cards.UseCard(ids[0], "Fireball", ids[1]))
		assert.Len(t, conns[1].types(), before)
	})

	t.Run("target outside room", func(t *testing.T) {
		assert.ErrorIs(t, cards.UseCard(ids[0], "Attack", "stranger"), ErrPlayerNotFound)
	})

	t.Run("unknown actor", func(t *testing.T) {
		assert.ErrorIs(t, cards.UseCard("ghost", "Attack", ids[1]), ErrPlayerNotFound)
	})

	assert.Equal(t, 100, health(room, ids[1]))
}

func TestUseCardInLobbyRejected(t *testing.T) {
	rooms := NewRoomService(testRoomOptions())
	room, _, ids := seatedRoom(t, rooms, 2)
	cards := NewCardService(rooms, NewCatalog(), nil, 100)

	err := cards.UseCard(ids[0], "Attack", ids[1])
	assert.ErrorIs(t, err, ErrInvalidRoomState)
	assert.Equal(t, 100, health(room, ids[1]))
}
