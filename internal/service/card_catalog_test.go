package service

import (
	"testing"

	"codeduel/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRarityForRoll(t *testing.T) {
	tests := []struct {
		roll float64
		want model.Rarity
	}{
		{0, model.RarityCommon},
		{0.65, model.RarityCommon},
		{0.6500001, model.RarityUncommon},
		{0.90, model.RarityUncommon},
		{0.9000001, model.RarityRare},
		{0.999, model.RarityRare},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RarityForRoll(tt.roll), "roll %v", tt.roll)
	}
}

func TestDefaultCatalog(t *testing.T) {
	c := NewCatalog()
	cards := c.All()
	require.Len(t, cards, 8)

	tiers := map[model.Rarity]int{}
	for _, card := range cards {
		tiers[card.Rarity]++
		assert.NotEmpty(t, card.Description, card.Name)
	}
	assert.Equal(t, 3, tiers[model.RarityCommon])
	assert.Equal(t, 3, tiers[model.RarityUncommon])
	assert.Equal(t, 2, tiers[model.RarityRare])

	card, ok := c.Lookup("vibecode")
	require.True(t, ok)
	assert.Equal(t, "VibeCode", card.Name)

	_, ok = c.Lookup("Fireball")
	assert.False(t, ok)
}

func TestDrawPicksWithinTier(t *testing.T) {
	c := NewCatalog()

	tests := []struct {
		name string
		rng  fixedRand
		want string
	}{
		{"first common", fixedRand{roll: 0.2, n: 0}, "Attack"},
		{"last common", fixedRand{roll: 0.2, n: 2}, "Defend"},
		{"uncommon", fixedRand{roll: 0.8, n: 1}, "Heal"},
		{"rare", fixedRand{roll: 0.95, n: 1}, "Leak"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Draw(tt.rng).Name)
		})
	}
}

func TestDrawEmptyTierFallsBack(t *testing.T) {
	c := NewCatalog(model.Card{Name: "Only", Rarity: model.RarityCommon})
	assert.Equal(t, "Only", c.Draw(fixedRand{roll: 0.99}).Name)
}

func TestDrawDistribution(t *testing.T) {
	c := NewCatalog()
	counts := map[model.Rarity]int{}
	const n = 20000
	for i := 0; i < n; i++ {
		counts[c.Draw(DefaultRand).Rarity]++
	}
	assert.InDelta(t, 0.65, float64(counts[model.RarityCommon])/n, 0.03)
	assert.InDelta(t, 0.25, float64(counts[model.RarityUncommon])/n, 0.03)
	assert.InDelta(t, 0.10, float64(counts[model.RarityRare])/n, 0.03)
}
