package service

import (
	"math/rand/v2"
	"strings"

	"codeduel/internal/model"
)

// Draw thresholds on a uniform roll in [0,1)
const (
	commonCutoff   = 0.65
	uncommonCutoff = 0.90
)

// RandSource is the randomness used for card draws and gamble damage
type RandSource interface {
	Float64() float64
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }
func (globalRand) IntN(n int) int   { return rand.IntN(n) }

// DefaultRand draws from the process-wide generator of math/rand/v2
var DefaultRand RandSource = globalRand{}

var defaultCards = []model.Card{
	{Name: "Attack", Rarity: model.RarityCommon, Effect: model.EffectDamage, Magnitude: 20,
		Description: "Deal 20 damage to an opponent."},
	{Name: "SyntaxScramble", Rarity: model.RarityCommon, Effect: model.EffectScramble,
		Description: "Scramble an opponent's editor for a moment."},
	{Name: "Defend", Rarity: model.RarityCommon, Effect: model.EffectShield, Magnitude: 15,
		Description: "Gain a shield that absorbs 15 card damage."},
	{Name: "VibeCode", Rarity: model.RarityUncommon, Effect: model.EffectGamble, Magnitude: 30,
		Description: "Deal a random amount of damage between 0 and 29."},
	{Name: "Heal", Rarity: model.RarityUncommon, Effect: model.EffectHeal, Magnitude: 20,
		Description: "Restore 20 health."},
	{Name: "Block", Rarity: model.RarityUncommon, Effect: model.EffectNegate,
		Description: "Negate the next card that would damage you."},
	{Name: "CompilerAttack", Rarity: model.RarityRare, Effect: model.EffectLockout, Magnitude: 5,
		Description: "Lock an opponent out of submitting for 5 seconds."},
	{Name: "Leak", Rarity: model.RarityRare, Effect: model.EffectRevealIntel,
		Description: "Peek at the problem coming up next."},
}

// Catalog is the immutable table of playable cards
type Catalog struct {
	cards  []model.Card
	byTier map[model.Rarity][]model.Card
}

// NewCatalog builds a catalog over cards, or the built-in deck when cards is empty
func NewCatalog(cards ...model.Card) *Catalog {
	if len(cards) == 0 {
		cards = defaultCards
	}
	c := &Catalog{
		cards:  append([]model.Card(nil), cards...),
		byTier: make(map[model.Rarity][]model.Card),
	}
	for _, card := range c.cards {
		c.byTier[card.Rarity] = append(c.byTier[card.Rarity], card)
	}
	return c
}

// All returns every card in catalog order
func (c *Catalog) All() []model.Card {
	return append([]model.Card(nil), c.cards...)
}

// Lookup finds a card by name, ignoring case
func (c *Catalog) Lookup(name string) (model.Card, bool) {
	for _, card := range c.cards {
		if strings.EqualFold(card.Name, name) {
			return card, true
		}
	}
	return model.Card{}, false
}

// Draw picks a tier from a single roll (<=0.65 Common, <=0.90 Uncommon, else
// Rare) and a card uniformly within it. An empty tier falls back to the whole deck.
func (c *Catalog) Draw(rng RandSource) model.Card {
	tier := RarityForRoll(rng.Float64())
	pool := c.byTier[tier]
	if len(pool) == 0 {
		pool = c.cards
	}
	return pool[rng.IntN(len(pool))]
}

// RarityForRoll maps a roll in [0,1) to its tier
func RarityForRoll(roll float64) model.Rarity {
	switch {
	case roll <= commonCutoff:
		return model.RarityCommon
	case roll <= uncommonCutoff:
		return model.RarityUncommon
	default:
		return model.RarityRare
	}
}
