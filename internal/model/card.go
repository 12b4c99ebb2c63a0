package model

// Rarity is the draw tier of a card
type Rarity string

const (
	RarityCommon   Rarity = "Common"
	RarityUncommon Rarity = "Uncommon"
	RarityRare     Rarity = "Rare"
)

// Effect tags what the card engine does when a card is played
type Effect string

const (
	EffectDamage      Effect = "damage"       // flat damage
	EffectGamble      Effect = "gamble"       // random damage in [0, Magnitude)
	EffectScramble    Effect = "scramble"     // cosmetic editor disruption
	EffectLockout     Effect = "lockout"      // blocks submissions for a while
	EffectShield      Effect = "shield"       // absorbs card damage
	EffectNegate      Effect = "negate"       // cancels the next card damage hit
	EffectHeal        Effect = "heal"         // flat heal
	EffectRevealIntel Effect = "reveal_intel" // leaks the upcoming problem
)

// Card is an immutable catalog entry
type Card struct {
	Name        string `json:"name"`
	Rarity      Rarity `json:"rarity"`
	Description string `json:"description"`
	Effect      Effect `json:"effect"`
	Magnitude   int    `json:"magnitude,omitempty"`
}
