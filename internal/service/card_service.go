package service

import (
	"log"
	"time"

	"codeduel/internal/model"
	"codeduel/internal/protocol"
)

// CardService executes played cards against room members. Health lives on the
// registry's Player and is only mutated under the room lock; every change is
// followed by a playerHpUpdate broadcast.
type CardService struct {
	rooms     *RoomService
	catalog   *Catalog
	rng       RandSource
	maxHealth int
	now       func() time.Time
}

// NewCardService creates a card effect engine
func NewCardService(rooms *RoomService, catalog *Catalog, rng RandSource, maxHealth int) *CardService {
	if rng == nil {
		rng = DefaultRand
	}
	return &CardService{
		rooms:     rooms,
		catalog:   catalog,
		rng:       rng,
		maxHealth: maxHealth,
		now:       time.Now,
	}
}

// UseCard plays cardName from actorID against targetID. Unknown card names are
// logged and ignored. Both players must share a room that is in progress.
func (s *CardService) UseCard(actorID, cardName, targetID string) error {
	card, ok := s.catalog.Lookup(cardName)
	if !ok {
		log.Printf("[Cards] Unknown card %q from %s ignored", cardName, actorID)
		return nil
	}

	actor, room := s.rooms.lookup(actorID)
	if actor == nil {
		return ErrPlayerNotFound
	}
	if room == nil {
		return ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.closed {
		return ErrRoomNotFound
	}
	if room.state != model.RoomStateInProgress {
		return &StateError{State: room.state}
	}
	target := room.member(targetID)
	if target == nil {
		log.Printf("[Cards] %s played %s at %s who is not in room %s", actorID, card.Name, targetID, room.Code)
		return ErrPlayerNotFound
	}

	log.Printf("[Cards] %s played %s on %s in room %s", actor.Name, card.Name, target.Name, room.Code)

	switch card.Effect {
	case model.EffectDamage:
		s.hit(room, actor, target, card, card.Magnitude, protocol.TypeDamage)
	case model.EffectGamble:
		dmg := 0
		if card.Magnitude > 0 {
			dmg = s.rng.IntN(card.Magnitude)
		}
		s.hit(room, actor, target, card, dmg, protocol.TypeVibeCode)
	case model.EffectHeal:
		before := target.Health
		target.Health = min(s.maxHealth, target.Health+card.Magnitude)
		sendTo(target.Conn, protocol.CardEffect(protocol.TypeHeal, protocol.HealPayload{
			PlayerID:       actor.ID,
			TargetPlayerID: target.ID,
			Amount:         target.Health - before,
			HP:             target.Health,
			CardName:       card.Name,
		}))
		room.broadcast(protocol.PlayerHpUpdate(target.ID, target.Health), "")
	case model.EffectShield:
		target.Shield += card.Magnitude
		sendTo(target.Conn, protocol.CardEffect(protocol.TypeDefend, s.signal(actor, target, card, func(p *protocol.SignalPayload) {
			p.Shield = target.Shield
		})))
	case model.EffectNegate:
		target.Blocking = true
		sendTo(target.Conn, protocol.CardEffect(protocol.TypeBlock, s.signal(actor, target, card, nil)))
	case model.EffectLockout:
		lockout := time.Duration(card.Magnitude) * time.Second
		target.BlockedUntil = s.now().Add(lockout)
		sendTo(target.Conn, protocol.CardEffect(protocol.TypeCompilerAttack, s.signal(actor, target, card, func(p *protocol.SignalPayload) {
			p.DurationSeconds = card.Magnitude
		})))
	case model.EffectScramble:
		sendTo(target.Conn, protocol.CardEffect(protocol.TypeSyntaxScramble, s.signal(actor, target, card, nil)))
	case model.EffectRevealIntel:
		leak := protocol.LeakPayload{
			PlayerID:       actor.ID,
			TargetPlayerID: target.ID,
			CardName:       card.Name,
		}
		if next := room.upcoming; next != nil {
			leak.Title = next.Title
			leak.Constraints = next.Constraints
			leak.TestCaseCount = len(next.TestCases)
		}
		sendTo(target.Conn, protocol.CardEffect(protocol.TypeLeak, leak))
	default:
		log.Printf("[Cards] Card %s has no handler for effect %s", card.Name, card.Effect)
	}
	return nil
}

// hit applies card damage through Block then Shield. Caller holds room.mu.
func (s *CardService) hit(room *Room, actor, target *Player, card model.Card, dmg int, msgType string) {
	absorbed := 0
	switch {
	case target.Blocking:
		target.Blocking = false
		absorbed = dmg
	case target.Shield > 0:
		absorbed = min(target.Shield, dmg)
		target.Shield -= absorbed
	}
	dealt := dmg - absorbed
	target.Health = max(0, target.Health-dealt)

	sendTo(target.Conn, protocol.CardEffect(msgType, protocol.DamagePayload{
		PlayerID:       actor.ID,
		TargetPlayerID: target.ID,
		Damage:         dealt,
		Absorbed:       absorbed,
		HP:             target.Health,
		CardName:       card.Name,
	}))
	room.broadcast(protocol.PlayerHpUpdate(target.ID, target.Health), "")
}

func (s *CardService) signal(actor, target *Player, card model.Card, fill func(*protocol.SignalPayload)) protocol.SignalPayload {
	p := protocol.SignalPayload{
		PlayerID:       actor.ID,
		TargetPlayerID: target.ID,
		CardName:       card.Name,
	}
	if fill != nil {
		fill(&p)
	}
	return p
}

// Catalog exposes the deck for the REST listing
func (s *CardService) Catalog() []model.Card {
	return s.catalog.All()
}
