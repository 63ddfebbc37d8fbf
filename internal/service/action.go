package service

import (
	"strings"

	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/constants"
	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/engine"
	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/game"
	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/keys"
	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/logging"
)

// Action is one player move against a live session.
type Action struct {
	StudentID string          `json:"student_id"`
	Type      game.ActionType `json:"action_type"`
	CardID    string          `json:"card_id,omitempty"`
	Answer    string          `json:"answer,omitempty"`
	PowerUp   game.PowerUp    `json:"power_up,omitempty"`
}

// ProcessAction validates and applies a player action, returning the updated
// session. Mutations of one room are fully serialized; protocol violations
// are rejected with a sentinel error and leave the session untouched.
func (e *Engine) ProcessAction(roomID string, act Action) (*game.Session, error) {
	act.StudentID = keys.ActorKey(act.StudentID)

	lock := e.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	s, err := e.session(roomID)
	if err != nil {
		return nil, err
	}
	if s.Outcome == game.StatusFinished {
		return nil, ErrGameOver
	}
	actor := s.GetPlayer(act.StudentID)
	if actor == nil {
		return nil, ErrPlayerNotInSession
	}
	if s.CurrentTurn != act.StudentID {
		return nil, ErrNotYourTurn
	}

	switch act.Type {
	case game.ActionSelectCard:
		err = e.handleSelectCard(s, actor, act.CardID)
	case game.ActionAnswerQuestion:
		err = e.handleAnswer(s, actor, act.Answer)
	case game.ActionUsePowerUp:
		err = e.handleUsePowerUp(s, actor, act.PowerUp)
	case game.ActionActivateSpell:
		err = e.handleActivateSpell(s, actor, act.CardID)
	default:
		err = ErrInvalidAction
	}
	if err != nil {
		return nil, err
	}

	e.persist(s)
	e.publishRoom(s.RoomID, constants.EventGameState, s)
	logging.Info("action processed", logging.Fields{
		constants.LogFieldRoomID:    roomID,
		constants.LogFieldStudentID: act.StudentID,
		constants.LogFieldAction:    string(act.Type),
	})
	return s, nil
}

func (e *Engine) handleSelectCard(s *game.Session, actor *game.Player, cardID string) error {
	if s.Phase != game.PhaseCardSelection {
		return ErrInvalidAction
	}
	card, ok := actor.RemoveFromHand(cardID)
	if !ok || card.Kind != game.KindQuestion {
		if ok {
			// Spell cards go through activate_spell, not selection.
			actor.Hand = append(actor.Hand, card)
		}
		return ErrInvalidCard
	}
	s.SelectedCard = &card
	s.Phase = game.PhaseAnswering
	return nil
}

func (e *Engine) handleAnswer(s *game.Session, actor *game.Player, answer string) error {
	if s.Phase != game.PhaseAnswering || s.SelectedCard == nil {
		return ErrInvalidAction
	}
	card := *s.SelectedCard
	correct := strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(card.CorrectAnswer))

	res := engine.ResolveDamage(card, correct, actor, s.Effects, e.roll)

	s.TotalQuestions++
	if correct {
		actor.CorrectAnswers++
	}

	// A correct answer damages the opponent; a wrong answer damages the
	// actor. Every question is a gamble, not an aimed attack.
	target := s.GetOpponent(actor.StudentID)
	if !correct {
		target = actor
	}
	target.HP -= res.Damage
	if target.HP < 0 {
		target.HP = 0
	}

	consumeSpells(actor, res.ConsumedSpells)

	// All five effect flags live for exactly one resolution.
	extraTurn := s.Effects.ExtraTurn
	s.Effects = game.Effects{}

	if target.HP == 0 {
		winner := s.GetOpponent(target.StudentID)
		e.finishMatch(s, winner.StudentID)
		return nil
	}

	s.SelectedCard = nil
	s.Phase = game.PhaseCardSelection
	if !extraTurn {
		s.SwitchTurn()
	}
	s.DrawCard(s.GetPlayer(s.CurrentTurn))
	return nil
}

func (e *Engine) handleUsePowerUp(s *game.Session, actor *game.Player, name game.PowerUp) error {
	state := actor.PowerUps.State(name)
	if state == nil || !state.Available || state.Used {
		return ErrPowerUpUnavailable
	}
	state.Available = false
	state.Used = true

	switch name {
	case game.PowerUpDoubleDamage:
		s.Effects.DoubleDamage = true
	case game.PowerUpShield:
		s.Effects.Shield = true
	case game.PowerUpHintReveal:
		s.Effects.HintReveal = true
	case game.PowerUpExtraTurn:
		s.Effects.ExtraTurn = true
	case game.PowerUpFiftyFifty:
		s.Effects.FiftyFifty = true
	case game.PowerUpCardDraw:
		s.DrawCard(actor)
		s.DrawCard(actor)
	}
	return nil
}

func (e *Engine) handleActivateSpell(s *game.Session, actor *game.Player, cardID string) error {
	card, ok := actor.RemoveFromHand(cardID)
	if !ok || card.Kind != game.KindSpell {
		if ok {
			actor.Hand = append(actor.Hand, card)
		}
		return ErrInvalidCard
	}

	// Instant spells resolve at activation; the rest arm until a damage
	// resolution consumes them.
	switch card.SpellType {
	case game.SpellHeal:
		actor.HP += 20
		if actor.HP > actor.MaxHP {
			actor.HP = actor.MaxHP
		}
	case game.SpellCardBurn:
		opp := s.GetOpponent(actor.StudentID)
		for i := 0; i < 2 && len(opp.Hand) > 0; i++ {
			idx := e.intn(len(opp.Hand))
			opp.Hand = append(opp.Hand[:idx], opp.Hand[idx+1:]...)
		}
	case game.SpellCardSwap:
		opp := s.GetOpponent(actor.StudentID)
		actor.Hand, opp.Hand = opp.Hand, actor.Hand
	default:
		actor.ActivatedSpells = append(actor.ActivatedSpells, card)
	}
	return nil
}

// consumeSpells removes from the player's activated list the single-use
// spells a resolver pass reported as spent.
func consumeSpells(p *game.Player, spent []game.SpellType) {
	for _, st := range spent {
		for i := range p.ActivatedSpells {
			if p.ActivatedSpells[i].SpellType == st {
				p.ActivatedSpells = append(p.ActivatedSpells[:i], p.ActivatedSpells[i+1:]...)
				break
			}
		}
	}
}
