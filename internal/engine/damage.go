package engine

import (
	"math"

	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/game"
)

// CriticalStrikeChance is the probability that critical_strike triples the
// damage of one resolution. Each resolution rolls independently.
const CriticalStrikeChance = 0.25

// Resolution is the outcome of one damage computation. ConsumedSpells lists
// the acting player's activated spells that participated in the pipeline;
// the caller removes them from the player's activatedSpells list (spells are
// single-use). critical_strike is consumed by its roll even when the roll
// fails.
type Resolution struct {
	Damage         int
	WasCritical    bool
	ConsumedSpells []game.SpellType
}

// ResolveDamage computes the final damage for an answer resolution. It is a
// pure function of its inputs: the roll source is injected so the
// critical-strike branch stays reproducible in tests, and neither the card
// nor the player is mutated.
//
// The pipeline order is fixed: tier base damage, then the doubleDamage
// session effect, then the shield session effect, then the acting player's
// activated spells in activation order, each step compounding or clamping
// the previous ones. The result is never negative and fractional results
// are floored.
func ResolveDamage(card game.Card, wasCorrect bool, acting *game.Player, effects game.Effects, roll func() float64) Resolution {
	res := Resolution{}

	dmg := float64(card.Tier.BaseDamage())

	if effects.DoubleDamage && wasCorrect {
		dmg *= 2
	}
	if effects.Shield && !wasCorrect {
		dmg = 0
	}

	for _, spell := range acting.ActivatedSpells {
		switch spell.SpellType {
		case game.SpellChainLightning:
			if wasCorrect {
				dmg += 5
			}
			res.ConsumedSpells = append(res.ConsumedSpells, spell.SpellType)
		case game.SpellDamageBoost:
			if wasCorrect {
				dmg += 10
			}
			res.ConsumedSpells = append(res.ConsumedSpells, spell.SpellType)
		case game.SpellCriticalStrike:
			if roll() < CriticalStrikeChance {
				dmg *= 3
				res.WasCritical = true
			}
			res.ConsumedSpells = append(res.ConsumedSpells, spell.SpellType)
		case game.SpellImmunity:
			if !wasCorrect {
				dmg = 0
			}
			res.ConsumedSpells = append(res.ConsumedSpells, spell.SpellType)
		case game.SpellDamageReduction:
			dmg *= 0.5
			res.ConsumedSpells = append(res.ConsumedSpells, spell.SpellType)
		}
	}

	res.Damage = int(math.Floor(dmg))
	if res.Damage < 0 {
		res.Damage = 0
	}
	return res
}
