package deck

import (
	"errors"
	"math/rand"
	"strconv"

	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/game"
	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/keys"
)

// ErrNoUsableQuestions is returned when, after filtering, no question record
// can be turned into a card. It is fatal to match creation.
var ErrNoUsableQuestions = errors.New("no usable question records")

// SpellChance is the per-player probability of receiving one spell card at
// hand-deal time.
const SpellChance = 0.18

// InitialHandSize is the number of question cards dealt to each player.
const InitialHandSize = 5

// Builder creates shuffled battle decks from question records. The random
// source is injected so tests can assert distributions and reproduce deals.
type Builder struct {
	rng *rand.Rand
}

// NewBuilder returns a Builder backed by the given source. A nil source is
// not accepted; callers that do not care should seed from entropy.
func NewBuilder(rng *rand.Rand) *Builder {
	return &Builder{rng: rng}
}

// BuildDeck maps question records to cards, expands them by rarity weight,
// shuffles the expanded pool and returns it together with the fixed spell
// catalog. Records without a prompt are skipped silently; an empty result
// set fails with ErrNoUsableQuestions.
func (b *Builder) BuildDeck(records []game.QuestionRecord) (deck []game.Card, spells []game.Card, err error) {
	weighted := Expand(records)
	if len(weighted) == 0 {
		return nil, nil, ErrNoUsableQuestions
	}
	b.rng.Shuffle(len(weighted), func(i, j int) {
		weighted[i], weighted[j] = weighted[j], weighted[i]
	})
	return weighted, game.SpellCatalog(), nil
}

// Expand performs the deterministic weighted expansion without shuffling:
// each usable record becomes weight(tier) copies, each copy carrying a
// synthetic suffix on its identifier. Exposed separately so distribution
// tests can assert exact counts.
func Expand(records []game.QuestionRecord) []game.Card {
	out := make([]game.Card, 0, len(records)*8)
	for _, rec := range records {
		if rec.Prompt == "" {
			continue
		}
		tier := game.NormalizeTier(rec.DifficultyLabel)
		base := game.Card{
			ID:            strconv.FormatUint(uint64(rec.ID), 10),
			Kind:          game.KindQuestion,
			Prompt:        rec.Prompt,
			Choices:       rec.Choices,
			CorrectAnswer: rec.CorrectAnswer,
			Tier:          tier,
			Damage:        tier.BaseDamage(),
		}
		for i := 0; i < tier.RarityWeight(); i++ {
			dup := base
			dup.ID = keys.CardCopyID(base.ID, i)
			out = append(out, dup)
		}
	}
	return out
}

// Deal pops InitialHandSize cards for each player off the top of the deck
// and runs one independent Bernoulli trial per player against the spell
// pool — at most one spell is added to each hand. It returns both hands and
// the remaining deck.
func (b *Builder) Deal(deck []game.Card, spells []game.Card) (p1, p2, rest []game.Card) {
	rest = deck
	pop := func() (game.Card, bool) {
		if len(rest) == 0 {
			return game.Card{}, false
		}
		top := rest[len(rest)-1]
		rest = rest[:len(rest)-1]
		return top, true
	}
	for i := 0; i < InitialHandSize; i++ {
		if c, ok := pop(); ok {
			p1 = append(p1, c)
		}
		if c, ok := pop(); ok {
			p2 = append(p2, c)
		}
	}
	for _, hand := range []*[]game.Card{&p1, &p2} {
		if len(spells) == 0 {
			break
		}
		if b.rng.Float64() < SpellChance {
			*hand = append(*hand, spells[b.rng.Intn(len(spells))])
		}
	}
	return p1, p2, rest
}
