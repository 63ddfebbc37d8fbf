package deck

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/game"
)

func questionRecord(id uint, prompt, label string) game.QuestionRecord {
	rec := game.QuestionRecord{
		Prompt:          prompt,
		Choices:         []string{"A", "B", "C", "D"},
		CorrectAnswer:   "A",
		DifficultyLabel: label,
	}
	rec.ID = id
	return rec
}

func TestExpand_WeightedCounts(t *testing.T) {
	records := []game.QuestionRecord{
		questionRecord(1, "What is recall?", "Remembering"),
		questionRecord(2, "Design a protocol", "Creating"),
	}

	cards := Expand(records)

	if len(cards) != 17 {
		t.Fatalf("expected 15+2=17 cards, got %d", len(cards))
	}
	counts := map[game.Tier]int{}
	for _, c := range cards {
		if c.Kind != game.KindQuestion {
			t.Fatalf("expected only question cards in the main deck, got %q", c.Kind)
		}
		counts[c.Tier]++
	}
	if counts[game.TierRemembering] != 15 || counts[game.TierCreating] != 2 {
		t.Fatalf("expected 15:2 ratio, got %v", counts)
	}
}

func TestExpand_SkipsRecordsWithoutPrompt(t *testing.T) {
	records := []game.QuestionRecord{
		questionRecord(1, "", "Applying"),
		questionRecord(2, "Apply the rule", "Applying"),
	}
	cards := Expand(records)
	if len(cards) != 10 {
		t.Fatalf("expected only the usable record expanded (10 copies), got %d", len(cards))
	}
}

func TestExpand_CopyIdentifiersDistinct(t *testing.T) {
	cards := Expand([]game.QuestionRecord{questionRecord(7, "Evaluate", "Evaluating")})
	seen := map[string]bool{}
	for _, c := range cards {
		if seen[c.ID] {
			t.Fatalf("duplicate copy identifier %q", c.ID)
		}
		seen[c.ID] = true
		if !strings.HasPrefix(c.ID, "7_") {
			t.Fatalf("expected synthetic suffix on base id 7, got %q", c.ID)
		}
	}
}

func TestBuildDeck_EmptyContentFails(t *testing.T) {
	b := NewBuilder(rand.New(rand.NewSource(1)))
	if _, _, err := b.BuildDeck([]game.QuestionRecord{questionRecord(1, "", "x")}); err != ErrNoUsableQuestions {
		t.Fatalf("expected ErrNoUsableQuestions, got %v", err)
	}
}

func TestBuildDeck_ShuffleIsReproducible(t *testing.T) {
	records := []game.QuestionRecord{
		questionRecord(1, "q1", "Remembering"),
		questionRecord(2, "q2", "Understanding"),
		questionRecord(3, "q3", "Analyzing"),
	}
	d1, _, err := NewBuilder(rand.New(rand.NewSource(42))).BuildDeck(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d2, _, err := NewBuilder(rand.New(rand.NewSource(42))).BuildDeck(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(d1) != len(d2) {
		t.Fatalf("deck sizes differ: %d vs %d", len(d1), len(d2))
	}
	for i := range d1 {
		if d1[i].ID != d2[i].ID {
			t.Fatalf("same seed produced different order at %d: %s vs %s", i, d1[i].ID, d2[i].ID)
		}
	}
}

func TestBuildDeck_SpellCatalogSeparate(t *testing.T) {
	deck, spells, err := NewBuilder(rand.New(rand.NewSource(5))).BuildDeck(
		[]game.QuestionRecord{questionRecord(1, "q", "Remembering")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range deck {
		if c.Kind == game.KindSpell {
			t.Fatalf("spell card %q leaked into the main deck", c.ID)
		}
	}
	if len(spells) != 13 {
		t.Fatalf("expected 13 spells in the catalog, got %d", len(spells))
	}
}

func TestDeal_HandSizesAndSpellInjection(t *testing.T) {
	records := []game.QuestionRecord{
		questionRecord(1, "q1", "Remembering"),
		questionRecord(2, "q2", "Understanding"),
	}
	b := NewBuilder(rand.New(rand.NewSource(9)))
	deck, spells, err := b.BuildDeck(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p1, p2, rest := b.Deal(deck, spells)

	countSpells := func(hand []game.Card) int {
		n := 0
		for _, c := range hand {
			if c.Kind == game.KindSpell {
				n++
			}
		}
		return n
	}
	if s := countSpells(p1); s > 1 {
		t.Fatalf("at most one spell per hand, got %d", s)
	}
	if s := countSpells(p2); s > 1 {
		t.Fatalf("at most one spell per hand, got %d", s)
	}
	questions1 := len(p1) - countSpells(p1)
	questions2 := len(p2) - countSpells(p2)
	if questions1 != InitialHandSize || questions2 != InitialHandSize {
		t.Fatalf("expected %d question cards each, got %d and %d", InitialHandSize, questions1, questions2)
	}
	if len(rest)+questions1+questions2 != len(deck) {
		t.Fatalf("question cards lost in the deal: deck=%d rest=%d", len(deck), len(rest))
	}
}

func TestDeal_SpellRateOverManySeeds(t *testing.T) {
	records := []game.QuestionRecord{questionRecord(1, "q", "Remembering")}
	withSpell := 0
	const trials = 2000
	for seed := 0; seed < trials; seed++ {
		b := NewBuilder(rand.New(rand.NewSource(int64(seed))))
		deck, spells, err := b.BuildDeck(records)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		p1, _, _ := b.Deal(deck, spells)
		for _, c := range p1 {
			if c.Kind == game.KindSpell {
				withSpell++
				break
			}
		}
	}
	rate := float64(withSpell) / float64(trials)
	if rate < 0.14 || rate > 0.22 {
		t.Fatalf("spell injection rate %0.3f outside expected band around %0.2f", rate, SpellChance)
	}
}
