package game

import "strings"

// Tier is one of six canonical cognitive-difficulty labels, ordered
// ascending by base damage and descending by rarity weight.
type Tier string

const (
	TierRemembering   Tier = "Remembering"
	TierUnderstanding Tier = "Understanding"
	TierApplying      Tier = "Applying"
	TierAnalyzing     Tier = "Analyzing"
	TierEvaluating    Tier = "Evaluating"
	TierCreating      Tier = "Creating"
)

// Tiers lists the canonical tiers in ascending order.
var Tiers = []Tier{
	TierRemembering,
	TierUnderstanding,
	TierApplying,
	TierAnalyzing,
	TierEvaluating,
	TierCreating,
}

// NormalizeTier maps a free-text difficulty label onto a canonical tier by
// case-insensitive substring match. Unrecognized or empty labels fall back
// to the lowest tier; this never fails.
func NormalizeTier(label string) Tier {
	s := strings.ToLower(label)
	switch {
	case strings.Contains(s, "remember"):
		return TierRemembering
	case strings.Contains(s, "understand"):
		return TierUnderstanding
	case strings.Contains(s, "apply"):
		return TierApplying
	case strings.Contains(s, "analyze"):
		return TierAnalyzing
	case strings.Contains(s, "evaluate"):
		return TierEvaluating
	case strings.Contains(s, "create"):
		return TierCreating
	}
	return TierRemembering
}

// BaseDamage returns the tier-indexed damage constant.
func (t Tier) BaseDamage() int {
	switch t {
	case TierRemembering:
		return 5
	case TierUnderstanding:
		return 10
	case TierApplying:
		return 15
	case TierAnalyzing:
		return 20
	case TierEvaluating:
		return 25
	case TierCreating:
		return 30
	}
	return 10
}

// RarityWeight returns the deck-expansion copy count for the tier. Lower
// tiers are the most common.
func (t Tier) RarityWeight() int {
	switch t {
	case TierRemembering:
		return 15
	case TierUnderstanding:
		return 12
	case TierApplying:
		return 10
	case TierAnalyzing:
		return 7
	case TierEvaluating:
		return 4
	case TierCreating:
		return 2
	}
	return 5
}
