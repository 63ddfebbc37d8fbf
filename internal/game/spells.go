package game

// SpellType names one of the thirteen spell cards.
type SpellType string

const (
	SpellChainLightning  SpellType = "chain_lightning"
	SpellDamageBoost     SpellType = "damage_boost"
	SpellCriticalStrike  SpellType = "critical_strike"
	SpellCardBurn        SpellType = "card_burn"
	SpellHeal            SpellType = "heal"
	SpellReflect         SpellType = "reflect"
	SpellImmunity        SpellType = "immunity"
	SpellDamageReduction SpellType = "damage_reduction"
	SpellCardSwap        SpellType = "card_swap"
	SpellQuestionReroll  SpellType = "question_reroll"
	SpellTurnSkip        SpellType = "turn_skip"
	SpellSecondChance    SpellType = "second_chance"
	SpellFreeze          SpellType = "freeze"
)

// Spell effect categories.
const (
	CategoryOffensive = "offensive"
	CategoryDefensive = "defensive"
	CategoryUtility   = "utility"
)

type spellSpec struct {
	spellType SpellType
	name      string
	category  string
}

var spellSpecs = []spellSpec{
	{SpellChainLightning, "Chain Lightning", CategoryOffensive},
	{SpellDamageBoost, "Damage Boost", CategoryOffensive},
	{SpellCriticalStrike, "Critical Strike", CategoryOffensive},
	{SpellCardBurn, "Card Burn", CategoryOffensive},
	{SpellHeal, "Heal", CategoryDefensive},
	{SpellReflect, "Reflect", CategoryDefensive},
	{SpellImmunity, "Immunity", CategoryDefensive},
	{SpellDamageReduction, "Damage Reduction", CategoryDefensive},
	{SpellCardSwap, "Card Swap", CategoryUtility},
	{SpellQuestionReroll, "Question Reroll", CategoryUtility},
	{SpellTurnSkip, "Turn Skip", CategoryUtility},
	{SpellSecondChance, "Second Chance", CategoryUtility},
	{SpellFreeze, "Freeze", CategoryUtility},
}

// SpellCatalog returns the fixed pool of spell cards, exactly one instance
// of each type. Spells are never shuffled into the main deck; they are
// injected per-player at hand-deal time.
func SpellCatalog() []Card {
	cards := make([]Card, 0, len(spellSpecs))
	for _, s := range spellSpecs {
		cards = append(cards, Card{
			ID:        "spell_" + string(s.spellType),
			Kind:      KindSpell,
			SpellType: s.spellType,
			Name:      s.name,
			Category:  s.category,
		})
	}
	return cards
}
