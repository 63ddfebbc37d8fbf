package game

import (
	"time"

	"gorm.io/gorm"
)

// Session status values.
const (
	StatusPlaying  = "playing"
	StatusFinished = "finished"
)

// Game phases.
const (
	PhaseCardSelection = "cardSelection"
	PhaseAnswering     = "answering"
	PhaseFinished      = "finished"
)

// ActionType is a string alias for a player's in-game action. Using a
// dedicated type instead of plain string makes dispatch safer and
// self-documenting.
type ActionType string

const (
	ActionSelectCard     ActionType = "select_card"
	ActionAnswerQuestion ActionType = "answer_question"
	ActionUsePowerUp     ActionType = "use_powerup"
	ActionActivateSpell  ActionType = "activate_spell"
)

// CardKind discriminates the two card payload shapes held in one Card value.
type CardKind string

const (
	KindQuestion CardKind = "question"
	KindSpell    CardKind = "spell"
)

// Card is the tagged union shared by the deck, hands and the selected slot.
// Question cards carry Prompt/Choices/CorrectAnswer/Tier/Damage; spell cards
// carry SpellType/Name/Category. Branching code must switch on Kind.
type Card struct {
	ID            string    `json:"id"`
	Kind          CardKind  `json:"type"`
	Prompt        string    `json:"question,omitempty"`
	Choices       []string  `json:"choices,omitempty"`
	CorrectAnswer string    `json:"answer,omitempty"`
	Tier          Tier      `json:"bloom_level,omitempty"`
	Damage        int       `json:"damage,omitempty"`
	SpellType     SpellType `json:"spell_type,omitempty"`
	Name          string    `json:"name,omitempty"`
	Category      string    `json:"category,omitempty"`
}

// PowerUp names the six once-per-match toggles each player owns.
type PowerUp string

const (
	PowerUpDoubleDamage PowerUp = "double_damage"
	PowerUpShield       PowerUp = "shield"
	PowerUpHintReveal   PowerUp = "hint_reveal"
	PowerUpExtraTurn    PowerUp = "extra_turn"
	PowerUpCardDraw     PowerUp = "card_draw"
	PowerUpFiftyFifty   PowerUp = "fifty_fifty"
)

// PowerUpState tracks a single toggle's lifecycle.
type PowerUpState struct {
	Available bool `json:"available"`
	Used      bool `json:"used"`
}

// PowerUps is a fixed-size record of the six named toggles, giving
// compile-time exhaustiveness instead of a stringly-keyed map.
type PowerUps struct {
	DoubleDamage PowerUpState `json:"double_damage"`
	Shield       PowerUpState `json:"shield"`
	HintReveal   PowerUpState `json:"hint_reveal"`
	ExtraTurn    PowerUpState `json:"extra_turn"`
	CardDraw     PowerUpState `json:"card_draw"`
	FiftyFifty   PowerUpState `json:"fifty_fifty"`
}

// NewPowerUps returns the full set, each available and unused.
func NewPowerUps() PowerUps {
	fresh := PowerUpState{Available: true}
	return PowerUps{
		DoubleDamage: fresh,
		Shield:       fresh,
		HintReveal:   fresh,
		ExtraTurn:    fresh,
		CardDraw:     fresh,
		FiftyFifty:   fresh,
	}
}

// State returns a pointer to the named toggle, or nil for an unknown name.
func (p *PowerUps) State(name PowerUp) *PowerUpState {
	switch name {
	case PowerUpDoubleDamage:
		return &p.DoubleDamage
	case PowerUpShield:
		return &p.Shield
	case PowerUpHintReveal:
		return &p.HintReveal
	case PowerUpExtraTurn:
		return &p.ExtraTurn
	case PowerUpCardDraw:
		return &p.CardDraw
	case PowerUpFiftyFifty:
		return &p.FiftyFifty
	}
	return nil
}

// Effects are session-level flags set by power-ups. DoubleDamage and Shield
// are consumed by the next answer resolution; the remaining three are
// surfaced to clients and cleared on the next resolution.
type Effects struct {
	DoubleDamage bool `json:"doubleDamage"`
	Shield       bool `json:"shield"`
	HintReveal   bool `json:"hintReveal"`
	ExtraTurn    bool `json:"extraTurn"`
	FiftyFifty   bool `json:"fiftyFifty"`
}

const InitialHP = 100

// Player is one of the two participants in a battle session.
type Player struct {
	StudentID       string   `json:"student_id"`
	DisplayName     string   `json:"display_name"`
	HP              int      `json:"hp"`
	MaxHP           int      `json:"max_hp"`
	Hand            []Card   `json:"cards"`
	ActivatedSpells []Card   `json:"activated_spells"`
	PowerUps        PowerUps `json:"power_ups"`
	CorrectAnswers  int      `json:"correct_answers"`
}

// RemoveFromHand removes the card with the given id from the player's hand
// and returns it. The second result is false when the card is not held.
func (p *Player) RemoveFromHand(cardID string) (Card, bool) {
	for i := range p.Hand {
		if p.Hand[i].ID == cardID {
			c := p.Hand[i]
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return c, true
		}
	}
	return Card{}, false
}

// Session owns the mutable state of one two-player match. The in-memory copy
// is authoritative while the process is alive; the database row keyed by
// RoomID is a best-effort mirror. Player/card state is stored as JSON blobs
// so the mirror stays an opaque key-value record.
type Session struct {
	gorm.Model     `json:"-"`
	RoomID         string    `json:"roomId" gorm:"uniqueIndex"`
	MatchID        string    `json:"gameId" gorm:"uniqueIndex"`
	LobbyID        string    `json:"lobbyId" gorm:"index"`
	Players        []Player  `json:"players" gorm:"serializer:json"`
	CurrentTurn    string    `json:"currentTurn"`
	Phase          string    `json:"gamePhase"`
	Deck           []Card    `json:"deck" gorm:"serializer:json"`
	SelectedCard   *Card     `json:"selectedCard" gorm:"serializer:json"`
	Outcome        string    `json:"gameState"`
	Winner         string    `json:"winner"`
	Effects        Effects   `json:"powerUpEffects" gorm:"serializer:json"`
	TotalQuestions int       `json:"totalQuestions"`
	StartedAt      time.Time `json:"matchStartTime"`
	EndedAt        time.Time `json:"matchEndTime"`
	DurationMS     int64     `json:"matchDuration"`
}

func (Session) TableName() string { return "game_rooms" }

// GetPlayer returns the participant with the given student id, or nil.
func (s *Session) GetPlayer(studentID string) *Player {
	for i := range s.Players {
		if s.Players[i].StudentID == studentID {
			return &s.Players[i]
		}
	}
	return nil
}

// GetOpponent returns the other participant, or nil for an unknown id.
func (s *Session) GetOpponent(studentID string) *Player {
	for i := range s.Players {
		if s.Players[i].StudentID != studentID {
			return &s.Players[i]
		}
	}
	return nil
}

// SwitchTurn hands the turn to the current holder's opponent.
func (s *Session) SwitchTurn() {
	if opp := s.GetOpponent(s.CurrentTurn); opp != nil {
		s.CurrentTurn = opp.StudentID
	}
}

// DrawCard moves the top deck card into the given player's hand. Returns
// false when the deck is exhausted, which is not an error condition.
func (s *Session) DrawCard(p *Player) bool {
	if len(s.Deck) == 0 {
		return false
	}
	top := s.Deck[len(s.Deck)-1]
	s.Deck = s.Deck[:len(s.Deck)-1]
	p.Hand = append(p.Hand, top)
	return true
}

// Finish marks the session terminal with the given winner and computes the
// match duration.
func (s *Session) Finish(winnerID string, now time.Time) {
	s.Outcome = StatusFinished
	s.Phase = PhaseFinished
	s.Winner = winnerID
	s.SelectedCard = nil
	s.EndedAt = now
	s.DurationMS = now.Sub(s.StartedAt).Milliseconds()
}

// QuestionRecord is a row of the question bank consumed by the deck builder.
// Records are seeded from the arena config file on first migration.
type QuestionRecord struct {
	gorm.Model      `json:"-"`
	Prompt          string   `json:"question_text"`
	Choices         []string `json:"choices" gorm:"serializer:json"`
	CorrectAnswer   string   `json:"correct_answer"`
	DifficultyLabel string   `json:"blooms_level"`
}

func (QuestionRecord) TableName() string { return "questions" }

// StudentProfile stores per-student aggregate arena stats.
type StudentProfile struct {
	gorm.Model  `json:"-"`
	StudentID   string `json:"student_id" gorm:"uniqueIndex"`
	DisplayName string `json:"display_name"`
	Stars       int    `json:"stars"`
	GamesPlayed int    `json:"games_played"`
	Wins        int    `json:"wins"`
}

func (StudentProfile) TableName() string { return "student_profiles" }

// MatchResult is the historical record written when a session finishes.
type MatchResult struct {
	gorm.Model            `json:"-"`
	RoomID                string `json:"room_id" gorm:"index"`
	MatchID               string `json:"game_id"`
	Player1ID             string `json:"player1_id"`
	Player2ID             string `json:"player2_id"`
	WinnerID              string `json:"winner_id"`
	Player1CorrectAnswers int    `json:"player1_correct_answers"`
	Player2CorrectAnswers int    `json:"player2_correct_answers"`
	TotalQuestions        int    `json:"total_questions"`
	DurationMS            int64  `json:"match_duration"`
}

func (MatchResult) TableName() string { return "pvp_matches" }
