package service

import (
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/game"
)

type mockRepo struct {
	mu        sync.Mutex
	questions []game.QuestionRecord
	sessions  map[string]*game.Session
	results   []*game.MatchResult
	stars     map[string]int
	saveErr   error
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		questions: []game.QuestionRecord{
			{Prompt: "What is a goroutine?", Choices: []string{"A", "B", "C", "D"}, CorrectAnswer: "A", DifficultyLabel: "Remembering"},
			{Prompt: "Explain channel direction", Choices: []string{"A", "B", "C", "D"}, CorrectAnswer: "B", DifficultyLabel: "Understanding"},
			{Prompt: "Design a worker pool", Choices: []string{"A", "B", "C", "D"}, CorrectAnswer: "C", DifficultyLabel: "Creating"},
		},
		sessions: make(map[string]*game.Session),
		stars:    make(map[string]int),
	}
}

func (m *mockRepo) GetQuestions() ([]game.QuestionRecord, error) { return m.questions, nil }

func (m *mockRepo) SaveSession(s *game.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.sessions[s.RoomID] = s
	return nil
}

func (m *mockRepo) GetSessionByRoomID(roomID string) (*game.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[roomID]; ok {
		return s, nil
	}
	return nil, errors.New("record not found")
}

func (m *mockRepo) FindActiveRoomIDByLobbyID(lobbyID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		if s.LobbyID == lobbyID && s.Outcome != game.StatusFinished {
			return id, nil
		}
	}
	return "", nil
}

func (m *mockRepo) DeleteSessionByRoomID(roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, roomID)
	return nil
}

func (m *mockRepo) DeleteExpiredSessions(now time.Time, ttl time.Duration) (int64, error) {
	return 0, nil
}

func (m *mockRepo) RecordMatchResult(r *game.MatchResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, r)
	return nil
}

func (m *mockRepo) AdjustStudentStars(studentID, name string, delta int, won bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stars[studentID] += delta
	return nil
}

func (m *mockRepo) GetTopStudents(limit int) ([]game.StudentProfile, error) { return nil, nil }

func (m *mockRepo) GetStudentProfile(studentID string) (*game.StudentProfile, error) {
	return &game.StudentProfile{StudentID: studentID}, nil
}

func newTestEngine(repo *mockRepo) *Engine {
	return NewEngine(repo, nil, rand.New(rand.NewSource(1)))
}

func seedPair() []PlayerSeed {
	return []PlayerSeed{
		{StudentID: "s1", DisplayName: "Ana"},
		{StudentID: "s2", DisplayName: "Liza"},
	}
}

func countQuestionCards(hand []game.Card) int {
	n := 0
	for _, c := range hand {
		if c.Kind == game.KindQuestion {
			n++
		}
	}
	return n
}

func TestInitializeGame_DealsHandsWithOpeningBonus(t *testing.T) {
	e := newTestEngine(newMockRepo())

	s, err := e.InitializeGame("lobby_x", seedPair(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Outcome != game.StatusPlaying || s.Phase != game.PhaseCardSelection {
		t.Fatalf("session not in opening state: %+v", s)
	}
	first := s.GetPlayer(s.CurrentTurn)
	second := s.GetOpponent(s.CurrentTurn)
	if got := countQuestionCards(first.Hand); got != 6 {
		t.Fatalf("opening player should hold 6 question cards, got %d", got)
	}
	if got := countQuestionCards(second.Hand); got != 5 {
		t.Fatalf("second player should hold 5 question cards, got %d", got)
	}
	if first.HP != game.InitialHP || second.HP != game.InitialHP {
		t.Fatalf("players should start at full HP")
	}
}

func TestInitializeGame_IdempotentPerLobby(t *testing.T) {
	repo := newMockRepo()
	e := newTestEngine(repo)

	s1, err := e.InitializeGame("lobby_x", seedPair(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s2, err := e.InitializeGame("lobby_x", seedPair(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s1.RoomID != s2.RoomID {
		t.Fatalf("same lobby must map to same room: %q vs %q", s1.RoomID, s2.RoomID)
	}
	if len(repo.sessions) != 1 {
		t.Fatalf("expected one mirrored session, got %d", len(repo.sessions))
	}
}

func TestInitializeGame_ConcurrentCallersObserveSameRoom(t *testing.T) {
	e := newTestEngine(newMockRepo())

	const callers = 8
	rooms := make([]string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := e.InitializeGame("lobby_race", seedPair(), false)
			if err != nil {
				t.Errorf("caller %d: %v", i, err)
				return
			}
			rooms[i] = s.RoomID
		}(i)
	}
	wg.Wait()
	for i := 1; i < callers; i++ {
		if rooms[i] != rooms[0] {
			t.Fatalf("caller %d got room %q, caller 0 got %q", i, rooms[i], rooms[0])
		}
	}
}

func TestInitializeGame_ForceNewReplacesSession(t *testing.T) {
	e := newTestEngine(newMockRepo())

	s1, _ := e.InitializeGame("lobby_x", seedPair(), false)
	s2, err := e.InitializeGame("lobby_x", seedPair(), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s1.RoomID == s2.RoomID {
		t.Fatal("force_new should create a fresh room")
	}
}

func TestInitializeGame_RejectsBadSeeds(t *testing.T) {
	e := newTestEngine(newMockRepo())

	if _, err := e.InitializeGame("lobby_x", []PlayerSeed{{StudentID: "s1"}}, false); err != ErrInvalidPlayers {
		t.Fatalf("one seed: got %v", err)
	}
	pair := []PlayerSeed{{StudentID: "dup"}, {StudentID: "dup"}}
	if _, err := e.InitializeGame("lobby_x", pair, false); err != ErrInvalidPlayers {
		t.Fatalf("duplicate seeds: got %v", err)
	}
}

// testSession wires a crafted session into the engine, bypassing the dealer,
// so action tests control hands and turn order exactly.
func testSession(e *Engine, cards ...game.Card) *game.Session {
	s := &game.Session{
		RoomID:      "room_test",
		MatchID:     "match_test",
		LobbyID:     "lobby_test",
		CurrentTurn: "s1",
		Phase:       game.PhaseCardSelection,
		Outcome:     game.StatusPlaying,
		StartedAt:   time.Now(),
		Players: []game.Player{
			{StudentID: "s1", DisplayName: "Ana", HP: 100, MaxHP: 100, Hand: append([]game.Card(nil), cards...), PowerUps: game.NewPowerUps()},
			{StudentID: "s2", DisplayName: "Liza", HP: 100, MaxHP: 100, Hand: append([]game.Card(nil), cards...), PowerUps: game.NewPowerUps()},
		},
	}
	e.mu.Lock()
	e.games[s.RoomID] = s
	e.lobbyToRoom[s.LobbyID] = s.RoomID
	e.mu.Unlock()
	return s
}

func questionCard(id string, tier game.Tier) game.Card {
	return game.Card{
		ID:            id,
		Kind:          game.KindQuestion,
		Prompt:        "prompt",
		Choices:       []string{"A", "B", "C", "D"},
		CorrectAnswer: "A",
		Tier:          tier,
		Damage:        tier.BaseDamage(),
	}
}

func TestProcessAction_TurnAlternation(t *testing.T) {
	e := newTestEngine(newMockRepo())
	s := testSession(e, questionCard("q1", game.TierRemembering))

	if _, err := e.ProcessAction(s.RoomID, Action{StudentID: "s1", Type: game.ActionSelectCard, CardID: "q1"}); err != nil {
		t.Fatalf("select: %v", err)
	}
	if s.Phase != game.PhaseAnswering {
		t.Fatalf("phase after select = %q", s.Phase)
	}

	got, err := e.ProcessAction(s.RoomID, Action{StudentID: "s1", Type: game.ActionAnswerQuestion, Answer: "A"})
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if got.CurrentTurn != "s2" {
		t.Fatalf("turn should pass to s2, got %q", got.CurrentTurn)
	}
	if got.Phase != game.PhaseCardSelection {
		t.Fatalf("phase should reset, got %q", got.Phase)
	}
	if got.SelectedCard != nil {
		t.Fatal("selected card should be cleared")
	}
}

func TestProcessAction_CorrectDamagesOpponentWrongDamagesSelf(t *testing.T) {
	e := newTestEngine(newMockRepo())
	s := testSession(e, questionCard("q1", game.TierRemembering), questionCard("q2", game.TierRemembering))

	e.ProcessAction(s.RoomID, Action{StudentID: "s1", Type: game.ActionSelectCard, CardID: "q1"})
	e.ProcessAction(s.RoomID, Action{StudentID: "s1", Type: game.ActionAnswerQuestion, Answer: "A"})
	if hp := s.GetPlayer("s2").HP; hp != 95 {
		t.Fatalf("opponent HP after correct answer = %d, want 95", hp)
	}

	e.ProcessAction(s.RoomID, Action{StudentID: "s2", Type: game.ActionSelectCard, CardID: "q2"})
	e.ProcessAction(s.RoomID, Action{StudentID: "s2", Type: game.ActionAnswerQuestion, Answer: "wrong"})
	if hp := s.GetPlayer("s2").HP; hp != 90 {
		t.Fatalf("actor HP after wrong answer = %d, want 90", hp)
	}
	if hp := s.GetPlayer("s1").HP; hp != 100 {
		t.Fatalf("s1 HP should be untouched, got %d", hp)
	}
}

func TestProcessAction_DoubleDamageAppliedToOpponent(t *testing.T) {
	e := newTestEngine(newMockRepo())
	s := testSession(e, questionCard("q1", game.TierUnderstanding))

	if _, err := e.ProcessAction(s.RoomID, Action{StudentID: "s1", Type: game.ActionUsePowerUp, PowerUp: game.PowerUpDoubleDamage}); err != nil {
		t.Fatalf("use powerup: %v", err)
	}
	e.ProcessAction(s.RoomID, Action{StudentID: "s1", Type: game.ActionSelectCard, CardID: "q1"})
	e.ProcessAction(s.RoomID, Action{StudentID: "s1", Type: game.ActionAnswerQuestion, Answer: "A"})

	if hp := s.GetPlayer("s2").HP; hp != 80 {
		t.Fatalf("opponent HP = %d, want 80 (base 10 doubled)", hp)
	}
	if hp := s.GetPlayer("s1").HP; hp != 100 {
		t.Fatalf("actor must not take the doubled damage, got %d", hp)
	}
	if s.Effects.DoubleDamage {
		t.Fatal("doubleDamage must be consumed by the resolution")
	}
}

func TestProcessAction_PowerUpOncePerMatch(t *testing.T) {
	e := newTestEngine(newMockRepo())
	s := testSession(e, questionCard("q1", game.TierRemembering))

	if _, err := e.ProcessAction(s.RoomID, Action{StudentID: "s1", Type: game.ActionUsePowerUp, PowerUp: game.PowerUpShield}); err != nil {
		t.Fatalf("first use: %v", err)
	}
	if _, err := e.ProcessAction(s.RoomID, Action{StudentID: "s1", Type: game.ActionUsePowerUp, PowerUp: game.PowerUpShield}); err != ErrPowerUpUnavailable {
		t.Fatalf("second use: got %v, want ErrPowerUpUnavailable", err)
	}
}

func TestProcessAction_ExtraTurnKeepsTurn(t *testing.T) {
	e := newTestEngine(newMockRepo())
	s := testSession(e, questionCard("q1", game.TierRemembering))

	e.ProcessAction(s.RoomID, Action{StudentID: "s1", Type: game.ActionUsePowerUp, PowerUp: game.PowerUpExtraTurn})
	e.ProcessAction(s.RoomID, Action{StudentID: "s1", Type: game.ActionSelectCard, CardID: "q1"})
	e.ProcessAction(s.RoomID, Action{StudentID: "s1", Type: game.ActionAnswerQuestion, Answer: "A"})

	if s.CurrentTurn != "s1" {
		t.Fatalf("extra turn should keep the turn with s1, got %q", s.CurrentTurn)
	}
	if s.Effects.ExtraTurn {
		t.Fatal("extraTurn must clear after one resolution")
	}
}

func TestProcessAction_CardDrawDrawsTwo(t *testing.T) {
	e := newTestEngine(newMockRepo())
	s := testSession(e, questionCard("q1", game.TierRemembering))
	s.Deck = []game.Card{questionCard("d1", game.TierRemembering), questionCard("d2", game.TierRemembering), questionCard("d3", game.TierRemembering)}

	before := len(s.GetPlayer("s1").Hand)
	e.ProcessAction(s.RoomID, Action{StudentID: "s1", Type: game.ActionUsePowerUp, PowerUp: game.PowerUpCardDraw})
	if got := len(s.GetPlayer("s1").Hand); got != before+2 {
		t.Fatalf("hand size = %d, want %d", got, before+2)
	}
}

func TestProcessAction_FinishesAtZeroHP(t *testing.T) {
	repo := newMockRepo()
	e := newTestEngine(repo)
	s := testSession(e, questionCard("q1", game.TierCreating))
	s.GetPlayer("s2").HP = 10 // base 30 damage overkills

	e.ProcessAction(s.RoomID, Action{StudentID: "s1", Type: game.ActionSelectCard, CardID: "q1"})
	got, err := e.ProcessAction(s.RoomID, Action{StudentID: "s1", Type: game.ActionAnswerQuestion, Answer: "A"})
	if err != nil {
		t.Fatalf("answer: %v", err)
	}

	if hp := got.GetPlayer("s2").HP; hp != 0 {
		t.Fatalf("HP must floor at zero, got %d", hp)
	}
	if got.Outcome != game.StatusFinished || got.Winner != "s1" {
		t.Fatalf("match should finish with s1 winning: outcome=%q winner=%q", got.Outcome, got.Winner)
	}
	if len(repo.results) != 1 || repo.results[0].WinnerID != "s1" {
		t.Fatalf("match result not recorded: %+v", repo.results)
	}
	if repo.stars["s1"] != StarDelta || repo.stars["s2"] != -StarDelta {
		t.Fatalf("star deltas = %v", repo.stars)
	}
	if _, err := e.ProcessAction(s.RoomID, Action{StudentID: "s2", Type: game.ActionSelectCard, CardID: "q1"}); err != ErrGameOver {
		t.Fatalf("action after finish: got %v, want ErrGameOver", err)
	}
}

func TestProcessAction_TurnAndMembershipGuards(t *testing.T) {
	e := newTestEngine(newMockRepo())
	s := testSession(e, questionCard("q1", game.TierRemembering))

	if _, err := e.ProcessAction(s.RoomID, Action{StudentID: "s2", Type: game.ActionSelectCard, CardID: "q1"}); err != ErrNotYourTurn {
		t.Fatalf("off-turn action: got %v", err)
	}
	if _, err := e.ProcessAction(s.RoomID, Action{StudentID: "ghost", Type: game.ActionSelectCard, CardID: "q1"}); err != ErrPlayerNotInSession {
		t.Fatalf("outsider action: got %v", err)
	}
	if _, err := e.ProcessAction("room_missing", Action{StudentID: "s1", Type: game.ActionSelectCard}); err != ErrSessionNotFound {
		t.Fatalf("unknown room: got %v", err)
	}
	if _, err := e.ProcessAction(s.RoomID, Action{StudentID: "s1", Type: "dance"}); err != ErrInvalidAction {
		t.Fatalf("unknown action type: got %v", err)
	}
}

func TestProcessAction_SelectRejectsSpellAndUnknownCard(t *testing.T) {
	e := newTestEngine(newMockRepo())
	spell := game.Card{ID: "spell_heal", Kind: game.KindSpell, SpellType: game.SpellHeal}
	s := testSession(e, questionCard("q1", game.TierRemembering), spell)

	if _, err := e.ProcessAction(s.RoomID, Action{StudentID: "s1", Type: game.ActionSelectCard, CardID: "spell_heal"}); err != ErrInvalidCard {
		t.Fatalf("selecting a spell: got %v", err)
	}
	if len(s.GetPlayer("s1").Hand) != 2 {
		t.Fatal("rejected selection must not eat the card")
	}
	if _, err := e.ProcessAction(s.RoomID, Action{StudentID: "s1", Type: game.ActionSelectCard, CardID: "nope"}); err != ErrInvalidCard {
		t.Fatalf("unknown card: got %v", err)
	}
}

func TestActivateSpell_InstantEffects(t *testing.T) {
	e := newTestEngine(newMockRepo())
	heal := game.Card{ID: "spell_heal", Kind: game.KindSpell, SpellType: game.SpellHeal}
	burn := game.Card{ID: "spell_card_burn", Kind: game.KindSpell, SpellType: game.SpellCardBurn}
	s := testSession(e, questionCard("q1", game.TierRemembering), heal, burn)

	// Heal caps at max HP.
	s.GetPlayer("s1").HP = 90
	e.ProcessAction(s.RoomID, Action{StudentID: "s1", Type: game.ActionActivateSpell, CardID: "spell_heal"})
	if hp := s.GetPlayer("s1").HP; hp != 100 {
		t.Fatalf("heal should cap at max HP, got %d", hp)
	}

	before := len(s.GetPlayer("s2").Hand)
	e.ProcessAction(s.RoomID, Action{StudentID: "s1", Type: game.ActionActivateSpell, CardID: "spell_card_burn"})
	if got := len(s.GetPlayer("s2").Hand); got != before-2 {
		t.Fatalf("card burn should discard 2, hand went %d -> %d", before, got)
	}
	if len(s.GetPlayer("s1").ActivatedSpells) != 0 {
		t.Fatal("instant spells must not linger in activatedSpells")
	}
}

func TestActivateSpell_ArmsResolverSpell(t *testing.T) {
	e := newTestEngine(newMockRepo())
	boost := game.Card{ID: "spell_damage_boost", Kind: game.KindSpell, SpellType: game.SpellDamageBoost}
	s := testSession(e, questionCard("q1", game.TierUnderstanding), boost)

	e.ProcessAction(s.RoomID, Action{StudentID: "s1", Type: game.ActionActivateSpell, CardID: "spell_damage_boost"})
	if len(s.GetPlayer("s1").ActivatedSpells) != 1 {
		t.Fatal("damage_boost should arm")
	}

	e.ProcessAction(s.RoomID, Action{StudentID: "s1", Type: game.ActionSelectCard, CardID: "q1"})
	e.ProcessAction(s.RoomID, Action{StudentID: "s1", Type: game.ActionAnswerQuestion, Answer: "A"})

	if hp := s.GetPlayer("s2").HP; hp != 80 {
		t.Fatalf("opponent HP = %d, want 80 (10 base + 10 boost)", hp)
	}
	if len(s.GetPlayer("s1").ActivatedSpells) != 0 {
		t.Fatal("damage_boost must be consumed by the resolution")
	}
}

func TestForfeitAwardsOpponent(t *testing.T) {
	repo := newMockRepo()
	e := newTestEngine(repo)
	s := testSession(e, questionCard("q1", game.TierRemembering))

	got, err := e.Forfeit(s.RoomID, "s2")
	if err != nil {
		t.Fatalf("forfeit: %v", err)
	}
	if got.Outcome != game.StatusFinished || got.Winner != "s1" {
		t.Fatalf("outcome=%q winner=%q", got.Outcome, got.Winner)
	}
	if _, err := e.Forfeit(s.RoomID, "s1"); err != ErrGameOver {
		t.Fatalf("second forfeit: got %v", err)
	}
}

func TestSweepExpiredEvictsStaleRooms(t *testing.T) {
	e := newTestEngine(newMockRepo())
	s := testSession(e, questionCard("q1", game.TierRemembering))
	s.StartedAt = time.Now().Add(-time.Hour)

	e.SweepExpired(30 * time.Minute)

	e.mu.Lock()
	_, ok := e.games[s.RoomID]
	e.mu.Unlock()
	if ok {
		t.Fatal("stale session should be evicted")
	}
}

func TestCleanupGameRemovesMirror(t *testing.T) {
	repo := newMockRepo()
	e := newTestEngine(repo)
	s, err := e.InitializeGame("lobby_clean", seedPair(), false)
	if err != nil {
		t.Fatalf("init: %v", err)
	}

	e.CleanupGame(s.RoomID)
	if _, err := e.GetGameState(s.RoomID); err != ErrSessionNotFound {
		t.Fatalf("after cleanup: got %v", err)
	}
	if e.GetActiveRoomIDByLobbyID("lobby_clean") != "" {
		t.Fatal("lobby should no longer resolve to a room")
	}
}
