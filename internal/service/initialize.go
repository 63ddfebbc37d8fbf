package service

import (
	"github.com/google/uuid"

	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/constants"
	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/game"
	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/keys"
	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/logging"
)

// PlayerSeed identifies one participant when a session is created.
type PlayerSeed struct {
	StudentID   string `json:"student_id"`
	DisplayName string `json:"display_name"`
}

// InitializeGame creates (or returns) the battle session for a lobby. The
// call is guarded per-lobby so two clients racing after the accept handshake
// both observe the same room. With forceNew the existing-session check is
// skipped and a fresh session replaces any previous one for the lobby.
func (e *Engine) InitializeGame(lobbyID string, seeds []PlayerSeed, forceNew bool) (*game.Session, error) {
	lobbyID = keys.ActorKey(lobbyID)
	if lobbyID == "" || len(seeds) != 2 {
		return nil, ErrInvalidPlayers
	}
	for i := range seeds {
		seeds[i].StudentID = keys.ActorKey(seeds[i].StudentID)
		if seeds[i].StudentID == "" {
			return nil, ErrInvalidPlayers
		}
	}
	if seeds[0].StudentID == seeds[1].StudentID {
		return nil, ErrInvalidPlayers
	}

	v, err, _ := e.initGroup.Do(lobbyID, func() (interface{}, error) {
		if !forceNew {
			if s := e.findExistingSession(lobbyID); s != nil {
				return s, nil
			}
		}
		return e.createSession(lobbyID, seeds)
	})
	if err != nil {
		return nil, err
	}
	return v.(*game.Session), nil
}

// findExistingSession looks for a live, unfinished session for the lobby —
// first in the registry, then in the mirror.
func (e *Engine) findExistingSession(lobbyID string) *game.Session {
	e.mu.Lock()
	roomID, ok := e.lobbyToRoom[lobbyID]
	var s *game.Session
	if ok {
		s = e.games[roomID]
	}
	e.mu.Unlock()
	if s != nil && s.Outcome != game.StatusFinished {
		return s
	}

	mirrorRoomID, err := e.repo.FindActiveRoomIDByLobbyID(lobbyID)
	if err != nil {
		logging.Warn("failed to check mirror for existing session", err, logging.Fields{constants.LogFieldLobbyID: lobbyID})
		return nil
	}
	if mirrorRoomID == "" {
		return nil
	}
	restored, err := e.session(mirrorRoomID)
	if err != nil {
		return nil
	}
	return restored
}

func (e *Engine) createSession(lobbyID string, seeds []PlayerSeed) (*game.Session, error) {
	records, err := e.repo.GetQuestions()
	if err != nil {
		return nil, err
	}

	e.rngMu.Lock()
	mainDeck, spells, err := e.decks.BuildDeck(records)
	if err != nil {
		e.rngMu.Unlock()
		return nil, err
	}
	hand1, hand2, rest := e.decks.Deal(mainDeck, spells)
	e.rngMu.Unlock()

	players := []game.Player{
		{
			StudentID:   seeds[0].StudentID,
			DisplayName: seeds[0].DisplayName,
			HP:          game.InitialHP,
			MaxHP:       game.InitialHP,
			Hand:        hand1,
			PowerUps:    game.NewPowerUps(),
		},
		{
			StudentID:   seeds[1].StudentID,
			DisplayName: seeds[1].DisplayName,
			HP:          game.InitialHP,
			MaxHP:       game.InitialHP,
			Hand:        hand2,
			PowerUps:    game.NewPowerUps(),
		},
	}

	now := e.now()
	s := &game.Session{
		RoomID:      "room_" + uuid.NewString(),
		MatchID:     uuid.NewString(),
		LobbyID:     lobbyID,
		Players:     players,
		CurrentTurn: players[0].StudentID,
		Phase:       game.PhaseCardSelection,
		Deck:        rest,
		Outcome:     game.StatusPlaying,
		StartedAt:   now,
	}
	// The opening player draws one extra card to offset going first.
	s.DrawCard(s.GetPlayer(s.CurrentTurn))

	e.mu.Lock()
	e.games[s.RoomID] = s
	e.lobbyToRoom[lobbyID] = s.RoomID
	e.mu.Unlock()

	e.persist(s)

	logging.Info("battle session created", logging.Fields{
		constants.LogFieldRoomID:  s.RoomID,
		constants.LogFieldLobbyID: lobbyID,
		constants.LogFieldMatchID: s.MatchID,
	})

	e.publishRoom(s.RoomID, constants.EventGameCreated, s)
	for i := range s.Players {
		e.publishActor(s.Players[i].StudentID, constants.EventTurnOrder, map[string]interface{}{
			"room_id": s.RoomID,
			"first":   s.Players[i].StudentID == s.CurrentTurn,
		})
	}
	return s, nil
}
