package service

import (
	"time"

	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/constants"
	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/game"
	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/keys"
	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/logging"
)

// GetGameState returns the live session for a room.
func (e *Engine) GetGameState(roomID string) (*game.Session, error) {
	return e.session(roomID)
}

// GetActiveRoomIDByLobbyID resolves a lobby to its unfinished room, or ""
// when the lobby has no live session.
func (e *Engine) GetActiveRoomIDByLobbyID(lobbyID string) string {
	lobbyID = keys.ActorKey(lobbyID)
	if s := e.findExistingSession(lobbyID); s != nil {
		return s.RoomID
	}
	return ""
}

// Forfeit ends the session early with the leaver's opponent as winner.
func (e *Engine) Forfeit(roomID, studentID string) (*game.Session, error) {
	studentID = keys.ActorKey(studentID)

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
	leaver := s.GetPlayer(studentID)
	if leaver == nil {
		return nil, ErrPlayerNotInSession
	}
	winner := s.GetOpponent(studentID)
	logging.Info("player forfeited", logging.Fields{constants.LogFieldRoomID: roomID, constants.LogFieldStudentID: studentID})
	e.finishMatch(s, winner.StudentID)
	e.persist(s)
	return s, nil
}

// finishMatch marks the session terminal, records the historical result,
// adjusts star balances and notifies the room. Callers hold the room lock.
func (e *Engine) finishMatch(s *game.Session, winnerID string) {
	s.Finish(winnerID, e.now())

	p1, p2 := &s.Players[0], &s.Players[1]
	result := &game.MatchResult{
		RoomID:                s.RoomID,
		MatchID:               s.MatchID,
		Player1ID:             p1.StudentID,
		Player2ID:             p2.StudentID,
		WinnerID:              winnerID,
		Player1CorrectAnswers: p1.CorrectAnswers,
		Player2CorrectAnswers: p2.CorrectAnswers,
		TotalQuestions:        s.TotalQuestions,
		DurationMS:            s.DurationMS,
	}
	if err := e.repo.RecordMatchResult(result); err != nil {
		logging.Warn("failed to record match result", err, logging.Fields{constants.LogFieldRoomID: s.RoomID})
	}
	for i := range s.Players {
		p := &s.Players[i]
		delta := -StarDelta
		if p.StudentID == winnerID {
			delta = StarDelta
		}
		if err := e.repo.AdjustStudentStars(p.StudentID, p.DisplayName, delta, p.StudentID == winnerID); err != nil {
			logging.Warn("failed to adjust stars", err, logging.Fields{constants.LogFieldStudentID: p.StudentID})
		}
	}

	logging.Info("match finished", logging.Fields{
		constants.LogFieldRoomID:  s.RoomID,
		constants.LogFieldMatchID: s.MatchID,
		"winner":                  winnerID,
	})
	e.publishRoom(s.RoomID, constants.EventGameEnd, s)
}

// CleanupGame evicts the room from the registry and removes its mirror row.
func (e *Engine) CleanupGame(roomID string) {
	e.mu.Lock()
	if s, ok := e.games[roomID]; ok {
		delete(e.lobbyToRoom, s.LobbyID)
	}
	delete(e.games, roomID)
	delete(e.roomLocks, roomID)
	e.mu.Unlock()

	if err := e.repo.DeleteSessionByRoomID(roomID); err != nil {
		logging.Warn("failed to delete session mirror", err, logging.Fields{constants.LogFieldRoomID: roomID})
	}
	logging.Info("game room cleaned up", logging.Fields{constants.LogFieldRoomID: roomID})
}

// SweepExpired drops sessions past their TTL from the registry and the
// mirror. Finished sessions age from their end time, stale unfinished ones
// from their start time.
func (e *Engine) SweepExpired(ttl time.Duration) {
	now := e.now()
	cutoff := now.Add(-ttl)

	var expired []string
	e.mu.Lock()
	for roomID, s := range e.games {
		switch {
		case s.Outcome == game.StatusFinished && s.EndedAt.Before(cutoff):
			expired = append(expired, roomID)
		case s.Outcome != game.StatusFinished && s.StartedAt.Before(cutoff):
			expired = append(expired, roomID)
		}
	}
	for _, roomID := range expired {
		if s, ok := e.games[roomID]; ok {
			delete(e.lobbyToRoom, s.LobbyID)
		}
		delete(e.games, roomID)
		delete(e.roomLocks, roomID)
	}
	e.mu.Unlock()

	removed, err := e.repo.DeleteExpiredSessions(now, ttl)
	if err != nil {
		logging.Warn("failed to sweep expired session mirrors", err, nil)
	}
	if len(expired) > 0 || removed > 0 {
		logging.Info("expired sessions swept", logging.Fields{"evicted": len(expired), "mirror_rows": removed})
	}
}
