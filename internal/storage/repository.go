package storage

import (
	"time"

	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/game"
)

type Repository interface {
	// GetQuestions returns the full question bank used to build decks.
	GetQuestions() ([]game.QuestionRecord, error)
	// SaveSession persists the session snapshot keyed by room ID,
	// overwriting any previous snapshot for the same room.
	SaveSession(s *game.Session) error
	GetSessionByRoomID(roomID string) (*game.Session, error)
	// FindActiveRoomIDByLobbyID returns the room for a lobby whose game
	// has not finished yet, or "" when none exists.
	FindActiveRoomIDByLobbyID(lobbyID string) (string, error)
	DeleteSessionByRoomID(roomID string) error
	// DeleteExpiredSessions removes finished or stale sessions whose last
	// update is older than the TTL, returning how many rows went away.
	DeleteExpiredSessions(now time.Time, ttl time.Duration) (int64, error)

	// Match history and rankings
	RecordMatchResult(m *game.MatchResult) error
	// AdjustStudentStars applies a star delta (clamped to [0, 500]) and
	// increments games-played/wins counters for the student.
	AdjustStudentStars(studentID, name string, delta int, won bool) error
	GetTopStudents(limit int) ([]game.StudentProfile, error)
	GetStudentProfile(studentID string) (*game.StudentProfile, error)
}
