package storage

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/game"
	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/keys"
)

// Star balance bounds applied on every adjustment.
const (
	minStars = 0
	maxStars = 500
)

type sqliteRepository struct {
	db *gorm.DB
}

func NewSQLiteRepository(db *gorm.DB) Repository {
	return &sqliteRepository{db: db}
}

func (r *sqliteRepository) GetQuestions() ([]game.QuestionRecord, error) {
	var records []game.QuestionRecord
	if err := r.db.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *sqliteRepository) SaveSession(s *game.Session) error {
	// Upsert keyed by room ID so repeated snapshots of the same room
	// overwrite the previous row instead of violating the unique index.
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "room_id"}},
		UpdateAll: true,
	}).Create(s).Error
}

func (r *sqliteRepository) GetSessionByRoomID(roomID string) (*game.Session, error) {
	var s game.Session
	if err := r.db.Where("room_id = ?", roomID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sqliteRepository) FindActiveRoomIDByLobbyID(lobbyID string) (string, error) {
	var s game.Session
	err := r.db.Select("room_id").
		Where("lobby_id = ? AND outcome != ?", lobbyID, game.StatusFinished).
		Order("created_at desc").
		First(&s).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", nil
		}
		return "", err
	}
	return s.RoomID, nil
}

func (r *sqliteRepository) DeleteSessionByRoomID(roomID string) error {
	return r.db.Unscoped().Where("room_id = ?", roomID).Delete(&game.Session{}).Error
}

func (r *sqliteRepository) DeleteExpiredSessions(now time.Time, ttl time.Duration) (int64, error) {
	cutoff := now.Add(-ttl)
	res := r.db.Unscoped().
		Where("updated_at <= ?", cutoff).
		Delete(&game.Session{})
	return res.RowsAffected, res.Error
}

func (r *sqliteRepository) RecordMatchResult(m *game.MatchResult) error {
	return r.db.Create(m).Error
}

func (r *sqliteRepository) AdjustStudentStars(studentID, name string, delta int, won bool) error {
	studentID = keys.ActorKey(studentID)
	var p game.StudentProfile
	if err := r.db.Where("student_id = ?", studentID).First(&p).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			p = game.StudentProfile{StudentID: studentID}
		} else {
			return err
		}
	}
	if name != "" {
		p.DisplayName = name
	}
	p.Stars += delta
	if p.Stars < minStars {
		p.Stars = minStars
	}
	if p.Stars > maxStars {
		p.Stars = maxStars
	}
	p.GamesPlayed++
	if won {
		p.Wins++
	}
	return r.db.Save(&p).Error
}

// GetTopStudents returns the top N students ordered by Stars desc, then Wins desc.
func (r *sqliteRepository) GetTopStudents(limit int) ([]game.StudentProfile, error) {
	if limit <= 0 {
		limit = 10
	}
	var profiles []game.StudentProfile
	if err := r.db.Model(&game.StudentProfile{}).
		Order("stars DESC").
		Order("wins DESC").
		Limit(limit).
		Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *sqliteRepository) GetStudentProfile(studentID string) (*game.StudentProfile, error) {
	studentID = keys.ActorKey(studentID)
	var p game.StudentProfile
	if err := r.db.Where("student_id = ?", studentID).First(&p).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return &game.StudentProfile{StudentID: studentID}, nil
		}
		return nil, err
	}
	return &p, nil
}
