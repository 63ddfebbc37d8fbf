package storage

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/game"
	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/logging"
)

// OpenAndMigrate opens the SQLite database, keeps the schema updated via
// AutoMigrate and seeds the question bank from the config file when the
// questions table is empty.
func OpenAndMigrate(dataSourceName string, questionsFromConfig []game.QuestionRecord) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dataSourceName), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&game.QuestionRecord{},
		&game.Session{},
		&game.StudentProfile{},
		&game.MatchResult{},
	)
	if err != nil {
		return nil, err
	}

	seedDefaultQuestions(db, questionsFromConfig)
	return db, nil
}

// seedDefaultQuestions inserts the configured question bank on first run.
// An already-populated table is left alone so edits made directly in the
// DB survive restarts.
func seedDefaultQuestions(db *gorm.DB, questionsFromConfig []game.QuestionRecord) {
	var count int64
	db.Model(&game.QuestionRecord{}).Count(&count)
	if count > 0 {
		return
	}
	if len(questionsFromConfig) == 0 {
		logging.Warn("no questions in config; deck building will fail until the bank is populated", nil, nil)
		return
	}
	if err := db.Create(&questionsFromConfig).Error; err != nil {
		logging.Error("failed to seed question bank", err, nil)
		return
	}
	logging.Info("question bank seeded", logging.Fields{"count": len(questionsFromConfig)})
}
