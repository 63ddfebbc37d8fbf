package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/game"
)

type questionEntry struct {
	Prompt        string   `json:"question_text"`
	Choices       []string `json:"choices"`
	CorrectAnswer string   `json:"correct_answer"`
	BloomsLevel   string   `json:"blooms_level"`
}

type rawConfig struct {
	QuestionList []questionEntry `json:"question_list"`
	Server       *struct {
		Address string `json:"address"`
	} `json:"server"`
	// Room TTL in minutes; finished or abandoned rooms older than this are
	// swept. Defaults to 30.
	RoomTTLMinutes int `json:"room_ttl_minutes"`
}

// LoadedConfig contains the question bank to seed and server settings.
type LoadedConfig struct {
	Questions      []game.QuestionRecord
	ServerAddress  string
	RoomTTLMinutes int
}

// LoadConfig reads the configuration file at path. It requires the key
// `question_list` (snake_case) with at least one entry.
func LoadConfig(path string) (*LoadedConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var rc rawConfig
	if err := json.Unmarshal(b, &rc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	entries := rc.QuestionList
	if len(entries) == 0 {
		return nil, fmt.Errorf("config file %s: question_list is empty (provide 'question_list' array)", path)
	}

	out := make([]game.QuestionRecord, 0, len(entries))
	for i, q := range entries {
		if strings.TrimSpace(q.Prompt) == "" {
			return nil, fmt.Errorf("config file %s: question entry %d missing 'question_text'", path, i)
		}
		if len(q.Choices) != 4 {
			return nil, fmt.Errorf("config file %s: question entry %d must have exactly 4 choices", path, i)
		}
		if strings.TrimSpace(q.CorrectAnswer) == "" {
			return nil, fmt.Errorf("config file %s: question entry %d missing 'correct_answer'", path, i)
		}
		out = append(out, game.QuestionRecord{
			Prompt:          q.Prompt,
			Choices:         q.Choices,
			CorrectAnswer:   q.CorrectAnswer,
			DifficultyLabel: q.BloomsLevel,
		})
	}

	addr := ":8080"
	if rc.Server != nil && rc.Server.Address != "" {
		addr = rc.Server.Address
	}
	ttl := rc.RoomTTLMinutes
	if ttl <= 0 {
		ttl = 30
	}

	return &LoadedConfig{Questions: out, ServerAddress: addr, RoomTTLMinutes: ttl}, nil
}
