package service

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/constants"
	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/deck"
	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/game"
	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/logging"
	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/storage"
)

var (
	ErrSessionNotFound    = errors.New("game session not found")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrPlayerNotInSession = errors.New("player not in this game")
	ErrInvalidCard        = errors.New("card not found in hand")
	ErrPowerUpUnavailable = errors.New("power-up not available")
	ErrGameOver           = errors.New("game is already finished")
	ErrInvalidAction      = errors.New("invalid action type")
	ErrInvalidPlayers     = errors.New("exactly two distinct players required")
)

// StarDelta is the arena-star swing applied to each side when a match ends.
const StarDelta = 8

// Publisher fans events out to connected clients. ToRoom reaches every
// participant of a room; ToActor reaches one student's connection. A nil
// Publisher is valid and makes the engine silent.
type Publisher interface {
	ToRoom(roomID, event string, payload interface{})
	ToActor(actorID, event string, payload interface{})
}

// Engine owns every live battle session. The in-memory registry is the
// authority while the process runs; the repository row is a best-effort
// mirror used for crash recovery and cross-restart hydration.
type Engine struct {
	repo  storage.Repository
	pub   Publisher
	decks *deck.Builder
	now   func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand

	mu          sync.Mutex
	games       map[string]*game.Session
	lobbyToRoom map[string]string
	roomLocks   map[string]*sync.Mutex

	initGroup singleflight.Group
}

// NewEngine creates an engine with an empty registry. pub may be nil.
func NewEngine(repo storage.Repository, pub Publisher, rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{
		repo:        repo,
		pub:         pub,
		decks:       deck.NewBuilder(rng),
		now:         time.Now,
		rng:         rng,
		games:       make(map[string]*game.Session),
		lobbyToRoom: make(map[string]string),
		roomLocks:   make(map[string]*sync.Mutex),
	}
}

// roll draws a uniform float in [0,1). The shared source is guarded because
// rooms resolve actions concurrently.
func (e *Engine) roll() float64 {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return e.rng.Float64()
}

func (e *Engine) intn(n int) int {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return e.rng.Intn(n)
}

// roomLock returns the mutex serializing all mutations of one room.
func (e *Engine) roomLock(roomID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.roomLocks[roomID]
	if !ok {
		l = &sync.Mutex{}
		e.roomLocks[roomID] = l
	}
	return l
}

// session returns the live session for a room, hydrating it from the mirror
// when the registry lost it (for example after a restart).
func (e *Engine) session(roomID string) (*game.Session, error) {
	e.mu.Lock()
	s, ok := e.games[roomID]
	e.mu.Unlock()
	if ok {
		return s, nil
	}

	restored, err := e.repo.GetSessionByRoomID(roomID)
	if err != nil || restored == nil {
		return nil, ErrSessionNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	// Another caller may have hydrated while we read the mirror.
	if s, ok := e.games[roomID]; ok {
		return s, nil
	}
	e.games[roomID] = restored
	if restored.LobbyID != "" {
		e.lobbyToRoom[restored.LobbyID] = roomID
	}
	logging.Info("session hydrated from storage", logging.Fields{constants.LogFieldRoomID: roomID})
	return restored, nil
}

// persist mirrors the session to durable storage. Failures are logged and
// swallowed: the in-memory copy stays authoritative and play continues.
func (e *Engine) persist(s *game.Session) {
	if err := e.repo.SaveSession(s); err != nil {
		logging.Warn("failed to mirror session", err, logging.Fields{constants.LogFieldRoomID: s.RoomID})
	}
}

func (e *Engine) publishRoom(roomID, event string, payload interface{}) {
	if e.pub != nil {
		e.pub.ToRoom(roomID, event, payload)
	}
}

func (e *Engine) publishActor(actorID, event string, payload interface{}) {
	if e.pub != nil {
		e.pub.ToActor(actorID, event, payload)
	}
}
