package matchmaking

import (
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/keys"
	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/logging"
)

// banSteps is the escalating ban duration table in seconds, indexed by
// strike count and clamped at the last entry.
var banSteps = []int{
	60,    // 1st offense: 1 minute
	180,   // 2nd offense: 3 minutes
	300,   // 3rd offense: 5 minutes
	600,   // 4th offense: 10 minutes
	1800,  // 5th offense: 30 minutes
	3600,  // 6th offense: 1 hour
	21600, // 7th offense: 6 hours
	86400, // 8th offense: 1 day
}

// strikeWindow is how recent the previous offense must be for the strike
// counter to escalate instead of resetting.
const strikeWindow = 24 * time.Hour

const lobbyIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

type ban struct {
	until      time.Time
	strikes    int
	lastStrike time.Time
}

// BanInfo is the caller-facing projection of an active ban.
type BanInfo struct {
	Until   time.Time `json:"until"`
	Seconds int       `json:"seconds"`
	Strikes int       `json:"strikes"`
}

// Result describes the outcome of a join or status call.
type Result struct {
	Matched  bool     `json:"matched"`
	Opponent string   `json:"opponent,omitempty"`
	LobbyID  string   `json:"lobbyId,omitempty"`
	Banned   bool     `json:"banned,omitempty"`
	Ban      *BanInfo `json:"ban,omitempty"`
}

// Service is the process-wide matchmaking queue. It exclusively owns the
// waiting list and the pairing, lobby, ban and acceptance maps; all access
// is serialized behind one mutex. There is no cross-process coordination.
type Service struct {
	mu      sync.Mutex
	queue   []string
	matches map[string]string
	lobbies map[string]string
	bans    map[string]*ban
	accepts map[string]map[string]bool

	now        func() time.Time
	newLobbyID func() string
}

// NewService creates an empty matchmaking queue.
func NewService() *Service {
	return &Service{
		matches: make(map[string]string),
		lobbies: make(map[string]string),
		bans:    make(map[string]*ban),
		accepts: make(map[string]map[string]bool),
		now:     time.Now,
		newLobbyID: func() string {
			return "lobby_" + gonanoid.MustGenerate(lobbyIDAlphabet, 10)
		},
	}
}

// Join enqueues the student or pairs them with a waiting opponent. A banned
// student is reported and not enqueued; a student already paired gets their
// existing pairing back; a student already waiting is a no-op.
func (s *Service) Join(studentID string) Result {
	studentID = keys.ActorKey(studentID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if b := s.activeBan(studentID); b != nil {
		return Result{Banned: true, Ban: b}
	}
	if opp, ok := s.matches[studentID]; ok && opp != studentID {
		return Result{Matched: true, Opponent: opp, LobbyID: s.lobbyFor(studentID, opp)}
	}
	for _, waiting := range s.queue {
		if waiting == studentID {
			return Result{}
		}
	}
	if len(s.queue) > 0 {
		opponent := s.queue[0]
		s.queue = s.queue[1:]
		if opponent == studentID {
			// Self-pairing is never allowed.
			return Result{}
		}
		lobbyID := s.newLobbyID()
		s.matches[studentID] = opponent
		s.matches[opponent] = studentID
		s.lobbies[studentID] = lobbyID
		s.lobbies[opponent] = lobbyID
		logging.Info("matchmaking pair created", logging.Fields{"student_id": studentID, "opponent": opponent, "lobby_id": lobbyID})
		return Result{Matched: true, Opponent: opponent, LobbyID: lobbyID}
	}
	s.queue = append(s.queue, studentID)
	return Result{}
}

// Leave removes the student from the waiting list, clears any pairing and
// lobby association, and purges their acceptance entries from every lobby.
func (s *Service) Leave(studentID string) {
	studentID = keys.ActorKey(studentID)
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, waiting := range s.queue {
		if waiting == studentID {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			break
		}
	}
	// A pairing dissolves for both sides: the remaining partner must not
	// stay matched to someone who left.
	if opp, ok := s.matches[studentID]; ok {
		delete(s.matches, opp)
		delete(s.lobbies, opp)
	}
	delete(s.matches, studentID)
	delete(s.lobbies, studentID)
	for lobbyID, entries := range s.accepts {
		delete(entries, studentID)
		if len(entries) == 0 {
			delete(s.accepts, lobbyID)
		}
	}
}

// Status is the read-only projection of the pairing/ban state; unlike Join
// it never mutates the waiting list.
func (s *Service) Status(studentID string) Result {
	studentID = keys.ActorKey(studentID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if b := s.activeBan(studentID); b != nil {
		return Result{Banned: true, Ban: b}
	}
	if opp, ok := s.matches[studentID]; ok && opp != studentID {
		return Result{Matched: true, Opponent: opp, LobbyID: s.lobbyFor(studentID, opp)}
	}
	return Result{}
}

// Accept marks the student's acceptance for the lobby and reports whether
// every expected party has now accepted. Deciding the transition to game
// start stays with the caller.
func (s *Service) Accept(lobbyID, studentID string) (allAccepted bool) {
	lobbyID = keys.ActorKey(lobbyID)
	studentID = keys.ActorKey(studentID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accepts[lobbyID] == nil {
		s.accepts[lobbyID] = make(map[string]bool)
	}
	s.accepts[lobbyID][studentID] = true

	entries := s.accepts[lobbyID]
	if len(entries) < 2 {
		return false
	}
	for _, ok := range entries {
		if !ok {
			return false
		}
	}
	return true
}

// AcceptedParties returns the students who accepted the lobby.
func (s *Service) AcceptedParties(lobbyID string) []string {
	lobbyID = keys.ActorKey(lobbyID)
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, 2)
	for id, ok := range s.accepts[lobbyID] {
		if ok {
			out = append(out, id)
		}
	}
	return out
}

// ClearAccepts drops the acceptance state for a lobby. Called once the
// battle session for the lobby has been created.
func (s *Service) ClearAccepts(lobbyID string) {
	lobbyID = keys.ActorKey(lobbyID)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accepts, lobbyID)
}

// RecordAbandon applies the progressive penalty for an accept-handshake
// timeout. Strikes escalate only when the previous strike landed within the
// 24h window; otherwise the count resets to a first offense.
func (s *Service) RecordAbandon(studentID string) BanInfo {
	studentID = keys.ActorKey(studentID)
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	strikes := 0
	if prev, ok := s.bans[studentID]; ok && now.Sub(prev.lastStrike) < strikeWindow {
		strikes = prev.strikes + 1
		if strikes > len(banSteps)-1 {
			strikes = len(banSteps) - 1
		}
	}
	duration := time.Duration(banSteps[strikes]) * time.Second
	s.bans[studentID] = &ban{until: now.Add(duration), strikes: strikes, lastStrike: now}
	logging.Info("matchmaking ban recorded", logging.Fields{"student_id": studentID, "strikes": strikes, "seconds": banSteps[strikes]})
	return BanInfo{Until: now.Add(duration), Seconds: banSteps[strikes], Strikes: strikes}
}

// BanStatus reports the student's active ban, if any. Expired bans are
// removed lazily on read.
func (s *Service) BanStatus(studentID string) *BanInfo {
	studentID = keys.ActorKey(studentID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeBan(studentID)
}

// ClearBan removes any ban record for the student.
func (s *Service) ClearBan(studentID string) {
	studentID = keys.ActorKey(studentID)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.bans, studentID)
}

// activeBan must be called with the mutex held.
func (s *Service) activeBan(studentID string) *BanInfo {
	b, ok := s.bans[studentID]
	if !ok {
		return nil
	}
	now := s.now()
	if !b.until.After(now) {
		delete(s.bans, studentID)
		return nil
	}
	remaining := int(b.until.Sub(now).Seconds())
	if remaining < 1 {
		remaining = 1
	}
	return &BanInfo{Until: b.until, Seconds: remaining, Strikes: b.strikes}
}

// lobbyFor must be called with the mutex held.
func (s *Service) lobbyFor(studentID, opponent string) string {
	if id, ok := s.lobbies[studentID]; ok {
		return id
	}
	return s.lobbies[opponent]
}
