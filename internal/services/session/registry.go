// Package session tracks the games that are currently accepting or awaiting
// reactions, indexed by code and by announcement message.
package session

import (
	"slices"
	"sync"

	"github.com/mcoot/scrimbot/internal/model"
)

// Session is the live state of one non-terminal game
type Session struct {
	mu   sync.Mutex
	game model.Game
}

// Do runs fn while holding the session lock.
// Changes fn makes to the game are kept.
func (s *Session) Do(fn func(game *model.Game) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.game)
}

// Snapshot returns a copy of the session's game
func (s *Session) Snapshot() model.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.game
	g.WinnerEpicNames = slices.Clone(s.game.WinnerEpicNames)
	return g
}

// Registry holds the active sessions
type Registry struct {
	mu        sync.RWMutex
	sessions  map[model.GameCode]*Session
	byMessage map[string]model.GameCode
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		sessions:  make(map[model.GameCode]*Session),
		byMessage: make(map[string]model.GameCode),
	}
}

// Register adds a session for the game.
// Fails with ErrGameAlreadyActive if the code is already registered.
func (r *Registry) Register(game *model.Game) (*Session, error) {
	if game.Status.IsTerminal() {
		return nil, model.ErrGameNotActive
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[game.Code]; exists {
		return nil, model.ErrGameAlreadyActive
	}

	sess := &Session{game: *game}
	r.sessions[game.Code] = sess
	if game.AnnounceMessageID != "" {
		r.byMessage[game.AnnounceMessageID] = game.Code
	}
	return sess, nil
}

// Get returns the session for a code
func (r *Registry) Get(code model.GameCode) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[code]
	return sess, ok
}

// GetByMessage returns the session whose announcement is the given message
func (r *Registry) GetByMessage(messageID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	code, ok := r.byMessage[messageID]
	if !ok {
		return nil, false
	}
	sess, ok := r.sessions[code]
	return sess, ok
}

// SetStatus updates the status of a registered session.
// A terminal status removes the session.
func (r *Registry) SetStatus(code model.GameCode, status model.GameStatus) error {
	if status.IsTerminal() {
		if _, ok := r.Remove(code); !ok {
			return model.ErrGameNotActive
		}
		return nil
	}

	sess, ok := r.Get(code)
	if !ok {
		return model.ErrGameNotActive
	}
	return sess.Do(func(game *model.Game) error {
		game.Status = status
		return nil
	})
}

// Remove drops a session and its message index entry
func (r *Registry) Remove(code model.GameCode) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[code]
	if !ok {
		return nil, false
	}
	delete(r.sessions, code)
	for msgID, c := range r.byMessage {
		if c == code {
			delete(r.byMessage, msgID)
		}
	}
	return sess, true
}

// Codes returns the registered codes in sorted order
func (r *Registry) Codes() []model.GameCode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	codes := make([]model.GameCode, 0, len(r.sessions))
	for code := range r.sessions {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}

// Len returns the number of registered sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Rehydrate registers the non-terminal games among games and returns how
// many were added. Codes already registered are skipped.
func (r *Registry) Rehydrate(games []*model.Game) int {
	added := 0
	for _, game := range games {
		if _, err := r.Register(game); err == nil {
			added++
		}
	}
	return added
}
