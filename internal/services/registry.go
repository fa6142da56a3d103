package services

import (
	"fmt"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Registry hands out one Session per browser, keyed by the uuid kept in the
// session cookie. Least recently seen sessions are dropped past size; a
// returning browser then starts over with a fresh query state.
type Registry struct {
	board     *Board
	clipboard Clipboard
	sessions  *lru.Cache[string, *Session]
}

func NewRegistry(board *Board, clipboard Clipboard, size int) (*Registry, error) {
	cache, err := lru.New[string, *Session](size)
	if err != nil {
		return nil, fmt.Errorf("session registry: %w", err)
	}
	return &Registry{board: board, clipboard: clipboard, sessions: cache}, nil
}

// Acquire returns the session for id, creating it when needed. Ids that are
// not uuids are replaced, so the returned id is the one to store.
func (r *Registry) Acquire(id string) (string, *Session) {
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	if s, ok := r.sessions.Get(id); ok {
		return id, s
	}
	s := NewSession(r.board, r.clipboard)
	if prev, ok, _ := r.sessions.PeekOrAdd(id, s); ok {
		return id, prev
	}
	return id, s
}

func (r *Registry) Len() int { return r.sessions.Len() }
