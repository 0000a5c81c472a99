package server

import (
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/connect4/internal/game"
)

// session is one two-player game. Owned exclusively by the reactor: clients
// hold only the session id, so no locking is needed.
type session struct {
	id uuid.UUID

	// a moves first (player 1), b second (player 2)
	a, b uuid.UUID

	// acquire flags: set when the respective client enters Game phase.
	// The game becomes playable only when both are true.
	aAcquired, bAcquired bool

	board     *game.Board
	createdAt time.Time
}

// player returns the engine player number for id (1 for a, 2 for b),
// the opponent's client id, and whether id participates at all.
func (s *session) player(id uuid.UUID) (uint8, uuid.UUID, bool) {
	switch id {
	case s.a:
		return 1, s.b, true
	case s.b:
		return 2, s.a, true
	default:
		return 0, uuid.Nil, false
	}
}

// other returns the opposing participant of id.
func (s *session) other(id uuid.UUID) uuid.UUID {
	if id == s.a {
		return s.b
	}
	return s.a
}
