package server

import (
	"time"

	"github.com/google/uuid"
)

// phase is the server-side connection state. Looking and Waiting are
// sub-states of Lobby invisible to the wire: both exchange the Lobby
// packet family.
type phase uint8

const (
	phaseLogin phase = iota
	phaseLobby
	phaseLookingForGame
	phaseWaitingForGame
	phaseGame
)

func (p phase) String() string {
	switch p {
	case phaseLogin:
		return "login"
	case phaseLobby:
		return "lobby"
	case phaseLookingForGame:
		return "looking_for_game"
	case phaseWaitingForGame:
		return "waiting_for_game"
	case phaseGame:
		return "game"
	default:
		return "unknown"
	}
}

// client is the reactor's record of one connection. All fields are owned by
// the reactor goroutine; the reader loop touches only the inbox.
type client struct {
	id    uuid.UUID
	phase phase
	conn  *conn

	// inbox carries parsed events from the reader loop. Set to nil by the
	// mailbox once the reader has exited and msgSocketDie was synthesized.
	inbox  chan clientMessage
	queued clientMessage // at most one event per tick

	username    string    // empty until claimed
	gameID      uuid.UUID // zero when not in a game
	inGameSince time.Time // stamped at pairing; game timeouts are a TODO
}

func (c *client) inGame() bool {
	return c.gameID != uuid.Nil
}
