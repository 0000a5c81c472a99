package server

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrDeadListener is returned by the mailbox when the accept side has closed
// the new-connection channel. Fatal to the whole server.
var ErrDeadListener = errors.New("server: connection listener closed")

// signalWake nudges the reactor out of its mailbox wait. Sticky with
// capacity one, so concurrent readers never block here.
func (s *Server) signalWake() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// waitForEvents is the server mailbox: it returns as soon as at least one
// client has a queued event or a new connection has been registered,
// collecting at most one event per client. When nothing is available it
// blocks on the wake signal.
func (s *Server) waitForEvents(ctx context.Context) error {
	for {
		ready := false

		// Drain new-connection arrivals fully.
	drain:
		for {
			select {
			case add, ok := <-s.newClients:
				if !ok {
					return ErrDeadListener
				}
				s.register(add)
				ready = true
			default:
				break drain
			}
		}

		// Collect at most one pending event per client.
		for _, c := range s.clients {
			if c.queued != nil {
				ready = true
				continue
			}
			if c.inbox == nil {
				continue
			}
			select {
			case m, ok := <-c.inbox:
				if !ok {
					// Reader loop exited: the connection is dead.
					c.queued = msgSocketDie{}
					c.inbox = nil
				} else {
					c.queued = m
				}
				ready = true
			default:
			}
		}

		if ready {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.wake:
		case add, ok := <-s.newClients:
			if !ok {
				return ErrDeadListener
			}
			s.register(add)
			return nil
		}
	}
}

// register allocates a ClientId for a new connection and adds it to the
// client table in Login phase.
func (s *Server) register(add clientAdd) {
	id := uuid.New()
	s.clients[id] = &client{
		id:    id,
		phase: phaseLogin,
		conn:  add.conn,
		inbox: add.inbox,
	}
}
