package server

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWaitForEventsReturnsDeadListener(t *testing.T) {
	s := newTestServer()
	close(s.newClients)

	err := s.waitForEvents(context.Background())
	if !errors.Is(err, ErrDeadListener) {
		t.Fatalf("got %v, want ErrDeadListener", err)
	}
}

func TestWaitForEventsRegistersNewConnection(t *testing.T) {
	s := newTestServer()
	c := addClient(t, s, phaseLogin, "") // pre-existing, idle

	go func() {
		s.newClients <- clientAdd{conn: c.cl.conn, inbox: make(chan clientMessage, 1)}
	}()

	if err := s.waitForEvents(context.Background()); err != nil {
		t.Fatalf("waitForEvents: %v", err)
	}
	if len(s.clients) != 2 {
		t.Fatalf("clients: got %d, want 2", len(s.clients))
	}
}

func TestWaitForEventsCollectsOnePerClient(t *testing.T) {
	s := newTestServer()
	c := addClient(t, s, phaseLogin, "")

	c.cl.inbox <- msgKeepAlive{}
	c.cl.inbox <- msgKeepAlive{}

	if err := s.waitForEvents(context.Background()); err != nil {
		t.Fatalf("waitForEvents: %v", err)
	}
	if c.cl.queued == nil {
		t.Fatalf("no event collected")
	}
	if len(c.cl.inbox) != 1 {
		t.Fatalf("collected more than one event: %d left", len(c.cl.inbox))
	}
}

func TestWaitForEventsSynthesizesSocketDie(t *testing.T) {
	s := newTestServer()
	c := addClient(t, s, phaseLogin, "")

	close(c.cl.inbox)

	if err := s.waitForEvents(context.Background()); err != nil {
		t.Fatalf("waitForEvents: %v", err)
	}
	if _, ok := c.cl.queued.(msgSocketDie); !ok {
		t.Fatalf("queued: got %T, want msgSocketDie", c.cl.queued)
	}
	if c.cl.inbox != nil {
		t.Fatalf("dead inbox not detached")
	}
}

func TestWaitForEventsHonorsContext(t *testing.T) {
	s := newTestServer()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.waitForEvents(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}

func TestSignalWakeUnblocksWait(t *testing.T) {
	s := newTestServer()
	c := addClient(t, s, phaseLogin, "")

	done := make(chan error, 1)
	go func() {
		done <- s.waitForEvents(context.Background())
	}()

	// Let the waiter reach its blocking select, then deliver an event the way
	// a reader loop would: inbox first, wake second.
	time.Sleep(20 * time.Millisecond)
	c.cl.inbox <- msgLookForGame{}
	s.signalWake()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("waitForEvents: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("waitForEvents did not wake")
	}
	if _, ok := c.cl.queued.(msgLookForGame); !ok {
		t.Fatalf("queued: got %T, want msgLookForGame", c.cl.queued)
	}
}
