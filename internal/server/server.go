// Package server implements the central authoritative Connect-Four server:
// the accept loop, one reader and one writer goroutine per connection, and
// the single-threaded reactor that owns every piece of game state.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/connect4/internal/config"
)

const sendBufCap = 64

// clientAdd registers a freshly accepted connection with the reactor.
type clientAdd struct {
	conn  *conn
	inbox chan clientMessage
}

// Server accepts client connections on port 3000 and runs the game reactor.
type Server struct {
	cfg      config.Server
	sendPool *BytePool

	newClients chan clientAdd
	wake       chan struct{}

	// Reactor state. Touched only by the reactor goroutine.
	clients       map[uuid.UUID]*client
	acquiredNames map[string]uuid.UUID
	games         map[uuid.UUID]*session
	looking       []uuid.UUID // arrival-order matchmaking queue

	listener net.Listener
	mu       sync.Mutex
}

// NewServer creates a new Server.
func NewServer(cfg config.Server) *Server {
	return &Server{
		cfg:           cfg,
		sendPool:      NewBytePool(sendBufCap),
		newClients:    make(chan clientAdd),
		wake:          make(chan struct{}, 1),
		clients:       make(map[uuid.UUID]*client),
		acquiredNames: make(map[string]uuid.UUID),
		games:         make(map[uuid.UUID]*session),
	}
}

// Addr returns the address the server is listening on.
// Returns nil if the server hasn't started yet.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Close closes the listener and stops the server.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}

// Run begins listening for client connections.
// Creates a listener on cfg.BindAddress:cfg.Port and starts the accept loop
// and the reactor.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.BindAddress, s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	return s.Serve(ctx, ln)
}

// Serve accepts connections from the given listener and runs the reactor.
// Used for testing with custom listeners.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	go func() {
		<-gctx.Done()
		ln.Close()
	}()

	g.Go(func() error {
		slog.Info("server started", "address", ln.Addr())
		s.acceptLoop(gctx, ln)
		return nil
	})

	g.Go(func() error {
		return s.runReactor(gctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// acceptLoop accepts connections until the listener closes. Each connection
// gets a writePump and a readLoop; registration goes through newClients so
// the reactor assigns the ClientId. Closing newClients on exit lets the
// reactor detect a dead listener.
func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) {
	// reg covers only the registration hand-off: newClients may be closed
	// once no accepted connection is still waiting to register.
	var reg sync.WaitGroup
	defer func() {
		reg.Wait()
		close(s.newClients)
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			slog.Error("failed to accept new connection", "error", err)
			continue
		}
		reg.Add(1)
		go s.handleConnection(ctx, conn, &reg)
	}
}

func (s *Server) handleConnection(ctx context.Context, nc net.Conn, reg *sync.WaitGroup) {
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			nc.Close()
		case <-done:
		}
	}()

	c := newConn(nc, s.sendPool, s.cfg.SendQueueSize, s.cfg.WriteTimeout)
	defer c.close()

	slog.Info("new connection", "remote", c.ip)

	go c.writePump()

	inbox := make(chan clientMessage, 64)
	registered := false
	select {
	case s.newClients <- clientAdd{conn: c, inbox: inbox}:
		registered = true
	case <-ctx.Done():
	}
	reg.Done()
	if !registered {
		return
	}

	// The reader owns the read half until EOF, timeout, or a protocol error.
	s.readLoop(c, inbox)
}
