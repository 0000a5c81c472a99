// Package client implements the game client's network core: the connection
// with its phase-gated reader loop, and the phase driver that translates
// between UI events and protocol packets.
package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync/atomic"
	"time"

	"github.com/udisondev/connect4/internal/config"
	"github.com/udisondev/connect4/internal/protocol"
)

// Phase is the client's view of the connection state. It selects which
// packet family is legal in either direction.
type Phase int32

const (
	PhaseLogin Phase = iota
	PhaseLobby
	PhaseGame
)

// Conn is one client connection to the server. The reader goroutine owns
// the read half; the phase driver owns the write half and the phase.
type Conn struct {
	nc net.Conn

	// phase selects the keep-alive family for the driver. The reader loop
	// tracks its own decode phase; see readLoop.
	phase atomic.Int32

	// packets carries decoded clientbound packets from the reader to the
	// driver. Closed when the reader exits.
	packets chan protocol.Clientbound

	writeTimeout time.Duration
}

// Dial connects to the server and starts the reader loop. An initial Login
// keep-alive is sent before the driver's tick loop takes over.
func Dial(ctx context.Context, cfg config.Client) (*Conn, error) {
	d := net.Dialer{Timeout: cfg.DialTimeout}
	nc, err := d.DialContext(ctx, "tcp", cfg.ServerAddr)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", cfg.ServerAddr, err)
	}

	c := &Conn{
		nc:           nc,
		packets:      make(chan protocol.Clientbound, 64),
		writeTimeout: cfg.WriteTimeout,
	}

	if err := c.sendLogin(protocol.KeepAlive{}); err != nil {
		nc.Close()
		return nil, fmt.Errorf("sending initial keep-alive: %w", err)
	}

	go c.readLoop()

	slog.Info("connected", "server", cfg.ServerAddr)
	return c, nil
}

// Phase returns the connection's current phase.
func (c *Conn) Phase() Phase {
	return Phase(c.phase.Load())
}

func (c *Conn) setPhase(p Phase) {
	c.phase.Store(int32(p))
}

// Close closes the underlying connection. The reader loop exits and closes
// the packets channel, which the driver treats as a clean shutdown.
func (c *Conn) Close() error {
	return c.nc.Close()
}

// readLoop decodes one clientbound packet per iteration and posts it to the
// driver. The decode family comes from a phase tracked locally: packets that
// imply a transition advance it immediately, so the family is already right
// when the server's next packet arrives. Waiting for the driver's atomic
// store instead would race the decode of that packet.
func (c *Conn) readLoop() {
	defer close(c.packets)

	br := bufio.NewReader(c.nc)
	r := protocol.NewReader(br)
	ph := PhaseLogin

	for {
		var (
			pkt protocol.Clientbound
			err error
		)
		switch ph {
		case PhaseLogin:
			var p protocol.ClientboundLogin
			p, err = protocol.DecodeClientboundLogin(r)
			if err == nil {
				pkt = p.(protocol.Clientbound)
				if res, ok := p.(protocol.UsernameResult); ok && res.Success {
					// The driver always acknowledges a successful claim.
					ph = PhaseLobby
				}
			}
		case PhaseLobby:
			var p protocol.ClientboundLobby
			p, err = protocol.DecodeClientboundLobby(r)
			if err == nil {
				pkt = p.(protocol.Clientbound)
				if _, ok := p.(protocol.GameFound); ok {
					ph = PhaseGame
				}
			}
		case PhaseGame:
			var p protocol.ClientboundGame
			p, err = protocol.DecodeClientboundGame(r)
			if err == nil {
				pkt = p.(protocol.Clientbound)
				switch p.(type) {
				case protocol.EarlyExit, protocol.PlayerWin:
					ph = PhaseLobby
				}
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				slog.Info("server closed the connection")
			} else {
				slog.Error("packet read error", "error", err)
			}
			return
		}
		c.packets <- pkt
	}
}

func (c *Conn) setWriteDeadline() error {
	timeout := c.writeTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return c.nc.SetWriteDeadline(time.Now().Add(timeout))
}

func (c *Conn) sendLogin(p protocol.ServerboundLogin) error {
	if err := c.setWriteDeadline(); err != nil {
		return err
	}
	return protocol.EncodeServerboundLogin(protocol.NewWriter(c.nc), p)
}

func (c *Conn) sendLobby(p protocol.ServerboundLobby) error {
	if err := c.setWriteDeadline(); err != nil {
		return err
	}
	return protocol.EncodeServerboundLobby(protocol.NewWriter(c.nc), p)
}

func (c *Conn) sendGame(p protocol.ServerboundGame) error {
	if err := c.setWriteDeadline(); err != nil {
		return err
	}
	return protocol.EncodeServerboundGame(protocol.NewWriter(c.nc), p)
}
