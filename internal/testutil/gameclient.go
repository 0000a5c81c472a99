package testutil

import (
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/udisondev/connect4/internal/protocol"
)

// GameClient is a test helper that speaks the wire protocol against a real
// server. It tracks the connection phase itself, so callers drive the
// login → lobby → game flow explicitly.
type GameClient struct {
	t    testing.TB
	conn net.Conn
	r    *protocol.Reader
	w    *protocol.Writer
}

// NewGameClient connects to a running server.
func NewGameClient(t testing.TB, addr string) (*GameClient, error) {
	t.Helper()

	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", addr, err)
	}

	wrapped := NewConnWithDeadline(conn, 5*time.Second)

	client := &GameClient{
		t:    t,
		conn: conn,
		r:    protocol.NewReader(wrapped),
		w:    protocol.NewWriter(wrapped),
	}

	t.Cleanup(func() {
		_ = conn.Close()
	})

	return client, nil
}

// Close closes the underlying connection.
func (c *GameClient) Close() error {
	return c.conn.Close()
}

// SendLogin writes one ServerboundLogin packet.
func (c *GameClient) SendLogin(p protocol.ServerboundLogin) error {
	return protocol.EncodeServerboundLogin(c.w, p)
}

// SendLobby writes one ServerboundLobby packet.
func (c *GameClient) SendLobby(p protocol.ServerboundLobby) error {
	return protocol.EncodeServerboundLobby(c.w, p)
}

// SendGame writes one ServerboundGame packet.
func (c *GameClient) SendGame(p protocol.ServerboundGame) error {
	return protocol.EncodeServerboundGame(c.w, p)
}

// ReadLogin reads one ClientboundLogin packet.
func (c *GameClient) ReadLogin() (protocol.ClientboundLogin, error) {
	return protocol.DecodeClientboundLogin(c.r)
}

// ReadLobby reads one ClientboundLobby packet.
func (c *GameClient) ReadLobby() (protocol.ClientboundLobby, error) {
	return protocol.DecodeClientboundLobby(c.r)
}

// ReadGame reads one ClientboundGame packet.
func (c *GameClient) ReadGame() (protocol.ClientboundGame, error) {
	return protocol.DecodeClientboundGame(c.r)
}

// ExpectUsernameResult reads Login packets, skipping keep-alives, until a
// UsernameResult arrives.
func (c *GameClient) ExpectUsernameResult() (protocol.UsernameResult, error) {
	for {
		pkt, err := c.ReadLogin()
		if err != nil {
			return protocol.UsernameResult{}, err
		}
		switch pkt := pkt.(type) {
		case protocol.KeepAlive:
			continue
		case protocol.UsernameResult:
			return pkt, nil
		default:
			return protocol.UsernameResult{}, fmt.Errorf("unexpected login packet %T", pkt)
		}
	}
}

// ExpectGameFound reads Lobby packets, skipping keep-alives, until a
// GameFound arrives.
func (c *GameClient) ExpectGameFound() error {
	for {
		pkt, err := c.ReadLobby()
		if err != nil {
			return err
		}
		switch pkt := pkt.(type) {
		case protocol.KeepAlive:
			continue
		case protocol.GameFound:
			return nil
		default:
			return fmt.Errorf("unexpected lobby packet %T", pkt)
		}
	}
}

// ExpectGamePacket reads Game packets, skipping keep-alives, and returns
// the first non-keep-alive packet.
func (c *GameClient) ExpectGamePacket() (protocol.ClientboundGame, error) {
	for {
		pkt, err := c.ReadGame()
		if err != nil {
			return nil, err
		}
		if _, ok := pkt.(protocol.KeepAlive); ok {
			continue
		}
		return pkt, nil
	}
}

// Login claims a username and acknowledges it, leaving the connection in
// Lobby phase. Fails the test on any protocol error.
func (c *GameClient) Login(username string) {
	c.t.Helper()

	if err := c.SendLogin(protocol.RequestUsername{Username: username, TransactionID: 1}); err != nil {
		c.t.Fatalf("sending RequestUsername: %v", err)
	}
	result, err := c.ExpectUsernameResult()
	if err != nil {
		c.t.Fatalf("reading UsernameResult: %v", err)
	}
	if !result.Success {
		c.t.Fatalf("username %q rejected", username)
	}
	if err := c.SendLogin(protocol.AcquireUsername{}); err != nil {
		c.t.Fatalf("sending AcquireUsername: %v", err)
	}
}

// JoinGame requests a game, waits for GameFound and acknowledges it,
// leaving the connection in Game phase.
func (c *GameClient) JoinGame() {
	c.t.Helper()

	if err := c.SendLobby(protocol.RequestGame{}); err != nil {
		c.t.Fatalf("sending RequestGame: %v", err)
	}
	if err := c.ExpectGameFound(); err != nil {
		c.t.Fatalf("waiting for GameFound: %v", err)
	}
	if err := c.SendLobby(protocol.AcquireGame{}); err != nil {
		c.t.Fatalf("sending AcquireGame: %v", err)
	}
}
