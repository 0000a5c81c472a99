package client

import (
	"context"
	"log/slog"
	"time"

	"github.com/udisondev/connect4/internal/config"
	"github.com/udisondev/connect4/internal/protocol"
)

// Driver is the client phase machine. Each tick it drains queued UI
// requests, drains decoded inbound packets, and emits a phase-appropriate
// keep-alive. It owns the write half of the connection and the phase.
type Driver struct {
	cfg      config.Client
	conn     *Conn
	requests <-chan Request
	events   chan<- Event

	// Outstanding transactions, keyed by id, scoped per request kind.
	// The server echoes ids verbatim.
	pendingUsernames  map[int32]string
	pendingPlacements map[int32]uint8
}

// NewDriver creates a phase driver over an established connection.
// Requests flow in from the UI layer; Events flow back to it.
func NewDriver(cfg config.Client, conn *Conn, requests <-chan Request, events chan<- Event) *Driver {
	return &Driver{
		cfg:               cfg,
		conn:              conn,
		requests:          requests,
		events:            events,
		pendingUsernames:  make(map[int32]string),
		pendingPlacements: make(map[int32]uint8),
	}
}

// Run drives the tick loop until the UI closes its request channel, the
// connection drops, or ctx is cancelled. A closed request channel or a
// closed connection is a clean exit.
func (d *Driver) Run(ctx context.Context) error {
	tick := d.cfg.TickInterval
	if tick <= 0 {
		tick = 50 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		for {
			req, ok, closed := tryRecv(d.requests)
			if closed {
				return nil
			}
			if !ok {
				break
			}
			if err := d.handleRequest(req); err != nil {
				return err
			}
		}

		for {
			pkt, ok, closed := tryRecv(d.conn.packets)
			if closed {
				return nil
			}
			if !ok {
				break
			}
			if err := d.handlePacket(pkt); err != nil {
				return err
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if err := d.sendKeepAlive(); err != nil {
			return err
		}
	}
}

// tryRecv receives without blocking, distinguishing an empty channel from a
// closed one.
func tryRecv[T any](ch <-chan T) (v T, ok, closed bool) {
	select {
	case v, open := <-ch:
		if !open {
			return v, false, true
		}
		return v, true, false
	default:
		return v, false, false
	}
}

// nextTransactionID allocates one more than the highest outstanding id,
// starting from 1.
func nextTransactionID[V any](pending map[int32]V) int32 {
	var maxID int32
	for id := range pending {
		if id > maxID {
			maxID = id
		}
	}
	return maxID + 1
}

func (d *Driver) handleRequest(req Request) error {
	switch req := req.(type) {
	case RequestUsername:
		txn := nextTransactionID(d.pendingUsernames)
		d.pendingUsernames[txn] = req.Username
		return d.conn.sendLogin(protocol.RequestUsername{
			Username:      req.Username,
			TransactionID: txn,
		})
	case SearchForGame:
		return d.conn.sendLobby(protocol.RequestGame{})
	case PlacePiece:
		txn := nextTransactionID(d.pendingPlacements)
		d.pendingPlacements[txn] = req.Column
		return d.conn.sendGame(protocol.PlacePiece{
			Column:        req.Column,
			TransactionID: txn,
		})
	default:
		return nil
	}
}

func (d *Driver) handlePacket(pkt protocol.Clientbound) error {
	switch pkt := pkt.(type) {
	case protocol.KeepAlive:
		return nil

	case protocol.UsernameResult:
		username, known := d.pendingUsernames[pkt.TransactionID]
		if !known {
			slog.Warn("username result with unknown transaction", "txn", pkt.TransactionID)
			return nil
		}
		delete(d.pendingUsernames, pkt.TransactionID)
		if pkt.Success {
			clear(d.pendingUsernames)
			if err := d.conn.sendLogin(protocol.AcquireUsername{}); err != nil {
				return err
			}
			d.conn.setPhase(PhaseLobby)
		}
		d.emit(EventUsernameResult{Success: pkt.Success, Username: username})
		return nil

	case protocol.GameFound:
		d.emit(EventTransferToGame{})
		if err := d.conn.sendLobby(protocol.AcquireGame{}); err != nil {
			return err
		}
		d.conn.setPhase(PhaseGame)
		return nil

	case protocol.OpponentJoin:
		d.emit(EventOpponentJoin{Username: pkt.Username, IGoFirst: pkt.IGoFirst})
		return nil

	case protocol.PlacePieceAck:
		column, known := d.pendingPlacements[pkt.TransactionID]
		if !known {
			slog.Warn("placement ack with unknown transaction", "txn", pkt.TransactionID)
			return nil
		}
		clear(d.pendingPlacements)
		d.emit(EventPiecePlaced{Me: true, Column: column})
		return nil

	case protocol.OpponentPlacedPiece:
		d.emit(EventPiecePlaced{Me: false, Column: pkt.Column})
		return nil

	case protocol.EarlyExit:
		d.emit(EventExitToLobby{})
		if err := d.conn.sendGame(protocol.AcquireLobby{}); err != nil {
			return err
		}
		d.conn.setPhase(PhaseLobby)
		return nil

	case protocol.PlayerWin:
		if pkt.Me {
			d.emit(EventWinGame{})
		} else {
			d.emit(EventLoseGame{})
		}
		if err := d.conn.sendGame(protocol.AcquireLobby{}); err != nil {
			return err
		}
		d.conn.setPhase(PhaseLobby)
		return nil

	default:
		return nil
	}
}

func (d *Driver) sendKeepAlive() error {
	switch d.conn.Phase() {
	case PhaseLogin:
		return d.conn.sendLogin(protocol.KeepAlive{})
	case PhaseLobby:
		return d.conn.sendLobby(protocol.KeepAlive{})
	case PhaseGame:
		return d.conn.sendGame(protocol.KeepAlive{})
	default:
		return nil
	}
}

func (d *Driver) emit(ev Event) {
	d.events <- ev
}
