package server

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/udisondev/connect4/internal/protocol"
)

// readLoop owns the read half of one connection. It decodes exactly one
// packet per iteration, selecting the serverbound family from the phase it
// tracks locally, and forwards parsed events into the inbox. Phase advances
// only on the Acquire* packets — never inferred from anything else.
//
// The inbox is closed on exit; the mailbox turns that into msgSocketDie.
func (s *Server) readLoop(c *conn, inbox chan<- clientMessage) {
	defer close(inbox)

	br := bufio.NewReader(c.nc)
	r := protocol.NewReader(br)
	ph := phaseLogin

	readTimeout := s.cfg.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = defaultReadTimeout
	}

	post := func(m clientMessage) {
		inbox <- m
		s.signalWake()
	}

	for {
		// Keep-alive enforcement: a connection that stays silent past the
		// deadline is treated as dead.
		if err := c.nc.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
			slog.Warn("set read deadline failed", "client", c.ip, "error", err)
			return
		}

		switch ph {
		case phaseLogin:
			pkt, err := protocol.DecodeServerboundLogin(r)
			if err != nil {
				logReadExit(c.ip, err)
				return
			}
			switch pkt := pkt.(type) {
			case protocol.KeepAlive:
				post(msgKeepAlive{})
			case protocol.RequestUsername:
				slog.Debug("username requested", "client", c.ip, "username", pkt.Username, "txn", pkt.TransactionID)
				post(msgRequestUsername{username: pkt.Username, txn: pkt.TransactionID})
			case protocol.AcquireUsername:
				post(msgAcquireLobby{})
				ph = phaseLobby
			}

		case phaseLobby, phaseLookingForGame, phaseWaitingForGame:
			pkt, err := protocol.DecodeServerboundLobby(r)
			if err != nil {
				logReadExit(c.ip, err)
				return
			}
			switch pkt.(type) {
			case protocol.KeepAlive:
				post(msgKeepAlive{})
			case protocol.RequestGame:
				post(msgLookForGame{})
			case protocol.AcquireGame:
				post(msgAcquireGame{})
				ph = phaseGame
			}

		case phaseGame:
			pkt, err := protocol.DecodeServerboundGame(r)
			if err != nil {
				logReadExit(c.ip, err)
				return
			}
			switch pkt := pkt.(type) {
			case protocol.KeepAlive:
				post(msgKeepAlive{})
			case protocol.PlacePiece:
				post(msgPlacePiece{column: pkt.Column, txn: pkt.TransactionID})
			case protocol.AcquireLobby:
				post(msgAcquireLobby{})
				ph = phaseLobby
			}
		}
	}
}

// logReadExit classifies a reader loop termination. EOF at a packet boundary
// is a clean disconnect; everything else is fatal to the connection.
func logReadExit(ip string, err error) {
	var netErr net.Error
	switch {
	case errors.Is(err, io.EOF):
		slog.Info("client disconnected", "client", ip)
	case errors.As(err, &netErr) && netErr.Timeout():
		slog.Warn("client timed out", "client", ip)
	default:
		slog.Error("read loop error", "client", ip, "error", err)
	}
}
