package server

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/connect4/internal/game"
	"github.com/udisondev/connect4/internal/protocol"
)

// runReactor is the single-writer event loop. It alone mutates the client
// table, the name table, the game table and every write handle, so none of
// that state needs locking.
func (s *Server) runReactor(ctx context.Context) error {
	defer func() {
		for _, c := range s.clients {
			_ = c.conn.close()
		}
	}()

	for {
		if err := s.waitForEvents(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		s.tick()
	}
}

// placement defers an OpponentPlacedPiece notification to the post-event pass.
type placement struct {
	to     uuid.UUID
	column uint8
}

// tick processes at most one queued event per client, then runs the
// post-event passes in a fixed order: opponent placements, losses, ready
// pairs, matchmaking, removals.
func (s *Server) tick() {
	var (
		removals  []uuid.UUID
		gameReady [][2]uuid.UUID
		lost      []uuid.UUID
		placed    []placement
	)

	for id, c := range s.clients {
		m := c.queued
		if m == nil {
			continue
		}
		c.queued = nil

		switch m := m.(type) {
		case msgRequestUsername:
			s.handleRequestUsername(c, m)

		case msgKeepAlive:
			s.replyKeepAlive(c)

		case msgAcquireLobby:
			if c.username == "" {
				removals = append(removals, id)
				continue
			}
			if c.inGame() {
				// Voluntary exit: terminal for the game.
				s.teardownGame(c)
			}
			c.phase = phaseLobby

		case msgLookForGame:
			c.phase = phaseLookingForGame
			s.enqueueLooking(id)

		case msgAcquireGame:
			c.phase = phaseGame
			sess, ok := s.games[c.gameID]
			if !ok {
				// AcquireGame without a pending game is a protocol violation.
				removals = append(removals, id)
				continue
			}
			switch id {
			case sess.a:
				sess.aAcquired = true
				if sess.bAcquired {
					gameReady = append(gameReady, [2]uuid.UUID{sess.a, sess.b})
				}
			case sess.b:
				sess.bAcquired = true
				if sess.aAcquired {
					gameReady = append(gameReady, [2]uuid.UUID{sess.a, sess.b})
				}
			default:
				removals = append(removals, id)
			}

		case msgPlacePiece:
			sess, ok := s.games[c.gameID]
			if !c.inGame() || !ok {
				// No game associated: the move raced a teardown. Ignore.
				continue
			}
			player, other, ok := sess.player(id)
			if !ok {
				removals = append(removals, id)
				continue
			}
			switch sess.board.InsertPiece(player, m.column) {
			case game.ResultSuccess:
				s.sendGame(c, protocol.PlacePieceAck{TransactionID: m.txn})
				placed = append(placed, placement{to: other, column: m.column})
			case game.ResultWin:
				s.sendGame(c, protocol.PlacePieceAck{TransactionID: m.txn})
				placed = append(placed, placement{to: other, column: m.column})
				lost = append(lost, other)
				s.sendGame(c, protocol.PlayerWin{Me: true})
				s.destroyGame(sess)
				slog.Info("game won",
					"game", sess.id,
					"winner", c.username,
					"duration", time.Since(sess.createdAt))
			case game.ResultFailure:
				// Server is authoritative; illegal moves are silently dropped.
				slog.Debug("illegal move dropped",
					"client", c.username,
					"column", m.column)
			}

		case msgSocketDie:
			removals = append(removals, id)
		}
	}

	// 1. Opponent placements precede loss notifications for the same move.
	for _, p := range placed {
		if c, ok := s.clients[p.to]; ok {
			s.sendGame(c, protocol.OpponentPlacedPiece{Column: p.column})
		}
	}

	// 2. Losses.
	for _, id := range lost {
		if c, ok := s.clients[id]; ok {
			s.sendGame(c, protocol.PlayerWin{Me: false})
		}
	}

	// 3. Both-ready pairs: exchange OpponentJoin exactly once per game.
	for _, pair := range gameReady {
		a, okA := s.clients[pair[0]]
		b, okB := s.clients[pair[1]]
		if !okA || !okB {
			// A ready pair missing from the table is an invariant violation.
			removals = append(removals, pair[0], pair[1])
			continue
		}
		s.sendGame(a, protocol.OpponentJoin{Username: b.username, IGoFirst: true})
		s.sendGame(b, protocol.OpponentJoin{Username: a.username, IGoFirst: false})
	}

	// 4. Matchmaking over the arrival-order queue.
	s.matchmake(removals)

	// 5. Deferred removals.
	s.removeClients(removals)
}

// handleRequestUsername claims the name for the client when it is free and
// well-formed, releasing any previous claim by the same client. The phase
// does not change here — the client advances by sending AcquireUsername.
func (s *Server) handleRequestUsername(c *client, m msgRequestUsername) {
	ok := m.username != "" && len(m.username) <= protocol.MaxUsernameLen
	if ok {
		if _, taken := s.acquiredNames[m.username]; taken {
			ok = false
		}
	}

	if ok {
		if c.username != "" {
			delete(s.acquiredNames, c.username)
		}
		s.acquiredNames[m.username] = c.id
		c.username = m.username
		slog.Debug("username claimed", "client", c.conn.ip, "username", m.username)
	}

	s.sendLogin(c, protocol.UsernameResult{Success: ok, TransactionID: m.txn})
}

// replyKeepAlive answers in the family matching the client's current phase.
func (s *Server) replyKeepAlive(c *client) {
	switch c.phase {
	case phaseLogin:
		s.sendLogin(c, protocol.KeepAlive{})
	case phaseLobby, phaseLookingForGame, phaseWaitingForGame:
		s.sendLobby(c, protocol.KeepAlive{})
	case phaseGame:
		s.sendGame(c, protocol.KeepAlive{})
	}
}

// enqueueLooking appends the client to the matchmaking queue unless already
// queued.
func (s *Server) enqueueLooking(id uuid.UUID) {
	for _, queued := range s.looking {
		if queued == id {
			return
		}
	}
	s.looking = append(s.looking, id)
}

// matchmake pairs looking clients two by two in arrival order. The odd
// client out stays queued for the next tick.
func (s *Server) matchmake(removals []uuid.UUID) {
	skip := make(map[uuid.UUID]bool, len(removals))
	for _, id := range removals {
		skip[id] = true
	}

	eligible := s.looking[:0:0]
	for _, id := range s.looking {
		c, ok := s.clients[id]
		if !ok || skip[id] || c.phase != phaseLookingForGame {
			continue
		}
		eligible = append(eligible, id)
	}

	for len(eligible) >= 2 {
		a := s.clients[eligible[0]]
		b := s.clients[eligible[1]]
		eligible = eligible[2:]

		now := time.Now()
		sess := &session{
			id:        uuid.New(),
			a:         a.id,
			b:         b.id,
			board:     game.NewBoard(),
			createdAt: now,
		}
		s.games[sess.id] = sess

		a.gameID = sess.id
		b.gameID = sess.id
		a.inGameSince = now
		b.inGameSince = now
		a.phase = phaseWaitingForGame
		b.phase = phaseWaitingForGame

		s.sendLobby(a, protocol.GameFound{})
		s.sendLobby(b, protocol.GameFound{})
		slog.Info("game found", "game", sess.id, "a", a.username, "b", b.username)
	}

	s.looking = eligible
}

// removeClients drops every marked client: release the name claim, notify a
// surviving game peer with EarlyExit, and close the connection.
func (s *Server) removeClients(removals []uuid.UUID) {
	if len(removals) == 0 {
		return
	}
	set := make(map[uuid.UUID]bool, len(removals))
	for _, id := range removals {
		set[id] = true
	}

	for _, id := range removals {
		c, ok := s.clients[id]
		if !ok {
			continue
		}
		delete(s.clients, id)

		if c.username != "" && s.acquiredNames[c.username] == id {
			delete(s.acquiredNames, c.username)
		}

		if sess, ok := s.games[c.gameID]; ok {
			delete(s.games, sess.id)
			peerID := sess.other(id)
			if !set[peerID] {
				if peer, ok := s.clients[peerID]; ok {
					peer.gameID = uuid.Nil
					s.sendGame(peer, protocol.EarlyExit{})
				}
			}
		}

		_ = c.conn.close()
		slog.Info("client removed", "client", c.conn.ip, "username", c.username)
	}
}

// teardownGame destroys the client's game after a voluntary exit, notifying
// the peer with EarlyExit.
func (s *Server) teardownGame(c *client) {
	sess, ok := s.games[c.gameID]
	c.gameID = uuid.Nil
	if !ok {
		return
	}
	delete(s.games, sess.id)
	peerID := sess.other(c.id)
	if peer, ok := s.clients[peerID]; ok {
		peer.gameID = uuid.Nil
		s.sendGame(peer, protocol.EarlyExit{})
	}
}

// destroyGame clears both participants' game references and drops the
// session. Used on a win; disconnect teardown goes through removeClients.
func (s *Server) destroyGame(sess *session) {
	delete(s.games, sess.id)
	if a, ok := s.clients[sess.a]; ok {
		a.gameID = uuid.Nil
	}
	if b, ok := s.clients[sess.b]; ok {
		b.gameID = uuid.Nil
	}
}

// sendLogin encodes and queues a Login-family packet.
func (s *Server) sendLogin(c *client, p protocol.ClientboundLogin) {
	buf := s.sendPool.Get()
	bb := bytes.NewBuffer(buf)
	if err := protocol.EncodeClientboundLogin(protocol.NewWriter(bb), p); err != nil {
		s.sendPool.Put(buf)
		slog.Error("encode login packet", "client", c.conn.ip, "error", err)
		return
	}
	_ = c.conn.send(bb.Bytes())
}

// sendLobby encodes and queues a Lobby-family packet.
func (s *Server) sendLobby(c *client, p protocol.ClientboundLobby) {
	buf := s.sendPool.Get()
	bb := bytes.NewBuffer(buf)
	if err := protocol.EncodeClientboundLobby(protocol.NewWriter(bb), p); err != nil {
		s.sendPool.Put(buf)
		slog.Error("encode lobby packet", "client", c.conn.ip, "error", err)
		return
	}
	_ = c.conn.send(bb.Bytes())
}

// sendGame encodes and queues a Game-family packet.
func (s *Server) sendGame(c *client, p protocol.ClientboundGame) {
	buf := s.sendPool.Get()
	bb := bytes.NewBuffer(buf)
	if err := protocol.EncodeClientboundGame(protocol.NewWriter(bb), p); err != nil {
		s.sendPool.Put(buf)
		slog.Error("encode game packet", "client", c.conn.ip, "error", err)
		return
	}
	_ = c.conn.send(bb.Bytes())
}
