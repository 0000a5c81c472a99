package client

// Event is what the phase driver reports to the UI layer.
type Event interface{ event() }

// EventUsernameResult reports the outcome of a username request.
type EventUsernameResult struct {
	Success  bool
	Username string
}

// EventTransferToGame tells the UI a game was found and the client is
// moving to the game screen.
type EventTransferToGame struct{}

// EventOpponentJoin announces the opponent once both players are ready.
// IGoFirst reports whether this client moves first.
type EventOpponentJoin struct {
	Username string
	IGoFirst bool
}

// EventPiecePlaced reports a confirmed placement: Me is true for this
// client's own acked move, false for the opponent's.
type EventPiecePlaced struct {
	Me     bool
	Column uint8
}

// EventExitToLobby tells the UI the opponent left mid-game.
type EventExitToLobby struct{}

// EventWinGame reports that this client won.
type EventWinGame struct{}

// EventLoseGame reports that this client lost.
type EventLoseGame struct{}

func (EventUsernameResult) event() {}
func (EventTransferToGame) event() {}
func (EventOpponentJoin) event()   {}
func (EventPiecePlaced) event()    {}
func (EventExitToLobby) event()    {}
func (EventWinGame) event()        {}
func (EventLoseGame) event()       {}

// Request is what the UI layer asks the phase driver to do.
type Request interface{ request() }

// RequestUsername asks the server for the given username.
type RequestUsername struct {
	Username string
}

// SearchForGame enters matchmaking.
type SearchForGame struct{}

// PlacePiece drops a piece into the given column.
type PlacePiece struct {
	Column uint8
}

func (RequestUsername) request() {}
func (SearchForGame) request()   {}
func (PlacePiece) request()      {}
