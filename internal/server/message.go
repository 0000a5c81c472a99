package server

// clientMessage is a parsed inbound event forwarded from a connection's
// reader loop to the reactor.
type clientMessage interface{ clientMessage() }

type msgKeepAlive struct{}

type msgRequestUsername struct {
	username string
	txn      int32
}

// msgAcquireLobby is posted both when a Login client acknowledges its
// username and when a Game client returns to the lobby.
type msgAcquireLobby struct{}

type msgLookForGame struct{}

type msgAcquireGame struct{}

type msgPlacePiece struct {
	column uint8
	txn    int32
}

// msgSocketDie is synthesized by the mailbox when a reader loop closes its
// inbox. It is never sent by a reader directly.
type msgSocketDie struct{}

func (msgKeepAlive) clientMessage()       {}
func (msgRequestUsername) clientMessage() {}
func (msgAcquireLobby) clientMessage()    {}
func (msgLookForGame) clientMessage()     {}
func (msgAcquireGame) clientMessage()     {}
func (msgPlacePiece) clientMessage()      {}
func (msgSocketDie) clientMessage()       {}
