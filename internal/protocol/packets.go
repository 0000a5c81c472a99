package protocol

import "fmt"

// Packet families. Every packet on the wire is its variant key (VarInt)
// followed by the variant's fields in order — there is no outer length prefix
// and no family tag. The receiver selects the family from the connection's
// current phase, so the decoder choice and the phase must stay colocated.
//
// Variant keys are assigned in declaration order starting at 0. KeepAlive is
// key 0 in all six families (see keepalive_test.go for the self-check).

// Variant keys, per family.
const (
	// ServerboundLogin
	KeyLoginKeepAlive       int32 = 0
	KeyLoginRequestUsername int32 = 1
	KeyLoginAcquireUsername int32 = 2

	// ClientboundLogin
	KeyLoginUsernameResult int32 = 1

	// ServerboundLobby
	KeyLobbyKeepAlive   int32 = 0
	KeyLobbyRequestGame int32 = 1
	KeyLobbyAcquireGame int32 = 2

	// ClientboundLobby
	KeyLobbyGameFound int32 = 1

	// ServerboundGame
	KeyGameKeepAlive    int32 = 0
	KeyGamePlacePiece   int32 = 1
	KeyGameAcquireLobby int32 = 2

	// ClientboundGame
	KeyGameOpponentJoin        int32 = 1
	KeyGamePlacePieceAck       int32 = 2
	KeyGameOpponentPlacedPiece int32 = 3
	KeyGameEarlyExit           int32 = 4
	KeyGamePlayerWin           int32 = 5
)

// ServerboundLogin is the family a client may send while in Login phase.
type ServerboundLogin interface{ serverboundLogin() }

// ClientboundLogin is the family a server may send to a Login-phase client.
type ClientboundLogin interface{ clientboundLogin() }

// ServerboundLobby is the family a client may send while in Lobby phase.
type ServerboundLobby interface{ serverboundLobby() }

// ClientboundLobby is the family a server may send to a Lobby-phase client.
type ClientboundLobby interface{ clientboundLobby() }

// ServerboundGame is the family a client may send while in Game phase.
type ServerboundGame interface{ serverboundGame() }

// ClientboundGame is the family a server may send to a Game-phase client.
type ClientboundGame interface{ clientboundGame() }

// Clientbound is implemented by every packet a server can send, regardless
// of family. The client reader posts these to the phase driver.
type Clientbound interface{ clientbound() }

// KeepAlive is key 0 in every family, in both directions.
type KeepAlive struct{}

func (KeepAlive) serverboundLogin() {}
func (KeepAlive) clientboundLogin() {}
func (KeepAlive) serverboundLobby() {}
func (KeepAlive) clientboundLobby() {}
func (KeepAlive) serverboundGame()  {}
func (KeepAlive) clientboundGame()  {}
func (KeepAlive) clientbound()      {}

// RequestUsername asks the server to claim a username. The transaction id is
// chosen by the client and echoed verbatim in the UsernameResult.
type RequestUsername struct {
	Username      string
	TransactionID int32
}

func (RequestUsername) serverboundLogin() {}

// AcquireUsername acknowledges a successful UsernameResult and moves the
// connection to Lobby phase.
type AcquireUsername struct{}

func (AcquireUsername) serverboundLogin() {}

// UsernameResult reports whether the requested username was claimed.
type UsernameResult struct {
	Success       bool
	TransactionID int32
}

func (UsernameResult) clientboundLogin() {}
func (UsernameResult) clientbound()      {}

// RequestGame enters the client into matchmaking.
type RequestGame struct{}

func (RequestGame) serverboundLobby() {}

// AcquireGame acknowledges GameFound and moves the connection to Game phase.
type AcquireGame struct{}

func (AcquireGame) serverboundLobby() {}

// GameFound tells a looking client it has been paired.
type GameFound struct{}

func (GameFound) clientboundLobby() {}
func (GameFound) clientbound()      {}

// PlacePiece drops a piece into the given column. The transaction id is
// echoed in the PlacePieceAck; illegal moves are silently dropped.
type PlacePiece struct {
	Column        uint8
	TransactionID int32
}

func (PlacePiece) serverboundGame() {}

// AcquireLobby acknowledges a terminal game outcome and moves the connection
// back to Lobby phase.
type AcquireLobby struct{}

func (AcquireLobby) serverboundGame() {}

// OpponentJoin is sent once both participants have acquired Game phase.
// IGoFirst is true for the player who moves first.
type OpponentJoin struct {
	Username string
	IGoFirst bool
}

func (OpponentJoin) clientboundGame() {}
func (OpponentJoin) clientbound()     {}

// PlacePieceAck confirms the mover's own legal placement.
type PlacePieceAck struct {
	TransactionID int32
}

func (PlacePieceAck) clientboundGame() {}
func (PlacePieceAck) clientbound()     {}

// OpponentPlacedPiece reports the opponent's legal placement.
type OpponentPlacedPiece struct {
	Column uint8
}

func (OpponentPlacedPiece) clientboundGame() {}
func (OpponentPlacedPiece) clientbound()     {}

// EarlyExit tells the surviving player that the opponent left mid-game.
type EarlyExit struct{}

func (EarlyExit) clientboundGame() {}
func (EarlyExit) clientbound()     {}

// PlayerWin announces the game result: Me reports whether the receiver won.
type PlayerWin struct {
	Me bool
}

func (PlayerWin) clientboundGame() {}
func (PlayerWin) clientbound()     {}

// EncodeServerboundLogin writes one ServerboundLogin packet.
func EncodeServerboundLogin(w *Writer, p ServerboundLogin) error {
	switch p := p.(type) {
	case KeepAlive:
		return w.WriteVarInt(KeyLoginKeepAlive)
	case RequestUsername:
		if err := w.WriteVarInt(KeyLoginRequestUsername); err != nil {
			return err
		}
		if err := w.WriteString(p.Username, MaxUsernameLen); err != nil {
			return err
		}
		return w.WriteVarInt(p.TransactionID)
	case AcquireUsername:
		return w.WriteVarInt(KeyLoginAcquireUsername)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownVariant, p)
	}
}

// DecodeServerboundLogin reads one ServerboundLogin packet.
func DecodeServerboundLogin(r *Reader) (ServerboundLogin, error) {
	key, err := r.beginPacket()
	if err != nil {
		return nil, err
	}
	switch key {
	case KeyLoginKeepAlive:
		return KeepAlive{}, nil
	case KeyLoginRequestUsername:
		name, err := r.ReadString(MaxUsernameLen)
		if err != nil {
			return nil, err
		}
		txn, err := r.ReadVarInt()
		if err != nil {
			return nil, err
		}
		return RequestUsername{Username: name, TransactionID: txn}, nil
	case KeyLoginAcquireUsername:
		return AcquireUsername{}, nil
	default:
		return nil, fmt.Errorf("%w: serverbound login key %d", ErrUnknownVariant, key)
	}
}

// EncodeClientboundLogin writes one ClientboundLogin packet.
func EncodeClientboundLogin(w *Writer, p ClientboundLogin) error {
	switch p := p.(type) {
	case KeepAlive:
		return w.WriteVarInt(KeyLoginKeepAlive)
	case UsernameResult:
		if err := w.WriteVarInt(KeyLoginUsernameResult); err != nil {
			return err
		}
		if err := w.WriteBool(p.Success); err != nil {
			return err
		}
		return w.WriteInt32(p.TransactionID)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownVariant, p)
	}
}

// DecodeClientboundLogin reads one ClientboundLogin packet.
func DecodeClientboundLogin(r *Reader) (ClientboundLogin, error) {
	key, err := r.beginPacket()
	if err != nil {
		return nil, err
	}
	switch key {
	case KeyLoginKeepAlive:
		return KeepAlive{}, nil
	case KeyLoginUsernameResult:
		success, err := r.ReadBool()
		if err != nil {
			return nil, err
		}
		txn, err := r.ReadInt32()
		if err != nil {
			return nil, err
		}
		return UsernameResult{Success: success, TransactionID: txn}, nil
	default:
		return nil, fmt.Errorf("%w: clientbound login key %d", ErrUnknownVariant, key)
	}
}

// EncodeServerboundLobby writes one ServerboundLobby packet.
func EncodeServerboundLobby(w *Writer, p ServerboundLobby) error {
	switch p := p.(type) {
	case KeepAlive:
		return w.WriteVarInt(KeyLobbyKeepAlive)
	case RequestGame:
		return w.WriteVarInt(KeyLobbyRequestGame)
	case AcquireGame:
		return w.WriteVarInt(KeyLobbyAcquireGame)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownVariant, p)
	}
}

// DecodeServerboundLobby reads one ServerboundLobby packet.
func DecodeServerboundLobby(r *Reader) (ServerboundLobby, error) {
	key, err := r.beginPacket()
	if err != nil {
		return nil, err
	}
	switch key {
	case KeyLobbyKeepAlive:
		return KeepAlive{}, nil
	case KeyLobbyRequestGame:
		return RequestGame{}, nil
	case KeyLobbyAcquireGame:
		return AcquireGame{}, nil
	default:
		return nil, fmt.Errorf("%w: serverbound lobby key %d", ErrUnknownVariant, key)
	}
}

// EncodeClientboundLobby writes one ClientboundLobby packet.
func EncodeClientboundLobby(w *Writer, p ClientboundLobby) error {
	switch p := p.(type) {
	case KeepAlive:
		return w.WriteVarInt(KeyLobbyKeepAlive)
	case GameFound:
		return w.WriteVarInt(KeyLobbyGameFound)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownVariant, p)
	}
}

// DecodeClientboundLobby reads one ClientboundLobby packet.
func DecodeClientboundLobby(r *Reader) (ClientboundLobby, error) {
	key, err := r.beginPacket()
	if err != nil {
		return nil, err
	}
	switch key {
	case KeyLobbyKeepAlive:
		return KeepAlive{}, nil
	case KeyLobbyGameFound:
		return GameFound{}, nil
	default:
		return nil, fmt.Errorf("%w: clientbound lobby key %d", ErrUnknownVariant, key)
	}
}

// EncodeServerboundGame writes one ServerboundGame packet.
func EncodeServerboundGame(w *Writer, p ServerboundGame) error {
	switch p := p.(type) {
	case KeepAlive:
		return w.WriteVarInt(KeyGameKeepAlive)
	case PlacePiece:
		if err := w.WriteVarInt(KeyGamePlacePiece); err != nil {
			return err
		}
		if err := w.WriteUint8(p.Column); err != nil {
			return err
		}
		return w.WriteInt32(p.TransactionID)
	case AcquireLobby:
		return w.WriteVarInt(KeyGameAcquireLobby)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownVariant, p)
	}
}

// DecodeServerboundGame reads one ServerboundGame packet.
func DecodeServerboundGame(r *Reader) (ServerboundGame, error) {
	key, err := r.beginPacket()
	if err != nil {
		return nil, err
	}
	switch key {
	case KeyGameKeepAlive:
		return KeepAlive{}, nil
	case KeyGamePlacePiece:
		column, err := r.ReadUint8()
		if err != nil {
			return nil, err
		}
		txn, err := r.ReadInt32()
		if err != nil {
			return nil, err
		}
		return PlacePiece{Column: column, TransactionID: txn}, nil
	case KeyGameAcquireLobby:
		return AcquireLobby{}, nil
	default:
		return nil, fmt.Errorf("%w: serverbound game key %d", ErrUnknownVariant, key)
	}
}

// EncodeClientboundGame writes one ClientboundGame packet.
func EncodeClientboundGame(w *Writer, p ClientboundGame) error {
	switch p := p.(type) {
	case KeepAlive:
		return w.WriteVarInt(KeyGameKeepAlive)
	case OpponentJoin:
		if err := w.WriteVarInt(KeyGameOpponentJoin); err != nil {
			return err
		}
		if err := w.WriteString(p.Username, MaxUsernameLen); err != nil {
			return err
		}
		return w.WriteBool(p.IGoFirst)
	case PlacePieceAck:
		if err := w.WriteVarInt(KeyGamePlacePieceAck); err != nil {
			return err
		}
		return w.WriteInt32(p.TransactionID)
	case OpponentPlacedPiece:
		if err := w.WriteVarInt(KeyGameOpponentPlacedPiece); err != nil {
			return err
		}
		return w.WriteUint8(p.Column)
	case EarlyExit:
		return w.WriteVarInt(KeyGameEarlyExit)
	case PlayerWin:
		if err := w.WriteVarInt(KeyGamePlayerWin); err != nil {
			return err
		}
		return w.WriteBool(p.Me)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownVariant, p)
	}
}

// DecodeClientboundGame reads one ClientboundGame packet.
func DecodeClientboundGame(r *Reader) (ClientboundGame, error) {
	key, err := r.beginPacket()
	if err != nil {
		return nil, err
	}
	switch key {
	case KeyGameKeepAlive:
		return KeepAlive{}, nil
	case KeyGameOpponentJoin:
		name, err := r.ReadString(MaxUsernameLen)
		if err != nil {
			return nil, err
		}
		first, err := r.ReadBool()
		if err != nil {
			return nil, err
		}
		return OpponentJoin{Username: name, IGoFirst: first}, nil
	case KeyGamePlacePieceAck:
		txn, err := r.ReadInt32()
		if err != nil {
			return nil, err
		}
		return PlacePieceAck{TransactionID: txn}, nil
	case KeyGameOpponentPlacedPiece:
		column, err := r.ReadUint8()
		if err != nil {
			return nil, err
		}
		return OpponentPlacedPiece{Column: column}, nil
	case KeyGameEarlyExit:
		return EarlyExit{}, nil
	case KeyGamePlayerWin:
		me, err := r.ReadBool()
		if err != nil {
			return nil, err
		}
		return PlayerWin{Me: me}, nil
	default:
		return nil, fmt.Errorf("%w: clientbound game key %d", ErrUnknownVariant, key)
	}
}
