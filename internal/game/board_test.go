package game

import "testing"

// mustInsert fails the test unless the move returns the expected result.
func mustInsert(t *testing.T, b *Board, player, column uint8, want Result) {
	t.Helper()
	if got := b.InsertPiece(player, column); got != want {
		t.Fatalf("InsertPiece(player=%d, column=%d): got %v, want %v", player, column, got, want)
	}
}

func TestNewBoardPlayer1Starts(t *testing.T) {
	b := NewBoard()
	if b.Turn() != Player1 {
		t.Fatalf("turn: got %d, want Player1", b.Turn())
	}
}

func TestPiecesSettleBottomUp(t *testing.T) {
	b := NewBoard()
	mustInsert(t, b, Player1, 3, ResultSuccess)
	mustInsert(t, b, Player2, 3, ResultSuccess)
	mustInsert(t, b, Player1, 3, ResultSuccess)

	if got := b.Cell(3, 0); got != Player1 {
		t.Errorf("cell (3,0): got %d, want Player1", got)
	}
	if got := b.Cell(3, 1); got != Player2 {
		t.Errorf("cell (3,1): got %d, want Player2", got)
	}
	if got := b.Cell(3, 2); got != Player1 {
		t.Errorf("cell (3,2): got %d, want Player1", got)
	}
	if got := b.Cell(3, 3); got != 0 {
		t.Errorf("cell (3,3): got %d, want empty", got)
	}
}

func TestTurnAlternates(t *testing.T) {
	b := NewBoard()
	mustInsert(t, b, Player1, 0, ResultSuccess)
	if b.Turn() != Player2 {
		t.Fatalf("turn after Player1: got %d", b.Turn())
	}
	mustInsert(t, b, Player2, 1, ResultSuccess)
	if b.Turn() != Player1 {
		t.Fatalf("turn after Player2: got %d", b.Turn())
	}
}

func TestIllegalMovesLeaveBoardUntouched(t *testing.T) {
	b := NewBoard()

	// Out-of-range column.
	mustInsert(t, b, Player1, Columns, ResultFailure)
	mustInsert(t, b, Player1, 200, ResultFailure)

	// Out of turn.
	mustInsert(t, b, Player2, 0, ResultFailure)
	if b.Turn() != Player1 {
		t.Fatalf("turn changed on failed move: got %d", b.Turn())
	}

	// Full column.
	for i := 0; i < Rows; i++ {
		player := Player1
		if i%2 == 1 {
			player = Player2
		}
		mustInsert(t, b, player, 0, ResultSuccess)
	}
	mustInsert(t, b, Player1, 0, ResultFailure)
	if b.Turn() != Player1 {
		t.Fatalf("turn changed on full-column move: got %d", b.Turn())
	}
}

func TestVerticalWin(t *testing.T) {
	b := NewBoard()
	for i := 0; i < 3; i++ {
		mustInsert(t, b, Player1, 2, ResultSuccess)
		mustInsert(t, b, Player2, 5, ResultSuccess)
	}
	mustInsert(t, b, Player1, 2, ResultWin)

	// A win does not flip the turn.
	if b.Turn() != Player1 {
		t.Errorf("turn after win: got %d, want Player1", b.Turn())
	}
}

func TestHorizontalWin(t *testing.T) {
	b := NewBoard()
	mustInsert(t, b, Player1, 0, ResultSuccess)
	mustInsert(t, b, Player2, 0, ResultSuccess)
	mustInsert(t, b, Player1, 1, ResultSuccess)
	mustInsert(t, b, Player2, 1, ResultSuccess)
	mustInsert(t, b, Player1, 2, ResultSuccess)
	mustInsert(t, b, Player2, 2, ResultSuccess)
	mustInsert(t, b, Player1, 3, ResultWin)
}

// TestHorizontalWinMiddlePlacement completes the line with a piece that is
// neither end of the run, so detection must count in both directions.
func TestHorizontalWinMiddlePlacement(t *testing.T) {
	b := NewBoard()
	mustInsert(t, b, Player1, 1, ResultSuccess)
	mustInsert(t, b, Player2, 1, ResultSuccess)
	mustInsert(t, b, Player1, 2, ResultSuccess)
	mustInsert(t, b, Player2, 2, ResultSuccess)
	mustInsert(t, b, Player1, 4, ResultSuccess)
	mustInsert(t, b, Player2, 4, ResultSuccess)
	mustInsert(t, b, Player1, 3, ResultWin)
}

func TestDiagonalUpWin(t *testing.T) {
	b := NewBoard()
	// Staircase for Player1 on (0,0) (1,1) (2,2) (3,3).
	mustInsert(t, b, Player1, 0, ResultSuccess)
	mustInsert(t, b, Player2, 1, ResultSuccess)
	mustInsert(t, b, Player1, 1, ResultSuccess)
	mustInsert(t, b, Player2, 2, ResultSuccess)
	mustInsert(t, b, Player1, 2, ResultSuccess) // lands at (2,1)
	mustInsert(t, b, Player2, 3, ResultSuccess)
	mustInsert(t, b, Player1, 2, ResultSuccess) // lands at (2,2)
	mustInsert(t, b, Player2, 3, ResultSuccess)
	mustInsert(t, b, Player1, 3, ResultSuccess) // lands at (3,2)
	mustInsert(t, b, Player2, 6, ResultSuccess)
	mustInsert(t, b, Player1, 3, ResultWin) // lands at (3,3)
}

func TestDiagonalDownWin(t *testing.T) {
	b := NewBoard()
	// Staircase for Player1 on (0,3) (1,2) (2,1) (3,0).
	mustInsert(t, b, Player1, 3, ResultSuccess)
	mustInsert(t, b, Player2, 2, ResultSuccess)
	mustInsert(t, b, Player1, 2, ResultSuccess) // lands at (2,1)
	mustInsert(t, b, Player2, 1, ResultSuccess)
	mustInsert(t, b, Player1, 1, ResultSuccess) // lands at (1,1)
	mustInsert(t, b, Player2, 0, ResultSuccess)
	mustInsert(t, b, Player1, 1, ResultSuccess) // lands at (1,2)
	mustInsert(t, b, Player2, 0, ResultSuccess)
	mustInsert(t, b, Player1, 0, ResultSuccess) // lands at (0,2)
	mustInsert(t, b, Player2, 6, ResultSuccess)
	mustInsert(t, b, Player1, 0, ResultWin) // lands at (0,3)
}

func TestThreeInARowIsNotAWin(t *testing.T) {
	b := NewBoard()
	mustInsert(t, b, Player1, 0, ResultSuccess)
	mustInsert(t, b, Player2, 6, ResultSuccess)
	mustInsert(t, b, Player1, 1, ResultSuccess)
	mustInsert(t, b, Player2, 6, ResultSuccess)
	mustInsert(t, b, Player1, 2, ResultSuccess)
}

func TestCellOutOfRange(t *testing.T) {
	b := NewBoard()
	if got := b.Cell(-1, 0); got != 0 {
		t.Errorf("Cell(-1,0): got %d", got)
	}
	if got := b.Cell(Columns, 0); got != 0 {
		t.Errorf("Cell(Columns,0): got %d", got)
	}
	if got := b.Cell(0, Rows); got != 0 {
		t.Errorf("Cell(0,Rows): got %d", got)
	}
}
