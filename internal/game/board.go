// Package game implements the authoritative Connect-Four rules.
// Pure and synchronous — no I/O, no concurrency.
package game

// Board dimensions.
const (
	Columns = 7
	Rows    = 6
)

// Player identifiers. Player 1 always moves first.
const (
	Player1 uint8 = 1
	Player2 uint8 = 2
)

// Result is the outcome of an InsertPiece call.
type Result uint8

const (
	// ResultFailure — illegal move: bad column, wrong turn, or full column.
	// The board is unchanged and the turn does not flip.
	ResultFailure Result = iota
	// ResultSuccess — the piece settled and the turn flipped.
	ResultSuccess
	// ResultWin — the piece settled and completed a line of four.
	// The turn does not flip.
	ResultWin
)

// Board is a 7-column by 6-row Connect-Four grid. Cells hold 0 (empty),
// Player1 or Player2. Row 0 is the bottom: pieces settle at the lowest
// empty row of their column.
type Board struct {
	cells [Columns][Rows]uint8
	turn  uint8
}

// NewBoard returns an empty board with Player1 to move.
func NewBoard() *Board {
	return &Board{turn: Player1}
}

// Turn returns the player whose move is next.
func (b *Board) Turn() uint8 {
	return b.turn
}

// Cell returns the contents of the given column and row, or 0 when the
// coordinates are out of range.
func (b *Board) Cell(column, row int) uint8 {
	if column < 0 || column >= Columns || row < 0 || row >= Rows {
		return 0
	}
	return b.cells[column][row]
}

// InsertPiece drops a piece for player into column.
//
// Failure when the column is out of range, it is not player's turn, or the
// column is full. On success the piece settles in the lowest empty row and
// the turn flips. A move that completes four-in-a-row along any axis through
// the placed cell returns Win and leaves the turn unchanged.
func (b *Board) InsertPiece(player, column uint8) Result {
	if column >= Columns {
		return ResultFailure
	}
	if player != b.turn {
		return ResultFailure
	}

	row := -1
	for y := 0; y < Rows; y++ {
		if b.cells[column][y] == 0 {
			b.cells[column][y] = player
			row = y
			break
		}
	}
	if row < 0 {
		return ResultFailure
	}

	if b.wins(player, int(column), row) {
		return ResultWin
	}

	b.turn = 3 - player
	return ResultSuccess
}

// wins reports whether the cell just placed at (x, y) completes a line of at
// least four. Counts consecutive cells in both directions along each axis so
// lines anchored at any offset through (x, y) are detected.
func (b *Board) wins(player uint8, x, y int) bool {
	dirs := [4][2]int{
		{1, 0},  // horizontal
		{0, 1},  // vertical
		{1, 1},  // diagonal /
		{1, -1}, // diagonal \
	}
	for _, d := range dirs {
		count := 1
		count += b.runLength(player, x, y, d[0], d[1])
		count += b.runLength(player, x, y, -d[0], -d[1])
		if count >= 4 {
			return true
		}
	}
	return false
}

// runLength counts consecutive player cells from (x, y) exclusive, stepping
// by (dx, dy).
func (b *Board) runLength(player uint8, x, y, dx, dy int) int {
	n := 0
	for {
		x += dx
		y += dy
		if x < 0 || x >= Columns || y < 0 || y >= Rows {
			return n
		}
		if b.cells[x][y] != player {
			return n
		}
		n++
	}
}
