package board

// The opening layout is configuration, not logic: the back-rank kind
// sequence across columns 0..9 and the two rank rows per color. Any
// interoperable implementation must reproduce this exact table.
var backRank = [Cols]Kind{
	Flank, Rook, Knight, Bishop, Sovereign,
	Royal, Bishop, Knight, Rook, Flank,
}

// Pawns occupy columns 1..8 of each side's second rank.
const (
	pawnColFirst = 1
	pawnColLast  = 8
)

var openingRanks = []struct {
	Color Color
	Back  int
	Pawn  int
}{
	{Black, 0, 1},
	{White, 7, 6},
}
