package board

// Color identifies a playing side.
type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// Opponent returns the other side.
func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

// Kind enumerates the piece kinds of the variant.
type Kind string

const (
	Pawn      Kind = "pawn"
	Rook      Kind = "rook"
	Knight    Kind = "knight"
	Bishop    Kind = "bishop"
	Sovereign Kind = "sovereign"
	Royal     Kind = "royal"
	Flank     Kind = "flank"
)

// Piece is positional data only; a captured piece is removed from the
// collection entirely rather than flagged.
type Piece struct {
	Kind     Kind  `json:"kind"`
	Color    Color `json:"color"`
	Row      int   `json:"row"`
	Col      int   `json:"col"`
	HasMoved bool  `json:"hasMoved"`
}
