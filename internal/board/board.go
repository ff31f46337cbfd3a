// Package board holds the authoritative piece collection for one room.
// It offers lookup and mutation primitives only; turn and phase rules
// live with the session state machine.
package board

// Dimensions of the variant board.
const (
	Rows = 8
	Cols = 10
)

// Board is an ordered piece collection. At most one piece occupies a
// square; the caller preserves that by removing any capture before
// relocating the mover.
type Board struct {
	pieces []*Piece
}

// New returns a board seeded with the canonical opening layout.
func New() *Board {
	b := &Board{}
	b.Reset()
	return b
}

// Reset discards all pieces and reseeds the opening layout.
func (b *Board) Reset() {
	b.pieces = b.pieces[:0]
	for _, r := range openingRanks {
		for col := pawnColFirst; col <= pawnColLast; col++ {
			b.pieces = append(b.pieces, &Piece{Kind: Pawn, Color: r.Color, Row: r.Pawn, Col: col})
		}
	}
	for _, r := range openingRanks {
		for col, kind := range backRank {
			b.pieces = append(b.pieces, &Piece{Kind: kind, Color: r.Color, Row: r.Back, Col: col})
		}
	}
}

// InBounds reports whether (row, col) is on the board.
func (b *Board) InBounds(row, col int) bool {
	return row >= 0 && row < Rows && col >= 0 && col < Cols
}

// At returns the piece occupying (row, col), or nil.
func (b *Board) At(row, col int) *Piece {
	for _, p := range b.pieces {
		if p.Row == row && p.Col == col {
			return p
		}
	}
	return nil
}

// Owned returns the piece of the given color at (row, col), or nil.
func (b *Board) Owned(row, col int, color Color) *Piece {
	if p := b.At(row, col); p != nil && p.Color == color {
		return p
	}
	return nil
}

// Remove deletes the piece at (row, col) and reports whether one existed.
func (b *Board) Remove(row, col int) bool {
	for i, p := range b.pieces {
		if p.Row == row && p.Col == col {
			b.pieces = append(b.pieces[:i], b.pieces[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of pieces on the board.
func (b *Board) Len() int { return len(b.pieces) }

// Snapshot copies the piece collection in its stable order, for full
// replication on join and for archiving.
func (b *Board) Snapshot() []Piece {
	out := make([]Piece, len(b.pieces))
	for i, p := range b.pieces {
		out[i] = *p
	}
	return out
}
