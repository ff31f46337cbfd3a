package room

import "github.com/varkas/mannchess-server/internal/board"

// Seat is a player's assigned role in the room. Exactly two voting
// seats exist; everyone else spectates.
type Seat string

const (
	SeatWhite     Seat = "white"
	SeatBlack     Seat = "black"
	SeatSpectator Seat = "spectator"
)

// Side returns the playing color for a seat and whether the seat votes.
func (s Seat) Side() (board.Color, bool) {
	switch s {
	case SeatWhite:
		return board.White, true
	case SeatBlack:
		return board.Black, true
	}
	return "", false
}

// Phase is the session-wide game stage.
type Phase string

const (
	PhaseWaiting  Phase = "waiting"
	PhasePlaying  Phase = "playing"
	PhaseFinished Phase = "finished"
)

// Player is a registry record. The registry owns these exclusively;
// other components read color and identity only.
type Player struct {
	SessionID string
	Name      string
	Seat      Seat
	Connected bool
}
