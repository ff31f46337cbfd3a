package wire

import "github.com/varkas/mannchess-server/internal/board"

// Outbound event kinds.
const (
	EventGameState          = "gameState"
	EventPlayerJoined       = "playerJoined"
	EventPlayerDisconnected = "playerDisconnected"
	EventMoveExecuted       = "moveExecuted"
	EventPieceSelected      = "pieceSelected"
	EventPieceDeselected    = "pieceDeselected"
	EventGameRestarted      = "gameRestarted"
	EventGameReady          = "gameReady"
	EventError              = "error"
)

// Event is one outbound frame.
type Event struct {
	Kind string `json:"kind"`
	Data any    `json:"data,omitempty"`
}

// Square is a board coordinate as it appears on the wire.
type Square struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// GameStateData is the private snapshot sent to a joining client. The
// piece list replicates the full board; later changes arrive as events.
type GameStateData struct {
	Color       string        `json:"color"`
	GameStatus  string        `json:"gameStatus"`
	CurrentTurn string        `json:"currentTurn"`
	Pieces      []board.Piece `json:"pieces"`
}

type PlayerJoinedData struct {
	SessionID    string `json:"sessionId"`
	Name         string `json:"name"`
	Color        string `json:"color"`
	TotalPlayers int    `json:"totalPlayers"`
}

type PlayerDisconnectedData struct {
	Color string `json:"color"`
}

type MoveExecutedData struct {
	From        Square `json:"from"`
	To          Square `json:"to"`
	Player      string `json:"player"`
	CurrentTurn string `json:"currentTurn"`
}

type PieceSelectedData struct {
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Player string `json:"player"`
}

type PieceDeselectedData struct {
	Player string `json:"player"`
}

type ErrorData struct {
	Message string `json:"message"`
}

func GameState(color, status, turn string, pieces []board.Piece) Event {
	return Event{Kind: EventGameState, Data: GameStateData{Color: color, GameStatus: status, CurrentTurn: turn, Pieces: pieces}}
}

func PlayerJoined(sessionID, name, color string, total int) Event {
	return Event{Kind: EventPlayerJoined, Data: PlayerJoinedData{SessionID: sessionID, Name: name, Color: color, TotalPlayers: total}}
}

func PlayerDisconnected(color string) Event {
	return Event{Kind: EventPlayerDisconnected, Data: PlayerDisconnectedData{Color: color}}
}

func MoveExecuted(from, to Square, player, turn string) Event {
	return Event{Kind: EventMoveExecuted, Data: MoveExecutedData{From: from, To: to, Player: player, CurrentTurn: turn}}
}

func PieceSelected(row, col int, player string) Event {
	return Event{Kind: EventPieceSelected, Data: PieceSelectedData{Row: row, Col: col, Player: player}}
}

func PieceDeselected(player string) Event {
	return Event{Kind: EventPieceDeselected, Data: PieceDeselectedData{Player: player}}
}

func GameRestarted() Event { return Event{Kind: EventGameRestarted} }

func GameReady() Event { return Event{Kind: EventGameReady} }

func Error(message string) Event {
	return Event{Kind: EventError, Data: ErrorData{Message: message}}
}
