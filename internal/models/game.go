// internal/models/game.go
package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// GameType selects which rule engine arbitrates a game. Immutable after creation.
type GameType string

const (
	GameTypeChess    GameType = "chess"
	GameTypeCheckers GameType = "checkers"
)

// GameStatus is the lifecycle state of a GameRecord.
// waiting -> playing -> finished; waiting/playing -> aborted. Terminal states are absorbing.
type GameStatus string

const (
	StatusWaiting  GameStatus = "waiting"
	StatusPlaying  GameStatus = "playing"
	StatusFinished GameStatus = "finished"
	StatusAborted  GameStatus = "aborted"
)

// Terminal reports whether no further mutation of the record is allowed.
func (s GameStatus) Terminal() bool {
	return s == StatusFinished || s == StatusAborted
}

// Color identifies a seat / side to move.
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

// Position is a board coordinate. Row 0 is black's back rank for both game types,
// so white pieces start on the high rows and advance toward row 0.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Move is one applied move, retained in GameRecord.Moves together with the full
// board snapshot it produced. Snapshots make replay seeks and takebacks O(1): no
// history re-derivation is ever needed.
type Move struct {
	From      Position        `json:"from"`
	To        Position        `json:"to"`
	Captured  *Position       `json:"captured,omitempty"`
	Promotion string          `json:"promotion,omitempty"`
	Piece     string          `json:"piece"`
	Notation  string          `json:"notation"`
	Snapshot  json.RawMessage `json:"snapshot"`
}

// GameRecord is the authoritative entity for one match. It is the single shared
// mutable resource in the move path and is always written as a whole record,
// guarded by Version (compare-and-set in the store).
type GameRecord struct {
	ID       uuid.UUID  `json:"id"`
	GameType GameType   `json:"game_type"`
	Status   GameStatus `json:"status"`

	// Seats. uuid.Nil marks an open seat, permitted only while Status == waiting.
	WhiteID   uuid.UUID `json:"white_id"`
	WhiteName string    `json:"white_name"`
	BlackID   uuid.UUID `json:"black_id"`
	BlackName string    `json:"black_name"`

	CurrentTurn Color           `json:"current_turn"`
	BoardState  json.RawMessage `json:"board_state"`
	Moves       []Move          `json:"moves"`
	MoveCount   int             `json:"move_count"`

	// Clocks. Remaining seconds are authoritative only as of LastMoveAt; elapsed
	// wall time since then is charged to whichever side is CurrentTurn.
	WhiteSecondsLeft float64   `json:"white_seconds_left"`
	BlackSecondsLeft float64   `json:"black_seconds_left"`
	InitialTime      int       `json:"initial_time"`
	Increment        int       `json:"increment"`
	LastMoveAt       time.Time `json:"last_move_at"`

	// WinnerID is set only when Status == finished; nil there means a draw.
	WinnerID *uuid.UUID `json:"winner_id,omitempty"`

	// Negotiation fields; at most one outstanding requester of each kind.
	DrawOfferBy         *uuid.UUID `json:"draw_offer_by,omitempty"`
	TakebackRequestedBy *uuid.UUID `json:"takeback_requested_by,omitempty"`

	// Linkage to external collaborators (tournament advancement, wallet settlement).
	TournamentID *uuid.UUID `json:"tournament_id,omitempty"`
	LeagueID     *uuid.UUID `json:"league_id,omitempty"`
	Round        int        `json:"round,omitempty"`
	EntryFee     int        `json:"entry_fee,omitempty"`
	PrizePool    int        `json:"prize_pool,omitempty"`
	Private      bool       `json:"private"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int64     `json:"version"`
}

// SeatOf returns the seat a user occupies, if any.
func (g *GameRecord) SeatOf(userID uuid.UUID) (Color, bool) {
	switch {
	case userID != uuid.Nil && userID == g.WhiteID:
		return White, true
	case userID != uuid.Nil && userID == g.BlackID:
		return Black, true
	default:
		return "", false
	}
}

// SeatID returns the user id occupying the given seat (uuid.Nil if open).
func (g *GameRecord) SeatID(c Color) uuid.UUID {
	if c == White {
		return g.WhiteID
	}
	return g.BlackID
}

// SeatName returns the display name for the given seat.
func (g *GameRecord) SeatName(c Color) string {
	if c == White {
		return g.WhiteName
	}
	return g.BlackName
}

// OpenSeat returns the first open seat, white preferred, and whether one exists.
func (g *GameRecord) OpenSeat() (Color, bool) {
	if g.WhiteID == uuid.Nil {
		return White, true
	}
	if g.BlackID == uuid.Nil {
		return Black, true
	}
	return "", false
}

// SecondsLeft returns the persisted remaining time for a side.
func (g *GameRecord) SecondsLeft(c Color) float64 {
	if c == White {
		return g.WhiteSecondsLeft
	}
	return g.BlackSecondsLeft
}

// SetSecondsLeft overwrites the persisted remaining time for a side.
func (g *GameRecord) SetSecondsLeft(c Color, v float64) {
	if c == White {
		g.WhiteSecondsLeft = v
	} else {
		g.BlackSecondsLeft = v
	}
}
