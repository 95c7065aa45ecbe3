// Package broker carries game events between server processes. A mutation is
// applied and persisted by exactly one process, then published here; every
// process subscribes and relays to the live connections it personally holds.
// Delivery is at-most-once: each update is paired with a refetch signal so a
// client that misses a delta can pull full state.
package broker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/jrennick/gambit/internal/models"
)

// EventType tags what changed.
type EventType string

const (
	EventGameUpdate   EventType = "game_update"
	EventRefetch      EventType = "game_refetch"
	EventSeatFilled   EventType = "seat_filled"
	EventNegotiation  EventType = "negotiation"
	EventGameFinished EventType = "game_finished"
)

// Event is the compact per-mutation payload: the fields that changed plus
// enough context for a client to reconcile its view without a full refetch.
type Event struct {
	Type    EventType `json:"type"`
	GameID  uuid.UUID `json:"game_id"`

	Status      models.GameStatus `json:"status"`
	CurrentTurn models.Color      `json:"current_turn"`
	MoveCount   int               `json:"move_count"`

	WhiteID   uuid.UUID `json:"white_id"`
	WhiteName string    `json:"white_name"`
	BlackID   uuid.UUID `json:"black_id"`
	BlackName string    `json:"black_name"`

	WhiteSecondsLeft float64 `json:"white_seconds_left"`
	BlackSecondsLeft float64 `json:"black_seconds_left"`

	WinnerID            *uuid.UUID   `json:"winner_id,omitempty"`
	DrawOfferBy         *uuid.UUID   `json:"draw_offer_by,omitempty"`
	TakebackRequestedBy *uuid.UUID   `json:"takeback_requested_by,omitempty"`
	LastMove            *models.Move `json:"last_move,omitempty"`
}

// EventFromRecord builds the reconciliation context shared by all event types.
func EventFromRecord(t EventType, g *models.GameRecord) Event {
	ev := Event{
		Type:             t,
		GameID:           g.ID,
		Status:           g.Status,
		CurrentTurn:      g.CurrentTurn,
		MoveCount:        g.MoveCount,
		WhiteID:          g.WhiteID,
		WhiteName:        g.WhiteName,
		BlackID:          g.BlackID,
		BlackName:        g.BlackName,
		WhiteSecondsLeft: g.WhiteSecondsLeft,
		BlackSecondsLeft: g.BlackSecondsLeft,
		WinnerID:         g.WinnerID,
	}
	if t == EventNegotiation {
		ev.DrawOfferBy = g.DrawOfferBy
		ev.TakebackRequestedBy = g.TakebackRequestedBy
	}
	return ev
}

// Marshal renders an event for the wire.
func (e Event) Marshal() ([]byte, error) { return json.Marshal(e) }

// Settlement is queued for downstream notifiers (wallet, rating, tournament)
// when a game finishes. Consumers are external; a lost enqueue never blocks
// or rolls back the game-ending transition.
type Settlement struct {
	GameID       uuid.UUID       `json:"game_id"`
	GameType     models.GameType `json:"game_type"`
	WhiteID      uuid.UUID       `json:"white_id"`
	BlackID      uuid.UUID       `json:"black_id"`
	WinnerID     *uuid.UUID      `json:"winner_id,omitempty"`
	Reason       string          `json:"reason"`
	TournamentID *uuid.UUID      `json:"tournament_id,omitempty"`
	EntryFee     int             `json:"entry_fee"`
	PrizePool    int             `json:"prize_pool"`
	FinishedAt   time.Time       `json:"finished_at"`
}

// Broker is the inter-process broadcast primitive plus the settlement queue.
type Broker interface {
	Publish(ctx context.Context, ev Event) error
	// Subscribe returns a channel of events from all processes and a stop
	// function releasing the subscription.
	Subscribe(ctx context.Context) (<-chan Event, func(), error)
	EnqueueSettlement(ctx context.Context, s Settlement) error
}
