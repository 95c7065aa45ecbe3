// Package store persists GameRecords as whole keyed records. Updates are
// conditional on the record version: the read-check-write sequence in the move
// path relies on this compare-and-set to reject the loser of a submission race
// instead of silently corrupting state.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jrennick/gambit/internal/models"
)

// ErrNotFound is returned when no record exists for the given id.
var ErrNotFound = errors.New("game not found")

// ErrVersionConflict is returned by Update when the stored record no longer
// carries the version the caller read. The caller must reload and re-validate.
var ErrVersionConflict = errors.New("game record version conflict")

// GameFilter narrows Filter results. Nil fields are ignored.
type GameFilter struct {
	Status   *models.GameStatus
	GameType *models.GameType
	PlayerID *uuid.UUID
}

// GameStore is the keyed-record contract the engine depends on.
type GameStore interface {
	Get(ctx context.Context, id uuid.UUID) (*models.GameRecord, error)
	Filter(ctx context.Context, f GameFilter) ([]*models.GameRecord, error)
	// Create persists a new record and stamps Version 1.
	Create(ctx context.Context, g *models.GameRecord) error
	// Update writes the whole record if and only if the stored version equals
	// g.Version, then increments it. ErrVersionConflict otherwise.
	Update(ctx context.Context, g *models.GameRecord) error
}
