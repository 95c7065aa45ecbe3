// internal/store/postgres.go
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jrennick/gambit/internal/models"
)

// Postgres persists GameRecords in the games table. Board state and the move
// log live in JSONB columns; the version column carries the compare-and-set
// guard.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const gameColumns = `
	id, game_type, status,
	white_id, white_name, black_id, black_name,
	current_turn, board_state, moves, move_count,
	white_seconds_left, black_seconds_left, initial_time, increment, last_move_at,
	winner_id, draw_offer_by, takeback_requested_by,
	tournament_id, league_id, round, entry_fee, prize_pool, private,
	created_at, updated_at, version`

func scanGame(row pgx.Row) (*models.GameRecord, error) {
	var g models.GameRecord
	var moves []byte
	var whiteID, blackID *uuid.UUID
	err := row.Scan(
		&g.ID, &g.GameType, &g.Status,
		&whiteID, &g.WhiteName, &blackID, &g.BlackName,
		&g.CurrentTurn, &g.BoardState, &moves, &g.MoveCount,
		&g.WhiteSecondsLeft, &g.BlackSecondsLeft, &g.InitialTime, &g.Increment, &g.LastMoveAt,
		&g.WinnerID, &g.DrawOfferBy, &g.TakebackRequestedBy,
		&g.TournamentID, &g.LeagueID, &g.Round, &g.EntryFee, &g.PrizePool, &g.Private,
		&g.CreatedAt, &g.UpdatedAt, &g.Version,
	)
	if err != nil {
		return nil, err
	}
	if whiteID != nil {
		g.WhiteID = *whiteID
	}
	if blackID != nil {
		g.BlackID = *blackID
	}
	if err := json.Unmarshal(moves, &g.Moves); err != nil {
		return nil, fmt.Errorf("failed to decode moves for game %s: %w", g.ID, err)
	}
	return &g, nil
}

func nilIfOpen(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}

func (p *Postgres) Get(ctx context.Context, id uuid.UUID) (*models.GameRecord, error) {
	q := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`
	g, err := scanGame(p.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load game %s: %w", id, err)
	}
	return g, nil
}

func (p *Postgres) Filter(ctx context.Context, f GameFilter) ([]*models.GameRecord, error) {
	q := `SELECT ` + gameColumns + ` FROM games WHERE 1=1`
	var args []any
	if f.Status != nil {
		args = append(args, *f.Status)
		q += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if f.GameType != nil {
		args = append(args, *f.GameType)
		q += fmt.Sprintf(" AND game_type = $%d", len(args))
	}
	if f.PlayerID != nil {
		args = append(args, *f.PlayerID)
		q += fmt.Sprintf(" AND (white_id = $%d OR black_id = $%d)", len(args), len(args))
	}
	q += " ORDER BY created_at DESC"

	rows, err := p.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to filter games: %w", err)
	}
	defer rows.Close()

	var out []*models.GameRecord
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (p *Postgres) Create(ctx context.Context, g *models.GameRecord) error {
	moves, err := json.Marshal(g.Moves)
	if err != nil {
		return fmt.Errorf("failed to encode moves: %w", err)
	}
	g.Version = 1
	q := `INSERT INTO games (` + gameColumns + `)
	      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28)`
	err = pgx.BeginTxFunc(ctx, p.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx, q,
			g.ID, g.GameType, g.Status,
			nilIfOpen(g.WhiteID), g.WhiteName, nilIfOpen(g.BlackID), g.BlackName,
			g.CurrentTurn, g.BoardState, moves, g.MoveCount,
			g.WhiteSecondsLeft, g.BlackSecondsLeft, g.InitialTime, g.Increment, g.LastMoveAt,
			g.WinnerID, g.DrawOfferBy, g.TakebackRequestedBy,
			g.TournamentID, g.LeagueID, g.Round, g.EntryFee, g.PrizePool, g.Private,
			g.CreatedAt, g.UpdatedAt, g.Version,
		)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("failed to insert game %s: %w", g.ID, err)
	}
	return nil
}

// Update rewrites the whole record guarded by the version the caller read.
// Zero rows affected means a concurrent writer won; the caller sees
// ErrVersionConflict and must reload.
func (p *Postgres) Update(ctx context.Context, g *models.GameRecord) error {
	moves, err := json.Marshal(g.Moves)
	if err != nil {
		return fmt.Errorf("failed to encode moves: %w", err)
	}
	g.UpdatedAt = time.Now()
	q := `UPDATE games SET
		status=$2, white_id=$3, white_name=$4, black_id=$5, black_name=$6,
		current_turn=$7, board_state=$8, moves=$9, move_count=$10,
		white_seconds_left=$11, black_seconds_left=$12, last_move_at=$13,
		winner_id=$14, draw_offer_by=$15, takeback_requested_by=$16,
		updated_at=$17, version=version+1
	  WHERE id=$1 AND version=$18`
	tag, err := p.pool.Exec(ctx, q,
		g.ID,
		g.Status, nilIfOpen(g.WhiteID), g.WhiteName, nilIfOpen(g.BlackID), g.BlackName,
		g.CurrentTurn, g.BoardState, moves, g.MoveCount,
		g.WhiteSecondsLeft, g.BlackSecondsLeft, g.LastMoveAt,
		g.WinnerID, g.DrawOfferBy, g.TakebackRequestedBy,
		g.UpdatedAt, g.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update game %s: %w", g.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	g.Version++
	return nil
}
