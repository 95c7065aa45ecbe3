// Package engine owns the authoritative game state machine. Every request
// handler is stateless: the persisted GameRecord is the single source of
// truth, all server processes are peers reading and writing it on demand, and
// the store's compare-and-set update is what serializes racing writers.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jrennick/gambit/internal/broker"
	"github.com/jrennick/gambit/internal/checkers"
	"github.com/jrennick/gambit/internal/chess"
	"github.com/jrennick/gambit/internal/models"
	"github.com/jrennick/gambit/internal/store"
)

// Service validates and applies every game mutation.
type Service struct {
	store  store.GameStore
	broker broker.Broker
	log    *logrus.Logger

	// now is swappable for deterministic clock tests.
	now func() time.Time
}

func NewService(st store.GameStore, br broker.Broker, log *logrus.Logger) *Service {
	return &Service{store: st, broker: br, log: log, now: time.Now}
}

// CreateParams describes a new match.
type CreateParams struct {
	GameType  models.GameType `json:"game_type"`
	WhiteID   uuid.UUID       `json:"white_id"`
	WhiteName string          `json:"white_name"`
	BlackID   uuid.UUID       `json:"black_id"`
	BlackName string          `json:"black_name"`

	// InitialTime and Increment are in seconds.
	InitialTime int `json:"initial_time"`
	Increment   int `json:"increment"`

	TournamentID *uuid.UUID `json:"tournament_id,omitempty"`
	LeagueID     *uuid.UUID `json:"league_id,omitempty"`
	Round        int        `json:"round,omitempty"`
	EntryFee     int        `json:"entry_fee,omitempty"`
	PrizePool    int        `json:"prize_pool,omitempty"`
	Private      bool       `json:"private,omitempty"`
}

// initialBoard serializes the starting position for a game type.
func initialBoard(t models.GameType) (json.RawMessage, error) {
	switch t {
	case models.GameTypeChess:
		return json.Marshal(chess.NewState())
	case models.GameTypeCheckers:
		return json.Marshal(checkers.NewState())
	default:
		return nil, errInvalid("unknown game type")
	}
}

// CreateGame creates a record in waiting or, when both seats are known up
// front (arena pairing), directly in playing with the clock anchored at now.
func (s *Service) CreateGame(ctx context.Context, p CreateParams) (*models.GameRecord, error) {
	board, err := initialBoard(p.GameType)
	if err != nil {
		return nil, err
	}
	if p.InitialTime <= 0 {
		return nil, errInvalid("initial_time must be positive")
	}
	if p.Increment < 0 {
		return nil, errInvalid("increment must not be negative")
	}

	now := s.now()
	g := &models.GameRecord{
		ID:               uuid.New(),
		GameType:         p.GameType,
		Status:           models.StatusWaiting,
		WhiteID:          p.WhiteID,
		WhiteName:        p.WhiteName,
		BlackID:          p.BlackID,
		BlackName:        p.BlackName,
		CurrentTurn:      models.White,
		BoardState:       board,
		Moves:            []models.Move{},
		WhiteSecondsLeft: float64(p.InitialTime),
		BlackSecondsLeft: float64(p.InitialTime),
		InitialTime:      p.InitialTime,
		Increment:        p.Increment,
		LastMoveAt:       now,
		TournamentID:     p.TournamentID,
		LeagueID:         p.LeagueID,
		Round:            p.Round,
		EntryFee:         p.EntryFee,
		PrizePool:        p.PrizePool,
		Private:          p.Private,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if _, open := g.OpenSeat(); !open {
		g.Status = models.StatusPlaying
	}
	if err := s.store.Create(ctx, g); err != nil {
		return nil, errInternal("failed to create game", err)
	}
	s.log.WithFields(logrus.Fields{
		"game_id": g.ID, "game_type": g.GameType, "status": g.Status,
	}).Info("game created")
	s.publish(ctx, g, broker.EventGameUpdate, nil)
	return g, nil
}

// Join fills an open seat; the instant both seats are filled the game moves to
// playing and white's clock starts running.
func (s *Service) Join(ctx context.Context, gameID, userID uuid.UUID, username string) (*models.GameRecord, error) {
	g, err := s.load(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if g.Status != models.StatusWaiting {
		return nil, errConflict("game is not open for joining")
	}
	if _, seated := g.SeatOf(userID); seated {
		return nil, errConflict("already seated in this game")
	}
	seat, open := g.OpenSeat()
	if !open {
		return nil, errConflict("all seats are filled")
	}
	if seat == models.White {
		g.WhiteID, g.WhiteName = userID, username
	} else {
		g.BlackID, g.BlackName = userID, username
	}
	if _, open := g.OpenSeat(); !open {
		g.Status = models.StatusPlaying
		g.LastMoveAt = s.now()
	}
	if err := s.update(ctx, g); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"game_id": g.ID, "user_id": userID, "seat": seat, "status": g.Status,
	}).Info("seat filled")
	s.publish(ctx, g, broker.EventSeatFilled, nil)
	return g, nil
}

// Game returns the full record by id.
func (s *Service) Game(ctx context.Context, id uuid.UUID) (*models.GameRecord, error) {
	return s.load(ctx, id)
}

// Games lists records matching the filter.
func (s *Service) Games(ctx context.Context, f store.GameFilter) ([]*models.GameRecord, error) {
	out, err := s.store.Filter(ctx, f)
	if err != nil {
		return nil, errInternal("failed to list games", err)
	}
	return out, nil
}

// Replay returns the applied move sequence with its embedded per-move board
// snapshots, consumable by analysis collaborators without re-deriving state.
func (s *Service) Replay(ctx context.Context, id uuid.UUID) ([]models.Move, error) {
	g, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return g.Moves, nil
}

func (s *Service) load(ctx context.Context, id uuid.UUID) (*models.GameRecord, error) {
	g, err := s.store.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, errNotFound(id)
	}
	if err != nil {
		return nil, errInternal("failed to load game", err)
	}
	return g, nil
}

// loadSeated loads a record and resolves the caller's seat.
func (s *Service) loadSeated(ctx context.Context, gameID, userID uuid.UUID) (*models.GameRecord, models.Color, error) {
	if userID == uuid.Nil {
		return nil, "", &Error{Code: CodeUnauthorized, Message: "no resolvable identity"}
	}
	g, err := s.load(ctx, gameID)
	if err != nil {
		return nil, "", err
	}
	seat, ok := g.SeatOf(userID)
	if !ok {
		return nil, "", errNotAPlayer()
	}
	return g, seat, nil
}

// update persists via compare-and-set, surfacing a lost race as Conflict.
func (s *Service) update(ctx context.Context, g *models.GameRecord) error {
	err := s.store.Update(ctx, g)
	if errors.Is(err, store.ErrVersionConflict) {
		return errConflict("concurrent update detected, retry")
	}
	if err != nil {
		return errInternal("failed to persist game", err)
	}
	return nil
}

// publish pushes the compact update event plus the explicit refetch signal.
// A failed publish degrades to clients falling back on refetch polling; it is
// never allowed to fail the mutation that already committed.
func (s *Service) publish(ctx context.Context, g *models.GameRecord, t broker.EventType, lastMove *models.Move) {
	ev := broker.EventFromRecord(t, g)
	ev.LastMove = lastMove
	if err := s.broker.Publish(ctx, ev); err != nil {
		s.log.WithError(err).WithField("game_id", g.ID).Warn("event publish failed")
		return
	}
	if err := s.broker.Publish(ctx, broker.EventFromRecord(broker.EventRefetch, g)); err != nil {
		s.log.WithError(err).WithField("game_id", g.ID).Warn("refetch publish failed")
	}
}

// settle enqueues the finished game for downstream notifiers. Failures are
// logged and dropped: settlement must never roll back a game-ending transition.
func (s *Service) settle(ctx context.Context, g *models.GameRecord, reason string) {
	if g.Status != models.StatusFinished {
		return
	}
	err := s.broker.EnqueueSettlement(ctx, broker.Settlement{
		GameID:       g.ID,
		GameType:     g.GameType,
		WhiteID:      g.WhiteID,
		BlackID:      g.BlackID,
		WinnerID:     g.WinnerID,
		Reason:       reason,
		TournamentID: g.TournamentID,
		EntryFee:     g.EntryFee,
		PrizePool:    g.PrizePool,
		FinishedAt:   s.now(),
	})
	if err != nil {
		s.log.WithError(err).WithField("game_id", g.ID).Warn("settlement enqueue failed")
	}
}
