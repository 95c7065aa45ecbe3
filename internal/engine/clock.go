// internal/engine/clock.go
//
// Elapsed-time accounting. Remaining time is authoritative only as of
// last_move_at; everything since is charged lazily to whichever side is on
// turn. Timeout is a separate event from move submission, resolved by a
// periodic sweep.
package engine

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jrennick/gambit/internal/broker"
	"github.com/jrennick/gambit/internal/models"
	"github.com/jrennick/gambit/internal/store"
)

// chargeMove debits the mover's clock for the time since last_move_at, clamps
// at zero (a confirmed move never drives a clock negative), then credits the
// increment to the mover only.
func (s *Service) chargeMove(g *models.GameRecord, mover models.Color, now time.Time) {
	elapsed := now.Sub(g.LastMoveAt).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	rem := g.SecondsLeft(mover) - elapsed
	if rem < 0 {
		rem = 0
	}
	g.SetSecondsLeft(mover, rem+float64(g.Increment))
}

// ProjectedRemaining is the live view of a side's clock: the persisted value
// minus time elapsed since last_move_at if that side is on turn in a running
// game.
func (s *Service) ProjectedRemaining(g *models.GameRecord, side models.Color, now time.Time) float64 {
	rem := g.SecondsLeft(side)
	if g.Status == models.StatusPlaying && g.CurrentTurn == side {
		rem -= now.Sub(g.LastMoveAt).Seconds()
	}
	return rem
}

// SweepTimeouts finishes every playing game whose side to move has run out of
// time, awarding the win to the opponent. Returns the number of games closed.
// A concurrent move beating the sweep's write is fine: the version conflict
// means the clock was just fed, and the next sweep re-evaluates.
func (s *Service) SweepTimeouts(ctx context.Context) (int, error) {
	playing := models.StatusPlaying
	games, err := s.store.Filter(ctx, store.GameFilter{Status: &playing})
	if err != nil {
		return 0, errInternal("failed to list playing games", err)
	}
	closed := 0
	now := s.now()
	for _, g := range games {
		loser := g.CurrentTurn
		if s.ProjectedRemaining(g, loser, now) > 0 {
			continue
		}
		g.SetSecondsLeft(loser, 0)
		g.Status = models.StatusFinished
		winner := g.SeatID(loser.Opponent())
		g.WinnerID = &winner
		if err := s.store.Update(ctx, g); err != nil {
			continue
		}
		s.log.WithFields(logrus.Fields{
			"game_id": g.ID, "loser": loser, "winner_id": winner,
		}).Info("game timed out")
		s.publish(ctx, g, broker.EventGameFinished, nil)
		s.settle(ctx, g, "timeout")
		closed++
	}
	return closed, nil
}
