// internal/engine/negotiate.go
//
// Side-negotiation sub-state-machines, each independent of the move machine:
// draw offers, takeback requests, resignation, abort. Each negotiation field
// holds at most one outstanding requester; a second request while one is
// pending is rejected, not queued.
package engine

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jrennick/gambit/internal/broker"
	"github.com/jrennick/gambit/internal/models"
)

// Resign ends the game immediately with the opponent as winner. Always legal
// for a seated player while playing, regardless of board state.
func (s *Service) Resign(ctx context.Context, gameID, userID uuid.UUID) (*models.GameRecord, error) {
	g, seat, err := s.loadSeated(ctx, gameID, userID)
	if err != nil {
		return nil, err
	}
	if g.Status != models.StatusPlaying {
		return nil, errConflict("game is not in progress")
	}
	g.Status = models.StatusFinished
	winner := g.SeatID(seat.Opponent())
	g.WinnerID = &winner
	if err := s.update(ctx, g); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"game_id": g.ID, "resigner": userID, "winner_id": winner,
	}).Info("player resigned")
	s.publish(ctx, g, broker.EventGameFinished, nil)
	s.settle(ctx, g, "resignation")
	return g, nil
}

// OfferDraw records a pending draw offer by the caller.
func (s *Service) OfferDraw(ctx context.Context, gameID, userID uuid.UUID) (*models.GameRecord, error) {
	g, _, err := s.loadSeated(ctx, gameID, userID)
	if err != nil {
		return nil, err
	}
	if g.Status != models.StatusPlaying {
		return nil, errConflict("game is not in progress")
	}
	if g.DrawOfferBy != nil {
		return nil, errConflict("a draw offer is already pending")
	}
	g.DrawOfferBy = &userID
	if err := s.update(ctx, g); err != nil {
		return nil, err
	}
	s.publish(ctx, g, broker.EventNegotiation, nil)
	return g, nil
}

// AcceptDraw finishes the game as a draw. Only the non-offering player may accept.
func (s *Service) AcceptDraw(ctx context.Context, gameID, userID uuid.UUID) (*models.GameRecord, error) {
	g, _, err := s.loadSeated(ctx, gameID, userID)
	if err != nil {
		return nil, err
	}
	if g.Status != models.StatusPlaying {
		return nil, errConflict("game is not in progress")
	}
	if g.DrawOfferBy == nil {
		return nil, errConflict("no draw offer is pending")
	}
	if *g.DrawOfferBy == userID {
		return nil, errConflict("cannot accept your own draw offer")
	}
	g.DrawOfferBy = nil
	g.Status = models.StatusFinished
	g.WinnerID = nil // draw
	if err := s.update(ctx, g); err != nil {
		return nil, err
	}
	s.log.WithField("game_id", g.ID).Info("draw agreed")
	s.publish(ctx, g, broker.EventGameFinished, nil)
	s.settle(ctx, g, "draw_agreed")
	return g, nil
}

// DeclineDraw clears a pending draw offer.
func (s *Service) DeclineDraw(ctx context.Context, gameID, userID uuid.UUID) (*models.GameRecord, error) {
	g, _, err := s.loadSeated(ctx, gameID, userID)
	if err != nil {
		return nil, err
	}
	if g.Status != models.StatusPlaying {
		return nil, errConflict("game is not in progress")
	}
	if g.DrawOfferBy == nil {
		return nil, errConflict("no draw offer is pending")
	}
	g.DrawOfferBy = nil
	if err := s.update(ctx, g); err != nil {
		return nil, err
	}
	s.publish(ctx, g, broker.EventNegotiation, nil)
	return g, nil
}

// RequestTakeback records a pending takeback request by the caller.
func (s *Service) RequestTakeback(ctx context.Context, gameID, userID uuid.UUID) (*models.GameRecord, error) {
	g, _, err := s.loadSeated(ctx, gameID, userID)
	if err != nil {
		return nil, err
	}
	if g.Status != models.StatusPlaying {
		return nil, errConflict("game is not in progress")
	}
	if g.TakebackRequestedBy != nil {
		return nil, errConflict("a takeback request is already pending")
	}
	if g.MoveCount == 0 {
		return nil, errConflict("no moves to take back")
	}
	g.TakebackRequestedBy = &userID
	if err := s.update(ctx, g); err != nil {
		return nil, err
	}
	s.publish(ctx, g, broker.EventNegotiation, nil)
	return g, nil
}

// AcceptTakeback rewinds exactly the last applied move, restoring its
// predecessor's embedded snapshot, and hands the turn back to the side that
// made the rewound move.
func (s *Service) AcceptTakeback(ctx context.Context, gameID, userID uuid.UUID) (*models.GameRecord, error) {
	g, _, err := s.loadSeated(ctx, gameID, userID)
	if err != nil {
		return nil, err
	}
	if g.Status != models.StatusPlaying {
		return nil, errConflict("game is not in progress")
	}
	if g.TakebackRequestedBy == nil {
		return nil, errConflict("no takeback request is pending")
	}
	if *g.TakebackRequestedBy == userID {
		return nil, errConflict("cannot accept your own takeback request")
	}
	if g.MoveCount == 0 {
		return nil, errConflict("no moves to take back")
	}

	last := g.Moves[len(g.Moves)-1]
	g.Moves = g.Moves[:len(g.Moves)-1]
	g.MoveCount = len(g.Moves)
	if g.MoveCount > 0 {
		g.BoardState = g.Moves[g.MoveCount-1].Snapshot
	} else {
		board, err := initialBoard(g.GameType)
		if err != nil {
			return nil, err
		}
		g.BoardState = board
	}
	g.CurrentTurn = colorOfPieceCode(last.Piece)
	g.TakebackRequestedBy = nil
	g.LastMoveAt = s.now()

	if err := s.update(ctx, g); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"game_id": g.ID, "move_count": g.MoveCount,
	}).Info("takeback applied")
	s.publish(ctx, g, broker.EventGameUpdate, nil)
	return g, nil
}

// DeclineTakeback clears a pending takeback request.
func (s *Service) DeclineTakeback(ctx context.Context, gameID, userID uuid.UUID) (*models.GameRecord, error) {
	g, _, err := s.loadSeated(ctx, gameID, userID)
	if err != nil {
		return nil, err
	}
	if g.Status != models.StatusPlaying {
		return nil, errConflict("game is not in progress")
	}
	if g.TakebackRequestedBy == nil {
		return nil, errConflict("no takeback request is pending")
	}
	g.TakebackRequestedBy = nil
	if err := s.update(ctx, g); err != nil {
		return nil, err
	}
	s.publish(ctx, g, broker.EventNegotiation, nil)
	return g, nil
}

// Abort cancels a game that has not started: a seated player may withdraw
// while the record is still waiting for an opponent.
func (s *Service) Abort(ctx context.Context, gameID, userID uuid.UUID) (*models.GameRecord, error) {
	g, _, err := s.loadSeated(ctx, gameID, userID)
	if err != nil {
		return nil, err
	}
	if g.Status != models.StatusWaiting {
		return nil, errConflict("only waiting games can be aborted by a player")
	}
	g.Status = models.StatusAborted
	if err := s.update(ctx, g); err != nil {
		return nil, err
	}
	s.publish(ctx, g, broker.EventGameUpdate, nil)
	return g, nil
}

// ForceAbort is the administrative abort: any non-terminal game can be closed,
// e.g. when a player is found to hold another active game.
func (s *Service) ForceAbort(ctx context.Context, gameID uuid.UUID) (*models.GameRecord, error) {
	g, err := s.load(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if g.Status.Terminal() {
		return nil, errConflict("game already over")
	}
	g.Status = models.StatusAborted
	if err := s.update(ctx, g); err != nil {
		return nil, err
	}
	s.log.WithField("game_id", g.ID).Warn("game force-aborted")
	s.publish(ctx, g, broker.EventGameUpdate, nil)
	return g, nil
}

// colorOfPieceCode reads the owning side off a recorded piece identity
// ("wP", "bm", ...).
func colorOfPieceCode(code string) models.Color {
	if len(code) > 0 && code[0] == 'b' {
		return models.Black
	}
	return models.White
}
