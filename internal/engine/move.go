// internal/engine/move.go
package engine

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jrennick/gambit/internal/broker"
	"github.com/jrennick/gambit/internal/checkers"
	"github.com/jrennick/gambit/internal/chess"
	"github.com/jrennick/gambit/internal/models"
)

// MoveRequest is a candidate move as submitted by a seated player.
type MoveRequest struct {
	From      models.Position  `json:"from"`
	To        models.Position  `json:"to"`
	Captured  *models.Position `json:"captured,omitempty"`
	Promotion string           `json:"promotion,omitempty"`
}

// moveOutcome is what a rule engine reported back for an accepted move.
type moveOutcome struct {
	snapshot  json.RawMessage
	piece     string
	captured  *models.Position
	promotion string
	notation  string
	finished  bool
	draw      bool
	keepTurn  bool
	reason    string
}

func boardSize(t models.GameType) int {
	if t == models.GameTypeCheckers {
		return checkers.Size
	}
	return 8
}

func validCoord(p models.Position, size int) bool {
	return p.Row >= 0 && p.Row < size && p.Col >= 0 && p.Col < size
}

// SubmitMove is the authoritative move path: load, authorize, gate on status,
// delegate legality to the matching rule engine, execute, account the clock,
// classify the terminal status, append to history, persist (compare-and-set),
// and fan out.
func (s *Service) SubmitMove(ctx context.Context, gameID, userID uuid.UUID, req MoveRequest) (*models.GameRecord, error) {
	g, seat, err := s.loadSeated(ctx, gameID, userID)
	if err != nil {
		return nil, err
	}
	if g.Status != models.StatusWaiting && g.Status != models.StatusPlaying {
		return nil, errConflict("game is not accepting moves")
	}
	if seat != g.CurrentTurn {
		return nil, errNotYourTurn()
	}
	size := boardSize(g.GameType)
	if !validCoord(req.From, size) || !validCoord(req.To, size) {
		return nil, errInvalid("move coordinates out of range")
	}

	var res *moveOutcome
	switch g.GameType {
	case models.GameTypeChess:
		res, err = applyChess(g, req)
	case models.GameTypeCheckers:
		res, err = applyCheckers(g, req)
	default:
		return nil, errInternal("unknown game type on record", nil)
	}
	if err != nil {
		return nil, err
	}

	now := s.now()
	s.chargeMove(g, seat, now)

	mv := models.Move{
		From:      req.From,
		To:        req.To,
		Captured:  res.captured,
		Promotion: res.promotion,
		Piece:     res.piece,
		Notation:  res.notation,
		Snapshot:  res.snapshot,
	}
	g.BoardState = res.snapshot
	g.Moves = append(g.Moves, mv)
	g.MoveCount = len(g.Moves)
	g.LastMoveAt = now

	switch {
	case res.finished:
		g.Status = models.StatusFinished
		if !res.draw {
			w := g.SeatID(seat)
			g.WinnerID = &w
		}
		// current_turn is frozen at its last value
	case res.keepTurn:
		// capture chain continues: same side must keep jumping
	default:
		g.CurrentTurn = seat.Opponent()
	}

	if err := s.update(ctx, g); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"game_id":  g.ID,
		"user_id":  userID,
		"notation": mv.Notation,
		"status":   g.Status,
		"turn":     g.CurrentTurn,
	}).Info("move applied")

	evType := broker.EventGameUpdate
	if res.finished {
		evType = broker.EventGameFinished
	}
	s.publish(ctx, g, evType, &mv)
	if res.finished {
		s.settle(ctx, g, res.reason)
	}
	return g, nil
}

func applyChess(g *models.GameRecord, req MoveRequest) (*moveOutcome, error) {
	var st chess.State
	if err := json.Unmarshal(g.BoardState, &st); err != nil {
		return nil, errInternal("corrupt chess board state", err)
	}
	side := g.CurrentTurn

	var cand *chess.Candidate
	legal := chess.LegalMoves(st, side)
	for i := range legal {
		if legal[i].From == req.From && legal[i].To == req.To {
			cand = &legal[i]
			break
		}
	}
	if cand == nil {
		return nil, errIllegalMove("move is not in the legal set")
	}

	promo := chess.Queen
	if req.Promotion != "" {
		promo = chess.KindFromLetter(req.Promotion)
		if promo == 0 {
			return nil, errInvalid("unknown promotion piece")
		}
	}

	ns, piece := chess.Execute(st, *cand, promo)
	outcome := chess.Classify(ns, side.Opponent())
	snap, err := json.Marshal(ns)
	if err != nil {
		return nil, errInternal("failed to serialize chess state", err)
	}
	promoStr := ""
	if cand.Promotes {
		promoStr = string(rune(promo))
	}
	return &moveOutcome{
		snapshot:  snap,
		piece:     string(piece),
		captured:  cand.Captured,
		promotion: promoStr,
		notation:  chess.Notation(*cand, piece, promo),
		finished:  outcome.Terminal(),
		draw:      outcome.Draw(),
		reason:    outcome.String(),
	}, nil
}

func applyCheckers(g *models.GameRecord, req MoveRequest) (*moveOutcome, error) {
	var st checkers.State
	if err := json.Unmarshal(g.BoardState, &st); err != nil {
		return nil, errInternal("corrupt checkers board state", err)
	}
	side := g.CurrentTurn

	var cand *checkers.Candidate
	legal := checkers.LegalMoves(st, side)
	for i := range legal {
		if legal[i].From == req.From && legal[i].To == req.To {
			cand = &legal[i]
			break
		}
	}
	if cand == nil {
		return nil, errIllegalMove("move is not in the legal set")
	}

	piece := st.Board.At(req.From)
	newBoard, promoted := checkers.Execute(st.Board, *cand)

	// the chain continues only for a capture whose landing piece did not just
	// promote and still has a capture available
	chain := cand.Captured != nil && !promoted && checkers.HasCaptureFrom(newBoard, cand.To)

	ns := checkers.State{Board: newBoard}
	if chain {
		landing := cand.To
		ns.ChainFrom = &landing
	}

	finished := false
	reason := ""
	if !chain {
		opp := side.Opponent()
		if checkers.CountPieces(newBoard, opp) == 0 {
			finished, reason = true, "no_pieces_left"
		} else if len(checkers.LegalMoves(ns, opp)) == 0 {
			finished, reason = true, "blocked"
		}
	}

	snap, err := json.Marshal(ns)
	if err != nil {
		return nil, errInternal("failed to serialize checkers state", err)
	}
	promoStr := ""
	if promoted {
		promoStr = "K"
	}
	return &moveOutcome{
		snapshot:  snap,
		piece:     piece.Code(),
		captured:  cand.Captured,
		promotion: promoStr,
		notation:  checkers.Notation(*cand),
		finished:  finished,
		keepTurn:  chain,
		reason:    reason,
	}, nil
}
