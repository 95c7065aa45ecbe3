// internal/chess/execute.go
package chess

import "github.com/jrennick/gambit/internal/models"

// Outcome classifies a position for the side about to move.
type Outcome int

const (
	Playing Outcome = iota
	Checkmate
	Stalemate
	DrawFiftyMove
	DrawRepetition
)

func (o Outcome) Terminal() bool { return o != Playing }

// Draw reports whether the outcome ends the game with no winner.
func (o Outcome) Draw() bool {
	return o == Stalemate || o == DrawFiftyMove || o == DrawRepetition
}

func (o Outcome) String() string {
	switch o {
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	case DrawFiftyMove:
		return "draw_fifty_move"
	case DrawRepetition:
		return "draw_repetition"
	default:
		return "playing"
	}
}

// Execute plays a validated candidate and returns the resulting state plus the
// identity of the piece that moved (pre-promotion). The input state is not
// mutated. promo selects the promotion piece when the candidate promotes;
// 0 defaults to queen.
func Execute(s State, c Candidate, promo Kind) (State, Piece) {
	ns := s
	ns.Seen = make(map[string]int, len(s.Seen)+1)
	for k, v := range s.Seen {
		ns.Seen[k] = v
	}

	piece := s.Board.At(c.From)
	side := piece.Color()

	ns.Board.Set(c.From, Empty)
	if c.Captured != nil && *c.Captured != c.To {
		// en passant: the captured pawn is not on the destination square
		ns.Board.Set(*c.Captured, Empty)
	}
	placed := piece
	if c.Promotes {
		if promo == 0 {
			promo = Queen
		}
		placed = PieceOf(side, promo)
	}
	ns.Board.Set(c.To, placed)

	// castling moves the rook alongside the king
	if piece.Kind() == King && c.To.Col-c.From.Col == 2 {
		ns.Board.Set(models.Position{Row: c.From.Row, Col: 5}, PieceOf(side, Rook))
		ns.Board.Set(models.Position{Row: c.From.Row, Col: 7}, Empty)
	}
	if piece.Kind() == King && c.From.Col-c.To.Col == 2 {
		ns.Board.Set(models.Position{Row: c.From.Row, Col: 3}, PieceOf(side, Rook))
		ns.Board.Set(models.Position{Row: c.From.Row, Col: 0}, Empty)
	}

	updateRights(&ns.Rights, piece, c)

	if piece.Kind() == Pawn || c.Captured != nil {
		ns.HalfmoveClock = 0
	} else {
		ns.HalfmoveClock++
	}
	ns.Last = &LastMove{From: c.From, To: c.To, Piece: piece}
	ns.Seen[encode(&ns.Board, ns.Rights, side.Opponent())]++
	return ns, piece
}

// updateRights revokes castling rights on king moves, rook moves off their
// original squares, and captures landing on a rook's original square.
func updateRights(r *CastlingRights, piece Piece, c Candidate) {
	if piece.Kind() == King {
		if piece.Color() == models.White {
			r.WhiteKingside, r.WhiteQueenside = false, false
		} else {
			r.BlackKingside, r.BlackQueenside = false, false
		}
	}
	for _, sq := range []models.Position{c.From, c.To} {
		switch sq {
		case models.Position{Row: 7, Col: 0}:
			r.WhiteQueenside = false
		case models.Position{Row: 7, Col: 7}:
			r.WhiteKingside = false
		case models.Position{Row: 0, Col: 0}:
			r.BlackQueenside = false
		case models.Position{Row: 0, Col: 7}:
			r.BlackKingside = false
		}
	}
}

// Classify determines the terminal status for the side about to move:
// checkmate or stalemate when no legal response exists, a draw on halfmove
// clock exhaustion or threefold repetition, otherwise still playing.
func Classify(s State, sideToMove models.Color) Outcome {
	if len(LegalMoves(s, sideToMove)) == 0 {
		if InCheck(s, sideToMove) {
			return Checkmate
		}
		return Stalemate
	}
	if s.HalfmoveClock >= 100 {
		return DrawFiftyMove
	}
	for _, n := range s.Seen {
		if n >= 3 {
			return DrawRepetition
		}
	}
	return Playing
}
