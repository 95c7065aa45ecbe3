// internal/checkers/rules.go
//
// Move generation and execution. The mandatory-capture rule is enforced here:
// whenever any capture exists for the side to move, the legal set contains
// captures only.
package checkers

import (
	"fmt"

	"github.com/jrennick/gambit/internal/models"
)

// Candidate is a generated legal move. Captured is nil for simple moves.
type Candidate struct {
	From     models.Position
	To       models.Position
	Captured *models.Position
}

// LegalMoves returns the legal move set for side. With a pending capture chain
// (s.ChainFrom set) only further captures by that piece are legal. Otherwise,
// if any capture exists anywhere on the board for side, simple moves are
// excluded entirely.
func LegalMoves(s State, side models.Color) []Candidate {
	if s.ChainFrom != nil {
		return capturesFrom(&s.Board, *s.ChainFrom)
	}
	var caps, simples []Candidate
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			pos := models.Position{Row: r, Col: c}
			owner, ok := s.Board.At(pos).Color()
			if !ok || owner != side {
				continue
			}
			caps = append(caps, capturesFrom(&s.Board, pos)...)
			if len(caps) == 0 {
				simples = append(simples, simpleFrom(&s.Board, pos)...)
			}
		}
	}
	if len(caps) > 0 {
		return caps
	}
	return simples
}

// HasCaptureFrom reports whether the piece on pos has at least one capture
// available. Used for chain continuation.
func HasCaptureFrom(b Board, pos models.Position) bool {
	return len(capturesFrom(&b, pos)) > 0
}

// CountPieces returns the number of pieces a side has left.
func CountPieces(b Board, side models.Color) int {
	n := 0
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if owner, ok := b[r][c].Color(); ok && owner == side {
				n++
			}
		}
	}
	return n
}

// Execute plays a validated candidate and returns the new board plus whether
// the moved piece promoted on this move. The input board is not mutated.
func Execute(b Board, c Candidate) (Board, bool) {
	piece := b.At(c.From)
	b.Set(c.From, Empty)
	if c.Captured != nil {
		b.Set(*c.Captured, Empty)
	}
	promoted := false
	if owner, ok := piece.Color(); ok && !piece.King() && c.To.Row == promoRow(owner) {
		promoted = true
		if owner == models.White {
			piece = WhiteKing
		} else {
			piece = BlackKing
		}
	}
	b.Set(c.To, piece)
	return b, promoted
}

func simpleFrom(b *Board, from models.Position) []Candidate {
	piece := b.At(from)
	owner, ok := piece.Color()
	if !ok {
		return nil
	}
	var out []Candidate
	if piece.King() {
		// flying king: slide any distance along an open diagonal
		for _, d := range diagonals {
			r, c := from.Row+d[0], from.Col+d[1]
			for inBounds(r, c) && b[r][c] == Empty {
				out = append(out, Candidate{From: from, To: models.Position{Row: r, Col: c}})
				r += d[0]
				c += d[1]
			}
		}
		return out
	}
	// man: one diagonal step forward only
	for _, d := range forwardDirs(owner) {
		r, c := from.Row+d[0], from.Col+d[1]
		if inBounds(r, c) && b[r][c] == Empty {
			out = append(out, Candidate{From: from, To: models.Position{Row: r, Col: c}})
		}
	}
	return out
}

func capturesFrom(b *Board, from models.Position) []Candidate {
	piece := b.At(from)
	owner, ok := piece.Color()
	if !ok {
		return nil
	}
	var out []Candidate
	if piece.King() {
		// flying king: first occupied square on the ray must be an enemy; every
		// empty square beyond it up to the next occupied square is a landing.
		for _, d := range diagonals {
			r, c := from.Row+d[0], from.Col+d[1]
			for inBounds(r, c) && b[r][c] == Empty {
				r += d[0]
				c += d[1]
			}
			if !inBounds(r, c) {
				continue
			}
			enemy, occupied := b[r][c].Color()
			if !occupied || enemy == owner {
				continue
			}
			cap := models.Position{Row: r, Col: c}
			r += d[0]
			c += d[1]
			for inBounds(r, c) && b[r][c] == Empty {
				capCopy := cap
				out = append(out, Candidate{From: from, To: models.Position{Row: r, Col: c}, Captured: &capCopy})
				r += d[0]
				c += d[1]
			}
		}
		return out
	}
	// man: jump an adjacent enemy, forward or backward
	for _, d := range diagonals {
		mr, mc := from.Row+d[0], from.Col+d[1]
		lr, lc := from.Row+2*d[0], from.Col+2*d[1]
		if !inBounds(lr, lc) {
			continue
		}
		enemy, occupied := b[mr][mc].Color()
		if occupied && enemy != owner && b[lr][lc] == Empty {
			cap := models.Position{Row: mr, Col: mc}
			out = append(out, Candidate{From: from, To: models.Position{Row: lr, Col: lc}, Captured: &cap})
		}
	}
	return out
}

// squareNumber renders a dark square in international draughts numbering
// (1..50, left to right, top to bottom).
func squareNumber(p models.Position) int {
	return p.Row*5 + p.Col/2 + 1
}

// Notation renders a candidate in draughts notation ("32-28", "28x19").
func Notation(c Candidate) string {
	sep := "-"
	if c.Captured != nil {
		sep = "x"
	}
	return fmt.Sprintf("%d%s%d", squareNumber(c.From), sep, squareNumber(c.To))
}
