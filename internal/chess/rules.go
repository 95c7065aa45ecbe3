// internal/chess/rules.go
//
// Legal-move generation: full pseudo-legal generation per piece followed by a
// self-check filter, plus the attack scan used for check and castling-transit
// tests.
package chess

import "github.com/jrennick/gambit/internal/models"

var (
	knightOffsets = [8][2]int{{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2}, {1, -2}, {1, 2}, {2, -1}, {2, 1}}
	kingOffsets   = [8][2]int{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}
	bishopDirs    = [4][2]int{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
	rookDirs      = [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
)

// pawnDir is the row delta a pawn of the given color advances by.
func pawnDir(c models.Color) int {
	if c == models.White {
		return -1
	}
	return 1
}

func pawnStartRow(c models.Color) int {
	if c == models.White {
		return 6
	}
	return 1
}

func promoRow(c models.Color) int {
	if c == models.White {
		return 0
	}
	return 7
}

func backRank(c models.Color) int {
	if c == models.White {
		return 7
	}
	return 0
}

// LegalMoves returns every legal move for the given side: pseudo-legal
// candidates filtered so the mover's own king is never left in check, plus any
// available castles.
func LegalMoves(s State, side models.Color) []Candidate {
	var out []Candidate
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			p := s.Board[r][c]
			if p.IsEmpty() || p.Color() != side {
				continue
			}
			for _, cand := range pseudoFrom(&s, models.Position{Row: r, Col: c}) {
				nb := applyToBoard(s.Board, cand)
				if !kingInCheck(&nb, side) {
					out = append(out, cand)
				}
			}
		}
	}
	out = append(out, castleMoves(&s, side)...)
	return out
}

// InCheck reports whether the given side's king is attacked.
func InCheck(s State, side models.Color) bool {
	return kingInCheck(&s.Board, side)
}

// pseudoFrom generates pseudo-legal moves for the piece on from, ignoring
// whether they expose the mover's king. Castling is handled separately.
func pseudoFrom(s *State, from models.Position) []Candidate {
	p := s.Board.At(from)
	side := p.Color()
	var out []Candidate

	addSlides := func(dirs [4][2]int) {
		for _, d := range dirs {
			r, c := from.Row+d[0], from.Col+d[1]
			for inBounds(r, c) {
				to := models.Position{Row: r, Col: c}
				occ := s.Board.At(to)
				if occ.IsEmpty() {
					out = append(out, Candidate{From: from, To: to})
				} else {
					if occ.Color() != side {
						cap := to
						out = append(out, Candidate{From: from, To: to, Captured: &cap})
					}
					break
				}
				r += d[0]
				c += d[1]
			}
		}
	}
	addHops := func(offs [8][2]int) {
		for _, d := range offs {
			r, c := from.Row+d[0], from.Col+d[1]
			if !inBounds(r, c) {
				continue
			}
			to := models.Position{Row: r, Col: c}
			occ := s.Board.At(to)
			if occ.IsEmpty() {
				out = append(out, Candidate{From: from, To: to})
			} else if occ.Color() != side {
				cap := to
				out = append(out, Candidate{From: from, To: to, Captured: &cap})
			}
		}
	}

	switch p.Kind() {
	case Pawn:
		out = append(out, pawnMoves(s, from, side)...)
	case Knight:
		addHops(knightOffsets)
	case Bishop:
		addSlides(bishopDirs)
	case Rook:
		addSlides(rookDirs)
	case Queen:
		addSlides(bishopDirs)
		addSlides(rookDirs)
	case King:
		addHops(kingOffsets)
	}
	return out
}

func pawnMoves(s *State, from models.Position, side models.Color) []Candidate {
	var out []Candidate
	dir := pawnDir(side)
	promo := promoRow(side)

	push := func(c Candidate) {
		c.Promotes = c.To.Row == promo
		out = append(out, c)
	}

	// single and double step
	one := models.Position{Row: from.Row + dir, Col: from.Col}
	if inBounds(one.Row, one.Col) && s.Board.At(one).IsEmpty() {
		push(Candidate{From: from, To: one})
		if from.Row == pawnStartRow(side) {
			two := models.Position{Row: from.Row + 2*dir, Col: from.Col}
			if s.Board.At(two).IsEmpty() {
				push(Candidate{From: from, To: two})
			}
		}
	}

	// diagonal captures
	for _, dc := range [2]int{-1, 1} {
		r, c := from.Row+dir, from.Col+dc
		if !inBounds(r, c) {
			continue
		}
		to := models.Position{Row: r, Col: c}
		occ := s.Board.At(to)
		if !occ.IsEmpty() && occ.Color() != side {
			cap := to
			push(Candidate{From: from, To: to, Captured: &cap})
		}
	}

	// en passant: previous move was an enemy pawn double-step landing beside us
	if lm := s.Last; lm != nil && lm.Piece.Kind() == Pawn && lm.Piece.Color() != side {
		if lm.To.Row-lm.From.Row == 2*pawnDir(lm.Piece.Color()) &&
			lm.To.Row == from.Row && (lm.To.Col == from.Col-1 || lm.To.Col == from.Col+1) {
			cap := lm.To
			to := models.Position{Row: from.Row + dir, Col: lm.To.Col}
			push(Candidate{From: from, To: to, Captured: &cap})
		}
	}
	return out
}

// castleMoves emits available castles for side. Requirements: the rights flag
// still held, the squares between king and rook empty, the king not currently
// in check, and neither the transit nor the destination square attacked.
func castleMoves(s *State, side models.Color) []Candidate {
	row := backRank(side)
	if s.Board[row][4] != PieceOf(side, King) {
		return nil
	}
	opp := side.Opponent()
	if attacked(&s.Board, models.Position{Row: row, Col: 4}, opp) {
		return nil
	}
	var out []Candidate

	kingside := (side == models.White && s.Rights.WhiteKingside) ||
		(side == models.Black && s.Rights.BlackKingside)
	if kingside && s.Board[row][7] == PieceOf(side, Rook) &&
		s.Board[row][5].IsEmpty() && s.Board[row][6].IsEmpty() &&
		!attacked(&s.Board, models.Position{Row: row, Col: 5}, opp) &&
		!attacked(&s.Board, models.Position{Row: row, Col: 6}, opp) {
		out = append(out, Candidate{
			From:   models.Position{Row: row, Col: 4},
			To:     models.Position{Row: row, Col: 6},
			castle: castleKingside,
		})
	}

	queenside := (side == models.White && s.Rights.WhiteQueenside) ||
		(side == models.Black && s.Rights.BlackQueenside)
	if queenside && s.Board[row][0] == PieceOf(side, Rook) &&
		s.Board[row][1].IsEmpty() && s.Board[row][2].IsEmpty() && s.Board[row][3].IsEmpty() &&
		!attacked(&s.Board, models.Position{Row: row, Col: 3}, opp) &&
		!attacked(&s.Board, models.Position{Row: row, Col: 2}, opp) {
		out = append(out, Candidate{
			From:   models.Position{Row: row, Col: 4},
			To:     models.Position{Row: row, Col: 2},
			castle: castleQueenside,
		})
	}
	return out
}

// applyToBoard plays a candidate onto a copy of the board, enough for the
// self-check filter. Promotion identity is irrelevant to that test, so the
// pawn is left as-is; Execute handles the real transformation.
func applyToBoard(b Board, c Candidate) Board {
	p := b.At(c.From)
	b.Set(c.From, Empty)
	if c.Captured != nil && *c.Captured != c.To {
		b.Set(*c.Captured, Empty)
	}
	b.Set(c.To, p)
	return b
}

func kingInCheck(b *Board, side models.Color) bool {
	king := PieceOf(side, King)
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			if b[r][c] == king {
				return attacked(b, models.Position{Row: r, Col: c}, side.Opponent())
			}
		}
	}
	return false
}

// attacked reports whether pos is attacked by any piece of color by.
func attacked(b *Board, pos models.Position, by models.Color) bool {
	// pawns: a pawn attacks one row ahead of itself, so look one row behind pos
	pr := pos.Row - pawnDir(by)
	for _, dc := range [2]int{-1, 1} {
		if inBounds(pr, pos.Col+dc) && b[pr][pos.Col+dc] == PieceOf(by, Pawn) {
			return true
		}
	}
	// knights
	for _, d := range knightOffsets {
		r, c := pos.Row+d[0], pos.Col+d[1]
		if inBounds(r, c) && b[r][c] == PieceOf(by, Knight) {
			return true
		}
	}
	// adjacent king
	for _, d := range kingOffsets {
		r, c := pos.Row+d[0], pos.Col+d[1]
		if inBounds(r, c) && b[r][c] == PieceOf(by, King) {
			return true
		}
	}
	// sliders
	scan := func(dirs [4][2]int, kinds ...Kind) bool {
		for _, d := range dirs {
			r, c := pos.Row+d[0], pos.Col+d[1]
			for inBounds(r, c) {
				occ := b[r][c]
				if !occ.IsEmpty() {
					if occ.Color() == by {
						for _, k := range kinds {
							if occ.Kind() == k {
								return true
							}
						}
					}
					break
				}
				r += d[0]
				c += d[1]
			}
		}
		return false
	}
	if scan(bishopDirs, Bishop, Queen) {
		return true
	}
	return scan(rookDirs, Rook, Queen)
}
