// Package chess implements the orthodox chess rule engine: legal-move
// generation, move execution, and terminal classification. All functions are
// pure; callers own the State values and nothing here mutates shared state.
package chess

import (
	"strings"

	"github.com/jrennick/gambit/internal/models"
)

// Kind is a piece kind, encoded by its English letter.
type Kind byte

const (
	Pawn   Kind = 'P'
	Knight Kind = 'N'
	Bishop Kind = 'B'
	Rook   Kind = 'R'
	Queen  Kind = 'Q'
	King   Kind = 'K'
)

// KindFromLetter resolves a promotion piece letter (case-insensitive).
// Unknown or empty input returns 0.
func KindFromLetter(s string) Kind {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "N":
		return Knight
	case "B":
		return Bishop
	case "R":
		return Rook
	case "Q":
		return Queen
	default:
		return 0
	}
}

// Piece is a square occupant: "" for empty, else a color prefix plus kind
// letter ("wP", "bK", ...).
type Piece string

const Empty Piece = ""

// PieceOf builds the piece code for a color and kind.
func PieceOf(c models.Color, k Kind) Piece {
	prefix := "w"
	if c == models.Black {
		prefix = "b"
	}
	return Piece(prefix + string(k))
}

func (p Piece) IsEmpty() bool { return p == Empty }

// Color returns the owning side. Undefined for Empty; callers check IsEmpty first.
func (p Piece) Color() models.Color {
	if p[0] == 'w' {
		return models.White
	}
	return models.Black
}

func (p Piece) Kind() Kind { return Kind(p[1]) }

// Board is the 8x8 matrix. Row 0 is black's back rank, row 7 white's.
type Board [8][8]Piece

func (b *Board) At(p models.Position) Piece      { return b[p.Row][p.Col] }
func (b *Board) Set(p models.Position, pc Piece) { b[p.Row][p.Col] = pc }

func inBounds(r, c int) bool { return r >= 0 && r < 8 && c >= 0 && c < 8 }

// CastlingRights tracks which castles remain available. A flag is revoked the
// moment the king or the relevant rook moves, or the rook's original square is
// captured on.
type CastlingRights struct {
	WhiteKingside  bool `json:"wk"`
	WhiteQueenside bool `json:"wq"`
	BlackKingside  bool `json:"bk"`
	BlackQueenside bool `json:"bq"`
}

// LastMove anchors en passant: the capture is keyed off the immediately
// preceding move only.
type LastMove struct {
	From  models.Position `json:"from"`
	To    models.Position `json:"to"`
	Piece Piece           `json:"piece"`
}

// State is the full serialized chess position: board, castling rights, last
// move, halfmove clock, and the repetition table keyed by canonical encodings.
type State struct {
	Board         Board          `json:"board"`
	Rights        CastlingRights `json:"rights"`
	Last          *LastMove      `json:"last,omitempty"`
	HalfmoveClock int            `json:"halfmove_clock"`
	Seen          map[string]int `json:"seen"`
}

// NewState returns the initial position with the starting side (white) already
// counted once in the repetition table.
func NewState() State {
	var b Board
	back := []Kind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for c, k := range back {
		b[0][c] = PieceOf(models.Black, k)
		b[1][c] = PieceOf(models.Black, Pawn)
		b[6][c] = PieceOf(models.White, Pawn)
		b[7][c] = PieceOf(models.White, k)
	}
	s := State{
		Board: b,
		Rights: CastlingRights{
			WhiteKingside: true, WhiteQueenside: true,
			BlackKingside: true, BlackQueenside: true,
		},
		Seen: map[string]int{},
	}
	s.Seen[encode(&s.Board, s.Rights, models.White)] = 1
	return s
}

// encode produces the canonical position key used for threefold repetition:
// board occupancy plus castling rights plus side to move.
func encode(b *Board, r CastlingRights, turn models.Color) string {
	var sb strings.Builder
	sb.Grow(8*8*2 + 6)
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			if b[row][col].IsEmpty() {
				sb.WriteByte('.')
			} else {
				sb.WriteString(string(b[row][col]))
			}
		}
	}
	flags := []byte{'-', '-', '-', '-'}
	if r.WhiteKingside {
		flags[0] = 'K'
	}
	if r.WhiteQueenside {
		flags[1] = 'Q'
	}
	if r.BlackKingside {
		flags[2] = 'k'
	}
	if r.BlackQueenside {
		flags[3] = 'q'
	}
	sb.Write(flags)
	if turn == models.White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}
	return sb.String()
}

// Candidate is a generated legal move. Captured differs from To only for en
// passant. Promotes marks a pawn reaching the last rank; the promotion piece
// itself is supplied at execution time (queen by default).
type Candidate struct {
	From     models.Position
	To       models.Position
	Captured *models.Position
	Promotes bool

	castle castleKind
}

type castleKind int

const (
	castleNone castleKind = iota
	castleKingside
	castleQueenside
)

func square(p models.Position) string {
	return string(rune('a'+p.Col)) + string(rune('8'-p.Row))
}

// Notation renders a candidate in long coordinate form ("Ng1-f3", "e4xd5",
// "e7-e8=Q", "O-O").
func Notation(c Candidate, piece Piece, promo Kind) string {
	switch c.castle {
	case castleKingside:
		return "O-O"
	case castleQueenside:
		return "O-O-O"
	}
	var sb strings.Builder
	if piece.Kind() != Pawn {
		sb.WriteByte(byte(piece.Kind()))
	}
	sb.WriteString(square(c.From))
	if c.Captured != nil {
		sb.WriteByte('x')
	} else {
		sb.WriteByte('-')
	}
	sb.WriteString(square(c.To))
	if c.Promotes {
		if promo == 0 {
			promo = Queen
		}
		sb.WriteString("=" + string(promo))
	}
	return sb.String()
}
