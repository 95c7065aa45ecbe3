package chess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrennick/gambit/internal/models"
)

func pos(row, col int) models.Position { return models.Position{Row: row, Col: col} }

// findMove locates the legal candidate from->to for the piece's side, failing
// the test when the move is not legal.
func findMove(t *testing.T, s State, from, to models.Position) Candidate {
	t.Helper()
	piece := s.Board.At(from)
	require.False(t, piece.IsEmpty(), "no piece on %v", from)
	for _, c := range LegalMoves(s, piece.Color()) {
		if c.From == from && c.To == to {
			return c
		}
	}
	t.Fatalf("move %v -> %v is not legal", from, to)
	return Candidate{}
}

func play(t *testing.T, s State, from, to models.Position) State {
	t.Helper()
	ns, _ := Execute(s, findMove(t, s, from, to), 0)
	return ns
}

// bareState builds a position from explicit placements with an empty
// repetition table, for endgame scenarios.
func bareState(pieces map[models.Position]Piece) State {
	s := State{Seen: map[string]int{}}
	for p, pc := range pieces {
		s.Board.Set(p, pc)
	}
	return s
}

func TestInitialPositionMoveCount(t *testing.T) {
	s := NewState()
	assert.Len(t, LegalMoves(s, models.White), 20, "white should have 20 opening moves")
	assert.Len(t, LegalMoves(s, models.Black), 20, "black should have 20 opening moves")
}

func TestPawnDoubleStepResetsHalfmoveClock(t *testing.T) {
	s := NewState()
	s.HalfmoveClock = 7

	// e2-e4
	s = play(t, s, pos(6, 4), pos(4, 4))
	assert.Equal(t, Piece("wP"), s.Board.At(pos(4, 4)))
	assert.True(t, s.Board.At(pos(6, 4)).IsEmpty())
	assert.Equal(t, 0, s.HalfmoveClock, "pawn move resets the halfmove clock")
	require.NotNil(t, s.Last)
	assert.Equal(t, pos(6, 4), s.Last.From)
	assert.Equal(t, pos(4, 4), s.Last.To)

	// Ng8-f6 raises it again.
	s = play(t, s, pos(0, 6), pos(2, 5))
	assert.Equal(t, 1, s.HalfmoveClock)
}

func TestEnPassant(t *testing.T) {
	s := bareState(map[models.Position]Piece{
		pos(7, 4): "wK",
		pos(0, 4): "bK",
		pos(3, 4): "wP", // e5
		pos(1, 3): "bP", // d7
	})

	// d7-d5 lands beside the white pawn.
	s = play(t, s, pos(1, 3), pos(3, 3))

	cand := findMove(t, s, pos(3, 4), pos(2, 3))
	require.NotNil(t, cand.Captured, "en passant must record the captured pawn")
	assert.Equal(t, pos(3, 3), *cand.Captured, "captured square differs from destination")

	ns, _ := Execute(s, cand, 0)
	assert.True(t, ns.Board.At(pos(3, 3)).IsEmpty(), "the passed pawn is removed")
	assert.Equal(t, Piece("wP"), ns.Board.At(pos(2, 3)))

	// The window closes after any intervening move.
	s2 := play(t, s, pos(7, 4), pos(7, 3))
	s2 = play(t, s2, pos(0, 4), pos(0, 3))
	for _, c := range LegalMoves(s2, models.White) {
		if c.From == pos(3, 4) && c.To == pos(2, 3) {
			t.Fatal("en passant should expire after one ply")
		}
	}
}

func castleAvailable(s State, side models.Color, to models.Position) bool {
	row := backRank(side)
	for _, c := range LegalMoves(s, side) {
		if c.From == pos(row, 4) && c.To == to {
			return true
		}
	}
	return false
}

func TestCastlingKingside(t *testing.T) {
	base := bareState(map[models.Position]Piece{
		pos(7, 4): "wK",
		pos(7, 7): "wR",
		pos(0, 4): "bK",
	})
	base.Rights.WhiteKingside = true

	require.True(t, castleAvailable(base, models.White, pos(7, 6)))

	// Blocked transit square.
	blocked := base
	blocked.Board.Set(pos(7, 5), "wN")
	assert.False(t, castleAvailable(blocked, models.White, pos(7, 6)), "piece on f1 blocks O-O")

	// Attacked transit square.
	guarded := base
	guarded.Board.Set(pos(2, 5), "bR")
	assert.False(t, castleAvailable(guarded, models.White, pos(7, 6)), "attacked f1 blocks O-O")

	// Rights revoked.
	revoked := base
	revoked.Rights.WhiteKingside = false
	assert.False(t, castleAvailable(revoked, models.White, pos(7, 6)), "no rights, no castle")

	// King in check cannot castle out of it.
	inCheck := base
	inCheck.Board.Set(pos(2, 4), "bR")
	assert.False(t, castleAvailable(inCheck, models.White, pos(7, 6)), "castling out of check is illegal")

	// Executing the castle moves the rook too and burns both rights.
	s := base
	s.Rights.WhiteQueenside = true
	ns, _ := Execute(s, findMove(t, s, pos(7, 4), pos(7, 6)), 0)
	assert.Equal(t, Piece("wK"), ns.Board.At(pos(7, 6)))
	assert.Equal(t, Piece("wR"), ns.Board.At(pos(7, 5)))
	assert.True(t, ns.Board.At(pos(7, 7)).IsEmpty())
	assert.False(t, ns.Rights.WhiteKingside)
	assert.False(t, ns.Rights.WhiteQueenside)
}

func TestRookMoveRevokesRight(t *testing.T) {
	s := bareState(map[models.Position]Piece{
		pos(7, 4): "wK",
		pos(7, 0): "wR",
		pos(0, 4): "bK",
	})
	s.Rights.WhiteQueenside = true

	ns := play(t, s, pos(7, 0), pos(5, 0))
	assert.False(t, ns.Rights.WhiteQueenside, "moving the a1 rook revokes queenside rights")
}

func TestPromotionDefaultsToQueen(t *testing.T) {
	s := bareState(map[models.Position]Piece{
		pos(7, 4): "wK",
		pos(0, 7): "bK",
		pos(1, 0): "wP", // a7
	})

	cand := findMove(t, s, pos(1, 0), pos(0, 0))
	require.True(t, cand.Promotes)

	ns, _ := Execute(s, cand, 0)
	assert.Equal(t, Piece("wQ"), ns.Board.At(pos(0, 0)), "unspecified promotion is a queen")

	ns2, _ := Execute(s, cand, Knight)
	assert.Equal(t, Piece("wN"), ns2.Board.At(pos(0, 0)))
}

func TestFoolsMate(t *testing.T) {
	s := NewState()
	s = play(t, s, pos(6, 5), pos(5, 5)) // f2-f3
	s = play(t, s, pos(1, 4), pos(3, 4)) // e7-e5
	s = play(t, s, pos(6, 6), pos(4, 6)) // g2-g4
	s = play(t, s, pos(0, 3), pos(4, 7)) // Qd8-h4#

	assert.True(t, InCheck(s, models.White))
	assert.Equal(t, Checkmate, Classify(s, models.White))
	assert.Empty(t, LegalMoves(s, models.White))
}

func TestStalemate(t *testing.T) {
	s := bareState(map[models.Position]Piece{
		pos(0, 0): "bK", // a8
		pos(2, 1): "wK", // b6
		pos(1, 2): "wQ", // c7
	})

	assert.False(t, InCheck(s, models.Black))
	assert.Equal(t, Stalemate, Classify(s, models.Black))
}

func TestFiftyMoveDraw(t *testing.T) {
	s := NewState()
	s.HalfmoveClock = 100
	assert.Equal(t, DrawFiftyMove, Classify(s, models.White))

	s.HalfmoveClock = 99
	assert.Equal(t, Playing, Classify(s, models.White))
}

func TestThreefoldRepetition(t *testing.T) {
	s := NewState()

	// Two full knight shuffles return to the start position twice more.
	for i := 0; i < 2; i++ {
		s = play(t, s, pos(7, 6), pos(5, 5)) // Ng1-f3
		s = play(t, s, pos(0, 6), pos(2, 5)) // Ng8-f6
		s = play(t, s, pos(5, 5), pos(7, 6)) // Nf3-g1
		s = play(t, s, pos(2, 5), pos(0, 6)) // Nf6-g8
	}

	assert.Equal(t, DrawRepetition, Classify(s, models.White))
}

func TestSelfCheckFiltered(t *testing.T) {
	s := bareState(map[models.Position]Piece{
		pos(7, 4): "wK",
		pos(6, 4): "wR", // pinned to the king
		pos(0, 4): "bK",
		pos(1, 4): "bQ",
	})

	for _, c := range LegalMoves(s, models.White) {
		if c.From == pos(6, 4) {
			assert.Equal(t, 4, c.To.Col, "pinned rook may only slide along the pin file")
		}
	}
}

func TestNotation(t *testing.T) {
	s := NewState()
	cand := findMove(t, s, pos(7, 6), pos(5, 5))
	assert.Equal(t, "Ng1-f3", Notation(cand, s.Board.At(cand.From), 0))

	cand = findMove(t, s, pos(6, 4), pos(4, 4))
	assert.Equal(t, "e2-e4", Notation(cand, s.Board.At(cand.From), 0))
}
