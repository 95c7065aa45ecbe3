package checkers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrennick/gambit/internal/models"
)

func pos(row, col int) models.Position { return models.Position{Row: row, Col: col} }

func hasMove(moves []Candidate, from, to models.Position) bool {
	for _, c := range moves {
		if c.From == from && c.To == to {
			return true
		}
	}
	return false
}

func TestInitialSetup(t *testing.T) {
	s := NewState()
	assert.Equal(t, 20, CountPieces(s.Board, models.White))
	assert.Equal(t, 20, CountPieces(s.Board, models.Black))
	assert.Nil(t, s.ChainFrom)

	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if s.Board[r][c] != Empty {
				assert.Equal(t, 1, (r+c)%2, "pieces only occupy dark squares")
			}
		}
	}

	// Each side opens with nine simple moves.
	assert.Len(t, LegalMoves(s, models.White), 9)
	assert.Len(t, LegalMoves(s, models.Black), 9)
}

func TestManMovesForwardOnly(t *testing.T) {
	var s State
	s.Board.Set(pos(5, 4), WhiteMan)

	moves := LegalMoves(s, models.White)
	assert.Len(t, moves, 2)
	assert.True(t, hasMove(moves, pos(5, 4), pos(4, 3)))
	assert.True(t, hasMove(moves, pos(5, 4), pos(4, 5)))
	assert.False(t, hasMove(moves, pos(5, 4), pos(6, 3)), "a man never steps backward")
	assert.False(t, hasMove(moves, pos(5, 4), pos(6, 5)))
}

func TestCaptureIsMandatory(t *testing.T) {
	var s State
	s.Board.Set(pos(5, 4), WhiteMan)
	s.Board.Set(pos(4, 3), BlackMan)
	s.Board.Set(pos(8, 1), WhiteMan) // far away, simple moves only

	moves := LegalMoves(s, models.White)
	require.Len(t, moves, 1, "a capture anywhere excludes every simple move")
	assert.Equal(t, pos(5, 4), moves[0].From)
	assert.Equal(t, pos(3, 2), moves[0].To)
	require.NotNil(t, moves[0].Captured)
	assert.Equal(t, pos(4, 3), *moves[0].Captured)
}

func TestManCapturesBackward(t *testing.T) {
	var s State
	s.Board.Set(pos(3, 2), WhiteMan)
	s.Board.Set(pos(4, 3), BlackMan)

	moves := LegalMoves(s, models.White)
	require.Len(t, moves, 1)
	assert.Equal(t, pos(5, 4), moves[0].To, "men capture backward even though they move forward")
}

func TestExecuteRemovesCapturedPiece(t *testing.T) {
	var s State
	s.Board.Set(pos(5, 4), WhiteMan)
	s.Board.Set(pos(4, 3), BlackMan)

	moves := LegalMoves(s, models.White)
	require.Len(t, moves, 1)

	nb, promoted := Execute(s.Board, moves[0])
	assert.False(t, promoted)
	assert.Equal(t, Empty, nb.At(pos(5, 4)))
	assert.Equal(t, Empty, nb.At(pos(4, 3)))
	assert.Equal(t, WhiteMan, nb.At(pos(3, 2)))
	assert.Equal(t, 0, CountPieces(nb, models.Black))
}

func TestFlyingKingSlides(t *testing.T) {
	var s State
	s.Board.Set(pos(5, 4), WhiteKing)

	moves := LegalMoves(s, models.White)
	assert.True(t, hasMove(moves, pos(5, 4), pos(1, 0)), "king slides any open distance")
	assert.True(t, hasMove(moves, pos(5, 4), pos(9, 8)), "king slides backward too")

	// Own piece blocks the ray.
	s.Board.Set(pos(3, 2), WhiteMan)
	moves = LegalMoves(s, models.White)
	assert.True(t, hasMove(moves, pos(5, 4), pos(4, 3)))
	assert.False(t, hasMove(moves, pos(5, 4), pos(2, 1)), "ray stops before a friendly piece")
}

func TestFlyingKingCapture(t *testing.T) {
	var s State
	s.Board.Set(pos(7, 2), WhiteKing)
	s.Board.Set(pos(4, 5), BlackMan)

	moves := LegalMoves(s, models.White)
	for _, to := range []models.Position{pos(3, 6), pos(2, 7), pos(1, 8), pos(0, 9)} {
		assert.True(t, hasMove(moves, pos(7, 2), to), "every empty square beyond the victim is a landing")
	}
	for _, c := range moves {
		require.NotNil(t, c.Captured)
		assert.Equal(t, pos(4, 5), *c.Captured)
	}

	// A second piece behind the victim shortens the landing ray.
	s.Board.Set(pos(2, 7), BlackMan)
	moves = LegalMoves(s, models.White)
	assert.True(t, hasMove(moves, pos(7, 2), pos(3, 6)))
	assert.False(t, hasMove(moves, pos(7, 2), pos(1, 8)), "capture ray stops at the next occupied square")
}

func TestPromotionOnLanding(t *testing.T) {
	var s State
	s.Board.Set(pos(1, 2), WhiteMan)

	moves := LegalMoves(s, models.White)
	require.NotEmpty(t, moves)
	nb, promoted := Execute(s.Board, moves[0])
	assert.True(t, promoted)
	assert.Equal(t, WhiteKing, nb.At(moves[0].To))

	// Kings do not re-promote.
	var s2 State
	s2.Board.Set(pos(1, 2), WhiteKing)
	moves = LegalMoves(s2, models.White)
	for _, c := range moves {
		if c.To.Row == 0 {
			_, again := Execute(s2.Board, c)
			assert.False(t, again)
		}
	}
}

func TestChainRestrictsToChainingPiece(t *testing.T) {
	var s State
	s.Board.Set(pos(5, 4), WhiteMan)
	s.Board.Set(pos(4, 3), BlackMan)
	s.Board.Set(pos(2, 3), BlackMan)
	s.Board.Set(pos(7, 6), WhiteMan)
	s.Board.Set(pos(6, 7), BlackMan) // unrelated capture for the other man

	// First jump lands on (3,2) with another capture available.
	nb, _ := Execute(s.Board, Candidate{
		From: pos(5, 4), To: pos(3, 2), Captured: &models.Position{Row: 4, Col: 3},
	})
	require.True(t, HasCaptureFrom(nb, pos(3, 2)))

	chained := State{Board: nb, ChainFrom: &models.Position{Row: 3, Col: 2}}
	moves := LegalMoves(chained, models.White)
	require.NotEmpty(t, moves)
	for _, c := range moves {
		assert.Equal(t, pos(3, 2), c.From, "mid-chain only the chaining piece may move")
	}
}

func TestNotation(t *testing.T) {
	simple := Candidate{From: pos(6, 3), To: pos(5, 4)}
	assert.Equal(t, "32-28", Notation(simple))

	cap := pos(4, 3)
	jump := Candidate{From: pos(5, 4), To: pos(3, 2), Captured: &cap}
	assert.Equal(t, "28x17", Notation(jump))
}
