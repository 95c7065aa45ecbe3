// Package checkers implements the international (10x10) draughts rule engine:
// mandatory capture, capture chains, flying kings, and promotion. All functions
// are pure over value-type boards.
package checkers

import (
	"github.com/jrennick/gambit/internal/models"
)

// Size is the board dimension.
const Size = 10

// Cell is a closed enum of square contents. Every switch over Cell in this
// package is exhaustive; there is no loose piece-code comparison.
type Cell uint8

const (
	Empty Cell = iota
	WhiteMan
	BlackMan
	WhiteKing
	BlackKing
)

// Color returns the owning side and whether the cell holds a piece at all.
func (c Cell) Color() (models.Color, bool) {
	switch c {
	case WhiteMan, WhiteKing:
		return models.White, true
	case BlackMan, BlackKing:
		return models.Black, true
	case Empty:
		return "", false
	}
	return "", false
}

// King reports whether the cell holds a promoted piece.
func (c Cell) King() bool { return c == WhiteKing || c == BlackKing }

// Code returns the short piece identity string recorded on moves.
func (c Cell) Code() string {
	switch c {
	case WhiteMan:
		return "wm"
	case BlackMan:
		return "bm"
	case WhiteKing:
		return "wk"
	case BlackKing:
		return "bk"
	case Empty:
		return ""
	}
	return ""
}

// Board is the 10x10 matrix. Row 0 is black's back row; white men advance
// toward row 0, black men toward row 9. Play happens on dark squares, where
// (row+col) is odd.
type Board [Size][Size]Cell

func (b *Board) At(p models.Position) Cell      { return b[p.Row][p.Col] }
func (b *Board) Set(p models.Position, c Cell)  { b[p.Row][p.Col] = c }

func inBounds(r, c int) bool { return r >= 0 && r < Size && c >= 0 && c < Size }

// State is the serialized checkers position. ChainFrom, when set, is the
// explicit capture-chain sub-state: the side to move must continue capturing
// with the piece on that square before the turn may pass.
type State struct {
	Board     Board            `json:"board"`
	ChainFrom *models.Position `json:"chain_from,omitempty"`
}

// NewState returns the initial position: twenty men per side on the dark
// squares of the four rows nearest each player's edge.
func NewState() State {
	var b Board
	for r := 0; r < 4; r++ {
		for c := 0; c < Size; c++ {
			if (r+c)%2 == 1 {
				b[r][c] = BlackMan
			}
		}
	}
	for r := 6; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if (r+c)%2 == 1 {
				b[r][c] = WhiteMan
			}
		}
	}
	return State{Board: b}
}

func promoRow(c models.Color) int {
	if c == models.White {
		return 0
	}
	return Size - 1
}

var diagonals = [4][2]int{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}

// forwardDirs are the simple-move directions for a man of the given color.
// Capture directions are all four diagonals regardless of color.
func forwardDirs(c models.Color) [2][2]int {
	if c == models.White {
		return [2][2]int{{-1, -1}, {-1, 1}}
	}
	return [2][2]int{{1, -1}, {1, 1}}
}
