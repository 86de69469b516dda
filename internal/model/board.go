package model

import (
	"fmt"

	"github.com/benbeisheim/checkers-backend/internal/engine"
)

type SideCounts struct {
	Dark  int `json:"dark"`
	Light int `json:"light"`
}

type BoardState struct {
	Board  [][]*engine.Piece `json:"board"`
	Pieces SideCounts        `json:"pieces"`
	Kings  SideCounts        `json:"kings"`
}

func newBoardState(pos *engine.Position) *BoardState {
	return &BoardState{
		Board: pos.Board(),
		Pieces: SideCounts{
			Dark:  pos.Remaining(engine.Dark),
			Light: pos.Remaining(engine.Light),
		},
		Kings: SideCounts{
			Dark:  pos.Kings(engine.Dark),
			Light: pos.Kings(engine.Light),
		},
	}
}

// squareNumber is the standard 1-32 numbering of playable squares, row by
// row from row 0.
func squareNumber(sq engine.Square) int {
	return sq.Row*4 + sq.Col/2 + 1
}

func boundaryCheck(sq engine.Square) bool {
	return sq.Valid()
}

// getNotation renders a move as "11-15" or, for captures, "22x15".
func getNotation(from, to engine.Square, captures int) string {
	sep := "-"
	if captures > 0 {
		sep = "x"
	}
	return fmt.Sprintf("%d%s%d", squareNumber(from), sep, squareNumber(to))
}
