package engine

import "fmt"

const (
	Rows = 8
	Cols = 8

	// PiecesPerSide is the number of men each side starts with.
	PiecesPerSide = 12
)

type Side int8

const (
	NoSide Side = iota
	Dark
	Light
)

func (s Side) String() string {
	switch s {
	case Dark:
		return "dark"
	case Light:
		return "light"
	}
	return "none"
}

func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Side) UnmarshalText(text []byte) error {
	if string(text) == "none" {
		*s = NoSide
		return nil
	}
	side, err := ParseSide(string(text))
	if err != nil {
		return err
	}
	*s = side
	return nil
}

// Opponent returns the other side. NoSide has no opponent.
func (s Side) Opponent() Side {
	switch s {
	case Dark:
		return Light
	case Light:
		return Dark
	}
	return NoSide
}

// ParseSide accepts the names produced by Side.String.
func ParseSide(name string) (Side, error) {
	switch name {
	case "dark":
		return Dark, nil
	case "light":
		return Light, nil
	}
	return NoSide, fmt.Errorf("unknown side %q", name)
}

// forward is the row step a man of this side moves along.
func (s Side) forward() int {
	if s == Light {
		return 1
	}
	return -1
}

// crownRow is the far rank on which a man of this side becomes a king.
func (s Side) crownRow() int {
	if s == Light {
		return Rows - 1
	}
	return 0
}

type Square struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (sq Square) Valid() bool {
	return sq.Row >= 0 && sq.Row < Rows && sq.Col >= 0 && sq.Col < Cols
}

// Playable reports whether the square is a dark square pieces may stand on.
func (sq Square) Playable() bool {
	return sq.Valid() && (sq.Row+sq.Col)%2 == 1
}

func (sq Square) String() string {
	return fmt.Sprintf("(%d,%d)", sq.Row, sq.Col)
}

func (sq Square) offset(dRow, dCol int) Square {
	return Square{Row: sq.Row + dRow, Col: sq.Col + dCol}
}

func mustBeValid(sq Square) {
	if !sq.Valid() {
		panic(fmt.Sprintf("engine: square %v out of range", sq))
	}
}

// Piece is stored by value in a Position. The zero Piece (Side == NoSide)
// marks an empty square.
type Piece struct {
	Side   Side   `json:"side"`
	King   bool   `json:"king"`
	Square Square `json:"square"`
}

func (p Piece) Empty() bool {
	return p.Side == NoSide
}

func (p Piece) String() string {
	kind := "man"
	if p.King {
		kind = "king"
	}
	return fmt.Sprintf("%s %s at %v", p.Side, kind, p.Square)
}
