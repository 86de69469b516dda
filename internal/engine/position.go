package engine

// Position is one snapshot of the board. Pieces are held by value, so
// copying a Position (Copy or plain assignment) never aliases the source.
type Position struct {
	cells     [Rows][Cols]Piece
	remaining [3]int // indexed by Side
	kings     [3]int
}

// NewPosition returns the standard opening setup: Light on rows 0-2,
// Dark on rows 5-7, both on playable squares only.
func NewPosition() *Position {
	p := &Position{}
	for row := 0; row < Rows; row++ {
		for col := 0; col < Cols; col++ {
			sq := Square{Row: row, Col: col}
			if !sq.Playable() {
				continue
			}
			switch {
			case row < 3:
				p.cells[row][col] = Piece{Side: Light, Square: sq}
				p.remaining[Light]++
			case row > 4:
				p.cells[row][col] = Piece{Side: Dark, Square: sq}
				p.remaining[Dark]++
			}
		}
	}
	return p
}

// EmptyPosition returns a board with no pieces, for setting up arbitrary
// positions with Place.
func EmptyPosition() *Position {
	return &Position{}
}

// Place puts a piece on an empty playable square and updates the counters.
func (p *Position) Place(side Side, king bool, sq Square) Piece {
	mustBeValid(sq)
	if !sq.Playable() {
		panic("engine: cannot place a piece on non-playable square " + sq.String())
	}
	if !p.cells[sq.Row][sq.Col].Empty() {
		panic("engine: square " + sq.String() + " is occupied")
	}
	piece := Piece{Side: side, King: king, Square: sq}
	p.cells[sq.Row][sq.Col] = piece
	p.remaining[side]++
	if king {
		p.kings[side]++
	}
	return piece
}

// PieceAt returns the piece on sq, if any. It panics when sq is off the board.
func (p *Position) PieceAt(sq Square) (Piece, bool) {
	mustBeValid(sq)
	piece := p.cells[sq.Row][sq.Col]
	return piece, !piece.Empty()
}

// Remaining is the number of live pieces of a side.
func (p *Position) Remaining(side Side) int {
	return p.remaining[side]
}

// Kings is the number of crowned pieces of a side.
func (p *Position) Kings(side Side) int {
	return p.kings[side]
}

// Move relocates piece to dest and crowns it on its far rank. The move is
// not validated; dest must come from LegalMoves.
func (p *Position) Move(piece Piece, dest Square) Piece {
	mustBeValid(piece.Square)
	mustBeValid(dest)
	from := piece.Square
	moved := p.cells[from.Row][from.Col]
	p.cells[from.Row][from.Col], p.cells[dest.Row][dest.Col] = p.cells[dest.Row][dest.Col], moved
	moved.Square = dest
	if dest.Row == moved.Side.crownRow() && !moved.King {
		moved.King = true
		p.kings[moved.Side]++
	}
	p.cells[dest.Row][dest.Col] = moved
	return moved
}

// Remove clears the squares of the given pieces. The board's own record of
// each square decides which counters are decremented; empty squares are
// skipped.
func (p *Position) Remove(pieces []Piece) {
	for _, piece := range pieces {
		mustBeValid(piece.Square)
		current := p.cells[piece.Square.Row][piece.Square.Col]
		if current.Empty() {
			continue
		}
		p.cells[piece.Square.Row][piece.Square.Col] = Piece{}
		p.remaining[current.Side]--
		if current.King {
			p.kings[current.Side]--
		}
	}
}

// Apply plays a generated move for piece: it moves the piece and removes
// everything it captured.
func (p *Position) Apply(piece Piece, m Move) Piece {
	moved := p.Move(piece, m.Dest)
	if len(m.Captured) > 0 {
		p.Remove(m.Captured)
	}
	return moved
}

// AllPieces lists the pieces of a side in row-major order.
func (p *Position) AllPieces(side Side) []Piece {
	pieces := make([]Piece, 0, p.remaining[side])
	for row := 0; row < Rows; row++ {
		for col := 0; col < Cols; col++ {
			if piece := p.cells[row][col]; piece.Side == side {
				pieces = append(pieces, piece)
			}
		}
	}
	return pieces
}

// Winner reports the side that has won, or NoSide while the game goes on.
// A side without pieces loses; failing that, a side without a legal move
// loses, Dark being checked first.
func (p *Position) Winner() Side {
	if p.remaining[Dark] <= 0 {
		return Light
	}
	if p.remaining[Light] <= 0 {
		return Dark
	}
	if !p.hasAnyMove(Dark) {
		return Light
	}
	if !p.hasAnyMove(Light) {
		return Dark
	}
	return NoSide
}

// Copy returns an independent Position.
func (p *Position) Copy() *Position {
	c := *p
	return &c
}

// Equal compares piece placement and counters.
func (p *Position) Equal(other *Position) bool {
	return *p == *other
}

// Board returns the cells as a grid, row by row; empty squares are nil.
func (p *Position) Board() [][]*Piece {
	board := make([][]*Piece, Rows)
	for row := 0; row < Rows; row++ {
		board[row] = make([]*Piece, Cols)
		for col := 0; col < Cols; col++ {
			if piece := p.cells[row][col]; !piece.Empty() {
				board[row][col] = &piece
			}
		}
	}
	return board
}
