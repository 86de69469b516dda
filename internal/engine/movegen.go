package engine

// Move is one legal destination for a piece together with every opposing
// piece jumped on the way there, in the order they were jumped.
type Move struct {
	Dest     Square  `json:"dest"`
	Captured []Piece `json:"captured"`
}

func (m Move) IsCapture() bool {
	return len(m.Captured) > 0
}

// Moves keeps destinations in generation order so that callers iterating
// it (the search in particular) are deterministic.
type Moves []Move

// Lookup finds the move landing on dest.
func (ms Moves) Lookup(dest Square) (Move, bool) {
	for _, m := range ms {
		if m.Dest == dest {
			return m, true
		}
	}
	return Move{}, false
}

func (ms Moves) Destinations() []Square {
	dests := make([]Square, 0, len(ms))
	for _, m := range ms {
		dests = append(dests, m.Dest)
	}
	return dests
}

// add records m; when two chains reach the same square the longer one is
// kept, and on a tie the first found.
func (ms *Moves) add(m Move) {
	for i, existing := range *ms {
		if existing.Dest == m.Dest {
			if len(m.Captured) > len(existing.Captured) {
				(*ms)[i] = m
			}
			return
		}
	}
	*ms = append(*ms, m)
}

// PieceMove pairs a move with the piece making it.
type PieceMove struct {
	Piece Piece `json:"piece"`
	Move  Move  `json:"move"`
}

type direction struct {
	dRow, dCol int
}

var kingDirections = []direction{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}

var manDirections = map[Side][]direction{
	Dark:  {{-1, -1}, {-1, 1}},
	Light: {{1, -1}, {1, 1}},
}

func directionsFor(piece Piece) []direction {
	if piece.King {
		return kingDirections
	}
	return manDirections[piece.Side]
}

type generator struct {
	pos   *Position
	piece Piece
	// fullChains drops intermediate landings of a chain that can go on.
	fullChains bool
	moves      Moves
}

// LegalMoves returns every destination reachable by the piece on
// piece.Square. A man steps or jumps along its two forward diagonals, a king
// along all four. A jump may be followed by further jumps from its landing
// square; each landing is offered as a destination carrying the whole chain
// captured so far. A man never captures backwards, not even mid-chain.
// Simple steps are never offered once a jump has been made.
// Whether a capture elsewhere on the board is mandatory is not considered
// here, see SideMoves.
func (p *Position) LegalMoves(piece Piece) Moves {
	return p.legalMoves(piece, false)
}

func (p *Position) legalMoves(piece Piece, fullChains bool) Moves {
	mustBeValid(piece.Square)
	current, ok := p.PieceAt(piece.Square)
	if !ok {
		return nil
	}
	g := &generator{pos: p, piece: current, fullChains: fullChains}
	for _, dir := range directionsFor(current) {
		g.scan(current.Square, dir, nil)
	}
	return g.moves
}

// scan inspects the diagonal leaving from in direction dir. captured is the
// chain jumped so far and is never modified; every recorded chain is a fresh
// slice. It reports whether a jump was found in this direction.
func (g *generator) scan(from Square, dir direction, captured []Piece) bool {
	next := from.offset(dir.dRow, dir.dCol)
	if !next.Valid() {
		return false
	}
	occupant := g.pos.cells[next.Row][next.Col]
	if occupant.Empty() {
		if len(captured) == 0 {
			g.moves.add(Move{Dest: next})
		}
		return false
	}
	if occupant.Side == g.piece.Side || chainContains(captured, occupant.Square) {
		return false
	}
	landing := next.offset(dir.dRow, dir.dCol)
	if !landing.Valid() || !g.pos.cells[landing.Row][landing.Col].Empty() {
		return false
	}

	chain := make([]Piece, len(captured), len(captured)+1)
	copy(chain, captured)
	chain = append(chain, occupant)

	if !g.fullChains {
		g.moves.add(Move{Dest: landing, Captured: chain})
	}
	continued := false
	for _, d := range directionsFor(g.piece) {
		if g.scan(landing, d, chain) {
			continued = true
		}
	}
	if g.fullChains && !continued {
		g.moves.add(Move{Dest: landing, Captured: chain})
	}
	return true
}

func chainContains(chain []Piece, sq Square) bool {
	for _, piece := range chain {
		if piece.Square == sq {
			return true
		}
	}
	return false
}

// SideMoves lists every move of every piece of side, pieces in row-major
// order. With forcedCapture set, capture chains must be played to the end
// and, if any piece can capture, only captures are returned.
func (p *Position) SideMoves(side Side, forcedCapture bool) []PieceMove {
	var all []PieceMove
	anyCapture := false
	for _, piece := range p.AllPieces(side) {
		for _, m := range p.legalMoves(piece, forcedCapture) {
			if m.IsCapture() {
				anyCapture = true
			}
			all = append(all, PieceMove{Piece: piece, Move: m})
		}
	}
	if !forcedCapture || !anyCapture {
		return all
	}
	captures := all[:0]
	for _, pm := range all {
		if pm.Move.IsCapture() {
			captures = append(captures, pm)
		}
	}
	return captures
}

// LegalMovesFor returns the moves of the piece under the given capture rule:
// with forcedCapture it is empty for a piece that may not move because a
// capture is available elsewhere.
func (p *Position) LegalMovesFor(piece Piece, forcedCapture bool) Moves {
	if !forcedCapture {
		return p.LegalMoves(piece)
	}
	var moves Moves
	for _, pm := range p.SideMoves(piece.Side, true) {
		if pm.Piece.Square == piece.Square {
			moves = append(moves, pm.Move)
		}
	}
	return moves
}

// AllLegalMoves flattens the destinations of every piece of side.
func (p *Position) AllLegalMoves(side Side) []Square {
	var dests []Square
	for _, piece := range p.AllPieces(side) {
		dests = append(dests, p.LegalMoves(piece).Destinations()...)
	}
	return dests
}

func (p *Position) hasAnyMove(side Side) bool {
	for _, piece := range p.AllPieces(side) {
		if len(p.LegalMoves(piece)) > 0 {
			return true
		}
	}
	return false
}
