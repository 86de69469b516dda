package engine

import (
	"testing"

	"github.com/couchbaselabs/go.assert"
)

func capturedSquares(m Move) map[Square]bool {
	squares := make(map[Square]bool, len(m.Captured))
	for _, piece := range m.Captured {
		squares[piece.Square] = true
	}
	return squares
}

func TestOpeningMovesForLight(t *testing.T) {
	p := NewPosition()
	dests := p.AllLegalMoves(Light)
	assert.Equals(t, len(dests), 7)
	for _, dest := range dests {
		assert.Equals(t, dest.Row, 3)
	}

	moves := p.LegalMoves(Piece{Square: sq(2, 1)})
	assert.Equals(t, len(moves), 2)
	assert.Equals(t, moves[0].Dest, sq(3, 0))
	assert.Equals(t, moves[1].Dest, sq(3, 2))
	assert.False(t, moves[0].IsCapture())

	edge := p.LegalMoves(Piece{Square: sq(2, 7)})
	assert.Equals(t, len(edge), 1)
	assert.Equals(t, edge[0].Dest, sq(3, 6))

	// Back rows are hemmed in by their own pieces.
	assert.Equals(t, len(p.LegalMoves(Piece{Square: sq(0, 1)})), 0)
	assert.Equals(t, len(p.LegalMoves(Piece{Square: sq(1, 2)})), 0)
}

func TestLegalMovesOnEmptySquare(t *testing.T) {
	assert.Equals(t, len(NewPosition().LegalMoves(Piece{Square: sq(4, 3)})), 0)
}

func TestSingleCapture(t *testing.T) {
	p := EmptyPosition()
	dark := p.Place(Dark, false, sq(5, 2))
	light := p.Place(Light, false, sq(4, 3))

	moves := p.LegalMoves(dark)
	assert.Equals(t, len(moves), 2)
	assert.Equals(t, moves[0].Dest, sq(4, 1))
	assert.False(t, moves[0].IsCapture())

	capture, ok := moves.Lookup(sq(3, 4))
	assert.True(t, ok)
	assert.Equals(t, len(capture.Captured), 1)
	assert.Equals(t, capture.Captured[0], light)
}

func TestMenDoNotMoveOrCaptureBackwards(t *testing.T) {
	p := EmptyPosition()
	dark := p.Place(Dark, false, sq(4, 3))
	p.Place(Light, false, sq(5, 4))

	moves := p.LegalMoves(dark)
	assert.Equals(t, len(moves), 2)
	for _, m := range moves {
		assert.Equals(t, m.Dest.Row, 3)
		assert.False(t, m.IsCapture())
	}
}

func TestKingMovesAllDirections(t *testing.T) {
	p := EmptyPosition()
	king := p.Place(Dark, true, sq(4, 3))
	p.Place(Light, false, sq(0, 7))

	moves := p.LegalMoves(king)
	assert.Equals(t, len(moves), 4)
	assert.Equals(t, moves[0].Dest, sq(3, 2))
	assert.Equals(t, moves[1].Dest, sq(3, 4))
	assert.Equals(t, moves[2].Dest, sq(5, 2))
	assert.Equals(t, moves[3].Dest, sq(5, 4))
}

func TestKingCapturesBackwards(t *testing.T) {
	p := EmptyPosition()
	king := p.Place(Light, true, sq(4, 3))
	victim := p.Place(Dark, false, sq(3, 2))

	capture, ok := p.LegalMoves(king).Lookup(sq(2, 1))
	assert.True(t, ok)
	assert.Equals(t, len(capture.Captured), 1)
	assert.Equals(t, capture.Captured[0], victim)

	p.Apply(king, capture)
	assert.Equals(t, p.Remaining(Dark), 0)
	assert.Equals(t, p.Winner(), Light)
}

func TestCapturingAKingDecrementsKings(t *testing.T) {
	p := EmptyPosition()
	dark := p.Place(Dark, false, sq(5, 2))
	p.Place(Light, true, sq(4, 3))
	p.Place(Light, false, sq(0, 1))

	capture, ok := p.LegalMoves(dark).Lookup(sq(3, 4))
	assert.True(t, ok)
	p.Apply(dark, capture)
	assert.Equals(t, p.Kings(Light), 0)
	assert.Equals(t, p.Remaining(Light), 1)
	assert.Equals(t, p.Kings(Light), countKingsOnBoard(p, Light))
}

func TestBlockedScans(t *testing.T) {
	p := EmptyPosition()
	dark := p.Place(Dark, false, sq(5, 2))
	// Own piece up-left.
	p.Place(Dark, false, sq(4, 1))
	// Two opposing pieces in a row up-right.
	p.Place(Light, false, sq(4, 3))
	p.Place(Light, false, sq(3, 4))

	assert.Equals(t, len(p.LegalMoves(dark)), 0)

	// An opposing piece on the edge has no landing square beyond it.
	edge := EmptyPosition()
	runner := edge.Place(Dark, false, sq(2, 1))
	edge.Place(Light, false, sq(1, 0))
	moves := edge.LegalMoves(runner)
	assert.Equals(t, len(moves), 1)
	assert.Equals(t, moves[0].Dest, sq(1, 2))
}

func tripleJumpPosition() (*Position, Piece, []Piece) {
	p := EmptyPosition()
	dark := p.Place(Dark, false, sq(6, 1))
	victims := []Piece{
		p.Place(Light, false, sq(5, 2)),
		p.Place(Light, false, sq(3, 4)),
		p.Place(Light, false, sq(1, 4)),
	}
	return p, dark, victims
}

func TestTripleJumpIsOneDestination(t *testing.T) {
	p, dark, victims := tripleJumpPosition()
	moves := p.LegalMoves(dark)

	final, ok := moves.Lookup(sq(0, 3))
	assert.True(t, ok)
	assert.Equals(t, len(final.Captured), 3)
	got := capturedSquares(final)
	for _, v := range victims {
		assert.True(t, got[v.Square])
	}

	// Intermediate landings keep their partial chains.
	first, ok := moves.Lookup(sq(4, 3))
	assert.True(t, ok)
	assert.Equals(t, len(first.Captured), 1)
	second, ok := moves.Lookup(sq(2, 5))
	assert.True(t, ok)
	assert.Equals(t, len(second.Captured), 2)

	// Chains never share backing arrays.
	assert.True(t, &first.Captured[0] != &second.Captured[0])

	moved := p.Apply(dark, final)
	assert.True(t, moved.King)
	assert.Equals(t, p.Remaining(Light), 0)
	assert.Equals(t, p.Winner(), Dark)
}

func TestDoubleCaptureScenario(t *testing.T) {
	p := EmptyPosition()
	dark := p.Place(Dark, false, sq(5, 0))
	p.Place(Light, false, sq(4, 1))
	p.Place(Light, false, sq(2, 3))
	p.Place(Light, false, sq(0, 7))
	before := p.Evaluate()

	m, ok := p.LegalMoves(dark).Lookup(sq(1, 4))
	assert.True(t, ok)
	assert.Equals(t, len(m.Captured), 2)

	p.Apply(dark, m)
	assert.Equals(t, p.Remaining(Light), 1)
	assert.Equals(t, p.Remaining(Dark), 1)
	assert.Equals(t, p.Evaluate(), before-2)
}

func TestKingChainDoesNotJumpTwice(t *testing.T) {
	// Four pieces around a loop: a king may take each at most once.
	p := EmptyPosition()
	king := p.Place(Dark, true, sq(6, 3))
	p.Place(Light, false, sq(5, 4))
	p.Place(Light, false, sq(3, 4))
	p.Place(Light, false, sq(3, 2))
	p.Place(Light, false, sq(5, 2))

	longest := 0
	for _, m := range p.LegalMoves(king) {
		seen := map[Square]bool{}
		for _, c := range m.Captured {
			assert.False(t, seen[c.Square])
			seen[c.Square] = true
		}
		if len(m.Captured) > longest {
			longest = len(m.Captured)
		}
	}
	// The king's own square closes the loop, so the fourth piece stays.
	assert.Equals(t, longest, 3)
}

func TestForcedCaptureRestrictsSideMoves(t *testing.T) {
	p := EmptyPosition()
	capturer := p.Place(Dark, false, sq(5, 2))
	idle := p.Place(Dark, false, sq(5, 6))
	p.Place(Light, false, sq(4, 3))

	free := p.SideMoves(Dark, false)
	assert.Equals(t, len(free), 4)

	forced := p.SideMoves(Dark, true)
	assert.Equals(t, len(forced), 1)
	assert.Equals(t, forced[0].Piece, capturer)
	assert.Equals(t, forced[0].Move.Dest, sq(3, 4))

	assert.Equals(t, len(p.LegalMovesFor(idle, true)), 0)
	assert.Equals(t, len(p.LegalMovesFor(idle, false)), 2)
}

func TestForcedCaptureRequiresFullChain(t *testing.T) {
	p, dark, _ := tripleJumpPosition()
	forced := p.LegalMovesFor(dark, true)
	assert.Equals(t, len(forced), 1)
	assert.Equals(t, forced[0].Dest, sq(0, 3))
	assert.Equals(t, len(forced[0].Captured), 3)
}

func TestManChainDoesNotTurnBackwards(t *testing.T) {
	p := EmptyPosition()
	dark := p.Place(Dark, false, sq(6, 1))
	p.Place(Light, false, sq(5, 2))
	// Only reachable by jumping back down from (4, 3).
	p.Place(Light, false, sq(5, 4))

	moves := p.LegalMoves(dark)
	m, ok := moves.Lookup(sq(4, 3))
	assert.True(t, ok)
	assert.Equals(t, len(m.Captured), 1)
	_, ok = moves.Lookup(sq(6, 5))
	assert.False(t, ok)
}
