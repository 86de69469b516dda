package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/couchbaselabs/go.assert"
)

func midgamePosition() *Position {
	p := EmptyPosition()
	p.Place(Light, false, sq(1, 2))
	p.Place(Light, false, sq(2, 3))
	p.Place(Light, false, sq(2, 5))
	p.Place(Light, true, sq(4, 1))
	p.Place(Dark, false, sq(5, 4))
	p.Place(Dark, false, sq(5, 6))
	p.Place(Dark, false, sq(6, 1))
	p.Place(Dark, true, sq(3, 6))
	return p
}

func TestSearchDepthOneFromOpening(t *testing.T) {
	start := NewPosition()
	s := &Searcher{Algorithm: AlphaBeta}
	r := s.Search(start, 1, Light)

	if r.Move == nil {
		t.Fatalf("expected a root move")
	}
	assert.False(t, r.Move.Move.IsCapture())
	assert.Equals(t, r.Score, 0.0)
	assert.Equals(t, r.Position.Remaining(Light), PiecesPerSide)
	assert.Equals(t, r.Position.Remaining(Dark), PiecesPerSide)

	found := false
	for _, pm := range start.SideMoves(Light, false) {
		if successor(start, pm).Equal(r.Position) {
			found = true
		}
	}
	assert.True(t, found)
	assert.True(t, successor(start, *r.Move).Equal(r.Position))

	// The root itself is untouched.
	assert.True(t, start.Equal(NewPosition()))
}

func TestSearchPackageFunction(t *testing.T) {
	score, best := Search(NewPosition(), 1, Minimax, Light)
	assert.Equals(t, score, 0.0)
	assert.False(t, best.Equal(NewPosition()))
}

func TestSearchDepthZeroReturnsEvaluation(t *testing.T) {
	p := midgamePosition()
	s := &Searcher{Algorithm: Minimax}
	r := s.Search(p, 0, Light)
	assert.Equals(t, r.Score, p.Evaluate())
	assert.True(t, r.Position.Equal(p))
	assert.True(t, r.Position != p)
	assert.True(t, r.Move == nil)
	assert.Equals(t, r.Nodes, uint64(1))
}

func TestSearchDecidedPosition(t *testing.T) {
	p := EmptyPosition()
	p.Place(Dark, false, sq(5, 2))
	score, best := Search(p, 5, AlphaBeta, Light)
	assert.Equals(t, score, -1.0)
	assert.True(t, best.Equal(p))
}

func TestDarkTakesTheCapture(t *testing.T) {
	p := EmptyPosition()
	p.Place(Dark, false, sq(5, 2))
	p.Place(Light, false, sq(4, 3))
	p.Place(Light, false, sq(0, 7))

	s := &Searcher{Algorithm: AlphaBeta}
	r := s.Search(p, 1, Dark)
	if r.Move == nil {
		t.Fatalf("expected a root move")
	}
	assert.True(t, r.Move.Move.IsCapture())
	assert.Equals(t, r.Score, 0.0)
	assert.Equals(t, r.Position.Remaining(Light), 1)
}

func TestAlphaBetaMatchesMinimax(t *testing.T) {
	positions := map[string]*Position{
		"opening": NewPosition(),
		"midgame": midgamePosition(),
	}
	for name, pos := range positions {
		for depth := 1; depth <= 4; depth++ {
			for _, side := range []Side{Light, Dark} {
				mm := &Searcher{Algorithm: Minimax}
				ab := &Searcher{Algorithm: AlphaBeta}
				mr := mm.Search(pos, depth, side)
				ar := ab.Search(pos, depth, side)

				if mr.Score != ar.Score {
					t.Fatalf("%s depth %d %v: minimax %v, alpha-beta %v", name, depth, side, mr.Score, ar.Score)
				}
				if !mr.Position.Equal(ar.Position) {
					t.Fatalf("%s depth %d %v: searches chose different moves", name, depth, side)
				}
				if ar.Nodes > mr.Nodes {
					t.Fatalf("%s depth %d %v: alpha-beta visited %d nodes, minimax %d", name, depth, side, ar.Nodes, mr.Nodes)
				}
				assert.Equals(t, ab.Nodes(), ar.Nodes)
			}
		}
	}
}

func TestAlphaBetaPrunesFromOpening(t *testing.T) {
	mm := &Searcher{Algorithm: Minimax}
	ab := &Searcher{Algorithm: AlphaBeta}
	mm.Search(NewPosition(), 4, Light)
	ab.Search(NewPosition(), 4, Light)
	assert.True(t, ab.Nodes() < mm.Nodes())
}

func TestSearchDeterministic(t *testing.T) {
	first := (&Searcher{Algorithm: AlphaBeta}).Search(midgamePosition(), 3, Light)
	second := (&Searcher{Algorithm: AlphaBeta}).Search(midgamePosition(), 3, Light)
	assert.True(t, first.Position.Equal(second.Position))
	assert.Equals(t, first.Nodes, second.Nodes)
}

func TestSearchContextCancelledKeepsFirstMove(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &Searcher{Algorithm: AlphaBeta}
	r, err := s.SearchContext(ctx, NewPosition(), 3, Light)
	assert.True(t, errors.Is(err, context.Canceled))
	if r.Move == nil {
		t.Fatalf("expected the first root move to be evaluated")
	}
	first := NewPosition().SideMoves(Light, false)[0]
	assert.Equals(t, r.Move.Piece, first.Piece)
	assert.Equals(t, r.Move.Move.Dest, first.Move.Dest)
}

func TestForcedCaptureSearchOnlyCaptures(t *testing.T) {
	p := EmptyPosition()
	p.Place(Dark, false, sq(5, 2))
	p.Place(Dark, false, sq(7, 6))
	p.Place(Light, false, sq(4, 3))
	p.Place(Light, false, sq(0, 1))

	s := &Searcher{Algorithm: Minimax, ForcedCapture: true}
	r := s.Search(p, 2, Dark)
	if r.Move == nil {
		t.Fatalf("expected a root move")
	}
	assert.True(t, r.Move.Move.IsCapture())
}

// Plays a short game engine against engine and checks that no piece is
// created or lost outside a capture and that the counters track the board.
func TestSelfPlayConservation(t *testing.T) {
	pos := NewPosition()
	removed := map[Side]int{}
	toMove := Dark
	s := &Searcher{Algorithm: AlphaBeta}

	for ply := 0; ply < 40 && pos.Winner() == NoSide; ply++ {
		r := s.Search(pos, 2, toMove)
		if r.Move == nil {
			t.Fatalf("ply %d: no move for %v", ply, toMove)
		}
		removed[toMove.Opponent()] += len(r.Move.Move.Captured)
		pos = r.Position
		toMove = toMove.Opponent()

		for _, side := range []Side{Dark, Light} {
			assert.Equals(t, pos.Remaining(side)+removed[side], PiecesPerSide)
			assert.Equals(t, pos.Remaining(side), len(pos.AllPieces(side)))
			assert.Equals(t, pos.Kings(side), countKingsOnBoard(pos, side))
		}
	}
}

func TestParseAlgorithmAndDepth(t *testing.T) {
	algo, err := ParseAlgorithm("minimax")
	assert.True(t, err == nil)
	assert.Equals(t, algo, Minimax)
	_, err = ParseAlgorithm("negamax")
	assert.True(t, err != nil)

	assert.True(t, ValidateDepth(5) == nil)
	assert.True(t, ValidateDepth(0) != nil)
	assert.True(t, ValidateDepth(MaxDepth+1) != nil)
}

func TestUnknownAlgorithmIsRejected(t *testing.T) {
	s := &Searcher{Algorithm: "negamax"}
	_, err := s.SearchContext(context.Background(), NewPosition(), 2, Light)
	assert.True(t, err != nil)

	defer func() {
		assert.True(t, recover() != nil)
	}()
	Search(NewPosition(), 2, "negamax", Light)
	t.Fatalf("Search accepted an unknown algorithm")
}

func TestZeroValueSearcherRunsAlphaBeta(t *testing.T) {
	zero := (&Searcher{}).Search(midgamePosition(), 3, Light)
	ab := (&Searcher{Algorithm: AlphaBeta}).Search(midgamePosition(), 3, Light)
	assert.Equals(t, zero.Score, ab.Score)
	assert.Equals(t, zero.Nodes, ab.Nodes)
}
