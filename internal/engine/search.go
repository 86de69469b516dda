package engine

import (
	"context"
	"fmt"
	"math"
)

type Algorithm string

const (
	Minimax   Algorithm = "minimax"
	AlphaBeta Algorithm = "alphabeta"
)

// MaxDepth bounds the recursion of a search.
const MaxDepth = 12

func ParseAlgorithm(name string) (Algorithm, error) {
	switch Algorithm(name) {
	case Minimax, AlphaBeta:
		return Algorithm(name), nil
	}
	return "", fmt.Errorf("unknown search algorithm %q", name)
}

func ValidateDepth(depth int) error {
	if depth < 1 || depth > MaxDepth {
		return fmt.Errorf("search depth %d outside 1..%d", depth, MaxDepth)
	}
	return nil
}

// Result is the outcome of a search from the root position.
type Result struct {
	Score float64
	// Position is the chosen successor, or a copy of the root when the root
	// is terminal.
	Position *Position
	// Move is the root move leading to Position; nil for a terminal root.
	Move  *PieceMove
	Nodes uint64
}

// Searcher explores the game tree depth first. Light maximizes the
// evaluation and Dark minimizes it. A Searcher is not safe for concurrent
// use; the zero value runs alpha-beta under the house capture rule.
type Searcher struct {
	Algorithm     Algorithm
	ForcedCapture bool

	nodes uint64
}

// Search runs algo from pos with toMove to play and returns the best score
// and the successor position achieving it. It panics on an unknown algo.
func Search(pos *Position, depth int, algo Algorithm, toMove Side) (float64, *Position) {
	s := &Searcher{Algorithm: algo}
	r := s.Search(pos, depth, toMove)
	return r.Score, r.Position
}

// Search panics if s.Algorithm is neither empty nor a known algorithm.
func (s *Searcher) Search(pos *Position, depth int, toMove Side) Result {
	r, err := s.SearchContext(context.Background(), pos, depth, toMove)
	if err != nil {
		panic(err)
	}
	return r
}

// SearchContext is Search with a deadline checked between root moves only.
// When ctx ends early the best root move found so far is returned along
// with ctx's error.
func (s *Searcher) SearchContext(ctx context.Context, pos *Position, depth int, toMove Side) (Result, error) {
	if s.Algorithm != "" {
		if _, err := ParseAlgorithm(string(s.Algorithm)); err != nil {
			return Result{}, err
		}
	}
	s.nodes = 1
	if depth <= 0 || pos.Winner() != NoSide {
		return Result{Score: pos.Evaluate(), Position: pos.Copy(), Nodes: s.nodes}, nil
	}
	moves := pos.SideMoves(toMove, s.ForcedCapture)
	if len(moves) == 0 {
		return Result{Score: pos.Evaluate(), Position: pos.Copy(), Nodes: s.nodes}, nil
	}

	maximizing := toMove == Light
	alpha, beta := math.Inf(-1), math.Inf(1)
	best := worst(maximizing)
	result := Result{Score: best}
	for i, pm := range moves {
		if i > 0 {
			if err := ctx.Err(); err != nil {
				result.Nodes = s.nodes
				return result, err
			}
		}
		child := successor(pos, pm)
		v := s.value(child, depth-1, toMove.Opponent(), alpha, beta)
		if better(v, best, maximizing) {
			best = v
			chosen := pm
			result = Result{Score: v, Position: child, Move: &chosen}
		}
		if s.prune(&alpha, &beta, v, maximizing) {
			break
		}
	}
	result.Nodes = s.nodes
	return result, nil
}

// Nodes is the number of positions visited by the last search.
func (s *Searcher) Nodes() uint64 {
	return s.nodes
}

func (s *Searcher) value(pos *Position, depth int, toMove Side, alpha, beta float64) float64 {
	s.nodes++
	if depth == 0 || pos.Winner() != NoSide {
		return pos.Evaluate()
	}
	moves := pos.SideMoves(toMove, s.ForcedCapture)
	if len(moves) == 0 {
		return pos.Evaluate()
	}

	maximizing := toMove == Light
	best := worst(maximizing)
	for _, pm := range moves {
		v := s.value(successor(pos, pm), depth-1, toMove.Opponent(), alpha, beta)
		if better(v, best, maximizing) {
			best = v
		}
		if s.prune(&alpha, &beta, v, maximizing) {
			break
		}
	}
	return best
}

// prune tightens the window with v and reports a cutoff. Plain minimax
// never prunes.
func (s *Searcher) prune(alpha, beta *float64, v float64, maximizing bool) bool {
	if s.Algorithm == Minimax {
		return false
	}
	if maximizing {
		*alpha = math.Max(*alpha, v)
	} else {
		*beta = math.Min(*beta, v)
	}
	return *beta <= *alpha
}

func successor(pos *Position, pm PieceMove) *Position {
	child := pos.Copy()
	child.Apply(pm.Piece, pm.Move)
	return child
}

func worst(maximizing bool) float64 {
	if maximizing {
		return math.Inf(-1)
	}
	return math.Inf(1)
}

// better compares strictly so the first of equal successors is kept.
func better(v, best float64, maximizing bool) bool {
	if maximizing {
		return v > best
	}
	return v < best
}
