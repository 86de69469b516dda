package model

import "github.com/benbeisheim/checkers-backend/internal/engine"

type WSMove struct {
	From engine.Square `json:"from"`
	To   engine.Square `json:"to"`
}

type LegalMovesRequest struct {
	Square engine.Square `json:"square"`
}

type LegalMovesResponse struct {
	Square engine.Square `json:"square"`
	Moves  []engine.Move `json:"moves"`
}

type Ply struct {
	Side     engine.Side    `json:"side"`
	From     engine.Square  `json:"from"`
	To       engine.Square  `json:"to"`
	Captured []engine.Piece `json:"captured"`
	Crowned  bool           `json:"crowned"`
	ByAI     bool           `json:"byAI"`
	Notation string         `json:"notation"`
}

func newPly(side engine.Side, piece engine.Piece, m engine.Move, crowned, byAI bool) Ply {
	captured := m.Captured
	if captured == nil {
		captured = []engine.Piece{}
	}
	return Ply{
		Side:     side,
		From:     piece.Square,
		To:       m.Dest,
		Captured: captured,
		Crowned:  crowned,
		ByAI:     byAI,
		Notation: getNotation(piece.Square, m.Dest, len(m.Captured)),
	}
}

// sound tells the client which effect to play for a ply.
func (p Ply) sound() string {
	switch {
	case p.Crowned:
		return "crown"
	case len(p.Captured) > 0:
		return "capture"
	}
	return "move"
}
