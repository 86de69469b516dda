package model

import "github.com/benbeisheim/checkers-backend/internal/engine"

// ClientPlayer is the human seat as the client sees it.
type ClientPlayer struct {
	ID   string      `json:"id"`
	Side engine.Side `json:"side"`
}
