package model

import (
	"fmt"
	"sync"
	"time"
)

type QueuedTurn struct {
	GameID   string
	QueuedAt time.Time
}

// Queue holds games waiting for the AI to move, oldest first. A game is
// queued at most once.
type Queue struct {
	turns []QueuedTurn
	mu    sync.Mutex
}

func NewQueue() *Queue {
	return &Queue{
		turns: []QueuedTurn{},
	}
}

func (q *Queue) AddGame(gameID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, t := range q.turns {
		if t.GameID == gameID {
			return fmt.Errorf("game %s already queued", gameID)
		}
	}

	q.turns = append(q.turns, QueuedTurn{
		GameID:   gameID,
		QueuedAt: time.Now(),
	})
	return nil
}

// Next pops the longest waiting turn.
func (q *Queue) Next() (QueuedTurn, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.turns) == 0 {
		return QueuedTurn{}, false
	}
	next := q.turns[0]
	q.turns = q.turns[1:]
	return next, true
}

func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.turns)
}
