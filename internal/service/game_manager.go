// service/game_manager.go
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbeisheim/checkers-backend/internal/config"
	"github.com/benbeisheim/checkers-backend/internal/engine"
	"github.com/benbeisheim/checkers-backend/internal/model"
	"github.com/benbeisheim/checkers-backend/internal/ws"
	"github.com/couchbaselabs/logg"
	"github.com/gofiber/websocket/v2"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
	ErrBadSettings  = errors.New("invalid game settings")
)

// GameManager owns every running game and the single worker that plays the
// engine's turns, one search at a time.
type GameManager struct {
	games map[string]*model.Game
	queue *model.Queue
	cfg   config.Config
	mu    sync.RWMutex
	stop  chan struct{}
	once  sync.Once
}

func NewGameManager(cfg config.Config) *GameManager {
	gm := newGameManager(cfg)

	// Start AI turn processor
	go gm.processAITurns()

	return gm
}

func newGameManager(cfg config.Config) *GameManager {
	return &GameManager{
		games: make(map[string]*model.Game),
		queue: model.NewQueue(),
		cfg:   cfg,
		stop:  make(chan struct{}),
	}
}

// Close stops the AI worker.
func (gm *GameManager) Close() {
	gm.once.Do(func() { close(gm.stop) })
}

func (gm *GameManager) processAITurns() {
	ticker := time.NewTicker(gm.cfg.AITickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-gm.stop:
			return
		case <-ticker.C:
			gm.ProcessPendingTurns()
		}
	}
}

// ProcessPendingTurns plays every queued AI turn and returns how many
// moves were made.
func (gm *GameManager) ProcessPendingTurns() int {
	played := 0
	var revisit []string
	for {
		turn, ok := gm.queue.Next()
		if !ok {
			break
		}
		if err := gm.playAITurn(turn.GameID); err != nil {
			if !errors.Is(err, model.ErrNoAITurn) {
				logg.LogTo("AI", "AI turn for game %s failed: %v", turn.GameID, err)
			}
		} else {
			played++
		}
		revisit = append(revisit, turn.GameID)
	}

	// A human move or undo may have raced the search; retry on the next tick.
	for _, gameID := range revisit {
		if game, err := gm.GetGame(gameID); err == nil {
			gm.enqueueIfNeeded(game)
		}
	}
	return played
}

func (gm *GameManager) playAITurn(gameID string) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	turn, err := game.PrepareAITurn()
	if err != nil {
		return err
	}

	ctx := context.Background()
	if gm.cfg.AITurnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, gm.cfg.AITurnTimeout)
		defer cancel()
	}

	searcher := &engine.Searcher{Algorithm: turn.Algorithm, ForcedCapture: turn.ForcedCapture}
	started := time.Now()
	result, searchErr := searcher.SearchContext(ctx, turn.Position, turn.Depth, turn.Side)
	if searchErr != nil && result.Move == nil {
		game.AbortAITurn()
		return fmt.Errorf("search for game %s: %w", gameID, searchErr)
	}
	if searchErr != nil {
		logg.LogTo("AI", "Search for game %s cut short after %v: %v", gameID, time.Since(started), searchErr)
	}
	logg.LogTo("AI", "%s depth %d for game %s: score %v, %d nodes in %v",
		turn.Algorithm, turn.Depth, gameID, result.Score, result.Nodes, time.Since(started))

	return game.CommitAITurn(turn, result, searchErr != nil)
}

func (gm *GameManager) enqueueIfNeeded(game *model.Game) {
	if !game.NeedsAITurn() {
		return
	}
	if err := gm.queue.AddGame(game.ID); err != nil {
		logg.LogTo("SERVICE", "%v", err)
	}
}

func (gm *GameManager) CreateGame(gameID string, settings model.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[gameID]; exists {
		return ErrGameExists
	}

	gm.games[gameID] = model.NewGame(gameID, settings)
	logg.LogTo("SERVICE", "Created game %s: %s depth %d, human plays %v (%d games)", gameID, settings.Algorithm, settings.Depth, settings.HumanSide, len(gm.games))
	return nil
}

func (gm *GameManager) GetGame(gameID string) (*model.Game, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	game, exists := gm.games[gameID]
	if !exists {
		return nil, ErrGameNotFound
	}

	return game, nil
}

// IsPlayer reports whether playerID holds the game's seat rather than
// watching it.
func (gm *GameManager) IsPlayer(gameID string, playerID string) (bool, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return false, err
	}
	return game.IsPlayerInGame(playerID), nil
}

func (gm *GameManager) AddPlayerToGame(gameID string, playerID string) (engine.Side, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return engine.NoSide, err
	}

	side, err := game.AddPlayer(playerID)
	if err != nil {
		return engine.NoSide, err
	}
	// The engine opens when the human plays Light.
	gm.enqueueIfNeeded(game)
	return side, nil
}

func (gm *GameManager) GetGameState(gameID string) (model.GameState, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	return game.GetState(), nil
}

func (gm *GameManager) LegalMoves(gameID string, sq engine.Square) ([]engine.Move, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	return game.LegalMovesFrom(sq)
}

func (gm *GameManager) MakeMove(gameID string, playerID string, move model.WSMove) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}

	if err := game.MakeMove(playerID, move); err != nil {
		return err
	}
	gm.enqueueIfNeeded(game)
	return nil
}

func (gm *GameManager) Undo(gameID string, playerID string) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.Undo(playerID)
}

func (gm *GameManager) Restart(gameID string, playerID string) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	if err := game.Restart(playerID); err != nil {
		return err
	}
	gm.enqueueIfNeeded(game)
	return nil
}

func (gm *GameManager) RegisterConnection(gameID string, playerID string, conn *websocket.Conn) error {
	logg.LogTo("WS", "Registering connection for player %s in game %s", playerID, gameID)
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}

	return game.RegisterConnection(playerID, conn)
}

// Send writes msg to conn, serialized with the game's broadcasts.
func (gm *GameManager) Send(gameID string, conn *websocket.Conn, msg ws.Message) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return conn.WriteJSON(msg)
	}
	return game.Send(conn, msg)
}

func (gm *GameManager) UnregisterConnection(gameID string, playerID string, conn *websocket.Conn) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return
	}

	game.UnregisterConnection(playerID, conn)
}
