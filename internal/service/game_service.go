package service

import (
	"fmt"

	"github.com/benbeisheim/checkers-backend/internal/config"
	"github.com/benbeisheim/checkers-backend/internal/engine"
	"github.com/benbeisheim/checkers-backend/internal/model"
	"github.com/benbeisheim/checkers-backend/internal/ws"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// CreateGameRequest overrides the configured defaults for one game. Zero
// values keep the defaults.
type CreateGameRequest struct {
	Algorithm     string `json:"algorithm"`
	Depth         int    `json:"depth"`
	ForcedCapture *bool  `json:"forcedCapture"`
	HumanSide     string `json:"humanSide"`
}

type GameService struct {
	gameManager *GameManager
	defaults    config.Config
}

func NewGameService(gameManager *GameManager) *GameService {
	return &GameService{
		gameManager: gameManager,
		defaults:    gameManager.cfg,
	}
}

func (gs *GameService) settingsFor(req CreateGameRequest) (model.Settings, error) {
	settings := model.Settings{
		Algorithm:     gs.defaults.Algorithm,
		Depth:         gs.defaults.SearchDepth,
		ForcedCapture: gs.defaults.ForcedCapture,
		HumanSide:     engine.Dark,
	}
	if req.Algorithm != "" {
		algo, err := engine.ParseAlgorithm(req.Algorithm)
		if err != nil {
			return model.Settings{}, fmt.Errorf("%w: %v", ErrBadSettings, err)
		}
		settings.Algorithm = algo
	}
	if req.Depth != 0 {
		settings.Depth = req.Depth
	}
	if req.ForcedCapture != nil {
		settings.ForcedCapture = *req.ForcedCapture
	}
	if req.HumanSide != "" {
		side, err := engine.ParseSide(req.HumanSide)
		if err != nil {
			return model.Settings{}, fmt.Errorf("%w: %v", ErrBadSettings, err)
		}
		settings.HumanSide = side
	}
	if err := settings.Validate(); err != nil {
		return model.Settings{}, fmt.Errorf("%w: %v", ErrBadSettings, err)
	}
	return settings, nil
}

// CreateGame starts a game against the engine and seats playerID in it.
func (gs *GameService) CreateGame(playerID string, req CreateGameRequest) (string, engine.Side, error) {
	settings, err := gs.settingsFor(req)
	if err != nil {
		return "", engine.NoSide, err
	}

	gameID := uuid.New().String()
	if err := gs.gameManager.CreateGame(gameID, settings); err != nil {
		return "", engine.NoSide, fmt.Errorf("failed to create game: %w", err)
	}

	side, err := gs.gameManager.AddPlayerToGame(gameID, playerID)
	if err != nil {
		return "", engine.NoSide, fmt.Errorf("failed to seat player: %w", err)
	}
	return gameID, side, nil
}

func (gs *GameService) JoinGame(gameID string, playerID string) (engine.Side, error) {
	return gs.gameManager.AddPlayerToGame(gameID, playerID)
}

func (gs *GameService) GetGameState(gameID string) (model.GameState, error) {
	return gs.gameManager.GetGameState(gameID)
}

func (gs *GameService) LegalMoves(gameID string, sq engine.Square) ([]engine.Move, error) {
	return gs.gameManager.LegalMoves(gameID, sq)
}

func (gs *GameService) HandleMove(gameID string, playerID string, move model.WSMove) error {
	if err := gs.gameManager.MakeMove(gameID, playerID, move); err != nil {
		return err
	}

	return nil
}

func (gs *GameService) Undo(gameID string, playerID string) error {
	return gs.gameManager.Undo(gameID, playerID)
}

func (gs *GameService) Restart(gameID string, playerID string) error {
	return gs.gameManager.Restart(gameID, playerID)
}

func (gs *GameService) IsPlayer(gameID string, playerID string) (bool, error) {
	return gs.gameManager.IsPlayer(gameID, playerID)
}

func (gs *GameService) RegisterConnection(gameID string, playerID string, conn *websocket.Conn) error {
	return gs.gameManager.RegisterConnection(gameID, playerID, conn)
}

func (gs *GameService) Send(gameID string, conn *websocket.Conn, msg ws.Message) error {
	return gs.gameManager.Send(gameID, conn, msg)
}

func (gs *GameService) UnregisterConnection(gameID string, playerID string, conn *websocket.Conn) {
	gs.gameManager.UnregisterConnection(gameID, playerID, conn)
}
