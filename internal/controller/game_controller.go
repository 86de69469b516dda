package controller

import (
	"errors"

	"github.com/benbeisheim/checkers-backend/internal/engine"
	"github.com/benbeisheim/checkers-backend/internal/model"
	"github.com/benbeisheim/checkers-backend/internal/service"
	"github.com/couchbaselabs/logg"
	"github.com/gofiber/fiber/v2"
)

type GameController struct {
	gameService *service.GameService
}

func NewGameController(gameService *service.GameService) *GameController {
	return &GameController{gameService: gameService}
}

// statusFor maps a game error to the HTTP status the client sees.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrBadSettings),
		errors.Is(err, model.ErrOutOfBounds),
		errors.Is(err, model.ErrNoPieceAtSquare),
		errors.Is(err, model.ErrNotYourPiece),
		errors.Is(err, model.ErrIllegalMove):
		return fiber.StatusBadRequest
	case errors.Is(err, model.ErrNotAPlayer),
		errors.Is(err, model.ErrNotAuthorized):
		return fiber.StatusForbidden
	case errors.Is(err, model.ErrGameFull),
		errors.Is(err, model.ErrNotYourTurn),
		errors.Is(err, model.ErrGameOver),
		errors.Is(err, model.ErrNothingToUndo):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

func sendError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		logg.LogError(err)
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	playerID := c.Locals("playerID").(string)

	var req service.CreateGameRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}
	}

	gameID, side, err := gc.gameService.CreateGame(playerID, req)
	if err != nil {
		return sendError(c, err)
	}
	logg.LogTo("HTTP", "Player %s created game %s as %v", playerID, gameID, side)
	return c.JSON(fiber.Map{
		"message": "Game created",
		"game_id": gameID,
		"side":    side,
	})
}

func (gc *GameController) JoinGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	playerID := c.Locals("playerID").(string)
	logg.LogTo("HTTP", "Player %s joining game %s", playerID, gameID)

	side, err := gc.gameService.JoinGame(gameID, playerID)
	if err != nil {
		return sendError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Game joined",
		"side":    side,
	})
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	gameID := c.Params("gameId")

	gameState, err := gc.gameService.GetGameState(gameID)
	if err != nil {
		return sendError(c, err)
	}

	return c.JSON(gameState)
}

func (gc *GameController) LegalMoves(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	sq := engine.Square{Row: c.QueryInt("row", -1), Col: c.QueryInt("col", -1)}

	moves, err := gc.gameService.LegalMoves(gameID, sq)
	if err != nil {
		return sendError(c, err)
	}

	return c.JSON(model.LegalMovesResponse{Square: sq, Moves: moves})
}

func (gc *GameController) MakeMove(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	playerID := c.Locals("playerID").(string)

	var move model.WSMove
	if err := c.BodyParser(&move); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid move",
		})
	}

	if err := gc.gameService.HandleMove(gameID, playerID, move); err != nil {
		return sendError(c, err)
	}
	return gc.GetGameState(c)
}

func (gc *GameController) Undo(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	playerID := c.Locals("playerID").(string)

	if err := gc.gameService.Undo(gameID, playerID); err != nil {
		return sendError(c, err)
	}
	return gc.GetGameState(c)
}

func (gc *GameController) Restart(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	playerID := c.Locals("playerID").(string)

	if err := gc.gameService.Restart(gameID, playerID); err != nil {
		return sendError(c, err)
	}
	return gc.GetGameState(c)
}
