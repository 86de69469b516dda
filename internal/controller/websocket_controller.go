package controller

import (
	"encoding/json"
	"fmt"

	"github.com/benbeisheim/checkers-backend/internal/model"
	"github.com/benbeisheim/checkers-backend/internal/service"
	"github.com/benbeisheim/checkers-backend/internal/ws"
	"github.com/couchbaselabs/logg"
	"github.com/gofiber/websocket/v2"
)

type WebSocketController struct {
	gameService *service.GameService
}

func NewWebSocketController(gameService *service.GameService) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
	}
}

// HandleConnection is called when a new WebSocket connection is established
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID := c.Params("gameId")
	playerID := c.Locals("playerID").(string)

	// Register this connection with the game
	if err := wsc.gameService.RegisterConnection(gameID, playerID, c); err != nil {
		logg.LogTo("WS", "Failed to register connection: %v", err)
		wsc.sendError(gameID, c, err)
		c.Close()
		return
	}
	defer wsc.gameService.UnregisterConnection(gameID, playerID, c)

	isPlayer, err := wsc.gameService.IsPlayer(gameID, playerID)
	if err != nil {
		wsc.sendError(gameID, c, err)
		return
	}
	if !isPlayer {
		logg.LogTo("WS", "Player %s is spectating game %s", playerID, gameID)
	}

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			logg.LogTo("WS", "read error: %v", err)
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			logg.LogTo("WS", "parse error: %v", err)
			wsc.sendError(gameID, c, err)
			continue
		}

		reply, err := wsc.handleMessage(gameID, playerID, !isPlayer, msg)
		if err != nil {
			logg.LogTo("WS", "handle error: %v", err)
			wsc.sendError(gameID, c, err)
			continue
		}
		if reply != nil {
			if err := wsc.gameService.Send(gameID, c, *reply); err != nil {
				logg.LogTo("WS", "write error: %v", err)
				return
			}
		}
	}
}

// handleMessage applies one client message. State changes reach the client
// through the game's broadcast; only queries return a reply. A spectator may
// only query.
func (wsc *WebSocketController) handleMessage(gameID, playerID string, spectator bool, msg ws.Message) (*ws.Message, error) {
	logg.LogTo("WS", "Handling %s from player %s", msg.Type, playerID)
	if spectator && msg.Type != ws.MessageTypeLegalMoves {
		return nil, fmt.Errorf("%s: %w", msg.Type, model.ErrNotAPlayer)
	}
	switch msg.Type {
	case ws.MessageTypeMove:
		var move model.WSMove
		if err := json.Unmarshal(msg.Payload, &move); err != nil {
			return nil, err
		}
		return nil, wsc.gameService.HandleMove(gameID, playerID, move)

	case ws.MessageTypeLegalMoves:
		var req model.LegalMovesRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return nil, err
		}
		moves, err := wsc.gameService.LegalMoves(gameID, req.Square)
		if err != nil {
			return nil, err
		}
		reply, err := ws.NewMessage(ws.MessageTypeLegalMoves, model.LegalMovesResponse{Square: req.Square, Moves: moves})
		if err != nil {
			return nil, err
		}
		return &reply, nil

	case ws.MessageTypeUndo:
		return nil, wsc.gameService.Undo(gameID, playerID)

	case ws.MessageTypeRestart:
		return nil, wsc.gameService.Restart(gameID, playerID)

	default:
		return nil, fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

// Helper method to send error messages
func (wsc *WebSocketController) sendError(gameID string, c *websocket.Conn, cause error) {
	msg, err := ws.NewMessage(ws.MessageTypeError, cause.Error())
	if err != nil {
		logg.LogError(err)
		return
	}
	if err := wsc.gameService.Send(gameID, c, msg); err != nil {
		logg.LogTo("WS", "Failed to send error: %v", err)
	}
}
