package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/benbeisheim/checkers-backend/internal/engine"
	"github.com/benbeisheim/checkers-backend/internal/ws"
	"github.com/couchbaselabs/logg"
	"github.com/gofiber/websocket/v2"
)

var (
	ErrGameFull        = errors.New("game is full")
	ErrNotAPlayer      = errors.New("player not in game")
	ErrNotYourTurn     = errors.New("not your turn")
	ErrOutOfBounds     = errors.New("square out of bounds")
	ErrNoPieceAtSquare = errors.New("no piece at from square")
	ErrNotYourPiece    = errors.New("piece belongs to the opponent")
	ErrIllegalMove     = errors.New("illegal move")
	ErrGameOver        = errors.New("game is over")
	ErrNothingToUndo   = errors.New("nothing to undo")
	ErrNoAITurn        = errors.New("AI is not to move")
	ErrStaleTurn       = errors.New("game changed while the AI was thinking")
	ErrNotAuthorized   = errors.New("not authorized to join this game")
)

type Settings struct {
	Algorithm     engine.Algorithm `json:"algorithm"`
	Depth         int              `json:"depth"`
	ForcedCapture bool             `json:"forcedCapture"`
	HumanSide     engine.Side      `json:"humanSide"`
}

func (s Settings) Validate() error {
	if _, err := engine.ParseAlgorithm(string(s.Algorithm)); err != nil {
		return err
	}
	if err := engine.ValidateDepth(s.Depth); err != nil {
		return err
	}
	if s.HumanSide != engine.Dark && s.HumanSide != engine.Light {
		return fmt.Errorf("human side must be dark or light, got %v", s.HumanSide)
	}
	return nil
}

// The connections for a specific game
type GameConnections struct {
	connections map[string]*websocket.Conn // playerID -> connection
	mu          sync.RWMutex
	writeMu     sync.Mutex // a websocket.Conn allows one writer at a time
}

// snapshot is one entry of the undo history.
type snapshot struct {
	position *engine.Position
	toMove   engine.Side
	moves    int // length of the move history at that point
}

// Game is one human playing the engine. Every state change bumps version so
// an AI turn computed on an older state can be discarded.
type Game struct {
	ID          string
	mu          sync.Mutex
	settings    Settings
	human       ClientPlayer
	position    *engine.Position
	toMove      engine.Side
	winner      engine.Side
	moveHistory []Ply
	history     []snapshot
	version     int
	sound       string
	thinking    bool
	aiClock     *Clock
	aiStats     AIStats
	connections *GameConnections // Connections just for this game
}

type AIStats struct {
	Algorithm      engine.Algorithm `json:"algorithm"`
	Depth          int              `json:"depth"`
	Thinking       bool             `json:"thinking"`
	LastThinkMs    int64            `json:"lastThinkMs"`
	TotalThinkMs   int64            `json:"totalThinkMs"`
	LastNodes      uint64           `json:"lastNodes"`
	LastScore      float64          `json:"lastScore"`
	LastIncomplete bool             `json:"lastIncomplete"`
}

type GameState struct {
	ID            string       `json:"id"`
	Version       int          `json:"version"`
	Sound         string       `json:"sound"`
	Board         *BoardState  `json:"boardState"`
	ToMove        engine.Side  `json:"toMove"`
	HumanSide     engine.Side  `json:"humanSide"`
	AISide        engine.Side  `json:"aiSide"`
	MoveHistory   []Ply        `json:"moveHistory"`
	LastMove      *Ply         `json:"lastMove"`
	Winner        *engine.Side `json:"winner"`
	Resolve       *string      `json:"resolve"`
	Evaluation    float64      `json:"evaluation"`
	ForcedCapture bool         `json:"forcedCapture"`
	CanUndo       bool         `json:"canUndo"`
	Player        ClientPlayer `json:"player"`
	Connections   int          `json:"connections"`
	AI            AIStats      `json:"ai"`
}

// AITurn is everything the search needs, copied out of the game so the
// search can run without holding the game lock.
type AITurn struct {
	GameID        string
	Position      *engine.Position
	Side          engine.Side
	Algorithm     engine.Algorithm
	Depth         int
	ForcedCapture bool
	version       int
}

func NewGame(id string, settings Settings) *Game {
	return &Game{
		ID:          id,
		settings:    settings,
		position:    engine.NewPosition(),
		toMove:      engine.Dark,
		moveHistory: make([]Ply, 0),
		aiClock:     NewClock(),
		aiStats:     AIStats{Algorithm: settings.Algorithm, Depth: settings.Depth},
		connections: NewGameConnections(),
	}
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]*websocket.Conn),
	}
}

func (g *Game) aiSide() engine.Side {
	return g.settings.HumanSide.Opponent()
}

// AddPlayer seats playerID as the human opponent of the engine. Joining
// again with the same ID is a no-op.
func (g *Game) AddPlayer(playerID string) (engine.Side, error) {
	logg.LogTo("GAME", "Adding player %s to game %s", playerID, g.ID)
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.human.ID == "" {
		g.human = ClientPlayer{ID: playerID, Side: g.settings.HumanSide}
		return g.human.Side, nil
	}
	if g.human.ID == playerID {
		return g.human.Side, nil
	}
	return engine.NoSide, ErrGameFull
}

func (g *Game) GetState() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.stateLocked()
}

func (g *Game) stateLocked() GameState {
	history := make([]Ply, len(g.moveHistory))
	copy(history, g.moveHistory)

	state := GameState{
		ID:            g.ID,
		Version:       g.version,
		Sound:         g.sound,
		Board:         newBoardState(g.position),
		ToMove:        g.toMove,
		HumanSide:     g.settings.HumanSide,
		AISide:        g.aiSide(),
		MoveHistory:   history,
		Evaluation:    g.position.Evaluate(),
		ForcedCapture: g.settings.ForcedCapture,
		CanUndo:       g.canUndoLocked(),
		Player:        g.human,
		Connections:   g.ConnectionCount(),
		AI:            g.aiStats,
	}
	state.AI.Thinking = g.thinking
	state.AI.TotalThinkMs = g.aiClock.Total().Milliseconds()
	if len(history) > 0 {
		last := history[len(history)-1]
		state.LastMove = &last
	}
	if g.winner != engine.NoSide {
		winner := g.winner
		state.Winner = &winner
		resolve := "no moves"
		if g.position.Remaining(winner.Opponent()) == 0 {
			resolve = "no pieces"
		}
		state.Resolve = &resolve
	}
	return state
}

func (g *Game) IsPlayerInGame(playerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.isPlayerInGame(playerID)
}

func (g *Game) isPlayerInGame(playerID string) bool {
	return g.human.ID != "" && g.human.ID == playerID
}

// canSpectate reports whether players other than the human may watch. A
// game is open to spectators once its seat is taken.
func (g *Game) canSpectate() bool {
	return g.human.ID != ""
}

// NeedsAITurn reports whether the engine is to move and not already thinking.
func (g *Game) NeedsAITurn() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.needsAITurn()
}

func (g *Game) needsAITurn() bool {
	return g.winner == engine.NoSide && g.toMove == g.aiSide() && !g.thinking
}

// LegalMovesFrom lists the moves of the piece on sq under the game's
// capture rule.
func (g *Game) LegalMovesFrom(sq engine.Square) ([]engine.Move, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !boundaryCheck(sq) {
		return nil, ErrOutOfBounds
	}
	piece, ok := g.position.PieceAt(sq)
	if !ok {
		return nil, ErrNoPieceAtSquare
	}
	moves := g.position.LegalMovesFor(piece, g.settings.ForcedCapture)
	if moves == nil {
		return []engine.Move{}, nil
	}
	return moves, nil
}

// MakeMove validates the human's move against the move generator and
// plays it.
func (g *Game) MakeMove(playerID string, move WSMove) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	logg.LogTo("GAME", "Making move in game %s: %v -> %v", g.ID, move.From, move.To)

	if !g.isPlayerInGame(playerID) {
		return ErrNotAPlayer
	}
	if g.winner != engine.NoSide {
		return ErrGameOver
	}
	if g.toMove != g.settings.HumanSide {
		return ErrNotYourTurn
	}

	piece, m, err := g.validateMove(move)
	if err != nil {
		return err
	}
	g.executeMove(piece, m, false)
	return nil
}

func (g *Game) validateMove(move WSMove) (engine.Piece, engine.Move, error) {
	if !boundaryCheck(move.From) || !boundaryCheck(move.To) {
		return engine.Piece{}, engine.Move{}, ErrOutOfBounds
	}
	piece, ok := g.position.PieceAt(move.From)
	if !ok {
		return engine.Piece{}, engine.Move{}, ErrNoPieceAtSquare
	}
	if piece.Side != g.toMove {
		return engine.Piece{}, engine.Move{}, ErrNotYourPiece
	}
	m, ok := g.position.LegalMovesFor(piece, g.settings.ForcedCapture).Lookup(move.To)
	if !ok {
		return engine.Piece{}, engine.Move{}, fmt.Errorf("%w: %v to %v", ErrIllegalMove, move.From, move.To)
	}
	return piece, m, nil
}

// executeMove plays a validated move. Callers hold g.mu.
func (g *Game) executeMove(piece engine.Piece, m engine.Move, byAI bool) {
	g.pushHistory()
	moved := g.position.Apply(piece, m)
	g.recordPly(newPly(g.toMove, piece, m, moved.King && !piece.King, byAI))
	g.finishTurn()
}

func (g *Game) pushHistory() {
	g.history = append(g.history, snapshot{
		position: g.position.Copy(),
		toMove:   g.toMove,
		moves:    len(g.moveHistory),
	})
}

func (g *Game) recordPly(ply Ply) {
	g.moveHistory = append(g.moveHistory, ply)
	g.sound = ply.sound()
}

func (g *Game) finishTurn() {
	g.switchTurn()
	g.winner = g.position.Winner()
	if g.winner != engine.NoSide {
		g.sound = "gameOver"
		logg.LogTo("GAME", "Game %s won by %v", g.ID, g.winner)
	}
	g.version++
	go g.broadcastState(g.stateLocked())
}

func (g *Game) switchTurn() {
	g.toMove = g.toMove.Opponent()
}

// PrepareAITurn marks the engine as thinking and hands out a private copy
// of the position to search.
func (g *Game) PrepareAITurn() (AITurn, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.needsAITurn() {
		return AITurn{}, ErrNoAITurn
	}
	g.thinking = true
	g.aiClock.Start()
	go g.broadcastState(g.stateLocked())
	return AITurn{
		GameID:        g.ID,
		Position:      g.position.Copy(),
		Side:          g.toMove,
		Algorithm:     g.settings.Algorithm,
		Depth:         g.settings.Depth,
		ForcedCapture: g.settings.ForcedCapture,
		version:       g.version,
	}, nil
}

// CommitAITurn plays the searched move, unless the game moved on (undo or
// restart) while the search was running.
func (g *Game) CommitAITurn(turn AITurn, result engine.Result, incomplete bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.thinking = false
	elapsed := g.aiClock.Stop()
	if turn.version != g.version {
		go g.broadcastState(g.stateLocked())
		return ErrStaleTurn
	}
	if result.Move == nil {
		go g.broadcastState(g.stateLocked())
		return fmt.Errorf("search returned no move for %v", turn.Side)
	}

	g.aiStats.LastThinkMs = elapsed.Milliseconds()
	g.aiStats.LastNodes = result.Nodes
	g.aiStats.LastScore = result.Score
	g.aiStats.LastIncomplete = incomplete

	// The search already produced the successor; keep it rather than
	// replaying the move.
	g.pushHistory()
	g.position = result.Position.Copy()
	moved, _ := g.position.PieceAt(result.Move.Move.Dest)
	g.recordPly(newPly(turn.Side, result.Move.Piece, result.Move.Move, moved.King && !result.Move.Piece.King, true))
	g.finishTurn()
	return nil
}

// AbortAITurn clears the thinking flag after a failed search.
func (g *Game) AbortAITurn() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.thinking = false
	g.aiClock.Stop()
	go g.broadcastState(g.stateLocked())
}

func (g *Game) canUndoLocked() bool {
	for _, s := range g.history {
		if s.toMove == g.settings.HumanSide {
			return true
		}
	}
	return false
}

// Undo restores the position from before the human's last move, taking
// back the engine's reply too.
func (g *Game) Undo(playerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.isPlayerInGame(playerID) {
		return ErrNotAPlayer
	}
	if !g.canUndoLocked() {
		return ErrNothingToUndo
	}
	for len(g.history) > 0 {
		last := g.history[len(g.history)-1]
		g.history = g.history[:len(g.history)-1]
		if last.toMove != g.settings.HumanSide {
			continue
		}
		g.position = last.position
		g.toMove = last.toMove
		g.moveHistory = g.moveHistory[:last.moves]
		break
	}
	g.winner = g.position.Winner()
	g.sound = "undo"
	g.version++
	logg.LogTo("GAME", "Undo in game %s, %d plies played", g.ID, len(g.moveHistory))
	go g.broadcastState(g.stateLocked())
	return nil
}

// Restart sets up a fresh board with the same settings.
func (g *Game) Restart(playerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.isPlayerInGame(playerID) {
		return ErrNotAPlayer
	}
	g.position = engine.NewPosition()
	g.toMove = engine.Dark
	g.winner = engine.NoSide
	g.moveHistory = make([]Ply, 0)
	g.history = nil
	g.sound = ""
	g.aiClock.Reset()
	g.aiStats = AIStats{Algorithm: g.settings.Algorithm, Depth: g.settings.Depth}
	g.version++
	logg.LogTo("GAME", "Restarted game %s", g.ID)
	go g.broadcastState(g.stateLocked())
	return nil
}

func (g *Game) RegisterConnection(playerID string, conn *websocket.Conn) error {
	connID := fmt.Sprintf("%p", conn)
	logg.LogTo("WS", "Starting RegisterConnection for player %s, conn %s", playerID, connID)

	g.mu.Lock()
	isAuthorized := g.isPlayerInGame(playerID) || g.canSpectate()
	g.mu.Unlock()

	if !isAuthorized {
		return ErrNotAuthorized
	}

	g.connections.mu.Lock()
	if _, exists := g.connections.connections[playerID]; exists {
		// If we already have a healthy connection, keep it and reject the new one
		g.connections.mu.Unlock()
		conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(
				websocket.CloseNormalClosure,
				"Connection already exists",
			),
		)
		conn.Close()
		return nil // Not really an error, just rejecting duplicate connection
	}

	g.connections.connections[playerID] = conn
	g.connections.mu.Unlock()
	logg.LogTo("WS", "Registered new connection %s for player %s", connID, playerID)

	go g.broadcastState(g.GetState())
	return nil
}

func (g *Game) UnregisterConnection(playerID string, conn *websocket.Conn) {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	current, exists := g.connections.connections[playerID]
	if !exists {
		return
	}
	// Only unregister if this is still the current connection
	if conn == nil || current == conn {
		logg.LogTo("WS", "Unregistering connection %p for player %s", current, playerID)
		delete(g.connections.connections, playerID)
	} else {
		logg.LogTo("WS", "Ignoring unregister for old connection %p for player %s", conn, playerID)
	}
}

func (g *Game) ConnectionCount() int {
	g.connections.mu.RLock()
	defer g.connections.mu.RUnlock()
	return len(g.connections.connections)
}

// broadcastState sends state to every connection of the game.
func (g *Game) broadcastState(state GameState) {
	jsonGameState, err := json.Marshal(state)
	if err != nil {
		logg.LogError(fmt.Errorf("marshal state of game %s: %w", g.ID, err))
		return
	}

	// Get a snapshot of connections under the connections mutex
	g.connections.mu.RLock()
	activeConnections := make(map[string]*websocket.Conn, len(g.connections.connections))
	for playerID, conn := range g.connections.connections {
		activeConnections[playerID] = conn
	}
	g.connections.mu.RUnlock()

	g.connections.writeMu.Lock()
	defer g.connections.writeMu.Unlock()
	for playerID, conn := range activeConnections {
		if err := conn.WriteJSON(ws.Message{
			Type:    ws.MessageTypeGameState,
			Payload: json.RawMessage(jsonGameState),
		}); err != nil {
			logg.LogTo("WS", "Failed to send state to player %s: %v", playerID, err)
			g.UnregisterConnection(playerID, conn)
			continue
		}
	}
}

// Send writes msg to one connection, serialized with broadcasts.
func (g *Game) Send(conn *websocket.Conn, msg ws.Message) error {
	g.connections.writeMu.Lock()
	defer g.connections.writeMu.Unlock()
	return conn.WriteJSON(msg)
}
