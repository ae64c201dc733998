package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/entropy-tictactoe-backend/internal/entity"
	"github.com/rocketscienceinc/entropy-tictactoe-backend/internal/pkg"
	"github.com/rocketscienceinc/entropy-tictactoe-backend/internal/usecase"
)

const joinTimeout = 15 * time.Second

type roomManager interface {
	JoinRoom(ctx context.Context, code, playerID, name string, withBot bool) (*entity.Player, usecase.StatePayload, error)
	LeaveRoom(code, playerID string) error

	Place(ctx context.Context, code, playerID string, position int) error
	Reveal(ctx context.Context, code, playerID string, position int) error
	MontyChooseOriginal(ctx context.Context, code, playerID string, position int) error
	MontyFinalChoice(ctx context.Context, code, playerID string, position int) error
	VoteNewGame(ctx context.Context, code, playerID string) error

	StateFor(code string) (usecase.StatePayload, error)
}

type handlerFunc func(ctx context.Context, roomCode string, sender *client, msg *Message) error

// Server accepts room WebSocket connections, feeds player commands into
// the room manager and fans manager notifications back out. It is the
// manager's Notifier.
type Server struct {
	logger  *slog.Logger
	manager roomManager

	upgrader websocket.Upgrader
	handlers map[string]handlerFunc

	mu    sync.RWMutex
	rooms map[string]map[string]*client
}

// client wraps one connection; writes are serialized because gorilla
// allows a single concurrent writer.
type client struct {
	mu   sync.Mutex
	conn *websocket.Conn

	playerID   string
	playerName string
	playerSlot int
}

func (that *client) send(msg Message) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func New(logger *slog.Logger, manager roomManager) *Server {
	server := &Server{
		logger:  logger,
		manager: manager,

		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Cross-origin control lives on the frontend proxy.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		rooms: make(map[string]map[string]*client),
	}

	server.handlers = map[string]handlerFunc{
		"game:place":            server.handlePlace,
		"game:reveal":           server.handleReveal,
		"monty:choose_original": server.handleMontyChooseOriginal,
		"monty:final_choice":    server.handleMontyFinalChoice,
		"game:play_again":       server.handlePlayAgain,
		"game:state":            server.handleStateSync,
		"chat:message":          server.handleChat,
	}

	return server
}

// Start - starts the WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/{roomCode}", func(w http.ResponseWriter, r *http.Request) {
		that.serveRoom(ctx, w, r)
	})

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		ReadTimeout: 0, // connections are long-lived
		IdleTimeout: 0,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) serveRoom(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveRoom")

	roomCode := r.PathValue("roomCode")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	sender, err := that.join(ctx, roomCode, conn)
	if err != nil {
		log.Error("join failed", "roomCode", roomCode, "error", err)
		_ = writeError(conn, "join", err.Error())
		return
	}

	log = log.With("roomCode", roomCode, "playerID", sender.playerID)
	log.Info("WebSocket connection established")

	defer func() {
		that.unregister(roomCode, sender.playerID)

		if err := that.manager.LeaveRoom(roomCode, sender.playerID); err != nil {
			log.Error("failed to leave room", "error", err)
		}

		log.Info("player disconnected")
	}()

	that.readLoop(ctx, roomCode, sender)
}

// join runs the initial handshake: the first frame must be a join action
// carrying the player's name and, optionally, a previous session ID.
func (that *Server) join(ctx context.Context, roomCode string, conn *websocket.Conn) (*client, error) {
	_ = conn.SetReadDeadline(time.Now().Add(joinTimeout))

	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		return nil, fmt.Errorf("failed to read join message: %w", err)
	}

	_ = conn.SetReadDeadline(time.Time{})

	if msg.Action != "join" {
		return nil, fmt.Errorf("expected join message, got %q", msg.Action)
	}

	var payload Payload
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal join payload: %w", err)
		}
	}

	playerID := ""
	playerName := "Anonymous"
	if payload.Player != nil {
		playerID = payload.Player.ID
		if payload.Player.Name != "" {
			playerName = payload.Player.Name
		}
	}
	if playerID == "" {
		playerID = pkg.GenerateNewSessionID()
	}

	sender := &client{conn: conn, playerID: playerID, playerName: playerName}
	that.register(roomCode, sender)

	player, state, err := that.manager.JoinRoom(ctx, roomCode, playerID, playerName, payload.WithBot)
	if err != nil {
		that.unregister(roomCode, playerID)
		return nil, err
	}

	sender.playerSlot = player.Slot

	// Direct response so the client learns its own identity and slot
	// before the first broadcast lands.
	response := struct {
		Player *entity.Player       `json:"player"`
		State  usecase.StatePayload `json:"state"`
	}{Player: player, State: state}

	if err = sender.send(Message{Action: "join", Payload: mustMarshal(response)}); err != nil {
		return nil, err
	}

	return sender, nil
}

func (that *Server) readLoop(ctx context.Context, roomCode string, sender *client) {
	log := that.logger.With("method", "readLoop", "roomCode", roomCode, "playerID", sender.playerID)

	for {
		var msg Message
		if err := sender.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("error reading message", "error", err)
			}
			return
		}

		handler, ok := that.handlers[msg.Action]
		if !ok {
			log.Warn("unknown action", "action", msg.Action)
			that.sendError(sender, msg.Action, "unknown action")
			continue
		}

		if err := handler(ctx, roomCode, sender, &msg); err != nil {
			// Command errors reject the single offending command and go
			// back to the originating caller only.
			log.Info("command rejected", "action", msg.Action, "error", err)
			that.sendError(sender, msg.Action, err.Error())
		}
	}
}

// Broadcast implements usecase.Notifier.
func (that *Server) Broadcast(roomCode, action string, payload any) {
	that.mu.RLock()
	members := make([]*client, 0, len(that.rooms[roomCode]))
	for _, member := range that.rooms[roomCode] {
		members = append(members, member)
	}
	that.mu.RUnlock()

	msg := Message{Action: action, Payload: mustMarshal(payload)}

	for _, member := range members {
		if err := member.send(msg); err != nil {
			that.logger.Error("failed to send broadcast", "roomCode", roomCode, "playerID", member.playerID, "error", err)
		}
	}
}

// Narrowcast implements usecase.Notifier; it reaches exactly one player.
func (that *Server) Narrowcast(roomCode, playerID, action string, payload any) {
	that.mu.RLock()
	member := that.rooms[roomCode][playerID]
	that.mu.RUnlock()

	if member == nil {
		that.logger.Warn("narrowcast target not connected", "roomCode", roomCode, "playerID", playerID)
		return
	}

	if err := member.send(Message{Action: action, Payload: mustMarshal(payload)}); err != nil {
		that.logger.Error("failed to send narrowcast", "roomCode", roomCode, "playerID", playerID, "error", err)
	}
}

func (that *Server) register(roomCode string, sender *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.rooms[roomCode] == nil {
		that.rooms[roomCode] = make(map[string]*client)
	}
	that.rooms[roomCode][sender.playerID] = sender
}

func (that *Server) unregister(roomCode, playerID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.rooms[roomCode], playerID)
	if len(that.rooms[roomCode]) == 0 {
		delete(that.rooms, roomCode)
	}
}

func (that *Server) sendError(sender *client, action, errorMsg string) {
	if err := sender.send(Message{Action: action, Payload: mustMarshal(Payload{Error: errorMsg})}); err != nil {
		that.logger.Error("failed to send error response", "error", err)
	}
}

func writeError(conn *websocket.Conn, action, errorMsg string) error {
	return conn.WriteJSON(Message{Action: action, Payload: mustMarshal(Payload{Error: errorMsg})})
}

func mustMarshal(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
