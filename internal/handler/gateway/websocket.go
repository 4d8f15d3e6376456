package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/model/chat"
	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/model/suggestion"
	chatservice "github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/service/chat"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second
	writeTimeout = 10 * time.Second
)

// Inbound message types.
const (
	TypeLogin      = "login"
	TypeLogout     = "logout"
	TypeSend       = "send"
	TypeSuggestion = "suggestion"
	TypeClear      = "clear"
	TypeSnapshot   = "snapshot"
)

// Outbound message types.
const (
	TypeEvent = "event"
	TypeError = "error"
)

// Handler binds websocket connections to chat clients.
type Handler struct {
	manager    *chatservice.Manager
	dispatcher *chatservice.Dispatcher
	promoter   *chatservice.Promoter
	upgrader   websocket.Upgrader
	log        *zap.Logger
}

// New creates the realtime gateway.
func New(manager *chatservice.Manager, dispatcher *chatservice.Dispatcher, promoter *chatservice.Promoter, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		manager:    manager,
		dispatcher: dispatcher,
		promoter:   promoter,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		log: log.With(zap.String("module", "gateway")),
	}
}

// RegisterRoutes mounts the websocket endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.handleWebSocket)
}

type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type loginData struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

type sendData struct {
	Text string `json:"text"`
}

type suggestionData struct {
	ID string `json:"id"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// Snapshot is the full client state pushed after state-changing commands.
type Snapshot struct {
	Session     *chat.Session       `json:"session"`
	Suggestions []suggestion.Prompt `json:"suggestions"`
}

type connection struct {
	h      *Handler
	conn   *websocket.Conn
	client *chatservice.Client
	log    *zap.Logger

	writeMu sync.Mutex

	subMu       sync.Mutex
	unsubscribe func()

	turns sync.WaitGroup
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	c := &connection{
		h:      h,
		conn:   conn,
		client: chatservice.NewClient(h.manager),
		log:    h.log.With(zap.String("remote_addr", r.RemoteAddr)),
	}
	defer c.detach()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	go c.pingLoop(ctx)

	c.log.Info("connection opened")
	if userID := strings.TrimSpace(r.URL.Query().Get("userId")); userID != "" {
		c.login(loginData{UserID: userID})
	} else {
		c.sendSnapshot()
	}

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("read error", zap.Error(err))
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(readTimeout))

		c.handleMessage(ctx, &msg)
	}
}

func (c *connection) handleMessage(ctx context.Context, msg *inboundMessage) {
	switch msg.Type {
	case TypeLogin:
		var data loginData
		if err := decodeData(msg.Data, &data); err != nil {
			c.sendError("invalid login payload")
			return
		}
		c.login(data)

	case TypeLogout:
		c.resubscribe("")
		_, _ = c.client.OnAuthChange(nil)
		c.sendSnapshot()

	case TypeSend:
		var data sendData
		if err := decodeData(msg.Data, &data); err != nil {
			c.sendError("invalid send payload")
			return
		}
		session := c.client.Session()
		c.runTurn(ctx, func(turnCtx context.Context) error {
			_, err := c.h.dispatcher.SendMessage(turnCtx, session, data.Text)
			return err
		})

	case TypeSuggestion:
		var data suggestionData
		if err := decodeData(msg.Data, &data); err != nil {
			c.sendError("invalid suggestion payload")
			return
		}
		session := c.client.Session()
		c.runTurn(ctx, func(turnCtx context.Context) error {
			_, err := c.h.promoter.Select(turnCtx, session, data.ID)
			return err
		})

	case TypeClear:
		if _, err := c.client.ClearSession(); err != nil {
			c.sendError(errorText(err))
			return
		}
		c.sendSnapshot()

	case TypeSnapshot:
		c.sendSnapshot()

	default:
		c.sendError("unknown message type: " + msg.Type)
	}
}

func (c *connection) login(data loginData) {
	userID := strings.TrimSpace(data.UserID)
	if userID == "" {
		c.sendError(errorText(chatservice.ErrNotAuthenticated))
		return
	}

	c.resubscribe(userID)
	if _, err := c.client.OnAuthChange(&chatservice.User{ID: userID, DisplayName: data.DisplayName}); err != nil {
		c.sendError(errorText(err))
		return
	}
	c.log.Info("client signed in", zap.String("user_id", userID))
	c.sendSnapshot()
}

// runTurn dispatches off the read loop so pings and other commands keep
// flowing while the reply is pending. The turn outlives the connection; the
// session keeps the reply for the next snapshot.
func (c *connection) runTurn(ctx context.Context, turn func(context.Context) error) {
	c.turns.Add(1)
	go func() {
		defer c.turns.Done()
		if err := turn(context.WithoutCancel(ctx)); err != nil {
			c.sendError(errorText(err))
		}
	}()
}

// resubscribe moves the event subscription to ownerID, or drops it when
// ownerID is empty.
func (c *connection) resubscribe(ownerID string) {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	if ownerID != "" {
		c.unsubscribe = c.h.manager.Subscribe(ownerID, func(ev chat.Event) {
			c.write(TypeEvent, ev)
		})
	}
}

// detach waits for pending turns and drops the subscription. The session
// survives the disconnect.
func (c *connection) detach() {
	c.turns.Wait()
	c.resubscribe("")
	c.log.Info("connection closed")
}

func (c *connection) sendSnapshot() {
	snapshot := Snapshot{Suggestions: []suggestion.Prompt{}}
	if session := c.client.Session(); session != nil {
		state := session.Snapshot()
		snapshot.Session = &state
		if visible := c.h.promoter.Visible(session); visible != nil {
			snapshot.Suggestions = visible
		}
	}
	c.write(TypeSnapshot, snapshot)
}

func (c *connection) sendError(message string) {
	c.write(TypeError, map[string]string{"message": message})
}

func (c *connection) write(kind string, data interface{}) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	msg := outgoingMessage{Type: kind, Data: data, Timestamp: time.Now().Unix()}
	if err := c.conn.WriteJSON(msg); err != nil {
		c.log.Debug("write failed", zap.String("type", kind), zap.Error(err))
	}
}

func (c *connection) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.writeMu.Lock()
			err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

func decodeData(raw json.RawMessage, dst interface{}) error {
	if len(raw) == 0 {
		return errors.New("missing data")
	}
	return json.Unmarshal(raw, dst)
}

func errorText(err error) string {
	switch {
	case errors.Is(err, chatservice.ErrEmptyMessage):
		return "message is empty"
	case errors.Is(err, chatservice.ErrNoSession), errors.Is(err, chatservice.ErrNotAuthenticated):
		return "not signed in"
	case errors.Is(err, chatservice.ErrSuggestionNotFound):
		return "suggestion not found"
	case errors.Is(err, chatservice.ErrSessionClosed):
		return "conversation was reset before the reply arrived"
	default:
		return err.Error()
	}
}
