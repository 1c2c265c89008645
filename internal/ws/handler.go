package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"handscore/internal/service/game"
	"handscore/internal/service/score"
	"handscore/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type Handler struct {
	scoreSvc *score.Service
}

func NewHandler(scoreSvc *score.Service) *Handler {
	return &Handler{scoreSvc: scoreSvc}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// OutgoingMessage is every frame the server sends. Seq increases per connection.
type OutgoingMessage struct {
	Type string      `json:"type"`
	Seq  int64       `json:"seq"`
	Data interface{} `json:"data"`
}

type scorePayload struct {
	Input   string `json:"input"`
	Variant string `json:"variant"`
}

type totalPayload struct {
	Variant   game.Variant `json:"variant"`
	Hands     int          `json:"hands"`
	Total     int64        `json:"total"`
	InputHash string       `json:"inputHash"`
	Cached    bool         `json:"cached"`
}

func (h *Handler) HandleScoreWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.Error("Failed to upgrade websocket", zap.Error(err))
		return
	}

	sessionID := uuid.NewString()
	logger.Log.Info("New WebSocket connection", zap.String("session", sessionID))

	client := newClient(conn, sessionID, h.scoreSvc)
	client.run()
}

type client struct {
	conn      *websocket.Conn
	sessionID string
	scoreSvc  *score.Service
	outbound  chan OutgoingMessage
	done      chan struct{} // closed when the read pump exits
	writerEnd chan struct{} // closed when the write pump exits
	seq       int64
	pingEvery time.Duration
}

func newClient(conn *websocket.Conn, sessionID string, scoreSvc *score.Service) *client {
	conn.SetReadLimit(1 << 20)
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})
	return &client{
		conn:      conn,
		sessionID: sessionID,
		scoreSvc:  scoreSvc,
		outbound:  make(chan OutgoingMessage, 64),
		done:      make(chan struct{}),
		writerEnd: make(chan struct{}),
		pingEvery: 25 * time.Second,
	}
}

func (c *client) run() {
	go c.writePump()
	c.readPump()
}

func (c *client) readPump() {
	defer func() {
		close(c.done)
		c.conn.Close()
	}()

	for {
		mt, message, err := c.conn.ReadMessage()
		if err != nil {
			logger.Log.Info("WS read error", zap.Error(err), zap.String("session", c.sessionID))
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		var incoming struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(message, &incoming); err != nil {
			c.send("error", gin.H{"message": "invalid payload"})
			continue
		}

		switch incoming.Type {
		case "":
			c.send("error", gin.H{"message": "missing message type"})
		case "score":
			c.handleScore(incoming.Data)
		default:
			c.send("error", gin.H{"message": "unknown message type " + incoming.Type})
		}
	}
}

func (c *client) handleScore(data json.RawMessage) {
	var payload scorePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		c.send("error", gin.H{"message": "invalid score payload"})
		return
	}

	ctx, cancel := c.requestContext()
	defer cancel()

	result, err := c.scoreSvc.Score(ctx, score.Request{Input: payload.Input, Variant: payload.Variant})
	if err != nil {
		c.send("error", gin.H{"message": err.Error()})
		return
	}

	for _, h := range result.Hands {
		if !c.send("hand", h) {
			return
		}
	}
	c.send("total", totalPayload{
		Variant:   result.Variant,
		Hands:     len(result.Hands),
		Total:     result.Total,
		InputHash: result.InputHash,
		Cached:    result.Cached,
	})
}

// requestContext is canceled once the connection can no longer be written to.
func (c *client) requestContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-c.writerEnd:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// send queues a message for the write pump. It reports false once the
// connection is closing.
func (c *client) send(msgType string, data interface{}) bool {
	c.seq++
	msg := OutgoingMessage{Type: msgType, Seq: c.seq, Data: data}
	select {
	case c.outbound <- msg:
		return true
	case <-c.writerEnd:
		return false
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(c.pingEvery)
	defer func() {
		ticker.Stop()
		close(c.writerEnd)
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.outbound:
			if err := c.conn.WriteJSON(msg); err != nil {
				logger.Log.Info("WS write error", zap.Error(err), zap.String("session", c.sessionID))
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
