package ws

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/types"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMessage = 4096
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Any local origin may subscribe
	},
}

// ParseCategories reads a comma separated category list. Empty means all.
func ParseCategories(raw string) ([]types.Category, error) {
	if strings.TrimSpace(raw) == "" {
		return types.Categories(), nil
	}

	var out []types.Category
	for _, part := range strings.Split(raw, ",") {
		c := types.Category(strings.TrimSpace(part))
		if !c.Valid() {
			return nil, fmt.Errorf("unknown category %q", part)
		}
		out = append(out, c)
	}
	return out, nil
}

// HandleConnection upgrades to a WebSocket and streams events for the
// categories named in ?categories=
func (h *Hub) HandleConnection(c *gin.Context) {
	categories, err := ParseCategories(c.Query("categories"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	cl := newClient(h.buffer, categories)
	h.add(cl)
	h.logger.Info("Stream client connected",
		zap.String("conn_id", cl.id.String()),
		zap.Any("categories", categories),
	)

	h.reply(cl, types.WSMessage{
		Type:       "system",
		Message:    "Connected to AgentOS Launcher",
		Categories: categories,
	})

	done := make(chan struct{})
	go h.writePump(conn, cl, done)
	h.readPump(conn, cl)

	close(done)
	h.remove(cl)
	h.logger.Info("Stream client disconnected", zap.String("conn_id", cl.id.String()))
}

// readPump handles control messages until the client goes away
func (h *Hub) readPump(conn *websocket.Conn, cl *client) {
	conn.SetReadLimit(maxMessage)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg types.WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("WebSocket read error", zap.String("conn_id", cl.id.String()), zap.Error(err))
			}
			return
		}
		h.recordMessage("in", msg.Type)

		switch msg.Type {
		case "ping":
			h.reply(cl, types.WSMessage{Type: "pong"})
		case "subscribe":
			if err := validCategories(msg.Categories); err != nil {
				h.reply(cl, types.WSMessage{Type: "error", Message: err.Error()})
				continue
			}
			cl.subscribe(msg.Categories)
			h.reply(cl, types.WSMessage{Type: "subscribed", Categories: cl.subscribed()})
		default:
			h.reply(cl, types.WSMessage{Type: "error", Message: "unknown message type"})
		}
	}
}

// writePump is the only writer on conn
func (h *Hub) writePump(conn *websocket.Conn, cl *client, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg := <-cl.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
			h.recordMessage("out", msg.Type)
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

func (h *Hub) reply(cl *client, msg types.WSMessage) {
	select {
	case cl.send <- msg:
	default:
		h.recordMessage("dropped", msg.Type)
	}
}

func validCategories(categories []types.Category) error {
	if len(categories) == 0 {
		return fmt.Errorf("no categories given")
	}
	for _, c := range categories {
		if !c.Valid() {
			return fmt.Errorf("unknown category %q", c)
		}
	}
	return nil
}
