package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

// ChangeEvent is sent to an owner's other sessions after a task write.
type ChangeEvent struct {
	Event string `json:"event"`
}

const EventTasksChanged = "tasks_changed"

// wsClient is one websocket connection. mu serialises writes since a
// connection supports a single concurrent writer.
type wsClient struct {
	conn *websocket.Conn
	sid  string
	mu   sync.Mutex
}

func (c *wsClient) write(message []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, message)
}

// WSHub tracks websocket connections by owner.
type WSHub struct {
	connections map[string]map[*websocket.Conn]*wsClient
	mutex       sync.Mutex
	logger      *log.Logger
}

func NewWSHub(logger *log.Logger) *WSHub {
	return &WSHub{
		connections: make(map[string]map[*websocket.Conn]*wsClient),
		logger:      logger,
	}
}

func (h *WSHub) register(owner, sid string, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if h.connections[owner] == nil {
		h.connections[owner] = make(map[*websocket.Conn]*wsClient)
	}
	h.connections[owner][conn] = &wsClient{conn: conn, sid: sid}
}

func (h *WSHub) unregister(owner string, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	delete(h.connections[owner], conn)
	if len(h.connections[owner]) == 0 {
		delete(h.connections, owner)
	}
}

// targets lists the connections of owner that did not originate the change.
func (h *WSHub) targets(owner, originSID string) []*wsClient {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	var out []*wsClient
	for _, c := range h.connections[owner] {
		if c.sid != originSID {
			out = append(out, c)
		}
	}
	return out
}

// Notify sends a change event to every connection of owner except those of
// the originating session. Writes happen outside the hub lock; connections
// that fail to take the write are dropped.
func (h *WSHub) Notify(owner, originSID string) {
	message, err := json.Marshal(ChangeEvent{Event: EventTasksChanged})
	if err != nil {
		h.logger.Error("marshal change event", "err", err)
		return
	}

	for _, c := range h.targets(owner, originSID) {
		if err := c.write(message); err != nil {
			h.logger.Warn("drop websocket", "owner", owner, "err", err)
			h.unregister(owner, c.conn)
			c.conn.Close()
		}
	}
}

// Close drops every connection.
func (h *WSHub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for owner, conns := range h.connections {
		for conn := range conns {
			conn.Close()
		}
		delete(h.connections, owner)
	}
}

func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := h.clientIP(r)
	if !h.WSLimiter.Allow(ip) {
		sendError(w, "Too many WebSocket connection attempts", http.StatusTooManyRequests)
		return
	}
	sess, err := h.openSession(r)
	if err != nil {
		sendError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	upgrader := websocket.Upgrader{CheckOrigin: h.checkOrigin}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the client.
		h.Logger.Warn("websocket upgrade failed", "err", err)
		return
	}

	owner := sess.Owner()
	h.WSHub.register(owner, sess.ID(), conn)
	defer func() {
		h.WSHub.unregister(owner, conn)
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.Logger.Debug("websocket closed", "owner", owner, "err", err)
			}
			return
		}
	}
}
