package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"itinventory/pkg/models"
	"itinventory/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	sendBuffer   = 64
	writeTimeout = 10 * time.Second
	pongTimeout  = 60 * time.Second
	pingInterval = 30 * time.Second
)

// Message is what a subscriber receives for every new transaction.
type Message struct {
	Type        string             `json:"type"`
	Transaction models.Transaction `json:"transaction"`
}

type broadcast struct {
	principalID string
	payload     []byte
}

type client struct {
	principalID string
	conn        *websocket.Conn
	send        chan []byte
}

// Hub fans transactions out to the websocket clients of their principal.
type Hub struct {
	clients    map[string]map[*client]bool
	broadcast  chan broadcast
	register   chan *client
	unregister chan *client
	drop       chan string
	done       chan struct{}
	upgrader   websocket.Upgrader
	logger     *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    map[string]map[*client]bool{},
		broadcast:  make(chan broadcast, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		drop:       make(chan string, 16),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Run owns the client registry until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	h.logger.Info("Transaction feed started")
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for _, clients := range h.clients {
				for c := range clients {
					close(c.send)
				}
			}
			h.clients = map[string]map[*client]bool{}
			return

		case c := <-h.register:
			if _, ok := h.clients[c.principalID]; !ok {
				h.clients[c.principalID] = map[*client]bool{}
			}
			h.clients[c.principalID][c] = true

		case c := <-h.unregister:
			if clients, ok := h.clients[c.principalID]; ok {
				if _, ok := clients[c]; ok {
					delete(clients, c)
					close(c.send)
					if len(clients) == 0 {
						delete(h.clients, c.principalID)
					}
				}
			}

		case principalID := <-h.drop:
			for c := range h.clients[principalID] {
				close(c.send)
			}
			if n := len(h.clients[principalID]); n > 0 {
				h.logger.Debug("Feed clients dropped", zap.String("principal", principalID), zap.Int("clients", n))
			}
			delete(h.clients, principalID)

		case msg := <-h.broadcast:
			for c := range h.clients[msg.principalID] {
				select {
				case c.send <- msg.payload:
				default:
					// slow consumer
					close(c.send)
					delete(h.clients[msg.principalID], c)
				}
			}
		}
	}
}

// Publish queues entry for the principal's subscribers. It never blocks the
// caller; when the queue is full the message is dropped.
func (h *Hub) Publish(principalID string, entry models.Transaction) {
	payload, err := json.Marshal(Message{Type: "transaction", Transaction: entry})
	if err != nil {
		h.logger.Warn("Failed to encode feed message", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- broadcast{principalID: principalID, payload: payload}:
	default:
		h.logger.Warn("Feed queue full, dropping message", zap.String("principal", principalID))
	}
}

// HandleEvent closes every subscription of a principal that signed out.
func (h *Hub) HandleEvent(_ context.Context, event models.SessionEvent) {
	if event.Kind != models.SignedOut {
		return
	}
	select {
	case h.drop <- event.Principal.ID:
	case <-h.done:
	}
}

// Serve upgrades an authenticated request to a websocket subscription.
func (h *Hub) Serve(c *gin.Context) {
	principal, ok := security.PrincipalFromContext(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}

	cl := &client{principalID: principal.ID, conn: conn, send: make(chan []byte, sendBuffer)}
	select {
	case h.register <- cl:
	case <-h.done:
		conn.Close()
		return
	}

	go h.writePump(cl)
	go h.readPump(cl)
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only watches for the peer going away.
func (h *Hub) readPump(c *client) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
