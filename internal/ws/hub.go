package ws

import (
	"encoding/json"
	gosync "sync"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"

	"go-pos-sync/internal/sync"
)

// Event is the envelope pushed to connected POS screens.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

const (
	EventSyncStatus     = "sync_status"
	EventProductChanged = "product_changed"
)

// Hub fans sync and catalog events out to every connected terminal screen,
// so cashiers see price changes and sync state without refreshing.
type Hub struct {
	clients    map[*websocket.Conn]bool
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	broadcast  chan []byte
	logger     *zap.Logger
	mutex      gosync.Mutex
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		broadcast:  make(chan []byte, 16),
		logger:     logger,
	}
}

// SyncStatus implements the coordinator's Events hook.
func (h *Hub) SyncStatus(status sync.Status) {
	h.publish(Event{Type: EventSyncStatus, Payload: status})
}

// ProductChanged tells screens a product was created, updated or removed.
func (h *Hub) ProductChanged(productID string) {
	h.publish(Event{Type: EventProductChanged, Payload: map[string]string{"id": productID}})
}

func (h *Hub) publish(ev Event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("marshal ws event", zap.Error(err))
		return
	}
	// drop instead of blocking: a stalled screen must never stall a sync
	// cycle
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("ws broadcast dropped", zap.String("type", ev.Type))
	}
}

// Handler registers the connection and parks until the client goes away.
func (h *Hub) Handler() func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		h.register <- conn
		defer func() { h.unregister <- conn }()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}

func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.register:
			h.mutex.Lock()
			h.clients[conn] = true
			n := len(h.clients)
			h.mutex.Unlock()
			h.logger.Info("ws client connected", zap.Int("clients", n))

		case conn := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.broadcast:
			h.mutex.Lock()
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					delete(h.clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}
