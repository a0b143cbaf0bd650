package notify

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/dunkirk-sh/ennote/internal/logging"
)

// Hub pushes change events to connected surfaces over websockets.
// No acknowledgment, no ordering guarantee relative to other notifications.
type Hub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan Event
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	mu         sync.RWMutex

	log logging.Logger
}

func NewHub(log logging.Logger) *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan Event, 256),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		log:        log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.clients[conn] = true
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mu.Unlock()

		case ev := <-h.broadcast:
			h.mu.RLock()
			for conn := range h.clients {
				if err := conn.WriteJSON(ev); err != nil {
					h.log.Warn(context.Background(), "websocket write failed", "err", err)
					go h.Unregister(conn)
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) Broadcast(ev Event) {
	select {
	case h.broadcast <- ev:
	default:
		// A full buffer means a slow consumer; the widget's fallback poll
		// covers any dropped signal.
	}
}

func (h *Hub) Register(conn *websocket.Conn) {
	h.register <- conn
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.unregister <- conn
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades the connection and keeps it registered until the client
// goes away. Incoming messages are drained and ignored.
func (h *Hub) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.log.Warn(r.Context(), "websocket upgrade failed", "err", err)
			return
		}

		h.Register(conn)
		defer h.Unregister(conn)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}
