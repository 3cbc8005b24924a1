package floor

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/yeremiapane/billiard-pos/utils"
)

// Event types
const (
	EventTableUpdate       = "table_update"
	EventTableCreate       = "table_create"
	EventSessionStarted    = "session_started"
	EventSessionUpdate     = "session_update"
	EventSessionClosed     = "session_closed"
	EventPackageWarning    = "package_warning"
	EventPackageExpired    = "package_expired"
	EventReservationUpdate = "reservation_update"
	EventReservationAlert  = "reservation_alert"
	EventTransactionPosted = "transaction_posted"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub holds every connected floor display (cashier, manager, wall screen).
type Hub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]string)}
}

func (h *Hub) Register(conn *websocket.Conn, role string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = role
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Broadcast sends one event to every client. Clients whose write fails are
// dropped; the read loop of their handler will notice the closed socket.
func (h *Hub) Broadcast(event string, data interface{}) {
	payload, err := json.Marshal(Message{Event: event, Data: data})
	if err != nil {
		utils.ErrorLogger.Errorf("floor: marshal %s: %v", event, err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	utils.InfoLogger.Debugf("floor: broadcasting %s to %d clients", event, len(h.clients))
	for conn, role := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			utils.ErrorLogger.Errorf("floor: send to %s client failed: %v", role, err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
}
