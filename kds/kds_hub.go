package kds

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/platoo/order-service/models"
	"github.com/platoo/order-service/utils"
	"github.com/sirupsen/logrus"
)

// Event types
const (
	EventOrderCreated       = "order_created"
	EventOrderStatusChanged = "order_status_changed"
)

const (
	writeTimeout = 5 * time.Second
	sendBuffer   = 32
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type client struct {
	conn *websocket.Conn
	role string
	send chan []byte
}

// Hub fans order events out to connected kitchen display clients. Each client
// has its own writer goroutine, so Broadcast never waits on the network.
type Hub struct {
	clients map[*websocket.Conn]*client
	mutex   sync.Mutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]*client)}
}

func (h *Hub) Register(conn *websocket.Conn, role string) {
	c := &client{conn: conn, role: role, send: make(chan []byte, sendBuffer)}

	h.mutex.Lock()
	h.clients[conn] = c
	h.mutex.Unlock()

	go h.writePump(c)
	utils.InfoLogger.WithField("role", role).Info("KDS client connected")
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.removeLocked(conn)
}

// removeLocked drops conn if it is still registered. h.mutex must be held.
func (h *Hub) removeLocked(conn *websocket.Conn) {
	c, ok := h.clients[conn]
	if !ok {
		return
	}
	delete(h.clients, conn)
	close(c.send)
	conn.Close()
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

func (h *Hub) OrderCreated(order models.Order) {
	h.Broadcast(Message{Event: EventOrderCreated, Data: order})
}

func (h *Hub) OrderStatusChanged(order models.Order) {
	h.Broadcast(Message{Event: EventOrderStatusChanged, Data: order})
}

// Broadcast queues msg for every client. A client whose queue is full is
// dropped instead of holding up the caller.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Errorf("Error marshaling %s event: %v", msg.Event, err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for conn, c := range h.clients {
		select {
		case c.send <- data:
		default:
			utils.ErrorLogger.WithFields(logrus.Fields{
				"event": msg.Event,
				"role":  c.role,
			}).Error("KDS client too slow, dropping")
			h.removeLocked(conn)
		}
	}
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()

	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.WithField("role", c.role).Errorf("Error sending message to client: %v", err)
			h.Unregister(c.conn)
			return
		}
	}
}
