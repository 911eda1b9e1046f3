package websocket

import (
	"encoding/json"
	"sync"

	"geocam/internal/logger"

	"github.com/gorilla/websocket"
)

// Event is a message pushed to every viewer.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// HubService fans capture events out to connected viewers.
type HubService struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	mutex      sync.RWMutex
	logger     *logger.Logger
}

func NewHubService(logger *logger.Logger) *HubService {
	return &HubService{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run serves registrations and broadcasts until Stop is called.
func (h *HubService) Run() {
	for {
		select {
		case <-h.done:
			h.mutex.Lock()
			for client := range h.clients {
				client.Close()
				delete(h.clients, client)
			}
			h.mutex.Unlock()
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			h.logger.Info("Viewer registered. Total: %d", total)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			total := len(h.clients)
			h.mutex.Unlock()
			h.logger.Info("Viewer unregistered. Total: %d", total)

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					h.logger.Error("Error sending message: %v", err)
					delete(h.clients, client)
					client.Close()
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Stop closes all viewer connections and ends Run.
func (h *HubService) Stop() {
	close(h.done)
}

func (h *HubService) Register(client *websocket.Conn) {
	select {
	case h.register <- client:
	case <-h.done:
		client.Close()
	}
}

func (h *HubService) Unregister(client *websocket.Conn) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish encodes an event and queues it for broadcast. Events are dropped
// when the queue is full so capture never blocks on slow viewers.
func (h *HubService) Publish(eventType string, data interface{}) {
	message, err := json.Marshal(Event{Type: eventType, Data: data})
	if err != nil {
		h.logger.Error("Error encoding %s event: %v", eventType, err)
		return
	}

	select {
	case h.broadcast <- message:
	case <-h.done:
	default:
		h.logger.Warning("Dropping %s event, broadcast queue full", eventType)
	}
}

func (h *HubService) GetClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
