package service

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"

	"github.com/Websitedemo13/s17-trading-go/internal/logger"
	"github.com/Websitedemo13/s17-trading-go/internal/model"
)

type HubClient struct {
	Conn        *websocket.Conn
	UserID      string
	DisplayName string
	Send        chan []byte

	// team is written by the connection's read loop on subscribe frames
	// and read by broadcasting goroutines, so access goes through mu.
	mu   sync.RWMutex
	team string
}

// Team returns the single team channel this connection is subscribed to.
func (c *HubClient) Team() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.team
}

// SetTeam switches the connection's subscription and returns the team
// it was subscribed to before.
func (c *HubClient) SetTeam(teamID string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.team
	c.team = teamID
	return prev
}

// Hub fans realtime events out to connected clients. Each connection
// subscribes to exactly one team channel; events are delivered only to
// subscribers of the matching team.
type Hub struct {
	clients    map[*HubClient]bool
	register   chan *HubClient
	unregister chan *HubClient
	mu         sync.RWMutex
	done       chan struct{}
	log        *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*HubClient]bool),
		register:   make(chan *HubClient),
		unregister: make(chan *HubClient),
		done:       make(chan struct{}),
		log:        log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Infow("client connected", "user", client.DisplayName, "total", total)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Infow("client disconnected", "user", client.DisplayName, "total", total)

		case <-h.done:
			return
		}
	}
}

func (h *Hub) Shutdown() {
	close(h.done)
}

func (h *Hub) Register(client *HubClient) {
	h.register <- client
}

func (h *Hub) Unregister(client *HubClient) {
	h.unregister <- client
}

// BroadcastToTeam delivers an event to every subscriber of the team.
// Pass a non-empty excludeUserID to skip the originator (typing events
// should not echo back to the sender).
func (h *Hub) BroadcastToTeam(teamID string, event *model.Event, excludeUserID string) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if client.Team() != teamID {
			continue
		}
		if excludeUserID != "" && client.UserID == excludeUserID {
			continue
		}
		select {
		case client.Send <- data:
		default:
			// Slow consumer: drop the event rather than block the hub
		}
	}
}

func (h *Hub) OnlineCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
