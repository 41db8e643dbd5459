package websocket

import (
	"log/slog"
	"sync"

	"github.com/ashok9315-cmyk/profolia.art/internal/types"
)

// Hub maintains the set of active clients and pushes ingestion progress
// events to them. Each profile holds at most one connection.
type Hub struct {
	// Registered clients mapped by profile ID
	clients map[string]*Client

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Mutex to protect clients map
	mu sync.RWMutex

	// Channel to broadcast events
	broadcast chan *BroadcastMessage
}

// BroadcastMessage represents a message to be broadcast to specific profiles
type BroadcastMessage struct {
	ProfileIDs []string     `json:"profile_ids"`
	Event      *types.Event `json:"event"`
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *BroadcastMessage),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			// If the profile already has a connection, close the old one
			if existingClient, exists := h.clients[client.profileID]; exists {
				close(existingClient.send)
				slog.Info("Replaced existing WebSocket connection", slog.String("profile_id", client.profileID))
			}
			h.clients[client.profileID] = client
			h.mu.Unlock()
			slog.Info("WebSocket client connected", slog.String("profile_id", client.profileID))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.profileID]; ok {
				delete(h.clients, client.profileID)
				close(client.send)
				slog.Info("WebSocket client disconnected", slog.String("profile_id", client.profileID))
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.broadcastToProfiles(message.ProfileIDs, message.Event)
		}
	}
}

// RegisterClient registers a new client
func (h *Hub) RegisterClient(client *Client) {
	h.register <- client
}

// UnregisterClient unregisters a client
func (h *Hub) UnregisterClient(client *Client) {
	h.unregister <- client
}

// BroadcastToProfiles sends an event to specific profiles
func (h *Hub) BroadcastToProfiles(profileIDs []string, event *types.Event) {
	message := &BroadcastMessage{
		ProfileIDs: profileIDs,
		Event:      event,
	}

	select {
	case h.broadcast <- message:
	default:
		slog.Warn("Broadcast channel is full, dropping message")
	}
}

// BroadcastToProfile sends an event to a specific profile
func (h *Hub) BroadcastToProfile(profileID string, event *types.Event) {
	h.BroadcastToProfiles([]string{profileID}, event)
}

// broadcastToProfiles is the internal method that actually sends messages
func (h *Hub) broadcastToProfiles(profileIDs []string, event *types.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, profileID := range profileIDs {
		if client, ok := h.clients[profileID]; ok {
			err := client.SendEvent(event)
			if err != nil {
				slog.Error("Failed to send event to client",
					slog.String("profile_id", profileID),
					slog.String("error", err.Error()))
				// Remove the client if sending fails
				go func(c *Client) {
					h.unregister <- c
				}(client)
			}
		}
	}
}

// GetConnectedProfiles returns a list of currently connected profile IDs
func (h *Hub) GetConnectedProfiles() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	profiles := make([]string, 0, len(h.clients))
	for profileID := range h.clients {
		profiles = append(profiles, profileID)
	}
	return profiles
}

// IsProfileConnected checks if a profile is currently connected
func (h *Hub) IsProfileConnected(profileID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	_, exists := h.clients[profileID]
	return exists
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}
