package websocket

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Hub is the process-wide session directory and room registry. It maps each
// authenticated user to their active sessions (a user may hold several, e.g.
// multiple tabs) and each conversation id to the sessions joined to its room.
// All maps are guarded by one mutex so add, remove and broadcast are atomic
// with respect to each other.
type Hub struct {
	mu sync.RWMutex

	// All connected sessions, authenticated or not.
	clients map[*Client]bool

	// userID -> set of that user's sessions.
	users map[string]map[*Client]bool

	// conversationID -> set of sessions joined to the room.
	rooms map[string]map[*Client]bool
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
		users:   make(map[string]map[*Client]bool),
		rooms:   make(map[string]map[*Client]bool),
	}
}

// Register adds a session to the directory. Sessions without a user identity
// are tracked but cannot join rooms or be addressed.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true
	if client.UserID != "" {
		if h.users[client.UserID] == nil {
			h.users[client.UserID] = make(map[*Client]bool)
		}
		h.users[client.UserID][client] = true
	}
	log.Info().Str("client_id", client.ID).Str("user_id", client.UserID).Int("total_clients", len(h.clients)).Msg("Client connected")
}

// Unregister removes a session from the directory and every room it joined.
// The user's directory entry is deleted once its session set becomes empty.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.Send)

	if client.UserID != "" {
		if sessions, ok := h.users[client.UserID]; ok {
			delete(sessions, client)
			if len(sessions) == 0 {
				delete(h.users, client.UserID)
			}
		}
	}

	for roomID, members := range h.rooms {
		if members[client] {
			delete(members, client)
			if len(members) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}
	log.Info().Str("client_id", client.ID).Str("user_id", client.UserID).Int("total_clients", len(h.clients)).Msg("Client disconnected")
}

// JoinRoom adds an authenticated session to a broadcast group.
func (h *Hub) JoinRoom(client *Client, roomID string) {
	if client.UserID == "" || roomID == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.clients[client] {
		return
	}
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][client] = true
}

// LeaveRoom removes a session from a broadcast group.
func (h *Hub) LeaveRoom(client *Client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.rooms[roomID]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// BroadcastToRoom sends a message to every session in the room except the
// excluded one. Delivery is at-most-once: a session whose send buffer is full
// misses the message and catches up from the persisted history.
//
// The sends happen under the read lock. Unregister closes a session's Send
// channel under the write lock, so holding the read lock here is what keeps
// a concurrent disconnect from turning a delivery into a send on a closed
// channel. The sends never block, so the lock is held only briefly.
func (h *Hub) BroadcastToRoom(roomID string, message []byte, exclude *Client) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[roomID] {
		if client == exclude {
			continue
		}
		select {
		case client.Send <- message:
		default:
			log.Warn().Str("client_id", client.ID).Str("room_id", roomID).Msg("Send buffer full, dropping broadcast")
		}
	}
}

// SendToUser sends a message to every active session of one user. Like
// BroadcastToRoom, the sends stay under the read lock so they cannot race a
// concurrent Unregister closing the channel.
func (h *Hub) SendToUser(userID string, message []byte) {
	if userID == "" {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.users[userID] {
		select {
		case client.Send <- message:
		default:
			log.Warn().Str("client_id", client.ID).Str("user_id", userID).Msg("Send buffer full, dropping message")
		}
	}
}

// RoomSize reports how many sessions are joined to a room.
func (h *Hub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// IsOnline reports whether a user has at least one active session.
func (h *Hub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID]) > 0
}
