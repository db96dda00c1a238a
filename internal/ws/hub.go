package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/freka11/schoolday/internal/model"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisChannel = "schoolday:conversations"

// MessageLoader fetches the full ordered message list for a conversation;
// the hub calls it to build the snapshot pushed on every change
type MessageLoader func(conversationID string) ([]model.Message, error)

// Hub manages WebSocket connections and per-conversation snapshot
// subscriptions. Redis Pub/Sub fans change notifications out across
// instances so every subscriber sees every change.
type Hub struct {
	// userID -> set of client connections (multiple tabs/devices)
	clients map[uuid.UUID]map[*Client]bool
	// conversationID -> set of subscribed clients
	subscribers map[string]map[*Client]bool
	mu          sync.RWMutex

	register   chan *Client
	unregister chan *Client

	rdb  *redis.Client
	load MessageLoader
}

// NewHub creates a new WebSocket Hub
func NewHub(rdb *redis.Client, load MessageLoader) *Hub {
	return &Hub{
		clients:     make(map[uuid.UUID]map[*Client]bool),
		subscribers: make(map[string]map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		rdb:         rdb,
		load:        load,
	}
}

// Run starts the Hub's main event loop
func (h *Hub) Run(ctx context.Context) {
	go h.subscribeRedis(ctx)

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

// Register queues a client for registration with the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// addClient registers a new client connection
func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.UserID]; !ok {
		h.clients[client.UserID] = make(map[*Client]bool)
	}
	h.clients[client.UserID][client] = true
	log.Printf("✅ Client connected: %s (connections: %d)", client.UserID, len(h.clients[client.UserID]))
}

// removeClient unregisters a client and tears down its subscription
func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.dropSubscription(client)

	if clients, ok := h.clients[client.UserID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)
		}
		if len(clients) == 0 {
			delete(h.clients, client.UserID)
		}
	}
	log.Printf("❌ Client disconnected: %s", client.UserID)
}

// Subscribe switches a client's single active subscription to the given
// conversation, tearing down the previous one first, and delivers an
// immediate initial snapshot.
func (h *Hub) Subscribe(client *Client, conversationID string) {
	h.mu.Lock()
	h.dropSubscription(client)
	if _, ok := h.subscribers[conversationID]; !ok {
		h.subscribers[conversationID] = make(map[*Client]bool)
	}
	h.subscribers[conversationID][client] = true
	client.conversation = conversationID
	h.mu.Unlock()

	h.snapshotToClient(client, conversationID)
}

// Unsubscribe tears down the client's active subscription, if any
func (h *Hub) Unsubscribe(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropSubscription(client)
}

// dropSubscription removes the client from its current conversation set.
// Caller holds h.mu.
func (h *Hub) dropSubscription(client *Client) {
	if client.conversation == "" {
		return
	}
	if subs, ok := h.subscribers[client.conversation]; ok {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.subscribers, client.conversation)
		}
	}
	client.conversation = ""
}

// NotifyConversation announces a change in a conversation. Published to
// Redis so subscribers on every instance receive a fresh snapshot.
func (h *Hub) NotifyConversation(conversationID string) {
	payload, err := json.Marshal(changeEvent{ConversationID: conversationID})
	if err != nil {
		log.Printf("Error marshaling change event: %v", err)
		return
	}
	if err := h.rdb.Publish(context.Background(), redisChannel, payload).Err(); err != nil {
		log.Printf("Error publishing to Redis: %v", err)
	}
}

// changeEvent is the cross-instance change notification
type changeEvent struct {
	ConversationID string `json:"conversation_id"`
}

// pushSnapshot delivers the conversation's full ordered message list to
// every local subscriber
func (h *Hub) pushSnapshot(conversationID string) {
	h.mu.RLock()
	subs := make([]*Client, 0, len(h.subscribers[conversationID]))
	for client := range h.subscribers[conversationID] {
		subs = append(subs, client)
	}
	h.mu.RUnlock()

	if len(subs) == 0 {
		return
	}

	for _, client := range subs {
		h.snapshotToClient(client, conversationID)
	}
}

// snapshotToClient loads and sends one snapshot. Load failures surface as
// an error event on the socket rather than closing it.
func (h *Hub) snapshotToClient(client *Client, conversationID string) {
	messages, err := h.load(conversationID)

	var event *model.WSEvent
	if err != nil {
		log.Printf("Error loading snapshot for %s: %v", conversationID, err)
		event = &model.WSEvent{
			Type: model.WSEventError,
			Payload: model.WSErrorEvent{
				ConversationID: conversationID,
				Error:          "failed to load messages",
			},
		}
	} else {
		event = &model.WSEvent{
			Type: model.WSEventSnapshot,
			Payload: model.SnapshotEvent{
				ConversationID: conversationID,
				Messages:       messages,
			},
		}
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error marshaling snapshot: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	select {
	case client.send <- data:
	default:
		// Send buffer full, drop the connection
		h.dropSubscription(client)
		if clients, ok := h.clients[client.UserID]; ok {
			if _, ok := clients[client]; ok {
				delete(clients, client)
				close(client.send)
			}
		}
	}
}

// subscribeRedis receives change notifications and refreshes local
// subscribers
func (h *Hub) subscribeRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, redisChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	log.Println("📡 Redis Pub/Sub subscriber started")

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-ch:
			var change changeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
				log.Printf("Error unmarshaling Redis message: %v", err)
				continue
			}
			if change.ConversationID != "" {
				h.pushSnapshot(change.ConversationID)
			}
		}
	}
}
