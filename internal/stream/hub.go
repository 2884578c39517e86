package stream

import (
	"context"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Hub fans inbox events out to connected clients, keyed by the recipient's
// username. With redis configured, events are also published so every
// instance sees them.
type Hub struct {
	redis   *redis.Client
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
}

type Client struct {
	Username string
	Send     chan []byte
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		redis:   redisClient,
		clients: map[string]map[*Client]struct{}{},
	}

	if redisClient != nil {
		go h.subscribeRedis()
	}
	return h
}

func (h *Hub) Register(username string) *Client {
	client := &Client{
		Username: username,
		Send:     make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[username] == nil {
		h.clients[username] = map[*Client]struct{}{}
	}
	h.clients[username][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if userClients, ok := h.clients[client.Username]; ok {
		delete(userClients, client)
		if len(userClients) == 0 {
			delete(h.clients, client.Username)
		}
	}
	close(client.Send)
}

// Broadcast routes through redis when it is configured, so clients attached
// to other instances receive the event too; local delivery then happens via
// the subscription. Without redis, delivery is local only.
func (h *Hub) Broadcast(username string, payload []byte) {
	if h.redis != nil {
		err := h.redis.Publish(context.Background(), redisChannel(username), payload).Err()
		if err == nil {
			return
		}
		log.Printf("redis publish error: %v", err)
	}
	h.deliver(username, payload)
}

func (h *Hub) deliver(username string, payload []byte) {
	h.mu.RLock()
	clients := h.clients[username]
	h.mu.RUnlock()

	for client := range clients {
		select {
		case client.Send <- payload:
		default:
		}
	}
}

func (h *Hub) subscribeRedis() {
	ctx := context.Background()
	pubsub := h.redis.PSubscribe(ctx, "inbox:*:events")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		h.deliver(usernameFromChannel(msg.Channel), []byte(msg.Payload))
	}
}

func redisChannel(username string) string {
	return "inbox:" + username + ":events"
}

func usernameFromChannel(ch string) string {
	// inbox:{username}:events
	const prefix = "inbox:"
	const suffix = ":events"
	if len(ch) <= len(prefix)+len(suffix) {
		return ""
	}
	return ch[len(prefix) : len(ch)-len(suffix)]
}
