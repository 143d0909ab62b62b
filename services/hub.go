package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

// Refresh scopes broadcast to connected clients.
const (
	ScopeGames  = "games"
	ScopeConfig = "config"
)

// refreshChannel is the Redis pub/sub channel carrying refresh scopes, so
// clients connected to any instance observe admin mutations.
const refreshChannel = "arcade:refresh"

// Hub pushes refresh events to browsers holding an open websocket. Clients
// never send anything meaningful; they just listen for "something changed,
// refetch" signals after game or config mutations.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	redis      *redis.Client
}

type Client struct {
	hub    *Hub
	socket *websocket.Conn
	send   chan []byte
}

type RefreshMessage struct {
	Type  string `json:"type"`
	Scope string `json:"scope"`
}

// NewHub builds the hub. rdb may be nil; without Redis, refresh events only
// reach clients connected to this instance.
func NewHub(rdb *redis.Client) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		redis:      rdb,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			slog.Debug("refresh client registered", "total", len(h.clients))

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mutex.Unlock()

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Subscribe relays refresh events published by any instance into the local
// broadcast loop. Blocks until ctx is cancelled; run it in a goroutine.
func (h *Hub) Subscribe(ctx context.Context) {
	if h.redis == nil {
		return
	}
	sub := h.redis.Subscribe(ctx, refreshChannel)
	defer sub.Close()
	h.relay(ctx, sub.Channel())
}

// relay forwards pub/sub payloads until the channel closes or ctx is
// cancelled.
func (h *Hub) relay(ctx context.Context, ch <-chan *redis.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.broadcastScope(msg.Payload)
		}
	}
}

// Notify publishes a refresh scope. With Redis the event travels through
// pub/sub and comes back via Subscribe; without it, clients of this
// instance are notified directly.
func (h *Hub) Notify(scope string) {
	if h.redis != nil {
		if err := h.redis.Publish(context.Background(), refreshChannel, scope).Err(); err == nil {
			return
		} else {
			slog.Warn("refresh publish failed, broadcasting locally", "scope", scope, "error", err)
		}
	}
	h.broadcastScope(scope)
}

func (h *Hub) broadcastScope(scope string) {
	data, err := json.Marshal(RefreshMessage{Type: "refresh", Scope: scope})
	if err != nil {
		slog.Error("marshal refresh message", "error", err)
		return
	}
	h.broadcast <- data
}

// RegisterClient adopts an upgraded websocket connection and starts its
// read/write pumps.
func (h *Hub) RegisterClient(conn *websocket.Conn) {
	client := &Client{hub: h, socket: conn, send: make(chan []byte, 8)}
	h.register <- client
	go client.writePump()
	go client.readPump()
}

// readPump discards inbound frames; its only job is detecting disconnects.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.socket.Close()
	}()
	c.socket.SetReadLimit(512)
	for {
		if _, _, err := c.socket.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	defer c.socket.Close()
	for message := range c.send {
		if err := c.socket.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	// send channel closed by the hub.
	c.socket.WriteMessage(websocket.CloseMessage, []byte{})
}
