package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	sendBufferSize = 16
)

// client is one websocket connection subscribed to a set of channels
type client struct {
	id       string
	userID   uint
	channels []string
	send     chan []byte
}

// Hub fans redis pub/sub events out to the websocket clients subscribed to
// each channel. A client subscribes to channels once at connect time: a
// video page watches that video's counter channel, the notification bell
// watches the user's private channel.
type Hub struct {
	mu       sync.RWMutex
	channels map[string]map[*client]struct{}

	rdb    *redis.Client
	logger *zap.Logger
}

// NewHub creates a new Hub
func NewHub(rdb *redis.Client, logger *zap.Logger) *Hub {
	return &Hub{
		channels: make(map[string]map[*client]struct{}),
		rdb:      rdb,
		logger:   logger,
	}
}

// Run bridges the redis channels into local websocket clients until the
// context is cancelled. Within one channel, delivery preserves publish order.
func (h *Hub) Run(ctx context.Context) {
	sub := h.rdb.PSubscribe(ctx, "reactions:*", "notifications:user:*")
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.route(msg.Channel, []byte(msg.Payload))
		}
	}
}

// route delivers a payload to every local subscriber of a channel. Clients
// whose send buffer is full are skipped rather than blocking the fan-out.
func (h *Hub) route(channel string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.channels[channel] {
		select {
		case c.send <- payload:
		default:
			h.logger.Warn("dropping realtime event for slow client",
				zap.String("client_id", c.id),
				zap.String("channel", channel))
		}
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range c.channels {
		if h.channels[ch] == nil {
			h.channels[ch] = make(map[*client]struct{})
		}
		h.channels[ch][c] = struct{}{}
	}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range c.channels {
		delete(h.channels[ch], c)
		if len(h.channels[ch]) == 0 {
			delete(h.channels, ch)
		}
	}
}

// Serve pumps events to one websocket connection until it closes. It owns
// the connection lifecycle: registration, ping/pong liveness, teardown.
func (h *Hub) Serve(conn *websocket.Conn, userID uint, channels []string) {
	c := &client{
		id:       uuid.NewString(),
		userID:   userID,
		channels: channels,
		send:     make(chan []byte, sendBufferSize),
	}
	h.register(c)
	h.logger.Info("websocket client connected",
		zap.String("client_id", c.id),
		zap.Uint("user_id", userID),
		zap.Strings("channels", channels))

	done := make(chan struct{})

	// writer: forwards hub events and keeps the connection alive with pings
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case payload, ok := <-c.send:
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if !ok {
					conn.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
					return
				}
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	// reader: consumes control frames and detects dead peers
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	close(done)
	h.unregister(c)
	conn.Close()
	h.logger.Info("websocket client disconnected", zap.String("client_id", c.id))
}
