package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const redisPubSubChannel = "lokalo:notifications"

var (
	wsConnectedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_connected_clients",
			Help: "Number of connected WebSocket clients",
		},
	)

	realtimeEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtime_events_total",
			Help: "Realtime events by delivery outcome",
		},
		[]string{"outcome"},
	)

	notificationsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_published_total",
			Help: "Events published to the hub, including to offline users",
		},
		[]string{"type"},
	)
)

// EventTypeNotification is the only event type pushed today. The envelope
// keeps a type field so the frontend can switch on future event kinds.
const EventTypeNotification = "notification"

// Event is the envelope written to WebSocket clients
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Hub manages WebSocket clients and routes events to the right user.
// With Redis attached, events published on one instance reach clients
// connected to any other instance.
type Hub struct {
	// Registered clients grouped by user ID
	clients map[uint64]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *targetedEvent

	mu          sync.RWMutex
	redisClient *redis.Client
	logger      zerolog.Logger
	ctx         context.Context
	cancel      context.CancelFunc
}

type targetedEvent struct {
	UserID uint64
	Event  *Event
}

// NewHub creates a new Hub. redisClient may be nil for single-instance
// deployments and tests.
func NewHub(redisClient *redis.Client, logger zerolog.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:     make(map[uint64]map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcast:   make(chan *targetedEvent, 256),
		redisClient: redisClient,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	if h.redisClient != nil {
		go h.subscribeRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.userID] == nil {
				h.clients[client.userID] = make(map[*Client]bool)
			}
			h.clients[client.userID][client] = true
			h.mu.Unlock()
			wsConnectedClients.Inc()

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.userID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.send)
					if len(clients) == 0 {
						delete(h.clients, client.userID)
					}
					wsConnectedClients.Dec()
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.Lock()
			if clients, ok := h.clients[msg.UserID]; ok {
				data, err := json.Marshal(msg.Event)
				if err == nil {
					for client := range clients {
						select {
						case client.send <- data:
							realtimeEventsTotal.WithLabelValues("delivered").Inc()
						default:
							// Slow consumer, drop the connection
							close(client.send)
							delete(clients, client)
							wsConnectedClients.Dec()
							realtimeEventsTotal.WithLabelValues("dropped").Inc()
						}
					}
				}
			}
			h.mu.Unlock()

		case <-h.ctx.Done():
			return
		}
	}
}

// SendToUser delivers an event to every connection the user has, on this
// instance directly and on other instances through Redis. Delivery is
// best effort; an offline user simply receives nothing.
func (h *Hub) SendToUser(userID uint64, event *Event) {
	notificationsPublished.WithLabelValues(event.Type).Inc()
	h.broadcast <- &targetedEvent{UserID: userID, Event: event}

	if h.redisClient != nil {
		msg := &redisMessage{UserID: userID, Event: event}
		data, err := json.Marshal(msg)
		if err != nil {
			return
		}
		if err := h.redisClient.Publish(h.ctx, redisPubSubChannel, data).Err(); err != nil {
			h.logger.Warn().Err(err).Uint64("user_id", userID).Msg("realtime publish failed")
		}
	}
}

// ConnectionCount returns the number of live connections for a user
func (h *Hub) ConnectionCount(userID uint64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

type redisMessage struct {
	UserID uint64 `json:"user_id"`
	Event  *Event `json:"event"`
}

// subscribeRedis relays events published by other instances to local clients
func (h *Hub) subscribeRedis() {
	pubsub := h.redisClient.Subscribe(h.ctx, redisPubSubChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var rm redisMessage
			if err := json.Unmarshal([]byte(msg.Payload), &rm); err == nil {
				// Local broadcast only, never re-publish
				h.broadcast <- &targetedEvent{UserID: rm.UserID, Event: rm.Event}
			}
		case <-h.ctx.Done():
			return
		}
	}
}

// Stop gracefully shuts down the hub
func (h *Hub) Stop() {
	h.cancel()
}
