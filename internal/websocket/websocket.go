package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vaquejada/senhas/internal/logger"
	"github.com/vaquejada/senhas/internal/models"
	"github.com/vaquejada/senhas/internal/services"
)

// Message types pushed to clients
const (
	TypeSlotsUpdated = "slots_updated"
	TypeVoteSummary  = "vote_summary"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	writeWait  = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// SummarySource provides the snapshot sent to a client when it subscribes
type SummarySource interface {
	Summary(ctx context.Context, eventID int) (*services.VoteSummary, error)
}

// Hub fans out slot and vote changes to subscribed clients. A client watches one
// event, or all events when it subscribes without one.
type Hub struct {
	log        logger.Logger
	clients    map[*Client]bool
	broadcast  chan envelope
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	summaries  SummarySource
}

type envelope struct {
	eventID int
	msg     models.WSMessage
}

// Client is a middleman between the websocket connection and the hub
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan models.WSMessage
	eventID int
}

// SlotsUpdatedPayload announces that numbers in a category changed status
type SlotsUpdatedPayload struct {
	EventID    int   `json:"event_id"`
	CategoryID int   `json:"category_id"`
	Numbers    []int `json:"numbers"`
}

var _ services.Broadcaster = (*Hub)(nil)

// New creates a new Hub. summaries may be nil, in which case no snapshot is sent on subscribe.
func New(log logger.Logger, summaries SummarySource) *Hub {
	return &Hub{
		log:        log,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan envelope),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		summaries:  summaries,
	}
}

// Start begins the hub's main loop in a goroutine
func (h *Hub) Start() {
	go h.run()
}

func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug("Client connected", "event_id", client.eventID, "total_clients", total)

			if client.eventID > 0 && h.summaries != nil {
				go h.sendSnapshot(client)
			}

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug("Client disconnected", "total_clients", total)

		case env := <-h.broadcast:
			h.mutex.RLock()
			for client := range h.clients {
				if client.eventID != 0 && client.eventID != env.eventID {
					continue
				}
				select {
				case client.send <- env.msg:
				default:
					go func(c *Client) {
						h.unregister <- c
					}(client)
				}
			}
			h.mutex.RUnlock()
		}
	}
}

func (h *Hub) sendSnapshot(c *Client) {
	summary, err := h.summaries.Summary(context.Background(), c.eventID)
	if err != nil {
		h.log.Warn("Failed to load vote summary for new client", "event_id", c.eventID, "error", err)
		return
	}
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	if !h.clients[c] {
		return
	}
	select {
	case c.send <- models.WSMessage{Type: TypeVoteSummary, Payload: summary}:
	default:
	}
}

// BroadcastMessage sends a message to every client watching eventID
func (h *Hub) BroadcastMessage(eventID int, msgType string, payload interface{}) {
	h.broadcast <- envelope{eventID: eventID, msg: models.WSMessage{Type: msgType, Payload: payload}}
}

// BroadcastSlotsUpdated implements services.Broadcaster
func (h *Hub) BroadcastSlotsUpdated(eventID, categoryID int, numbers []int) {
	h.BroadcastMessage(eventID, TypeSlotsUpdated, SlotsUpdatedPayload{
		EventID:    eventID,
		CategoryID: categoryID,
		Numbers:    numbers,
	})
}

// BroadcastVoteSummary implements services.Broadcaster
func (h *Hub) BroadcastVoteSummary(eventID int, summary *services.VoteSummary) {
	h.BroadcastMessage(eventID, TypeVoteSummary, summary)
}

// readPump drains the connection so pongs and close frames are processed
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("WebSocket error", "error", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			b, err := json.Marshal(message)
			if err != nil {
				c.hub.log.Error("Failed to encode websocket message", "type", message.Type, "error", err)
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWs upgrades the request and subscribes the client. ?event=ID narrows the feed to one event.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	eventID := 0
	if v := r.URL.Query().Get("event"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id <= 0 {
			http.Error(w, "invalid event parameter", http.StatusBadRequest)
			return
		}
		eventID = id
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("WebSocket upgrade error", "error", err)
		return
	}

	client := &Client{
		hub:     h,
		conn:    conn,
		send:    make(chan models.WSMessage, 256),
		eventID: eventID,
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}
