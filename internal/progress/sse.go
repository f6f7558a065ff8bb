package progress

import (
	"fmt"
	"net/http"
	"sync"
	"time"
)

type sseClient struct {
	userID   string
	writer   http.ResponseWriter
	flusher  http.Flusher
	done     chan bool
	lastPing time.Time
}

// Hub pushes ingestion progress to connected browsers over SSE. One client
// per user; a new connection for the same user replaces the previous one.
type Hub struct {
	mu         sync.RWMutex
	clients    map[string]*sseClient
	pingTicker *time.Ticker
	stopCh     chan struct{}
}

var globalHub *Hub

func NewHub() *Hub {
	h := &Hub{
		clients: make(map[string]*sseClient),
		stopCh:  make(chan struct{}),
	}
	globalHub = h

	// Keep connections alive through proxies
	h.pingTicker = time.NewTicker(30 * time.Second)
	go h.pingClients()

	return h
}

func GetHub() *Hub {
	return globalHub
}

// HandleSSE subscribes the caller to progress events for its user_id.
func (h *Hub) HandleSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "user_id parameter required", http.StatusBadRequest)
		return
	}

	client := &sseClient{
		userID:   userID,
		writer:   w,
		flusher:  flusher,
		done:     make(chan bool),
		lastPing: time.Now(),
	}

	h.mu.Lock()
	if existing, exists := h.clients[userID]; exists {
		close(existing.done)
	}
	h.clients[userID] = client
	h.mu.Unlock()

	h.writeEvent(client, "connected", 0)

	defer func() {
		h.mu.Lock()
		if h.clients[userID] == client {
			delete(h.clients, userID)
		}
		h.mu.Unlock()
	}()

	select {
	case <-client.done:
	case <-r.Context().Done():
	case <-h.stopCh:
	}
}

// SendProgress pushes a percentage to the user's client, if connected.
// Delivery failures are swallowed: progress must never abort ingestion.
func (h *Hub) SendProgress(userID string, pct int) {
	h.mu.RLock()
	client, ok := h.clients[userID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	h.writeEvent(client, "progress", pct)
}

// SinkFor returns a Sink bound to one user's SSE connection.
func (h *Hub) SinkFor(userID string) Sink {
	return SinkFunc(func(pct int) { h.SendProgress(userID, pct) })
}

func (h *Hub) writeEvent(c *sseClient, event string, pct int) {
	defer func() {
		// A write to a dead connection can panic on some servers; drop it.
		_ = recover()
	}()
	if _, err := fmt.Fprintf(c.writer, "event: %s\ndata: {\"progress\": %d}\n\n", event, pct); err != nil {
		return
	}
	c.flusher.Flush()
}

func (h *Hub) pingClients() {
	for {
		select {
		case <-h.stopCh:
			return
		case <-h.pingTicker.C:
			h.mu.RLock()
			clients := make([]*sseClient, 0, len(h.clients))
			for _, c := range h.clients {
				clients = append(clients, c)
			}
			h.mu.RUnlock()
			for _, c := range clients {
				h.writeEvent(c, "ping", 0)
				c.lastPing = time.Now()
			}
		}
	}
}

func (h *Hub) Close() {
	close(h.stopCh)
	h.pingTicker.Stop()
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		close(c.done)
		delete(h.clients, id)
	}
}
