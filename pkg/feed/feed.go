// Package feed streams recorded call turns to websocket subscribers, e.g. a
// live operations dashboard.
package feed

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// TurnEvent is one transcript line as published to subscribers.
type TurnEvent struct {
	CallSID   string    `json:"call_sid"`
	Speaker   string    `json:"speaker"`
	Text      string    `json:"text"`
	Language  string    `json:"language"`
	Timestamp time.Time `json:"timestamp"`
}

type subscriber struct {
	conn    *websocket.Conn
	sendCh  chan []byte
	callSID string
	closed  bool
	mu      sync.Mutex
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.sendCh)
	}
}

// Hub fans turn events out to connected websocket clients. Slow clients are
// skipped rather than blocking the webhook path.
type Hub struct {
	upgrader websocket.Upgrader

	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		subs: make(map[*subscriber]struct{}),
	}
}

// Publish sends the event to every subscriber, honoring call_sid filters.
func (h *Hub) Publish(evt TurnEvent) {
	b, err := json.Marshal(evt)
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		if sub.callSID != "" && sub.callSID != evt.CallSID {
			continue
		}
		select {
		case sub.sendCh <- b:
		default:
		}
	}
}

// SubscriberCount reports connected clients.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// ServeHTTP upgrades the request and streams turn events until the client
// disconnects. An optional call_sid query parameter filters to one call.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	sub := &subscriber{
		conn:    conn,
		sendCh:  make(chan []byte, 64),
		callSID: r.URL.Query().Get("call_sid"),
	}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	go func() {
		for msg := range sub.sendCh {
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				slog.Debug("feed_write_failed", "error", err.Error())
				break
			}
		}
		_ = conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.mu.Lock()
	delete(h.subs, sub)
	h.mu.Unlock()
	sub.close()
}
