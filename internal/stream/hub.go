// Package stream pushes committed auction events to websocket subscribers.
package stream

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"NFTAuctionHouse/internal/models"

	"github.com/gorilla/websocket"
)

const (
	subscriberBuffer = 64
	pingInterval     = 30 * time.Second
	readTimeout      = 60 * time.Second
	writeTimeout     = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type subscriber struct {
	auctionID string // empty receives every auction
	events    chan models.Event
}

// Hub fans events out to connected subscribers. A subscriber whose buffer is full is
// dropped instead of slowing the auction that produced the event.
type Hub struct {
	Logger *log.Logger

	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{Logger: logger, subs: make(map[*subscriber]struct{})}
}

func (h *Hub) Emit(_ context.Context, ev models.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs {
		if s.auctionID != "" && s.auctionID != ev.AuctionID {
			continue
		}
		select {
		case s.events <- ev:
		default:
			h.Logger.Printf("stream subscriber too slow, dropping it")
			delete(h.subs, s)
			close(s.events)
		}
	}
	return nil
}

// Subscribe registers a subscriber and returns its channel and a cancel func.
func (h *Hub) Subscribe(auctionID string) (<-chan models.Event, func()) {
	s := &subscriber{auctionID: auctionID, events: make(chan models.Event, subscriberBuffer)}
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
	return s.events, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[s]; ok {
			delete(h.subs, s)
			close(s.events)
		}
	}
}

func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// ServeHTTP upgrades the request and streams events as JSON text frames.
// The optional "auction" query parameter limits the stream to one auction.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logger.Printf("ws upgrade: %v", err)
		return
	}
	defer conn.Close()

	events, cancel := h.Subscribe(r.URL.Query().Get("auction"))
	defer cancel()

	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "subscriber too slow"),
					time.Now().Add(writeTimeout))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}
