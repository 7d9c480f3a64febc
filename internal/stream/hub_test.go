package stream

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"NFTAuctionHouse/internal/models"
)

func waitForSubscribers(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.Subscribers() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d subscribers, have %d", n, h.Subscribers())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHubStreamsToClient(t *testing.T) {
	hub := NewHub(log.New(io.Discard, "", 0))
	mux := http.NewServeMux()
	mux.Handle("/events/ws", hub)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	c := NewClient(Endpoint(srv.URL, "0xa"))
	if err := c.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer c.Close()
	waitForSubscribers(t, hub, 1)

	_ = hub.Emit(ctx, models.Event{Type: models.EventBidPlaced, AuctionID: "0xb"})
	_ = hub.Emit(ctx, models.Event{Type: models.EventAuctionSettled, AuctionID: "0xa", Outcome: models.OutcomeSold})

	ev, err := c.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if ev.AuctionID != "0xa" || ev.Type != models.EventAuctionSettled || ev.Outcome != models.OutcomeSold {
		t.Fatalf("expected only the filtered auction's event, got %+v", ev)
	}

	c.Close()
	waitForSubscribers(t, hub, 0)
}

func TestSlowSubscriberIsDropped(t *testing.T) {
	hub := NewHub(log.New(io.Discard, "", 0))
	events, cancel := hub.Subscribe("")
	defer cancel()

	for i := 0; i < subscriberBuffer+1; i++ {
		_ = hub.Emit(context.Background(), models.Event{Type: models.EventBidPlaced, AuctionID: "0xa"})
	}
	if hub.Subscribers() != 0 {
		t.Fatal("full subscriber should be evicted")
	}
	n := 0
	for range events {
		n++
	}
	if n != subscriberBuffer {
		t.Fatalf("expected the %d buffered events before close, got %d", subscriberBuffer, n)
	}
}
