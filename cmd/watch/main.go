package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"NFTAuctionHouse/internal/models"
	"NFTAuctionHouse/internal/stream"
)

func main() {
	api := flag.String("api", "http://localhost:8080", "base URL of the auction API")
	auctionID := flag.String("auction", "", "only show events of this auction")
	retry := flag.Duration("retry", 5*time.Second, "delay before reconnecting")
	flag.Parse()

	endpoint := stream.Endpoint(*api, *auctionID)
	if endpoint == "" {
		log.Fatalf("unsupported api url %q", *api)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	for {
		if err := tail(ctx, endpoint); err != nil && ctx.Err() == nil {
			log.Printf("stream error: %v; reconnecting in %s", err, *retry)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(*retry):
		}
	}
}

// tail prints events until the connection drops or ctx is cancelled.
func tail(ctx context.Context, endpoint string) error {
	c := stream.NewClient(endpoint)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	defer c.Close()
	log.Printf("watching %s", endpoint)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			c.Close()
		case <-done:
		}
	}()

	for {
		ev, err := c.Read(ctx)
		if err != nil {
			return err
		}
		logEvent(ev)
	}
}

func logEvent(ev models.Event) {
	switch {
	case ev.Outcome != "":
		log.Printf("%s auction=%s outcome=%s", ev.Type, ev.AuctionID, ev.Outcome)
	case ev.Amount != nil:
		log.Printf("%s auction=%s account=%s amount=%s", ev.Type, ev.AuctionID, ev.Account, ev.Amount)
	case ev.NewEndTime != nil:
		log.Printf("%s auction=%s end=%s", ev.Type, ev.AuctionID, ev.NewEndTime.Format(time.RFC3339))
	default:
		log.Printf("%s auction=%s", ev.Type, ev.AuctionID)
	}
}
