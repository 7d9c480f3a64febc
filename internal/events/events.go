package events

import (
	"context"
	"errors"
	"log"

	"NFTAuctionHouse/internal/models"
)

// Emitter receives auction events after the operation that produced them has committed.
type Emitter interface {
	Emit(ctx context.Context, ev models.Event) error
}

type Discard struct{}

func (Discard) Emit(context.Context, models.Event) error { return nil }

// Fanout delivers each event to every sink. A failing sink does not stop the others.
type Fanout []Emitter

func (f Fanout) Emit(ctx context.Context, ev models.Event) error {
	var errs []error
	for _, sink := range f {
		if sink == nil {
			continue
		}
		if err := sink.Emit(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type Logger struct {
	Logger *log.Logger
}

func (l Logger) Emit(_ context.Context, ev models.Event) error {
	logger := l.Logger
	if logger == nil {
		logger = log.Default()
	}
	switch {
	case ev.Amount != nil:
		logger.Printf("event %s auction=%s account=%s amount=%s", ev.Type, ev.AuctionID, ev.Account, ev.Amount.String())
	case ev.Outcome != "":
		logger.Printf("event %s auction=%s outcome=%s", ev.Type, ev.AuctionID, ev.Outcome)
	default:
		logger.Printf("event %s auction=%s", ev.Type, ev.AuctionID)
	}
	return nil
}
