// Package keeper settles auctions that have passed their end time. The engines never act
// on their own; the keeper is an ordinary external caller of Settle.
package keeper

import (
	"context"
	"errors"
	"log"
	"time"

	"NFTAuctionHouse/internal/auction"
)

type Keeper struct {
	House    *auction.House
	Sender   string
	Interval time.Duration
	Logger   *log.Logger
}

func (k *Keeper) Run(ctx context.Context) {
	interval := k.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if n, err := k.SweepOnce(ctx); err != nil {
			k.logger().Printf("keeper sweep error: %v", err)
		} else if n > 0 {
			k.logger().Printf("keeper settled %d auctions", n)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// SweepOnce settles every expired active auction and returns how many it finalized.
// A failing auction is logged and retried on the next sweep.
func (k *Keeper) SweepOnce(ctx context.Context) (int, error) {
	settled := 0
	var errs []error
	for _, id := range k.House.Expired() {
		if ctx.Err() != nil {
			return settled, ctx.Err()
		}
		err := k.House.Settle(ctx, id, auction.Call{Sender: k.Sender})
		switch {
		case err == nil:
			settled++
		case errors.Is(err, auction.ErrAuctionNotActive), errors.Is(err, auction.ErrAuctionStillActive):
			// settled or extended by someone else since the listing
		default:
			k.logger().Printf("settle auction=%s failed: %v", id, err)
			errs = append(errs, err)
		}
	}
	return settled, errors.Join(errs...)
}

func (k *Keeper) logger() *log.Logger {
	if k.Logger != nil {
		return k.Logger
	}
	return log.Default()
}
