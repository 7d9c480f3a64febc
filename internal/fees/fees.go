package fees

import (
	"context"
	"errors"
	"fmt"

	"NFTAuctionHouse/internal/models"

	"github.com/shopspring/decimal"
)

const (
	bpsDenominator  = 10000
	amountPrecision = 18
)

var ErrInvalidSchedule = errors.New("fee schedule exceeds 100%")

type Royalty struct {
	Receiver string `json:"receiver" yaml:"receiver"`
	Bps      int64  `json:"bps" yaml:"bps"`
}

// Service splits sale proceeds into a marketplace fee, a per-collection royalty and the
// seller's net. Truncation dust stays with the seller so the shares always sum to the sale.
type Service struct {
	MarketplaceBps int64
	Treasury       string
	Royalties      map[string]Royalty
}

type Schedule struct {
	MarketplaceBps  int64  `json:"marketplace_bps"`
	RoyaltyBps      int64  `json:"royalty_bps"`
	RoyaltyReceiver string `json:"royalty_receiver,omitempty"`
	Source          string `json:"source"`
}

func (s Service) CurrentSchedule(ctx context.Context, collection string) (Schedule, error) {
	sched := Schedule{MarketplaceBps: s.MarketplaceBps, Source: "default"}
	if r, ok := s.Royalties[collection]; ok {
		sched.RoyaltyBps = r.Bps
		sched.RoyaltyReceiver = r.Receiver
		sched.Source = "collection"
	}
	if sched.MarketplaceBps < 0 || sched.RoyaltyBps < 0 || sched.MarketplaceBps+sched.RoyaltyBps > bpsDenominator {
		return Schedule{}, fmt.Errorf("%w: marketplace %d bps, royalty %d bps", ErrInvalidSchedule, sched.MarketplaceBps, sched.RoyaltyBps)
	}
	return sched, nil
}

func (s Service) Distribute(ctx context.Context, collection, seller string, amount decimal.Decimal) (models.Distribution, error) {
	sched, err := s.CurrentSchedule(ctx, collection)
	if err != nil {
		return models.Distribution{}, err
	}
	fee := share(amount, sched.MarketplaceBps)
	royalty := share(amount, sched.RoyaltyBps)
	if sched.RoyaltyReceiver == "" || sched.RoyaltyReceiver == seller {
		royalty = decimal.Zero
	}
	return models.Distribution{
		SellerNet:       amount.Sub(fee).Sub(royalty),
		MarketplaceFee:  fee,
		Treasury:        s.Treasury,
		Royalty:         royalty,
		RoyaltyReceiver: sched.RoyaltyReceiver,
	}, nil
}

func share(amount decimal.Decimal, bps int64) decimal.Decimal {
	q, _ := amount.Mul(decimal.NewFromInt(bps)).QuoRem(decimal.NewFromInt(bpsDenominator), amountPrecision)
	return q
}
