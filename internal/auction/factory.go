package auction

import (
	"context"

	"github.com/shopspring/decimal"
)

// The *For variants let the configured factory act for an end user. Funds, ownership
// checks and refunds are attributed to user; the factory is trusted to have
// authenticated it.

func (e *English) PlaceBidFor(ctx context.Context, id string, call Call, user string) error {
	if err := e.core.requireFactory(call.Sender); err != nil {
		return err
	}
	return e.placeBid(ctx, id, user, call.Value)
}

func (e *English) WithdrawBidFor(ctx context.Context, id string, call Call, user string) (decimal.Decimal, error) {
	if err := e.core.requireFactory(call.Sender); err != nil {
		return decimal.Zero, err
	}
	return e.withdraw(ctx, id, user)
}

func (e *English) CancelAuctionFor(ctx context.Context, id string, call Call, user, reason string) error {
	if err := e.core.requireFactory(call.Sender); err != nil {
		return err
	}
	return e.cancel(ctx, id, user, reason)
}

func (d *Dutch) BuyNowFor(ctx context.Context, id string, call Call, user string) error {
	if err := d.core.requireFactory(call.Sender); err != nil {
		return err
	}
	return d.buyNow(ctx, id, user, call.Value)
}

func (d *Dutch) CancelAuctionFor(ctx context.Context, id string, call Call, user, reason string) error {
	if err := d.core.requireFactory(call.Sender); err != nil {
		return err
	}
	return d.cancel(ctx, id, user, reason)
}

func (d *Dutch) PlaceBidFor(context.Context, string, Call, string) error {
	return ErrNotSupported
}

func (d *Dutch) WithdrawBidFor(context.Context, string, Call, string) (decimal.Decimal, error) {
	return decimal.Zero, ErrNotSupported
}
