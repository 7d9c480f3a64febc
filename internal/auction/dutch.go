package auction

import (
	"context"
	"fmt"
	"time"

	"NFTAuctionHouse/internal/models"

	"github.com/shopspring/decimal"
)

// Dutch runs descending-price auctions. It is a posted-price mechanism: the bidding
// and refund operations exist on its surface but always fail.
type Dutch struct {
	core *Core
}

func NewDutch(core *Core) *Dutch {
	return &Dutch{core: core}
}

func (d *Dutch) CreateAuction(ctx context.Context, call Call, p CreateParams) (string, error) {
	if p.Kind != models.KindDutch {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedKind, p.Kind)
	}
	cfg := d.core.Config
	drop := p.DropPerHourBps
	if drop == 0 {
		drop = cfg.DefaultDropBps
	}
	if drop < cfg.MinDropBps || drop > cfg.MaxDropBps {
		return "", fmt.Errorf("%w: %d bps, allowed %d-%d", ErrInvalidDropRate, drop, cfg.MinDropBps, cfg.MaxDropBps)
	}
	if !p.ReservePrice.LessThan(p.StartPrice) {
		return "", fmt.Errorf("%w: reserve %s must be below start %s", ErrInvalidPrice, p.ReservePrice, p.StartPrice)
	}
	return d.core.create(ctx, call.Sender, p, &models.DutchConfig{DropPerHourBps: drop})
}

func (d *Dutch) BuyNow(ctx context.Context, id string, call Call) error {
	return d.buyNow(ctx, id, call.Sender, call.Value)
}

// buyNow sells the asset at the current decayed price. Overpayment is returned to the
// buyer in the same call.
func (d *Dutch) buyNow(ctx context.Context, id, buyer string, value decimal.Decimal) error {
	c := d.core
	if err := c.requireParticipant(buyer); err != nil {
		return err
	}
	unlock := c.lock(id)
	defer unlock()

	a, err := c.load(id, models.KindDutch)
	if err != nil {
		return err
	}
	if err := requireActive(a); err != nil {
		return err
	}
	now := c.Now()
	if err := requireOpen(a, now); err != nil {
		return err
	}
	if buyer == a.Seller {
		return ErrSellerCannotBid
	}
	price := d.priceAt(a, now)
	if value.LessThan(price) {
		return fmt.Errorf("%w: paid %s, price %s", ErrPaymentTooLow, value, price)
	}

	if err := c.finalizeSale(ctx, a, sale{
		buyer:     buyer,
		price:     price,
		excess:    value.Sub(price),
		directBuy: true,
	}); err != nil {
		return err
	}
	c.emit(ctx, models.Event{
		Type:      models.EventBuyNow,
		AuctionID: id,
		Kind:      models.KindDutch,
		Seller:    a.Seller,
		Account:   buyer,
		Amount:    amountPtr(price),
		At:        now,
	})
	return nil
}

// SettleAuction ends an expired auction that was never bought.
func (d *Dutch) SettleAuction(ctx context.Context, id string, call Call) error {
	c := d.core
	unlock := c.lock(id)
	defer unlock()

	a, err := c.load(id, models.KindDutch)
	if err != nil {
		return err
	}
	if err := requireActive(a); err != nil {
		return err
	}
	if c.Now().Before(a.EndTime) {
		return ErrAuctionStillActive
	}
	return c.finalizeWithoutSale(ctx, a, models.OutcomeUnsold)
}

func (d *Dutch) CancelAuction(ctx context.Context, id string, call Call, reason string) error {
	return d.cancel(ctx, id, call.Sender, reason)
}

func (d *Dutch) cancel(ctx context.Context, id, caller, reason string) error {
	c := d.core
	unlock := c.lock(id)
	defer unlock()

	a, err := c.load(id, models.KindDutch)
	if err != nil {
		return err
	}
	if caller != a.Seller {
		return ErrNotSeller
	}
	if err := requireActive(a); err != nil {
		return err
	}
	return c.finalizeCancel(ctx, a, reason)
}

func (d *Dutch) PlaceBid(context.Context, string, Call) error {
	return ErrNotSupported
}

func (d *Dutch) WithdrawBid(context.Context, string, Call) (decimal.Decimal, error) {
	return decimal.Zero, ErrNotSupported
}

func (d *Dutch) PendingRefund(string, string) (decimal.Decimal, error) {
	return decimal.Zero, ErrNotSupported
}

func (d *Dutch) Auction(id string) (*models.Auction, error) {
	return d.core.load(id, models.KindDutch)
}

// CurrentPrice is the decayed price now, or the recorded sale price once settled.
func (d *Dutch) CurrentPrice(id string) (decimal.Decimal, error) {
	a, err := d.core.load(id, models.KindDutch)
	if err != nil {
		return decimal.Zero, err
	}
	if a.Status == models.StatusSettled {
		return a.HighestBid, nil
	}
	return d.priceAt(a, d.core.Now()), nil
}

// TimeToReserve is how long until the price reaches its floor. It is zero once the floor
// is reached, when the auction is no longer active or has expired, and when the floor
// would only be reached at or after the end time, since the price freezes there.
func (d *Dutch) TimeToReserve(id string) (time.Duration, error) {
	a, err := d.core.load(id, models.KindDutch)
	if err != nil {
		return 0, err
	}
	if a.Status != models.StatusActive {
		return 0, nil
	}
	now := d.core.Now()
	if !now.Before(a.EndTime) {
		return 0, nil
	}
	at, ok := ReserveReachedAt(a.StartPrice, a.ReservePrice, d.dropRate(a.ID), a.StartTime)
	if !ok || !at.Before(a.EndTime) {
		return 0, nil
	}
	if !at.After(now) {
		return 0, nil
	}
	return at.Sub(now), nil
}

func (d *Dutch) DropRate(id string) (int64, error) {
	if _, err := d.core.load(id, models.KindDutch); err != nil {
		return 0, err
	}
	return d.dropRate(id), nil
}

func (d *Dutch) dropRate(id string) int64 {
	if cfg, ok := d.core.Store.DutchConfig(id); ok {
		return cfg.DropPerHourBps
	}
	return d.core.Config.DefaultDropBps
}

func (d *Dutch) priceAt(a *models.Auction, at time.Time) decimal.Decimal {
	return DecayedPrice(a.StartPrice, a.ReservePrice, d.dropRate(a.ID), a.StartTime, a.EndTime, at)
}
