package auction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"NFTAuctionHouse/internal/models"

	"github.com/shopspring/decimal"
)

// English runs ascending-bid auctions.
type English struct {
	core *Core
}

func NewEnglish(core *Core) *English {
	return &English{core: core}
}

func (e *English) CreateAuction(ctx context.Context, call Call, p CreateParams) (string, error) {
	if p.Kind != models.KindEnglish {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedKind, p.Kind)
	}
	return e.core.create(ctx, call.Sender, p, nil)
}

func (e *English) PlaceBid(ctx context.Context, id string, call Call) error {
	return e.placeBid(ctx, id, call.Sender, call.Value)
}

// placeBid accepts value from bidder. Any refund balance the bidder still holds in this
// auction, including their own current leading bid, is zeroed and applied toward the
// new bid, so a bidder is never owed a refund while leading.
func (e *English) placeBid(ctx context.Context, id, bidder string, value decimal.Decimal) error {
	c := e.core
	if err := c.requireParticipant(bidder); err != nil {
		return err
	}
	unlock := c.lock(id)
	defer unlock()

	a, err := c.load(id, models.KindEnglish)
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
	if bidder == a.Seller {
		return ErrSellerCannotBid
	}
	if !value.IsPositive() {
		return fmt.Errorf("%w: no payment attached", ErrBidTooLow)
	}

	carried := c.Ledger.Balance(id, bidder)
	if a.HighestBidder == bidder {
		carried = carried.Add(a.HighestBid)
	}
	amount := value.Add(carried)
	minimum := e.minimumBid(a)
	if amount.LessThan(minimum) {
		return fmt.Errorf("%w: bid %s, minimum %s", ErrBidTooLow, amount, minimum)
	}

	prevBidder, prevBid := a.HighestBidder, a.HighestBid
	oldEnd := a.EndTime
	a.HighestBidder = bidder
	a.HighestBid = amount
	a.BidCount++
	a.UpdatedAt = now
	extended := false
	if a.EndTime.Sub(now) <= c.Config.ExtensionThreshold {
		if next := now.Add(c.Config.ExtensionWindow); next.After(a.EndTime) {
			a.EndTime = next
			extended = true
		}
	}

	if prevBidder != "" {
		c.Store.MarkRefunded(id, prevBidder)
	}
	if err := c.Store.AppendBid(id, models.Bid{Bidder: bidder, Amount: amount, Timestamp: now}); err != nil {
		return err
	}
	if err := c.Store.Put(a); err != nil {
		return err
	}
	outbid := prevBidder != "" && prevBidder != bidder
	if outbid {
		c.Ledger.Credit(id, prevBidder, prevBid)
	}
	c.Ledger.Take(id, bidder)

	if outbid {
		c.emitCredited(ctx, id, prevBidder, now)
	}
	c.emit(ctx, models.Event{
		Type:      models.EventBidPlaced,
		AuctionID: id,
		Kind:      a.Kind,
		Account:   bidder,
		Amount:    amountPtr(amount),
		Winning:   true,
		At:        now,
	})
	if extended {
		c.emit(ctx, models.Event{
			Type:       models.EventAuctionExtended,
			AuctionID:  id,
			Kind:       a.Kind,
			OldEndTime: timePtr(oldEnd),
			NewEndTime: timePtr(a.EndTime),
			Reason:     "late bid",
			At:         now,
		})
	}
	return nil
}

// emitCredited reports the participant's withdrawable balance after a credit.
func (c *Core) emitCredited(ctx context.Context, id, participant string, at time.Time) {
	c.emit(ctx, models.Event{
		Type:      models.EventRefundCredited,
		AuctionID: id,
		Kind:      models.KindEnglish,
		Account:   participant,
		Amount:    amountPtr(c.Ledger.Balance(id, participant)),
		At:        at,
	})
}

func (e *English) WithdrawBid(ctx context.Context, id string, call Call) (decimal.Decimal, error) {
	return e.withdraw(ctx, id, call.Sender)
}

// withdraw pays out participant's refund balance. The ledger is debited before the
// transfer and restored if the transfer fails.
func (e *English) withdraw(ctx context.Context, id, participant string) (decimal.Decimal, error) {
	c := e.core
	if participant == "" {
		return decimal.Zero, ErrMissingSender
	}
	unlock := c.lock(id)
	defer unlock()

	if _, err := c.load(id, models.KindEnglish); err != nil {
		return decimal.Zero, err
	}
	amount, err := c.Ledger.Withdraw(ctx, id, participant, func(ctx context.Context, amt decimal.Decimal) error {
		return c.Funds.Send(ctx, c.Config.Escrow, participant, amt)
	})
	if err != nil {
		if errors.Is(err, ErrNothingToWithdraw) {
			return decimal.Zero, err
		}
		return decimal.Zero, fmt.Errorf("%w: %w", ErrRefundTransferFailed, err)
	}

	c.emit(ctx, models.Event{
		Type:      models.EventBidRefunded,
		AuctionID: id,
		Kind:      models.KindEnglish,
		Account:   participant,
		Amount:    amountPtr(amount),
	})
	return amount, nil
}

// SettleAuction finalizes an expired auction: no bids ends it, an unmet reserve ends it
// and moves the leader's stake to the refund ledger, otherwise the asset is sold to the
// leader.
func (e *English) SettleAuction(ctx context.Context, id string, call Call) error {
	c := e.core
	unlock := c.lock(id)
	defer unlock()

	a, err := c.load(id, models.KindEnglish)
	if err != nil {
		return err
	}
	if err := requireActive(a); err != nil {
		return err
	}
	if c.Now().Before(a.EndTime) {
		return ErrAuctionStillActive
	}

	switch {
	case a.BidCount == 0:
		return c.finalizeWithoutSale(ctx, a, models.OutcomeNoBids)
	case a.ReservePrice.IsPositive() && a.HighestBid.LessThan(a.ReservePrice):
		leader, stake := a.HighestBidder, a.HighestBid
		if err := c.finalizeWithoutSale(ctx, a, models.OutcomeReserveNotMet); err != nil {
			return err
		}
		c.Store.MarkRefunded(id, leader)
		c.Ledger.Credit(id, leader, c.Ledger.Balance(id, leader).Add(stake))
		c.emitCredited(ctx, id, leader, c.Now())
		return nil
	default:
		return c.finalizeSale(ctx, a, sale{buyer: a.HighestBidder, price: a.HighestBid})
	}
}

// CancelAuction is allowed for the seller only while the auction has no bids.
func (e *English) CancelAuction(ctx context.Context, id string, call Call, reason string) error {
	return e.cancel(ctx, id, call.Sender, reason)
}

func (e *English) cancel(ctx context.Context, id, caller, reason string) error {
	c := e.core
	unlock := c.lock(id)
	defer unlock()

	a, err := c.load(id, models.KindEnglish)
	if err != nil {
		return err
	}
	if caller != a.Seller {
		return ErrNotSeller
	}
	if err := requireActive(a); err != nil {
		return err
	}
	if a.BidCount > 0 {
		return ErrAuctionHasBids
	}
	return c.finalizeCancel(ctx, a, reason)
}

func (e *English) Auction(id string) (*models.Auction, error) {
	return e.core.load(id, models.KindEnglish)
}

// CurrentPrice is the highest bid, or the start price before any bid.
func (e *English) CurrentPrice(id string) (decimal.Decimal, error) {
	a, err := e.core.load(id, models.KindEnglish)
	if err != nil {
		return decimal.Zero, err
	}
	if a.BidCount == 0 {
		return a.StartPrice, nil
	}
	return a.HighestBid, nil
}

func (e *English) MinimumBid(id string) (decimal.Decimal, error) {
	a, err := e.core.load(id, models.KindEnglish)
	if err != nil {
		return decimal.Zero, err
	}
	return e.minimumBid(a), nil
}

func (e *English) minimumBid(a *models.Auction) decimal.Decimal {
	if a.BidCount == 0 || a.HighestBidder == "" {
		return a.StartPrice
	}
	return a.HighestBid.Add(bps(a.HighestBid, e.core.Config.MinBidIncrementBps))
}

func (e *English) PendingRefund(id, participant string) (decimal.Decimal, error) {
	if _, err := e.core.load(id, models.KindEnglish); err != nil {
		return decimal.Zero, err
	}
	return e.core.Ledger.Balance(id, participant), nil
}
