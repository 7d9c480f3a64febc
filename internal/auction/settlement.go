package auction

import (
	"context"
	"fmt"

	"NFTAuctionHouse/internal/models"

	"github.com/shopspring/decimal"
)

// step is one externally visible side effect of finalization and how to reverse it.
type step struct {
	name string
	do   func(ctx context.Context) error
	undo func(ctx context.Context) error
}

// runSteps executes steps in order. On failure the completed steps are undone in
// reverse order and the failing step's error is returned.
func (c *Core) runSteps(ctx context.Context, auctionID string, steps []step) error {
	for i, s := range steps {
		if err := s.do(ctx); err != nil {
			for j := i - 1; j >= 0; j-- {
				if steps[j].undo == nil {
					continue
				}
				if uerr := steps[j].undo(ctx); uerr != nil {
					c.Logger.Printf("undo %s auction=%s failed: %v", steps[j].name, auctionID, uerr)
				}
			}
			return err
		}
	}
	return nil
}

// sale describes a successful outcome to finalize.
type sale struct {
	buyer     string
	price     decimal.Decimal
	excess    decimal.Decimal // dutch overpayment returned to the buyer
	directBuy bool
}

func (c *Core) transferStep(a *models.Auction, to string) step {
	return step{
		name: "asset transfer",
		do: func(ctx context.Context) error {
			if err := c.Assets.Transfer(ctx, a.AssetContract, a.ItemID, a.Quantity, a.Seller, to); err != nil {
				return fmt.Errorf("%w: %w", ErrAssetTransferFailed, err)
			}
			return nil
		},
		undo: func(ctx context.Context) error {
			if r, ok := c.Assets.(Reverter); ok {
				return r.Revert(ctx, a.AssetContract, a.ItemID, a.Quantity, to, a.Seller)
			}
			return c.Assets.Transfer(ctx, a.AssetContract, a.ItemID, a.Quantity, to, a.Seller)
		},
	}
}

// distributionStep asks the fee collaborator for the split of price and pays each
// share out of escrow. A partial payout is reversed before the step reports failure.
func (c *Core) distributionStep(a *models.Auction, price decimal.Decimal, out *models.Distribution) step {
	type payout struct {
		to     string
		amount decimal.Decimal
	}
	var paid []payout
	reverse := func(ctx context.Context) error {
		var firstErr error
		for i := len(paid) - 1; i >= 0; i-- {
			if err := c.Funds.Send(ctx, paid[i].to, c.Config.Escrow, paid[i].amount); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		paid = nil
		return firstErr
	}
	return step{
		name: "fee distribution",
		do: func(ctx context.Context) error {
			dist, err := c.Fees.Distribute(ctx, a.AssetContract, a.Seller, price)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrDistributionFailed, err)
			}
			if !dist.Total().Equal(price) {
				return fmt.Errorf("%w: shares total %s, sale price %s", ErrDistributionFailed, dist.Total(), price)
			}
			for _, p := range []payout{
				{to: a.Seller, amount: dist.SellerNet},
				{to: dist.Treasury, amount: dist.MarketplaceFee},
				{to: dist.RoyaltyReceiver, amount: dist.Royalty},
			} {
				if !p.amount.IsPositive() {
					continue
				}
				if p.to == "" {
					_ = reverse(ctx)
					return fmt.Errorf("%w: share of %s has no receiver", ErrDistributionFailed, p.amount)
				}
				if err := c.Funds.Send(ctx, c.Config.Escrow, p.to, p.amount); err != nil {
					if rerr := reverse(ctx); rerr != nil {
						c.Logger.Printf("reverse partial payout auction=%s failed: %v", a.ID, rerr)
					}
					return fmt.Errorf("%w: pay %s: %w", ErrDistributionFailed, p.to, err)
				}
				paid = append(paid, p)
			}
			*out = dist
			return nil
		},
		undo: reverse,
	}
}

func (c *Core) excessRefundStep(buyer string, excess decimal.Decimal) step {
	return step{
		name: "excess refund",
		do: func(ctx context.Context) error {
			if err := c.Funds.Send(ctx, c.Config.Escrow, buyer, excess); err != nil {
				return fmt.Errorf("%w: %w", ErrExcessRefundFailed, err)
			}
			return nil
		},
		undo: func(ctx context.Context) error {
			return c.Funds.Send(ctx, buyer, c.Config.Escrow, excess)
		},
	}
}

// finalizeSale runs asset transfer, then fee distribution, then any excess refund, and
// commits the record as settled only if all of them succeed.
func (c *Core) finalizeSale(ctx context.Context, a *models.Auction, s sale) error {
	var dist models.Distribution
	steps := []step{
		c.transferStep(a, s.buyer),
		c.distributionStep(a, s.price, &dist),
	}
	if s.excess.IsPositive() {
		steps = append(steps, c.excessRefundStep(s.buyer, s.excess))
	}
	if err := c.runSteps(ctx, a.ID, steps); err != nil {
		return err
	}

	now := c.Now()
	a.Status = models.StatusSettled
	a.Settled = true
	a.HighestBidder = s.buyer
	a.HighestBid = s.price
	a.UpdatedAt = now
	if err := c.Store.Put(a); err != nil {
		return err
	}
	c.deactivate(a)
	c.release(ctx, a, false)

	c.emit(ctx, models.Event{
		Type:      models.EventAuctionSettled,
		AuctionID: a.ID,
		Kind:      a.Kind,
		Seller:    a.Seller,
		Account:   s.buyer,
		Amount:    amountPtr(s.price),
		Outcome:   models.OutcomeSold,
		Result: &models.Result{
			Winner:       s.buyer,
			Price:        s.price,
			Seller:       a.Seller,
			DirectBuy:    s.directBuy,
			Distribution: dist,
		},
		At: now,
	})
	return nil
}

// finalizeWithoutSale ends the auction with no transfer.
func (c *Core) finalizeWithoutSale(ctx context.Context, a *models.Auction, outcome models.Outcome) error {
	now := c.Now()
	a.Status = models.StatusEnded
	a.UpdatedAt = now
	if err := c.Store.Put(a); err != nil {
		return err
	}
	c.deactivate(a)
	c.release(ctx, a, false)

	c.emit(ctx, models.Event{
		Type:      models.EventAuctionSettled,
		AuctionID: a.ID,
		Kind:      a.Kind,
		Seller:    a.Seller,
		Outcome:   outcome,
		At:        now,
	})
	return nil
}

func (c *Core) finalizeCancel(ctx context.Context, a *models.Auction, reason string) error {
	now := c.Now()
	a.Status = models.StatusCancelled
	a.UpdatedAt = now
	if err := c.Store.Put(a); err != nil {
		return err
	}
	c.deactivate(a)
	c.release(ctx, a, true)

	c.emit(ctx, models.Event{
		Type:      models.EventAuctionCancelled,
		AuctionID: a.ID,
		Kind:      a.Kind,
		Seller:    a.Seller,
		Reason:    reason,
		At:        now,
	})
	return nil
}

func (c *Core) deactivate(a *models.Auction) {
	if !c.Store.Deactivate(a.ID) {
		c.Logger.Printf("auction %s was already out of the active index", a.ID)
	}
}

// release tells the listing validator the asset is free. Its failure never blocks the
// auction's own transition: the record is the source of truth for biddability.
func (c *Core) release(ctx context.Context, a *models.Auction, cancelled bool) {
	var err error
	if cancelled {
		err = c.Listings.NotifyCancelled(ctx, a.AssetContract, a.ItemID, a.Seller)
	} else {
		err = c.Listings.NotifyFinalized(ctx, a.AssetContract, a.ItemID, a.Seller)
	}
	if err != nil {
		c.Logger.Printf("listing release auction=%s failed: %v", a.ID, err)
	}
}
