package auction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"NFTAuctionHouse/internal/ledger"
	"NFTAuctionHouse/internal/models"
	"NFTAuctionHouse/internal/store"

	"github.com/shopspring/decimal"
)

// House dispatches operations addressed by auction id to the engine for its kind.
// An empty actingUser runs the direct variant; otherwise the factory variant.
type House struct {
	Core    *Core
	English *English
	Dutch   *Dutch
}

func NewHouse(core *Core) *House {
	return &House{
		Core:    core,
		English: NewEnglish(core),
		Dutch:   NewDutch(core),
	}
}

func (h *House) kind(id string) (models.Kind, error) {
	a, err := h.Core.Store.Get(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrAuctionNotFound
		}
		return "", err
	}
	return a.Kind, nil
}

func (h *House) Create(ctx context.Context, call Call, p CreateParams) (string, error) {
	switch p.Kind {
	case models.KindEnglish:
		return h.English.CreateAuction(ctx, call, p)
	case models.KindDutch:
		return h.Dutch.CreateAuction(ctx, call, p)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedKind, p.Kind)
	}
}

func (h *House) PlaceBid(ctx context.Context, id string, call Call, actingUser string) error {
	kind, err := h.kind(id)
	if err != nil {
		return err
	}
	switch kind {
	case models.KindEnglish:
		if actingUser != "" {
			return h.English.PlaceBidFor(ctx, id, call, actingUser)
		}
		return h.English.PlaceBid(ctx, id, call)
	case models.KindDutch:
		if actingUser != "" {
			return h.Dutch.PlaceBidFor(ctx, id, call, actingUser)
		}
		return h.Dutch.PlaceBid(ctx, id, call)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
}

func (h *House) BuyNow(ctx context.Context, id string, call Call, actingUser string) error {
	kind, err := h.kind(id)
	if err != nil {
		return err
	}
	switch kind {
	case models.KindDutch:
		if actingUser != "" {
			return h.Dutch.BuyNowFor(ctx, id, call, actingUser)
		}
		return h.Dutch.BuyNow(ctx, id, call)
	}
	return fmt.Errorf("%w: buy now on %s auction", ErrUnsupportedKind, kind)
}

func (h *House) Withdraw(ctx context.Context, id string, call Call, actingUser string) (decimal.Decimal, error) {
	kind, err := h.kind(id)
	if err != nil {
		return decimal.Zero, err
	}
	switch kind {
	case models.KindEnglish:
		if actingUser != "" {
			return h.English.WithdrawBidFor(ctx, id, call, actingUser)
		}
		return h.English.WithdrawBid(ctx, id, call)
	case models.KindDutch:
		if actingUser != "" {
			return h.Dutch.WithdrawBidFor(ctx, id, call, actingUser)
		}
		return h.Dutch.WithdrawBid(ctx, id, call)
	}
	return decimal.Zero, fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
}

func (h *House) Settle(ctx context.Context, id string, call Call) error {
	kind, err := h.kind(id)
	if err != nil {
		return err
	}
	switch kind {
	case models.KindEnglish:
		return h.English.SettleAuction(ctx, id, call)
	case models.KindDutch:
		return h.Dutch.SettleAuction(ctx, id, call)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
}

func (h *House) Cancel(ctx context.Context, id string, call Call, actingUser, reason string) error {
	kind, err := h.kind(id)
	if err != nil {
		return err
	}
	switch kind {
	case models.KindEnglish:
		if actingUser != "" {
			return h.English.CancelAuctionFor(ctx, id, call, actingUser, reason)
		}
		return h.English.CancelAuction(ctx, id, call, reason)
	case models.KindDutch:
		if actingUser != "" {
			return h.Dutch.CancelAuctionFor(ctx, id, call, actingUser, reason)
		}
		return h.Dutch.CancelAuction(ctx, id, call, reason)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
}

// View is a read-only snapshot of one auction.
type View struct {
	Auction        *models.Auction  `json:"auction"`
	Bids           []models.Bid     `json:"bids"`
	CurrentPrice   decimal.Decimal  `json:"currentPrice"`
	MinimumBid     *decimal.Decimal `json:"minimumBid,omitempty"`
	DropPerHourBps int64            `json:"dropPerHourBps,omitempty"`
	TimeToReserve  *time.Duration   `json:"timeToReserveNs,omitempty"`
	Refunds        []ledger.Entry   `json:"refunds"`
	Active         bool             `json:"active"`
}

func (h *House) View(id string) (*View, error) {
	kind, err := h.kind(id)
	if err != nil {
		return nil, err
	}
	v := &View{
		Bids:    h.Core.Store.Bids(id),
		Refunds: h.Core.Ledger.Entries(id),
		Active:  h.Core.Store.IsActive(id),
	}
	switch kind {
	case models.KindEnglish:
		if v.Auction, err = h.English.Auction(id); err != nil {
			return nil, err
		}
		if v.CurrentPrice, err = h.English.CurrentPrice(id); err != nil {
			return nil, err
		}
		minimum, err := h.English.MinimumBid(id)
		if err != nil {
			return nil, err
		}
		v.MinimumBid = &minimum
	case models.KindDutch:
		if v.Auction, err = h.Dutch.Auction(id); err != nil {
			return nil, err
		}
		if v.CurrentPrice, err = h.Dutch.CurrentPrice(id); err != nil {
			return nil, err
		}
		if v.DropPerHourBps, err = h.Dutch.DropRate(id); err != nil {
			return nil, err
		}
		ttr, err := h.Dutch.TimeToReserve(id)
		if err != nil {
			return nil, err
		}
		v.TimeToReserve = &ttr
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
	}
	return v, nil
}

func (h *House) PendingRefund(id, participant string) (decimal.Decimal, error) {
	kind, err := h.kind(id)
	if err != nil {
		return decimal.Zero, err
	}
	if kind == models.KindDutch {
		return h.Dutch.PendingRefund(id, participant)
	}
	return h.English.PendingRefund(id, participant)
}

func (h *House) TimeToReserve(id string) (time.Duration, error) {
	kind, err := h.kind(id)
	if err != nil {
		return 0, err
	}
	if kind != models.KindDutch {
		return 0, fmt.Errorf("%w: time to reserve on %s auction", ErrUnsupportedKind, kind)
	}
	return h.Dutch.TimeToReserve(id)
}

// List returns auctions filtered by seller or collection; with neither it returns the active set.
func (h *House) List(seller, collection string, activeOnly bool) ([]*models.Auction, error) {
	var ids []string
	switch {
	case seller != "":
		ids = h.Core.Store.BySeller(seller)
	case collection != "":
		ids = h.Core.Store.ByCollection(collection)
	default:
		ids = h.Core.Store.ActiveIDs()
	}
	out := make([]*models.Auction, 0, len(ids))
	for _, id := range ids {
		a, err := h.Core.Store.Get(id)
		if err != nil {
			return nil, err
		}
		if collection != "" && a.AssetContract != collection {
			continue
		}
		if activeOnly && !h.Core.Store.IsActive(id) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// Expired lists active auctions whose end time has passed at the core's current time.
func (h *House) Expired() []string {
	now := h.Core.Now()
	var out []string
	for _, id := range h.Core.Store.ActiveIDs() {
		a, err := h.Core.Store.Get(id)
		if err != nil {
			continue
		}
		if a.Status == models.StatusActive && !now.Before(a.EndTime) {
			out = append(out, id)
		}
	}
	return out
}
