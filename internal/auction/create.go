package auction

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"time"

	"NFTAuctionHouse/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/sha3"
)

type CreateParams struct {
	Kind           models.Kind
	AssetContract  string
	ItemID         string
	Quantity       uint64
	StartPrice     decimal.Decimal
	ReservePrice   decimal.Decimal
	Duration       time.Duration
	StartTime      time.Time // zero means now
	DropPerHourBps int64     // dutch only; zero means the engine default
}

// AuctionID derives the identifier from the asset, the creator and the creation time.
func AuctionID(contract, itemID, creator string, at time.Time) string {
	h := sha3.NewLegacyKeccak256()
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(at.UnixNano()))
	for _, part := range [][]byte{[]byte(contract), []byte(itemID), []byte(creator), ts[:]} {
		var n [4]byte
		binary.BigEndian.PutUint32(n[:], uint32(len(part)))
		_, _ = h.Write(n[:])
		_, _ = h.Write(part)
	}
	return "0x" + hex.EncodeToString(h.Sum(nil))
}

func (c *Core) validateCommon(p CreateParams, now time.Time) (time.Time, error) {
	if p.AssetContract == "" || p.ItemID == "" {
		return time.Time{}, ErrInvalidAsset
	}
	if p.Quantity < 1 {
		return time.Time{}, ErrInvalidQuantity
	}
	if !p.StartPrice.IsPositive() || p.ReservePrice.IsNegative() {
		return time.Time{}, ErrInvalidPrice
	}
	if p.Duration <= 0 || (c.Config.MaxDuration > 0 && p.Duration > c.Config.MaxDuration) {
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidDuration, p.Duration)
	}
	start := p.StartTime
	if start.IsZero() {
		start = now
	}
	if start.Before(now) {
		return time.Time{}, ErrInvalidStartTime
	}
	return start, nil
}

// create validates and stores a new auction. Nothing is stored unless every check passes.
func (c *Core) create(ctx context.Context, seller string, p CreateParams, cfg *models.DutchConfig) (string, error) {
	if err := c.requireParticipant(seller); err != nil {
		return "", err
	}
	now := c.Now()
	start, err := c.validateCommon(p, now)
	if err != nil {
		return "", err
	}

	held, err := c.Assets.Balance(ctx, p.AssetContract, p.ItemID, seller)
	if err != nil {
		return "", fmt.Errorf("check seller holding: %w", err)
	}
	if held < p.Quantity {
		return "", fmt.Errorf("%w: holds %d, auctioning %d", ErrInsufficientHolding, held, p.Quantity)
	}

	id := AuctionID(p.AssetContract, p.ItemID, seller, now)
	unlock := c.lock(id)
	defer unlock()

	if c.Store.Exists(id) {
		return "", ErrAuctionExists
	}
	if err := c.Listings.Claim(ctx, p.AssetContract, p.ItemID, seller); err != nil {
		return "", fmt.Errorf("claim listing: %w", err)
	}

	a := &models.Auction{
		ID:            id,
		AssetContract: p.AssetContract,
		ItemID:        p.ItemID,
		Quantity:      p.Quantity,
		Seller:        seller,
		Kind:          p.Kind,
		Status:        models.StatusActive,
		StartTime:     start,
		EndTime:       start.Add(p.Duration),
		StartPrice:    p.StartPrice,
		ReservePrice:  p.ReservePrice,
		HighestBid:    decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := c.Store.Insert(a, cfg); err != nil {
		if rerr := c.Listings.NotifyFinalized(ctx, p.AssetContract, p.ItemID, seller); rerr != nil {
			c.Logger.Printf("release listing claim auction=%s failed: %v", id, rerr)
		}
		return "", fmt.Errorf("%w: %v", ErrAuctionExists, err)
	}

	c.emit(ctx, models.Event{
		Type:       models.EventAuctionCreated,
		AuctionID:  id,
		Kind:       a.Kind,
		Seller:     seller,
		Amount:     amountPtr(a.StartPrice),
		NewEndTime: timePtr(a.EndTime),
		At:         now,
	})
	return id, nil
}
