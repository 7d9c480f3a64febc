package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"NFTAuctionHouse/internal/auction"
	"NFTAuctionHouse/internal/models"
	"NFTAuctionHouse/internal/store"

	"github.com/shopspring/decimal"
)

var (
	ErrMissingUserID  = errors.New("missing user id")
	ErrInvalidValue   = errors.New("payment value must be positive")
	ErrPaymentCollect = errors.New("could not collect payment")
	ErrNoJournal      = errors.New("event journal not configured")
)

// Wallet moves funds between vault accounts.
type Wallet interface {
	Send(ctx context.Context, from, to string, amount decimal.Decimal) error
}

// Marketplace is the entry point for end users. Payment-bearing calls move the attached
// value from the caller's wallet into escrow before the engine runs and move it back if
// the engine rejects the call, so the engines only ever see escrowed value.
type Marketplace struct {
	House   *auction.House
	Wallet  Wallet
	Escrow  string
	Journal *store.Journal
	Logger  *log.Logger
}

func (s Marketplace) CreateAuction(ctx context.Context, userID string, p auction.CreateParams) (*models.Auction, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	id, err := s.House.Create(ctx, auction.Call{Sender: userID}, p)
	if err != nil {
		return nil, err
	}
	v, err := s.House.View(id)
	if err != nil {
		return nil, err
	}
	return v.Auction, nil
}

func (s Marketplace) PlaceBid(ctx context.Context, userID, actingUser, id string, value decimal.Decimal) error {
	return s.withPayment(ctx, userID, value, func(call auction.Call) error {
		return s.House.PlaceBid(ctx, id, call, actingUser)
	})
}

func (s Marketplace) BuyNow(ctx context.Context, userID, actingUser, id string, value decimal.Decimal) error {
	return s.withPayment(ctx, userID, value, func(call auction.Call) error {
		return s.House.BuyNow(ctx, id, call, actingUser)
	})
}

func (s Marketplace) Withdraw(ctx context.Context, userID, actingUser, id string) (decimal.Decimal, error) {
	if userID == "" {
		return decimal.Zero, ErrMissingUserID
	}
	return s.House.Withdraw(ctx, id, auction.Call{Sender: userID}, actingUser)
}

func (s Marketplace) Settle(ctx context.Context, userID, id string) (*models.Auction, error) {
	if err := s.House.Settle(ctx, id, auction.Call{Sender: userID}); err != nil {
		return nil, err
	}
	v, err := s.House.View(id)
	if err != nil {
		return nil, err
	}
	return v.Auction, nil
}

func (s Marketplace) Cancel(ctx context.Context, userID, actingUser, id, reason string) error {
	if userID == "" {
		return ErrMissingUserID
	}
	return s.House.Cancel(ctx, id, auction.Call{Sender: userID}, actingUser, reason)
}

func (s Marketplace) GetAuction(ctx context.Context, id string) (*auction.View, error) {
	return s.House.View(id)
}

func (s Marketplace) ListAuctions(ctx context.Context, seller, collection string, activeOnly bool) ([]*models.Auction, error) {
	return s.House.List(seller, collection, activeOnly)
}

func (s Marketplace) PendingRefund(ctx context.Context, id, participant string) (decimal.Decimal, error) {
	return s.House.PendingRefund(id, participant)
}

func (s Marketplace) TimeToReserve(ctx context.Context, id string) (time.Duration, error) {
	return s.House.TimeToReserve(id)
}

func (s Marketplace) Events(ctx context.Context, id string, limit int) ([]store.JournalEntry, error) {
	if s.Journal == nil {
		return nil, ErrNoJournal
	}
	if _, err := s.House.View(id); err != nil {
		return nil, err
	}
	return s.Journal.ListEvents(ctx, id, limit)
}

// withPayment escrows value from payer, runs fn, and returns the value on failure.
func (s Marketplace) withPayment(ctx context.Context, payer string, value decimal.Decimal, fn func(auction.Call) error) error {
	if payer == "" {
		return ErrMissingUserID
	}
	if payer == s.Escrow {
		return auction.ErrEscrowCaller
	}
	if !value.IsPositive() {
		return ErrInvalidValue
	}
	if err := s.Wallet.Send(ctx, payer, s.Escrow, value); err != nil {
		return fmt.Errorf("%w: %w", ErrPaymentCollect, err)
	}
	err := fn(auction.Call{Sender: payer, Value: value})
	if err == nil {
		return nil
	}
	if rerr := s.Wallet.Send(ctx, s.Escrow, payer, value); rerr != nil {
		s.logger().Printf("return payment of %s to %s failed: %v", value, payer, rerr)
	}
	return err
}

func (s Marketplace) logger() *log.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return log.Default()
}
