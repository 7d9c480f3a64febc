package fees

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestDistributeWithRoyalty(t *testing.T) {
	s := Service{
		MarketplaceBps: 250,
		Treasury:       "treasury",
		Royalties:      map[string]Royalty{"0xpunks": {Receiver: "artist", Bps: 500}},
	}
	d, err := s.Distribute(context.Background(), "0xpunks", "seller", decimal.RequireFromString("2"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.MarketplaceFee.Equal(decimal.RequireFromString("0.05")) || !d.Royalty.Equal(decimal.RequireFromString("0.1")) {
		t.Fatalf("unexpected fee/royalty: %s %s", d.MarketplaceFee, d.Royalty)
	}
	if !d.SellerNet.Equal(decimal.RequireFromString("1.85")) || d.RoyaltyReceiver != "artist" || d.Treasury != "treasury" {
		t.Fatalf("unexpected distribution: %+v", d)
	}
}

func TestDistributeKeepsDustWithSeller(t *testing.T) {
	s := Service{MarketplaceBps: 333, Treasury: "treasury"}
	amount := decimal.New(1, -18) // one wei
	d, err := s.Distribute(context.Background(), "0xany", "seller", amount.Mul(decimal.NewFromInt(7)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Total().Equal(amount.Mul(decimal.NewFromInt(7))) {
		t.Fatalf("shares must sum to the sale, got %s", d.Total())
	}
	if !d.MarketplaceFee.IsZero() {
		t.Fatalf("fee below one wei should truncate to zero, got %s", d.MarketplaceFee)
	}
}

func TestRoyaltyToSellerIsSkipped(t *testing.T) {
	s := Service{Royalties: map[string]Royalty{"0xc": {Receiver: "seller", Bps: 1000}}}
	d, _ := s.Distribute(context.Background(), "0xc", "seller", decimal.NewFromInt(1))
	if !d.Royalty.IsZero() || !d.SellerNet.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("creator selling their own item pays no royalty, got %+v", d)
	}
}

func TestInvalidSchedule(t *testing.T) {
	s := Service{MarketplaceBps: 6000, Royalties: map[string]Royalty{"0xc": {Receiver: "artist", Bps: 5000}}}
	if _, err := s.Distribute(context.Background(), "0xc", "seller", decimal.NewFromInt(1)); !errors.Is(err, ErrInvalidSchedule) {
		t.Fatalf("expected ErrInvalidSchedule, got %v", err)
	}
	sched, err := s.CurrentSchedule(context.Background(), "0xother")
	if err != nil || sched.Source != "default" {
		t.Fatalf("collections without royalty use the default schedule, got %+v %v", sched, err)
	}
}
