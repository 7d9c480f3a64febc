package auction_test

import (
	"context"
	"errors"
	"testing"

	"NFTAuctionHouse/internal/auction"
	"NFTAuctionHouse/internal/models"
)

func TestFactoryActsForUser(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := newEnglish(h, "1")

	call := h.pay(factory, "1.0")
	if err := h.house.PlaceBid(ctx, id, call, "x"); err != nil {
		t.Fatalf("bid for x: %v", err)
	}
	if a := h.auction(id); a.HighestBidder != "x" {
		t.Fatalf("bid should be attributed to x, got %q", a.HighestBidder)
	}
	if err := h.house.PlaceBid(ctx, id, h.pay("y", "2.0"), ""); err != nil {
		t.Fatalf("direct bid: %v", err)
	}
	amount, err := h.house.Withdraw(ctx, id, auction.Call{Sender: factory}, "x")
	if err != nil || !amount.Equal(dec("1.0")) {
		t.Fatalf("withdraw for x: %s %v", amount, err)
	}
	if got := h.funds.balance("x"); !got.Equal(dec("1.0")) {
		t.Fatalf("refund should reach x, not the factory, got %s", got)
	}
}

func TestFactoryOnlyCaller(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := newEnglish(h, "2")

	if err := h.house.PlaceBid(ctx, id, h.pay("mallory", "1"), "x"); !errors.Is(err, auction.ErrNotFactory) {
		t.Fatalf("expected ErrNotFactory, got %v", err)
	}
	if _, err := h.house.Withdraw(ctx, id, auction.Call{Sender: "mallory"}, "x"); !errors.Is(err, auction.ErrNotFactory) {
		t.Fatalf("expected ErrNotFactory, got %v", err)
	}
	if err := h.house.Cancel(ctx, id, auction.Call{Sender: "mallory"}, "seller", ""); !errors.Is(err, auction.ErrNotFactory) {
		t.Fatalf("expected ErrNotFactory, got %v", err)
	}

	h.core.Config.Factory = ""
	if err := h.house.PlaceBid(ctx, id, h.pay("", "1"), "x"); !errors.Is(err, auction.ErrNotFactory) {
		t.Fatalf("unset factory must reject everyone, got %v", err)
	}
}

func TestFactoryCancelChecksSeller(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	english := newEnglish(h, "3")
	dutch := newDutch(h, "4", 1000)

	if err := h.house.Cancel(ctx, english, auction.Call{Sender: factory}, "x", ""); !errors.Is(err, auction.ErrNotSeller) {
		t.Fatalf("expected ErrNotSeller, got %v", err)
	}
	if err := h.house.Cancel(ctx, english, auction.Call{Sender: factory}, "seller", "via factory"); err != nil {
		t.Fatalf("cancel english for seller: %v", err)
	}
	if err := h.house.Cancel(ctx, dutch, auction.Call{Sender: factory}, "seller", "via factory"); err != nil {
		t.Fatalf("cancel dutch for seller: %v", err)
	}
	cancelled := h.events.ofType(models.EventAuctionCancelled)
	if len(cancelled) != 2 || cancelled[0].Reason != "via factory" {
		t.Fatalf("expected two cancellation events, got %+v", cancelled)
	}
}

func TestFactoryBuyNowForUser(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := newDutch(h, "5", 1000)

	if err := h.house.BuyNow(ctx, id, h.pay(factory, "2.5"), "y"); err != nil {
		t.Fatalf("buy for y: %v", err)
	}
	if h.assets.owner("5", "y") != 1 {
		t.Fatal("asset should go to y")
	}
	if got := h.funds.balance("y"); !got.Equal(dec("0.5")) {
		t.Fatalf("excess should go to y, got %s", got)
	}
	if _, err := h.house.Withdraw(ctx, id, auction.Call{Sender: factory}, "y"); !errors.Is(err, auction.ErrNotSupported) {
		t.Fatalf("expected ErrNotSupported, got %v", err)
	}
}
