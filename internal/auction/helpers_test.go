package auction_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"NFTAuctionHouse/internal/auction"
	"NFTAuctionHouse/internal/models"

	"github.com/shopspring/decimal"
)

const (
	escrow     = "escrow"
	factory    = "factory"
	treasury   = "treasury"
	collection = "0xpunks"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fakeAssets struct {
	mu       sync.Mutex
	holdings map[string]uint64
	failTo   string
}

func holdingKey(contract, itemID, holder string) string {
	return contract + "/" + itemID + "/" + holder
}

func (f *fakeAssets) Transfer(_ context.Context, contract, itemID string, qty uint64, from, to string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if to == f.failTo {
		return errors.New("receiver rejected asset")
	}
	if f.holdings[holdingKey(contract, itemID, from)] < qty {
		return errors.New("insufficient holding")
	}
	f.holdings[holdingKey(contract, itemID, from)] -= qty
	f.holdings[holdingKey(contract, itemID, to)] += qty
	return nil
}

func (f *fakeAssets) Balance(_ context.Context, contract, itemID, holder string) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.holdings[holdingKey(contract, itemID, holder)], nil
}

func (f *fakeAssets) owner(itemID, holder string) uint64 {
	n, _ := f.Balance(context.Background(), collection, itemID, holder)
	return n
}

type fakeFunds struct {
	mu       sync.Mutex
	balances map[string]decimal.Decimal
	failTo   map[string]bool
}

func (f *fakeFunds) Send(_ context.Context, from, to string, amount decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failTo[to] {
		return fmt.Errorf("transfer to %s rejected", to)
	}
	if f.balances[from].LessThan(amount) {
		return fmt.Errorf("%s has insufficient funds", from)
	}
	f.balances[from] = f.balances[from].Sub(amount)
	f.balances[to] = f.balances[to].Add(amount)
	return nil
}

func (f *fakeFunds) balance(account string) decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances[account]
}

func (f *fakeFunds) setFail(account string, fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failTo[account] = fail
}

// fakeFees takes a flat marketplace fee and pays the rest to the seller.
type fakeFees struct {
	bps int64
	err error
}

func (f *fakeFees) Distribute(_ context.Context, _, _ string, amount decimal.Decimal) (models.Distribution, error) {
	if f.err != nil {
		return models.Distribution{}, f.err
	}
	fee := amount.Mul(decimal.NewFromInt(f.bps)).Div(decimal.NewFromInt(10000))
	return models.Distribution{
		SellerNet:      amount.Sub(fee),
		MarketplaceFee: fee,
		Treasury:       treasury,
	}, nil
}

type fakeListings struct {
	mu        sync.Mutex
	claimed   map[string]bool
	cancelled int
	finalized int
	failClaim error
}

func (f *fakeListings) Claim(_ context.Context, contract, itemID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failClaim != nil {
		return f.failClaim
	}
	if f.claimed[contract+itemID] {
		return errors.New("already listed")
	}
	f.claimed[contract+itemID] = true
	return nil
}

func (f *fakeListings) NotifyCancelled(_ context.Context, contract, itemID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.claimed, contract+itemID)
	f.cancelled++
	return nil
}

func (f *fakeListings) NotifyFinalized(_ context.Context, contract, itemID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.claimed, contract+itemID)
	f.finalized++
	return nil
}

type recorder struct {
	mu     sync.Mutex
	events []models.Event
}

func (r *recorder) Emit(_ context.Context, ev models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) ofType(t models.EventType) []models.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Event
	for _, ev := range r.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

type harness struct {
	t        *testing.T
	house    *auction.House
	core     *auction.Core
	assets   *fakeAssets
	funds    *fakeFunds
	fees     *fakeFees
	listings *fakeListings
	events   *recorder
	now      time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		t:        t,
		assets:   &fakeAssets{holdings: make(map[string]uint64)},
		funds:    &fakeFunds{balances: make(map[string]decimal.Decimal), failTo: make(map[string]bool)},
		fees:     &fakeFees{},
		listings: &fakeListings{claimed: make(map[string]bool)},
		events:   &recorder{},
		now:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	cfg := auction.DefaultConfig()
	cfg.Factory = factory
	cfg.Escrow = escrow
	h.core = auction.NewCore(auction.Deps{
		Assets:   h.assets,
		Funds:    h.funds,
		Fees:     h.fees,
		Listings: h.listings,
		Events:   h.events,
		Now:      func() time.Time { return h.now },
		Logger:   log.New(io.Discard, "", 0),
	}, cfg)
	h.house = auction.NewHouse(h.core)
	return h
}

func (h *harness) advance(d time.Duration) {
	h.now = h.now.Add(d)
}

// mint gives holder one unit of itemID.
func (h *harness) mint(itemID, holder string) {
	h.assets.holdings[holdingKey(collection, itemID, holder)]++
}

// pay escrows amount from sender the way the marketplace does before calling the engine.
func (h *harness) pay(sender, amount string) auction.Call {
	h.t.Helper()
	v := dec(amount)
	h.funds.mu.Lock()
	h.funds.balances[escrow] = h.funds.balances[escrow].Add(v)
	h.funds.mu.Unlock()
	return auction.Call{Sender: sender, Value: v}
}

func (h *harness) create(seller string, p auction.CreateParams) string {
	h.t.Helper()
	if p.AssetContract == "" {
		p.AssetContract = collection
	}
	if p.Quantity == 0 {
		p.Quantity = 1
	}
	if p.Duration == 0 {
		p.Duration = 24 * time.Hour
	}
	h.mint(p.ItemID, seller)
	id, err := h.house.Create(context.Background(), auction.Call{Sender: seller}, p)
	if err != nil {
		h.t.Fatalf("create auction: %v", err)
	}
	return id
}

func (h *harness) auction(id string) *models.Auction {
	h.t.Helper()
	v, err := h.house.View(id)
	if err != nil {
		h.t.Fatalf("view auction %s: %v", id, err)
	}
	return v.Auction
}

// checkEscrow asserts escrow holds exactly the refund balances plus the live leading bid.
func (h *harness) checkEscrow(id string) {
	h.t.Helper()
	a := h.auction(id)
	want := h.core.Ledger.Total(id)
	if a.Status == models.StatusActive && a.HighestBidder != "" {
		want = want.Add(a.HighestBid)
	}
	if got := h.funds.balance(escrow); !got.Equal(want) {
		h.t.Fatalf("escrow holds %s, expected %s", got, want)
	}
}
