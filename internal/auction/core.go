// Package auction implements the English (ascending bid) and Dutch (descending price)
// auction engines over a shared record store, refund ledger and settlement coordinator.
//
// Every mutating operation holds the auction's lock for its whole duration, so the
// operations on one auction are totally ordered while different auctions proceed
// independently. Time-dependent rules are evaluated against the core's clock at call
// time; nothing runs in the background.
package auction

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"NFTAuctionHouse/internal/events"
	"NFTAuctionHouse/internal/ledger"
	"NFTAuctionHouse/internal/models"
	"NFTAuctionHouse/internal/store"

	"github.com/shopspring/decimal"
)

const bpsDenominator = 10000

// Call is the envelope of a mutating operation: who is calling and what payment is attached.
type Call struct {
	Sender string
	Value  decimal.Decimal
}

// Assets moves non-fungible assets between holders.
type Assets interface {
	Transfer(ctx context.Context, contract, itemID string, quantity uint64, from, to string) error
	Balance(ctx context.Context, contract, itemID, holder string) (uint64, error)
}

// Reverter is implemented by custodians that can hand back a transfer without the
// recipient's authorization. It is used to compensate a sale that failed after the asset moved.
type Reverter interface {
	Revert(ctx context.Context, contract, itemID string, quantity uint64, from, to string) error
}

// Funds moves escrowed payments.
type Funds interface {
	Send(ctx context.Context, from, to string, amount decimal.Decimal) error
}

// Fees splits a sale amount into seller proceeds, marketplace fee and royalty.
type Fees interface {
	Distribute(ctx context.Context, collection, seller string, amount decimal.Decimal) (models.Distribution, error)
}

// Listings tracks whether an asset is already committed to another marketplace action.
type Listings interface {
	Claim(ctx context.Context, contract, itemID, seller string) error
	NotifyCancelled(ctx context.Context, contract, itemID, seller string) error
	NotifyFinalized(ctx context.Context, contract, itemID, seller string) error
}

type Config struct {
	MinBidIncrementBps int64
	ExtensionThreshold time.Duration
	ExtensionWindow    time.Duration
	MinDropBps         int64
	MaxDropBps         int64
	DefaultDropBps     int64
	MaxDuration        time.Duration
	Factory            string
	Escrow             string
}

func DefaultConfig() Config {
	return Config{
		MinBidIncrementBps: 500,
		ExtensionThreshold: 5 * time.Minute,
		ExtensionWindow:    10 * time.Minute,
		MinDropBps:         100,
		MaxDropBps:         5000,
		DefaultDropBps:     1000,
		MaxDuration:        30 * 24 * time.Hour,
		Escrow:             "escrow",
	}
}

type Deps struct {
	Store    *store.Memory
	Ledger   *ledger.Ledger
	Assets   Assets
	Funds    Funds
	Fees     Fees
	Listings Listings
	Events   events.Emitter
	Now      func() time.Time
	Logger   *log.Logger
}

// Core is the state and collaborators shared by both engines.
type Core struct {
	Store    *store.Memory
	Ledger   *ledger.Ledger
	Assets   Assets
	Funds    Funds
	Fees     Fees
	Listings Listings
	Events   events.Emitter
	Config   Config
	Now      func() time.Time
	Logger   *log.Logger

	locks sync.Map
}

func NewCore(deps Deps, cfg Config) *Core {
	c := &Core{
		Store:    deps.Store,
		Ledger:   deps.Ledger,
		Assets:   deps.Assets,
		Funds:    deps.Funds,
		Fees:     deps.Fees,
		Listings: deps.Listings,
		Events:   deps.Events,
		Config:   cfg,
		Now:      deps.Now,
		Logger:   deps.Logger,
	}
	if c.Store == nil {
		c.Store = store.NewMemory()
	}
	if c.Ledger == nil {
		c.Ledger = ledger.New()
	}
	if c.Events == nil {
		c.Events = events.Discard{}
	}
	if c.Now == nil {
		c.Now = func() time.Time { return time.Now().UTC() }
	}
	if c.Logger == nil {
		c.Logger = log.Default()
	}
	return c
}

// lock serializes operations on one auction id.
func (c *Core) lock(id string) func() {
	v, _ := c.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// load fetches a record and checks it belongs to the engine kind.
func (c *Core) load(id string, kind models.Kind) (*models.Auction, error) {
	a, err := c.Store.Get(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrAuctionNotFound
		}
		return nil, err
	}
	if a.Kind != kind {
		return nil, fmt.Errorf("%w: auction %s is %s", ErrUnsupportedKind, id, a.Kind)
	}
	return a, nil
}

func requireActive(a *models.Auction) error {
	if a.Status != models.StatusActive {
		return fmt.Errorf("%w: status %s", ErrAuctionNotActive, a.Status)
	}
	return nil
}

// requireOpen checks now falls within [StartTime, EndTime).
func requireOpen(a *models.Auction, now time.Time) error {
	if now.Before(a.StartTime) {
		return ErrAuctionNotStarted
	}
	if !now.Before(a.EndTime) {
		return ErrAuctionExpired
	}
	return nil
}

// requireParticipant rejects the escrow account acting as a user. Payments from escrow
// to itself move nothing, so its bids would be backed by other auctions' funds.
func (c *Core) requireParticipant(account string) error {
	if account == "" {
		return ErrMissingSender
	}
	if account == c.Config.Escrow {
		return ErrEscrowCaller
	}
	return nil
}

func (c *Core) requireFactory(sender string) error {
	if c.Config.Factory == "" || sender != c.Config.Factory {
		return ErrNotFactory
	}
	return nil
}

func (c *Core) emit(ctx context.Context, ev models.Event) {
	if ev.At.IsZero() {
		ev.At = c.Now()
	}
	if err := c.Events.Emit(ctx, ev); err != nil {
		c.Logger.Printf("emit %s auction=%s failed: %v", ev.Type, ev.AuctionID, err)
	}
}

// bps returns amount * bps / 10000, truncated to amount precision.
func bps(amount decimal.Decimal, points int64) decimal.Decimal {
	q, _ := amount.Mul(decimal.NewFromInt(points)).QuoRem(decimal.NewFromInt(bpsDenominator), amountPrecision)
	return q
}

func amountPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

func timePtr(t time.Time) *time.Time {
	return &t
}
