package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindEnglish Kind = "english"
	KindDutch   Kind = "dutch"
)

type Status string

const (
	StatusCreated   Status = "created"
	StatusActive    Status = "active"
	StatusEnded     Status = "ended"
	StatusCancelled Status = "cancelled"
	StatusSettled   Status = "settled"
)

// Terminal reports whether an auction in this status can no longer change.
func (s Status) Terminal() bool {
	return s == StatusEnded || s == StatusCancelled || s == StatusSettled
}

type Auction struct {
	ID            string          `json:"id"`
	AssetContract string          `json:"assetContract"`
	ItemID        string          `json:"itemId"`
	Quantity      uint64          `json:"quantity"`
	Seller        string          `json:"seller"`
	Kind          Kind            `json:"kind"`
	Status        Status          `json:"status"`
	StartTime     time.Time       `json:"startTime"`
	EndTime       time.Time       `json:"endTime"`
	StartPrice    decimal.Decimal `json:"startPrice"`
	ReservePrice  decimal.Decimal `json:"reservePrice"`
	HighestBidder string          `json:"highestBidder,omitempty"`
	HighestBid    decimal.Decimal `json:"highestBid"`
	BidCount      int             `json:"bidCount"`
	Settled       bool            `json:"settled"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Clone returns a copy that can be mutated without touching the stored record.
func (a *Auction) Clone() *Auction {
	c := *a
	return &c
}

type Bid struct {
	Bidder    string          `json:"bidder"`
	Amount    decimal.Decimal `json:"amount"`
	Timestamp time.Time       `json:"timestamp"`
	Refunded  bool            `json:"refunded"`
}

// DutchConfig is the per-auction price decay, in basis points of the start price per hour.
type DutchConfig struct {
	DropPerHourBps int64 `json:"dropPerHourBps"`
}

// Distribution is how a sale amount is split between seller, marketplace and royalty receiver.
type Distribution struct {
	SellerNet       decimal.Decimal `json:"sellerNet"`
	MarketplaceFee  decimal.Decimal `json:"marketplaceFee"`
	Treasury        string          `json:"treasury,omitempty"`
	Royalty         decimal.Decimal `json:"royalty"`
	RoyaltyReceiver string          `json:"royaltyReceiver,omitempty"`
}

// Total is the sum of every share.
func (d Distribution) Total() decimal.Decimal {
	return d.SellerNet.Add(d.MarketplaceFee).Add(d.Royalty)
}
