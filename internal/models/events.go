package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventAuctionCreated   EventType = "auction_created"
	EventBidPlaced        EventType = "bid_placed"
	EventBidRefunded      EventType = "bid_refunded"
	EventRefundCredited   EventType = "refund_credited"
	EventAuctionExtended  EventType = "auction_extended"
	EventAuctionSettled   EventType = "auction_settled"
	EventAuctionCancelled EventType = "auction_cancelled"
	EventBuyNow           EventType = "buy_now"
)

type Outcome string

const (
	OutcomeSold          Outcome = "sold"
	OutcomeNoBids        Outcome = "no_bids"
	OutcomeReserveNotMet Outcome = "reserve_not_met"
	OutcomeUnsold        Outcome = "unsold"
)

// Event is published to observers after an operation commits.
// Only the fields relevant to Type are set.
type Event struct {
	Type       EventType        `json:"type"`
	AuctionID  string           `json:"auctionId"`
	Kind       Kind             `json:"kind,omitempty"`
	Seller     string           `json:"seller,omitempty"`
	Account    string           `json:"account,omitempty"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	Winning    bool             `json:"winning,omitempty"`
	OldEndTime *time.Time       `json:"oldEndTime,omitempty"`
	NewEndTime *time.Time       `json:"newEndTime,omitempty"`
	Reason     string           `json:"reason,omitempty"`
	Outcome    Outcome          `json:"outcome,omitempty"`
	Result     *Result          `json:"result,omitempty"` // nil when the auction ended without a winner
	At         time.Time        `json:"at"`
}

type Result struct {
	Winner       string          `json:"winner"`
	Price        decimal.Decimal `json:"price"`
	Seller       string          `json:"seller"`
	DirectBuy    bool            `json:"directBuy"`
	Distribution Distribution    `json:"distribution"`
}
