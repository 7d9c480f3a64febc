package auction

import (
	"errors"

	"NFTAuctionHouse/internal/ledger"
)

// Validation errors.
var (
	ErrUnsupportedKind     = errors.New("auction kind not supported by this engine")
	ErrInvalidAsset        = errors.New("asset contract and item id are required")
	ErrInvalidQuantity     = errors.New("quantity must be at least 1")
	ErrInvalidPrice        = errors.New("invalid start or reserve price")
	ErrInvalidDuration     = errors.New("invalid auction duration")
	ErrInvalidStartTime    = errors.New("start time is in the past")
	ErrInvalidDropRate     = errors.New("price drop per hour out of range")
	ErrInsufficientHolding = errors.New("seller does not hold the asset quantity")
)

// State errors.
var (
	ErrAuctionNotFound    = errors.New("auction not found")
	ErrAuctionExists      = errors.New("auction already exists")
	ErrAuctionNotActive   = errors.New("auction is not active")
	ErrAuctionNotStarted  = errors.New("auction has not started")
	ErrAuctionExpired     = errors.New("auction has expired")
	ErrAuctionStillActive = errors.New("auction has not reached its end time")
	ErrAuctionHasBids     = errors.New("auction with bids cannot be cancelled")
	ErrNotSupported       = errors.New("operation not supported for dutch auctions")
)

// Authorization errors.
var (
	ErrMissingSender   = errors.New("missing caller identity")
	ErrSellerCannotBid = errors.New("seller cannot bid on own auction")
	ErrNotSeller       = errors.New("only the seller can cancel the auction")
	ErrNotFactory      = errors.New("caller is not the factory")
	ErrEscrowCaller    = errors.New("escrow account cannot take part in auctions")
)

// Financial errors.
var (
	ErrBidTooLow            = errors.New("bid below minimum")
	ErrPaymentTooLow        = errors.New("payment below current price")
	ErrNothingToWithdraw    = ledger.ErrNothingToWithdraw
	ErrRefundTransferFailed = errors.New("refund transfer failed")
	ErrExcessRefundFailed   = errors.New("excess payment refund failed")
	ErrAssetTransferFailed  = errors.New("asset transfer failed")
	ErrDistributionFailed   = errors.New("fee distribution failed")
)
