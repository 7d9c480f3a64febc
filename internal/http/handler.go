package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"NFTAuctionHouse/internal/auction"
	"NFTAuctionHouse/internal/custody"
	"NFTAuctionHouse/internal/listing"
	"NFTAuctionHouse/internal/models"
	"NFTAuctionHouse/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type Handler struct {
	Market  *services.Marketplace
	Custody *services.Custody
}

type createAuctionRequest struct {
	Kind            models.Kind     `json:"kind"`
	AssetContract   string          `json:"assetContract"`
	ItemID          string          `json:"itemId"`
	Quantity        uint64          `json:"quantity"`
	StartPrice      decimal.Decimal `json:"startPrice"`
	ReservePrice    decimal.Decimal `json:"reservePrice"`
	DurationSeconds int64           `json:"durationSeconds"`
	StartTime       *time.Time      `json:"startTime,omitempty"`
	DropPerHourBps  int64           `json:"dropPerHourBps,omitempty"`
}

type paymentRequest struct {
	Value decimal.Decimal `json:"value"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

type withdrawResponse struct {
	AuctionID   string          `json:"auctionId"`
	Participant string          `json:"participant"`
	Amount      decimal.Decimal `json:"amount"`
}

type refundResponse struct {
	AuctionID   string          `json:"auctionId"`
	Participant string          `json:"participant"`
	Pending     decimal.Decimal `json:"pending"`
}

type timeToReserveResponse struct {
	AuctionID string `json:"auctionId"`
	Seconds   int64  `json:"seconds"`
}

// NewHandler builds the API handlers. vault may be nil, which leaves the /vault routes unmounted.
func NewHandler(market *services.Marketplace, vault *services.Custody) *Handler {
	return &Handler{Market: market, Custody: vault}
}

// caller returns the sender and, for delegated calls, the user the factory acts for.
func caller(r *http.Request) (userID, actingUser string) {
	return r.Header.Get("X-User-Id"), r.Header.Get("X-Acting-User")
}

func (h *Handler) CreateAuction(w http.ResponseWriter, r *http.Request) {
	var req createAuctionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	p := auction.CreateParams{
		Kind:           req.Kind,
		AssetContract:  req.AssetContract,
		ItemID:         req.ItemID,
		Quantity:       req.Quantity,
		StartPrice:     req.StartPrice,
		ReservePrice:   req.ReservePrice,
		Duration:       time.Duration(req.DurationSeconds) * time.Second,
		DropPerHourBps: req.DropPerHourBps,
	}
	if p.Quantity == 0 {
		p.Quantity = 1
	}
	if req.StartTime != nil {
		p.StartTime = req.StartTime.UTC()
	}

	userID, _ := caller(r)
	a, err := h.Market.CreateAuction(r.Context(), userID, p)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *Handler) ListAuctions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	activeOnly, _ := strconv.ParseBool(q.Get("active"))
	out, err := h.Market.ListAuctions(r.Context(), q.Get("seller"), q.Get("collection"), activeOnly)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GetAuction(w http.ResponseWriter, r *http.Request) {
	v, err := h.Market.GetAuction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) PlaceBid(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	id := chi.URLParam(r, "id")
	userID, acting := caller(r)
	if err := h.Market.PlaceBid(r.Context(), userID, acting, id, req.Value); err != nil {
		writeEngineError(w, err)
		return
	}
	h.GetAuction(w, r)
}

func (h *Handler) BuyNow(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	id := chi.URLParam(r, "id")
	userID, acting := caller(r)
	if err := h.Market.BuyNow(r.Context(), userID, acting, id, req.Value); err != nil {
		writeEngineError(w, err)
		return
	}
	h.GetAuction(w, r)
}

func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	userID, acting := caller(r)
	amount, err := h.Market.Withdraw(r.Context(), userID, acting, id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	participant := userID
	if acting != "" {
		participant = acting
	}
	writeJSON(w, http.StatusOK, withdrawResponse{AuctionID: id, Participant: participant, Amount: amount})
}

func (h *Handler) Settle(w http.ResponseWriter, r *http.Request) {
	userID, _ := caller(r)
	a, err := h.Market.Settle(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json body")
			return
		}
	}
	userID, acting := caller(r)
	if err := h.Market.Cancel(r.Context(), userID, acting, chi.URLParam(r, "id"), req.Reason); err != nil {
		writeEngineError(w, err)
		return
	}
	h.GetAuction(w, r)
}

func (h *Handler) PendingRefund(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	participant := chi.URLParam(r, "participant")
	amount, err := h.Market.PendingRefund(r.Context(), id, participant)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, refundResponse{AuctionID: id, Participant: participant, Pending: amount})
}

func (h *Handler) TimeToReserve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d, err := h.Market.TimeToReserve(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, timeToReserveResponse{AuctionID: id, Seconds: int64(d / time.Second)})
}

func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	out, err := h.Market.Events(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// statusFor maps a named error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, auction.ErrAuctionNotFound):
		return http.StatusNotFound

	case errors.Is(err, services.ErrMissingUserID),
		errors.Is(err, auction.ErrMissingSender):
		return http.StatusUnauthorized

	case errors.Is(err, auction.ErrUnsupportedKind),
		errors.Is(err, auction.ErrInvalidAsset),
		errors.Is(err, auction.ErrInvalidQuantity),
		errors.Is(err, auction.ErrInvalidPrice),
		errors.Is(err, auction.ErrInvalidDuration),
		errors.Is(err, auction.ErrInvalidStartTime),
		errors.Is(err, auction.ErrInvalidDropRate),
		errors.Is(err, auction.ErrNotSupported),
		errors.Is(err, services.ErrInvalidValue),
		errors.Is(err, services.ErrInvalidAsset),
		errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, custody.ErrInvalidAmount):
		return http.StatusBadRequest

	case errors.Is(err, auction.ErrSellerCannotBid),
		errors.Is(err, auction.ErrNotSeller),
		errors.Is(err, auction.ErrNotFactory),
		errors.Is(err, auction.ErrEscrowCaller),
		errors.Is(err, services.ErrNotOperator),
		errors.Is(err, auction.ErrInsufficientHolding):
		return http.StatusForbidden

	case errors.Is(err, auction.ErrAuctionExists),
		errors.Is(err, auction.ErrAuctionNotActive),
		errors.Is(err, auction.ErrAuctionNotStarted),
		errors.Is(err, auction.ErrAuctionExpired),
		errors.Is(err, auction.ErrAuctionStillActive),
		errors.Is(err, auction.ErrAuctionHasBids),
		errors.Is(err, listing.ErrAlreadyListed):
		return http.StatusConflict

	case errors.Is(err, auction.ErrBidTooLow),
		errors.Is(err, auction.ErrPaymentTooLow),
		errors.Is(err, auction.ErrNothingToWithdraw),
		errors.Is(err, auction.ErrRefundTransferFailed),
		errors.Is(err, auction.ErrExcessRefundFailed),
		errors.Is(err, auction.ErrAssetTransferFailed),
		errors.Is(err, auction.ErrDistributionFailed),
		errors.Is(err, services.ErrPaymentCollect):
		return http.StatusPaymentRequired

	case errors.Is(err, services.ErrNoJournal):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeEngineError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}
