package http

import (
	"encoding/json"
	"net/http"

	"NFTAuctionHouse/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type depositRequest struct {
	Account string          `json:"account"`
	Amount  decimal.Decimal `json:"amount"`
}

type mintRequest struct {
	Contract string `json:"contract"`
	ItemID   string `json:"itemId"`
	Holder   string `json:"holder"`
	Quantity uint64 `json:"quantity"`
}

type approvalRequest struct {
	Contract string `json:"contract"`
	Approved bool   `json:"approved"`
}

type approvalResponse struct {
	Contract string `json:"contract"`
	Owner    string `json:"owner"`
	Approved bool   `json:"approved"`
}

func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	userID, _ := caller(r)
	acct, err := h.Custody.Deposit(r.Context(), userID, req.Account, req.Amount)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	acct, err := h.Custody.Balance(r.Context(), chi.URLParam(r, "account"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (h *Handler) Mint(w http.ResponseWriter, r *http.Request) {
	var req mintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	userID, _ := caller(r)
	held, err := h.Custody.Mint(r.Context(), userID, services.Holding{
		Contract: req.Contract,
		ItemID:   req.ItemID,
		Holder:   req.Holder,
		Quantity: req.Quantity,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, held)
}

func (h *Handler) Holding(w http.ResponseWriter, r *http.Request) {
	held, err := h.Custody.Holding(r.Context(), chi.URLParam(r, "contract"), chi.URLParam(r, "itemId"), chi.URLParam(r, "holder"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, held)
}

func (h *Handler) SetApproval(w http.ResponseWriter, r *http.Request) {
	var req approvalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	userID, _ := caller(r)
	if err := h.Custody.SetApproval(r.Context(), userID, req.Contract, req.Approved); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, approvalResponse{Contract: req.Contract, Owner: userID, Approved: req.Approved})
}

func (h *Handler) Approval(w http.ResponseWriter, r *http.Request) {
	contract, owner := chi.URLParam(r, "contract"), chi.URLParam(r, "owner")
	ok, err := h.Custody.Approved(r.Context(), contract, owner)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, approvalResponse{Contract: contract, Owner: owner, Approved: ok})
}
