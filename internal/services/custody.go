package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"NFTAuctionHouse/internal/auction"

	"github.com/shopspring/decimal"
)

var (
	ErrNotOperator     = errors.New("caller is not the vault operator")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrInvalidAsset    = errors.New("asset contract and item id are required")
)

// Vault is the custody surface the operator seeds and users authorize.
type Vault interface {
	Mint(ctx context.Context, contract, itemID, holder string, quantity uint64) error
	SetApproval(ctx context.Context, contract, owner string, approved bool) error
	Approved(ctx context.Context, contract, owner string) (bool, error)
	Balance(ctx context.Context, contract, itemID, holder string) (uint64, error)
	Deposit(ctx context.Context, account string, amount decimal.Decimal) error
	FundsBalance(ctx context.Context, account string) (decimal.Decimal, error)
}

// Custody credits funds and assets arriving from outside the marketplace and lets
// owners approve the marketplace for a contract. Only the operator may credit.
type Custody struct {
	Vault    Vault
	Operator string
	Escrow   string
	Logger   *log.Logger
}

type Holding struct {
	Contract string `json:"contract"`
	ItemID   string `json:"itemId"`
	Holder   string `json:"holder"`
	Quantity uint64 `json:"quantity"`
}

type Account struct {
	Account string          `json:"account"`
	Balance decimal.Decimal `json:"balance"`
}

func (s Custody) requireOperator(userID string) error {
	if userID == "" {
		return ErrMissingUserID
	}
	if s.Operator == "" || userID != s.Operator {
		return ErrNotOperator
	}
	return nil
}

func (s Custody) Deposit(ctx context.Context, userID, account string, amount decimal.Decimal) (Account, error) {
	if err := s.requireOperator(userID); err != nil {
		return Account{}, err
	}
	if account == "" {
		return Account{}, ErrMissingUserID
	}
	if account == s.Escrow {
		return Account{}, auction.ErrEscrowCaller
	}
	if !amount.IsPositive() {
		return Account{}, ErrInvalidValue
	}
	if err := s.Vault.Deposit(ctx, account, amount); err != nil {
		return Account{}, fmt.Errorf("deposit: %w", err)
	}
	s.logger().Printf("deposit account=%s amount=%s", account, amount)
	return s.Balance(ctx, account)
}

func (s Custody) Mint(ctx context.Context, userID string, h Holding) (Holding, error) {
	if err := s.requireOperator(userID); err != nil {
		return Holding{}, err
	}
	if h.Contract == "" || h.ItemID == "" {
		return Holding{}, ErrInvalidAsset
	}
	if h.Holder == "" {
		return Holding{}, ErrMissingUserID
	}
	if h.Holder == s.Escrow {
		return Holding{}, auction.ErrEscrowCaller
	}
	if h.Quantity == 0 {
		return Holding{}, ErrInvalidQuantity
	}
	if err := s.Vault.Mint(ctx, h.Contract, h.ItemID, h.Holder, h.Quantity); err != nil {
		return Holding{}, fmt.Errorf("mint: %w", err)
	}
	s.logger().Printf("mint contract=%s item=%s holder=%s quantity=%d", h.Contract, h.ItemID, h.Holder, h.Quantity)
	return s.Holding(ctx, h.Contract, h.ItemID, h.Holder)
}

// SetApproval records the caller's own approval; nobody approves for someone else.
func (s Custody) SetApproval(ctx context.Context, userID, contract string, approved bool) error {
	if userID == "" {
		return ErrMissingUserID
	}
	if contract == "" {
		return ErrInvalidAsset
	}
	return s.Vault.SetApproval(ctx, contract, userID, approved)
}

func (s Custody) Approved(ctx context.Context, contract, owner string) (bool, error) {
	return s.Vault.Approved(ctx, contract, owner)
}

func (s Custody) Holding(ctx context.Context, contract, itemID, holder string) (Holding, error) {
	n, err := s.Vault.Balance(ctx, contract, itemID, holder)
	if err != nil {
		return Holding{}, err
	}
	return Holding{Contract: contract, ItemID: itemID, Holder: holder, Quantity: n}, nil
}

func (s Custody) Balance(ctx context.Context, account string) (Account, error) {
	bal, err := s.Vault.FundsBalance(ctx, account)
	if err != nil {
		return Account{}, err
	}
	return Account{Account: account, Balance: bal}, nil
}

func (s Custody) logger() *log.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return log.Default()
}
