package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"NFTAuctionHouse/internal/auction"
	"NFTAuctionHouse/internal/custody"

	"github.com/shopspring/decimal"
)

func newCustody(t *testing.T) Custody {
	t.Helper()
	v, err := custody.Open(filepath.Join(t.TempDir(), "vault.db"))
	if err != nil {
		t.Fatalf("open vault: %v", err)
	}
	t.Cleanup(func() { v.Close() })
	return Custody{Vault: v, Operator: "operator", Escrow: "escrow"}
}

func TestCustodyOperatorCredits(t *testing.T) {
	s := newCustody(t)
	ctx := context.Background()

	if _, err := s.Deposit(ctx, "bob", "bob", decimal.NewFromInt(1)); !errors.Is(err, ErrNotOperator) {
		t.Fatalf("expected ErrNotOperator, got %v", err)
	}
	if _, err := s.Deposit(ctx, "operator", "escrow", decimal.NewFromInt(1)); !errors.Is(err, auction.ErrEscrowCaller) {
		t.Fatalf("expected ErrEscrowCaller, got %v", err)
	}
	acct, err := s.Deposit(ctx, "operator", "bob", decimal.RequireFromString("2.5"))
	if err != nil || !acct.Balance.Equal(decimal.RequireFromString("2.5")) {
		t.Fatalf("deposit returned %+v %v", acct, err)
	}

	if _, err := s.Mint(ctx, "operator", Holding{Contract: "0xart", ItemID: "1", Holder: "alice"}); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	held, err := s.Mint(ctx, "operator", Holding{Contract: "0xart", ItemID: "1", Holder: "alice", Quantity: 3})
	if err != nil || held.Quantity != 3 {
		t.Fatalf("mint returned %+v %v", held, err)
	}
}

func TestCustodyWithoutOperatorRefusesCredits(t *testing.T) {
	s := newCustody(t)
	s.Operator = ""
	ctx := context.Background()
	if _, err := s.Deposit(ctx, "anyone", "bob", decimal.NewFromInt(1)); !errors.Is(err, ErrNotOperator) {
		t.Fatalf("expected ErrNotOperator, got %v", err)
	}
	if err := s.SetApproval(ctx, "alice", "0xart", true); err != nil {
		t.Fatalf("owners approve without an operator: %v", err)
	}
	if ok, _ := s.Approved(ctx, "0xart", "alice"); !ok {
		t.Fatal("approval not recorded")
	}
}
