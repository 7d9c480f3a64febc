package custody_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"NFTAuctionHouse/internal/custody"

	"github.com/shopspring/decimal"
)

func openVault(t *testing.T) *custody.Vault {
	t.Helper()
	v, err := custody.Open(filepath.Join(t.TempDir(), "vault.db"))
	if err != nil {
		t.Fatalf("open vault: %v", err)
	}
	t.Cleanup(func() { v.Close() })
	return v
}

func TestTransferRequiresApproval(t *testing.T) {
	v := openVault(t)
	ctx := context.Background()
	if err := v.Mint(ctx, "0xc", "7", "alice", 3); err != nil {
		t.Fatalf("mint: %v", err)
	}

	if err := v.Transfer(ctx, "0xc", "7", 1, "alice", "bob"); !errors.Is(err, custody.ErrNotApproved) {
		t.Fatalf("expected ErrNotApproved, got %v", err)
	}
	if err := v.SetApproval(ctx, "0xc", "alice", true); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := v.Transfer(ctx, "0xc", "7", 2, "alice", "bob"); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if err := v.Transfer(ctx, "0xc", "7", 2, "alice", "bob"); !errors.Is(err, custody.ErrInsufficientQuantity) {
		t.Fatalf("expected ErrInsufficientQuantity, got %v", err)
	}

	alice, _ := v.Balance(ctx, "0xc", "7", "alice")
	bob, _ := v.Balance(ctx, "0xc", "7", "bob")
	if alice != 1 || bob != 2 {
		t.Fatalf("expected alice=1 bob=2, got alice=%d bob=%d", alice, bob)
	}

	if err := v.Revert(ctx, "0xc", "7", 2, "bob", "alice"); err != nil {
		t.Fatalf("revert without bob's approval: %v", err)
	}
	if alice, _ := v.Balance(ctx, "0xc", "7", "alice"); alice != 3 {
		t.Fatalf("expected alice=3 after revert, got %d", alice)
	}
}

func TestSendMovesFunds(t *testing.T) {
	v := openVault(t)
	ctx := context.Background()
	if err := v.Deposit(ctx, "alice", decimal.RequireFromString("1.5")); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if err := v.Send(ctx, "alice", "escrow", decimal.RequireFromString("2")); !errors.Is(err, custody.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if err := v.Send(ctx, "alice", "escrow", decimal.RequireFromString("1.25")); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := v.Send(ctx, "alice", "escrow", decimal.Zero); !errors.Is(err, custody.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	alice, _ := v.FundsBalance(ctx, "alice")
	escrow, _ := v.FundsBalance(ctx, "escrow")
	if !alice.Equal(decimal.RequireFromString("0.25")) || !escrow.Equal(decimal.RequireFromString("1.25")) {
		t.Fatalf("expected alice=0.25 escrow=1.25, got %s %s", alice, escrow)
	}
}

func TestVaultPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.db")
	ctx := context.Background()
	v, err := custody.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_ = v.Mint(ctx, "0xc", "1", "alice", 1)
	_ = v.Deposit(ctx, "alice", decimal.NewFromInt(5))
	v.Close()

	v, err = custody.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer v.Close()
	if n, _ := v.Balance(ctx, "0xc", "1", "alice"); n != 1 {
		t.Fatalf("holding lost across reopen, got %d", n)
	}
	if bal, _ := v.FundsBalance(ctx, "alice"); !bal.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("balance lost across reopen, got %s", bal)
	}
}
