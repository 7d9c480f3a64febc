package ledger_test

import (
	"context"
	"errors"
	"testing"

	"NFTAuctionHouse/internal/ledger"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCreditReplaces(t *testing.T) {
	l := ledger.New()
	l.Credit("a1", "alice", dec("1.0"))
	l.Credit("a1", "alice", dec("2.5"))

	if got := l.Balance("a1", "alice"); !got.Equal(dec("2.5")) {
		t.Fatalf("expected 2.5, got %s", got)
	}
	if got := l.Total("a1"); !got.Equal(dec("2.5")) {
		t.Fatalf("expected total 2.5, got %s", got)
	}
}

func TestWithdrawPaysAndZeroes(t *testing.T) {
	l := ledger.New()
	l.Credit("a1", "alice", dec("1.0"))

	var paid decimal.Decimal
	amount, err := l.Withdraw(context.Background(), "a1", "alice", func(_ context.Context, amt decimal.Decimal) error {
		paid = amt
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !amount.Equal(dec("1.0")) || !paid.Equal(dec("1.0")) {
		t.Fatalf("expected 1.0 paid, got amount=%s paid=%s", amount, paid)
	}
	if !l.Balance("a1", "alice").IsZero() {
		t.Fatal("balance should be zero after withdrawal")
	}

	if _, err := l.Withdraw(context.Background(), "a1", "alice", func(context.Context, decimal.Decimal) error { return nil }); !errors.Is(err, ledger.ErrNothingToWithdraw) {
		t.Fatalf("expected ErrNothingToWithdraw, got %v", err)
	}
}

func TestWithdrawRestoresOnFailedTransfer(t *testing.T) {
	l := ledger.New()
	l.Credit("a1", "bob", dec("3"))

	boom := errors.New("receiver rejected")
	var seen decimal.Decimal
	_, err := l.Withdraw(context.Background(), "a1", "bob", func(_ context.Context, amt decimal.Decimal) error {
		// the entry is already debited while the transfer runs
		seen = l.Balance("a1", "bob")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected transfer error, got %v", err)
	}
	if !seen.IsZero() {
		t.Fatalf("expected debit before transfer, saw balance %s", seen)
	}
	if got := l.Balance("a1", "bob"); !got.Equal(dec("3")) {
		t.Fatalf("expected restored balance 3, got %s", got)
	}
}

func TestEntriesAreScopedPerAuction(t *testing.T) {
	l := ledger.New()
	l.Credit("a1", "carol", dec("1"))
	l.Credit("a1", "bob", dec("2"))
	l.Credit("a2", "bob", dec("7"))

	entries := l.Entries("a1")
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Participant != "bob" || entries[1].Participant != "carol" {
		t.Fatalf("unexpected order: %+v", entries)
	}
	if got := l.Take("a2", "bob"); !got.Equal(dec("7")) {
		t.Fatalf("expected 7, got %s", got)
	}
	if len(l.Entries("a2")) != 0 {
		t.Fatal("expected no entries after take")
	}
}
