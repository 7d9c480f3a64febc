// Package ledger keeps the refund balances owed to outbid or non-winning participants.
//
// Balances are released only by an explicit Withdraw. A withdrawal debits the entry
// before the transfer is attempted and restores it if the transfer fails, so a
// failing receiver can retry later without affecting anyone else.
package ledger

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

var ErrNothingToWithdraw = errors.New("no refund owed")

type Ledger struct {
	mu      sync.Mutex
	entries map[string]map[string]decimal.Decimal
}

func New() *Ledger {
	return &Ledger{entries: make(map[string]map[string]decimal.Decimal)}
}

func (l *Ledger) Balance(auctionID, participant string) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entries[auctionID][participant]
}

// Credit sets the amount owed to participant, replacing any earlier entry.
func (l *Ledger) Credit(auctionID, participant string, amount decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.set(auctionID, participant, amount)
}

// Take zeroes the entry and returns what it held.
func (l *Ledger) Take(auctionID, participant string) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	prev := l.entries[auctionID][participant]
	l.set(auctionID, participant, decimal.Zero)
	return prev
}

// Restore adds amount back to the entry after a failed transfer.
func (l *Ledger) Restore(auctionID, participant string, amount decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.set(auctionID, participant, l.entries[auctionID][participant].Add(amount))
}

// Withdraw pays out the participant's balance through send.
func (l *Ledger) Withdraw(ctx context.Context, auctionID, participant string, send func(context.Context, decimal.Decimal) error) (decimal.Decimal, error) {
	amount := l.Take(auctionID, participant)
	if !amount.IsPositive() {
		return decimal.Zero, ErrNothingToWithdraw
	}
	if err := send(ctx, amount); err != nil {
		l.Restore(auctionID, participant, amount)
		return decimal.Zero, err
	}
	return amount, nil
}

// Total is the sum of every outstanding entry for the auction.
func (l *Ledger) Total(auctionID string) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	total := decimal.Zero
	for _, v := range l.entries[auctionID] {
		total = total.Add(v)
	}
	return total
}

type Entry struct {
	Participant string          `json:"participant"`
	Amount      decimal.Decimal `json:"amount"`
}

// Entries lists the non-zero balances of an auction ordered by participant.
func (l *Ledger) Entries(auctionID string) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, 0, len(l.entries[auctionID]))
	for p, v := range l.entries[auctionID] {
		out = append(out, Entry{Participant: p, Amount: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Participant < out[j].Participant })
	return out
}

func (l *Ledger) set(auctionID, participant string, amount decimal.Decimal) {
	m, ok := l.entries[auctionID]
	if !amount.IsPositive() {
		if ok {
			delete(m, participant)
		}
		return
	}
	if !ok {
		m = make(map[string]decimal.Decimal)
		l.entries[auctionID] = m
	}
	m[participant] = amount
}
