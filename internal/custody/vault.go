// Package custody is a bolt-backed vault holding asset units and fund balances.
//
// Holdings are keyed by contract, item and holder. An owner authorizes the
// marketplace to move its units of a contract with SetApproval; Transfer refuses
// to move units the owner has not authorized. Fund balances are decimal strings
// keyed by account.
package custody

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"

	bolt "github.com/boltdb/bolt"
	"github.com/shopspring/decimal"
)

var (
	holdingsBucket  = []byte("holdings")
	approvalsBucket = []byte("approvals")
	balancesBucket  = []byte("balances")
)

var (
	ErrNotApproved          = errors.New("owner has not approved the marketplace for this contract")
	ErrInsufficientQuantity = errors.New("holder does not own enough units")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInvalidAmount        = errors.New("amount must be positive")
)

type Vault struct {
	db *bolt.DB
}

// Open opens (or creates) the vault file and its buckets.
func Open(path string) (*Vault, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{holdingsBucket, approvalsBucket, balancesBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Vault{db: db}, nil
}

func (v *Vault) Close() error {
	return v.db.Close()
}

func holdingKey(contract, itemID, holder string) []byte {
	return []byte(strings.Join([]string{contract, itemID, holder}, "\x00"))
}

func approvalKey(contract, owner string) []byte {
	return []byte(contract + "\x00" + owner)
}

func getQty(b *bolt.Bucket, key []byte) uint64 {
	v := b.Get(key)
	if len(v) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(v)
}

func putQty(b *bolt.Bucket, key []byte, qty uint64) error {
	if qty == 0 {
		return b.Delete(key)
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], qty)
	return b.Put(key, buf[:])
}

// Mint credits quantity units of an item to holder.
func (v *Vault) Mint(_ context.Context, contract, itemID, holder string, quantity uint64) error {
	if quantity == 0 {
		return ErrInsufficientQuantity
	}
	return v.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(holdingsBucket)
		key := holdingKey(contract, itemID, holder)
		return putQty(b, key, getQty(b, key)+quantity)
	})
}

func (v *Vault) SetApproval(_ context.Context, contract, owner string, approved bool) error {
	return v.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(approvalsBucket)
		if !approved {
			return b.Delete(approvalKey(contract, owner))
		}
		return b.Put(approvalKey(contract, owner), []byte{1})
	})
}

func (v *Vault) Approved(_ context.Context, contract, owner string) (bool, error) {
	var ok bool
	err := v.db.View(func(tx *bolt.Tx) error {
		ok = tx.Bucket(approvalsBucket).Get(approvalKey(contract, owner)) != nil
		return nil
	})
	return ok, err
}

func (v *Vault) Balance(_ context.Context, contract, itemID, holder string) (uint64, error) {
	var qty uint64
	err := v.db.View(func(tx *bolt.Tx) error {
		qty = getQty(tx.Bucket(holdingsBucket), holdingKey(contract, itemID, holder))
		return nil
	})
	return qty, err
}

// Transfer moves units from an owner that has approved the marketplace.
// The move happens in one bolt transaction, so it either fully applies or not at all.
func (v *Vault) Transfer(_ context.Context, contract, itemID string, quantity uint64, from, to string) error {
	return v.move(contract, itemID, quantity, from, to, true)
}

// Revert moves units back without checking the current holder's approval.
func (v *Vault) Revert(_ context.Context, contract, itemID string, quantity uint64, from, to string) error {
	return v.move(contract, itemID, quantity, from, to, false)
}

func (v *Vault) move(contract, itemID string, quantity uint64, from, to string, checkApproval bool) error {
	return v.db.Update(func(tx *bolt.Tx) error {
		if checkApproval && tx.Bucket(approvalsBucket).Get(approvalKey(contract, from)) == nil {
			return fmt.Errorf("%w: %s", ErrNotApproved, from)
		}
		b := tx.Bucket(holdingsBucket)
		fromKey := holdingKey(contract, itemID, from)
		held := getQty(b, fromKey)
		if held < quantity {
			return fmt.Errorf("%w: %s holds %d of %s/%s, needs %d", ErrInsufficientQuantity, from, held, contract, itemID, quantity)
		}
		if from == to {
			return nil
		}
		if err := putQty(b, fromKey, held-quantity); err != nil {
			return err
		}
		toKey := holdingKey(contract, itemID, to)
		return putQty(b, toKey, getQty(b, toKey)+quantity)
	})
}

func getAmount(b *bolt.Bucket, account string) (decimal.Decimal, error) {
	v := b.Get([]byte(account))
	if v == nil {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(string(v))
}

func putAmount(b *bolt.Bucket, account string, amount decimal.Decimal) error {
	if amount.IsZero() {
		return b.Delete([]byte(account))
	}
	return b.Put([]byte(account), []byte(amount.String()))
}

// Deposit credits external funds to account.
func (v *Vault) Deposit(_ context.Context, account string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	return v.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(balancesBucket)
		cur, err := getAmount(b, account)
		if err != nil {
			return err
		}
		return putAmount(b, account, cur.Add(amount))
	})
}

func (v *Vault) FundsBalance(_ context.Context, account string) (decimal.Decimal, error) {
	var out decimal.Decimal
	err := v.db.View(func(tx *bolt.Tx) error {
		var err error
		out, err = getAmount(tx.Bucket(balancesBucket), account)
		return err
	})
	return out, err
}

// Send moves amount between two accounts atomically.
func (v *Vault) Send(_ context.Context, from, to string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	return v.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(balancesBucket)
		src, err := getAmount(b, from)
		if err != nil {
			return err
		}
		if src.LessThan(amount) {
			return fmt.Errorf("%w: %s has %s, needs %s", ErrInsufficientFunds, from, src, amount)
		}
		if from == to {
			return nil
		}
		dst, err := getAmount(b, to)
		if err != nil {
			return err
		}
		if err := putAmount(b, from, src.Sub(amount)); err != nil {
			return err
		}
		return putAmount(b, to, dst.Add(amount))
	})
}
