// Package listing tracks which assets are committed to a live marketplace action, so the
// same asset cannot be auctioned twice at once.
//
// A claim covers the asset id, not a number of units: a holder of several units of one
// item sells them together in a single auction (its quantity) and can list again once
// that auction is cancelled or finalized.
package listing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrAlreadyListed = errors.New("asset is already listed")

func key(contract, itemID string) string {
	return fmt.Sprintf("listing:%s:%s", contract, itemID)
}

// Redis stores one key per claimed asset whose value is the seller.
type Redis struct {
	Client *redis.Client
	TTL    time.Duration // zero keeps claims until released
}

func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

func (r *Redis) Claim(ctx context.Context, contract, itemID, seller string) error {
	ok, err := r.Client.SetNX(ctx, key(contract, itemID), seller, r.TTL).Result()
	if err != nil {
		return fmt.Errorf("failed to claim listing in redis: %w", err)
	}
	if !ok {
		return ErrAlreadyListed
	}
	return nil
}

func (r *Redis) NotifyCancelled(ctx context.Context, contract, itemID, seller string) error {
	return r.release(ctx, contract, itemID, seller)
}

func (r *Redis) NotifyFinalized(ctx context.Context, contract, itemID, seller string) error {
	return r.release(ctx, contract, itemID, seller)
}

// release deletes the claim only if seller still owns it.
func (r *Redis) release(ctx context.Context, contract, itemID, seller string) error {
	k := key(contract, itemID)
	owner, err := r.Client.Get(ctx, k).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("failed to read listing from redis: %w", err)
	}
	if owner != seller {
		return nil
	}
	if err := r.Client.Del(ctx, k).Err(); err != nil {
		return fmt.Errorf("failed to release listing in redis: %w", err)
	}
	return nil
}

func (r *Redis) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

// Memory is the in-process validator used when no Redis is configured.
type Memory struct {
	mu     sync.Mutex
	claims map[string]string
}

func NewMemory() *Memory {
	return &Memory{claims: make(map[string]string)}
}

func (m *Memory) Claim(_ context.Context, contract, itemID, seller string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(contract, itemID)
	if _, ok := m.claims[k]; ok {
		return ErrAlreadyListed
	}
	m.claims[k] = seller
	return nil
}

func (m *Memory) NotifyCancelled(ctx context.Context, contract, itemID, seller string) error {
	return m.release(contract, itemID, seller)
}

func (m *Memory) NotifyFinalized(ctx context.Context, contract, itemID, seller string) error {
	return m.release(contract, itemID, seller)
}

func (m *Memory) release(contract, itemID, seller string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(contract, itemID)
	if m.claims[k] == seller {
		delete(m.claims, k)
	}
	return nil
}

func (m *Memory) Listed(contract, itemID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.claims[key(contract, itemID)]
	return ok
}
