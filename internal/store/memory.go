package store

import (
	"errors"
	"sort"
	"sync"

	"NFTAuctionHouse/internal/models"
)

var (
	ErrNotFound  = errors.New("auction not found")
	ErrDuplicate = errors.New("auction id already exists")
)

// Memory is the authoritative auction arena keyed by auction id.
// Records are never deleted; finished auctions only leave the active index.
type Memory struct {
	mu           sync.RWMutex
	auctions     map[string]*models.Auction
	bids         map[string][]models.Bid
	dutch        map[string]models.DutchConfig
	active       map[string]struct{}
	bySeller     map[string][]string
	byCollection map[string][]string
}

func NewMemory() *Memory {
	return &Memory{
		auctions:     make(map[string]*models.Auction),
		bids:         make(map[string][]models.Bid),
		dutch:        make(map[string]models.DutchConfig),
		active:       make(map[string]struct{}),
		bySeller:     make(map[string][]string),
		byCollection: make(map[string][]string),
	}
}

// Insert stores a new auction, its optional decay config, and adds it to the active index.
func (m *Memory) Insert(a *models.Auction, cfg *models.DutchConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.auctions[a.ID]; ok {
		return ErrDuplicate
	}
	m.auctions[a.ID] = a.Clone()
	if cfg != nil {
		m.dutch[a.ID] = *cfg
	}
	m.active[a.ID] = struct{}{}
	m.bySeller[a.Seller] = append(m.bySeller[a.Seller], a.ID)
	m.byCollection[a.AssetContract] = append(m.byCollection[a.AssetContract], a.ID)
	return nil
}

func (m *Memory) Exists(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.auctions[id]
	return ok
}

func (m *Memory) Get(id string) (*models.Auction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.auctions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return a.Clone(), nil
}

// Put replaces an existing record.
func (m *Memory) Put(a *models.Auction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.auctions[a.ID]; !ok {
		return ErrNotFound
	}
	m.auctions[a.ID] = a.Clone()
	return nil
}

func (m *Memory) AppendBid(id string, b models.Bid) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.auctions[id]; !ok {
		return ErrNotFound
	}
	m.bids[id] = append(m.bids[id], b)
	return nil
}

// MarkRefunded flags every outstanding history entry of bidder as refunded.
func (m *Memory) MarkRefunded(id, bidder string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	bids := m.bids[id]
	for i := range bids {
		if bids[i].Bidder == bidder {
			bids[i].Refunded = true
		}
	}
}

func (m *Memory) Bids(id string) []models.Bid {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Bid, len(m.bids[id]))
	copy(out, m.bids[id])
	return out
}

func (m *Memory) DutchConfig(id string) (models.DutchConfig, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfg, ok := m.dutch[id]
	return cfg, ok
}

// Deactivate removes id from the active index. It reports whether the id was active.
func (m *Memory) Deactivate(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.active[id]; !ok {
		return false
	}
	delete(m.active, id)
	return true
}

func (m *Memory) IsActive(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.active[id]
	return ok
}

func (m *Memory) ActiveIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.active))
	for id := range m.active {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (m *Memory) BySeller(seller string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.bySeller[seller]...)
}

func (m *Memory) ByCollection(contract string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.byCollection[contract]...)
}
