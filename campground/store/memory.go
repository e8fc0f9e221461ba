// Package store provides an in-memory campground.Store.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/warp/campsite-engine/campground"
	"github.com/warp/campsite-engine/generic"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory enforces the overlap invariant with an explicit scan under its
// write lock, the same guarantee the SQL stores get from the database.
type Memory struct {
	mu   sync.RWMutex
	data *tables

	// inTx marks the view handed to a WithTx callback. Its parent already
	// holds mu for the whole transaction.
	inTx bool
}

type tables struct {
	sites       map[generic.ResourceID]campground.Site
	commitments map[string]campground.Commitment
	blocks      map[string]campground.Block
}

func newTables() tables {
	return tables{
		sites:       make(map[generic.ResourceID]campground.Site),
		commitments: make(map[string]campground.Commitment),
		blocks:      make(map[string]campground.Block),
	}
}

func NewMemory() *Memory {
	t := newTables()
	return &Memory{data: &t}
}

func (m *Memory) lock() func() {
	if m.inTx {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

func (m *Memory) rlock() func() {
	if m.inTx {
		return func() {}
	}
	m.mu.RLock()
	return m.mu.RUnlock
}

// =============================================================================
// SITES
// =============================================================================

func (m *Memory) SaveSite(_ context.Context, site campground.Site) error {
	defer m.lock()()
	m.data.sites[site.ID] = site
	return nil
}

func (m *Memory) GetSite(_ context.Context, id generic.ResourceID) (*campground.Site, error) {
	defer m.rlock()()
	site, ok := m.data.sites[id]
	if !ok {
		return nil, nil
	}
	return &site, nil
}

func (m *Memory) ListSites(_ context.Context) ([]campground.Site, error) {
	defer m.rlock()()
	result := make([]campground.Site, 0, len(m.data.sites))
	for _, site := range m.data.sites {
		result = append(result, site)
	}
	campground.SortSites(result)
	return result, nil
}

// =============================================================================
// COMMITMENTS
// =============================================================================

func (m *Memory) CreateCommitment(_ context.Context, c campground.Commitment) error {
	defer m.lock()()
	if _, exists := m.data.commitments[c.ID]; exists {
		return fmt.Errorf("commitment %s already exists", c.ID)
	}
	if err := m.checkOverlapLocked(c); err != nil {
		return err
	}
	m.data.commitments[c.ID] = c
	return nil
}

func (m *Memory) UpdateCommitment(_ context.Context, c campground.Commitment) error {
	defer m.lock()()
	if _, exists := m.data.commitments[c.ID]; !exists {
		return fmt.Errorf("commitment %s: %w", c.ID, generic.ErrNotFound)
	}
	if err := m.checkOverlapLocked(c); err != nil {
		return err
	}
	m.data.commitments[c.ID] = c
	return nil
}

// checkOverlapLocked rejects c if another occupying commitment on the same
// site overlaps it. Caller holds m.mu.
func (m *Memory) checkOverlapLocked(c campground.Commitment) error {
	if !c.Occupies() {
		return nil
	}
	for _, other := range m.data.commitments {
		if other.ID == c.ID || !other.Occupies() || other.ResourceID != c.ResourceID {
			continue
		}
		if c.Range().Overlaps(other.Range()) {
			return &generic.OverlapError{ResourceID: c.ResourceID, Range: c.Range(), ExistingID: other.ID}
		}
	}
	return nil
}

func (m *Memory) GetCommitment(_ context.Context, id string) (*campground.Commitment, error) {
	defer m.rlock()()
	c, ok := m.data.commitments[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// ListCommitments returns matches ordered by check-in, then id.
func (m *Memory) ListCommitments(_ context.Context, filter campground.CommitmentFilter) ([]campground.Commitment, error) {
	defer m.rlock()()
	var result []campground.Commitment
	for _, c := range m.data.commitments {
		if filter.Match(c) {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CheckIn.Equal(result[j].CheckIn) {
			return result[i].CheckIn.Before(result[j].CheckIn)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// =============================================================================
// BLOCKS
// =============================================================================

func (m *Memory) SaveBlock(_ context.Context, b campground.Block) error {
	defer m.lock()()
	m.data.blocks[b.ID] = b
	return nil
}

func (m *Memory) GetBlock(_ context.Context, id string) (*campground.Block, error) {
	defer m.rlock()()
	b, ok := m.data.blocks[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (m *Memory) DeleteBlock(_ context.Context, id string) error {
	defer m.lock()()
	delete(m.data.blocks, id)
	return nil
}

func (m *Memory) ListBlocks(_ context.Context) ([]campground.Block, error) {
	defer m.rlock()()
	result := make([]campground.Block, 0, len(m.data.blocks))
	for _, b := range m.data.blocks {
		result = append(result, b)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Start.Equal(result[j].Start) {
			return result[i].Start.Before(result[j].Start)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// Reset clears all data.
func (m *Memory) Reset(_ context.Context) error {
	defer m.lock()()
	*m.data = newTables()
	return nil
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// WithTx holds the write lock for the whole of fn and restores the previous
// contents if fn fails. fn must only use the Store it is given.
func (m *Memory) WithTx(_ context.Context, fn func(campground.Store) error) error {
	defer m.lock()()
	saved := m.data.clone()
	if err := fn(&Memory{data: m.data, inTx: true}); err != nil {
		*m.data = saved
		return err
	}
	return nil
}

func (t *tables) clone() tables {
	c := tables{
		sites:       make(map[generic.ResourceID]campground.Site, len(t.sites)),
		commitments: make(map[string]campground.Commitment, len(t.commitments)),
		blocks:      make(map[string]campground.Block, len(t.blocks)),
	}
	for k, v := range t.sites {
		c.sites[k] = v
	}
	for k, v := range t.commitments {
		c.commitments[k] = v
	}
	for k, v := range t.blocks {
		c.blocks[k] = v
	}
	return c
}

var _ campground.TxStore = (*Memory)(nil)
