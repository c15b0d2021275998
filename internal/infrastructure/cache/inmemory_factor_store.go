package cache

import (
	"context"
	"sync"

	"github.com/nvictorme/nikola-sub002/internal/domain/pricing"
)

// InMemoryFactorStore keeps the factor table in process memory.
// It serves single-instance deployments with Redis disabled and tests.
// WARNING: tables written here are not shared across instances.
type InMemoryFactorStore struct {
	mu    sync.RWMutex
	table pricing.FactorTable
}

// NewInMemoryFactorStore creates an empty store; Get returns defaults until
// a table is Set.
func NewInMemoryFactorStore() *InMemoryFactorStore {
	return &InMemoryFactorStore{}
}

// Get returns a copy of the stored table or the defaults
func (s *InMemoryFactorStore) Get(_ context.Context) pricing.FactorTable {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.table == nil {
		return pricing.DefaultFactorTable()
	}
	return s.table.Clone()
}

// Set validates and replaces the stored table
func (s *InMemoryFactorStore) Set(_ context.Context, table pricing.FactorTable) error {
	if err := table.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = table.Clone()
	return nil
}

var _ pricing.FactorStore = (*InMemoryFactorStore)(nil)
