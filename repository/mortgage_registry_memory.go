package repository

import (
	"math"
	"sync"

	"mortgage-service/domain"
)

// MortgageRegistryMemory is an in-memory, append-only MortgageRegistry.
// Inserts are serialized; snapshots may run concurrently with each other.
type MortgageRegistryMemory struct {
	mu     sync.RWMutex
	nextID uint32
	full   bool
	data   []domain.RegistryEntry
}

// NewMortgageRegistryMemory creates an empty registry whose first id is 0.
func NewMortgageRegistryMemory() *MortgageRegistryMemory {
	return &MortgageRegistryMemory{
		data: []domain.RegistryEntry{},
	}
}

// Insert stores a copy of loan and returns the id assigned to it.
func (r *MortgageRegistryMemory) Insert(loan domain.Mortgage) (uint32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.full {
		return 0, domain.ErrRegistryFull
	}

	id := r.nextID
	r.data = append(r.data, domain.RegistryEntry{ID: id, Mortgage: loan.Clone()})

	if id == math.MaxUint32 {
		r.full = true
	} else {
		r.nextID++
	}
	return id, nil
}

// Snapshot returns copies of all entries ordered by id. The result is empty,
// not nil, when nothing has been stored.
func (r *MortgageRegistryMemory) Snapshot() []domain.RegistryEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.RegistryEntry, len(r.data))
	for i, e := range r.data {
		out[i] = domain.RegistryEntry{ID: e.ID, Mortgage: e.Mortgage.Clone()}
	}
	return out
}

func (r *MortgageRegistryMemory) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data)
}
