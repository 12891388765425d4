package repository

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"mortgage-service/domain"
)

func sampleMortgage(cost float64) domain.Mortgage {
	return domain.Mortgage{
		Params:  domain.LoanParameters{ObjectCost: cost, InitialPayment: cost / 2, Months: 12},
		Program: domain.SelectProgram(domain.ProgramBase),
		Aggregates: domain.Aggregates{
			Rate:            10,
			LoanSum:         cost / 2,
			MonthlyPayment:  1,
			LastPaymentDate: "2027-01-01",
		},
	}
}

func TestMortgageRegistryMemory_SequentialIDs(t *testing.T) {
	r := NewMortgageRegistryMemory()

	for want := uint32(0); want < 10; want++ {
		id, err := r.Insert(sampleMortgage(float64(want)))
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}
	assert.Equal(t, 10, r.Len())
}

func TestMortgageRegistryMemory_SnapshotEmpty(t *testing.T) {
	r := NewMortgageRegistryMemory()

	snap := r.Snapshot()
	assert.NotNil(t, snap)
	assert.Empty(t, snap)
}

func TestMortgageRegistryMemory_SnapshotReturnsInserted(t *testing.T) {
	r := NewMortgageRegistryMemory()
	loan := sampleMortgage(100)

	id, err := r.Insert(loan)
	require.NoError(t, err)

	snap := r.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, id, snap[0].ID)
	assert.Equal(t, loan, snap[0].Mortgage)
}

func TestMortgageRegistryMemory_EntriesAreIsolated(t *testing.T) {
	r := NewMortgageRegistryMemory()
	loan := sampleMortgage(100)

	_, err := r.Insert(loan)
	require.NoError(t, err)

	// mutate both the caller's copy and a snapshot copy
	*loan.Program.Base = false
	snap := r.Snapshot()
	*snap[0].Program.Base = false

	again := r.Snapshot()
	assert.True(t, *again[0].Program.Base)
}

func TestMortgageRegistryMemory_ConcurrentInsert(t *testing.T) {
	const n = 500
	r := NewMortgageRegistryMemory()

	var (
		mu  sync.Mutex
		ids = make(map[uint32]struct{}, n)
		g   errgroup.Group
	)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			id, err := r.Insert(sampleMortgage(float64(i)))
			if err != nil {
				return err
			}
			mu.Lock()
			ids[id] = struct{}{}
			mu.Unlock()
			return nil
		})
	}
	require.NoError(t, g.Wait())

	require.Len(t, ids, n)
	for want := uint32(0); want < n; want++ {
		_, ok := ids[want]
		assert.True(t, ok, "missing id %d", want)
	}

	snap := r.Snapshot()
	require.Len(t, snap, n)
	for i, e := range snap {
		assert.Equal(t, uint32(i), e.ID)
	}
}

func TestMortgageRegistryMemory_ConcurrentSnapshotSeesWholeEntries(t *testing.T) {
	r := NewMortgageRegistryMemory()

	var g errgroup.Group
	for i := 0; i < 100; i++ {
		g.Go(func() error {
			_, err := r.Insert(sampleMortgage(100))
			return err
		})
		g.Go(func() error {
			for _, e := range r.Snapshot() {
				if e.Params.ObjectCost != 100 || e.Aggregates.LastPaymentDate == "" {
					t.Errorf("torn entry %d: %+v", e.ID, e)
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, 100, r.Len())
}

func TestMortgageRegistryMemory_Full(t *testing.T) {
	r := NewMortgageRegistryMemory()
	r.nextID = math.MaxUint32

	id, err := r.Insert(sampleMortgage(1))
	require.NoError(t, err)
	assert.Equal(t, uint32(math.MaxUint32), id)

	_, err = r.Insert(sampleMortgage(2))
	assert.ErrorIs(t, err, domain.ErrRegistryFull)
	assert.Equal(t, 1, r.Len())
}
