package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mortgage-service/domain"
	"mortgage-service/metrics"
	"mortgage-service/repository"
)

type failingCache struct {
	SetCalled bool
}

func (f *failingCache) Get(context.Context, string) (string, bool) { return "", false }

func (f *failingCache) Set(context.Context, string, string) error {
	f.SetCalled = true
	return errors.New("connection refused")
}

type fullRegistry struct {
	repository.MortgageRegistry
}

func (fullRegistry) Insert(domain.Mortgage) (uint32, error) { return 0, domain.ErrRegistryFull }

func newTestService(t *testing.T, cache repository.CacheRepository) (*MortgageService, *repository.MortgageRegistryMemory) {
	t.Helper()
	registry := repository.NewMortgageRegistryMemory()
	svc := NewMortgageService(
		NewCalculator(WithClock(fixedClock)),
		registry,
		cache,
		nil,
		metrics.New(prometheus.NewRegistry()),
	)
	return svc, registry
}

var validParams = domain.LoanParameters{ObjectCost: 100, InitialPayment: 30, Months: 12}

func TestExecute_StoresResult(t *testing.T) {
	svc, registry := newTestService(t, repository.NewMemoryCache())
	ctx := context.Background()

	first, err := svc.Execute(ctx, validParams, domain.SelectProgram(domain.ProgramBase))
	require.NoError(t, err)
	second, err := svc.Execute(ctx, validParams, domain.SelectProgram(domain.ProgramSalary))
	require.NoError(t, err)

	assert.Equal(t, uint32(0), first.ID)
	assert.Equal(t, uint32(1), second.ID)
	assert.Equal(t, 10.0, first.Aggregates.Rate)
	assert.Equal(t, 8.0, second.Aggregates.Rate)
	assert.Equal(t, 2, registry.Len())
}

func TestExecute_FailureStoresNothing(t *testing.T) {
	cache := &failingCache{}
	svc, registry := newTestService(t, cache)

	_, err := svc.Execute(context.Background(),
		domain.LoanParameters{ObjectCost: 100, InitialPayment: 10, Months: 12},
		domain.SelectProgram(domain.ProgramBase),
	)
	require.ErrorIs(t, err, domain.ErrInsufficientInitialPayment)

	assert.Equal(t, 0, registry.Len())
	assert.False(t, cache.SetCalled)

	// a failed request leaves later ones unaffected
	entry, err := svc.Execute(context.Background(), validParams, domain.SelectProgram(domain.ProgramBase))
	require.NoError(t, err)
	assert.Equal(t, uint32(0), entry.ID)
}

func TestExecute_MirrorFailureIsNotFatal(t *testing.T) {
	logger, hook := test.NewNullLogger()
	cache := &failingCache{}
	registry := repository.NewMortgageRegistryMemory()
	svc := NewMortgageService(NewCalculator(WithClock(fixedClock)), registry, cache, logger, nil)

	entry, err := svc.Execute(context.Background(), validParams, domain.SelectProgram(domain.ProgramMilitary))
	require.NoError(t, err)

	assert.Equal(t, uint32(0), entry.ID)
	assert.True(t, cache.SetCalled)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, uint32(0), hook.LastEntry().Data["id"])
}

func TestExecute_RegistryFull(t *testing.T) {
	svc := NewMortgageService(NewCalculator(), fullRegistry{}, nil, nil, nil)

	_, err := svc.Execute(context.Background(), validParams, domain.SelectProgram(domain.ProgramBase))
	assert.ErrorIs(t, err, domain.ErrRegistryFull)
}

func TestCache_Empty(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.Cache()
	assert.ErrorIs(t, err, domain.ErrEmptyRegistry)
}

func TestCache_ReturnsInserted(t *testing.T) {
	svc, _ := newTestService(t, nil)

	entry, err := svc.Execute(context.Background(), validParams, domain.SelectProgram(domain.ProgramBase))
	require.NoError(t, err)

	entries, err := svc.Cache()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry, entries[0])
}

func TestCached_ReadsMirror(t *testing.T) {
	svc, _ := newTestService(t, repository.NewMemoryCache())
	ctx := context.Background()

	entry, err := svc.Execute(ctx, validParams, domain.SelectProgram(domain.ProgramBase))
	require.NoError(t, err)

	got, err := svc.Cached(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry, got)

	_, err = svc.Cached(ctx, 42)
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestCached_NoMirror(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.Cached(context.Background(), 0)
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestCached_CorruptValue(t *testing.T) {
	cache := repository.NewMemoryCache()
	require.NoError(t, cache.Set(context.Background(), mortgageKey(7), "{not json"))
	svc, _ := newTestService(t, cache)

	_, err := svc.Cached(context.Background(), 7)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrCacheMiss)
}
