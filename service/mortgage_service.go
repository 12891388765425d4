package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/sirupsen/logrus"

	"mortgage-service/domain"
	"mortgage-service/metrics"
	"mortgage-service/repository"
)

type MortgageService struct {
	calc     *Calculator
	registry repository.MortgageRegistry
	cache    repository.CacheRepository
	log      logrus.FieldLogger
	metrics  *metrics.Metrics
}

// NewMortgageService wires the calculator to the registry. cache and m may be
// nil.
func NewMortgageService(
	calc *Calculator,
	registry repository.MortgageRegistry,
	cache repository.CacheRepository,
	log logrus.FieldLogger,
	m *metrics.Metrics,
) *MortgageService {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &MortgageService{
		calc:     calc,
		registry: registry,
		cache:    cache,
		log:      log,
		metrics:  m,
	}
}

// Execute calculates a mortgage and stores it. Nothing is stored when the
// calculation fails.
func (s *MortgageService) Execute(
	ctx context.Context,
	params domain.LoanParameters,
	program domain.ProgramSelection,
) (domain.RegistryEntry, error) {

	loan, err := s.calc.Calculate(params, program)
	s.metrics.RecordCalculation(domain.Code(err))
	if err != nil {
		return domain.RegistryEntry{}, err
	}

	id, err := s.registry.Insert(loan)
	if err != nil {
		return domain.RegistryEntry{}, fmt.Errorf("store mortgage: %w", err)
	}
	s.metrics.SetRegistryEntries(s.registry.Len())

	entry := domain.RegistryEntry{ID: id, Mortgage: loan}

	// Mirror the result (not critical if it fails)
	if err := s.mirror(ctx, entry); err != nil {
		s.metrics.MirrorFailed()
		s.log.WithError(err).WithField("id", id).Warn("failed to mirror mortgage")
	}

	return entry, nil
}

// Cache returns every stored mortgage ordered by id, or ErrEmptyRegistry.
func (s *MortgageService) Cache() ([]domain.RegistryEntry, error) {
	entries := s.registry.Snapshot()
	if len(entries) == 0 {
		return nil, domain.ErrEmptyRegistry
	}
	return entries, nil
}

// Cached reads a single mortgage back from the cache mirror.
func (s *MortgageService) Cached(ctx context.Context, id uint32) (domain.RegistryEntry, error) {
	if s.cache == nil {
		return domain.RegistryEntry{}, domain.ErrCacheMiss
	}

	raw, ok := s.cache.Get(ctx, mortgageKey(id))
	if !ok {
		return domain.RegistryEntry{}, domain.ErrCacheMiss
	}

	var entry domain.RegistryEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return domain.RegistryEntry{}, fmt.Errorf("decode cached mortgage %d: %w", id, err)
	}
	return entry, nil
}

func (s *MortgageService) mirror(ctx context.Context, entry domain.RegistryEntry) error {
	if s.cache == nil {
		return nil
	}

	b, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, mortgageKey(entry.ID), string(b))
}

func mortgageKey(id uint32) string {
	return mortgageKeyPrefix + strconv.FormatUint(uint64(id), 10)
}
