package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/warehouse-inventory/internal/core/domain"
	"github.com/rl1809/warehouse-inventory/internal/port"
)

var ErrDuplicateRequest = errors.New("duplicate request")

const (
	defaultLowStockThreshold = 10
	rollbackTimeout          = 5 * time.Second
)

// InventoryService owns every read and mutation of products, warehouses and
// inventory records. Mutations are serialized behind one writer lock; reads
// share it, so no caller observes a half-applied multi-record write.
type InventoryService struct {
	repo   port.DatabaseRepository
	cache  port.CacheRepository
	logger *slog.Logger

	deletePolicy      domain.DeletePolicy
	lowStockThreshold int

	now   func() time.Time
	newID func() string

	mu sync.RWMutex
}

type Option func(*InventoryService)

// WithCache enables transfer idempotency keys and dashboard caching.
func WithCache(cache port.CacheRepository) Option {
	return func(s *InventoryService) { s.cache = cache }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *InventoryService) { s.logger = logger }
}

func WithDeletePolicy(policy domain.DeletePolicy) Option {
	return func(s *InventoryService) { s.deletePolicy = policy }
}

func WithLowStockThreshold(threshold int) Option {
	return func(s *InventoryService) { s.lowStockThreshold = threshold }
}

func WithClock(now func() time.Time) Option {
	return func(s *InventoryService) { s.now = now }
}

func NewInventoryService(repo port.DatabaseRepository, opts ...Option) *InventoryService {
	s := &InventoryService{
		repo:              repo,
		logger:            slog.Default(),
		deletePolicy:      domain.DeletePolicyCascade,
		lowStockThreshold: defaultLowStockThreshold,
		now:               time.Now,
		newID:             uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// mutate runs fn under the writer lock. Stores that support transactions run
// fn inside one; for the rest every write fn makes registers an undo step,
// and the steps are replayed in reverse when fn fails.
func (s *InventoryService) mutate(ctx context.Context, fn func(repo port.DatabaseRepository, undo *undoLog) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if tx, ok := s.repo.(port.Transactor); ok {
		err = tx.WithTx(ctx, func(repo port.DatabaseRepository) error {
			return fn(repo, nil)
		})
	} else {
		undo := &undoLog{}
		if err = fn(s.repo, undo); err != nil {
			s.compensate(ctx, undo)
		}
	}
	if err != nil {
		return err
	}

	s.invalidateDashboard(ctx)
	return nil
}

func (s *InventoryService) compensate(ctx context.Context, undo *undoLog) {
	if undo.empty() {
		return
	}
	rbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
	defer cancel()

	if err := undo.rollback(rbCtx); err != nil {
		s.logger.Error("CRITICAL rollback failed", "steps", undo.len(), "error", err)
		return
	}
	s.logger.Warn("rolled back partial write", "steps", undo.len())
}

func (s *InventoryService) invalidateDashboard(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateDashboard(ctx); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", "error", err)
	}
}

// Snapshot returns all entities as of one consistent read.
func (s *InventoryService) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.repo.Snapshot(ctx)
}
