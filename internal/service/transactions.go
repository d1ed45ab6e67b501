package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"finance-tracker/internal/domain"
	"finance-tracker/pkg/utils"
)

// SummaryCache fronts the aggregation query. *cache.Summaries implements it.
type SummaryCache interface {
	Summaries(ctx context.Context, f domain.SummaryFilter, load func(context.Context) ([]domain.CategorySummary, error)) ([]domain.CategorySummary, error)
	Invalidate(ctx context.Context) error
}

type noCache struct{}

func (noCache) Summaries(ctx context.Context, _ domain.SummaryFilter, load func(context.Context) ([]domain.CategorySummary, error)) ([]domain.CategorySummary, error) {
	return load(ctx)
}

func (noCache) Invalidate(context.Context) error { return nil }

type TransactionService struct {
	repo  domain.TransactionRepository
	cache SummaryCache
	log   *zap.Logger
	// Now 可在测试中替换
	Now func() time.Time
}

// NewTransactionService wires the store; cache may be nil.
func NewTransactionService(repo domain.TransactionRepository, cache SummaryCache, log *zap.Logger) *TransactionService {
	if cache == nil {
		cache = noCache{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &TransactionService{repo: repo, cache: cache, log: log}
}

func (s *TransactionService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC().Truncate(time.Microsecond)
}

func (s *TransactionService) Create(ctx context.Context, in TransactionInput) (*domain.Transaction, error) {
	t, err := apply(in, domain.Transaction{}, true, s.now())
	if err != nil {
		return nil, err
	}
	t.ID = utils.NewID()
	if err := s.repo.Create(ctx, &t); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	s.invalidate(ctx)
	return &t, nil
}

// Update merges patch onto the stored record, validates the result and saves
// the full record.
func (s *TransactionService) Update(ctx context.Context, id string, patch TransactionInput) (*domain.Transaction, error) {
	cur, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get transaction %s: %w", id, err)
	}
	t, err := apply(patch, *cur, false, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, &t); err != nil {
		return nil, fmt.Errorf("save transaction %s: %w", id, err)
	}
	s.invalidate(ctx)
	return &t, nil
}

func (s *TransactionService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *TransactionService) Get(ctx context.Context, id string) (*domain.Transaction, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get transaction %s: %w", id, err)
	}
	return t, nil
}

// List returns matching transactions, newest first.
func (s *TransactionService) List(ctx context.Context, f domain.TransactionFilter) ([]domain.Transaction, error) {
	out, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

// Summarize runs the two-stage aggregation: the store groups by
// (category, subcategory), then Rollup groups by category.
func (s *TransactionService) Summarize(ctx context.Context, f domain.SummaryFilter) ([]domain.CategorySummary, error) {
	return s.cache.Summaries(ctx, f, func(ctx context.Context) ([]domain.CategorySummary, error) {
		groups, err := s.repo.GroupTotals(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("group transactions: %w", err)
		}
		return Rollup(groups), nil
	})
}

func (s *TransactionService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		// 写入已成功，缓存失效失败只记录
		s.log.Warn("summary cache invalidate failed", zap.Error(err))
	}
}
