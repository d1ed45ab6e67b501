package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"finance-tracker/internal/domain"
)

const summaryGenKey = "summary:gen"

// Summaries caches aggregation results keyed by a write generation. Every
// transaction mutation bumps the generation, so entries written before the
// mutation are never read again and simply expire.
type Summaries struct {
	c   *Cache
	ttl time.Duration
}

func NewSummaries(c *Cache, ttl time.Duration) *Summaries { return &Summaries{c: c, ttl: ttl} }

func (s *Summaries) Summaries(
	ctx context.Context,
	f domain.SummaryFilter,
	load func(context.Context) ([]domain.CategorySummary, error),
) ([]domain.CategorySummary, error) {
	gen, err := s.c.RDB.Get(ctx, summaryGenKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		s.c.log.Warn("summary generation read failed, bypassing cache", zap.Error(err))
		return load(ctx)
	}
	key := fmt.Sprintf("summary:%d:%s:%s", gen, bound(f.Start), bound(f.End))
	return GetOrLoadJSON(s.c, ctx, key, s.ttl, load)
}

func (s *Summaries) Invalidate(ctx context.Context) error {
	return s.c.RDB.Incr(ctx, summaryGenKey).Err()
}

func bound(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(time.RFC3339Nano)
}
