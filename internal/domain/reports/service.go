package reports

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"tillpoint/internal/core/apperror"
	"tillpoint/pkg/logger"
)

// Cache stores rendered reports. Implementations may be a no-op.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Invalidate(ctx context.Context, storeID string) error
}

// NopCache satisfies Cache without storing anything.
type NopCache struct{}

func (NopCache) Get(context.Context, string, any) (bool, error)           { return false, nil }
func (NopCache) Set(context.Context, string, any, time.Duration) error   { return nil }
func (NopCache) Invalidate(context.Context, string) error                { return nil }

const cacheTTL = 5 * time.Minute

// Service builds sales reports with a read-through cache.
type Service struct {
	repo  Repository
	cache Cache
}

// NewService creates a reports service.
func NewService(repo Repository, cache Cache) *Service {
	if cache == nil {
		cache = NopCache{}
	}
	return &Service{repo: repo, cache: cache}
}

// SalesReport builds the date-bucketed report with a per-status summary.
func (s *Service) SalesReport(ctx context.Context, storeID string, from, to time.Time, granularity Granularity) (*SalesReport, error) {
	if granularity == "" {
		granularity = ByDay
	}
	if !granularity.Valid() {
		return nil, apperror.NewValidation("unknown granularity").
			WithDetail("field", "granularity").
			WithDetail("value", string(granularity))
	}
	if to.Before(from) {
		return nil, apperror.NewValidation("report range is inverted").
			WithDetail("from", from).
			WithDetail("to", to)
	}

	key := cacheKey(storeID, from, to, granularity)
	var cached SalesReport
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		logger.Warn(ctx, "report cache read failed", "key", key, "error", err)
	}
	if hit {
		return &cached, nil
	}

	buckets, err := s.repo.SalesByPeriod(ctx, storeID, from, to, granularity)
	if err != nil {
		return nil, err
	}
	summary, err := s.repo.SummaryByStatus(ctx, storeID, from, to)
	if err != nil {
		return nil, err
	}

	report := &SalesReport{
		StoreID:     storeID,
		From:        from,
		To:          to,
		Granularity: granularity,
		Buckets:     buckets,
		Summary:     summary,
		GeneratedAt: time.Now().UTC(),
	}

	if err := s.cache.Set(ctx, key, report, cacheTTL); err != nil {
		logger.Warn(ctx, "report cache write failed", "key", key, "error", err)
	}

	return report, nil
}

// Export writes the report as gzipped JSON, for download endpoints.
func (s *Service) Export(ctx context.Context, w io.Writer, storeID string, from, to time.Time, granularity Granularity) error {
	report, err := s.SalesReport(ctx, storeID, from, to, granularity)
	if err != nil {
		return err
	}

	gz := gzip.NewWriter(w)
	if err := json.NewEncoder(gz).Encode(report); err != nil {
		gz.Close()
		return fmt.Errorf("encode report: %w", err)
	}
	return gz.Close()
}

// Invalidate drops cached reports for a store. Called after sale mutations.
func (s *Service) Invalidate(ctx context.Context, storeID string) error {
	return s.cache.Invalidate(ctx, storeID)
}

func cacheKey(storeID string, from, to time.Time, granularity Granularity) string {
	return fmt.Sprintf("reports:sales:%s:%s:%s:%s",
		storeID,
		from.Format("2006-01-02"),
		to.Format("2006-01-02"),
		granularity,
	)
}
