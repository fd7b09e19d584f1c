package reports

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillpoint/internal/core/apperror"
	"tillpoint/internal/core/types"
)

type stubReportRepo struct {
	buckets []Bucket
	summary []StatusRow
	calls   int
}

func (r *stubReportRepo) SalesByPeriod(ctx context.Context, storeID string, from, to time.Time, granularity Granularity) ([]Bucket, error) {
	r.calls++
	return r.buckets, nil
}

func (r *stubReportRepo) SummaryByStatus(ctx context.Context, storeID string, from, to time.Time) ([]StatusRow, error) {
	return r.summary, nil
}

// memCache is a map-backed Cache that round-trips values through JSON the
// way the redis-backed one does.
type memCache struct {
	data map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (c *memCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *memCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *memCache) Invalidate(ctx context.Context, storeID string) error {
	for key := range c.data {
		if strings.Contains(key, ":"+storeID+":") {
			delete(c.data, key)
		}
	}
	return nil
}

func reportWindow() (time.Time, time.Time) {
	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 0, 30)
}

func TestSalesReport_BuildsAndCaches(t *testing.T) {
	repo := &stubReportRepo{
		buckets: []Bucket{{
			Period:      "2026-08-01",
			SalesCount:  3,
			TotalAmount: types.MustMoney("900"),
			PaidAmount:  types.MustMoney("700"),
			NetPaid:     types.MustMoney("700"),
		}},
		summary: []StatusRow{{Status: "paid", SalesCount: 2}},
	}
	cache := newMemCache()
	svc := NewService(repo, cache)
	ctx := context.Background()
	from, to := reportWindow()

	report, err := svc.SalesReport(ctx, "store-001", from, to, ByDay)
	require.NoError(t, err)
	require.Len(t, report.Buckets, 1)
	assert.Equal(t, int64(3), report.Buckets[0].SalesCount)
	assert.Len(t, report.Summary, 1)
	assert.Equal(t, 1, repo.calls)

	// Second read is served from cache.
	again, err := svc.SalesReport(ctx, "store-001", from, to, ByDay)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls)
	require.Len(t, again.Buckets, 1)

	bucket := again.Buckets[0]
	assert.Equal(t, "2026-08-01", bucket.Period)
	assert.Equal(t, int64(3), bucket.SalesCount)
	assert.True(t, bucket.TotalAmount.Equal(types.MustMoney("900")))
	assert.True(t, bucket.PaidAmount.Equal(types.MustMoney("700")))
	assert.True(t, bucket.NetPaid.Equal(types.MustMoney("700")))
}

func TestSalesReport_DefaultsToDay(t *testing.T) {
	repo := &stubReportRepo{}
	svc := NewService(repo, nil)
	from, to := reportWindow()

	report, err := svc.SalesReport(context.Background(), "store-001", from, to, "")
	require.NoError(t, err)
	assert.Equal(t, ByDay, report.Granularity)
}

func TestSalesReport_Validation(t *testing.T) {
	svc := NewService(&stubReportRepo{}, nil)
	ctx := context.Background()
	from, to := reportWindow()

	_, err := svc.SalesReport(ctx, "store-001", from, to, Granularity("hour"))
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)

	_, err = svc.SalesReport(ctx, "store-001", to, from, ByDay)
	appErr, ok = apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestInvalidate_DropsCachedReports(t *testing.T) {
	repo := &stubReportRepo{}
	cache := newMemCache()
	svc := NewService(repo, cache)
	ctx := context.Background()
	from, to := reportWindow()

	_, err := svc.SalesReport(ctx, "store-001", from, to, ByMonth)
	require.NoError(t, err)
	require.Equal(t, 1, repo.calls)

	require.NoError(t, svc.Invalidate(ctx, "store-001"))

	_, err = svc.SalesReport(ctx, "store-001", from, to, ByMonth)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
}

func TestExport_GzippedJSON(t *testing.T) {
	repo := &stubReportRepo{
		buckets: []Bucket{{Period: "2026-08", SalesCount: 7}},
	}
	svc := NewService(repo, nil)
	from, to := reportWindow()

	var buf bytes.Buffer
	require.NoError(t, svc.Export(context.Background(), &buf, "store-001", from, to, ByMonth))

	gz, err := gzip.NewReader(&buf)
	require.NoError(t, err)
	defer gz.Close()

	var report SalesReport
	require.NoError(t, json.NewDecoder(gz).Decode(&report))
	require.Len(t, report.Buckets, 1)
	assert.Equal(t, int64(7), report.Buckets[0].SalesCount)
	assert.Equal(t, ByMonth, report.Granularity)
}
