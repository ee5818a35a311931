package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rateservice/internal/calendar"
	"rateservice/internal/config"
	"rateservice/internal/currency"
)

var testCacheCfg = config.CacheConfig{LatestRatesTTLSec: 600}

// Friday 17 Oct 2025, 10:00 in Istanbul.
var testNow = time.Date(2025, time.October, 17, 7, 0, 0, 0, time.UTC)

func newTestRateService(repo *memRepo) *RateService {
	svc := NewRateService(repo, nil, zap.NewNop().Sugar(), testCacheCfg, time.UTC)
	svc.now = func() time.Time { return testNow }
	return svc
}

func d(month time.Month, day int) time.Time {
	return calendar.Date(2025, month, day)
}

func TestFindAll_PagingAndOrder(t *testing.T) {
	repo := newMemRepo()
	for day := 13; day <= 17; day++ {
		repo.seed(currency.USD, d(time.October, day), "41.0")
		repo.seed(currency.EUR, d(time.October, day), "48.0")
	}
	svc := newTestRateService(repo)

	page, err := svc.FindAll(context.Background(), RateFilter{Page: 2, Limit: 3})
	require.NoError(t, err)

	assert.Equal(t, 10, page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 3, page.Limit)
	assert.Equal(t, 4, page.TotalPages)
	require.Len(t, page.Items, 3)
	// Page 1: 17 EUR, 17 USD, 16 EUR. Page 2 starts at 16 USD.
	assert.Equal(t, "2025-10-16", page.Items[0].Date)
	assert.Equal(t, "USD", page.Items[0].Currency)
	assert.Equal(t, "2025-10-15", page.Items[1].Date)
	assert.Equal(t, "EUR", page.Items[1].Currency)
}

func TestFindAll_Filters(t *testing.T) {
	repo := newMemRepo()
	for day := 13; day <= 17; day++ {
		repo.seed(currency.USD, d(time.October, day), "41.0")
		repo.seed(currency.GBP, d(time.October, day), "56.0")
	}
	svc := newTestRateService(repo)

	page, err := svc.FindAll(context.Background(), RateFilter{
		Currency:  "gbp",
		StartDate: "2025-10-14",
		EndDate:   "2025-10-16",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, defaultPage, page.Page)
	assert.Equal(t, defaultLimit, page.Limit)
	for _, r := range page.Items {
		assert.Equal(t, "GBP", r.Currency)
	}
}

func TestFindAll_EmptyIsNotAnError(t *testing.T) {
	svc := newTestRateService(newMemRepo())

	page, err := svc.FindAll(context.Background(), RateFilter{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
	assert.Empty(t, page.Items)
	assert.Zero(t, page.TotalPages)
}

func TestFindAll_Validation(t *testing.T) {
	svc := newTestRateService(newMemRepo())

	tests := []struct {
		name string
		f    RateFilter
		want error
	}{
		{"unsupported currency", RateFilter{Currency: "JPY"}, ErrUnsupportedCurrency},
		{"base currency has no records", RateFilter{Currency: "TRY"}, ErrUnsupportedCurrency},
		{"bad start date", RateFilter{StartDate: "17/10/2025"}, ErrInvalidDate},
		{"bad end date", RateFilter{EndDate: "2025-13-01"}, ErrInvalidDate},
		{"inverted range", RateFilter{StartDate: "2025-10-17", EndDate: "2025-10-01"}, ErrInvalidDateRange},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.FindAll(context.Background(), tc.f)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestFindAll_RepositoryError(t *testing.T) {
	svc := NewRateService(failingRepo{err: errors.New("db down")}, nil, zap.NewNop().Sugar(), testCacheCfg, time.UTC)

	_, err := svc.FindAll(context.Background(), RateFilter{})
	assert.ErrorIs(t, err, ErrInternal)
}

func TestFindAll_HugePageIsEmpty(t *testing.T) {
	repo := newMemRepo()
	repo.seed(currency.USD, d(time.October, 17), "41.0")
	svc := newTestRateService(repo)

	page, err := svc.FindAll(context.Background(), RateFilter{Page: 100000000000000000, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, math.MaxInt32/10+1, page.Page)
}

func TestNormalizePaging(t *testing.T) {
	tests := []struct {
		page, limit         int
		wantPage, wantLimit int
	}{
		{0, 0, 1, 20},
		{-3, -1, 1, 20},
		{4, 50, 4, 50},
		{1, 500, 1, 100},
		{math.MaxInt, 20, math.MaxInt32/20 + 1, 20},
		{100000000000000000, 100, math.MaxInt32/100 + 1, 100},
	}
	for _, tc := range tests {
		p, l := normalizePaging(tc.page, tc.limit)
		assert.Equal(t, tc.wantPage, p)
		assert.Equal(t, tc.wantLimit, l)
	}
}

func TestFindOne(t *testing.T) {
	repo := newMemRepo()
	rec := repo.seed(currency.USD, d(time.October, 17), "41.8540")
	svc := newTestRateService(repo)

	got, err := svc.FindOne(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.True(t, got.SellingRate.Equal(decimal.RequireFromString("41.854")))

	_, err = svc.FindOne(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrInvalidID)

	_, err = svc.FindOne(context.Background(), "3f1c2f4e-8f5a-4a8e-9b7e-0d2a1c3b4e5f")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeactivate_HidesRecord(t *testing.T) {
	repo := newMemRepo()
	rec := repo.seed(currency.USD, d(time.October, 17), "41.8540")
	older := repo.seed(currency.USD, d(time.October, 16), "41.7000")
	svc := newTestRateService(repo)

	require.NoError(t, svc.Deactivate(context.Background(), rec.ID))

	_, err := svc.FindOne(context.Background(), rec.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	latest, err := svc.GetLatestRateForCurrency(context.Background(), "USD")
	require.NoError(t, err)
	assert.Equal(t, older.ID, latest.ID, "inactive records are not latest")

	assert.ErrorIs(t, svc.Deactivate(context.Background(), rec.ID), ErrNotFound)
	assert.ErrorIs(t, svc.Deactivate(context.Background(), "nope"), ErrInvalidID)
}

func TestGetLatestRates_HandlesSyncGaps(t *testing.T) {
	repo := newMemRepo()
	// USD missed four syncs; EUR is current.
	repo.seed(currency.USD, d(time.October, 12), "41.50")
	usdLatest := repo.seed(currency.USD, d(time.October, 16), "41.80")
	repo.seed(currency.EUR, d(time.October, 16), "48.70")
	eurLatest := repo.seed(currency.EUR, d(time.October, 17), "48.85")
	svc := newTestRateService(repo)

	rates, err := svc.GetLatestRates(context.Background())
	require.NoError(t, err)
	require.Len(t, rates, 2)

	ids := map[string]string{}
	for _, r := range rates {
		ids[r.Currency] = r.ID
	}
	assert.Equal(t, usdLatest.ID, ids["USD"])
	assert.Equal(t, eurLatest.ID, ids["EUR"])
}

func TestGetLatestRateForCurrency(t *testing.T) {
	repo := newMemRepo()
	repo.seed(currency.GBP, d(time.October, 12), "55.00")
	want := repo.seed(currency.GBP, d(time.October, 16), "56.10")
	svc := newTestRateService(repo)

	got, err := svc.GetLatestRateForCurrency(context.Background(), "gbp")
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, "2025-10-16", got.Date)

	_, err = svc.GetLatestRateForCurrency(context.Background(), "EUR")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetLatestRateForCurrency(context.Background(), "XYZ")
	assert.ErrorIs(t, err, ErrUnsupportedCurrency)
}

func TestGetLatestRates_UsesCache(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	repo := newMemRepo()
	repo.seed(currency.USD, d(time.October, 17), "41.8540")
	svc := NewRateService(repo, rdb, zap.NewNop().Sugar(), testCacheCfg, time.UTC)

	first, err := svc.GetLatestRates(context.Background())
	require.NoError(t, err)
	second, err := svc.GetLatestRates(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, repo.calls["LatestPerCurrency"])
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.True(t, first[0].SellingRate.Equal(second[0].SellingRate))
	assert.Equal(t, 600*time.Second, mr.TTL(cacheKeyLatestRates))

	// A deactivation drops the snapshot.
	require.NoError(t, svc.Deactivate(context.Background(), first[0].ID))
	assert.False(t, mr.Exists(cacheKeyLatestRates))
}

func TestGetRateHistory(t *testing.T) {
	repo := newMemRepo()
	for day := 1; day <= 17; day++ {
		repo.seed(currency.EUR, d(time.October, day), "48.0")
	}
	repo.seed(currency.USD, d(time.October, 10), "41.0")
	svc := newTestRateService(repo)

	t.Run("explicit range ascending", func(t *testing.T) {
		got, err := svc.GetRateHistory(context.Background(), "EUR", "2025-10-05", "2025-10-08")
		require.NoError(t, err)
		require.Len(t, got, 4)
		assert.Equal(t, "2025-10-05", got[0].Date)
		assert.Equal(t, "2025-10-08", got[3].Date)
	})

	t.Run("defaults to the last 30 days", func(t *testing.T) {
		got, err := svc.GetRateHistory(context.Background(), "EUR", "", "")
		require.NoError(t, err)
		assert.Len(t, got, 17)
	})

	t.Run("empty range is not an error", func(t *testing.T) {
		got, err := svc.GetRateHistory(context.Background(), "GBP", "2025-10-01", "2025-10-17")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("inverted range", func(t *testing.T) {
		_, err := svc.GetRateHistory(context.Background(), "EUR", "2025-10-10", "2025-10-01")
		assert.ErrorIs(t, err, ErrInvalidDateRange)
	})
}

func TestGetTodayRates_UsesBusinessTimezone(t *testing.T) {
	istanbul, err := time.LoadLocation("Europe/Istanbul")
	require.NoError(t, err)

	repo := newMemRepo()
	repo.seed(currency.USD, d(time.October, 17), "41.8")
	repo.seed(currency.EUR, d(time.October, 18), "48.8")
	repo.seed(currency.USD, d(time.October, 18), "41.9")

	svc := NewRateService(repo, nil, zap.NewNop().Sugar(), testCacheCfg, istanbul)
	// 22:30 UTC on the 17th is already the 18th in Istanbul.
	svc.now = func() time.Time { return time.Date(2025, time.October, 17, 22, 30, 0, 0, time.UTC) }

	got, err := svc.GetTodayRates(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "EUR", got[0].Currency)
	assert.Equal(t, "USD", got[1].Currency)
	for _, r := range got {
		assert.Equal(t, "2025-10-18", r.Date)
	}
}

func TestGetStats(t *testing.T) {
	repo := newMemRepo()
	// Monday 13 Oct compares with Friday 10 Oct.
	repo.seed(currency.USD, d(time.October, 10), "40.0000")
	repo.seed(currency.USD, d(time.October, 13), "39.5000")
	// EUR has no previous business day record.
	repo.seed(currency.EUR, d(time.October, 13), "48.0000")
	svc := newTestRateService(repo)

	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalRecords)
	assert.Equal(t, 2, stats.Currencies)
	require.NotNil(t, stats.LastUpdateDate)
	assert.Equal(t, "2025-10-13", *stats.LastUpdateDate)
	require.Len(t, stats.Latest, 2)

	eur, usd := stats.Latest[0], stats.Latest[1]
	assert.Equal(t, "EUR", eur.Currency)
	assert.True(t, eur.Change.IsZero())
	assert.True(t, eur.ChangePercent.IsZero())

	assert.Equal(t, "USD", usd.Currency)
	assert.Equal(t, "2025-10-10", usd.PreviousDate)
	assert.True(t, usd.Change.Equal(decimal.RequireFromString("-0.5")), "got %s", usd.Change)
	assert.True(t, usd.ChangePercent.Equal(decimal.RequireFromString("-1.25")), "got %s", usd.ChangePercent)
}

func TestGetStats_EmptyStore(t *testing.T) {
	svc := newTestRateService(newMemRepo())

	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalRecords)
	assert.Nil(t, stats.LastUpdateDate)
	assert.Empty(t, stats.Latest)
}

func TestSupportedCurrencies(t *testing.T) {
	svc := newTestRateService(newMemRepo())

	got := svc.SupportedCurrencies()
	require.Len(t, got, 4)
	assert.Equal(t, CurrencyInfo{Code: "TRY", Name: "Turkish Lira", IsBase: true}, got[3])
	for _, c := range got[:3] {
		assert.False(t, c.IsBase)
	}
}
