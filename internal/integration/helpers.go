//go:build integration

package integration

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"rateservice/internal/calendar"
	"rateservice/internal/currency"
	"rateservice/internal/repository"
	"rateservice/internal/testkit"
)

func testDB() *sql.DB { return testkit.Global().DB() }

func testRDB() *redis.Client { return testkit.Global().Redis() }

// resetTestData truncates the rates table and flushes the current Redis database.
func resetTestData(t *testing.T) {
	t.Helper()

	if err := testkit.TruncateRates(context.Background(), testDB()); err != nil {
		t.Fatalf("failed to truncate exchange_rates: %v", err)
	}
	if err := testRDB().FlushDB(context.Background()).Err(); err != nil {
		t.Fatalf("failed to flush redis: %v", err)
	}
}

// testContext returns a context with a 30-second deadline tied to the test's cleanup.
func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func newRepo() repository.RateRepository {
	return repository.NewPostgresRateRepository(testDB())
}

func nopLogger() *zap.SugaredLogger { return zap.NewNop().Sugar() }

func day(month time.Month, d int) time.Time {
	return calendar.Date(2025, month, d)
}

// seedRate inserts an active record and fails the test on error.
func seedRate(t *testing.T, repo repository.RateRepository, id string, code currency.Code, date time.Time, buying, selling string) *repository.RateRecord {
	t.Helper()
	rec, err := repo.Create(context.Background(), &repository.RateRecord{
		ID:          id,
		Currency:    code,
		BuyingRate:  decimal.RequireFromString(buying),
		SellingRate: decimal.RequireFromString(selling),
		Date:        date,
		Source:      "TCMB",
		IsActive:    true,
	})
	if err != nil {
		t.Fatalf("seed %s %s: %v", code, calendar.FormatDate(date), err)
	}
	return rec
}
