//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rateservice/internal/currency"
	"rateservice/internal/repository"
)

func TestCreateAndFind(t *testing.T) {
	resetTestData(t)
	ctx := testContext(t)
	repo := newRepo()

	id := uuid.NewString()
	eff := decimal.NewNullDecimal(decimal.RequireFromString("41.7495"))
	created, err := repo.Create(ctx, &repository.RateRecord{
		ID:                  id,
		Currency:            currency.USD,
		BuyingRate:          decimal.RequireFromString("41.7787"),
		SellingRate:         decimal.RequireFromString("41.8540"),
		EffectiveBuyingRate: eff,
		Date:                day(10, 17),
		Source:              "TCMB",
	})
	require.NoError(t, err)
	assert.Equal(t, id, created.ID)
	assert.True(t, created.IsActive)
	assert.Equal(t, day(10, 17), created.Date)

	found, err := repo.FindByCurrencyAndDate(ctx, currency.USD, day(10, 17))
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, id, found.ID)
	assert.True(t, found.SellingRate.Equal(decimal.RequireFromString("41.854")))
	assert.True(t, found.EffectiveBuyingRate.Valid)
	assert.False(t, found.EffectiveSellingRate.Valid)

	missing, err := repo.FindByCurrencyAndDate(ctx, currency.EUR, day(10, 17))
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCreate_SameKeyUpdatesExistingRow(t *testing.T) {
	resetTestData(t)
	ctx := testContext(t)
	repo := newRepo()

	first := seedRate(t, repo, uuid.NewString(), currency.EUR, day(10, 17), "48.7712", "48.8591")
	second := seedRate(t, repo, uuid.NewString(), currency.EUR, day(10, 17), "48.8000", "48.9000")

	assert.Equal(t, first.ID, second.ID, "the (currency, date) key must stay unique")
	assert.True(t, second.BuyingRate.Equal(decimal.RequireFromString("48.8")))

	_, total, err := repo.List(ctx, repository.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestUpdate(t *testing.T) {
	resetTestData(t)
	ctx := testContext(t)
	repo := newRepo()

	rec := seedRate(t, repo, uuid.NewString(), currency.GBP, day(10, 17), "55.1", "55.3")
	rec.BuyingRate = decimal.RequireFromString("55.2")
	rec.Source = "FALLBACK"

	updated, err := repo.Update(ctx, rec)
	require.NoError(t, err)
	assert.True(t, updated.BuyingRate.Equal(decimal.RequireFromString("55.2")))
	assert.Equal(t, "FALLBACK", updated.Source)
	assert.Equal(t, rec.CreatedAt, updated.CreatedAt)
	assert.False(t, updated.UpdatedAt.Before(rec.UpdatedAt))

	rec.ID = uuid.NewString()
	_, err = repo.Update(ctx, rec)
	assert.ErrorIs(t, err, repository.ErrRecordNotFound)
}

func TestLatestPerCurrency_WithGaps(t *testing.T) {
	resetTestData(t)
	ctx := testContext(t)
	repo := newRepo()

	seedRate(t, repo, uuid.NewString(), currency.USD, day(10, 15), "41.6", "41.7")
	seedRate(t, repo, uuid.NewString(), currency.USD, day(10, 17), "41.7787", "41.854")
	seedRate(t, repo, uuid.NewString(), currency.EUR, day(10, 10), "48.5", "48.6")
	seedRate(t, repo, uuid.NewString(), currency.GBP, day(10, 16), "55.1", "55.3")

	latest, err := repo.LatestPerCurrency(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 3)

	byCode := map[currency.Code]repository.RateRecord{}
	for _, r := range latest {
		byCode[r.Currency] = r
	}
	assert.Equal(t, day(10, 17), byCode[currency.USD].Date)
	assert.Equal(t, day(10, 10), byCode[currency.EUR].Date, "a currency that missed syncs still reports its last record")
	assert.Equal(t, day(10, 16), byCode[currency.GBP].Date)

	one, err := repo.LatestForCurrency(ctx, currency.USD)
	require.NoError(t, err)
	require.NotNil(t, one)
	assert.Equal(t, day(10, 17), one.Date)
}

func TestListFiltersAndPaging(t *testing.T) {
	resetTestData(t)
	ctx := testContext(t)
	repo := newRepo()

	for d := 13; d <= 17; d++ {
		seedRate(t, repo, uuid.NewString(), currency.USD, day(10, d), "41.0", "41.1")
		seedRate(t, repo, uuid.NewString(), currency.EUR, day(10, d), "48.0", "48.1")
	}

	page, total, err := repo.List(ctx, repository.ListFilter{Limit: 3, Offset: 0})
	require.NoError(t, err)
	assert.Equal(t, 10, total)
	require.Len(t, page, 3)
	assert.Equal(t, day(10, 17), page[0].Date)
	assert.Equal(t, currency.EUR, page[0].Currency)
	assert.Equal(t, currency.USD, page[1].Currency)

	start, end := day(10, 14), day(10, 15)
	page, total, err = repo.List(ctx, repository.ListFilter{Currency: currency.USD, StartDate: &start, EndDate: &end, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, page, 2)
	assert.Equal(t, day(10, 15), page[0].Date)
	assert.Equal(t, day(10, 14), page[1].Date)

	history, err := repo.History(ctx, currency.EUR, day(10, 15), day(10, 17))
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, day(10, 15), history[0].Date, "history is oldest first")

	today, err := repo.ByDate(ctx, day(10, 16))
	require.NoError(t, err)
	require.Len(t, today, 2)
	assert.Equal(t, currency.EUR, today[0].Currency)
}

func TestDeactivate(t *testing.T) {
	resetTestData(t)
	ctx := testContext(t)
	repo := newRepo()

	old := seedRate(t, repo, uuid.NewString(), currency.USD, day(10, 16), "41.6", "41.7")
	newest := seedRate(t, repo, uuid.NewString(), currency.USD, day(10, 17), "41.7787", "41.854")

	require.NoError(t, repo.Deactivate(ctx, newest.ID))

	got, err := repo.GetByID(ctx, newest.ID)
	require.NoError(t, err)
	assert.Nil(t, got, "inactive records are invisible")

	latest, err := repo.LatestForCurrency(ctx, currency.USD)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, old.ID, latest.ID)

	assert.ErrorIs(t, repo.Deactivate(ctx, newest.ID), repository.ErrRecordNotFound)

	// The row is kept, and the key is free for a new active record.
	var rows int
	require.NoError(t, testDB().QueryRowContext(context.Background(), "SELECT COUNT(*) FROM exchange_rates").Scan(&rows))
	assert.Equal(t, 2, rows)

	replacement := seedRate(t, repo, uuid.NewString(), currency.USD, day(10, 17), "41.8", "41.9")
	assert.NotEqual(t, newest.ID, replacement.ID)
}

func TestSummary(t *testing.T) {
	resetTestData(t)
	ctx := testContext(t)
	repo := newRepo()

	empty, err := repo.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Total)
	assert.Nil(t, empty.LastUpdateDate)

	seedRate(t, repo, uuid.NewString(), currency.USD, day(10, 16), "41.6", "41.7")
	seedRate(t, repo, uuid.NewString(), currency.USD, day(10, 17), "41.7", "41.8")
	seedRate(t, repo, uuid.NewString(), currency.GBP, day(10, 17), "55.1", "55.3")

	s, err := repo.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 2, s.Currencies)
	require.NotNil(t, s.LastUpdateDate)
	assert.Equal(t, day(10, 17), s.LastUpdateDate.UTC())
}
