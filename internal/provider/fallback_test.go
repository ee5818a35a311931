package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"rateservice/internal/calendar"
	"rateservice/internal/currency"
)

func TestFallbackFeed_Fetch(t *testing.T) {
	istanbul, err := time.LoadLocation("Europe/Istanbul")
	require.NoError(t, err)
	fixedNow := time.Date(2025, time.October, 16, 22, 30, 0, 0, time.UTC)

	t.Run("live succeeds", func(t *testing.T) {
		live := new(MockFeed)
		want := &FeedResult{Source: SourceTCMB, Rates: []ParsedRate{{Currency: currency.USD}}}
		live.On("Fetch", mock.Anything, FetchCached).Return(want, nil)

		p := NewFallbackFeed(live, istanbul)
		got, err := p.Fetch(context.Background(), FetchCached)

		assert.NoError(t, err)
		assert.Same(t, want, got)
		live.AssertExpectations(t)
	})

	t.Run("live fails, fallback dated today", func(t *testing.T) {
		live := new(MockFeed)
		live.On("Fetch", mock.Anything, FetchFresh).Return(nil, errors.New("dial tcp: timeout"))

		p := NewFallbackFeed(live, istanbul)
		p.now = func() time.Time { return fixedNow }

		got, err := p.Fetch(context.Background(), FetchFresh)
		require.NoError(t, err)
		assert.True(t, got.UsedFallback)
		assert.Equal(t, SourceFallback, got.Source)
		assert.Contains(t, got.FallbackReason, "dial tcp")

		require.Len(t, got.Rates, len(currency.Quoted()))
		for i, r := range got.Rates {
			assert.Equal(t, currency.Quoted()[i], r.Currency)
			assert.Equal(t, calendar.Date(2025, time.October, 17), r.Date, "today in Istanbul")
			assert.True(t, r.SellingRate.IsPositive())
			assert.True(t, r.BuyingRate.IsPositive())
		}
		assert.True(t, got.Rates[0].SellingRate.Equal(decimal.RequireFromString("39.1866")))
	})

	t.Run("canceled caller gets no fallback", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		live := new(MockFeed)
		live.On("Fetch", mock.Anything, FetchFresh).
			Run(func(mock.Arguments) { cancel() }).
			Return(nil, errors.New("tcmb request failed: context canceled"))

		p := NewFallbackFeed(live, istanbul)
		got, err := p.Fetch(ctx, FetchFresh)

		assert.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, got)
	})

	t.Run("expired deadline gets no fallback", func(t *testing.T) {
		ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
		defer cancel()
		live := new(MockFeed)
		live.On("Fetch", mock.Anything, FetchCached).Return(nil, errors.New("tcmb request failed: context deadline exceeded"))

		_, err := NewFallbackFeed(live, istanbul).Fetch(ctx, FetchCached)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("empty fallback table is fatal", func(t *testing.T) {
		live := new(MockFeed)
		live.On("Fetch", mock.Anything, FetchCached).Return(nil, errors.New("down"))

		p := NewFallbackFeed(live, istanbul)
		p.quotes = nil

		_, err := p.Fetch(context.Background(), FetchCached)
		assert.ErrorIs(t, err, ErrNoDataAvailable)
	})

	t.Run("broken fallback quote is fatal", func(t *testing.T) {
		live := new(MockFeed)
		live.On("Fetch", mock.Anything, FetchCached).Return(nil, errors.New("down"))

		p := NewFallbackFeed(live, istanbul)
		p.quotes = []fallbackQuote{{currency.USD, "39.1", "not-a-number", "1", "1"}}

		_, err := p.Fetch(context.Background(), FetchCached)
		assert.ErrorIs(t, err, ErrNoDataAvailable)
	})
}
