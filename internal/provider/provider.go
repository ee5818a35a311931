// Package provider fetches the official daily rate feed and normalizes it into typed rates.
package provider

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"rateservice/internal/currency"
)

// ErrNoDataAvailable is returned when neither the live feed nor the fallback data can be produced.
var ErrNoDataAvailable = errors.New("no exchange rate data available")

// FetchMode selects whether cached feed snapshots may be reused.
type FetchMode int

const (
	// FetchCached allows a recent cached snapshot to be returned.
	FetchCached FetchMode = iota
	// FetchFresh always goes to the remote feed.
	FetchFresh
)

// ParsedRate is one feed entry for a supported currency.
type ParsedRate struct {
	Currency             currency.Code       `json:"currency"`
	BuyingRate           decimal.Decimal     `json:"buying_rate"`
	SellingRate          decimal.Decimal     `json:"selling_rate"`
	EffectiveBuyingRate  decimal.NullDecimal `json:"effective_buying_rate"`
	EffectiveSellingRate decimal.NullDecimal `json:"effective_selling_rate"`
	Date                 time.Time           `json:"date"`
}

// FeedResult is the outcome of a feed fetch. UsedFallback is set when the
// rates are substitute data, and FallbackReason then says why.
type FeedResult struct {
	Rates          []ParsedRate `json:"rates"`
	Source         string       `json:"source"`
	UsedFallback   bool         `json:"used_fallback"`
	FallbackReason string       `json:"fallback_reason,omitempty"`
	FetchedAt      time.Time    `json:"fetched_at"`
}

// RatesFeed defines an interface for fetching the daily rate snapshot.
type RatesFeed interface {
	Fetch(ctx context.Context, mode FetchMode) (*FeedResult, error)
}
