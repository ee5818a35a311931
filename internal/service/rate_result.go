package service

import (
	"time"

	"github.com/shopspring/decimal"

	"rateservice/internal/calendar"
	"rateservice/internal/repository"
)

// RateResult represents a rate record returned by the service layer.
// EffectiveBuyingRate and EffectiveSellingRate are nil when the feed had no banknote quotation.
type RateResult struct {
	ID                   string
	Currency             string
	BuyingRate           decimal.Decimal
	SellingRate          decimal.Decimal
	EffectiveBuyingRate  *decimal.Decimal
	EffectiveSellingRate *decimal.Decimal
	Date                 string
	Source               string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// RatePage is one page of FindAll.
type RatePage struct {
	Items      []RateResult
	Total      int
	Page       int
	Limit      int
	TotalPages int
}

// CurrencyStats is the latest snapshot of one currency with its day-over-day change.
type CurrencyStats struct {
	Currency      string
	BuyingRate    decimal.Decimal
	SellingRate   decimal.Decimal
	Date          string
	PreviousDate  string
	Change        decimal.Decimal
	ChangePercent decimal.Decimal
}

// Stats aggregates the stored rates.
type Stats struct {
	TotalRecords   int
	Currencies     int
	LastUpdateDate *string
	Latest         []CurrencyStats
}

// CurrencyInfo describes one supported currency.
type CurrencyInfo struct {
	Code   string
	Name   string
	IsBase bool
}

// Conversion is the result of Convert. Rate is the effective from→to rate; RateDates
// holds the date of every latest rate used, keyed by currency.
type Conversion struct {
	From      string
	To        string
	Amount    decimal.Decimal
	Result    decimal.Decimal
	Rate      decimal.Decimal
	RateDates map[string]string
}

func rateResultFromRepo(r *repository.RateRecord) RateResult {
	res := RateResult{
		ID:          r.ID,
		Currency:    r.Currency.String(),
		BuyingRate:  r.BuyingRate,
		SellingRate: r.SellingRate,
		Date:        calendar.FormatDate(r.Date),
		Source:      r.Source,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.EffectiveBuyingRate.Valid {
		v := r.EffectiveBuyingRate.Decimal
		res.EffectiveBuyingRate = &v
	}
	if r.EffectiveSellingRate.Valid {
		v := r.EffectiveSellingRate.Decimal
		res.EffectiveSellingRate = &v
	}
	return res
}

func rateResultsFromRepo(recs []repository.RateRecord) []RateResult {
	out := make([]RateResult, 0, len(recs))
	for i := range recs {
		out = append(out, rateResultFromRepo(&recs[i]))
	}
	return out
}
