// Package api implements HTTP handlers for the exchange rate service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"rateservice/internal/provider"
	"rateservice/internal/service"
)

const ratePlaces = 4

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error" example:"unsupported currency"`
}

// RateResponse represents one stored rate record
type RateResponse struct {
	ID                   string  `json:"id" example:"123e4567-e89b-12d3-a456-426614174000"`
	Currency             string  `json:"currency" example:"USD"`
	BuyingRate           string  `json:"buying_rate" example:"41.7787"`
	SellingRate          string  `json:"selling_rate" example:"41.8540"`
	EffectiveBuyingRate  *string `json:"effective_buying_rate,omitempty" example:"41.7495"`
	EffectiveSellingRate *string `json:"effective_selling_rate,omitempty" example:"41.9168"`
	Date                 string  `json:"date" example:"2025-10-17"`
	Source               string  `json:"source" example:"TCMB"`
	CreatedAt            string  `json:"created_at" example:"2025-10-17T00:05:02Z"`
	UpdatedAt            string  `json:"updated_at" example:"2025-10-17T00:05:02Z"`
}

// RateListResponse represents a page of rate records
type RateListResponse struct {
	Data       []RateResponse `json:"data"`
	Total      int            `json:"total" example:"42"`
	Page       int            `json:"page" example:"1"`
	Limit      int            `json:"limit" example:"20"`
	TotalPages int            `json:"total_pages" example:"3"`
}

// CurrencyStatsResponse represents the latest rate of one currency and its day-over-day change
type CurrencyStatsResponse struct {
	Currency      string `json:"currency" example:"USD"`
	BuyingRate    string `json:"buying_rate" example:"41.7787"`
	SellingRate   string `json:"selling_rate" example:"41.8540"`
	Date          string `json:"date" example:"2025-10-17"`
	PreviousDate  string `json:"previous_date" example:"2025-10-16"`
	Change        string `json:"change" example:"0.0412"`
	ChangePercent string `json:"change_percent" example:"0.0985"`
}

// StatsResponse represents the rate statistics
type StatsResponse struct {
	TotalRecords   int                     `json:"total_records" example:"1095"`
	Currencies     int                     `json:"currencies" example:"3"`
	LastUpdateDate *string                 `json:"last_update_date" example:"2025-10-17"`
	Latest         []CurrencyStatsResponse `json:"latest"`
}

// CurrencyResponse represents a supported currency
type CurrencyResponse struct {
	Code   string `json:"code" example:"USD"`
	Name   string `json:"name" example:"US Dollar"`
	IsBase bool   `json:"is_base" example:"false"`
}

// ConversionResponse represents a currency conversion result
type ConversionResponse struct {
	From      string            `json:"from" example:"USD"`
	To        string            `json:"to" example:"EUR"`
	Amount    string            `json:"amount" example:"100"`
	Result    string            `json:"result" example:"87.8344"`
	Rate      string            `json:"rate" example:"0.878344"`
	RateDates map[string]string `json:"rate_dates"`
}

// SyncResponse represents the outcome of a manual sync
type SyncResponse struct {
	Trigger        string         `json:"trigger" example:"manual"`
	Source         string         `json:"source" example:"TCMB"`
	UsedFallback   bool           `json:"used_fallback" example:"false"`
	FallbackReason string         `json:"fallback_reason,omitempty" example:"tcmb request failed: context deadline exceeded"`
	Received       int            `json:"received" example:"3"`
	Persisted      int            `json:"persisted" example:"3"`
	Failed         int            `json:"failed" example:"0"`
	DurationMs     int64          `json:"duration_ms" example:"412"`
	Rates          []RateResponse `json:"rates"`
}

// EnqueueResponse represents an accepted asynchronous sync
type EnqueueResponse struct {
	TaskID string `json:"task_id" example:"8b6f1c1e-4c1a-4d8a-9f0b-2a4e0c5d7f10"`
	Status string `json:"status" example:"queued"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeServiceError maps service and provider errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidID),
		errors.Is(err, service.ErrUnsupportedCurrency),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrInvalidDateRange):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Rate not found"})
	case errors.Is(err, service.ErrRateUnavailable):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	case errors.Is(err, provider.ErrNoDataAvailable):
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "No exchange rate data available"})
	default:
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal error"})
	}
}

func formatRate(d decimal.Decimal) string {
	return d.StringFixed(ratePlaces)
}

func formatOptionalRate(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := formatRate(*d)
	return &s
}

func rateResponse(r *service.RateResult) RateResponse {
	return RateResponse{
		ID:                   r.ID,
		Currency:             r.Currency,
		BuyingRate:           formatRate(r.BuyingRate),
		SellingRate:          formatRate(r.SellingRate),
		EffectiveBuyingRate:  formatOptionalRate(r.EffectiveBuyingRate),
		EffectiveSellingRate: formatOptionalRate(r.EffectiveSellingRate),
		Date:                 r.Date,
		Source:               r.Source,
		CreatedAt:            r.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:            r.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func rateResponses(rates []service.RateResult) []RateResponse {
	out := make([]RateResponse, 0, len(rates))
	for i := range rates {
		out = append(out, rateResponse(&rates[i]))
	}
	return out
}

func statsResponse(s *service.Stats) StatsResponse {
	resp := StatsResponse{
		TotalRecords:   s.TotalRecords,
		Currencies:     s.Currencies,
		LastUpdateDate: s.LastUpdateDate,
		Latest:         make([]CurrencyStatsResponse, 0, len(s.Latest)),
	}
	for _, c := range s.Latest {
		resp.Latest = append(resp.Latest, CurrencyStatsResponse{
			Currency:      c.Currency,
			BuyingRate:    formatRate(c.BuyingRate),
			SellingRate:   formatRate(c.SellingRate),
			Date:          c.Date,
			PreviousDate:  c.PreviousDate,
			Change:        formatRate(c.Change),
			ChangePercent: formatRate(c.ChangePercent),
		})
	}
	return resp
}

func syncResponse(res *service.SyncResult) SyncResponse {
	return SyncResponse{
		Trigger:        string(res.Trigger),
		Source:         res.Source,
		UsedFallback:   res.UsedFallback,
		FallbackReason: res.FallbackReason,
		Received:       res.Received,
		Persisted:      res.Persisted,
		Failed:         res.Failed,
		DurationMs:     res.Duration.Milliseconds(),
		Rates:          rateResponses(res.Records),
	}
}
