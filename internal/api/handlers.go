package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"rateservice/internal/service"
)

// HandleListRates godoc
// @Summary List stored rates
// @Description Returns a page of active rate records ordered by date (newest first), then currency.
// @Tags rates
// @Produce json
// @Security ApiKeyAuth
// @Param currency query string false "Currency code (USD, EUR, GBP)"
// @Param startDate query string false "Inclusive start date (YYYY-MM-DD)"
// @Param endDate query string false "Inclusive end date (YYYY-MM-DD)"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size (max 100)" default(20)
// @Success 200 {object} RateListResponse "Page of rates"
// @Failure 400 {object} ErrorResponse "Invalid filter"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /rates [get]
func HandleListRates(svc service.RateServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		page, ok := optionalInt(q.Get("page"))
		if !ok {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "page must be an integer"})
			return
		}
		limit, ok := optionalInt(q.Get("limit"))
		if !ok {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "limit must be an integer"})
			return
		}

		res, err := svc.FindAll(r.Context(), service.RateFilter{
			Currency:  q.Get("currency"),
			StartDate: q.Get("startDate"),
			EndDate:   q.Get("endDate"),
			Page:      page,
			Limit:     limit,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, RateListResponse{
			Data:       rateResponses(res.Items),
			Total:      res.Total,
			Page:       res.Page,
			Limit:      res.Limit,
			TotalPages: res.TotalPages,
		})
	}
}

// HandleGetRate godoc
// @Summary Get a rate by ID
// @Tags rates
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Rate ID (UUID)" format(uuid)
// @Success 200 {object} RateResponse "Rate found"
// @Failure 400 {object} ErrorResponse "Invalid id format"
// @Failure 404 {object} ErrorResponse "Unknown id"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /rates/{id} [get]
func HandleGetRate(svc service.RateServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rate, err := svc.FindOne(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rateResponse(rate))
	}
}

// HandleDeactivateRate godoc
// @Summary Deactivate a rate
// @Description Hides a rate record from every query. The record is kept for audit.
// @Tags rates
// @Security ApiKeyAuth
// @Param id path string true "Rate ID (UUID)" format(uuid)
// @Success 204 "Deactivated"
// @Failure 400 {object} ErrorResponse "Invalid id format"
// @Failure 404 {object} ErrorResponse "Unknown id"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /rates/{id} [delete]
func HandleDeactivateRate(svc service.RateServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Deactivate(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleGetLatestRates godoc
// @Summary Get the latest rate of every currency
// @Description Returns, per currency, the record with the most recent date, even when syncs were missed.
// @Tags rates
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} RateResponse "Latest rates"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /rates/latest [get]
func HandleGetLatestRates(svc service.RateServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rates, err := svc.GetLatestRates(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rateResponses(rates))
	}
}

// HandleGetLatestRate godoc
// @Summary Get the latest rate of one currency
// @Tags rates
// @Produce json
// @Security ApiKeyAuth
// @Param currency path string true "Currency code (USD, EUR, GBP)"
// @Success 200 {object} RateResponse "Latest rate"
// @Failure 400 {object} ErrorResponse "Unsupported currency"
// @Failure 404 {object} ErrorResponse "No rate stored yet"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /rates/latest/{currency} [get]
func HandleGetLatestRate(svc service.RateServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rate, err := svc.GetLatestRateForCurrency(r.Context(), chi.URLParam(r, "currency"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rateResponse(rate))
	}
}

// HandleGetRateHistory godoc
// @Summary Get the rate history of one currency
// @Description Returns records in the inclusive date range, oldest first. Defaults to the last 30 days.
// @Tags rates
// @Produce json
// @Security ApiKeyAuth
// @Param currency path string true "Currency code (USD, EUR, GBP)"
// @Param startDate query string false "Inclusive start date (YYYY-MM-DD)"
// @Param endDate query string false "Inclusive end date (YYYY-MM-DD)"
// @Success 200 {array} RateResponse "Rate history"
// @Failure 400 {object} ErrorResponse "Invalid currency or date range"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /rates/history/{currency} [get]
func HandleGetRateHistory(svc service.RateServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		rates, err := svc.GetRateHistory(r.Context(), chi.URLParam(r, "currency"), q.Get("startDate"), q.Get("endDate"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rateResponses(rates))
	}
}

// HandleGetTodayRates godoc
// @Summary Get today's rates
// @Description Returns the records dated today in the service timezone.
// @Tags rates
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} RateResponse "Today's rates"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /rates/today [get]
func HandleGetTodayRates(svc service.RateServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rates, err := svc.GetTodayRates(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rateResponses(rates))
	}
}

// HandleGetStats godoc
// @Summary Get rate statistics
// @Description Record counts, the latest date, and each currency's change against the previous business day.
// @Tags rates
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} StatsResponse "Statistics"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /rates/stats [get]
func HandleGetStats(svc service.RateServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.GetStats(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, statsResponse(stats))
	}
}

// HandleGetCurrencies godoc
// @Summary List supported currencies
// @Tags rates
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} CurrencyResponse "Supported currencies"
// @Router /rates/currencies [get]
func HandleGetCurrencies(svc service.RateServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		currencies := svc.SupportedCurrencies()
		resp := make([]CurrencyResponse, 0, len(currencies))
		for _, c := range currencies {
			resp = append(resp, CurrencyResponse{Code: c.Code, Name: c.Name, IsBase: c.IsBase})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// HandleConvert godoc
// @Summary Convert an amount between currencies
// @Description Uses the latest selling rates. Conversions between two foreign currencies go through TRY. The result is rounded to 4 decimal places and the rate to 6; a non-zero value smaller than that keeps 4 significant digits.
// @Tags rates
// @Produce json
// @Security ApiKeyAuth
// @Param amount query string true "Amount to convert" example(100)
// @Param from query string true "Source currency (USD, EUR, GBP, TRY)"
// @Param to query string true "Target currency (USD, EUR, GBP, TRY)"
// @Success 200 {object} ConversionResponse "Conversion result"
// @Failure 400 {object} ErrorResponse "Invalid amount or currency"
// @Failure 422 {object} ErrorResponse "A required rate is unavailable"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /rates/convert [get]
func HandleConvert(svc service.RateServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		rawAmount, from, to := strings.TrimSpace(q.Get("amount")), q.Get("from"), q.Get("to")
		if rawAmount == "" || from == "" || to == "" {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "amount, from and to query params are required"})
			return
		}

		amount, err := decimal.NewFromString(rawAmount)
		if err != nil {
			writeServiceError(w, service.ErrInvalidAmount)
			return
		}

		conv, err := svc.Convert(r.Context(), amount, from, to)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, ConversionResponse{
			From:      conv.From,
			To:        conv.To,
			Amount:    conv.Amount.String(),
			Result:    conv.Result.String(),
			Rate:      conv.Rate.String(),
			RateDates: conv.RateDates,
		})
	}
}

func optionalInt(s string) (int, bool) {
	if s == "" {
		return 0, true
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}
