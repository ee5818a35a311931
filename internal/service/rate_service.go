// Package service implements rate synchronization, queries and currency conversion.
package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"rateservice/internal/calendar"
	"rateservice/internal/config"
	"rateservice/internal/currency"
	"rateservice/internal/repository"
)

const (
	defaultPage         = 1
	defaultLimit        = 20
	maxLimit            = 100
	defaultHistoryDays  = 30
	maxOffset           = math.MaxInt32
	changePercentPlaces = 4
)

// RateServiceInterface defines the read-side operations on stored rates.
type RateServiceInterface interface {
	FindAll(ctx context.Context, f RateFilter) (*RatePage, error)
	FindOne(ctx context.Context, id string) (*RateResult, error)
	GetLatestRates(ctx context.Context) ([]RateResult, error)
	GetLatestRateForCurrency(ctx context.Context, code string) (*RateResult, error)
	GetRateHistory(ctx context.Context, code, startDate, endDate string) ([]RateResult, error)
	GetTodayRates(ctx context.Context) ([]RateResult, error)
	GetStats(ctx context.Context) (*Stats, error)
	SupportedCurrencies() []CurrencyInfo
	Convert(ctx context.Context, amount decimal.Decimal, from, to string) (*Conversion, error)
	Deactivate(ctx context.Context, id string) error
}

// RateFilter holds the raw list filters. Empty strings and zero values mean "not set".
type RateFilter struct {
	Currency  string
	StartDate string
	EndDate   string
	Page      int
	Limit     int
}

// RateService answers queries over the stored rate history.
type RateService struct {
	repo   repository.RateRepository
	latest *latestRatesCache
	log    *zap.SugaredLogger
	loc    *time.Location
	now    func() time.Time
}

// NewRateService creates a new RateService. loc is the business timezone that defines "today".
func NewRateService(repo repository.RateRepository, cache *redis.Client, logger *zap.SugaredLogger, cacheCfg config.CacheConfig, loc *time.Location) *RateService {
	if loc == nil {
		loc = time.UTC
	}
	return &RateService{
		repo:   repo,
		latest: newLatestRatesCache(cache, time.Duration(cacheCfg.LatestRatesTTLSec)*time.Second, logger),
		log:    logger,
		loc:    loc,
		now:    time.Now,
	}
}

// FindAll returns a page of active records, newest date first.
func (s *RateService) FindAll(ctx context.Context, f RateFilter) (*RatePage, error) {
	var lf repository.ListFilter

	if f.Currency != "" {
		code, err := parseQuoted(f.Currency)
		if err != nil {
			return nil, err
		}
		lf.Currency = code
	}

	start, err := parseOptionalDate(f.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseOptionalDate(f.EndDate)
	if err != nil {
		return nil, err
	}
	if start != nil && end != nil && start.After(*end) {
		return nil, ErrInvalidDateRange
	}
	lf.StartDate, lf.EndDate = start, end

	page, limit := normalizePaging(f.Page, f.Limit)
	lf.Limit = limit
	lf.Offset = (page - 1) * limit

	recs, total, err := s.repo.List(ctx, lf)
	if err != nil {
		s.log.Errorw("DB error listing rates", "error", err)
		return nil, ErrInternal
	}

	return &RatePage{
		Items:      rateResultsFromRepo(recs),
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

// FindOne returns an active record by id.
func (s *RateService) FindOne(ctx context.Context, id string) (*RateResult, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidID
	}
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.log.Errorw("DB error fetching rate by ID", "id", id, "error", err)
		return nil, ErrInternal
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	res := rateResultFromRepo(rec)
	return &res, nil
}

// GetLatestRates returns, per currency, the record with the most recent date.
func (s *RateService) GetLatestRates(ctx context.Context) ([]RateResult, error) {
	if cached, ok := s.latest.get(ctx); ok {
		return cached, nil
	}
	gen, cacheable := s.latest.generation(ctx)

	recs, err := s.repo.LatestPerCurrency(ctx)
	if err != nil {
		s.log.Errorw("DB error fetching latest rates", "error", err)
		return nil, ErrInternal
	}

	rates := rateResultsFromRepo(recs)
	if cacheable {
		s.latest.set(ctx, gen, rates)
	}
	return rates, nil
}

// GetLatestRateForCurrency returns the most recent record for one currency.
func (s *RateService) GetLatestRateForCurrency(ctx context.Context, code string) (*RateResult, error) {
	c, err := parseQuoted(code)
	if err != nil {
		return nil, err
	}

	rec, err := s.repo.LatestForCurrency(ctx, c)
	if err != nil {
		s.log.Errorw("DB error fetching latest rate", "currency", c, "error", err)
		return nil, ErrInternal
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	res := rateResultFromRepo(rec)
	return &res, nil
}

// GetRateHistory returns the records of one currency in [startDate, endDate], oldest first.
// A missing end date means today; a missing start date means defaultHistoryDays before the end.
func (s *RateService) GetRateHistory(ctx context.Context, code, startDate, endDate string) ([]RateResult, error) {
	c, err := parseQuoted(code)
	if err != nil {
		return nil, err
	}

	start, err := parseOptionalDate(startDate)
	if err != nil {
		return nil, err
	}
	end, err := parseOptionalDate(endDate)
	if err != nil {
		return nil, err
	}
	if end == nil {
		today := calendar.Today(s.now(), s.loc)
		end = &today
	}
	if start == nil {
		from := end.AddDate(0, 0, -defaultHistoryDays)
		start = &from
	}
	if start.After(*end) {
		return nil, ErrInvalidDateRange
	}

	recs, err := s.repo.History(ctx, c, *start, *end)
	if err != nil {
		s.log.Errorw("DB error fetching rate history", "currency", c, "error", err)
		return nil, ErrInternal
	}
	return rateResultsFromRepo(recs), nil
}

// GetTodayRates returns the records dated today in the business timezone.
func (s *RateService) GetTodayRates(ctx context.Context) ([]RateResult, error) {
	today := calendar.Today(s.now(), s.loc)
	recs, err := s.repo.ByDate(ctx, today)
	if err != nil {
		s.log.Errorw("DB error fetching today's rates", "date", calendar.FormatDate(today), "error", err)
		return nil, ErrInternal
	}
	return rateResultsFromRepo(recs), nil
}

// GetStats summarizes the store and computes each currency's change against
// the previous business day of its latest record.
func (s *RateService) GetStats(ctx context.Context) (*Stats, error) {
	sum, err := s.repo.Summary(ctx)
	if err != nil {
		s.log.Errorw("DB error summarizing rates", "error", err)
		return nil, ErrInternal
	}

	latest, err := s.repo.LatestPerCurrency(ctx)
	if err != nil {
		s.log.Errorw("DB error fetching latest rates", "error", err)
		return nil, ErrInternal
	}

	stats := &Stats{
		TotalRecords: sum.Total,
		Currencies:   sum.Currencies,
		Latest:       make([]CurrencyStats, 0, len(latest)),
	}
	if sum.LastUpdateDate != nil {
		d := calendar.FormatDate(*sum.LastUpdateDate)
		stats.LastUpdateDate = &d
	}

	for i := range latest {
		rec := &latest[i]
		prevDate := calendar.PreviousBusinessDay(rec.Date)

		prev, err := s.repo.FindByCurrencyAndDate(ctx, rec.Currency, prevDate)
		if err != nil {
			s.log.Errorw("DB error fetching previous business day rate",
				"currency", rec.Currency, "date", calendar.FormatDate(prevDate), "error", err)
			return nil, ErrInternal
		}

		change, percent := dayOverDayChange(rec, prev)
		stats.Latest = append(stats.Latest, CurrencyStats{
			Currency:      rec.Currency.String(),
			BuyingRate:    rec.BuyingRate,
			SellingRate:   rec.SellingRate,
			Date:          calendar.FormatDate(rec.Date),
			PreviousDate:  calendar.FormatDate(prevDate),
			Change:        change,
			ChangePercent: percent,
		})
	}

	return stats, nil
}

// SupportedCurrencies lists the convertible currencies, base currency last.
func (s *RateService) SupportedCurrencies() []CurrencyInfo {
	codes := currency.Supported()
	out := make([]CurrencyInfo, 0, len(codes))
	for _, c := range codes {
		out = append(out, CurrencyInfo{Code: c.String(), Name: c.Name(), IsBase: c.IsBase()})
	}
	return out
}

// Deactivate hides a record from every read. The row is kept.
func (s *RateService) Deactivate(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidID
	}

	if err := s.repo.Deactivate(ctx, id); err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return ErrNotFound
		}
		s.log.Errorw("DB error deactivating rate", "id", id, "error", err)
		return ErrInternal
	}

	s.latest.invalidate(ctx)
	s.log.Infow("Rate deactivated", "id", id)
	return nil
}

func dayOverDayChange(latest, prev *repository.RateRecord) (change, percent decimal.Decimal) {
	if prev == nil {
		return decimal.Zero, decimal.Zero
	}
	change = latest.SellingRate.Sub(prev.SellingRate)
	if prev.SellingRate.IsZero() {
		return change, decimal.Zero
	}
	percent = change.Div(prev.SellingRate).Mul(decimal.NewFromInt(100)).Round(changePercentPlaces)
	return change, percent
}

// parseQuoted accepts only currencies that have rate records.
func parseQuoted(code string) (currency.Code, error) {
	c, err := currency.Parse(code)
	if err != nil {
		return "", err
	}
	if !c.IsQuoted() {
		return "", ErrUnsupportedCurrency
	}
	return c, nil
}

func parseOptionalDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := calendar.ParseDate(s)
	if err != nil {
		return nil, ErrInvalidDate
	}
	return &d, nil
}

func normalizePaging(page, limit int) (normPage, normLimit int) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	// Pages past maxOffset are empty anyway; clamping keeps the offset from overflowing.
	if page > maxOffset/limit+1 {
		page = maxOffset/limit + 1
	}
	return page, limit
}
