package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"rateservice/internal/calendar"
	"rateservice/internal/metrics"
	"rateservice/internal/provider"
	"rateservice/internal/repository"
)

// Trigger says what started a sync run.
type Trigger string

const (
	// TriggerScheduled is the daily scheduler run.
	TriggerScheduled Trigger = "scheduled"
	// TriggerManual is an administrative "update now".
	TriggerManual Trigger = "manual"
	// TriggerResync is an administrative re-sync that skips the feed snapshot cache.
	TriggerResync Trigger = "resync"
)

func (t Trigger) fetchMode() provider.FetchMode {
	if t == TriggerResync {
		return provider.FetchFresh
	}
	return provider.FetchCached
}

// SyncServiceInterface runs the fetch-and-reconcile pipeline.
type SyncServiceInterface interface {
	RunSync(ctx context.Context, trigger Trigger) (*SyncResult, error)
}

// SyncResult reports one sync run. Source is the feed source tag of the
// persisted records; UsedFallback is set when they are substitute data.
type SyncResult struct {
	Trigger        Trigger
	Source         string
	UsedFallback   bool
	FallbackReason string
	Received       int
	Persisted      int
	Failed         int
	Records        []RateResult
	Duration       time.Duration
}

// SyncService fetches the daily feed and reconciles it into the rate store.
type SyncService struct {
	repo    repository.RateRepository
	feed    provider.RatesFeed
	latest  *latestRatesCache
	metrics *metrics.SyncMetrics
	log     *zap.SugaredLogger
	now     func() time.Time
	newID   func() string
}

// NewSyncService creates a new SyncService. cache is the Redis instance holding the
// latest-rates snapshot, invalidated after every run that persisted records.
func NewSyncService(repo repository.RateRepository, feed provider.RatesFeed, cache *redis.Client, m *metrics.SyncMetrics, logger *zap.SugaredLogger) *SyncService {
	return &SyncService{
		repo:    repo,
		feed:    feed,
		latest:  newLatestRatesCache(cache, 0, logger),
		metrics: m,
		log:     logger,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// RunSync fetches the feed and reconciles its rates. Feed outages are absorbed by the
// fallback feed. It fails with provider.ErrNoDataAvailable, or with ctx.Err() when ctx
// ends during the fetch, and then nothing is written.
func (s *SyncService) RunSync(ctx context.Context, trigger Trigger) (*SyncResult, error) {
	start := s.now()
	s.log.Infow("Rate sync started", "trigger", trigger)

	feed, err := s.feed.Fetch(ctx, trigger.fetchMode())
	if err != nil {
		s.log.Errorw("Rate sync aborted", "trigger", trigger, "error", err)
		s.metrics.RecordRun(string(trigger), metrics.OutcomeFailed, s.now().Sub(start))
		return nil, err
	}

	if feed.UsedFallback {
		s.log.Warnw("Live rate feed unavailable, using fallback rates",
			"trigger", trigger, "reason", feed.FallbackReason)
	}

	persisted, failed := s.Reconcile(ctx, feed.Rates, feed.Source)
	if len(persisted) > 0 {
		s.latest.invalidate(ctx)
	}

	res := &SyncResult{
		Trigger:        trigger,
		Source:         feed.Source,
		UsedFallback:   feed.UsedFallback,
		FallbackReason: feed.FallbackReason,
		Received:       len(feed.Rates),
		Persisted:      len(persisted),
		Failed:         failed,
		Records:        rateResultsFromRepo(persisted),
		Duration:       s.now().Sub(start),
	}

	outcome := metrics.OutcomeSuccess
	switch {
	case feed.UsedFallback:
		outcome = metrics.OutcomeFallback
	case res.Persisted == 0 && res.Received > 0:
		outcome = metrics.OutcomeFailed
	}
	s.metrics.RecordRecords(res.Persisted, res.Failed)
	s.metrics.RecordRun(string(trigger), outcome, res.Duration)

	s.log.Infow("Rate sync finished",
		"trigger", trigger,
		"source", res.Source,
		"used_fallback", res.UsedFallback,
		"received", res.Received,
		"persisted", res.Persisted,
		"failed", res.Failed,
		"duration", res.Duration,
	)
	return res, nil
}

// Reconcile upserts each parsed rate by (currency, date): an existing active record
// is overwritten, otherwise a new one is created. A tuple that fails is logged and
// skipped. It returns the saved records and the number of failures.
func (s *SyncService) Reconcile(ctx context.Context, rates []provider.ParsedRate, source string) ([]repository.RateRecord, int) {
	persisted := make([]repository.RateRecord, 0, len(rates))
	failed := 0

	for _, r := range rates {
		saved, err := s.reconcileOne(ctx, r, source)
		if err != nil {
			failed++
			s.log.Errorw("Failed to persist rate",
				"currency", r.Currency, "date", calendar.FormatDate(r.Date), "error", err)
			continue
		}
		persisted = append(persisted, *saved)
	}
	return persisted, failed
}

func (s *SyncService) reconcileOne(ctx context.Context, r provider.ParsedRate, source string) (*repository.RateRecord, error) {
	if !r.Currency.IsQuoted() {
		return nil, ErrUnsupportedCurrency
	}
	date := calendar.DateOf(r.Date)

	existing, err := s.repo.FindByCurrencyAndDate(ctx, r.Currency, date)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		existing.BuyingRate = r.BuyingRate
		existing.SellingRate = r.SellingRate
		existing.EffectiveBuyingRate = r.EffectiveBuyingRate
		existing.EffectiveSellingRate = r.EffectiveSellingRate
		existing.Source = source
		return s.repo.Update(ctx, existing)
	}

	return s.repo.Create(ctx, &repository.RateRecord{
		ID:                   s.newID(),
		Currency:             r.Currency,
		BuyingRate:           r.BuyingRate,
		SellingRate:          r.SellingRate,
		EffectiveBuyingRate:  r.EffectiveBuyingRate,
		EffectiveSellingRate: r.EffectiveSellingRate,
		Date:                 date,
		Source:               source,
		IsActive:             true,
	})
}
