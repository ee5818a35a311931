package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"rateservice/internal/currency"
	"rateservice/internal/repository"
)

// memRepo is an in-memory RateRepository with the same visibility and
// uniqueness rules as the Postgres one.
type memRepo struct {
	mu   sync.Mutex
	recs []*repository.RateRecord

	createErr map[currency.Code]error
	findErr   error
	calls     map[string]int
}

func newMemRepo() *memRepo {
	return &memRepo{createErr: map[currency.Code]error{}, calls: map[string]int{}}
}

// seed stores an active record with the given selling rate; buying is selling minus 0.1.
func (m *memRepo) seed(code currency.Code, date time.Time, selling string) *repository.RateRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	sell := decimal.RequireFromString(selling)
	rec := &repository.RateRecord{
		ID:          uuid.NewString(),
		Currency:    code,
		BuyingRate:  sell.Sub(decimal.RequireFromString("0.1")),
		SellingRate: sell,
		Date:        date,
		Source:      "TCMB",
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	m.recs = append(m.recs, rec)
	return rec
}

func (m *memRepo) active() []*repository.RateRecord {
	var out []*repository.RateRecord
	for _, r := range m.recs {
		if r.IsActive {
			out = append(out, r)
		}
	}
	return out
}

func (m *memRepo) activeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active())
}

func (m *memRepo) Create(_ context.Context, rec *repository.RateRecord) (*repository.RateRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["Create"]++
	if err := m.createErr[rec.Currency]; err != nil {
		return nil, err
	}
	for _, r := range m.active() {
		if r.Currency == rec.Currency && r.Date.Equal(rec.Date) {
			r.BuyingRate, r.SellingRate = rec.BuyingRate, rec.SellingRate
			r.EffectiveBuyingRate, r.EffectiveSellingRate = rec.EffectiveBuyingRate, rec.EffectiveSellingRate
			r.Source = rec.Source
			r.UpdatedAt = time.Now().UTC()
			cp := *r
			return &cp, nil
		}
	}
	cp := *rec
	cp.IsActive = true
	cp.CreatedAt = time.Now().UTC()
	cp.UpdatedAt = cp.CreatedAt
	m.recs = append(m.recs, &cp)
	out := cp
	return &out, nil
}

func (m *memRepo) Update(_ context.Context, rec *repository.RateRecord) (*repository.RateRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["Update"]++
	for _, r := range m.active() {
		if r.ID == rec.ID {
			r.BuyingRate, r.SellingRate = rec.BuyingRate, rec.SellingRate
			r.EffectiveBuyingRate, r.EffectiveSellingRate = rec.EffectiveBuyingRate, rec.EffectiveSellingRate
			r.Source = rec.Source
			r.UpdatedAt = time.Now().UTC()
			cp := *r
			return &cp, nil
		}
	}
	return nil, repository.ErrRecordNotFound
}

func (m *memRepo) FindByCurrencyAndDate(_ context.Context, code currency.Code, date time.Time) (*repository.RateRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["FindByCurrencyAndDate"]++
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, r := range m.active() {
		if r.Currency == code && r.Date.Equal(date) {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memRepo) GetByID(_ context.Context, id string) (*repository.RateRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.active() {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memRepo) List(_ context.Context, f repository.ListFilter) ([]repository.RateRecord, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []repository.RateRecord
	for _, r := range m.active() {
		if f.Currency != "" && r.Currency != f.Currency {
			continue
		}
		if f.StartDate != nil && r.Date.Before(*f.StartDate) {
			continue
		}
		if f.EndDate != nil && r.Date.After(*f.EndDate) {
			continue
		}
		matched = append(matched, *r)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].Date.Equal(matched[j].Date) {
			return matched[i].Date.After(matched[j].Date)
		}
		return matched[i].Currency < matched[j].Currency
	})
	total := len(matched)
	if f.Limit > 0 {
		if f.Offset >= total {
			return []repository.RateRecord{}, total, nil
		}
		end := f.Offset + f.Limit
		if end > total {
			end = total
		}
		matched = matched[f.Offset:end]
	}
	return matched, total, nil
}

func (m *memRepo) LatestPerCurrency(_ context.Context) ([]repository.RateRecord, error) {
	m.mu.Lock()
	m.calls["LatestPerCurrency"]++
	m.mu.Unlock()
	out := []repository.RateRecord{}
	for _, c := range currency.Quoted() {
		rec, _ := m.latest(c)
		if rec != nil {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out, nil
}

func (m *memRepo) LatestForCurrency(_ context.Context, code currency.Code) (*repository.RateRecord, error) {
	m.mu.Lock()
	m.calls["LatestForCurrency"]++
	m.mu.Unlock()
	return m.latest(code)
}

func (m *memRepo) latest(code currency.Code) (*repository.RateRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var best *repository.RateRecord
	for _, r := range m.active() {
		if r.Currency == code && (best == nil || r.Date.After(best.Date)) {
			best = r
		}
	}
	if best == nil {
		return nil, nil
	}
	cp := *best
	return &cp, nil
}

func (m *memRepo) History(_ context.Context, code currency.Code, start, end time.Time) ([]repository.RateRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []repository.RateRecord{}
	for _, r := range m.active() {
		if r.Currency == code && !r.Date.Before(start) && !r.Date.After(end) {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *memRepo) ByDate(_ context.Context, date time.Time) ([]repository.RateRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []repository.RateRecord{}
	for _, r := range m.active() {
		if r.Date.Equal(date) {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out, nil
}

func (m *memRepo) Summary(_ context.Context) (*repository.Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &repository.Summary{}
	seen := map[currency.Code]bool{}
	for _, r := range m.active() {
		s.Total++
		seen[r.Currency] = true
		if s.LastUpdateDate == nil || r.Date.After(*s.LastUpdateDate) {
			d := r.Date
			s.LastUpdateDate = &d
		}
	}
	s.Currencies = len(seen)
	return s, nil
}

func (m *memRepo) Deactivate(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.active() {
		if r.ID == id {
			r.IsActive = false
			return nil
		}
	}
	return repository.ErrRecordNotFound
}

// failingRepo returns err from the reads the error-path tests exercise.
type failingRepo struct {
	repository.RateRepository
	err error
}

func (f failingRepo) LatestForCurrency(context.Context, currency.Code) (*repository.RateRecord, error) {
	return nil, f.err
}

func (f failingRepo) List(context.Context, repository.ListFilter) ([]repository.RateRecord, int, error) {
	return nil, 0, f.err
}
