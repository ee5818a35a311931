package api

import (
	"context"

	"github.com/shopspring/decimal"

	"rateservice/internal/service"
)

// mockRateService implements service.RateServiceInterface for testing.
// Unset funcs panic, which flags handlers calling something they should not.
type mockRateService struct {
	findAllFunc         func(ctx context.Context, f service.RateFilter) (*service.RatePage, error)
	findOneFunc         func(ctx context.Context, id string) (*service.RateResult, error)
	getLatestRatesFunc  func(ctx context.Context) ([]service.RateResult, error)
	getLatestForFunc    func(ctx context.Context, code string) (*service.RateResult, error)
	getHistoryFunc      func(ctx context.Context, code, startDate, endDate string) ([]service.RateResult, error)
	getTodayRatesFunc   func(ctx context.Context) ([]service.RateResult, error)
	getStatsFunc        func(ctx context.Context) (*service.Stats, error)
	supportedCurrencies []service.CurrencyInfo
	convertFunc         func(ctx context.Context, amount decimal.Decimal, from, to string) (*service.Conversion, error)
	deactivateFunc      func(ctx context.Context, id string) error
}

func (m *mockRateService) FindAll(ctx context.Context, f service.RateFilter) (*service.RatePage, error) {
	return m.findAllFunc(ctx, f)
}

func (m *mockRateService) FindOne(ctx context.Context, id string) (*service.RateResult, error) {
	return m.findOneFunc(ctx, id)
}

func (m *mockRateService) GetLatestRates(ctx context.Context) ([]service.RateResult, error) {
	return m.getLatestRatesFunc(ctx)
}

func (m *mockRateService) GetLatestRateForCurrency(ctx context.Context, code string) (*service.RateResult, error) {
	return m.getLatestForFunc(ctx, code)
}

func (m *mockRateService) GetRateHistory(ctx context.Context, code, startDate, endDate string) ([]service.RateResult, error) {
	return m.getHistoryFunc(ctx, code, startDate, endDate)
}

func (m *mockRateService) GetTodayRates(ctx context.Context) ([]service.RateResult, error) {
	return m.getTodayRatesFunc(ctx)
}

func (m *mockRateService) GetStats(ctx context.Context) (*service.Stats, error) {
	return m.getStatsFunc(ctx)
}

func (m *mockRateService) SupportedCurrencies() []service.CurrencyInfo {
	return m.supportedCurrencies
}

func (m *mockRateService) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (*service.Conversion, error) {
	return m.convertFunc(ctx, amount, from, to)
}

func (m *mockRateService) Deactivate(ctx context.Context, id string) error {
	return m.deactivateFunc(ctx, id)
}

// mockSyncService implements service.SyncServiceInterface for testing.
type mockSyncService struct {
	calls       []service.Trigger
	runSyncFunc func(ctx context.Context, trigger service.Trigger) (*service.SyncResult, error)
}

func (m *mockSyncService) RunSync(ctx context.Context, trigger service.Trigger) (*service.SyncResult, error) {
	m.calls = append(m.calls, trigger)
	return m.runSyncFunc(ctx, trigger)
}

type mockEnqueuer struct {
	calls []service.Trigger
	id    string
	err   error
}

func (m *mockEnqueuer) EnqueueSync(_ context.Context, trigger service.Trigger) (string, error) {
	m.calls = append(m.calls, trigger)
	return m.id, m.err
}
