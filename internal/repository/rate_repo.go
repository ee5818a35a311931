package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"rateservice/internal/currency"
)

// ErrRecordNotFound is returned by writes that target a missing or inactive record.
var ErrRecordNotFound = errors.New("rate record not found")

// RateRecord is one currency's rates for one calendar day.
type RateRecord struct {
	ID                   string
	Currency             currency.Code
	BuyingRate           decimal.Decimal
	SellingRate          decimal.Decimal
	EffectiveBuyingRate  decimal.NullDecimal
	EffectiveSellingRate decimal.NullDecimal
	Date                 time.Time
	Source               string
	IsActive             bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// ListFilter narrows List. Zero values mean "no filter".
type ListFilter struct {
	Currency  currency.Code
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}

// Summary aggregates the active records.
type Summary struct {
	Total          int
	Currencies     int
	LastUpdateDate *time.Time
}

// RateRepository defines DB operations for rate records. Reads only ever see active records.
type RateRepository interface {
	Create(ctx context.Context, rec *RateRecord) (*RateRecord, error)
	Update(ctx context.Context, rec *RateRecord) (*RateRecord, error)
	FindByCurrencyAndDate(ctx context.Context, code currency.Code, date time.Time) (*RateRecord, error)
	GetByID(ctx context.Context, id string) (*RateRecord, error)
	List(ctx context.Context, f ListFilter) ([]RateRecord, int, error)
	LatestPerCurrency(ctx context.Context) ([]RateRecord, error)
	LatestForCurrency(ctx context.Context, code currency.Code) (*RateRecord, error)
	History(ctx context.Context, code currency.Code, start, end time.Time) ([]RateRecord, error)
	ByDate(ctx context.Context, date time.Time) ([]RateRecord, error)
	Summary(ctx context.Context) (*Summary, error)
	Deactivate(ctx context.Context, id string) error
}

// PostgresRateRepository is an implementation of RateRepository using PostgreSQL.
type PostgresRateRepository struct {
	db *sql.DB
}

// NewPostgresRateRepository creates a new PostgresRateRepository.
func NewPostgresRateRepository(db *sql.DB) RateRepository {
	return &PostgresRateRepository{db: db}
}

const rateColumns = `id::text, currency, buying_rate, selling_rate, effective_buying_rate,
	effective_selling_rate, date, source, is_active, created_at, updated_at`

// Create inserts a new active record. If another writer inserted the same
// (currency, date) first, that row is updated instead so the key stays unique.
func (r *PostgresRateRepository) Create(ctx context.Context, rec *RateRecord) (*RateRecord, error) {
	query := `INSERT INTO exchange_rates (id, currency, buying_rate, selling_rate,
	              effective_buying_rate, effective_selling_rate, date, source, is_active, created_at, updated_at)
	          VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, TRUE, NOW(), NOW())
	          ON CONFLICT (currency, date) WHERE is_active
	          DO UPDATE SET buying_rate = EXCLUDED.buying_rate,
	                        selling_rate = EXCLUDED.selling_rate,
	                        effective_buying_rate = EXCLUDED.effective_buying_rate,
	                        effective_selling_rate = EXCLUDED.effective_selling_rate,
	                        source = EXCLUDED.source,
	                        updated_at = NOW()
	          RETURNING ` + rateColumns

	row := r.db.QueryRowContext(ctx, query,
		rec.ID, string(rec.Currency), rec.BuyingRate, rec.SellingRate,
		rec.EffectiveBuyingRate, rec.EffectiveSellingRate, rec.Date, rec.Source)
	saved, err := scanRate(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate %s/%s: %w", rec.Currency, rec.Date.Format(time.DateOnly), err)
	}
	return saved, nil
}

// Update overwrites the rate fields of an active record and bumps updated_at.
func (r *PostgresRateRepository) Update(ctx context.Context, rec *RateRecord) (*RateRecord, error) {
	query := `UPDATE exchange_rates
	          SET buying_rate = $1,
	              selling_rate = $2,
	              effective_buying_rate = $3,
	              effective_selling_rate = $4,
	              source = $5,
	              updated_at = NOW()
	          WHERE id = $6::uuid AND is_active
	          RETURNING ` + rateColumns

	row := r.db.QueryRowContext(ctx, query,
		rec.BuyingRate, rec.SellingRate, rec.EffectiveBuyingRate, rec.EffectiveSellingRate, rec.Source, rec.ID)
	saved, err := scanRate(row)
	if err != nil {
		return nil, fmt.Errorf("failed to update rate %s: %w", rec.ID, err)
	}
	if saved == nil {
		return nil, ErrRecordNotFound
	}
	return saved, nil
}

// FindByCurrencyAndDate returns the active record for the natural key, or (nil, nil).
func (r *PostgresRateRepository) FindByCurrencyAndDate(ctx context.Context, code currency.Code, date time.Time) (*RateRecord, error) {
	query := `SELECT ` + rateColumns + `
	          FROM exchange_rates
	          WHERE currency = $1 AND date = $2 AND is_active`
	return scanRate(r.db.QueryRowContext(ctx, query, string(code), date))
}

// GetByID retrieves an active record by id, or (nil, nil).
func (r *PostgresRateRepository) GetByID(ctx context.Context, id string) (*RateRecord, error) {
	query := `SELECT ` + rateColumns + `
	          FROM exchange_rates
	          WHERE id = $1::uuid AND is_active`
	return scanRate(r.db.QueryRowContext(ctx, query, id))
}

// List returns a page of active records ordered by date descending, then currency,
// together with the total number of matching records.
func (r *PostgresRateRepository) List(ctx context.Context, f ListFilter) ([]RateRecord, int, error) {
	where := []string{"is_active"}
	var args []any
	if f.Currency != "" {
		args = append(args, string(f.Currency))
		where = append(where, fmt.Sprintf("currency = $%d", len(args)))
	}
	if f.StartDate != nil {
		args = append(args, *f.StartDate)
		where = append(where, fmt.Sprintf("date >= $%d", len(args)))
	}
	if f.EndDate != nil {
		args = append(args, *f.EndDate)
		where = append(where, fmt.Sprintf("date <= $%d", len(args)))
	}
	whereClause := " WHERE " + strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM exchange_rates"+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count rates: %w", err)
	}
	if total == 0 {
		return []RateRecord{}, 0, nil
	}

	query := "SELECT " + rateColumns + " FROM exchange_rates" + whereClause + " ORDER BY date DESC, currency ASC"
	if f.Limit > 0 {
		args = append(args, f.Limit, f.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rates, err := r.queryRates(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list rates: %w", err)
	}
	return rates, total, nil
}

// LatestPerCurrency returns, for each currency, the active record with the greatest date.
func (r *PostgresRateRepository) LatestPerCurrency(ctx context.Context) ([]RateRecord, error) {
	query := `SELECT DISTINCT ON (currency) ` + rateColumns + `
	          FROM exchange_rates
	          WHERE is_active
	          ORDER BY currency ASC, date DESC`
	rates, err := r.queryRates(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest rates: %w", err)
	}
	return rates, nil
}

// LatestForCurrency returns the most recent active record for one currency, or (nil, nil).
func (r *PostgresRateRepository) LatestForCurrency(ctx context.Context, code currency.Code) (*RateRecord, error) {
	query := `SELECT ` + rateColumns + `
	          FROM exchange_rates
	          WHERE currency = $1 AND is_active
	          ORDER BY date DESC
	          LIMIT 1`
	return scanRate(r.db.QueryRowContext(ctx, query, string(code)))
}

// History returns active records for a currency within [start, end], oldest first.
func (r *PostgresRateRepository) History(ctx context.Context, code currency.Code, start, end time.Time) ([]RateRecord, error) {
	query := `SELECT ` + rateColumns + `
	          FROM exchange_rates
	          WHERE currency = $1 AND date >= $2 AND date <= $3 AND is_active
	          ORDER BY date ASC`
	rates, err := r.queryRates(ctx, query, string(code), start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rate history: %w", err)
	}
	return rates, nil
}

// ByDate returns the active records for one day ordered by currency.
func (r *PostgresRateRepository) ByDate(ctx context.Context, date time.Time) ([]RateRecord, error) {
	query := `SELECT ` + rateColumns + `
	          FROM exchange_rates
	          WHERE date = $1 AND is_active
	          ORDER BY currency ASC`
	rates, err := r.queryRates(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rates by date: %w", err)
	}
	return rates, nil
}

// Summary counts active records and distinct currencies and finds the latest date.
func (r *PostgresRateRepository) Summary(ctx context.Context) (*Summary, error) {
	query := `SELECT COUNT(*), COUNT(DISTINCT currency), MAX(date)
	          FROM exchange_rates
	          WHERE is_active`

	var s Summary
	var last sql.NullTime
	if err := r.db.QueryRowContext(ctx, query).Scan(&s.Total, &s.Currencies, &last); err != nil {
		return nil, fmt.Errorf("failed to summarize rates: %w", err)
	}
	if last.Valid {
		s.LastUpdateDate = &last.Time
	}
	return &s, nil
}

// Deactivate marks an active record inactive. The row is kept for audit.
func (r *PostgresRateRepository) Deactivate(ctx context.Context, id string) error {
	query := `UPDATE exchange_rates
	          SET is_active = FALSE, updated_at = NOW()
	          WHERE id = $1::uuid AND is_active`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate rate %s: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (r *PostgresRateRepository) queryRates(ctx context.Context, query string, args ...any) ([]RateRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck // best-effort close

	rates := []RateRecord{}
	for rows.Next() {
		rec, err := scanRateRow(rows)
		if err != nil {
			return nil, err
		}
		rates = append(rates, *rec)
	}
	return rates, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanRate maps a single row into a RateRecord, returning (nil, nil) for sql.ErrNoRows.
func scanRate(row *sql.Row) (*RateRecord, error) {
	rec, err := scanRateRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}

func scanRateRow(row rowScanner) (*RateRecord, error) {
	var rec RateRecord
	var code string
	err := row.Scan(&rec.ID, &code, &rec.BuyingRate, &rec.SellingRate,
		&rec.EffectiveBuyingRate, &rec.EffectiveSellingRate, &rec.Date,
		&rec.Source, &rec.IsActive, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	rec.Currency = currency.Code(code)
	rec.Date = rec.Date.UTC()
	return &rec, nil
}
