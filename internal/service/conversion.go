package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"rateservice/internal/calendar"
	"rateservice/internal/currency"
)

const (
	resultPlaces      = 4
	ratePlaces        = 6
	significantDigits = 4
)

// Convert converts amount between two supported currencies using the latest selling
// rates. Every quoted currency is priced in TRY, so a cross conversion goes through
// TRY: multiply by the source rate, then divide by the target rate.
func (s *RateService) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (*Conversion, error) {
	if amount.IsNegative() {
		return nil, ErrInvalidAmount
	}
	src, err := currency.Parse(from)
	if err != nil {
		return nil, err
	}
	dst, err := currency.Parse(to)
	if err != nil {
		return nil, err
	}

	conv := &Conversion{
		From:      src.String(),
		To:        dst.String(),
		Amount:    amount,
		RateDates: map[string]string{},
	}

	if src == dst {
		conv.Result = amount
		conv.Rate = decimal.NewFromInt(1)
		return conv, nil
	}

	srcInBase, err := s.baseValue(ctx, src, conv.RateDates)
	if err != nil {
		return nil, err
	}
	dstInBase, err := s.baseValue(ctx, dst, conv.RateDates)
	if err != nil {
		return nil, err
	}

	conv.Result = roundKeepingSignificant(amount.Mul(srcInBase).Div(dstInBase), resultPlaces)
	conv.Rate = roundKeepingSignificant(srcInBase.Div(dstInBase), ratePlaces)
	return conv, nil
}

// roundKeepingSignificant rounds d to places decimals. A non-zero value that would
// round to zero keeps significantDigits significant digits instead.
func roundKeepingSignificant(d decimal.Decimal, places int32) decimal.Decimal {
	r := d.Round(places)
	if !r.IsZero() || d.IsZero() {
		return r
	}
	magnitude := d.Exponent() + int32(d.NumDigits()) - 1
	return d.Round(significantDigits - 1 - magnitude)
}

// baseValue returns the TRY value of one unit of c and records the rate date used.
func (s *RateService) baseValue(ctx context.Context, c currency.Code, dates map[string]string) (decimal.Decimal, error) {
	if c.IsBase() {
		return decimal.NewFromInt(1), nil
	}

	rec, err := s.repo.LatestForCurrency(ctx, c)
	if err != nil {
		s.log.Errorw("DB error fetching latest rate for conversion", "currency", c, "error", err)
		return decimal.Zero, ErrInternal
	}
	if rec == nil || !rec.SellingRate.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w for currency %s", ErrRateUnavailable, c)
	}

	dates[c.String()] = calendar.FormatDate(rec.Date)
	return rec.SellingRate, nil
}
