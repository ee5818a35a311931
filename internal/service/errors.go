package service

import (
	"errors"

	"rateservice/internal/currency"
)

// ErrNotFound indicates the requested resource was not found.
var ErrNotFound = errors.New("not found")

// ErrInvalidID indicates the rate id is not a UUID.
var ErrInvalidID = errors.New("invalid rate id")

// ErrUnsupportedCurrency is returned when a currency is not in the supported list.
var ErrUnsupportedCurrency = currency.ErrUnsupported

// ErrInvalidAmount indicates a conversion amount that is missing or negative.
var ErrInvalidAmount = errors.New("amount must be a non-negative number")

// ErrInvalidDate indicates a date that is not YYYY-MM-DD.
var ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

// ErrInvalidDateRange indicates a start date after the end date.
var ErrInvalidDateRange = errors.New("start date must not be after end date")

// ErrRateUnavailable indicates that a conversion needs a rate that has never been synced.
var ErrRateUnavailable = errors.New("rate unavailable")

// ErrInternal indicates an internal server error.
var ErrInternal = errors.New("internal error")
