// Package currency defines the fixed set of currencies handled by the rate service.
package currency

import (
	"errors"
	"strings"
)

// Code is an ISO 4217 currency code supported by the service.
type Code string

// Supported currency codes. TRY is the base currency every other code is quoted against.
const (
	USD Code = "USD"
	EUR Code = "EUR"
	GBP Code = "GBP"
	TRY Code = "TRY"
)

// Base is the settlement currency. It is never stored as a rate record.
const Base = TRY

// ErrUnsupported is returned when a code is not in the supported set.
var ErrUnsupported = errors.New("unsupported currency")

var quoted = []Code{USD, EUR, GBP}

var names = map[Code]string{
	USD: "US Dollar",
	EUR: "Euro",
	GBP: "British Pound",
	TRY: "Turkish Lira",
}

// Quoted returns the currencies that have rates against the base currency, in display order.
func Quoted() []Code {
	out := make([]Code, len(quoted))
	copy(out, quoted)
	return out
}

// Supported returns every currency usable in conversions, base currency last.
func Supported() []Code {
	return append(Quoted(), Base)
}

// Parse normalizes a user-supplied code and checks it against the supported set.
func Parse(s string) (Code, error) {
	c := Code(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsSupported() {
		return "", ErrUnsupported
	}
	return c, nil
}

// IsSupported reports whether c can be used in conversions.
func (c Code) IsSupported() bool {
	return c == Base || c.IsQuoted()
}

// IsQuoted reports whether c has its own rate records.
func (c Code) IsQuoted() bool {
	for _, q := range quoted {
		if q == c {
			return true
		}
	}
	return false
}

// IsBase reports whether c is the settlement currency.
func (c Code) IsBase() bool { return c == Base }

// Name returns the English display name, or "" for an unsupported code.
func (c Code) Name() string { return names[c] }

func (c Code) String() string { return string(c) }
