package provider

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"rateservice/internal/calendar"
	"rateservice/internal/currency"
)

// ratePrecision is the number of fractional digits kept for every rate.
const ratePrecision = 4

var errEmptyFeed = errors.New("feed contains no usable rates for supported currencies")

type tcmbDocument struct {
	XMLName    xml.Name       `xml:"Tarih_Date"`
	Tarih      string         `xml:"Tarih,attr"`
	Date       string         `xml:"Date,attr"`
	Currencies []tcmbCurrency `xml:"Currency"`
}

type tcmbCurrency struct {
	Kod             string `xml:"Kod,attr"`
	CurrencyCode    string `xml:"CurrencyCode,attr"`
	Unit            string `xml:"Unit"`
	ForexBuying     string `xml:"ForexBuying"`
	ForexSelling    string `xml:"ForexSelling"`
	BanknoteBuying  string `xml:"BanknoteBuying"`
	BanknoteSelling string `xml:"BanknoteSelling"`
}

func (c tcmbCurrency) code() string {
	if c.CurrencyCode != "" {
		return strings.ToUpper(strings.TrimSpace(c.CurrencyCode))
	}
	return strings.ToUpper(strings.TrimSpace(c.Kod))
}

// ParseTCMB decodes a TCMB daily rates document into typed rates for the quoted currencies.
//
// Forex buying/selling become the canonical rates and banknote buying/selling the
// effective ones. Missing or non-numeric values read as zero, and an entry is kept
// only if its buying or selling rate is positive. Rates are quoted per one unit.
// defaultDate is used when the document header carries no readable date.
func ParseTCMB(r io.Reader, defaultDate time.Time) ([]ParsedRate, error) {
	dec := xml.NewDecoder(r)
	// Only ASCII fields are read, so a legacy Turkish charset declaration is decoded as-is.
	dec.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) { return input, nil }

	var doc tcmbDocument
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode feed document: %w", err)
	}

	date, ok := parseFeedDate(doc)
	if !ok {
		date = calendar.DateOf(defaultDate)
	}

	var rates []ParsedRate
	for _, c := range doc.Currencies {
		code := currency.Code(c.code())
		if !code.IsQuoted() {
			continue
		}

		unit := parseLocalizedDecimal(c.Unit)
		if !unit.IsPositive() {
			unit = decimal.NewFromInt(1)
		}
		perUnit := func(s string) decimal.Decimal {
			return parseLocalizedDecimal(s).Div(unit).Round(ratePrecision)
		}

		rate := ParsedRate{
			Currency:             code,
			BuyingRate:           perUnit(c.ForexBuying),
			SellingRate:          perUnit(c.ForexSelling),
			EffectiveBuyingRate:  optionalRate(perUnit(c.BanknoteBuying)),
			EffectiveSellingRate: optionalRate(perUnit(c.BanknoteSelling)),
			Date:                 date,
		}
		if !rate.BuyingRate.IsPositive() && !rate.SellingRate.IsPositive() {
			continue
		}
		rates = append(rates, rate)
	}

	if len(rates) == 0 {
		return nil, errEmptyFeed
	}
	return rates, nil
}

func parseFeedDate(doc tcmbDocument) (time.Time, bool) {
	if t, err := time.Parse("01/02/2006", strings.TrimSpace(doc.Date)); err == nil {
		return calendar.DateOf(t), true
	}
	if t, err := time.Parse("02.01.2006", strings.TrimSpace(doc.Tarih)); err == nil {
		return calendar.DateOf(t), true
	}
	return time.Time{}, false
}

// parseLocalizedDecimal accepts "41.7787", "41,7787" and "1.234,5678" style numbers.
// Anything unparsable is zero.
func parseLocalizedDecimal(s string) decimal.Decimal {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if s == "" {
		return decimal.Zero
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastComma > lastDot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case lastDot > lastComma && lastComma >= 0:
		s = strings.ReplaceAll(s, ",", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func optionalRate(d decimal.Decimal) decimal.NullDecimal {
	if !d.IsPositive() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}
