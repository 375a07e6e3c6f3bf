/*
Package currency formats monetary amounts for display.

PURPOSE:
  Turns a decimal amount into the string a partner sees on the dashboard,
  e.g. 1234.5 GBP in en-GB -> "£1,234.50". Formatting is the ONLY place in
  the engine where money is rounded; all commission math stays exact.

ROUNDING:
  Half away from zero at the currency's minor unit (decimal.Round). This is
  the "half expand" mode browsers use for Intl.NumberFormat, applied to the
  exact decimal value instead of a binary float:

    1.005 GBP -> £1.01
    1.004 GBP -> £1.00
   -1.005 GBP -> -£1.01

MINOR UNITS:
  Taken from golang.org/x/text/currency (Standard rounding), so GBP/USD/EUR
  use 2 places and JPY uses 0.

LOCALES:
  Supported conventions: en-GB, en-US, en-IE, de-DE, fr-FR, nl-NL. A locale
  that names a region must match one of them exactly, so de-CH or fr-CA is
  an error (their separators differ). A bare language such as "de" is
  matched to the closest supported locale with golang.org/x/text/language.

LIMITS:
  Format expands the amount to all its digits. Bound untrusted input first
  (commission.CheckMagnitude).

USAGE:
  s, err := currency.Format(decimal.RequireFromString("1234.5"), "GBP", "en-GB")
  // s == "£1,234.50"

  f, err := currency.NewFormatter("EUR", "de-DE")
  f.Format(amount) // "1.234,50 €"
*/
package currency

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

// Defaults used by the partner dashboard.
const (
	DefaultCode   = "GBP"
	DefaultLocale = "en-GB"
)

var (
	// ErrUnsupportedCurrency is returned for codes that are not ISO 4217.
	ErrUnsupportedCurrency = errors.New("unsupported currency")

	// ErrUnsupportedLocale is returned when no supported locale matches.
	ErrUnsupportedLocale = errors.New("unsupported locale")
)

const nbsp = "\u00a0"

// convention describes how one locale lays out a currency amount.
type convention struct {
	group       string
	decimal     string
	symbolAfter bool
	spaced      bool
}

var (
	supportedTags = []language.Tag{
		language.BritishEnglish,
		language.AmericanEnglish,
		language.MustParse("en-IE"),
		language.MustParse("de-DE"),
		language.MustParse("fr-FR"),
		language.MustParse("nl-NL"),
	}

	// Indexed in step with supportedTags.
	conventions = []convention{
		{group: ",", decimal: "."},
		{group: ",", decimal: "."},
		{group: ",", decimal: "."},
		{group: ".", decimal: ",", symbolAfter: true, spaced: true},
		{group: "\u202f", decimal: ",", symbolAfter: true, spaced: true},
		{group: ".", decimal: ",", spaced: true},
	}

	matcher = language.NewMatcher(supportedTags)

	symbols = map[string]string{
		"GBP": "£",
		"USD": "$",
		"EUR": "€",
		"JPY": "¥",
	}
)

// Formatter renders amounts in one currency for one locale.
// It is immutable and safe for concurrent use.
type Formatter struct {
	code       string
	symbol     string
	scale      int32
	increment  int64
	locale     language.Tag
	convention convention
}

// NewFormatter validates the currency code and locale.
// Empty arguments fall back to DefaultCode and DefaultLocale.
func NewFormatter(code, locale string) (*Formatter, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		code = DefaultCode
	}
	locale = strings.TrimSpace(locale)
	if locale == "" {
		locale = DefaultLocale
	}

	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCurrency, code)
	}

	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLocale, locale)
	}
	idx, ok := localeIndex(tag)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLocale, locale)
	}

	scale, increment := currency.Standard.Rounding(unit)
	iso := unit.String()
	symbol, ok := symbols[iso]
	if !ok {
		symbol = iso
	}

	return &Formatter{
		code:       iso,
		symbol:     symbol,
		scale:      int32(scale),
		increment:  int64(increment),
		locale:     supportedTags[idx],
		convention: conventions[idx],
	}, nil
}

// localeIndex finds the convention for tag. An explicit region must match.
func localeIndex(tag language.Tag) (int, bool) {
	region, conf := tag.Region()
	if conf != language.Exact {
		_, idx, confidence := matcher.Match(tag)
		return idx, confidence != language.No
	}

	base, _ := tag.Base()
	for i, s := range supportedTags {
		sb, _ := s.Base()
		sr, _ := s.Region()
		if sb == base && sr == region {
			return i, true
		}
	}
	return 0, false
}

// MustFormatter is NewFormatter for known-good arguments; it panics on error.
func MustFormatter(code, locale string) *Formatter {
	f, err := NewFormatter(code, locale)
	if err != nil {
		panic(err)
	}
	return f
}

// Code returns the ISO 4217 code.
func (f *Formatter) Code() string { return f.code }

// Locale returns the matched locale.
func (f *Formatter) Locale() string { return f.locale.String() }

// Scale returns the number of minor-unit digits.
func (f *Formatter) Scale() int32 { return f.scale }

// Round rounds an amount to the currency's minor unit, half away from zero.
func (f *Formatter) Round(amount decimal.Decimal) decimal.Decimal {
	if f.increment > 1 {
		step := decimal.New(f.increment, -f.scale)
		return amount.Div(step).Round(0).Mul(step)
	}
	return amount.Round(f.scale)
}

// Format renders the amount, e.g. "£1,234.50".
func (f *Formatter) Format(amount decimal.Decimal) string {
	rounded := f.Round(amount)

	digits := rounded.Abs().StringFixed(f.scale)
	intPart, fracPart, _ := strings.Cut(digits, ".")

	var b strings.Builder
	if rounded.IsNegative() {
		b.WriteString("-")
	}

	symbol := f.symbol
	spaced := f.convention.spaced || symbol == f.code

	if !f.convention.symbolAfter {
		b.WriteString(symbol)
		if spaced {
			b.WriteString(nbsp)
		}
	}

	b.WriteString(group(intPart, f.convention.group))
	if fracPart != "" {
		b.WriteString(f.convention.decimal)
		b.WriteString(fracPart)
	}

	if f.convention.symbolAfter {
		if spaced {
			b.WriteString(nbsp)
		}
		b.WriteString(symbol)
	}

	return b.String()
}

// Format renders an amount with the given currency code and locale.
func Format(amount decimal.Decimal, code, locale string) (string, error) {
	f, err := NewFormatter(code, locale)
	if err != nil {
		return "", err
	}
	return f.Format(amount), nil
}

var gbp = MustFormatter(DefaultCode, DefaultLocale)

// FormatGBP renders an amount as pounds sterling in en-GB.
func FormatGBP(amount decimal.Decimal) string {
	return gbp.Format(amount)
}

// group inserts sep between every three digits, counting from the right.
func group(digits, sep string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
