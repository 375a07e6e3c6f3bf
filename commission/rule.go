package commission

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RULE - Rate, minimum guarantee and optional tiers
// =============================================================================

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Tier raises the rate once a sale reaches Threshold.
type Tier struct {
	Threshold decimal.Decimal
	Rate      decimal.Decimal
}

// Rule is an immutable commission configuration. The zero value is valid
// and pays nothing (rate 0, minimum 0).
//
// Tiers are slabs, not marginal bands: the whole sale earns the rate of the
// highest tier it reaches. Thresholds must be strictly increasing and tier
// rates non-decreasing (and at least the base rate), which keeps the
// commission non-decreasing in the sale amount.
type Rule struct {
	rate    decimal.Decimal
	minimum decimal.Decimal
	tiers   []Tier
}

// NewRule builds a flat rule. rate must lie in [0, 1], minimum must be >= 0.
func NewRule(rate, minimum decimal.Decimal) (Rule, error) {
	return NewTieredRule(rate, minimum)
}

// NewTieredRule builds a rule with rate tiers above the base rate.
func NewTieredRule(rate, minimum decimal.Decimal, tiers ...Tier) (Rule, error) {
	r := Rule{rate: rate, minimum: minimum}
	if len(tiers) > 0 {
		r.tiers = append([]Tier(nil), tiers...)
	}
	if err := r.Validate(); err != nil {
		return Rule{}, err
	}
	return r, nil
}

// NewRuleFromFloat builds a flat rule from float inputs, rejecting NaN and
// infinities before they reach decimal conversion.
func NewRuleFromFloat(rate, minimum float64) (Rule, error) {
	if err := finite("rate", rate); err != nil {
		return Rule{}, err
	}
	if err := finite("minimum", minimum); err != nil {
		return Rule{}, err
	}
	return NewRule(decimal.NewFromFloat(rate), decimal.NewFromFloat(minimum))
}

// MustRule panics if the rule is invalid. Use for constants and tests.
func MustRule(rate, minimum string, tiers ...Tier) Rule {
	r, err := NewTieredRule(decimal.RequireFromString(rate), decimal.RequireFromString(minimum), tiers...)
	if err != nil {
		panic(err)
	}
	return r
}

// DefaultRule is the standard partner agreement: 15% with a 50 minimum.
func DefaultRule() Rule {
	return Rule{
		rate:    decimal.RequireFromString("0.15"),
		minimum: decimal.NewFromInt(50),
	}
}

func (r Rule) Rate() decimal.Decimal    { return r.rate }
func (r Rule) Minimum() decimal.Decimal { return r.minimum }
func (r Rule) IsTiered() bool           { return len(r.tiers) > 0 }

// Tiers returns a copy of the rule's tiers.
func (r Rule) Tiers() []Tier {
	if len(r.tiers) == 0 {
		return nil
	}
	return append([]Tier(nil), r.tiers...)
}

// RuleFor implements RuleResolver: a plain rule applies to every sale.
func (r Rule) RuleFor(Sale) Rule { return r }

// Equal reports whether two rules pay the same on every sale.
func (r Rule) Equal(other Rule) bool {
	if !r.rate.Equal(other.rate) || !r.minimum.Equal(other.minimum) || len(r.tiers) != len(other.tiers) {
		return false
	}
	for i := range r.tiers {
		if !r.tiers[i].Threshold.Equal(other.tiers[i].Threshold) || !r.tiers[i].Rate.Equal(other.tiers[i].Rate) {
			return false
		}
	}
	return true
}

// Validate checks the rule's invariants.
func (r Rule) Validate() error {
	if err := r.checkMagnitudes(); err != nil {
		return err
	}
	if err := checkRate("rate", r.rate); err != nil {
		return err
	}
	if r.minimum.IsNegative() {
		return &InvalidInputError{Field: "minimum", Value: r.minimum.String(), Reason: "must not be negative"}
	}

	prevRate := r.rate
	var prevThreshold *decimal.Decimal
	for i, t := range r.tiers {
		field := fmt.Sprintf("tiers[%d]", i)
		if t.Threshold.IsNegative() {
			return &InvalidInputError{Field: field + ".threshold", Value: t.Threshold.String(), Reason: "must not be negative"}
		}
		if prevThreshold != nil && !t.Threshold.GreaterThan(*prevThreshold) {
			return &InvalidInputError{Field: field + ".threshold", Value: t.Threshold.String(), Reason: "thresholds must be strictly increasing"}
		}
		if err := checkRate(field+".rate", t.Rate); err != nil {
			return err
		}
		if t.Rate.LessThan(prevRate) {
			return &InvalidInputError{Field: field + ".rate", Value: t.Rate.String(), Reason: "tier rates must not decrease"}
		}
		threshold := t.Threshold
		prevThreshold = &threshold
		prevRate = t.Rate
	}
	return nil
}

// RateFor returns the rate that applies to a sale of the given amount.
func (r Rule) RateFor(amount decimal.Decimal) decimal.Decimal {
	rate := r.rate
	for _, t := range r.tiers {
		if amount.LessThan(t.Threshold) {
			break
		}
		rate = t.Rate
	}
	return rate
}

// Breakeven returns the smallest sale amount whose rate-based commission
// reaches the minimum. Above it partners earn more than the floor. The
// second result is false when no amount gets there (every rate is zero but
// the minimum is not). Non-terminating quotients are cut at decimal's
// default division precision.
func (r Rule) Breakeven() (decimal.Decimal, bool) {
	if r.minimum.IsZero() {
		return decimal.Zero, true
	}

	start := decimal.Zero
	rate := r.rate
	for i := 0; i <= len(r.tiers); i++ {
		var end *decimal.Decimal
		if i < len(r.tiers) {
			e := r.tiers[i].Threshold
			end = &e
		}
		if rate.IsPositive() {
			candidate := decimal.Max(r.minimum.Div(rate), start)
			if end == nil || candidate.LessThan(*end) {
				return candidate, true
			}
		}
		if end != nil {
			start = *end
			rate = r.tiers[i].Rate
		}
	}
	return decimal.Zero, false
}

// String renders the rule for logs, e.g. "15% (min 50)".
func (r Rule) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s%% (min %s)", r.rate.Mul(hundred).String(), r.minimum.String())
	for _, t := range r.tiers {
		fmt.Fprintf(&b, ", %s%% from %s", t.Rate.Mul(hundred).String(), t.Threshold.String())
	}
	return b.String()
}

// checkMagnitudes must run before any comparison on the rule's values.
func (r Rule) checkMagnitudes() error {
	if err := CheckMagnitude("rate", r.rate); err != nil {
		return err
	}
	if err := CheckMagnitude("minimum", r.minimum); err != nil {
		return err
	}
	for i, t := range r.tiers {
		field := fmt.Sprintf("tiers[%d]", i)
		if err := CheckMagnitude(field+".threshold", t.Threshold); err != nil {
			return err
		}
		if err := CheckMagnitude(field+".rate", t.Rate); err != nil {
			return err
		}
	}
	return nil
}

func checkRate(field string, rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(one) {
		return &InvalidInputError{Field: field, Value: rate.String(), Reason: "must be between 0 and 1"}
	}
	return nil
}

func finite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &InvalidInputError{Field: field, Reason: "must be a finite number"}
	}
	return nil
}
