/*
Package commission computes partner commissions on referred sales.

PURPOSE:
  Partners refer shops; shops make sales; for every sale the partner earns

      commission = max(saleAmount * rate, minimum)

  This package holds that rule, the per-sale calculator, and the aggregator
  that folds a batch of sales into report totals (optionally grouped by
  partner, shop, period or status). Everything here is a pure function of
  its arguments: no I/O, no clocks, no shared mutable state except the
  RuleBook, which guards itself.

KEY CONCEPTS IN THIS FILE (types.go):
  - Sale:   one referred transaction (amount, partner, shop, date, status)
  - Result: the commission computed for one sale
  - Report: totals over many sales, with optional nested groups

DESIGN PRINCIPLES:
  1. Precision: all money is decimal.Decimal; commissions and totals are
     exact. Rounding only happens when formatting (see package currency).
  2. Fail loudly: negative amounts and out-of-range rules are errors, never
     clamped, so upstream data bugs surface instead of being paid out.
  3. Immutability: Rule values cannot be changed after construction; inputs
     are never mutated.

USAGE:
  rule := commission.DefaultRule() // 15%, minimum 50
  c, err := commission.Calculate(decimal.NewFromInt(1000), rule) // 150

  report, err := commission.Aggregate(sales, rule, commission.ByPartner, commission.ByMonth)
  for _, g := range report.Groups {
      fmt.Println(g.Key, g.Report.TotalCommission)
  }

SEE ALSO:
  - rule.go:       Rule and tiers
  - calculator.go: per-sale commission
  - aggregator.go: batch totals and grouping
  - rulebook.go:   per-partner rule overrides
*/
package commission

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type SaleID string
type PartnerID string

// =============================================================================
// SALE - Input to the engine, owned by the caller
// =============================================================================

// Sale is one referred sale. Only Amount takes part in the math; the other
// fields are used for traceability, grouping and filtering.
type Sale struct {
	ID        SaleID
	PartnerID PartnerID
	Shop      string
	Date      time.Time // zero = undated
	Amount    decimal.Decimal
	Status    SaleStatus // empty = unspecified
}

// =============================================================================
// RESULT - Commission for a single sale
// =============================================================================

type Result struct {
	SaleID       SaleID
	PartnerID    PartnerID
	SaleAmount   decimal.Decimal
	Commission   decimal.Decimal
	AppliedRate  decimal.Decimal
	FloorApplied bool // the minimum paid out instead of amount * rate
}

// =============================================================================
// REPORT - Aggregated totals
// =============================================================================

// Report holds totals over a set of sales. When built with grouping, Groups
// partitions the same sales by key in order of first occurrence; every line
// of the parent appears in exactly one group.
type Report struct {
	TotalSales      decimal.Decimal
	TotalCommission decimal.Decimal
	Count           int
	FloorCount      int
	Lines           []Result
	Groups          []Group
}

type Group struct {
	Key    string
	Report *Report
}

func newReport(capacity int) *Report {
	return &Report{
		TotalSales:      decimal.Zero,
		TotalCommission: decimal.Zero,
		Lines:           make([]Result, 0, capacity),
	}
}

func (r *Report) add(res Result) {
	r.TotalSales = r.TotalSales.Add(res.SaleAmount)
	r.TotalCommission = r.TotalCommission.Add(res.Commission)
	r.Count++
	if res.FloorApplied {
		r.FloorCount++
	}
	r.Lines = append(r.Lines, res)
}

// Group returns the nested report for key.
func (r *Report) Group(key string) (*Report, bool) {
	for _, g := range r.Groups {
		if g.Key == key {
			return g.Report, true
		}
	}
	return nil, false
}

// Keys returns group keys in first-occurrence order.
func (r *Report) Keys() []string {
	keys := make([]string, len(r.Groups))
	for i, g := range r.Groups {
		keys[i] = g.Key
	}
	return keys
}

// IsEmpty reports whether no sales were included.
func (r *Report) IsEmpty() bool { return r.Count == 0 }
