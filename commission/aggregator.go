/*
aggregator.go - Fold a batch of sales into report totals

ALGORITHM:
  1. Resolve the rule for each sale and compute its commission.
  2. Accumulate totals in decimal (exact, so the total always equals the
     sum of the per-sale commissions).
  3. For each GroupFunc, partition the sales by key in order of first
     occurrence and aggregate every bucket with the remaining GroupFuncs.

BATCH POLICY:
  Fail fast. The first invalid sale aborts the whole call with a *SaleError
  naming its index and ID; no partial report is returned.
*/
package commission

import (
	"github.com/shopspring/decimal"
)

// RuleResolver picks the rule that applies to a sale.
// Rule (one rule for everything) and *RuleBook (per-partner) implement it.
type RuleResolver interface {
	RuleFor(sale Sale) Rule
}

// GroupFunc returns the bucket key for a sale.
type GroupFunc func(sale Sale) string

// Aggregate computes totals for sales under a single rule. Each groupBy adds
// one level of nested groups.
func Aggregate(sales []Sale, rule Rule, groupBy ...GroupFunc) (*Report, error) {
	return AggregateWith(sales, rule, groupBy...)
}

// AggregateWith is Aggregate with the rule resolved per sale.
func AggregateWith(sales []Sale, rules RuleResolver, groupBy ...GroupFunc) (*Report, error) {
	if rules == nil {
		return nil, &InvalidInputError{Field: "rule", Reason: "a rule resolver is required"}
	}

	results := make([]Result, len(sales))
	for i, s := range sales {
		res, err := CalculateSale(s, rules.RuleFor(s))
		if err != nil {
			return nil, &SaleError{Index: i, SaleID: s.ID, Err: err}
		}
		results[i] = res
	}

	return build(sales, results, groupBy), nil
}

// Total returns only the total commission over sales.
func Total(sales []Sale, rule Rule) (decimal.Decimal, error) {
	report, err := Aggregate(sales, rule)
	if err != nil {
		return decimal.Zero, err
	}
	return report.TotalCommission, nil
}

func build(sales []Sale, results []Result, groupBy []GroupFunc) *Report {
	report := newReport(len(results))
	for _, res := range results {
		report.add(res)
	}

	for len(groupBy) > 0 && groupBy[0] == nil {
		groupBy = groupBy[1:]
	}
	if len(groupBy) == 0 {
		return report
	}

	keyOf := groupBy[0]
	var order []string
	buckets := make(map[string][]int)
	for i, s := range sales {
		key := keyOf(s)
		if _, seen := buckets[key]; !seen {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], i)
	}

	report.Groups = make([]Group, 0, len(order))
	for _, key := range order {
		idx := buckets[key]
		subSales := make([]Sale, len(idx))
		subResults := make([]Result, len(idx))
		for j, i := range idx {
			subSales[j] = sales[i]
			subResults[j] = results[i]
		}
		report.Groups = append(report.Groups, Group{
			Key:    key,
			Report: build(subSales, subResults, groupBy[1:]),
		})
	}
	return report
}
