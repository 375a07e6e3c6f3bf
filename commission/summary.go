package commission

import (
	"time"

	"github.com/shopspring/decimal"
)

// Summary holds the headline figures of a partner's commission page.
type Summary struct {
	Total      decimal.Decimal
	Pending    decimal.Decimal
	Processing decimal.Decimal
	Paid       decimal.Decimal
	YearToDate decimal.Decimal // commissions on sales dated in now's year
}

// Summarize computes the headline figures for sales. Sales without a status
// count towards Total only.
func Summarize(sales []Sale, rules RuleResolver, now time.Time) (Summary, error) {
	report, err := AggregateWith(sales, rules, ByStatus)
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{
		Total:      report.TotalCommission,
		Pending:    groupTotal(report, string(SalePending)),
		Processing: groupTotal(report, string(SaleProcessing)),
		Paid:       groupTotal(report, string(SalePaid)),
		YearToDate: decimal.Zero,
	}

	ytd, ok := RangeYear.Period(now)
	if !ok {
		return sum, nil
	}
	for i, s := range sales {
		if !s.Date.IsZero() && ytd.Contains(s.Date) {
			sum.YearToDate = sum.YearToDate.Add(report.Lines[i].Commission)
		}
	}
	return sum, nil
}

func groupTotal(r *Report, key string) decimal.Decimal {
	if g, ok := r.Group(key); ok {
		return g.TotalCommission
	}
	return decimal.Zero
}
