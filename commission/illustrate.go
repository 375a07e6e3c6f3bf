package commission

import (
	"github.com/shopspring/decimal"
)

// IllustrationAmounts are the sample sale sizes shown to partners when
// explaining their rule.
func IllustrationAmounts() []decimal.Decimal {
	return []decimal.Decimal{
		decimal.NewFromInt(100),
		decimal.NewFromInt(250),
		decimal.NewFromInt(500),
		decimal.NewFromInt(1000),
		decimal.NewFromInt(2500),
		decimal.NewFromInt(5000),
		decimal.NewFromInt(10000),
	}
}

// Illustrate computes the commission for each amount, defaulting to
// IllustrationAmounts.
func Illustrate(rule Rule, amounts ...decimal.Decimal) ([]Result, error) {
	if len(amounts) == 0 {
		amounts = IllustrationAmounts()
	}
	out := make([]Result, 0, len(amounts))
	for _, a := range amounts {
		res, err := evaluate(a, rule)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}
