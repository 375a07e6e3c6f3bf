package commission

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amounts, rates, minimums and thresholds are limited to MaxIntegerDigits
// digits before the decimal point and MaxFractionDigits after it.
const (
	MaxIntegerDigits  = 15
	MaxFractionDigits = 16
)

// Calculate returns the commission payable on one sale:
//
//	max(saleAmount * rate, minimum)
//
// A zero sale still earns the minimum, and a zero rate always pays exactly
// the minimum. Negative amounts fail with *InvalidInputError.
func Calculate(saleAmount decimal.Decimal, rule Rule) (decimal.Decimal, error) {
	res, err := evaluate(saleAmount, rule)
	if err != nil {
		return decimal.Zero, err
	}
	return res.Commission, nil
}

// CalculateSale is Calculate with the sale's identity carried into the result.
func CalculateSale(sale Sale, rule Rule) (Result, error) {
	res, err := evaluate(sale.Amount, rule)
	if err != nil {
		return Result{}, err
	}
	res.SaleID = sale.ID
	res.PartnerID = sale.PartnerID
	return res, nil
}

// AmountFromFloat converts a float sale amount, rejecting NaN, infinities and
// negatives.
func AmountFromFloat(f float64) (decimal.Decimal, error) {
	if err := finite("sale_amount", f); err != nil {
		return decimal.Zero, err
	}
	d := decimal.NewFromFloat(f)
	if err := CheckMagnitude("sale_amount", d); err != nil {
		return decimal.Zero, err
	}
	if f < 0 {
		return decimal.Zero, negativeAmount(d)
	}
	return d, nil
}

// CheckMagnitude rejects values outside the digit limits. It reads only the
// coefficient length and exponent, so a value like 1e900000000 is refused
// without being expanded.
func CheckMagnitude(field string, d decimal.Decimal) error {
	exp := int64(d.Exponent())
	if exp < -MaxFractionDigits {
		return &InvalidInputError{Field: field, Reason: fmt.Sprintf("at most %d decimal places", MaxFractionDigits)}
	}
	if int64(d.NumDigits())+exp > MaxIntegerDigits {
		return &InvalidInputError{Field: field, Reason: fmt.Sprintf("at most %d integer digits", MaxIntegerDigits)}
	}
	return nil
}

func evaluate(amount decimal.Decimal, rule Rule) (Result, error) {
	if err := CheckMagnitude("sale_amount", amount); err != nil {
		return Result{}, err
	}
	if amount.IsNegative() {
		return Result{}, negativeAmount(amount)
	}
	if err := rule.Validate(); err != nil {
		return Result{}, err
	}

	rate := rule.RateFor(amount)
	res := Result{
		SaleAmount:  amount,
		AppliedRate: rate,
		Commission:  amount.Mul(rate),
	}
	if res.Commission.LessThan(rule.minimum) {
		res.Commission = rule.minimum
		res.FloorApplied = true
	}
	return res, nil
}

func negativeAmount(amount decimal.Decimal) error {
	return &InvalidInputError{Field: "sale_amount", Value: amount.String(), Reason: "must not be negative"}
}
