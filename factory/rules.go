/*
Package factory provides JSON to Go commission rule conversion.

PURPOSE:
  Converts JSON rule definitions into commission.Rule and commission.RuleBook
  values. Partner agreements can then be changed in a file or a request body
  without a code change.

JSON SCHEMA:
  {
    "default": {
      "id": "standard",
      "name": "Standard partner agreement",
      "rate": 0.15,
      "minimum": 50,
      "currency": "GBP"
    },
    "partners": {
      "partner-b": {"rate_percent": 12, "minimum": "40"},
      "partner-d": {
        "rate": 0.10,
        "minimum": 25,
        "tiers": [
          {"threshold": 1000, "rate": 0.12},
          {"threshold": 5000, "rate": 0.15}
        ]
      }
    }
  }

  Amounts and rates are JSON numbers or numeric strings and are decoded
  straight into decimals. A rule gives either "rate" (a fraction) or
  "rate_percent" (as the dashboard stores it), not both. Omitted fields fall
  back to the default rule's values.

USAGE:
  f := factory.NewRuleFactory()

  rule, err := f.ParseRule(`{"rate": 0.2, "minimum": 30}`)
  book, err := f.ParseRuleBook(data)

  jsonStr := factory.StandardRuleJSON("standard", "Standard", 15, 50)

SEE ALSO:
  - commission/rule.go: Rule validation
  - commission/rulebook.go: per-partner resolution
*/
package factory

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/warp/commission-engine/commission"
	"github.com/warp/commission-engine/currency"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// RuleJSON is the JSON representation of a rule.
type RuleJSON struct {
	ID          string           `json:"id,omitempty"`
	Name        string           `json:"name,omitempty"`
	Rate        *decimal.Decimal `json:"rate,omitempty"`
	RatePercent *decimal.Decimal `json:"rate_percent,omitempty"`
	Minimum     *decimal.Decimal `json:"minimum,omitempty"`
	Currency    string           `json:"currency,omitempty"` // ISO 4217, informational
	Tiers       []TierJSON       `json:"tiers,omitempty"`
}

// TierJSON is one volume tier.
type TierJSON struct {
	Threshold decimal.Decimal `json:"threshold"`
	Rate      decimal.Decimal `json:"rate"`
}

// RuleBookJSON is a default rule plus per-partner overrides.
type RuleBookJSON struct {
	Default  *RuleJSON            `json:"default,omitempty"`
	Partners map[string]RuleJSON `json:"partners,omitempty"`
}

// =============================================================================
// RULE FACTORY
// =============================================================================

// RuleFactory converts JSON rules to commission rules. Fields a definition
// omits are taken from the fallback rule.
type RuleFactory struct {
	fallback commission.Rule
}

// NewRuleFactory creates a factory falling back to commission.DefaultRule.
func NewRuleFactory() *RuleFactory {
	return &RuleFactory{fallback: commission.DefaultRule()}
}

// WithFallback returns a factory that fills omitted fields from r.
func (f *RuleFactory) WithFallback(r commission.Rule) *RuleFactory {
	return &RuleFactory{fallback: r}
}

// ParseRule parses a JSON string into a Rule.
func (f *RuleFactory) ParseRule(jsonStr string) (commission.Rule, error) {
	var rj RuleJSON
	if err := json.Unmarshal([]byte(jsonStr), &rj); err != nil {
		return commission.Rule{}, fmt.Errorf("failed to parse rule JSON: %w", err)
	}
	return f.FromJSON(rj)
}

// FromJSON converts RuleJSON to a validated Rule.
func (f *RuleFactory) FromJSON(rj RuleJSON) (commission.Rule, error) {
	rate, err := parseRate(rj, f.fallback.Rate())
	if err != nil {
		return commission.Rule{}, err
	}

	minimum := f.fallback.Minimum()
	if rj.Minimum != nil {
		minimum = *rj.Minimum
	}

	if rj.Currency != "" {
		if _, err := currency.NewFormatter(rj.Currency, ""); err != nil {
			return commission.Rule{}, err
		}
	}

	tiers := make([]commission.Tier, 0, len(rj.Tiers))
	for _, tj := range rj.Tiers {
		tiers = append(tiers, commission.Tier{Threshold: tj.Threshold, Rate: tj.Rate})
	}

	return commission.NewTieredRule(rate, minimum, tiers...)
}

// ParseRuleBook parses a JSON rule book.
func (f *RuleFactory) ParseRuleBook(data []byte) (*commission.RuleBook, error) {
	var bj RuleBookJSON
	if err := json.Unmarshal(data, &bj); err != nil {
		return nil, fmt.Errorf("failed to parse rule book JSON: %w", err)
	}
	return f.RuleBookFromJSON(bj)
}

// LoadRuleBook reads and parses a rule book file.
func (f *RuleFactory) LoadRuleBook(path string) (*commission.RuleBook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule book %s: %w", path, err)
	}
	return f.ParseRuleBook(data)
}

// RuleBookFromJSON builds a RuleBook. Partner overrides inherit omitted
// fields from the book's default, not from the factory's fallback.
func (f *RuleFactory) RuleBookFromJSON(bj RuleBookJSON) (*commission.RuleBook, error) {
	def := f.fallback
	if bj.Default != nil {
		var err error
		def, err = f.FromJSON(*bj.Default)
		if err != nil {
			return nil, fmt.Errorf("default rule: %w", err)
		}
	}

	book := commission.NewRuleBook(def)
	partnerFactory := f.WithFallback(def)
	for id, rj := range bj.Partners {
		if id == "" {
			return nil, &commission.InvalidInputError{Field: "partners", Reason: "partner id must not be empty"}
		}
		rule, err := partnerFactory.FromJSON(rj)
		if err != nil {
			return nil, fmt.Errorf("partner %s: %w", id, err)
		}
		book.Set(commission.PartnerID(id), rule)
	}
	return book, nil
}

// =============================================================================
// SERIALIZATION
// =============================================================================

// ToJSON converts a Rule back to its JSON form.
func ToJSON(r commission.Rule) RuleJSON {
	rate := r.Rate()
	minimum := r.Minimum()
	rj := RuleJSON{Rate: &rate, Minimum: &minimum}
	for _, t := range r.Tiers() {
		rj.Tiers = append(rj.Tiers, TierJSON{Threshold: t.Threshold, Rate: t.Rate})
	}
	return rj
}

// BookToJSON converts a RuleBook back to its JSON form.
func BookToJSON(b *commission.RuleBook) RuleBookJSON {
	def := ToJSON(b.Default())
	bj := RuleBookJSON{Default: &def}
	partners := b.Partners()
	if len(partners) > 0 {
		bj.Partners = make(map[string]RuleJSON, len(partners))
	}
	for _, p := range partners {
		r, _ := b.Lookup(p)
		bj.Partners[string(p)] = ToJSON(r)
	}
	return bj
}

// =============================================================================
// PRESETS
// =============================================================================

// StandardRuleJSON returns JSON for a flat rule expressed as a percentage,
// the way partner agreements are written.
func StandardRuleJSON(id, name string, ratePercent, minimum float64) string {
	return fmt.Sprintf(`{
		"id": %q,
		"name": %q,
		"rate_percent": %v,
		"minimum": %v,
		"currency": %q
	}`, id, name, ratePercent, minimum, currency.DefaultCode)
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseRate(rj RuleJSON, fallback decimal.Decimal) (decimal.Decimal, error) {
	switch {
	case rj.Rate != nil && rj.RatePercent != nil:
		return decimal.Zero, &commission.InvalidInputError{Field: "rate", Reason: "give either rate or rate_percent, not both"}
	case rj.RatePercent != nil:
		if err := commission.CheckMagnitude("rate_percent", *rj.RatePercent); err != nil {
			return decimal.Zero, err
		}
		return rj.RatePercent.Div(decimal.NewFromInt(100)), nil
	case rj.Rate != nil:
		return *rj.Rate, nil
	default:
		return fallback, nil
	}
}
