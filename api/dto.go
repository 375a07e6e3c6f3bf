/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the commission model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

MONEY:
  Amounts and rates are decimal.Decimal. Requests may send JSON numbers or
  numeric strings; responses always send strings ("150", "0.15") so no
  client parses money through a float. Every money field also has a
  formatted twin for display.

VALIDATION:
  Request structs carry `validate` tags checked by go-playground/validator
  before any domain call. Domain rules (negative amounts, rate range, status
  names) are still enforced by the commission package.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/rules.go: RuleJSON type
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/warp/commission-engine/factory"
)

// =============================================================================
// RULES
// =============================================================================

// RuleDTO represents a commission rule in API responses.
type RuleDTO struct {
	Rate        decimal.Decimal    `json:"rate"`
	RatePercent decimal.Decimal    `json:"rate_percent"`
	Minimum     decimal.Decimal    `json:"minimum"`
	Tiers       []factory.TierJSON `json:"tiers,omitempty"`
	Breakeven   *decimal.Decimal   `json:"breakeven,omitempty"`
	Description string             `json:"description"`
}

// PartnerRuleDTO is the effective rule for one partner.
type PartnerRuleDTO struct {
	PartnerID string  `json:"partner_id"`
	Override  bool    `json:"override"`
	Rule      RuleDTO `json:"rule"`
}

// =============================================================================
// CALCULATION
// =============================================================================

// CalculateRequest asks for the commission on one sale. Without a rule the
// partner's rule (or the default) applies.
type CalculateRequest struct {
	SaleAmount *decimal.Decimal  `json:"sale_amount" validate:"required"`
	PartnerID  string            `json:"partner_id,omitempty" validate:"omitempty,max=128"`
	Rule       *factory.RuleJSON `json:"rule,omitempty" validate:"omitempty"`
	Currency   string            `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
	Locale     string            `json:"locale,omitempty" validate:"omitempty,max=35"`
}

// ResultDTO is the commission on one sale.
type ResultDTO struct {
	SaleID       string          `json:"sale_id,omitempty"`
	PartnerID    string          `json:"partner_id,omitempty"`
	SaleAmount   decimal.Decimal `json:"sale_amount"`
	Commission   decimal.Decimal `json:"commission"`
	AppliedRate  decimal.Decimal `json:"applied_rate"`
	FloorApplied bool            `json:"floor_applied"`
	Formatted    AmountsDTO      `json:"formatted"`
}

// AmountsDTO holds display strings.
type AmountsDTO struct {
	SaleAmount string `json:"sale_amount"`
	Commission string `json:"commission"`
}

// CalculateResponse wraps a result with the rule that produced it.
type CalculateResponse struct {
	Result ResultDTO `json:"result"`
	Rule   RuleDTO   `json:"rule"`
}

// =============================================================================
// REPORTS
// =============================================================================

// SaleDTO is a sale in a report request. Date accepts 2006-01-02 or RFC 3339.
type SaleDTO struct {
	ID        string           `json:"id,omitempty" validate:"omitempty,max=128"`
	PartnerID string           `json:"partner_id,omitempty" validate:"omitempty,max=128"`
	Shop      string           `json:"shop,omitempty" validate:"omitempty,max=255"`
	Date      string           `json:"date,omitempty"`
	Amount    *decimal.Decimal `json:"amount" validate:"required"`
	Status    string           `json:"status,omitempty"`
}

// FilterDTO selects sales before aggregation.
type FilterDTO struct {
	Status    string `json:"status,omitempty"` // "" or "all" for every status
	Range     string `json:"range,omitempty"`  // all, month, last-month, year
	Now       string `json:"now,omitempty"`    // anchors range; defaults to server time
	PartnerID string `json:"partner_id,omitempty"`
}

// ReportRequest aggregates a batch of sales.
type ReportRequest struct {
	Sales    []SaleDTO         `json:"sales" validate:"max=10000,dive"`
	Rule     *factory.RuleJSON `json:"rule,omitempty" validate:"omitempty"`
	GroupBy  []string          `json:"group_by,omitempty" validate:"max=3"`
	Filter   *FilterDTO        `json:"filter,omitempty" validate:"omitempty"`
	Currency string            `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
	Locale   string            `json:"locale,omitempty" validate:"omitempty,max=35"`
}

// ReportDTO is an aggregated report. Lines are only listed at the top level.
type ReportDTO struct {
	TotalSales      decimal.Decimal `json:"total_sales"`
	TotalCommission decimal.Decimal `json:"total_commission"`
	Count           int             `json:"count"`
	FloorCount      int             `json:"floor_count"`
	Formatted       TotalsDTO       `json:"formatted"`
	Lines           []ResultDTO     `json:"lines,omitempty"`
	Groups          []GroupDTO      `json:"groups,omitempty"`
}

// TotalsDTO holds display strings for report totals.
type TotalsDTO struct {
	TotalSales      string `json:"total_sales"`
	TotalCommission string `json:"total_commission"`
}

// GroupDTO is one bucket of a grouped report.
type GroupDTO struct {
	Key    string    `json:"key"`
	Report ReportDTO `json:"report"`
}

// SummaryDTO holds the headline figures of a commission page.
type SummaryDTO struct {
	Total      string `json:"total"`
	Pending    string `json:"pending"`
	Processing string `json:"processing"`
	Paid       string `json:"paid"`
	YearToDate string `json:"year_to_date"`
}

// =============================================================================
// ILLUSTRATION
// =============================================================================

// TierTableDTO is the sample commission table for a rule.
type TierTableDTO struct {
	Rule RuleDTO     `json:"rule"`
	Rows []ResultDTO `json:"rows"`
}

// =============================================================================
// CURRENCY
// =============================================================================

// FormatRequest formats one amount.
type FormatRequest struct {
	Amount   *decimal.Decimal `json:"amount" validate:"required"`
	Currency string           `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
	Locale   string           `json:"locale,omitempty" validate:"omitempty,max=35"`
}

// FormatResponse is a formatted amount.
type FormatResponse struct {
	Formatted string `json:"formatted"`
	Currency  string `json:"currency"`
	Locale    string `json:"locale"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO describes a demo data set.
type ScenarioDTO struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Sales       int      `json:"sales"`
	GroupBy     []string `json:"group_by,omitempty"`
}

// ScenarioReportDTO is a scenario's report and headline figures.
type ScenarioReportDTO struct {
	Scenario ScenarioDTO `json:"scenario"`
	Now      string      `json:"now"`
	Summary  SummaryDTO  `json:"summary"`
	Report   ReportDTO   `json:"report"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorBody is the canonical error payload, sent as {"error": ErrorBody}.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorResponse wraps ErrorBody.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// FieldErrorDTO names one failed validation.
type FieldErrorDTO struct {
	Field  string `json:"field"`
	Rule   string `json:"rule"`
	Param  string `json:"param,omitempty"`
	Reason string `json:"reason,omitempty"`
}
