/*
handlers.go - HTTP API handlers for the commission engine

PURPOSE:
  Exposes the commission engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the commission package.

ENDPOINTS:
  Rules:
    GET    /api/rules                        Rule book (default + overrides)
    GET    /api/rules/default                Default rule
    GET    /api/rules/partners/{id}          Effective rule for a partner

  Commissions:
    POST   /api/commissions/calculate        Commission on one sale
    POST   /api/commissions/report           Aggregate a batch of sales
    GET    /api/commissions/tiers            Sample commission table

  Currency:
    POST   /api/currency/format              Format an amount

  Scenarios:
    GET    /api/scenarios                    List demo data sets
    GET    /api/scenarios/{id}/report        Report for a demo data set

ARCHITECTURE:
  Handler holds all dependencies:
  - Rules: the rule book (default rule + partner overrides)
  - Factory: JSON to Rule conversion for rules posted inline
  - Currency/Locale: display defaults
  - Metrics: engine counters (optional)

REQUEST FLOW:
  1. Decode JSON body
  2. Validate struct tags
  3. Convert DTOs to commission types
  4. Call commission package
  5. Serialize response

ERROR HANDLING:
  Errors use the canonical body {"error": {"code", "message", "details"}}:
  - 400 INVALID_INPUT: malformed JSON, failed validation, out-of-domain input
  - 404 NOT_FOUND: unknown scenario
  - 500 INTERNAL: anything else

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo data sets
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/warp/commission-engine/commission"
	"github.com/warp/commission-engine/currency"
	"github.com/warp/commission-engine/factory"
	"github.com/warp/commission-engine/obs"
)

const maxBodyBytes = 1 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Rules    *commission.RuleBook
	Factory  *factory.RuleFactory
	Currency string
	Locale   string
	Metrics  *obs.EngineMetrics
	Logger   zerolog.Logger

	validate *validator.Validate
	now      func() time.Time
}

// NewHandler creates a handler over the given rule book.
func NewHandler(rules *commission.RuleBook) *Handler {
	return &Handler{
		Rules:    rules,
		Factory:  factory.NewRuleFactory().WithFallback(rules.Default()),
		Currency: currency.DefaultCode,
		Locale:   currency.DefaultLocale,
		Logger:   zerolog.Nop(),
		validate: newValidator(),
		now:      time.Now,
	}
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// =============================================================================
// RULE HANDLERS
// =============================================================================

// ListRules returns the whole rule book.
// GET /api/rules
func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, factory.BookToJSON(h.Rules))
}

// GetDefaultRule returns the default rule.
// GET /api/rules/default
func (h *Handler) GetDefaultRule(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toRuleDTO(h.Rules.Default()))
}

// GetPartnerRule returns the rule that applies to a partner.
// GET /api/rules/partners/{id}
func (h *Handler) GetPartnerRule(w http.ResponseWriter, r *http.Request) {
	id := commission.PartnerID(chi.URLParam(r, "id"))
	_, override := h.Rules.Lookup(id)

	writeJSON(w, http.StatusOK, PartnerRuleDTO{
		PartnerID: string(id),
		Override:  override,
		Rule:      toRuleDTO(h.Rules.Resolve(id)),
	})
}

// =============================================================================
// COMMISSION HANDLERS
// =============================================================================

// Calculate returns the commission on one sale.
// POST /api/commissions/calculate
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if !h.decode(w, r, &req) {
		return
	}

	fmtr, err := h.formatter(req.Currency, req.Locale)
	if err != nil {
		respondError(w, err)
		return
	}

	rule, err := h.ruleFor(req.Rule, commission.PartnerID(req.PartnerID))
	if err != nil {
		respondError(w, err)
		return
	}

	sale := commission.Sale{PartnerID: commission.PartnerID(req.PartnerID), Amount: *req.SaleAmount}
	res, err := commission.CalculateSale(sale, rule)
	h.Metrics.ObserveCalculation(err, res.FloorApplied)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, CalculateResponse{
		Result: toResultDTO(res, fmtr),
		Rule:   toRuleDTO(rule),
	})
}

// Report aggregates a batch of sales.
// POST /api/commissions/report
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	var req ReportRequest
	if !h.decode(w, r, &req) {
		return
	}

	fmtr, err := h.formatter(req.Currency, req.Locale)
	if err != nil {
		respondError(w, err)
		return
	}

	groupBy, err := parseGroupBy(req.GroupBy)
	if err != nil {
		respondError(w, err)
		return
	}

	var rules commission.RuleResolver = h.Rules
	if req.Rule != nil {
		rule, err := h.ruleFor(req.Rule, "")
		if err != nil {
			respondError(w, err)
			return
		}
		rules = rule
	}

	sales, err := toSales(req.Sales)
	if err != nil {
		respondError(w, err)
		return
	}

	if req.Filter != nil {
		criteria, err := h.toCriteria(*req.Filter)
		if err != nil {
			respondError(w, err)
			return
		}
		sales = commission.Filter(sales, criteria)
	}

	report, err := commission.AggregateWith(sales, rules, groupBy...)
	if err != nil {
		h.Metrics.ObserveReport(err, 0, 0)
		respondError(w, err)
		return
	}
	h.Metrics.ObserveReport(nil, report.Count, report.FloorCount)

	writeJSON(w, http.StatusOK, toReportDTO(report, fmtr, true))
}

// Tiers returns the sample commission table for a rule.
// GET /api/commissions/tiers?rate=&minimum=&partner_id=&currency=&locale=
func (h *Handler) Tiers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	fmtr, err := h.formatter(q.Get("currency"), q.Get("locale"))
	if err != nil {
		respondError(w, err)
		return
	}

	var inline *factory.RuleJSON
	if q.Has("rate") || q.Has("minimum") {
		inline = &factory.RuleJSON{}
		if inline.Rate, err = queryDecimal(q.Get("rate"), "rate"); err != nil {
			respondError(w, err)
			return
		}
		if inline.Minimum, err = queryDecimal(q.Get("minimum"), "minimum"); err != nil {
			respondError(w, err)
			return
		}
	}

	rule, err := h.ruleFor(inline, commission.PartnerID(q.Get("partner_id")))
	if err != nil {
		respondError(w, err)
		return
	}

	results, err := commission.Illustrate(rule)
	if err != nil {
		respondError(w, err)
		return
	}

	table := TierTableDTO{Rule: toRuleDTO(rule), Rows: make([]ResultDTO, len(results))}
	for i, res := range results {
		table.Rows[i] = toResultDTO(res, fmtr)
	}
	writeJSON(w, http.StatusOK, table)
}

// =============================================================================
// CURRENCY HANDLERS
// =============================================================================

// FormatCurrency formats one amount.
// POST /api/currency/format
func (h *Handler) FormatCurrency(w http.ResponseWriter, r *http.Request) {
	var req FormatRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := commission.CheckMagnitude("amount", *req.Amount); err != nil {
		respondError(w, err)
		return
	}

	fmtr, err := h.formatter(req.Currency, req.Locale)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FormatResponse{
		Formatted: fmtr.Format(*req.Amount),
		Currency:  fmtr.Code(),
		Locale:    fmtr.Locale(),
	})
}

// Health reports liveness.
// GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

// decode reads and validates a JSON body, writing the error response itself.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid JSON body", err.Error())
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		respondError(w, err)
		return false
	}
	return true
}

func (h *Handler) formatter(code, locale string) (*currency.Formatter, error) {
	if strings.TrimSpace(code) == "" {
		code = h.Currency
	}
	if strings.TrimSpace(locale) == "" {
		locale = h.Locale
	}
	return currency.NewFormatter(code, locale)
}

// ruleFor builds an inline rule (fields default to the partner's rule, or the
// book's current default for an empty partner) or resolves the partner's rule
// from the book.
func (h *Handler) ruleFor(inline *factory.RuleJSON, partner commission.PartnerID) (commission.Rule, error) {
	base := h.Rules.Resolve(partner)
	if inline == nil {
		return base, nil
	}
	return h.Factory.WithFallback(base).FromJSON(*inline)
}

func (h *Handler) toCriteria(f FilterDTO) (commission.Criteria, error) {
	c := commission.Criteria{PartnerID: commission.PartnerID(f.PartnerID), Now: h.now()}

	if s := strings.TrimSpace(f.Status); s != "" && !strings.EqualFold(s, "all") {
		status, err := commission.ParseSaleStatus(s)
		if err != nil {
			return c, err
		}
		c.Status = status
	}

	rng, err := commission.ParseDateRange(f.Range)
	if err != nil {
		return c, err
	}
	c.Range = rng

	if f.Now != "" {
		now, err := parseDate(f.Now, "filter.now")
		if err != nil {
			return c, err
		}
		c.Now = now
	}
	return c, nil
}

func parseGroupBy(names []string) ([]commission.GroupFunc, error) {
	out := make([]commission.GroupFunc, 0, len(names))
	for _, name := range names {
		fn, err := commission.ParseGroupBy(name)
		if err != nil {
			return nil, err
		}
		out = append(out, fn)
	}
	return out, nil
}

func toSales(dtos []SaleDTO) ([]commission.Sale, error) {
	sales := make([]commission.Sale, len(dtos))
	for i, d := range dtos {
		s := commission.Sale{
			ID:        commission.SaleID(d.ID),
			PartnerID: commission.PartnerID(d.PartnerID),
			Shop:      d.Shop,
			Amount:    *d.Amount,
		}
		if s.ID == "" {
			s.ID = commission.SaleID(uuid.NewString())
		}
		if d.Date != "" {
			date, err := parseDate(d.Date, fmt.Sprintf("sales[%d].date", i))
			if err != nil {
				return nil, err
			}
			s.Date = date
		}
		if d.Status != "" {
			status, err := commission.ParseSaleStatus(d.Status)
			if err != nil {
				return nil, &commission.SaleError{Index: i, SaleID: s.ID, Err: err}
			}
			s.Status = status
		}
		sales[i] = s
	}
	return sales, nil
}

func parseDate(s, field string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, &commission.InvalidInputError{Field: field, Value: s, Reason: "expected YYYY-MM-DD or RFC 3339"}
}

func queryDecimal(s, field string) (*decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, &commission.InvalidInputError{Field: field, Value: s, Reason: "must be a number"}
	}
	return &d, nil
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	writeJSON(w, status, ErrorResponse{Error: ErrorBody{Code: code, Message: message, Details: details}})
}

// respondError maps an error to its HTTP status and canonical body.
func respondError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]FieldErrorDTO, len(verrs))
		for i, fe := range verrs {
			details[i] = FieldErrorDTO{Field: fieldPath(fe), Rule: fe.Tag(), Param: fe.Param()}
		}
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "validation failed", details)
		return
	}

	if isClientError(err) {
		var details any
		var inputErr *commission.InvalidInputError
		if errors.As(err, &inputErr) {
			details = []FieldErrorDTO{{Field: inputErr.Field, Rule: "domain", Reason: inputErr.Reason}}
		}
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error(), details)
		return
	}

	writeError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
}

// fieldPath drops the request type from the namespace: "sales[0].amount".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func isClientError(err error) bool {
	return commission.IsClientError(err) ||
		errors.Is(err, currency.ErrUnsupportedCurrency) ||
		errors.Is(err, currency.ErrUnsupportedLocale)
}

// =============================================================================
// DTO CONVERSION
// =============================================================================

func toRuleDTO(rule commission.Rule) RuleDTO {
	dto := RuleDTO{
		Rate:        rule.Rate(),
		RatePercent: rule.Rate().Mul(decimal.NewFromInt(100)),
		Minimum:     rule.Minimum(),
		Description: rule.String(),
	}
	for _, t := range rule.Tiers() {
		dto.Tiers = append(dto.Tiers, factory.TierJSON{Threshold: t.Threshold, Rate: t.Rate})
	}
	if be, ok := rule.Breakeven(); ok {
		be = be.Round(2)
		dto.Breakeven = &be
	}
	return dto
}

func toResultDTO(res commission.Result, fmtr *currency.Formatter) ResultDTO {
	return ResultDTO{
		SaleID:       string(res.SaleID),
		PartnerID:    string(res.PartnerID),
		SaleAmount:   res.SaleAmount,
		Commission:   res.Commission,
		AppliedRate:  res.AppliedRate,
		FloorApplied: res.FloorApplied,
		Formatted: AmountsDTO{
			SaleAmount: fmtr.Format(res.SaleAmount),
			Commission: fmtr.Format(res.Commission),
		},
	}
}

func toReportDTO(report *commission.Report, fmtr *currency.Formatter, withLines bool) ReportDTO {
	dto := ReportDTO{
		TotalSales:      report.TotalSales,
		TotalCommission: report.TotalCommission,
		Count:           report.Count,
		FloorCount:      report.FloorCount,
		Formatted: TotalsDTO{
			TotalSales:      fmtr.Format(report.TotalSales),
			TotalCommission: fmtr.Format(report.TotalCommission),
		},
	}
	if withLines {
		dto.Lines = make([]ResultDTO, len(report.Lines))
		for i, line := range report.Lines {
			dto.Lines[i] = toResultDTO(line, fmtr)
		}
	}
	for _, g := range report.Groups {
		dto.Groups = append(dto.Groups, GroupDTO{Key: g.Key, Report: toReportDTO(g.Report, fmtr, false)})
	}
	return dto
}

func toSummaryDTO(sum commission.Summary, fmtr *currency.Formatter) SummaryDTO {
	return SummaryDTO{
		Total:      fmtr.Format(sum.Total),
		Pending:    fmtr.Format(sum.Pending),
		Processing: fmtr.Format(sum.Processing),
		Paid:       fmtr.Format(sum.Paid),
		YearToDate: fmtr.Format(sum.YearToDate),
	}
}
