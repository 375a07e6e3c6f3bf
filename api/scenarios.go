/*
scenarios.go - Demo data sets for testing and demonstrations

PURPOSE:

	Provides pre-built data sets taken from the partner and admin dashboards
	so the engine can be exercised end to end without any data source. Each
	scenario carries its sales, the "now" its date filters resolve against,
	a default grouping and, optionally, its own rule book.

AVAILABLE SCENARIOS:

	partner-commissions:  One partner's commission page (paid, pending, processing)
	partner-performance:  Admin view, sales per partner across two months
	monthly-sales:        Admin view, January to June grouped by quarter and month
	custom-agreements:    Partner overrides, tiers and the minimum floor

USAGE VIA API:

	GET /api/scenarios
	GET /api/scenarios/partner-commissions/report?status=pending&range=month
	GET /api/scenarios/monthly-sales/report?group_by=month&currency=EUR&locale=de-DE

ADDING NEW SCENARIOS:
 1. Add an entry to 'scenarios' with ID, name, description and sales
 2. Give it a rule book JSON if it needs partner overrides

SEE ALSO:
  - handlers.go: response helpers
  - factory/rules.go: rule book JSON
*/
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/warp/commission-engine/commission"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

type scenario struct {
	ID          string
	Name        string
	Description string
	Category    string
	Now         time.Time
	GroupBy     []string
	RulesJSON   string // empty: the server's rule book
	Sales       func() []commission.Sale
}

func (s scenario) dto() ScenarioDTO {
	return ScenarioDTO{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Category:    s.Category,
		Sales:       len(s.Sales()),
		GroupBy:     s.GroupBy,
	}
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func amount(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

var scenarios = []scenario{
	{
		ID:          "partner-commissions",
		Name:        "Partner Commissions",
		Description: "A partner's commission page: four paid, two pending and one processing sale",
		Category:    "partner",
		Now:         date(2023, time.July, 12),
		GroupBy:     []string{"status"},
		Sales: func() []commission.Sale {
			sale := func(id, shop string, d time.Time, amt int64, st commission.SaleStatus) commission.Sale {
				return commission.Sale{ID: commission.SaleID(id), PartnerID: "partner-1", Shop: shop, Date: d, Amount: amount(amt), Status: st}
			}
			return []commission.Sale{
				sale("COM-2023-001", "Coffee Haven", date(2023, time.June, 15), 3000, commission.SalePaid),
				sale("COM-2023-002", "Bakery Delight", date(2023, time.June, 10), 2500, commission.SalePaid),
				sale("COM-2023-003", "Gourmet Burgers", date(2023, time.June, 5), 3500, commission.SalePaid),
				sale("COM-2023-004", "Fashion Boutique", date(2023, time.June, 1), 2000, commission.SalePaid),
				sale("COM-2023-005", "Tech Gadgets", date(2023, time.July, 1), 4000, commission.SalePending),
				sale("COM-2023-006", "Healthy Eats", date(2023, time.July, 5), 3000, commission.SalePending),
				sale("COM-2023-007", "Coffee Haven", date(2023, time.July, 10), 3500, commission.SaleProcessing),
			}
		},
	},
	{
		ID:          "partner-performance",
		Name:        "Partner Performance",
		Description: "Admin dashboard: sales for partners A to D over May and June",
		Category:    "admin",
		Now:         date(2023, time.July, 1),
		GroupBy:     []string{"partner", "month"},
		Sales: func() []commission.Sale {
			var sales []commission.Sale
			for _, p := range []struct {
				id       string
				may, jun int64
			}{
				{"partner-a", 24000, 18000},
				{"partner-b", 20000, 15000},
				{"partner-c", 16000, 12000},
				{"partner-d", 12000, 8000},
			} {
				sales = append(sales,
					commission.Sale{ID: commission.SaleID(p.id + "-2023-05"), PartnerID: commission.PartnerID(p.id), Date: date(2023, time.May, 31), Amount: amount(p.may), Status: commission.SalePaid},
					commission.Sale{ID: commission.SaleID(p.id + "-2023-06"), PartnerID: commission.PartnerID(p.id), Date: date(2023, time.June, 30), Amount: amount(p.jun), Status: commission.SalePending},
				)
			}
			return sales
		},
	},
	{
		ID:          "monthly-sales",
		Name:        "Monthly Sales",
		Description: "Admin dashboard: January to June sales, grouped by quarter then month",
		Category:    "admin",
		Now:         date(2023, time.July, 1),
		GroupBy:     []string{"quarter", "month"},
		Sales: func() []commission.Sale {
			monthly := []int64{15000, 18000, 22000, 19000, 24000, 28000}
			sales := make([]commission.Sale, len(monthly))
			for i, v := range monthly {
				d := date(2023, time.Month(i+1), 15)
				sales[i] = commission.Sale{ID: commission.SaleID("sales-" + d.Format("2006-01")), Date: d, Amount: amount(v), Status: commission.SalePaid}
			}
			return sales
		},
	},
	{
		ID:          "custom-agreements",
		Name:        "Custom Agreements",
		Description: "Negotiated rates, a tiered partner and small sales that pay the minimum",
		Category:    "rules",
		Now:         date(2023, time.July, 1),
		GroupBy:     []string{"partner"},
		RulesJSON: `{
			"default": {"id": "standard", "rate_percent": 15, "minimum": 50},
			"partners": {
				"partner-b": {"rate_percent": 12, "minimum": 40},
				"partner-d": {
					"rate": 0.10,
					"minimum": 25,
					"tiers": [
						{"threshold": 1000, "rate": 0.12},
						{"threshold": 5000, "rate": 0.15}
					]
				}
			}
		}`,
		Sales: func() []commission.Sale {
			sale := func(id, partner string, amt int64) commission.Sale {
				return commission.Sale{ID: commission.SaleID(id), PartnerID: commission.PartnerID(partner), Date: date(2023, time.June, 20), Amount: amount(amt), Status: commission.SalePending}
			}
			return []commission.Sale{
				sale("ca-1", "partner-a", 100),
				sale("ca-2", "partner-a", 250),
				sale("ca-3", "partner-a", 1000),
				sale("ca-4", "partner-b", 200),
				sale("ca-5", "partner-b", 3000),
				sale("ca-6", "partner-d", 500),
				sale("ca-7", "partner-d", 2000),
				sale("ca-8", "partner-d", 6000),
			}
		},
	},
}

func findScenario(id string) (scenario, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return scenario{}, false
}

// =============================================================================
// SCENARIO HANDLERS
// =============================================================================

// ListScenarios returns available scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	dtos := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		dtos[i] = s.dto()
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetScenarioReport aggregates a scenario's sales.
// GET /api/scenarios/{id}/report?status=&range=&group_by=&currency=&locale=
func (h *Handler) GetScenarioReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sc, ok := findScenario(id)
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "unknown scenario", map[string]string{"id": id})
		return
	}

	q := r.URL.Query()
	fmtr, err := h.formatter(q.Get("currency"), q.Get("locale"))
	if err != nil {
		respondError(w, err)
		return
	}

	groupNames := sc.GroupBy
	if v := strings.TrimSpace(q.Get("group_by")); v != "" {
		groupNames = strings.Split(v, ",")
	}
	groupBy, err := parseGroupBy(groupNames)
	if err != nil {
		respondError(w, err)
		return
	}

	var rules commission.RuleResolver = h.Rules
	if sc.RulesJSON != "" {
		book, err := h.Factory.ParseRuleBook([]byte(sc.RulesJSON))
		if err != nil {
			h.Logger.Error().Err(err).Str("scenario", sc.ID).Msg("scenario rule book")
			respondError(w, err)
			return
		}
		rules = book
	}

	sales := sc.Sales()
	summary, err := commission.Summarize(sales, rules, sc.Now)
	if err != nil {
		respondError(w, err)
		return
	}

	criteria, err := h.toCriteria(FilterDTO{
		Status: q.Get("status"),
		Range:  q.Get("range"),
		Now:    sc.Now.Format(time.RFC3339),
	})
	if err != nil {
		respondError(w, err)
		return
	}

	report, err := commission.AggregateWith(commission.Filter(sales, criteria), rules, groupBy...)
	if err != nil {
		h.Metrics.ObserveReport(err, 0, 0)
		respondError(w, err)
		return
	}
	h.Metrics.ObserveReport(nil, report.Count, report.FloorCount)

	writeJSON(w, http.StatusOK, ScenarioReportDTO{
		Scenario: sc.dto(),
		Now:      sc.Now.Format("2006-01-02"),
		Summary:  toSummaryDTO(summary, fmtr),
		Report:   toReportDTO(report, fmtr, true),
	})
}
