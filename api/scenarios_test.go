package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListScenarios(t *testing.T) {
	_, srv := newTestAPI(t)

	rr := do(t, srv, http.MethodGet, "/api/scenarios", "")
	require.Equal(t, http.StatusOK, rr.Code)

	list := decode[[]ScenarioDTO](t, rr)
	require.Len(t, list, len(scenarios))
	assert.Equal(t, "partner-commissions", list[0].ID)
	assert.Equal(t, 7, list[0].Sales)
}

func TestScenarioReport_PartnerCommissions(t *testing.T) {
	// GIVEN: The partner commission page as of 12 July 2023
	// WHEN: Requesting its report
	// THEN: The headline figures match the page and groups follow status order of appearance

	_, srv := newTestAPI(t)

	rr := do(t, srv, http.MethodGet, "/api/scenarios/partner-commissions/report", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	resp := decode[ScenarioReportDTO](t, rr)
	assert.Equal(t, "2023-07-12", resp.Now)
	assert.Equal(t, "£3,225.00", resp.Summary.Total)
	assert.Equal(t, "£1,050.00", resp.Summary.Pending)
	assert.Equal(t, "£525.00", resp.Summary.Processing)
	assert.Equal(t, "£1,650.00", resp.Summary.Paid)
	assert.Equal(t, "£3,225.00", resp.Summary.YearToDate)

	require.Len(t, resp.Report.Groups, 3)
	assert.Equal(t, "paid", resp.Report.Groups[0].Key)
	assert.Equal(t, "pending", resp.Report.Groups[1].Key)
	assert.Equal(t, "processing", resp.Report.Groups[2].Key)
}

func TestScenarioReport_DashboardFilters(t *testing.T) {
	_, srv := newTestAPI(t)

	rr := do(t, srv, http.MethodGet, "/api/scenarios/partner-commissions/report?status=pending&range=month", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	resp := decode[ScenarioReportDTO](t, rr)
	assert.Equal(t, 2, resp.Report.Count)
	assert.Equal(t, "1050", resp.Report.TotalCommission.String())
	assert.Equal(t, "£1,050.00", resp.Summary.Pending, "summary ignores filters")

	rr = do(t, srv, http.MethodGet, "/api/scenarios/partner-commissions/report?range=last-month", "")
	require.Equal(t, http.StatusOK, rr.Code)
	resp = decode[ScenarioReportDTO](t, rr)
	assert.Equal(t, 4, resp.Report.Count)
}

func TestScenarioReport_PartnerPerformance(t *testing.T) {
	_, srv := newTestAPI(t)

	rr := do(t, srv, http.MethodGet, "/api/scenarios/partner-performance/report", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	resp := decode[ScenarioReportDTO](t, rr)
	want := map[string]string{"partner-a": "6300", "partner-b": "4200", "partner-c": "4200", "partner-d": "3000"}
	require.Len(t, resp.Report.Groups, len(want))
	for _, g := range resp.Report.Groups {
		assert.Equal(t, want[g.Key], g.Report.TotalCommission.String(), g.Key)
		assert.Len(t, g.Report.Groups, 2, "%s by month", g.Key)
	}
}

func TestScenarioReport_MonthlySalesByQuarter(t *testing.T) {
	_, srv := newTestAPI(t)

	rr := do(t, srv, http.MethodGet, "/api/scenarios/monthly-sales/report", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	resp := decode[ScenarioReportDTO](t, rr)
	assert.Equal(t, "126000", resp.Report.TotalSales.String())
	require.Len(t, resp.Report.Groups, 2)
	assert.Equal(t, "2023-Q1", resp.Report.Groups[0].Key)
	assert.Equal(t, "8250", resp.Report.Groups[0].Report.TotalCommission.String())
	assert.Equal(t, "2023-Q2", resp.Report.Groups[1].Key)
	assert.Equal(t, "10650", resp.Report.Groups[1].Report.TotalCommission.String())
	assert.Len(t, resp.Report.Groups[1].Report.Groups, 3)
}

func TestScenarioReport_CustomAgreements(t *testing.T) {
	// GIVEN: A scenario with its own rule book (partner-b 12%/40, partner-d tiered)
	// WHEN: Reporting by partner
	// THEN: Each partner is paid under its own agreement

	_, srv := newTestAPI(t)

	rr := do(t, srv, http.MethodGet, "/api/scenarios/custom-agreements/report", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	resp := decode[ScenarioReportDTO](t, rr)
	assert.Equal(t, "1840", resp.Report.TotalCommission.String())
	assert.Equal(t, 3, resp.Report.FloorCount)

	totals := map[string]string{}
	for _, g := range resp.Report.Groups {
		totals[g.Key] = g.Report.TotalCommission.String()
	}
	assert.Equal(t, map[string]string{"partner-a": "250", "partner-b": "400", "partner-d": "1190"}, totals)
}

func TestScenarioReport_Overrides(t *testing.T) {
	_, srv := newTestAPI(t)

	rr := do(t, srv, http.MethodGet, "/api/scenarios/monthly-sales/report?group_by=year&currency=EUR&locale=fr-FR", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	resp := decode[ScenarioReportDTO](t, rr)
	require.Len(t, resp.Report.Groups, 1)
	assert.Equal(t, "2023", resp.Report.Groups[0].Key)
	assert.Contains(t, resp.Report.Formatted.TotalCommission, "€")
}

func TestScenarioReport_Errors(t *testing.T) {
	_, srv := newTestAPI(t)

	rr := do(t, srv, http.MethodGet, "/api/scenarios/nope/report", "")
	requireError(t, rr, http.StatusNotFound, "NOT_FOUND")

	rr = do(t, srv, http.MethodGet, "/api/scenarios/monthly-sales/report?group_by=weekday", "")
	requireError(t, rr, http.StatusBadRequest, "INVALID_INPUT")

	rr = do(t, srv, http.MethodGet, "/api/scenarios/monthly-sales/report?status=refunded", "")
	requireError(t, rr, http.StatusBadRequest, "INVALID_INPUT")
}

func TestScenarios_ReturnFreshSales(t *testing.T) {
	for _, sc := range scenarios {
		a := sc.Sales()
		a[0].Shop = "mutated"
		assert.NotEqual(t, "mutated", sc.Sales()[0].Shop, sc.ID)
	}
}
