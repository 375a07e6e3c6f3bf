package commission

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// PERIOD - Half-open date interval used for filtering
// =============================================================================

// Period is [From, To). A zero To leaves the period open-ended.
type Period struct {
	From time.Time
	To   time.Time
}

func (p Period) Contains(t time.Time) bool {
	if t.Before(p.From) {
		return false
	}
	return p.To.IsZero() || t.Before(p.To)
}

// =============================================================================
// DATE RANGE - Dashboard presets, resolved against an explicit "now"
// =============================================================================

type DateRange string

const (
	RangeAll       DateRange = "all"
	RangeMonth     DateRange = "month"
	RangeLastMonth DateRange = "last-month"
	RangeYear      DateRange = "year"
)

// ParseDateRange accepts the preset names; empty means RangeAll.
func ParseDateRange(s string) (DateRange, error) {
	switch r := DateRange(strings.ToLower(strings.TrimSpace(s))); r {
	case "", RangeAll:
		return RangeAll, nil
	case RangeMonth, RangeLastMonth, RangeYear:
		return r, nil
	default:
		return "", &InvalidInputError{Field: "range", Value: s, Reason: "expected all, month, last-month or year"}
	}
}

// Period resolves the range in now's location. The boolean is false for
// RangeAll, which has no bounds.
func (r DateRange) Period(now time.Time) (Period, bool) {
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	switch r {
	case RangeMonth:
		return Period{From: startOfMonth}, true
	case RangeLastMonth:
		return Period{From: startOfMonth.AddDate(0, -1, 0), To: startOfMonth}, true
	case RangeYear:
		return Period{From: time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())}, true
	default:
		return Period{}, false
	}
}

// =============================================================================
// FILTER
// =============================================================================

// Criteria selects sales. Zero fields match everything. Now anchors Range.
type Criteria struct {
	Status    SaleStatus
	PartnerID PartnerID
	Range     DateRange
	Now       time.Time
}

// Filter returns the matching sales in input order. Undated sales never
// match a bounded range.
func Filter(sales []Sale, c Criteria) []Sale {
	period, bounded := c.Range.Period(c.Now)
	out := make([]Sale, 0, len(sales))
	for _, s := range sales {
		if c.Status != "" && s.Status != c.Status {
			continue
		}
		if c.PartnerID != "" && s.PartnerID != c.PartnerID {
			continue
		}
		if bounded && (s.Date.IsZero() || !period.Contains(s.Date)) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// =============================================================================
// GROUP KEYS
// =============================================================================

const (
	KeyUnassigned  = "unassigned"
	KeyUndated     = "undated"
	KeyUnspecified = "unspecified"
)

func ByPartner(s Sale) string {
	if s.PartnerID == "" {
		return KeyUnassigned
	}
	return string(s.PartnerID)
}

func ByShop(s Sale) string {
	if s.Shop == "" {
		return KeyUnassigned
	}
	return s.Shop
}

func ByStatus(s Sale) string {
	if s.Status == "" {
		return KeyUnspecified
	}
	return string(s.Status)
}

func ByMonth(s Sale) string {
	if s.Date.IsZero() {
		return KeyUndated
	}
	return s.Date.Format("2006-01")
}

func ByQuarter(s Sale) string {
	if s.Date.IsZero() {
		return KeyUndated
	}
	return fmt.Sprintf("%d-Q%d", s.Date.Year(), (int(s.Date.Month())-1)/3+1)
}

func ByYear(s Sale) string {
	if s.Date.IsZero() {
		return KeyUndated
	}
	return fmt.Sprintf("%d", s.Date.Year())
}

// ParseGroupBy maps a grouping name to its GroupFunc.
func ParseGroupBy(name string) (GroupFunc, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "partner":
		return ByPartner, nil
	case "shop":
		return ByShop, nil
	case "status":
		return ByStatus, nil
	case "month":
		return ByMonth, nil
	case "quarter":
		return ByQuarter, nil
	case "year":
		return ByYear, nil
	default:
		return nil, &InvalidInputError{Field: "group_by", Value: name, Reason: "expected partner, shop, status, month, quarter or year"}
	}
}
