package commission

import (
	"fmt"
	"strings"
)

// =============================================================================
// SALE STATUS - Payout state of a commission
// =============================================================================

type SaleStatus string

const (
	SalePending    SaleStatus = "pending"
	SaleProcessing SaleStatus = "processing"
	SalePaid       SaleStatus = "paid"
)

// SaleStatuses lists every sale status in display order.
func SaleStatuses() []SaleStatus {
	return []SaleStatus{SalePending, SaleProcessing, SalePaid}
}

// ParseSaleStatus accepts only the enum values (case-insensitive).
func ParseSaleStatus(s string) (SaleStatus, error) {
	switch st := SaleStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case SalePending, SaleProcessing, SalePaid:
		return st, nil
	default:
		return "", fmt.Errorf("%w: sale status %q", ErrUnknownStatus, s)
	}
}

func (s SaleStatus) Valid() bool {
	_, err := ParseSaleStatus(string(s))
	return err == nil
}

func (s SaleStatus) Label() string {
	switch s {
	case SalePending:
		return "Pending"
	case SaleProcessing:
		return "Processing"
	case SalePaid:
		return "Paid"
	default:
		return "Unspecified"
	}
}

// =============================================================================
// LEAD STATUS - Referral lifecycle: pending -> spoken -> closed | rejected
// =============================================================================

type LeadStatus string

const (
	LeadPending  LeadStatus = "pending"
	LeadSpoken   LeadStatus = "spoken"
	LeadClosed   LeadStatus = "closed"
	LeadRejected LeadStatus = "rejected"
)

// LeadStatuses lists every lead status in lifecycle order.
func LeadStatuses() []LeadStatus {
	return []LeadStatus{LeadPending, LeadSpoken, LeadClosed, LeadRejected}
}

func ParseLeadStatus(s string) (LeadStatus, error) {
	switch st := LeadStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case LeadPending, LeadSpoken, LeadClosed, LeadRejected:
		return st, nil
	default:
		return "", fmt.Errorf("%w: lead status %q", ErrUnknownStatus, s)
	}
}

func (s LeadStatus) Label() string {
	switch s {
	case LeadPending:
		return "Pending"
	case LeadSpoken:
		return "Spoken To"
	case LeadClosed:
		return "Closed"
	case LeadRejected:
		return "Rejected"
	default:
		return "Unknown"
	}
}

func (s LeadStatus) IsTerminal() bool {
	return s == LeadClosed || s == LeadRejected
}

// CanTransition reports whether a lead may move from s to next.
func (s LeadStatus) CanTransition(next LeadStatus) bool {
	switch s {
	case LeadPending:
		return next == LeadSpoken || next == LeadRejected
	case LeadSpoken:
		return next == LeadClosed || next == LeadRejected
	default:
		return false
	}
}

// Transition returns next if the lifecycle allows it.
func (s LeadStatus) Transition(next LeadStatus) (LeadStatus, error) {
	if !s.CanTransition(next) {
		return s, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, next)
	}
	return next, nil
}

// LeadFunnel counts leads per status, as shown on the partner dashboard.
type LeadFunnel struct {
	Pending  int
	Spoken   int
	Closed   int
	Rejected int
}

// Tally counts statuses into a funnel. Unknown values are an error.
func Tally(statuses ...LeadStatus) (LeadFunnel, error) {
	var f LeadFunnel
	for _, s := range statuses {
		switch s {
		case LeadPending:
			f.Pending++
		case LeadSpoken:
			f.Spoken++
		case LeadClosed:
			f.Closed++
		case LeadRejected:
			f.Rejected++
		default:
			return LeadFunnel{}, fmt.Errorf("%w: lead status %q", ErrUnknownStatus, s)
		}
	}
	return f, nil
}

// Active counts leads still in progress.
func (f LeadFunnel) Active() int { return f.Pending + f.Spoken }

func (f LeadFunnel) Total() int { return f.Pending + f.Spoken + f.Closed + f.Rejected }
