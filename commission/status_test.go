package commission_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/commission-engine/commission"
)

func TestParseSaleStatus(t *testing.T) {
	for _, s := range commission.SaleStatuses() {
		got, err := commission.ParseSaleStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
		assert.True(t, s.Valid())
	}

	got, err := commission.ParseSaleStatus(" PAID ")
	require.NoError(t, err)
	assert.Equal(t, commission.SalePaid, got)

	_, err = commission.ParseSaleStatus("refunded")
	assert.ErrorIs(t, err, commission.ErrUnknownStatus)
	assert.True(t, commission.IsClientError(err))
	assert.False(t, commission.SaleStatus("").Valid())
}

func TestSaleStatus_Label(t *testing.T) {
	assert.Equal(t, "Processing", commission.SaleProcessing.Label())
	assert.Equal(t, "Unspecified", commission.SaleStatus("").Label())
}

func TestLeadStatus_Label(t *testing.T) {
	assert.Equal(t, "Spoken To", commission.LeadSpoken.Label())

	got, err := commission.ParseLeadStatus("Rejected")
	require.NoError(t, err)
	assert.Equal(t, commission.LeadRejected, got)

	_, err = commission.ParseLeadStatus("won")
	assert.ErrorIs(t, err, commission.ErrUnknownStatus)
}

func TestLeadStatuses(t *testing.T) {
	terminal := map[commission.LeadStatus]bool{}
	for _, s := range commission.LeadStatuses() {
		got, err := commission.ParseLeadStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
		terminal[s] = s.IsTerminal()
	}

	assert.Equal(t, map[commission.LeadStatus]bool{
		commission.LeadPending:  false,
		commission.LeadSpoken:   false,
		commission.LeadClosed:   true,
		commission.LeadRejected: true,
	}, terminal)
}

func TestLeadStatus_Lifecycle(t *testing.T) {
	// GIVEN: A freshly referred lead
	// WHEN: It is spoken to and then closed
	// THEN: Each step is allowed and closed is terminal

	s := commission.LeadPending
	s, err := s.Transition(commission.LeadSpoken)
	require.NoError(t, err)
	s, err = s.Transition(commission.LeadClosed)
	require.NoError(t, err)

	assert.True(t, s.IsTerminal())
}

func TestLeadStatus_InvalidTransitions(t *testing.T) {
	tests := []struct {
		from, to commission.LeadStatus
	}{
		{commission.LeadPending, commission.LeadClosed},
		{commission.LeadSpoken, commission.LeadPending},
		{commission.LeadClosed, commission.LeadRejected},
		{commission.LeadRejected, commission.LeadSpoken},
		{commission.LeadPending, commission.LeadPending},
	}

	for _, tt := range tests {
		got, err := tt.from.Transition(tt.to)
		assert.ErrorIs(t, err, commission.ErrInvalidTransition, "%s -> %s", tt.from, tt.to)
		assert.Equal(t, tt.from, got)
	}

	assert.True(t, commission.LeadPending.CanTransition(commission.LeadRejected))
}

func TestTally(t *testing.T) {
	f, err := commission.Tally(
		commission.LeadPending, commission.LeadPending,
		commission.LeadSpoken,
		commission.LeadClosed,
		commission.LeadRejected,
	)
	require.NoError(t, err)

	assert.Equal(t, commission.LeadFunnel{Pending: 2, Spoken: 1, Closed: 1, Rejected: 1}, f)
	assert.Equal(t, 3, f.Active())
	assert.Equal(t, 5, f.Total())

	_, err = commission.Tally(commission.LeadStatus("lost"))
	assert.ErrorIs(t, err, commission.ErrUnknownStatus)
}
