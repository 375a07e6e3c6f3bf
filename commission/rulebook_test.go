package commission_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/commission-engine/commission"
)

func TestRuleBook_Resolve(t *testing.T) {
	book := commission.NewRuleBook(commission.DefaultRule())
	override := commission.MustRule("0.20", "25")
	book.Set("partner-a", override)

	assert.True(t, book.Resolve("partner-a").Equal(override))
	assert.True(t, book.Resolve("partner-b").Equal(commission.DefaultRule()))
	assert.True(t, book.RuleFor(commission.Sale{PartnerID: "partner-a"}).Equal(override))

	_, ok := book.Lookup("partner-b")
	assert.False(t, ok)

	book.Remove("partner-a")
	assert.True(t, book.Resolve("partner-a").Equal(commission.DefaultRule()))
}

func TestRuleBook_SetDefault(t *testing.T) {
	book := commission.NewRuleBook(commission.DefaultRule())
	book.SetDefault(commission.MustRule("0.05", "0"))

	assertDecimal(t, "0.05", book.Default().Rate())
}

func TestRuleBook_PartnersSorted(t *testing.T) {
	book := commission.NewRuleBook(commission.DefaultRule())
	book.Set("partner-c", commission.DefaultRule())
	book.Set("partner-a", commission.DefaultRule())
	book.Set("partner-b", commission.DefaultRule())

	assert.Equal(t, []commission.PartnerID{"partner-a", "partner-b", "partner-c"}, book.Partners())
}

func TestRuleBook_ConcurrentUse(t *testing.T) {
	book := commission.NewRuleBook(commission.DefaultRule())
	sales := mockSales()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			book.Set("partner-a", commission.MustRule("0.2", "10"))
		}()
		go func() {
			defer wg.Done()
			_, err := commission.AggregateWith(sales, book)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	r, ok := book.Lookup("partner-a")
	require.True(t, ok)
	assertDecimal(t, "0.2", r.Rate())
}

func TestIllustrate_DefaultAmounts(t *testing.T) {
	results, err := commission.Illustrate(commission.DefaultRule())
	require.NoError(t, err)
	require.Len(t, results, 7)

	assertDecimal(t, "50", results[0].Commission) // 100 -> floor
	assert.True(t, results[0].FloorApplied)
	assertDecimal(t, "50", results[1].Commission) // 250 -> floor
	assertDecimal(t, "75", results[2].Commission)
	assertDecimal(t, "1500", results[6].Commission)
}

func TestIllustrate_CustomAmounts(t *testing.T) {
	results, err := commission.Illustrate(standardRule(), dec("40000"))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assertDecimal(t, "6000", results[0].Commission)

	_, err = commission.Illustrate(standardRule(), dec("-1"))
	assert.ErrorIs(t, err, commission.ErrInvalidInput)
}

func TestRuleBook_Replace(t *testing.T) {
	book := commission.NewRuleBook(commission.DefaultRule())
	book.Set("partner-a", commission.MustRule("0.2", "0"))

	next := commission.NewRuleBook(commission.MustRule("0.1", "10"))
	next.Set("partner-b", commission.MustRule("0.3", "0"))
	book.Replace(next)

	assertDecimal(t, "0.1", book.Default().Rate())
	assert.Equal(t, []commission.PartnerID{"partner-b"}, book.Partners())

	next.Set("partner-c", commission.DefaultRule())
	assert.Len(t, book.Partners(), 1, "replace copies, it does not alias")
}
