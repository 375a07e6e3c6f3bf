package api

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/commission-engine/commission"
	"github.com/warp/commission-engine/factory"
)

func writeRules(t *testing.T, path, body string, mod time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func TestRuleReloader_Reload(t *testing.T) {
	// GIVEN: A rules file with one partner override
	// WHEN: It is loaded, left alone, then replaced with a broken file
	// THEN: The first load applies, the second is a no-op, the broken file is ignored

	path := filepath.Join(t.TempDir(), "rules.json")
	book := commission.NewRuleBook(commission.DefaultRule())
	rr := NewRuleReloader(path, book, factory.NewRuleFactory())

	t0 := time.Date(2023, time.July, 1, 0, 0, 0, 0, time.UTC)
	writeRules(t, path, `{"partners": {"partner-b": {"rate_percent": 12, "minimum": 40}}}`, t0)

	changed, err := rr.Reload()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, book.Resolve("partner-b").Equal(commission.MustRule("0.12", "40")))

	changed, err = rr.Reload()
	require.NoError(t, err)
	assert.False(t, changed)

	writeRules(t, path, `{"partners": {"partner-b": {"rate": 7}}}`, t0.Add(time.Hour))
	changed, err = rr.Reload()
	assert.Error(t, err)
	assert.False(t, changed)
	assert.True(t, book.Resolve("partner-b").Equal(commission.MustRule("0.12", "40")), "last good rules kept")

	writeRules(t, path, `{"default": {"rate": 0.2, "minimum": 0}}`, t0.Add(2*time.Hour))
	changed, err = rr.Reload()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Empty(t, book.Partners())
	assert.True(t, book.Default().Equal(commission.MustRule("0.2", "0")))
}

func TestRuleReloader_MissingFile(t *testing.T) {
	rr := NewRuleReloader(filepath.Join(t.TempDir(), "missing.json"), commission.NewRuleBook(commission.DefaultRule()), factory.NewRuleFactory())

	_, err := rr.Reload()
	assert.Error(t, err)
}

func TestRuleReloader_StartStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	book := commission.NewRuleBook(commission.DefaultRule())
	writeRules(t, path, `{"partners": {"partner-c": {"minimum": 0}}}`, time.Now())

	rr := NewRuleReloader(path, book, factory.NewRuleFactory())
	rr.Interval = 5 * time.Millisecond
	rr.Start()
	rr.Start() // second start is a no-op

	require.Eventually(t, func() bool {
		_, ok := book.Lookup("partner-c")
		return ok
	}, time.Second, 5*time.Millisecond)

	rr.Stop()
	rr.Stop()
}

func TestRuleReloader_DisabledInterval(t *testing.T) {
	rr := NewRuleReloader("unused.json", commission.NewRuleBook(commission.DefaultRule()), factory.NewRuleFactory())
	rr.Interval = 0

	rr.Start()
	rr.Stop()
}
