/*
reloader.go - Rule book hot reload

PURPOSE:
  Periodically checks the rule book file (COMMISSION_RULES_FILE) and, when it
  changed, parses it and swaps it into the live RuleBook. Partner agreements
  can then be edited without a restart.

DESIGN:
  - Runs a background goroutine with a configurable check interval
  - Reloads only when the file's modification time changed
  - A file that fails to parse is logged and ignored; the last good rules stay
  - The swap is atomic (RuleBook.Replace)

USAGE:
  reloader := NewRuleReloader(path, book, ruleFactory)
  reloader.Interval = 30 * time.Second
  reloader.Start()
  // ... later
  reloader.Stop()

SEE ALSO:
  - factory/rules.go: rule book JSON
  - commission/rulebook.go: Replace
*/
package api

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/warp/commission-engine/commission"
	"github.com/warp/commission-engine/factory"
)

// RuleReloader keeps a RuleBook in sync with a JSON file.
type RuleReloader struct {
	Path     string
	Rules    *commission.RuleBook
	Factory  *factory.RuleFactory
	Interval time.Duration
	Logger   zerolog.Logger

	modMu   sync.Mutex
	modTime time.Time
	ticker  *time.Ticker
	stop    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
}

// NewRuleReloader creates a reloader checking once a minute.
func NewRuleReloader(path string, rules *commission.RuleBook, f *factory.RuleFactory) *RuleReloader {
	return &RuleReloader{
		Path:     path,
		Rules:    rules,
		Factory:  f,
		Interval: time.Minute,
		Logger:   zerolog.Nop(),
	}
}

// Start begins periodic checks. A non-positive Interval disables it.
func (rr *RuleReloader) Start() {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	if rr.Interval <= 0 || rr.ticker != nil {
		return
	}

	rr.ticker = time.NewTicker(rr.Interval)
	rr.stop = make(chan struct{})
	rr.wg.Add(1)
	go rr.run(rr.ticker, rr.stop)

	rr.Logger.Info().Str("path", rr.Path).Dur("interval", rr.Interval).Msg("rule reloader started")
}

// Stop stops the reloader and waits for an in-flight check.
func (rr *RuleReloader) Stop() {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	if rr.ticker == nil {
		return
	}
	rr.ticker.Stop()
	close(rr.stop)
	rr.wg.Wait()
	rr.ticker = nil
	rr.Logger.Info().Msg("rule reloader stopped")
}

func (rr *RuleReloader) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer rr.wg.Done()

	for {
		select {
		case <-ticker.C:
			if _, err := rr.Reload(); err != nil {
				rr.Logger.Error().Err(err).Str("path", rr.Path).Msg("rule reload failed, keeping previous rules")
			}
		case <-stop:
			return
		}
	}
}

// Reload loads the file if it changed since the last successful load. It
// reports whether the rules were replaced.
func (rr *RuleReloader) Reload() (bool, error) {
	info, err := os.Stat(rr.Path)
	if err != nil {
		return false, fmt.Errorf("stat rule book: %w", err)
	}
	if info.ModTime().Equal(rr.lastModTime()) {
		return false, nil
	}

	book, err := rr.Factory.LoadRuleBook(rr.Path)
	if err != nil {
		return false, err
	}
	rr.Rules.Replace(book)
	rr.setModTime(info.ModTime())

	rr.Logger.Info().
		Str("path", rr.Path).
		Str("default", book.Default().String()).
		Int("overrides", len(book.Partners())).
		Msg("rule book loaded")
	return true, nil
}

func (rr *RuleReloader) lastModTime() time.Time {
	rr.modMu.Lock()
	defer rr.modMu.Unlock()
	return rr.modTime
}

func (rr *RuleReloader) setModTime(t time.Time) {
	rr.modMu.Lock()
	defer rr.modMu.Unlock()
	rr.modTime = t
}
