/*
rulebook.go - Per-partner commission rules

PURPOSE:
  Most partners are on the default agreement; some negotiate their own rate
  or minimum. A RuleBook holds the default plus those overrides and resolves
  the rule for any sale by its PartnerID.

USAGE:
  book := commission.NewRuleBook(commission.DefaultRule())
  book.Set("partner-b", commission.MustRule("0.12", "40"))

  report, err := commission.AggregateWith(sales, book, commission.ByPartner)

SEE ALSO:
  - factory/rules.go: builds a RuleBook from JSON
*/
package commission

import (
	"sort"
	"sync"
)

// RuleBook is safe for concurrent use.
type RuleBook struct {
	mu       sync.RWMutex
	fallback Rule
	partners map[PartnerID]Rule
}

// NewRuleBook creates a book where every partner gets def until overridden.
func NewRuleBook(def Rule) *RuleBook {
	return &RuleBook{
		fallback: def,
		partners: make(map[PartnerID]Rule),
	}
}

// Default returns the rule used for partners without an override.
func (b *RuleBook) Default() Rule {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.fallback
}

// SetDefault replaces the fallback rule.
func (b *RuleBook) SetDefault(r Rule) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fallback = r
}

// Set overrides the rule for one partner.
func (b *RuleBook) Set(partner PartnerID, r Rule) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.partners[partner] = r
}

// Remove drops a partner override.
func (b *RuleBook) Remove(partner PartnerID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.partners, partner)
}

// Lookup returns the partner's override, if any.
func (b *RuleBook) Lookup(partner PartnerID) (Rule, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	r, ok := b.partners[partner]
	return r, ok
}

// Resolve returns the override for partner, or the default.
func (b *RuleBook) Resolve(partner PartnerID) Rule {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if r, ok := b.partners[partner]; ok {
		return r
	}
	return b.fallback
}

// RuleFor implements RuleResolver.
func (b *RuleBook) RuleFor(s Sale) Rule {
	return b.Resolve(s.PartnerID)
}

// Partners lists partners with overrides, sorted.
func (b *RuleBook) Partners() []PartnerID {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]PartnerID, 0, len(b.partners))
	for p := range b.partners {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Replace swaps in src's default and overrides in one step, so readers never
// see a half-loaded book.
func (b *RuleBook) Replace(src *RuleBook) {
	src.mu.RLock()
	def := src.fallback
	partners := make(map[PartnerID]Rule, len(src.partners))
	for p, r := range src.partners {
		partners[p] = r
	}
	src.mu.RUnlock()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.fallback = def
	b.partners = partners
}
