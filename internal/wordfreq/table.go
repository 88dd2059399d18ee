package wordfreq

import (
	"sort"
	"strings"
)

// Entry is one line of a frequency ranking.
type Entry struct {
	Token string `json:"token"`
	Count int    `json:"count"`
}

// Table accumulates token counts and remembers the order in which tokens
// were first seen. The zero value is not usable; call NewTable.
type Table struct {
	counts map[string]int
	order  []string
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{counts: make(map[string]int)}
}

// Add counts every token. Whitespace-only tokens are ignored.
func (t *Table) Add(tokens ...string) int {
	added := 0
	for _, tok := range tokens {
		if strings.TrimSpace(tok) == "" {
			continue
		}
		if _, ok := t.counts[tok]; !ok {
			t.order = append(t.order, tok)
		}
		t.counts[tok]++
		added++
	}
	return added
}

// Count returns the number of times tok was added.
func (t *Table) Count(tok string) int { return t.counts[tok] }

// Len returns the number of distinct tokens.
func (t *Table) Len() int { return len(t.order) }

// Ranking returns all tokens by descending count. Ties keep first-seen order.
func (t *Table) Ranking() []Entry {
	entries := make([]Entry, len(t.order))
	for i, tok := range t.order {
		entries[i] = Entry{Token: tok, Count: t.counts[tok]}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	return entries
}
