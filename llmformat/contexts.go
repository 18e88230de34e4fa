package llmformat

import (
	"fmt"
	"sort"

	edgar "github.com/secfilings/go-edgar-pipeline"
)

// contextEntry is one consolidated context, assigned a short "c-N" code so
// every fact referencing it can cite the code instead of the original
// (often long, filer-specific) context id.
type contextEntry struct {
	code       string
	originalID string
	period     edgar.Period
}

func (c contextEntry) describe() string {
	if c.period.Instant != "" {
		return fmt.Sprintf("instant %s", c.period.Instant)
	}
	if c.period.StartDate != "" && c.period.EndDate != "" {
		return fmt.Sprintf("duration %s to %s", c.period.StartDate, c.period.EndDate)
	}
	return "unknown period"
}

// contextTable consolidates a document's contexts into deterministic
// "c-N" codes, sorted by period so the codes themselves carry a stable,
// re-derivable ordering across re-renders of the same filing.
type contextTable struct {
	byOriginal map[string]*contextEntry
	entries    []*contextEntry
}

func newContextTable(contexts []edgar.Context) *contextTable {
	t := &contextTable{byOriginal: make(map[string]*contextEntry)}

	sorted := make([]edgar.Context, len(contexts))
	copy(sorted, contexts)
	sort.Slice(sorted, func(i, j int) bool {
		return sortKey(sorted[i]) < sortKey(sorted[j])
	})

	for i, c := range sorted {
		entry := &contextEntry{
			code:       fmt.Sprintf("c-%d", i+1),
			originalID: c.ID,
			period:     c.Period,
		}
		t.byOriginal[c.ID] = entry
		t.entries = append(t.entries, entry)
	}
	return t
}

func sortKey(c edgar.Context) string {
	if c.Period.Instant != "" {
		return c.Period.Instant
	}
	return c.Period.StartDate + c.Period.EndDate
}

func (t *contextTable) ordered() []*contextEntry { return t.entries }

func (t *contextTable) codeFor(originalID string) string {
	if e, ok := t.byOriginal[originalID]; ok {
		return e.code
	}
	return originalID
}

func (t *contextTable) labelFor(originalID string) string {
	if e, ok := t.byOriginal[originalID]; ok {
		return e.describe()
	}
	return "unknown"
}
