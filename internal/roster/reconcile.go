package roster

import (
	"sort"
	"strings"
)

// Reconcile collapses photo records into one ProfileGroup per name.
//
// The grouping key is the exact stored name: case- and whitespace-sensitive.
// "Ann" and "ann" form two groups. This mirrors how records are written and
// is intentionally not normalized here; fixing it silently would merge
// profiles the user created as distinct.
//
// Reconcile is a pure function. Given the same records it always produces the
// same groups and the same canonical choice: within a group, records are
// ordered newest first, and equal timestamps are broken by ascending ID. The
// canonical record is the head of that order.
func Reconcile(records []PhotoRecord) map[string]*ProfileGroup {
	groups := make(map[string]*ProfileGroup)

	for _, record := range records {
		group, ok := groups[record.Name]
		if !ok {
			group = &ProfileGroup{Name: record.Name}
			groups[record.Name] = group
		}
		group.History = append(group.History, record)
	}

	for _, group := range groups {
		sort.SliceStable(group.History, func(i, j int) bool {
			a, b := group.History[i], group.History[j]
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.ID < b.ID
		})
		group.Canonical = group.History[0]
	}

	return groups
}

// Recent returns the first n non-empty dates, locations and events of the
// group, in newest-first order.
func (g *ProfileGroup) Recent(n int) RecentSummary {
	var summary RecentSummary
	for _, record := range g.History {
		if record.Date != "" && len(summary.Dates) < n {
			summary.Dates = append(summary.Dates, record.Date)
		}
		if record.Location != "" && len(summary.Locations) < n {
			summary.Locations = append(summary.Locations, record.Location)
		}
		if record.Event != "" && len(summary.Events) < n {
			summary.Events = append(summary.Events, record.Event)
		}
	}
	return summary
}

// Sorted returns the groups ordered by name for stable API output.
func Sorted(groups map[string]*ProfileGroup) []*ProfileGroup {
	result := make([]*ProfileGroup, 0, len(groups))
	for _, group := range groups {
		result = append(result, group)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// Search filters groups whose canonical name contains the query. Matching is
// case-insensitive and ignores diacritics, unlike grouping, which stays
// exact. An empty query matches everything.
func Search(groups map[string]*ProfileGroup, query string) []*ProfileGroup {
	sorted := Sorted(groups)
	if strings.TrimSpace(query) == "" {
		return sorted
	}

	folded := FoldForSearch(query)
	var result []*ProfileGroup
	for _, group := range sorted {
		if strings.Contains(FoldForSearch(group.Canonical.Name), folded) {
			result = append(result, group)
		}
	}
	return result
}
