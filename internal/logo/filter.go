package logo

import (
	"sort"
	"strings"
)

// IndustryAll is the industry filter value that matches everything.
const IndustryAll = "all"

// MatchesSearch reports whether the group matches a case-insensitive
// substring search. A group matches if the original OR any of its revisions
// matches on logo name or company name.
func (g *Group) MatchesSearch(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	if metadataMatchesSearch(g.Original, term) {
		return true
	}
	for _, r := range g.Revisions {
		if metadataMatchesSearch(r, term) {
			return true
		}
	}
	return false
}

func metadataMatchesSearch(m Metadata, lowerTerm string) bool {
	return strings.Contains(strings.ToLower(m.Name), lowerTerm) ||
		strings.Contains(strings.ToLower(m.Params.CompanyName), lowerTerm)
}

// MatchesIndustry reports whether the group matches an exact industry
// filter, with the same either/or original-or-revision semantics as search.
// Empty and "all" match everything.
func (g *Group) MatchesIndustry(industry string) bool {
	if industry == "" || industry == IndustryAll {
		return true
	}
	if g.Original.Params.Industry == industry {
		return true
	}
	for _, r := range g.Revisions {
		if r.Params.Industry == industry {
			return true
		}
	}
	return false
}

// Filter returns the groups matching both the search term and the industry
// filter, preserving input order.
func Filter(groups []Group, search, industry string) []Group {
	filtered := make([]Group, 0, len(groups))
	for i := range groups {
		if groups[i].MatchesSearch(search) && groups[i].MatchesIndustry(industry) {
			filtered = append(filtered, groups[i])
		}
	}
	return filtered
}

// SortNewestFirst orders groups by the original's CreatedAt descending.
// The sort is stable so retrieval order breaks ties, keeping page
// boundaries deterministic.
func SortNewestFirst(groups []Group) {
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Original.CreatedAt > groups[j].Original.CreatedAt
	})
}

// DisplayedIDs returns the displayed-logo id of every group, in order.
func DisplayedIDs(groups []Group) []string {
	ids := make([]string, len(groups))
	for i := range groups {
		ids[i] = groups[i].Displayed().ID
	}
	return ids
}
