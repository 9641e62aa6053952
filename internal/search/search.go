package search

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mmcdole/reel/internal/domain"
)

// FilterEntries keeps the entries whose title fuzzily contains query, best
// matches first. An empty query returns entries unchanged.
func FilterEntries(query string, entries []domain.CatalogEntry) []domain.CatalogEntry {
	query = strings.TrimSpace(query)
	if query == "" {
		return entries
	}

	titles := make([]string, len(entries))
	for i, e := range entries {
		titles[i] = e.Title
	}

	ranks := fuzzy.RankFindFold(query, titles)
	sort.Stable(ranks)

	out := make([]domain.CatalogEntry, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, entries[r.OriginalIndex])
	}
	return out
}

// RankEntries reorders server results by how well their titles match query,
// keeping every entry. Ties keep server order.
func RankEntries(query string, entries []domain.CatalogEntry) []domain.CatalogEntry {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || len(entries) == 0 {
		return entries
	}

	type rankedEntry struct {
		entry domain.CatalogEntry
		score int
	}

	ranked := make([]rankedEntry, len(entries))
	for i, e := range entries {
		ranked[i] = rankedEntry{entry: e, score: matchScore(strings.ToLower(e.Title), query)}
	}

	// Lower score is better
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score < ranked[j].score
	})

	out := make([]domain.CatalogEntry, len(ranked))
	for i, r := range ranked {
		out[i] = r.entry
	}
	return out
}

func matchScore(title, query string) int {
	switch {
	case title == query:
		return 0
	case strings.HasPrefix(title, query):
		return 10
	case strings.Contains(title, query):
		return 50
	default:
		return 100 + fuzzy.LevenshteinDistance(query, title)
	}
}
