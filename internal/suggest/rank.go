// Package suggest implements the client-side exercise autocomplete engine:
// a durable snapshot cache of the user's exercise history plus the shared
// catalog, a freshness controller that decides when to re-fetch it, and a
// tiered fuzzy ranker that scores candidates while the user types.
package suggest

import (
	"sort"
	"strings"

	"github.com/claude/liftlog/internal/models"
)

// DefaultLimit is the number of suggestions returned when the caller
// passes limit 0.
const DefaultLimit = 8

// Tier base scores. The user-source boost is larger than any textual
// score, so a user's own history always outranks catalog-only matches
// regardless of how the text happened to match.
const (
	scoreExact     = 1000
	scorePrefix    = 500
	scoreSubstring = 100
	boostUser      = 1000
	boostPerUse    = 10
)

// matchScore scores one variation against the lower-cased query.
// Returns 0 when the variation does not match at all. Within the prefix
// and substring tiers, shorter variations score higher.
func matchScore(variation, query string) int {
	v := strings.ToLower(variation)
	switch {
	case v == query:
		return scoreExact
	case strings.HasPrefix(v, query):
		return scorePrefix + max(100-len(variation), 0)
	case strings.Contains(v, query):
		return scoreSubstring + max(100-len(variation), 0)
	}
	return 0
}

// Search ranks the snapshot's candidates against a free-text query and
// returns at most limit suggestions, best first. The query is expected to
// be pre-trimmed by the caller; a query shorter than one character yields
// no results. limit 0 means DefaultLimit; a negative limit is a
// programmer error and panics.
//
// Search is pure: it never touches I/O and never mutates the snapshot,
// so it is safe to call concurrently against the same Snapshot.
func Search(query string, snap *models.Snapshot, limit int) []models.Suggestion {
	if limit < 0 {
		panic("suggest: negative limit")
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	if snap == nil || len(query) < 1 {
		return nil
	}

	q := strings.ToLower(query)

	type scored struct {
		suggestion models.Suggestion
		score      int
	}
	var matches []scored

	for _, ex := range snap.Exercises {
		// First matching variation wins; each exercise contributes at
		// most one suggestion per query.
		for _, v := range ex.Variations {
			score := matchScore(v, q)
			if score == 0 {
				continue
			}
			if ex.Source == models.SourceUser {
				score += boostUser + ex.UseCount*boostPerUse
			}
			matches = append(matches, scored{
				suggestion: models.Suggestion{ExerciseCandidate: ex, DisplayName: v},
				score:      score,
			})
			break
		}
	}

	// Stable sort keeps snapshot order on ties, making ranking
	// deterministic.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	result := make([]models.Suggestion, len(matches))
	for i, m := range matches {
		result[i] = m.suggestion
	}
	return result
}
