package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/claude/liftlog/internal/models"
)

// SuggestionFeed builds the candidate feed for one user: the aggregated
// exercise history merged with the shared catalog. Clients cache the
// result as an opaque snapshot; this is the single server-side read
// behind the suggestions endpoint.
func (db *DB) SuggestionFeed(ctx context.Context, userID int) ([]models.ExerciseCandidate, error) {
	history, err := db.QueryExerciseHistory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("building suggestion feed: %w", err)
	}
	catalog, err := db.QueryCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("building suggestion feed: %w", err)
	}
	return ReconcileCandidates(history, catalog), nil
}

// ReconcileCandidates merges user history with the shared catalog by
// case-insensitive name. A catalog entry matching a user entry folds into
// it: the catalog's aliases are unioned into the user entry's variations
// and its category carried over, so clients never see two candidates for
// the same logical exercise. Unmatched catalog entries come through as
// common-sourced candidates with zero usage.
//
// Output order is deterministic: user entries most-used first (name
// breaking ties), then catalog-only entries by name. Clients break
// ranking-score ties by this order.
func ReconcileCandidates(history []models.ExerciseCandidate, catalog []CatalogExercise) []models.ExerciseCandidate {
	byName := make(map[string]int, len(history))
	users := make([]models.ExerciseCandidate, len(history))
	copy(users, history)
	for i, c := range users {
		byName[strings.ToLower(c.Name)] = i
	}

	var common []models.ExerciseCandidate
	for _, cat := range catalog {
		if i, ok := byName[strings.ToLower(cat.Name)]; ok {
			users[i].Category = cat.Category
			users[i].Variations = unionVariations(users[i].Variations, cat.Aliases)
			continue
		}
		variations := unionVariations([]string{cat.Name}, cat.Aliases)
		common = append(common, models.ExerciseCandidate{
			Name:       cat.Name,
			Variations: variations,
			Source:     models.SourceCommon,
			Category:   cat.Category,
		})
	}

	sort.SliceStable(users, func(i, j int) bool {
		if users[i].UseCount != users[j].UseCount {
			return users[i].UseCount > users[j].UseCount
		}
		return users[i].Name < users[j].Name
	})

	return append(users, common...)
}

// unionVariations appends aliases not already present case-insensitively.
func unionVariations(base, aliases []string) []string {
	out := base
	for _, a := range aliases {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		dup := false
		for _, v := range out {
			if strings.EqualFold(v, a) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, a)
		}
	}
	return out
}
