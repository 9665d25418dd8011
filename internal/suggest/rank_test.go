package suggest

import (
	"testing"
	"time"

	"github.com/claude/liftlog/internal/models"
)

func snapshotOf(exercises ...models.ExerciseCandidate) *models.Snapshot {
	return &models.Snapshot{Exercises: exercises, FetchedAt: time.Now()}
}

func userCandidate(name string, useCount int, variations ...string) models.ExerciseCandidate {
	if len(variations) == 0 {
		variations = []string{name}
	}
	return models.ExerciseCandidate{
		Name:       name,
		Variations: variations,
		Source:     models.SourceUser,
		UseCount:   useCount,
	}
}

func commonCandidate(name string, variations ...string) models.ExerciseCandidate {
	if len(variations) == 0 {
		variations = []string{name}
	}
	return models.ExerciseCandidate{
		Name:       name,
		Variations: variations,
		Source:     models.SourceCommon,
	}
}

func names(suggestions []models.Suggestion) []string {
	out := make([]string, len(suggestions))
	for i, s := range suggestions {
		out[i] = s.DisplayName
	}
	return out
}

// TestSearchEmptyQuery verifies the contract that queries shorter than
// one character yield no results.
func TestSearchEmptyQuery(t *testing.T) {
	snap := snapshotOf(userCandidate("Bench Press", 5))
	if got := Search("", snap, 8); got != nil {
		t.Errorf("Search(\"\") = %v, want nil", got)
	}
}

// TestSearchNilSnapshot verifies searching with no snapshot degrades to
// empty results rather than panicking.
func TestSearchNilSnapshot(t *testing.T) {
	if got := Search("bench", nil, 8); got != nil {
		t.Errorf("Search(nil snapshot) = %v, want nil", got)
	}
}

// TestSearchNegativeLimit verifies a negative limit is treated as a
// programmer error.
func TestSearchNegativeLimit(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for negative limit")
		}
	}()
	Search("bench", snapshotOf(), -1)
}

// TestSearchUserBeforeCommon reproduces the canonical scenario: a logged
// "Bench Press" prefix match must precede the catalog's "Incline Bench
// Press" substring match.
func TestSearchUserBeforeCommon(t *testing.T) {
	snap := snapshotOf(
		userCandidate("Bench Press", 5, "Bench Press", "BP"),
		commonCandidate("Incline Bench Press"),
	)
	got := names(Search("Bench", snap, 8))
	want := []string{"Bench Press", "Incline Bench Press"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Search(\"Bench\") = %v, want %v", got, want)
	}
}

// TestSearchAliasMatch verifies a query matching only an alias projects
// the alias as the display name.
func TestSearchAliasMatch(t *testing.T) {
	snap := snapshotOf(
		userCandidate("Bench Press", 5, "Bench Press", "BP"),
		commonCandidate("Incline Bench Press"),
	)
	got := Search("bp", snap, 8)
	if len(got) == 0 {
		t.Fatal("Search(\"bp\") returned nothing")
	}
	if got[0].DisplayName != "BP" {
		t.Errorf("display name = %q, want %q", got[0].DisplayName, "BP")
	}
	if got[0].Name != "Bench Press" {
		t.Errorf("canonical name = %q, want %q", got[0].Name, "Bench Press")
	}
}

// TestSearchTierOrdering verifies exact > prefix > substring within the
// same provenance.
func TestSearchTierOrdering(t *testing.T) {
	snap := snapshotOf(
		commonCandidate("Incline Row Machine"), // substring
		commonCandidate("Rowing"),              // prefix
		commonCandidate("Row"),                 // exact
	)
	got := names(Search("row", snap, 8))
	want := []string{"Row", "Rowing", "Incline Row Machine"}
	for i := range want {
		if i >= len(got) || got[i] != want[i] {
			t.Fatalf("Search(\"row\") = %v, want %v", got, want)
		}
	}
}

// TestSearchShorterVariationWinsTier verifies that within a tier shorter
// variations rank above longer ones.
func TestSearchShorterVariationWinsTier(t *testing.T) {
	snap := snapshotOf(
		commonCandidate("Squat Jump Extended Variant"),
		commonCandidate("Squat Jump"),
	)
	got := names(Search("squat", snap, 8))
	if len(got) != 2 || got[0] != "Squat Jump" {
		t.Errorf("Search(\"squat\") = %v, want Squat Jump first", got)
	}
}

// TestSearchUsageBreaksTies verifies that for two user candidates at the
// same textual tier, the more frequently logged one ranks first.
func TestSearchUsageBreaksTies(t *testing.T) {
	snap := snapshotOf(
		userCandidate("Curl A", 2),
		userCandidate("Curl B", 9),
	)
	got := names(Search("curl", snap, 8))
	if len(got) != 2 || got[0] != "Curl B" {
		t.Errorf("Search(\"curl\") = %v, want Curl B first", got)
	}
}

// TestSearchProvenanceBoostDominates verifies a user substring match
// outranks a catalog exact match.
func TestSearchProvenanceBoostDominates(t *testing.T) {
	snap := snapshotOf(
		commonCandidate("Press"),                      // exact match, catalog
		userCandidate("Incline Press Machine", 1),     // substring match, user
	)
	got := Search("press", snap, 8)
	if len(got) != 2 {
		t.Fatalf("Search(\"press\") returned %d results, want 2", len(got))
	}
	if got[0].Name != "Incline Press Machine" {
		t.Errorf("first result = %q, want user-sourced substring match first", got[0].Name)
	}
}

// TestSearchLimit verifies results are truncated to the limit.
func TestSearchLimit(t *testing.T) {
	snap := snapshotOf(
		commonCandidate("Press 1"), commonCandidate("Press 2"),
		commonCandidate("Press 3"), commonCandidate("Press 4"),
	)
	if got := Search("press", snap, 2); len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
}

// TestSearchOneSuggestionPerExercise verifies an exercise with several
// matching variations contributes only one suggestion.
func TestSearchOneSuggestionPerExercise(t *testing.T) {
	snap := snapshotOf(
		userCandidate("Bench Press", 3, "Bench Press", "Bench", "BP"),
	)
	got := Search("ben", snap, 8)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	// First variation in order wins.
	if got[0].DisplayName != "Bench Press" {
		t.Errorf("display name = %q, want %q", got[0].DisplayName, "Bench Press")
	}
}

// TestSearchTieBrokenBySnapshotOrder verifies deterministic ordering for
// equal scores.
func TestSearchTieBrokenBySnapshotOrder(t *testing.T) {
	snap := snapshotOf(
		commonCandidate("Raise AB"),
		commonCandidate("Raise BA"),
	)
	got := names(Search("raise", snap, 8))
	want := []string{"Raise AB", "Raise BA"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Search(\"raise\") = %v, want snapshot order %v", got, want)
	}
}

// TestSearchNoMatch verifies unmatched queries return nothing.
func TestSearchNoMatch(t *testing.T) {
	snap := snapshotOf(userCandidate("Bench Press", 5))
	if got := Search("zzz", snap, 8); len(got) != 0 {
		t.Errorf("Search(\"zzz\") = %v, want empty", got)
	}
}

// TestSearchCaseInsensitive verifies matching ignores case in both the
// query and the variation.
func TestSearchCaseInsensitive(t *testing.T) {
	snap := snapshotOf(userCandidate("Bench Press", 1))
	if got := Search("BENCH PRESS", snap, 8); len(got) != 1 {
		t.Fatalf("uppercase exact query found %d results, want 1", len(got))
	}
}
