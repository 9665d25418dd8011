package suggest

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/models"
)

// TestHTTPSourceFetch verifies a well-formed feed round-trips into a
// snapshot with the server's fetch timestamp.
func TestHTTPSourceFetch(t *testing.T) {
	fetchedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/exercises/suggestions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("user"); got != "42" {
			t.Errorf("user param = %q, want 42", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"exercises": [
				{"name": "Bench Press", "variations": ["Bench Press", "BP"], "source": "user", "use_count": 5},
				{"name": "Squat", "variations": ["Squat"], "source": "common", "category": "legs"}
			],
			"fetched_at": "2025-06-01T12:00:00Z",
			"count": 2
		}`))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, slog.Default())
	snap, err := src.Fetch(context.Background(), 42)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(snap.Exercises) != 2 {
		t.Fatalf("len(Exercises) = %d, want 2", len(snap.Exercises))
	}
	if !snap.FetchedAt.Equal(fetchedAt) {
		t.Errorf("FetchedAt = %v, want %v", snap.FetchedAt, fetchedAt)
	}
	if snap.Exercises[0].UseCount != 5 {
		t.Errorf("UseCount = %d, want 5", snap.Exercises[0].UseCount)
	}
}

// TestHTTPSourceFetchMissingTimestamp verifies a feed without fetched_at
// gets stamped locally.
func TestHTTPSourceFetchMissingTimestamp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"exercises": [], "count": 0}`))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, slog.Default())
	snap, err := src.Fetch(context.Background(), 1)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if snap.FetchedAt.IsZero() {
		t.Error("FetchedAt is zero, want local timestamp")
	}
}

// TestHTTPSourceFetchServerError verifies a non-200 response surfaces as
// an error with the status code.
func TestHTTPSourceFetchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, slog.Default())
	if _, err := src.Fetch(context.Background(), 1); err == nil {
		t.Fatal("Fetch: want error for 500 response")
	}
}

// TestHTTPSourceFetchBadJSON verifies an unparseable body fails the
// whole fetch.
func TestHTTPSourceFetchBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, slog.Default())
	if _, err := src.Fetch(context.Background(), 1); err == nil {
		t.Fatal("Fetch: want decode error")
	}
}

// TestHTTPSourceDropsMalformedRecords verifies a bad record is dropped
// individually while the rest of the feed survives.
func TestHTTPSourceDropsMalformedRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"exercises": [
				{"name": "", "source": "user"},
				{"name": "Deadlift", "source": "user", "use_count": -1},
				{"name": "Pull Up", "source": "mystery"},
				{"name": "Bench Press", "variations": ["Bench Press"], "source": "user", "use_count": 3}
			],
			"fetched_at": "2025-06-01T12:00:00Z",
			"count": 4
		}`))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, slog.Default())
	snap, err := src.Fetch(context.Background(), 1)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(snap.Exercises) != 1 || snap.Exercises[0].Name != "Bench Press" {
		t.Errorf("Exercises = %+v, want only Bench Press", snap.Exercises)
	}
}

func TestSanitizeCandidatesDuplicateName(t *testing.T) {
	raw := []models.ExerciseCandidate{
		{Name: "Bench Press", Variations: []string{"Bench Press"}, Source: models.SourceUser, UseCount: 5},
		{Name: "bench press", Variations: []string{"bench press"}, Source: models.SourceCommon},
	}
	got := sanitizeCandidates(raw, slog.Default())
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1 (case-insensitive duplicate dropped)", len(got))
	}
	if got[0].Source != models.SourceUser {
		t.Errorf("kept candidate source = %q, want first occurrence kept", got[0].Source)
	}
}

func TestSanitizeCandidatesAliasConflict(t *testing.T) {
	raw := []models.ExerciseCandidate{
		{Name: "Bench Press", Variations: []string{"Bench Press", "BP"}, Source: models.SourceUser},
		{Name: "Band Pull", Variations: []string{"Band Pull", "BP"}, Source: models.SourceCommon},
	}
	got := sanitizeCandidates(raw, slog.Default())
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if containsFold(got[1].Variations, "BP") {
		t.Errorf("Band Pull variations = %v, conflicting alias should be dropped", got[1].Variations)
	}
}

// TestSanitizeCandidatesOwnNameNotStolen verifies a candidate keeps its
// canonical name even when an earlier candidate listed it as an alias.
func TestSanitizeCandidatesOwnNameNotStolen(t *testing.T) {
	raw := []models.ExerciseCandidate{
		{Name: "Bench Press", Variations: []string{"Bench Press", "Press"}, Source: models.SourceUser},
		{Name: "Press", Variations: []string{"Press"}, Source: models.SourceCommon},
	}
	got := sanitizeCandidates(raw, slog.Default())
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if !containsFold(got[1].Variations, "Press") {
		t.Errorf("Press variations = %v, must always contain own canonical name", got[1].Variations)
	}
}

// TestSanitizeCandidatesAddsCanonicalVariation verifies the canonical
// name is injected when the feed omits it from variations.
func TestSanitizeCandidatesAddsCanonicalVariation(t *testing.T) {
	raw := []models.ExerciseCandidate{
		{Name: "Deadlift", Variations: []string{"DL"}, Source: models.SourceUser},
	}
	got := sanitizeCandidates(raw, slog.Default())
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if !containsFold(got[0].Variations, "Deadlift") {
		t.Errorf("Variations = %v, want canonical name included", got[0].Variations)
	}
}
