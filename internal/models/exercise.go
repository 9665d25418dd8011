package models

import "time"

// ExerciseSource identifies where a candidate came from.
type ExerciseSource string

const (
	// SourceUser marks candidates built from the user's own exercise log.
	SourceUser ExerciseSource = "user"
	// SourceCommon marks candidates from the shared exercise catalog.
	SourceCommon ExerciseSource = "common"
)

// BodyweightSentinel is stored in LastWeight for bodyweight exercises
// instead of a numeric load.
const BodyweightSentinel = "BW"

// ExerciseCandidate is one entry in a suggestion snapshot: either a
// previously-logged exercise with its most recent parameters, or a shared
// catalog entry that has never been logged (UseCount 0).
type ExerciseCandidate struct {
	// Name is the canonical name the entry is keyed under. Unique within
	// a snapshot; the server reconciles user/catalog entries sharing a
	// name into a single user-sourced entry before it reaches clients.
	Name       string   `json:"name"`
	Variations []string `json:"variations"`

	// Last-used parameters. LastWeight is numeric-as-text or the
	// BodyweightSentinel; nil if the exercise was never logged.
	LastWeight *string `json:"last_weight,omitempty"`
	LastSets   *int    `json:"last_sets,omitempty"`
	LastReps   *int    `json:"last_reps,omitempty"`

	// Effective-reps mode: a single max-effort set plus a cumulative
	// rest-pause target, instead of discrete sets x reps.
	LastEffectiveRepsMax    *int `json:"last_effective_reps_max,omitempty"`
	LastEffectiveRepsTarget *int `json:"last_effective_reps_target,omitempty"`
	UseEffectiveReps        bool `json:"use_effective_reps,omitempty"`

	UseCount  int            `json:"use_count"`
	UpdatedAt *time.Time     `json:"updated_at,omitempty"`
	Source    ExerciseSource `json:"source"`
	Category  string         `json:"category,omitempty"`
}

// Snapshot is one immutable, timestamped pull of all candidates for a user.
// A new fetch produces a new Snapshot that replaces the old one wholesale;
// nothing mutates a Snapshot after it is built.
type Snapshot struct {
	Exercises []ExerciseCandidate `json:"exercises"`
	FetchedAt time.Time           `json:"fetched_at"`
}

// Age returns how old the snapshot is relative to now.
func (s *Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.FetchedAt)
}

// Suggestion is a candidate projected through the variation that matched
// the query. DisplayName is what the UI echoes back; Name stays the
// canonical key so callers can deduplicate and log selections.
type Suggestion struct {
	ExerciseCandidate
	DisplayName string `json:"display_name"`
}
