package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/claude/liftlog/internal/models"
)

// ExerciseLogRow is a row ready for insertion into the exercise_log table.
// Weight is numeric-as-text or the "BW" bodyweight sentinel.
type ExerciseLogRow struct {
	ID                  uuid.UUID  `json:"id"`
	UserID              int        `json:"user_id"`
	Name                string     `json:"name"`
	Weight              *string    `json:"weight,omitempty"`
	Sets                *int       `json:"sets,omitempty"`
	Reps                *int       `json:"reps,omitempty"`
	EffectiveRepsMax    *int       `json:"effective_reps_max,omitempty"`
	EffectiveRepsTarget *int       `json:"effective_reps_target,omitempty"`
	UseEffectiveReps    bool       `json:"use_effective_reps,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

// InsertExerciseLog records one logged exercise entry and returns its ID.
func (db *DB) InsertExerciseLog(ctx context.Context, row ExerciseLogRow) (uuid.UUID, error) {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO exercise_log (id, user_id, name, weight, sets, reps,
			effective_reps_max, effective_reps_target, use_effective_reps)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		row.ID, row.UserID, row.Name, row.Weight, row.Sets, row.Reps,
		row.EffectiveRepsMax, row.EffectiveRepsTarget, row.UseEffectiveReps)
	if err != nil {
		return uuid.Nil, fmt.Errorf("inserting exercise log entry: %w", err)
	}
	return row.ID, nil
}

// QueryExerciseHistory aggregates the user's exercise log into one
// candidate per distinct (case-insensitive) name: the most recent entry's
// parameters plus a usage counter. Ordered by name; ReconcileCandidates
// reorders by usage for the feed.
func (db *DB) QueryExerciseHistory(ctx context.Context, userID int) ([]models.ExerciseCandidate, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT DISTINCT ON (lower(name))
			name, weight, sets, reps,
			effective_reps_max, effective_reps_target, use_effective_reps,
			created_at,
			COUNT(*) OVER (PARTITION BY lower(name)) AS use_count
		 FROM exercise_log
		 WHERE user_id = $1
		 ORDER BY lower(name), created_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying exercise history: %w", err)
	}
	defer rows.Close()

	var result []models.ExerciseCandidate
	for rows.Next() {
		var c models.ExerciseCandidate
		var updatedAt time.Time
		if err := rows.Scan(&c.Name, &c.LastWeight, &c.LastSets, &c.LastReps,
			&c.LastEffectiveRepsMax, &c.LastEffectiveRepsTarget, &c.UseEffectiveReps,
			&updatedAt, &c.UseCount); err != nil {
			return nil, fmt.Errorf("scanning exercise history: %w", err)
		}
		c.Source = models.SourceUser
		c.UpdatedAt = &updatedAt
		c.Variations = []string{c.Name}
		result = append(result, c)
	}
	return result, rows.Err()
}
