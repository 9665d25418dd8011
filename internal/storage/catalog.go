package storage

import (
	"context"
	"fmt"
)

// CatalogExercise is an entry in the shared exercise catalog.
type CatalogExercise struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Aliases  []string `json:"aliases"`
}

// QueryCatalog returns the shared exercise catalog, ordered by name.
func (db *DB) QueryCatalog(ctx context.Context) ([]CatalogExercise, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT name, category, aliases FROM exercise_catalog ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying exercise catalog: %w", err)
	}
	defer rows.Close()

	var result []CatalogExercise
	for rows.Next() {
		var c CatalogExercise
		if err := rows.Scan(&c.Name, &c.Category, &c.Aliases); err != nil {
			return nil, fmt.Errorf("scanning catalog entry: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}
