package storage

import (
	"context"
	"fmt"
)

// GetOrCreateUser maps a Tailscale login to a users row, creating the
// row on first sight and returning its ID. Every call refreshes
// last_seen; a non-empty display name replaces the stored one so
// renames on the tailnet propagate.
func (db *DB) GetOrCreateUser(ctx context.Context, login, displayName string) (int, error) {
	var id int
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO users (login, display_name)
		 VALUES ($1, $2)
		 ON CONFLICT (login) DO UPDATE
		    SET last_seen    = NOW(),
		        display_name = COALESCE(NULLIF($2, ''), users.display_name)
		 RETURNING id`,
		login, displayName).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upserting user %s: %w", login, err)
	}
	return id, nil
}
