package suggest

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/claude/liftlog/internal/models"

	_ "modernc.org/sqlite"
)

// cacheSchemaVersion is bumped whenever the persisted envelope shape
// changes. Older blobs are discarded, not migrated: the snapshot is just
// a cache and the next fetch rebuilds it.
const cacheSchemaVersion = 1

// cacheEnvelope is the opaque versioned blob written to durable storage.
// Consumers outside this package must not depend on its shape.
type cacheEnvelope struct {
	Version  int             `json:"version"`
	Snapshot models.Snapshot `json:"snapshot"`
}

// Store holds exactly one suggestion Snapshot per user: an in-memory fast
// path for the active session plus a SQLite-backed durable copy that
// survives restarts. The in-memory snapshot is replaced wholesale and
// never mutated, so readers need no locks.
type Store struct {
	db     *sql.DB
	userID int
	log    *slog.Logger
	mem    atomic.Pointer[models.Snapshot]
}

// OpenStore opens (or creates) the suggestion cache database at
// dir/cache.db, scoped to the given user.
func OpenStore(dir string, userID int, log *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "cache.db"))
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS snapshot_cache (
		user_id    INTEGER PRIMARY KEY,
		version    INTEGER NOT NULL,
		payload    BLOB NOT NULL,
		fetched_at TIMESTAMP NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache table: %w", err)
	}

	return &Store{db: db, userID: userID, log: log}, nil
}

// Load reads the persisted snapshot, if any, into memory and returns it.
// No network access. A missing, corrupt, or stale-format blob behaves
// identically to "no cache": the row is discarded and Load returns nil.
// Corrupt persisted state never surfaces as an error to the caller.
func (s *Store) Load() *models.Snapshot {
	var version int
	var payload []byte
	err := s.db.QueryRow(
		`SELECT version, payload FROM snapshot_cache WHERE user_id = ?`,
		s.userID,
	).Scan(&version, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		s.log.Warn("snapshot cache read failed, treating as empty", "error", err)
		return nil
	}

	var env cacheEnvelope
	if err := json.Unmarshal(payload, &env); err != nil || env.Version != cacheSchemaVersion {
		s.log.Warn("discarding unreadable snapshot cache",
			"version", version, "error", err)
		s.discard()
		return nil
	}

	snap := env.Snapshot
	s.mem.Store(&snap)
	return &snap
}

// Save writes the snapshot to memory and durable storage. The durable
// write is a single INSERT OR REPLACE, so readers never observe a
// half-written snapshot. The in-memory copy is updated even if the
// durable write fails; the returned error is for logging only.
func (s *Store) Save(snap *models.Snapshot) error {
	s.mem.Store(snap)

	payload, err := json.Marshal(cacheEnvelope{Version: cacheSchemaVersion, Snapshot: *snap})
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO snapshot_cache (user_id, version, payload, fetched_at) VALUES (?, ?, ?, ?)`,
		s.userID, cacheSchemaVersion, payload, snap.FetchedAt,
	)
	if err != nil {
		return fmt.Errorf("persisting snapshot: %w", err)
	}
	return nil
}

// Clear removes the snapshot from memory and durable storage.
func (s *Store) Clear() {
	s.mem.Store(nil)
	s.discard()
}

// Current returns the in-memory snapshot, or nil if none is held.
func (s *Store) Current() *models.Snapshot {
	return s.mem.Load()
}

// Close closes the underlying cache database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) discard() {
	if _, err := s.db.Exec(`DELETE FROM snapshot_cache WHERE user_id = ?`, s.userID); err != nil {
		s.log.Warn("snapshot cache delete failed", "error", err)
	}
}
