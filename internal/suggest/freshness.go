package suggest

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/claude/liftlog/internal/models"
)

// DefaultFreshnessWindow is the maximum age a snapshot may have before
// EnsureFresh replaces it.
const DefaultFreshnessWindow = 5 * time.Minute

// Controller decides when the cached snapshot must be (re)fetched and
// orchestrates the fetch. It moves between three per-session states:
// cold (nothing in memory), fetching, and fresh. Fetch failures are
// recorded, never propagated: search keeps working against whatever
// snapshot exists, possibly stale, possibly none.
type Controller struct {
	cache  *Store
	source Source
	userID int
	window time.Duration
	log    *slog.Logger

	// now is swapped out in tests to age snapshots without sleeping.
	now func() time.Time

	group singleflight.Group

	mu      sync.Mutex
	lastErr error
	loaded  bool
}

// NewController wires a cache store and candidate source together.
// window <= 0 selects DefaultFreshnessWindow.
func NewController(cache *Store, source Source, userID int, window time.Duration, log *slog.Logger) *Controller {
	if window <= 0 {
		window = DefaultFreshnessWindow
	}
	return &Controller{
		cache:  cache,
		source: source,
		userID: userID,
		window: window,
		log:    log,
		now:    time.Now,
	}
}

// EnsureFresh guarantees the cache holds a usable snapshot, fetching a
// new one when none exists or the held one has aged past the freshness
// window. On a cold start the persisted snapshot is loaded first; if it
// is still inside the window no network request happens at all.
// Concurrent callers join a single in-flight fetch. Fetch failure is
// non-fatal: a prior snapshot keeps being served and the error is
// available via LastErr.
func (c *Controller) EnsureFresh(ctx context.Context) {
	snap := c.snapshotOrLoad()
	if snap != nil && snap.Age(c.now()) < c.window {
		return
	}
	c.fetch(ctx)
}

// Invalidate discards the held snapshot and immediately re-fetches, so
// the very next search reflects new usage counts and aliases. Called
// after the user logs or edits an exercise. If a fetch is already in
// flight, Invalidate joins it rather than spawning a second request.
func (c *Controller) Invalidate(ctx context.Context) {
	c.cache.Clear()
	c.markLoaded()
	c.fetch(ctx)
}

// Snapshot returns the currently held snapshot, fresh or stale, or nil.
func (c *Controller) Snapshot() *models.Snapshot {
	return c.cache.Current()
}

// Ready reports whether any snapshot, fresh or stale, is available.
func (c *Controller) Ready() bool {
	return c.cache.Current() != nil
}

// LastErr returns the error from the most recent fetch attempt, or nil
// if it succeeded. Read by the UI layer to show a degraded affordance.
func (c *Controller) LastErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// fetch runs at most one network request at a time; concurrent callers
// share the in-flight outcome, so exactly one snapshot write occurs per
// resolved fetch.
func (c *Controller) fetch(ctx context.Context) {
	_, _, _ = c.group.Do("fetch", func() (any, error) {
		// A caller queued behind a just-resolved fetch, or one that raced
		// a cold-start load, may arrive here with a fresh snapshot already
		// in place. Nothing to do then.
		if cur := c.cache.Current(); cur != nil && cur.Age(c.now()) < c.window {
			return nil, nil
		}

		snap, err := c.source.Fetch(ctx, c.userID)
		if err != nil {
			c.setErr(err)
			if c.cache.Current() != nil {
				c.log.Warn("suggestion fetch failed, serving stale snapshot", "error", err)
			} else {
				c.log.Warn("suggestion fetch failed with no cached snapshot", "error", err)
			}
			return nil, nil
		}

		// A slow response may resolve after a newer snapshot has already
		// landed; storing it would regress ranking to stale data.
		if cur := c.cache.Current(); cur != nil && snap.FetchedAt.Before(cur.FetchedAt) {
			c.log.Debug("discarding superseded snapshot",
				"fetched_at", snap.FetchedAt, "current", cur.FetchedAt)
			c.setErr(nil)
			return nil, nil
		}

		if err := c.cache.Save(snap); err != nil {
			// Memory already holds the fresh snapshot; only durability
			// suffered.
			c.log.Warn("snapshot persist failed", "error", err)
		}
		c.setErr(nil)
		return nil, nil
	})
}

func (c *Controller) setErr(err error) {
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
}

// snapshotOrLoad returns the held snapshot, performing the one-time
// durable load under the mutex so concurrent cold starts wait for it
// instead of fetching past it.
func (c *Controller) snapshotOrLoad() *models.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if snap := c.cache.Current(); snap != nil {
		return snap
	}
	if c.loaded {
		return nil
	}
	c.loaded = true
	return c.cache.Load()
}

func (c *Controller) markLoaded() {
	c.mu.Lock()
	c.loaded = true
	c.mu.Unlock()
}
