package suggest

import (
	"context"
	"sync"
	"time"

	"github.com/claude/liftlog/internal/models"
)

// DefaultDebounce is how long the session waits after the last keystroke
// before running a search.
const DefaultDebounce = 150 * time.Millisecond

// SessionState is the explicit input-handling state of a Session.
type SessionState int

const (
	// StateIdle means no search is pending.
	StateIdle SessionState = iota
	// StateDebouncing means input arrived and the debounce timer is armed.
	StateDebouncing
	// StateSearching means a search is running against the snapshot.
	StateSearching
	// StateApplying means a selection was just applied; the next input
	// event (the echo of the selected text) is swallowed instead of
	// re-triggering a search.
	StateApplying
)

// Session wraps the controller and ranker with input debouncing and
// keyboard-driven selection state for a single autocomplete widget.
// Results are delivered through the onResults callback from the debounce
// timer's goroutine.
type Session struct {
	ctrl      *Controller
	limit     int
	debounce  time.Duration
	onResults func([]models.Suggestion)

	mu       sync.Mutex
	state    SessionState
	timer    *time.Timer
	query    string
	seq      uint64
	results  []models.Suggestion
	selected int
}

// NewSession creates a Session. limit 0 means DefaultLimit; debounce 0
// means DefaultDebounce.
func NewSession(ctrl *Controller, limit int, debounce time.Duration, onResults func([]models.Suggestion)) *Session {
	if limit == 0 {
		limit = DefaultLimit
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Session{
		ctrl:      ctrl,
		limit:     limit,
		debounce:  debounce,
		onResults: onResults,
	}
}

// Type feeds a keystroke's resulting query text into the session. The
// search runs only after the debounce delay passes with no further
// input. While a selection is being applied the input is swallowed and
// the session returns to idle, so the just-selected text never
// re-triggers a match pass.
func (s *Session) Type(ctx context.Context, query string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateApplying {
		s.state = StateIdle
		return
	}

	s.query = query
	s.seq++
	seq := s.seq
	s.state = StateDebouncing

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		s.runSearch(ctx, seq)
	})
}

func (s *Session) runSearch(ctx context.Context, seq uint64) {
	s.mu.Lock()
	if s.seq != seq || s.state != StateDebouncing {
		s.mu.Unlock()
		return
	}
	s.state = StateSearching
	query := s.query
	s.mu.Unlock()

	// The only suspension point: a fetch if the snapshot is missing or
	// stale. Ranking itself is synchronous over the immutable snapshot.
	s.ctrl.EnsureFresh(ctx)
	results := Search(query, s.ctrl.cache.Current(), s.limit)

	s.mu.Lock()
	if s.seq != seq {
		// Newer input arrived while searching; drop these results.
		s.mu.Unlock()
		return
	}
	s.results = results
	s.selected = 0
	s.state = StateIdle
	cb := s.onResults
	s.mu.Unlock()

	if cb != nil {
		cb(results)
	}
}

// Move shifts the keyboard selection by delta, clamped to the current
// result list.
func (s *Session) Move(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.results) == 0 {
		return
	}
	s.selected += delta
	if s.selected < 0 {
		s.selected = 0
	}
	if s.selected >= len(s.results) {
		s.selected = len(s.results) - 1
	}
}

// Selected returns the currently highlighted suggestion.
func (s *Session) Selected() (models.Suggestion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected >= len(s.results) {
		return models.Suggestion{}, false
	}
	return s.results[s.selected], true
}

// Apply commits the highlighted suggestion and enters the applying
// state, suppressing the next input event.
func (s *Session) Apply() (models.Suggestion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected >= len(s.results) {
		return models.Suggestion{}, false
	}
	chosen := s.results[s.selected]
	s.state = StateApplying
	s.seq++
	if s.timer != nil {
		s.timer.Stop()
	}
	s.results = nil
	s.selected = 0
	return chosen, true
}

// Cancel dismisses the suggestion list and returns to idle.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	if s.timer != nil {
		s.timer.Stop()
	}
	s.results = nil
	s.selected = 0
	s.state = StateIdle
}

// State returns the session's current input-handling state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Ready reports whether a snapshot, fresh or stale, is available to
// search against.
func (s *Session) Ready() bool { return s.ctrl.Ready() }

// LastErr surfaces the most recent fetch error for the UI layer.
func (s *Session) LastErr() error { return s.ctrl.LastErr() }
