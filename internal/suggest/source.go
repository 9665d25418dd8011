package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/models"
)

// Source produces candidate snapshots for a user. Fetches must be
// idempotent and side-effect-free; the engine treats any error uniformly
// as "fetch failed" and keeps serving whatever it already holds.
type Source interface {
	Fetch(ctx context.Context, userID int) (*models.Snapshot, error)
}

// HTTPSource fetches the suggestion feed from the LiftLog REST API.
type HTTPSource struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// Compile-time check: HTTPSource satisfies Source.
var _ Source = (*HTTPSource)(nil)

// NewHTTPSource creates an HTTPSource targeting the given base URL.
func NewHTTPSource(baseURL string, log *slog.Logger) *HTTPSource {
	return &HTTPSource{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        log,
	}
}

// feedPayload mirrors the suggestions endpoint response.
type feedPayload struct {
	Exercises []models.ExerciseCandidate `json:"exercises"`
	FetchedAt time.Time                  `json:"fetched_at"`
	Count     int                        `json:"count"`
}

// Fetch retrieves and validates the candidate feed. Individual malformed
// records are dropped with a warning; one bad record never fails the
// whole snapshot.
func (s *HTTPSource) Fetch(ctx context.Context, userID int) (*models.Snapshot, error) {
	params := url.Values{}
	params.Set("user", strconv.Itoa(userID))
	u := s.baseURL + "/api/v1/exercises/suggestions?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("source: create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("source: fetch suggestions: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("source: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("source: suggestions returned %d: %s", resp.StatusCode, body)
	}

	var payload feedPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("source: decode suggestions: %w", err)
	}

	fetchedAt := payload.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}
	return &models.Snapshot{
		Exercises: sanitizeCandidates(payload.Exercises, s.log),
		FetchedAt: fetchedAt,
	}, nil
}

// sanitizeCandidates validates raw feed records at the trust boundary.
// Records with a missing name, negative use count, or unknown source are
// dropped individually. The server guarantees canonical-name uniqueness
// and alias uniqueness within a user's feed, but that is validated here
// rather than assumed: duplicate canonical names and aliases already
// claimed by an earlier candidate are discarded with a warning.
func sanitizeCandidates(raw []models.ExerciseCandidate, log *slog.Logger) []models.ExerciseCandidate {
	out := make([]models.ExerciseCandidate, 0, len(raw))
	seenNames := make(map[string]bool, len(raw))
	aliasOwner := make(map[string]string)

	for _, c := range raw {
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			log.Warn("dropping candidate with empty name")
			continue
		}
		if c.UseCount < 0 {
			log.Warn("dropping candidate with negative use count", "name", c.Name)
			continue
		}
		if c.Source != models.SourceUser && c.Source != models.SourceCommon {
			log.Warn("dropping candidate with unknown source", "name", c.Name, "source", c.Source)
			continue
		}

		key := strings.ToLower(c.Name)
		if seenNames[key] {
			log.Warn("dropping duplicate candidate", "name", c.Name)
			continue
		}
		seenNames[key] = true

		// Every candidate must be findable by its canonical name, and a
		// candidate always owns its own name even if an earlier entry
		// listed it as an alias.
		aliasOwner[key] = key
		variations := make([]string, 0, len(c.Variations)+1)
		if !containsFold(c.Variations, c.Name) {
			variations = append(variations, c.Name)
		}
		for _, v := range c.Variations {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			vKey := strings.ToLower(v)
			if owner, ok := aliasOwner[vKey]; ok && owner != key {
				log.Warn("dropping alias claimed by another exercise",
					"alias", v, "name", c.Name, "owner", owner)
				continue
			}
			if containsFold(variations, v) {
				continue
			}
			aliasOwner[vKey] = key
			variations = append(variations, v)
		}
		c.Variations = variations

		out = append(out, c)
	}
	return out
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
