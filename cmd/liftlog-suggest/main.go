package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/suggest"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "LiftLog server URL (e.g. https://liftlog.tail1234.ts.net)")
	userID := flag.Int("user", 1, "user ID to fetch suggestions for")
	query := flag.String("query", "", "exercise name fragment to search for")
	limit := flag.Int("limit", suggest.DefaultLimit, "maximum suggestions to print")
	window := flag.Duration("window", suggest.DefaultFreshnessWindow, "snapshot freshness window")
	invalidate := flag.Bool("invalidate", false, "discard the cached snapshot and re-fetch before searching")
	cacheDir := flag.String("cache-dir", "", "snapshot cache directory (default ~/.liftlog-suggest)")
	configPath := flag.String("config", "", "optional config file; its suggest section fills in unset flags")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("liftlog-suggest", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *configPath != "" {
		cfg, err := config.LoadClient(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		set := make(map[string]bool)
		flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
		if !set["window"] {
			if w := cfg.Suggest.Window(); w > 0 {
				*window = w
			}
		}
		if !set["limit"] && cfg.Suggest.Limit > 0 {
			*limit = cfg.Suggest.Limit
		}
		if !set["cache-dir"] && cfg.Suggest.CacheDir != "" {
			*cacheDir = cfg.Suggest.CacheDir
		}
	}

	if *serverURL == "" || *query == "" {
		fmt.Fprintf(os.Stderr, "Usage: liftlog-suggest -server <URL> -query <text> [-user N] [-limit N] [-invalidate]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	dir := *cacheDir
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Error("failed to get home directory", "error", err)
			os.Exit(1)
		}
		dir = filepath.Join(homeDir, ".liftlog-suggest")
	}

	cache, err := suggest.OpenStore(dir, *userID, log)
	if err != nil {
		log.Error("failed to open snapshot cache", "error", err)
		os.Exit(1)
	}
	defer cache.Close()

	source := suggest.NewHTTPSource(strings.TrimRight(*serverURL, "/"), log)
	ctrl := suggest.NewController(cache, source, *userID, *window, log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if *invalidate {
		ctrl.Invalidate(ctx)
	} else {
		ctrl.EnsureFresh(ctx)
	}

	if !ctrl.Ready() {
		log.Error("no suggestion snapshot available", "error", ctrl.LastErr())
		os.Exit(1)
	}
	if err := ctrl.LastErr(); err != nil {
		log.Warn("serving stale snapshot", "error", err)
	}

	results := suggest.Search(strings.TrimSpace(*query), ctrl.Snapshot(), *limit)
	printSuggestions(results)
}

func printSuggestions(results []models.Suggestion) {
	if len(results) == 0 {
		fmt.Println("no matches")
		return
	}
	for i, s := range results {
		fmt.Printf("%2d. %s%s\n", i+1, s.DisplayName, provenance(s))
		if last := lastUsed(s); last != "" {
			fmt.Printf("      last: %s\n", last)
		}
	}
}

func provenance(s models.Suggestion) string {
	if s.Source == models.SourceUser {
		return fmt.Sprintf("  (logged %dx)", s.UseCount)
	}
	if s.Category != "" {
		return fmt.Sprintf("  [%s]", s.Category)
	}
	return ""
}

// lastUsed formats the most recent parameters, empty if never logged.
func lastUsed(s models.Suggestion) string {
	if s.LastWeight == nil {
		return ""
	}
	weight := *s.LastWeight
	if weight != models.BodyweightSentinel {
		weight += " kg"
	}
	if s.UseEffectiveReps {
		var maxReps, target int
		if s.LastEffectiveRepsMax != nil {
			maxReps = *s.LastEffectiveRepsMax
		}
		if s.LastEffectiveRepsTarget != nil {
			target = *s.LastEffectiveRepsTarget
		}
		return fmt.Sprintf("%s, max %d reps / target %d", weight, maxReps, target)
	}
	var sets, reps int
	if s.LastSets != nil {
		sets = *s.LastSets
	}
	if s.LastReps != nil {
		reps = *s.LastReps
	}
	return fmt.Sprintf("%s, %dx%d", weight, sets, reps)
}
