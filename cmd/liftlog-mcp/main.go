package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/mcp"
	"github.com/claude/liftlog/internal/suggest"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "LiftLog server URL")
	userID := flag.Int("user", 1, "user ID to fetch suggestions for")
	window := flag.Duration("window", suggest.DefaultFreshnessWindow, "snapshot freshness window")
	cacheDir := flag.String("cache-dir", "", "snapshot cache directory (default ~/.liftlog-suggest)")
	configPath := flag.String("config", "", "optional config file; its suggest section fills in unset flags")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("liftlog-mcp", Version)
		return
	}

	// stdout carries the MCP protocol; logs go to stderr.
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
		if !set["cache-dir"] && cfg.Suggest.CacheDir != "" {
			*cacheDir = cfg.Suggest.CacheDir
		}
	}

	if *serverURL == "" {
		fmt.Fprintf(os.Stderr, "Usage: liftlog-mcp -server <URL> [-user N]\n\n")
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

	srv := mcp.New(ctrl, Version, log)
	log.Info("liftlog-mcp serving on stdio", "server", *serverURL, "user", *userID)
	if err := mcpserver.ServeStdio(srv); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
