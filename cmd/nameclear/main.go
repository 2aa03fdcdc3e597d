package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nameclear/nameclear/internal/api"
	"github.com/nameclear/nameclear/internal/cache"
	"github.com/nameclear/nameclear/internal/config"
	"github.com/nameclear/nameclear/internal/logging"
	"github.com/nameclear/nameclear/internal/shortcut"
	"github.com/nameclear/nameclear/internal/similarity"
	"github.com/nameclear/nameclear/internal/source"
	"github.com/nameclear/nameclear/internal/source/deezer"
	"github.com/nameclear/nameclear/internal/source/itunes"
	"github.com/nameclear/nameclear/internal/source/lastfm"
	"github.com/nameclear/nameclear/internal/source/musicbrainz"
	"github.com/nameclear/nameclear/internal/verify"
	"github.com/nameclear/nameclear/internal/version"
)

func main() {
	// Handle subcommands before starting the server
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "check":
			if err := check(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
			return
		case "version":
			fmt.Printf("nameclear %s (%s)\n", version.Version, version.Commit)
			return
		}
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, closer := logging.New(cfg.Logging)
	if closer != nil {
		defer closer.Close() //nolint:errcheck
	}
	slog.SetDefault(logger)

	verifier, c := buildPipeline(cfg, logger)

	router := api.NewRouter(api.RouterDeps{
		Verifier: verifier,
		Cache:    c,
		Logger:   logger,
		BasePath: cfg.Server.BasePath,
	})

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("base_path", cfg.Server.BasePath),
			slog.String("version", version.Version))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// check runs a single verification from the command line and prints the
// result as JSON. Useful for scripting and smoke tests.
func check(args []string) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	entity := fs.String("type", "band", "entity type: band or song")
	genre := fs.String("genre", "", "optional genre hint")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: nameclear check [-type band|song] [-genre rock] <name>")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// One-shot runs log warnings and up to stderr so the JSON result
	// stays clean on stdout.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	verifier, _ := buildPipeline(cfg, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := verifier.Verify(ctx, verify.Request{
		Name:   fs.Arg(0),
		Entity: similarity.EntityType(*entity),
		Genre:  *genre,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func loadConfig() (*config.Config, error) {
	configPath := os.Getenv("NC_CONFIG_PATH")
	if configPath == "" {
		configPath = "/etc/nameclear/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// buildPipeline assembles the catalog registry, cache, and verifier from
// configuration. Disabled catalogs and Last.fm without a key are left out.
func buildPipeline(cfg *config.Config, logger *slog.Logger) (*verify.Verifier, *cache.Cache) {
	limiter := source.NewRateLimiterMap()
	registry := source.NewRegistry()

	if cfg.SourceEnabled(source.NameMusicBrainz) {
		registry.Register(musicbrainz.New(limiter, logger))
	}
	if cfg.SourceEnabled(source.NameITunes) {
		registry.Register(itunes.New(limiter, logger))
	}
	if cfg.SourceEnabled(source.NameDeezer) {
		registry.Register(deezer.New(limiter, logger))
	}
	if cfg.SourceEnabled(source.NameLastFM) {
		if cfg.Sources.LastFMAPIKey == "" {
			logger.Warn("lastfm enabled but no API key configured; skipping")
		} else {
			registry.Register(lastfm.New(limiter, logger, cfg.Sources.LastFMAPIKey))
		}
	}

	c := cache.New(logger)
	verifier := verify.New(verify.Options{
		Registry:      registry,
		Cache:         c,
		Logger:        logger,
		EasterEggs:    shortcut.NewStaticEasterEggs(),
		FamousArtists: shortcut.NewStaticFamousArtists(),
		Suggestions:   shortcut.DefaultSuggestions{},
		Timeouts:      cfg.Timeouts(),
	})

	return verifier, c
}
