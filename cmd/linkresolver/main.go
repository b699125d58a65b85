// Package main wires together the resolver service binary.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/fairwaylabs/linkresolver/internal/api"
	"github.com/fairwaylabs/linkresolver/internal/brandindex"
	"github.com/fairwaylabs/linkresolver/internal/cache"
	"github.com/fairwaylabs/linkresolver/internal/config"
	"github.com/fairwaylabs/linkresolver/internal/fetcher"
	"github.com/fairwaylabs/linkresolver/internal/fetcher/headless"
	"github.com/fairwaylabs/linkresolver/internal/fetcher/lightweight"
	"github.com/fairwaylabs/linkresolver/internal/fetcher/reader"
	"github.com/fairwaylabs/linkresolver/internal/imagesearch"
	"github.com/fairwaylabs/linkresolver/internal/logging"
	"github.com/fairwaylabs/linkresolver/internal/marketplace"
	"github.com/fairwaylabs/linkresolver/internal/metrics"
	"github.com/fairwaylabs/linkresolver/internal/resolve"
	"github.com/fairwaylabs/linkresolver/internal/semantic"
	"github.com/fairwaylabs/linkresolver/internal/urlparse"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()
	zap.ReplaceGlobals(logger)

	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	index := brandindex.New(logger.Named("brandindex"))
	analyzer := urlparse.NewAnalyzer(index, urlparse.Weights{
		HyphenBonus:     cfg.Parser.HyphenBonus,
		PerHyphen:       cfg.Parser.PerHyphen,
		PerHyphenCap:    cfg.Parser.PerHyphenCap,
		PerCharCap:      cfg.Parser.PerCharCap,
		MixedCaseBonus:  cfg.Parser.MixedCaseBonus,
		CategoryPenalty: cfg.Parser.CategoryPenalty,
		SKUPenalty:      cfg.Parser.SKUPenalty,
		IDPenalty:       cfg.Parser.IDPenalty,
	})

	deps, cleanup, err := buildDeps(ctx, cfg, logger)
	if err != nil {
		logger.Error("dependency init failed", zap.Error(err))
		os.Exit(1)
	}
	defer cleanup()

	settings := resolve.Settings{
		EarlyExitConfidence:  cfg.Pipeline.EarlyExitConfidence,
		PersistenceThreshold: cfg.Pipeline.PersistenceThreshold,
		FetchTimeout:         cfg.FetchTimeout(),
		BatchConcurrency:     cfg.Pipeline.BatchConcurrency,
	}
	pipeline := resolve.New(logger.Named("pipeline"), index, analyzer, deps, settings)

	apiServer := api.NewServer(pipeline, logger.Named("api"), cfg)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server started", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

// buildDeps constructs every pipeline collaborator the configuration
// enables. Unconfigured stages stay nil, which the pipeline treats as
// disabled rather than failed.
func buildDeps(ctx context.Context, cfg config.Config, logger *zap.Logger) (resolve.Deps, func(), error) {
	var deps resolve.Deps
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	switch cfg.Cache.Provider {
	case "postgres":
		store, err := cache.NewPostgresStore(ctx, cache.PostgresConfig{
			DSN:      cfg.Cache.DSN,
			Table:    cfg.Cache.Table,
			TTL:      cfg.CacheTTL(),
			MaxConns: cfg.Cache.MaxConns,
		})
		if err != nil {
			return resolve.Deps{}, cleanup, fmt.Errorf("postgres cache: %w", err)
		}
		closers = append(closers, store.Close)
		deps.Cache = store
	default:
		deps.Cache = cache.NewMemoryStore(cfg.CacheTTL())
	}

	fetchCfg := lightweight.DefaultConfig()
	if len(cfg.Fetch.UserAgents) > 0 {
		fetchCfg.UserAgents = cfg.Fetch.UserAgents
	}
	if cfg.Fetch.MaxRedirects > 0 {
		fetchCfg.MaxRedirects = cfg.Fetch.MaxRedirects
	}
	if cfg.Fetch.MaxAttempts > 0 {
		fetchCfg.MaxAttempts = cfg.Fetch.MaxAttempts
	}
	fetchCfg.Timeout = cfg.FetchTimeout()
	light, err := lightweight.New(fetchCfg, logger.Named("fetcher"))
	if err != nil {
		return resolve.Deps{}, cleanup, fmt.Errorf("lightweight fetcher: %w", err)
	}
	deps.Fetcher = light

	var primary, secondary resolve.Renderer
	if cfg.Headless.Enabled {
		chrome, err := headless.New(headless.Config{
			UserAgent:      fetchCfg.UserAgents[0],
			MaxConcurrency: cfg.Headless.MaxParallel,
			Timeout:        time.Duration(cfg.Headless.NavTimeoutSec) * time.Second,
		}, logger.Named("headless"))
		if err != nil {
			logger.Warn("headless renderer init failed", zap.Error(err))
		} else {
			closers = append(closers, chrome.Close)
			primary = chrome
		}
	}
	if cfg.Reader.APIKey != "" {
		secondary = reader.New(reader.Config{
			BaseURL: cfg.Reader.BaseURL,
			APIKey:  cfg.Reader.APIKey,
			Timeout: time.Duration(cfg.Reader.TimeoutSeconds) * time.Second,
		}, logger.Named("reader"))
	}
	switch {
	case primary != nil && secondary != nil:
		deps.Renderer = fetcher.NewRenderChain(primary, secondary, logger.Named("renderchain"))
	case primary != nil:
		deps.Renderer = primary
	case secondary != nil:
		deps.Renderer = secondary
	}

	if cfg.Marketplace.Endpoint != "" {
		deps.Marketplace = marketplace.New(marketplace.Config{
			Endpoint: cfg.Marketplace.Endpoint,
			APIKey:   cfg.Marketplace.APIKey,
			Timeout:  time.Duration(cfg.Marketplace.TimeoutSeconds) * time.Second,
		}, logger.Named("marketplace"))
	}

	if cfg.ImageSearch.APIKey != "" && cfg.ImageSearch.EngineID != "" {
		deps.Images = imagesearch.New(imagesearch.Config{
			APIKey:   cfg.ImageSearch.APIKey,
			EngineID: cfg.ImageSearch.EngineID,
			Timeout:  time.Duration(cfg.ImageSearch.TimeoutSeconds) * time.Second,
		}, logger.Named("imagesearch"))
	}

	if cfg.AI.APIKey != "" {
		deps.Semantic = semantic.New(semantic.Config{
			APIKey:     cfg.AI.APIKey,
			Model:      cfg.AI.Model,
			QuickModel: cfg.AI.QuickModel,
			MaxTokens:  cfg.AI.MaxTokens,
		}, logger.Named("semantic"))
	}

	return deps, cleanup, nil
}
