// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/tomtom215/quotebook/internal/analysis"
	"github.com/tomtom215/quotebook/internal/api"
	"github.com/tomtom215/quotebook/internal/calendar"
	"github.com/tomtom215/quotebook/internal/config"
	"github.com/tomtom215/quotebook/internal/events"
	"github.com/tomtom215/quotebook/internal/llm"
	"github.com/tomtom215/quotebook/internal/logging"
	"github.com/tomtom215/quotebook/internal/promo"
	"github.com/tomtom215/quotebook/internal/recommend"
	"github.com/tomtom215/quotebook/internal/report"
	"github.com/tomtom215/quotebook/internal/scheduler"
	"github.com/tomtom215/quotebook/internal/store"
	"github.com/tomtom215/quotebook/internal/supervisor"
	"github.com/tomtom215/quotebook/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	seedPath := flag.String("seed", "", "load a seed file (catalog, promo codes, UTM templates) and exit")
	backfill := flag.Bool("backfill", false, "recompute ISO week coordinates of stored quotes and exit")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})

	logging.Info().Str("version", version).Msg("Starting Quotebook")

	cal, err := calendar.New(cfg.Business.OffsetMinutes)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize business calendar")
	}

	st, err := store.Open(store.Options{
		Path:           cfg.Storage.Path,
		InMemory:       cfg.Storage.InMemory,
		ThemeCorpusTTL: cfg.Report.ThemeCorpusTTL,
	}, cal)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open store")
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Failed to close store")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	switch {
	case *seedPath != "":
		if err := seedStore(ctx, st, *seedPath); err != nil {
			logging.Error().Err(err).Str("file", *seedPath).Msg("Seeding failed")
			cancel()
			_ = st.Close()
			os.Exit(1) //nolint:gocritic // store closed explicitly above
		}
		return
	case *backfill:
		n, err := st.BackfillWeekCoordinates(ctx)
		if err != nil {
			logging.Error().Err(err).Msg("Backfill failed")
			cancel()
			_ = st.Close()
			os.Exit(1) //nolint:gocritic // store closed explicitly above
		}
		logging.Info().Int("updated", n).Msg("Quote week coordinates backfilled")
		return
	}

	if cfg.Storage.SeedFile != "" {
		if err := seedStore(ctx, st, cfg.Storage.SeedFile); err != nil {
			logging.Fatal().Err(err).Str("file", cfg.Storage.SeedFile).Msg("Failed to load startup seed file")
		}
	}

	// === REPORT PIPELINE ===

	analyzer := analysis.NewAnalyzer(newCompleter(ctx, cfg), analysis.Config{
		Timeout:           cfg.AI.Timeout,
		RequestsPerMinute: cfg.AI.RequestsPerMinute,
		Burst:             cfg.AI.Burst,
		Breaker:           cfg.AI.Breaker.Resilience(),
	})

	links := promo.NewLinkGenerator(st, cfg.Report.LinkBaseURL)
	matcher, err := recommend.NewMatcher(st, links, recommend.Config{
		Limit:       cfg.Report.MaxRecommendations,
		LinkContext: cfg.Report.LinkContext,
		Breaker:     cfg.Report.CatalogBreaker.Resilience(),
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize book matcher")
	}

	assigner := promo.NewAssigner(st, promo.Config{
		FallbackCodes:    cfg.Report.FallbackCodes,
		FallbackDiscount: cfg.Report.FallbackDiscount,
		FallbackValidity: cfg.Report.FallbackValidity,
	})

	assembler, err := report.NewAssembler(report.Deps{
		Calendar:    cal,
		Analyzer:    analyzer,
		Corpus:      st,
		Recommender: matcher,
		Promo:       assigner,
		Prior:       st,
	}, report.Config{
		TargetQuotes: cfg.Report.TargetQuotes,
		TargetDays:   cfg.Report.TargetDays,
		PromoContext: cfg.Report.PromoContext,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize report assembler")
	}

	// === EVENTS ===

	bus := events.NewGoChannel(cfg.Events.BufferSize)
	publisher, err := events.NewPublisher(bus, cfg.Events.Breaker.Resilience())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize event publisher")
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logging.Error().Err(err).Msg("Failed to close event bus")
		}
	}()

	reports, err := report.NewService(assembler, st, publisher, cal)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize report service")
	}

	sched, err := scheduler.NewScheduler(reports, st, cal, scheduler.Config{
		Enabled:          cfg.Scheduler.Enabled,
		Cron:             cfg.Scheduler.Cron,
		CheckInterval:    cfg.Scheduler.CheckInterval,
		MaxConcurrent:    cfg.Scheduler.MaxConcurrent,
		ExecutionTimeout: cfg.Scheduler.ExecutionTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize weekly scheduler")
	}

	// === HTTP API ===

	handler := api.NewHandler(reports, st, cal, sched, version)
	router := api.NewRouter(handler, api.RouterConfig{
		TriggerRateLimit:  cfg.Server.TriggerRateLimit,
		TriggerRateWindow: cfg.Server.TriggerRateWindow,
	})
	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	// === SUPERVISOR TREE ===

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	if cfg.Scheduler.Enabled {
		tree.AddPipelineService(services.NewSchedulerService(sched))
		logging.Info().
			Str("cron", cfg.Scheduler.Cron).
			Int("max_concurrent", cfg.Scheduler.MaxConcurrent).
			Msg("Weekly scheduler added to supervisor tree")
	} else {
		logging.Info().Msg("Weekly scheduler disabled")
	}

	if cfg.Events.LogDelivered {
		tree.AddMessagingService(services.NewEventConsumerService("delivery-log", bus, events.LogDelivery))
		logging.Info().Str("topic", events.TopicReportGenerated).Msg("Delivery log consumer added to supervisor tree")
	}

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	watchConfig()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}

// newCompleter returns the AI client, or nil when AI is disabled. The return
// type stays an interface so a disabled client is a true nil.
func newCompleter(ctx context.Context, cfg *config.Config) analysis.Completer {
	if !cfg.AI.Enabled {
		logging.Info().Msg("AI analysis disabled, reports use the deterministic fallback")
		return nil
	}
	if cfg.AI.APIKey == "" {
		logging.Warn().Msg("AI analysis enabled without an API key, reports use the deterministic fallback")
		return nil
	}

	client, err := llm.New(ctx, llm.Config{
		BaseURL:    cfg.AI.BaseURL,
		APIKey:     cfg.AI.APIKey,
		Model:      cfg.AI.Model,
		MaxRetries: cfg.AI.MaxRetries,
		BaseDelay:  cfg.AI.RetryBaseDelay,
	})
	if err != nil {
		logging.Error().Err(err).Msg("Failed to initialize AI client, reports use the deterministic fallback")
		return nil
	}

	logging.Info().Str("model", cfg.AI.Model).Msg("AI analysis enabled")
	return client
}

func seedStore(ctx context.Context, st *store.Store, path string) error {
	seed, err := store.LoadSeedFile(path)
	if err != nil {
		return err
	}
	if err := st.Seed(ctx, seed); err != nil {
		return err
	}
	logging.Info().
		Str("file", path).
		Int("books", len(seed.Catalog)).
		Int("promo_codes", len(seed.PromoCodes)).
		Int("utm_templates", len(seed.UTMTemplates)).
		Msg("Seed file loaded")
	return nil
}

// watchConfig reapplies the log level when the active config file changes.
// Other settings take effect on restart.
func watchConfig() {
	path := config.ActiveConfigFile()
	if path == "" {
		return
	}

	err := config.WatchConfigFile(path, func() {
		cfg, err := config.Load()
		if err != nil {
			logging.Warn().Err(err).Str("file", path).Msg("Ignoring invalid config change")
			return
		}
		previous := logging.GetLevel()
		logging.Init(logging.Config{
			Level:     cfg.Logging.Level,
			Format:    cfg.Logging.Format,
			Caller:    cfg.Logging.Caller,
			Timestamp: true,
			Output:    os.Stderr,
		})
		if current := logging.GetLevel(); current != previous {
			logging.Info().Str("from", previous.String()).Str("level", current.String()).
				Msg("Log level changed from config file")
			return
		}
		logging.Debug().Str("file", path).Msg("Config file changed, log level unchanged")
	})
	if err != nil {
		logging.Warn().Err(err).Str("file", path).Msg("Config file watch unavailable")
		return
	}
	logging.Debug().Str("file", path).Msg("Watching config file for log level changes")
}
