// Package main is the entrypoint for the ticketbird bot.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ticketbird/ticketbird/internal/bot"
	"github.com/ticketbird/ticketbird/internal/config"
	"github.com/ticketbird/ticketbird/internal/i18n"
	"github.com/ticketbird/ticketbird/internal/observability"
	"github.com/ticketbird/ticketbird/internal/pending"
	"github.com/ticketbird/ticketbird/internal/platform"
	"github.com/ticketbird/ticketbird/internal/ratelimit"
	"github.com/ticketbird/ticketbird/internal/repo"
	"github.com/ticketbird/ticketbird/internal/services"
)

func main() {
	configPath := flag.String("config", "", "Path to TOML config file (optional)")
	flag.Parse()

	// A .env file is a convenience for development; absence is fine.
	_ = godotenv.Load()

	// Bootstrap logger for errors before the configured one exists.
	log := newLogger(zerolog.InfoLevel, false)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse log level")
	}
	log = newLogger(level, cfg.Log.Pretty)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repo.OpenSQLite(cfg.DB.Path, cfg.DB.Pragmas...)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DB.Path).Msg("Failed to open database")
	}
	if err := repo.Migrate(db, log.With().Str("component", "migrate").Logger(), repo.DefaultMigrations); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics = observability.New(registry)
		go serveMetrics(log, cfg.Metrics.Addr, registry)
	}

	driver, ok := platform.LookupDriver(cfg.Bot.Driver)
	if !ok {
		log.Fatal().Str("driver", cfg.Bot.Driver).Msg("Unknown platform driver")
	}
	session, err := driver.Open(ctx, cfg.Bot.Token)
	if err != nil {
		log.Fatal().Str("driver", cfg.Bot.Driver).Err(err).Msg("Failed to open platform session")
	}
	defer session.Close()

	catalog := i18n.New()
	broker := pending.NewBroker()
	limiter := ratelimit.New()

	inboxes := services.NewInboxService(
		db,
		log.With().Str("component", "inbox").Logger(),
		session.Messenger(),
		session.State(),
		broker,
		catalog,
	)
	inboxes.MaxAttachmentSize = cfg.Bot.Inbox.MaxAttachmentSize
	inboxes.DefaultMaxTicketsPerUser = cfg.Bot.Inbox.MaxTicketsPerUser

	tickets := services.NewTicketService(
		db,
		log.With().Str("component", "ticket").Logger(),
		session.State(),
		session.Threads(),
		limiter,
		catalog,
		metrics,
	)
	tickets.RateFloor = cfg.Bot.Inbox.RatelimitFloor.Std()

	cleanup := services.NewCleanupService(
		db,
		log.With().Str("component", "cleanup").Logger(),
		session.State(),
	)

	dispatcher := &services.ErrorDispatcher{
		Log:     log.With().Str("component", "dispatch").Logger(),
		Catalog: catalog,
	}

	b := bot.New(log, inboxes, tickets, cleanup, broker, dispatcher)

	go broker.Run(ctx, pending.DefaultSweepInterval)
	go limiter.Run(ctx, 30*time.Minute)
	go cleanup.Run(ctx)

	log.Info().
		Str("driver", cfg.Bot.Driver).
		Str("locale", cfg.Bot.Locale).
		Msg("Starting session")
	if err := session.Start(ctx, b); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("Session terminated")
	}
	log.Info().Msg("Shutting down")
}

func newLogger(level zerolog.Level, pretty bool) zerolog.Logger {
	var out = os.Stderr
	if pretty {
		return zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}).
			Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func serveMetrics(log zerolog.Logger, addr string, registry *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Info().Str("addr", addr).Msg("Serving metrics")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("Metrics listener failed")
	}
}
