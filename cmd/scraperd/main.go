// Package main runs the Matera film showtime scraper daemon.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"go.uber.org/zap"

	"github.com/alexandermaffei/matera-film-scraper/internal/api"
	"github.com/alexandermaffei/matera-film-scraper/internal/bot"
	"github.com/alexandermaffei/matera-film-scraper/internal/cache"
	"github.com/alexandermaffei/matera-film-scraper/internal/config"
	"github.com/alexandermaffei/matera-film-scraper/internal/model"
	"github.com/alexandermaffei/matera-film-scraper/internal/scraper"
	"github.com/alexandermaffei/matera-film-scraper/internal/service"
	"github.com/alexandermaffei/matera-film-scraper/internal/storage"
	"github.com/alexandermaffei/matera-film-scraper/internal/trakt"
	"github.com/alexandermaffei/matera-film-scraper/pkg/logger"
)

func main() {
	log := logger.New()
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("Shutdown signal received")
		cancel()
	}()

	// Snapshot persistence is optional: without DATABASE_URL the
	// daemon runs cache-only.
	var store service.SnapshotStore
	var db *storage.Postgres
	if cfg.DatabaseURL != "" {
		db, err = storage.NewPostgres(cfg.DatabaseURL, log)
		if err != nil {
			log.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer func() { _ = db.Close() }()

		repo := db.GetSnapshotRepository()
		if err := repo.Init(ctx); err != nil {
			log.Fatal("Failed to initialize database schema", zap.Error(err))
		}
		store = repo
	}

	sources := model.DefaultCinemas
	if cfg.DiscoverCinemas {
		discovered, err := scraper.DiscoverCinemas(ctx, model.CityListingURL, cfg, log)
		if err != nil || len(discovered) == 0 {
			log.Warn("Cinema discovery failed, using built-in list", zap.Error(err))
		} else {
			sources = discovered
		}
	}
	log.Info("Cinemas configured", zap.Int("count", len(sources)))

	fetcher := scraper.NewHTTPClient(cfg.HTTPClientConfig, cfg.RequestTimeout, log)
	scr := scraper.New(fetcher, cfg, log)
	snapshotCache := cache.New(cfg.CacheDuration, log)
	svc := service.New(scr, sources, snapshotCache, store, log)

	svc.WarmStart(ctx)

	var enricher api.Enricher
	if cfg.TraktClientID != "" {
		enricher = trakt.NewClient(cfg.TraktClientID, log)
	}

	var notifier service.Notifier
	var tgBot *bot.Bot
	if cfg.BotToken != "" {
		tgBot, err = bot.New(cfg.BotToken, cfg.AdminChatID, svc, log)
		if err != nil {
			log.Fatal("Failed to create Telegram bot", zap.Error(err))
		}
		notifier = tgBot
	}

	scheduler := service.NewScheduler(svc, cfg.ScrapeSchedule, notifier, log)
	if err := scheduler.Start(ctx); err != nil {
		log.Fatal("Failed to start scheduler", zap.Error(err))
	}
	defer scheduler.Stop()

	apiServer := api.NewServer(strconv.Itoa(cfg.APIPort), svc, enricher, log)
	apiErr := make(chan error, 1)
	go func() {
		if err := apiServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			apiErr <- err
		}
	}()
	defer func() {
		if err := apiServer.Stop(); err != nil {
			log.Error("Failed to stop API server", zap.Error(err))
		}
	}()

	if tgBot != nil {
		go func() {
			if err := tgBot.Start(ctx); err != nil {
				log.Error("Bot stopped with error", zap.Error(err))
				cancel()
			}
		}()
	}

	select {
	case <-ctx.Done():
	case err := <-apiErr:
		log.Error("API server failed", zap.Error(err))
		cancel()
	}

	log.Info("Daemon stopped")
}
