// Package main is the entry point for the USA League coin service.
package main

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Wafflinyo/USALeague/internal/config"
	"github.com/Wafflinyo/USALeague/internal/feed"
	"github.com/Wafflinyo/USALeague/internal/game/picks"
	"github.com/Wafflinyo/USALeague/internal/game/slot"
	"github.com/Wafflinyo/USALeague/internal/handler"
	"github.com/Wafflinyo/USALeague/internal/pkg/civil"
	"github.com/Wafflinyo/USALeague/internal/pkg/db"
	"github.com/Wafflinyo/USALeague/internal/repository"
	"github.com/Wafflinyo/USALeague/internal/router"
	"github.com/Wafflinyo/USALeague/internal/service"
)

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().Msg("Configuration loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// League civil clock; daily bonuses roll over on league time, not UTC.
	clock, err := civil.NewClock(cfg.Server.Timezone)
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Server.Timezone).Msg("Failed to load timezone")
	}

	// Initialize database connection pool
	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	// Run database migrations
	if err := repository.Migrate(ctx, dbPool.Pool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Redis backs the sale feed and jackpot announcements. The service
	// runs without it: full prices, no broadcasts.
	var saleTable feed.SaleTable = feed.StaticSaleTable{}
	var announcer feed.Announcer = feed.NopAnnouncer{}
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unreachable, sales and jackpot feed disabled")
		} else {
			saleTable = feed.NewRedisSaleTable(rdb, cfg.Redis.SaleKey)
			announcer = feed.NewRedisAnnouncer(rdb, cfg.Redis.JackpotChannel)
			defer rdb.Close()
			log.Info().Str("addr", cfg.Redis.Addr).Msg("Connected to Redis")
		}
	}

	// Initialize repositories
	accountRepo := repository.NewAccountRepository()
	inventoryRepo := repository.NewInventoryRepository()
	predictionRepo := repository.NewPredictionRepository()
	settlementRepo := repository.NewSettlementRepository()

	// Initialize the slot engine
	engine := slot.New(&slot.Config{
		BasePayout:  cfg.Economy.BasePayout,
		MinSymbols:  cfg.Economy.MinSlotSymbols,
		PoisonLabel: cfg.Economy.PoisonLabel,
		Rule:        slot.TeamMatchRule{},
	}, rand.New(rand.NewSource(time.Now().UnixNano())))

	// Initialize services
	accountService := service.NewAccountService(dbPool.Pool, accountRepo, inventoryRepo, settlementRepo, cfg.Economy.NewUserBonus)
	bonusService := service.NewBonusService(dbPool.Pool, accountRepo, cfg.Economy.NewUserBonus, cfg.Economy.DailyBonus)
	slotsService := service.NewSlotsService(dbPool.Pool, accountRepo, engine, announcer, cfg.Economy.SpinCost)
	shopService := service.NewShopService(dbPool.Pool, accountRepo, inventoryRepo, saleTable)
	settlementService := service.NewSettlementService(
		dbPool.Pool,
		accountRepo,
		predictionRepo,
		settlementRepo,
		picks.PerCorrect{Coins: cfg.Picks.CoinsPerCorrect},
		cfg.Picks.RequireAllPicks,
		cfg.Picks.MinGames,
	)

	// Build the router
	mux := router.New(router.Config{
		Handler:        handler.New(dbPool),
		AccountHandler: handler.NewAccountHandler(accountService),
		BonusHandler:   handler.NewBonusHandler(bonusService, clock),
		SlotsHandler:   handler.NewSlotsHandler(slotsService),
		ShopHandler:    handler.NewShopHandler(shopService),
		PicksHandler:   handler.NewPicksHandler(settlementService),
		AdminHandler:   handler.NewAdminHandler(settlementService),
		AdminToken:     cfg.Server.AdminToken,
		CORSOrigins:    cfg.Server.CORSOrigin,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	log.Info().Msg("Server stopped gracefully")
}
