// Package main is the entry point for the Dictionary game bot.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"dictionary-game-bot/internal/bot"
	"dictionary-game-bot/internal/config"
	"dictionary-game-bot/internal/game"
	"dictionary-game-bot/internal/pkg/db"
	"dictionary-game-bot/internal/pkg/scheduler"
	"dictionary-game-bot/internal/repository"
	"dictionary-game-bot/internal/repository/memstore"
)

// stores groups the persistence ports the engine needs.
type stores struct {
	games        game.GameRepository
	interactions game.InteractionRegistry
	archive      game.RoundArchive
	settings     game.SettingsRepository
	close        func()
}

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Warn().Str("level", cfg.Log.Level).Msg("Unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().Str("storage", cfg.Storage.Driver).Msg("Configuration loaded successfully")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := openStores(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer st.close()

	engine := game.NewEngine(cfg.EngineConfig(), st.games, st.interactions, st.archive, st.settings)
	sched := scheduler.New()

	log.Info().
		Int("min_players", cfg.Game.MinPlayers).
		Int("max_players", cfg.Game.MaxPlayers).
		Bool("dev_mode", cfg.Game.DevMode).
		Bool("native_poll", cfg.Game.NativePoll).
		Msg("Game engine ready")

	telegramBot, err := bot.New(&bot.Dependencies{
		Config:    cfg,
		Engine:    engine,
		Scheduler: sched,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Msg("Bot is starting...")
		telegramBot.Start()
	}()

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	telegramBot.Stop()
	log.Info().Msg("Bot stopped gracefully")
}

// openStores builds the storage selected by storage.driver.
func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.Storage.Driver == config.StorageMemory {
		log.Warn().Msg("Using in-memory storage, games are lost on restart")
		return &stores{
			games:        memstore.NewGameRepository(),
			interactions: memstore.NewInteractionRegistry(),
			archive:      memstore.NewRoundArchive(),
			settings:     memstore.NewSettingsRepository(),
			close:        func() {},
		}, nil
	}

	dbPool, err := db.NewPool(ctx, &cfg.Database, cfg.Database.Migrate)
	if err != nil {
		return nil, err
	}
	return &stores{
		games:        repository.NewGameRepository(dbPool.Pool),
		interactions: repository.NewInteractionRepository(dbPool.Pool),
		archive:      repository.NewRoundRepository(dbPool.Pool),
		settings:     repository.NewSettingsRepository(dbPool.Pool),
		close:        dbPool.Close,
	}, nil
}
