// Package bot provides the Telegram bot initialization and handler registration.
package bot

import (
	"fmt"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"dictionary-game-bot/internal/config"
	"dictionary-game-bot/internal/game"
	"dictionary-game-bot/internal/handler"
	"dictionary-game-bot/internal/pkg/scheduler"
)

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot       *tele.Bot
	cfg       *config.Config
	scheduler *scheduler.Scheduler
	limiter   *userLimiter

	gameHandler *handler.GameHandler
}

// Dependencies holds all the dependencies needed by the bot handlers.
type Dependencies struct {
	Config    *config.Config
	Engine    *game.Engine
	Scheduler *scheduler.Scheduler
}

// New creates a new Bot instance with the given dependencies.
func New(deps *Dependencies) (*Bot, error) {
	if deps.Config.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	pref := tele.Settings{
		Token: deps.Config.Bot.Token,
		Poller: &tele.LongPoller{
			Timeout:        deps.Config.Bot.PollTimeout,
			AllowedUpdates: []string{"message", "callback_query", "poll_answer"},
		},
		OnError: func(err error, c tele.Context) {
			log.Error().Err(err).Msg("Handler error")
		},
	}

	teleBot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := &Bot{
		bot:       teleBot,
		cfg:       deps.Config,
		scheduler: deps.Scheduler,
		limiter:   newUserLimiter(deps.Config.RateLimit.PerSecond, deps.Config.RateLimit.Burst),
	}
	b.gameHandler = handler.NewGameHandler(deps.Config, deps.Engine, teleBot, deps.Scheduler)

	b.registerMiddleware()
	b.registerHandlers()

	return b, nil
}

// registerMiddleware registers all middleware.
func (b *Bot) registerMiddleware() {
	b.bot.Use(RecoveryMiddleware())
	b.bot.Use(WhitelistMiddleware(b.cfg))
	b.bot.Use(LoggingMiddleware())
	b.bot.Use(RateLimitMiddleware(b.limiter))
}

// registerHandlers registers all command and callback handlers.
func (b *Bot) registerHandlers() {
	b.bot.Handle("/start", b.gameHandler.HandleStart)
	b.bot.Handle("/stop", b.gameHandler.HandleStop)
	b.bot.Handle("/repeat", b.gameHandler.HandleRepeat)
	b.bot.Handle("/scores", b.gameHandler.HandleScores)
	b.bot.Handle("/help", b.gameHandler.HandleHelp)
	b.bot.Handle("/rules", b.gameHandler.HandleHelp)
	b.bot.Handle("/about", b.gameHandler.HandleHelp)
	b.bot.Handle("/language", b.gameHandler.HandleLanguage)

	b.bot.Handle(tele.OnCallback, b.gameHandler.HandleCallback)
	b.bot.Handle(tele.OnText, b.gameHandler.HandleText)
	b.bot.Handle(tele.OnPollAnswer, b.gameHandler.HandlePollAnswer)
}

// Start starts the bot polling. It blocks until Stop.
func (b *Bot) Start() {
	log.Info().Msg("Starting bot...")
	b.bot.Start()
}

// Stop stops polling and drops pending next-round timers.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping bot...")
	b.bot.Stop()
	b.scheduler.Stop()
}
