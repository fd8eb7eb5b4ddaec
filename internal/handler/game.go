package handler

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/message"
	tele "gopkg.in/telebot.v3"

	"dictionary-game-bot/internal/config"
	"dictionary-game-bot/internal/game"
	"dictionary-game-bot/internal/i18n"
	"dictionary-game-bot/internal/pkg/scheduler"
)

const (
	// OperationTimeout bounds one update's storage work.
	OperationTimeout = 10 * time.Second
)

// GameHandler handles the Dictionary game commands, buttons, replies and poll answers.
type GameHandler struct {
	cfg       *config.Config
	engine    *game.Engine
	messenger Messenger
	scheduler *scheduler.Scheduler
	names     nameBook
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(cfg *config.Config, engine *game.Engine, messenger Messenger, sched *scheduler.Scheduler) *GameHandler {
	return &GameHandler{
		cfg:       cfg,
		engine:    engine,
		messenger: messenger,
		scheduler: sched,
	}
}

func (h *GameHandler) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), OperationTimeout)
}

// printer returns the chat's printer, falling back to the default language.
func (h *GameHandler) printer(ctx context.Context, chatID int64) *message.Printer {
	code, err := h.engine.Language(ctx, chatID)
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to load chat language")
		return i18n.Printer(i18n.DefaultLanguage.String())
	}
	return i18n.Printer(code)
}

// errorText maps an engine error to a user message. Domain rejections are
// routine traffic and only logged at debug.
func errorText(p *message.Printer, err error, notFound string) string {
	switch {
	case errors.Is(err, game.ErrNotFound):
		log.Debug().Err(err).Msg("Rejected: not found")
		return p.Sprintf(notFound)
	case errors.Is(err, game.ErrInvalidState):
		log.Debug().Err(err).Msg("Rejected: invalid state")
		return p.Sprintf(i18n.KeyErrState)
	case errors.Is(err, game.ErrInvalidOperation):
		log.Debug().Err(err).Msg("Rejected: invalid operation")
		return p.Sprintf(i18n.KeyErrOperation)
	case errors.Is(err, game.ErrAmbiguousInteraction):
		log.Debug().Err(err).Msg("Rejected: ambiguous reply")
		return p.Sprintf(i18n.KeyErrAmbiguous)
	default:
		log.Error().Err(err).Msg("Game operation failed")
		return p.Sprintf(i18n.KeyErrGeneric)
	}
}

// handle dispatches ev and renders what it produced.
func (h *GameHandler) handle(ctx context.Context, ev game.Event) ([]game.Effect, error) {
	effects, err := game.Dispatch(ctx, h.engine, ev)
	if err != nil {
		return nil, err
	}
	h.render(ctx, effects)
	return effects, nil
}

// HandleStart handles /start. In a group it opens a game; in private it
// shows the rules, which also lets the bot write to the user later.
func (h *GameHandler) HandleStart(c tele.Context) error {
	return h.handleCommand(c, game.CommandStart)
}

// HandleStop handles /stop.
func (h *GameHandler) HandleStop(c tele.Context) error {
	return h.handleCommand(c, game.CommandStop)
}

// HandleRepeat handles /repeat.
func (h *GameHandler) HandleRepeat(c tele.Context) error {
	return h.handleCommand(c, game.CommandRepeat)
}

// HandleScores handles /scores.
func (h *GameHandler) HandleScores(c tele.Context) error {
	return h.handleCommand(c, game.CommandScores)
}

func (h *GameHandler) handleCommand(c tele.Context, cmd game.Command) error {
	chat, sender := c.Chat(), c.Sender()
	if chat == nil || sender == nil {
		return nil
	}
	h.names.remember(sender)
	if chat.Type == tele.ChatPrivate {
		return h.HandleHelp(c)
	}

	ctx, cancel := h.context()
	defer cancel()

	_, err := h.handle(ctx, game.CommandEvent{ChatID: chat.ID, UserID: sender.ID, Command: cmd})
	if err != nil {
		return c.Reply(errorText(h.printer(ctx, chat.ID), err, i18n.KeyErrNoGame))
	}
	return nil
}

// HandleHelp handles /help with the configured point values.
func (h *GameHandler) HandleHelp(c tele.Context) error {
	ctx, cancel := h.context()
	defer cancel()

	p := h.userPrinter(ctx, c)
	cfg := h.engine.Config()
	pts := cfg.Points
	return c.Send(p.Sprintf(i18n.KeyHelp,
		pts.Guess, pts.EveryoneGuessed, pts.Vote,
		pts.NotEveryoneGuessedLeader, pts.EveryoneGuessedLeader,
		cfg.MinPlayers, cfg.MaxPlayers))
}

// userPrinter picks the chat language in groups and the client language in private.
func (h *GameHandler) userPrinter(ctx context.Context, c tele.Context) *message.Printer {
	if chat := c.Chat(); chat != nil && chat.Type != tele.ChatPrivate {
		return h.printer(ctx, chat.ID)
	}
	if sender := c.Sender(); sender != nil {
		return i18n.Printer(sender.LanguageCode)
	}
	return i18n.Printer(i18n.DefaultLanguage.String())
}

// HandleLanguage handles /language by offering the supported languages.
func (h *GameHandler) HandleLanguage(c tele.Context) error {
	chat := c.Chat()
	if chat == nil || chat.Type == tele.ChatPrivate {
		return nil
	}
	ctx, cancel := h.context()
	defer cancel()

	p := h.printer(ctx, chat.ID)
	return c.Send(p.Sprintf(i18n.KeyLanguageChoose), BuildLanguagePanel(h.cfg.Game.MaxButtonsInRow))
}

// HandleCallback routes inline button presses.
func (h *GameHandler) HandleCallback(c tele.Context) error {
	cb := c.Callback()
	chat, sender := c.Chat(), c.Sender()
	if cb == nil || cb.Message == nil || chat == nil || sender == nil {
		return c.Respond()
	}
	h.names.remember(sender)

	ctx, cancel := h.context()
	defer cancel()

	log.Debug().Str("data", cb.Data).Int64("chat_id", chat.ID).Msg("Callback received")

	if namespace, param := DecodeCallback(cb.Data); namespace == CallbackLanguage {
		return h.handleLanguageChoice(ctx, c, chat.ID, param)
	}

	p := h.printer(ctx, chat.ID)
	action, position, ok := ParseButton(cb.Data)
	if !ok {
		return c.Respond(&tele.CallbackResponse{Text: p.Sprintf(i18n.KeyErrOperation)})
	}

	effects, err := game.Dispatch(ctx, h.engine, game.ButtonEvent{
		ChatID:    chat.ID,
		UserID:    sender.ID,
		MessageID: cb.Message.ID,
		Action:    action,
		Position:  position,
	})
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: errorText(p, err, i18n.KeyErrNoGame)})
	}

	respErr := c.Respond(h.callbackResponse(p, sender.ID, effects))
	h.render(ctx, effects)
	return respErr
}

// callbackResponse is the toast shown to the user who pressed the button.
func (h *GameHandler) callbackResponse(p *message.Printer, userID int64, effects []game.Effect) *tele.CallbackResponse {
	for _, eff := range effects {
		switch {
		case eff.Kind == game.EffectVoteAccepted && eff.UserID == userID:
			if eff.Changed {
				return &tele.CallbackResponse{Text: p.Sprintf(i18n.KeyVoteChanged)}
			}
			return &tele.CallbackResponse{Text: p.Sprintf(i18n.KeyVoteSaved)}
		case eff.Kind == game.EffectVotesRevealed:
			if len(eff.Players) == 0 {
				return &tele.CallbackResponse{Text: p.Sprintf(i18n.KeyVotesNone), ShowAlert: true}
			}
			names := strings.Join(h.names.list(h.messenger, eff.ChatID, eff.Players), ", ")
			return &tele.CallbackResponse{Text: p.Sprintf(i18n.KeyVotesRevealed, names), ShowAlert: true}
		}
	}
	return &tele.CallbackResponse{}
}

func (h *GameHandler) handleLanguageChoice(ctx context.Context, c tele.Context, chatID int64, code string) error {
	if err := h.engine.SetLanguage(ctx, chatID, code); err != nil {
		return c.Respond(&tele.CallbackResponse{Text: errorText(h.printer(ctx, chatID), err, i18n.KeyErrOperation)})
	}
	tag := i18n.Match(code)
	text := i18n.Printer(tag.String()).Sprintf(i18n.KeyLanguageSet, i18n.Name(tag))
	if _, err := h.messenger.Edit(c.Callback().Message, text); err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("Failed to edit language message")
	}
	return c.Respond(&tele.CallbackResponse{Text: text})
}

// HandleText handles private replies carrying words and definitions.
func (h *GameHandler) HandleText(c tele.Context) error {
	chat, sender, msg := c.Chat(), c.Sender(), c.Message()
	if chat == nil || sender == nil || msg == nil || chat.Type != tele.ChatPrivate {
		return nil
	}
	if strings.HasPrefix(msg.Text, "/") {
		return nil
	}
	h.names.remember(sender)

	ctx, cancel := h.context()
	defer cancel()

	replyTo := 0
	if msg.ReplyTo != nil {
		replyTo = msg.ReplyTo.ID
	}
	effects, err := h.handle(ctx, game.ReplyEvent{UserID: sender.ID, ReplyToMessageID: replyTo, Text: msg.Text})
	if err != nil {
		return c.Reply(errorText(i18n.Printer(sender.LanguageCode), err, i18n.KeyErrNoPrompt))
	}
	if text := h.replyConfirmation(ctx, sender.ID, effects); text != "" {
		return c.Reply(text)
	}
	return nil
}

func (h *GameHandler) replyConfirmation(ctx context.Context, userID int64, effects []game.Effect) string {
	for _, eff := range effects {
		if eff.UserID != userID {
			continue
		}
		p := h.printer(ctx, eff.ChatID)
		switch eff.Kind {
		case game.EffectWordAccepted:
			return p.Sprintf(i18n.KeyWordSaved, eff.Word)
		case game.EffectDefinitionAccepted:
			if eff.Changed {
				return p.Sprintf(i18n.KeyDefinitionChanged)
			}
			return p.Sprintf(i18n.KeyDefinitionSaved)
		}
	}
	return ""
}

// HandlePollAnswer handles answers to native polls.
func (h *GameHandler) HandlePollAnswer(c tele.Context) error {
	ans := c.PollAnswer()
	if ans == nil || ans.Sender == nil {
		return nil
	}
	h.names.remember(ans.Sender)

	ctx, cancel := h.context()
	defer cancel()

	_, err := h.handle(ctx, game.PollAnswerEvent{PollID: ans.PollID, UserID: ans.Sender.ID, Options: ans.Options})
	if err != nil && !game.IsDomainError(err) {
		log.Error().Err(err).Str("poll_id", ans.PollID).Msg("Failed to record poll answer")
	}
	return nil
}

// advance starts the round after a closed poll. A catch-up may have done it already.
func (h *GameHandler) advance(chatID int64) {
	ctx, cancel := h.context()
	defer cancel()

	effects, err := h.engine.AdvanceRound(ctx, chatID)
	if err != nil {
		if game.IsDomainError(err) {
			log.Debug().Err(err).Int64("chat_id", chatID).Msg("Round already advanced")
			return
		}
		log.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to advance round")
		return
	}
	h.render(ctx, effects)
}
