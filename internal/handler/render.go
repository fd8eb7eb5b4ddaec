package handler

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/message"
	tele "gopkg.in/telebot.v3"

	"dictionary-game-bot/internal/game"
	"dictionary-game-bot/internal/i18n"
	"dictionary-game-bot/internal/model"
)

// render realizes effects as chat messages. Sending failures are logged and
// never undo the game change that produced the effect.
func (h *GameHandler) render(ctx context.Context, effects []game.Effect) {
	roundStarted := game.Has(effects, game.EffectRoundStarted)

	for _, eff := range effects {
		p := h.printer(ctx, eff.ChatID)
		chat := &tele.Chat{ID: eff.ChatID}

		switch eff.Kind {
		case game.EffectJoinOpened:
			msg := h.send(chat, h.joinText(p, eff.ChatID, nil, false), BuildJoinPanel(p))
			h.track(ctx, eff.ChatID, game.TrackedMessage{Kind: game.MessageJoin, MessageID: messageID(msg)})

		case game.EffectRosterChanged:
			if eff.JoinMessageID == 0 {
				continue
			}
			text := h.joinText(p, eff.ChatID, eff.Players, eff.CanBegin)
			if roundStarted {
				h.edit(storedMessage(eff.ChatID, eff.JoinMessageID), text)
				continue
			}
			h.edit(storedMessage(eff.ChatID, eff.JoinMessageID), text, BuildJoinPanel(p))

		case game.EffectRoundStarted:
			leader := h.names.lookup(h.messenger, eff.ChatID, eff.LeaderID)
			msg := h.send(chat, p.Sprintf(i18n.KeyRoundStarted, eff.Round+1, eff.Rounds, eff.Lap+1, leader))
			h.track(ctx, eff.ChatID, game.TrackedMessage{Kind: game.MessageGroup, MessageID: messageID(msg)})
			h.prompt(ctx, p, eff.ChatID, eff.LeaderID, p.Sprintf(i18n.KeyPromptWord))

		case game.EffectWordAccepted:
			msg := h.send(chat, h.answerText(p, eff))
			h.track(ctx, eff.ChatID, game.TrackedMessage{Kind: game.MessageGroup, MessageID: messageID(msg)})
			for _, userID := range eff.Players {
				if userID == eff.LeaderID {
					continue
				}
				h.prompt(ctx, p, eff.ChatID, userID, p.Sprintf(i18n.KeyPromptDefinition, eff.Word))
			}

		case game.EffectDefinitionAccepted:
			if eff.GroupMessageID != 0 {
				h.edit(storedMessage(eff.ChatID, eff.GroupMessageID), h.answerText(p, eff))
			}

		case game.EffectPollOpened:
			h.sendPoll(ctx, p, eff)

		case game.EffectPollClosed:
			if h.cfg.Game.NativePoll && eff.PollMessageID != 0 {
				if _, err := h.messenger.StopPoll(storedMessage(eff.ChatID, eff.PollMessageID)); err != nil {
					log.Warn().Err(err).Int64("chat_id", eff.ChatID).Msg("Failed to stop poll")
				}
			}
			h.send(chat, h.pollResultText(p, eff))

		case game.EffectScoreboard:
			text := h.formatScoreboard(p, eff)
			if len(eff.Scores) == 0 {
				text += h.waitingText(p, eff.ChatID, h.missingPlayers(ctx, eff.ChatID))
			}
			h.send(chat, text)

		case game.EffectNextRoundScheduled:
			chatID := eff.ChatID
			h.send(chat, p.Sprintf(i18n.KeyNextRound, int(eff.Delay.Round(time.Second)/time.Second)))
			h.scheduler.Schedule(chatID, eff.Delay, func() { h.advance(chatID) })

		case game.EffectLapEnded:
			text := p.Sprintf(i18n.KeyLapEnded, eff.Lap) + "\n\n" + h.formatStandings(p, eff.ChatID, eff.Standings)
			msg := h.send(chat, text, BuildLapPanel(p))
			h.track(ctx, eff.ChatID, game.TrackedMessage{Kind: game.MessageLapEnd, MessageID: messageID(msg)})

		case game.EffectGameEnded:
			h.scheduler.Cancel(eff.ChatID)
			h.send(chat, p.Sprintf(i18n.KeyGameEnded)+"\n\n"+h.formatStandings(p, eff.ChatID, eff.Standings))

		case game.EffectGameStopped:
			h.scheduler.Cancel(eff.ChatID)
			text := p.Sprintf(i18n.KeyGameStopped)
			if len(eff.Players) > 0 {
				text += "\n\n" + h.formatStandings(p, eff.ChatID, eff.Standings)
			}
			h.send(chat, text)

		case game.EffectStatusRepeated:
			h.repeatStatus(ctx, p, eff)

		case game.EffectVoteAccepted, game.EffectVotesRevealed:
			// answered to the voter only
		}
	}
}

func (h *GameHandler) repeatStatus(ctx context.Context, p *message.Printer, eff game.Effect) {
	chat := &tele.Chat{ID: eff.ChatID}
	switch eff.Status {
	case model.StatusJoin:
		text := p.Sprintf(i18n.KeyStatusJoin, len(eff.Players)) + "\n\n" + h.joinText(p, eff.ChatID, eff.Players, eff.CanBegin)
		msg := h.send(chat, text, BuildJoinPanel(p))
		h.track(ctx, eff.ChatID, game.TrackedMessage{Kind: game.MessageJoin, MessageID: messageID(msg)})
	case model.StatusQuestion:
		leader := h.names.lookup(h.messenger, eff.ChatID, eff.LeaderID)
		msg := h.send(chat, p.Sprintf(i18n.KeyStatusQuestion, leader))
		h.track(ctx, eff.ChatID, game.TrackedMessage{Kind: game.MessageGroup, MessageID: messageID(msg)})
	case model.StatusAnswer:
		text := p.Sprintf(i18n.KeyStatusAnswer, eff.Word) + h.waitingText(p, eff.ChatID, eff.Missing)
		msg := h.send(chat, text)
		h.track(ctx, eff.ChatID, game.TrackedMessage{Kind: game.MessageGroup, MessageID: messageID(msg)})
	case model.StatusPoll:
		h.sendPoll(ctx, p, eff)
	case model.StatusStopped:
		text := p.Sprintf(i18n.KeyStatusLapEnd, eff.Lap) + "\n\n" + h.formatStandings(p, eff.ChatID, eff.Standings)
		msg := h.send(chat, text, BuildLapPanel(p))
		h.track(ctx, eff.ChatID, game.TrackedMessage{Kind: game.MessageLapEnd, MessageID: messageID(msg)})
	}
}

// sendPoll posts the definitions either as a native poll or as numbered buttons.
func (h *GameHandler) sendPoll(ctx context.Context, p *message.Printer, eff game.Effect) {
	chat := &tele.Chat{ID: eff.ChatID}
	if h.cfg.Game.NativePoll {
		msg := h.send(chat, BuildNativePoll(p, eff.Word, eff.Definitions))
		if msg == nil || msg.Poll == nil {
			return
		}
		h.track(ctx, eff.ChatID, game.TrackedMessage{Kind: game.MessagePoll, MessageID: msg.ID, PollID: msg.Poll.ID})
		return
	}
	text := FormatPollMessage(p, eff.Word, eff.Definitions)
	msg := h.send(chat, text, BuildPollPanel(eff.Definitions, h.cfg.Game.MaxButtonsInRow))
	h.track(ctx, eff.ChatID, game.TrackedMessage{Kind: game.MessagePoll, MessageID: messageID(msg)})
}

func (h *GameHandler) joinText(p *message.Printer, chatID int64, players []int64, canBegin bool) string {
	cfg := h.engine.Config()
	text := p.Sprintf(i18n.KeyJoinOpened, cfg.MinPlayers, cfg.MaxPlayers)
	if len(players) == 0 {
		return text
	}
	names := strings.Join(h.names.list(h.messenger, chatID, players), ", ")
	text += "\n\n" + p.Sprintf(i18n.KeyJoinRoster, len(players), names)
	if canBegin {
		return text + "\n" + p.Sprintf(i18n.KeyJoinCanBegin)
	}
	return text + "\n" + p.Sprintf(i18n.KeyJoinNotYet, cfg.MinPlayers)
}

func (h *GameHandler) answerText(p *message.Printer, eff game.Effect) string {
	return p.Sprintf(i18n.KeyWordAccepted, eff.Word) + h.waitingText(p, eff.ChatID, eff.Missing)
}

func (h *GameHandler) waitingText(p *message.Printer, chatID int64, missing []int64) string {
	if len(missing) == 0 {
		return ""
	}
	names := strings.Join(h.names.list(h.messenger, chatID, missing), ", ")
	return "\n" + p.Sprintf(i18n.KeyWaitingFor, names)
}

// missingPlayers is best effort: a chat without a running phase waits for nobody.
func (h *GameHandler) missingPlayers(ctx context.Context, chatID int64) []int64 {
	ids, err := h.engine.MissingPlayers(ctx, chatID)
	if err != nil {
		log.Debug().Err(err).Int64("chat_id", chatID).Msg("No missing players to show")
		return nil
	}
	return ids
}

func (h *GameHandler) pollResultText(p *message.Printer, eff game.Effect) string {
	leader := h.names.lookup(h.messenger, eff.ChatID, eff.LeaderID)
	lines := []string{p.Sprintf(i18n.KeyPollClosed, eff.Word, eff.Answer+1, leader), ""}
	for _, d := range eff.Definitions {
		author := h.names.lookup(h.messenger, eff.ChatID, d.UserID)
		voters := p.Sprintf(i18n.KeyNobody)
		if ids := eff.Votes[d.UserID]; len(ids) > 0 {
			voters = strings.Join(h.names.list(h.messenger, eff.ChatID, ids), ", ")
		}
		lines = append(lines, p.Sprintf(i18n.KeyPollResultLine, d.Position+1, author, voters))
	}
	return strings.Join(lines, "\n")
}

// prompt asks a player privately for a reply and registers the prompt so the
// reply finds its way back to chatID. Users who never opened a private chat
// with the bot cannot be reached; the group is told instead.
func (h *GameHandler) prompt(ctx context.Context, p *message.Printer, chatID, userID int64, text string) {
	msg, err := h.messenger.Send(&tele.User{ID: userID}, text, &tele.ReplyMarkup{ForceReply: true})
	if err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Int64("user_id", userID).Msg("Failed to prompt player")
		name := h.names.lookup(h.messenger, chatID, userID)
		h.send(&tele.Chat{ID: chatID}, p.Sprintf(i18n.KeyErrPrivateBlocked, name))
		return
	}
	h.track(ctx, chatID, game.TrackedMessage{Kind: game.MessagePrompt, UserID: userID, MessageID: messageID(msg)})
}

func (h *GameHandler) send(to tele.Recipient, what interface{}, opts ...interface{}) *tele.Message {
	msg, err := h.messenger.Send(to, what, opts...)
	if err != nil {
		log.Error().Err(err).Str("to", to.Recipient()).Msg("Failed to send message")
		return nil
	}
	return msg
}

func (h *GameHandler) edit(msg tele.Editable, what interface{}, opts ...interface{}) {
	if _, err := h.messenger.Edit(msg, what, opts...); err != nil {
		log.Warn().Err(err).Msg("Failed to edit message")
	}
}

func (h *GameHandler) track(ctx context.Context, chatID int64, t game.TrackedMessage) {
	if t.MessageID == 0 {
		return
	}
	if err := h.engine.TrackMessage(ctx, chatID, t); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Int("message_id", t.MessageID).Msg("Failed to track message")
	}
}

func messageID(msg *tele.Message) int {
	if msg == nil {
		return 0
	}
	return msg.ID
}
