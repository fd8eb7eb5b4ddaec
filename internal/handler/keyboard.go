// Package handler turns Telegram updates into game events and renders the
// resulting effects back into chat messages.
package handler

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/message"
	tele "gopkg.in/telebot.v3"

	"dictionary-game-bot/internal/game"
	"dictionary-game-bot/internal/i18n"
)

// Callback namespaces.
const (
	CallbackPrepare  = "prepare"
	CallbackPoll     = "poll"
	CallbackLapEnd   = "lapEnd"
	CallbackLanguage = "language"
)

const callbackSeparator = ":"

var prepareActions = map[string]game.ButtonAction{
	"join":     game.ButtonJoin,
	"withdraw": game.ButtonWithdraw,
	"continue": game.ButtonContinue,
}

var lapActions = map[string]game.ButtonAction{
	"continue": game.ButtonLapContinue,
	"end":      game.ButtonLapEnd,
}

// EncodeCallback encodes a namespace and parameter into callback data.
func EncodeCallback(namespace, param string) string {
	return namespace + callbackSeparator + param
}

// DecodeCallback decodes callback data into namespace and parameter.
// Data of buttons built with a telebot unique id starts with "\f".
func DecodeCallback(data string) (namespace, param string) {
	data = strings.TrimPrefix(data, "\f")
	namespace, param, ok := strings.Cut(data, callbackSeparator)
	if !ok {
		return "", ""
	}
	return namespace, param
}

// ParseButton maps game callback data to a button action. ok is false for
// data that is not a game button, including language buttons.
func ParseButton(data string) (action game.ButtonAction, position int, ok bool) {
	namespace, param := DecodeCallback(data)
	switch namespace {
	case CallbackPrepare:
		action, ok = prepareActions[param]
		return action, 0, ok
	case CallbackLapEnd:
		action, ok = lapActions[param]
		return action, 0, ok
	case CallbackPoll:
		pos, err := strconv.Atoi(param)
		if err != nil || pos < 0 {
			return 0, 0, false
		}
		return game.ButtonVote, pos, true
	default:
		return 0, 0, false
	}
}

// BuildJoinPanel builds the join keyboard.
// Layout: [Join] [Withdraw] [Continue]
func BuildJoinPanel(p *message.Printer) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.InlineKeyboard = [][]tele.InlineButton{{
		{Text: p.Sprintf(i18n.KeyButtonJoin), Data: EncodeCallback(CallbackPrepare, "join")},
		{Text: p.Sprintf(i18n.KeyButtonLeave), Data: EncodeCallback(CallbackPrepare, "withdraw")},
		{Text: p.Sprintf(i18n.KeyButtonBegin), Data: EncodeCallback(CallbackPrepare, "continue")},
	}}
	return markup
}

// BuildPollPanel builds one numbered button per definition, at most perRow per row.
func BuildPollPanel(defs []game.Definition, perRow int) *tele.ReplyMarkup {
	buttons := make([]tele.InlineButton, len(defs))
	for i, d := range defs {
		buttons[i] = tele.InlineButton{
			Text: strconv.Itoa(d.Position + 1),
			Data: EncodeCallback(CallbackPoll, strconv.Itoa(d.Position)),
		}
	}
	return &tele.ReplyMarkup{InlineKeyboard: rows(buttons, perRow)}
}

// BuildLapPanel builds the end-of-lap keyboard.
// Layout: [Another lap] [End game]
func BuildLapPanel(p *message.Printer) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.InlineKeyboard = [][]tele.InlineButton{{
		{Text: p.Sprintf(i18n.KeyButtonLapNext), Data: EncodeCallback(CallbackLapEnd, "continue")},
		{Text: p.Sprintf(i18n.KeyButtonLapEnd), Data: EncodeCallback(CallbackLapEnd, "end")},
	}}
	return markup
}

// BuildLanguagePanel lists the supported languages by their own names.
func BuildLanguagePanel(perRow int) *tele.ReplyMarkup {
	tags := i18n.Supported()
	buttons := make([]tele.InlineButton, len(tags))
	for i, tag := range tags {
		buttons[i] = tele.InlineButton{
			Text: i18n.Name(tag),
			Data: EncodeCallback(CallbackLanguage, tag.String()),
		}
	}
	return &tele.ReplyMarkup{InlineKeyboard: rows(buttons, perRow)}
}

func rows(buttons []tele.InlineButton, perRow int) [][]tele.InlineButton {
	if perRow <= 0 {
		perRow = len(buttons)
	}
	var out [][]tele.InlineButton
	for len(buttons) > 0 {
		n := perRow
		if n > len(buttons) {
			n = len(buttons)
		}
		out = append(out, buttons[:n])
		buttons = buttons[n:]
	}
	return out
}

// FormatPollMessage formats the button poll: the question and one numbered line per definition.
func FormatPollMessage(p *message.Printer, word string, defs []game.Definition) string {
	var sb strings.Builder
	sb.WriteString(p.Sprintf(i18n.KeyPollQuestion, word))
	sb.WriteString("\n")
	for _, d := range defs {
		sb.WriteString("\n")
		sb.WriteString(p.Sprintf(i18n.KeyPollOption, d.Position+1, d.Text))
	}
	return sb.String()
}

// maxPollOption is Telegram's limit on native poll option text.
const maxPollOption = 100

// BuildNativePoll builds a platform poll with one option per definition.
func BuildNativePoll(p *message.Printer, word string, defs []game.Definition) *tele.Poll {
	poll := &tele.Poll{
		Type:     tele.PollRegular,
		Question: p.Sprintf(i18n.KeyPollQuestion, word),
	}
	for _, d := range defs {
		poll.AddOptions(truncate(fmt.Sprintf("%d. %s", d.Position+1, d.Text), maxPollOption))
	}
	return poll
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
