package handler

import (
	"fmt"
	"strings"

	"golang.org/x/text/message"

	"dictionary-game-bot/internal/game"
	"dictionary-game-bot/internal/i18n"
)

var medals = []string{"🥇", "🥈", "🥉"}

// formatStandings renders one line per score group. Tied players share a rank and its medal.
func (h *GameHandler) formatStandings(p *message.Printer, chatID int64, standings []game.Standing) string {
	if len(standings) == 0 {
		return p.Sprintf(i18n.KeyScoresEmpty)
	}

	lines := make([]string, 0, len(standings))
	for _, s := range standings {
		rank := fmt.Sprintf("%d.", s.Rank)
		if s.Rank >= 1 && s.Rank <= len(medals) {
			rank = medals[s.Rank-1]
		}
		names := strings.Join(h.names.list(h.messenger, chatID, s.UserIDs), ", ")
		lines = append(lines, p.Sprintf(i18n.KeyStandingLine, rank, names, s.Score))
	}
	return strings.Join(lines, "\n")
}

// formatScoreLines renders the points gained in the round that just closed.
func (h *GameHandler) formatScoreLines(p *message.Printer, chatID int64, lines []game.ScoreLine) string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		name := h.names.lookup(h.messenger, chatID, l.UserID)
		out = append(out, p.Sprintf(i18n.KeyScoresLine, name, l.After, l.Gained))
	}
	return strings.Join(out, "\n")
}

func (h *GameHandler) formatScoreboard(p *message.Printer, eff game.Effect) string {
	msg := p.Sprintf(i18n.KeyScoresTitle) + "\n"
	msg += "━━━━━━━━━━━━━━━\n"
	if len(eff.Scores) > 0 {
		return msg + h.formatScoreLines(p, eff.ChatID, eff.Scores)
	}
	return msg + h.formatStandings(p, eff.ChatID, eff.Standings)
}
