package game

import (
	"dictionary-game-bot/internal/model"
)

// initRound clears the round-scoped player state and advances to the next
// leader. It returns false when the lap is exhausted, in which case the round
// is reset and the lap counter incremented.
func initRound(g *model.Game) bool {
	for i := range g.Players {
		g.Players[i].Definition = ""
		g.Players[i].Vote = 0
	}
	g.Word = ""
	g.Indexes = nil
	g.GroupMessageID = 0
	g.PollMessageID = 0
	g.PollID = ""

	next := 0
	if g.Round != nil {
		next = *g.Round + 1
	}
	if next >= len(g.Players) {
		g.Round = nil
		g.Lap++
		return false
	}
	g.Round = &next
	return true
}

func numberOfDefinitions(g *model.Game) int {
	n := 0
	for _, p := range g.Players {
		if p.HasDefinition() {
			n++
		}
	}
	return n
}

func numberOfVotes(g *model.Game) int {
	n := 0
	for _, p := range g.Players {
		if p.HasVoted() {
			n++
		}
	}
	return n
}

// pollComplete reports whether every non-leader has voted.
func pollComplete(g *model.Game) bool {
	return g.Status == model.StatusPoll && numberOfVotes(g) >= len(g.Players)-1
}

// missingPlayers lists who still owes an action in the current phase: a
// definition while answering, a vote (leader excluded) while polling.
func missingPlayers(g *model.Game) []int64 {
	leader, _ := g.Leader()
	var missing []int64
	switch g.Status {
	case model.StatusAnswer:
		for _, p := range g.Players {
			if !p.HasDefinition() {
				missing = append(missing, p.UserID)
			}
		}
	case model.StatusPoll:
		for _, p := range g.Players {
			if !p.HasVoted() && p.UserID != leader {
				missing = append(missing, p.UserID)
			}
		}
	}
	return missing
}

// resetGame returns the game to a clean stopped state keeping scores.
func resetGame(g *model.Game) {
	for i := range g.Players {
		g.Players[i].Definition = ""
		g.Players[i].Vote = 0
	}
	g.Status = model.StatusStopped
	g.Round = nil
	g.Word = ""
	g.Indexes = nil
	g.AwaitingLapDecision = false
	g.GroupMessageID = 0
	g.PollMessageID = 0
	g.PollID = ""
	g.LapEndMessageID = 0
}
