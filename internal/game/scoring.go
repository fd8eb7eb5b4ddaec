package game

import "dictionary-game-bot/internal/model"

// Points are the configurable payouts of a round.
type Points struct {
	Vote                     int64
	Guess                    int64
	EveryoneGuessed          int64
	NotEveryoneGuessedLeader int64
	EveryoneGuessedLeader    int64
}

// DefaultPoints returns the standard payout table.
func DefaultPoints() Points {
	return Points{
		Vote:                     1,
		Guess:                    3,
		EveryoneGuessed:          2,
		NotEveryoneGuessedLeader: 3,
		EveryoneGuessedLeader:    0,
	}
}

// ScoreRound computes the points each player earns for a finished round.
// Every player of the roster appears in the result, possibly with 0.
func ScoreRound(players []model.Player, leaderID int64, pts Points) map[int64]int64 {
	out := make(map[int64]int64, len(players))
	for _, p := range players {
		out[p.UserID] = 0
	}

	everyoneGuessed := true
	for _, p := range players {
		if p.UserID != leaderID && p.Vote != leaderID {
			everyoneGuessed = false
			break
		}
	}

	if everyoneGuessed {
		out[leaderID] += pts.EveryoneGuessedLeader
	} else {
		out[leaderID] += pts.NotEveryoneGuessedLeader
	}

	for _, p := range players {
		if p.UserID == leaderID || !p.HasVoted() {
			continue
		}
		if p.Vote == leaderID {
			if everyoneGuessed {
				out[p.UserID] += pts.EveryoneGuessed
			} else {
				out[p.UserID] += pts.Guess
			}
			continue
		}
		if p.Vote != p.UserID {
			if _, ok := out[p.Vote]; ok {
				out[p.Vote] += pts.Vote
			}
		}
	}
	return out
}

// ScoreLine is one player's score change for a round.
type ScoreLine struct {
	UserID int64
	Before int64
	Gained int64
	After  int64
}

// applyScores adds the round points to the roster and returns the lines in roster order.
func applyScores(g *model.Game, points map[int64]int64) []ScoreLine {
	lines := make([]ScoreLine, 0, len(g.Players))
	for i := range g.Players {
		p := &g.Players[i]
		gained := points[p.UserID]
		lines = append(lines, ScoreLine{UserID: p.UserID, Before: p.Score, Gained: gained, After: p.Score + gained})
		p.Score += gained
	}
	return lines
}
