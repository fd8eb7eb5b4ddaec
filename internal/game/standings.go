package game

import (
	"sort"

	"dictionary-game-bot/internal/model"
)

// Standing groups the players sharing a score.
// Rank starts at 1; only the first three ranks get a medal.
type Standing struct {
	Rank    int
	Score   int64
	UserIDs []int64
}

// Standings orders the roster by score, highest first, grouping ties.
func Standings(players []model.Player) []Standing {
	sorted := append([]model.Player(nil), players...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	var out []Standing
	for _, p := range sorted {
		if n := len(out); n > 0 && out[n-1].Score == p.Score {
			out[n-1].UserIDs = append(out[n-1].UserIDs, p.UserID)
			continue
		}
		out = append(out, Standing{Rank: len(out) + 1, Score: p.Score, UserIDs: []int64{p.UserID}})
	}
	return out
}
