package game

import (
	"math/rand"

	"dictionary-game-bot/internal/model"
)

// Shuffler is the randomness source for the poll order.
// *rand.Rand satisfies it.
type Shuffler interface {
	Intn(n int) int
}

type globalRand struct{}

func (globalRand) Intn(n int) int { return rand.Intn(n) }

// Definition is one poll option.
type Definition struct {
	Position int
	UserID   int64
	Text     string
}

// shuffleDefinitions stores a uniformly random permutation of the roster
// indexes in g.Indexes and returns the poll position of the leader's definition.
func shuffleDefinitions(g *model.Game, rnd Shuffler) int {
	idx := make([]int, len(g.Players))
	for i := range idx {
		idx[i] = i
	}
	for i := len(idx) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		idx[i], idx[j] = idx[j], idx[i]
	}
	g.Indexes = idx

	leaderPos := -1
	if g.Round != nil {
		for pos, pi := range idx {
			if pi == *g.Round {
				leaderPos = pos
				break
			}
		}
	}
	return leaderPos
}

// pollDefinitions returns the definitions in poll order.
func pollDefinitions(g *model.Game) []Definition {
	defs := make([]Definition, 0, len(g.Indexes))
	for pos, pi := range g.Indexes {
		if pi < 0 || pi >= len(g.Players) {
			continue
		}
		p := g.Players[pi]
		defs = append(defs, Definition{Position: pos, UserID: p.UserID, Text: p.Definition})
	}
	return defs
}

func leaderPosition(g *model.Game) int {
	if g.Round == nil {
		return -1
	}
	for pos, pi := range g.Indexes {
		if pi == *g.Round {
			return pos
		}
	}
	return -1
}
