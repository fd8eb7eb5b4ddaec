package game

import (
	"fmt"

	"dictionary-game-bot/internal/model"
)

// addVote records voterID's choice of the definition at poll position pos.
// It returns the author of that definition and whether a previous vote was replaced.
func addVote(g *model.Game, voterID int64, pos int) (int64, bool, error) {
	vi := g.PlayerIndex(voterID)
	if vi < 0 {
		return 0, false, fmt.Errorf("%w: user %d is not playing", ErrInvalidOperation, voterID)
	}
	if leader, _ := g.Leader(); leader == voterID {
		return 0, false, fmt.Errorf("%w: the leader cannot vote", ErrInvalidOperation)
	}
	if pos < 0 || pos >= len(g.Indexes) {
		return 0, false, fmt.Errorf("%w: no definition at position %d", ErrInvalidOperation, pos)
	}
	ti := g.Indexes[pos]
	if ti < 0 || ti >= len(g.Players) {
		return 0, false, fmt.Errorf("%w: no definition at position %d", ErrInvalidOperation, pos)
	}
	target := g.Players[ti].UserID
	if target == voterID {
		return 0, false, fmt.Errorf("%w: cannot vote for your own definition", ErrInvalidOperation)
	}

	changed := g.Players[vi].HasVoted()
	g.Players[vi].Vote = target
	return target, changed, nil
}

// votesByTarget maps each author to the voters that picked their definition.
func votesByTarget(players []model.Player) map[int64][]int64 {
	votes := make(map[int64][]int64)
	for _, p := range players {
		if p.HasVoted() {
			votes[p.Vote] = append(votes[p.Vote], p.UserID)
		}
	}
	return votes
}
