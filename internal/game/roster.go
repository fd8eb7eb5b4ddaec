package game

import (
	"fmt"

	"dictionary-game-bot/internal/model"
)

func addPlayer(g *model.Game, userID int64, maxPlayers int) error {
	if g.PlayerIndex(userID) >= 0 {
		return fmt.Errorf("%w: user %d already joined", ErrInvalidOperation, userID)
	}
	if maxPlayers > 0 && len(g.Players) >= maxPlayers {
		return fmt.Errorf("%w: game is full", ErrInvalidOperation)
	}
	g.Players = append(g.Players, model.Player{UserID: userID})
	return nil
}

func removePlayer(g *model.Game, userID int64) bool {
	i := g.PlayerIndex(userID)
	if i < 0 {
		return false
	}
	g.Players = append(g.Players[:i], g.Players[i+1:]...)
	return true
}

func playerIDs(players []model.Player) []int64 {
	ids := make([]int64, len(players))
	for i, p := range players {
		ids[i] = p.UserID
	}
	return ids
}
