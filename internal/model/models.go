// Package model defines the data models for the dictionary game bot.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Status is the phase a chat's game is in.
type Status string

const (
	StatusStopped  Status = "stopped"
	StatusJoin     Status = "join"
	StatusQuestion Status = "question"
	StatusAnswer   Status = "answer"
	StatusPoll     Status = "poll"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusStopped, StatusJoin, StatusQuestion, StatusAnswer, StatusPoll:
		return true
	}
	return false
}

// Player is a roster entry. Definition is empty until submitted and Vote is 0
// until cast (Telegram user ids are always positive).
type Player struct {
	UserID     int64  `json:"user_id"`
	Score      int64  `json:"score"`
	Definition string `json:"definition,omitempty"`
	Vote       int64  `json:"vote,omitempty"`
}

// HasDefinition reports whether the player submitted a definition this round.
func (p Player) HasDefinition() bool {
	return p.Definition != ""
}

// HasVoted reports whether the player cast a vote this round.
func (p Player) HasVoted() bool {
	return p.Vote != 0
}

// Game is the persisted per-chat game record.
// Round is nil when no round is active within the current lap.
type Game struct {
	ChatID              int64     `db:"chat_id"`
	Status              Status    `db:"status"`
	Players             []Player  `db:"players"`
	Round               *int      `db:"round"`
	Lap                 int       `db:"lap"`
	Word                string    `db:"word"`
	Indexes             []int     `db:"indexes"`
	GroupMessageID      int       `db:"group_message_id"`
	PollMessageID       int       `db:"poll_message_id"`
	PollID              string    `db:"poll_id"`
	JoinMessageID       int       `db:"join_message_id"`
	LapEndMessageID     int       `db:"lap_end_message_id"`
	AwaitingLapDecision bool      `db:"awaiting_lap_decision"`
	Version             int64     `db:"version"`
	UpdatedAt           time.Time `db:"updated_at"`
}

// Clone returns a deep copy of the game so callers can mutate it freely.
func (g *Game) Clone() *Game {
	c := *g
	if g.Players != nil {
		c.Players = append([]Player(nil), g.Players...)
	}
	if g.Indexes != nil {
		c.Indexes = append([]int(nil), g.Indexes...)
	}
	if g.Round != nil {
		r := *g.Round
		c.Round = &r
	}
	return &c
}

// PlayerIndex returns the roster position of userID or -1.
func (g *Game) PlayerIndex(userID int64) int {
	for i, p := range g.Players {
		if p.UserID == userID {
			return i
		}
	}
	return -1
}

// Leader returns the user id of the current round's leader.
func (g *Game) Leader() (int64, bool) {
	if g.Round == nil || *g.Round < 0 || *g.Round >= len(g.Players) {
		return 0, false
	}
	return g.Players[*g.Round].UserID, true
}

// MessageInteraction links a private prompt sent to a user with the group
// chat and group message it belongs to.
type MessageInteraction struct {
	UserID         int64     `db:"user_id"`
	MessageID      int       `db:"message_id"`
	ChatID         int64     `db:"chat_id"`
	GroupMessageID int       `db:"group_message_id"`
	CreatedAt      time.Time `db:"created_at"`
}

// PollInteraction links a native Telegram poll to its group chat.
type PollInteraction struct {
	PollID    string    `db:"poll_id"`
	ChatID    int64     `db:"chat_id"`
	MessageID int       `db:"message_id"`
	CreatedAt time.Time `db:"created_at"`
}

// RoundRecord is the archived outcome of a completed round.
// Order holds the authors in poll order and Votes maps an author to the voters
// who picked their definition.
type RoundRecord struct {
	ID            uuid.UUID         `db:"id"`
	ChatID        int64             `db:"chat_id"`
	PollMessageID int               `db:"poll_message_id"`
	Lap           int               `db:"lap"`
	Round         int               `db:"round"`
	LeaderID      int64             `db:"leader_id"`
	Word          string            `db:"word"`
	Order         []int64           `db:"author_order"`
	Votes         map[int64][]int64 `db:"votes"`
	CreatedAt     time.Time         `db:"created_at"`
}

// VotersFor returns the voters who picked the definition at the given poll position.
func (r *RoundRecord) VotersFor(position int) ([]int64, bool) {
	if position < 0 || position >= len(r.Order) {
		return nil, false
	}
	return r.Votes[r.Order[position]], true
}

// Settings holds per-chat preferences.
type Settings struct {
	ChatID    int64     `db:"chat_id"`
	Language  string    `db:"language"`
	UpdatedAt time.Time `db:"updated_at"`
}
