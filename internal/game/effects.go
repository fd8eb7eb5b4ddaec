package game

import (
	"time"

	"dictionary-game-bot/internal/model"
)

// EffectKind tells the adapter what happened and what it should render.
type EffectKind int

const (
	EffectJoinOpened EffectKind = iota + 1
	EffectRosterChanged
	EffectRoundStarted
	EffectWordAccepted
	EffectDefinitionAccepted
	EffectPollOpened
	EffectVoteAccepted
	EffectPollClosed
	EffectScoreboard
	EffectNextRoundScheduled
	EffectLapEnded
	EffectGameEnded
	EffectGameStopped
	EffectStatusRepeated
	EffectVotesRevealed
)

var effectNames = map[EffectKind]string{
	EffectJoinOpened:         "join_opened",
	EffectRosterChanged:      "roster_changed",
	EffectRoundStarted:       "round_started",
	EffectWordAccepted:       "word_accepted",
	EffectDefinitionAccepted: "definition_accepted",
	EffectPollOpened:         "poll_opened",
	EffectVoteAccepted:       "vote_accepted",
	EffectPollClosed:         "poll_closed",
	EffectScoreboard:         "scoreboard",
	EffectNextRoundScheduled: "next_round_scheduled",
	EffectLapEnded:           "lap_ended",
	EffectGameEnded:          "game_ended",
	EffectGameStopped:        "game_stopped",
	EffectStatusRepeated:     "status_repeated",
	EffectVotesRevealed:      "votes_revealed",
}

func (k EffectKind) String() string {
	if s, ok := effectNames[k]; ok {
		return s
	}
	return "unknown"
}

// Effect is an outbound notification produced by an engine operation.
// Only the fields relevant to Kind are set.
type Effect struct {
	Kind   EffectKind
	ChatID int64
	Status model.Status

	// UserID is the player the effect is about (joiner, submitter, voter).
	UserID   int64
	LeaderID int64
	Round    int
	Rounds   int
	Lap      int
	Word     string

	Players     []int64
	Missing     []int64
	Definitions []Definition
	// Answer is the poll position of the leader's definition.
	Answer   int
	Position int
	Target   int64
	Changed  bool
	CanBegin bool

	Scores    []ScoreLine
	Standings []Standing
	Votes     map[int64][]int64

	GroupMessageID int
	PollMessageID  int
	JoinMessageID  int
	Delay          time.Duration
}

// Has reports whether effects contains one of the given kind.
func Has(effects []Effect, kind EffectKind) bool {
	for _, e := range effects {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

// Find returns the first effect of the given kind.
func Find(effects []Effect, kind EffectKind) (Effect, bool) {
	for _, e := range effects {
		if e.Kind == kind {
			return e, true
		}
	}
	return Effect{}, false
}
