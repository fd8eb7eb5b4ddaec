package game

import (
	"context"
	"errors"
	"fmt"

	"dictionary-game-bot/internal/model"
)

// Event is an inbound chat event. The set of implementations is closed.
type Event interface {
	event()
}

// Command is a group chat command.
type Command int

const (
	CommandStart Command = iota + 1
	CommandStop
	CommandRepeat
	CommandScores
)

// CommandEvent is a command issued in a group chat.
type CommandEvent struct {
	ChatID  int64
	UserID  int64
	Command Command
}

// ButtonAction is the meaning of an inline button.
type ButtonAction int

const (
	ButtonJoin ButtonAction = iota + 1
	ButtonWithdraw
	ButtonContinue
	ButtonVote
	ButtonLapContinue
	ButtonLapEnd
)

// ButtonEvent is a press on an inline button attached to MessageID.
type ButtonEvent struct {
	ChatID    int64
	UserID    int64
	MessageID int
	Action    ButtonAction
	// Position is the poll position for ButtonVote.
	Position int
}

// ReplyEvent is a private message, optionally quoting one of our prompts.
type ReplyEvent struct {
	UserID           int64
	ReplyToMessageID int
	Text             string
}

// PollAnswerEvent is an answer to a native poll.
type PollAnswerEvent struct {
	PollID  string
	UserID  int64
	Options []int
}

func (CommandEvent) event()    {}
func (ButtonEvent) event()     {}
func (ReplyEvent) event()      {}
func (PollAnswerEvent) event() {}

// Dispatch maps an event to its engine operation. Before a group event is
// handled, a round left finished by a lost timer is advanced first so the
// game never depends on the delay firing. /stop skips the catch-up: a round
// started only to be stopped would prompt players for nothing.
func Dispatch(ctx context.Context, e *Engine, ev Event) ([]Effect, error) {
	switch ev := ev.(type) {
	case CommandEvent:
		return withCatchUp(ctx, e, ev.ChatID, ev.Command != CommandStop, func() ([]Effect, error) {
			return dispatchCommand(ctx, e, ev)
		})
	case ButtonEvent:
		// a vote on the closed poll is answered from the archive after the catch-up
		return withCatchUp(ctx, e, ev.ChatID, true, func() ([]Effect, error) {
			return dispatchButton(ctx, e, ev)
		})
	case ReplyEvent:
		return e.ResolveReply(ctx, ev.UserID, ev.ReplyToMessageID, ev.Text)
	case PollAnswerEvent:
		return e.ResolvePollAnswer(ctx, ev.PollID, ev.UserID, ev.Options)
	default:
		return nil, fmt.Errorf("%w: unknown event %T", ErrInvalidOperation, ev)
	}
}

func withCatchUp(ctx context.Context, e *Engine, chatID int64, enabled bool, fn func() ([]Effect, error)) ([]Effect, error) {
	var effects []Effect
	if enabled {
		pending, err := e.RoundPending(ctx, chatID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		if pending {
			advanced, err := e.AdvanceRound(ctx, chatID)
			if err != nil && !errors.Is(err, ErrInvalidState) {
				return nil, err
			}
			effects = append(effects, advanced...)
		}
	}

	more, err := fn()
	if err != nil {
		if len(effects) > 0 {
			// the catch-up already changed the game; report it and drop the stale event
			return effects, nil
		}
		return nil, err
	}
	return append(effects, more...), nil
}

func dispatchCommand(ctx context.Context, e *Engine, ev CommandEvent) ([]Effect, error) {
	switch ev.Command {
	case CommandStart:
		return e.StartGame(ctx, ev.ChatID)
	case CommandStop:
		return e.Stop(ctx, ev.ChatID)
	case CommandRepeat:
		return e.Repeat(ctx, ev.ChatID)
	case CommandScores:
		standings, err := e.Scores(ctx, ev.ChatID)
		if err != nil {
			return nil, err
		}
		return []Effect{{Kind: EffectScoreboard, ChatID: ev.ChatID, Standings: standings}}, nil
	default:
		return nil, fmt.Errorf("%w: unknown command %d", ErrInvalidOperation, ev.Command)
	}
}

func dispatchButton(ctx context.Context, e *Engine, ev ButtonEvent) ([]Effect, error) {
	g, err := e.Snapshot(ctx, ev.ChatID)
	if err != nil {
		return nil, err
	}

	switch ev.Action {
	case ButtonJoin, ButtonWithdraw, ButtonContinue:
		if g.Status != model.StatusJoin || ev.MessageID != g.JoinMessageID {
			return nil, fmt.Errorf("%w: join keyboard is no longer active", ErrInvalidState)
		}
		switch ev.Action {
		case ButtonJoin:
			return e.AddPlayer(ctx, ev.ChatID, ev.UserID)
		case ButtonWithdraw:
			return e.RemovePlayer(ctx, ev.ChatID, ev.UserID)
		default:
			return e.BeginFirstRound(ctx, ev.ChatID, ev.UserID)
		}

	case ButtonVote:
		if g.Status == model.StatusPoll && ev.MessageID == g.PollMessageID && !pollComplete(g) {
			return e.CastVote(ctx, ev.ChatID, ev.UserID, ev.Position)
		}
		return revealVotes(ctx, e, ev)

	case ButtonLapContinue, ButtonLapEnd:
		if !g.AwaitingLapDecision || ev.MessageID != g.LapEndMessageID {
			return nil, fmt.Errorf("%w: lap keyboard is no longer active", ErrInvalidState)
		}
		if g.PlayerIndex(ev.UserID) < 0 {
			return nil, fmt.Errorf("%w: only players decide", ErrInvalidOperation)
		}
		return e.ResolveLapEnd(ctx, ev.ChatID, ev.Action == ButtonLapContinue)

	default:
		return nil, fmt.Errorf("%w: unknown button %d", ErrInvalidOperation, ev.Action)
	}
}

func revealVotes(ctx context.Context, e *Engine, ev ButtonEvent) ([]Effect, error) {
	r, err := e.RoundVotes(ctx, ev.ChatID, ev.MessageID)
	if err != nil {
		return nil, err
	}
	voters, ok := r.VotersFor(ev.Position)
	if !ok {
		return nil, fmt.Errorf("%w: no definition at position %d", ErrInvalidOperation, ev.Position)
	}
	return []Effect{{
		Kind:          EffectVotesRevealed,
		ChatID:        ev.ChatID,
		UserID:        ev.UserID,
		LeaderID:      r.LeaderID,
		Word:          r.Word,
		Position:      ev.Position,
		Target:        r.Order[ev.Position],
		Players:       voters,
		PollMessageID: ev.MessageID,
	}}, nil
}
