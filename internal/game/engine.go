// Package game implements the dictionary game: a leader picks a word and its
// true definition, the other players invent fake ones, then everybody votes
// for the definition they believe is real.
//
// The Engine is event driven. Every mutating operation takes the chat lock,
// loads the Game, mutates a copy in memory, saves it with a version check and
// returns the Effects the chat adapter has to render.
package game

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"dictionary-game-bot/internal/i18n"
	"dictionary-game-bot/internal/model"
	"dictionary-game-bot/internal/pkg/lock"
	"dictionary-game-bot/internal/repository"
)

const maxSaveAttempts = 3

// Engine runs the games of every chat.
type Engine struct {
	cfg          Config
	games        GameRepository
	interactions InteractionRegistry
	archive      RoundArchive
	settings     SettingsRepository
	locks        *lock.KeyLock
	rnd          Shuffler
	now          func() time.Time
}

// Option customizes an Engine.
type Option func(*Engine)

// WithShuffler sets the randomness used for the poll order.
func WithShuffler(s Shuffler) Option {
	return func(e *Engine) { e.rnd = s }
}

// NewEngine creates a new Engine instance.
func NewEngine(cfg Config, games GameRepository, interactions InteractionRegistry, archive RoundArchive, settings SettingsRepository, opts ...Option) *Engine {
	e := &Engine{
		cfg:          cfg,
		games:        games,
		interactions: interactions,
		archive:      archive,
		settings:     settings,
		locks:        lock.NewKeyLock(),
		rnd:          globalRand{},
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

func (e *Engine) load(ctx context.Context, chatID int64) (*model.Game, error) {
	g, err := e.games.Get(ctx, chatID)
	if err != nil {
		if errors.Is(err, repository.ErrGameNotFound) {
			return nil, fmt.Errorf("%w: no game in chat %d", ErrNotFound, chatID)
		}
		return nil, fmt.Errorf("failed to load game: %w", err)
	}
	if !g.Status.Valid() {
		return nil, fmt.Errorf("failed to load game: chat %d has unknown status %q", chatID, g.Status)
	}
	return g, nil
}

// mutate runs fn on a fresh copy of the chat's game under the chat lock and
// saves the result. fn is re-run on a version conflict. With allowMissing a
// chat without a record is handed to fn as a stopped game.
func (e *Engine) mutate(ctx context.Context, chatID int64, allowMissing bool, fn func(g *model.Game) ([]Effect, error)) (*model.Game, []Effect, error) {
	var (
		saved   *model.Game
		effects []Effect
	)
	err := e.locks.WithLockContext(ctx, chatID, func() error {
		var err error
		saved, effects, err = e.save(ctx, chatID, allowMissing, fn)
		return err
	})
	if errors.Is(err, lock.ErrLockTimeout) {
		return nil, nil, fmt.Errorf("failed to lock chat %d: %w", chatID, err)
	}
	if err != nil {
		return nil, nil, err
	}
	return saved, effects, nil
}

func (e *Engine) save(ctx context.Context, chatID int64, allowMissing bool, fn func(g *model.Game) ([]Effect, error)) (*model.Game, []Effect, error) {
	for attempt := 1; ; attempt++ {
		g, err := e.load(ctx, chatID)
		if err != nil {
			if !allowMissing || !errors.Is(err, ErrNotFound) {
				return nil, nil, err
			}
			g = &model.Game{ChatID: chatID, Status: model.StatusStopped}
		}

		effects, err := fn(g)
		if err != nil {
			return nil, nil, err
		}

		err = e.games.Save(ctx, g)
		if err == nil {
			return g, effects, nil
		}
		if errors.Is(err, repository.ErrVersionConflict) && attempt < maxSaveAttempts {
			log.Debug().Int64("chat_id", chatID).Int("attempt", attempt).Msg("Game version conflict, retrying")
			continue
		}
		return nil, nil, fmt.Errorf("failed to save game: %w", err)
	}
}

func stateError(g *model.Game, action string) error {
	return fmt.Errorf("%w: cannot %s while game is %s", ErrInvalidState, action, g.Status)
}

func (e *Engine) cleanup(ctx context.Context, chatID int64) {
	if err := e.interactions.CleanMessageInteractions(ctx, chatID); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to clean interactions")
	}
}

// StartGame opens a new game in Join. Any previous roster and scores are dropped.
func (e *Engine) StartGame(ctx context.Context, chatID int64) ([]Effect, error) {
	_, effects, err := e.mutate(ctx, chatID, true, func(g *model.Game) ([]Effect, error) {
		if g.Status != model.StatusStopped && !g.AwaitingLapDecision {
			return nil, fmt.Errorf("%w: a game is already running", ErrInvalidState)
		}
		*g = model.Game{ChatID: chatID, Status: model.StatusJoin, Version: g.Version}
		return []Effect{{Kind: EffectJoinOpened, ChatID: chatID, Status: g.Status}}, nil
	})
	if err != nil {
		return nil, err
	}
	e.cleanup(ctx, chatID)

	log.Info().Int64("chat_id", chatID).Msg("Game started")
	return effects, nil
}

// AddPlayer joins userID to the roster. Filling the roster begins the first round.
func (e *Engine) AddPlayer(ctx context.Context, chatID, userID int64) ([]Effect, error) {
	_, effects, err := e.mutate(ctx, chatID, false, func(g *model.Game) ([]Effect, error) {
		if g.Status != model.StatusJoin {
			return nil, stateError(g, "join")
		}
		if err := addPlayer(g, userID, e.cfg.MaxPlayers); err != nil {
			return nil, err
		}
		effects := []Effect{e.rosterEffect(g, userID)}
		if e.cfg.MaxPlayers > 0 && len(g.Players) >= e.cfg.MaxPlayers {
			effects = append(effects, e.nextRound(g)...)
		}
		return effects, nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug().Int64("chat_id", chatID).Int64("user_id", userID).Msg("Player joined")
	return effects, nil
}

// RemovePlayer withdraws userID from the roster.
func (e *Engine) RemovePlayer(ctx context.Context, chatID, userID int64) ([]Effect, error) {
	_, effects, err := e.mutate(ctx, chatID, false, func(g *model.Game) ([]Effect, error) {
		if g.Status != model.StatusJoin {
			return nil, stateError(g, "withdraw")
		}
		if !removePlayer(g, userID) {
			return nil, fmt.Errorf("%w: user %d has not joined", ErrInvalidOperation, userID)
		}
		return []Effect{e.rosterEffect(g, userID)}, nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug().Int64("chat_id", chatID).Int64("user_id", userID).Msg("Player withdrew")
	return effects, nil
}

func (e *Engine) rosterEffect(g *model.Game, userID int64) Effect {
	return Effect{
		Kind:          EffectRosterChanged,
		ChatID:        g.ChatID,
		Status:        g.Status,
		UserID:        userID,
		Players:       playerIDs(g.Players),
		CanBegin:      e.canBegin(g) == nil,
		JoinMessageID: g.JoinMessageID,
	}
}

func (e *Engine) canBegin(g *model.Game) error {
	if len(g.Players) == 0 {
		return fmt.Errorf("%w: nobody joined", ErrInvalidOperation)
	}
	if e.cfg.DevMode {
		if e.cfg.DeveloperUserID != 0 && g.PlayerIndex(e.cfg.DeveloperUserID) < 0 {
			return fmt.Errorf("%w: developer must be playing", ErrInvalidOperation)
		}
		return nil
	}
	if len(g.Players) < e.cfg.MinPlayers {
		return fmt.Errorf("%w: need at least %d players", ErrInvalidOperation, e.cfg.MinPlayers)
	}
	return nil
}

// BeginFirstRound closes the roster and starts the first round.
// The requester must be one of the joined players.
func (e *Engine) BeginFirstRound(ctx context.Context, chatID, requesterID int64) ([]Effect, error) {
	_, effects, err := e.mutate(ctx, chatID, false, func(g *model.Game) ([]Effect, error) {
		if g.Status != model.StatusJoin {
			return nil, stateError(g, "begin")
		}
		if g.PlayerIndex(requesterID) < 0 {
			return nil, fmt.Errorf("%w: only players can begin the game", ErrInvalidOperation)
		}
		if err := e.canBegin(g); err != nil {
			return nil, err
		}
		return e.nextRound(g), nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Int64("chat_id", chatID).Msg("First round started")
	return effects, nil
}

// nextRound moves to the next leader or, when the lap is over, to the lap decision point.
func (e *Engine) nextRound(g *model.Game) []Effect {
	if initRound(g) {
		g.Status = model.StatusQuestion
		g.AwaitingLapDecision = false
		leader, _ := g.Leader()
		return []Effect{{
			Kind:     EffectRoundStarted,
			ChatID:   g.ChatID,
			Status:   g.Status,
			LeaderID: leader,
			Round:    *g.Round,
			Rounds:   len(g.Players),
			Lap:      g.Lap,
			Players:  playerIDs(g.Players),
		}}
	}

	g.Status = model.StatusStopped
	g.AwaitingLapDecision = true
	return []Effect{{
		Kind:      EffectLapEnded,
		ChatID:    g.ChatID,
		Status:    g.Status,
		Lap:       g.Lap,
		Players:   playerIDs(g.Players),
		Standings: Standings(g.Players),
	}}
}

// SplitWordReply reads the leader's reply: the first line is the word, the
// rest is its true definition.
func SplitWordReply(text string) (word, definition string) {
	text = strings.TrimSpace(text)
	word, definition, _ = strings.Cut(text, "\n")
	return strings.TrimSpace(word), strings.TrimSpace(definition)
}

// SubmitWord records the leader's secret word and its true definition.
func (e *Engine) SubmitWord(ctx context.Context, chatID, userID int64, word, definition string) ([]Effect, error) {
	word = strings.TrimSpace(word)
	definition = strings.TrimSpace(definition)

	var record *model.RoundRecord
	_, effects, err := e.mutate(ctx, chatID, false, func(g *model.Game) ([]Effect, error) {
		record = nil
		if g.Status != model.StatusQuestion {
			return nil, stateError(g, "set the word")
		}
		leader, _ := g.Leader()
		if leader != userID {
			return nil, fmt.Errorf("%w: only the leader sets the word", ErrInvalidOperation)
		}
		if word == "" || definition == "" {
			return nil, fmt.Errorf("%w: word and definition are both required", ErrInvalidOperation)
		}

		g.Word = word
		g.Players[*g.Round].Definition = definition
		g.Status = model.StatusAnswer

		effects := []Effect{{
			Kind:           EffectWordAccepted,
			ChatID:         chatID,
			Status:         g.Status,
			UserID:         userID,
			LeaderID:       leader,
			Word:           word,
			Round:          *g.Round,
			Rounds:         len(g.Players),
			Players:        playerIDs(g.Players),
			Missing:        missingPlayers(g),
			GroupMessageID: g.GroupMessageID,
		}}
		more, rec := e.afterDefinition(g)
		record = rec
		return append(effects, more...), nil
	})
	if err != nil {
		return nil, err
	}
	e.archiveRound(ctx, record)

	log.Debug().Int64("chat_id", chatID).Int64("leader_id", userID).Msg("Word accepted")
	return effects, nil
}

// SubmitDefinition records (or replaces) a player's fake definition.
func (e *Engine) SubmitDefinition(ctx context.Context, chatID, userID int64, text string) ([]Effect, error) {
	text = strings.TrimSpace(text)

	var record *model.RoundRecord
	_, effects, err := e.mutate(ctx, chatID, false, func(g *model.Game) ([]Effect, error) {
		record = nil
		if g.Status != model.StatusAnswer {
			return nil, stateError(g, "submit a definition")
		}
		i := g.PlayerIndex(userID)
		if i < 0 {
			return nil, fmt.Errorf("%w: user %d is not playing", ErrInvalidOperation, userID)
		}
		if leader, _ := g.Leader(); leader == userID {
			return nil, fmt.Errorf("%w: the leader already gave the definition", ErrInvalidOperation)
		}
		if text == "" {
			return nil, fmt.Errorf("%w: empty definition", ErrInvalidOperation)
		}

		changed := g.Players[i].HasDefinition()
		g.Players[i].Definition = text

		leader, _ := g.Leader()
		effects := []Effect{{
			Kind:           EffectDefinitionAccepted,
			ChatID:         chatID,
			Status:         g.Status,
			UserID:         userID,
			LeaderID:       leader,
			Word:           g.Word,
			Changed:        changed,
			Missing:        missingPlayers(g),
			GroupMessageID: g.GroupMessageID,
		}}
		more, rec := e.afterDefinition(g)
		record = rec
		return append(effects, more...), nil
	})
	if err != nil {
		return nil, err
	}
	e.archiveRound(ctx, record)

	log.Debug().Int64("chat_id", chatID).Int64("user_id", userID).Msg("Definition accepted")
	return effects, nil
}

// afterDefinition opens the poll once every player has a definition. A poll
// nobody can vote in is closed right away.
func (e *Engine) afterDefinition(g *model.Game) ([]Effect, *model.RoundRecord) {
	if g.Status != model.StatusAnswer || numberOfDefinitions(g) < len(g.Players) {
		return nil, nil
	}

	answer := shuffleDefinitions(g, e.rnd)
	g.Status = model.StatusPoll
	leader, _ := g.Leader()
	effects := []Effect{{
		Kind:           EffectPollOpened,
		ChatID:         g.ChatID,
		Status:         g.Status,
		LeaderID:       leader,
		Word:           g.Word,
		Round:          *g.Round,
		Rounds:         len(g.Players),
		Definitions:    pollDefinitions(g),
		Answer:         answer,
		Missing:        missingPlayers(g),
		GroupMessageID: g.GroupMessageID,
	}}
	if !pollComplete(g) {
		return effects, nil
	}
	record, closing := e.closePoll(g)
	return append(effects, closing...), record
}

// CastVote records userID's vote for the definition at poll position pos.
// The last missing vote closes the poll and scores the round.
func (e *Engine) CastVote(ctx context.Context, chatID, userID int64, pos int) ([]Effect, error) {
	var record *model.RoundRecord
	_, effects, err := e.mutate(ctx, chatID, false, func(g *model.Game) ([]Effect, error) {
		record = nil
		if g.Status != model.StatusPoll {
			return nil, stateError(g, "vote")
		}
		if pollComplete(g) {
			return nil, fmt.Errorf("%w: poll is closed", ErrInvalidState)
		}
		target, changed, err := addVote(g, userID, pos)
		if err != nil {
			return nil, err
		}

		leader, _ := g.Leader()
		effects := []Effect{{
			Kind:           EffectVoteAccepted,
			ChatID:         chatID,
			Status:         g.Status,
			UserID:         userID,
			LeaderID:       leader,
			Position:       pos,
			Target:         target,
			Changed:        changed,
			Missing:        missingPlayers(g),
			GroupMessageID: g.GroupMessageID,
			PollMessageID:  g.PollMessageID,
		}}
		if pollComplete(g) {
			rec, closing := e.closePoll(g)
			record = rec
			effects = append(effects, closing...)
		}
		return effects, nil
	})
	if err != nil {
		return nil, err
	}
	e.archiveRound(ctx, record)

	log.Debug().Int64("chat_id", chatID).Int64("user_id", userID).Int("position", pos).Msg("Vote accepted")
	return effects, nil
}

// closePoll scores the round. The game stays in Poll until AdvanceRound.
func (e *Engine) closePoll(g *model.Game) (*model.RoundRecord, []Effect) {
	leader, _ := g.Leader()
	votes := votesByTarget(g.Players)
	defs := pollDefinitions(g)
	answer := leaderPosition(g)
	lines := applyScores(g, ScoreRound(g.Players, leader, e.cfg.Points))

	order := make([]int64, len(defs))
	for i, d := range defs {
		order[i] = d.UserID
	}
	record := &model.RoundRecord{
		ID:            uuid.New(),
		ChatID:        g.ChatID,
		PollMessageID: g.PollMessageID,
		Lap:           g.Lap,
		Round:         *g.Round,
		LeaderID:      leader,
		Word:          g.Word,
		Order:         order,
		Votes:         votes,
		CreatedAt:     e.now(),
	}

	effects := []Effect{
		{
			Kind:          EffectPollClosed,
			ChatID:        g.ChatID,
			Status:        g.Status,
			LeaderID:      leader,
			Word:          g.Word,
			Definitions:   defs,
			Answer:        answer,
			Votes:         votes,
			PollMessageID: g.PollMessageID,
		},
		{Kind: EffectScoreboard, ChatID: g.ChatID, Status: g.Status, LeaderID: leader, Scores: lines},
		{Kind: EffectNextRoundScheduled, ChatID: g.ChatID, Status: g.Status, Delay: e.cfg.NextRoundWait},
	}
	return record, effects
}

func (e *Engine) archiveRound(ctx context.Context, record *model.RoundRecord) {
	if record == nil {
		return
	}
	if err := e.archive.Append(ctx, record); err != nil {
		log.Error().Err(err).Int64("chat_id", record.ChatID).Msg("Failed to archive round")
		return
	}
	log.Info().
		Int64("chat_id", record.ChatID).
		Int("lap", record.Lap).
		Int("round", record.Round).
		Msg("Round completed")
}

// AdvanceRound starts the next round after a closed poll. It is safe to call
// more than once: only the first call after the poll closed does anything.
func (e *Engine) AdvanceRound(ctx context.Context, chatID int64) ([]Effect, error) {
	var pollID string
	_, effects, err := e.mutate(ctx, chatID, false, func(g *model.Game) ([]Effect, error) {
		if !pollComplete(g) {
			return nil, fmt.Errorf("%w: no finished round to advance", ErrInvalidState)
		}
		pollID = g.PollID
		return e.nextRound(g), nil
	})
	if err != nil {
		return nil, err
	}

	e.cleanup(ctx, chatID)
	if pollID != "" {
		if err := e.interactions.UnsetPollInteraction(ctx, pollID); err != nil && !errors.Is(err, repository.ErrInteractionNotFound) {
			log.Error().Err(err).Str("poll_id", pollID).Msg("Failed to unset poll interaction")
		}
	}
	return effects, nil
}

// RoundPending reports whether the chat has a closed poll waiting for AdvanceRound.
func (e *Engine) RoundPending(ctx context.Context, chatID int64) (bool, error) {
	g, err := e.load(ctx, chatID)
	if err != nil {
		return false, err
	}
	return pollComplete(g), nil
}

// ResolveLapEnd answers the end-of-lap question: another lap or the end of the game.
func (e *Engine) ResolveLapEnd(ctx context.Context, chatID int64, next bool) ([]Effect, error) {
	_, effects, err := e.mutate(ctx, chatID, false, func(g *model.Game) ([]Effect, error) {
		if g.Status != model.StatusStopped || !g.AwaitingLapDecision {
			return nil, fmt.Errorf("%w: no lap to resolve", ErrInvalidState)
		}
		g.AwaitingLapDecision = false
		if next {
			return e.nextRound(g), nil
		}
		return []Effect{{
			Kind:      EffectGameEnded,
			ChatID:    chatID,
			Status:    g.Status,
			Lap:       g.Lap,
			Players:   playerIDs(g.Players),
			Standings: Standings(g.Players),
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	e.cleanup(ctx, chatID)

	log.Info().Int64("chat_id", chatID).Bool("continue", next).Msg("Lap resolved")
	return effects, nil
}

// Stop ends the running game whatever its phase.
func (e *Engine) Stop(ctx context.Context, chatID int64) ([]Effect, error) {
	_, effects, err := e.mutate(ctx, chatID, false, func(g *model.Game) ([]Effect, error) {
		if g.Status == model.StatusStopped && !g.AwaitingLapDecision {
			return nil, fmt.Errorf("%w: no game is running", ErrInvalidState)
		}
		resetGame(g)
		return []Effect{{
			Kind:      EffectGameStopped,
			ChatID:    chatID,
			Status:    g.Status,
			Players:   playerIDs(g.Players),
			Standings: Standings(g.Players),
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	e.cleanup(ctx, chatID)

	log.Info().Int64("chat_id", chatID).Msg("Game stopped")
	return effects, nil
}

// Repeat describes the current phase again so the adapter can resend it.
func (e *Engine) Repeat(ctx context.Context, chatID int64) ([]Effect, error) {
	g, err := e.load(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if g.Status == model.StatusStopped && !g.AwaitingLapDecision {
		return nil, fmt.Errorf("%w: no game is running", ErrInvalidState)
	}

	eff := Effect{
		Kind:           EffectStatusRepeated,
		ChatID:         chatID,
		Status:         g.Status,
		Lap:            g.Lap,
		Rounds:         len(g.Players),
		Word:           g.Word,
		Players:        playerIDs(g.Players),
		Missing:        missingPlayers(g),
		CanBegin:       g.Status == model.StatusJoin && e.canBegin(g) == nil,
		GroupMessageID: g.GroupMessageID,
		PollMessageID:  g.PollMessageID,
		JoinMessageID:  g.JoinMessageID,
	}
	if leader, ok := g.Leader(); ok {
		eff.LeaderID = leader
		eff.Round = *g.Round
	}
	if g.Status == model.StatusPoll {
		eff.Definitions = pollDefinitions(g)
		eff.Answer = leaderPosition(g)
	}
	if g.AwaitingLapDecision {
		eff.Standings = Standings(g.Players)
	}
	return []Effect{eff}, nil
}

// MessageKind identifies what a tracked message is for.
type MessageKind int

const (
	MessageJoin MessageKind = iota + 1
	MessageGroup
	MessagePoll
	MessageLapEnd
	MessagePrompt
)

// TrackedMessage is a message the adapter sent that later events refer to.
type TrackedMessage struct {
	Kind      MessageKind
	UserID    int64
	MessageID int
	// PollID is set for native polls.
	PollID string
}

// TrackMessage stores the id of a message sent for an effect. Prompts become
// interaction entries so that the user's reply can be routed back to the chat.
func (e *Engine) TrackMessage(ctx context.Context, chatID int64, t TrackedMessage) error {
	if t.Kind == MessagePrompt {
		g, err := e.load(ctx, chatID)
		if err != nil {
			return err
		}
		in := &model.MessageInteraction{
			UserID:         t.UserID,
			MessageID:      t.MessageID,
			ChatID:         chatID,
			GroupMessageID: g.GroupMessageID,
			CreatedAt:      e.now(),
		}
		if err := e.interactions.SetMessageInteraction(ctx, in); err != nil {
			return fmt.Errorf("failed to register prompt: %w", err)
		}
		return nil
	}

	_, _, err := e.mutate(ctx, chatID, false, func(g *model.Game) ([]Effect, error) {
		switch t.Kind {
		case MessageJoin:
			g.JoinMessageID = t.MessageID
		case MessageGroup:
			g.GroupMessageID = t.MessageID
		case MessagePoll:
			g.PollMessageID = t.MessageID
			g.PollID = t.PollID
		case MessageLapEnd:
			g.LapEndMessageID = t.MessageID
		default:
			return nil, fmt.Errorf("%w: unknown message kind %d", ErrInvalidOperation, t.Kind)
		}
		return nil, nil
	})
	if err != nil {
		return err
	}

	if t.Kind == MessagePoll && t.PollID != "" {
		in := &model.PollInteraction{PollID: t.PollID, ChatID: chatID, MessageID: t.MessageID, CreatedAt: e.now()}
		if err := e.interactions.SetPollInteraction(ctx, in); err != nil {
			return fmt.Errorf("failed to register poll: %w", err)
		}
	}
	return nil
}

func interactionError(err error) error {
	switch {
	case errors.Is(err, repository.ErrInteractionNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, repository.ErrAmbiguous):
		return fmt.Errorf("%w: %v", ErrAmbiguousInteraction, err)
	default:
		return fmt.Errorf("failed to look up interaction: %w", err)
	}
}

// ResolveReply routes a private reply to the game that prompted it: the word
// while the game waits for a question, a definition while it waits for answers.
// replyTo is the prompt's message id, or 0 when the user did not quote it.
func (e *Engine) ResolveReply(ctx context.Context, userID int64, replyTo int, text string) ([]Effect, error) {
	in, err := e.interactions.GetMessageInteraction(ctx, userID, replyTo)
	if err != nil {
		return nil, interactionError(err)
	}

	g, err := e.load(ctx, in.ChatID)
	if err != nil {
		return nil, err
	}

	var effects []Effect
	switch g.Status {
	case model.StatusQuestion:
		word, definition := SplitWordReply(text)
		effects, err = e.SubmitWord(ctx, in.ChatID, userID, word, definition)
	case model.StatusAnswer:
		effects, err = e.SubmitDefinition(ctx, in.ChatID, userID, text)
	default:
		return nil, stateError(g, "reply")
	}
	if err != nil {
		return nil, err
	}

	// a definition prompt stays open for resubmissions until the round is cleaned up
	if g.Status != model.StatusQuestion {
		return effects, nil
	}
	if err := e.interactions.UnsetMessageInteraction(ctx, userID, in.MessageID); err != nil && !errors.Is(err, repository.ErrInteractionNotFound) {
		log.Error().Err(err).Int64("user_id", userID).Msg("Failed to unset interaction")
	}
	return effects, nil
}

// ResolvePollAnswer routes a native poll answer to CastVote.
func (e *Engine) ResolvePollAnswer(ctx context.Context, pollID string, userID int64, options []int) ([]Effect, error) {
	in, err := e.interactions.GetPollInteraction(ctx, pollID)
	if err != nil {
		return nil, interactionError(err)
	}
	if len(options) == 0 {
		return nil, fmt.Errorf("%w: vote retracted", ErrInvalidOperation)
	}
	return e.CastVote(ctx, in.ChatID, userID, options[0])
}

// Snapshot returns a copy of the chat's game.
func (e *Engine) Snapshot(ctx context.Context, chatID int64) (*model.Game, error) {
	return e.load(ctx, chatID)
}

// Status returns the chat's game status.
func (e *Engine) Status(ctx context.Context, chatID int64) (model.Status, error) {
	g, err := e.load(ctx, chatID)
	if err != nil {
		return "", err
	}
	return g.Status, nil
}

// MissingPlayers lists the players the current phase still waits for.
func (e *Engine) MissingPlayers(ctx context.Context, chatID int64) ([]int64, error) {
	g, err := e.load(ctx, chatID)
	if err != nil {
		return nil, err
	}
	return missingPlayers(g), nil
}

// Scores returns the chat's standings.
func (e *Engine) Scores(ctx context.Context, chatID int64) ([]Standing, error) {
	g, err := e.load(ctx, chatID)
	if err != nil {
		return nil, err
	}
	return Standings(g.Players), nil
}

// RoundVotes returns the archived round shown in the given poll message.
func (e *Engine) RoundVotes(ctx context.Context, chatID int64, pollMessageID int) (*model.RoundRecord, error) {
	r, err := e.archive.GetByPollMessage(ctx, chatID, pollMessageID)
	if err != nil {
		if errors.Is(err, repository.ErrRoundNotFound) {
			return nil, fmt.Errorf("%w: no round for poll %d", ErrNotFound, pollMessageID)
		}
		return nil, fmt.Errorf("failed to load round: %w", err)
	}
	return r, nil
}

// Language returns the chat's language code.
func (e *Engine) Language(ctx context.Context, chatID int64) (string, error) {
	s, err := e.settings.Get(ctx, chatID)
	if err != nil {
		if errors.Is(err, repository.ErrSettingsNotFound) {
			return i18n.DefaultLanguage.String(), nil
		}
		return "", fmt.Errorf("failed to load settings: %w", err)
	}
	return s.Language, nil
}

// SetLanguage changes the chat's language.
func (e *Engine) SetLanguage(ctx context.Context, chatID int64, code string) error {
	tag, ok := i18n.Parse(code)
	if !ok {
		return fmt.Errorf("%w: unsupported language %q", ErrInvalidOperation, code)
	}
	s := &model.Settings{ChatID: chatID, Language: tag.String(), UpdatedAt: e.now()}
	if err := e.settings.Save(ctx, s); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	log.Info().Int64("chat_id", chatID).Str("language", s.Language).Msg("Language changed")
	return nil
}
