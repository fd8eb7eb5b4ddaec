// Package memstore provides in-memory implementations of the game stores.
// They back the memory storage driver and the engine tests.
package memstore

import (
	"context"
	"sync"
	"time"

	"dictionary-game-bot/internal/model"
	"dictionary-game-bot/internal/repository"
)

// GameRepository keeps games in a map with the same version checks as the
// postgres implementation.
type GameRepository struct {
	mu    sync.RWMutex
	games map[int64]*model.Game
}

// NewGameRepository creates a new GameRepository instance.
func NewGameRepository() *GameRepository {
	return &GameRepository{games: make(map[int64]*model.Game)}
}

// Get returns a copy of the chat's game.
func (r *GameRepository) Get(_ context.Context, chatID int64) (*model.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.games[chatID]
	if !ok {
		return nil, repository.ErrGameNotFound
	}
	return g.Clone(), nil
}

// Save stores g if its version matches the stored one.
func (r *GameRepository) Save(_ context.Context, g *model.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var current int64
	if old, ok := r.games[g.ChatID]; ok {
		current = old.Version
	}
	if current != g.Version {
		return repository.ErrVersionConflict
	}

	g.Version++
	g.UpdatedAt = time.Now()
	r.games[g.ChatID] = g.Clone()
	return nil
}

type messageKey struct {
	userID    int64
	messageID int
}

// InteractionRegistry keeps reply and poll correlations in maps.
type InteractionRegistry struct {
	mu       sync.Mutex
	messages map[messageKey]model.MessageInteraction
	polls    map[string]model.PollInteraction
}

// NewInteractionRegistry creates a new InteractionRegistry instance.
func NewInteractionRegistry() *InteractionRegistry {
	return &InteractionRegistry{
		messages: make(map[messageKey]model.MessageInteraction),
		polls:    make(map[string]model.PollInteraction),
	}
}

// SetMessageInteraction registers a prompt, replacing any entry with the same key.
func (r *InteractionRegistry) SetMessageInteraction(_ context.Context, in *model.MessageInteraction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.messages[messageKey{in.UserID, in.MessageID}] = *in
	return nil
}

// lookup must be called with r.mu held.
func (r *InteractionRegistry) lookup(userID int64, messageID int) (messageKey, error) {
	if messageID != 0 {
		k := messageKey{userID, messageID}
		if _, ok := r.messages[k]; !ok {
			return k, repository.ErrInteractionNotFound
		}
		return k, nil
	}

	var found []messageKey
	for k := range r.messages {
		if k.userID == userID {
			found = append(found, k)
		}
	}
	switch len(found) {
	case 0:
		return messageKey{}, repository.ErrInteractionNotFound
	case 1:
		return found[0], nil
	default:
		return messageKey{}, repository.ErrAmbiguous
	}
}

// GetMessageInteraction finds a prompt by user and message, or by user alone when messageID is 0.
func (r *InteractionRegistry) GetMessageInteraction(_ context.Context, userID int64, messageID int) (*model.MessageInteraction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k, err := r.lookup(userID, messageID)
	if err != nil {
		return nil, err
	}
	in := r.messages[k]
	return &in, nil
}

// UnsetMessageInteraction consumes a prompt.
func (r *InteractionRegistry) UnsetMessageInteraction(_ context.Context, userID int64, messageID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k, err := r.lookup(userID, messageID)
	if err != nil {
		return err
	}
	delete(r.messages, k)
	return nil
}

// CleanMessageInteractions drops every prompt and poll of a chat.
func (r *InteractionRegistry) CleanMessageInteractions(_ context.Context, chatID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k, in := range r.messages {
		if in.ChatID == chatID {
			delete(r.messages, k)
		}
	}
	for id, p := range r.polls {
		if p.ChatID == chatID {
			delete(r.polls, id)
		}
	}
	return nil
}

// SetPollInteraction registers a native poll.
func (r *InteractionRegistry) SetPollInteraction(_ context.Context, in *model.PollInteraction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.polls[in.PollID] = *in
	return nil
}

// GetPollInteraction finds a native poll.
func (r *InteractionRegistry) GetPollInteraction(_ context.Context, pollID string) (*model.PollInteraction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.polls[pollID]
	if !ok {
		return nil, repository.ErrInteractionNotFound
	}
	return &p, nil
}

// UnsetPollInteraction consumes a native poll.
func (r *InteractionRegistry) UnsetPollInteraction(_ context.Context, pollID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.polls[pollID]; !ok {
		return repository.ErrInteractionNotFound
	}
	delete(r.polls, pollID)
	return nil
}

type roundKey struct {
	chatID        int64
	pollMessageID int
}

// RoundArchive keeps completed rounds in memory.
type RoundArchive struct {
	mu     sync.RWMutex
	rounds map[roundKey]*model.RoundRecord
}

// NewRoundArchive creates a new RoundArchive instance.
func NewRoundArchive() *RoundArchive {
	return &RoundArchive{rounds: make(map[roundKey]*model.RoundRecord)}
}

// Append stores a round. A later round with the same poll message replaces it.
func (a *RoundArchive) Append(_ context.Context, r *model.RoundRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	c := *r
	a.rounds[roundKey{r.ChatID, r.PollMessageID}] = &c
	return nil
}

// GetByPollMessage returns the round shown in a poll message.
func (a *RoundArchive) GetByPollMessage(_ context.Context, chatID int64, pollMessageID int) (*model.RoundRecord, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	r, ok := a.rounds[roundKey{chatID, pollMessageID}]
	if !ok {
		return nil, repository.ErrRoundNotFound
	}
	c := *r
	return &c, nil
}

// Len returns the number of archived rounds.
func (a *RoundArchive) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.rounds)
}

// SettingsRepository keeps chat settings in memory.
type SettingsRepository struct {
	mu       sync.RWMutex
	settings map[int64]model.Settings
}

// NewSettingsRepository creates a new SettingsRepository instance.
func NewSettingsRepository() *SettingsRepository {
	return &SettingsRepository{settings: make(map[int64]model.Settings)}
}

// Get returns the chat's settings.
func (r *SettingsRepository) Get(_ context.Context, chatID int64) (*model.Settings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.settings[chatID]
	if !ok {
		return nil, repository.ErrSettingsNotFound
	}
	return &s, nil
}

// Save stores the chat's settings.
func (r *SettingsRepository) Save(_ context.Context, s *model.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.settings[s.ChatID] = *s
	return nil
}
