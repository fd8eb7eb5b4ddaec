package game

import (
	"context"

	"dictionary-game-bot/internal/model"
)

// GameRepository persists one Game per chat.
// Save must compare g.Version with the stored version, fail with
// repository.ErrVersionConflict on mismatch and bump g.Version on success.
// A zero version means the chat has no record yet.
type GameRepository interface {
	Get(ctx context.Context, chatID int64) (*model.Game, error)
	Save(ctx context.Context, g *model.Game) error
}

// InteractionRegistry correlates late replies and poll answers with their chat.
// A messageID of 0 means "the only outstanding prompt of this user".
// CleanMessageInteractions drops the poll entries of the chat as well.
type InteractionRegistry interface {
	SetMessageInteraction(ctx context.Context, in *model.MessageInteraction) error
	GetMessageInteraction(ctx context.Context, userID int64, messageID int) (*model.MessageInteraction, error)
	UnsetMessageInteraction(ctx context.Context, userID int64, messageID int) error
	CleanMessageInteractions(ctx context.Context, chatID int64) error

	SetPollInteraction(ctx context.Context, in *model.PollInteraction) error
	GetPollInteraction(ctx context.Context, pollID string) (*model.PollInteraction, error)
	UnsetPollInteraction(ctx context.Context, pollID string) error
}

// RoundArchive stores completed rounds.
type RoundArchive interface {
	Append(ctx context.Context, r *model.RoundRecord) error
	GetByPollMessage(ctx context.Context, chatID int64, pollMessageID int) (*model.RoundRecord, error)
}

// SettingsRepository stores per-chat preferences.
type SettingsRepository interface {
	Get(ctx context.Context, chatID int64) (*model.Settings, error)
	Save(ctx context.Context, s *model.Settings) error
}
