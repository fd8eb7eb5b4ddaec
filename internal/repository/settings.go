package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dictionary-game-bot/internal/model"
)

// SettingsRepository stores per-chat preferences.
type SettingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository creates a new SettingsRepository instance.
func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// Get returns the chat's settings or ErrSettingsNotFound.
func (r *SettingsRepository) Get(ctx context.Context, chatID int64) (*model.Settings, error) {
	const query = `SELECT chat_id, language, updated_at FROM settings WHERE chat_id = $1`

	var s model.Settings
	if err := r.pool.QueryRow(ctx, query, chatID).Scan(&s.ChatID, &s.Language, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSettingsNotFound
		}
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return &s, nil
}

// Save upserts the chat's settings.
func (r *SettingsRepository) Save(ctx context.Context, s *model.Settings) error {
	const query = `
		INSERT INTO settings (chat_id, language, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (chat_id) DO UPDATE SET
			language = EXCLUDED.language,
			updated_at = NOW()
	`

	if _, err := r.pool.Exec(ctx, query, s.ChatID, s.Language); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
