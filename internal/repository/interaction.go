package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dictionary-game-bot/internal/model"
)

// InteractionRepository stores reply and poll correlations.
type InteractionRepository struct {
	pool *pgxpool.Pool
}

// NewInteractionRepository creates a new InteractionRepository instance.
func NewInteractionRepository(pool *pgxpool.Pool) *InteractionRepository {
	return &InteractionRepository{pool: pool}
}

// SetMessageInteraction registers a prompt, replacing any entry with the same key.
func (r *InteractionRepository) SetMessageInteraction(ctx context.Context, in *model.MessageInteraction) error {
	const query = `
		INSERT INTO message_interactions (user_id, message_id, chat_id, group_message_id, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id, message_id) DO UPDATE SET
			chat_id = EXCLUDED.chat_id,
			group_message_id = EXCLUDED.group_message_id,
			created_at = NOW()
	`

	if _, err := r.pool.Exec(ctx, query, in.UserID, in.MessageID, in.ChatID, in.GroupMessageID); err != nil {
		return fmt.Errorf("failed to set message interaction: %w", err)
	}
	return nil
}

// GetMessageInteraction finds a prompt by user and message, or by user alone when messageID is 0.
// Returns ErrAmbiguous when the user has several outstanding prompts and no message id was given.
func (r *InteractionRepository) GetMessageInteraction(ctx context.Context, userID int64, messageID int) (*model.MessageInteraction, error) {
	const query = `
		SELECT user_id, message_id, chat_id, group_message_id, created_at
		FROM message_interactions
		WHERE user_id = $1 AND ($2 = 0 OR message_id = $2)
		LIMIT 2
	`

	rows, err := r.pool.Query(ctx, query, userID, messageID)
	if err != nil {
		return nil, fmt.Errorf("failed to get message interaction: %w", err)
	}
	defer rows.Close()

	var found []model.MessageInteraction
	for rows.Next() {
		var in model.MessageInteraction
		if err := rows.Scan(&in.UserID, &in.MessageID, &in.ChatID, &in.GroupMessageID, &in.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message interaction: %w", err)
		}
		found = append(found, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate message interactions: %w", err)
	}

	switch len(found) {
	case 0:
		return nil, ErrInteractionNotFound
	case 1:
		return &found[0], nil
	default:
		return nil, ErrAmbiguous
	}
}

// UnsetMessageInteraction consumes a prompt.
func (r *InteractionRepository) UnsetMessageInteraction(ctx context.Context, userID int64, messageID int) error {
	if messageID == 0 {
		in, err := r.GetMessageInteraction(ctx, userID, 0)
		if err != nil {
			return err
		}
		messageID = in.MessageID
	}

	const query = `DELETE FROM message_interactions WHERE user_id = $1 AND message_id = $2`
	tag, err := r.pool.Exec(ctx, query, userID, messageID)
	if err != nil {
		return fmt.Errorf("failed to unset message interaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInteractionNotFound
	}
	return nil
}

// CleanMessageInteractions drops every prompt and poll of a chat in one transaction.
func (r *InteractionRepository) CleanMessageInteractions(ctx context.Context, chatID int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM message_interactions WHERE chat_id = $1`, chatID); err != nil {
		return fmt.Errorf("failed to clean message interactions: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM poll_interactions WHERE chat_id = $1`, chatID); err != nil {
		return fmt.Errorf("failed to clean poll interactions: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SetPollInteraction registers a native poll.
func (r *InteractionRepository) SetPollInteraction(ctx context.Context, in *model.PollInteraction) error {
	const query = `
		INSERT INTO poll_interactions (poll_id, chat_id, message_id, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (poll_id) DO UPDATE SET
			chat_id = EXCLUDED.chat_id,
			message_id = EXCLUDED.message_id
	`

	if _, err := r.pool.Exec(ctx, query, in.PollID, in.ChatID, in.MessageID); err != nil {
		return fmt.Errorf("failed to set poll interaction: %w", err)
	}
	return nil
}

// GetPollInteraction finds a native poll.
func (r *InteractionRepository) GetPollInteraction(ctx context.Context, pollID string) (*model.PollInteraction, error) {
	const query = `
		SELECT poll_id, chat_id, message_id, created_at
		FROM poll_interactions
		WHERE poll_id = $1
	`

	var in model.PollInteraction
	err := r.pool.QueryRow(ctx, query, pollID).Scan(&in.PollID, &in.ChatID, &in.MessageID, &in.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInteractionNotFound
		}
		return nil, fmt.Errorf("failed to get poll interaction: %w", err)
	}
	return &in, nil
}

// UnsetPollInteraction consumes a native poll.
func (r *InteractionRepository) UnsetPollInteraction(ctx context.Context, pollID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM poll_interactions WHERE poll_id = $1`, pollID)
	if err != nil {
		return fmt.Errorf("failed to unset poll interaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInteractionNotFound
	}
	return nil
}
