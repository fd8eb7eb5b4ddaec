package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dictionary-game-bot/internal/model"
)

// GameRepository stores one game row per chat. Players and the poll order
// are JSONB columns; version guards concurrent writers.
type GameRepository struct {
	pool *pgxpool.Pool
}

// NewGameRepository creates a new GameRepository instance.
func NewGameRepository(pool *pgxpool.Pool) *GameRepository {
	return &GameRepository{pool: pool}
}

// Get retrieves the chat's game.
// Returns ErrGameNotFound if the chat never had one.
func (r *GameRepository) Get(ctx context.Context, chatID int64) (*model.Game, error) {
	const query = `
		SELECT chat_id, status, players, round, lap, word, indexes,
			group_message_id, poll_message_id, poll_id, join_message_id, lap_end_message_id,
			awaiting_lap_decision, version, updated_at
		FROM games
		WHERE chat_id = $1
	`

	var (
		g       model.Game
		players []byte
		indexes []byte
	)
	err := r.pool.QueryRow(ctx, query, chatID).Scan(
		&g.ChatID,
		&g.Status,
		&players,
		&g.Round,
		&g.Lap,
		&g.Word,
		&indexes,
		&g.GroupMessageID,
		&g.PollMessageID,
		&g.PollID,
		&g.JoinMessageID,
		&g.LapEndMessageID,
		&g.AwaitingLapDecision,
		&g.Version,
		&g.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	if err := json.Unmarshal(players, &g.Players); err != nil {
		return nil, fmt.Errorf("failed to decode players: %w", err)
	}
	if err := json.Unmarshal(indexes, &g.Indexes); err != nil {
		return nil, fmt.Errorf("failed to decode poll order: %w", err)
	}
	return &g, nil
}

// Save upserts the game if the stored version still equals g.Version.
// Returns ErrVersionConflict otherwise; on success g.Version is bumped.
func (r *GameRepository) Save(ctx context.Context, g *model.Game) error {
	const query = `
		INSERT INTO games (chat_id, status, players, round, lap, word, indexes,
			group_message_id, poll_message_id, poll_id, join_message_id, lap_end_message_id,
			awaiting_lap_decision, version, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, 1, NOW())
		ON CONFLICT (chat_id) DO UPDATE SET
			status = EXCLUDED.status,
			players = EXCLUDED.players,
			round = EXCLUDED.round,
			lap = EXCLUDED.lap,
			word = EXCLUDED.word,
			indexes = EXCLUDED.indexes,
			group_message_id = EXCLUDED.group_message_id,
			poll_message_id = EXCLUDED.poll_message_id,
			poll_id = EXCLUDED.poll_id,
			join_message_id = EXCLUDED.join_message_id,
			lap_end_message_id = EXCLUDED.lap_end_message_id,
			awaiting_lap_decision = EXCLUDED.awaiting_lap_decision,
			version = games.version + 1,
			updated_at = NOW()
		WHERE games.version = $14
		RETURNING version, updated_at
	`

	players, err := json.Marshal(nonNil(g.Players))
	if err != nil {
		return fmt.Errorf("failed to encode players: %w", err)
	}
	indexes, err := json.Marshal(nonNil(g.Indexes))
	if err != nil {
		return fmt.Errorf("failed to encode poll order: %w", err)
	}

	err = r.pool.QueryRow(ctx, query,
		g.ChatID,
		g.Status,
		players,
		g.Round,
		g.Lap,
		g.Word,
		indexes,
		g.GroupMessageID,
		g.PollMessageID,
		g.PollID,
		g.JoinMessageID,
		g.LapEndMessageID,
		g.AwaitingLapDecision,
		g.Version,
	).Scan(&g.Version, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrVersionConflict
		}
		return fmt.Errorf("failed to save game: %w", err)
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
