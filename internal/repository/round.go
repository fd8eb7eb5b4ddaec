package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dictionary-game-bot/internal/model"
)

// RoundRepository is the append-only archive of completed rounds.
type RoundRepository struct {
	pool *pgxpool.Pool
}

// NewRoundRepository creates a new RoundRepository instance.
func NewRoundRepository(pool *pgxpool.Pool) *RoundRepository {
	return &RoundRepository{pool: pool}
}

// JSON object keys must be strings.
func encodeVotes(votes map[int64][]int64) ([]byte, error) {
	out := make(map[string][]int64, len(votes))
	for target, voters := range votes {
		out[strconv.FormatInt(target, 10)] = voters
	}
	return json.Marshal(out)
}

func decodeVotes(data []byte) (map[int64][]int64, error) {
	var raw map[string][]int64
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	votes := make(map[int64][]int64, len(raw))
	for k, voters := range raw {
		target, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			return nil, err
		}
		votes[target] = voters
	}
	return votes, nil
}

// Append stores a completed round. A round with the same chat and poll
// message replaces the stored one.
func (r *RoundRepository) Append(ctx context.Context, rec *model.RoundRecord) error {
	const query = `
		INSERT INTO rounds (id, chat_id, poll_message_id, lap, round, leader_id, word, author_order, votes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (chat_id, poll_message_id) DO UPDATE SET
			id = EXCLUDED.id,
			lap = EXCLUDED.lap,
			round = EXCLUDED.round,
			leader_id = EXCLUDED.leader_id,
			word = EXCLUDED.word,
			author_order = EXCLUDED.author_order,
			votes = EXCLUDED.votes,
			created_at = EXCLUDED.created_at
	`

	order, err := json.Marshal(nonNil(rec.Order))
	if err != nil {
		return fmt.Errorf("failed to encode poll order: %w", err)
	}
	votes, err := encodeVotes(rec.Votes)
	if err != nil {
		return fmt.Errorf("failed to encode votes: %w", err)
	}

	_, err = r.pool.Exec(ctx, query,
		rec.ID,
		rec.ChatID,
		rec.PollMessageID,
		rec.Lap,
		rec.Round,
		rec.LeaderID,
		rec.Word,
		order,
		votes,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to archive round: %w", err)
	}
	return nil
}

// GetByPollMessage returns the round shown in a poll message.
// Returns ErrRoundNotFound if no round matches.
func (r *RoundRepository) GetByPollMessage(ctx context.Context, chatID int64, pollMessageID int) (*model.RoundRecord, error) {
	const query = `
		SELECT id, chat_id, poll_message_id, lap, round, leader_id, word, author_order, votes, created_at
		FROM rounds
		WHERE chat_id = $1 AND poll_message_id = $2
	`

	var (
		rec   model.RoundRecord
		order []byte
		votes []byte
	)
	err := r.pool.QueryRow(ctx, query, chatID, pollMessageID).Scan(
		&rec.ID,
		&rec.ChatID,
		&rec.PollMessageID,
		&rec.Lap,
		&rec.Round,
		&rec.LeaderID,
		&rec.Word,
		&order,
		&votes,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoundNotFound
		}
		return nil, fmt.Errorf("failed to get round: %w", err)
	}

	if err := json.Unmarshal(order, &rec.Order); err != nil {
		return nil, fmt.Errorf("failed to decode poll order: %w", err)
	}
	if rec.Votes, err = decodeVotes(votes); err != nil {
		return nil, fmt.Errorf("failed to decode votes: %w", err)
	}
	return &rec, nil
}
