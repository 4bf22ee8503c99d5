package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

// RankSequencer draws ranks from a per-question counter row. The upsert
// increments and returns in one statement; Postgres row locking serializes
// racing submissions to the same question while different questions proceed
// in parallel.
type RankSequencer struct {
	pool *pgxpool.Pool
}

func NewRankSequencer(pool *pgxpool.Pool) *RankSequencer {
	return &RankSequencer{pool: pool}
}

func (s *RankSequencer) NextRank(ctx context.Context, questionID string) (int, error) {
	var rank int
	err := s.pool.QueryRow(ctx, `
		INSERT INTO question_ranks (question_id, next_rank)
		VALUES ($1, 1)
		ON CONFLICT (question_id)
		DO UPDATE SET next_rank = question_ranks.next_rank + 1
		RETURNING next_rank`, questionID).Scan(&rank)
	if err != nil {
		return 0, fmt.Errorf("next rank: %w", err)
	}
	return rank, nil
}
