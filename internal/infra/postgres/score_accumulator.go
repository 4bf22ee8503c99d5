package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"livequiz-service/internal/domain"
)

// ScoreAccumulator increments totals in place. The UPDATE computes the new
// value on the server under the row lock, so there is no read-modify-write
// window regardless of how many connections race.
type ScoreAccumulator struct {
	pool *pgxpool.Pool
}

func NewScoreAccumulator(pool *pgxpool.Pool) *ScoreAccumulator {
	return &ScoreAccumulator{pool: pool}
}

func (s *ScoreAccumulator) AddPoints(ctx context.Context, participantID string, delta int) (int, error) {
	var total int
	err := s.pool.QueryRow(ctx, `
		UPDATE participants SET total_score = total_score + $2
		WHERE id=$1 RETURNING total_score`, participantID, delta).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("increment score: %w", err)
	}
	return total, nil
}

func (s *ScoreAccumulator) TotalScore(ctx context.Context, participantID string) (int, error) {
	var total int
	err := s.pool.QueryRow(ctx,
		`SELECT total_score FROM participants WHERE id=$1`, participantID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("read score: %w", err)
	}
	return total, nil
}

func (s *ScoreAccumulator) ReconcileTotal(ctx context.Context, participantID string, total int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE participants SET total_score=$2 WHERE id=$1`, participantID, total)
	if err != nil {
		return fmt.Errorf("reconcile score: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrParticipantNotFound
	}
	return nil
}
