package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"livequiz-service/internal/domain"
)

// ParticipantDirectory stores participants in Postgres.
type ParticipantDirectory struct {
	pool *pgxpool.Pool
}

func NewParticipantDirectory(pool *pgxpool.Pool) *ParticipantDirectory {
	return &ParticipantDirectory{pool: pool}
}

func (d *ParticipantDirectory) Register(ctx context.Context, p domain.Participant) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO participants (id, quiz_id, name, total_score, joined_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`,
		p.ID, p.QuizID, p.Name, p.TotalScore, p.JoinedAt)
	if err != nil {
		return fmt.Errorf("insert participant: %w", err)
	}
	return nil
}

func (d *ParticipantDirectory) Get(ctx context.Context, participantID string) (domain.Participant, error) {
	var p domain.Participant
	err := d.pool.QueryRow(ctx, `
		SELECT id, quiz_id, name, total_score, joined_at
		FROM participants WHERE id=$1`, participantID).
		Scan(&p.ID, &p.QuizID, &p.Name, &p.TotalScore, &p.JoinedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Participant{}, domain.ErrParticipantNotFound
	}
	if err != nil {
		return domain.Participant{}, fmt.Errorf("get participant: %w", err)
	}
	return p, nil
}

func (d *ParticipantDirectory) ByQuiz(ctx context.Context, quizID string) ([]domain.Participant, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, quiz_id, name, total_score, joined_at
		FROM participants WHERE quiz_id=$1 ORDER BY joined_at`, quizID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var out []domain.Participant
	for rows.Next() {
		var p domain.Participant
		if err := rows.Scan(&p.ID, &p.QuizID, &p.Name, &p.TotalScore, &p.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participants: %w", err)
	}
	return out, nil
}
