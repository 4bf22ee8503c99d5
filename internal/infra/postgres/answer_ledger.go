package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"livequiz-service/internal/domain"
)

// AnswerLedger is the durable ledger. The reservation is an
// INSERT .. ON CONFLICT DO NOTHING against the (participant, question)
// primary key, so the duplicate check and the claim are one statement and the
// database decides the winner of a race.
type AnswerLedger struct {
	pool *pgxpool.Pool
}

func NewAnswerLedger(pool *pgxpool.Pool) *AnswerLedger {
	return &AnswerLedger{pool: pool}
}

func (l *AnswerLedger) Reserve(ctx context.Context, participantID, questionID string) (bool, error) {
	tag, err := l.pool.Exec(ctx, `
		INSERT INTO answer_slots (participant_id, question_id)
		VALUES ($1, $2) ON CONFLICT DO NOTHING`, participantID, questionID)
	if err != nil {
		return false, fmt.Errorf("reserve slot: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (l *AnswerLedger) Release(ctx context.Context, participantID, questionID string) error {
	_, err := l.pool.Exec(ctx, `
		DELETE FROM answer_slots
		WHERE participant_id=$1 AND question_id=$2
		  AND NOT EXISTS (
			SELECT 1 FROM answers WHERE participant_id=$1 AND question_id=$2
		  )`, participantID, questionID)
	if err != nil {
		return fmt.Errorf("release slot: %w", err)
	}
	return nil
}

func (l *AnswerLedger) Record(ctx context.Context, a domain.Answer) error {
	_, err := l.pool.Exec(ctx, `
		INSERT INTO answers
			(id, quiz_id, participant_id, question_id, selected_option,
			 is_correct, answer_rank, points_earned, answered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.QuizID, a.ParticipantID, a.QuestionID, a.SelectedOption,
		a.IsCorrect, a.AnswerRank, a.PointsEarned, a.AnsweredAt)
	if err != nil {
		return fmt.Errorf("insert answer: %w", err)
	}
	return nil
}

func (l *AnswerLedger) QuestionAnswers(ctx context.Context, questionID string) ([]domain.Answer, error) {
	return l.query(ctx, `WHERE question_id=$1`, questionID)
}

func (l *AnswerLedger) QuizAnswers(ctx context.Context, quizID string) ([]domain.Answer, error) {
	return l.query(ctx, `WHERE quiz_id=$1`, quizID)
}

func (l *AnswerLedger) query(ctx context.Context, where string, arg any) ([]domain.Answer, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT id, quiz_id, participant_id, question_id, selected_option,
		       is_correct, answer_rank, points_earned, answered_at
		FROM answers `+where, arg)
	if err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	defer rows.Close()

	var out []domain.Answer
	for rows.Next() {
		var a domain.Answer
		if err := rows.Scan(&a.ID, &a.QuizID, &a.ParticipantID, &a.QuestionID,
			&a.SelectedOption, &a.IsCorrect, &a.AnswerRank, &a.PointsEarned, &a.AnsweredAt); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate answers: %w", err)
	}
	return out, nil
}
