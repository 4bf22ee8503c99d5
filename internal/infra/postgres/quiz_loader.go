package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"livequiz-service/internal/domain"
)

// QuizLoader loads quiz content from Postgres. Options are stored as JSONB;
// the correct option index never leaves this layer except inside QuizContent.
type QuizLoader struct {
	pool *pgxpool.Pool
}

func NewQuizLoader(pool *pgxpool.Pool) *QuizLoader {
	return &QuizLoader{pool: pool}
}

func (l *QuizLoader) LoadQuiz(ctx context.Context, quizID string) (domain.QuizContent, error) {
	var content domain.QuizContent
	err := l.pool.QueryRow(ctx, `SELECT id, name FROM quizzes WHERE id=$1`, quizID).
		Scan(&content.ID, &content.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.QuizContent{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.QuizContent{}, fmt.Errorf("load quiz: %w", err)
	}

	rows, err := l.pool.Query(ctx, `
		SELECT id, question_text, options, correct_option, order_index
		FROM questions WHERE quiz_id=$1 ORDER BY order_index`, quizID)
	if err != nil {
		return domain.QuizContent{}, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			q       domain.Question
			rawOpts []byte
		)
		if err := rows.Scan(&q.ID, &q.Text, &rawOpts, &q.CorrectOption, &q.OrderIndex); err != nil {
			return domain.QuizContent{}, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal(rawOpts, &q.Options); err != nil {
			return domain.QuizContent{}, fmt.Errorf("unmarshal options: %w", err)
		}
		q.QuizID = quizID
		content.Questions = append(content.Questions, q)
	}
	if err := rows.Err(); err != nil {
		return domain.QuizContent{}, fmt.Errorf("iterate questions: %w", err)
	}
	return content, nil
}
