package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"livequiz-service/internal/domain"
)

// AnswerLedger keeps answer attempts in Redis.
// Keys:
//   - slot reservation:  SET NX answer:slot:{questionID}:{participantID}
//   - per-quiz answers:  HSET quiz:{quizID}:answers {questionID}|{participantID} {json}
//   - per-question copy: HSET question:{questionID}:answers {participantID} {json}
//
// SETNX makes the duplicate check and the claim one atomic server-side
// operation, which is what the single-attempt invariant needs.
type AnswerLedger struct {
	client    *redis.Client
	retention time.Duration
}

// NewAnswerLedger creates a ledger. retention bounds how long answer keys
// live after the last write; zero keeps them forever.
func NewAnswerLedger(client *redis.Client, retention time.Duration) *AnswerLedger {
	return &AnswerLedger{client: client, retention: retention}
}

func (l *AnswerLedger) Reserve(ctx context.Context, participantID, questionID string) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.slotKey(participantID, questionID), "1", l.retention).Result()
	if err != nil {
		return false, fmt.Errorf("setnx slot: %w", err)
	}
	return ok, nil
}

func (l *AnswerLedger) Release(ctx context.Context, participantID, questionID string) error {
	return l.client.Del(ctx, l.slotKey(participantID, questionID)).Err()
}

func (l *AnswerLedger) Record(ctx context.Context, answer domain.Answer) error {
	raw, err := json.Marshal(answer)
	if err != nil {
		return fmt.Errorf("marshal answer: %w", err)
	}

	quizKey := l.quizAnswersKey(answer.QuizID)
	questionKey := l.questionAnswersKey(answer.QuestionID)

	pipe := l.client.Pipeline()
	pipe.HSet(ctx, quizKey, answer.QuestionID+"|"+answer.ParticipantID, raw)
	pipe.HSet(ctx, questionKey, answer.ParticipantID, raw)
	if l.retention > 0 {
		pipe.Expire(ctx, quizKey, l.retention)
		pipe.Expire(ctx, questionKey, l.retention)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record answer: %w", err)
	}
	return nil
}

func (l *AnswerLedger) QuestionAnswers(ctx context.Context, questionID string) ([]domain.Answer, error) {
	return l.answersFromHash(ctx, l.questionAnswersKey(questionID))
}

func (l *AnswerLedger) QuizAnswers(ctx context.Context, quizID string) ([]domain.Answer, error) {
	return l.answersFromHash(ctx, l.quizAnswersKey(quizID))
}

func (l *AnswerLedger) answersFromHash(ctx context.Context, key string) ([]domain.Answer, error) {
	raw, err := l.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("read answers: %w", err)
	}
	out := make([]domain.Answer, 0, len(raw))
	for _, v := range raw {
		var a domain.Answer
		if err := json.Unmarshal([]byte(v), &a); err != nil {
			return nil, fmt.Errorf("unmarshal answer: %w", err)
		}
		out = append(out, a)
	}
	return out, nil
}

func (l *AnswerLedger) slotKey(participantID, questionID string) string {
	return "answer:slot:" + questionID + ":" + participantID
}

func (l *AnswerLedger) quizAnswersKey(quizID string) string {
	return "quiz:" + quizID + ":answers"
}

func (l *AnswerLedger) questionAnswersKey(questionID string) string {
	return "question:" + questionID + ":answers"
}
