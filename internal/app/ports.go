package app

import (
	"context"

	"livequiz-service/internal/domain"
)

// AnswerLedger is the durable record of answer attempts and the source of
// truth for score reconstruction. Reserve is the single-attempt guard: it
// atomically claims the (participant, question) slot and reports whether the
// claim won. Implementations must make Reserve a test-and-set, never a
// read-then-write.
type AnswerLedger interface {
	Reserve(ctx context.Context, participantID, questionID string) (bool, error)
	// Release undoes a reservation whose answer was never recorded, so the
	// caller can retry after a transient failure.
	Release(ctx context.Context, participantID, questionID string) error
	Record(ctx context.Context, answer domain.Answer) error
	QuestionAnswers(ctx context.Context, questionID string) ([]domain.Answer, error)
	QuizAnswers(ctx context.Context, quizID string) ([]domain.Answer, error)
}

// RankSequencer hands out the next arrival rank for a question. Counters are
// independent per question; concurrent calls for the same question must never
// return the same value and must reflect arrival order at the sequencer.
type RankSequencer interface {
	NextRank(ctx context.Context, questionID string) (int, error)
}

// ScoreAccumulator owns participant running totals. AddPoints is a single
// atomic increment returning the new total; no caller ever observes a torn
// value. ReconcileTotal is reserved for the reconciler and overwrites a total
// with the ledger-derived truth.
type ScoreAccumulator interface {
	AddPoints(ctx context.Context, participantID string, delta int) (int, error)
	TotalScore(ctx context.Context, participantID string) (int, error)
	ReconcileTotal(ctx context.Context, participantID string, total int) error
}

// ParticipantDirectory tracks who joined which quiz. The core only reads it
// during submission; registration is driven from the join path.
type ParticipantDirectory interface {
	Register(ctx context.Context, p domain.Participant) error
	Get(ctx context.Context, participantID string) (domain.Participant, error)
	// ByQuiz returns participants ordered by join time (the leaderboard
	// tie-break order).
	ByQuiz(ctx context.Context, quizID string) ([]domain.Participant, error)
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.QuizContent, error)
}
