package memory

import (
	"context"
	"sync"

	"livequiz-service/internal/domain"
)

type slotKey struct {
	participantID string
	questionID    string
}

// AnswerLedger is an in-memory implementation of app.AnswerLedger. The slot
// map is the single-attempt guard: reservation and the duplicate check happen
// under one lock acquisition, so two racing submissions can never both win.
type AnswerLedger struct {
	mu      sync.RWMutex
	slots   map[slotKey]struct{}
	answers map[slotKey]domain.Answer
}

func NewAnswerLedger() *AnswerLedger {
	return &AnswerLedger{
		slots:   make(map[slotKey]struct{}),
		answers: make(map[slotKey]domain.Answer),
	}
}

func (l *AnswerLedger) Reserve(_ context.Context, participantID, questionID string) (bool, error) {
	key := slotKey{participantID, questionID}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, taken := l.slots[key]; taken {
		return false, nil
	}
	l.slots[key] = struct{}{}
	return true, nil
}

func (l *AnswerLedger) Release(_ context.Context, participantID, questionID string) error {
	key := slotKey{participantID, questionID}
	l.mu.Lock()
	defer l.mu.Unlock()
	// Never release a slot whose answer already landed.
	if _, recorded := l.answers[key]; recorded {
		return nil
	}
	delete(l.slots, key)
	return nil
}

func (l *AnswerLedger) Record(_ context.Context, answer domain.Answer) error {
	key := slotKey{answer.ParticipantID, answer.QuestionID}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.answers[key] = answer
	return nil
}

func (l *AnswerLedger) QuestionAnswers(_ context.Context, questionID string) ([]domain.Answer, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []domain.Answer
	for key, a := range l.answers {
		if key.questionID == questionID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (l *AnswerLedger) QuizAnswers(_ context.Context, quizID string) ([]domain.Answer, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []domain.Answer
	for _, a := range l.answers {
		if a.QuizID == quizID {
			out = append(out, a)
		}
	}
	return out, nil
}
