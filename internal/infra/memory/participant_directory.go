package memory

import (
	"context"
	"sort"
	"sync"

	"livequiz-service/internal/domain"
)

// ParticipantDirectory is an in-memory implementation of
// app.ParticipantDirectory.
type ParticipantDirectory struct {
	mu     sync.RWMutex
	byID   map[string]domain.Participant
	byQuiz map[string][]string
}

func NewParticipantDirectory() *ParticipantDirectory {
	return &ParticipantDirectory{
		byID:   make(map[string]domain.Participant),
		byQuiz: make(map[string][]string),
	}
}

func (d *ParticipantDirectory) Register(_ context.Context, p domain.Participant) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.byID[p.ID]; !exists {
		d.byQuiz[p.QuizID] = append(d.byQuiz[p.QuizID], p.ID)
	}
	d.byID[p.ID] = p
	return nil
}

func (d *ParticipantDirectory) Get(_ context.Context, participantID string) (domain.Participant, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.byID[participantID]
	if !ok {
		return domain.Participant{}, domain.ErrParticipantNotFound
	}
	return p, nil
}

func (d *ParticipantDirectory) ByQuiz(_ context.Context, quizID string) ([]domain.Participant, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ids := d.byQuiz[quizID]
	out := make([]domain.Participant, 0, len(ids))
	for _, id := range ids {
		out = append(out, d.byID[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].JoinedAt.Before(out[j].JoinedAt)
	})
	return out, nil
}
