package memory

import (
	"context"
	"sync"
)

// RankSequencer hands out per-question arrival ranks. One shared mutex over a
// counter map: the critical section is a single map increment, and counters
// for different questions never observe each other's values.
type RankSequencer struct {
	mu   sync.Mutex
	next map[string]int
}

func NewRankSequencer() *RankSequencer {
	return &RankSequencer{next: make(map[string]int)}
}

func (s *RankSequencer) NextRank(_ context.Context, questionID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next[questionID]++
	return s.next[questionID], nil
}
