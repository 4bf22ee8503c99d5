package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RankSequencer assigns arrival ranks with one INCR per question. INCR is
// atomic on the server, so racing submissions for the same question get
// distinct consecutive ranks in arrival order, and different questions never
// contend.
type RankSequencer struct {
	client *redis.Client
}

func NewRankSequencer(client *redis.Client) *RankSequencer {
	return &RankSequencer{client: client}
}

func (s *RankSequencer) NextRank(ctx context.Context, questionID string) (int, error) {
	rank, err := s.client.Incr(ctx, "question:"+questionID+":rank").Result()
	if err != nil {
		return 0, fmt.Errorf("incr rank: %w", err)
	}
	return int(rank), nil
}
