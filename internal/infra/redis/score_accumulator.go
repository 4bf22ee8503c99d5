package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// ScoreAccumulator stores one counter per participant and increments it with
// INCRBY, a single atomic server-side add that returns the new total. There
// is no read-modify-write window to lose updates in.
type ScoreAccumulator struct {
	client *redis.Client
}

func NewScoreAccumulator(client *redis.Client) *ScoreAccumulator {
	return &ScoreAccumulator{client: client}
}

func (s *ScoreAccumulator) AddPoints(ctx context.Context, participantID string, delta int) (int, error) {
	total, err := s.client.IncrBy(ctx, s.key(participantID), int64(delta)).Result()
	if err != nil {
		return 0, fmt.Errorf("incrby score: %w", err)
	}
	return int(total), nil
}

func (s *ScoreAccumulator) TotalScore(ctx context.Context, participantID string) (int, error) {
	raw, err := s.client.Get(ctx, s.key(participantID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get score: %w", err)
	}
	total, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse score %q: %w", raw, err)
	}
	return total, nil
}

func (s *ScoreAccumulator) ReconcileTotal(ctx context.Context, participantID string, total int) error {
	if err := s.client.Set(ctx, s.key(participantID), total, 0).Err(); err != nil {
		return fmt.Errorf("set reconciled score: %w", err)
	}
	return nil
}

func (s *ScoreAccumulator) key(participantID string) string {
	return "participant:" + participantID + ":score"
}
