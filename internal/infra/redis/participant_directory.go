package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
	"livequiz-service/internal/domain"
)

// ParticipantDirectory stores participants as JSON: one key per participant
// for point lookups, plus a per-quiz hash for leaderboard listing.
type ParticipantDirectory struct {
	client *redis.Client
}

func NewParticipantDirectory(client *redis.Client) *ParticipantDirectory {
	return &ParticipantDirectory{client: client}
}

func (d *ParticipantDirectory) Register(ctx context.Context, p domain.Participant) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal participant: %w", err)
	}
	pipe := d.client.Pipeline()
	pipe.Set(ctx, d.participantKey(p.ID), raw, 0)
	pipe.HSet(ctx, d.quizKey(p.QuizID), p.ID, raw)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("register participant: %w", err)
	}
	return nil
}

func (d *ParticipantDirectory) Get(ctx context.Context, participantID string) (domain.Participant, error) {
	raw, err := d.client.Get(ctx, d.participantKey(participantID)).Result()
	if errors.Is(err, redis.Nil) {
		return domain.Participant{}, domain.ErrParticipantNotFound
	}
	if err != nil {
		return domain.Participant{}, fmt.Errorf("get participant: %w", err)
	}
	var p domain.Participant
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return domain.Participant{}, fmt.Errorf("unmarshal participant: %w", err)
	}
	return p, nil
}

func (d *ParticipantDirectory) ByQuiz(ctx context.Context, quizID string) ([]domain.Participant, error) {
	raw, err := d.client.HGetAll(ctx, d.quizKey(quizID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	out := make([]domain.Participant, 0, len(raw))
	for _, v := range raw {
		var p domain.Participant
		if err := json.Unmarshal([]byte(v), &p); err != nil {
			return nil, fmt.Errorf("unmarshal participant: %w", err)
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].JoinedAt.Before(out[j].JoinedAt)
	})
	return out, nil
}

func (d *ParticipantDirectory) participantKey(id string) string {
	return "participant:" + id
}

func (d *ParticipantDirectory) quizKey(quizID string) string {
	return "quiz:" + quizID + ":participants"
}
