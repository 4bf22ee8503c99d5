package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"livequiz-service/internal/domain"
)

// QuizLoader fetches quiz content from a backing store (e.g., Postgres).
type QuizLoader interface {
	LoadQuiz(ctx context.Context, quizID string) (domain.QuizContent, error)
}

type cachedContent struct {
	domain.QuizContent
	// CorrectOptions is carried separately because Question hides its
	// correct option from JSON on purpose.
	CorrectOptions map[string]int `json:"correctOptions"`
}

// QuizRepository caches quiz content in Redis (one JSON value per quiz) and
// falls back to a loader on cache miss.
type QuizRepository struct {
	client *redis.Client
	loader QuizLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuizRepository(client *redis.Client, loader QuizLoader, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, quizID string) (domain.QuizContent, error) {
	if content, ok := r.fromCache(ctx, quizID); ok {
		return content, nil
	}

	result, err, _ := r.sf.Do(quizID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if content, ok := r.fromCache(ctx, quizID); ok {
			return content, nil
		}

		content, err := r.loader.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.QuizContent{}, err
		}

		wrapped := cachedContent{QuizContent: content, CorrectOptions: make(map[string]int, len(content.Questions))}
		for _, q := range content.Questions {
			wrapped.CorrectOptions[q.ID] = q.CorrectOption
		}
		if raw, err := json.Marshal(wrapped); err == nil {
			_ = r.client.Set(ctx, r.contentKey(quizID), raw, r.ttlWithJitter()).Err()
		}
		return content, nil
	})
	if err != nil {
		return domain.QuizContent{}, err
	}
	return result.(domain.QuizContent), nil
}

func (r *QuizRepository) fromCache(ctx context.Context, quizID string) (domain.QuizContent, bool) {
	raw, err := r.client.Get(ctx, r.contentKey(quizID)).Result()
	if err != nil {
		return domain.QuizContent{}, false
	}
	var wrapped cachedContent
	if err := json.Unmarshal([]byte(raw), &wrapped); err != nil {
		return domain.QuizContent{}, false
	}
	for i := range wrapped.Questions {
		wrapped.Questions[i].CorrectOption = wrapped.CorrectOptions[wrapped.Questions[i].ID]
	}
	return wrapped.QuizContent, true
}

func (r *QuizRepository) contentKey(quizID string) string {
	return "quiz:" + quizID + ":content"
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
