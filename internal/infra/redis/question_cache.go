package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quiz-exam-service/internal/domain"
)

// QuestionLoader fetches a question bank from the backing store.
type QuestionLoader interface {
	LoadQuestionBank(ctx context.Context, quizID string) (domain.QuestionBank, error)
}

// QuestionCache caches question banks in Redis and falls back to the
// loader on cache miss. Only the immutable bank is cached; exam status
// and timestamps always read through to the store.
// Banks are stored as: SET quiz:{quizID}:questions {json} EX ttl
type QuestionCache struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuestionCache(client *redis.Client, loader QuestionLoader, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) GetQuestions(ctx context.Context, quizID string) (domain.QuestionBank, error) {
	key := c.key(quizID)

	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil && len(raw) > 0 {
		var bank domain.QuestionBank
		if err := json.Unmarshal(raw, &bank); err == nil {
			return bank, nil
		}
	}

	result, err, _ := c.sf.Do(quizID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if raw, err := c.client.Get(ctx, key).Bytes(); err == nil && len(raw) > 0 {
			var bank domain.QuestionBank
			if err := json.Unmarshal(raw, &bank); err == nil {
				return bank, nil
			}
		}

		bank, err := c.loader.LoadQuestionBank(ctx, quizID)
		if err != nil {
			return domain.QuestionBank{}, err
		}

		raw, err := json.Marshal(bank)
		if err != nil {
			return domain.QuestionBank{}, fmt.Errorf("marshal question bank: %w", err)
		}
		// best-effort cache fill
		_ = c.client.Set(ctx, key, raw, c.ttlWithJitter()).Err()
		return bank, nil
	})
	if err != nil {
		return domain.QuestionBank{}, err
	}
	return result.(domain.QuestionBank), nil
}

func (c *QuestionCache) key(quizID string) string {
	return "quiz:" + quizID + ":questions"
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
