package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quiz-exam-service/internal/domain"
)

// QuestionLoader fetches a question bank from the backing store.
type QuestionLoader interface {
	LoadQuestionBank(ctx context.Context, quizID string) (domain.QuestionBank, error)
}

// QuestionCache caches question banks with TTL to avoid repeated store
// hits on every submission. Banks are immutable after quiz creation, so
// staleness within the TTL is harmless.
type QuestionCache struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedBank
}

type cachedBank struct {
	bank      domain.QuestionBank
	expiresAt time.Time
}

func NewQuestionCache(loader QuestionLoader, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedBank),
	}
}

func (c *QuestionCache) GetQuestions(ctx context.Context, quizID string) (domain.QuestionBank, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[quizID]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.bank, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(quizID, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[quizID]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.bank, nil
		}
		c.mu.RUnlock()

		bank, err := c.loader.LoadQuestionBank(ctx, quizID)
		if err != nil {
			return domain.QuestionBank{}, err
		}

		c.mu.Lock()
		c.cache[quizID] = cachedBank{
			bank:      bank,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return bank, nil
	})
	if err != nil {
		return domain.QuestionBank{}, err
	}
	return result.(domain.QuestionBank), nil
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
