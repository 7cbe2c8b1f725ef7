package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"quiz-exam-service/internal/domain"
	"quiz-exam-service/internal/infra/memory"
)

func TestQuestionCacheCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	loader := &countingLoader{store: memory.NewQuizStore(sampleQuiz())}
	cache := NewQuestionCache(client, loader, time.Minute)

	bank, err := cache.GetQuestions(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("get questions: %v", err)
	}
	if len(bank.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(bank.Questions))
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("quiz:quiz-1:questions") {
		t.Fatalf("expected redis key to be set")
	}

	// Second call should hit redis, loader not incremented.
	bank, err = cache.GetQuestions(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("get questions 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if bank.Questions[0].CorrectAnswer != "B" {
		t.Fatalf("cached bank lost its answer key: %+v", bank.Questions[0])
	}
}

func TestQuestionCacheLoaderError(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewQuestionCache(client, &countingLoader{store: memory.NewQuizStore()}, time.Minute)

	if _, err := cache.GetQuestions(context.Background(), "missing"); err != domain.ErrQuizNotFound {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}

type countingLoader struct {
	store *memory.QuizStore
	calls int
}

func (l *countingLoader) LoadQuestionBank(ctx context.Context, quizID string) (domain.QuestionBank, error) {
	l.calls++
	return l.store.LoadQuestionBank(ctx, quizID)
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:       "quiz-1",
		IsActive: true,
		Questions: []domain.Question{
			{
				Prompt: "What is 2 + 2?",
				Options: []domain.Option{
					{Label: "A", Text: "3"},
					{Label: "B", Text: "4"},
					{Label: "C", Text: "5"},
					{Label: "D", Text: "22"},
				},
				CorrectAnswer: "B",
			},
			{
				Prompt: "Pick C",
				Options: []domain.Option{
					{Label: "A", Text: "a"},
					{Label: "B", Text: "b"},
					{Label: "C", Text: "c"},
					{Label: "D", Text: "d"},
				},
				CorrectAnswer: "C",
			},
		},
	}
}
