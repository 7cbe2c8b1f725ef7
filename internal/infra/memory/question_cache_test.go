package memory

import (
	"context"
	"testing"
	"time"

	"quiz-exam-service/internal/domain"
)

func TestQuestionCacheCaches(t *testing.T) {
	loader := &countingLoader{store: NewQuizStore(testQuiz())}
	cache := NewQuestionCache(loader, time.Minute)

	bank, err := cache.GetQuestions(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("get questions: %v", err)
	}
	if len(bank.Questions) != 1 {
		t.Fatalf("expected one question, got %d", len(bank.Questions))
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := cache.GetQuestions(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get questions 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestQuestionCacheUnknownQuiz(t *testing.T) {
	cache := NewQuestionCache(NewQuizStore(), time.Minute)
	if _, err := cache.GetQuestions(context.Background(), "missing"); err != domain.ErrQuizNotFound {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}

type countingLoader struct {
	store *QuizStore
	calls int
}

func (l *countingLoader) LoadQuestionBank(ctx context.Context, quizID string) (domain.QuestionBank, error) {
	l.calls++
	return l.store.LoadQuestionBank(ctx, quizID)
}
