package memory

import (
	"context"
	"sync"

	"quiz-exam-service/internal/domain"
)

// ResultStore keeps results in memory keyed by (quizID, studentID).
// The mutex makes check-and-insert atomic, mirroring the database's
// unique compound index.
type ResultStore struct {
	mu      sync.RWMutex
	results map[resultKey]domain.QuizResult
}

type resultKey struct {
	quizID    string
	studentID string
}

func NewResultStore() *ResultStore {
	return &ResultStore{results: make(map[resultKey]domain.QuizResult)}
}

func (s *ResultStore) Insert(_ context.Context, result domain.QuizResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := resultKey{quizID: result.QuizID, studentID: result.StudentID}
	if _, ok := s.results[key]; ok {
		return domain.ErrAlreadySubmitted
	}
	s.results[key] = result
	return nil
}

func (s *ResultStore) Exists(_ context.Context, quizID, studentID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.results[resultKey{quizID: quizID, studentID: studentID}]
	return ok, nil
}

func (s *ResultStore) ListByQuiz(_ context.Context, quizID string) ([]domain.QuizResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.QuizResult, 0)
	for key, res := range s.results {
		if key.quizID == quizID {
			out = append(out, res)
		}
	}
	return out, nil
}

func (s *ResultStore) ListByQuizzes(_ context.Context, quizIDs []string) ([]domain.QuizResult, error) {
	wanted := make(map[string]struct{}, len(quizIDs))
	for _, id := range quizIDs {
		wanted[id] = struct{}{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.QuizResult, 0)
	for key, res := range s.results {
		if _, ok := wanted[key.quizID]; ok {
			out = append(out, res)
		}
	}
	return out, nil
}
