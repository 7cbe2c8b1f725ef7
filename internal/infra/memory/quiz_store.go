package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"quiz-exam-service/internal/domain"
)

// QuizStore is an in-memory implementation of app.QuizStore, used in
// demo mode and tests. Transitions happen under the store mutex so the
// same linearizability the database gives via conditional updates holds
// here too.
type QuizStore struct {
	mu      sync.RWMutex
	quizzes map[string]*domain.Quiz
}

func NewQuizStore(seed ...domain.Quiz) *QuizStore {
	s := &QuizStore{quizzes: make(map[string]*domain.Quiz)}
	for _, q := range seed {
		quiz := q
		s.quizzes[quiz.ID] = &quiz
	}
	return s
}

// Put inserts or replaces a quiz. Seeding only; exam state changes go
// through the transition methods.
func (s *QuizStore) Put(quiz domain.Quiz) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[quiz.ID] = &quiz
}

func (s *QuizStore) GetQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return *quiz, nil
}

func (s *QuizStore) ListClassQuizzes(_ context.Context, classID string) ([]domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Quiz, 0)
	for _, quiz := range s.quizzes {
		if quiz.ClassID == classID && quiz.IsActive {
			out = append(out, *quiz)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *QuizStore) BeginExam(_ context.Context, quizID string, durationMinutes int, start, end time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.ErrQuizNotFound
	}
	switch quiz.ExamStatus {
	case domain.ExamStatusActive:
		return domain.ErrExamAlreadyActive
	case domain.ExamStatusEnded:
		return domain.ErrInvalidTransition
	}
	quiz.IsExamMode = true
	quiz.ExamDurationMinutes = durationMinutes
	quiz.ExamStatus = domain.ExamStatusActive
	quiz.ExamStartTime = &start
	quiz.ExamEndTime = &end
	return nil
}

func (s *QuizStore) EndExam(_ context.Context, quizID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.ErrQuizNotFound
	}
	if !quiz.IsExamMode {
		return domain.ErrInvalidTransition
	}
	quiz.ExamStatus = domain.ExamStatusEnded
	return nil
}

func (s *QuizStore) MarkExamExpired(_ context.Context, quizID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.ErrQuizNotFound
	}
	// Only flip a genuinely expired active exam; concurrent observers
	// racing here all converge on ended.
	if quiz.ExamStatus == domain.ExamStatusActive && quiz.ExamEndTime != nil && now.After(*quiz.ExamEndTime) {
		quiz.ExamStatus = domain.ExamStatusEnded
	}
	return nil
}

// LoadQuestionBank satisfies the question cache's loader interface.
func (s *QuizStore) LoadQuestionBank(_ context.Context, quizID string) (domain.QuestionBank, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.QuestionBank{}, domain.ErrQuizNotFound
	}
	return domain.QuestionBank{QuizID: quizID, Questions: quiz.Questions}, nil
}
