package memory

import (
	"context"
	"sync"

	"quiz-exam-service/internal/domain"
)

// EnrollmentProvider serves class membership from memory. The
// participation denominator is delegated to the quiz store so it stays
// the live count of active class quizzes.
type EnrollmentProvider struct {
	quizzes *QuizStore

	mu          sync.RWMutex
	enrollments map[enrollKey]bool
}

type enrollKey struct {
	classID   string
	studentID string
}

func NewEnrollmentProvider(quizzes *QuizStore, seed ...domain.ClassEnrollment) *EnrollmentProvider {
	p := &EnrollmentProvider{
		quizzes:     quizzes,
		enrollments: make(map[enrollKey]bool),
	}
	for _, e := range seed {
		p.enrollments[enrollKey{classID: e.ClassID, studentID: e.StudentID}] = e.IsActive
	}
	return p
}

// Enroll adds or reactivates a membership row (seeding only; this core
// never mutates enrollments in production).
func (p *EnrollmentProvider) Enroll(classID, studentID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enrollments[enrollKey{classID: classID, studentID: studentID}] = true
}

func (p *EnrollmentProvider) IsEnrolled(_ context.Context, studentID, classID string) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.enrollments[enrollKey{classID: classID, studentID: studentID}], nil
}

func (p *EnrollmentProvider) ParticipationDenominator(ctx context.Context, classID string) (int, error) {
	quizzes, err := p.quizzes.ListClassQuizzes(ctx, classID)
	if err != nil {
		return 0, err
	}
	return len(quizzes), nil
}
