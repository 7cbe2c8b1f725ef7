package exam

import (
	"testing"
	"time"

	"quiz-exam-service/internal/domain"
)

func TestObservedStatusLazyExpiry(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(30 * time.Minute)
	quiz := domain.Quiz{
		IsExamMode:    true,
		ExamStatus:    domain.ExamStatusActive,
		ExamStartTime: &start,
		ExamEndTime:   &end,
	}

	if got := ObservedStatus(quiz, end.Add(-time.Minute)); got != domain.ExamStatusActive {
		t.Fatalf("expected active before end, got %q", got)
	}
	if got := ObservedStatus(quiz, end.Add(time.Second)); got != domain.ExamStatusEnded {
		t.Fatalf("expected ended after end, got %q", got)
	}
	if !Expired(quiz, end.Add(time.Second)) {
		t.Fatalf("expected expiry flip to be pending")
	}

	quiz.ExamStatus = domain.ExamStatusEnded
	if Expired(quiz, end.Add(time.Second)) {
		t.Fatalf("ended exam should not need another flip")
	}
}

func TestObservedStatusNonExam(t *testing.T) {
	quiz := domain.Quiz{IsExamMode: false, ExamStatus: domain.ExamStatusActive}
	if got := ObservedStatus(quiz, time.Now()); got != domain.ExamStatusNone {
		t.Fatalf("non-exam quiz must observe none, got %q", got)
	}
}

func TestTimeRemaining(t *testing.T) {
	end := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	quiz := domain.Quiz{ExamEndTime: &end}

	if got := TimeRemaining(quiz, end.Add(-90*time.Second)); got != 90 {
		t.Fatalf("expected 90s remaining, got %d", got)
	}
	if got := TimeRemaining(quiz, end.Add(time.Minute)); got != 0 {
		t.Fatalf("expected 0 after end, got %d", got)
	}
	if got := TimeRemaining(domain.Quiz{}, end); got != 0 {
		t.Fatalf("expected 0 without a window, got %d", got)
	}
}

func TestCanStartTransitions(t *testing.T) {
	if err := CanStart(domain.ExamStatusScheduled); err != nil {
		t.Fatalf("scheduled should start: %v", err)
	}
	if err := CanStart(domain.ExamStatusNone); err != nil {
		t.Fatalf("plain quiz should start into exam use: %v", err)
	}
	if err := CanStart(domain.ExamStatusActive); err != domain.ErrExamAlreadyActive {
		t.Fatalf("expected ErrExamAlreadyActive, got %v", err)
	}
	if err := CanStart(domain.ExamStatusEnded); err != domain.ErrInvalidTransition {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestCanEndTransitions(t *testing.T) {
	for _, status := range []domain.ExamStatus{domain.ExamStatusActive, domain.ExamStatusScheduled, domain.ExamStatusEnded} {
		if err := CanEnd(status); err != nil {
			t.Fatalf("end from %q: %v", status, err)
		}
	}
	if err := CanEnd(domain.ExamStatusNone); err != domain.ErrInvalidTransition {
		t.Fatalf("expected ErrInvalidTransition for non-exam quiz, got %v", err)
	}
}

func TestStartWindow(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	start, end := StartWindow(now, 45)
	if !start.Equal(now) {
		t.Fatalf("start should be now, got %v", start)
	}
	if got := end.Sub(start); got != 45*time.Minute {
		t.Fatalf("expected 45m window, got %v", got)
	}
}
