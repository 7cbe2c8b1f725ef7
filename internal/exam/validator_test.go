package exam

import (
	"testing"
	"time"

	"quiz-exam-service/internal/domain"
)

func examQuiz(end time.Time) domain.Quiz {
	start := end.Add(-30 * time.Minute)
	return domain.Quiz{
		ID:            "quiz-1",
		ClassID:       "class-1",
		IsActive:      true,
		IsExamMode:    true,
		ExamStatus:    domain.ExamStatusActive,
		ExamStartTime: &start,
		ExamEndTime:   &end,
	}
}

func TestCanSubmitOrderOfChecks(t *testing.T) {
	end := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	inWindow := end.Add(-time.Minute)

	// Inactive quiz wins over everything else.
	quiz := examQuiz(end)
	quiz.IsActive = false
	err := CanSubmit(quiz, Admission{Now: inWindow, Enrolled: false, AlreadySubmitted: true})
	if err != domain.ErrQuizInactive {
		t.Fatalf("expected ErrQuizInactive, got %v", err)
	}

	// Closed exam wins over enrollment and duplicates.
	quiz = examQuiz(end)
	quiz.ExamStatus = domain.ExamStatusEnded
	err = CanSubmit(quiz, Admission{Now: inWindow, Enrolled: false, AlreadySubmitted: true})
	if err != domain.ErrExamClosed {
		t.Fatalf("expected ErrExamClosed, got %v", err)
	}

	// Enrollment wins over duplicates.
	quiz = examQuiz(end)
	err = CanSubmit(quiz, Admission{Now: inWindow, Enrolled: false, AlreadySubmitted: true})
	if err != domain.ErrNotEnrolled {
		t.Fatalf("expected ErrNotEnrolled, got %v", err)
	}

	quiz = examQuiz(end)
	err = CanSubmit(quiz, Admission{Now: inWindow, Enrolled: true, AlreadySubmitted: true})
	if err != domain.ErrAlreadySubmitted {
		t.Fatalf("expected ErrAlreadySubmitted, got %v", err)
	}

	if err := CanSubmit(quiz, Admission{Now: inWindow, Enrolled: true}); err != nil {
		t.Fatalf("valid submission denied: %v", err)
	}
}

func TestCanSubmitGraceWindow(t *testing.T) {
	end := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	quiz := examQuiz(end)

	// 4.9s late is inside the grace window.
	late := end.Add(4900 * time.Millisecond)
	if err := CanSubmit(quiz, Admission{Now: late, Enrolled: true}); err != nil {
		t.Fatalf("grace window submission denied: %v", err)
	}

	// Manual submissions inside the grace window are admitted too.
	if err := CanSubmit(quiz, Admission{Now: late, Enrolled: true, Signal: domain.AntiCheatSignal{WasAutoSubmitted: false}}); err != nil {
		t.Fatalf("manual grace submission denied: %v", err)
	}

	// 5.1s late is past it.
	tooLate := end.Add(5100 * time.Millisecond)
	if err := CanSubmit(quiz, Admission{Now: tooLate, Enrolled: true}); err != domain.ErrExamClosed {
		t.Fatalf("expected ErrExamClosed past grace, got %v", err)
	}
}

func TestCanSubmitScheduledExamClosed(t *testing.T) {
	end := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	quiz := examQuiz(end)
	quiz.ExamStatus = domain.ExamStatusScheduled
	quiz.ExamStartTime = nil
	quiz.ExamEndTime = nil

	err := CanSubmit(quiz, Admission{Now: end, Enrolled: true})
	if err != domain.ErrExamClosed {
		t.Fatalf("scheduled exam should reject submissions, got %v", err)
	}
}

func TestCanSubmitNonExamSkipsWindow(t *testing.T) {
	quiz := domain.Quiz{ID: "quiz-2", IsActive: true}
	if err := CanSubmit(quiz, Admission{Now: time.Now()}); err != nil {
		t.Fatalf("practice quiz without class should submit freely: %v", err)
	}
}

func TestInGraceWindowBounds(t *testing.T) {
	end := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	quiz := examQuiz(end)

	if InGraceWindow(quiz, end) {
		t.Fatalf("exactly at end is still in the window, not in grace")
	}
	if !InGraceWindow(quiz, end.Add(GracePeriod)) {
		t.Fatalf("end+grace is inclusive")
	}
	if InGraceWindow(quiz, end.Add(GracePeriod+time.Millisecond)) {
		t.Fatalf("past end+grace must be out")
	}
}
