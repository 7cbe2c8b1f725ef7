// Package exam holds the pure exam-lifecycle and admission rules.
// Everything here is a function of quiz state and wall-clock time;
// persistence of transitions is the store's job so that concurrent
// starts and ends linearize at the storage layer.
package exam

import (
	"time"

	"quiz-exam-service/internal/domain"
)

// GracePeriod is the window after nominal expiry during which a
// submission is still accepted.
const GracePeriod = 5 * time.Second

// ObservedStatus derives the effective exam status from stored state
// and now. An active exam whose end time has passed is observed as
// ended (lazy expiry); callers persist the flip via MarkExamExpired
// the first time they see it.
func ObservedStatus(quiz domain.Quiz, now time.Time) domain.ExamStatus {
	if !quiz.IsExamMode {
		return domain.ExamStatusNone
	}
	if quiz.ExamStatus == domain.ExamStatusActive && quiz.ExamEndTime != nil && now.After(*quiz.ExamEndTime) {
		return domain.ExamStatusEnded
	}
	return quiz.ExamStatus
}

// Expired reports whether an active exam has outlived its window, i.e.
// whether the lazy-expiry flip still needs to be persisted.
func Expired(quiz domain.Quiz, now time.Time) bool {
	return quiz.ExamStatus == domain.ExamStatusActive &&
		quiz.ExamEndTime != nil && now.After(*quiz.ExamEndTime)
}

// TimeRemaining returns whole seconds left in the exam window, floored
// at zero. Recomputing from the stored end time keeps concurrent
// readers consistent without a countdown.
func TimeRemaining(quiz domain.Quiz, now time.Time) int {
	if quiz.ExamEndTime == nil {
		return 0
	}
	remaining := quiz.ExamEndTime.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int(remaining / time.Second)
}

// StartWindow computes the exam window for a start at now.
func StartWindow(now time.Time, durationMinutes int) (start, end time.Time) {
	return now, now.Add(time.Duration(durationMinutes) * time.Minute)
}

// CanStart validates a start transition against the stored status.
// Only scheduled quizzes, or plain quizzes being promoted into exam
// use, may start.
func CanStart(status domain.ExamStatus) error {
	switch status {
	case domain.ExamStatusScheduled, domain.ExamStatusNone:
		return nil
	case domain.ExamStatusActive:
		return domain.ErrExamAlreadyActive
	default:
		return domain.ErrInvalidTransition
	}
}

// CanEnd validates an end transition. Ending an already-ended exam is
// a no-op success so repeated teacher clicks are harmless.
func CanEnd(status domain.ExamStatus) error {
	switch status {
	case domain.ExamStatusActive, domain.ExamStatusScheduled, domain.ExamStatusEnded:
		return nil
	default:
		return domain.ErrInvalidTransition
	}
}
