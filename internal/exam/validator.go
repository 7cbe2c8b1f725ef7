package exam

import (
	"time"

	"quiz-exam-service/internal/domain"
)

// Admission is everything CanSubmit needs beyond the quiz itself.
// Enrollment and duplicate lookups happen before the call so the
// decision stays a pure function.
type Admission struct {
	Now              time.Time
	Enrolled         bool
	AlreadySubmitted bool
	Signal           domain.AntiCheatSignal
}

// CanSubmit decides whether a submission attempt is admissible.
// Checks run in a fixed order and the first failing reason wins:
// quiz active, exam window (with grace), enrollment, duplicate.
//
// The duplicate answer here is only a fast path; the result store's
// uniqueness constraint is the authoritative guard under races.
func CanSubmit(quiz domain.Quiz, adm Admission) error {
	if !quiz.IsActive {
		return domain.ErrQuizInactive
	}

	if quiz.IsExamMode {
		status := ObservedStatus(quiz, adm.Now)
		switch status {
		case domain.ExamStatusActive:
			// in window
		case domain.ExamStatusEnded:
			// Late arrivals inside the grace window are still accepted,
			// whether flagged auto or manual.
			if !InGraceWindow(quiz, adm.Now) {
				return domain.ErrExamClosed
			}
		default:
			return domain.ErrExamClosed
		}
	}

	if quiz.ClassID != "" && !adm.Enrolled {
		return domain.ErrNotEnrolled
	}

	if adm.AlreadySubmitted {
		return domain.ErrAlreadySubmitted
	}
	return nil
}

// InGraceWindow reports whether now falls in (examEndTime, examEndTime+grace].
func InGraceWindow(quiz domain.Quiz, now time.Time) bool {
	if quiz.ExamEndTime == nil {
		return false
	}
	end := *quiz.ExamEndTime
	return now.After(end) && !now.After(end.Add(GracePeriod))
}
