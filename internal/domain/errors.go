package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrResultNotFound indicates no result exists for the lookup.
	ErrResultNotFound = errors.New("quiz result not found")
	// ErrQuizInactive is returned when a submission targets a deactivated quiz.
	ErrQuizInactive = errors.New("quiz is not active")
	// ErrInvalidTransition is returned for an illegal exam state-machine move.
	ErrInvalidTransition = errors.New("invalid exam transition")
	// ErrExamAlreadyActive is returned when a start races an in-progress exam.
	ErrExamAlreadyActive = errors.New("exam already active")
	// ErrExamClosed is returned when a submission arrives outside the exam
	// window plus its grace period.
	ErrExamClosed = errors.New("exam is closed")
	// ErrNotEnrolled is returned when the student has no active enrollment
	// in the quiz's class.
	ErrNotEnrolled = errors.New("student not enrolled in class")
	// ErrAlreadySubmitted is returned on a second attempt for the same
	// (quiz, student) pair; the result store's uniqueness constraint is
	// the authoritative source of this error.
	ErrAlreadySubmitted = errors.New("quiz already submitted")
)
