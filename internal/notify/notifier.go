// Package notify defines the outbound event contract for real-time
// broadcast. Implementations are best-effort: the service layer wraps
// them so a failing transport never blocks persistence.
package notify

import (
	"context"
	"log"

	"quiz-exam-service/internal/domain"
)

// Notifier receives lifecycle and ranking events for broadcast.
type Notifier interface {
	ExamStarted(ctx context.Context, window domain.ExamWindow) error
	ExamEnded(ctx context.Context, quizID string) error
	ExamExpired(ctx context.Context, quizID string) error
	SubmissionScored(ctx context.Context, classID string, result domain.QuizResult) error
	RankingsChanged(ctx context.Context, classID string, rankings domain.ClassRankings) error
}

// Nop discards all events; used when no transport is wired.
type Nop struct{}

func (Nop) ExamStarted(context.Context, domain.ExamWindow) error                  { return nil }
func (Nop) ExamEnded(context.Context, string) error                               { return nil }
func (Nop) ExamExpired(context.Context, string) error                             { return nil }
func (Nop) SubmissionScored(context.Context, string, domain.QuizResult) error     { return nil }
func (Nop) RankingsChanged(context.Context, string, domain.ClassRankings) error   { return nil }

// BestEffort wraps a Notifier, logging and swallowing failures.
type BestEffort struct {
	Next Notifier
}

func (b BestEffort) ExamStarted(ctx context.Context, window domain.ExamWindow) error {
	if err := b.Next.ExamStarted(ctx, window); err != nil {
		log.Printf("notify exam started %s: %v", window.QuizID, err)
	}
	return nil
}

func (b BestEffort) ExamEnded(ctx context.Context, quizID string) error {
	if err := b.Next.ExamEnded(ctx, quizID); err != nil {
		log.Printf("notify exam ended %s: %v", quizID, err)
	}
	return nil
}

func (b BestEffort) ExamExpired(ctx context.Context, quizID string) error {
	if err := b.Next.ExamExpired(ctx, quizID); err != nil {
		log.Printf("notify exam expired %s: %v", quizID, err)
	}
	return nil
}

func (b BestEffort) SubmissionScored(ctx context.Context, classID string, result domain.QuizResult) error {
	if err := b.Next.SubmissionScored(ctx, classID, result); err != nil {
		log.Printf("notify submission scored quiz=%s student=%s: %v", result.QuizID, result.StudentID, err)
	}
	return nil
}

func (b BestEffort) RankingsChanged(ctx context.Context, classID string, rankings domain.ClassRankings) error {
	if err := b.Next.RankingsChanged(ctx, classID, rankings); err != nil {
		log.Printf("notify rankings changed class=%s: %v", classID, err)
	}
	return nil
}
