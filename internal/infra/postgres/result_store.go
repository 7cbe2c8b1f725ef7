package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"quiz-exam-service/internal/domain"
)

// ResultStore persists graded submissions via bun. The unique compound
// index on (quiz_id, student_id) is the authoritative single-attempt
// guard; the service's pre-check is only a fast path.
type ResultStore struct {
	db *bun.DB
}

func NewResultStore(db *bun.DB) *ResultStore {
	return &ResultStore{db: db}
}

type resultRow struct {
	bun.BaseModel `bun:"table:quiz_results"`

	ID               string                `bun:"id,pk"`
	QuizID           string                `bun:"quiz_id"`
	StudentID        string                `bun:"student_id"`
	Score            int                   `bun:"score"`
	TotalQuestions   int                   `bun:"total_questions"`
	Percentage       float64               `bun:"percentage"`
	TimeTakenSeconds int                   `bun:"time_taken_seconds"`
	SubmittedAt      time.Time             `bun:"submitted_at"`
	Answers          []domain.AnswerDetail `bun:"answers,type:jsonb"`
	WasExamMode      bool                  `bun:"was_exam_mode"`
	SubmissionType   string                `bun:"submission_type"`
	ViolationCount   int                   `bun:"violation_count"`
	WasAutoSubmitted bool                  `bun:"was_auto_submitted"`
	GracePeriodsUsed int                   `bun:"grace_periods_used"`
	SecurityStatus   string                `bun:"security_status"`
}

func (s *ResultStore) Insert(ctx context.Context, result domain.QuizResult) error {
	row := toRow(result)
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadySubmitted
		}
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

func (s *ResultStore) Exists(ctx context.Context, quizID, studentID string) (bool, error) {
	exists, err := s.db.NewSelect().Model((*resultRow)(nil)).
		Where("quiz_id = ? AND student_id = ?", quizID, studentID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("check result exists: %w", err)
	}
	return exists, nil
}

func (s *ResultStore) ListByQuiz(ctx context.Context, quizID string) ([]domain.QuizResult, error) {
	var rows []resultRow
	err := s.db.NewSelect().Model(&rows).
		Where("quiz_id = ?", quizID).
		Order("submitted_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return fromRows(rows), nil
}

func (s *ResultStore) ListByQuizzes(ctx context.Context, quizIDs []string) ([]domain.QuizResult, error) {
	if len(quizIDs) == 0 {
		return nil, nil
	}
	var rows []resultRow
	err := s.db.NewSelect().Model(&rows).
		Where("quiz_id IN (?)", bun.In(quizIDs)).
		Order("submitted_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return fromRows(rows), nil
}

// isUniqueViolation matches SQLSTATE 23505 (unique_violation).
func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.Field('C') == "23505"
}

func toRow(result domain.QuizResult) resultRow {
	return resultRow{
		ID:               result.ID,
		QuizID:           result.QuizID,
		StudentID:        result.StudentID,
		Score:            result.Score,
		TotalQuestions:   result.TotalQuestions,
		Percentage:       result.Percentage,
		TimeTakenSeconds: result.TimeTakenSeconds,
		SubmittedAt:      result.SubmittedAt,
		Answers:          result.Answers,
		WasExamMode:      result.WasExamMode,
		SubmissionType:   string(result.SubmissionType),
		ViolationCount:   result.AntiCheat.ViolationCount,
		WasAutoSubmitted: result.AntiCheat.WasAutoSubmitted,
		GracePeriodsUsed: result.AntiCheat.GracePeriodsUsed,
		SecurityStatus:   result.AntiCheat.SecurityStatus,
	}
}

func fromRows(rows []resultRow) []domain.QuizResult {
	out := make([]domain.QuizResult, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.QuizResult{
			ID:               row.ID,
			QuizID:           row.QuizID,
			StudentID:        row.StudentID,
			Score:            row.Score,
			TotalQuestions:   row.TotalQuestions,
			Percentage:       row.Percentage,
			TimeTakenSeconds: row.TimeTakenSeconds,
			SubmittedAt:      row.SubmittedAt,
			Answers:          row.Answers,
			WasExamMode:      row.WasExamMode,
			SubmissionType:   domain.SubmissionType(row.SubmissionType),
			AntiCheat: domain.AntiCheatSignal{
				ViolationCount:   row.ViolationCount,
				WasAutoSubmitted: row.WasAutoSubmitted,
				GracePeriodsUsed: row.GracePeriodsUsed,
				SecurityStatus:   row.SecurityStatus,
			},
		})
	}
	return out
}
