package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-exam-service/internal/domain"
)

// QuizStore persists quiz state in Postgres. Exam transitions are
// single conditional UPDATEs keyed on the current status, so a
// double-start or a start racing an end resolves to exactly one winner
// inside the database.
type QuizStore struct {
	pool *pgxpool.Pool
}

func NewQuizStore(pool *pgxpool.Pool) *QuizStore {
	return &QuizStore{pool: pool}
}

const quizColumns = `id, title, owner_id, COALESCE(class_id, ''), duration_minutes,
	is_exam_mode, exam_duration_minutes, exam_status, exam_start_time, exam_end_time,
	is_active, created_at`

func (s *QuizStore) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+quizColumns+` FROM quizzes WHERE id=$1`, quizID)
	quiz, err := scanQuiz(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	return quiz, nil
}

func (s *QuizStore) ListClassQuizzes(ctx context.Context, classID string) ([]domain.Quiz, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+quizColumns+` FROM quizzes WHERE class_id=$1 AND is_active ORDER BY created_at, id`, classID)
	if err != nil {
		return nil, fmt.Errorf("list class quizzes: %w", err)
	}
	defer rows.Close()

	quizzes := make([]domain.Quiz, 0)
	for rows.Next() {
		quiz, err := scanQuiz(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		quizzes = append(quizzes, quiz)
	}
	return quizzes, rows.Err()
}

func (s *QuizStore) BeginExam(ctx context.Context, quizID string, durationMinutes int, start, end time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE quizzes
		SET is_exam_mode=true, exam_duration_minutes=$2, exam_status=$3,
		    exam_start_time=$4, exam_end_time=$5
		WHERE id=$1 AND exam_status IN ($6, $7)`,
		quizID, durationMinutes, string(domain.ExamStatusActive), start, end,
		string(domain.ExamStatusNone), string(domain.ExamStatusScheduled))
	if err != nil {
		return fmt.Errorf("begin exam: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	// Lost the conditional update; re-read to report why.
	quiz, err := s.GetQuiz(ctx, quizID)
	if err != nil {
		return err
	}
	if quiz.ExamStatus == domain.ExamStatusActive {
		return domain.ErrExamAlreadyActive
	}
	return domain.ErrInvalidTransition
}

func (s *QuizStore) EndExam(ctx context.Context, quizID string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE quizzes SET exam_status=$2
		WHERE id=$1 AND is_exam_mode`,
		quizID, string(domain.ExamStatusEnded))
	if err != nil {
		return fmt.Errorf("end exam: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	if _, err := s.GetQuiz(ctx, quizID); err != nil {
		return err
	}
	return domain.ErrInvalidTransition
}

func (s *QuizStore) MarkExamExpired(ctx context.Context, quizID string, now time.Time) error {
	// Idempotent by construction: once flipped, the predicate no longer
	// matches and concurrent observers exec a no-op.
	_, err := s.pool.Exec(ctx, `
		UPDATE quizzes SET exam_status=$2
		WHERE id=$1 AND exam_status=$3 AND exam_end_time < $4`,
		quizID, string(domain.ExamStatusEnded), string(domain.ExamStatusActive), now)
	if err != nil {
		return fmt.Errorf("mark exam expired: %w", err)
	}
	return nil
}

// LoadQuestionBank reads the jsonb question bank; status reads skip it
// so polling stays cheap.
func (s *QuizStore) LoadQuestionBank(ctx context.Context, quizID string) (domain.QuestionBank, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT questions FROM quizzes WHERE id=$1`, quizID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.QuestionBank{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.QuestionBank{}, fmt.Errorf("load question bank: %w", err)
	}
	var questions []domain.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return domain.QuestionBank{}, fmt.Errorf("unmarshal questions: %w", err)
	}
	return domain.QuestionBank{QuizID: quizID, Questions: questions}, nil
}

func scanQuiz(row pgx.Row) (domain.Quiz, error) {
	var (
		quiz   domain.Quiz
		status string
		start  *time.Time
		end    *time.Time
	)
	err := row.Scan(&quiz.ID, &quiz.Title, &quiz.OwnerID, &quiz.ClassID, &quiz.DurationMinutes,
		&quiz.IsExamMode, &quiz.ExamDurationMinutes, &status, &start, &end,
		&quiz.IsActive, &quiz.CreatedAt)
	if err != nil {
		return domain.Quiz{}, err
	}
	quiz.ExamStatus = domain.ExamStatus(status)
	quiz.ExamStartTime = start
	quiz.ExamEndTime = end
	return quiz, nil
}
