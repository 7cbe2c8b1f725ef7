package app

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"quiz-exam-service/internal/domain"
	"quiz-exam-service/internal/exam"
	"quiz-exam-service/internal/notify"
	"quiz-exam-service/internal/ranking"
	"quiz-exam-service/internal/scoring"
)

// QuizStore abstracts quiz state persistence. Exam transitions are
// conditional writes so concurrent starts/ends linearize in storage:
// exactly one of two racing transitions wins, the loser gets a typed
// error back.
type QuizStore interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	ListClassQuizzes(ctx context.Context, classID string) ([]domain.Quiz, error)
	// BeginExam transitions scheduled (or plain) -> active, recording the
	// window and duration. Fails with ErrExamAlreadyActive if an exam is
	// in progress and ErrInvalidTransition if it already ended.
	BeginExam(ctx context.Context, quizID string, durationMinutes int, start, end time.Time) error
	// EndExam sets status ended from scheduled or active; ending an ended
	// exam is a no-op.
	EndExam(ctx context.Context, quizID string) error
	// MarkExamExpired flips active -> ended once the window has passed.
	// Idempotent, so racing readers persisting the same expiry are harmless.
	MarkExamExpired(ctx context.Context, quizID string, now time.Time) error
}

// QuestionSource supplies the immutable question bank, typically
// through a cache in front of the quiz store.
type QuestionSource interface {
	GetQuestions(ctx context.Context, quizID string) (domain.QuestionBank, error)
}

// ResultStore persists graded submissions. Insert must enforce the
// one-result-per-(quiz,student) invariant and surface violations as
// ErrAlreadySubmitted.
type ResultStore interface {
	Insert(ctx context.Context, result domain.QuizResult) error
	Exists(ctx context.Context, quizID, studentID string) (bool, error)
	ListByQuiz(ctx context.Context, quizID string) ([]domain.QuizResult, error)
	ListByQuizzes(ctx context.Context, quizIDs []string) ([]domain.QuizResult, error)
}

// EnrollmentProvider is the read-only view onto class membership owned
// by the class-management collaborator.
type EnrollmentProvider interface {
	IsEnrolled(ctx context.Context, studentID, classID string) (bool, error)
	// ParticipationDenominator is the current count of active quizzes in
	// the class. It is deliberately live, not a snapshot.
	ParticipationDenominator(ctx context.Context, classID string) (int, error)
}

// ExamService contains the exam lifecycle, submission, and ranking use cases.
type ExamService struct {
	quizzes     QuizStore
	questions   QuestionSource
	results     ResultStore
	enrollments EnrollmentProvider
	notifier    notify.Notifier
	now         func() time.Time
}

func NewExamService(quizzes QuizStore, questions QuestionSource, results ResultStore, enrollments EnrollmentProvider, notifier notify.Notifier) *ExamService {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &ExamService{
		quizzes:     quizzes,
		questions:   questions,
		results:     results,
		enrollments: enrollments,
		notifier:    notify.BestEffort{Next: notifier},
		now:         time.Now,
	}
}

// NewExamServiceWithClock is test-only for deterministic time.
func NewExamServiceWithClock(quizzes QuizStore, questions QuestionSource, results ResultStore, enrollments EnrollmentProvider, notifier notify.Notifier, now func() time.Time) *ExamService {
	s := NewExamService(quizzes, questions, results, enrollments, notifier)
	s.now = now
	return s
}

// StartExam opens the exam window for a quiz. A double start resolves
// to one winner; the loser sees ErrExamAlreadyActive.
func (s *ExamService) StartExam(ctx context.Context, quizID string, durationMinutes int) (domain.ExamWindow, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.ExamWindow{}, err
	}
	now := s.now()
	quiz = s.persistExpiry(ctx, quiz, now)

	if err := exam.CanStart(exam.ObservedStatus(quiz, now)); err != nil {
		return domain.ExamWindow{}, err
	}

	start, end := exam.StartWindow(now, durationMinutes)
	if err := s.quizzes.BeginExam(ctx, quizID, durationMinutes, start, end); err != nil {
		return domain.ExamWindow{}, err
	}

	window := domain.ExamWindow{QuizID: quizID, StartTime: start, EndTime: end}
	_ = s.notifier.ExamStarted(ctx, window)
	return window, nil
}

// EndExam closes the exam. Valid from active or scheduled (teacher
// cancels early); calling it on an ended exam succeeds without change.
func (s *ExamService) EndExam(ctx context.Context, quizID string) error {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return err
	}
	now := s.now()
	status := exam.ObservedStatus(quiz, now)
	if err := exam.CanEnd(status); err != nil {
		return err
	}
	if err := s.quizzes.EndExam(ctx, quizID); err != nil {
		return err
	}
	if status != domain.ExamStatusEnded {
		_ = s.notifier.ExamEnded(ctx, quizID)
	}
	return nil
}

// GetExamStatus reports the observed status and remaining seconds.
// Observing an expired window persists the ended status so later raw
// reads agree without re-deriving it.
func (s *ExamService) GetExamStatus(ctx context.Context, quizID string) (domain.ExamState, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.ExamState{}, err
	}
	now := s.now()
	quiz = s.persistExpiry(ctx, quiz, now)
	return domain.ExamState{
		QuizID:               quizID,
		Status:               exam.ObservedStatus(quiz, now),
		TimeRemainingSeconds: exam.TimeRemaining(quiz, now),
	}, nil
}

// SubmitQuiz validates, grades, and persists a single attempt. The
// duplicate pre-check is a fast path only; the result store's
// uniqueness constraint is what actually guarantees at most one result
// per (quiz, student) under concurrent double submission.
func (s *ExamService) SubmitQuiz(ctx context.Context, quizID, studentID string, answers []domain.Answer, timeTakenSeconds int, signal domain.AntiCheatSignal) (domain.SubmissionReceipt, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.SubmissionReceipt{}, err
	}
	now := s.now()
	quiz = s.persistExpiry(ctx, quiz, now)

	enrolled := true
	if quiz.ClassID != "" {
		enrolled, err = s.enrollments.IsEnrolled(ctx, studentID, quiz.ClassID)
		if err != nil {
			return domain.SubmissionReceipt{}, err
		}
	}
	submitted, err := s.results.Exists(ctx, quizID, studentID)
	if err != nil {
		return domain.SubmissionReceipt{}, err
	}

	if err := exam.CanSubmit(quiz, exam.Admission{
		Now:              now,
		Enrolled:         enrolled,
		AlreadySubmitted: submitted,
		Signal:           signal,
	}); err != nil {
		return domain.SubmissionReceipt{}, err
	}

	bank, err := s.questions.GetQuestions(ctx, quizID)
	if err != nil {
		return domain.SubmissionReceipt{}, err
	}

	outcome := scoring.Score(bank.Questions, answers)
	timeExpired := quiz.IsExamMode && exam.TimeRemaining(quiz, now) <= 0
	subType := scoring.DeriveSubmissionType(quiz.IsExamMode, signal.WasAutoSubmitted, timeExpired)

	result := domain.QuizResult{
		ID:               uuid.NewString(),
		QuizID:           quizID,
		StudentID:        studentID,
		Score:            outcome.Score,
		TotalQuestions:   outcome.TotalQuestions,
		Percentage:       outcome.Percentage,
		TimeTakenSeconds: timeTakenSeconds,
		SubmittedAt:      now,
		Answers:          outcome.Detail,
		WasExamMode:      quiz.IsExamMode,
		SubmissionType:   subType,
		AntiCheat:        signal,
	}
	if err := s.results.Insert(ctx, result); err != nil {
		return domain.SubmissionReceipt{}, err
	}

	if quiz.ClassID != "" {
		_ = s.notifier.SubmissionScored(ctx, quiz.ClassID, result)
		if rankings, err := s.GetClassRankings(ctx, quiz.ClassID); err != nil {
			log.Printf("recompute class rankings %s: %v", quiz.ClassID, err)
		} else {
			_ = s.notifier.RankingsChanged(ctx, quiz.ClassID, rankings)
		}
	}

	return domain.SubmissionReceipt{
		ResultID:       result.ID,
		Score:          result.Score,
		TotalQuestions: result.TotalQuestions,
		Percentage:     result.Percentage,
		SubmissionType: result.SubmissionType,
		Feedback:       outcome.Feedback,
	}, nil
}

// GetQuizRankings returns the single-quiz points board.
func (s *ExamService) GetQuizRankings(ctx context.Context, quizID string) ([]domain.QuizRankingEntry, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	results, err := s.results.ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	return ranking.RankQuiz(results, quiz.AllocatedSeconds()), nil
}

// GetClassRankings returns the aggregate participation-weighted board
// with its formula metadata.
func (s *ExamService) GetClassRankings(ctx context.Context, classID string) (domain.ClassRankings, error) {
	quizzes, err := s.quizzes.ListClassQuizzes(ctx, classID)
	if err != nil {
		return domain.ClassRankings{}, err
	}
	ids := make([]string, 0, len(quizzes))
	alloc := make(map[string]int, len(quizzes))
	for _, q := range quizzes {
		ids = append(ids, q.ID)
		alloc[q.ID] = q.AllocatedSeconds()
	}
	results, err := s.results.ListByQuizzes(ctx, ids)
	if err != nil {
		return domain.ClassRankings{}, err
	}
	available, err := s.enrollments.ParticipationDenominator(ctx, classID)
	if err != nil {
		return domain.ClassRankings{}, err
	}
	return domain.ClassRankings{
		ClassID: classID,
		Entries: ranking.RankClass(results, alloc, available),
		Formula: ranking.Formula(),
	}, nil
}

// GetLectureResults returns the teacher-facing raw board for one quiz.
func (s *ExamService) GetLectureResults(ctx context.Context, quizID string) ([]domain.LectureResult, error) {
	if _, err := s.quizzes.GetQuiz(ctx, quizID); err != nil {
		return nil, err
	}
	results, err := s.results.ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	return ranking.RankLectureResults(results), nil
}

// persistExpiry applies lazy expiry: the first reader to observe a
// passed window flips the stored status and emits the expired event.
// The returned quiz reflects the flip.
func (s *ExamService) persistExpiry(ctx context.Context, quiz domain.Quiz, now time.Time) domain.Quiz {
	if !exam.Expired(quiz, now) {
		return quiz
	}
	if err := s.quizzes.MarkExamExpired(ctx, quiz.ID, now); err != nil {
		log.Printf("persist exam expiry %s: %v", quiz.ID, err)
		return quiz
	}
	quiz.ExamStatus = domain.ExamStatusEnded
	_ = s.notifier.ExamExpired(ctx, quiz.ID)
	return quiz
}
