package domain

import "time"

// ExamStatus tracks where a quiz sits in its exam lifecycle.
// Non-exam quizzes keep the empty status and bypass all exam checks.
type ExamStatus string

const (
	ExamStatusNone      ExamStatus = ""
	ExamStatusScheduled ExamStatus = "scheduled"
	ExamStatusActive    ExamStatus = "active"
	ExamStatusEnded     ExamStatus = "ended"
)

// SubmissionType records how a submission reached the server.
type SubmissionType string

const (
	SubmissionManual        SubmissionType = "manual"
	SubmissionAutoExamTimer SubmissionType = "auto_exam_timer"
	SubmissionAutoQuizTimer SubmissionType = "auto_quiz_timer"
)

// Option is one of the four labeled choices of a question.
type Option struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Question models an MCQ question with exactly one correct label.
// Questions are immutable after quiz creation.
type Question struct {
	Prompt             string            `json:"prompt"`
	Options            []Option          `json:"options"`
	CorrectAnswer      string            `json:"correctAnswer"`
	WrongExplanations  map[string]string `json:"wrongExplanations,omitempty"`
	CorrectExplanation string            `json:"correctExplanation,omitempty"`
}

// Quiz is the question bank plus its exam configuration and mutable
// exam state. Exam status and timestamps are mutated only through the
// quiz store's conditional transitions.
type Quiz struct {
	ID                  string     `json:"id"`
	Title               string     `json:"title"`
	OwnerID             string     `json:"ownerId"`
	ClassID             string     `json:"classId,omitempty"`
	Questions           []Question `json:"questions"`
	DurationMinutes     int        `json:"durationMinutes"`
	IsExamMode          bool       `json:"isExamMode"`
	ExamDurationMinutes int        `json:"examDurationMinutes"`
	ExamStatus          ExamStatus `json:"examStatus"`
	ExamStartTime       *time.Time `json:"examStartTime,omitempty"`
	ExamEndTime         *time.Time `json:"examEndTime,omitempty"`
	IsActive            bool       `json:"isActive"`
	CreatedAt           time.Time  `json:"createdAt"`
}

// AllocatedSeconds is the time budget a submission is graded against:
// the exam window when the quiz runs as an exam, the practice duration
// otherwise.
func (q Quiz) AllocatedSeconds() int {
	if q.IsExamMode && q.ExamDurationMinutes > 0 {
		return q.ExamDurationMinutes * 60
	}
	return q.DurationMinutes * 60
}

// QuestionBank is the immutable slice of a quiz that scoring needs.
// It is safe to cache, unlike the quiz's exam state.
type QuestionBank struct {
	QuizID    string     `json:"quizId"`
	Questions []Question `json:"questions"`
}

// Answer is a single submitted answer, addressed by question index.
type Answer struct {
	QuestionIndex int    `json:"questionIndex"`
	Selected      string `json:"selected"`
}

// AnswerDetail is the minimal per-question record persisted with a result.
type AnswerDetail struct {
	QuestionIndex int    `json:"questionIndex"`
	Question      string `json:"question"`
	Selected      string `json:"selected"`
	Correct       string `json:"correct"`
	IsCorrect     bool   `json:"isCorrect"`
}

// AnswerFeedback is the richer per-question view returned to the student
// right after grading; it is never stored.
type AnswerFeedback struct {
	AnswerDetail
	SelectedText string `json:"selectedText"`
	CorrectText  string `json:"correctText"`
	Explanation  string `json:"explanation"`
}

// AntiCheatSignal is what the client reports alongside a submission.
type AntiCheatSignal struct {
	ViolationCount   int    `json:"violationCount"`
	WasAutoSubmitted bool   `json:"wasAutoSubmitted"`
	GracePeriodsUsed int    `json:"gracePeriodsUsed"`
	SecurityStatus   string `json:"securityStatus"`
}

// QuizResult is the single attempt record for a (quiz, student) pair.
// It is created exactly once and never updated; uniqueness is enforced
// by the result store.
type QuizResult struct {
	ID               string          `json:"id"`
	QuizID           string          `json:"quizId"`
	StudentID        string          `json:"studentId"`
	Score            int             `json:"score"`
	TotalQuestions   int             `json:"totalQuestions"`
	Percentage       float64         `json:"percentage"`
	TimeTakenSeconds int             `json:"timeTakenSeconds"`
	SubmittedAt      time.Time       `json:"submittedAt"`
	Answers          []AnswerDetail  `json:"answers"`
	WasExamMode      bool            `json:"wasExamMode"`
	SubmissionType   SubmissionType  `json:"submissionType"`
	AntiCheat        AntiCheatSignal `json:"antiCheat"`
}

// ClassEnrollment ties a student to a class. Rows are owned by the
// class-management collaborator; this core only reads them.
type ClassEnrollment struct {
	ClassID   string `json:"classId"`
	StudentID string `json:"studentId"`
	IsActive  bool   `json:"isActive"`
}

// ExamWindow is returned when an exam is started.
type ExamWindow struct {
	QuizID    string    `json:"quizId"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

// ExamState is the observed status of a quiz's exam at a point in time.
type ExamState struct {
	QuizID               string     `json:"quizId"`
	Status               ExamStatus `json:"status"`
	TimeRemainingSeconds int        `json:"timeRemainingSeconds"`
}

// QuizRankingEntry is one row of the per-quiz points board.
type QuizRankingEntry struct {
	StudentID      string  `json:"studentId"`
	Score          int     `json:"score"`
	Percentage     float64 `json:"percentage"`
	TimeEfficiency float64 `json:"timeEfficiency"`
	Points         float64 `json:"points"`
	Rank           int     `json:"rank"`
}

// ClassRankingEntry is one row of the aggregate class board.
type ClassRankingEntry struct {
	StudentID             string  `json:"studentId"`
	TotalQuizzes          int     `json:"totalQuizzes"`
	AverageScore          float64 `json:"averageScore"`
	AverageTimeEfficiency float64 `json:"averageTimeEfficiency"`
	ParticipationRate     float64 `json:"participationRate"`
	BasePoints            float64 `json:"basePoints"`
	FinalPoints           float64 `json:"finalPoints"`
	Rank                  int     `json:"rank"`
}

// RankingFormula documents the weights behind class rankings so clients
// can render the breakdown without hardcoding them.
type RankingFormula struct {
	ScoreWeight             float64 `json:"scoreWeight"`
	EfficiencyWeight        float64 `json:"efficiencyWeight"`
	ParticipationBase       float64 `json:"participationBase"`
	ParticipationMultiplier float64 `json:"participationMultiplier"`
}

// ClassRankings bundles the ordered board with its formula metadata.
type ClassRankings struct {
	ClassID string              `json:"classId"`
	Entries []ClassRankingEntry `json:"entries"`
	Formula RankingFormula      `json:"formula"`
}

// LectureResult is one row of the teacher-facing raw results board,
// ranked by percentage then speed.
type LectureResult struct {
	StudentID        string  `json:"studentId"`
	Score            int     `json:"score"`
	Percentage       float64 `json:"percentage"`
	TimeTakenSeconds int     `json:"timeTakenSeconds"`
	Rank             int     `json:"rank"`
}

// SubmissionReceipt is what the student gets back after a graded submission.
type SubmissionReceipt struct {
	ResultID       string           `json:"resultId"`
	Score          int              `json:"score"`
	TotalQuestions int              `json:"totalQuestions"`
	Percentage     float64          `json:"percentage"`
	SubmissionType SubmissionType   `json:"submissionType"`
	Feedback       []AnswerFeedback `json:"feedback"`
}
