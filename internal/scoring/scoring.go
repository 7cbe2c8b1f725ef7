// Package scoring grades answer sets against a quiz's answer key.
// Grading is pure and side-effect free; malformed entries are skipped
// rather than failing the whole submission.
package scoring

import (
	"quiz-exam-service/internal/domain"
)

// Outcome is the graded view of one submission.
type Outcome struct {
	Score          int
	TotalQuestions int
	Percentage     float64
	Detail         []domain.AnswerDetail
	Feedback       []domain.AnswerFeedback
}

// Score grades answers against the question bank. Answers with an
// out-of-range question index are skipped, not errors; unanswered
// questions simply count against the denominator, which is always the
// full question count.
func Score(questions []domain.Question, answers []domain.Answer) Outcome {
	out := Outcome{
		TotalQuestions: len(questions),
		Detail:         make([]domain.AnswerDetail, 0, len(answers)),
		Feedback:       make([]domain.AnswerFeedback, 0, len(answers)),
	}

	for _, ans := range answers {
		if ans.QuestionIndex < 0 || ans.QuestionIndex >= len(questions) {
			continue
		}
		q := questions[ans.QuestionIndex]
		correct := ans.Selected == q.CorrectAnswer
		if correct {
			out.Score++
		}

		detail := domain.AnswerDetail{
			QuestionIndex: ans.QuestionIndex,
			Question:      q.Prompt,
			Selected:      ans.Selected,
			Correct:       q.CorrectAnswer,
			IsCorrect:     correct,
		}
		out.Detail = append(out.Detail, detail)
		out.Feedback = append(out.Feedback, domain.AnswerFeedback{
			AnswerDetail: detail,
			SelectedText: optionText(q, ans.Selected),
			CorrectText:  optionText(q, q.CorrectAnswer),
			Explanation:  explanation(q, ans.Selected, correct),
		})
	}

	if out.TotalQuestions > 0 {
		out.Percentage = float64(out.Score) / float64(out.TotalQuestions) * 100
	}
	return out
}

// DeriveSubmissionType classifies a submission per the lifecycle rules:
// exam submissions past the window are always timer submissions, and an
// auto flag inside the window also counts as the exam timer firing.
func DeriveSubmissionType(isExamMode, wasAutoSubmitted, timeExpired bool) domain.SubmissionType {
	if isExamMode {
		if timeExpired || wasAutoSubmitted {
			return domain.SubmissionAutoExamTimer
		}
		return domain.SubmissionManual
	}
	if wasAutoSubmitted {
		return domain.SubmissionAutoQuizTimer
	}
	return domain.SubmissionManual
}

func optionText(q domain.Question, label string) string {
	for _, opt := range q.Options {
		if opt.Label == label {
			return opt.Text
		}
	}
	return ""
}

func explanation(q domain.Question, selected string, correct bool) string {
	if correct {
		return q.CorrectExplanation
	}
	if exp, ok := q.WrongExplanations[selected]; ok {
		return exp
	}
	return q.CorrectExplanation
}
