package ranking

import (
	"sort"

	"quiz-exam-service/internal/domain"
)

// Formula is the metadata attached to class rankings.
func Formula() domain.RankingFormula {
	return domain.RankingFormula{
		ScoreWeight:             ScoreWeight,
		EfficiencyWeight:        EfficiencyWeight,
		ParticipationBase:       ParticipationBase,
		ParticipationMultiplier: ParticipationMultiplier,
	}
}

// RankQuiz builds the single-quiz points board: per-result base points
// from percentage and efficiency against that quiz's allocation, no
// participation weighting. Ranks are positional, ties get consecutive
// distinct ranks.
func RankQuiz(results []domain.QuizResult, allocatedSeconds int) []domain.QuizRankingEntry {
	entries := make([]domain.QuizRankingEntry, 0, len(results))
	for _, res := range results {
		eff := TimeEfficiency(res.TimeTakenSeconds, allocatedSeconds)
		entries = append(entries, domain.QuizRankingEntry{
			StudentID:      res.StudentID,
			Score:          res.Score,
			Percentage:     res.Percentage,
			TimeEfficiency: eff,
			Points:         BasePoints(res.Percentage, eff),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Points > entries[j].Points
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// RankClass builds the aggregate class board. Each result's efficiency
// is computed against its own quiz's allocation, then averaged per
// student; students with no submissions never appear. availableQuizzes
// is the live denominator for participation.
func RankClass(results []domain.QuizResult, allocatedSecondsByQuiz map[string]int, availableQuizzes int) []domain.ClassRankingEntry {
	type agg struct {
		count     int
		scoreSum  float64
		effSum    float64
		studentID string
	}
	byStudent := make(map[string]*agg)
	order := make([]string, 0)
	for _, res := range results {
		a, ok := byStudent[res.StudentID]
		if !ok {
			a = &agg{studentID: res.StudentID}
			byStudent[res.StudentID] = a
			order = append(order, res.StudentID)
		}
		a.count++
		a.scoreSum += res.Percentage
		a.effSum += TimeEfficiency(res.TimeTakenSeconds, allocatedSecondsByQuiz[res.QuizID])
	}

	entries := make([]domain.ClassRankingEntry, 0, len(byStudent))
	for _, id := range order {
		a := byStudent[id]
		avgScore := a.scoreSum / float64(a.count)
		avgEff := a.effSum / float64(a.count)
		participation := ParticipationRate(a.count, availableQuizzes)
		entries = append(entries, domain.ClassRankingEntry{
			StudentID:             a.studentID,
			TotalQuizzes:          a.count,
			AverageScore:          round1(avgScore),
			AverageTimeEfficiency: round1(avgEff),
			ParticipationRate:     round1(participation),
			BasePoints:            BasePoints(avgScore, avgEff),
			FinalPoints:           FinalPoints(avgScore, avgEff, participation),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].FinalPoints > entries[j].FinalPoints
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// RankLectureResults is the teacher-facing raw board: percentage
// descending, faster submission wins ties. Deliberately simpler than
// the points boards; the two rules are not meant to agree.
func RankLectureResults(results []domain.QuizResult) []domain.LectureResult {
	entries := make([]domain.LectureResult, 0, len(results))
	for _, res := range results {
		entries = append(entries, domain.LectureResult{
			StudentID:        res.StudentID,
			Score:            res.Score,
			Percentage:       res.Percentage,
			TimeTakenSeconds: res.TimeTakenSeconds,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Percentage != entries[j].Percentage {
			return entries[i].Percentage > entries[j].Percentage
		}
		return entries[i].TimeTakenSeconds < entries[j].TimeTakenSeconds
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
