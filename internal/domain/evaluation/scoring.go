package evaluation

import "math"

// Average filters out unsubmitted scores and returns the arithmetic mean
// of the rest, or nil when nothing has been submitted. Callers must never
// divide by the raw slice length: a nil entry is "not submitted", not zero.
func Average(scores []*float64) *float64 {
	sum := 0.0
	count := 0
	for _, score := range scores {
		if score == nil {
			continue
		}
		sum += *score
		count++
	}
	if count == 0 {
		return nil
	}
	mean := sum / float64(count)
	return &mean
}

// FinalScore combines the evaluation-level self and manager averages. It
// is defined only when both sides have submitted at least one score;
// a missing side yields nil, never a zero substitute.
func FinalScore(selfAvg, managerAvg *float64) *float64 {
	if selfAvg == nil || managerAvg == nil {
		return nil
	}
	final := *selfAvg*SelfWeight + *managerAvg*ManagerWeight
	return &final
}

// Divergence is the absolute self/manager gap for one answer, display only.
func Divergence(selfScore, managerScore *float64) *float64 {
	if selfScore == nil || managerScore == nil {
		return nil
	}
	gap := math.Abs(*managerScore - *selfScore)
	return &gap
}

// Band labels a score. Bounds are inclusive, checked top-down.
func Band(score *float64) string {
	switch {
	case score == nil:
		return BandPending
	case *score >= 9:
		return BandExcellent
	case *score >= 8:
		return BandVeryGood
	case *score >= 7:
		return BandGood
	case *score >= 6:
		return BandSatisfactory
	default:
		return BandNeedsWork
	}
}

// BuildScorecard derives every aggregate the dashboards consume from one
// evaluation's answer set. Categories keep the order of first appearance
// among the answers, which follows question position.
func BuildScorecard(answers []Answer) Scorecard {
	selfScores := make([]*float64, 0, len(answers))
	managerScores := make([]*float64, 0, len(answers))
	expectedScores := make([]*float64, 0, len(answers))

	byCategory := map[string]int{}
	categories := make([]CategoryScore, 0, 4)
	categorySelf := map[string][]*float64{}
	categoryManager := map[string][]*float64{}
	categoryExpected := map[string][]*float64{}

	for _, answer := range answers {
		expected := answer.Question.ExpectedScore
		selfScores = append(selfScores, answer.SelfScore)
		managerScores = append(managerScores, answer.ManagerScore)
		expectedScores = append(expectedScores, &expected)

		categoryID := answer.Question.CategoryID
		if _, seen := byCategory[categoryID]; !seen {
			byCategory[categoryID] = len(categories)
			categories = append(categories, CategoryScore{
				CategoryID:   categoryID,
				CategoryName: answer.Question.Category.Name,
			})
		}
		categorySelf[categoryID] = append(categorySelf[categoryID], answer.SelfScore)
		categoryManager[categoryID] = append(categoryManager[categoryID], answer.ManagerScore)
		categoryExpected[categoryID] = append(categoryExpected[categoryID], &expected)
	}

	for i := range categories {
		id := categories[i].CategoryID
		categories[i].SelfAverage = Average(categorySelf[id])
		categories[i].ManagerAvg = Average(categoryManager[id])
		categories[i].ExpectedAvg = Average(categoryExpected[id])
	}

	selfAvg := Average(selfScores)
	managerAvg := Average(managerScores)
	final := FinalScore(selfAvg, managerAvg)

	return Scorecard{
		SelfAverage:     selfAvg,
		ManagerAverage:  managerAvg,
		ExpectedAverage: Average(expectedScores),
		FinalScore:      final,
		Band:            Band(final),
		Categories:      categories,
	}
}
