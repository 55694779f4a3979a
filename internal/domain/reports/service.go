package reports

import (
	"context"

	"perfeval/internal/domain/evaluation"
)

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

// Stats is the pre-aggregated dashboard projection over all evaluations.
// It reuses the same aggregation engine the evaluation reads use, so the
// dashboard can never drift from the per-evaluation numbers.
type Stats struct {
	Evaluations       int            `json:"evaluations"`
	Templates         int            `json:"templates"`
	ByStatus          map[string]int `json:"byStatus"`
	CompletionRate    float64        `json:"completionRate"`
	AverageFinalScore *float64       `json:"averageFinalScore"`
	BandDistribution  map[string]int `json:"bandDistribution"`
}

func (s *Service) EvaluationStats(ctx context.Context, tenantID string) (Stats, error) {
	rows, err := s.store.AnswerScores(ctx, tenantID)
	if err != nil {
		return Stats{}, err
	}
	templates, err := s.store.TemplateCount(ctx, tenantID)
	if err != nil {
		return Stats{}, err
	}
	stats := buildStats(rows)
	stats.Templates = templates
	return stats, nil
}

func buildStats(rows []AnswerScoreRow) Stats {
	selfByEval := map[string][]*float64{}
	managerByEval := map[string][]*float64{}
	order := make([]string, 0, 16)
	for _, row := range rows {
		if _, seen := selfByEval[row.EvaluationID]; !seen {
			order = append(order, row.EvaluationID)
		}
		selfByEval[row.EvaluationID] = append(selfByEval[row.EvaluationID], row.SelfScore)
		managerByEval[row.EvaluationID] = append(managerByEval[row.EvaluationID], row.ManagerScore)
	}

	stats := Stats{
		Evaluations:      len(order),
		ByStatus:         map[string]int{},
		BandDistribution: map[string]int{},
	}

	finalSum := 0.0
	finalCount := 0
	concluded := 0
	for _, id := range order {
		selfScores := selfByEval[id]
		managerScores := managerByEval[id]

		status := evaluation.DisplayStatus(selfScores, managerScores)
		stats.ByStatus[status]++
		if evaluation.OverallStatus(selfScores, managerScores) == evaluation.StatusConcluded {
			concluded++
		}

		final := evaluation.FinalScore(evaluation.Average(selfScores), evaluation.Average(managerScores))
		stats.BandDistribution[evaluation.Band(final)]++
		if final != nil {
			finalSum += *final
			finalCount++
		}
	}

	if stats.Evaluations > 0 {
		stats.CompletionRate = float64(concluded) / float64(stats.Evaluations)
	}
	if finalCount > 0 {
		avg := finalSum / float64(finalCount)
		stats.AverageFinalScore = &avg
	}
	return stats
}
