package reports

import (
	"math"
	"testing"

	"perfeval/internal/domain/evaluation"
)

func score(v float64) *float64 {
	return &v
}

func TestBuildStats(t *testing.T) {
	rows := []AnswerScoreRow{
		// ev-1: both sides complete, self avg 8, manager avg 9, final 8.6.
		{EvaluationID: "ev-1", SelfScore: score(7), ManagerScore: score(8)},
		{EvaluationID: "ev-1", SelfScore: score(9), ManagerScore: score(10)},
		// ev-2: self done, manager untouched.
		{EvaluationID: "ev-2", SelfScore: score(6), ManagerScore: nil},
		{EvaluationID: "ev-2", SelfScore: score(7), ManagerScore: nil},
		// ev-3: nothing submitted yet.
		{EvaluationID: "ev-3", SelfScore: nil, ManagerScore: nil},
	}

	stats := buildStats(rows)

	if stats.Evaluations != 3 {
		t.Fatalf("expected 3 evaluations, got %d", stats.Evaluations)
	}
	if stats.ByStatus[evaluation.StatusConcluded] != 1 ||
		stats.ByStatus[evaluation.StatusInProgress] != 1 ||
		stats.ByStatus[evaluation.StatusPending] != 1 {
		t.Fatalf("unexpected status distribution: %+v", stats.ByStatus)
	}
	if math.Abs(stats.CompletionRate-1.0/3.0) > 1e-9 {
		t.Fatalf("expected completion rate 1/3, got %v", stats.CompletionRate)
	}
	if stats.AverageFinalScore == nil || math.Abs(*stats.AverageFinalScore-8.6) > 1e-9 {
		t.Fatalf("expected average final score 8.6, got %v", stats.AverageFinalScore)
	}
	if stats.BandDistribution[evaluation.BandVeryGood] != 1 {
		t.Fatalf("expected one %q evaluation, got %+v", evaluation.BandVeryGood, stats.BandDistribution)
	}
	if stats.BandDistribution[evaluation.BandPending] != 2 {
		t.Fatalf("expected two pending bands, got %+v", stats.BandDistribution)
	}
}

func TestBuildStatsEmpty(t *testing.T) {
	stats := buildStats(nil)
	if stats.Evaluations != 0 || stats.CompletionRate != 0 {
		t.Fatalf("unexpected stats for empty input: %+v", stats)
	}
	if stats.AverageFinalScore != nil {
		t.Fatalf("expected nil average final score, got %v", *stats.AverageFinalScore)
	}
}
