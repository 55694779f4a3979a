package evaluation

import "testing"

func TestRoleStatus(t *testing.T) {
	if got := RoleStatus(nil); got != StatusPending {
		t.Fatalf("empty set: expected %q, got %q", StatusPending, got)
	}
	if got := RoleStatus([]*float64{nil, nil}); got != StatusPending {
		t.Fatalf("no scores: expected %q, got %q", StatusPending, got)
	}
	if got := RoleStatus([]*float64{score(7), nil}); got != StatusPending {
		t.Fatalf("partial scores: expected %q, got %q", StatusPending, got)
	}
	if got := RoleStatus([]*float64{score(7), score(9)}); got != StatusConcluded {
		t.Fatalf("all scores: expected %q, got %q", StatusConcluded, got)
	}
}

func TestOverallStatusIsTwoState(t *testing.T) {
	none := []*float64{nil, nil}
	all := []*float64{score(7), score(9)}

	if got := OverallStatus(none, none); got != StatusPending {
		t.Fatalf("expected %q, got %q", StatusPending, got)
	}
	if got := OverallStatus(all, none); got != StatusPending {
		t.Fatalf("one side done: expected %q, got %q", StatusPending, got)
	}
	if got := OverallStatus(all, all); got != StatusConcluded {
		t.Fatalf("both done: expected %q, got %q", StatusConcluded, got)
	}
}

func TestDisplayStatus(t *testing.T) {
	none := []*float64{nil, nil}
	all := []*float64{score(7), score(9)}
	partial := []*float64{score(7), nil}

	if got := DisplayStatus(none, none); got != StatusPending {
		t.Fatalf("expected %q, got %q", StatusPending, got)
	}
	if got := DisplayStatus(partial, none); got != StatusInProgress {
		t.Fatalf("partial self: expected %q, got %q", StatusInProgress, got)
	}
	if got := DisplayStatus(none, partial); got != StatusInProgress {
		t.Fatalf("partial manager: expected %q, got %q", StatusInProgress, got)
	}
	if got := DisplayStatus(all, all); got != StatusConcluded {
		t.Fatalf("both done: expected %q, got %q", StatusConcluded, got)
	}
}

func TestRecomputeScenario(t *testing.T) {
	ev := Evaluation{Answers: twoQuestionAnswers(score(7), score(9), nil, nil)}
	Recompute(&ev)
	if ev.SelfStatus != StatusConcluded {
		t.Fatalf("expected self status %q, got %q", StatusConcluded, ev.SelfStatus)
	}
	if ev.ManagerStatus != StatusPending {
		t.Fatalf("expected manager status %q, got %q", StatusPending, ev.ManagerStatus)
	}
	if ev.Status != StatusPending {
		t.Fatalf("expected overall status %q, got %q", StatusPending, ev.Status)
	}

	ev.Answers = twoQuestionAnswers(score(7), score(9), score(8), score(10))
	Recompute(&ev)
	if ev.Status != StatusConcluded || ev.ManagerStatus != StatusConcluded {
		t.Fatalf("expected fully concluded, got overall %q manager %q", ev.Status, ev.ManagerStatus)
	}
}
