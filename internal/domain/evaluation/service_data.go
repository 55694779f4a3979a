package evaluation

import (
	"context"
	"time"
)

// Instantiate binds one employee/evaluator pair to a template on a date.
// The answer set is created up front, one row per question, and never
// grows or shrinks afterwards.
func (s *Service) Instantiate(ctx context.Context, tenantID, employeeID, evaluatorID, templateID string, date time.Time) (Evaluation, error) {
	if evaluatorID == "" {
		managerID, err := s.store.ManagerIDByEmployeeID(ctx, tenantID, employeeID)
		if err != nil {
			return Evaluation{}, err
		}
		if managerID == "" {
			return Evaluation{}, ErrNoEvaluator
		}
		evaluatorID = managerID
	}

	for _, id := range []string{employeeID, evaluatorID} {
		exists, err := s.store.EmployeeExists(ctx, tenantID, id)
		if err != nil {
			return Evaluation{}, err
		}
		if !exists {
			return Evaluation{}, ErrEmployeeNotFound
		}
	}

	template, err := s.store.GetTemplate(ctx, tenantID, templateID)
	if err != nil {
		return Evaluation{}, err
	}
	if len(template.Questions) == 0 {
		return Evaluation{}, ErrTemplateNoQuestion
	}

	ev := Instantiate(employeeID, evaluatorID, template, date)
	if err := s.store.InsertEvaluation(ctx, tenantID, ev); err != nil {
		return Evaluation{}, err
	}
	decorate(&ev)
	return ev, nil
}

// Get returns the evaluation fully hydrated with derived scores. Derived
// state is always recomputed here, never trusted from storage or clients.
func (s *Service) Get(ctx context.Context, tenantID, evaluationID string) (Evaluation, error) {
	ev, err := s.store.GetEvaluation(ctx, tenantID, evaluationID)
	if err != nil {
		return Evaluation{}, err
	}
	Recompute(&ev)
	decorate(&ev)
	return ev, nil
}

func (s *Service) List(ctx context.Context, tenantID, employeeID, evaluatorID string) ([]Summary, error) {
	return s.store.ListEvaluations(ctx, tenantID, employeeID, evaluatorID)
}

// Update applies a role-partitioned patch on behalf of the acting
// employee. The whole write is accepted or rejected as a unit; the stale
// version check runs both in memory and again at the database predicate.
func (s *Service) Update(ctx context.Context, tenantID, actorEmployeeID, evaluationID string, req UpdateRequest) (Evaluation, error) {
	ev, err := s.store.GetEvaluation(ctx, tenantID, evaluationID)
	if err != nil {
		return Evaluation{}, err
	}

	role, err := ActorRole(&ev, actorEmployeeID)
	if err != nil {
		return Evaluation{}, err
	}

	expectedVersion := ev.Version
	if err := ApplyUpdate(&ev, role, req); err != nil {
		return Evaluation{}, err
	}

	if err := s.store.SaveEvaluation(ctx, tenantID, ev, expectedVersion); err != nil {
		return Evaluation{}, err
	}
	decorate(&ev)
	return ev, nil
}

func (s *Service) Delete(ctx context.Context, tenantID, evaluationID string) error {
	return s.store.DeleteEvaluation(ctx, tenantID, evaluationID)
}

func decorate(ev *Evaluation) {
	for i := range ev.Answers {
		ev.Answers[i].Divergence = Divergence(ev.Answers[i].SelfScore, ev.Answers[i].ManagerScore)
	}
	scores := BuildScorecard(ev.Answers)
	ev.Scores = &scores
}
