package evaluation

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) EmployeeExists(ctx context.Context, tenantID, employeeID string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM employees WHERE tenant_id = $1 AND id = $2", tenantID, employeeID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) EmployeeIDByUserID(ctx context.Context, tenantID, userID string) (string, error) {
	var employeeID string
	err := s.DB.QueryRow(ctx, "SELECT id FROM employees WHERE tenant_id = $1 AND user_id = $2", tenantID, userID).Scan(&employeeID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrEmployeeNotFound
	}
	if err != nil {
		return "", err
	}
	return employeeID, nil
}

func (s *Store) ManagerIDByEmployeeID(ctx context.Context, tenantID, employeeID string) (string, error) {
	var managerID *string
	err := s.DB.QueryRow(ctx, "SELECT manager_id FROM employees WHERE tenant_id = $1 AND id = $2", tenantID, employeeID).Scan(&managerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrEmployeeNotFound
	}
	if err != nil {
		return "", err
	}
	if managerID == nil {
		return "", nil
	}
	return *managerID, nil
}

func (s *Store) InsertEvaluation(ctx context.Context, tenantID string, ev Evaluation) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
    INSERT INTO evaluations (id, tenant_id, employee_id, evaluator_id, template_id, eval_date, status, self_status, manager_status, version)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
  `, ev.ID, tenantID, ev.EmployeeID, ev.EvaluatorID, ev.TemplateID, ev.Date, ev.Status, ev.SelfStatus, ev.ManagerStatus, ev.Version); err != nil {
		return err
	}

	for _, answer := range ev.Answers {
		if _, err := tx.Exec(ctx, `
      INSERT INTO evaluation_answers (id, tenant_id, evaluation_id, question_id)
      VALUES ($1,$2,$3,$4)
    `, answer.ID, tenantID, ev.ID, answer.QuestionID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *Store) GetEvaluation(ctx context.Context, tenantID, evaluationID string) (Evaluation, error) {
	var ev Evaluation
	err := s.DB.QueryRow(ctx, `
    SELECT id, employee_id, evaluator_id, template_id, eval_date, status, self_status, manager_status,
           self_strengths, self_improvements, self_goals,
           manager_strengths, manager_improvements, manager_goals, version
    FROM evaluations
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, evaluationID).Scan(
		&ev.ID, &ev.EmployeeID, &ev.EvaluatorID, &ev.TemplateID, &ev.Date, &ev.Status, &ev.SelfStatus, &ev.ManagerStatus,
		&ev.SelfStrengths, &ev.SelfImprovements, &ev.SelfGoals,
		&ev.ManagerStrengths, &ev.ManagerImprovements, &ev.ManagerGoals, &ev.Version,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Evaluation{}, ErrEvaluationNotFound
	}
	if err != nil {
		return Evaluation{}, err
	}

	// Answers are always loaded fully hydrated with their question and
	// category so consumers never see a partially populated record.
	rows, err := s.DB.Query(ctx, `
    SELECT a.id, a.question_id, a.self_score, a.self_comment, a.manager_score, a.manager_comment,
           q.text, q.category_id, q.expected_score, q.position,
           c.name, c.description
    FROM evaluation_answers a
    JOIN evaluation_questions q ON q.id = a.question_id
    JOIN categories c ON c.id = q.category_id
    WHERE a.tenant_id = $1 AND a.evaluation_id = $2
    ORDER BY q.position
  `, tenantID, evaluationID)
	if err != nil {
		return Evaluation{}, err
	}
	defer rows.Close()

	for rows.Next() {
		answer := Answer{EvaluationID: ev.ID}
		if err := rows.Scan(
			&answer.ID, &answer.QuestionID, &answer.SelfScore, &answer.SelfComment, &answer.ManagerScore, &answer.ManagerComment,
			&answer.Question.Text, &answer.Question.CategoryID, &answer.Question.ExpectedScore, &answer.Question.Position,
			&answer.Question.Category.Name, &answer.Question.Category.Description,
		); err != nil {
			return Evaluation{}, err
		}
		answer.Question.ID = answer.QuestionID
		answer.Question.TemplateID = ev.TemplateID
		answer.Question.Category.ID = answer.Question.CategoryID
		ev.Answers = append(ev.Answers, answer)
	}
	if err := rows.Err(); err != nil {
		return Evaluation{}, err
	}
	return ev, nil
}

func (s *Store) ListEvaluations(ctx context.Context, tenantID, employeeID, evaluatorID string) ([]Summary, error) {
	// The EXISTS flag feeds the three-state display projection: an
	// evaluation with any score recorded but not yet concluded is shown
	// as in progress even though it is persisted as pending.
	query := `
    SELECT e.id, e.employee_id, e.evaluator_id, e.template_id, t.name, e.eval_date, e.status, e.self_status, e.manager_status,
           EXISTS (
             SELECT 1 FROM evaluation_answers a
             WHERE a.tenant_id = e.tenant_id AND a.evaluation_id = e.id
               AND (a.self_score IS NOT NULL OR a.manager_score IS NOT NULL)
           ) AS started
    FROM evaluations e
    JOIN evaluation_templates t ON t.id = e.template_id
    WHERE e.tenant_id = $1
  `
	args := []any{tenantID}
	if employeeID != "" {
		query += " AND e.employee_id = $2"
		args = append(args, employeeID)
	} else if evaluatorID != "" {
		query += " AND (e.evaluator_id = $2 OR e.employee_id = $2)"
		args = append(args, evaluatorID)
	}
	query += " ORDER BY e.eval_date DESC, e.created_at DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var summary Summary
		var started bool
		if err := rows.Scan(&summary.ID, &summary.EmployeeID, &summary.EvaluatorID, &summary.TemplateID, &summary.TemplateName, &summary.Date, &summary.Status, &summary.SelfStatus, &summary.ManagerStatus, &started); err != nil {
			return nil, err
		}
		if summary.Status != StatusConcluded && started {
			summary.Status = StatusInProgress
		}
		out = append(out, summary)
	}
	return out, rows.Err()
}

// SaveEvaluation persists one accepted update as a single all-or-nothing
// replace. The version predicate is the optimistic-concurrency check:
// a concurrent writer that got there first leaves zero matching rows.
func (s *Store) SaveEvaluation(ctx context.Context, tenantID string, ev Evaluation, expectedVersion int64) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
    UPDATE evaluations
    SET status = $1, self_status = $2, manager_status = $3,
        self_strengths = $4, self_improvements = $5, self_goals = $6,
        manager_strengths = $7, manager_improvements = $8, manager_goals = $9,
        version = $10, updated_at = now()
    WHERE tenant_id = $11 AND id = $12 AND version = $13
  `, ev.Status, ev.SelfStatus, ev.ManagerStatus,
		ev.SelfStrengths, ev.SelfImprovements, ev.SelfGoals,
		ev.ManagerStrengths, ev.ManagerImprovements, ev.ManagerGoals,
		ev.Version, tenantID, ev.ID, expectedVersion)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStaleVersion
	}

	for _, answer := range ev.Answers {
		if _, err := tx.Exec(ctx, `
      UPDATE evaluation_answers
      SET self_score = $1, self_comment = $2, manager_score = $3, manager_comment = $4
      WHERE tenant_id = $5 AND evaluation_id = $6 AND id = $7
    `, answer.SelfScore, answer.SelfComment, answer.ManagerScore, answer.ManagerComment, tenantID, ev.ID, answer.ID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *Store) DeleteEvaluation(ctx context.Context, tenantID, evaluationID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM evaluations WHERE tenant_id = $1 AND id = $2", tenantID, evaluationID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEvaluationNotFound
	}
	return nil
}
