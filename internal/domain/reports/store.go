package reports

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// AnswerScoreRow is one answer's score pair, keyed by evaluation so the
// service can regroup rows into per-evaluation sets.
type AnswerScoreRow struct {
	EvaluationID string
	SelfScore    *float64
	ManagerScore *float64
}

func (s *Store) AnswerScores(ctx context.Context, tenantID string) ([]AnswerScoreRow, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT a.evaluation_id, a.self_score, a.manager_score
    FROM evaluation_answers a
    WHERE a.tenant_id = $1
    ORDER BY a.evaluation_id
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AnswerScoreRow
	for rows.Next() {
		var row AnswerScoreRow
		if err := rows.Scan(&row.EvaluationID, &row.SelfScore, &row.ManagerScore); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *Store) EmployeeName(ctx context.Context, tenantID, employeeID string) (string, error) {
	var firstName, lastName string
	err := s.DB.QueryRow(ctx, "SELECT first_name, last_name FROM employees WHERE tenant_id = $1 AND id = $2", tenantID, employeeID).Scan(&firstName, &lastName)
	if err != nil {
		return "", err
	}
	return firstName + " " + lastName, nil
}

func (s *Store) TemplateCount(ctx context.Context, tenantID string) (int, error) {
	var count int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM evaluation_templates WHERE tenant_id = $1", tenantID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
