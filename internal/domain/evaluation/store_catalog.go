package evaluation

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

func (s *Store) ListCategories(ctx context.Context, tenantID string) ([]Category, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, description
    FROM categories
    WHERE tenant_id = $1
    ORDER BY name
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var category Category
		if err := rows.Scan(&category.ID, &category.Name, &category.Description); err != nil {
			return nil, err
		}
		out = append(out, category)
	}
	return out, rows.Err()
}

func (s *Store) CategoryExists(ctx context.Context, tenantID, categoryID string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM categories WHERE tenant_id = $1 AND id = $2", tenantID, categoryID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) CategoryQuestionCount(ctx context.Context, tenantID, categoryID string) (int, error) {
	var count int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM evaluation_questions WHERE tenant_id = $1 AND category_id = $2", tenantID, categoryID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) InsertCategory(ctx context.Context, tenantID string, category Category) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO categories (id, tenant_id, name, description)
    VALUES ($1,$2,$3,$4)
  `, category.ID, tenantID, category.Name, category.Description)
	return err
}

func (s *Store) UpdateCategory(ctx context.Context, tenantID string, category Category) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE categories SET name = $1, description = $2
    WHERE tenant_id = $3 AND id = $4
  `, category.Name, category.Description, tenantID, category.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (s *Store) DeleteCategory(ctx context.Context, tenantID, categoryID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM categories WHERE tenant_id = $1 AND id = $2", tenantID, categoryID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (s *Store) ListTemplates(ctx context.Context, tenantID string) ([]Template, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT t.id, t.name, t.description,
           EXISTS (SELECT 1 FROM evaluations e WHERE e.template_id = t.id) AS in_use
    FROM evaluation_templates t
    WHERE t.tenant_id = $1
    ORDER BY t.name
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []Template
	index := map[string]int{}
	for rows.Next() {
		var template Template
		if err := rows.Scan(&template.ID, &template.Name, &template.Description, &template.InUse); err != nil {
			return nil, err
		}
		index[template.ID] = len(templates)
		templates = append(templates, template)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(templates) == 0 {
		return templates, nil
	}

	questionRows, err := s.DB.Query(ctx, `
    SELECT q.id, q.template_id, q.text, q.category_id, q.expected_score, q.position,
           c.name, c.description
    FROM evaluation_questions q
    JOIN categories c ON c.id = q.category_id
    WHERE q.tenant_id = $1
    ORDER BY q.template_id, q.position
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer questionRows.Close()

	for questionRows.Next() {
		var question Question
		if err := questionRows.Scan(&question.ID, &question.TemplateID, &question.Text, &question.CategoryID, &question.ExpectedScore, &question.Position, &question.Category.Name, &question.Category.Description); err != nil {
			return nil, err
		}
		question.Category.ID = question.CategoryID
		if i, ok := index[question.TemplateID]; ok {
			templates[i].Questions = append(templates[i].Questions, question)
		}
	}
	return templates, questionRows.Err()
}

func (s *Store) GetTemplate(ctx context.Context, tenantID, templateID string) (Template, error) {
	var template Template
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, description
    FROM evaluation_templates
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, templateID).Scan(&template.ID, &template.Name, &template.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return Template{}, ErrTemplateNotFound
	}
	if err != nil {
		return Template{}, err
	}

	rows, err := s.DB.Query(ctx, `
    SELECT q.id, q.text, q.category_id, q.expected_score, q.position,
           c.name, c.description
    FROM evaluation_questions q
    JOIN categories c ON c.id = q.category_id
    WHERE q.tenant_id = $1 AND q.template_id = $2
    ORDER BY q.position
  `, tenantID, templateID)
	if err != nil {
		return Template{}, err
	}
	defer rows.Close()

	for rows.Next() {
		question := Question{TemplateID: template.ID}
		if err := rows.Scan(&question.ID, &question.Text, &question.CategoryID, &question.ExpectedScore, &question.Position, &question.Category.Name, &question.Category.Description); err != nil {
			return Template{}, err
		}
		question.Category.ID = question.CategoryID
		template.Questions = append(template.Questions, question)
	}
	return template, rows.Err()
}

func (s *Store) TemplateInUse(ctx context.Context, tenantID, templateID string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM evaluations WHERE tenant_id = $1 AND template_id = $2", tenantID, templateID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) InsertTemplate(ctx context.Context, tenantID string, template Template) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
    INSERT INTO evaluation_templates (id, tenant_id, name, description)
    VALUES ($1,$2,$3,$4)
  `, template.ID, tenantID, template.Name, template.Description); err != nil {
		return err
	}
	if err := insertQuestions(ctx, tx, tenantID, template); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ReplaceTemplateQuestions rewrites a template's metadata and question set.
// Callers must have established that no evaluation references the template;
// otherwise the fixed-answer-set invariant would break.
func (s *Store) ReplaceTemplateQuestions(ctx context.Context, tenantID string, template Template) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
    UPDATE evaluation_templates SET name = $1, description = $2
    WHERE tenant_id = $3 AND id = $4
  `, template.Name, template.Description, tenantID, template.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTemplateNotFound
	}

	if _, err := tx.Exec(ctx, "DELETE FROM evaluation_questions WHERE tenant_id = $1 AND template_id = $2", tenantID, template.ID); err != nil {
		return err
	}
	if err := insertQuestions(ctx, tx, tenantID, template); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) DeleteTemplate(ctx context.Context, tenantID, templateID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM evaluation_templates WHERE tenant_id = $1 AND id = $2", tenantID, templateID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

func insertQuestions(ctx context.Context, tx pgx.Tx, tenantID string, template Template) error {
	for _, question := range template.Questions {
		if _, err := tx.Exec(ctx, `
      INSERT INTO evaluation_questions (id, tenant_id, template_id, category_id, text, expected_score, position)
      VALUES ($1,$2,$3,$4,$5,$6,$7)
    `, question.ID, tenantID, template.ID, question.CategoryID, question.Text, question.ExpectedScore, question.Position); err != nil {
			return err
		}
	}
	return nil
}
