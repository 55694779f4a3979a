package evaluation

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) EmployeeIDByUserID(ctx context.Context, tenantID, userID string) (string, error) {
	return s.store.EmployeeIDByUserID(ctx, tenantID, userID)
}

func (s *Service) ListCategories(ctx context.Context, tenantID string) ([]Category, error) {
	return s.store.ListCategories(ctx, tenantID)
}

func (s *Service) CreateCategory(ctx context.Context, tenantID, name, description string) (Category, error) {
	category := Category{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
	}
	if err := s.store.InsertCategory(ctx, tenantID, category); err != nil {
		return Category{}, err
	}
	return category, nil
}

func (s *Service) UpdateCategory(ctx context.Context, tenantID string, category Category) error {
	category.Name = strings.TrimSpace(category.Name)
	category.Description = strings.TrimSpace(category.Description)
	return s.store.UpdateCategory(ctx, tenantID, category)
}

// DeleteCategory refuses to orphan questions: a category still referenced
// by any template question is a conflict, not a cascade.
func (s *Service) DeleteCategory(ctx context.Context, tenantID, categoryID string) error {
	count, err := s.store.CategoryQuestionCount(ctx, tenantID, categoryID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryInUse
	}
	return s.store.DeleteCategory(ctx, tenantID, categoryID)
}

func (s *Service) ListTemplates(ctx context.Context, tenantID string) ([]Template, error) {
	return s.store.ListTemplates(ctx, tenantID)
}

func (s *Service) GetTemplate(ctx context.Context, tenantID, templateID string) (Template, error) {
	return s.store.GetTemplate(ctx, tenantID, templateID)
}

func (s *Service) CreateTemplate(ctx context.Context, tenantID, name, description string, questions []QuestionInput) (Template, error) {
	template, err := BuildTemplate(name, description, questions)
	if err != nil {
		return Template{}, err
	}
	for _, question := range template.Questions {
		exists, err := s.store.CategoryExists(ctx, tenantID, question.CategoryID)
		if err != nil {
			return Template{}, err
		}
		if !exists {
			return Template{}, ErrCategoryNotFound
		}
	}
	if err := s.store.InsertTemplate(ctx, tenantID, template); err != nil {
		return Template{}, err
	}
	return template, nil
}

// UpdateTemplate rewrites the question set. A template with evaluations
// bound to it is frozen: its questions define those evaluations' fixed
// answer sets and historical expected-score baselines.
func (s *Service) UpdateTemplate(ctx context.Context, tenantID, templateID, name, description string, questions []QuestionInput) (Template, error) {
	inUse, err := s.store.TemplateInUse(ctx, tenantID, templateID)
	if err != nil {
		return Template{}, err
	}
	if inUse {
		return Template{}, ErrTemplateInUse
	}

	template, err := BuildTemplate(name, description, questions)
	if err != nil {
		return Template{}, err
	}
	template.ID = templateID
	for i := range template.Questions {
		template.Questions[i].TemplateID = templateID
		exists, err := s.store.CategoryExists(ctx, tenantID, template.Questions[i].CategoryID)
		if err != nil {
			return Template{}, err
		}
		if !exists {
			return Template{}, ErrCategoryNotFound
		}
	}
	if err := s.store.ReplaceTemplateQuestions(ctx, tenantID, template); err != nil {
		return Template{}, err
	}
	return template, nil
}

func (s *Service) DeleteTemplate(ctx context.Context, tenantID, templateID string) error {
	inUse, err := s.store.TemplateInUse(ctx, tenantID, templateID)
	if err != nil {
		return err
	}
	if inUse {
		return ErrTemplateInUse
	}
	return s.store.DeleteTemplate(ctx, tenantID, templateID)
}

func (s *Service) DuplicateTemplate(ctx context.Context, tenantID, templateID, newName, newDescription string) (Template, error) {
	source, err := s.store.GetTemplate(ctx, tenantID, templateID)
	if err != nil {
		return Template{}, err
	}
	if strings.TrimSpace(newName) == "" {
		newName = source.Name + " (cópia)"
	}
	if strings.TrimSpace(newDescription) == "" {
		newDescription = source.Description
	}
	duplicate := DuplicateTemplate(source, newName, newDescription)
	if err := s.store.InsertTemplate(ctx, tenantID, duplicate); err != nil {
		return Template{}, err
	}
	return duplicate, nil
}
