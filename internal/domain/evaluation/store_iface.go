package evaluation

import "context"

type StoreAPI interface {
	EmployeeExists(ctx context.Context, tenantID, employeeID string) (bool, error)
	EmployeeIDByUserID(ctx context.Context, tenantID, userID string) (string, error)
	ManagerIDByEmployeeID(ctx context.Context, tenantID, employeeID string) (string, error)

	ListCategories(ctx context.Context, tenantID string) ([]Category, error)
	CategoryExists(ctx context.Context, tenantID, categoryID string) (bool, error)
	CategoryQuestionCount(ctx context.Context, tenantID, categoryID string) (int, error)
	InsertCategory(ctx context.Context, tenantID string, category Category) error
	UpdateCategory(ctx context.Context, tenantID string, category Category) error
	DeleteCategory(ctx context.Context, tenantID, categoryID string) error

	ListTemplates(ctx context.Context, tenantID string) ([]Template, error)
	GetTemplate(ctx context.Context, tenantID, templateID string) (Template, error)
	TemplateInUse(ctx context.Context, tenantID, templateID string) (bool, error)
	InsertTemplate(ctx context.Context, tenantID string, template Template) error
	ReplaceTemplateQuestions(ctx context.Context, tenantID string, template Template) error
	DeleteTemplate(ctx context.Context, tenantID, templateID string) error

	InsertEvaluation(ctx context.Context, tenantID string, ev Evaluation) error
	GetEvaluation(ctx context.Context, tenantID, evaluationID string) (Evaluation, error)
	ListEvaluations(ctx context.Context, tenantID, employeeID, evaluatorID string) ([]Summary, error)
	SaveEvaluation(ctx context.Context, tenantID string, ev Evaluation, expectedVersion int64) error
	DeleteEvaluation(ctx context.Context, tenantID, evaluationID string) error
}
