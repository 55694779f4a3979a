package evaluation

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeStore is an in-memory StoreAPI for exercising the service without a
// database.
type fakeStore struct {
	employees   map[string]string // employee id -> user id
	categories  map[string]Category
	templates   map[string]Template
	evaluations map[string]Evaluation
	inUse       map[string]bool
	managers    map[string]string // employee id -> manager employee id
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		employees:   map[string]string{},
		categories:  map[string]Category{},
		templates:   map[string]Template{},
		evaluations: map[string]Evaluation{},
		inUse:       map[string]bool{},
		managers:    map[string]string{},
	}
}

func (f *fakeStore) ManagerIDByEmployeeID(_ context.Context, _, employeeID string) (string, error) {
	if _, ok := f.employees[employeeID]; !ok {
		return "", ErrEmployeeNotFound
	}
	return f.managers[employeeID], nil
}

func (f *fakeStore) EmployeeExists(_ context.Context, _, employeeID string) (bool, error) {
	_, ok := f.employees[employeeID]
	return ok, nil
}

func (f *fakeStore) EmployeeIDByUserID(_ context.Context, _, userID string) (string, error) {
	for employeeID, uid := range f.employees {
		if uid == userID {
			return employeeID, nil
		}
	}
	return "", ErrEmployeeNotFound
}

func (f *fakeStore) ListCategories(_ context.Context, _ string) ([]Category, error) {
	out := make([]Category, 0, len(f.categories))
	for _, category := range f.categories {
		out = append(out, category)
	}
	return out, nil
}

func (f *fakeStore) CategoryExists(_ context.Context, _, categoryID string) (bool, error) {
	_, ok := f.categories[categoryID]
	return ok, nil
}

func (f *fakeStore) CategoryQuestionCount(_ context.Context, _, categoryID string) (int, error) {
	count := 0
	for _, template := range f.templates {
		for _, question := range template.Questions {
			if question.CategoryID == categoryID {
				count++
			}
		}
	}
	return count, nil
}

func (f *fakeStore) InsertCategory(_ context.Context, _ string, category Category) error {
	f.categories[category.ID] = category
	return nil
}

func (f *fakeStore) UpdateCategory(_ context.Context, _ string, category Category) error {
	if _, ok := f.categories[category.ID]; !ok {
		return ErrCategoryNotFound
	}
	f.categories[category.ID] = category
	return nil
}

func (f *fakeStore) DeleteCategory(_ context.Context, _, categoryID string) error {
	if _, ok := f.categories[categoryID]; !ok {
		return ErrCategoryNotFound
	}
	delete(f.categories, categoryID)
	return nil
}

func (f *fakeStore) ListTemplates(_ context.Context, _ string) ([]Template, error) {
	out := make([]Template, 0, len(f.templates))
	for _, template := range f.templates {
		template.InUse = f.inUse[template.ID]
		out = append(out, template)
	}
	return out, nil
}

func (f *fakeStore) GetTemplate(_ context.Context, _, templateID string) (Template, error) {
	template, ok := f.templates[templateID]
	if !ok {
		return Template{}, ErrTemplateNotFound
	}
	return template, nil
}

func (f *fakeStore) TemplateInUse(_ context.Context, _, templateID string) (bool, error) {
	return f.inUse[templateID], nil
}

func (f *fakeStore) InsertTemplate(_ context.Context, _ string, template Template) error {
	f.templates[template.ID] = template
	return nil
}

func (f *fakeStore) ReplaceTemplateQuestions(_ context.Context, _ string, template Template) error {
	if _, ok := f.templates[template.ID]; !ok {
		return ErrTemplateNotFound
	}
	f.templates[template.ID] = template
	return nil
}

func (f *fakeStore) DeleteTemplate(_ context.Context, _, templateID string) error {
	if _, ok := f.templates[templateID]; !ok {
		return ErrTemplateNotFound
	}
	delete(f.templates, templateID)
	return nil
}

func (f *fakeStore) InsertEvaluation(_ context.Context, _ string, ev Evaluation) error {
	f.evaluations[ev.ID] = ev
	f.inUse[ev.TemplateID] = true
	return nil
}

func (f *fakeStore) GetEvaluation(_ context.Context, _, evaluationID string) (Evaluation, error) {
	ev, ok := f.evaluations[evaluationID]
	if !ok {
		return Evaluation{}, ErrEvaluationNotFound
	}
	answers := make([]Answer, len(ev.Answers))
	copy(answers, ev.Answers)
	ev.Answers = answers
	return ev, nil
}

func (f *fakeStore) ListEvaluations(_ context.Context, _, _, _ string) ([]Summary, error) {
	return nil, nil
}

func (f *fakeStore) SaveEvaluation(_ context.Context, _ string, ev Evaluation, expectedVersion int64) error {
	stored, ok := f.evaluations[ev.ID]
	if !ok {
		return ErrEvaluationNotFound
	}
	if stored.Version != expectedVersion {
		return ErrStaleVersion
	}
	f.evaluations[ev.ID] = ev
	return nil
}

func (f *fakeStore) DeleteEvaluation(_ context.Context, _, evaluationID string) error {
	if _, ok := f.evaluations[evaluationID]; !ok {
		return ErrEvaluationNotFound
	}
	delete(f.evaluations, evaluationID)
	return nil
}

func seededService(t *testing.T) (*Service, *fakeStore, Template) {
	t.Helper()
	store := newFakeStore()
	store.employees["emp-1"] = "user-1"
	store.employees["emp-2"] = "user-2"
	store.categories["cat-a"] = Category{ID: "cat-a", Name: "Comunicação"}
	store.categories["cat-b"] = Category{ID: "cat-b", Name: "Técnica"}

	service := NewService(store)
	template, err := service.CreateTemplate(context.Background(), "t1", "Ciclo", "", sampleInputs())
	if err != nil {
		t.Fatalf("template setup failed: %v", err)
	}
	return service, store, template
}

func TestServiceCreateTemplateUnknownCategory(t *testing.T) {
	service, _, _ := seededService(t)
	inputs := []QuestionInput{{Text: "x", CategoryID: "cat-missing", ExpectedScore: 5}}
	if _, err := service.CreateTemplate(context.Background(), "t1", "ruim", "", inputs); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestServiceTemplateFrozenWhileInUse(t *testing.T) {
	service, _, template := seededService(t)
	ctx := context.Background()

	if _, err := service.Instantiate(ctx, "t1", "emp-1", "emp-2", template.ID, time.Now()); err != nil {
		t.Fatalf("instantiate failed: %v", err)
	}

	if _, err := service.UpdateTemplate(ctx, "t1", template.ID, "novo", "", sampleInputs()); !errors.Is(err, ErrTemplateInUse) {
		t.Fatalf("expected ErrTemplateInUse on update, got %v", err)
	}
	if err := service.DeleteTemplate(ctx, "t1", template.ID); !errors.Is(err, ErrTemplateInUse) {
		t.Fatalf("expected ErrTemplateInUse on delete, got %v", err)
	}
}

func TestServiceDeleteCategoryInUse(t *testing.T) {
	service, _, _ := seededService(t)
	if err := service.DeleteCategory(context.Background(), "t1", "cat-a"); !errors.Is(err, ErrCategoryInUse) {
		t.Fatalf("expected ErrCategoryInUse, got %v", err)
	}
}

func TestServiceDuplicateTemplate(t *testing.T) {
	service, store, template := seededService(t)
	duplicate, err := service.DuplicateTemplate(context.Background(), "t1", template.ID, "", "")
	if err != nil {
		t.Fatalf("duplicate failed: %v", err)
	}
	if duplicate.ID == template.ID {
		t.Fatal("duplicate shares the source id")
	}
	if duplicate.Name != template.Name+" (cópia)" {
		t.Fatalf("expected default copy name, got %q", duplicate.Name)
	}
	if _, ok := store.templates[duplicate.ID]; !ok {
		t.Fatal("duplicate was not persisted")
	}
}

func TestServiceInstantiateDefaultsEvaluatorToManager(t *testing.T) {
	service, store, template := seededService(t)
	ctx := context.Background()
	store.managers["emp-1"] = "emp-2"

	ev, err := service.Instantiate(ctx, "t1", "emp-1", "", template.ID, time.Now())
	if err != nil {
		t.Fatalf("instantiate failed: %v", err)
	}
	if ev.EvaluatorID != "emp-2" {
		t.Fatalf("evaluator = %q, want manager emp-2", ev.EvaluatorID)
	}

	store.employees["emp-3"] = "user-3"
	if _, err := service.Instantiate(ctx, "t1", "emp-3", "", template.ID, time.Now()); !errors.Is(err, ErrNoEvaluator) {
		t.Fatalf("expected ErrNoEvaluator for manager-less employee, got %v", err)
	}
}

func TestServiceInstantiateMissingRefs(t *testing.T) {
	service, _, template := seededService(t)
	ctx := context.Background()

	if _, err := service.Instantiate(ctx, "t1", "emp-missing", "emp-2", template.ID, time.Now()); !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
	if _, err := service.Instantiate(ctx, "t1", "emp-1", "emp-2", "tmpl-missing", time.Now()); !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestServiceUpdateRoundTrip(t *testing.T) {
	service, _, template := seededService(t)
	ctx := context.Background()

	ev, err := service.Instantiate(ctx, "t1", "emp-1", "emp-2", template.ID, time.Now())
	if err != nil {
		t.Fatalf("instantiate failed: %v", err)
	}

	patches := make([]AnswerPatch, 0, len(ev.Answers))
	for _, answer := range ev.Answers {
		patches = append(patches, AnswerPatch{ID: answer.ID, SelfScore: score(8)})
	}
	updated, err := service.Update(ctx, "t1", "emp-1", ev.ID, UpdateRequest{Version: ev.Version, Answers: patches})
	if err != nil {
		t.Fatalf("self update failed: %v", err)
	}
	if updated.SelfStatus != StatusConcluded {
		t.Fatalf("expected self concluded, got %q", updated.SelfStatus)
	}

	// A second writer holding the old version must be told to reload.
	_, err = service.Update(ctx, "t1", "emp-2", ev.ID, UpdateRequest{
		Version: ev.Version,
		Answers: []AnswerPatch{{ID: ev.Answers[0].ID, ManagerScore: score(6)}},
	})
	if !errors.Is(err, ErrStaleVersion) {
		t.Fatalf("expected ErrStaleVersion, got %v", err)
	}

	// An outsider is not a participant at all.
	_, err = service.Update(ctx, "t1", "emp-9", ev.ID, UpdateRequest{Version: updated.Version})
	if !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("expected ErrNotParticipant, got %v", err)
	}

	fetched, err := service.Get(ctx, "t1", ev.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if fetched.Scores == nil || fetched.Scores.SelfAverage == nil || *fetched.Scores.SelfAverage != 8 {
		t.Fatalf("expected derived self average 8, got %+v", fetched.Scores)
	}
	if fetched.Scores.FinalScore != nil {
		t.Fatalf("final score must stay nil while manager side is open, got %v", *fetched.Scores.FinalScore)
	}
}
