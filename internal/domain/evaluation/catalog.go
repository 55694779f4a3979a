package evaluation

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// QuestionInput is the shape accepted by template create/update.
type QuestionInput struct {
	Text          string  `json:"text"`
	CategoryID    string  `json:"categoryId"`
	ExpectedScore float64 `json:"expectedScore"`
}

// BuildTemplate validates the input and assembles a template with fresh
// question identities, positions following input order.
func BuildTemplate(name, description string, questions []QuestionInput) (Template, error) {
	if len(questions) == 0 {
		return Template{}, ErrTemplateNoQuestion
	}

	template := Template{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Questions:   make([]Question, 0, len(questions)),
	}
	for i, input := range questions {
		if input.ExpectedScore < MinScore || input.ExpectedScore > MaxScore {
			return Template{}, ErrScoreOutOfRange
		}
		template.Questions = append(template.Questions, Question{
			ID:            uuid.NewString(),
			TemplateID:    template.ID,
			Text:          strings.TrimSpace(input.Text),
			CategoryID:    input.CategoryID,
			ExpectedScore: input.ExpectedScore,
			Position:      i,
		})
	}
	return template, nil
}

// DuplicateTemplate deep-copies a template under a new name. Questions get
// fresh identities so evaluations bound to the original never alias the
// copy; text, category references and expected scores are preserved.
func DuplicateTemplate(source Template, newName, newDescription string) Template {
	copyTemplate := Template{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(newName),
		Description: strings.TrimSpace(newDescription),
		Questions:   make([]Question, 0, len(source.Questions)),
	}
	for _, question := range source.Questions {
		question.ID = uuid.NewString()
		question.TemplateID = copyTemplate.ID
		copyTemplate.Questions = append(copyTemplate.Questions, question)
	}
	return copyTemplate
}

// Instantiate creates a pending evaluation from a template: exactly one
// answer per question, both scores unsubmitted.
func Instantiate(employeeID, evaluatorID string, template Template, date time.Time) Evaluation {
	ev := Evaluation{
		ID:            uuid.NewString(),
		EmployeeID:    employeeID,
		EvaluatorID:   evaluatorID,
		TemplateID:    template.ID,
		Date:          date,
		Status:        StatusPending,
		SelfStatus:    StatusPending,
		ManagerStatus: StatusPending,
		Version:       1,
		Answers:       make([]Answer, 0, len(template.Questions)),
	}
	for _, question := range template.Questions {
		ev.Answers = append(ev.Answers, Answer{
			ID:           uuid.NewString(),
			EvaluationID: ev.ID,
			QuestionID:   question.ID,
			Question:     question,
		})
	}
	return ev
}
