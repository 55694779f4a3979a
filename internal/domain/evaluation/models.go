package evaluation

import "time"

type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Question struct {
	ID            string   `json:"id"`
	TemplateID    string   `json:"templateId"`
	Text          string   `json:"text"`
	CategoryID    string   `json:"categoryId"`
	Category      Category `json:"category"`
	ExpectedScore float64  `json:"expectedScore"`
	Position      int      `json:"position"`
}

type Template struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Questions   []Question `json:"questions"`
	InUse       bool       `json:"inUse"`
}

// Answer holds the self and manager submissions for one question of one
// evaluation. A nil score means that role has not submitted yet; it is
// never reset to nil once set.
type Answer struct {
	ID             string   `json:"id"`
	EvaluationID   string   `json:"evaluationId"`
	QuestionID     string   `json:"questionId"`
	SelfScore      *float64 `json:"selfScore"`
	SelfComment    *string  `json:"selfComment"`
	ManagerScore   *float64 `json:"managerScore"`
	ManagerComment *string  `json:"managerComment"`
	Question       Question `json:"evaluationquestion"`
	Divergence     *float64 `json:"divergence,omitempty"`
}

type Evaluation struct {
	ID            string    `json:"id"`
	EmployeeID    string    `json:"employeeId"`
	EvaluatorID   string    `json:"evaluatorId"`
	TemplateID    string    `json:"templateId"`
	Date          time.Time `json:"date"`
	Status        string    `json:"status"`
	SelfStatus    string    `json:"selfEvaluationStatus"`
	ManagerStatus string    `json:"managerEvaluationStatus"`

	SelfStrengths    string `json:"selfStrengths"`
	SelfImprovements string `json:"selfImprovements"`
	SelfGoals        string `json:"selfGoals"`

	ManagerStrengths    string `json:"managerStrengths"`
	ManagerImprovements string `json:"managerImprovements"`
	ManagerGoals        string `json:"managerGoals"`

	Version int64 `json:"version"`

	Answers []Answer   `json:"evaluationanswer"`
	Scores  *Scorecard `json:"scores,omitempty"`
}

type CategoryScore struct {
	CategoryID   string   `json:"categoryId"`
	CategoryName string   `json:"categoryName"`
	SelfAverage  *float64 `json:"selfAverage"`
	ManagerAvg   *float64 `json:"managerAverage"`
	ExpectedAvg  *float64 `json:"expectedAverage"`
}

// Scorecard is the derived, read-only view over an evaluation's answers.
// It is recomputed on every read and never persisted.
type Scorecard struct {
	SelfAverage     *float64        `json:"selfAverage"`
	ManagerAverage  *float64        `json:"managerAverage"`
	ExpectedAverage *float64        `json:"expectedAverage"`
	FinalScore      *float64        `json:"finalScore"`
	Band            string          `json:"band"`
	Categories      []CategoryScore `json:"categories"`
}

// Summary is a condensed row for evaluation listings.
type Summary struct {
	ID            string    `json:"id"`
	EmployeeID    string    `json:"employeeId"`
	EvaluatorID   string    `json:"evaluatorId"`
	TemplateID    string    `json:"templateId"`
	TemplateName  string    `json:"templateName"`
	Date          time.Time `json:"date"`
	Status        string    `json:"status"`
	SelfStatus    string    `json:"selfEvaluationStatus"`
	ManagerStatus string    `json:"managerEvaluationStatus"`
}
