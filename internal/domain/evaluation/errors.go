package evaluation

import "errors"

var (
	ErrEvaluationNotFound = errors.New("evaluation not found")
	ErrTemplateNotFound   = errors.New("evaluation template not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrTemplateInUse      = errors.New("template is referenced by existing evaluations")
	ErrCategoryInUse      = errors.New("category is referenced by existing questions")
	ErrTemplateNoQuestion = errors.New("template must have at least one question")
	ErrScoreOutOfRange    = errors.New("score must be between 0 and 10")
	ErrRoleForbidden      = errors.New("actor may not write the other role's fields")
	ErrNotParticipant     = errors.New("actor is not a participant of this evaluation")
	ErrRoleConcluded      = errors.New("role evaluation is concluded; reopen required to edit")
	ErrStaleVersion       = errors.New("evaluation was modified by another writer")
	ErrAnswerUnknown      = errors.New("answer does not belong to this evaluation")
	ErrNoEvaluator        = errors.New("employee has no manager to act as evaluator")
)
