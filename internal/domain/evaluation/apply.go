package evaluation

import "strings"

// AnswerPatch carries one answer's mutable fields from a PUT body. Nil
// means "leave unchanged"; there is no way to retract a submitted score.
type AnswerPatch struct {
	ID             string   `json:"id"`
	SelfScore      *float64 `json:"selfScore"`
	SelfComment    *string  `json:"selfComment"`
	ManagerScore   *float64 `json:"managerScore"`
	ManagerComment *string  `json:"managerComment"`
}

type UpdateRequest struct {
	Version int64 `json:"version"`
	Reopen  bool  `json:"reopen"`

	SelfStrengths    *string `json:"selfStrengths"`
	SelfImprovements *string `json:"selfImprovements"`
	SelfGoals        *string `json:"selfGoals"`

	ManagerStrengths    *string `json:"managerStrengths"`
	ManagerImprovements *string `json:"managerImprovements"`
	ManagerGoals        *string `json:"managerGoals"`

	Answers []AnswerPatch `json:"evaluationanswer"`
}

func (p AnswerPatch) touchesSelf() bool {
	return p.SelfScore != nil || p.SelfComment != nil
}

func (p AnswerPatch) touchesManager() bool {
	return p.ManagerScore != nil || p.ManagerComment != nil
}

func (r UpdateRequest) touchesSelf() bool {
	if r.SelfStrengths != nil || r.SelfImprovements != nil || r.SelfGoals != nil {
		return true
	}
	for _, patch := range r.Answers {
		if patch.touchesSelf() {
			return true
		}
	}
	return false
}

func (r UpdateRequest) touchesManager() bool {
	if r.ManagerStrengths != nil || r.ManagerImprovements != nil || r.ManagerGoals != nil {
		return true
	}
	for _, patch := range r.Answers {
		if patch.touchesManager() {
			return true
		}
	}
	return false
}

func validScore(score *float64) bool {
	return score == nil || (*score >= MinScore && *score <= MaxScore)
}

// ApplyUpdate merges a role-scoped patch into the evaluation in memory and
// recomputes the statuses. It enforces, in order: version freshness, role
// field partitioning, the concluded-role edit gate, score range, and
// answer membership. The evaluation is left untouched on any error.
func ApplyUpdate(ev *Evaluation, role string, req UpdateRequest) error {
	if req.Version != ev.Version {
		return ErrStaleVersion
	}

	switch role {
	case RoleSelf:
		if req.touchesManager() {
			return ErrRoleForbidden
		}
		if ev.SelfStatus == StatusConcluded && !req.Reopen && req.touchesSelf() {
			return ErrRoleConcluded
		}
	case RoleManager:
		if req.touchesSelf() {
			return ErrRoleForbidden
		}
		if ev.ManagerStatus == StatusConcluded && !req.Reopen && req.touchesManager() {
			return ErrRoleConcluded
		}
	default:
		return ErrNotParticipant
	}

	answerIndex := make(map[string]int, len(ev.Answers))
	for i, answer := range ev.Answers {
		answerIndex[answer.ID] = i
	}
	for _, patch := range req.Answers {
		if !validScore(patch.SelfScore) || !validScore(patch.ManagerScore) {
			return ErrScoreOutOfRange
		}
		if _, ok := answerIndex[strings.TrimSpace(patch.ID)]; !ok {
			return ErrAnswerUnknown
		}
	}

	for _, patch := range req.Answers {
		answer := &ev.Answers[answerIndex[strings.TrimSpace(patch.ID)]]
		if patch.SelfScore != nil {
			answer.SelfScore = patch.SelfScore
		}
		if patch.SelfComment != nil {
			answer.SelfComment = patch.SelfComment
		}
		if patch.ManagerScore != nil {
			answer.ManagerScore = patch.ManagerScore
		}
		if patch.ManagerComment != nil {
			answer.ManagerComment = patch.ManagerComment
		}
	}

	setText := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setText(&ev.SelfStrengths, req.SelfStrengths)
	setText(&ev.SelfImprovements, req.SelfImprovements)
	setText(&ev.SelfGoals, req.SelfGoals)
	setText(&ev.ManagerStrengths, req.ManagerStrengths)
	setText(&ev.ManagerImprovements, req.ManagerImprovements)
	setText(&ev.ManagerGoals, req.ManagerGoals)

	Recompute(ev)
	ev.Version++
	return nil
}

// ActorRole resolves how the acting employee relates to the evaluation.
func ActorRole(ev *Evaluation, actorEmployeeID string) (string, error) {
	switch actorEmployeeID {
	case "":
		return "", ErrNotParticipant
	case ev.EmployeeID:
		return RoleSelf, nil
	case ev.EvaluatorID:
		return RoleManager, nil
	default:
		return "", ErrNotParticipant
	}
}
