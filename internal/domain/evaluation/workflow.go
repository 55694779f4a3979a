package evaluation

// RoleStatus is the persisted completion state for one role: Concluída
// once every answer carries that role's score, else Pendente. There is no
// separate submit action; completion is a pure function of the data and
// is recomputed after every accepted write.
func RoleStatus(scores []*float64) string {
	if len(scores) == 0 {
		return StatusPending
	}
	for _, score := range scores {
		if score == nil {
			return StatusPending
		}
	}
	return StatusConcluded
}

// OverallStatus is the persisted evaluation status: Concluída only when
// both roles have concluded. The persisted check is two-state; partially
// answered evaluations stay Pendente here and surface Em Progresso only
// through DisplayStatus.
func OverallStatus(selfScores, managerScores []*float64) string {
	if RoleStatus(selfScores) == StatusConcluded && RoleStatus(managerScores) == StatusConcluded {
		return StatusConcluded
	}
	return StatusPending
}

// DisplayStatus is the any-vs-all label across both roles combined, used
// by listings and dashboards: Em Progresso while some but not all scores
// are in.
func DisplayStatus(selfScores, managerScores []*float64) string {
	if OverallStatus(selfScores, managerScores) == StatusConcluded {
		return StatusConcluded
	}
	for _, score := range selfScores {
		if score != nil {
			return StatusInProgress
		}
	}
	for _, score := range managerScores {
		if score != nil {
			return StatusInProgress
		}
	}
	return StatusPending
}

// Recompute refreshes the three persisted statuses from the answer set.
func Recompute(ev *Evaluation) {
	selfScores := make([]*float64, 0, len(ev.Answers))
	managerScores := make([]*float64, 0, len(ev.Answers))
	for _, answer := range ev.Answers {
		selfScores = append(selfScores, answer.SelfScore)
		managerScores = append(managerScores, answer.ManagerScore)
	}
	ev.SelfStatus = RoleStatus(selfScores)
	ev.ManagerStatus = RoleStatus(managerScores)
	ev.Status = OverallStatus(selfScores, managerScores)
}
