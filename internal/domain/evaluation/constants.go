package evaluation

const (
	StatusPending    = "Pendente"
	StatusInProgress = "Em Progresso"
	StatusConcluded  = "Concluída"

	BandExcellent    = "Excelente"
	BandVeryGood     = "Muito Bom"
	BandGood         = "Bom"
	BandSatisfactory = "Satisfatório"
	BandNeedsWork    = "Precisa Melhorar"
	BandPending      = "Pendente"

	RoleSelf    = "self"
	RoleManager = "manager"

	MinScore = 0.0
	MaxScore = 10.0

	// Final score weighting: the evaluator's view carries more weight
	// than the self assessment.
	SelfWeight    = 0.4
	ManagerWeight = 0.6
)
