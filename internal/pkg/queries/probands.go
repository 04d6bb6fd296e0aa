package queries

const (
	GetProbandByPseudonym = `
		SELECT pseudonym, study_id, status, first_logged_in_at, compliance_samples
		FROM probands
		WHERE pseudonym = $1
	`

	GetEligibleProbandsByStudy = `
		SELECT pseudonym, study_id, status, first_logged_in_at, compliance_samples
		FROM probands
		WHERE study_id = $1 AND status = 'active'
	`
)
