package queries

const (
	GetInstancesForScopeForUpdate = `
		SELECT id, questionnaire_id, questionnaire_version, questionnaire_name, study_id,
		       pseudonym, cycle, date_of_issue, status, release_version, sort_order
		FROM questionnaire_instances
		WHERE questionnaire_id = $1 AND pseudonym = $2
		ORDER BY questionnaire_version, cycle
		FOR UPDATE
	`

	InsertInstance = `
		INSERT INTO questionnaire_instances
			(questionnaire_id, questionnaire_version, questionnaire_name, study_id,
			 pseudonym, cycle, date_of_issue, status, release_version, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (questionnaire_id, questionnaire_version, pseudonym, cycle) DO NOTHING
		RETURNING id
	`

	DeleteInstance = `
		DELETE FROM questionnaire_instances
		WHERE id = $1
	`

	ActivateInstance = `
		UPDATE questionnaire_instances
		SET status = 'active'
		WHERE id = $1 AND status = 'inactive'
	`

	ActivateDueInstances = `
		UPDATE questionnaire_instances
		SET status = 'active'
		WHERE status = 'inactive' AND date_of_issue <= $1
		RETURNING id, questionnaire_id, questionnaire_version, questionnaire_name, study_id,
		          pseudonym, cycle, date_of_issue, status, release_version, sort_order
	`

	ExpireOverdueInstances = `
		UPDATE questionnaire_instances AS qi
		SET status = 'expired'
		FROM questionnaires AS q
		WHERE q.id = qi.questionnaire_id
		  AND q.version = qi.questionnaire_version
		  AND q.type = 'for_probands'
		  AND q.cycle_unit <> 'spontan'
		  AND qi.status IN ('inactive', 'active', 'in_progress')
		  AND qi.date_of_issue + make_interval(days => q.expires_after_days) <= $1
		RETURNING qi.id, qi.questionnaire_id, qi.questionnaire_version, qi.questionnaire_name,
		          qi.study_id, qi.pseudonym, qi.cycle, qi.date_of_issue, qi.status,
		          qi.release_version, qi.sort_order
	`

	GetInstanceByID = `
		SELECT id, questionnaire_id, questionnaire_version, questionnaire_name, study_id,
		       pseudonym, cycle, date_of_issue, status, release_version, sort_order
		FROM questionnaire_instances
		WHERE id = $1
	`

	GetLatestReleasedInstance = `
		SELECT id, questionnaire_id, questionnaire_version, questionnaire_name, study_id,
		       pseudonym, cycle, date_of_issue, status, release_version, sort_order
		FROM questionnaire_instances
		WHERE questionnaire_id = $1 AND pseudonym = $2 AND release_version >= 1
		ORDER BY cycle DESC
		LIMIT 1
	`

	DeleteInstancesByPseudonym = `
		DELETE FROM questionnaire_instances
		WHERE pseudonym = $1
	`
)
