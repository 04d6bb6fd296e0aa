package queries

const (
	GetLatestQuestionnaireVersion = `
		SELECT id, version, study_id, name, type, active, cycle_unit, cycle_amount,
		       cycle_per_day, cycle_first_hour, activate_after_days, deactivate_after_days,
		       expires_after_days, activate_at_date, notification_weekday, compliance_needed,
		       sort_order, created_at
		FROM questionnaires
		WHERE id = $1
		ORDER BY version DESC
		LIMIT 1
	`

	GetQuestionnaireByIDAndVersion = `
		SELECT id, version, study_id, name, type, active, cycle_unit, cycle_amount,
		       cycle_per_day, cycle_first_hour, activate_after_days, deactivate_after_days,
		       expires_after_days, activate_at_date, notification_weekday, compliance_needed,
		       sort_order, created_at
		FROM questionnaires
		WHERE id = $1 AND version = $2
	`

	GetLatestQuestionnairesByStudy = `
		SELECT q.id, q.version, q.study_id, q.name, q.type, q.active, q.cycle_unit, q.cycle_amount,
		       q.cycle_per_day, q.cycle_first_hour, q.activate_after_days, q.deactivate_after_days,
		       q.expires_after_days, q.activate_at_date, q.notification_weekday, q.compliance_needed,
		       q.sort_order, q.created_at
		FROM questionnaires q
		WHERE q.study_id = $1
		  AND q.version = (SELECT MAX(version) FROM questionnaires WHERE id = q.id)
	`

	GetConditionByQuestionnaire = `
		SELECT id, questionnaire_id, questionnaire_version, type,
		       target_questionnaire_id, target_answer_option_id, operand, value
		FROM conditions
		WHERE questionnaire_id = $1 AND questionnaire_version = $2
	`

	GetConditionsTargetingQuestionnaire = `
		SELECT id, questionnaire_id, questionnaire_version, type,
		       target_questionnaire_id, target_answer_option_id, operand, value
		FROM conditions
		WHERE target_questionnaire_id = $1
	`
)
