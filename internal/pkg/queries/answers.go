package queries

const (
	GetAnswerByInstanceAndOption = `
		SELECT questionnaire_instance_id, question_id, answer_option_id, value, versioning
		FROM answers
		WHERE questionnaire_instance_id = $1 AND answer_option_id = $2
		ORDER BY versioning DESC
		LIMIT 1
	`
)
