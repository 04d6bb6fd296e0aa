package models

type ConditionType string

const (
	ConditionTypeInternalLast ConditionType = "internal_last"
	ConditionTypeInternalThis ConditionType = "internal_this"
	ConditionTypeExternal     ConditionType = "external"
)

// Condition gates instance creation for a definition on an answer given to
// the same questionnaire (internal_*) or a different one (external).
type Condition struct {
	ID                    int           `json:"id"`
	QuestionnaireID       int           `json:"questionnaireId"`
	QuestionnaireVersion  int           `json:"questionnaireVersion"`
	Type                  ConditionType `json:"type"`
	TargetQuestionnaireID int           `json:"targetQuestionnaireId"`
	TargetAnswerOptionID  int           `json:"targetAnswerOptionId"`
	Operand               string        `json:"operand"`
	Value                 string        `json:"value"`
}
