package models

// Answer is a single answer row for an instance. Owned by the content
// collaborator; read-only input to condition evaluation.
type Answer struct {
	InstanceID     int    `json:"instanceId"`
	QuestionID     int    `json:"questionId"`
	AnswerOptionID int    `json:"answerOptionId"`
	Value          string `json:"value"`
	Versioning     int    `json:"versioning"`
}
