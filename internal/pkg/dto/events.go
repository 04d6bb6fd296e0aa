package dto

import (
	"time"

	"github.com/goccy/go-json"
)

// ProbandEventMessage is the payload of inbound proband lifecycle messages.
type ProbandEventMessage struct {
	Type      string `json:"type" validate:"required,oneof=proband.created proband.deleted proband.logged_in"`
	Pseudonym string `json:"pseudonym" validate:"required"`
}

// QuestionnaireReference is the compact questionnaire identity carried on
// outbound lifecycle messages.
type QuestionnaireReference struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// InstanceEventMessage is published on instance activation and expiration.
type InstanceEventMessage struct {
	Type          string                 `json:"type"`
	InstanceID    int                    `json:"instanceId"`
	StudyID       string                 `json:"studyId"`
	Pseudonym     string                 `json:"pseudonym"`
	Status        string                 `json:"status"`
	Questionnaire QuestionnaireReference `json:"questionnaire"`
}

// ChangeEvent is one row change delivered by the change feed, carrying the
// affected row's before/after snapshots as raw JSON.
type ChangeEvent struct {
	ID        string          `json:"id"`
	Table     string          `json:"table"`
	Action    string          `json:"action"` // insert | update | delete
	Before    json.RawMessage `json:"before,omitempty"`
	After     json.RawMessage `json:"after,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// CreateInstanceRequest is one entry of the batch create call sent to the
// questionnaire-content collaborator, which persists the content rows and
// assigns instance ids.
type CreateInstanceRequest struct {
	QuestionnaireID      int       `json:"questionnaireId"`
	QuestionnaireVersion int       `json:"questionnaireVersion"`
	QuestionnaireName    string    `json:"questionnaireName"`
	StudyID              string    `json:"studyId"`
	Pseudonym            string    `json:"pseudonym"`
	Cycle                int       `json:"cycle"`
	DateOfIssue          time.Time `json:"dateOfIssue"`
	Status               string    `json:"status"`
	SortOrder            int       `json:"sortOrder"`
}
