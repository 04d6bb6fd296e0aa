package models

import "time"

type InstanceStatus string

const (
	InstanceStatusInactive      InstanceStatus = "inactive"
	InstanceStatusActive        InstanceStatus = "active"
	InstanceStatusInProgress    InstanceStatus = "in_progress"
	InstanceStatusReleasedOnce  InstanceStatus = "released_once"
	InstanceStatusReleasedTwice InstanceStatus = "released_twice"
	InstanceStatusReleased      InstanceStatus = "released"
	InstanceStatusExpired       InstanceStatus = "expired"
	InstanceStatusDeleted       InstanceStatus = "deleted"
)

// QuestionnaireInstance is one dated occurrence of a definition assigned to a
// proband. At most one instance exists per (questionnaire, version, proband,
// cycle).
type QuestionnaireInstance struct {
	ID                   int            `json:"id"`
	QuestionnaireID      int            `json:"questionnaireId"`
	QuestionnaireVersion int            `json:"questionnaireVersion"`
	QuestionnaireName    string         `json:"questionnaireName"`
	StudyID              string         `json:"studyId"`
	Pseudonym            string         `json:"pseudonym"`
	Cycle                int            `json:"cycle"`
	DateOfIssue          time.Time      `json:"dateOfIssue"`
	Status               InstanceStatus `json:"status"`
	ReleaseVersion       int            `json:"releaseVersion"`
	SortOrder            int            `json:"sortOrder"`
}

// Terminal states are never touched by activation or expiration sweeps.
func (s InstanceStatus) IsTerminal() bool {
	switch s {
	case InstanceStatusReleasedOnce, InstanceStatusReleasedTwice,
		InstanceStatusReleased, InstanceStatusExpired, InstanceStatusDeleted:
		return true
	}
	return false
}

func (s InstanceStatus) IsExpirable() bool {
	switch s {
	case InstanceStatusInactive, InstanceStatusActive, InstanceStatusInProgress:
		return true
	}
	return false
}
