package models

import "time"

type CycleUnit string

const (
	CycleUnitOnce    CycleUnit = "once"
	CycleUnitDate    CycleUnit = "date"
	CycleUnitSpontan CycleUnit = "spontan"
	CycleUnitHour    CycleUnit = "hour"
	CycleUnitDay     CycleUnit = "day"
	CycleUnitWeek    CycleUnit = "week"
	CycleUnitMonth   CycleUnit = "month"
)

type QuestionnaireType string

const (
	QuestionnaireTypeForProbands     QuestionnaireType = "for_probands"
	QuestionnaireTypeForResearchTeam QuestionnaireType = "for_research_team"
)

// QuestionnaireDefinition is one authored version of a questionnaire template.
// A newer version supersedes an older one without deleting its history.
type QuestionnaireDefinition struct {
	ID                  int               `json:"id"`
	Version             int               `json:"version"`
	StudyID             string            `json:"studyId"`
	Name                string            `json:"name"`
	Type                QuestionnaireType `json:"type"`
	Active              bool              `json:"active"`
	CycleUnit           CycleUnit         `json:"cycleUnit"`
	CycleAmount         int               `json:"cycleAmount"`
	CyclePerDay         int               `json:"cyclePerDay"`
	CycleFirstHour      int               `json:"cycleFirstHour"`
	ActivateAfterDays   int               `json:"activateAfterDays"`
	DeactivateAfterDays int               `json:"deactivateAfterDays"`
	ExpiresAfterDays    int               `json:"expiresAfterDays"`
	ActivateAtDate      *time.Time        `json:"activateAtDate,omitempty"`
	NotificationWeekday *time.Weekday     `json:"notificationWeekday,omitempty"`
	ComplianceNeeded    bool              `json:"complianceNeeded"`
	SortOrder           int               `json:"sortOrder"`
	CreatedAt           time.Time         `json:"createdAt"`
	Condition           *Condition        `json:"condition,omitempty"`
}

func (d *QuestionnaireDefinition) IsForProbands() bool {
	return d.Type == QuestionnaireTypeForProbands
}

// HasValidCycle reports whether the cycle descriptor carries every field its
// unit requires. A definition failing this check is a contract violation and
// its scope must be skipped untouched.
func (d *QuestionnaireDefinition) HasValidCycle() bool {
	switch d.CycleUnit {
	case CycleUnitOnce, CycleUnitSpontan:
		return true
	case CycleUnitDate:
		return d.ActivateAtDate != nil
	case CycleUnitDay, CycleUnitWeek, CycleUnitMonth:
		return d.CycleAmount > 0
	case CycleUnitHour:
		return d.CycleAmount > 0 && d.CyclePerDay > 0
	default:
		return false
	}
}
