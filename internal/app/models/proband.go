package models

import "time"

type ProbandStatus string

const (
	ProbandStatusActive      ProbandStatus = "active"
	ProbandStatusDeactivated ProbandStatus = "deactivated"
	ProbandStatusDeleted     ProbandStatus = "deleted"
)

// Proband is a study participant. FirstLoggedInAt stays nil until the first
// login; until then per-proband schedules have no anchor date.
type Proband struct {
	Pseudonym         string        `json:"pseudonym"`
	StudyID           string        `json:"studyId"`
	Status            ProbandStatus `json:"status"`
	FirstLoggedInAt   *time.Time    `json:"firstLoggedInAt,omitempty"`
	ComplianceSamples bool          `json:"complianceSamples"`
}

func (p *Proband) IsEligible() bool {
	return p.Status == ProbandStatusActive
}
