package contracts

import (
	"context"
	"studyflow-service/internal/app/models"
)

type QuestionnaireRepository interface {
	// FindLatestVersion returns the newest version of a questionnaire with its
	// condition attached, or nil when the id is unknown.
	FindLatestVersion(ctx context.Context, questionnaireID int) (*models.QuestionnaireDefinition, error)
	FindByIDAndVersion(ctx context.Context, questionnaireID, version int) (*models.QuestionnaireDefinition, error)
	// FindLatestByStudy returns the latest version of every definition in a
	// study, deactivated ones included so their scopes still get cleaned up.
	FindLatestByStudy(ctx context.Context, studyID string) ([]models.QuestionnaireDefinition, error)
	// FindConditionsTargeting returns every condition whose target references
	// the given questionnaire, across all studies.
	FindConditionsTargeting(ctx context.Context, questionnaireID int) ([]models.Condition, error)
}
