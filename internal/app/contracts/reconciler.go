package contracts

import (
	"context"
	"studyflow-service/internal/app/models"
)

type ReconcilerService interface {
	// ReconcileScope brings the persisted instance set of one (questionnaire,
	// proband) pair in line with the definition, condition and compliance
	// state, inside a single scope transaction.
	ReconcileScope(ctx context.Context, def *models.QuestionnaireDefinition, proband *models.Proband) error
	// ReconcileStudy fans ReconcileScope out over every eligible proband of
	// the definition's study.
	ReconcileStudy(ctx context.Context, def *models.QuestionnaireDefinition) error
	// PurgeProband removes every instance of a deleted proband.
	PurgeProband(ctx context.Context, pseudonym string) error
}
