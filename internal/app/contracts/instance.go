package contracts

import (
	"context"
	"studyflow-service/internal/app/models"
	"time"
)

// InstanceScopeTx is the transactional boundary for one (questionnaire,
// proband) scope. FindForScope takes row locks, so two reconciliations of the
// same scope serialize on the store.
type InstanceScopeTx interface {
	FindForScope(ctx context.Context) ([]models.QuestionnaireInstance, error)
	Create(ctx context.Context, instance *models.QuestionnaireInstance) (int, error)
	Delete(ctx context.Context, instanceID int) error
	Activate(ctx context.Context, instanceID int) error
	Commit() error
	Rollback() error
}

type InstanceRepository interface {
	BeginScopeTx(ctx context.Context, questionnaireID int, pseudonym string) (InstanceScopeTx, error)

	// ActivateDue and ExpireOverdue are the sweep queries. They only move
	// instances forward in the state machine and return the touched rows.
	ActivateDue(ctx context.Context, now time.Time) ([]models.QuestionnaireInstance, error)
	ExpireOverdue(ctx context.Context, now time.Time) ([]models.QuestionnaireInstance, error)

	// FindLatestReleased returns the newest instance of a questionnaire for a
	// proband with releaseVersion >= 1, or nil when none was released yet.
	FindLatestReleased(ctx context.Context, questionnaireID int, pseudonym string) (*models.QuestionnaireInstance, error)
	FindByID(ctx context.Context, instanceID int) (*models.QuestionnaireInstance, error)
	DeleteByPseudonym(ctx context.Context, pseudonym string) (int, error)
}
