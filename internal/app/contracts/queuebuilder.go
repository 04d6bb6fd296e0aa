package contracts

import (
	"context"
	"studyflow-service/internal/app/models"
)

// InstanceQueueService keeps the per-proband ordered presentation queue of
// newly active instances.
type InstanceQueueService interface {
	Add(ctx context.Context, instance *models.QuestionnaireInstance) error
	Remove(ctx context.Context, instance *models.QuestionnaireInstance) error
	List(ctx context.Context, pseudonym string) ([]string, error)
	Clear(ctx context.Context, pseudonym string) error
}
