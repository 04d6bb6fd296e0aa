package contracts

import (
	"context"
	"studyflow-service/internal/app/models"
)

// LifecycleEventPublisher emits activation/expiration messages for external
// consumers (notification delivery lives elsewhere).
type LifecycleEventPublisher interface {
	PublishActivated(ctx context.Context, instance *models.QuestionnaireInstance) error
	PublishExpired(ctx context.Context, instance *models.QuestionnaireInstance) error
}
