package contracts

import (
	"context"
	"studyflow-service/internal/app/models"
	"studyflow-service/internal/pkg/dto"
)

// InstanceContentClient is the questionnaire-content collaborator. It persists
// instance content rows for a batch of new instances and returns the rows with
// assigned ids.
type InstanceContentClient interface {
	CreateInstances(ctx context.Context, batch []dto.CreateInstanceRequest) ([]models.QuestionnaireInstance, error)
}
