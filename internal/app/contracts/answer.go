package contracts

import (
	"context"
	"studyflow-service/internal/app/models"
)

type AnswerRepository interface {
	FindByInstanceAndOption(ctx context.Context, instanceID, answerOptionID int) (*models.Answer, error)
}
