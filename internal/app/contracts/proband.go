package contracts

import (
	"context"
	"studyflow-service/internal/app/models"
)

type ProbandRepository interface {
	FindByPseudonym(ctx context.Context, pseudonym string) (*models.Proband, error)
	FindEligibleByStudy(ctx context.Context, studyID string) ([]models.Proband, error)
}
