package probands

import (
	"context"
	"database/sql"
	"studyflow-service/internal/app/contracts"
	"studyflow-service/internal/app/models"
	"studyflow-service/internal/pkg/exceptions"
	"studyflow-service/internal/pkg/queries"
	"sync"

	"go.uber.org/zap"
)

type probandPostgresRepository struct {
	DB  *sql.DB
	Log *zap.Logger
}

var (
	probandPostgresRepositoryInstance contracts.ProbandRepository
	onceProbandPostgresRepository     sync.Once
)

func NewProbandPostgresRepository(db *sql.DB, logger *zap.Logger) contracts.ProbandRepository {
	onceProbandPostgresRepository.Do(func() {
		instance := &probandPostgresRepository{
			DB:  db,
			Log: logger,
		}
		probandPostgresRepositoryInstance = instance
	})
	return probandPostgresRepositoryInstance
}

func scanProband(row interface{ Scan(...interface{}) error }) (*models.Proband, error) {
	var proband models.Proband
	var firstLoggedInAt sql.NullTime
	err := row.Scan(&proband.Pseudonym, &proband.StudyID, &proband.Status, &firstLoggedInAt, &proband.ComplianceSamples)
	if err != nil {
		return nil, err
	}
	if firstLoggedInAt.Valid {
		loginTime := firstLoggedInAt.Time
		proband.FirstLoggedInAt = &loginTime
	}
	return &proband, nil
}

func (r *probandPostgresRepository) FindByPseudonym(ctx context.Context, pseudonym string) (*models.Proband, error) {
	row := r.DB.QueryRowContext(ctx, queries.GetProbandByPseudonym, pseudonym)
	proband, err := scanProband(row)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	return proband, nil
}

func (r *probandPostgresRepository) FindEligibleByStudy(ctx context.Context, studyID string) ([]models.Proband, error) {
	rows, err := r.DB.QueryContext(ctx, queries.GetEligibleProbandsByStudy, studyID)
	if err != nil {
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	defer rows.Close()

	var probandList []models.Proband
	for rows.Next() {
		proband, err := scanProband(rows)
		if err != nil {
			return nil, exceptions.ErrPostgresDBFindData(err)
		}
		probandList = append(probandList, *proband)
	}
	if err := rows.Err(); err != nil {
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	return probandList, nil
}
