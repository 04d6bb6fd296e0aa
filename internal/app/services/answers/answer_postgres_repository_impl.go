package answers

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

type answerPostgresRepository struct {
	DB  *sql.DB
	Log *zap.Logger
}

var (
	answerPostgresRepositoryInstance contracts.AnswerRepository
	onceAnswerPostgresRepository     sync.Once
)

func NewAnswerPostgresRepository(db *sql.DB, logger *zap.Logger) contracts.AnswerRepository {
	onceAnswerPostgresRepository.Do(func() {
		instance := &answerPostgresRepository{
			DB:  db,
			Log: logger,
		}
		answerPostgresRepositoryInstance = instance
	})
	return answerPostgresRepositoryInstance
}

func (r *answerPostgresRepository) FindByInstanceAndOption(ctx context.Context, instanceID, answerOptionID int) (*models.Answer, error) {
	row := r.DB.QueryRowContext(ctx, queries.GetAnswerByInstanceAndOption, instanceID, answerOptionID)
	var answer models.Answer
	err := row.Scan(&answer.InstanceID, &answer.QuestionID, &answer.AnswerOptionID, &answer.Value, &answer.Versioning)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	return &answer, nil
}
