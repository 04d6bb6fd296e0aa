package instances

import (
	"context"
	"database/sql"
	"studyflow-service/internal/app/contracts"
	"studyflow-service/internal/app/models"
	"studyflow-service/internal/pkg/exceptions"
	"studyflow-service/internal/pkg/queries"
	"sync"
	"time"

	"go.uber.org/zap"
)

type instancePostgresRepository struct {
	DB  *sql.DB
	Log *zap.Logger
}

var (
	instancePostgresRepositoryInstance contracts.InstanceRepository
	onceInstancePostgresRepository     sync.Once
)

func NewInstancePostgresRepository(db *sql.DB, logger *zap.Logger) contracts.InstanceRepository {
	onceInstancePostgresRepository.Do(func() {
		instance := &instancePostgresRepository{
			DB:  db,
			Log: logger,
		}
		instancePostgresRepositoryInstance = instance
	})
	return instancePostgresRepositoryInstance
}

func scanInstance(row interface{ Scan(...interface{}) error }) (*models.QuestionnaireInstance, error) {
	var instance models.QuestionnaireInstance
	err := row.Scan(
		&instance.ID, &instance.QuestionnaireID, &instance.QuestionnaireVersion,
		&instance.QuestionnaireName, &instance.StudyID, &instance.Pseudonym,
		&instance.Cycle, &instance.DateOfIssue, &instance.Status,
		&instance.ReleaseVersion, &instance.SortOrder,
	)
	if err != nil {
		return nil, err
	}
	return &instance, nil
}

func collectInstances(rows *sql.Rows) ([]models.QuestionnaireInstance, error) {
	defer rows.Close()
	var result []models.QuestionnaireInstance
	for rows.Next() {
		instance, err := scanInstance(rows)
		if err != nil {
			return nil, exceptions.ErrPostgresDBFindData(err)
		}
		result = append(result, *instance)
	}
	if err := rows.Err(); err != nil {
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	return result, nil
}

// instanceScopeTx wraps one scope reconciliation transaction. The FOR UPDATE
// in FindForScope is what serializes concurrent reconciliations of a scope.
type instanceScopeTx struct {
	tx              *sql.Tx
	questionnaireID int
	pseudonym       string
}

func (r *instancePostgresRepository) BeginScopeTx(ctx context.Context, questionnaireID int, pseudonym string) (contracts.InstanceScopeTx, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, exceptions.ErrPostgresDBTransaction(err)
	}
	return &instanceScopeTx{tx: tx, questionnaireID: questionnaireID, pseudonym: pseudonym}, nil
}

func (t *instanceScopeTx) FindForScope(ctx context.Context) ([]models.QuestionnaireInstance, error) {
	rows, err := t.tx.QueryContext(ctx, queries.GetInstancesForScopeForUpdate, t.questionnaireID, t.pseudonym)
	if err != nil {
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	return collectInstances(rows)
}

func (t *instanceScopeTx) Create(ctx context.Context, instance *models.QuestionnaireInstance) (int, error) {
	var id int
	err := t.tx.QueryRowContext(ctx, queries.InsertInstance,
		instance.QuestionnaireID, instance.QuestionnaireVersion, instance.QuestionnaireName,
		instance.StudyID, instance.Pseudonym, instance.Cycle, instance.DateOfIssue,
		instance.Status, instance.ReleaseVersion, instance.SortOrder,
	).Scan(&id)
	if err == sql.ErrNoRows {
		// Duplicate cycle; the insert was a no-op.
		return 0, nil
	} else if err != nil {
		return 0, exceptions.ErrPostgresDBInsertData(err)
	}
	return id, nil
}

func (t *instanceScopeTx) Delete(ctx context.Context, instanceID int) error {
	_, err := t.tx.ExecContext(ctx, queries.DeleteInstance, instanceID)
	if err != nil {
		return exceptions.ErrPostgresDBDeleteData(err)
	}
	return nil
}

func (t *instanceScopeTx) Activate(ctx context.Context, instanceID int) error {
	_, err := t.tx.ExecContext(ctx, queries.ActivateInstance, instanceID)
	if err != nil {
		return exceptions.ErrPostgresDBUpdateData(err)
	}
	return nil
}

func (t *instanceScopeTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return exceptions.ErrPostgresDBTransaction(err)
	}
	return nil
}

func (t *instanceScopeTx) Rollback() error {
	if err := t.tx.Rollback(); err != nil && err != sql.ErrTxDone {
		return exceptions.ErrPostgresDBTransaction(err)
	}
	return nil
}

func (r *instancePostgresRepository) ActivateDue(ctx context.Context, now time.Time) ([]models.QuestionnaireInstance, error) {
	rows, err := r.DB.QueryContext(ctx, queries.ActivateDueInstances, now)
	if err != nil {
		return nil, exceptions.ErrPostgresDBUpdateData(err)
	}
	return collectInstances(rows)
}

func (r *instancePostgresRepository) ExpireOverdue(ctx context.Context, now time.Time) ([]models.QuestionnaireInstance, error) {
	rows, err := r.DB.QueryContext(ctx, queries.ExpireOverdueInstances, now)
	if err != nil {
		return nil, exceptions.ErrPostgresDBUpdateData(err)
	}
	return collectInstances(rows)
}

func (r *instancePostgresRepository) FindByID(ctx context.Context, instanceID int) (*models.QuestionnaireInstance, error) {
	row := r.DB.QueryRowContext(ctx, queries.GetInstanceByID, instanceID)
	instance, err := scanInstance(row)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	return instance, nil
}

func (r *instancePostgresRepository) FindLatestReleased(ctx context.Context, questionnaireID int, pseudonym string) (*models.QuestionnaireInstance, error) {
	row := r.DB.QueryRowContext(ctx, queries.GetLatestReleasedInstance, questionnaireID, pseudonym)
	instance, err := scanInstance(row)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	return instance, nil
}

func (r *instancePostgresRepository) DeleteByPseudonym(ctx context.Context, pseudonym string) (int, error) {
	result, err := r.DB.ExecContext(ctx, queries.DeleteInstancesByPseudonym, pseudonym)
	if err != nil {
		return 0, exceptions.ErrPostgresDBDeleteData(err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, exceptions.ErrPostgresDBDeleteData(err)
	}
	return int(deleted), nil
}
