package questionnaires

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

type questionnairePostgresRepository struct {
	DB  *sql.DB
	Log *zap.Logger
}

var (
	questionnairePostgresRepositoryInstance contracts.QuestionnaireRepository
	onceQuestionnairePostgresRepository     sync.Once
)

func NewQuestionnairePostgresRepository(db *sql.DB, logger *zap.Logger) contracts.QuestionnaireRepository {
	onceQuestionnairePostgresRepository.Do(func() {
		instance := &questionnairePostgresRepository{
			DB:  db,
			Log: logger,
		}
		questionnairePostgresRepositoryInstance = instance
	})
	return questionnairePostgresRepositoryInstance
}

func scanDefinition(row interface{ Scan(...interface{}) error }) (*models.QuestionnaireDefinition, error) {
	var def models.QuestionnaireDefinition
	var activateAtDate sql.NullTime
	var notificationWeekday sql.NullInt64
	err := row.Scan(
		&def.ID, &def.Version, &def.StudyID, &def.Name, &def.Type, &def.Active,
		&def.CycleUnit, &def.CycleAmount, &def.CyclePerDay, &def.CycleFirstHour,
		&def.ActivateAfterDays, &def.DeactivateAfterDays, &def.ExpiresAfterDays,
		&activateAtDate, &notificationWeekday, &def.ComplianceNeeded,
		&def.SortOrder, &def.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if activateAtDate.Valid {
		date := activateAtDate.Time
		def.ActivateAtDate = &date
	}
	if notificationWeekday.Valid {
		weekday := time.Weekday(notificationWeekday.Int64)
		def.NotificationWeekday = &weekday
	}
	return &def, nil
}

func (r *questionnairePostgresRepository) FindLatestVersion(ctx context.Context, questionnaireID int) (*models.QuestionnaireDefinition, error) {
	row := r.DB.QueryRowContext(ctx, queries.GetLatestQuestionnaireVersion, questionnaireID)
	def, err := scanDefinition(row)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	return r.attachCondition(ctx, def)
}

func (r *questionnairePostgresRepository) FindByIDAndVersion(ctx context.Context, questionnaireID, version int) (*models.QuestionnaireDefinition, error) {
	row := r.DB.QueryRowContext(ctx, queries.GetQuestionnaireByIDAndVersion, questionnaireID, version)
	def, err := scanDefinition(row)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	return r.attachCondition(ctx, def)
}

func (r *questionnairePostgresRepository) FindLatestByStudy(ctx context.Context, studyID string) ([]models.QuestionnaireDefinition, error) {
	rows, err := r.DB.QueryContext(ctx, queries.GetLatestQuestionnairesByStudy, studyID)
	if err != nil {
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	defer rows.Close()

	var defs []models.QuestionnaireDefinition
	for rows.Next() {
		def, err := scanDefinition(rows)
		if err != nil {
			return nil, exceptions.ErrPostgresDBFindData(err)
		}
		defs = append(defs, *def)
	}
	if err := rows.Err(); err != nil {
		return nil, exceptions.ErrPostgresDBFindData(err)
	}

	for i := range defs {
		withCondition, err := r.attachCondition(ctx, &defs[i])
		if err != nil {
			return nil, err
		}
		defs[i] = *withCondition
	}
	return defs, nil
}

func (r *questionnairePostgresRepository) FindConditionsTargeting(ctx context.Context, questionnaireID int) ([]models.Condition, error) {
	rows, err := r.DB.QueryContext(ctx, queries.GetConditionsTargetingQuestionnaire, questionnaireID)
	if err != nil {
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	defer rows.Close()

	var conditions []models.Condition
	for rows.Next() {
		var cond models.Condition
		err := rows.Scan(
			&cond.ID, &cond.QuestionnaireID, &cond.QuestionnaireVersion, &cond.Type,
			&cond.TargetQuestionnaireID, &cond.TargetAnswerOptionID, &cond.Operand, &cond.Value,
		)
		if err != nil {
			return nil, exceptions.ErrPostgresDBFindData(err)
		}
		conditions = append(conditions, cond)
	}
	if err := rows.Err(); err != nil {
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	return conditions, nil
}

func (r *questionnairePostgresRepository) attachCondition(ctx context.Context, def *models.QuestionnaireDefinition) (*models.QuestionnaireDefinition, error) {
	row := r.DB.QueryRowContext(ctx, queries.GetConditionByQuestionnaire, def.ID, def.Version)
	var cond models.Condition
	err := row.Scan(
		&cond.ID, &cond.QuestionnaireID, &cond.QuestionnaireVersion, &cond.Type,
		&cond.TargetQuestionnaireID, &cond.TargetAnswerOptionID, &cond.Operand, &cond.Value,
	)
	if err == sql.ErrNoRows {
		return def, nil
	} else if err != nil {
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	def.Condition = &cond
	return def, nil
}
