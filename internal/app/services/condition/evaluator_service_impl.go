package condition

import (
	"context"
	"strconv"
	"strings"
	"studyflow-service/internal/app/contracts"
	"studyflow-service/internal/app/models"
	"studyflow-service/internal/pkg/constvars"
	"studyflow-service/internal/pkg/exceptions"
	"sync"

	"go.uber.org/zap"
)

type evaluatorService struct {
	instanceRepository contracts.InstanceRepository
	answerRepository   contracts.AnswerRepository
	Log                *zap.Logger
}

var (
	evaluatorServiceInstance contracts.ConditionEvaluator
	onceEvaluatorService     sync.Once
)

func NewEvaluatorService(
	instanceRepository contracts.InstanceRepository,
	answerRepository contracts.AnswerRepository,
	logger *zap.Logger,
) contracts.ConditionEvaluator {
	onceEvaluatorService.Do(func() {
		instance := &evaluatorService{
			instanceRepository: instanceRepository,
			answerRepository:   answerRepository,
			Log:                logger,
		}
		evaluatorServiceInstance = instance
	})
	return evaluatorServiceInstance
}

func (s *evaluatorService) Evaluate(ctx context.Context, cond *models.Condition, pseudonym string) (contracts.ConditionResult, error) {
	if cond == nil {
		return contracts.ConditionSatisfied, nil
	}

	if reason, ok := malformedReason(cond); ok {
		s.Log.Warn("conditionEvaluator.Evaluate degrading malformed condition to unsatisfied",
			zap.Int(constvars.LoggingQuestionnaireKey, cond.QuestionnaireID),
			zap.Error(exceptions.ErrConditionMalformed(reason)),
		)
		return contracts.ConditionUnsatisfied, nil
	}

	// All three types resolve against the latest released instance of the
	// target. For internal_this the cycle under evaluation is the one being
	// gated, so it cannot have answers of its own yet; the latest release is
	// the nearest answer history a same-questionnaire condition can see.
	instance, err := s.instanceRepository.FindLatestReleased(ctx, cond.TargetQuestionnaireID, pseudonym)
	if err != nil {
		return contracts.ConditionUnknown, err
	}
	if instance == nil {
		return contracts.ConditionUnknown, nil
	}

	answer, err := s.answerRepository.FindByInstanceAndOption(ctx, instance.ID, cond.TargetAnswerOptionID)
	if err != nil {
		return contracts.ConditionUnknown, err
	}
	if answer == nil {
		return contracts.ConditionUnknown, nil
	}

	satisfied, known := compare(answer.Value, cond.Operand, cond.Value)
	if !known {
		s.Log.Warn("conditionEvaluator.Evaluate unrecognized operand, treating as unsatisfied",
			zap.Int(constvars.LoggingQuestionnaireKey, cond.QuestionnaireID),
			zap.String("operand", cond.Operand),
		)
		return contracts.ConditionUnsatisfied, nil
	}
	if satisfied {
		return contracts.ConditionSatisfied, nil
	}
	return contracts.ConditionUnsatisfied, nil
}

func malformedReason(cond *models.Condition) (string, bool) {
	switch cond.Type {
	case models.ConditionTypeInternalLast, models.ConditionTypeInternalThis:
		if cond.TargetQuestionnaireID != cond.QuestionnaireID {
			return "internal condition targets a different questionnaire", true
		}
	case models.ConditionTypeExternal:
		if cond.TargetQuestionnaireID == cond.QuestionnaireID {
			return "external condition targets its own questionnaire", true
		}
	default:
		return "unknown condition type " + string(cond.Type), true
	}
	return "", false
}

// compare applies operand to an answer value. Multi-select answers arrive as
// semicolon-separated values; equality holds when any element matches,
// inequality when none does. The second return is false for operands outside
// the supported set (a lone "=" from older authoring data included).
func compare(answerValue, operand, conditionValue string) (satisfied, known bool) {
	switch operand {
	case "==":
		return anyElementEquals(answerValue, conditionValue), true
	case "!=":
		return !anyElementEquals(answerValue, conditionValue), true
	case "<", ">", "<=", ">=":
		return compareOrdered(answerValue, operand, conditionValue), true
	default:
		return false, false
	}
}

func anyElementEquals(answerValue, conditionValue string) bool {
	for _, element := range strings.Split(answerValue, ";") {
		if strings.TrimSpace(element) == conditionValue {
			return true
		}
	}
	return false
}

func compareOrdered(answerValue, operand, conditionValue string) bool {
	answerNumber, errAnswer := strconv.ParseFloat(strings.TrimSpace(answerValue), 64)
	conditionNumber, errCondition := strconv.ParseFloat(strings.TrimSpace(conditionValue), 64)

	var less, equal bool
	if errAnswer == nil && errCondition == nil {
		less = answerNumber < conditionNumber
		equal = answerNumber == conditionNumber
	} else {
		less = answerValue < conditionValue
		equal = answerValue == conditionValue
	}

	switch operand {
	case "<":
		return less
	case ">":
		return !less && !equal
	case "<=":
		return less || equal
	case ">=":
		return !less
	}
	return false
}
