package contracts

import (
	"context"
	"studyflow-service/internal/app/models"
)

type ConditionResult string

const (
	ConditionSatisfied   ConditionResult = "satisfied"
	ConditionUnsatisfied ConditionResult = "unsatisfied"
	ConditionUnknown     ConditionResult = "unknown"
)

type ConditionEvaluator interface {
	// Evaluate resolves a condition against the proband's released answer
	// history. A nil condition is always satisfied.
	Evaluate(ctx context.Context, cond *models.Condition, pseudonym string) (ConditionResult, error)
}
