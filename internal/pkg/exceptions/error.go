package exceptions

import "fmt"

var (
	// Store errors. All transient: the store being unreachable or a statement
	// failing mid-transaction is resolved by retry and event redelivery.
	ErrPostgresDBFindData = func(err error) *CustomError {
		return BuildNewCustomError(err, KindTransient, "failed to read from postgres")
	}
	ErrPostgresDBInsertData = func(err error) *CustomError {
		return BuildNewCustomError(err, KindTransient, "failed to insert into postgres")
	}
	ErrPostgresDBUpdateData = func(err error) *CustomError {
		return BuildNewCustomError(err, KindTransient, "failed to update postgres")
	}
	ErrPostgresDBDeleteData = func(err error) *CustomError {
		return BuildNewCustomError(err, KindTransient, "failed to delete from postgres")
	}
	ErrPostgresDBTransaction = func(err error) *CustomError {
		return BuildNewCustomError(err, KindTransient, "failed to run postgres transaction")
	}

	// Redis errors.
	ErrRedisSet = func(err error) *CustomError {
		return BuildNewCustomError(err, KindTransient, "failed to set redis value")
	}
	ErrRedisGet = func(err error) *CustomError {
		return BuildNewCustomError(err, KindTransient, "failed to get redis value")
	}
	ErrRedisDelete = func(err error) *CustomError {
		return BuildNewCustomError(err, KindTransient, "failed to delete redis value")
	}
	ErrRedisUnlock = func(err error) *CustomError {
		return BuildNewCustomError(err, KindInconsistency, "failed to release redis lock")
	}

	// Queue errors.
	ErrQueuePublish = func(err error) *CustomError {
		return BuildNewCustomError(err, KindTransient, "failed to publish queue message")
	}
	ErrQueueConsume = func(err error) *CustomError {
		return BuildNewCustomError(err, KindTransient, "failed to consume queue message")
	}
	ErrQueueMessageInvalid = func(err error) *CustomError {
		return BuildNewCustomError(err, KindInconsistency, "queue message failed validation")
	}
	ErrCannotMarshalJSON = func(err error) *CustomError {
		return BuildNewCustomError(err, KindInconsistency, "cannot marshal JSON")
	}
	ErrCannotUnmarshalJSON = func(err error) *CustomError {
		return BuildNewCustomError(err, KindInconsistency, "cannot unmarshal JSON")
	}

	// Engine errors.
	ErrConditionMalformed = func(reason string) *CustomError {
		return BuildNewCustomError(nil, KindInconsistency, fmt.Sprintf("malformed condition: %s", reason))
	}
	ErrDefinitionMalformed = func(reason string) *CustomError {
		return BuildNewCustomError(nil, KindContract, fmt.Sprintf("malformed questionnaire definition: %s", reason))
	}
	ErrContentRequest = func(err error) *CustomError {
		return BuildNewCustomError(err, KindTransient, "instance content request failed")
	}
)
