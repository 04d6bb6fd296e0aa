package constvars

const (
	LoggingEventIDKey            = "event_id"
	LoggingEventTypeKey          = "event_type"
	LoggingStudyIDKey            = "study_id"
	LoggingPseudonymKey          = "pseudonym"
	LoggingQuestionnaireKey      = "questionnaire_id"
	LoggingVersionKey            = "questionnaire_version"
	LoggingCycleKey              = "cycle"
	LoggingInstanceIDKey         = "instance_id"
	LoggingScopeKey              = "scope"
	LoggingCreatedCountKey       = "created_count"
	LoggingDeletedCountKey       = "deleted_count"
	LoggingRedisKey              = "redis_key"
	LoggingLockValueKey          = "lock_value"
	LoggingLockExpirationTimeKey = "lock_expiration_time"
	LoggingLockStoredValueKey    = "lock_stored_value"
	LoggingLockExpectedValueKey  = "lock_expected_value"
)
