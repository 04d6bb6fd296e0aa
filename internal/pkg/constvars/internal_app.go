package constvars

type ContextKey string

// CONTEXT_EVENT_ID_KEY carries the id of the change event or queue message
// that triggered the current unit of work, for log correlation.
const CONTEXT_EVENT_ID_KEY ContextKey = "eventID"

const (
	// Inbound queue message types.
	EventProbandCreated  = "proband.created"
	EventProbandDeleted  = "proband.deleted"
	EventProbandLoggedIn = "proband.logged_in"

	// Outbound queue message types.
	EventInstanceActivated = "questionnaire_instance.activated"
	EventInstanceExpired   = "questionnaire_instance.expired"
)

// Change-feed tables the reactor resolves scopes for.
const (
	ChangeFeedTableQuestionnaires = "questionnaires"
	ChangeFeedTableProbands       = "probands"
	ChangeFeedTableAnswers        = "answers"
	ChangeFeedTableInstances      = "questionnaire_instances"
)

const (
	RedisKeySweeperLock         = "engine:sweeper:lock"
	RedisKeyInstanceQueuePrefix = "engine:instance_queue:"
	RedisKeyScopeLockPrefix     = "engine:scope:"
)
