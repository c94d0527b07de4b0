package contract

// Card queue states.
const (
	QueueUserBuried  = -3
	QueueSchedBuried = -2
	QueueSuspended   = -1
	QueueNew         = 0
	QueueLearning    = 1
	QueueReview      = 2
)

// Card types.
const (
	CardTypeNew        = 0
	CardTypeLearning   = 1
	CardTypeReview     = 2
	CardTypeRelearning = 3
)

const (
	// DefaultDeckID is the id of the host's built-in Default deck. It is
	// never a valid fallback for a deck the caller asked for by name.
	DefaultDeckID = 1

	// DefaultModelName is the name of the host's built-in Basic note type.
	DefaultModelName = "Basic"

	// DefaultBasicModelID matches the host's fixed id for the Basic model.
	DefaultBasicModelID = 1607392319495

	// StartingEaseFactor is the ease a card returns to when its progress
	// is reset, in permille.
	StartingEaseFactor = 2500
)
