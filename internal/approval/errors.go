package approval

import "errors"

// Engine error taxonomy. Every rejected action returns one of these,
// never a bare false/nil; handlers map them to business codes.
var (
	// ErrSchemaNotFound is returned when an approval schema id does not exist.
	ErrSchemaNotFound = errors.New("approval schema not found")

	// ErrDocumentNotFound is returned when no approval chain exists for a
	// document id.
	ErrDocumentNotFound = errors.New("document has no approval chain")

	// ErrStepNotFound is returned when a step id or step order does not exist.
	ErrStepNotFound = errors.New("approval step not found")

	// ErrInvalidTransition is returned when an action targets a step that is
	// not current or already terminal (double-approve, acting after decline).
	ErrInvalidTransition = errors.New("step is not awaiting action")

	// ErrForbidden is returned when the actor does not satisfy the step's
	// eligibility rule.
	ErrForbidden = errors.New("actor is not eligible for this step")

	// ErrInvalidStepList is returned when instantiation input is malformed.
	ErrInvalidStepList = errors.New("approval step list is invalid")

	// ErrConcurrencyConflict is returned when the guarded status update
	// affected zero rows because another actor won the race.
	ErrConcurrencyConflict = errors.New("step was decided concurrently")
)
