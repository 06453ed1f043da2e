package appraisal

import "fmt"

// Error kinds carried by the typed errors below. Handlers map the error
// type to an HTTP status and forward kind + detail unchanged.
const (
	KindWeightageMismatch  = "weightage_mismatch"
	KindRatingOutOfRange   = "rating_out_of_range"
	KindInvalidWeightage   = "invalid_weightage"
	KindInvalidGoal        = "invalid_goal"
	KindInvalidDateOrder   = "invalid_date_order"
	KindMissingRange       = "missing_range"
	KindInvalidRange       = "invalid_range"
	KindUnexpectedRange    = "unexpected_range"
	KindUnknownType        = "unknown_appraisal_type"
	KindActorsNotDistinct  = "actors_not_distinct"
	KindManagerCycle       = "manager_cycle"
	KindForbiddenForStatus = "forbidden_for_status"
	KindRecordFrozen       = "record_frozen"
	KindWrongActor         = "wrong_actor"
	KindIncompleteStage    = "incomplete_stage"
	KindNoGoals            = "no_goals"
	KindDuplicate          = "duplicate"
)

// ValidationError reports malformed or out-of-range input. The validation
// runs before any write, so a ValidationError never leaves partial state.
type ValidationError struct {
	Kind   string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func NewValidationError(kind, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a missing entity or a goal id not attached to the
// appraisal being updated.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// BusinessLogicError reports an operation that is well-formed but illegal
// for the appraisal's current state or caller.
type BusinessLogicError struct {
	Kind   string
	Detail string
}

func (e *BusinessLogicError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func NewBusinessLogicError(kind, format string, args ...any) *BusinessLogicError {
	return &BusinessLogicError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// ConflictError surfaces a uniqueness violation from the store that the
// caller can act on, e.g. a duplicated category name.
type ConflictError struct {
	Detail string
}

func (e *ConflictError) Error() string {
	return e.Detail
}
