package appraisal

import "strings"

// The workflow engine is pure: it validates and mutates in-memory
// Appraisal values only. The service runs it inside a row-locked
// transaction and persists whatever it changed.

// CheckTransition enforces the strict forward progression. Only a step to
// the immediately following stage is legal; re-applying the current stage
// is rejected like any other non-forward move.
func CheckTransition(from, to Status) error {
	if from == StatusComplete {
		return NewBusinessLogicError(KindRecordFrozen, "appraisal is Complete and cannot change status")
	}
	next, ok := from.Next()
	if !ok || to != next {
		return NewBusinessLogicError(KindForbiddenForStatus,
			"cannot move from %q to %q; only %q is allowed", from, to, next)
	}
	return nil
}

// ValidateRating rejects anything outside the closed range [1, 5].
func ValidateRating(field string, value int) error {
	if value < 1 || value > 5 {
		return NewValidationError(KindRatingOutOfRange, "%s must be between 1 and 5, got %d", field, value)
	}
	return nil
}

func checkNotFrozen(a *Appraisal) error {
	if a.Status == StatusComplete {
		return NewBusinessLogicError(KindRecordFrozen, "appraisal %s is Complete and is read-only", a.ID)
	}
	return nil
}

// Submit moves a Draft appraisal to Submitted. Goals must be attached and
// their weightages must sum to exactly 100.
func Submit(a *Appraisal, actorID string) error {
	if err := checkNotFrozen(a); err != nil {
		return err
	}
	if a.Status != StatusDraft {
		return NewBusinessLogicError(KindForbiddenForStatus,
			"appraisal %s is %q; only Draft appraisals can be submitted", a.ID, a.Status)
	}
	if actorID != a.AppraiserID {
		return NewBusinessLogicError(KindWrongActor, "only the appraiser may submit the appraisal")
	}
	if len(a.Goals) == 0 {
		return NewBusinessLogicError(KindNoGoals, "appraisal %s has no goals attached", a.ID)
	}
	if err := ValidateWeightageSum(a.Goals); err != nil {
		return err
	}
	a.Status = StatusSubmitted
	return nil
}

// ApplySelfAssessment applies a partial self-evaluation keyed by goal id.
// The appraisee's first write while Submitted enters the self-assessment
// stage. Goals absent from the map keep their prior values.
func ApplySelfAssessment(a *Appraisal, actorID string, updates map[string]GoalEvaluation) error {
	if err := checkNotFrozen(a); err != nil {
		return err
	}
	if a.Status != StatusSubmitted && a.Status != StatusSelfAssessment {
		return NewBusinessLogicError(KindForbiddenForStatus,
			"self-assessment fields are not writable while appraisal %s is %q", a.ID, a.Status)
	}
	if actorID != a.AppraiseeID {
		return NewBusinessLogicError(KindWrongActor, "only the appraisee may write self-assessment fields")
	}
	goals, err := goalsByID(a, updates)
	if err != nil {
		return err
	}
	for goalID, eval := range updates {
		if eval.Rating != nil {
			if err := ValidateRating("selfRating", *eval.Rating); err != nil {
				return err
			}
		}
		goal := goals[goalID]
		if eval.Rating != nil {
			rating := *eval.Rating
			goal.SelfRating = &rating
		}
		if eval.Comment != nil {
			goal.SelfComment = strings.TrimSpace(*eval.Comment)
		}
	}
	if a.Status == StatusSubmitted {
		a.Status = StatusSelfAssessment
	}
	return nil
}

// CompleteSelfAssessment advances to Appraiser Evaluation once every
// attached goal carries a self rating and comment.
func CompleteSelfAssessment(a *Appraisal, actorID string) error {
	if err := checkNotFrozen(a); err != nil {
		return err
	}
	if a.Status != StatusSelfAssessment {
		return NewBusinessLogicError(KindForbiddenForStatus,
			"appraisal %s is %q; self-assessment is not in progress", a.ID, a.Status)
	}
	if actorID != a.AppraiseeID {
		return NewBusinessLogicError(KindWrongActor, "only the appraisee may complete the self-assessment")
	}
	for _, goal := range a.Goals {
		if goal.SelfRating == nil || strings.TrimSpace(goal.SelfComment) == "" {
			return NewBusinessLogicError(KindIncompleteStage,
				"goal %s is missing its self rating or comment", goal.GoalID)
		}
	}
	a.Status = StatusAppraiserEvaluation
	return nil
}

// ApplyAppraiserEvaluation applies partial per-goal appraiser fields and,
// optionally, the overall appraiser comment and rating.
func ApplyAppraiserEvaluation(a *Appraisal, actorID string, updates map[string]GoalEvaluation, overall *OverallEvaluation) error {
	if err := checkNotFrozen(a); err != nil {
		return err
	}
	if a.Status != StatusAppraiserEvaluation {
		return NewBusinessLogicError(KindForbiddenForStatus,
			"appraiser fields are not writable while appraisal %s is %q", a.ID, a.Status)
	}
	if actorID != a.AppraiserID {
		return NewBusinessLogicError(KindWrongActor, "only the appraiser may write appraiser fields")
	}
	goals, err := goalsByID(a, updates)
	if err != nil {
		return err
	}
	for goalID, eval := range updates {
		if eval.Rating != nil {
			if err := ValidateRating("appraiserRating", *eval.Rating); err != nil {
				return err
			}
		}
		goal := goals[goalID]
		if eval.Rating != nil {
			rating := *eval.Rating
			goal.AppraiserRating = &rating
		}
		if eval.Comment != nil {
			goal.AppraiserComment = strings.TrimSpace(*eval.Comment)
		}
	}
	if overall != nil {
		if overall.Rating != nil {
			if err := ValidateRating("appraiserRating", *overall.Rating); err != nil {
				return err
			}
			rating := *overall.Rating
			a.AppraiserRating = &rating
		}
		if overall.Comment != nil {
			a.AppraiserComment = strings.TrimSpace(*overall.Comment)
		}
	}
	return nil
}

// CompleteAppraiserEvaluation advances to Reviewer Evaluation once every
// goal carries appraiser fields and the overall rating and comment are set.
func CompleteAppraiserEvaluation(a *Appraisal, actorID string) error {
	if err := checkNotFrozen(a); err != nil {
		return err
	}
	if a.Status != StatusAppraiserEvaluation {
		return NewBusinessLogicError(KindForbiddenForStatus,
			"appraisal %s is %q; appraiser evaluation is not in progress", a.ID, a.Status)
	}
	if actorID != a.AppraiserID {
		return NewBusinessLogicError(KindWrongActor, "only the appraiser may complete the appraiser evaluation")
	}
	for _, goal := range a.Goals {
		if goal.AppraiserRating == nil || strings.TrimSpace(goal.AppraiserComment) == "" {
			return NewBusinessLogicError(KindIncompleteStage,
				"goal %s is missing its appraiser rating or comment", goal.GoalID)
		}
	}
	if a.AppraiserRating == nil || strings.TrimSpace(a.AppraiserComment) == "" {
		return NewBusinessLogicError(KindIncompleteStage, "overall appraiser rating and comment are required")
	}
	a.Status = StatusReviewerEvaluation
	return nil
}

// ApplyReviewerEvaluation writes the overall reviewer comment and rating.
// The reviewer has no per-goal fields.
func ApplyReviewerEvaluation(a *Appraisal, actorID string, overall OverallEvaluation) error {
	if err := checkNotFrozen(a); err != nil {
		return err
	}
	if a.Status != StatusReviewerEvaluation {
		return NewBusinessLogicError(KindForbiddenForStatus,
			"reviewer fields are not writable while appraisal %s is %q", a.ID, a.Status)
	}
	if actorID != a.ReviewerID {
		return NewBusinessLogicError(KindWrongActor, "only the reviewer may write reviewer fields")
	}
	if overall.Rating != nil {
		if err := ValidateRating("reviewerRating", *overall.Rating); err != nil {
			return err
		}
		rating := *overall.Rating
		a.ReviewerRating = &rating
	}
	if overall.Comment != nil {
		a.ReviewerComment = strings.TrimSpace(*overall.Comment)
	}
	return nil
}

// CompleteReviewerEvaluation finishes the workflow. The appraisal is
// frozen afterwards.
func CompleteReviewerEvaluation(a *Appraisal, actorID string) error {
	if err := checkNotFrozen(a); err != nil {
		return err
	}
	if a.Status != StatusReviewerEvaluation {
		return NewBusinessLogicError(KindForbiddenForStatus,
			"appraisal %s is %q; reviewer evaluation is not in progress", a.ID, a.Status)
	}
	if actorID != a.ReviewerID {
		return NewBusinessLogicError(KindWrongActor, "only the reviewer may complete the appraisal")
	}
	if a.ReviewerRating == nil || strings.TrimSpace(a.ReviewerComment) == "" {
		return NewBusinessLogicError(KindIncompleteStage, "overall reviewer rating and comment are required")
	}
	a.Status = StatusComplete
	return nil
}

// goalsByID indexes the attached goals and verifies the update keys are a
// subset of them. An unknown goal id is a not-found, not a validation
// issue, per the partial-update contract.
func goalsByID(a *Appraisal, updates map[string]GoalEvaluation) (map[string]*AppraisalGoal, error) {
	index := make(map[string]*AppraisalGoal, len(a.Goals))
	for i := range a.Goals {
		index[a.Goals[i].GoalID] = &a.Goals[i]
	}
	for goalID := range updates {
		if _, ok := index[goalID]; !ok {
			return nil, &NotFoundError{Entity: "appraisal goal", ID: goalID}
		}
	}
	return index, nil
}
