package appraisal

import (
	"errors"
	"testing"
	"time"
)

func testAppraisal(status Status, weightages ...int) *Appraisal {
	a := &Appraisal{
		ID:          "appraisal-1",
		AppraiseeID: "emp-appraisee",
		AppraiserID: "emp-appraiser",
		ReviewerID:  "emp-reviewer",
		StartDate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		Status:      status,
	}
	for i, w := range weightages {
		a.Goals = append(a.Goals, AppraisalGoal{
			ID:          "ag-" + itoa(i+1),
			AppraisalID: a.ID,
			GoalID:      "goal-" + itoa(i+1),
			Goal:        Goal{ID: "goal-" + itoa(i+1), Title: "Goal", Weightage: w},
		})
	}
	return a
}

func ptr[T any](v T) *T { return &v }

func fillSelf(a *Appraisal) {
	for i := range a.Goals {
		a.Goals[i].SelfRating = ptr(4)
		a.Goals[i].SelfComment = "self comment"
	}
}

func fillAppraiser(a *Appraisal) {
	for i := range a.Goals {
		a.Goals[i].AppraiserRating = ptr(3)
		a.Goals[i].AppraiserComment = "appraiser comment"
	}
	a.AppraiserRating = ptr(4)
	a.AppraiserComment = "overall"
}

func TestCheckTransitionForwardOnly(t *testing.T) {
	if err := CheckTransition(StatusDraft, StatusSubmitted); err != nil {
		t.Fatalf("unexpected error for forward step: %v", err)
	}

	var businessErr *BusinessLogicError
	cases := []struct{ from, to Status }{
		{StatusSubmitted, StatusDraft},
		{StatusSubmitted, StatusSubmitted},
		{StatusDraft, StatusSelfAssessment},
		{StatusAppraiserEvaluation, StatusComplete},
	}
	for _, c := range cases {
		err := CheckTransition(c.from, c.to)
		if !errors.As(err, &businessErr) {
			t.Fatalf("expected BusinessLogicError for %q -> %q, got %v", c.from, c.to, err)
		}
		if businessErr.Kind != KindForbiddenForStatus {
			t.Fatalf("expected forbidden-for-status kind, got %q", businessErr.Kind)
		}
	}

	err := CheckTransition(StatusComplete, StatusComplete)
	if !errors.As(err, &businessErr) || businessErr.Kind != KindRecordFrozen {
		t.Fatalf("expected frozen error from Complete, got %v", err)
	}
}

func TestSubmitRequiresFullWeightage(t *testing.T) {
	a := testAppraisal(StatusDraft, 60, 30)
	err := Submit(a, a.AppraiserID)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) || validationErr.Kind != KindWeightageMismatch {
		t.Fatalf("expected weightage mismatch, got %v", err)
	}
	if a.Status != StatusDraft {
		t.Fatalf("failed submit must leave state Draft, got %q", a.Status)
	}

	a = testAppraisal(StatusDraft, 60, 40)
	if err := Submit(a, a.AppraiserID); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	if a.Status != StatusSubmitted {
		t.Fatalf("expected Submitted, got %q", a.Status)
	}
}

func TestSubmitRejectsWrongActorAndEmptyGoals(t *testing.T) {
	a := testAppraisal(StatusDraft, 100)
	var businessErr *BusinessLogicError
	if err := Submit(a, a.AppraiseeID); !errors.As(err, &businessErr) || businessErr.Kind != KindWrongActor {
		t.Fatalf("expected wrong-actor error, got %v", err)
	}

	a = testAppraisal(StatusDraft)
	if err := Submit(a, a.AppraiserID); !errors.As(err, &businessErr) || businessErr.Kind != KindNoGoals {
		t.Fatalf("expected no-goals error, got %v", err)
	}
}

func TestSelfAssessmentPartialUpdateScoping(t *testing.T) {
	a := testAppraisal(StatusSubmitted, 40, 30, 30)
	a.Goals[2].SelfComment = "prior comment"
	a.Goals[2].SelfRating = ptr(2)

	updates := map[string]GoalEvaluation{
		"goal-1": {Comment: ptr("done well"), Rating: ptr(4)},
		"goal-2": {Comment: ptr("solid"), Rating: ptr(3)},
	}
	if err := ApplySelfAssessment(a, a.AppraiseeID, updates); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Status != StatusSelfAssessment {
		t.Fatalf("first self write should enter self assessment, got %q", a.Status)
	}
	if a.Goals[0].SelfComment != "done well" || *a.Goals[0].SelfRating != 4 {
		t.Fatalf("goal-1 not updated: %+v", a.Goals[0])
	}
	if a.Goals[2].SelfComment != "prior comment" || *a.Goals[2].SelfRating != 2 {
		t.Fatalf("goal-3 must keep prior values: %+v", a.Goals[2])
	}

	var notFound *NotFoundError
	err := ApplySelfAssessment(a, a.AppraiseeID, map[string]GoalEvaluation{
		"goal-99": {Rating: ptr(3)},
	})
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError for unattached goal, got %v", err)
	}
}

func TestSelfAssessmentRejectsWrongStageAndActor(t *testing.T) {
	a := testAppraisal(StatusDraft, 100)
	updates := map[string]GoalEvaluation{"goal-1": {Rating: ptr(3)}}

	var businessErr *BusinessLogicError
	if err := ApplySelfAssessment(a, a.AppraiseeID, updates); !errors.As(err, &businessErr) || businessErr.Kind != KindForbiddenForStatus {
		t.Fatalf("expected forbidden-for-status in Draft, got %v", err)
	}

	a.Status = StatusSubmitted
	if err := ApplySelfAssessment(a, a.AppraiserID, updates); !errors.As(err, &businessErr) || businessErr.Kind != KindWrongActor {
		t.Fatalf("expected wrong-actor error, got %v", err)
	}
}

func TestRatingBounds(t *testing.T) {
	a := testAppraisal(StatusSelfAssessment, 100)
	var validationErr *ValidationError
	for _, rating := range []int{0, 6, -1} {
		err := ApplySelfAssessment(a, a.AppraiseeID, map[string]GoalEvaluation{
			"goal-1": {Rating: ptr(rating)},
		})
		if !errors.As(err, &validationErr) || validationErr.Kind != KindRatingOutOfRange {
			t.Fatalf("expected out-of-range error for rating %d, got %v", rating, err)
		}
	}
	for rating := 1; rating <= 5; rating++ {
		err := ApplySelfAssessment(a, a.AppraiseeID, map[string]GoalEvaluation{
			"goal-1": {Rating: ptr(rating), Comment: ptr("ok")},
		})
		if err != nil {
			t.Fatalf("expected rating %d to be accepted, got %v", rating, err)
		}
	}
}

func TestCompleteSelfAssessmentRequiresCoverage(t *testing.T) {
	a := testAppraisal(StatusSelfAssessment, 50, 50)
	a.Goals[0].SelfRating = ptr(4)
	a.Goals[0].SelfComment = "done"

	var businessErr *BusinessLogicError
	err := CompleteSelfAssessment(a, a.AppraiseeID)
	if !errors.As(err, &businessErr) || businessErr.Kind != KindIncompleteStage {
		t.Fatalf("expected incomplete-stage error, got %v", err)
	}
	if a.Status != StatusSelfAssessment {
		t.Fatalf("failed completion must not advance, got %q", a.Status)
	}

	fillSelf(a)
	if err := CompleteSelfAssessment(a, a.AppraiseeID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Status != StatusAppraiserEvaluation {
		t.Fatalf("expected Appraiser Evaluation, got %q", a.Status)
	}
}

func TestCompleteAppraiserEvaluationRequiresOverall(t *testing.T) {
	a := testAppraisal(StatusAppraiserEvaluation, 100)
	fillSelf(a)
	for i := range a.Goals {
		a.Goals[i].AppraiserRating = ptr(5)
		a.Goals[i].AppraiserComment = "strong"
	}

	var businessErr *BusinessLogicError
	err := CompleteAppraiserEvaluation(a, a.AppraiserID)
	if !errors.As(err, &businessErr) || businessErr.Kind != KindIncompleteStage {
		t.Fatalf("expected incomplete-stage error without overall rating, got %v", err)
	}

	a.AppraiserRating = ptr(4)
	a.AppraiserComment = "good year"
	if err := CompleteAppraiserEvaluation(a, a.AppraiserID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Status != StatusReviewerEvaluation {
		t.Fatalf("expected Reviewer Evaluation, got %q", a.Status)
	}
}

func TestTerminalImmutability(t *testing.T) {
	a := testAppraisal(StatusComplete, 100)
	fillSelf(a)
	fillAppraiser(a)
	a.ReviewerRating = ptr(5)
	a.ReviewerComment = "approved"

	var businessErr *BusinessLogicError
	checks := []error{
		Submit(a, a.AppraiserID),
		ApplySelfAssessment(a, a.AppraiseeID, map[string]GoalEvaluation{"goal-1": {Rating: ptr(3)}}),
		ApplyAppraiserEvaluation(a, a.AppraiserID, nil, &OverallEvaluation{Rating: ptr(3)}),
		ApplyReviewerEvaluation(a, a.ReviewerID, OverallEvaluation{Rating: ptr(3)}),
		CompleteReviewerEvaluation(a, a.ReviewerID),
	}
	for i, err := range checks {
		if !errors.As(err, &businessErr) || businessErr.Kind != KindRecordFrozen {
			t.Fatalf("mutation %d on Complete appraisal must fail frozen, got %v", i, err)
		}
	}
}

func TestFullWorkflowScenario(t *testing.T) {
	a := testAppraisal(StatusDraft, 60, 40)

	if err := Submit(a, a.AppraiserID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	err := ApplySelfAssessment(a, a.AppraiseeID, map[string]GoalEvaluation{
		"goal-1": {Comment: ptr("delivered"), Rating: ptr(4)},
		"goal-2": {Comment: ptr("shipped"), Rating: ptr(4)},
	})
	if err != nil {
		t.Fatalf("self assessment: %v", err)
	}
	if err := CompleteSelfAssessment(a, a.AppraiseeID); err != nil {
		t.Fatalf("complete self assessment: %v", err)
	}

	err = ApplyAppraiserEvaluation(a, a.AppraiserID, map[string]GoalEvaluation{
		"goal-1": {Comment: ptr("excellent"), Rating: ptr(5)},
		"goal-2": {Comment: ptr("adequate"), Rating: ptr(3)},
	}, &OverallEvaluation{Comment: ptr("solid year"), Rating: ptr(4)})
	if err != nil {
		t.Fatalf("appraiser evaluation: %v", err)
	}
	if err := CompleteAppraiserEvaluation(a, a.AppraiserID); err != nil {
		t.Fatalf("complete appraiser evaluation: %v", err)
	}

	err = ApplyReviewerEvaluation(a, a.ReviewerID, OverallEvaluation{Comment: ptr("confirmed"), Rating: ptr(5)})
	if err != nil {
		t.Fatalf("reviewer evaluation: %v", err)
	}
	if err := CompleteReviewerEvaluation(a, a.ReviewerID); err != nil {
		t.Fatalf("complete reviewer evaluation: %v", err)
	}
	if a.Status != StatusComplete {
		t.Fatalf("expected Complete, got %q", a.Status)
	}

	var businessErr *BusinessLogicError
	err = ApplyAppraiserEvaluation(a, a.AppraiserID, nil, &OverallEvaluation{Rating: ptr(2)})
	if !errors.As(err, &businessErr) || businessErr.Kind != KindRecordFrozen {
		t.Fatalf("expected frozen record after completion, got %v", err)
	}
}
