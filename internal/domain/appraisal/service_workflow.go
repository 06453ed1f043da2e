package appraisal

import (
	"context"
	"fmt"
	"log/slog"
)

// Each workflow operation is one unit of work: lock the appraisal row,
// run the pure engine against the loaded state, persist, commit. Any
// engine error rolls the transaction back with nothing written.

func (s *Service) Submit(ctx context.Context, appraisalID, actorID string) (Appraisal, error) {
	return s.mutate(ctx, appraisalID, func(a *Appraisal) error {
		return Submit(a, actorID)
	})
}

func (s *Service) UpdateSelfAssessment(ctx context.Context, appraisalID, actorID string, updates map[string]GoalEvaluation) (Appraisal, error) {
	return s.mutate(ctx, appraisalID, func(a *Appraisal) error {
		return ApplySelfAssessment(a, actorID, updates)
	})
}

func (s *Service) CompleteSelfAssessment(ctx context.Context, appraisalID, actorID string) (Appraisal, error) {
	return s.mutate(ctx, appraisalID, func(a *Appraisal) error {
		return CompleteSelfAssessment(a, actorID)
	})
}

func (s *Service) UpdateAppraiserEvaluation(ctx context.Context, appraisalID, actorID string, updates map[string]GoalEvaluation, overall *OverallEvaluation) (Appraisal, error) {
	return s.mutate(ctx, appraisalID, func(a *Appraisal) error {
		return ApplyAppraiserEvaluation(a, actorID, updates, overall)
	})
}

func (s *Service) CompleteAppraiserEvaluation(ctx context.Context, appraisalID, actorID string) (Appraisal, error) {
	return s.mutate(ctx, appraisalID, func(a *Appraisal) error {
		return CompleteAppraiserEvaluation(a, actorID)
	})
}

func (s *Service) UpdateReviewerEvaluation(ctx context.Context, appraisalID, actorID string, overall OverallEvaluation) (Appraisal, error) {
	return s.mutate(ctx, appraisalID, func(a *Appraisal) error {
		return ApplyReviewerEvaluation(a, actorID, overall)
	})
}

func (s *Service) CompleteReviewerEvaluation(ctx context.Context, appraisalID, actorID string) (Appraisal, error) {
	return s.mutate(ctx, appraisalID, func(a *Appraisal) error {
		return CompleteReviewerEvaluation(a, actorID)
	})
}

func (s *Service) mutate(ctx context.Context, appraisalID string, apply func(*Appraisal) error) (Appraisal, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return Appraisal{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	a, err := s.store.GetAppraisalForUpdate(ctx, tx, appraisalID)
	if err != nil {
		return Appraisal{}, err
	}
	before := a.Status

	if err := apply(&a); err != nil {
		return Appraisal{}, err
	}

	if err := s.store.SaveAppraisal(ctx, tx, &a); err != nil {
		return Appraisal{}, err
	}
	if err := s.store.SaveGoalEvaluations(ctx, tx, a.Goals); err != nil {
		return Appraisal{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Appraisal{}, err
	}

	if a.Status != before {
		s.notifyStageChange(ctx, a)
	}
	return a, nil
}

// notifyStageChange emails the actor responsible for the new stage.
// Delivery is best effort and never fails the committed mutation.
func (s *Service) notifyStageChange(ctx context.Context, a Appraisal) {
	if s.mailer == nil {
		return
	}

	var recipientID, subject, body string
	switch a.Status {
	case StatusSubmitted:
		recipientID = a.AppraiseeID
		subject = "Appraisal submitted"
		body = "Your appraisal has been submitted. Please begin your self assessment."
	case StatusAppraiserEvaluation:
		recipientID = a.AppraiserID
		subject = "Self assessment complete"
		body = "The appraisee has completed the self assessment. Your evaluation is due."
	case StatusReviewerEvaluation:
		recipientID = a.ReviewerID
		subject = "Appraiser evaluation complete"
		body = "The appraiser evaluation is complete. Your review is due."
	case StatusComplete:
		recipientID = a.AppraiseeID
		subject = "Appraisal complete"
		body = "Your appraisal has been completed and is now final."
	default:
		return
	}

	name, email, err := s.store.EmployeeContact(ctx, recipientID)
	if err != nil {
		slog.Warn("stage notification recipient lookup failed", "appraisalId", a.ID, "err", err)
		return
	}
	body = fmt.Sprintf("Hello %s,\n\n%s\n\nAppraisal period: %s to %s.",
		name, body, a.StartDate.Format("2006-01-02"), a.EndDate.Format("2006-01-02"))
	if err := s.mailer.Send(ctx, s.emailFrom, email, subject, body); err != nil {
		slog.Warn("stage notification send failed", "appraisalId", a.ID, "status", a.Status.String(), "err", err)
	}
}
