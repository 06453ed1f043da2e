package appraisal

import (
	"context"
	"strings"
	"time"
)

// Mailer delivers stage-change notifications. The platform email package
// provides an SMTP implementation and a noop for when email is disabled.
type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type Service struct {
	store     *Store
	mailer    Mailer
	emailFrom string
}

func NewService(store *Store, mailer Mailer, emailFrom string) *Service {
	return &Service{store: store, mailer: mailer, emailFrom: emailFrom}
}

func (s *Service) Store() *Store {
	return s.store
}

type CreateInput struct {
	AppraiseeID     string    `json:"appraiseeId"`
	AppraiserID     string    `json:"appraiserId"`
	ReviewerID      string    `json:"reviewerId"`
	AppraisalTypeID int       `json:"appraisalTypeId"`
	RangeID         *int      `json:"rangeId"`
	StartDate       time.Time `json:"startDate"`
	EndDate         time.Time `json:"endDate"`
	GoalIDs         []string  `json:"goalIds"`
}

// Create builds a Draft appraisal. Actor references must be three distinct
// active employees; the range must agree with the type's has_range flag;
// missing dates are derived with the date calculator.
func (s *Service) Create(ctx context.Context, in CreateInput) (Appraisal, error) {
	if in.AppraiseeID == in.AppraiserID || in.AppraiseeID == in.ReviewerID || in.AppraiserID == in.ReviewerID {
		return Appraisal{}, NewValidationError(KindActorsNotDistinct,
			"appraisee, appraiser and reviewer must be three distinct employees")
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return Appraisal{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, employeeID := range []string{in.AppraiseeID, in.AppraiserID, in.ReviewerID} {
		active, err := s.store.EmployeeActive(ctx, tx, employeeID)
		if err != nil {
			return Appraisal{}, err
		}
		if !active {
			return Appraisal{}, NewValidationError(KindWrongActor,
				"employee %s is inactive and cannot take part in an appraisal", employeeID)
		}
	}

	appraisalType, err := s.store.GetType(ctx, tx, in.AppraisalTypeID)
	if err != nil {
		return Appraisal{}, err
	}

	var appraisalRange *AppraisalRange
	switch {
	case appraisalType.HasRange && in.RangeID == nil:
		return Appraisal{}, NewValidationError(KindMissingRange,
			"appraisal type %q requires a range", appraisalType.Name)
	case !appraisalType.HasRange && in.RangeID != nil:
		return Appraisal{}, NewValidationError(KindUnexpectedRange,
			"appraisal type %q does not take a range", appraisalType.Name)
	case in.RangeID != nil:
		r, err := s.store.GetRange(ctx, tx, *in.RangeID)
		if err != nil {
			return Appraisal{}, err
		}
		if r.AppraisalTypeID != appraisalType.ID {
			return Appraisal{}, NewValidationError(KindInvalidRange,
				"range %q does not belong to appraisal type %q", r.Name, appraisalType.Name)
		}
		appraisalRange = &r
	}

	startDate, endDate := in.StartDate, in.EndDate
	if startDate.IsZero() && endDate.IsZero() {
		rangeName := ""
		if appraisalRange != nil {
			rangeName = appraisalRange.Name
		}
		startDate, endDate, err = CalculateDates(appraisalType.Name, rangeName, 0)
		if err != nil {
			return Appraisal{}, err
		}
	}
	if !endDate.After(startDate) {
		return Appraisal{}, NewValidationError(KindInvalidDateOrder,
			"end date %s must be after start date %s",
			endDate.Format("2006-01-02"), startDate.Format("2006-01-02"))
	}

	a := Appraisal{
		AppraiseeID:     in.AppraiseeID,
		AppraiserID:     in.AppraiserID,
		ReviewerID:      in.ReviewerID,
		AppraisalTypeID: appraisalType.ID,
		RangeID:         in.RangeID,
		StartDate:       startDate,
		EndDate:         endDate,
		Status:          StatusDraft,
	}
	if err := s.store.InsertAppraisal(ctx, tx, &a); err != nil {
		return Appraisal{}, err
	}

	for _, goalID := range in.GoalIDs {
		if _, err := s.store.GetGoal(ctx, tx, goalID); err != nil {
			return Appraisal{}, err
		}
		if _, err := s.store.AttachGoal(ctx, tx, a.ID, goalID); err != nil {
			return Appraisal{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Appraisal{}, err
	}
	return s.store.GetAppraisal(ctx, a.ID)
}

func (s *Service) Get(ctx context.Context, appraisalID string) (Appraisal, error) {
	return s.store.GetAppraisal(ctx, appraisalID)
}

func (s *Service) List(ctx context.Context, employeeID string, limit, offset int) ([]Appraisal, error) {
	return s.store.ListAppraisals(ctx, employeeID, limit, offset)
}

// Delete removes a Draft appraisal. Anything past Draft is part of the
// review record and stays.
func (s *Service) Delete(ctx context.Context, appraisalID, actorID string, admin bool) error {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	a, err := s.store.GetAppraisalForUpdate(ctx, tx, appraisalID)
	if err != nil {
		return err
	}
	if a.Status != StatusDraft {
		return NewBusinessLogicError(KindForbiddenForStatus,
			"appraisal %s is %q; only Draft appraisals can be deleted", a.ID, a.Status)
	}
	if actorID != a.AppraiserID && !admin {
		return NewBusinessLogicError(KindWrongActor, "only the appraiser or an admin may delete a draft appraisal")
	}
	if err := s.store.DeleteAppraisal(ctx, tx, appraisalID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type GoalInput struct {
	TemplateID        string `json:"templateId"`
	CategoryName      string `json:"categoryName"`
	Title             string `json:"title"`
	Description       string `json:"description"`
	PerformanceFactor string `json:"performanceFactor"`
	Importance        string `json:"importance"`
	Weightage         int    `json:"weightage"`
}

// AddGoal creates a goal (from a template or ad hoc) and attaches it to a
// Draft appraisal. A category name with no matching row creates the
// category lazily.
func (s *Service) AddGoal(ctx context.Context, appraisalID, actorID string, in GoalInput) (Goal, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return Goal{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	a, err := s.store.GetAppraisalForUpdate(ctx, tx, appraisalID)
	if err != nil {
		return Goal{}, err
	}
	if err := checkNotFrozen(&a); err != nil {
		return Goal{}, err
	}
	if a.Status != StatusDraft {
		return Goal{}, NewBusinessLogicError(KindForbiddenForStatus,
			"goals can only change while appraisal %s is Draft, not %q", a.ID, a.Status)
	}
	if actorID != a.AppraiserID {
		return Goal{}, NewBusinessLogicError(KindWrongActor, "only the appraiser may edit the goal list")
	}

	goal := Goal{
		TemplateID:        in.TemplateID,
		Title:             strings.TrimSpace(in.Title),
		Description:       in.Description,
		PerformanceFactor: in.PerformanceFactor,
		Importance:        in.Importance,
		Weightage:         in.Weightage,
	}
	if in.TemplateID != "" {
		template, err := s.store.GetTemplate(ctx, tx, in.TemplateID)
		if err != nil {
			return Goal{}, err
		}
		if goal.Title == "" {
			goal.Title = template.Title
		}
		if goal.Description == "" {
			goal.Description = template.Description
		}
		if goal.PerformanceFactor == "" {
			goal.PerformanceFactor = template.PerformanceFactor
		}
		if goal.Importance == "" {
			goal.Importance = template.Importance
		}
		if goal.Weightage == 0 {
			goal.Weightage = template.Weightage
		}
	}
	if goal.Title == "" {
		return Goal{}, NewValidationError(KindInvalidGoal, "goal title is required")
	}
	if err := ValidateWeightage(goal.Weightage); err != nil {
		return Goal{}, err
	}

	if name := strings.TrimSpace(in.CategoryName); name != "" {
		categoryID, err := s.store.EnsureCategory(ctx, tx, name)
		if err != nil {
			return Goal{}, err
		}
		goal.CategoryID = categoryID
		goal.CategoryName = name
	}

	goal, err = s.store.CreateGoal(ctx, tx, goal)
	if err != nil {
		return Goal{}, err
	}
	if _, err := s.store.AttachGoal(ctx, tx, a.ID, goal.ID); err != nil {
		return Goal{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Goal{}, err
	}
	return goal, nil
}

func (s *Service) RemoveGoal(ctx context.Context, appraisalID, goalID, actorID string) error {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	a, err := s.store.GetAppraisalForUpdate(ctx, tx, appraisalID)
	if err != nil {
		return err
	}
	if err := checkNotFrozen(&a); err != nil {
		return err
	}
	if a.Status != StatusDraft {
		return NewBusinessLogicError(KindForbiddenForStatus,
			"goals can only change while appraisal %s is Draft, not %q", a.ID, a.Status)
	}
	if actorID != a.AppraiserID {
		return NewBusinessLogicError(KindWrongActor, "only the appraiser may edit the goal list")
	}
	if err := s.store.DetachGoal(ctx, tx, appraisalID, goalID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
