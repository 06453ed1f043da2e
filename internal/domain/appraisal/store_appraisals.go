package appraisal

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const appraisalColumns = `
  id, appraisee_id, appraiser_id, reviewer_id, appraisal_type_id, range_id,
  start_date, end_date, status, appraiser_comment, appraiser_rating,
  reviewer_comment, reviewer_rating, created_at, updated_at
`

func scanAppraisal(row pgx.Row) (Appraisal, error) {
	var a Appraisal
	var status string
	var appraiserComment, reviewerComment *string
	err := row.Scan(&a.ID, &a.AppraiseeID, &a.AppraiserID, &a.ReviewerID,
		&a.AppraisalTypeID, &a.RangeID, &a.StartDate, &a.EndDate, &status,
		&appraiserComment, &a.AppraiserRating, &reviewerComment, &a.ReviewerRating,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return Appraisal{}, err
	}
	parsed, err := ParseStatus(status)
	if err != nil {
		return Appraisal{}, err
	}
	a.Status = parsed
	if appraiserComment != nil {
		a.AppraiserComment = *appraiserComment
	}
	if reviewerComment != nil {
		a.ReviewerComment = *reviewerComment
	}
	return a, nil
}

func (s *Store) InsertAppraisal(ctx context.Context, q Querier, a *Appraisal) error {
	a.ID = uuid.NewString()
	return q.QueryRow(ctx, `
    INSERT INTO appraisals (id, appraisee_id, appraiser_id, reviewer_id,
      appraisal_type_id, range_id, start_date, end_date, status)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    RETURNING created_at, updated_at
  `, a.ID, a.AppraiseeID, a.AppraiserID, a.ReviewerID, a.AppraisalTypeID,
		a.RangeID, a.StartDate, a.EndDate, a.Status.String()).Scan(&a.CreatedAt, &a.UpdatedAt)
}

// GetAppraisalForUpdate loads an appraisal and its goals with the row
// locked for the duration of the transaction. Every workflow mutation
// goes through this lock so concurrent transitions on the same appraisal
// serialize instead of racing.
func (s *Store) GetAppraisalForUpdate(ctx context.Context, tx pgx.Tx, appraisalID string) (Appraisal, error) {
	row := tx.QueryRow(ctx, "SELECT "+appraisalColumns+" FROM appraisals WHERE id = $1 FOR UPDATE", appraisalID)
	a, err := scanAppraisal(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Appraisal{}, &NotFoundError{Entity: "appraisal", ID: appraisalID}
	}
	if err != nil {
		return Appraisal{}, err
	}
	a.Goals, err = s.loadGoals(ctx, tx, appraisalID)
	if err != nil {
		return Appraisal{}, err
	}
	return a, nil
}

func (s *Store) GetAppraisal(ctx context.Context, appraisalID string) (Appraisal, error) {
	row := s.DB.QueryRow(ctx, "SELECT "+appraisalColumns+" FROM appraisals WHERE id = $1", appraisalID)
	a, err := scanAppraisal(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Appraisal{}, &NotFoundError{Entity: "appraisal", ID: appraisalID}
	}
	if err != nil {
		return Appraisal{}, err
	}
	a.Goals, err = s.loadGoals(ctx, s.DB, appraisalID)
	if err != nil {
		return Appraisal{}, err
	}
	return a, nil
}

// ListAppraisals returns appraisals where the employee appears in any of
// the three actor roles. Empty employeeID lists everything.
func (s *Store) ListAppraisals(ctx context.Context, employeeID string, limit, offset int) ([]Appraisal, error) {
	query := "SELECT " + appraisalColumns + " FROM appraisals"
	args := []any{}
	if employeeID != "" {
		query += " WHERE appraisee_id = $1 OR appraiser_id = $1 OR reviewer_id = $1"
		args = append(args, employeeID)
	}
	query += " ORDER BY created_at DESC LIMIT " + itoa(limit) + " OFFSET " + itoa(offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appraisals []Appraisal
	for rows.Next() {
		a, err := scanAppraisal(rows)
		if err != nil {
			return nil, err
		}
		appraisals = append(appraisals, a)
	}
	return appraisals, rows.Err()
}

func (s *Store) loadGoals(ctx context.Context, q Querier, appraisalID string) ([]AppraisalGoal, error) {
	rows, err := q.Query(ctx, `
    SELECT ag.id, ag.appraisal_id, ag.goal_id, ag.self_comment, ag.self_rating,
           ag.appraiser_comment, ag.appraiser_rating,
           g.template_id, g.category_id, c.name, g.title, g.description,
           g.performance_factor, g.importance, g.weightage, g.created_at
    FROM appraisal_goals ag
    JOIN goals g ON g.id = ag.goal_id
    LEFT JOIN categories c ON c.id = g.category_id
    WHERE ag.appraisal_id = $1
    ORDER BY g.created_at
  `, appraisalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []AppraisalGoal
	for rows.Next() {
		var ag AppraisalGoal
		var selfComment, appraiserComment, templateID, categoryName *string
		var categoryID *int
		if err := rows.Scan(&ag.ID, &ag.AppraisalID, &ag.GoalID, &selfComment, &ag.SelfRating,
			&appraiserComment, &ag.AppraiserRating,
			&templateID, &categoryID, &categoryName, &ag.Goal.Title, &ag.Goal.Description,
			&ag.Goal.PerformanceFactor, &ag.Goal.Importance, &ag.Goal.Weightage, &ag.Goal.CreatedAt); err != nil {
			return nil, err
		}
		ag.Goal.ID = ag.GoalID
		if selfComment != nil {
			ag.SelfComment = *selfComment
		}
		if appraiserComment != nil {
			ag.AppraiserComment = *appraiserComment
		}
		if templateID != nil {
			ag.Goal.TemplateID = *templateID
		}
		if categoryID != nil {
			ag.Goal.CategoryID = *categoryID
		}
		if categoryName != nil {
			ag.Goal.CategoryName = *categoryName
		}
		goals = append(goals, ag)
	}
	return goals, rows.Err()
}

func (s *Store) AttachGoal(ctx context.Context, q Querier, appraisalID, goalID string) (string, error) {
	id := uuid.NewString()
	_, err := q.Exec(ctx, `
    INSERT INTO appraisal_goals (id, appraisal_id, goal_id)
    VALUES ($1, $2, $3)
  `, id, appraisalID, goalID)
	if isUniqueViolation(err) {
		return "", &ConflictError{Detail: "goal " + goalID + " is already attached to appraisal " + appraisalID}
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) DetachGoal(ctx context.Context, q Querier, appraisalID, goalID string) error {
	tag, err := q.Exec(ctx, "DELETE FROM appraisal_goals WHERE appraisal_id = $1 AND goal_id = $2", appraisalID, goalID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{Entity: "appraisal goal", ID: goalID}
	}
	return nil
}

// SaveAppraisal persists the workflow-owned columns after the engine has
// validated and applied a mutation.
func (s *Store) SaveAppraisal(ctx context.Context, q Querier, a *Appraisal) error {
	var appraiserComment, reviewerComment any
	if a.AppraiserComment != "" {
		appraiserComment = a.AppraiserComment
	}
	if a.ReviewerComment != "" {
		reviewerComment = a.ReviewerComment
	}
	_, err := q.Exec(ctx, `
    UPDATE appraisals
    SET status = $2, appraiser_comment = $3, appraiser_rating = $4,
        reviewer_comment = $5, reviewer_rating = $6, updated_at = now()
    WHERE id = $1
  `, a.ID, a.Status.String(), appraiserComment, a.AppraiserRating, reviewerComment, a.ReviewerRating)
	return err
}

func (s *Store) SaveGoalEvaluations(ctx context.Context, q Querier, goals []AppraisalGoal) error {
	for _, goal := range goals {
		var selfComment, appraiserComment any
		if goal.SelfComment != "" {
			selfComment = goal.SelfComment
		}
		if goal.AppraiserComment != "" {
			appraiserComment = goal.AppraiserComment
		}
		_, err := q.Exec(ctx, `
      UPDATE appraisal_goals
      SET self_comment = $2, self_rating = $3, appraiser_comment = $4, appraiser_rating = $5
      WHERE id = $1
    `, goal.ID, selfComment, goal.SelfRating, appraiserComment, goal.AppraiserRating)
		if err != nil {
			return err
		}
	}
	return nil
}

// DeleteAppraisal removes the appraisal; appraisal_goals rows go with it
// via ON DELETE CASCADE.
func (s *Store) DeleteAppraisal(ctx context.Context, q Querier, appraisalID string) error {
	tag, err := q.Exec(ctx, "DELETE FROM appraisals WHERE id = $1", appraisalID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{Entity: "appraisal", ID: appraisalID}
	}
	return nil
}
