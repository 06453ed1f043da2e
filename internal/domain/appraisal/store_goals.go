package appraisal

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func (s *Store) ListTemplates(ctx context.Context) ([]GoalTemplate, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, title, description, performance_factor, importance, weightage
    FROM goal_templates
    ORDER BY title
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []GoalTemplate
	for rows.Next() {
		var t GoalTemplate
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.PerformanceFactor, &t.Importance, &t.Weightage); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (s *Store) GetTemplate(ctx context.Context, q Querier, templateID string) (GoalTemplate, error) {
	var t GoalTemplate
	err := q.QueryRow(ctx, `
    SELECT id, title, description, performance_factor, importance, weightage
    FROM goal_templates
    WHERE id = $1
  `, templateID).Scan(&t.ID, &t.Title, &t.Description, &t.PerformanceFactor, &t.Importance, &t.Weightage)
	if errors.Is(err, pgx.ErrNoRows) {
		return GoalTemplate{}, &NotFoundError{Entity: "goal template", ID: templateID}
	}
	if err != nil {
		return GoalTemplate{}, err
	}
	return t, nil
}

func (s *Store) CreateTemplate(ctx context.Context, t GoalTemplate) (GoalTemplate, error) {
	t.ID = uuid.NewString()
	_, err := s.DB.Exec(ctx, `
    INSERT INTO goal_templates (id, title, description, performance_factor, importance, weightage)
    VALUES ($1, $2, $3, $4, $5, $6)
  `, t.ID, t.Title, t.Description, t.PerformanceFactor, t.Importance, t.Weightage)
	if err != nil {
		return GoalTemplate{}, err
	}
	return t, nil
}

func (s *Store) UpdateTemplate(ctx context.Context, t GoalTemplate) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE goal_templates
    SET title = $2, description = $3, performance_factor = $4, importance = $5, weightage = $6
    WHERE id = $1
  `, t.ID, t.Title, t.Description, t.PerformanceFactor, t.Importance, t.Weightage)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{Entity: "goal template", ID: t.ID}
	}
	return nil
}

func (s *Store) DeleteTemplate(ctx context.Context, templateID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM goal_templates WHERE id = $1", templateID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{Entity: "goal template", ID: templateID}
	}
	return nil
}

func (s *Store) CreateGoal(ctx context.Context, q Querier, goal Goal) (Goal, error) {
	goal.ID = uuid.NewString()
	var templateID, categoryID any
	if goal.TemplateID != "" {
		templateID = goal.TemplateID
	}
	if goal.CategoryID != 0 {
		categoryID = goal.CategoryID
	}
	err := q.QueryRow(ctx, `
    INSERT INTO goals (id, template_id, category_id, title, description, performance_factor, importance, weightage)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    RETURNING created_at
  `, goal.ID, templateID, categoryID, goal.Title, goal.Description, goal.PerformanceFactor, goal.Importance, goal.Weightage).Scan(&goal.CreatedAt)
	if err != nil {
		return Goal{}, err
	}
	return goal, nil
}

func (s *Store) GetGoal(ctx context.Context, q Querier, goalID string) (Goal, error) {
	var goal Goal
	var templateID, categoryName *string
	var categoryID *int
	err := q.QueryRow(ctx, `
    SELECT g.id, g.template_id, g.category_id, c.name, g.title, g.description,
           g.performance_factor, g.importance, g.weightage, g.created_at
    FROM goals g
    LEFT JOIN categories c ON c.id = g.category_id
    WHERE g.id = $1
  `, goalID).Scan(&goal.ID, &templateID, &categoryID, &categoryName, &goal.Title,
		&goal.Description, &goal.PerformanceFactor, &goal.Importance, &goal.Weightage, &goal.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Goal{}, &NotFoundError{Entity: "goal", ID: goalID}
	}
	if err != nil {
		return Goal{}, err
	}
	if templateID != nil {
		goal.TemplateID = *templateID
	}
	if categoryID != nil {
		goal.CategoryID = *categoryID
	}
	if categoryName != nil {
		goal.CategoryName = *categoryName
	}
	return goal, nil
}
