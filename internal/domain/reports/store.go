package reports

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pms/internal/domain/appraisal"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) StatusCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.DB.Query(ctx, "SELECT status, COUNT(1) FROM appraisals GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (s *Store) ReviewerRatings(ctx context.Context) ([]int, error) {
	rows, err := s.DB.Query(ctx, "SELECT reviewer_rating FROM appraisals WHERE reviewer_rating IS NOT NULL")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ratings []int
	for rows.Next() {
		var rating int
		if err := rows.Scan(&rating); err != nil {
			return nil, err
		}
		ratings = append(ratings, rating)
	}
	return ratings, rows.Err()
}

func (s *Store) GoalCount(ctx context.Context) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM appraisal_goals").Scan(&count)
	return count, err
}

type AppraisalRow struct {
	ID            string
	AppraiseeName string
	AppraiserName string
	ReviewerName  string
	TypeName      string
	RangeName     string
	StartDate     string
	EndDate       string
	Status        string
	FinalRating   *int
}

func (s *Store) ListAppraisalRows(ctx context.Context) ([]AppraisalRow, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT a.id, ape.name, apr.name, rev.name, t.name, COALESCE(r.name, ''),
           to_char(a.start_date, 'YYYY-MM-DD'), to_char(a.end_date, 'YYYY-MM-DD'),
           a.status, a.reviewer_rating
    FROM appraisals a
    JOIN employees ape ON ape.id = a.appraisee_id
    JOIN employees apr ON apr.id = a.appraiser_id
    JOIN employees rev ON rev.id = a.reviewer_id
    JOIN appraisal_types t ON t.id = a.appraisal_type_id
    LEFT JOIN appraisal_ranges r ON r.id = a.range_id
    ORDER BY a.created_at DESC
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []AppraisalRow
	for rows.Next() {
		var row AppraisalRow
		if err := rows.Scan(&row.ID, &row.AppraiseeName, &row.AppraiserName, &row.ReviewerName,
			&row.TypeName, &row.RangeName, &row.StartDate, &row.EndDate, &row.Status, &row.FinalRating); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

type AppraisalDetail struct {
	Row   AppraisalRow
	Goals []GoalRow

	AppraiserComment string
	AppraiserRating  *int
	ReviewerComment  string
	ReviewerRating   *int
}

type GoalRow struct {
	Title            string
	Category         string
	Weightage        int
	SelfComment      string
	SelfRating       *int
	AppraiserComment string
	AppraiserRating  *int
}

func (s *Store) GetAppraisalDetail(ctx context.Context, appraisalID string) (AppraisalDetail, error) {
	var detail AppraisalDetail
	var appraiserComment, reviewerComment *string
	err := s.DB.QueryRow(ctx, `
    SELECT a.id, ape.name, apr.name, rev.name, t.name, COALESCE(r.name, ''),
           to_char(a.start_date, 'YYYY-MM-DD'), to_char(a.end_date, 'YYYY-MM-DD'),
           a.status, a.reviewer_rating, a.appraiser_comment, a.appraiser_rating, a.reviewer_comment
    FROM appraisals a
    JOIN employees ape ON ape.id = a.appraisee_id
    JOIN employees apr ON apr.id = a.appraiser_id
    JOIN employees rev ON rev.id = a.reviewer_id
    JOIN appraisal_types t ON t.id = a.appraisal_type_id
    LEFT JOIN appraisal_ranges r ON r.id = a.range_id
    WHERE a.id = $1
  `, appraisalID).Scan(&detail.Row.ID, &detail.Row.AppraiseeName, &detail.Row.AppraiserName,
		&detail.Row.ReviewerName, &detail.Row.TypeName, &detail.Row.RangeName,
		&detail.Row.StartDate, &detail.Row.EndDate, &detail.Row.Status, &detail.Row.FinalRating,
		&appraiserComment, &detail.AppraiserRating, &reviewerComment)
	if errors.Is(err, pgx.ErrNoRows) {
		return AppraisalDetail{}, &appraisal.NotFoundError{Entity: "appraisal", ID: appraisalID}
	}
	if err != nil {
		return AppraisalDetail{}, err
	}
	if appraiserComment != nil {
		detail.AppraiserComment = *appraiserComment
	}
	if reviewerComment != nil {
		detail.ReviewerComment = *reviewerComment
	}
	detail.ReviewerRating = detail.Row.FinalRating

	rows, err := s.DB.Query(ctx, `
    SELECT g.title, COALESCE(c.name, ''), g.weightage,
           COALESCE(ag.self_comment, ''), ag.self_rating,
           COALESCE(ag.appraiser_comment, ''), ag.appraiser_rating
    FROM appraisal_goals ag
    JOIN goals g ON g.id = ag.goal_id
    LEFT JOIN categories c ON c.id = g.category_id
    WHERE ag.appraisal_id = $1
    ORDER BY g.created_at
  `, appraisalID)
	if err != nil {
		return AppraisalDetail{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var goal GoalRow
		if err := rows.Scan(&goal.Title, &goal.Category, &goal.Weightage,
			&goal.SelfComment, &goal.SelfRating, &goal.AppraiserComment, &goal.AppraiserRating); err != nil {
			return AppraisalDetail{}, err
		}
		detail.Goals = append(detail.Goals, goal)
	}
	return detail, rows.Err()
}
