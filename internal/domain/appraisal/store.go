package appraisal

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx so store methods
// can run standalone or inside a unit of work.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Begin(ctx context.Context) (pgx.Tx, error) {
	return s.DB.Begin(ctx)
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (s *Store) GetType(ctx context.Context, q Querier, typeID int) (AppraisalType, error) {
	var t AppraisalType
	err := q.QueryRow(ctx, `
    SELECT id, name, has_range
    FROM appraisal_types
    WHERE id = $1
  `, typeID).Scan(&t.ID, &t.Name, &t.HasRange)
	if errors.Is(err, pgx.ErrNoRows) {
		return AppraisalType{}, &NotFoundError{Entity: "appraisal type", ID: itoa(typeID)}
	}
	if err != nil {
		return AppraisalType{}, err
	}
	return t, nil
}

func (s *Store) ListTypes(ctx context.Context) ([]AppraisalType, error) {
	rows, err := s.DB.Query(ctx, "SELECT id, name, has_range FROM appraisal_types ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []AppraisalType
	for rows.Next() {
		var t AppraisalType
		if err := rows.Scan(&t.ID, &t.Name, &t.HasRange); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

func (s *Store) CreateType(ctx context.Context, name string, hasRange bool, ranges []AppraisalRange) (AppraisalType, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return AppraisalType{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var t AppraisalType
	err = tx.QueryRow(ctx, `
    INSERT INTO appraisal_types (name, has_range)
    VALUES ($1, $2)
    RETURNING id, name, has_range
  `, name, hasRange).Scan(&t.ID, &t.Name, &t.HasRange)
	if isUniqueViolation(err) {
		return AppraisalType{}, &ConflictError{Detail: "appraisal type " + name + " already exists"}
	}
	if err != nil {
		return AppraisalType{}, err
	}

	for _, r := range ranges {
		_, err := tx.Exec(ctx, `
      INSERT INTO appraisal_ranges (appraisal_type_id, name, start_month, end_month)
      VALUES ($1, $2, $3, $4)
    `, t.ID, r.Name, r.StartMonth, r.EndMonth)
		if err != nil {
			return AppraisalType{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return AppraisalType{}, err
	}
	return t, nil
}

func (s *Store) GetRange(ctx context.Context, q Querier, rangeID int) (AppraisalRange, error) {
	var r AppraisalRange
	err := q.QueryRow(ctx, `
    SELECT id, appraisal_type_id, name, start_month, end_month
    FROM appraisal_ranges
    WHERE id = $1
  `, rangeID).Scan(&r.ID, &r.AppraisalTypeID, &r.Name, &r.StartMonth, &r.EndMonth)
	if errors.Is(err, pgx.ErrNoRows) {
		return AppraisalRange{}, &NotFoundError{Entity: "appraisal range", ID: itoa(rangeID)}
	}
	if err != nil {
		return AppraisalRange{}, err
	}
	return r, nil
}

func (s *Store) ListRanges(ctx context.Context, typeID int) ([]AppraisalRange, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, appraisal_type_id, name, start_month, end_month
    FROM appraisal_ranges
    WHERE appraisal_type_id = $1
    ORDER BY start_month
  `, typeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ranges []AppraisalRange
	for rows.Next() {
		var r AppraisalRange
		if err := rows.Scan(&r.ID, &r.AppraisalTypeID, &r.Name, &r.StartMonth, &r.EndMonth); err != nil {
			return nil, err
		}
		ranges = append(ranges, r)
	}
	return ranges, rows.Err()
}

func (s *Store) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := s.DB.Query(ctx, "SELECT id, name FROM categories ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// EnsureCategory returns the id of the category with the given name,
// creating it when absent. The unique constraint arbitrates concurrent
// creators; the loser falls back to the lookup instead of surfacing the
// violation.
func (s *Store) EnsureCategory(ctx context.Context, q Querier, name string) (int, error) {
	var id int
	err := q.QueryRow(ctx, `
    INSERT INTO categories (name)
    VALUES ($1)
    ON CONFLICT (name) DO NOTHING
    RETURNING id
  `, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) && !isUniqueViolation(err) {
		return 0, err
	}
	if err := q.QueryRow(ctx, "SELECT id FROM categories WHERE name = $1", name).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func itoa(value int) string {
	return strconv.Itoa(value)
}
