package employee

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound       = errors.New("employee not found")
	ErrEmailTaken     = errors.New("email is already in use")
	ErrRoleNotFound   = errors.New("role not found")
	ErrRoleReferenced = errors.New("role is referenced by employees")
	ErrReportingCycle = errors.New("reporting chain would form a cycle")
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const employeeColumns = `
  e.id, e.name, e.email, e.department, e.role_id, r.name, r.rank,
  e.reporting_manager_id, e.is_active, e.created_at, e.updated_at
`

func scanEmployee(row pgx.Row) (Employee, error) {
	var e Employee
	err := row.Scan(&e.ID, &e.Name, &e.Email, &e.Department, &e.RoleID, &e.RoleName,
		&e.RoleRank, &e.ReportingManagerID, &e.IsActive, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	if err != nil {
		return Employee{}, err
	}
	return e, nil
}

func (s *Store) Get(ctx context.Context, employeeID string) (Employee, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+`
    FROM employees e
    JOIN roles r ON r.id = e.role_id
    WHERE e.id = $1
  `, employeeID)
	return scanEmployee(row)
}

func (s *Store) GetByEmail(ctx context.Context, email string) (Employee, string, error) {
	var e Employee
	var passwordHash string
	err := s.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+`, e.password_hash
    FROM employees e
    JOIN roles r ON r.id = e.role_id
    WHERE e.email = $1
  `, email).Scan(&e.ID, &e.Name, &e.Email, &e.Department, &e.RoleID, &e.RoleName,
		&e.RoleRank, &e.ReportingManagerID, &e.IsActive, &e.CreatedAt, &e.UpdatedAt, &passwordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, "", ErrNotFound
	}
	if err != nil {
		return Employee{}, "", err
	}
	return e, passwordHash, nil
}

func (s *Store) List(ctx context.Context, includeInactive bool, limit, offset int) ([]Employee, error) {
	query := `
    SELECT ` + employeeColumns + `
    FROM employees e
    JOIN roles r ON r.id = e.role_id
  `
	if !includeInactive {
		query += " WHERE e.is_active"
	}
	query += " ORDER BY e.name LIMIT $1 OFFSET $2"

	rows, err := s.DB.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (s *Store) Create(ctx context.Context, e *Employee, passwordHash string) error {
	e.ID = uuid.NewString()
	err := s.DB.QueryRow(ctx, `
    INSERT INTO employees (id, name, email, department, role_id, reporting_manager_id, is_active, password_hash)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    RETURNING created_at, updated_at
  `, e.ID, e.Name, e.Email, e.Department, e.RoleID, e.ReportingManagerID, e.IsActive, passwordHash).
		Scan(&e.CreatedAt, &e.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}

func (s *Store) Update(ctx context.Context, e *Employee) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE employees
    SET name = $2, email = $3, department = $4, role_id = $5,
        reporting_manager_id = $6, is_active = $7, updated_at = now()
    WHERE id = $1
  `, e.ID, e.Name, e.Email, e.Department, e.RoleID, e.ReportingManagerID, e.IsActive)
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Deactivate marks the employee inactive rather than deleting the row;
// appraisals keep their actor references.
func (s *Store) Deactivate(ctx context.Context, employeeID string) error {
	tag, err := s.DB.Exec(ctx, "UPDATE employees SET is_active = FALSE, updated_at = now() WHERE id = $1", employeeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ReportingChains loads the full id -> manager-id map for cycle checks.
func (s *Store) ReportingChains(ctx context.Context) (map[string]string, error) {
	rows, err := s.DB.Query(ctx, "SELECT id, reporting_manager_id FROM employees")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	parentOf := map[string]string{}
	for rows.Next() {
		var id string
		var managerID *string
		if err := rows.Scan(&id, &managerID); err != nil {
			return nil, err
		}
		if managerID != nil {
			parentOf[id] = *managerID
		} else {
			parentOf[id] = ""
		}
	}
	return parentOf, rows.Err()
}

func (s *Store) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := s.DB.Query(ctx, "SELECT id, name, rank FROM roles ORDER BY rank")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		var r Role
		if err := rows.Scan(&r.ID, &r.Name, &r.Rank); err != nil {
			return nil, err
		}
		roles = append(roles, r)
	}
	return roles, rows.Err()
}

func (s *Store) GetRole(ctx context.Context, roleID int) (Role, error) {
	var r Role
	err := s.DB.QueryRow(ctx, "SELECT id, name, rank FROM roles WHERE id = $1", roleID).Scan(&r.ID, &r.Name, &r.Rank)
	if errors.Is(err, pgx.ErrNoRows) {
		return Role{}, ErrRoleNotFound
	}
	return r, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
