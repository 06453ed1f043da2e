package appraisal

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// Employee lookups scoped to what the workflow needs. Full employee CRUD
// lives in the employee domain.

func (s *Store) EmployeeActive(ctx context.Context, q Querier, employeeID string) (bool, error) {
	var active bool
	err := q.QueryRow(ctx, "SELECT is_active FROM employees WHERE id = $1", employeeID).Scan(&active)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, &NotFoundError{Entity: "employee", ID: employeeID}
	}
	if err != nil {
		return false, err
	}
	return active, nil
}

func (s *Store) EmployeeContact(ctx context.Context, employeeID string) (name, email string, err error) {
	err = s.DB.QueryRow(ctx, "SELECT name, email FROM employees WHERE id = $1", employeeID).Scan(&name, &email)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", "", &NotFoundError{Entity: "employee", ID: employeeID}
	}
	return name, email, err
}
