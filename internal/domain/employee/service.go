package employee

import (
	"context"
	"fmt"
	"strings"

	"pms/internal/domain/auth"
)

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

type CreateInput struct {
	Name               string  `json:"name"`
	Email              string  `json:"email"`
	Department         string  `json:"department"`
	RoleID             int     `json:"roleId"`
	ReportingManagerID *string `json:"reportingManagerId"`
	Password           string  `json:"password"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Employee, error) {
	if _, err := s.store.GetRole(ctx, in.RoleID); err != nil {
		return Employee{}, err
	}
	if in.ReportingManagerID != nil {
		if _, err := s.store.Get(ctx, *in.ReportingManagerID); err != nil {
			return Employee{}, fmt.Errorf("reporting manager: %w", err)
		}
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return Employee{}, err
	}

	e := Employee{
		Name:               strings.TrimSpace(in.Name),
		Email:              strings.ToLower(strings.TrimSpace(in.Email)),
		Department:         strings.TrimSpace(in.Department),
		RoleID:             in.RoleID,
		ReportingManagerID: in.ReportingManagerID,
		IsActive:           true,
	}
	if err := s.store.Create(ctx, &e, hash); err != nil {
		return Employee{}, err
	}
	return s.store.Get(ctx, e.ID)
}

type UpdateInput struct {
	Name               *string `json:"name"`
	Email              *string `json:"email"`
	Department         *string `json:"department"`
	RoleID             *int    `json:"roleId"`
	ReportingManagerID *string `json:"reportingManagerId"`
	IsActive           *bool   `json:"isActive"`
}

func (s *Service) Update(ctx context.Context, employeeID string, in UpdateInput) (Employee, error) {
	current, err := s.store.Get(ctx, employeeID)
	if err != nil {
		return Employee{}, err
	}

	if in.Name != nil {
		current.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		current.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Department != nil {
		current.Department = strings.TrimSpace(*in.Department)
	}
	if in.RoleID != nil {
		if _, err := s.store.GetRole(ctx, *in.RoleID); err != nil {
			return Employee{}, err
		}
		current.RoleID = *in.RoleID
	}
	if in.IsActive != nil {
		current.IsActive = *in.IsActive
	}
	if in.ReportingManagerID != nil {
		managerID := strings.TrimSpace(*in.ReportingManagerID)
		if managerID == "" {
			current.ReportingManagerID = nil
		} else {
			if _, err := s.store.Get(ctx, managerID); err != nil {
				return Employee{}, fmt.Errorf("reporting manager: %w", err)
			}
			parentOf, err := s.store.ReportingChains(ctx)
			if err != nil {
				return Employee{}, err
			}
			if err := CheckManagerCycle(employeeID, managerID, parentOf); err != nil {
				return Employee{}, err
			}
			current.ReportingManagerID = &managerID
		}
	}

	if err := s.store.Update(ctx, &current); err != nil {
		return Employee{}, err
	}
	return s.store.Get(ctx, employeeID)
}

func (s *Service) Get(ctx context.Context, employeeID string) (Employee, error) {
	return s.store.Get(ctx, employeeID)
}

func (s *Service) List(ctx context.Context, includeInactive bool, limit, offset int) ([]Employee, error) {
	return s.store.List(ctx, includeInactive, limit, offset)
}

func (s *Service) Deactivate(ctx context.Context, employeeID string) error {
	return s.store.Deactivate(ctx, employeeID)
}

func (s *Service) Roles(ctx context.Context) ([]Role, error) {
	return s.store.ListRoles(ctx)
}

// Authenticate verifies credentials and returns the active employee.
func (s *Service) Authenticate(ctx context.Context, email, password string) (Employee, error) {
	e, hash, err := s.store.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return Employee{}, err
	}
	if !e.IsActive {
		return Employee{}, ErrNotFound
	}
	if err := auth.CheckPassword(hash, password); err != nil {
		return Employee{}, err
	}
	return e, nil
}
