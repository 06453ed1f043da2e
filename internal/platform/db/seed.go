package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"pms/internal/domain/auth"
	"pms/internal/platform/config"
)

// Seed installs the fixed role hierarchy, the default appraisal types and
// ranges, and an optional admin account. Every step is idempotent.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if err := ensureRoles(ctx, pool); err != nil {
		return err
	}
	if err := ensureAppraisalTypes(ctx, pool); err != nil {
		return err
	}
	if cfg.SeedAdminEmail != "" && cfg.SeedAdminPassword != "" {
		if err := ensureAdmin(ctx, pool, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
			return err
		}
	}
	return nil
}

func ensureRoles(ctx context.Context, pool *pgxpool.Pool) error {
	for name, rank := range auth.RoleRanks {
		_, err := pool.Exec(ctx, `
      INSERT INTO roles (name, rank) VALUES ($1, $2)
      ON CONFLICT (name) DO NOTHING
    `, name, rank)
		if err != nil {
			return err
		}
	}
	return nil
}

type seedRange struct {
	name       string
	start, end int
}

type seedType struct {
	name     string
	hasRange bool
	ranges   []seedRange
}

var defaultTypes = []seedType{
	{name: "Annual"},
	{name: "Half-yearly", hasRange: true, ranges: []seedRange{{"1st", 1, 6}, {"2nd", 7, 12}}},
	{name: "Quarterly", hasRange: true, ranges: []seedRange{{"1st", 1, 3}, {"2nd", 4, 6}, {"3rd", 7, 9}, {"4th", 10, 12}}},
	{name: "Tri-annual", hasRange: true, ranges: []seedRange{{"1st", 1, 4}, {"2nd", 5, 8}, {"3rd", 9, 12}}},
	{name: "Project-end"},
}

func ensureAppraisalTypes(ctx context.Context, pool *pgxpool.Pool) error {
	for _, t := range defaultTypes {
		var typeID int
		err := pool.QueryRow(ctx, "SELECT id FROM appraisal_types WHERE name = $1", t.name).Scan(&typeID)
		if err == nil {
			continue
		}
		err = pool.QueryRow(ctx, `
      INSERT INTO appraisal_types (name, has_range) VALUES ($1, $2) RETURNING id
    `, t.name, t.hasRange).Scan(&typeID)
		if err != nil {
			return err
		}
		for _, r := range t.ranges {
			_, err := pool.Exec(ctx, `
        INSERT INTO appraisal_ranges (appraisal_type_id, name, start_month, end_month)
        VALUES ($1, $2, $3, $4)
      `, typeID, r.name, r.start, r.end)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func ensureAdmin(ctx context.Context, pool *pgxpool.Pool, email, password string) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM employees WHERE email = $1", email).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, `
    INSERT INTO employees (id, name, email, department, role_id, is_active, password_hash)
    VALUES (gen_random_uuid(), 'Administrator', $1,
            'Administration', (SELECT id FROM roles WHERE name = $2), TRUE, $3)
  `, email, auth.RoleAdmin, hash)
	return err
}
