package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"perfeval/internal/domain/auth"
	"perfeval/internal/platform/config"
)

func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	tenantID, err := ensureTenant(ctx, pool, cfg.SeedTenantName)
	if err != nil {
		return err
	}

	if err := ensurePermissions(ctx, pool); err != nil {
		return err
	}

	roleIDs, err := ensureRoles(ctx, pool, tenantID)
	if err != nil {
		return err
	}

	if err := ensureRolePermissions(ctx, pool, roleIDs); err != nil {
		return err
	}

	if cfg.SeedAdminEmail != "" {
		if err := ensureUser(ctx, pool, tenantID, roleIDs[auth.RoleHR], cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
			return err
		}
	}

	if cfg.SeedDemoData {
		return seedDemoData(ctx, pool, tenantID, roleIDs)
	}
	return nil
}

func ensureTenant(ctx context.Context, pool *pgxpool.Pool, name string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM tenants WHERE name = $1", name).Scan(&id)
	if err == nil {
		return id, nil
	}

	err = pool.QueryRow(ctx, "INSERT INTO tenants (name) VALUES ($1) RETURNING id", name).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func ensurePermissions(ctx context.Context, pool *pgxpool.Pool) error {
	for _, perm := range auth.DefaultPermissions {
		if _, err := pool.Exec(ctx, "INSERT INTO permissions (key) VALUES ($1) ON CONFLICT (key) DO NOTHING", perm); err != nil {
			return err
		}
	}
	return nil
}

func ensureRoles(ctx context.Context, pool *pgxpool.Pool, tenantID string) (map[string]string, error) {
	roleIDs := map[string]string{}
	for role := range auth.RolePermissions {
		var id string
		err := pool.QueryRow(ctx, "SELECT id FROM roles WHERE tenant_id = $1 AND name = $2", tenantID, role).Scan(&id)
		if err != nil {
			err = pool.QueryRow(ctx, "INSERT INTO roles (tenant_id, name) VALUES ($1,$2) RETURNING id", tenantID, role).Scan(&id)
			if err != nil {
				return nil, err
			}
		}
		roleIDs[role] = id
	}
	return roleIDs, nil
}

func ensureRolePermissions(ctx context.Context, pool *pgxpool.Pool, roleIDs map[string]string) error {
	for role, perms := range auth.RolePermissions {
		roleID, ok := roleIDs[role]
		if !ok {
			continue
		}
		for _, perm := range perms {
			if _, err := pool.Exec(ctx, `
        INSERT INTO role_permissions (role_id, permission_key)
        VALUES ($1,$2)
        ON CONFLICT DO NOTHING
      `, roleID, perm); err != nil {
				return err
			}
		}
	}
	return nil
}

func ensureUser(ctx context.Context, pool *pgxpool.Pool, tenantID, roleID, email, password string) error {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&id)
	if err == nil {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, `
    INSERT INTO users (tenant_id, role_id, email, password_hash)
    VALUES ($1,$2,$3,$4)
  `, tenantID, roleID, email, hash)
	return err
}

// seedDemoData creates a manager/report pair with a starter category set,
// for local development only.
func seedDemoData(ctx context.Context, pool *pgxpool.Pool, tenantID string, roleIDs map[string]string) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM employees WHERE tenant_id = $1", tenantID).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	managerEmployeeID, err := seedEmployee(ctx, pool, tenantID, roleIDs[auth.RoleManager], "Marina", "Souza", "marina.souza@example.com", "Engineering Manager", nil)
	if err != nil {
		return err
	}
	if _, err := seedEmployee(ctx, pool, tenantID, roleIDs[auth.RoleEmployee], "Pedro", "Lima", "pedro.lima@example.com", "Software Engineer", &managerEmployeeID); err != nil {
		return err
	}

	for _, category := range []struct{ name, description string }{
		{"Comunicação", "Clareza e colaboração no dia a dia"},
		{"Técnica", "Domínio das ferramentas e práticas do time"},
		{"Entrega", "Previsibilidade e qualidade das entregas"},
	} {
		if _, err := pool.Exec(ctx, `
      INSERT INTO categories (tenant_id, name, description)
      VALUES ($1,$2,$3)
    `, tenantID, category.name, category.description); err != nil {
			return err
		}
	}
	return nil
}

func seedEmployee(ctx context.Context, pool *pgxpool.Pool, tenantID, roleID, firstName, lastName, email, position string, managerID *string) (string, error) {
	hash, err := auth.HashPassword("ChangeMe123!")
	if err != nil {
		return "", err
	}

	var userID string
	if err := pool.QueryRow(ctx, `
    INSERT INTO users (tenant_id, role_id, email, password_hash)
    VALUES ($1,$2,$3,$4)
    RETURNING id
  `, tenantID, roleID, email, hash).Scan(&userID); err != nil {
		return "", err
	}

	var employeeID string
	if err := pool.QueryRow(ctx, `
    INSERT INTO employees (tenant_id, user_id, manager_id, first_name, last_name, email, position)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id
  `, tenantID, userID, managerID, firstName, lastName, email, position).Scan(&employeeID); err != nil {
		return "", err
	}
	return employeeID, nil
}
