package auth

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

type AuthUser struct {
	ID       string
	TenantID string
	RoleID   string
	RoleName string
	Password string
}

func (s *Store) FindActiveUserByEmail(ctx context.Context, email string) (AuthUser, error) {
	var out AuthUser
	err := s.DB.QueryRow(ctx, `
    SELECT u.id, u.tenant_id, u.role_id, r.name, u.password_hash
    FROM users u
    JOIN roles r ON u.role_id = r.id
    WHERE u.email = $1 AND u.status = 'active'
  `, email).Scan(&out.ID, &out.TenantID, &out.RoleID, &out.RoleName, &out.Password)
	return out, err
}

func (s *Store) UpdateLastLogin(ctx context.Context, userID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET last_login = now() WHERE id = $1", userID)
	return err
}

func (s *Store) HasPermission(ctx context.Context, roleID, permission string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM role_permissions
    WHERE role_id = $1 AND permission_key = $2
  `, roleID, permission).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
