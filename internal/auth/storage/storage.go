// Package storage persists users, roles and their assignments.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/cuongbtq/petstore/internal/auth/model"
	"github.com/cuongbtq/petstore/shared/apperr"
	"github.com/cuongbtq/petstore/shared/httpx"
	"github.com/cuongbtq/petstore/shared/migrate"
	"github.com/cuongbtq/petstore/shared/postgresql"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrations is the goose source for the auth tables.
var Migrations = migrate.Source{FS: migrations, Dir: "migrations", Table: "goose_auth_version"}

const (
	userColumns = `id, email, hashed_password, is_active`
	roleColumns = `id, name, description`
)

type Storage struct {
	pg     *postgresql.Client
	db     *sqlx.DB
	logger *slog.Logger
}

func NewStorage(pg *postgresql.Client, logger *slog.Logger) *Storage {
	return &Storage{
		pg:     pg,
		db:     pg.GetDB(),
		logger: logger,
	}
}

// CreateUser inserts u and assigns the named roles. Names with no matching
// role are skipped.
func (s *Storage) CreateUser(ctx context.Context, u *model.User, roleNames []string) error {
	var exists bool
	err := s.db.GetContext(ctx, &exists, s.db.Rebind(`SELECT EXISTS (SELECT 1 FROM users WHERE email = ?)`), u.Email)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return apperr.Duplicate("Email")
	}

	u.Roles = []model.Role{}
	err = s.pg.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := tx.Rebind(`
			INSERT INTO users (email, hashed_password, is_active)
			VALUES (?, ?, ?)
			RETURNING id
		`)
		if err := tx.GetContext(ctx, &u.ID, query, u.Email, u.HashedPassword, true); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		u.IsActive = true

		if len(roleNames) == 0 {
			return nil
		}

		query, args, err := sqlx.In(`SELECT `+roleColumns+` FROM roles WHERE name IN (?) ORDER BY id`, roleNames)
		if err != nil {
			return fmt.Errorf("failed to build role query: %w", err)
		}
		if err := tx.SelectContext(ctx, &u.Roles, tx.Rebind(query), args...); err != nil {
			return fmt.Errorf("failed to resolve roles: %w", err)
		}

		assign := tx.Rebind(`INSERT INTO user_roles (user_id, role_id) VALUES (?, ?)`)
		for _, r := range u.Roles {
			if _, err := tx.ExecContext(ctx, assign, u.ID, r.ID); err != nil {
				return fmt.Errorf("failed to assign role %s: %w", r.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		if postgresql.IsUniqueViolation(err) {
			return apperr.Duplicate("Email")
		}
		return err
	}

	s.logger.Info("User registered",
		slog.Int64("user_id", u.ID),
		slog.Int("roles", len(u.Roles)),
	)
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id int64) (*model.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// GetUserByEmail is used to authenticate; the hash is loaded with the user.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (s *Storage) getUser(ctx context.Context, query string, arg any) (*model.User, error) {
	var u model.User
	err := s.db.GetContext(ctx, &u, s.db.Rebind(query), arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("User")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := s.attachRoles(ctx, []*model.User{&u}); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Storage) ListUsers(ctx context.Context, page httpx.Page) ([]model.User, error) {
	users := []model.User{}
	query := s.db.Rebind(`SELECT ` + userColumns + ` FROM users ORDER BY id LIMIT ? OFFSET ?`)
	if err := s.db.SelectContext(ctx, &users, query, page.Limit, page.Skip); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	refs := make([]*model.User, len(users))
	for i := range users {
		refs[i] = &users[i]
	}
	if err := s.attachRoles(ctx, refs); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Storage) attachRoles(ctx context.Context, users []*model.User) error {
	if len(users) == 0 {
		return nil
	}

	ids := make([]int64, len(users))
	byID := make(map[int64]*model.User, len(users))
	for i, u := range users {
		u.Roles = []model.Role{}
		ids[i] = u.ID
		byID[u.ID] = u
	}

	query, args, err := sqlx.In(`
		SELECT ur.user_id, r.id, r.name, r.description
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id IN (?)
		ORDER BY r.id
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to build role query: %w", err)
	}

	var rows []struct {
		UserID int64 `db:"user_id"`
		model.Role
	}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to load roles: %w", err)
	}
	for _, row := range rows {
		u := byID[row.UserID]
		u.Roles = append(u.Roles, row.Role)
	}
	return nil
}

func (s *Storage) CreateRole(ctx context.Context, r *model.Role) error {
	var exists bool
	err := s.db.GetContext(ctx, &exists, s.db.Rebind(`SELECT EXISTS (SELECT 1 FROM roles WHERE name = ?)`), r.Name)
	if err != nil {
		return fmt.Errorf("failed to check role: %w", err)
	}
	if exists {
		return apperr.Duplicate("Role")
	}

	query := s.db.Rebind(`INSERT INTO roles (name, description) VALUES (?, ?) RETURNING id`)
	if err := s.db.GetContext(ctx, &r.ID, query, r.Name, r.Description); err != nil {
		if postgresql.IsUniqueViolation(err) {
			return apperr.Duplicate("Role")
		}
		return fmt.Errorf("failed to create role: %w", err)
	}
	return nil
}

func (s *Storage) ListRoles(ctx context.Context, page httpx.Page) ([]model.Role, error) {
	roles := []model.Role{}
	query := s.db.Rebind(`SELECT ` + roleColumns + ` FROM roles ORDER BY id LIMIT ? OFFSET ?`)
	if err := s.db.SelectContext(ctx, &roles, query, page.Limit, page.Skip); err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return roles, nil
}
