package handler

import (
	"context"
	"log/slog"

	"github.com/cuongbtq/petstore/internal/auth/model"
	"github.com/cuongbtq/petstore/internal/auth/security"
	"github.com/cuongbtq/petstore/shared/httpx"
)

// Storage is the persistence the auth handlers need
type Storage interface {
	CreateUser(ctx context.Context, u *model.User, roleNames []string) error
	GetUser(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context, page httpx.Page) ([]model.User, error)
	CreateRole(ctx context.Context, r *model.Role) error
	ListRoles(ctx context.Context, page httpx.Page) ([]model.Role, error)
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger  *slog.Logger
	Storage Storage
	Hasher  *security.Hasher
	Tokens  *security.TokenService
}

type Handler struct {
	logger  *slog.Logger
	storage Storage
	hasher  *security.Hasher
	tokens  *security.TokenService
}

// NewHandler creates a new Handler instance
func NewHandler(deps *Dependencies) *Handler {
	return &Handler{
		logger:  deps.Logger,
		storage: deps.Storage,
		hasher:  deps.Hasher,
		tokens:  deps.Tokens,
	}
}
