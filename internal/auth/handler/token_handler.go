package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cuongbtq/petstore/internal/auth/dto"
	"github.com/cuongbtq/petstore/internal/auth/security"
	"github.com/cuongbtq/petstore/shared/apperr"
	"github.com/cuongbtq/petstore/shared/httpx"
)

// ContextUserID is the gin context key RequireAuth stores the caller's id under
const ContextUserID = "auth.user_id"

var errBadCredentials = apperr.New(apperr.ErrAuthenticationFailed, "Incorrect email or password")

// Login handles POST /token
func (h *Handler) Login(c *gin.Context) {
	var form dto.LoginForm
	if err := c.ShouldBind(&form); err != nil {
		httpx.BadRequest(c, "username and password are required")
		return
	}

	user, err := h.storage.GetUserByEmail(c.Request.Context(), form.Username)
	if errors.Is(err, apperr.ErrNotFound) {
		h.unauthorized(c, errBadCredentials)
		return
	}
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to authenticate")
		return
	}
	if !h.hasher.Verify(form.Password, user.HashedPassword) {
		h.logger.Warn("Login rejected", slog.Int64("user_id", user.ID))
		h.unauthorized(c, errBadCredentials)
		return
	}
	if !user.IsActive {
		httpx.BadRequest(c, "Inactive user")
		return
	}

	token, err := h.tokens.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to issue token")
		return
	}

	c.JSON(http.StatusOK, dto.TokenResponse{AccessToken: token, TokenType: security.TokenType})
}

// RequireAuth rejects requests without a valid bearer token and stores the
// caller's user id under ContextUserID.
func (h *Handler) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := security.ExtractBearer(c.GetHeader("Authorization"))
		if err != nil {
			h.unauthorized(c, apperr.New(apperr.ErrAuthenticationFailed, "Not authenticated"))
			return
		}

		claims, err := h.tokens.ValidateToken(raw)
		if err != nil {
			h.logger.Debug("Token rejected", slog.Any("error", err))
			h.unauthorized(c, apperr.New(apperr.ErrAuthenticationFailed, "Could not validate credentials"))
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Next()
	}
}

func (h *Handler) unauthorized(c *gin.Context, err error) {
	c.Header("WWW-Authenticate", "Bearer")
	httpx.WriteError(c, h.logger, err, "")
	c.Abort()
}
