package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cuongbtq/petstore/internal/auth/dto"
	"github.com/cuongbtq/petstore/internal/auth/model"
	"github.com/cuongbtq/petstore/shared/httpx"
)

// CreateUser handles POST /users/
func (h *Handler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := httpx.BindJSON(c, &req); err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to create user")
		return
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to create user")
		return
	}

	user := &model.User{Email: req.Email, HashedPassword: hash}
	if err := h.storage.CreateUser(c.Request.Context(), user, req.Roles); err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to create user")
		return
	}

	c.JSON(http.StatusOK, user)
}

// ListUsers handles GET /users/
func (h *Handler) ListUsers(c *gin.Context) {
	page, err := httpx.BindPage(c)
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to list users")
		return
	}

	users, err := h.storage.ListUsers(c.Request.Context(), page)
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to list users")
		return
	}

	c.JSON(http.StatusOK, users)
}

// GetUser handles GET /users/:id
func (h *Handler) GetUser(c *gin.Context) {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to get user")
		return
	}

	user, err := h.storage.GetUser(c.Request.Context(), id)
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to get user")
		return
	}

	c.JSON(http.StatusOK, user)
}

// CurrentUser handles GET /users/me
func (h *Handler) CurrentUser(c *gin.Context) {
	user, err := h.storage.GetUser(c.Request.Context(), c.GetInt64(ContextUserID))
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to get user")
		return
	}

	c.JSON(http.StatusOK, user)
}

// CreateRole handles POST /roles/
func (h *Handler) CreateRole(c *gin.Context) {
	var req dto.CreateRoleRequest
	if err := httpx.BindJSON(c, &req); err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to create role")
		return
	}

	role := &model.Role{Name: req.Name, Description: req.Description}
	if err := h.storage.CreateRole(c.Request.Context(), role); err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to create role")
		return
	}

	c.JSON(http.StatusOK, role)
}

// ListRoles handles GET /roles/
func (h *Handler) ListRoles(c *gin.Context) {
	page, err := httpx.BindPage(c)
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to list roles")
		return
	}

	roles, err := h.storage.ListRoles(c.Request.Context(), page)
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to list roles")
		return
	}

	c.JSON(http.StatusOK, roles)
}
