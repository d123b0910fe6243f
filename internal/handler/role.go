package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"ikhtibar/internal/pkg/apperrors"
	"ikhtibar/internal/pkg/httpx"
	"ikhtibar/internal/service"
)

// RoleHandler serves role and permission administration.
type RoleHandler struct {
	roleService *service.RoleService
}

// NewRoleHandler creates the role handler.
func NewRoleHandler(roleService *service.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

// CreateRoleRequest defines a new role.
type CreateRoleRequest struct {
	Name        string   `json:"name" binding:"required,min=2,max=64"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions" binding:"required"`
}

// Create creates a role
// @Summary      Create role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      CreateRoleRequest  true  "role definition"
// @Success      201      {object}  httpx.SuccessResponse
// @Failure      400      {object}  httpx.ProblemDetails
// @Failure      409      {object}  httpx.ProblemDetails
// @Router       /api/v1/roles [post]
func (h *RoleHandler) Create(c *gin.Context) {
	var req CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(fmt.Errorf("%w: %s", apperrors.ErrInvalidArgument, err.Error()))
		return
	}

	role, err := h.roleService.CreateRole(c.Request.Context(), req.Name, req.Description, req.Permissions)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, httpx.NewSuccessResponse("role created", role))
}

// UpdateRoleRequest changes a role's description or permission set.
type UpdateRoleRequest struct {
	Description string   `json:"description"`
	Permissions []string `json:"permissions" binding:"required"`
}

// Update updates a role
// @Summary      Update role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string             true  "role ID"
// @Param        request  body      UpdateRoleRequest  true  "changes"
// @Success      200      {object}  httpx.SuccessResponse
// @Failure      404      {object}  httpx.ProblemDetails
// @Router       /api/v1/roles/{id} [put]
func (h *RoleHandler) Update(c *gin.Context) {
	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(fmt.Errorf("%w: %s", apperrors.ErrInvalidArgument, err.Error()))
		return
	}

	if err := h.roleService.UpdateRole(c.Request.Context(), c.Param("id"), req.Description, req.Permissions); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, httpx.NewSuccessResponse("role updated", nil))
}

// Delete deletes a role
// @Summary      Delete role
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "role ID"
// @Success      200  {object}  httpx.SuccessResponse
// @Failure      409  {object}  httpx.ProblemDetails
// @Router       /api/v1/roles/{id} [delete]
func (h *RoleHandler) Delete(c *gin.Context) {
	if err := h.roleService.DeleteRole(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, httpx.NewSuccessResponse("role deleted", nil))
}

// Get returns one role
// @Summary      Get role
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "role ID"
// @Success      200  {object}  httpx.SuccessResponse
// @Failure      404  {object}  httpx.ProblemDetails
// @Router       /api/v1/roles/{id} [get]
func (h *RoleHandler) Get(c *gin.Context) {
	role, err := h.roleService.GetRole(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, httpx.NewSuccessResponse("", role))
}

// List lists roles
// @Summary      List roles
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  httpx.SuccessResponse
// @Router       /api/v1/roles [get]
func (h *RoleHandler) List(c *gin.Context) {
	roles, err := h.roleService.ListRoles(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, httpx.NewSuccessResponse("", roles))
}

// ListPermissions lists the permission catalogue
// @Summary      List permissions
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  httpx.SuccessResponse
// @Router       /api/v1/permissions [get]
func (h *RoleHandler) ListPermissions(c *gin.Context) {
	permissions, err := h.roleService.ListPermissions(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, httpx.NewSuccessResponse("", permissions))
}
