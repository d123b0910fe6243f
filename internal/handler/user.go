package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ikhtibar/internal/model/auth"
	"ikhtibar/internal/pkg/apperrors"
	"ikhtibar/internal/pkg/ctxutil"
	"ikhtibar/internal/pkg/httpx"
	"ikhtibar/internal/service"
)

// UserHandler serves the account administration endpoints.
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates the user handler.
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// List lists accounts
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        role      query     string  false  "filter by role"
// @Param        status    query     string  false  "filter by status"
// @Param        page      query     int     false  "page"
// @Param        page_size query     int     false  "page size"
// @Success      200       {object}  httpx.SuccessResponse{data=service.ListUsersResult}
// @Failure      403       {object}  httpx.ProblemDetails
// @Router       /api/v1/users [get]
func (h *UserHandler) List(c *gin.Context) {
	page, _ := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	pageSize, _ := strconv.ParseInt(c.DefaultQuery("page_size", "20"), 10, 64)

	result, err := h.userService.ListUsers(c.Request.Context(), c.Query("role"), c.Query("status"), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, httpx.NewSuccessResponse("", result))
}

// Get returns one account
// @Summary      Get user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "user ID"
// @Success      200  {object}  httpx.SuccessResponse
// @Failure      404  {object}  httpx.ProblemDetails
// @Router       /api/v1/users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.userService.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, httpx.NewSuccessResponse("", user))
}

// SetStatusRequest changes an account lifecycle state.
type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetStatus activates, deactivates or bans an account
// @Summary      Set user status
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string            true  "user ID"
// @Param        request  body      SetStatusRequest  true  "new status"
// @Success      200      {object}  httpx.SuccessResponse
// @Failure      400      {object}  httpx.ProblemDetails
// @Router       /api/v1/users/{id}/status [put]
func (h *UserHandler) SetStatus(c *gin.Context) {
	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(fmt.Errorf("%w: %s", apperrors.ErrInvalidArgument, err.Error()))
		return
	}

	if err := h.userService.SetStatus(c.Request.Context(), c.Param("id"), auth.UserStatus(req.Status)); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, httpx.NewSuccessResponse("status updated", nil))
}

// SetRolesRequest replaces the role assignment.
type SetRolesRequest struct {
	Roles []string `json:"roles" binding:"required"`
}

// SetRoles replaces an account's roles
// @Summary      Assign roles
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string           true  "user ID"
// @Param        request  body      SetRolesRequest  true  "role names"
// @Success      200      {object}  httpx.SuccessResponse
// @Failure      400      {object}  httpx.ProblemDetails
// @Router       /api/v1/users/{id}/roles [put]
func (h *UserHandler) SetRoles(c *gin.Context) {
	var req SetRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(fmt.Errorf("%w: %s", apperrors.ErrInvalidArgument, err.Error()))
		return
	}

	if err := h.userService.SetRoles(c.Request.Context(), c.Param("id"), req.Roles); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, httpx.NewSuccessResponse("roles updated", nil))
}

// Delete removes an account
// @Summary      Delete user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "user ID"
// @Success      200  {object}  httpx.SuccessResponse
// @Failure      404  {object}  httpx.ProblemDetails
// @Router       /api/v1/users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.userService.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, httpx.NewSuccessResponse("user deleted", nil))
}

// UpdateProfileRequest replaces the caller's profile.
type UpdateProfileRequest struct {
	FullName string `json:"full_name"`
	Avatar   string `json:"avatar"`
	Phone    string `json:"phone"`
	Language string `json:"language"`
}

// UpdateProfile updates the caller's own profile
// @Summary      Update profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      UpdateProfileRequest  true  "profile"
// @Success      200      {object}  httpx.SuccessResponse
// @Router       /api/v1/users/me/profile [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := ctxutil.GetUserID(c.Request.Context())
	if !ok {
		c.Error(apperrors.ErrUnauthorized)
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(fmt.Errorf("%w: %s", apperrors.ErrInvalidArgument, err.Error()))
		return
	}

	profile := &auth.UserProfile{
		FullName: req.FullName,
		Avatar:   req.Avatar,
		Phone:    req.Phone,
		Language: req.Language,
	}
	if err := h.userService.UpdateProfile(c.Request.Context(), userID, profile); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, httpx.NewSuccessResponse("profile updated", nil))
}
