package auth

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"ikhtibar/internal/pkg/apperrors"
	"ikhtibar/internal/pkg/httpx"
)

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=32"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name"`
}

// RegisterResponseData is the registration outcome.
type RegisterResponseData struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Status   string `json:"status"`
}

// Register creates an account
// @Summary      Register
// @Description  Creates a new account; accounts stay inactive until approved
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      RegisterRequest  true  "account details"
// @Success      201      {object}  httpx.SuccessResponse{data=RegisterResponseData}
// @Failure      400      {object}  httpx.ProblemDetails
// @Failure      409      {object}  httpx.ProblemDetails
// @Router       /api/v1/auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(fmt.Errorf("%w: %s", apperrors.ErrInvalidArgument, err.Error()))
		return
	}

	result, err := h.authService.Register(c.Request.Context(), req.Username, req.Email, req.Password, req.FullName)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, httpx.NewSuccessResponse("registration successful", RegisterResponseData{
		UserID:   result.UserID,
		Username: result.Username,
		Status:   result.Status,
	}))
}
