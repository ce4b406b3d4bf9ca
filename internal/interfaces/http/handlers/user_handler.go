package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/jwtauth/internal/application/dto"
	"github.com/turtacn/jwtauth/internal/application/service"
	"github.com/turtacn/jwtauth/pkg/utils"
)

// UserHandler serves account endpoints.
type UserHandler struct {
	userService service.UserAppService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService service.UserAppService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Signup handles POST /api/signup.
func (h *UserHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.SendError(c, utils.ValidationError(err))
		return
	}

	user, err := h.userService.Signup(c.Request.Context(), &req, clientInfo(c))
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, user)
}

// GetMyUser handles GET /api/user.
func (h *UserHandler) GetMyUser(c *gin.Context) {
	user, err := h.userService.GetMyUserWithAuthorities(c.Request.Context())
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, user)
}

// GetUser handles GET /api/user/:username.
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userService.GetUserWithAuthorities(c.Request.Context(), c.Param("username"))
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, user)
}
