package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/jwtauth/internal/application/dto"
	"github.com/turtacn/jwtauth/internal/application/service"
	"github.com/turtacn/jwtauth/pkg/constants"
	"github.com/turtacn/jwtauth/pkg/utils"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService service.AuthAppService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthAppService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Authenticate handles POST /api/authenticate.
// The token is returned in the body and as an Authorization response header.
func (h *AuthHandler) Authenticate(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.SendError(c, utils.ValidationError(err))
		return
	}

	result, err := h.authService.Authenticate(c.Request.Context(), &req, clientInfo(c))
	if err != nil {
		dto.SendError(c, err)
		return
	}

	c.Header(constants.AuthorizationHeader, utils.BearerHeaderValue(result.Token))
	dto.SendSuccess(c, http.StatusOK, result)
}

// Hello handles GET /api/hello.
func (h *AuthHandler) Hello(c *gin.Context) {
	c.String(http.StatusOK, "hello")
}

func clientInfo(c *gin.Context) dto.ClientInfo {
	return dto.ClientInfo{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}
