package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/upmhealth/patient-records-api/internal/middleware"
	"github.com/upmhealth/patient-records-api/internal/model"
	"github.com/upmhealth/patient-records-api/internal/service/audit"
	"github.com/upmhealth/patient-records-api/internal/service/auth"
)

type AuthHandler struct {
	auth  *auth.Service
	audit *audit.Service
}

func NewAuthHandler(authSvc *auth.Service, auditSvc *audit.Service) *AuthHandler {
	return &AuthHandler{auth: authSvc, audit: auditSvc}
}

func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/login", h.Login)
	r.POST("/logout", h.Logout)
}

// Login checks demo credentials and records the attempt in the audit
// trail. Failed attempts for known usernames are recorded too; invented
// usernames are not.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse("username and password are required"))
		return
	}

	identity, err := h.auth.Authenticate(req.Username, req.Password)
	success := err == nil
	h.audit.RecordLogin(c.Request.Context(), req.Username, success, c.ClientIP())

	if err != nil {
		fail(c, err)
		return
	}

	log.Info().Str("username", identity.Username).Str("role", string(identity.Role)).Msg("user logged in")
	c.JSON(http.StatusOK, NewSuccessResponse(gin.H{"user": identity}))
}

// Logout exists for client symmetry. With no server-side sessions there
// is nothing to invalidate.
func (h *AuthHandler) Logout(c *gin.Context) {
	if identity := middleware.GetIdentity(c); identity != nil {
		log.Info().Str("username", identity.Username).Msg("user logged out")
	}
	c.JSON(http.StatusOK, NewSuccessMessage("logged out"))
}
