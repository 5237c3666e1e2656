package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/upmhealth/patient-records-api/internal/middleware"
	"github.com/upmhealth/patient-records-api/internal/model"
	"github.com/upmhealth/patient-records-api/internal/service/insurance"
)

type InsuranceHandler struct {
	insurance *insurance.Service
}

func NewInsuranceHandler(insuranceSvc *insurance.Service) *InsuranceHandler {
	return &InsuranceHandler{insurance: insuranceSvc}
}

func (h *InsuranceHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/insurance/providers",
		middleware.RequireRole(model.RolePhysician, model.RoleAdmin),
		h.Providers)
	r.GET("/insurance/providers/:providerId",
		middleware.RequireRole(model.RolePhysician, model.RoleAdmin),
		h.Provider)
}

// Providers lists all providers with their billing aggregates.
func (h *InsuranceHandler) Providers(c *gin.Context) {
	providers, err := h.insurance.Providers(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, NewSuccessResponse(gin.H{
		"providers": providers,
		"count":     len(providers),
	}))
}

func (h *InsuranceHandler) Provider(c *gin.Context) {
	providerID, err := pathID(c, "providerId")
	if err != nil {
		fail(c, err)
		return
	}
	provider, err := h.insurance.Provider(c.Request.Context(), providerID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, NewSuccessResponse(provider))
}
