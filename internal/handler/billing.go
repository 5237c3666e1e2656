package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/upmhealth/patient-records-api/pkg/errors"

	"github.com/upmhealth/patient-records-api/internal/middleware"
	"github.com/upmhealth/patient-records-api/internal/model"
	"github.com/upmhealth/patient-records-api/internal/service/billing"
	"github.com/upmhealth/patient-records-api/internal/service/insurance"
)

type BillingHandler struct {
	billing   *billing.Service
	insurance *insurance.Service
}

func NewBillingHandler(billingSvc *billing.Service, insuranceSvc *insurance.Service) *BillingHandler {
	return &BillingHandler{billing: billingSvc, insurance: insuranceSvc}
}

func (h *BillingHandler) RegisterRoutes(r *gin.RouterGroup) {
	group := r.Group("/billing", middleware.RequireRole(model.RolePhysician))
	group.GET("/unbilled", h.Unbilled)
	group.POST("/generate", h.Generate)
	group.GET("/stats", h.Stats)
	group.GET("/:billingId", h.Get)
	group.POST("/:billingId/submit", h.Submit)
}

func (h *BillingHandler) Unbilled(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	visits, err := h.billing.UnbilledVisits(c.Request.Context(), identity.PersonID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, NewSuccessResponse(gin.H{
		"visits": visits,
		"count":  len(visits),
	}))
}

// Generate runs the billing pipeline for the selected visits. The whole
// batch fails on the first bad visit; summaries already committed for
// earlier visits stand.
func (h *BillingHandler) Generate(c *gin.Context) {
	var req model.GenerateBillingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperrors.Validation("at least one visit ID is required"))
		return
	}

	identity := middleware.GetIdentity(c)
	summaries, err := h.billing.GenerateSummaries(c.Request.Context(), req.VisitIDs, identity.PersonID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewSuccessResponse(gin.H{
		"billing_summaries": summaries,
		"count":             len(summaries),
	}))
}

func (h *BillingHandler) Stats(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	stats, err := h.billing.Stats(c.Request.Context(), identity.PersonID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, NewSuccessResponse(stats))
}

func (h *BillingHandler) Get(c *gin.Context) {
	billingID, err := pathID(c, "billingId")
	if err != nil {
		fail(c, err)
		return
	}
	identity := middleware.GetIdentity(c)
	summary, err := h.billing.Get(c.Request.Context(), billingID, identity.PersonID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, NewSuccessResponse(summary))
}

// Submit sends a pending billing to its insurance provider.
func (h *BillingHandler) Submit(c *gin.Context) {
	billingID, err := pathID(c, "billingId")
	if err != nil {
		fail(c, err)
		return
	}
	identity := middleware.GetIdentity(c)
	outcome, err := h.insurance.Submit(c.Request.Context(), billingID, identity.PersonID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, NewSuccessResponse(outcome))
}
