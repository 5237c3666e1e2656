package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/upmhealth/patient-records-api/pkg/errors"

	"github.com/upmhealth/patient-records-api/internal/middleware"
	"github.com/upmhealth/patient-records-api/internal/model"
	"github.com/upmhealth/patient-records-api/internal/service/vitalsign"
	"github.com/upmhealth/patient-records-api/internal/vitals"
)

type VitalsHandler struct {
	vitals *vitalsign.Service
}

func NewVitalsHandler(vitalSvc *vitalsign.Service) *VitalsHandler {
	return &VitalsHandler{vitals: vitalSvc}
}

func (h *VitalsHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/patients/:patientId/vitals",
		middleware.RequireRole(model.RoleNurse),
		h.Record)
	r.GET("/patients/:patientId/visits/:visitId/vitals",
		middleware.RequireRole(model.RolePhysician, model.RoleNurse, model.RolePatient),
		middleware.RequireSelfPatient("patientId"),
		h.ListByVisit)
	r.POST("/vitals/validate", h.Validate)
}

// Record persists a validated batch of measurements. The response names
// every rejected measurement so the nurse can correct and resubmit.
func (h *VitalsHandler) Record(c *gin.Context) {
	patientID, err := pathID(c, "patientId")
	if err != nil {
		fail(c, err)
		return
	}

	var req model.RecordVitalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperrors.Validation("at least one vital sign is required"))
		return
	}

	identity := middleware.GetIdentity(c)
	result, err := h.vitals.Record(c.Request.Context(), patientID, identity.PersonID, &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewSuccessResponse(result))
}

func (h *VitalsHandler) ListByVisit(c *gin.Context) {
	patientID, err := pathID(c, "patientId")
	if err != nil {
		fail(c, err)
		return
	}
	visitID, err := pathID(c, "visitId")
	if err != nil {
		fail(c, err)
		return
	}

	signs, err := h.vitals.ListByVisit(c.Request.Context(), patientID, visitID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, NewSuccessResponse(gin.H{"vital_signs": signs}))
}

// Validate checks a single measurement without persisting anything, for
// incremental form feedback.
func (h *VitalsHandler) Validate(c *gin.Context) {
	var input model.VitalSignInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, apperrors.Validation("measure_type, value, and unit are required"))
		return
	}

	res := vitals.ValidateOne(input.Type, input.Value, input.Unit)
	c.JSON(http.StatusOK, NewSuccessResponse(gin.H{
		"valid":  res.Valid,
		"errors": res.Errors,
		"parsed": res.Parsed,
	}))
}
