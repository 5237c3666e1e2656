package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/upmhealth/patient-records-api/pkg/errors"

	"github.com/upmhealth/patient-records-api/internal/middleware"
	"github.com/upmhealth/patient-records-api/internal/model"
	"github.com/upmhealth/patient-records-api/internal/service/patient"
)

type PatientHandler struct {
	patients *patient.Service
}

func NewPatientHandler(patients *patient.Service) *PatientHandler {
	return &PatientHandler{patients: patients}
}

func (h *PatientHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/patients/search",
		middleware.RequireRole(model.RolePhysician, model.RoleNurse),
		h.Search)
	r.GET("/patients/me/record",
		middleware.RequireRole(model.RolePatient),
		h.MyRecord)
	r.GET("/patients/:patientId/record",
		middleware.RequireRole(model.RolePhysician, model.RolePatient),
		middleware.RequireSelfPatient("patientId"),
		h.Record)
	r.GET("/patients/:patientId/visits/:visitId",
		middleware.RequireRole(model.RolePhysician, model.RolePatient),
		middleware.RequireSelfPatient("patientId"),
		h.Visit)
	r.POST("/prescriptions",
		middleware.RequireRole(model.RolePhysician),
		h.Prescribe)
}

func (h *PatientHandler) Prescribe(c *gin.Context) {
	var req model.CreatePrescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperrors.Validation("visit_id, medication_name, dosage, frequency, and start_date are required"))
		return
	}

	identity := middleware.GetIdentity(c)
	p, err := h.patients.Prescribe(c.Request.Context(), identity.PersonID, &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewSuccessResponse(p))
}

func (h *PatientHandler) Search(c *gin.Context) {
	results, err := h.patients.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, NewSuccessResponse(gin.H{
		"patients": results,
		"count":    len(results),
	}))
}

// MyRecord is the patient's own history view.
func (h *PatientHandler) MyRecord(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	record, err := h.patients.MedicalRecord(c.Request.Context(), identity.PersonID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, NewSuccessResponse(record))
}

func (h *PatientHandler) Record(c *gin.Context) {
	patientID, err := pathID(c, "patientId")
	if err != nil {
		fail(c, err)
		return
	}
	record, err := h.patients.MedicalRecord(c.Request.Context(), patientID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, NewSuccessResponse(record))
}

func (h *PatientHandler) Visit(c *gin.Context) {
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
	visit, err := h.patients.Visit(c.Request.Context(), patientID, visitID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, NewSuccessResponse(visit))
}

func pathID(c *gin.Context, param string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.BadRequest("invalid "+param, err)
	}
	return id, nil
}
