package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/upmhealth/patient-records-api/pkg/errors"

	"github.com/upmhealth/patient-records-api/internal/middleware"
	"github.com/upmhealth/patient-records-api/internal/model"
	"github.com/upmhealth/patient-records-api/internal/service/person"
)

type PersonHandler struct {
	persons *person.Service
}

func NewPersonHandler(persons *person.Service) *PersonHandler {
	return &PersonHandler{persons: persons}
}

func (h *PersonHandler) RegisterRoutes(r *gin.RouterGroup) {
	group := r.Group("/persons", middleware.RequireRole(model.RoleAdmin))
	group.POST("", h.Create)
	group.GET("/:personId", h.Get)
	group.GET("", h.ListByRole)
}

func (h *PersonHandler) Create(c *gin.Context) {
	var req model.CreatePersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperrors.Validation("name and role are required"))
		return
	}

	personID, err := h.persons.Create(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewSuccessResponse(gin.H{"person_id": personID}))
}

func (h *PersonHandler) Get(c *gin.Context) {
	personID, err := pathID(c, "personId")
	if err != nil {
		fail(c, err)
		return
	}
	p, detail, err := h.persons.GetDetail(c.Request.Context(), personID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, NewSuccessResponse(gin.H{
		"person": p,
		"detail": detail,
	}))
}

func (h *PersonHandler) ListByRole(c *gin.Context) {
	role := model.Role(c.Query("role"))
	persons, err := h.persons.ListByRole(c.Request.Context(), role)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, NewSuccessResponse(gin.H{
		"persons": persons,
		"count":   len(persons),
	}))
}
