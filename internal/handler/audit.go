package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/upmhealth/patient-records-api/pkg/errors"

	"github.com/upmhealth/patient-records-api/internal/middleware"
	"github.com/upmhealth/patient-records-api/internal/model"
	"github.com/upmhealth/patient-records-api/internal/service/audit"
)

type AuditHandler struct {
	audit *audit.Service
}

func NewAuditHandler(auditSvc *audit.Service) *AuditHandler {
	return &AuditHandler{audit: auditSvc}
}

func (h *AuditHandler) RegisterRoutes(r *gin.RouterGroup) {
	group := r.Group("/audit", middleware.RequireRole(model.RoleAdmin))
	group.GET("/logs", h.List)
	group.GET("/logs/recent", h.Recent)
	group.GET("/logs/stats", h.Stats)
	group.GET("/logs/export", h.Export)
	group.DELETE("/logs/:logId", h.Delete)
}

func (h *AuditHandler) List(c *gin.Context) {
	filter, err := parseAuditFilter(c)
	if err != nil {
		fail(c, err)
		return
	}
	page, err := h.audit.List(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, NewSuccessResponse(page))
}

func (h *AuditHandler) Recent(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	logs, err := h.audit.Recent(c.Request.Context(), limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, NewSuccessResponse(gin.H{"logs": logs}))
}

func (h *AuditHandler) Stats(c *gin.Context) {
	stats, err := h.audit.Stats(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, NewSuccessResponse(stats))
}

// Export streams the filtered audit trail as csv, json, or xlsx.
func (h *AuditHandler) Export(c *gin.Context) {
	filter, err := parseAuditFilter(c)
	if err != nil {
		fail(c, err)
		return
	}
	format := audit.ExportFormat(c.DefaultQuery("format", "csv"))

	identity := middleware.GetIdentity(c)
	data, contentType, err := h.audit.Export(c.Request.Context(), identity.PersonID, filter, format)
	if err != nil {
		fail(c, err)
		return
	}

	filename := fmt.Sprintf("audit-logs-%s.%s", time.Now().Format("2006-01-02"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}

func (h *AuditHandler) Delete(c *gin.Context) {
	logID, err := pathID(c, "logId")
	if err != nil {
		fail(c, err)
		return
	}
	identity := middleware.GetIdentity(c)
	if err := h.audit.Delete(c.Request.Context(), identity.PersonID, logID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, NewSuccessMessage("audit log deleted"))
}

func parseAuditFilter(c *gin.Context) (*model.AuditFilter, error) {
	filter := &model.AuditFilter{}

	if v := c.Query("start_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, apperrors.Validation("start_date must be RFC 3339")
		}
		filter.StartDate = &t
	}
	if v := c.Query("end_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, apperrors.Validation("end_date must be RFC 3339")
		}
		filter.EndDate = &t
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, apperrors.Validation("end_date must not be before start_date")
	}

	if v := c.Query("user_role"); v != "" {
		role := model.Role(v)
		if !role.Valid() {
			return nil, apperrors.Validation("invalid user_role filter")
		}
		filter.UserRole = role
	}
	filter.ActionType = c.Query("action_type")

	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	filter.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	return filter, nil
}
