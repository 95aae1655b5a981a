package rest

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/certibase/backend/internal/application/services"
	"github.com/certibase/backend/pkg/errors"
)

type AuditHandler struct {
	svcMgr *services.ServiceManager
}

func NewAuditHandler(svcMgr *services.ServiceManager) *AuditHandler {
	return &AuditHandler{svcMgr: svcMgr}
}

// Create handles POST /api/audits
func (h *AuditHandler) Create(c *gin.Context) {
	var req services.CreateAuditRequest
	HandleCreateEnvelope(c, "audit", "Audit created successfully", &req, func() (interface{}, error) {
		return h.svcMgr.Audits.CreateAudit(c.Request.Context(), req)
	})
}

// Get handles GET /api/audits/:id
func (h *AuditHandler) Get(c *gin.Context) {
	HandleGetEnvelope(c, "audit", func() (interface{}, error) {
		return h.svcMgr.Audits.GetAudit(c.Request.Context(), c.Param("id"))
	})
}

// List handles GET /api/audits
func (h *AuditHandler) List(c *gin.Context) {
	limit, offset := ParseListQuery(c)
	HandleGetEnvelope(c, "audits", func() (interface{}, error) {
		return h.svcMgr.Audits.ListAudits(c.Request.Context(), c.Query("clientId"), c.Query("status"), c.Query("type"), limit, offset)
	})
}

// Update handles PUT /api/audits/:id
func (h *AuditHandler) Update(c *gin.Context) {
	user := GetUserFromContext(c)
	var req services.UpdateAuditRequest
	HandleUpdateEnvelope(c, "audit", "Audit updated successfully", &req, func() (interface{}, error) {
		return h.svcMgr.Audits.UpdateAudit(c.Request.Context(), c.Param("id"), user.ID, req)
	})
}

// Delete handles DELETE /api/audits/:id
func (h *AuditHandler) Delete(c *gin.Context) {
	HandleDeleteEnvelope(c, "Audit deleted successfully", func() error {
		return h.svcMgr.Audits.DeleteAudit(c.Request.Context(), c.Param("id"))
	})
}

// Stats handles GET /api/audits/stats
func (h *AuditHandler) Stats(c *gin.Context) {
	HandleGetEnvelope(c, "stats", func() (interface{}, error) {
		return h.svcMgr.Audits.GetStats(c.Request.Context())
	})
}

// Calendar handles GET /api/audits/calendar?year=2026&month=3
func (h *AuditHandler) Calendar(c *gin.Context) {
	now := time.Now()
	year, err := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(now.Year())))
	if err != nil {
		RespondAppError(c, errors.NewValidationError("year", "Invalid year"))
		return
	}
	month, err := strconv.Atoi(c.DefaultQuery("month", strconv.Itoa(int(now.Month()))))
	if err != nil || month < 1 || month > 12 {
		RespondAppError(c, errors.NewValidationError("month", "Month must be between 1 and 12"))
		return
	}

	HandleGetEnvelope(c, "calendar", func() (interface{}, error) {
		return h.svcMgr.Audits.GetCalendar(c.Request.Context(), year, time.Month(month))
	})
}

// Findings

// AddFinding handles POST /api/audits/:id/findings
func (h *AuditHandler) AddFinding(c *gin.Context) {
	var req services.FindingRequest
	HandleCreateEnvelope(c, "finding", "Finding recorded successfully", &req, func() (interface{}, error) {
		return h.svcMgr.Audits.AddFinding(c.Request.Context(), c.Param("id"), req)
	})
}

// ListFindings handles GET /api/audits/:id/findings
func (h *AuditHandler) ListFindings(c *gin.Context) {
	HandleGetEnvelope(c, "findings", func() (interface{}, error) {
		return h.svcMgr.Audits.ListFindings(c.Request.Context(), c.Param("id"))
	})
}

// UpdateFinding handles PUT /api/audits/:id/findings/:findingId
func (h *AuditHandler) UpdateFinding(c *gin.Context) {
	var req services.UpdateFindingRequest
	HandleUpdateEnvelope(c, "finding", "Finding updated successfully", &req, func() (interface{}, error) {
		return h.svcMgr.Audits.UpdateFinding(c.Request.Context(), c.Param("id"), c.Param("findingId"), req)
	})
}

// Checklist responses and compliance

// SubmitResponse handles POST /api/audits/:id/responses
func (h *AuditHandler) SubmitResponse(c *gin.Context) {
	user := GetUserFromContext(c)
	var req services.ResponseRequest
	HandleCreateEnvelope(c, "response", "Response recorded successfully", &req, func() (interface{}, error) {
		return h.svcMgr.Checklists.SubmitResponse(c.Request.Context(), c.Param("id"), user.ID, req)
	})
}

// ListResponses handles GET /api/audits/:id/responses
func (h *AuditHandler) ListResponses(c *gin.Context) {
	HandleGetEnvelope(c, "responses", func() (interface{}, error) {
		return h.svcMgr.Checklists.ListResponses(c.Request.Context(), c.Param("id"))
	})
}

// Compliance handles GET /api/audits/:id/compliance?templateId=...
func (h *AuditHandler) Compliance(c *gin.Context) {
	templateID := c.Query("templateId")
	if templateID == "" {
		RespondAppError(c, errors.NewValidationError("templateId", "Template ID is required"))
		return
	}

	HandleGetEnvelope(c, "compliance", func() (interface{}, error) {
		return h.svcMgr.Checklists.GetComplianceSummary(c.Request.Context(), c.Param("id"), templateID)
	})
}
