package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/certibase/backend/internal/application/services"
)

// AdminHandler serves document template management and the raw
// reporting endpoint. All routes behind it require the admin role.
type AdminHandler struct {
	svcMgr *services.ServiceManager
}

func NewAdminHandler(svcMgr *services.ServiceManager) *AdminHandler {
	return &AdminHandler{svcMgr: svcMgr}
}

// Templates

// CreateTemplate handles POST /api/admin/templates
func (h *AdminHandler) CreateTemplate(c *gin.Context) {
	var req services.DocumentTemplateRequest
	HandleCreateEnvelope(c, "template", "Template created successfully", &req, func() (interface{}, error) {
		return h.svcMgr.Templates.CreateTemplate(c.Request.Context(), req)
	})
}

// GetTemplate handles GET /api/admin/templates/:id
func (h *AdminHandler) GetTemplate(c *gin.Context) {
	HandleGetEnvelope(c, "template", func() (interface{}, error) {
		return h.svcMgr.Templates.GetTemplate(c.Request.Context(), c.Param("id"))
	})
}

// ListTemplates handles GET /api/admin/templates
func (h *AdminHandler) ListTemplates(c *gin.Context) {
	HandleGetEnvelope(c, "templates", func() (interface{}, error) {
		return h.svcMgr.Templates.ListTemplates(c.Request.Context(), c.Query("kind"))
	})
}

// UpdateTemplate handles PUT /api/admin/templates/:id
func (h *AdminHandler) UpdateTemplate(c *gin.Context) {
	var req services.DocumentTemplateRequest
	HandleUpdateEnvelope(c, "template", "Template updated successfully", &req, func() (interface{}, error) {
		return h.svcMgr.Templates.UpdateTemplate(c.Request.Context(), c.Param("id"), req)
	})
}

// TemplatePlaceholders handles GET /api/admin/templates/:id/placeholders
func (h *AdminHandler) TemplatePlaceholders(c *gin.Context) {
	HandleGetEnvelope(c, "placeholders", func() (interface{}, error) {
		tpl, err := h.svcMgr.Templates.GetTemplate(c.Request.Context(), c.Param("id"))
		if err != nil {
			return nil, err
		}
		return h.svcMgr.Templates.Placeholders(tpl.Body), nil
	})
}

// Reports

// ReportQueryRequest carries a read-only SQL statement.
type ReportQueryRequest struct {
	Query string `json:"query" binding:"required"`
}

// RunReport handles POST /api/admin/reports/query
func (h *AdminHandler) RunReport(c *gin.Context) {
	user := GetUserFromContext(c)
	var req ReportQueryRequest
	HandleUpdateEnvelope(c, "report", "Report executed successfully", &req, func() (interface{}, error) {
		return h.svcMgr.Reports.RunQuery(c.Request.Context(), user, req.Query)
	})
}
