package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/certibase/backend/internal/application/services"
)

type ChecklistHandler struct {
	svcMgr *services.ServiceManager
}

func NewChecklistHandler(svcMgr *services.ServiceManager) *ChecklistHandler {
	return &ChecklistHandler{svcMgr: svcMgr}
}

// CreateTemplate handles POST /api/checklists
func (h *ChecklistHandler) CreateTemplate(c *gin.Context) {
	var req services.TemplateRequest
	HandleCreateEnvelope(c, "template", "Checklist template created successfully", &req, func() (interface{}, error) {
		return h.svcMgr.Checklists.CreateTemplate(c.Request.Context(), req)
	})
}

// GetTemplate handles GET /api/checklists/:id
func (h *ChecklistHandler) GetTemplate(c *gin.Context) {
	HandleGetEnvelope(c, "template", func() (interface{}, error) {
		return h.svcMgr.Checklists.GetTemplate(c.Request.Context(), c.Param("id"))
	})
}

// ListTemplates handles GET /api/checklists?standardId=...
func (h *ChecklistHandler) ListTemplates(c *gin.Context) {
	HandleGetEnvelope(c, "templates", func() (interface{}, error) {
		return h.svcMgr.Checklists.ListTemplates(c.Request.Context(), c.Query("standardId"))
	})
}

// UpdateTemplate handles PUT /api/checklists/:id
func (h *ChecklistHandler) UpdateTemplate(c *gin.Context) {
	var req services.TemplateRequest
	HandleUpdateEnvelope(c, "template", "Checklist template updated successfully", &req, func() (interface{}, error) {
		return h.svcMgr.Checklists.UpdateTemplate(c.Request.Context(), c.Param("id"), req)
	})
}

// AddItem handles POST /api/checklists/:id/items
func (h *ChecklistHandler) AddItem(c *gin.Context) {
	var req services.ItemRequest
	HandleCreateEnvelope(c, "item", "Checklist item added successfully", &req, func() (interface{}, error) {
		return h.svcMgr.Checklists.AddItem(c.Request.Context(), c.Param("id"), req)
	})
}

// ListItems handles GET /api/checklists/:id/items
func (h *ChecklistHandler) ListItems(c *gin.Context) {
	HandleGetEnvelope(c, "items", func() (interface{}, error) {
		return h.svcMgr.Checklists.ListItems(c.Request.Context(), c.Param("id"))
	})
}

// DeleteItem handles DELETE /api/checklists/:id/items/:itemId
func (h *ChecklistHandler) DeleteItem(c *gin.Context) {
	HandleDeleteEnvelope(c, "Checklist item deleted successfully", func() error {
		return h.svcMgr.Checklists.DeleteItem(c.Request.Context(), c.Param("id"), c.Param("itemId"))
	})
}
