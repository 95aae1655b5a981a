package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/certibase/backend/internal/application/services"
)

// BizDevHandler serves the front half of the funnel: leads and
// opportunities.
type BizDevHandler struct {
	svcMgr *services.ServiceManager
}

func NewBizDevHandler(svcMgr *services.ServiceManager) *BizDevHandler {
	return &BizDevHandler{svcMgr: svcMgr}
}

// Leads

// CreateLead handles POST /api/leads
func (h *BizDevHandler) CreateLead(c *gin.Context) {
	var req services.LeadRequest
	HandleCreateEnvelope(c, "lead", "Lead created successfully", &req, func() (interface{}, error) {
		return h.svcMgr.Leads.CreateLead(c.Request.Context(), req)
	})
}

// GetLead handles GET /api/leads/:id
func (h *BizDevHandler) GetLead(c *gin.Context) {
	HandleGetEnvelope(c, "lead", func() (interface{}, error) {
		return h.svcMgr.Leads.GetLead(c.Request.Context(), c.Param("id"))
	})
}

// ListLeads handles GET /api/leads
func (h *BizDevHandler) ListLeads(c *gin.Context) {
	limit, offset := ParseListQuery(c)
	HandleGetEnvelope(c, "leads", func() (interface{}, error) {
		return h.svcMgr.Leads.ListLeads(c.Request.Context(), c.Query("status"), c.Query("source"), limit, offset)
	})
}

// UpdateLead handles PUT /api/leads/:id
func (h *BizDevHandler) UpdateLead(c *gin.Context) {
	var req services.UpdateLeadRequest
	HandleUpdateEnvelope(c, "lead", "Lead updated successfully", &req, func() (interface{}, error) {
		return h.svcMgr.Leads.UpdateLead(c.Request.Context(), c.Param("id"), req)
	})
}

// ConvertLeadRequest optionally attaches the conversion to an existing client.
type ConvertLeadRequest struct {
	ClientID string `json:"clientId"`
}

// ConvertLead handles POST /api/leads/:id/convert
func (h *BizDevHandler) ConvertLead(c *gin.Context) {
	user := GetUserFromContext(c)
	var req ConvertLeadRequest
	HandleUpdateEnvelope(c, "result", "Lead converted successfully", &req, func() (interface{}, error) {
		return h.svcMgr.Leads.ConvertLead(c.Request.Context(), c.Param("id"), user.ID, req.ClientID)
	})
}

// Opportunities

// GetOpportunity handles GET /api/opportunities/:id
func (h *BizDevHandler) GetOpportunity(c *gin.Context) {
	HandleGetEnvelope(c, "opportunity", func() (interface{}, error) {
		return h.svcMgr.Leads.GetOpportunity(c.Request.Context(), c.Param("id"))
	})
}

// ListOpportunities handles GET /api/opportunities
func (h *BizDevHandler) ListOpportunities(c *gin.Context) {
	limit, offset := ParseListQuery(c)
	HandleGetEnvelope(c, "opportunities", func() (interface{}, error) {
		return h.svcMgr.Leads.ListOpportunities(c.Request.Context(), c.Query("clientId"), c.Query("stage"), limit, offset)
	})
}

// UpdateOpportunity handles PUT /api/opportunities/:id
func (h *BizDevHandler) UpdateOpportunity(c *gin.Context) {
	user := GetUserFromContext(c)
	var req services.UpdateOpportunityRequest
	HandleUpdateEnvelope(c, "opportunity", "Opportunity updated successfully", &req, func() (interface{}, error) {
		return h.svcMgr.Leads.UpdateOpportunity(c.Request.Context(), c.Param("id"), user.ID, req)
	})
}
