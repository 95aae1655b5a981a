package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/certibase/backend/internal/application/services"
)

type StandardHandler struct {
	svcMgr *services.ServiceManager
}

func NewStandardHandler(svcMgr *services.ServiceManager) *StandardHandler {
	return &StandardHandler{svcMgr: svcMgr}
}

// Create handles POST /api/standards
func (h *StandardHandler) Create(c *gin.Context) {
	var req services.StandardRequest
	HandleCreateEnvelope(c, "standard", "Standard created successfully", &req, func() (interface{}, error) {
		return h.svcMgr.Standards.CreateStandard(c.Request.Context(), req)
	})
}

// Get handles GET /api/standards/:id
func (h *StandardHandler) Get(c *gin.Context) {
	HandleGetEnvelope(c, "standard", func() (interface{}, error) {
		return h.svcMgr.Standards.GetStandard(c.Request.Context(), c.Param("id"))
	})
}

// List handles GET /api/standards
func (h *StandardHandler) List(c *gin.Context) {
	HandleGetEnvelope(c, "standards", func() (interface{}, error) {
		return h.svcMgr.Standards.ListStandards(c.Request.Context())
	})
}

// Update handles PUT /api/standards/:id
func (h *StandardHandler) Update(c *gin.Context) {
	var req services.StandardRequest
	HandleUpdateEnvelope(c, "standard", "Standard updated successfully", &req, func() (interface{}, error) {
		return h.svcMgr.Standards.UpdateStandard(c.Request.Context(), c.Param("id"), req)
	})
}
