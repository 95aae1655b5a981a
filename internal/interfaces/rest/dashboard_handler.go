package rest

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/certibase/backend/internal/application/services"
	"github.com/certibase/backend/pkg/errors"
)

type DashboardHandler struct {
	svcMgr *services.ServiceManager
}

func NewDashboardHandler(svcMgr *services.ServiceManager) *DashboardHandler {
	return &DashboardHandler{svcMgr: svcMgr}
}

// Overview handles GET /api/dashboard/overview
func (h *DashboardHandler) Overview(c *gin.Context) {
	HandleGetEnvelope(c, "overview", func() (interface{}, error) {
		return h.svcMgr.Dashboard.GetOverview(c.Request.Context())
	})
}

// Financial handles GET /api/dashboard/financial?months=12
func (h *DashboardHandler) Financial(c *gin.Context) {
	months, err := strconv.Atoi(c.DefaultQuery("months", "12"))
	if err != nil || months < 1 || months > 60 {
		RespondAppError(c, errors.NewValidationError("months", "Months must be between 1 and 60"))
		return
	}

	HandleGetEnvelope(c, "financial", func() (interface{}, error) {
		return h.svcMgr.Dashboard.GetFinancial(c.Request.Context(), months)
	})
}
