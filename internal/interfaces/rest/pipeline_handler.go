package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/certibase/backend/internal/application/services"
)

type PipelineHandler struct {
	svcMgr *services.ServiceManager
}

func NewPipelineHandler(svcMgr *services.ServiceManager) *PipelineHandler {
	return &PipelineHandler{svcMgr: svcMgr}
}

// Create handles POST /api/pipelines
func (h *PipelineHandler) Create(c *gin.Context) {
	var req services.CreatePipelineRequest
	HandleCreateEnvelope(c, "pipeline", "Pipeline created successfully", &req, func() (interface{}, error) {
		return h.svcMgr.Pipelines.CreatePipeline(c.Request.Context(), req)
	})
}

// Get handles GET /api/pipelines/:id
func (h *PipelineHandler) Get(c *gin.Context) {
	HandleGetEnvelope(c, "pipeline", func() (interface{}, error) {
		return h.svcMgr.Pipelines.GetPipeline(c.Request.Context(), c.Param("id"))
	})
}

// List handles GET /api/pipelines
func (h *PipelineHandler) List(c *gin.Context) {
	limit, offset := ParseListQuery(c)
	HandleGetEnvelope(c, "pipelines", func() (interface{}, error) {
		return h.svcMgr.Pipelines.ListPipelines(c.Request.Context(), c.Query("clientId"), c.Query("stage"), limit, offset)
	})
}

// AdvanceRequest names the target stage of a manual transition.
type AdvanceRequest struct {
	Stage string `json:"stage" binding:"required"`
	Note  string `json:"note"`
}

// Advance handles POST /api/pipelines/:id/advance
func (h *PipelineHandler) Advance(c *gin.Context) {
	user := GetUserFromContext(c)
	var req AdvanceRequest
	HandleUpdateEnvelope(c, "pipeline", "Pipeline advanced successfully", &req, func() (interface{}, error) {
		return h.svcMgr.Pipelines.AdvanceStage(c.Request.Context(), c.Param("id"), user.ID, req.Stage, req.Note)
	})
}

// NextStages handles GET /api/pipelines/:id/next-stages
func (h *PipelineHandler) NextStages(c *gin.Context) {
	HandleGetEnvelope(c, "stages", func() (interface{}, error) {
		return h.svcMgr.Pipelines.ValidNextStages(c.Request.Context(), c.Param("id"))
	})
}

// Timeline handles GET /api/pipelines/:id/timeline
func (h *PipelineHandler) Timeline(c *gin.Context) {
	HandleGetEnvelope(c, "timeline", func() (interface{}, error) {
		return h.svcMgr.Pipelines.GetTimeline(c.Request.Context(), c.Param("id"))
	})
}

// CompleteMilestone handles PUT /api/pipelines/:id/milestones/:milestoneId/complete
func (h *PipelineHandler) CompleteMilestone(c *gin.Context) {
	HandleGetEnvelope(c, "milestone", func() (interface{}, error) {
		return h.svcMgr.Pipelines.CompleteMilestone(c.Request.Context(), c.Param("id"), c.Param("milestoneId"))
	})
}

// Board handles GET /api/pipelines/board
func (h *PipelineHandler) Board(c *gin.Context) {
	HandleGetEnvelope(c, "board", func() (interface{}, error) {
		return h.svcMgr.Pipelines.GetBoard(c.Request.Context())
	})
}

// Stats handles GET /api/pipelines/stats
func (h *PipelineHandler) Stats(c *gin.Context) {
	HandleGetEnvelope(c, "stats", func() (interface{}, error) {
		return h.svcMgr.Pipelines.GetStageStats(c.Request.Context())
	})
}
