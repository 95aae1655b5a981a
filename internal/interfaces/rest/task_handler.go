package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/certibase/backend/internal/application/services"
)

type TaskHandler struct {
	svcMgr *services.ServiceManager
}

func NewTaskHandler(svcMgr *services.ServiceManager) *TaskHandler {
	return &TaskHandler{svcMgr: svcMgr}
}

// Create handles POST /api/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	user := GetUserFromContext(c)
	var req services.CreateTaskRequest
	HandleCreateEnvelope(c, "task", "Task created successfully", &req, func() (interface{}, error) {
		return h.svcMgr.Tasks.CreateTask(c.Request.Context(), user.ID, req)
	})
}

// Get handles GET /api/tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	HandleGetEnvelope(c, "task", func() (interface{}, error) {
		return h.svcMgr.Tasks.GetTask(c.Request.Context(), c.Param("id"))
	})
}

// List handles GET /api/tasks
func (h *TaskHandler) List(c *gin.Context) {
	limit, offset := ParseListQuery(c)
	HandleGetEnvelope(c, "tasks", func() (interface{}, error) {
		return h.svcMgr.Tasks.ListTasks(c.Request.Context(),
			c.Query("assigneeId"), c.Query("status"), c.Query("entityType"), c.Query("entityId"), limit, offset)
	})
}

// ListOverdue handles GET /api/tasks/overdue
func (h *TaskHandler) ListOverdue(c *gin.Context) {
	HandleGetEnvelope(c, "tasks", func() (interface{}, error) {
		return h.svcMgr.Tasks.ListOverdue(c.Request.Context())
	})
}

// Update handles PUT /api/tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	var req services.UpdateTaskRequest
	HandleUpdateEnvelope(c, "task", "Task updated successfully", &req, func() (interface{}, error) {
		return h.svcMgr.Tasks.UpdateTask(c.Request.Context(), c.Param("id"), req)
	})
}

// Delete handles DELETE /api/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	HandleDeleteEnvelope(c, "Task deleted successfully", func() error {
		return h.svcMgr.Tasks.DeleteTask(c.Request.Context(), c.Param("id"))
	})
}
