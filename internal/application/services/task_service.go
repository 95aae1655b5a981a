package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/certibase/backend/internal/domain/models"
	"github.com/certibase/backend/internal/infrastructure/persistence"
	"github.com/certibase/backend/pkg/errors"
	"github.com/certibase/backend/pkg/utils"
)

// TaskService manages work items across the system.
type TaskService struct {
	tasks *persistence.TaskRepository
}

func NewTaskService(tasks *persistence.TaskRepository) *TaskService {
	return &TaskService{tasks: tasks}
}

// CreateTaskRequest carries a task create.
type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	AssigneeID  *string    `json:"assigneeId"`
	EntityType  string     `json:"entityType"`
	EntityID    *string    `json:"entityId"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
}

func isValidTaskPriority(p string) bool {
	switch p {
	case models.TaskPriorityLow, models.TaskPriorityMedium, models.TaskPriorityHigh, models.TaskPriorityUrgent:
		return true
	}
	return false
}

func isValidTaskEntityType(t string) bool {
	switch t {
	case models.TaskEntityClient, models.TaskEntityAudit, models.TaskEntityPipeline:
		return true
	}
	return false
}

func (s *TaskService) CreateTask(ctx context.Context, userID string, req CreateTaskRequest) (*models.Task, error) {
	priority := req.Priority
	if priority == "" {
		priority = models.TaskPriorityMedium
	}
	if !isValidTaskPriority(priority) {
		return nil, errors.NewValidationError("priority", "Unknown task priority: "+priority)
	}
	if req.EntityType != "" && !isValidTaskEntityType(req.EntityType) {
		return nil, errors.NewValidationError("entityType", "Unknown entity type: "+req.EntityType)
	}
	if req.EntityType != "" && req.EntityID == nil {
		return nil, errors.NewValidationError("entityId", "Entity ID is required when entity type is set")
	}

	task := &models.Task{
		ID:          utils.GenerateID(),
		Title:       req.Title,
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
		EntityType:  req.EntityType,
		EntityID:    req.EntityID,
		Priority:    priority,
		Status:      models.TaskStatusTodo,
		DueDate:     req.DueDate,
		CreatedBy:   userID,
	}
	if err := s.tasks.Insert(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	log.Printf("📝 Task created: %s", task.Title)
	return task, nil
}

func (s *TaskService) GetTask(ctx context.Context, id string) (*models.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, errors.NewNotFoundError("task", id)
	}
	return task, nil
}

func (s *TaskService) ListTasks(ctx context.Context, assigneeID, status, entityType, entityID string, limit, offset int) ([]*models.Task, error) {
	return s.tasks.List(ctx, assigneeID, status, entityType, entityID, normalizeLimit(limit), offset)
}

// ListOverdue returns open tasks whose due date has passed.
func (s *TaskService) ListOverdue(ctx context.Context) ([]*models.Task, error) {
	return s.tasks.ListOverdue(ctx, time.Now())
}

// UpdateTaskRequest carries the mutable task fields.
type UpdateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	AssigneeID  *string    `json:"assigneeId"`
	Priority    *string    `json:"priority"`
	Status      *string    `json:"status"`
	DueDate     *time.Time `json:"dueDate"`
}

// UpdateTask applies changes; moving to done stamps the completion time,
// reopening clears it.
func (s *TaskService) UpdateTask(ctx context.Context, id string, req UpdateTaskRequest) (*models.Task, error) {
	task, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.AssigneeID != nil {
		task.AssigneeID = req.AssigneeID
	}
	if req.Priority != nil {
		if !isValidTaskPriority(*req.Priority) {
			return nil, errors.NewValidationError("priority", "Unknown task priority: "+*req.Priority)
		}
		task.Priority = *req.Priority
	}
	if req.Status != nil {
		switch *req.Status {
		case models.TaskStatusTodo, models.TaskStatusInProgress, models.TaskStatusDone, models.TaskStatusCancelled:
		default:
			return nil, errors.NewValidationError("status", "Unknown task status: "+*req.Status)
		}
		if *req.Status == models.TaskStatusDone && task.Status != models.TaskStatusDone {
			now := time.Now()
			task.CompletedAt = &now
		}
		if *req.Status != models.TaskStatusDone {
			task.CompletedAt = nil
		}
		task.Status = *req.Status
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return task, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	if _, err := s.GetTask(ctx, id); err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	log.Printf("🗑️ Task deleted: %s", id)
	return nil
}

// CountPending returns the number of tasks not yet done or cancelled.
func (s *TaskService) CountPending(ctx context.Context) (int, error) {
	return s.tasks.CountPending(ctx)
}
