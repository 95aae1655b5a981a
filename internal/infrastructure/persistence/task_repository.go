package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/certibase/backend/internal/domain/models"
	"github.com/certibase/backend/pkg/constants"
	"github.com/certibase/backend/pkg/utils"
)

type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, title, description, assignee_id, entity_type, entity_id, priority,
		status, due_date, completed_at, created_by, created_date, last_modified_date`

func (r *TaskRepository) Insert(ctx context.Context, t *models.Task) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, title, description, assignee_id, entity_type, entity_id, priority,
			status, due_date, completed_at, created_by, created_date, last_modified_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())`,
		constants.TableTask)

	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.Title, t.Description, t.AssigneeID, t.EntityType, t.EntityID, t.Priority,
		t.Status, t.DueDate, t.CompletedAt, t.CreatedBy)
	return err
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ? LIMIT 1", taskColumns, constants.TableTask)

	row := r.db.QueryRowContext(ctx, query, id)
	t, err := scanTask(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

func (r *TaskRepository) List(ctx context.Context, assigneeID, status, entityType, entityID string, limit, offset int) ([]*models.Task, error) {
	var conds []string
	var args []interface{}

	if assigneeID != "" {
		conds = append(conds, "assignee_id = ?")
		args = append(args, assigneeID)
	}
	if status != "" {
		conds = append(conds, "status = ?")
		args = append(args, status)
	}
	if entityType != "" {
		conds = append(conds, "entity_type = ?")
		args = append(args, entityType)
	}
	if entityID != "" {
		conds = append(conds, "entity_id = ?")
		args = append(args, entityID)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	query := fmt.Sprintf(
		"SELECT %s FROM %s%s ORDER BY due_date IS NULL, due_date ASC LIMIT ? OFFSET ?",
		taskColumns, constants.TableTask, where)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows.Scan)
		if err != nil {
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// ListOverdue returns open tasks whose due date has passed, for the nightly
// escalation job.
func (r *TaskRepository) ListOverdue(ctx context.Context, now time.Time) ([]*models.Task, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE status IN (?, ?) AND due_date IS NOT NULL AND due_date < ?
		ORDER BY due_date ASC`,
		taskColumns, constants.TableTask)

	rows, err := r.db.QueryContext(ctx, query,
		models.TaskStatusTodo, models.TaskStatusInProgress, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows.Scan)
		if err != nil {
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) CountPending(ctx context.Context) (int, error) {
	var count int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE status IN (?, ?)", constants.TableTask)
	err := r.db.QueryRowContext(ctx, query,
		models.TaskStatusTodo, models.TaskStatusInProgress).Scan(&count)
	return count, err
}

func (r *TaskRepository) Update(ctx context.Context, t *models.Task) error {
	query := fmt.Sprintf(`
		UPDATE %s SET title = ?, description = ?, assignee_id = ?, entity_type = ?, entity_id = ?,
			priority = ?, status = ?, due_date = ?, completed_at = ?, last_modified_date = NOW()
		WHERE id = ?`,
		constants.TableTask)

	_, err := r.db.ExecContext(ctx, query,
		t.Title, t.Description, t.AssigneeID, t.EntityType, t.EntityID, t.Priority,
		t.Status, t.DueDate, t.CompletedAt, t.ID)
	return err
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", constants.TableTask)
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func scanTask(scan func(...interface{}) error) (*models.Task, error) {
	var t models.Task
	var assigneeID, entityID sql.NullString
	var dueRaw, completedRaw, createdRaw, modifiedRaw []byte

	err := scan(&t.ID, &t.Title, &t.Description, &assigneeID, &t.EntityType, &entityID,
		&t.Priority, &t.Status, &dueRaw, &completedRaw, &t.CreatedBy, &createdRaw, &modifiedRaw)
	if err != nil {
		return nil, err
	}

	if assigneeID.Valid {
		t.AssigneeID = &assigneeID.String
	}
	if entityID.Valid {
		t.EntityID = &entityID.String
	}
	t.DueDate = utils.ParseDBTimePtr(dueRaw)
	t.CompletedAt = utils.ParseDBTimePtr(completedRaw)
	t.CreatedAt = utils.ParseDBTime(createdRaw)
	t.UpdatedAt = utils.ParseDBTime(modifiedRaw)
	return &t, nil
}
