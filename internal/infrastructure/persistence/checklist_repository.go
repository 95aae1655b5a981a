package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/certibase/backend/internal/domain/models"
	"github.com/certibase/backend/pkg/constants"
	"github.com/certibase/backend/pkg/utils"
)

type ChecklistRepository struct {
	db *sql.DB
}

func NewChecklistRepository(db *sql.DB) *ChecklistRepository {
	return &ChecklistRepository{db: db}
}

// Templates

func (r *ChecklistRepository) InsertTemplate(ctx context.Context, t *models.ChecklistTemplate) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, standard_id, name, version, is_active, created_date)
		VALUES (?, ?, ?, ?, ?, NOW())`,
		constants.TableChecklistTemplate)
	_, err := r.db.ExecContext(ctx, query, t.ID, t.StandardID, t.Name, t.Version, t.IsActive)
	return err
}

func (r *ChecklistRepository) GetTemplate(ctx context.Context, id string) (*models.ChecklistTemplate, error) {
	query := fmt.Sprintf(`
		SELECT id, standard_id, name, version, is_active, created_date
		FROM %s WHERE id = ? LIMIT 1`,
		constants.TableChecklistTemplate)

	var t models.ChecklistTemplate
	var createdRaw []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.StandardID, &t.Name, &t.Version, &t.IsActive, &createdRaw)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	t.CreatedAt = utils.ParseDBTime(createdRaw)
	return &t, nil
}

func (r *ChecklistRepository) ListTemplates(ctx context.Context, standardID string) ([]*models.ChecklistTemplate, error) {
	query := fmt.Sprintf(`
		SELECT id, standard_id, name, version, is_active, created_date
		FROM %s`, constants.TableChecklistTemplate)
	var args []interface{}
	if standardID != "" {
		query += " WHERE standard_id = ?"
		args = append(args, standardID)
	}
	query += " ORDER BY created_date DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := make([]*models.ChecklistTemplate, 0)
	for rows.Next() {
		var t models.ChecklistTemplate
		var createdRaw []byte
		if err := rows.Scan(&t.ID, &t.StandardID, &t.Name, &t.Version, &t.IsActive, &createdRaw); err != nil {
			continue
		}
		t.CreatedAt = utils.ParseDBTime(createdRaw)
		templates = append(templates, &t)
	}
	return templates, rows.Err()
}

func (r *ChecklistRepository) UpdateTemplate(ctx context.Context, t *models.ChecklistTemplate) error {
	query := fmt.Sprintf("UPDATE %s SET name = ?, version = ?, is_active = ? WHERE id = ?",
		constants.TableChecklistTemplate)
	_, err := r.db.ExecContext(ctx, query, t.Name, t.Version, t.IsActive, t.ID)
	return err
}

// Items

func (r *ChecklistRepository) InsertItem(ctx context.Context, item *models.ChecklistItem) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, template_id, position, clause_ref, requirement, guidance, weight)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		constants.TableChecklistItem)
	_, err := r.db.ExecContext(ctx, query,
		item.ID, item.TemplateID, item.Position, item.ClauseRef, item.Requirement, item.Guidance, item.Weight)
	return err
}

func (r *ChecklistRepository) ListItems(ctx context.Context, templateID string) ([]*models.ChecklistItem, error) {
	query := fmt.Sprintf(`
		SELECT id, template_id, position, clause_ref, requirement, guidance, weight
		FROM %s WHERE template_id = ? ORDER BY position ASC`,
		constants.TableChecklistItem)

	rows, err := r.db.QueryContext(ctx, query, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*models.ChecklistItem, 0)
	for rows.Next() {
		var item models.ChecklistItem
		if err := rows.Scan(&item.ID, &item.TemplateID, &item.Position, &item.ClauseRef,
			&item.Requirement, &item.Guidance, &item.Weight); err != nil {
			continue
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

func (r *ChecklistRepository) DeleteItem(ctx context.Context, templateID, itemID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ? AND template_id = ?", constants.TableChecklistItem)
	_, err := r.db.ExecContext(ctx, query, itemID, templateID)
	return err
}

// Responses

// UpsertResponse writes an auditor's answer. One row per (audit, item):
// re-answering overwrites result, evidence and notes in place.
func (r *ChecklistRepository) UpsertResponse(ctx context.Context, resp *models.ChecklistResponse) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, audit_id, item_id, result, evidence, notes, responded_by, responded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, NOW())
		ON DUPLICATE KEY UPDATE result = VALUES(result), evidence = VALUES(evidence),
			notes = VALUES(notes), responded_by = VALUES(responded_by), responded_at = NOW()`,
		constants.TableChecklistResponse)

	_, err := r.db.ExecContext(ctx, query,
		resp.ID, resp.AuditID, resp.ItemID, resp.Result, resp.Evidence, resp.Notes, resp.RespondedBy)
	return err
}

func (r *ChecklistRepository) ListResponses(ctx context.Context, auditID string) ([]*models.ChecklistResponse, error) {
	query := fmt.Sprintf(`
		SELECT id, audit_id, item_id, result, evidence, notes, responded_by, responded_at
		FROM %s WHERE audit_id = ?`,
		constants.TableChecklistResponse)

	rows, err := r.db.QueryContext(ctx, query, auditID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	responses := make([]*models.ChecklistResponse, 0)
	for rows.Next() {
		var resp models.ChecklistResponse
		var respondedRaw []byte
		if err := rows.Scan(&resp.ID, &resp.AuditID, &resp.ItemID, &resp.Result,
			&resp.Evidence, &resp.Notes, &resp.RespondedBy, &respondedRaw); err != nil {
			continue
		}
		resp.RespondedAt = utils.ParseDBTime(respondedRaw)
		responses = append(responses, &resp)
	}
	return responses, rows.Err()
}
