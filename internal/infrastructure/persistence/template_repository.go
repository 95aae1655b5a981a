package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/certibase/backend/internal/domain/models"
	"github.com/certibase/backend/pkg/constants"
	"github.com/certibase/backend/pkg/utils"
)

// TemplateRepository stores renderable document templates.
type TemplateRepository struct {
	db *sql.DB
}

func NewTemplateRepository(db *sql.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

func (r *TemplateRepository) Insert(ctx context.Context, t *models.DocumentTemplate) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, kind, body, is_active, created_date, last_modified_date)
		VALUES (?, ?, ?, ?, ?, NOW(), NOW())`,
		constants.TableDocumentTemplate)
	_, err := r.db.ExecContext(ctx, query, t.ID, t.Name, t.Kind, t.Body, t.IsActive)
	return err
}

func (r *TemplateRepository) GetByID(ctx context.Context, id string) (*models.DocumentTemplate, error) {
	query := fmt.Sprintf(`
		SELECT id, name, kind, body, is_active, created_date, last_modified_date
		FROM %s WHERE id = ? LIMIT 1`,
		constants.TableDocumentTemplate)
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetActiveByKind returns the active template for a document kind.
func (r *TemplateRepository) GetActiveByKind(ctx context.Context, kind string) (*models.DocumentTemplate, error) {
	query := fmt.Sprintf(`
		SELECT id, name, kind, body, is_active, created_date, last_modified_date
		FROM %s WHERE kind = ? AND is_active = 1
		ORDER BY last_modified_date DESC LIMIT 1`,
		constants.TableDocumentTemplate)
	return r.scanOne(r.db.QueryRowContext(ctx, query, kind))
}

func (r *TemplateRepository) List(ctx context.Context, kind string) ([]*models.DocumentTemplate, error) {
	query := fmt.Sprintf(`
		SELECT id, name, kind, body, is_active, created_date, last_modified_date
		FROM %s`, constants.TableDocumentTemplate)
	var args []interface{}
	if kind != "" {
		query += " WHERE kind = ?"
		args = append(args, kind)
	}
	query += " ORDER BY created_date DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := make([]*models.DocumentTemplate, 0)
	for rows.Next() {
		var t models.DocumentTemplate
		var createdRaw, modifiedRaw []byte
		if err := rows.Scan(&t.ID, &t.Name, &t.Kind, &t.Body, &t.IsActive, &createdRaw, &modifiedRaw); err != nil {
			continue
		}
		t.CreatedAt = utils.ParseDBTime(createdRaw)
		t.UpdatedAt = utils.ParseDBTime(modifiedRaw)
		templates = append(templates, &t)
	}
	return templates, rows.Err()
}

func (r *TemplateRepository) Update(ctx context.Context, t *models.DocumentTemplate) error {
	query := fmt.Sprintf(`
		UPDATE %s SET name = ?, kind = ?, body = ?, is_active = ?, last_modified_date = NOW()
		WHERE id = ?`,
		constants.TableDocumentTemplate)
	_, err := r.db.ExecContext(ctx, query, t.Name, t.Kind, t.Body, t.IsActive, t.ID)
	return err
}

func (r *TemplateRepository) scanOne(row *sql.Row) (*models.DocumentTemplate, error) {
	var t models.DocumentTemplate
	var createdRaw, modifiedRaw []byte

	err := row.Scan(&t.ID, &t.Name, &t.Kind, &t.Body, &t.IsActive, &createdRaw, &modifiedRaw)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	t.CreatedAt = utils.ParseDBTime(createdRaw)
	t.UpdatedAt = utils.ParseDBTime(modifiedRaw)
	return &t, nil
}
