package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/certibase/backend/internal/domain/models"
	"github.com/certibase/backend/pkg/constants"
	"github.com/certibase/backend/pkg/utils"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `id, name, category, entity_type, entity_id, storage_path, mime_type,
		size_bytes, uploaded_by, created_date`

func (r *DocumentRepository) Insert(ctx context.Context, d *models.Document) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, category, entity_type, entity_id, storage_path, mime_type,
			size_bytes, uploaded_by, created_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NOW())`,
		constants.TableDocument)

	_, err := r.db.ExecContext(ctx, query,
		d.ID, d.Name, d.Category, d.EntityType, d.EntityID, d.StoragePath, d.MimeType,
		d.SizeBytes, d.UploadedBy)
	return err
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ? LIMIT 1", documentColumns, constants.TableDocument)

	row := r.db.QueryRowContext(ctx, query, id)
	d, err := scanDocument(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return d, nil
}

func (r *DocumentRepository) List(ctx context.Context, category, entityType, entityID string, limit, offset int) ([]*models.Document, error) {
	var conds []string
	var args []interface{}

	if category != "" {
		conds = append(conds, "category = ?")
		args = append(args, category)
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

	query := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY created_date DESC LIMIT ? OFFSET ?",
		documentColumns, constants.TableDocument, where)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]*models.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows.Scan)
		if err != nil {
			continue
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", constants.TableDocument)
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func scanDocument(scan func(...interface{}) error) (*models.Document, error) {
	var d models.Document
	var entityID sql.NullString
	var createdRaw []byte

	err := scan(&d.ID, &d.Name, &d.Category, &d.EntityType, &entityID, &d.StoragePath,
		&d.MimeType, &d.SizeBytes, &d.UploadedBy, &createdRaw)
	if err != nil {
		return nil, err
	}

	if entityID.Valid {
		d.EntityID = &entityID.String
	}
	d.CreatedAt = utils.ParseDBTime(createdRaw)
	return &d, nil
}
