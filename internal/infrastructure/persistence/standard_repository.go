package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/certibase/backend/internal/domain/models"
	"github.com/certibase/backend/pkg/constants"
)

type StandardRepository struct {
	db *sql.DB
}

func NewStandardRepository(db *sql.DB) *StandardRepository {
	return &StandardRepository{db: db}
}

func (r *StandardRepository) Insert(ctx context.Context, s *models.ISOStandard) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, code, name, description, is_active)
		VALUES (?, ?, ?, ?, ?)`,
		constants.TableISOStandard)
	_, err := r.db.ExecContext(ctx, query, s.ID, s.Code, s.Name, s.Description, s.IsActive)
	return err
}

func (r *StandardRepository) GetByID(ctx context.Context, id string) (*models.ISOStandard, error) {
	query := fmt.Sprintf("SELECT id, code, name, description, is_active FROM %s WHERE id = ? LIMIT 1",
		constants.TableISOStandard)

	var s models.ISOStandard
	err := r.db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.Code, &s.Name, &s.Description, &s.IsActive)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *StandardRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var exists bool
	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE code = ?)", constants.TableISOStandard)
	err := r.db.QueryRowContext(ctx, query, code).Scan(&exists)
	return exists, err
}

func (r *StandardRepository) List(ctx context.Context) ([]*models.ISOStandard, error) {
	query := fmt.Sprintf("SELECT id, code, name, description, is_active FROM %s ORDER BY code ASC",
		constants.TableISOStandard)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	standards := make([]*models.ISOStandard, 0)
	for rows.Next() {
		var s models.ISOStandard
		if err := rows.Scan(&s.ID, &s.Code, &s.Name, &s.Description, &s.IsActive); err != nil {
			continue
		}
		standards = append(standards, &s)
	}
	return standards, rows.Err()
}

func (r *StandardRepository) Update(ctx context.Context, s *models.ISOStandard) error {
	query := fmt.Sprintf("UPDATE %s SET code = ?, name = ?, description = ?, is_active = ? WHERE id = ?",
		constants.TableISOStandard)
	_, err := r.db.ExecContext(ctx, query, s.Code, s.Name, s.Description, s.IsActive, s.ID)
	return err
}
