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

type ClientRepository struct {
	db *sql.DB
}

func NewClientRepository(db *sql.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

const clientColumns = `id, code, name, industry, employee_count, address, city, country,
		tax_number, registration_number, website, status, account_manager_id, notes,
		created_date, last_modified_date`

// NextCodeSeq returns the highest allocated client code sequence number.
// Codes are CL-%05d; the caller formats seq+1 and retries on duplicate key.
func (r *ClientRepository) NextCodeSeq(ctx context.Context) (int, error) {
	var seq int
	query := fmt.Sprintf(
		"SELECT COALESCE(MAX(CAST(SUBSTRING(code, 4) AS UNSIGNED)), 0) FROM %s", constants.TableClient)
	err := r.db.QueryRowContext(ctx, query).Scan(&seq)
	return seq, err
}

func (r *ClientRepository) Insert(ctx context.Context, c *models.Client) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, code, name, industry, employee_count, address, city, country,
			tax_number, registration_number, website, status, account_manager_id, notes,
			created_date, last_modified_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())`,
		constants.TableClient)

	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.Code, c.Name, c.Industry, c.EmployeeCount, c.Address, c.City, c.Country,
		c.TaxNumber, c.RegistrationNumber, c.Website, c.Status, c.AccountManagerID, c.Notes)
	return err
}

func (r *ClientRepository) GetByID(ctx context.Context, id string) (*models.Client, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ? LIMIT 1", clientColumns, constants.TableClient)
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// List returns clients filtered by status and/or a name search, newest first.
func (r *ClientRepository) List(ctx context.Context, status, search string, limit, offset int) ([]*models.Client, error) {
	var conds []string
	var args []interface{}

	if status != "" {
		conds = append(conds, "status = ?")
		args = append(args, status)
	}
	if search != "" {
		conds = append(conds, "(name LIKE ? OR code LIKE ?)")
		like := "%" + search + "%"
		args = append(args, like, like)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	query := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY created_date DESC LIMIT ? OFFSET ?",
		clientColumns, constants.TableClient, where)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clients := make([]*models.Client, 0)
	for rows.Next() {
		c, err := r.scanRow(rows)
		if err != nil {
			continue
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (r *ClientRepository) Update(ctx context.Context, c *models.Client) error {
	query := fmt.Sprintf(`
		UPDATE %s SET name = ?, industry = ?, employee_count = ?, address = ?, city = ?,
			country = ?, tax_number = ?, registration_number = ?, website = ?, status = ?,
			account_manager_id = ?, notes = ?, last_modified_date = NOW()
		WHERE id = ?`,
		constants.TableClient)

	_, err := r.db.ExecContext(ctx, query,
		c.Name, c.Industry, c.EmployeeCount, c.Address, c.City, c.Country,
		c.TaxNumber, c.RegistrationNumber, c.Website, c.Status, c.AccountManagerID, c.Notes, c.ID)
	return err
}

func (r *ClientRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", constants.TableClient)
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// Stats aggregates the client book by status and industry.
func (r *ClientRepository) Stats(ctx context.Context) (*models.ClientStats, error) {
	stats := &models.ClientStats{
		ByStatus:   make(map[string]int),
		ByIndustry: make(map[string]int),
	}

	query := fmt.Sprintf("SELECT status, COUNT(*) FROM %s GROUP BY status", constants.TableClient)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			continue
		}
		stats.ByStatus[status] = count
		stats.Total += count
	}

	query = fmt.Sprintf("SELECT industry, COUNT(*) FROM %s WHERE industry != '' GROUP BY industry", constants.TableClient)
	rows2, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows2.Close()
	for rows2.Next() {
		var industry string
		var count int
		if err := rows2.Scan(&industry, &count); err != nil {
			continue
		}
		stats.ByIndustry[industry] = count
	}

	return stats, nil
}

func (r *ClientRepository) scanOne(row *sql.Row) (*models.Client, error) {
	var c models.Client
	var manager sql.NullString
	var createdRaw, modifiedRaw []byte

	err := row.Scan(&c.ID, &c.Code, &c.Name, &c.Industry, &c.EmployeeCount, &c.Address,
		&c.City, &c.Country, &c.TaxNumber, &c.RegistrationNumber, &c.Website, &c.Status,
		&manager, &c.Notes, &createdRaw, &modifiedRaw)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if manager.Valid {
		c.AccountManagerID = &manager.String
	}
	c.CreatedAt = utils.ParseDBTime(createdRaw)
	c.UpdatedAt = utils.ParseDBTime(modifiedRaw)
	return &c, nil
}

func (r *ClientRepository) scanRow(rows *sql.Rows) (*models.Client, error) {
	var c models.Client
	var manager sql.NullString
	var createdRaw, modifiedRaw []byte

	err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Industry, &c.EmployeeCount, &c.Address,
		&c.City, &c.Country, &c.TaxNumber, &c.RegistrationNumber, &c.Website, &c.Status,
		&manager, &c.Notes, &createdRaw, &modifiedRaw)
	if err != nil {
		return nil, err
	}

	if manager.Valid {
		c.AccountManagerID = &manager.String
	}
	c.CreatedAt = utils.ParseDBTime(createdRaw)
	c.UpdatedAt = utils.ParseDBTime(modifiedRaw)
	return &c, nil
}

// Contacts

func (r *ClientRepository) InsertContact(ctx context.Context, ct *models.ClientContact) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, client_id, name, title, email, phone, is_primary, created_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, NOW())`,
		constants.TableClientContact)

	_, err := r.db.ExecContext(ctx, query, ct.ID, ct.ClientID, ct.Name, ct.Title, ct.Email, ct.Phone, ct.IsPrimary)
	return err
}

func (r *ClientRepository) ListContacts(ctx context.Context, clientID string) ([]*models.ClientContact, error) {
	query := fmt.Sprintf(`
		SELECT id, client_id, name, title, email, phone, is_primary, created_date
		FROM %s WHERE client_id = ? ORDER BY is_primary DESC, created_date ASC`,
		constants.TableClientContact)

	rows, err := r.db.QueryContext(ctx, query, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := make([]*models.ClientContact, 0)
	for rows.Next() {
		var ct models.ClientContact
		var createdRaw []byte
		if err := rows.Scan(&ct.ID, &ct.ClientID, &ct.Name, &ct.Title, &ct.Email, &ct.Phone, &ct.IsPrimary, &createdRaw); err != nil {
			continue
		}
		ct.CreatedAt = utils.ParseDBTime(createdRaw)
		contacts = append(contacts, &ct)
	}
	return contacts, rows.Err()
}

func (r *ClientRepository) UpdateContact(ctx context.Context, ct *models.ClientContact) error {
	query := fmt.Sprintf(`
		UPDATE %s SET name = ?, title = ?, email = ?, phone = ?, is_primary = ?
		WHERE id = ? AND client_id = ?`,
		constants.TableClientContact)

	_, err := r.db.ExecContext(ctx, query, ct.Name, ct.Title, ct.Email, ct.Phone, ct.IsPrimary, ct.ID, ct.ClientID)
	return err
}

func (r *ClientRepository) DeleteContact(ctx context.Context, clientID, contactID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ? AND client_id = ?", constants.TableClientContact)
	_, err := r.db.ExecContext(ctx, query, contactID, clientID)
	return err
}

// ClearPrimaryContacts unsets the primary flag for a client's contacts,
// used before promoting a new primary.
func (r *ClientRepository) ClearPrimaryContacts(ctx context.Context, clientID string) error {
	query := fmt.Sprintf("UPDATE %s SET is_primary = 0 WHERE client_id = ?", constants.TableClientContact)
	_, err := r.db.ExecContext(ctx, query, clientID)
	return err
}
