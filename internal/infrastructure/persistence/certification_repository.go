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

type CertificationRepository struct {
	db *sql.DB
}

func NewCertificationRepository(db *sql.DB) *CertificationRepository {
	return &CertificationRepository{db: db}
}

const certColumns = `id, certificate_number, client_id, standard_id, pipeline_id, status,
		issue_date, expiry_date, scope, accreditation_body, last_surveillance,
		created_date, last_modified_date`

// NextNumberSeq returns the highest certificate sequence already allocated
// for a year. Numbers are CERT-YYYY-NNNN; the caller formats seq+1 and
// retries on duplicate key.
func (r *CertificationRepository) NextNumberSeq(ctx context.Context, year int) (int, error) {
	var seq int
	prefix := fmt.Sprintf("CERT-%d-", year)
	query := fmt.Sprintf(`
		SELECT COALESCE(MAX(CAST(SUBSTRING(certificate_number, %d) AS UNSIGNED)), 0)
		FROM %s WHERE certificate_number LIKE ?`,
		len(prefix)+1, constants.TableCertification)
	err := r.db.QueryRowContext(ctx, query, prefix+"%").Scan(&seq)
	return seq, err
}

func (r *CertificationRepository) Insert(ctx context.Context, c *models.Certification) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, certificate_number, client_id, standard_id, pipeline_id, status,
			issue_date, expiry_date, scope, accreditation_body, last_surveillance,
			created_date, last_modified_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())`,
		constants.TableCertification)

	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.CertificateNumber, c.ClientID, c.StandardID, c.PipelineID, c.Status,
		c.IssueDate, c.ExpiryDate, c.Scope, c.AccreditationBody, c.LastSurveillance)
	return err
}

func (r *CertificationRepository) GetByID(ctx context.Context, id string) (*models.Certification, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ? LIMIT 1", certColumns, constants.TableCertification)

	row := r.db.QueryRowContext(ctx, query, id)
	c, err := scanCertification(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func (r *CertificationRepository) List(ctx context.Context, clientID, standardID, status string, limit, offset int) ([]*models.Certification, error) {
	var conds []string
	var args []interface{}

	if clientID != "" {
		conds = append(conds, "client_id = ?")
		args = append(args, clientID)
	}
	if standardID != "" {
		conds = append(conds, "standard_id = ?")
		args = append(args, standardID)
	}
	if status != "" {
		conds = append(conds, "status = ?")
		args = append(args, status)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	query := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY expiry_date ASC LIMIT ? OFFSET ?",
		certColumns, constants.TableCertification, where)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	certs := make([]*models.Certification, 0)
	for rows.Next() {
		c, err := scanCertification(rows.Scan)
		if err != nil {
			continue
		}
		certs = append(certs, c)
	}
	return certs, rows.Err()
}

// ListDerivable returns certifications whose status is derived from expiry
// (everything except the explicit suspended/revoked/withdrawn states),
// for the daily status sweep.
func (r *CertificationRepository) ListDerivable(ctx context.Context) ([]*models.Certification, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE status IN (?, ?, ?)",
		certColumns, constants.TableCertification)

	rows, err := r.db.QueryContext(ctx, query,
		models.CertStatusActive, models.CertStatusExpiringSoon, models.CertStatusExpired)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	certs := make([]*models.Certification, 0)
	for rows.Next() {
		c, err := scanCertification(rows.Scan)
		if err != nil {
			continue
		}
		certs = append(certs, c)
	}
	return certs, rows.Err()
}

func (r *CertificationRepository) Update(ctx context.Context, c *models.Certification) error {
	query := fmt.Sprintf(`
		UPDATE %s SET status = ?, issue_date = ?, expiry_date = ?, scope = ?,
			accreditation_body = ?, last_surveillance = ?, pipeline_id = ?, last_modified_date = NOW()
		WHERE id = ?`,
		constants.TableCertification)

	_, err := r.db.ExecContext(ctx, query,
		c.Status, c.IssueDate, c.ExpiryDate, c.Scope, c.AccreditationBody,
		c.LastSurveillance, c.PipelineID, c.ID)
	return err
}

func (r *CertificationRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := fmt.Sprintf("UPDATE %s SET status = ?, last_modified_date = NOW() WHERE id = ?",
		constants.TableCertification)
	_, err := r.db.ExecContext(ctx, query, status, id)
	return err
}

func scanCertification(scan func(...interface{}) error) (*models.Certification, error) {
	var c models.Certification
	var pipelineID sql.NullString
	var issueRaw, expiryRaw, survRaw, createdRaw, modifiedRaw []byte

	err := scan(&c.ID, &c.CertificateNumber, &c.ClientID, &c.StandardID, &pipelineID, &c.Status,
		&issueRaw, &expiryRaw, &c.Scope, &c.AccreditationBody, &survRaw, &createdRaw, &modifiedRaw)
	if err != nil {
		return nil, err
	}

	if pipelineID.Valid {
		c.PipelineID = &pipelineID.String
	}
	c.IssueDate = utils.ParseDBDate(issueRaw)
	c.ExpiryDate = utils.ParseDBDate(expiryRaw)
	c.LastSurveillance = utils.ParseDBDatePtr(survRaw)
	c.CreatedAt = utils.ParseDBTime(createdRaw)
	c.UpdatedAt = utils.ParseDBTime(modifiedRaw)
	return &c, nil
}

// Stats aggregates the register by status and standard code.
func (r *CertificationRepository) Stats(ctx context.Context) (*models.CertificationStats, error) {
	stats := &models.CertificationStats{
		ByStatus:   make(map[string]int),
		ByStandard: make(map[string]int),
	}

	query := fmt.Sprintf("SELECT status, COUNT(*) FROM %s GROUP BY status", constants.TableCertification)
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

	query = fmt.Sprintf(`
		SELECT s.code, COUNT(*) FROM %s c
		JOIN %s s ON s.id = c.standard_id
		GROUP BY s.code`,
		constants.TableCertification, constants.TableISOStandard)
	rows2, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows2.Close()
	for rows2.Next() {
		var code string
		var count int
		if err := rows2.Scan(&code, &count); err != nil {
			continue
		}
		stats.ByStandard[code] = count
	}

	return stats, nil
}

// Expiring lists non-terminal certifications expiring within the window.
func (r *CertificationRepository) Expiring(ctx context.Context, until time.Time) ([]*models.ExpiringCertification, error) {
	query := fmt.Sprintf(`
		SELECT c.id, c.certificate_number, cl.name, s.code, c.expiry_date
		FROM %s c
		JOIN %s cl ON cl.id = c.client_id
		JOIN %s s ON s.id = c.standard_id
		WHERE c.status IN (?, ?) AND c.expiry_date <= ?
		ORDER BY c.expiry_date ASC`,
		constants.TableCertification, constants.TableClient, constants.TableISOStandard)

	rows, err := r.db.QueryContext(ctx, query,
		models.CertStatusActive, models.CertStatusExpiringSoon, until)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	now := time.Now()
	out := make([]*models.ExpiringCertification, 0)
	for rows.Next() {
		var e models.ExpiringCertification
		var expiryRaw []byte
		if err := rows.Scan(&e.CertificationID, &e.CertificateNumber, &e.ClientName, &e.StandardCode, &expiryRaw); err != nil {
			continue
		}
		e.ExpiryDate = utils.ParseDBDate(expiryRaw)
		e.DaysLeft = int(time.Until(e.ExpiryDate).Hours() / 24)
		if e.ExpiryDate.Before(now) {
			e.DaysLeft = 0
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

// History

func (r *CertificationRepository) InsertHistory(ctx context.Context, h *models.CertificationHistory) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, certification_id, action, reason, actor_id, created_date)
		VALUES (?, ?, ?, ?, ?, NOW())`,
		constants.TableCertificationHistory)
	_, err := r.db.ExecContext(ctx, query, h.ID, h.CertificationID, h.Action, h.Reason, h.ActorID)
	return err
}

func (r *CertificationRepository) ListHistory(ctx context.Context, certificationID string) ([]*models.CertificationHistory, error) {
	query := fmt.Sprintf(`
		SELECT id, certification_id, action, reason, actor_id, created_date
		FROM %s WHERE certification_id = ? ORDER BY created_date DESC`,
		constants.TableCertificationHistory)

	rows, err := r.db.QueryContext(ctx, query, certificationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := make([]*models.CertificationHistory, 0)
	for rows.Next() {
		var h models.CertificationHistory
		var createdRaw []byte
		if err := rows.Scan(&h.ID, &h.CertificationID, &h.Action, &h.Reason, &h.ActorID, &createdRaw); err != nil {
			continue
		}
		h.CreatedAt = utils.ParseDBTime(createdRaw)
		history = append(history, &h)
	}
	return history, rows.Err()
}
