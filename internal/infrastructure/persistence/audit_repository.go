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

type AuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

const auditColumns = `id, client_id, standard_id, pipeline_id, type, status, scheduled_date,
		start_date, end_date, lead_auditor_id, team_members, duration_days, scope, summary,
		created_date, last_modified_date`

func (r *AuditRepository) Insert(ctx context.Context, a *models.Audit) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, client_id, standard_id, pipeline_id, type, status, scheduled_date,
			start_date, end_date, lead_auditor_id, team_members, duration_days, scope, summary,
			created_date, last_modified_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())`,
		constants.TableAudit)

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.ClientID, a.StandardID, a.PipelineID, a.Type, a.Status, a.ScheduledDate,
		a.StartDate, a.EndDate, a.LeadAuditorID, a.TeamMembers, a.DurationDays, a.Scope, a.Summary)
	return err
}

func (r *AuditRepository) GetByID(ctx context.Context, id string) (*models.Audit, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ? LIMIT 1", auditColumns, constants.TableAudit)

	row := r.db.QueryRowContext(ctx, query, id)
	a, err := scanAudit(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

// List filters audits by client, status and/or type, soonest scheduled first.
func (r *AuditRepository) List(ctx context.Context, clientID, status, auditType string, limit, offset int) ([]*models.Audit, error) {
	var conds []string
	var args []interface{}

	if clientID != "" {
		conds = append(conds, "client_id = ?")
		args = append(args, clientID)
	}
	if status != "" {
		conds = append(conds, "status = ?")
		args = append(args, status)
	}
	if auditType != "" {
		conds = append(conds, "type = ?")
		args = append(args, auditType)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	query := fmt.Sprintf(
		"SELECT %s FROM %s%s ORDER BY scheduled_date IS NULL, scheduled_date ASC LIMIT ? OFFSET ?",
		auditColumns, constants.TableAudit, where)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	audits := make([]*models.Audit, 0)
	for rows.Next() {
		a, err := scanAudit(rows.Scan)
		if err != nil {
			continue
		}
		audits = append(audits, a)
	}
	return audits, rows.Err()
}

func (r *AuditRepository) Update(ctx context.Context, a *models.Audit) error {
	query := fmt.Sprintf(`
		UPDATE %s SET client_id = ?, standard_id = ?, pipeline_id = ?, type = ?, status = ?,
			scheduled_date = ?, start_date = ?, end_date = ?, lead_auditor_id = ?,
			team_members = ?, duration_days = ?, scope = ?, summary = ?, last_modified_date = NOW()
		WHERE id = ?`,
		constants.TableAudit)

	_, err := r.db.ExecContext(ctx, query,
		a.ClientID, a.StandardID, a.PipelineID, a.Type, a.Status, a.ScheduledDate,
		a.StartDate, a.EndDate, a.LeadAuditorID, a.TeamMembers, a.DurationDays, a.Scope, a.Summary, a.ID)
	return err
}

func (r *AuditRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", constants.TableAudit)
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func scanAudit(scan func(...interface{}) error) (*models.Audit, error) {
	var a models.Audit
	var pipelineID, leadAuditor sql.NullString
	var scheduledRaw, startRaw, endRaw, createdRaw, modifiedRaw []byte

	err := scan(&a.ID, &a.ClientID, &a.StandardID, &pipelineID, &a.Type, &a.Status,
		&scheduledRaw, &startRaw, &endRaw, &leadAuditor, &a.TeamMembers, &a.DurationDays,
		&a.Scope, &a.Summary, &createdRaw, &modifiedRaw)
	if err != nil {
		return nil, err
	}

	if pipelineID.Valid {
		a.PipelineID = &pipelineID.String
	}
	if leadAuditor.Valid {
		a.LeadAuditorID = &leadAuditor.String
	}
	a.ScheduledDate = utils.ParseDBTimePtr(scheduledRaw)
	a.StartDate = utils.ParseDBTimePtr(startRaw)
	a.EndDate = utils.ParseDBTimePtr(endRaw)
	a.CreatedAt = utils.ParseDBTime(createdRaw)
	a.UpdatedAt = utils.ParseDBTime(modifiedRaw)
	return &a, nil
}

// Stats aggregates audits by status and type plus the open finding count.
func (r *AuditRepository) Stats(ctx context.Context) (*models.AuditStats, error) {
	stats := &models.AuditStats{
		ByStatus: make(map[string]int),
		ByType:   make(map[string]int),
	}

	query := fmt.Sprintf("SELECT status, type, COUNT(*) FROM %s GROUP BY status, type", constants.TableAudit)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status, auditType string
		var count int
		if err := rows.Scan(&status, &auditType, &count); err != nil {
			continue
		}
		stats.ByStatus[status] += count
		stats.ByType[auditType] += count
		stats.Total += count
	}

	findingQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE status = ?", constants.TableAuditFinding)
	if err := r.db.QueryRowContext(ctx, findingQuery, models.FindingStatusOpen).Scan(&stats.OpenFindings); err != nil {
		return nil, err
	}

	return stats, nil
}

// Calendar returns scheduled audits for a month window with client and
// standard names joined in for display.
func (r *AuditRepository) Calendar(ctx context.Context, from, to time.Time) ([]*models.AuditCalendarEntry, error) {
	query := fmt.Sprintf(`
		SELECT a.id, c.name, s.code, a.type, a.status, a.scheduled_date
		FROM %s a
		JOIN %s c ON c.id = a.client_id
		JOIN %s s ON s.id = a.standard_id
		WHERE a.scheduled_date >= ? AND a.scheduled_date < ? AND a.status != ?
		ORDER BY a.scheduled_date ASC`,
		constants.TableAudit, constants.TableClient, constants.TableISOStandard)

	rows, err := r.db.QueryContext(ctx, query, from, to, models.AuditStatusCancelled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*models.AuditCalendarEntry, 0)
	for rows.Next() {
		var e models.AuditCalendarEntry
		var scheduledRaw []byte
		if err := rows.Scan(&e.AuditID, &e.ClientName, &e.StandardCode, &e.Type, &e.Status, &scheduledRaw); err != nil {
			continue
		}
		e.ScheduledDate = utils.ParseDBTime(scheduledRaw)
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// Findings

func (r *AuditRepository) InsertFinding(ctx context.Context, f *models.AuditFinding) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, audit_id, category, clause_ref, description, status, due_date,
			corrective_action, closed_at, created_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NOW())`,
		constants.TableAuditFinding)

	_, err := r.db.ExecContext(ctx, query,
		f.ID, f.AuditID, f.Category, f.ClauseRef, f.Description, f.Status, f.DueDate,
		f.CorrectiveAction, f.ClosedAt)
	return err
}

func (r *AuditRepository) GetFinding(ctx context.Context, id string) (*models.AuditFinding, error) {
	query := fmt.Sprintf(`
		SELECT id, audit_id, category, clause_ref, description, status, due_date,
			corrective_action, closed_at, created_date
		FROM %s WHERE id = ? LIMIT 1`,
		constants.TableAuditFinding)

	var f models.AuditFinding
	var dueRaw, closedRaw, createdRaw []byte

	err := r.db.QueryRowContext(ctx, query, id).Scan(&f.ID, &f.AuditID, &f.Category,
		&f.ClauseRef, &f.Description, &f.Status, &dueRaw, &f.CorrectiveAction, &closedRaw, &createdRaw)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	f.DueDate = utils.ParseDBTimePtr(dueRaw)
	f.ClosedAt = utils.ParseDBTimePtr(closedRaw)
	f.CreatedAt = utils.ParseDBTime(createdRaw)
	return &f, nil
}

func (r *AuditRepository) ListFindings(ctx context.Context, auditID string) ([]*models.AuditFinding, error) {
	query := fmt.Sprintf(`
		SELECT id, audit_id, category, clause_ref, description, status, due_date,
			corrective_action, closed_at, created_date
		FROM %s WHERE audit_id = ? ORDER BY created_date ASC`,
		constants.TableAuditFinding)

	rows, err := r.db.QueryContext(ctx, query, auditID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	findings := make([]*models.AuditFinding, 0)
	for rows.Next() {
		var f models.AuditFinding
		var dueRaw, closedRaw, createdRaw []byte
		if err := rows.Scan(&f.ID, &f.AuditID, &f.Category, &f.ClauseRef, &f.Description,
			&f.Status, &dueRaw, &f.CorrectiveAction, &closedRaw, &createdRaw); err != nil {
			continue
		}
		f.DueDate = utils.ParseDBTimePtr(dueRaw)
		f.ClosedAt = utils.ParseDBTimePtr(closedRaw)
		f.CreatedAt = utils.ParseDBTime(createdRaw)
		findings = append(findings, &f)
	}
	return findings, rows.Err()
}

func (r *AuditRepository) UpdateFinding(ctx context.Context, f *models.AuditFinding) error {
	query := fmt.Sprintf(`
		UPDATE %s SET category = ?, clause_ref = ?, description = ?, status = ?, due_date = ?,
			corrective_action = ?, closed_at = ?
		WHERE id = ?`,
		constants.TableAuditFinding)

	_, err := r.db.ExecContext(ctx, query,
		f.Category, f.ClauseRef, f.Description, f.Status, f.DueDate, f.CorrectiveAction, f.ClosedAt, f.ID)
	return err
}

// CountOpenFindings returns open findings for one audit; the certification
// decision gate requires zero open major nonconformities.
func (r *AuditRepository) CountOpenFindings(ctx context.Context, auditID, category string) (int, error) {
	var count int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE audit_id = ? AND category = ? AND status = ?",
		constants.TableAuditFinding)
	err := r.db.QueryRowContext(ctx, query, auditID, category, models.FindingStatusOpen).Scan(&count)
	return count, err
}
