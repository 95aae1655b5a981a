package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/certibase/backend/internal/domain/models"
	"github.com/certibase/backend/internal/domain/pipeline"
	"github.com/certibase/backend/pkg/constants"
	"github.com/certibase/backend/pkg/utils"
)

// PipelineRepository stores pipelines plus their transition log and
// stage milestones.
type PipelineRepository struct {
	db *sql.DB
}

func NewPipelineRepository(db *sql.DB) *PipelineRepository {
	return &PipelineRepository{db: db}
}

const pipelineColumns = `id, number, client_id, standard_id, stage, progress, lead_id,
		opportunity_id, contract_id, audit_id, certification_id, stage_entered_at,
		surveillance_due, created_date, last_modified_date`

// NextNumberSeq returns the highest pipeline sequence already allocated.
// Numbers are PL-%05d; the caller formats seq+1 and retries on duplicate key.
func (r *PipelineRepository) NextNumberSeq(ctx context.Context) (int, error) {
	var seq int
	query := fmt.Sprintf(`
		SELECT COALESCE(MAX(CAST(SUBSTRING(number, 4) AS UNSIGNED)), 0)
		FROM %s`, constants.TablePipeline)
	err := r.db.QueryRowContext(ctx, query).Scan(&seq)
	return seq, err
}

func (r *PipelineRepository) Insert(ctx context.Context, p *models.Pipeline) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, number, client_id, standard_id, stage, progress, lead_id,
			opportunity_id, contract_id, audit_id, certification_id, stage_entered_at,
			surveillance_due, created_date, last_modified_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())`,
		constants.TablePipeline)

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.Number, p.ClientID, p.StandardID, p.Stage, p.Progress, p.LeadID,
		p.OpportunityID, p.ContractID, p.AuditID, p.CertificationID, p.StageEnteredAt,
		p.SurveillanceDue)
	return err
}

func (r *PipelineRepository) GetByID(ctx context.Context, id string) (*models.Pipeline, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ? LIMIT 1", pipelineColumns, constants.TablePipeline)

	row := r.db.QueryRowContext(ctx, query, id)
	p, err := scanPipeline(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// GetByLeadID finds the pipeline opened for a lead, if any.
func (r *PipelineRepository) GetByLeadID(ctx context.Context, leadID string) (*models.Pipeline, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE lead_id = ? LIMIT 1", pipelineColumns, constants.TablePipeline)

	row := r.db.QueryRowContext(ctx, query, leadID)
	p, err := scanPipeline(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// GetByOpportunityID finds the pipeline carrying an opportunity, if any.
func (r *PipelineRepository) GetByOpportunityID(ctx context.Context, opportunityID string) (*models.Pipeline, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE opportunity_id = ? LIMIT 1", pipelineColumns, constants.TablePipeline)

	row := r.db.QueryRowContext(ctx, query, opportunityID)
	p, err := scanPipeline(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (r *PipelineRepository) List(ctx context.Context, clientID, stage string, limit, offset int) ([]*models.Pipeline, error) {
	var conds []string
	var args []interface{}

	if clientID != "" {
		conds = append(conds, "client_id = ?")
		args = append(args, clientID)
	}
	if stage != "" {
		conds = append(conds, "stage = ?")
		args = append(args, stage)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	query := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY created_date DESC LIMIT ? OFFSET ?",
		pipelineColumns, constants.TablePipeline, where)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pipelines := make([]*models.Pipeline, 0)
	for rows.Next() {
		p, err := scanPipeline(rows.Scan)
		if err != nil {
			continue
		}
		pipelines = append(pipelines, p)
	}
	return pipelines, rows.Err()
}

// ListSurveillanceDue returns certified pipelines whose next surveillance
// visit is due, for the daily check.
func (r *PipelineRepository) ListSurveillanceDue(ctx context.Context) ([]*models.Pipeline, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE stage IN (?, ?) AND surveillance_due IS NOT NULL AND surveillance_due <= NOW()
		ORDER BY surveillance_due ASC`,
		pipelineColumns, constants.TablePipeline)

	rows, err := r.db.QueryContext(ctx, query,
		string(pipeline.StageCertified), string(pipeline.StageSurveillance))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pipelines := make([]*models.Pipeline, 0)
	for rows.Next() {
		p, err := scanPipeline(rows.Scan)
		if err != nil {
			continue
		}
		pipelines = append(pipelines, p)
	}
	return pipelines, rows.Err()
}

func (r *PipelineRepository) Update(ctx context.Context, p *models.Pipeline) error {
	query := fmt.Sprintf(`
		UPDATE %s SET client_id = ?, standard_id = ?, stage = ?, progress = ?, lead_id = ?,
			opportunity_id = ?, contract_id = ?, audit_id = ?, certification_id = ?,
			stage_entered_at = ?, surveillance_due = ?, last_modified_date = NOW()
		WHERE id = ?`,
		constants.TablePipeline)

	_, err := r.db.ExecContext(ctx, query,
		p.ClientID, p.StandardID, p.Stage, p.Progress, p.LeadID, p.OpportunityID,
		p.ContractID, p.AuditID, p.CertificationID, p.StageEnteredAt, p.SurveillanceDue, p.ID)
	return err
}

func scanPipeline(scan func(...interface{}) error) (*models.Pipeline, error) {
	var p models.Pipeline
	var clientID, standardID, leadID, oppID, contractID, auditID, certID sql.NullString
	var enteredRaw, survRaw, createdRaw, modifiedRaw []byte

	err := scan(&p.ID, &p.Number, &clientID, &standardID, &p.Stage, &p.Progress, &leadID,
		&oppID, &contractID, &auditID, &certID, &enteredRaw, &survRaw, &createdRaw, &modifiedRaw)
	if err != nil {
		return nil, err
	}

	if clientID.Valid {
		p.ClientID = &clientID.String
	}
	if standardID.Valid {
		p.StandardID = &standardID.String
	}
	if leadID.Valid {
		p.LeadID = &leadID.String
	}
	if oppID.Valid {
		p.OpportunityID = &oppID.String
	}
	if contractID.Valid {
		p.ContractID = &contractID.String
	}
	if auditID.Valid {
		p.AuditID = &auditID.String
	}
	if certID.Valid {
		p.CertificationID = &certID.String
	}
	p.StageEnteredAt = utils.ParseDBTime(enteredRaw)
	p.SurveillanceDue = utils.ParseDBTimePtr(survRaw)
	p.CreatedAt = utils.ParseDBTime(createdRaw)
	p.UpdatedAt = utils.ParseDBTime(modifiedRaw)
	return &p, nil
}

// StageStats counts pipelines per stage and sums the deal value carried by
// each stage (contract value once signed, opportunity value before that).
func (r *PipelineRepository) StageStats(ctx context.Context) ([]models.PipelineStageStat, error) {
	query := fmt.Sprintf(`
		SELECT p.stage, COUNT(*), COALESCE(SUM(COALESCE(ct.total_value, o.value, 0)), 0)
		FROM %s p
		LEFT JOIN %s o ON o.id = p.opportunity_id
		LEFT JOIN %s ct ON ct.id = p.contract_id
		GROUP BY p.stage`,
		constants.TablePipeline, constants.TableOpportunity, constants.TableContract)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make([]models.PipelineStageStat, 0)
	for rows.Next() {
		var s models.PipelineStageStat
		if err := rows.Scan(&s.Stage, &s.Count, &s.Value); err != nil {
			continue
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// Board returns the card view for active pipelines, joined with client and
// standard names and the per-pipeline deal value.
func (r *PipelineRepository) Board(ctx context.Context) ([]*models.PipelineBoardEntry, error) {
	query := fmt.Sprintf(`
		SELECT p.id, p.number, COALESCE(c.name, ''), COALESCE(s.code, ''), p.stage, p.progress,
			DATEDIFF(NOW(), p.stage_entered_at), COALESCE(ct.total_value, o.value, 0)
		FROM %s p
		LEFT JOIN %s c ON c.id = p.client_id
		LEFT JOIN %s s ON s.id = p.standard_id
		LEFT JOIN %s o ON o.id = p.opportunity_id
		LEFT JOIN %s ct ON ct.id = p.contract_id
		WHERE p.stage NOT IN (?, ?)
		ORDER BY p.stage_entered_at ASC`,
		constants.TablePipeline, constants.TableClient, constants.TableISOStandard,
		constants.TableOpportunity, constants.TableContract)

	rows, err := r.db.QueryContext(ctx, query,
		string(pipeline.StageClosedLost), string(pipeline.StageWithdrawn))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*models.PipelineBoardEntry, 0)
	for rows.Next() {
		var e models.PipelineBoardEntry
		if err := rows.Scan(&e.PipelineID, &e.Number, &e.ClientName, &e.StandardCode,
			&e.Stage, &e.Progress, &e.DaysInStage, &e.Value); err != nil {
			continue
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// Transitions

func (r *PipelineRepository) InsertTransition(ctx context.Context, t *models.PipelineTransition) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, pipeline_id, from_stage, to_stage, actor_id, note, created_date)
		VALUES (?, ?, ?, ?, ?, ?, NOW())`,
		constants.TablePipelineTransition)
	_, err := r.db.ExecContext(ctx, query, t.ID, t.PipelineID, t.FromStage, t.ToStage, t.ActorID, t.Note)
	return err
}

func (r *PipelineRepository) ListTransitions(ctx context.Context, pipelineID string) ([]*models.PipelineTransition, error) {
	query := fmt.Sprintf(`
		SELECT id, pipeline_id, from_stage, to_stage, actor_id, note, created_date
		FROM %s WHERE pipeline_id = ? ORDER BY created_date ASC`,
		constants.TablePipelineTransition)

	rows, err := r.db.QueryContext(ctx, query, pipelineID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transitions := make([]*models.PipelineTransition, 0)
	for rows.Next() {
		var t models.PipelineTransition
		var createdRaw []byte
		if err := rows.Scan(&t.ID, &t.PipelineID, &t.FromStage, &t.ToStage, &t.ActorID, &t.Note, &createdRaw); err != nil {
			continue
		}
		t.CreatedAt = utils.ParseDBTime(createdRaw)
		transitions = append(transitions, &t)
	}
	return transitions, rows.Err()
}

// Milestones

func (r *PipelineRepository) InsertMilestone(ctx context.Context, m *models.PipelineMilestone) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, pipeline_id, stage, title, status, due_date, completed_at, created_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, NOW())`,
		constants.TablePipelineMilestone)
	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.PipelineID, m.Stage, m.Title, m.Status, m.DueDate, m.CompletedAt)
	return err
}

func (r *PipelineRepository) GetMilestone(ctx context.Context, id string) (*models.PipelineMilestone, error) {
	query := fmt.Sprintf(`
		SELECT id, pipeline_id, stage, title, status, due_date, completed_at, created_date
		FROM %s WHERE id = ? LIMIT 1`,
		constants.TablePipelineMilestone)

	var m models.PipelineMilestone
	var dueRaw, completedRaw, createdRaw []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(&m.ID, &m.PipelineID, &m.Stage,
		&m.Title, &m.Status, &dueRaw, &completedRaw, &createdRaw)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	m.DueDate = utils.ParseDBTimePtr(dueRaw)
	m.CompletedAt = utils.ParseDBTimePtr(completedRaw)
	m.CreatedAt = utils.ParseDBTime(createdRaw)
	return &m, nil
}

func (r *PipelineRepository) ListMilestones(ctx context.Context, pipelineID string) ([]*models.PipelineMilestone, error) {
	query := fmt.Sprintf(`
		SELECT id, pipeline_id, stage, title, status, due_date, completed_at, created_date
		FROM %s WHERE pipeline_id = ? ORDER BY created_date ASC`,
		constants.TablePipelineMilestone)

	rows, err := r.db.QueryContext(ctx, query, pipelineID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	milestones := make([]*models.PipelineMilestone, 0)
	for rows.Next() {
		var m models.PipelineMilestone
		var dueRaw, completedRaw, createdRaw []byte
		if err := rows.Scan(&m.ID, &m.PipelineID, &m.Stage, &m.Title, &m.Status,
			&dueRaw, &completedRaw, &createdRaw); err != nil {
			continue
		}
		m.DueDate = utils.ParseDBTimePtr(dueRaw)
		m.CompletedAt = utils.ParseDBTimePtr(completedRaw)
		m.CreatedAt = utils.ParseDBTime(createdRaw)
		milestones = append(milestones, &m)
	}
	return milestones, rows.Err()
}

func (r *PipelineRepository) UpdateMilestone(ctx context.Context, m *models.PipelineMilestone) error {
	query := fmt.Sprintf(`
		UPDATE %s SET title = ?, status = ?, due_date = ?, completed_at = ?
		WHERE id = ?`,
		constants.TablePipelineMilestone)
	_, err := r.db.ExecContext(ctx, query, m.Title, m.Status, m.DueDate, m.CompletedAt, m.ID)
	return err
}
