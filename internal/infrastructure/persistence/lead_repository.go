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

// LeadRepository covers leads and opportunities; the two travel together
// through the front half of the pipeline.
type LeadRepository struct {
	db *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

const leadColumns = `id, company_name, contact_name, contact_email, contact_phone, source,
		status, standard_id, estimated_value, owner_id, notes, converted_at, client_id,
		created_date, last_modified_date`

func (r *LeadRepository) Insert(ctx context.Context, l *models.Lead) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, company_name, contact_name, contact_email, contact_phone, source,
			status, standard_id, estimated_value, owner_id, notes, converted_at, client_id,
			created_date, last_modified_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())`,
		constants.TableLead)

	_, err := r.db.ExecContext(ctx, query,
		l.ID, l.CompanyName, l.ContactName, l.ContactEmail, l.ContactPhone, l.Source,
		l.Status, l.StandardID, l.EstimatedValue, l.OwnerID, l.Notes, l.ConvertedAt, l.ClientID)
	return err
}

func (r *LeadRepository) GetByID(ctx context.Context, id string) (*models.Lead, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ? LIMIT 1", leadColumns, constants.TableLead)

	row := r.db.QueryRowContext(ctx, query, id)
	l, err := scanLead(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return l, nil
}

func (r *LeadRepository) List(ctx context.Context, status, source string, limit, offset int) ([]*models.Lead, error) {
	var conds []string
	var args []interface{}

	if status != "" {
		conds = append(conds, "status = ?")
		args = append(args, status)
	}
	if source != "" {
		conds = append(conds, "source = ?")
		args = append(args, source)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	query := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY created_date DESC LIMIT ? OFFSET ?",
		leadColumns, constants.TableLead, where)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := make([]*models.Lead, 0)
	for rows.Next() {
		l, err := scanLead(rows.Scan)
		if err != nil {
			continue
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

func (r *LeadRepository) Update(ctx context.Context, l *models.Lead) error {
	query := fmt.Sprintf(`
		UPDATE %s SET company_name = ?, contact_name = ?, contact_email = ?, contact_phone = ?,
			source = ?, status = ?, standard_id = ?, estimated_value = ?, owner_id = ?,
			notes = ?, converted_at = ?, client_id = ?, last_modified_date = NOW()
		WHERE id = ?`,
		constants.TableLead)

	_, err := r.db.ExecContext(ctx, query,
		l.CompanyName, l.ContactName, l.ContactEmail, l.ContactPhone, l.Source, l.Status,
		l.StandardID, l.EstimatedValue, l.OwnerID, l.Notes, l.ConvertedAt, l.ClientID, l.ID)
	return err
}

func scanLead(scan func(...interface{}) error) (*models.Lead, error) {
	var l models.Lead
	var standardID, ownerID, clientID sql.NullString
	var convertedRaw, createdRaw, modifiedRaw []byte

	err := scan(&l.ID, &l.CompanyName, &l.ContactName, &l.ContactEmail, &l.ContactPhone,
		&l.Source, &l.Status, &standardID, &l.EstimatedValue, &ownerID, &l.Notes,
		&convertedRaw, &clientID, &createdRaw, &modifiedRaw)
	if err != nil {
		return nil, err
	}

	if standardID.Valid {
		l.StandardID = &standardID.String
	}
	if ownerID.Valid {
		l.OwnerID = &ownerID.String
	}
	if clientID.Valid {
		l.ClientID = &clientID.String
	}
	l.ConvertedAt = utils.ParseDBTimePtr(convertedRaw)
	l.CreatedAt = utils.ParseDBTime(createdRaw)
	l.UpdatedAt = utils.ParseDBTime(modifiedRaw)
	return &l, nil
}

// Opportunities

const oppColumns = `id, name, client_id, lead_id, standard_id, stage, value, probability,
		expected_close, owner_id, closed_at, created_date, last_modified_date`

func (r *LeadRepository) InsertOpportunity(ctx context.Context, o *models.Opportunity) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, client_id, lead_id, standard_id, stage, value, probability,
			expected_close, owner_id, closed_at, created_date, last_modified_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())`,
		constants.TableOpportunity)

	_, err := r.db.ExecContext(ctx, query,
		o.ID, o.Name, o.ClientID, o.LeadID, o.StandardID, o.Stage, o.Value, o.Probability,
		o.ExpectedClose, o.OwnerID, o.ClosedAt)
	return err
}

func (r *LeadRepository) GetOpportunity(ctx context.Context, id string) (*models.Opportunity, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ? LIMIT 1", oppColumns, constants.TableOpportunity)

	row := r.db.QueryRowContext(ctx, query, id)
	o, err := scanOpportunity(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return o, nil
}

func (r *LeadRepository) ListOpportunities(ctx context.Context, clientID, stage string, limit, offset int) ([]*models.Opportunity, error) {
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
		oppColumns, constants.TableOpportunity, where)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	opps := make([]*models.Opportunity, 0)
	for rows.Next() {
		o, err := scanOpportunity(rows.Scan)
		if err != nil {
			continue
		}
		opps = append(opps, o)
	}
	return opps, rows.Err()
}

func (r *LeadRepository) UpdateOpportunity(ctx context.Context, o *models.Opportunity) error {
	query := fmt.Sprintf(`
		UPDATE %s SET name = ?, stage = ?, value = ?, probability = ?, expected_close = ?,
			standard_id = ?, owner_id = ?, closed_at = ?, last_modified_date = NOW()
		WHERE id = ?`,
		constants.TableOpportunity)

	_, err := r.db.ExecContext(ctx, query,
		o.Name, o.Stage, o.Value, o.Probability, o.ExpectedClose, o.StandardID,
		o.OwnerID, o.ClosedAt, o.ID)
	return err
}

// OpportunityValueByStage sums open deal value per stage for dashboards.
func (r *LeadRepository) OpportunityValueByStage(ctx context.Context) (map[string]float64, error) {
	query := fmt.Sprintf("SELECT stage, COALESCE(SUM(value), 0) FROM %s GROUP BY stage",
		constants.TableOpportunity)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var stage string
		var value float64
		if err := rows.Scan(&stage, &value); err != nil {
			continue
		}
		out[stage] = value
	}
	return out, rows.Err()
}

func scanOpportunity(scan func(...interface{}) error) (*models.Opportunity, error) {
	var o models.Opportunity
	var leadID, standardID, ownerID sql.NullString
	var expectedRaw, closedRaw, createdRaw, modifiedRaw []byte

	err := scan(&o.ID, &o.Name, &o.ClientID, &leadID, &standardID, &o.Stage, &o.Value,
		&o.Probability, &expectedRaw, &ownerID, &closedRaw, &createdRaw, &modifiedRaw)
	if err != nil {
		return nil, err
	}

	if leadID.Valid {
		o.LeadID = &leadID.String
	}
	if standardID.Valid {
		o.StandardID = &standardID.String
	}
	if ownerID.Valid {
		o.OwnerID = &ownerID.String
	}
	o.ExpectedClose = utils.ParseDBDatePtr(expectedRaw)
	o.ClosedAt = utils.ParseDBTimePtr(closedRaw)
	o.CreatedAt = utils.ParseDBTime(createdRaw)
	o.UpdatedAt = utils.ParseDBTime(modifiedRaw)
	return &o, nil
}
