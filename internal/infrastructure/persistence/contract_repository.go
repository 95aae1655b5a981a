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

// ContractRepository stores proposals (with service lines) and contracts
// (with per-standard per-year fee lines).
type ContractRepository struct {
	db *sql.DB
}

func NewContractRepository(db *sql.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

// Proposals

// NextProposalSeq returns the highest proposal sequence already allocated.
// Numbers are PR-%05d; the caller formats seq+1 and retries on duplicate key.
func (r *ContractRepository) NextProposalSeq(ctx context.Context) (int, error) {
	var seq int
	query := fmt.Sprintf(`
		SELECT COALESCE(MAX(CAST(SUBSTRING(number, 4) AS UNSIGNED)), 0)
		FROM %s`, constants.TableProposal)
	err := r.db.QueryRowContext(ctx, query).Scan(&seq)
	return seq, err
}

func (r *ContractRepository) InsertProposal(ctx context.Context, p *models.Proposal) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, number, client_id, opportunity_id, status, valid_until, total_amount,
			created_date, last_modified_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, NOW(), NOW())`,
		constants.TableProposal)

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.Number, p.ClientID, p.OpportunityID, p.Status, p.ValidUntil, p.TotalAmount)
	return err
}

func (r *ContractRepository) GetProposal(ctx context.Context, id string) (*models.Proposal, error) {
	query := fmt.Sprintf(`
		SELECT id, number, client_id, opportunity_id, status, valid_until, total_amount,
			created_date, last_modified_date
		FROM %s WHERE id = ? LIMIT 1`,
		constants.TableProposal)

	row := r.db.QueryRowContext(ctx, query, id)
	p, err := scanProposal(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (r *ContractRepository) ListProposals(ctx context.Context, clientID, status string, limit, offset int) ([]*models.Proposal, error) {
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

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT id, number, client_id, opportunity_id, status, valid_until, total_amount,
			created_date, last_modified_date
		FROM %s%s ORDER BY created_date DESC LIMIT ? OFFSET ?`,
		constants.TableProposal, where)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	proposals := make([]*models.Proposal, 0)
	for rows.Next() {
		p, err := scanProposal(rows.Scan)
		if err != nil {
			continue
		}
		proposals = append(proposals, p)
	}
	return proposals, rows.Err()
}

func (r *ContractRepository) UpdateProposal(ctx context.Context, p *models.Proposal) error {
	query := fmt.Sprintf(`
		UPDATE %s SET status = ?, valid_until = ?, total_amount = ?, last_modified_date = NOW()
		WHERE id = ?`,
		constants.TableProposal)
	_, err := r.db.ExecContext(ctx, query, p.Status, p.ValidUntil, p.TotalAmount, p.ID)
	return err
}

func scanProposal(scan func(...interface{}) error) (*models.Proposal, error) {
	var p models.Proposal
	var opportunityID sql.NullString
	var validRaw, createdRaw, modifiedRaw []byte

	err := scan(&p.ID, &p.Number, &p.ClientID, &opportunityID, &p.Status, &validRaw,
		&p.TotalAmount, &createdRaw, &modifiedRaw)
	if err != nil {
		return nil, err
	}

	if opportunityID.Valid {
		p.OpportunityID = &opportunityID.String
	}
	p.ValidUntil = utils.ParseDBDatePtr(validRaw)
	p.CreatedAt = utils.ParseDBTime(createdRaw)
	p.UpdatedAt = utils.ParseDBTime(modifiedRaw)
	return &p, nil
}

// Proposal items

func (r *ContractRepository) InsertProposalItem(ctx context.Context, item *models.ProposalItem) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, proposal_id, standard_id, service, amount)
		VALUES (?, ?, ?, ?, ?)`,
		constants.TableProposalItem)
	_, err := r.db.ExecContext(ctx, query, item.ID, item.ProposalID, item.StandardID, item.Service, item.Amount)
	return err
}

func (r *ContractRepository) ListProposalItems(ctx context.Context, proposalID string) ([]models.ProposalItem, error) {
	query := fmt.Sprintf(`
		SELECT id, proposal_id, standard_id, service, amount
		FROM %s WHERE proposal_id = ?`,
		constants.TableProposalItem)

	rows, err := r.db.QueryContext(ctx, query, proposalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.ProposalItem, 0)
	for rows.Next() {
		var item models.ProposalItem
		var standardID sql.NullString
		if err := rows.Scan(&item.ID, &item.ProposalID, &standardID, &item.Service, &item.Amount); err != nil {
			continue
		}
		if standardID.Valid {
			item.StandardID = &standardID.String
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *ContractRepository) DeleteProposalItems(ctx context.Context, proposalID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE proposal_id = ?", constants.TableProposalItem)
	_, err := r.db.ExecContext(ctx, query, proposalID)
	return err
}

// Contracts

// NextContractSeq works like NextProposalSeq for CT-%05d numbers.
func (r *ContractRepository) NextContractSeq(ctx context.Context) (int, error) {
	var seq int
	query := fmt.Sprintf(`
		SELECT COALESCE(MAX(CAST(SUBSTRING(number, 4) AS UNSIGNED)), 0)
		FROM %s`, constants.TableContract)
	err := r.db.QueryRowContext(ctx, query).Scan(&seq)
	return seq, err
}

func (r *ContractRepository) InsertContract(ctx context.Context, c *models.Contract) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, number, client_id, opportunity_id, status, start_date, end_date,
			signed_date, total_value, created_date, last_modified_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())`,
		constants.TableContract)

	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.Number, c.ClientID, c.OpportunityID, c.Status, c.StartDate, c.EndDate,
		c.SignedDate, c.TotalValue)
	return err
}

func (r *ContractRepository) GetContract(ctx context.Context, id string) (*models.Contract, error) {
	query := fmt.Sprintf(`
		SELECT id, number, client_id, opportunity_id, status, start_date, end_date,
			signed_date, total_value, created_date, last_modified_date
		FROM %s WHERE id = ? LIMIT 1`,
		constants.TableContract)

	row := r.db.QueryRowContext(ctx, query, id)
	c, err := scanContract(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func (r *ContractRepository) ListContracts(ctx context.Context, clientID, status string, limit, offset int) ([]*models.Contract, error) {
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

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT id, number, client_id, opportunity_id, status, start_date, end_date,
			signed_date, total_value, created_date, last_modified_date
		FROM %s%s ORDER BY created_date DESC LIMIT ? OFFSET ?`,
		constants.TableContract, where)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contracts := make([]*models.Contract, 0)
	for rows.Next() {
		c, err := scanContract(rows.Scan)
		if err != nil {
			continue
		}
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}

func (r *ContractRepository) UpdateContract(ctx context.Context, c *models.Contract) error {
	query := fmt.Sprintf(`
		UPDATE %s SET status = ?, start_date = ?, end_date = ?, signed_date = ?,
			total_value = ?, last_modified_date = NOW()
		WHERE id = ?`,
		constants.TableContract)
	_, err := r.db.ExecContext(ctx, query,
		c.Status, c.StartDate, c.EndDate, c.SignedDate, c.TotalValue, c.ID)
	return err
}

// ContractValueByStatus sums contract value per status for the financial
// dashboard.
func (r *ContractRepository) ContractValueByStatus(ctx context.Context) (map[string]float64, error) {
	query := fmt.Sprintf("SELECT status, COALESCE(SUM(total_value), 0) FROM %s GROUP BY status",
		constants.TableContract)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var status string
		var value float64
		if err := rows.Scan(&status, &value); err != nil {
			continue
		}
		out[status] = value
	}
	return out, rows.Err()
}

func scanContract(scan func(...interface{}) error) (*models.Contract, error) {
	var c models.Contract
	var opportunityID sql.NullString
	var startRaw, endRaw, signedRaw, createdRaw, modifiedRaw []byte

	err := scan(&c.ID, &c.Number, &c.ClientID, &opportunityID, &c.Status, &startRaw, &endRaw,
		&signedRaw, &c.TotalValue, &createdRaw, &modifiedRaw)
	if err != nil {
		return nil, err
	}

	if opportunityID.Valid {
		c.OpportunityID = &opportunityID.String
	}
	c.StartDate = utils.ParseDBDatePtr(startRaw)
	c.EndDate = utils.ParseDBDatePtr(endRaw)
	c.SignedDate = utils.ParseDBDatePtr(signedRaw)
	c.CreatedAt = utils.ParseDBTime(createdRaw)
	c.UpdatedAt = utils.ParseDBTime(modifiedRaw)
	return &c, nil
}

// Contract fees

func (r *ContractRepository) InsertFee(ctx context.Context, fee *models.ContractFee) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, contract_id, standard_id, year, amount)
		VALUES (?, ?, ?, ?, ?)`,
		constants.TableContractFee)
	_, err := r.db.ExecContext(ctx, query, fee.ID, fee.ContractID, fee.StandardID, fee.Year, fee.Amount)
	return err
}

func (r *ContractRepository) ListFees(ctx context.Context, contractID string) ([]models.ContractFee, error) {
	query := fmt.Sprintf(`
		SELECT id, contract_id, standard_id, year, amount
		FROM %s WHERE contract_id = ? ORDER BY year ASC`,
		constants.TableContractFee)

	rows, err := r.db.QueryContext(ctx, query, contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fees := make([]models.ContractFee, 0)
	for rows.Next() {
		var fee models.ContractFee
		if err := rows.Scan(&fee.ID, &fee.ContractID, &fee.StandardID, &fee.Year, &fee.Amount); err != nil {
			continue
		}
		fees = append(fees, fee)
	}
	return fees, rows.Err()
}

func (r *ContractRepository) DeleteFees(ctx context.Context, contractID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE contract_id = ?", constants.TableContractFee)
	_, err := r.db.ExecContext(ctx, query, contractID)
	return err
}
