package bootstrap

import (
	"fmt"
	"log"

	"github.com/certibase/backend/internal/infrastructure/database"
	"github.com/certibase/backend/pkg/constants"
)

// ddl holds one CREATE TABLE statement per table, ordered so that
// referenced tables exist before their children. Foreign keys are
// intentionally not declared; the service layer owns referential checks.
var ddl = []struct {
	table string
	stmt  string
}{
	{constants.TableUser, `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			email VARCHAR(255) NOT NULL,
			name VARCHAR(255) NOT NULL,
			password VARCHAR(255) NOT NULL,
			role VARCHAR(32) NOT NULL DEFAULT 'staff',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_date DATETIME NOT NULL,
			last_modified_date DATETIME NOT NULL,
			UNIQUE KEY uk_users_email (email)
		)`},
	{constants.TableSession, `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL,
			expires_at DATETIME NOT NULL,
			is_revoked BOOLEAN NOT NULL DEFAULT FALSE,
			last_activity DATETIME NULL,
			created_date DATETIME NOT NULL,
			KEY idx_sessions_user (user_id)
		)`},
	{constants.TableClient, `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			code VARCHAR(32) NOT NULL,
			name VARCHAR(255) NOT NULL,
			industry VARCHAR(128) NULL,
			employee_count INT NOT NULL DEFAULT 0,
			address VARCHAR(255) NULL,
			city VARCHAR(128) NULL,
			country VARCHAR(128) NULL,
			tax_number VARCHAR(64) NULL,
			registration_number VARCHAR(64) NULL,
			website VARCHAR(255) NULL,
			status VARCHAR(32) NOT NULL DEFAULT 'active',
			account_manager_id VARCHAR(36) NULL,
			notes TEXT NULL,
			created_date DATETIME NOT NULL,
			last_modified_date DATETIME NOT NULL,
			UNIQUE KEY uk_clients_code (code)
		)`},
	{constants.TableClientContact, `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			client_id VARCHAR(36) NOT NULL,
			name VARCHAR(255) NOT NULL,
			title VARCHAR(128) NULL,
			email VARCHAR(255) NULL,
			phone VARCHAR(64) NULL,
			is_primary BOOLEAN NOT NULL DEFAULT FALSE,
			created_date DATETIME NOT NULL,
			KEY idx_contacts_client (client_id)
		)`},
	{constants.TableISOStandard, `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			code VARCHAR(64) NOT NULL,
			name VARCHAR(255) NOT NULL,
			description TEXT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			UNIQUE KEY uk_standards_code (code)
		)`},
	{constants.TableAudit, `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			client_id VARCHAR(36) NOT NULL,
			standard_id VARCHAR(36) NOT NULL,
			pipeline_id VARCHAR(36) NULL,
			type VARCHAR(32) NOT NULL,
			status VARCHAR(32) NOT NULL DEFAULT 'planned',
			scheduled_date DATETIME NULL,
			start_date DATETIME NULL,
			end_date DATETIME NULL,
			lead_auditor_id VARCHAR(36) NULL,
			team_members TEXT NULL,
			duration_days DOUBLE NOT NULL DEFAULT 0,
			scope TEXT NULL,
			summary TEXT NULL,
			created_date DATETIME NOT NULL,
			last_modified_date DATETIME NOT NULL,
			KEY idx_audits_client (client_id),
			KEY idx_audits_status (status)
		)`},
	{constants.TableAuditFinding, `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			audit_id VARCHAR(36) NOT NULL,
			category VARCHAR(32) NOT NULL,
			clause_ref VARCHAR(64) NULL,
			description TEXT NOT NULL,
			status VARCHAR(32) NOT NULL DEFAULT 'open',
			due_date DATETIME NULL,
			corrective_action TEXT NULL,
			closed_at DATETIME NULL,
			created_date DATETIME NOT NULL,
			KEY idx_findings_audit (audit_id)
		)`},
	{constants.TableChecklistTemplate, `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			standard_id VARCHAR(36) NOT NULL,
			name VARCHAR(255) NOT NULL,
			version VARCHAR(32) NOT NULL DEFAULT '1',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_date DATETIME NOT NULL,
			KEY idx_cltemplates_standard (standard_id)
		)`},
	{constants.TableChecklistItem, `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			template_id VARCHAR(36) NOT NULL,
			position INT NOT NULL DEFAULT 0,
			clause_ref VARCHAR(64) NULL,
			requirement TEXT NOT NULL,
			guidance TEXT NULL,
			weight DOUBLE NOT NULL DEFAULT 1,
			KEY idx_clitems_template (template_id)
		)`},
	{constants.TableChecklistResponse, `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			audit_id VARCHAR(36) NOT NULL,
			item_id VARCHAR(36) NOT NULL,
			result VARCHAR(32) NOT NULL,
			evidence TEXT NULL,
			notes TEXT NULL,
			responded_by VARCHAR(36) NULL,
			responded_at DATETIME NOT NULL,
			UNIQUE KEY uk_responses_audit_item (audit_id, item_id)
		)`},
	{constants.TableCertification, `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			certificate_number VARCHAR(32) NOT NULL,
			client_id VARCHAR(36) NOT NULL,
			standard_id VARCHAR(36) NOT NULL,
			pipeline_id VARCHAR(36) NULL,
			status VARCHAR(32) NOT NULL DEFAULT 'active',
			issue_date DATETIME NOT NULL,
			expiry_date DATETIME NOT NULL,
			scope TEXT NULL,
			accreditation_body VARCHAR(128) NULL,
			last_surveillance DATETIME NULL,
			created_date DATETIME NOT NULL,
			last_modified_date DATETIME NOT NULL,
			UNIQUE KEY uk_certs_number (certificate_number),
			KEY idx_certs_client (client_id),
			KEY idx_certs_expiry (expiry_date)
		)`},
	{constants.TableCertificationHistory, `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			certification_id VARCHAR(36) NOT NULL,
			action VARCHAR(32) NOT NULL,
			reason TEXT NULL,
			actor_id VARCHAR(36) NULL,
			created_date DATETIME NOT NULL,
			KEY idx_certhistory_cert (certification_id)
		)`},
	{constants.TableDocumentTemplate, `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			kind VARCHAR(32) NOT NULL,
			body MEDIUMTEXT NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_date DATETIME NOT NULL,
			last_modified_date DATETIME NOT NULL,
			KEY idx_doctemplates_kind (kind)
		)`},
	{constants.TableLead, `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			company_name VARCHAR(255) NOT NULL,
			contact_name VARCHAR(255) NULL,
			contact_email VARCHAR(255) NULL,
			contact_phone VARCHAR(64) NULL,
			source VARCHAR(64) NULL,
			status VARCHAR(32) NOT NULL DEFAULT 'new',
			standard_id VARCHAR(36) NULL,
			estimated_value DOUBLE NOT NULL DEFAULT 0,
			owner_id VARCHAR(36) NULL,
			notes TEXT NULL,
			converted_at DATETIME NULL,
			client_id VARCHAR(36) NULL,
			created_date DATETIME NOT NULL,
			last_modified_date DATETIME NOT NULL,
			KEY idx_leads_status (status)
		)`},
	{constants.TableOpportunity, `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			client_id VARCHAR(36) NOT NULL,
			lead_id VARCHAR(36) NULL,
			standard_id VARCHAR(36) NULL,
			stage VARCHAR(32) NOT NULL DEFAULT 'qualification',
			value DOUBLE NOT NULL DEFAULT 0,
			probability INT NOT NULL DEFAULT 0,
			expected_close DATETIME NULL,
			owner_id VARCHAR(36) NULL,
			closed_at DATETIME NULL,
			created_date DATETIME NOT NULL,
			last_modified_date DATETIME NOT NULL,
			KEY idx_opps_client (client_id),
			KEY idx_opps_stage (stage)
		)`},
	{constants.TableProposal, `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			number VARCHAR(32) NOT NULL,
			client_id VARCHAR(36) NOT NULL,
			opportunity_id VARCHAR(36) NULL,
			status VARCHAR(32) NOT NULL DEFAULT 'draft',
			valid_until DATETIME NULL,
			total_amount DOUBLE NOT NULL DEFAULT 0,
			created_date DATETIME NOT NULL,
			last_modified_date DATETIME NOT NULL,
			UNIQUE KEY uk_proposals_number (number),
			KEY idx_proposals_client (client_id)
		)`},
	{constants.TableProposalItem, `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			proposal_id VARCHAR(36) NOT NULL,
			standard_id VARCHAR(36) NULL,
			service VARCHAR(255) NOT NULL,
			amount DOUBLE NOT NULL DEFAULT 0,
			KEY idx_propitems_proposal (proposal_id)
		)`},
	{constants.TableContract, `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			number VARCHAR(32) NOT NULL,
			client_id VARCHAR(36) NOT NULL,
			opportunity_id VARCHAR(36) NULL,
			status VARCHAR(32) NOT NULL DEFAULT 'draft',
			start_date DATETIME NULL,
			end_date DATETIME NULL,
			signed_date DATETIME NULL,
			total_value DOUBLE NOT NULL DEFAULT 0,
			created_date DATETIME NOT NULL,
			last_modified_date DATETIME NOT NULL,
			UNIQUE KEY uk_contracts_number (number),
			KEY idx_contracts_client (client_id)
		)`},
	{constants.TableContractFee, `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			contract_id VARCHAR(36) NOT NULL,
			standard_id VARCHAR(36) NULL,
			year INT NOT NULL DEFAULT 1,
			amount DOUBLE NOT NULL DEFAULT 0,
			KEY idx_fees_contract (contract_id)
		)`},
	{constants.TableEmployee, `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			number VARCHAR(32) NOT NULL,
			user_id VARCHAR(36) NULL,
			first_name VARCHAR(128) NOT NULL,
			last_name VARCHAR(128) NOT NULL,
			email VARCHAR(255) NOT NULL,
			phone VARCHAR(64) NULL,
			position VARCHAR(128) NULL,
			department VARCHAR(128) NULL,
			hire_date DATETIME NULL,
			base_salary DOUBLE NOT NULL DEFAULT 0,
			status VARCHAR(32) NOT NULL DEFAULT 'active',
			qualifications TEXT NULL,
			created_date DATETIME NOT NULL,
			last_modified_date DATETIME NOT NULL,
			UNIQUE KEY uk_employees_number (number),
			UNIQUE KEY uk_employees_email (email)
		)`},
	{constants.TablePayroll, `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			employee_id VARCHAR(36) NOT NULL,
			period VARCHAR(7) NOT NULL,
			base_salary DOUBLE NOT NULL DEFAULT 0,
			gross DOUBLE NOT NULL DEFAULT 0,
			deductions DOUBLE NOT NULL DEFAULT 0,
			net DOUBLE NOT NULL DEFAULT 0,
			status VARCHAR(32) NOT NULL DEFAULT 'draft',
			approved_by VARCHAR(36) NULL,
			approved_at DATETIME NULL,
			paid_at DATETIME NULL,
			created_date DATETIME NOT NULL,
			last_modified_date DATETIME NOT NULL,
			UNIQUE KEY uk_payroll_employee_period (employee_id, period)
		)`},
	{constants.TablePayrollItem, `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			payroll_id VARCHAR(36) NOT NULL,
			type VARCHAR(32) NOT NULL,
			label VARCHAR(255) NOT NULL,
			amount DOUBLE NOT NULL DEFAULT 0,
			KEY idx_payrollitems_run (payroll_id)
		)`},
	{constants.TableTask, `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			description TEXT NULL,
			assignee_id VARCHAR(36) NULL,
			entity_type VARCHAR(32) NULL,
			entity_id VARCHAR(36) NULL,
			priority VARCHAR(16) NOT NULL DEFAULT 'medium',
			status VARCHAR(32) NOT NULL DEFAULT 'todo',
			due_date DATETIME NULL,
			completed_at DATETIME NULL,
			created_by VARCHAR(36) NULL,
			created_date DATETIME NOT NULL,
			last_modified_date DATETIME NOT NULL,
			KEY idx_tasks_assignee (assignee_id),
			KEY idx_tasks_status (status)
		)`},
	{constants.TableDocument, `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			category VARCHAR(64) NULL,
			entity_type VARCHAR(32) NULL,
			entity_id VARCHAR(36) NULL,
			storage_path VARCHAR(512) NOT NULL,
			mime_type VARCHAR(128) NULL,
			size_bytes BIGINT NOT NULL DEFAULT 0,
			uploaded_by VARCHAR(36) NULL,
			created_date DATETIME NOT NULL,
			KEY idx_documents_entity (entity_type, entity_id)
		)`},
	{constants.TablePipeline, `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			number VARCHAR(32) NOT NULL,
			client_id VARCHAR(36) NOT NULL,
			standard_id VARCHAR(36) NOT NULL,
			stage VARCHAR(32) NOT NULL DEFAULT 'lead',
			progress INT NOT NULL DEFAULT 0,
			lead_id VARCHAR(36) NULL,
			opportunity_id VARCHAR(36) NULL,
			contract_id VARCHAR(36) NULL,
			audit_id VARCHAR(36) NULL,
			certification_id VARCHAR(36) NULL,
			stage_entered_at DATETIME NOT NULL,
			surveillance_due DATETIME NULL,
			created_date DATETIME NOT NULL,
			last_modified_date DATETIME NOT NULL,
			UNIQUE KEY uk_pipelines_number (number),
			KEY idx_pipelines_client (client_id),
			KEY idx_pipelines_stage (stage)
		)`},
	{constants.TablePipelineTransition, `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			pipeline_id VARCHAR(36) NOT NULL,
			from_stage VARCHAR(32) NOT NULL,
			to_stage VARCHAR(32) NOT NULL,
			actor_id VARCHAR(36) NULL,
			note TEXT NULL,
			created_date DATETIME NOT NULL,
			KEY idx_transitions_pipeline (pipeline_id)
		)`},
	{constants.TablePipelineMilestone, `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			pipeline_id VARCHAR(36) NOT NULL,
			stage VARCHAR(32) NOT NULL,
			title VARCHAR(255) NOT NULL,
			status VARCHAR(32) NOT NULL DEFAULT 'pending',
			due_date DATETIME NULL,
			completed_at DATETIME NULL,
			created_date DATETIME NOT NULL,
			KEY idx_milestones_pipeline (pipeline_id),
			KEY idx_milestones_status (status)
		)`},
	{constants.TableScheduledJob, `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			cron_expr VARCHAR(64) NOT NULL,
			is_running BOOLEAN NOT NULL DEFAULT FALSE,
			last_run_at DATETIME NULL,
			next_run_at DATETIME NULL,
			last_error TEXT NULL
		)`},
}

// InitializeSchema creates every table the repositories touch. Statements
// are idempotent, so re-running on an existing database is safe.
func InitializeSchema(db *database.Connection) error {
	log.Println("🔧 Initializing database schema...")

	for _, t := range ddl {
		if _, err := db.DB().Exec(fmt.Sprintf(t.stmt, t.table)); err != nil {
			return fmt.Errorf("failed to create table %s: %w", t.table, err)
		}
	}

	log.Printf("✅ Schema ready (%d tables)", len(ddl))
	return nil
}
