package constants

// Table names. Single source of truth for every SQL statement in the
// repository layer; never inline a table name in a query.
const (
	TableUser                 = "users"
	TableSession              = "sessions"
	TableClient               = "clients"
	TableClientContact        = "client_contacts"
	TableISOStandard          = "iso_standards"
	TableAudit                = "audits"
	TableAuditFinding         = "audit_findings"
	TableChecklistTemplate    = "checklist_templates"
	TableChecklistItem        = "checklist_items"
	TableChecklistResponse    = "checklist_responses"
	TableCertification        = "certifications"
	TableCertificationHistory = "certification_history"
	TableDocumentTemplate     = "document_templates"
	TableLead                 = "leads"
	TableOpportunity          = "opportunities"
	TableProposal             = "proposals"
	TableProposalItem         = "proposal_items"
	TableContract             = "contracts"
	TableContractFee          = "contract_fees"
	TableEmployee             = "employees"
	TablePayroll              = "payroll_runs"
	TablePayrollItem          = "payroll_items"
	TableTask                 = "tasks"
	TableDocument             = "documents"
	TablePipeline             = "pipelines"
	TablePipelineTransition   = "pipeline_transitions"
	TablePipelineMilestone    = "pipeline_milestones"
	TableScheduledJob         = "scheduled_jobs"
)
