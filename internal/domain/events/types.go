package events

// EventType identifies a domain event on the in-process bus.
type EventType string

const (
	// LeadConverted fires when a lead becomes a client + opportunity.
	LeadConverted EventType = "lead.converted"
	// OpportunityWon fires when an opportunity is marked won.
	OpportunityWon EventType = "opportunity.won"
	// ContractActivated fires when a contract moves to active.
	ContractActivated EventType = "contract.activated"
	// AuditScheduled fires when an audit gets a confirmed date.
	AuditScheduled EventType = "audit.scheduled"
	// AuditStarted fires when an audit moves to in_progress.
	AuditStarted EventType = "audit.started"
	// AuditCompleted fires when an audit is completed.
	AuditCompleted EventType = "audit.completed"
	// CertificationIssued fires when a certificate is issued or renewed.
	CertificationIssued EventType = "certification.issued"
	// PipelineAdvanced fires after a pipeline stage progression commits.
	PipelineAdvanced EventType = "pipeline.advanced"
)

// LeadConvertedPayload carries the records created by a lead conversion.
type LeadConvertedPayload struct {
	LeadID        string `json:"leadId"`
	ClientID      string `json:"clientId"`
	OpportunityID string `json:"opportunityId"`
	ActorID       string `json:"actorId"`
}

// OpportunityWonPayload identifies the opportunity that closed.
type OpportunityWonPayload struct {
	OpportunityID string `json:"opportunityId"`
	ClientID      string `json:"clientId"`
	ActorID       string `json:"actorId"`
}

// ContractActivatedPayload identifies the contract that went active.
type ContractActivatedPayload struct {
	ContractID string `json:"contractId"`
	ClientID   string `json:"clientId"`
	ActorID    string `json:"actorId"`
}

// AuditEventPayload is shared by the audit lifecycle events.
type AuditEventPayload struct {
	AuditID   string `json:"auditId"`
	ClientID  string `json:"clientId"`
	AuditType string `json:"auditType"`
	ActorID   string `json:"actorId"`
}

// CertificationIssuedPayload identifies the issued certificate.
type CertificationIssuedPayload struct {
	CertificationID string `json:"certificationId"`
	ClientID        string `json:"clientId"`
	StandardID      string `json:"standardId"`
	ActorID         string `json:"actorId"`
}

// PipelineAdvancedPayload records a committed stage progression.
type PipelineAdvancedPayload struct {
	PipelineID string `json:"pipelineId"`
	FromStage  string `json:"fromStage"`
	ToStage    string `json:"toStage"`
	ActorID    string `json:"actorId"`
}
