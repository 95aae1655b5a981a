package models

import "time"

// Certification statuses. Active/expiring_soon/expired are derived from the
// expiry date; suspended/revoked/withdrawn are explicit and never overwritten
// by derivation.
const (
	CertStatusActive       = "active"
	CertStatusExpiringSoon = "expiring_soon"
	CertStatusExpired      = "expired"
	CertStatusSuspended    = "suspended"
	CertStatusRevoked      = "revoked"
	CertStatusWithdrawn    = "withdrawn"
)

// Certification history actions.
const (
	CertActionIssued      = "issued"
	CertActionRenewed     = "renewed"
	CertActionSuspended   = "suspended"
	CertActionRevoked     = "revoked"
	CertActionReactivated = "reactivated"
	CertActionGenerated   = "document_generated"
)

// Certification is an issued certificate for a client and standard.
type Certification struct {
	ID                string     `json:"id"`
	CertificateNumber string     `json:"certificateNumber"` // CERT-YYYY-NNNN
	ClientID          string     `json:"clientId"`
	StandardID        string     `json:"standardId"`
	PipelineID        *string    `json:"pipelineId,omitempty"`
	Status            string     `json:"status"`
	IssueDate         time.Time  `json:"issueDate"`
	ExpiryDate        time.Time  `json:"expiryDate"`
	Scope             string     `json:"scope,omitempty"`
	AccreditationBody string     `json:"accreditationBody,omitempty"`
	LastSurveillance  *time.Time `json:"lastSurveillance,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// CertificationHistory is the audit trail row for lifecycle actions.
type CertificationHistory struct {
	ID              string    `json:"id"`
	CertificationID string    `json:"certificationId"`
	Action          string    `json:"action"`
	Reason          string    `json:"reason,omitempty"`
	ActorID         string    `json:"actorId"`
	CreatedAt       time.Time `json:"createdAt"`
}

// DocumentTemplate holds a renderable document body with {{placeholders}}
// for certificates, contracts and proposals.
type DocumentTemplate struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"` // certificate | contract | proposal
	Body      string    `json:"body"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Template kinds.
const (
	TemplateKindCertificate = "certificate"
	TemplateKindContract    = "contract"
	TemplateKindProposal    = "proposal"
)

// CertificationStats aggregates the certificate register.
type CertificationStats struct {
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"byStatus"`
	ByStandard map[string]int `json:"byStandard"`
}
