package models

import "time"

// Checklist response results.
const (
	ResponseConformity    = "conformity"
	ResponseMinorNC       = "minor_nc"
	ResponseMajorNC       = "major_nc"
	ResponseObservation   = "observation"
	ResponseNotApplicable = "not_applicable"
)

// ChecklistTemplate is a reusable audit checklist for one standard.
type ChecklistTemplate struct {
	ID         string    `json:"id"`
	StandardID string    `json:"standardId"`
	Name       string    `json:"name"`
	Version    string    `json:"version,omitempty"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ChecklistItem is one requirement row in a template.
type ChecklistItem struct {
	ID          string  `json:"id"`
	TemplateID  string  `json:"templateId"`
	Position    int     `json:"position"`
	ClauseRef   string  `json:"clauseRef"`
	Requirement string  `json:"requirement"`
	Guidance    string  `json:"guidance,omitempty"`
	Weight      float64 `json:"weight"` // contribution to the compliance score
}

// ChecklistResponse is an auditor's answer for one item on one audit.
// Unique per (audit, item): re-submitting overwrites the prior answer.
type ChecklistResponse struct {
	ID          string    `json:"id"`
	AuditID     string    `json:"auditId"`
	ItemID      string    `json:"itemId"`
	Result      string    `json:"result"`
	Evidence    string    `json:"evidence,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	RespondedBy string    `json:"respondedBy"`
	RespondedAt time.Time `json:"respondedAt"`
}

// ComplianceClauseScore is a per-clause line in the compliance breakdown.
type ComplianceClauseScore struct {
	ClauseRef string  `json:"clauseRef"`
	Answered  int     `json:"answered"`
	Conform   int     `json:"conform"`
	Score     float64 `json:"score"` // weighted conformity percentage
}

// ComplianceSummary is the weighted compliance result for an audit.
type ComplianceSummary struct {
	AuditID      string                  `json:"auditId"`
	TotalItems   int                     `json:"totalItems"`
	Answered     int                     `json:"answered"`
	Progress     float64                 `json:"progress"` // answered / applicable items
	Score        float64                 `json:"score"`    // weighted conformity percentage
	ByResult     map[string]int          `json:"byResult"`
	ClauseScores []ComplianceClauseScore `json:"clauseScores"`
}
