package models

import "time"

// Pipeline tracks one certification engagement end to end. The stage value
// is owned by the stage machine in internal/domain/pipeline; links fill in
// as the engagement produces records.
type Pipeline struct {
	ID              string     `json:"id"`
	Number          string     `json:"number"` // PL-%05d
	ClientID        *string    `json:"clientId,omitempty"`
	StandardID      *string    `json:"standardId,omitempty"`
	Stage           string     `json:"stage"`
	Progress        int        `json:"progress"` // derived weight, stored for dashboard queries
	LeadID          *string    `json:"leadId,omitempty"`
	OpportunityID   *string    `json:"opportunityId,omitempty"`
	ContractID      *string    `json:"contractId,omitempty"`
	AuditID         *string    `json:"auditId,omitempty"` // most recent linked audit
	CertificationID *string    `json:"certificationId,omitempty"`
	StageEnteredAt  time.Time  `json:"stageEnteredAt"`
	SurveillanceDue *time.Time `json:"surveillanceDue,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// PipelineTransition is the log row for one committed stage progression.
type PipelineTransition struct {
	ID         string    `json:"id"`
	PipelineID string    `json:"pipelineId"`
	FromStage  string    `json:"fromStage"`
	ToStage    string    `json:"toStage"`
	ActorID    string    `json:"actorId"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Milestone statuses.
const (
	MilestoneStatusPending = "pending"
	MilestoneStatusDone    = "done"
	MilestoneStatusOverdue = "overdue"
)

// PipelineMilestone is an auto-created follow-up for a stage entry
// (e.g. "Schedule stage 1 audit" when entering audit_planned).
type PipelineMilestone struct {
	ID          string     `json:"id"`
	PipelineID  string     `json:"pipelineId"`
	Stage       string     `json:"stage"`
	Title       string     `json:"title"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// PipelineStageStat is one row of the per-stage aggregate.
type PipelineStageStat struct {
	Stage string  `json:"stage"`
	Count int     `json:"count"`
	Value float64 `json:"value"` // summed opportunity/contract value in the stage
}

// PipelineBoardEntry is one card on the pipeline board view.
type PipelineBoardEntry struct {
	PipelineID   string  `json:"pipelineId"`
	Number       string  `json:"number"`
	ClientName   string  `json:"clientName,omitempty"`
	StandardCode string  `json:"standardCode,omitempty"`
	Stage        string  `json:"stage"`
	Progress     int     `json:"progress"`
	DaysInStage  int     `json:"daysInStage"`
	Value        float64 `json:"value"`
}
