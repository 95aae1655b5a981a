package models

import "time"

// Lead statuses.
const (
	LeadStatusNew       = "new"
	LeadStatusContacted = "contacted"
	LeadStatusQualified = "qualified"
	LeadStatusConverted = "converted"
	LeadStatusLost      = "lost"
)

// Lead is an unqualified inbound or prospected company.
type Lead struct {
	ID             string     `json:"id"`
	CompanyName    string     `json:"companyName"`
	ContactName    string     `json:"contactName,omitempty"`
	ContactEmail   string     `json:"contactEmail,omitempty"`
	ContactPhone   string     `json:"contactPhone,omitempty"`
	Source         string     `json:"source,omitempty"` // referral, website, event, cold_call
	Status         string     `json:"status"`
	StandardID     *string    `json:"standardId,omitempty"` // standard of interest
	EstimatedValue float64    `json:"estimatedValue,omitempty"`
	OwnerID        *string    `json:"ownerId,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	ConvertedAt    *time.Time `json:"convertedAt,omitempty"`
	ClientID       *string    `json:"clientId,omitempty"` // set on conversion
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Opportunity stages.
const (
	OppStageQualification = "qualification"
	OppStageProposal      = "proposal"
	OppStageNegotiation   = "negotiation"
	OppStageWon           = "won"
	OppStageLost          = "lost"
)

// Opportunity is a qualified deal in pursuit.
type Opportunity struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	ClientID      string     `json:"clientId"`
	LeadID        *string    `json:"leadId,omitempty"`
	StandardID    *string    `json:"standardId,omitempty"`
	Stage         string     `json:"stage"`
	Value         float64    `json:"value"`
	Probability   int        `json:"probability"` // 0-100
	ExpectedClose *time.Time `json:"expectedClose,omitempty"`
	OwnerID       *string    `json:"ownerId,omitempty"`
	ClosedAt      *time.Time `json:"closedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Proposal statuses.
const (
	ProposalStatusDraft    = "draft"
	ProposalStatusSent     = "sent"
	ProposalStatusAccepted = "accepted"
	ProposalStatusRejected = "rejected"
)

// Proposal is a priced offer for certification services.
type Proposal struct {
	ID            string         `json:"id"`
	Number        string         `json:"number"` // PR-%05d
	ClientID      string         `json:"clientId"`
	OpportunityID *string        `json:"opportunityId,omitempty"`
	Status        string         `json:"status"`
	ValidUntil    *time.Time     `json:"validUntil,omitempty"`
	TotalAmount   float64        `json:"totalAmount"`
	Items         []ProposalItem `json:"items,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// ProposalItem is one service line on a proposal.
type ProposalItem struct {
	ID         string  `json:"id"`
	ProposalID string  `json:"proposalId"`
	StandardID *string `json:"standardId,omitempty"`
	Service    string  `json:"service"`
	Amount     float64 `json:"amount"`
}

// Contract statuses.
const (
	ContractStatusDraft      = "draft"
	ContractStatusActive     = "active"
	ContractStatusCompleted  = "completed"
	ContractStatusTerminated = "terminated"
)

// Contract is a signed certification services agreement.
type Contract struct {
	ID            string        `json:"id"`
	Number        string        `json:"number"` // CT-%05d
	ClientID      string        `json:"clientId"`
	OpportunityID *string       `json:"opportunityId,omitempty"`
	Status        string        `json:"status"`
	StartDate     *time.Time    `json:"startDate,omitempty"`
	EndDate       *time.Time    `json:"endDate,omitempty"`
	SignedDate    *time.Time    `json:"signedDate,omitempty"`
	TotalValue    float64       `json:"totalValue"`
	Fees          []ContractFee `json:"fees,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// ContractFee is the per-standard per-year fee line.
type ContractFee struct {
	ID         string  `json:"id"`
	ContractID string  `json:"contractId"`
	StandardID string  `json:"standardId"`
	Year       int     `json:"year"` // 1-based year within the cycle
	Amount     float64 `json:"amount"`
}
