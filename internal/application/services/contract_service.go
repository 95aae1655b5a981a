package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/certibase/backend/internal/domain/events"
	"github.com/certibase/backend/internal/domain/models"
	"github.com/certibase/backend/internal/infrastructure/persistence"
	"github.com/certibase/backend/pkg/errors"
	"github.com/certibase/backend/pkg/template"
	"github.com/certibase/backend/pkg/utils"
)

// ContractService manages proposals and contracts, including their numbered
// sequences, line items and generated documents.
type ContractService struct {
	contracts *persistence.ContractRepository
	clients   *persistence.ClientRepository
	leads     *persistence.LeadRepository
	templates *persistence.TemplateRepository
	renderer  *template.Renderer
	eventBus  *EventBus
}

func NewContractService(
	contracts *persistence.ContractRepository,
	clients *persistence.ClientRepository,
	leads *persistence.LeadRepository,
	templates *persistence.TemplateRepository,
	eventBus *EventBus,
) *ContractService {
	return &ContractService{
		contracts: contracts,
		clients:   clients,
		leads:     leads,
		templates: templates,
		renderer:  template.NewRenderer(),
		eventBus:  eventBus,
	}
}

// Proposals

// ProposalItemRequest is one service line on a proposal.
type ProposalItemRequest struct {
	StandardID *string `json:"standardId"`
	Service    string  `json:"service" binding:"required"`
	Amount     float64 `json:"amount"`
}

// CreateProposalRequest carries a proposal create.
type CreateProposalRequest struct {
	ClientID      string                `json:"clientId" binding:"required"`
	OpportunityID *string               `json:"opportunityId"`
	ValidUntil    *time.Time            `json:"validUntil"`
	Items         []ProposalItemRequest `json:"items"`
}

// CreateProposal allocates the next PR number and inserts the proposal with
// its service lines. The total is the sum of the lines.
func (s *ContractService) CreateProposal(ctx context.Context, req CreateProposalRequest) (*models.Proposal, error) {
	client, err := s.clients.GetByID(ctx, req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if client == nil {
		return nil, errors.NewNotFoundError("client", req.ClientID)
	}
	if err := s.checkOpportunity(ctx, req.OpportunityID); err != nil {
		return nil, err
	}

	proposal := &models.Proposal{
		ID:            utils.GenerateID(),
		ClientID:      req.ClientID,
		OpportunityID: req.OpportunityID,
		Status:        models.ProposalStatusDraft,
		ValidUntil:    req.ValidUntil,
	}
	for _, item := range req.Items {
		proposal.TotalAmount += item.Amount
	}

	var lastErr error
	for attempt := 0; attempt < numberAllocRetries; attempt++ {
		seq, err := s.contracts.NextProposalSeq(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to allocate proposal number: %w", err)
		}
		proposal.Number = fmt.Sprintf("PR-%05d", seq+1)

		err = s.contracts.InsertProposal(ctx, proposal)
		if err == nil {
			lastErr = nil
			break
		}
		if !persistence.IsDuplicateKey(err) {
			return nil, fmt.Errorf("failed to create proposal: %w", err)
		}
		lastErr = err
	}
	if lastErr != nil {
		return nil, fmt.Errorf("failed to allocate proposal number after %d attempts: %w", numberAllocRetries, lastErr)
	}

	for _, item := range req.Items {
		line := &models.ProposalItem{
			ID:         utils.GenerateID(),
			ProposalID: proposal.ID,
			StandardID: item.StandardID,
			Service:    item.Service,
			Amount:     item.Amount,
		}
		if err := s.contracts.InsertProposalItem(ctx, line); err != nil {
			return nil, fmt.Errorf("failed to add proposal item: %w", err)
		}
		proposal.Items = append(proposal.Items, *line)
	}

	log.Printf("📄 Proposal created: %s for client %s", proposal.Number, client.Code)
	return proposal, nil
}

func (s *ContractService) GetProposal(ctx context.Context, id string) (*models.Proposal, error) {
	proposal, err := s.contracts.GetProposal(ctx, id)
	if err != nil {
		return nil, err
	}
	if proposal == nil {
		return nil, errors.NewNotFoundError("proposal", id)
	}
	items, err := s.contracts.ListProposalItems(ctx, id)
	if err != nil {
		return nil, err
	}
	proposal.Items = items
	return proposal, nil
}

func (s *ContractService) ListProposals(ctx context.Context, clientID, status string, limit, offset int) ([]*models.Proposal, error) {
	return s.contracts.ListProposals(ctx, clientID, status, normalizeLimit(limit), offset)
}

// UpdateProposalStatus drives draft -> sent -> accepted/rejected.
func (s *ContractService) UpdateProposalStatus(ctx context.Context, id, status string) (*models.Proposal, error) {
	proposal, err := s.GetProposal(ctx, id)
	if err != nil {
		return nil, err
	}

	valid := map[string][]string{
		models.ProposalStatusDraft: {models.ProposalStatusSent},
		models.ProposalStatusSent:  {models.ProposalStatusAccepted, models.ProposalStatusRejected},
	}
	allowed := false
	for _, next := range valid[proposal.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, errors.NewInvalidTransitionError("proposal", proposal.Status, status)
	}

	proposal.Status = status
	if err := s.contracts.UpdateProposal(ctx, proposal); err != nil {
		return nil, fmt.Errorf("failed to update proposal: %w", err)
	}
	return proposal, nil
}

// ReplaceProposalItems swaps the service lines of a draft proposal and
// recomputes the total.
func (s *ContractService) ReplaceProposalItems(ctx context.Context, id string, items []ProposalItemRequest) (*models.Proposal, error) {
	proposal, err := s.GetProposal(ctx, id)
	if err != nil {
		return nil, err
	}
	if proposal.Status != models.ProposalStatusDraft {
		return nil, errors.NewValidationError("status", "Only draft proposals can be edited")
	}

	if err := s.contracts.DeleteProposalItems(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to replace proposal items: %w", err)
	}

	proposal.Items = nil
	proposal.TotalAmount = 0
	for _, item := range items {
		line := &models.ProposalItem{
			ID:         utils.GenerateID(),
			ProposalID: id,
			StandardID: item.StandardID,
			Service:    item.Service,
			Amount:     item.Amount,
		}
		if err := s.contracts.InsertProposalItem(ctx, line); err != nil {
			return nil, fmt.Errorf("failed to add proposal item: %w", err)
		}
		proposal.Items = append(proposal.Items, *line)
		proposal.TotalAmount += item.Amount
	}

	if err := s.contracts.UpdateProposal(ctx, proposal); err != nil {
		return nil, fmt.Errorf("failed to update proposal total: %w", err)
	}
	return proposal, nil
}

// Contracts

// ContractFeeRequest is one per-standard per-year fee line.
type ContractFeeRequest struct {
	StandardID string  `json:"standardId" binding:"required"`
	Year       int     `json:"year" binding:"required"`
	Amount     float64 `json:"amount"`
}

// CreateContractRequest carries a contract create.
type CreateContractRequest struct {
	ClientID      string               `json:"clientId" binding:"required"`
	OpportunityID *string              `json:"opportunityId"`
	StartDate     *time.Time           `json:"startDate"`
	EndDate       *time.Time           `json:"endDate"`
	Fees          []ContractFeeRequest `json:"fees"`
}

// CreateContract allocates the next CT number and inserts the contract in
// draft with its fee schedule.
func (s *ContractService) CreateContract(ctx context.Context, req CreateContractRequest) (*models.Contract, error) {
	client, err := s.clients.GetByID(ctx, req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if client == nil {
		return nil, errors.NewNotFoundError("client", req.ClientID)
	}
	if err := s.checkOpportunity(ctx, req.OpportunityID); err != nil {
		return nil, err
	}

	contract := &models.Contract{
		ID:            utils.GenerateID(),
		ClientID:      req.ClientID,
		OpportunityID: req.OpportunityID,
		Status:        models.ContractStatusDraft,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
	}
	for _, fee := range req.Fees {
		contract.TotalValue += fee.Amount
	}

	var lastErr error
	for attempt := 0; attempt < numberAllocRetries; attempt++ {
		seq, err := s.contracts.NextContractSeq(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to allocate contract number: %w", err)
		}
		contract.Number = fmt.Sprintf("CT-%05d", seq+1)

		err = s.contracts.InsertContract(ctx, contract)
		if err == nil {
			lastErr = nil
			break
		}
		if !persistence.IsDuplicateKey(err) {
			return nil, fmt.Errorf("failed to create contract: %w", err)
		}
		lastErr = err
	}
	if lastErr != nil {
		return nil, fmt.Errorf("failed to allocate contract number after %d attempts: %w", numberAllocRetries, lastErr)
	}

	for _, fee := range req.Fees {
		if fee.Year < 1 {
			return nil, errors.NewValidationError("year", "Fee year must be 1 or greater")
		}
		line := &models.ContractFee{
			ID:         utils.GenerateID(),
			ContractID: contract.ID,
			StandardID: fee.StandardID,
			Year:       fee.Year,
			Amount:     fee.Amount,
		}
		if err := s.contracts.InsertFee(ctx, line); err != nil {
			return nil, fmt.Errorf("failed to add contract fee: %w", err)
		}
		contract.Fees = append(contract.Fees, *line)
	}

	log.Printf("📝 Contract created: %s for client %s", contract.Number, client.Code)
	return contract, nil
}

func (s *ContractService) GetContract(ctx context.Context, id string) (*models.Contract, error) {
	contract, err := s.contracts.GetContract(ctx, id)
	if err != nil {
		return nil, err
	}
	if contract == nil {
		return nil, errors.NewNotFoundError("contract", id)
	}
	fees, err := s.contracts.ListFees(ctx, id)
	if err != nil {
		return nil, err
	}
	contract.Fees = fees
	return contract, nil
}

func (s *ContractService) ListContracts(ctx context.Context, clientID, status string, limit, offset int) ([]*models.Contract, error) {
	return s.contracts.ListContracts(ctx, clientID, status, normalizeLimit(limit), offset)
}

// SignContractRequest stamps the signature date on activation.
type SignContractRequest struct {
	SignedDate *time.Time `json:"signedDate"`
}

// ActivateContract moves a draft contract to active, stamps the signature
// date and publishes the event that advances the engagement.
func (s *ContractService) ActivateContract(ctx context.Context, id, actorID string, req SignContractRequest) (*models.Contract, error) {
	contract, err := s.GetContract(ctx, id)
	if err != nil {
		return nil, err
	}
	if contract.Status != models.ContractStatusDraft {
		return nil, errors.NewInvalidTransitionError("contract", contract.Status, models.ContractStatusActive)
	}

	now := time.Now()
	signed := now
	if req.SignedDate != nil {
		signed = *req.SignedDate
	}

	contract.Status = models.ContractStatusActive
	contract.SignedDate = &signed
	if contract.StartDate == nil {
		contract.StartDate = &signed
	}
	if contract.EndDate == nil {
		end := signed.AddDate(3, 0, 0)
		contract.EndDate = &end
	}

	if err := s.contracts.UpdateContract(ctx, contract); err != nil {
		return nil, fmt.Errorf("failed to activate contract: %w", err)
	}

	s.eventBus.PublishAsync(events.ContractActivated, events.ContractActivatedPayload{
		ContractID: contract.ID,
		ClientID:   contract.ClientID,
		ActorID:    actorID,
	})

	log.Printf("✍️ Contract activated: %s", contract.Number)
	return contract, nil
}

// CloseContract moves an active contract to completed or terminated.
func (s *ContractService) CloseContract(ctx context.Context, id, status string) (*models.Contract, error) {
	if status != models.ContractStatusCompleted && status != models.ContractStatusTerminated {
		return nil, errors.NewValidationError("status", "Close status must be completed or terminated")
	}

	contract, err := s.GetContract(ctx, id)
	if err != nil {
		return nil, err
	}
	if contract.Status != models.ContractStatusActive {
		return nil, errors.NewInvalidTransitionError("contract", contract.Status, status)
	}

	contract.Status = status
	if err := s.contracts.UpdateContract(ctx, contract); err != nil {
		return nil, fmt.Errorf("failed to close contract: %w", err)
	}
	return contract, nil
}

// GenerateDocument renders the active template for a proposal or contract.
func (s *ContractService) GenerateDocument(ctx context.Context, kind, id string) (string, error) {
	var env map[string]interface{}

	switch kind {
	case models.TemplateKindProposal:
		proposal, err := s.GetProposal(ctx, id)
		if err != nil {
			return "", err
		}
		env = map[string]interface{}{
			"number":       proposal.Number,
			"status":       proposal.Status,
			"total_amount": proposal.TotalAmount,
		}
		if proposal.ValidUntil != nil {
			env["valid_until"] = *proposal.ValidUntil
		}
		s.addClientEnv(ctx, env, proposal.ClientID)
	case models.TemplateKindContract:
		contract, err := s.GetContract(ctx, id)
		if err != nil {
			return "", err
		}
		env = map[string]interface{}{
			"number":      contract.Number,
			"status":      contract.Status,
			"total_value": contract.TotalValue,
		}
		if contract.StartDate != nil {
			env["start_date"] = *contract.StartDate
		}
		if contract.EndDate != nil {
			env["end_date"] = *contract.EndDate
		}
		if contract.SignedDate != nil {
			env["signed_date"] = *contract.SignedDate
		}
		s.addClientEnv(ctx, env, contract.ClientID)
	default:
		return "", errors.NewValidationError("kind", "Unknown document kind: "+kind)
	}

	tpl, err := s.templates.GetActiveByKind(ctx, kind)
	if err != nil {
		return "", fmt.Errorf("database error: %w", err)
	}
	if tpl == nil {
		return "", errors.NewNotFoundError("document template", kind)
	}

	doc, err := s.renderer.Render(tpl.Body, env)
	if err != nil {
		return "", fmt.Errorf("failed to render document: %w", err)
	}
	return doc, nil
}

func (s *ContractService) checkOpportunity(ctx context.Context, opportunityID *string) error {
	if opportunityID == nil {
		return nil
	}
	opp, err := s.leads.GetOpportunity(ctx, *opportunityID)
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if opp == nil {
		return errors.NewNotFoundError("opportunity", *opportunityID)
	}
	return nil
}

func (s *ContractService) addClientEnv(ctx context.Context, env map[string]interface{}, clientID string) {
	client, err := s.clients.GetByID(ctx, clientID)
	if err != nil || client == nil {
		return
	}
	env["client_name"] = client.Name
	env["client_code"] = client.Code
	env["client_address"] = client.Address
	env["client_city"] = client.City
	env["client_country"] = client.Country
}
