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
	"github.com/certibase/backend/pkg/utils"
)

// LeadService manages leads and opportunities through the front half of the
// business development funnel.
type LeadService struct {
	leads    *persistence.LeadRepository
	clients  *ClientService
	eventBus *EventBus
}

func NewLeadService(leads *persistence.LeadRepository, clients *ClientService, eventBus *EventBus) *LeadService {
	return &LeadService{
		leads:    leads,
		clients:  clients,
		eventBus: eventBus,
	}
}

// Leads

// LeadRequest carries a lead create/update.
type LeadRequest struct {
	CompanyName    string  `json:"companyName" binding:"required"`
	ContactName    string  `json:"contactName"`
	ContactEmail   string  `json:"contactEmail"`
	ContactPhone   string  `json:"contactPhone"`
	Source         string  `json:"source"`
	StandardID     *string `json:"standardId"`
	EstimatedValue float64 `json:"estimatedValue"`
	OwnerID        *string `json:"ownerId"`
	Notes          string  `json:"notes"`
}

func (s *LeadService) CreateLead(ctx context.Context, req LeadRequest) (*models.Lead, error) {
	lead := &models.Lead{
		ID:             utils.GenerateID(),
		CompanyName:    req.CompanyName,
		ContactName:    req.ContactName,
		ContactEmail:   req.ContactEmail,
		ContactPhone:   req.ContactPhone,
		Source:         req.Source,
		Status:         models.LeadStatusNew,
		StandardID:     req.StandardID,
		EstimatedValue: req.EstimatedValue,
		OwnerID:        req.OwnerID,
		Notes:          req.Notes,
	}
	if err := s.leads.Insert(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}
	log.Printf("🌱 Lead created: %s", lead.CompanyName)
	return lead, nil
}

func (s *LeadService) GetLead(ctx context.Context, id string) (*models.Lead, error) {
	lead, err := s.leads.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, errors.NewNotFoundError("lead", id)
	}
	return lead, nil
}

func (s *LeadService) ListLeads(ctx context.Context, status, source string, limit, offset int) ([]*models.Lead, error) {
	return s.leads.List(ctx, status, source, normalizeLimit(limit), offset)
}

// UpdateLeadRequest carries the mutable lead fields.
type UpdateLeadRequest struct {
	CompanyName    *string  `json:"companyName"`
	ContactName    *string  `json:"contactName"`
	ContactEmail   *string  `json:"contactEmail"`
	ContactPhone   *string  `json:"contactPhone"`
	Source         *string  `json:"source"`
	Status         *string  `json:"status"`
	StandardID     *string  `json:"standardId"`
	EstimatedValue *float64 `json:"estimatedValue"`
	OwnerID        *string  `json:"ownerId"`
	Notes          *string  `json:"notes"`
}

func (s *LeadService) UpdateLead(ctx context.Context, id string, req UpdateLeadRequest) (*models.Lead, error) {
	lead, err := s.GetLead(ctx, id)
	if err != nil {
		return nil, err
	}
	if lead.Status == models.LeadStatusConverted {
		return nil, errors.NewValidationError("status", "Converted leads are read-only")
	}

	if req.CompanyName != nil {
		lead.CompanyName = *req.CompanyName
	}
	if req.ContactName != nil {
		lead.ContactName = *req.ContactName
	}
	if req.ContactEmail != nil {
		lead.ContactEmail = *req.ContactEmail
	}
	if req.ContactPhone != nil {
		lead.ContactPhone = *req.ContactPhone
	}
	if req.Source != nil {
		lead.Source = *req.Source
	}
	if req.Status != nil {
		switch *req.Status {
		case models.LeadStatusNew, models.LeadStatusContacted, models.LeadStatusQualified, models.LeadStatusLost:
			lead.Status = *req.Status
		case models.LeadStatusConverted:
			return nil, errors.NewValidationError("status", "Use the convert operation to convert a lead")
		default:
			return nil, errors.NewValidationError("status", "Unknown lead status: "+*req.Status)
		}
	}
	if req.StandardID != nil {
		lead.StandardID = req.StandardID
	}
	if req.EstimatedValue != nil {
		lead.EstimatedValue = *req.EstimatedValue
	}
	if req.OwnerID != nil {
		lead.OwnerID = req.OwnerID
	}
	if req.Notes != nil {
		lead.Notes = *req.Notes
	}

	if err := s.leads.Update(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}
	return lead, nil
}

// ConvertLeadResult carries the records created by a conversion.
type ConvertLeadResult struct {
	Lead        *models.Lead        `json:"lead"`
	Client      *models.Client      `json:"client"`
	Opportunity *models.Opportunity `json:"opportunity"`
}

// ConvertLead turns a lead into a prospect client and an open opportunity.
// An existing client may be supplied to attach the opportunity to instead
// of creating a new one.
func (s *LeadService) ConvertLead(ctx context.Context, id, actorID, existingClientID string) (*ConvertLeadResult, error) {
	lead, err := s.GetLead(ctx, id)
	if err != nil {
		return nil, err
	}
	if lead.Status == models.LeadStatusConverted {
		return nil, errors.NewValidationError("status", "Lead is already converted")
	}
	if lead.Status == models.LeadStatusLost {
		return nil, errors.NewValidationError("status", "Lost leads cannot be converted")
	}

	var client *models.Client
	if existingClientID != "" {
		client, err = s.clients.GetClient(ctx, existingClientID)
		if err != nil {
			return nil, err
		}
	} else {
		client, err = s.clients.CreateClient(ctx, CreateClientRequest{
			Name:             lead.CompanyName,
			Status:           models.ClientStatusProspect,
			AccountManagerID: lead.OwnerID,
			Notes:            lead.Notes,
		})
		if err != nil {
			return nil, err
		}
		if lead.ContactName != "" {
			if _, err := s.clients.AddContact(ctx, client.ID, ContactRequest{
				Name:      lead.ContactName,
				Email:     lead.ContactEmail,
				Phone:     lead.ContactPhone,
				IsPrimary: true,
			}); err != nil {
				log.Printf("⚠️ Failed to carry lead contact to client %s: %v", client.ID, err)
			}
		}
	}

	opp := &models.Opportunity{
		ID:         utils.GenerateID(),
		Name:       lead.CompanyName + " certification",
		ClientID:   client.ID,
		LeadID:     &lead.ID,
		StandardID: lead.StandardID,
		Stage:      models.OppStageQualification,
		Value:      lead.EstimatedValue,
		OwnerID:    lead.OwnerID,
	}
	if err := s.leads.InsertOpportunity(ctx, opp); err != nil {
		return nil, fmt.Errorf("failed to create opportunity: %w", err)
	}

	now := time.Now()
	lead.Status = models.LeadStatusConverted
	lead.ConvertedAt = &now
	lead.ClientID = &client.ID
	if err := s.leads.Update(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to mark lead converted: %w", err)
	}

	s.eventBus.PublishAsync(events.LeadConverted, events.LeadConvertedPayload{
		LeadID:        lead.ID,
		ClientID:      client.ID,
		OpportunityID: opp.ID,
		ActorID:       actorID,
	})

	log.Printf("🤝 Lead converted: %s -> client %s, opportunity %s", lead.ID, client.Code, opp.ID)
	return &ConvertLeadResult{Lead: lead, Client: client, Opportunity: opp}, nil
}

// Opportunities

func (s *LeadService) GetOpportunity(ctx context.Context, id string) (*models.Opportunity, error) {
	opp, err := s.leads.GetOpportunity(ctx, id)
	if err != nil {
		return nil, err
	}
	if opp == nil {
		return nil, errors.NewNotFoundError("opportunity", id)
	}
	return opp, nil
}

func (s *LeadService) ListOpportunities(ctx context.Context, clientID, stage string, limit, offset int) ([]*models.Opportunity, error) {
	return s.leads.ListOpportunities(ctx, clientID, stage, normalizeLimit(limit), offset)
}

// UpdateOpportunityRequest carries the mutable opportunity fields.
type UpdateOpportunityRequest struct {
	Name          *string    `json:"name"`
	Stage         *string    `json:"stage"`
	Value         *float64   `json:"value"`
	Probability   *int       `json:"probability"`
	ExpectedClose *time.Time `json:"expectedClose"`
	StandardID    *string    `json:"standardId"`
	OwnerID       *string    `json:"ownerId"`
}

// UpdateOpportunity applies changes; moving to won or lost closes the deal
// and stamps the close time. Winning publishes the event that signs the
// engagement onward.
func (s *LeadService) UpdateOpportunity(ctx context.Context, id, actorID string, req UpdateOpportunityRequest) (*models.Opportunity, error) {
	opp, err := s.GetOpportunity(ctx, id)
	if err != nil {
		return nil, err
	}
	if opp.Stage == models.OppStageWon || opp.Stage == models.OppStageLost {
		return nil, errors.NewValidationError("stage", "Closed opportunities are read-only")
	}

	previousStage := opp.Stage

	if req.Name != nil {
		opp.Name = *req.Name
	}
	if req.Stage != nil {
		switch *req.Stage {
		case models.OppStageQualification, models.OppStageProposal, models.OppStageNegotiation,
			models.OppStageWon, models.OppStageLost:
			opp.Stage = *req.Stage
		default:
			return nil, errors.NewValidationError("stage", "Unknown opportunity stage: "+*req.Stage)
		}
	}
	if req.Value != nil {
		opp.Value = *req.Value
	}
	if req.Probability != nil {
		if *req.Probability < 0 || *req.Probability > 100 {
			return nil, errors.NewValidationError("probability", "Probability must be between 0 and 100")
		}
		opp.Probability = *req.Probability
	}
	if req.ExpectedClose != nil {
		opp.ExpectedClose = req.ExpectedClose
	}
	if req.StandardID != nil {
		opp.StandardID = req.StandardID
	}
	if req.OwnerID != nil {
		opp.OwnerID = req.OwnerID
	}

	if opp.Stage == models.OppStageWon || opp.Stage == models.OppStageLost {
		now := time.Now()
		opp.ClosedAt = &now
		if opp.Stage == models.OppStageWon {
			opp.Probability = 100
		} else {
			opp.Probability = 0
		}
	}

	if err := s.leads.UpdateOpportunity(ctx, opp); err != nil {
		return nil, fmt.Errorf("failed to update opportunity: %w", err)
	}

	if opp.Stage == models.OppStageWon && previousStage != models.OppStageWon {
		s.eventBus.PublishAsync(events.OpportunityWon, events.OpportunityWonPayload{
			OpportunityID: opp.ID,
			ClientID:      opp.ClientID,
			ActorID:       actorID,
		})
		log.Printf("🏆 Opportunity won: %s (%.2f)", opp.ID, opp.Value)
	}

	return opp, nil
}
