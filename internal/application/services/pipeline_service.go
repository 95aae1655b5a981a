package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/certibase/backend/internal/domain/events"
	"github.com/certibase/backend/internal/domain/models"
	"github.com/certibase/backend/internal/domain/pipeline"
	"github.com/certibase/backend/internal/infrastructure/persistence"
	"github.com/certibase/backend/pkg/constants"
	"github.com/certibase/backend/pkg/errors"
	"github.com/certibase/backend/pkg/utils"
)

// systemActor attributes stage progressions committed by event handlers
// and scheduled jobs rather than a signed-in user.
const systemActor = "system"

// PipelineService tracks every certification engagement through the stage
// machine. Stages advance either explicitly through AdvanceStage or
// automatically when domain events commit elsewhere in the system.
type PipelineService struct {
	pipelines      *persistence.PipelineRepository
	audits         *persistence.AuditRepository
	contracts      *persistence.ContractRepository
	certifications *persistence.CertificationRepository
	leads          *persistence.LeadRepository
	machine        *pipeline.StageMachine
	eventBus       *EventBus
}

func NewPipelineService(
	pipelines *persistence.PipelineRepository,
	audits *persistence.AuditRepository,
	contracts *persistence.ContractRepository,
	certifications *persistence.CertificationRepository,
	leads *persistence.LeadRepository,
	eventBus *EventBus,
) *PipelineService {
	return &PipelineService{
		pipelines:      pipelines,
		audits:         audits,
		contracts:      contracts,
		certifications: certifications,
		leads:          leads,
		machine:        pipeline.NewStageMachine(),
		eventBus:       eventBus,
	}
}

// CreatePipelineRequest carries a manual pipeline create.
type CreatePipelineRequest struct {
	ClientID   *string `json:"clientId"`
	StandardID *string `json:"standardId"`
	LeadID     *string `json:"leadId"`
}

// CreatePipeline allocates the next PL number and opens an engagement at
// the lead stage.
func (s *PipelineService) CreatePipeline(ctx context.Context, req CreatePipelineRequest) (*models.Pipeline, error) {
	p := &models.Pipeline{
		ID:             utils.GenerateID(),
		ClientID:       req.ClientID,
		StandardID:     req.StandardID,
		LeadID:         req.LeadID,
		Stage:          string(pipeline.StageLead),
		Progress:       pipeline.Progress(pipeline.StageLead),
		StageEnteredAt: time.Now(),
	}

	var lastErr error
	for attempt := 0; attempt < numberAllocRetries; attempt++ {
		seq, err := s.pipelines.NextNumberSeq(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to allocate pipeline number: %w", err)
		}
		p.Number = fmt.Sprintf("PL-%05d", seq+1)

		err = s.pipelines.Insert(ctx, p)
		if err == nil {
			lastErr = nil
			break
		}
		if !persistence.IsDuplicateKey(err) {
			return nil, fmt.Errorf("failed to create pipeline: %w", err)
		}
		lastErr = err
	}
	if lastErr != nil {
		return nil, fmt.Errorf("failed to allocate pipeline number after %d attempts: %w", numberAllocRetries, lastErr)
	}

	log.Printf("🔄 Pipeline opened: %s", p.Number)
	return p, nil
}

func (s *PipelineService) GetPipeline(ctx context.Context, id string) (*models.Pipeline, error) {
	p, err := s.pipelines.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errors.NewNotFoundError("pipeline", id)
	}
	return p, nil
}

func (s *PipelineService) ListPipelines(ctx context.Context, clientID, stage string, limit, offset int) ([]*models.Pipeline, error) {
	if stage != "" && !s.machine.IsValid(pipeline.Stage(stage)) {
		return nil, errors.NewValidationError("stage", "Unknown pipeline stage: "+stage)
	}
	return s.pipelines.List(ctx, clientID, stage, normalizeLimit(limit), offset)
}

// ValidNextStages returns the stages the engagement may move to.
func (s *PipelineService) ValidNextStages(ctx context.Context, id string) ([]pipeline.Stage, error) {
	p, err := s.GetPipeline(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.machine.ValidNext(pipeline.Stage(p.Stage)), nil
}

// AdvanceStage commits a stage progression: validates it against the stage
// machine, stamps progress and stage entry, logs the transition, creates
// the follow-up milestone and publishes the advancement event.
func (s *PipelineService) AdvanceStage(ctx context.Context, id, actorID, target, note string) (*models.Pipeline, error) {
	p, err := s.GetPipeline(ctx, id)
	if err != nil {
		return nil, err
	}

	to := pipeline.Stage(target)
	if !s.machine.IsValid(to) {
		return nil, errors.NewValidationError("stage", "Unknown pipeline stage: "+target)
	}
	next, err := s.machine.Advance(pipeline.Stage(p.Stage), to)
	if err != nil {
		return nil, errors.NewInvalidTransitionError("pipeline", p.Stage, target)
	}

	return s.commitStage(ctx, p, next, actorID, note)
}

func (s *PipelineService) commitStage(ctx context.Context, p *models.Pipeline, to pipeline.Stage, actorID, note string) (*models.Pipeline, error) {
	from := p.Stage
	now := time.Now()

	p.Stage = string(to)
	p.Progress = pipeline.Progress(to)
	p.StageEnteredAt = now
	if to == pipeline.StageCertified || to == pipeline.StageSurveillance {
		due := now.AddDate(0, constants.SurveillanceDueMonths, 0)
		p.SurveillanceDue = &due
	}
	if s.machine.IsTerminal(to) {
		p.SurveillanceDue = nil
	}

	if err := s.pipelines.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to advance pipeline: %w", err)
	}

	transition := &models.PipelineTransition{
		ID:         utils.GenerateID(),
		PipelineID: p.ID,
		FromStage:  from,
		ToStage:    string(to),
		ActorID:    actorID,
		Note:       note,
	}
	if err := s.pipelines.InsertTransition(ctx, transition); err != nil {
		return nil, fmt.Errorf("failed to log stage transition: %w", err)
	}

	if title, ok := stageMilestones[to]; ok {
		due := now.AddDate(0, 0, 14)
		milestone := &models.PipelineMilestone{
			ID:         utils.GenerateID(),
			PipelineID: p.ID,
			Stage:      string(to),
			Title:      title,
			Status:     models.MilestoneStatusPending,
			DueDate:    &due,
		}
		if err := s.pipelines.InsertMilestone(ctx, milestone); err != nil {
			log.Printf("⚠️ Failed to create milestone for pipeline %s: %v", p.ID, err)
		}
	}

	s.eventBus.PublishAsync(events.PipelineAdvanced, events.PipelineAdvancedPayload{
		PipelineID: p.ID,
		FromStage:  from,
		ToStage:    string(to),
		ActorID:    actorID,
	})

	log.Printf("🔄 Pipeline %s advanced: %s -> %s", p.Number, from, to)
	return p, nil
}

// stageMilestones maps stage entries to the follow-up they create.
var stageMilestones = map[pipeline.Stage]string{
	pipeline.StageOpportunity:    "Prepare proposal",
	pipeline.StageContractSigned: "Plan the certification audit",
	pipeline.StageAuditPlanned:   "Schedule the stage 1 audit",
	pipeline.StageAuditStage1:    "Complete stage 1 and confirm readiness",
	pipeline.StageAuditStage2:    "Complete stage 2 and compile findings",
	pipeline.StageDecision:       "Hold the certification decision review",
	pipeline.StageCertified:      "Issue certificate documents to client",
	pipeline.StageSurveillance:   "Schedule the surveillance audit",
}

// Timeline

// PipelineTimeline bundles the transition log and milestones for one view.
type PipelineTimeline struct {
	Pipeline    *models.Pipeline             `json:"pipeline"`
	Transitions []*models.PipelineTransition `json:"transitions"`
	Milestones  []*models.PipelineMilestone  `json:"milestones"`
}

func (s *PipelineService) GetTimeline(ctx context.Context, id string) (*PipelineTimeline, error) {
	p, err := s.GetPipeline(ctx, id)
	if err != nil {
		return nil, err
	}
	transitions, err := s.pipelines.ListTransitions(ctx, id)
	if err != nil {
		return nil, err
	}
	milestones, err := s.pipelines.ListMilestones(ctx, id)
	if err != nil {
		return nil, err
	}
	return &PipelineTimeline{Pipeline: p, Transitions: transitions, Milestones: milestones}, nil
}

// CompleteMilestone marks a milestone done.
func (s *PipelineService) CompleteMilestone(ctx context.Context, pipelineID, milestoneID string) (*models.PipelineMilestone, error) {
	m, err := s.pipelines.GetMilestone(ctx, milestoneID)
	if err != nil {
		return nil, err
	}
	if m == nil || m.PipelineID != pipelineID {
		return nil, errors.NewNotFoundError("milestone", milestoneID)
	}
	if m.Status == models.MilestoneStatusDone {
		return m, nil
	}

	now := time.Now()
	m.Status = models.MilestoneStatusDone
	m.CompletedAt = &now
	if err := s.pipelines.UpdateMilestone(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to complete milestone: %w", err)
	}
	return m, nil
}

// Board and stats

func (s *PipelineService) GetBoard(ctx context.Context) ([]*models.PipelineBoardEntry, error) {
	return s.pipelines.Board(ctx)
}

func (s *PipelineService) GetStageStats(ctx context.Context) ([]models.PipelineStageStat, error) {
	return s.pipelines.StageStats(ctx)
}

// Event-driven advancement

// RegisterEventHandlers subscribes the pipeline to the domain events that
// move engagements forward without manual stage changes.
func (s *PipelineService) RegisterEventHandlers() {
	s.eventBus.Subscribe(events.LeadConverted, s.onLeadConverted)
	s.eventBus.Subscribe(events.OpportunityWon, s.onOpportunityWon)
	s.eventBus.Subscribe(events.ContractActivated, s.onContractActivated)
	s.eventBus.Subscribe(events.AuditScheduled, s.onAuditScheduled)
	s.eventBus.Subscribe(events.AuditStarted, s.onAuditStarted)
	s.eventBus.Subscribe(events.AuditCompleted, s.onAuditCompleted)
	s.eventBus.Subscribe(events.CertificationIssued, s.onCertificationIssued)
}

// advanceIfPossible is the idempotent core of the event handlers. Events
// can replay or arrive for manually advanced pipelines, so an already
// progressed stage is skipped rather than failed.
func (s *PipelineService) advanceIfPossible(ctx context.Context, p *models.Pipeline, to pipeline.Stage, note string) error {
	if !s.machine.CanAdvance(pipeline.Stage(p.Stage), to) {
		// Handlers stamp entity links on p before asking for the advance.
		// Those links must survive even when the stage has already moved on.
		return s.pipelines.Update(ctx, p)
	}
	_, err := s.commitStage(ctx, p, to, systemActor, note)
	return err
}

func (s *PipelineService) onLeadConverted(ctx context.Context, payload interface{}) error {
	data, ok := payload.(events.LeadConvertedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", payload)
	}

	p, err := s.pipelines.GetByLeadID(ctx, data.LeadID)
	if err != nil {
		return err
	}
	if p == nil {
		p, err = s.CreatePipeline(ctx, CreatePipelineRequest{LeadID: &data.LeadID})
		if err != nil {
			return err
		}
	}

	p.ClientID = &data.ClientID
	p.OpportunityID = &data.OpportunityID
	return s.advanceIfPossible(ctx, p, pipeline.StageOpportunity, "Lead converted")
}

// onOpportunityWon does not advance a stage (that happens when the contract
// activates) but the won deal fixes which client and standard the engagement
// is for, and contract preparation starts now.
func (s *PipelineService) onOpportunityWon(ctx context.Context, payload interface{}) error {
	data, ok := payload.(events.OpportunityWonPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", payload)
	}

	opp, err := s.leads.GetOpportunity(ctx, data.OpportunityID)
	if err != nil || opp == nil {
		return err
	}
	p, err := s.pipelines.GetByOpportunityID(ctx, opp.ID)
	if err != nil || p == nil {
		return err
	}

	if opp.ClientID != "" {
		p.ClientID = &opp.ClientID
	}
	if opp.StandardID != nil {
		p.StandardID = opp.StandardID
	}

	due := time.Now().AddDate(0, 0, 14)
	milestone := &models.PipelineMilestone{
		ID:         utils.GenerateID(),
		PipelineID: p.ID,
		Stage:      p.Stage,
		Title:      "Prepare certification agreement",
		Status:     models.MilestoneStatusPending,
		DueDate:    &due,
	}
	if err := s.pipelines.InsertMilestone(ctx, milestone); err != nil {
		log.Printf("⚠️ Failed to create milestone for pipeline %s: %v", p.ID, err)
	}

	return s.pipelines.Update(ctx, p)
}

func (s *PipelineService) onContractActivated(ctx context.Context, payload interface{}) error {
	data, ok := payload.(events.ContractActivatedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", payload)
	}

	contract, err := s.contracts.GetContract(ctx, data.ContractID)
	if err != nil || contract == nil {
		return err
	}

	var p *models.Pipeline
	if contract.OpportunityID != nil {
		p, err = s.pipelines.GetByOpportunityID(ctx, *contract.OpportunityID)
		if err != nil {
			return err
		}
	}
	if p == nil {
		return nil
	}

	p.ContractID = &contract.ID
	return s.advanceIfPossible(ctx, p, pipeline.StageContractSigned, "Contract "+contract.Number+" activated")
}

func (s *PipelineService) pipelineForAudit(ctx context.Context, auditID string) (*models.Pipeline, *models.Audit, error) {
	audit, err := s.audits.GetByID(ctx, auditID)
	if err != nil || audit == nil {
		return nil, nil, err
	}
	if audit.PipelineID == nil {
		return nil, audit, nil
	}
	p, err := s.pipelines.GetByID(ctx, *audit.PipelineID)
	return p, audit, err
}

func (s *PipelineService) onAuditScheduled(ctx context.Context, payload interface{}) error {
	data, ok := payload.(events.AuditEventPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", payload)
	}

	p, audit, err := s.pipelineForAudit(ctx, data.AuditID)
	if err != nil || p == nil {
		return err
	}

	p.AuditID = &audit.ID
	if audit.Type == models.AuditTypeStage1 || audit.Type == models.AuditTypeStage2 {
		return s.advanceIfPossible(ctx, p, pipeline.StageAuditPlanned, "Audit scheduled")
	}
	return s.pipelines.Update(ctx, p)
}

func (s *PipelineService) onAuditStarted(ctx context.Context, payload interface{}) error {
	data, ok := payload.(events.AuditEventPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", payload)
	}

	p, audit, err := s.pipelineForAudit(ctx, data.AuditID)
	if err != nil || p == nil {
		return err
	}

	p.AuditID = &audit.ID
	switch audit.Type {
	case models.AuditTypeStage1:
		return s.advanceIfPossible(ctx, p, pipeline.StageAuditStage1, "Stage 1 audit started")
	case models.AuditTypeStage2:
		return s.advanceIfPossible(ctx, p, pipeline.StageAuditStage2, "Stage 2 audit started")
	}
	return nil
}

func (s *PipelineService) onAuditCompleted(ctx context.Context, payload interface{}) error {
	data, ok := payload.(events.AuditEventPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", payload)
	}

	p, audit, err := s.pipelineForAudit(ctx, data.AuditID)
	if err != nil || p == nil {
		return err
	}

	if audit.Type == models.AuditTypeStage2 {
		return s.advanceIfPossible(ctx, p, pipeline.StageDecision, "Stage 2 audit completed")
	}
	return nil
}

func (s *PipelineService) onCertificationIssued(ctx context.Context, payload interface{}) error {
	data, ok := payload.(events.CertificationIssuedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", payload)
	}

	cert, err := s.certifications.GetByID(ctx, data.CertificationID)
	if err != nil || cert == nil {
		return err
	}
	if cert.PipelineID == nil {
		return nil
	}
	p, err := s.pipelines.GetByID(ctx, *cert.PipelineID)
	if err != nil || p == nil {
		return err
	}

	p.CertificationID = &cert.ID
	return s.advanceIfPossible(ctx, p, pipeline.StageCertified, "Certificate "+cert.CertificateNumber+" issued")
}

// RunSurveillanceSweep moves engagements whose surveillance window has
// opened into (or around) the surveillance stage. Called by the scheduler.
func (s *PipelineService) RunSurveillanceSweep(ctx context.Context) (int, error) {
	due, err := s.pipelines.ListSurveillanceDue(ctx)
	if err != nil {
		return 0, err
	}

	moved := 0
	for _, p := range due {
		if err := s.advanceIfPossible(ctx, p, pipeline.StageSurveillance, "Surveillance cycle due"); err != nil {
			log.Printf("⚠️ Surveillance sweep failed for pipeline %s: %v", p.ID, err)
			continue
		}
		moved++
	}
	return moved, nil
}
