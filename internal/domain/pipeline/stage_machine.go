package pipeline

import (
	"fmt"
)

// Stage represents where an engagement sits in the certification pipeline
type Stage string

const (
	// StageLead is the entry stage for every new engagement
	StageLead Stage = "lead"
	// StageOpportunity indicates a qualified lead under active pursuit
	StageOpportunity Stage = "opportunity"
	// StageContractSigned indicates a signed certification contract
	StageContractSigned Stage = "contract_signed"
	// StageAuditPlanned indicates the certification audit is being scheduled
	StageAuditPlanned Stage = "audit_planned"
	// StageAuditStage1 indicates the stage 1 (documentation) audit is underway
	StageAuditStage1 Stage = "audit_stage1"
	// StageAuditStage2 indicates the stage 2 (implementation) audit is underway
	StageAuditStage2 Stage = "audit_stage2"
	// StageDecision indicates the certification decision review
	StageDecision Stage = "decision"
	// StageCertified indicates the certificate has been issued
	StageCertified Stage = "certified"
	// StageSurveillance indicates the recurring surveillance cycle
	StageSurveillance Stage = "surveillance"
	// StageClosedLost is the terminal exit before a contract is signed
	StageClosedLost Stage = "closed_lost"
	// StageWithdrawn is the terminal exit after a contract is signed
	StageWithdrawn Stage = "withdrawn"
)

// StageMachine enforces valid stage progressions for pipelines.
// Invalid progressions return an error (fail-fast approach).
type StageMachine struct {
	// progressions maps (current stage, target stage) -> allowed
	progressions map[stageProgressionKey]bool
}

type stageProgressionKey struct {
	from Stage
	to   Stage
}

// NewStageMachine creates a stage machine with the engagement lifecycle rules.
// Stage diagram (forward only, no regression):
//
//	[lead] ──► [opportunity] ──► [contract_signed] ──► [audit_planned]
//	   │             │                  │                    │
//	   ▼             ▼                  ▼                    ▼
//	[closed_lost] [closed_lost]    [withdrawn]          [withdrawn]
//
//	[audit_planned] ──► [audit_stage1] ──► [audit_stage2] ──► [decision]
//	                                                              │
//	                                                              ▼
//	                  [surveillance] ◄──────────────────────  [certified]
//	                      │    ▲
//	                      └────┘  (surveillance repeats each cycle)
//
// Every post-contract stage except certified may also exit via withdrawn;
// a certified engagement moves to surveillance and can only withdraw from
// there.
func NewStageMachine() *StageMachine {
	sm := &StageMachine{
		progressions: make(map[stageProgressionKey]bool),
	}

	sm.addProgression(StageLead, StageOpportunity, StageClosedLost)
	sm.addProgression(StageOpportunity, StageContractSigned, StageClosedLost)
	sm.addProgression(StageContractSigned, StageAuditPlanned, StageWithdrawn)
	sm.addProgression(StageAuditPlanned, StageAuditStage1, StageWithdrawn)
	sm.addProgression(StageAuditStage1, StageAuditStage2, StageWithdrawn)
	sm.addProgression(StageAuditStage2, StageDecision, StageWithdrawn)
	sm.addProgression(StageDecision, StageCertified, StageWithdrawn)
	sm.addProgression(StageCertified, StageSurveillance)
	sm.addProgression(StageSurveillance, StageSurveillance, StageWithdrawn)

	return sm
}

func (sm *StageMachine) addProgression(from Stage, targets ...Stage) {
	for _, to := range targets {
		sm.progressions[stageProgressionKey{from: from, to: to}] = true
	}
}

// Advance validates moving from the current stage to the target stage.
// Returns the target stage or an error if the progression is invalid.
func (sm *StageMachine) Advance(current, target Stage) (Stage, error) {
	if !sm.progressions[stageProgressionKey{from: current, to: target}] {
		return current, fmt.Errorf("invalid stage progression: cannot move from %s to %s", current, target)
	}
	return target, nil
}

// CanAdvance checks if a progression is valid without performing it.
func (sm *StageMachine) CanAdvance(current, target Stage) bool {
	return sm.progressions[stageProgressionKey{from: current, to: target}]
}

// ValidNext returns all stages reachable from the given stage.
func (sm *StageMachine) ValidNext(stage Stage) []Stage {
	var result []Stage
	// Ordered walk keeps the API response stable for the frontend board.
	for _, candidate := range AllStages() {
		if sm.progressions[stageProgressionKey{from: stage, to: candidate}] {
			result = append(result, candidate)
		}
	}
	return result
}

// IsTerminal returns true if the stage is a terminal exit (no further progressions).
func (sm *StageMachine) IsTerminal(stage Stage) bool {
	return stage == StageClosedLost || stage == StageWithdrawn
}

// IsValid reports whether the value is a known stage.
func (sm *StageMachine) IsValid(stage Stage) bool {
	for _, s := range AllStages() {
		if s == stage {
			return true
		}
	}
	return false
}

// AllStages returns every stage in board order, terminal exits last.
func AllStages() []Stage {
	return []Stage{
		StageLead,
		StageOpportunity,
		StageContractSigned,
		StageAuditPlanned,
		StageAuditStage1,
		StageAuditStage2,
		StageDecision,
		StageCertified,
		StageSurveillance,
		StageClosedLost,
		StageWithdrawn,
	}
}

// stageProgress maps each stage to its completion percentage for dashboards.
var stageProgress = map[Stage]int{
	StageLead:           5,
	StageOpportunity:    10,
	StageContractSigned: 25,
	StageAuditPlanned:   40,
	StageAuditStage1:    50,
	StageAuditStage2:    70,
	StageDecision:       85,
	StageCertified:      100,
	StageSurveillance:   100,
	StageClosedLost:     0,
	StageWithdrawn:      0,
}

// Progress returns the completion percentage for a stage (0 for unknown).
func Progress(stage Stage) int {
	return stageProgress[stage]
}
