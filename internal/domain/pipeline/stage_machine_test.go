package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStageMachine_Advance(t *testing.T) {
	sm := NewStageMachine()

	tests := []struct {
		name        string
		from        Stage
		to          Stage
		shouldError bool
	}{
		// Valid progressions
		{"lead -> opportunity", StageLead, StageOpportunity, false},
		{"lead -> closed_lost", StageLead, StageClosedLost, false},
		{"opportunity -> contract_signed", StageOpportunity, StageContractSigned, false},
		{"opportunity -> closed_lost", StageOpportunity, StageClosedLost, false},
		{"contract_signed -> audit_planned", StageContractSigned, StageAuditPlanned, false},
		{"audit_planned -> audit_stage1", StageAuditPlanned, StageAuditStage1, false},
		{"audit_stage1 -> audit_stage2", StageAuditStage1, StageAuditStage2, false},
		{"audit_stage2 -> decision", StageAuditStage2, StageDecision, false},
		{"decision -> certified", StageDecision, StageCertified, false},
		{"certified -> surveillance", StageCertified, StageSurveillance, false},
		{"surveillance repeats", StageSurveillance, StageSurveillance, false},
		{"surveillance -> withdrawn", StageSurveillance, StageWithdrawn, false},

		// Invalid progressions
		{"no skipping: lead -> contract_signed", StageLead, StageContractSigned, true},
		{"no skipping: contract_signed -> audit_stage2", StageContractSigned, StageAuditStage2, true},
		{"no regression: opportunity -> lead", StageOpportunity, StageLead, true},
		{"no regression: certified -> decision", StageCertified, StageDecision, true},
		{"closed_lost is terminal", StageClosedLost, StageLead, true},
		{"withdrawn is terminal", StageWithdrawn, StageAuditPlanned, true},
		{"closed_lost only before contract", StageContractSigned, StageClosedLost, true},
		{"withdrawn only after contract", StageLead, StageWithdrawn, true},
		{"certified cannot withdraw directly", StageCertified, StageWithdrawn, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			next, err := sm.Advance(tc.from, tc.to)

			if tc.shouldError {
				assert.Error(t, err)
				assert.Equal(t, tc.from, next, "Stage should not change on invalid progression")
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.to, next)
			}
		})
	}
}

func TestStageMachine_CanAdvance(t *testing.T) {
	sm := NewStageMachine()

	assert.True(t, sm.CanAdvance(StageLead, StageOpportunity))
	assert.True(t, sm.CanAdvance(StageDecision, StageCertified))
	assert.False(t, sm.CanAdvance(StageLead, StageCertified))
	assert.False(t, sm.CanAdvance(StageClosedLost, StageOpportunity))
}

func TestStageMachine_ValidNext(t *testing.T) {
	sm := NewStageMachine()

	assert.Equal(t, []Stage{StageOpportunity, StageClosedLost}, sm.ValidNext(StageLead))
	assert.Equal(t, []Stage{StageSurveillance}, sm.ValidNext(StageCertified))
	assert.Equal(t, []Stage{StageSurveillance, StageWithdrawn}, sm.ValidNext(StageSurveillance))
	assert.Empty(t, sm.ValidNext(StageClosedLost))
	assert.Empty(t, sm.ValidNext(StageWithdrawn))
}

func TestStageMachine_IsTerminal(t *testing.T) {
	sm := NewStageMachine()

	assert.False(t, sm.IsTerminal(StageLead))
	assert.False(t, sm.IsTerminal(StageSurveillance))
	assert.True(t, sm.IsTerminal(StageClosedLost))
	assert.True(t, sm.IsTerminal(StageWithdrawn))
}

func TestStageProgress(t *testing.T) {
	assert.Equal(t, 5, Progress(StageLead))
	assert.Equal(t, 25, Progress(StageContractSigned))
	assert.Equal(t, 100, Progress(StageCertified))
	assert.Equal(t, 100, Progress(StageSurveillance))
	assert.Equal(t, 0, Progress(StageClosedLost))
	assert.Equal(t, 0, Progress(Stage("bogus")))
}
