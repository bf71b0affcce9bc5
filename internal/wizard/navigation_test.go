package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/proposal-wizard/internal/proposal"
)

func TestGoToStepDeniedUntilPredecessorsComplete(t *testing.T) {
	s := newTestStore(t)

	assert.False(t, s.GoToStep(StepCommercials))
	assert.Equal(t, StepClientDetails, s.CurrentStep())

	s.MarkStepComplete(StepClientDetails)
	assert.True(t, s.CanNavigateToStep(StepTechnicalSpecs))
	assert.False(t, s.CanNavigateToStep(StepCommercials))

	s.MarkStepComplete(StepTechnicalSpecs)
	assert.True(t, s.GoToStep(StepCommercials))
	assert.Equal(t, StepCommercials, s.CurrentStep())

	assert.True(t, s.GoToStep(StepClientDetails), "completed steps stay reachable")
	assert.False(t, s.GoToStep(Step(9)))
}

func TestMarkStepCompleteIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	s.MarkStepComplete(StepClientDetails)
	s.MarkStepComplete(StepClientDetails)
	s.NextStep()

	assert.Equal(t, StepTechnicalSpecs, s.CurrentStep())
	assert.Equal(t, []Step{StepClientDetails}, s.CompletedSteps())
}

func TestNextAndPreviousBounds(t *testing.T) {
	s := newTestStore(t)
	s.PreviousStep()
	assert.Equal(t, StepClientDetails, s.CurrentStep())

	for range Steps {
		s.NextStep()
	}
	assert.Equal(t, StepReview, s.CurrentStep())
	assert.True(t, s.IsComplete())

	s.NextStep()
	assert.Equal(t, StepReview, s.CurrentStep())

	s.PreviousStep()
	assert.Equal(t, StepCommercials, s.CurrentStep())
	assert.False(t, s.IsComplete())
}

func TestAdvanceBlockedWithoutClientName(t *testing.T) {
	s := newTestStore(t)
	s.UpdateClientDetails(ClientDetailsPatch{ClientName: Ptr("   ")})

	err := s.Advance()
	var verr *StepValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, StepClientDetails, verr.Step)
	assert.Equal(t, "Please enter client name", verr.Fields["ClientName"])
	assert.Equal(t, StepClientDetails, s.CurrentStep())
	assert.Empty(t, s.CompletedSteps())
}

func TestAdvanceThroughAllGates(t *testing.T) {
	s := newTestStore(t)

	s.UpdateClientDetails(ClientDetailsPatch{ClientName: Ptr("Acme")})
	require.NoError(t, s.Advance())

	require.Error(t, s.Advance())
	s.AddEquipment(proposal.Equipment{Type: "Pump"})
	require.NoError(t, s.Advance())

	err := s.Advance()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Please add at least one pricing item")
	s.AddPricingItem(proposal.PricingItem{Quantity: 1, UnitPrice: 10})
	require.NoError(t, s.Advance())

	require.NoError(t, s.Advance())
	assert.True(t, s.IsComplete())
	assert.Equal(t, Steps, s.CompletedSteps())
}

func TestValidateReviewHasNoGate(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.ValidateStep(StepReview))
	assert.Error(t, s.ValidateStep(StepTechnicalSpecs))
}

func TestStepString(t *testing.T) {
	assert.Equal(t, "CLIENT_DETAILS", StepClientDetails.String())
	assert.Equal(t, "REVIEW", StepReview.String())
	assert.Equal(t, "Step(7)", Step(7).String())
}
