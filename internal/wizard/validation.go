package wizard

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/proposal-wizard/internal/proposal"
)

var validate = validator.New()

// StepValidationError lists the fields blocking a step from completing.
type StepValidationError struct {
	Step   Step
	Fields map[string]string
}

func (e *StepValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return fmt.Sprintf("%s incomplete: %s", e.Step, strings.Join(msgs, "; "))
}

type clientDetailsGate struct {
	ClientName string `validate:"required"`
}

type technicalSpecsGate struct {
	Equipment []proposal.Equipment `validate:"min=1"`
}

type commercialsGate struct {
	PricingItems []proposal.PricingItem `validate:"min=1"`
}

var gateMessages = map[string]string{
	"ClientName":   "Please enter client name",
	"Equipment":    "Please add at least one equipment item",
	"PricingItems": "Please add at least one pricing item",
}

// ValidateStep checks the minimum data for step on the current draft.
func (s *Store) ValidateStep(step Step) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return validateStep(s.current, step)
}

func validateStep(p *proposal.Proposal, step Step) error {
	if p == nil {
		return ErrNoDraft
	}
	var gate any
	switch step {
	case StepClientDetails:
		gate = clientDetailsGate{ClientName: strings.TrimSpace(p.ClientDetails.ClientName)}
	case StepTechnicalSpecs:
		gate = technicalSpecsGate{Equipment: p.TechnicalSpecs.Equipment}
	case StepCommercials:
		gate = commercialsGate{PricingItems: p.Commercials.PricingItems}
	default:
		return nil
	}
	err := validate.Struct(gate)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	verr := &StepValidationError{Step: step, Fields: make(map[string]string, len(fieldErrs))}
	for _, fieldErr := range fieldErrs {
		msg, ok := gateMessages[fieldErr.Field()]
		if !ok {
			msg = fieldErr.Error()
		}
		verr.Fields[fieldErr.Field()] = msg
	}
	return verr
}
