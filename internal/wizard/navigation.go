package wizard

import (
	"fmt"
	"sort"
)

// Step identifies a wizard section. Steps are ordered 1..4.
type Step int

const (
	StepClientDetails Step = iota + 1
	StepTechnicalSpecs
	StepCommercials
	StepReview
)

// Steps lists every step in workflow order.
var Steps = []Step{StepClientDetails, StepTechnicalSpecs, StepCommercials, StepReview}

func (s Step) Valid() bool {
	return s >= StepClientDetails && s <= StepReview
}

func (s Step) String() string {
	switch s {
	case StepClientDetails:
		return "CLIENT_DETAILS"
	case StepTechnicalSpecs:
		return "TECHNICAL_SPECS"
	case StepCommercials:
		return "COMMERCIALS"
	case StepReview:
		return "REVIEW"
	}
	return fmt.Sprintf("Step(%d)", int(s))
}

// CurrentStep returns the step the UI should render.
func (s *Store) CurrentStep() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// CompletedSteps returns the completed set in ascending order.
func (s *Store) CompletedSteps() []Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completedStepsLocked()
}

func (s *Store) completedStepsLocked() []Step {
	steps := make([]Step, 0, len(s.completed))
	for step := range s.completed {
		steps = append(steps, step)
	}
	sort.Slice(steps, func(i, j int) bool { return steps[i] < steps[j] })
	return steps
}

// CanNavigateToStep is true for the current step, any completed step, and any
// step whose predecessors are all complete.
func (s *Store) CanNavigateToStep(target Step) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canNavigateLocked(target)
}

func (s *Store) canNavigateLocked(target Step) bool {
	if !target.Valid() {
		return false
	}
	if target == s.step {
		return true
	}
	if _, ok := s.completed[target]; ok {
		return true
	}
	for prev := StepClientDetails; prev < target; prev++ {
		if _, ok := s.completed[prev]; !ok {
			return false
		}
	}
	return true
}

// GoToStep moves to target when reachable. Unreachable targets are ignored;
// the return value tells callers which happened.
func (s *Store) GoToStep(target Step) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.canNavigateLocked(target) {
		return false
	}
	s.step = target
	return true
}

// NextStep completes the current step and advances unless already at review.
func (s *Store) NextStep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed[s.step] = struct{}{}
	if s.step < StepReview {
		s.step++
	}
}

// PreviousStep moves back one step; no-op on the first step.
func (s *Store) PreviousStep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step > StepClientDetails {
		s.step--
	}
}

// MarkStepComplete adds step to the completed set. Idempotent.
func (s *Store) MarkStepComplete(step Step) {
	if !step.Valid() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed[step] = struct{}{}
}

// Advance validates the current step and only then moves forward.
func (s *Store) Advance() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := validateStep(s.current, s.step); err != nil {
		return err
	}
	s.completed[s.step] = struct{}{}
	if s.step < StepReview {
		s.step++
	}
	return nil
}

// IsComplete reports the terminal state: on review with every step complete.
func (s *Store) IsComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step != StepReview {
		return false
	}
	for _, step := range Steps {
		if _, ok := s.completed[step]; !ok {
			return false
		}
	}
	return true
}

func (s *Store) resetNavigationLocked() {
	s.step = StepClientDetails
	s.completed = make(map[Step]struct{})
}
