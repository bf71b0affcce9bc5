package proposal

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidStatus is returned for transitions that move a proposal backwards.
	ErrInvalidStatus = errors.New("invalid status transition")
	// ErrUnknownCurrency is returned by ParseCurrency.
	ErrUnknownCurrency = errors.New("unknown currency")
)

var transitions = map[Status][]Status{
	StatusDraft:     {StatusSubmitted},
	StatusSubmitted: {StatusApproved, StatusRejected},
}

// CanTransition reports whether s may move to next.
func (s Status) CanTransition(next Status) bool {
	if s == next {
		return true
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transition moves the proposal to next, rejecting backwards moves.
func (p *Proposal) Transition(next Status) error {
	current := p.Metadata.Status
	if current == "" {
		current = StatusDraft
	}
	if !current.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatus, current, next)
	}
	p.Metadata.Status = next
	return nil
}

func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusRejected:
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
}

// Valid reports whether c is one of the supported quote currencies.
func (c Currency) Valid() bool {
	switch c {
	case CurrencyINR, CurrencyUSD, CurrencyEUR, CurrencyGBP:
		return true
	}
	return false
}

func ParseCurrency(raw string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(raw)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCurrency, raw)
	}
	return c, nil
}
