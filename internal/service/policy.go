package service

import (
	"fmt"

	"docregister/internal/config"
	"docregister/internal/model"
)

// Policy is the closed status set of the register and the optional rule for
// marking a replaced revision. The ledger enforces membership only; it knows
// no transitions.
type Policy struct {
	statuses          []model.Status
	initial           model.Status
	superseded        model.Status
	supersedePrevious bool
}

// PolicyFromConfig converts a validated policy file.
func PolicyFromConfig(pc config.PolicyConfig) Policy {
	p := Policy{
		initial:           model.Status(pc.InitialStatus),
		superseded:        model.Status(pc.SupersededStatus),
		supersedePrevious: pc.SupersedePrevious,
	}
	for _, s := range pc.Statuses {
		p.statuses = append(p.statuses, model.Status(s))
	}
	if p.initial == "" && len(p.statuses) > 0 {
		p.initial = p.statuses[0]
	}
	return p
}

// DefaultPolicy mirrors config.DefaultPolicy.
func DefaultPolicy() Policy {
	return PolicyFromConfig(config.DefaultPolicy())
}

// Statuses returns the declared statuses in declaration order.
func (p Policy) Statuses() []model.Status {
	out := make([]model.Status, len(p.statuses))
	copy(out, p.statuses)
	return out
}

// Allows reports whether s is declared.
func (p Policy) Allows(s model.Status) bool {
	for _, st := range p.statuses {
		if st == s {
			return true
		}
	}
	return false
}

// resolve returns the status a new revision is stored with.
func (p Policy) resolve(s model.Status) (model.Status, error) {
	if s == "" {
		return p.initial, nil
	}
	if !p.Allows(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return s, nil
}
