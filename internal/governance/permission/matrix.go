// Package permission resolves capability grants from the plan tier and
// trust step axes.
package permission

import (
	"fmt"

	"github.com/plumehq/plume/internal/governance/domain"
)

// DenyReason names the axis that blocked a capability.
type DenyReason int

const (
	// DenyNone means the capability was granted.
	DenyNone DenyReason = iota
	// DenyPlan means the plan tier is below the capability's requirement.
	DenyPlan
	// DenyStep means the trust step is below the capability's requirement.
	DenyStep
)

func (r DenyReason) String() string {
	switch r {
	case DenyNone:
		return "NONE"
	case DenyPlan:
		return "PLAN"
	case DenyStep:
		return "STEP"
	default:
		return "UNKNOWN"
	}
}

// Decision is the outcome of a capability resolution.
type Decision struct {
	Granted bool
	Reason  DenyReason
}

// Requirement is a capability's fixed gate on both axes. A grant requires
// meeting both requirements; the axes are never alternatives.
type Requirement struct {
	MinTier domain.PlanTier
	MinStep domain.TrustStep
}

// requirements is the compile-time capability table. Every member of the
// closed capability enumeration must have a row; completeness is enforced
// by mustValidateTable at init and by tests.
var requirements = map[domain.Capability]Requirement{
	domain.CapabilityPartialTitleEdit: {MinTier: domain.TierBasic, MinStep: domain.Step1},
	domain.CapabilityFullTitleEdit:    {MinTier: domain.TierPro, MinStep: domain.Step2},
	domain.CapabilityPartialBodyEdit:  {MinTier: domain.TierPro, MinStep: domain.Step2},
	domain.CapabilityFullBodyEdit:     {MinTier: domain.TierUltra, MinStep: domain.Step3},
	domain.CapabilityInsertCTA:        {MinTier: domain.TierPro, MinStep: domain.Step2},
	domain.CapabilityManualSchedule:   {MinTier: domain.TierPro, MinStep: domain.Step3},
	domain.CapabilityRulePackSwap:     {MinTier: domain.TierUltra, MinStep: domain.Step2},
	domain.CapabilitySlotReset:        {MinTier: domain.TierBasic, MinStep: domain.Step1},
}

func init() {
	mustValidateTable()
}

// mustValidateTable panics when the requirement table and the capability
// enumeration drift apart. A missing row is a programmer error caught at
// process start, not a runtime deny.
func mustValidateTable() {
	for _, capability := range domain.Capabilities() {
		req, ok := requirements[capability]
		if !ok {
			panic(fmt.Sprintf("permission: capability %s has no requirement row", capability))
		}
		if !req.MinTier.Valid() || !req.MinStep.Valid() {
			panic(fmt.Sprintf("permission: capability %s has an invalid requirement row", capability))
		}
	}
}

// RequirementFor returns the fixed requirement row for a capability.
func RequirementFor(capability domain.Capability) (Requirement, error) {
	req, ok := requirements[capability]
	if !ok {
		return Requirement{}, fmt.Errorf("capability %s is not registered", capability)
	}
	return req, nil
}

// Resolve returns the grant decision for a capability given the caller's
// plan tier and trust step. The plan axis is checked before the step axis,
// so a caller failing both sees the plan denial. Resolve is pure and safe
// for concurrent use.
func Resolve(capability domain.Capability, tier domain.PlanTier, step domain.TrustStep) (Decision, error) {
	req, ok := requirements[capability]
	if !ok {
		return Decision{}, fmt.Errorf("capability %s is not registered", capability)
	}
	if tier.Rank() < req.MinTier.Rank() {
		return Decision{Granted: false, Reason: DenyPlan}, nil
	}
	if step < req.MinStep {
		return Decision{Granted: false, Reason: DenyStep}, nil
	}
	return Decision{Granted: true, Reason: DenyNone}, nil
}
