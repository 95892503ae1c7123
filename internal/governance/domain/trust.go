package domain

import (
	"errors"
	"fmt"
	"strings"
)

// TrustStep is the progressive trust ladder for a slot. Steps only ever
// increase; step 3 is terminal.
type TrustStep int

const (
	// Step1 is the initial trust step for a new slot.
	Step1 TrustStep = 1
	// Step2 unlocks intermediate editing capabilities.
	Step2 TrustStep = 2
	// Step3 is the terminal trust step.
	Step3 TrustStep = 3

	// StepMax is the highest trust step.
	StepMax = Step3
)

// ErrInvalidTrustStep indicates a trust step outside the 1-3 ladder.
var ErrInvalidTrustStep = errors.New("trust step must be between 1 and 3")

// ErrCounterDecrease indicates an attempt to lower a monotonic counter.
var ErrCounterDecrease = errors.New("trust counters cannot decrease")

// Valid reports whether the step is on the ladder.
func (s TrustStep) Valid() bool {
	return s >= Step1 && s <= StepMax
}

func (s TrustStep) String() string {
	if !s.Valid() {
		return "UNSPECIFIED"
	}
	return fmt.Sprintf("STEP_%d", int(s))
}

// AccountStatus is the operational standing of a tenant account.
type AccountStatus int

const (
	// StatusUnspecified represents an invalid account status value.
	StatusUnspecified AccountStatus = iota
	// StatusNormal is the default standing.
	StatusNormal
	// StatusWarning marks an account flagged for review.
	StatusWarning
	// StatusRestricted blocks trust progression.
	StatusRestricted
	// StatusTrusted marks a manually vetted account.
	StatusTrusted
)

func (s AccountStatus) String() string {
	switch s {
	case StatusNormal:
		return "NORMAL"
	case StatusWarning:
		return "WARNING"
	case StatusRestricted:
		return "RESTRICTED"
	case StatusTrusted:
		return "TRUSTED"
	default:
		return "UNSPECIFIED"
	}
}

// ParseAccountStatus parses an account status name. Matching is case-insensitive.
func ParseAccountStatus(value string) (AccountStatus, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "NORMAL":
		return StatusNormal, nil
	case "WARNING":
		return StatusWarning, nil
	case "RESTRICTED":
		return StatusRestricted, nil
	case "TRUSTED":
		return StatusTrusted, nil
	default:
		return StatusUnspecified, fmt.Errorf("unknown account status %q", value)
	}
}

// TrustCounters accumulates verified behavior outcomes for a slot.
// All counters are monotonic non-decreasing.
type TrustCounters struct {
	Published      int
	EditSuccess    int
	RiskCorrection int
	AccountStatus  AccountStatus
}

// RecordPublish returns counters with one more verified publish.
func (c TrustCounters) RecordPublish() TrustCounters {
	c.Published++
	return c
}

// RecordEditSuccess returns counters with one more verified edit success.
func (c TrustCounters) RecordEditSuccess() TrustCounters {
	c.EditSuccess++
	return c
}

// RecordRiskCorrection returns counters with one more auto-corrected violation.
func (c TrustCounters) RecordRiskCorrection() TrustCounters {
	c.RiskCorrection++
	return c
}

// Merge validates that next does not decrease any counter relative to c.
func (c TrustCounters) Merge(next TrustCounters) (TrustCounters, error) {
	if next.Published < c.Published ||
		next.EditSuccess < c.EditSuccess ||
		next.RiskCorrection < c.RiskCorrection {
		return c, ErrCounterDecrease
	}
	if next.AccountStatus == StatusUnspecified {
		next.AccountStatus = c.AccountStatus
	}
	return next, nil
}
