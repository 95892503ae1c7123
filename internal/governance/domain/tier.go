package domain

import (
	"fmt"
	"strings"
)

// PlanTier is a commercial subscription level. Tiers are ordered; a higher
// tier never removes a capability granted by a lower one.
type PlanTier int

const (
	// TierUnspecified represents an invalid plan tier value.
	TierUnspecified PlanTier = iota
	// TierBasic is the entry subscription level.
	TierBasic
	// TierPro is the mid subscription level.
	TierPro
	// TierUltra is the top subscription level.
	TierUltra
)

// Rank returns the ordering rank of the tier. Unspecified ranks below Basic.
func (t PlanTier) Rank() int {
	return int(t)
}

// Valid reports whether the tier is one of the defined subscription levels.
func (t PlanTier) Valid() bool {
	return t >= TierBasic && t <= TierUltra
}

func (t PlanTier) String() string {
	switch t {
	case TierBasic:
		return "BASIC"
	case TierPro:
		return "PRO"
	case TierUltra:
		return "ULTRA"
	default:
		return "UNSPECIFIED"
	}
}

// ParseTier parses a plan tier name. Matching is case-insensitive.
func ParseTier(value string) (PlanTier, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "BASIC":
		return TierBasic, nil
	case "PRO":
		return TierPro, nil
	case "ULTRA":
		return TierUltra, nil
	default:
		return TierUnspecified, fmt.Errorf("unknown plan tier %q", value)
	}
}
