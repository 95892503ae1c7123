package domain

import (
	"fmt"
	"strings"
)

// Capability is a named edit or action right. The enumeration is closed:
// every capability has a fixed requirement row in the permission matrix,
// registered at compile time. An unregistered capability is a programmer
// error, never a silent deny.
type Capability int

const (
	// CapabilityUnspecified represents an invalid capability value.
	CapabilityUnspecified Capability = iota
	// CapabilityPartialTitleEdit allows editing a generated title in place.
	CapabilityPartialTitleEdit
	// CapabilityFullTitleEdit allows replacing a generated title entirely.
	CapabilityFullTitleEdit
	// CapabilityPartialBodyEdit allows editing sections of a generated body.
	CapabilityPartialBodyEdit
	// CapabilityFullBodyEdit allows replacing a generated body entirely.
	CapabilityFullBodyEdit
	// CapabilityInsertCTA allows inserting a call-to-action block.
	CapabilityInsertCTA
	// CapabilityManualSchedule allows overriding the automatic publish schedule.
	CapabilityManualSchedule
	// CapabilityRulePackSwap allows swapping the active compliance rule pack.
	CapabilityRulePackSwap
	// CapabilitySlotReset allows resetting a slot's topic plan.
	CapabilitySlotReset

	// capabilityCount bounds the closed enumeration; keep it last.
	capabilityCount
)

// Capabilities returns every defined capability in declaration order.
func Capabilities() []Capability {
	all := make([]Capability, 0, capabilityCount-1)
	for c := CapabilityUnspecified + 1; c < capabilityCount; c++ {
		all = append(all, c)
	}
	return all
}

// Valid reports whether the capability is a member of the closed enumeration.
func (c Capability) Valid() bool {
	return c > CapabilityUnspecified && c < capabilityCount
}

func (c Capability) String() string {
	switch c {
	case CapabilityPartialTitleEdit:
		return "PARTIAL_TITLE_EDIT"
	case CapabilityFullTitleEdit:
		return "FULL_TITLE_EDIT"
	case CapabilityPartialBodyEdit:
		return "PARTIAL_BODY_EDIT"
	case CapabilityFullBodyEdit:
		return "FULL_BODY_EDIT"
	case CapabilityInsertCTA:
		return "INSERT_CTA"
	case CapabilityManualSchedule:
		return "MANUAL_SCHEDULE"
	case CapabilityRulePackSwap:
		return "RULE_PACK_SWAP"
	case CapabilitySlotReset:
		return "SLOT_RESET"
	default:
		return "UNSPECIFIED"
	}
}

// ParseCapability parses a capability name. Matching is case-insensitive.
func ParseCapability(value string) (Capability, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for c := CapabilityUnspecified + 1; c < capabilityCount; c++ {
		if c.String() == normalized {
			return c, nil
		}
	}
	return CapabilityUnspecified, fmt.Errorf("unknown capability %q", value)
}
