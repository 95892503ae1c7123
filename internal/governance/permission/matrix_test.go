package permission

import (
	"testing"

	"github.com/plumehq/plume/internal/governance/domain"
)

func TestResolveGrantTable(t *testing.T) {
	tests := []struct {
		name       string
		capability domain.Capability
		tier       domain.PlanTier
		step       domain.TrustStep
		granted    bool
		reason     DenyReason
	}{
		{
			name:       "basic step1 partial title edit",
			capability: domain.CapabilityPartialTitleEdit,
			tier:       domain.TierBasic,
			step:       domain.Step1,
			granted:    true,
			reason:     DenyNone,
		},
		{
			name:       "basic step1 full body edit denied on plan",
			capability: domain.CapabilityFullBodyEdit,
			tier:       domain.TierBasic,
			step:       domain.Step1,
			granted:    false,
			reason:     DenyPlan,
		},
		{
			name:       "ultra step1 full body edit denied on step",
			capability: domain.CapabilityFullBodyEdit,
			tier:       domain.TierUltra,
			step:       domain.Step1,
			granted:    false,
			reason:     DenyStep,
		},
		{
			name:       "ultra step3 full body edit granted",
			capability: domain.CapabilityFullBodyEdit,
			tier:       domain.TierUltra,
			step:       domain.Step3,
			granted:    true,
			reason:     DenyNone,
		},
		{
			name:       "pro step2 full title edit granted",
			capability: domain.CapabilityFullTitleEdit,
			tier:       domain.TierPro,
			step:       domain.Step2,
			granted:    true,
			reason:     DenyNone,
		},
		{
			name:       "pro step1 cta denied on step",
			capability: domain.CapabilityInsertCTA,
			tier:       domain.TierPro,
			step:       domain.Step1,
			granted:    false,
			reason:     DenyStep,
		},
		{
			name:       "pro step2 manual schedule denied on step",
			capability: domain.CapabilityManualSchedule,
			tier:       domain.TierPro,
			step:       domain.Step2,
			granted:    false,
			reason:     DenyStep,
		},
		{
			name:       "pro step3 rule pack swap denied on plan",
			capability: domain.CapabilityRulePackSwap,
			tier:       domain.TierPro,
			step:       domain.Step3,
			granted:    false,
			reason:     DenyPlan,
		},
		{
			name:       "ultra step2 rule pack swap granted",
			capability: domain.CapabilityRulePackSwap,
			tier:       domain.TierUltra,
			step:       domain.Step2,
			granted:    true,
			reason:     DenyNone,
		},
		{
			name:       "basic step1 slot reset granted",
			capability: domain.CapabilitySlotReset,
			tier:       domain.TierBasic,
			step:       domain.Step1,
			granted:    true,
			reason:     DenyNone,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			decision, err := Resolve(tc.capability, tc.tier, tc.step)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if decision.Granted != tc.granted {
				t.Fatalf("expected granted=%v, got %v", tc.granted, decision.Granted)
			}
			if decision.Reason != tc.reason {
				t.Fatalf("expected reason %v, got %v", tc.reason, decision.Reason)
			}
		})
	}
}

func TestResolvePlanDenialWinsWhenBothAxesFail(t *testing.T) {
	decision, err := Resolve(domain.CapabilityFullBodyEdit, domain.TierBasic, domain.Step1)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if decision.Granted {
		t.Fatalf("expected denial")
	}
	if decision.Reason != DenyPlan {
		t.Fatalf("expected plan denial to win, got %v", decision.Reason)
	}
}

func TestResolveUnknownCapability(t *testing.T) {
	if _, err := Resolve(domain.CapabilityUnspecified, domain.TierUltra, domain.Step3); err == nil {
		t.Fatalf("expected error for unregistered capability")
	}
}

func TestRequirementTableCoversEveryCapability(t *testing.T) {
	for _, capability := range domain.Capabilities() {
		req, err := RequirementFor(capability)
		if err != nil {
			t.Fatalf("capability %v has no requirement row: %v", capability, err)
		}
		if !req.MinTier.Valid() || !req.MinStep.Valid() {
			t.Fatalf("capability %v has an invalid requirement row %+v", capability, req)
		}
	}
}

func TestHigherTierNeverLosesAGrant(t *testing.T) {
	tiers := []domain.PlanTier{domain.TierBasic, domain.TierPro, domain.TierUltra}
	steps := []domain.TrustStep{domain.Step1, domain.Step2, domain.Step3}

	for _, capability := range domain.Capabilities() {
		for _, step := range steps {
			granted := false
			for _, tier := range tiers {
				decision, err := Resolve(capability, tier, step)
				if err != nil {
					t.Fatalf("resolve %v: %v", capability, err)
				}
				if granted && !decision.Granted {
					t.Fatalf("capability %v lost at higher tier %v step %v", capability, tier, step)
				}
				granted = decision.Granted
			}
		}
	}
}
