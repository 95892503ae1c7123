package domain

import "testing"

func TestTierRankOrdering(t *testing.T) {
	if !(TierBasic.Rank() < TierPro.Rank() && TierPro.Rank() < TierUltra.Rank()) {
		t.Fatalf("expected BASIC < PRO < ULTRA, got %d %d %d",
			TierBasic.Rank(), TierPro.Rank(), TierUltra.Rank())
	}
}

func TestParseTier(t *testing.T) {
	tests := []struct {
		value string
		want  PlanTier
		ok    bool
	}{
		{value: "BASIC", want: TierBasic, ok: true},
		{value: "pro", want: TierPro, ok: true},
		{value: " Ultra ", want: TierUltra, ok: true},
		{value: "", ok: false},
		{value: "ENTERPRISE", ok: false},
	}

	for _, tc := range tests {
		got, err := ParseTier(tc.value)
		if tc.ok && err != nil {
			t.Fatalf("parse %q: %v", tc.value, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("expected error for %q", tc.value)
		}
		if tc.ok && got != tc.want {
			t.Fatalf("parse %q: expected %v, got %v", tc.value, tc.want, got)
		}
	}
}

func TestCapabilityRoundTrip(t *testing.T) {
	for _, capability := range Capabilities() {
		parsed, err := ParseCapability(capability.String())
		if err != nil {
			t.Fatalf("parse %v: %v", capability, err)
		}
		if parsed != capability {
			t.Fatalf("expected %v, got %v", capability, parsed)
		}
	}

	if _, err := ParseCapability("TIME_TRAVEL"); err == nil {
		t.Fatalf("expected error for unknown capability")
	}
	if CapabilityUnspecified.Valid() {
		t.Fatalf("expected unspecified capability to be invalid")
	}
}
