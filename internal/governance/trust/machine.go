// Package trust evaluates trust step progression from accumulated behavior.
//
// The ladder has three steps and no regression transitions: a slot that
// misbehaves is flagged through its account status, which blocks further
// progression, rather than demoted. Step changes are applied by the
// orchestrator under the slot lock; the functions here are pure.
package trust

import "github.com/plumehq/plume/internal/governance/domain"

// Step1→Step2 thresholds.
const (
	step2MinPublished = 3
)

// Step2→Step3 thresholds.
const (
	step3MinPublished        = 5
	step3MidTierPublished    = 7
	step3PublishedEditWaiver = 7
	step3MaxRiskCorrections  = 5
)

// Evaluate returns the step the slot qualifies for after a verified outcome,
// and whether that is an advance over the current step. At most one step is
// advanced per evaluation; the ladder is climbed one publish at a time.
func Evaluate(tier domain.PlanTier, step domain.TrustStep, counters domain.TrustCounters) (domain.TrustStep, bool) {
	switch step {
	case domain.Step1:
		if qualifiesStep2(tier, counters) {
			return domain.Step2, true
		}
	case domain.Step2:
		if qualifiesStep3(tier, counters) {
			return domain.Step3, true
		}
	}
	return step, false
}

// SyncUpgrade is the lightweight session-load re-check. It can flip
// Step1→Step2 purely from the published count and is idempotent; it never
// touches the other counters and never advances past Step2.
func SyncUpgrade(tier domain.PlanTier, step domain.TrustStep, published int) (domain.TrustStep, bool) {
	if step != domain.Step1 {
		return step, false
	}
	counters := domain.TrustCounters{Published: published}
	if qualifiesStep2(tier, counters) {
		return domain.Step2, true
	}
	return step, false
}

// qualifiesStep2 requires a paid tier above the entry level plus a minimum
// publish history.
func qualifiesStep2(tier domain.PlanTier, counters domain.TrustCounters) bool {
	if tier.Rank() <= domain.TierBasic.Rank() {
		return false
	}
	return counters.Published >= step2MinPublished
}

// qualifiesStep3 is the terminal promotion gate: the tier condition, the
// publish floor, an edit-success signal (waived for long publish histories),
// a bounded correction history, and a clean account standing must all hold.
func qualifiesStep3(tier domain.PlanTier, counters domain.TrustCounters) bool {
	tierOK := tier == domain.TierUltra ||
		(tier == domain.TierPro && counters.Published >= step3MidTierPublished)
	if !tierOK {
		return false
	}
	if counters.Published < step3MinPublished {
		return false
	}
	if counters.EditSuccess < 1 && counters.Published < step3PublishedEditWaiver {
		return false
	}
	if counters.RiskCorrection >= step3MaxRiskCorrections {
		return false
	}
	switch counters.AccountStatus {
	case domain.StatusTrusted, domain.StatusNormal:
		return true
	default:
		return false
	}
}
