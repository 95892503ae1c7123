package compliance

import (
	"strings"
	"sync/atomic"
)

// RedactionMarker replaces matched text during auto-correction. It must
// never itself match any shipped rule; filter tests enforce that.
const RedactionMarker = "[표현 수정됨]"

// Result is the outcome of evaluating text against the active rule set.
type Result struct {
	Passed         bool
	Violations     []Violation
	Suggestions    []string
	RuleSetName    string
	RuleSetVersion string
}

// Filter evaluates text against a swappable rule set. Evaluation is
// stateless; the only mutable state is the active rule set pointer, which
// is swapped atomically so concurrent readers observe either the old or
// the new pack in full, never a mix.
type Filter struct {
	ruleSet atomic.Pointer[RuleSet]
}

// NewFilter creates a filter with the given initial rule set.
func NewFilter(ruleSet *RuleSet) *Filter {
	f := &Filter{}
	if ruleSet == nil {
		ruleSet = &RuleSet{Name: "empty", Version: "0"}
	}
	f.ruleSet.Store(ruleSet)
	return f
}

// SetRuleSet atomically installs a new rule pack. In-flight evaluations
// keep the set they started with.
func (f *Filter) SetRuleSet(ruleSet *RuleSet) {
	if ruleSet == nil {
		return
	}
	f.ruleSet.Store(ruleSet)
}

// RuleSetInfo returns the name and version of the active rule pack.
func (f *Filter) RuleSetInfo() (name, version string) {
	rs := f.ruleSet.Load()
	return rs.Name, rs.Version
}

// Evaluate scans text with every rule in the active set. Each rule emits
// one violation per match with no de-duplication. On failure the result
// carries the pack's generic remediation suggestions; they are not
// tailored per violation.
func (f *Filter) Evaluate(text string) Result {
	rs := f.ruleSet.Load()

	var violations []Violation
	for _, rule := range rs.Rules {
		violations = append(violations, rule.Match(text)...)
	}

	result := Result{
		Passed:         len(violations) == 0,
		Violations:     violations,
		RuleSetName:    rs.Name,
		RuleSetVersion: rs.Version,
	}
	if !result.Passed {
		result.Suggestions = rs.Suggestions
	}
	return result
}

// ApplyAutoCorrection redacts each violation's matched text, replacing the
// first literal occurrence with the redaction marker. Replacement goes by
// value rather than offset, so it survives earlier replacements shifting
// positions, at the cost of possibly redacting an identical substring used
// in a legitimate context. Evaluate never mutates input; this is the only
// correction path.
func (f *Filter) ApplyAutoCorrection(text string, violations []Violation) string {
	for _, violation := range violations {
		if violation.MatchedText == "" {
			continue
		}
		text = strings.Replace(text, violation.MatchedText, RedactionMarker, 1)
	}
	return text
}
