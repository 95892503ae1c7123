package compliance

import (
	"regexp"
	"strings"
	"sync"
	"testing"
)

func TestEvaluateCleanContentPasses(t *testing.T) {
	filter := NewFilter(MedicalRuleSet())

	result := filter.Evaluate("꾸준한 재활 운동은 회복에 도움이 될 수 있습니다")
	if !result.Passed {
		t.Fatalf("expected clean content to pass, got violations %+v", result.Violations)
	}
	if len(result.Suggestions) != 0 {
		t.Fatalf("expected no suggestions on pass, got %v", result.Suggestions)
	}
	if result.RuleSetName != "medical-kr" {
		t.Fatalf("expected rule set name, got %q", result.RuleSetName)
	}
}

func TestEvaluateProhibitedPhrase(t *testing.T) {
	filter := NewFilter(MedicalRuleSet())

	result := filter.Evaluate("저희 병원에서는 100% 완치 됩니다")
	if result.Passed {
		t.Fatalf("expected violation")
	}
	if len(result.Violations) != 1 {
		t.Fatalf("expected exactly one violation, got %+v", result.Violations)
	}
	violation := result.Violations[0]
	if violation.MatchedText != "100% 완치" {
		t.Fatalf("expected matched phrase, got %q", violation.MatchedText)
	}
	if violation.Severity != SeverityHigh {
		t.Fatalf("expected HIGH severity, got %v", violation.Severity)
	}
	if len(result.Suggestions) == 0 {
		t.Fatalf("expected remediation suggestions on failure")
	}
}

func TestEvaluateReportsEveryOccurrence(t *testing.T) {
	filter := NewFilter(MedicalRuleSet())

	result := filter.Evaluate("100% 완치 보장! 다시 말씀드리면 100% 완치 입니다")
	if len(result.Violations) != 2 {
		t.Fatalf("expected one violation per occurrence, got %d", len(result.Violations))
	}
}

func TestEvaluatePatternSeverities(t *testing.T) {
	filter := NewFilter(MedicalRuleSet())

	tests := []struct {
		name     string
		text     string
		severity Severity
	}{
		{name: "numeric efficacy", text: "95%의 치료 효과를 확인했습니다", severity: SeverityHigh},
		{name: "no side effects", text: "이 시술은 부작용이 없습니다", severity: SeverityHigh},
		{name: "superlative", text: "최고의 병원에서 진료받으세요", severity: SeverityMedium},
		{name: "guarantee", text: "반드시 낫는 치료법입니다", severity: SeverityMedium},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := filter.Evaluate(tc.text)
			if result.Passed {
				t.Fatalf("expected violation for %q", tc.text)
			}
			found := false
			for _, violation := range result.Violations {
				if violation.Severity == tc.severity {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected a %v violation, got %+v", tc.severity, result.Violations)
			}
		})
	}
}

func TestApplyAutoCorrectionRedactsFirstOccurrence(t *testing.T) {
	filter := NewFilter(MedicalRuleSet())
	text := "저희 치료는 100% 완치 됩니다"

	result := filter.Evaluate(text)
	if result.Passed {
		t.Fatalf("expected violation")
	}

	corrected := filter.ApplyAutoCorrection(text, result.Violations)
	want := "저희 치료는 " + RedactionMarker + " 됩니다"
	if corrected != want {
		t.Fatalf("expected %q, got %q", want, corrected)
	}
}

func TestAutoCorrectedContentPassesReEvaluation(t *testing.T) {
	filter := NewFilter(MedicalRuleSet())

	texts := []string{
		"100% 완치 를 완치를 보장 합니다",
		"부작용이 전혀 없고 무조건 낫습니다",
		"95%의 성공률과 전액 환불 보장",
	}
	for _, text := range texts {
		result := filter.Evaluate(text)
		if result.Passed {
			t.Fatalf("expected violations for %q", text)
		}
		corrected := filter.ApplyAutoCorrection(text, result.Violations)
		if recheck := filter.Evaluate(corrected); !recheck.Passed {
			t.Fatalf("corrected text %q still fails: %+v", corrected, recheck.Violations)
		}
		if !strings.Contains(corrected, RedactionMarker) {
			t.Fatalf("expected marker in corrected text %q", corrected)
		}
	}
}

func TestRedactionMarkerNeverMatchesRules(t *testing.T) {
	filter := NewFilter(MedicalRuleSet())

	if result := filter.Evaluate(RedactionMarker); !result.Passed {
		t.Fatalf("marker itself must never violate, got %+v", result.Violations)
	}
}

func TestSetRuleSetSwapsAtomically(t *testing.T) {
	filter := NewFilter(MedicalRuleSet())

	replacement := &RuleSet{
		Name:    "strict",
		Version: "1",
		Rules: []Rule{
			PhraseRule{Phrase: "금지어", Reason: "test"},
		},
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			result := filter.Evaluate("무난한 본문 금지어 포함")
			// Either pack gives a self-consistent result.
			switch result.RuleSetName {
			case "medical-kr":
				if !result.Passed {
					t.Errorf("old pack should pass, got %+v", result.Violations)
					return
				}
			case "strict":
				if result.Passed {
					t.Errorf("new pack should fail")
					return
				}
			default:
				t.Errorf("unexpected rule set %q", result.RuleSetName)
				return
			}
		}
	}()

	for i := 0; i < 100; i++ {
		filter.SetRuleSet(MedicalRuleSet())
		filter.SetRuleSet(replacement)
	}
	close(stop)
	wg.Wait()

	name, version := filter.RuleSetInfo()
	if name != "strict" || version != "1" {
		t.Fatalf("expected final pack strict/1, got %s/%s", name, version)
	}
}

func TestSetRuleSetIgnoresNil(t *testing.T) {
	filter := NewFilter(MedicalRuleSet())
	filter.SetRuleSet(nil)
	if name, _ := filter.RuleSetInfo(); name != "medical-kr" {
		t.Fatalf("expected nil swap to be ignored, got %q", name)
	}
}

func TestPatternRuleMatchesEachOccurrence(t *testing.T) {
	rule := PatternRule{
		Pattern:  regexp.MustCompile(`\d+%`),
		Severity: SeverityLow,
		Reason:   "percent",
	}
	violations := rule.Match("10% 그리고 20% 그리고 30%")
	if len(violations) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(violations))
	}
	if violations[1].MatchedText != "20%" {
		t.Fatalf("expected matched text 20%%, got %q", violations[1].MatchedText)
	}
}
