package compliance

import "regexp"

// Medical pack rule reasons, kept short enough to surface in UI tooltips.
const (
	reasonCureClaim      = "의료법상 완치 단정 표현은 금지됩니다"
	reasonNoSideEffects  = "부작용이 없다는 단정 표현은 금지됩니다"
	reasonGuarantee      = "치료 효과 보장 표현은 금지됩니다"
	reasonSuperlative    = "최상급 표현은 의료광고 심의에서 반려됩니다"
	reasonAbsoluteEffect = "효과를 단정하는 수치 표현은 심의 대상입니다"
	reasonBeforeAfter    = "치료 전후 비교 단정은 심의 대상입니다"
)

// medicalPhrases are exact prohibited phrases. Every occurrence is a HIGH
// violation.
var medicalPhrases = []PhraseRule{
	{Phrase: "100% 완치", Reason: reasonCureClaim},
	{Phrase: "완치를 보장", Reason: reasonGuarantee},
	{Phrase: "부작용이 전혀 없", Reason: reasonNoSideEffects},
	{Phrase: "무조건 낫습니다", Reason: reasonCureClaim},
	{Phrase: "전액 환불 보장", Reason: reasonGuarantee},
}

// medicalPatterns are curated matchers with their own severity and reason.
var medicalPatterns = []PatternRule{
	{
		Pattern:  regexp.MustCompile(`\d{2,3}%의?\s*(치료\s*효과|성공률|만족도)`),
		Severity: SeverityHigh,
		Reason:   reasonAbsoluteEffect,
	},
	{
		Pattern:  regexp.MustCompile(`부작용(이|은)?\s*없(다|습니다|음)`),
		Severity: SeverityHigh,
		Reason:   reasonNoSideEffects,
	},
	{
		Pattern:  regexp.MustCompile(`(최고|최상|유일)의?\s*(병원|치료|의료진|시술)`),
		Severity: SeverityMedium,
		Reason:   reasonSuperlative,
	},
	{
		Pattern:  regexp.MustCompile(`(반드시|확실히|즉시)\s*(낫|치료|호전)`),
		Severity: SeverityMedium,
		Reason:   reasonGuarantee,
	},
	{
		Pattern:  regexp.MustCompile(`(전|후)\s*사진[^.]{0,20}(극적|놀라운)`),
		Severity: SeverityLow,
		Reason:   reasonBeforeAfter,
	},
}

// medicalSuggestions is the fixed remediation pool attached to failing
// results. Suggestions are generic by design; they are not matched to
// individual violations.
var medicalSuggestions = []string{
	"단정 표현을 '도움이 될 수 있습니다'와 같은 가능성 표현으로 바꿔보세요",
	"수치로 효과를 제시하려면 출처가 있는 통계와 조건을 함께 적으세요",
	"개인차가 있다는 안내 문구를 본문에 추가하세요",
	"치료 보장이나 환불 조건 대신 상담 안내로 마무리하세요",
}

// MedicalRuleSet returns the shipped Korean medical-vertical compliance pack.
// Packs are constructed fresh per call so a caller can never mutate the
// filter's active set in place.
func MedicalRuleSet() *RuleSet {
	rules := make([]Rule, 0, len(medicalPhrases)+len(medicalPatterns))
	for _, phrase := range medicalPhrases {
		rules = append(rules, phrase)
	}
	for _, pattern := range medicalPatterns {
		rules = append(rules, pattern)
	}
	return &RuleSet{
		Name:        "medical-kr",
		Version:     "2026.06",
		Rules:       rules,
		Suggestions: append([]string(nil), medicalSuggestions...),
	}
}
