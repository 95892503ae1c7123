// Package compliance scans generated text for regulated phrasing.
package compliance

import (
	"regexp"
	"strings"
)

// Severity grades how serious a violation is.
type Severity int

const (
	// SeverityLow flags phrasing worth a review.
	SeverityLow Severity = iota + 1
	// SeverityMedium flags phrasing likely to be rejected by ad review.
	SeverityMedium
	// SeverityHigh flags phrasing prohibited by regulation.
	SeverityHigh
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	default:
		return "UNKNOWN"
	}
}

// Violation is a single rule match within evaluated text.
type Violation struct {
	MatchedText string
	Reason      string
	Severity    Severity
}

// Rule matches regulated phrasing in text. Implementations must be
// stateless and safe for concurrent use.
type Rule interface {
	// Match returns one violation per occurrence. Duplicates are allowed;
	// the filter performs no de-duplication.
	Match(text string) []Violation
}

// PhraseRule matches an exact prohibited phrase. Every occurrence is a HIGH
// violation.
type PhraseRule struct {
	Phrase string
	Reason string
}

// Match implements Rule.
func (r PhraseRule) Match(text string) []Violation {
	if r.Phrase == "" {
		return nil
	}
	var violations []Violation
	for offset := 0; ; {
		idx := strings.Index(text[offset:], r.Phrase)
		if idx < 0 {
			break
		}
		violations = append(violations, Violation{
			MatchedText: r.Phrase,
			Reason:      r.Reason,
			Severity:    SeverityHigh,
		})
		offset += idx + len(r.Phrase)
	}
	return violations
}

// PatternRule matches a regular expression, carrying its own severity and
// reason. Each match yields one violation with the matched text.
type PatternRule struct {
	Pattern  *regexp.Regexp
	Severity Severity
	Reason   string
}

// Match implements Rule.
func (r PatternRule) Match(text string) []Violation {
	if r.Pattern == nil {
		return nil
	}
	matches := r.Pattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}
	violations := make([]Violation, 0, len(matches))
	for _, matched := range matches {
		violations = append(violations, Violation{
			MatchedText: matched,
			Reason:      r.Reason,
			Severity:    r.Severity,
		})
	}
	return violations
}

// RuleSet is a named, versioned collection of rules plus the generic
// remediation suggestions attached to failing results. Rule sets are
// immutable once installed; swapping packs replaces the whole set.
type RuleSet struct {
	Name        string
	Version     string
	Rules       []Rule
	Suggestions []string
}
