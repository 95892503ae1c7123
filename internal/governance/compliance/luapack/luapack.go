// Package luapack loads vertical compliance rule packs from Lua scripts.
//
// A pack script returns a single table:
//
//	return {
//	    name = "finance-kr",
//	    version = "2026.03",
//	    suggestions = { "..." },
//	    phrases = { { text = "원금 보장", reason = "..." } },
//	    patterns = { { pattern = "연\\s*\\d+%", severity = "MEDIUM", reason = "..." } },
//	}
//
// Scripts run in a throwaway Lua state per load; nothing from the script
// survives beyond the returned RuleSet.
package luapack

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Shopify/go-lua"

	"github.com/plumehq/plume/internal/governance/compliance"
)

// LoadRulePack executes the Lua script at path and builds a RuleSet.
func LoadRulePack(path string) (*compliance.RuleSet, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)

	if err := lua.LoadFile(state, path, ""); err != nil {
		return nil, fmt.Errorf("load rule pack: %w", err)
	}
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run rule pack: %w", err)
	}

	if state.TypeOf(-1) != lua.TypeTable {
		return nil, fmt.Errorf("rule pack script must return a table")
	}

	ruleSet := &compliance.RuleSet{}

	ruleSet.Name = stringField(state, "name")
	ruleSet.Version = stringField(state, "version")
	if strings.TrimSpace(ruleSet.Name) == "" {
		return nil, fmt.Errorf("rule pack name is required")
	}
	if strings.TrimSpace(ruleSet.Version) == "" {
		return nil, fmt.Errorf("rule pack version is required")
	}

	suggestions, err := stringListField(state, "suggestions")
	if err != nil {
		return nil, err
	}
	ruleSet.Suggestions = suggestions

	phrases, err := phraseRules(state)
	if err != nil {
		return nil, err
	}
	patterns, err := patternRules(state)
	if err != nil {
		return nil, err
	}
	if len(phrases)+len(patterns) == 0 {
		return nil, fmt.Errorf("rule pack %s defines no rules", ruleSet.Name)
	}
	ruleSet.Rules = append(ruleSet.Rules, phrases...)
	ruleSet.Rules = append(ruleSet.Rules, patterns...)

	return ruleSet, nil
}

// stringField reads a string field from the table at the top of the stack.
func stringField(state *lua.State, name string) string {
	state.Field(-1, name)
	defer state.Pop(1)
	value, ok := state.ToString(-1)
	if !ok {
		return ""
	}
	return value
}

// stringListField reads an array-of-strings field from the table at the top
// of the stack. A missing field yields an empty list.
func stringListField(state *lua.State, name string) ([]string, error) {
	state.Field(-1, name)
	defer state.Pop(1)
	if state.TypeOf(-1) == lua.TypeNil {
		return nil, nil
	}
	if state.TypeOf(-1) != lua.TypeTable {
		return nil, fmt.Errorf("rule pack field %q must be a table", name)
	}

	length := state.RawLength(-1)
	values := make([]string, 0, length)
	for i := 1; i <= length; i++ {
		state.RawGetInt(-1, i)
		value, ok := state.ToString(-1)
		state.Pop(1)
		if !ok {
			return nil, fmt.Errorf("rule pack field %q entry %d must be a string", name, i)
		}
		values = append(values, value)
	}
	return values, nil
}

// phraseRules reads the phrases array from the pack table.
func phraseRules(state *lua.State) ([]compliance.Rule, error) {
	state.Field(-1, "phrases")
	defer state.Pop(1)
	if state.TypeOf(-1) == lua.TypeNil {
		return nil, nil
	}
	if state.TypeOf(-1) != lua.TypeTable {
		return nil, fmt.Errorf("rule pack field \"phrases\" must be a table")
	}

	length := state.RawLength(-1)
	rules := make([]compliance.Rule, 0, length)
	for i := 1; i <= length; i++ {
		state.RawGetInt(-1, i)
		if state.TypeOf(-1) != lua.TypeTable {
			state.Pop(1)
			return nil, fmt.Errorf("phrase %d must be a table", i)
		}
		text := stringField(state, "text")
		reason := stringField(state, "reason")
		state.Pop(1)
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("phrase %d is missing text", i)
		}
		rules = append(rules, compliance.PhraseRule{Phrase: text, Reason: reason})
	}
	return rules, nil
}

// patternRules reads the patterns array from the pack table.
func patternRules(state *lua.State) ([]compliance.Rule, error) {
	state.Field(-1, "patterns")
	defer state.Pop(1)
	if state.TypeOf(-1) == lua.TypeNil {
		return nil, nil
	}
	if state.TypeOf(-1) != lua.TypeTable {
		return nil, fmt.Errorf("rule pack field \"patterns\" must be a table")
	}

	length := state.RawLength(-1)
	rules := make([]compliance.Rule, 0, length)
	for i := 1; i <= length; i++ {
		state.RawGetInt(-1, i)
		if state.TypeOf(-1) != lua.TypeTable {
			state.Pop(1)
			return nil, fmt.Errorf("pattern %d must be a table", i)
		}
		expr := stringField(state, "pattern")
		severityName := stringField(state, "severity")
		reason := stringField(state, "reason")
		state.Pop(1)

		compiled, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("pattern %d: %w", i, err)
		}
		severity, err := parseSeverity(severityName)
		if err != nil {
			return nil, fmt.Errorf("pattern %d: %w", i, err)
		}
		rules = append(rules, compliance.PatternRule{
			Pattern:  compiled,
			Severity: severity,
			Reason:   reason,
		})
	}
	return rules, nil
}

func parseSeverity(value string) (compliance.Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "LOW":
		return compliance.SeverityLow, nil
	case "MEDIUM":
		return compliance.SeverityMedium, nil
	case "HIGH":
		return compliance.SeverityHigh, nil
	default:
		return 0, fmt.Errorf("unknown severity %q", value)
	}
}
