package luapack

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/plumehq/plume/internal/governance/compliance"
)

func writePack(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pack.lua")
	if err := os.WriteFile(path, []byte(script), 0o644); err != nil {
		t.Fatalf("write pack: %v", err)
	}
	return path
}

func TestLoadRulePack(t *testing.T) {
	path := writePack(t, `
return {
    name = "finance-kr",
    version = "2026.03",
    suggestions = { "수익 보장 대신 예시 수익률로 안내하세요" },
    phrases = {
        { text = "원금 보장", reason = "원금 보장 표현은 금지됩니다" },
    },
    patterns = {
        { pattern = "연\\s*\\d+%", severity = "MEDIUM", reason = "확정 수익률 표현" },
    },
}
`)

	ruleSet, err := LoadRulePack(path)
	if err != nil {
		t.Fatalf("load rule pack: %v", err)
	}
	if ruleSet.Name != "finance-kr" || ruleSet.Version != "2026.03" {
		t.Fatalf("expected pack identity, got %s/%s", ruleSet.Name, ruleSet.Version)
	}
	if len(ruleSet.Rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(ruleSet.Rules))
	}
	if len(ruleSet.Suggestions) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(ruleSet.Suggestions))
	}

	filter := compliance.NewFilter(ruleSet)
	result := filter.Evaluate("저희 상품은 원금 보장 됩니다")
	if result.Passed {
		t.Fatalf("expected phrase violation")
	}
	if result.Violations[0].Severity != compliance.SeverityHigh {
		t.Fatalf("expected phrase rules to be HIGH, got %v", result.Violations[0].Severity)
	}
}

func TestLoadRulePackValidation(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		wantErr string
	}{
		{
			name:    "not a table",
			script:  `return "nope"`,
			wantErr: "must return a table",
		},
		{
			name:    "missing name",
			script:  `return { version = "1", phrases = { { text = "x" } } }`,
			wantErr: "name is required",
		},
		{
			name:    "missing version",
			script:  `return { name = "p", phrases = { { text = "x" } } }`,
			wantErr: "version is required",
		},
		{
			name:    "no rules",
			script:  `return { name = "p", version = "1" }`,
			wantErr: "defines no rules",
		},
		{
			name:    "phrase without text",
			script:  `return { name = "p", version = "1", phrases = { { reason = "r" } } }`,
			wantErr: "missing text",
		},
		{
			name:    "bad severity",
			script:  `return { name = "p", version = "1", patterns = { { pattern = "x", severity = "SEVERE" } } }`,
			wantErr: "unknown severity",
		},
		{
			name:    "bad regexp",
			script:  `return { name = "p", version = "1", patterns = { { pattern = "([", severity = "LOW" } } }`,
			wantErr: "pattern 1",
		},
		{
			name:    "script error",
			script:  `error("boom")`,
			wantErr: "run rule pack",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writePack(t, tc.script)
			_, err := LoadRulePack(path)
			if err == nil {
				t.Fatalf("expected error containing %q", tc.wantErr)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestLoadRulePackMissingFile(t *testing.T) {
	if _, err := LoadRulePack(filepath.Join(t.TempDir(), "absent.lua")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
