package mcp

import (
	"flag"
	"testing"
)

func TestParseConfig_ParsesDefaultsAndFlags(t *testing.T) {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	t.Setenv("PLUME_MCP_RULE_PACK", "packs/finance.lua")

	cfg, err := ParseConfig(fs, []string{"-db-path", "custom.db"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "custom.db" {
		t.Fatalf("db path = %q, want %q", cfg.DBPath, "custom.db")
	}
	if cfg.RulePackPath != "packs/finance.lua" {
		t.Fatalf("rule pack = %q, want %q", cfg.RulePackPath, "packs/finance.lua")
	}
	if cfg.Transport != "stdio" {
		t.Fatalf("transport = %q, want %q", cfg.Transport, "stdio")
	}
}

func TestParseConfig_Defaults(t *testing.T) {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "data/governance.db" {
		t.Fatalf("db path = %q, want %q", cfg.DBPath, "data/governance.db")
	}
	if cfg.RulePackPath != "" {
		t.Fatalf("rule pack = %q, want empty", cfg.RulePackPath)
	}
	if cfg.Locale != "en-US" {
		t.Fatalf("locale = %q, want %q", cfg.Locale, "en-US")
	}
}
