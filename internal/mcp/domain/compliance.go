package domain

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/plumehq/plume/internal/governance/compliance"
	"github.com/plumehq/plume/internal/governance/compliance/luapack"
)

// ViolationEntry represents one compliance violation in tool output.
type ViolationEntry struct {
	MatchedText string `json:"matched_text" jsonschema:"text that triggered the rule"`
	Reason      string `json:"reason" jsonschema:"why the text is non-compliant"`
	Severity    string `json:"severity" jsonschema:"violation severity (LOW, MEDIUM, HIGH)"`
}

// ComplianceCheckInput represents the MCP tool input for compliance checks.
type ComplianceCheckInput struct {
	Content string `json:"content" jsonschema:"content to evaluate"`
	Correct bool   `json:"correct" jsonschema:"also return the auto-corrected content"`
}

// ComplianceCheckResult represents the MCP tool output for compliance checks.
type ComplianceCheckResult struct {
	Passed      bool             `json:"passed" jsonschema:"whether the content is clean"`
	Violations  []ViolationEntry `json:"violations,omitempty" jsonschema:"violations found"`
	Suggestions []string         `json:"suggestions,omitempty" jsonschema:"remediation suggestions"`
	Corrected   string           `json:"corrected,omitempty" jsonschema:"auto-corrected content when requested"`
	RuleSet     string           `json:"rule_set" jsonschema:"active rule pack name"`
	Version     string           `json:"version" jsonschema:"active rule pack version"`
}

// ComplianceCheckTool defines the MCP tool schema for compliance checks.
func ComplianceCheckTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "compliance_check",
		Description: "Evaluates content against the active compliance rule pack without publishing",
	}
}

// ComplianceCheckHandler evaluates content against the active rule pack.
func ComplianceCheckHandler(filter *compliance.Filter) mcp.ToolHandlerFor[ComplianceCheckInput, ComplianceCheckResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input ComplianceCheckInput) (*mcp.CallToolResult, ComplianceCheckResult, error) {
		evaluation := filter.Evaluate(input.Content)

		result := ComplianceCheckResult{
			Passed:      evaluation.Passed,
			Suggestions: evaluation.Suggestions,
			RuleSet:     evaluation.RuleSetName,
			Version:     evaluation.RuleSetVersion,
		}
		for _, violation := range evaluation.Violations {
			result.Violations = append(result.Violations, ViolationEntry{
				MatchedText: violation.MatchedText,
				Reason:      violation.Reason,
				Severity:    violation.Severity.String(),
			})
		}
		if input.Correct && !evaluation.Passed {
			result.Corrected = filter.ApplyAutoCorrection(input.Content, evaluation.Violations)
		}
		return nil, result, nil
	}
}

// RuleSetInfoInput represents the MCP tool input for rule pack inspection.
type RuleSetInfoInput struct{}

// RuleSetInfoResult represents the MCP tool output for rule pack inspection.
type RuleSetInfoResult struct {
	Name    string `json:"name" jsonschema:"active rule pack name"`
	Version string `json:"version" jsonschema:"active rule pack version"`
}

// RuleSetInfoTool defines the MCP tool schema for rule pack inspection.
func RuleSetInfoTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "ruleset_info",
		Description: "Returns the name and version of the active compliance rule pack",
	}
}

// RuleSetInfoHandler reads the active rule pack identity.
func RuleSetInfoHandler(filter *compliance.Filter) mcp.ToolHandlerFor[RuleSetInfoInput, RuleSetInfoResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ RuleSetInfoInput) (*mcp.CallToolResult, RuleSetInfoResult, error) {
		name, version := filter.RuleSetInfo()
		return nil, RuleSetInfoResult{Name: name, Version: version}, nil
	}
}

// RuleSetSwapInput represents the MCP tool input for rule pack swaps.
type RuleSetSwapInput struct {
	Path string `json:"path" jsonschema:"filesystem path to the Lua rule pack"`
}

// RuleSetSwapResult represents the MCP tool output for rule pack swaps.
type RuleSetSwapResult struct {
	Name    string `json:"name" jsonschema:"loaded rule pack name"`
	Version string `json:"version" jsonschema:"loaded rule pack version"`
}

// RuleSetSwapTool defines the MCP tool schema for rule pack swaps.
func RuleSetSwapTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "ruleset_swap",
		Description: "Loads a Lua rule pack from disk and atomically activates it",
	}
}

// RuleSetSwapHandler loads and activates a Lua rule pack. The swap is
// atomic; in-flight evaluations finish against the pack they started with.
func RuleSetSwapHandler(filter *compliance.Filter) mcp.ToolHandlerFor[RuleSetSwapInput, RuleSetSwapResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RuleSetSwapInput) (*mcp.CallToolResult, RuleSetSwapResult, error) {
		ruleSet, err := luapack.LoadRulePack(input.Path)
		if err != nil {
			return nil, RuleSetSwapResult{}, toolError("rule pack swap", err)
		}
		filter.SetRuleSet(ruleSet)
		return nil, RuleSetSwapResult{Name: ruleSet.Name, Version: ruleSet.Version}, nil
	}
}
