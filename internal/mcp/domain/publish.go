package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/plumehq/plume/internal/governance"
	governancedomain "github.com/plumehq/plume/internal/governance/domain"
)

// CommitPublishInput represents the MCP tool input for publishing content.
type CommitPublishInput struct {
	SlotID     string `json:"slot_id" jsonschema:"slot identifier"`
	Tier       string `json:"tier" jsonschema:"caller's plan tier (BASIC, PRO, ULTRA)"`
	Step       int    `json:"step" jsonschema:"caller's trust step (1-3)"`
	Capability string `json:"capability,omitempty" jsonschema:"capability exercised; defaults to PARTIAL_TITLE_EDIT"`
	Content    string `json:"content" jsonschema:"content body to publish"`
	Policy     string `json:"policy,omitempty" jsonschema:"violation policy (AUTO_CORRECT, REJECT_ON_VIOLATION); defaults to AUTO_CORRECT"`
	Bypass     bool   `json:"bypass,omitempty" jsonschema:"lift the daily gate; operator use only"`
}

// CommitPublishResult represents the MCP tool output for publishing content.
type CommitPublishResult struct {
	Topic        string           `json:"topic" jsonschema:"published topic title"`
	Content      string           `json:"content" jsonschema:"content as stored, after any correction"`
	Corrected    bool             `json:"corrected" jsonschema:"whether auto-correction rewrote the content"`
	Violations   []ViolationEntry `json:"violations,omitempty" jsonschema:"violations found before publish"`
	Suggestions  []string         `json:"suggestions,omitempty" jsonschema:"remediation suggestions"`
	Step         string           `json:"step" jsonschema:"slot trust step after the publish"`
	StepAdvanced bool             `json:"step_advanced" jsonschema:"whether the publish advanced the trust step"`
}

// CommitPublishTool defines the MCP tool schema for publishing content.
func CommitPublishTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "commit_publish",
		Description: "Runs the full publish pipeline for a slot: permission, daily gate, compliance, plan advance, trust",
	}
}

// CommitPublishHandler executes a publish attempt.
func CommitPublishHandler(orchestrator *governance.Orchestrator) mcp.ToolHandlerFor[CommitPublishInput, CommitPublishResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CommitPublishInput) (*mcp.CallToolResult, CommitPublishResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, toolTimeout)
		defer cancel()

		req, err := commitRequestFromInput(input)
		if err != nil {
			return nil, CommitPublishResult{}, toolError("commit publish", err)
		}

		result, err := orchestrator.CommitPublish(runCtx, req)
		if err != nil {
			return nil, CommitPublishResult{}, toolError("commit publish", err)
		}

		out := CommitPublishResult{
			Topic:        result.Topic.Title,
			Content:      result.Content,
			Corrected:    result.Corrected,
			Suggestions:  result.Suggestions,
			Step:         result.Step.String(),
			StepAdvanced: result.StepAdvanced,
		}
		for _, violation := range result.Violations {
			out.Violations = append(out.Violations, ViolationEntry{
				MatchedText: violation.MatchedText,
				Reason:      violation.Reason,
				Severity:    violation.Severity.String(),
			})
		}
		return nil, out, nil
	}
}

// RequestEditInput represents the MCP tool input for capability checks.
type RequestEditInput struct {
	Capability string `json:"capability" jsonschema:"capability to check"`
	Tier       string `json:"tier" jsonschema:"caller's plan tier"`
	Step       int    `json:"step" jsonschema:"caller's trust step (1-3)"`
}

// RequestEditResult represents the MCP tool output for capability checks.
type RequestEditResult struct {
	Granted bool   `json:"granted" jsonschema:"whether the capability is granted"`
	Reason  string `json:"reason" jsonschema:"deny reason (NONE, PLAN, STEP)"`
}

// RequestEditTool defines the MCP tool schema for capability checks.
func RequestEditTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "request_edit",
		Description: "Checks whether a plan tier and trust step grant an editing capability",
	}
}

// RequestEditHandler resolves a capability against the permission matrix.
func RequestEditHandler(orchestrator *governance.Orchestrator) mcp.ToolHandlerFor[RequestEditInput, RequestEditResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RequestEditInput) (*mcp.CallToolResult, RequestEditResult, error) {
		capability, err := governancedomain.ParseCapability(input.Capability)
		if err != nil {
			return nil, RequestEditResult{}, toolError("request edit", err)
		}
		tier, err := governancedomain.ParseTier(input.Tier)
		if err != nil {
			return nil, RequestEditResult{}, toolError("request edit", err)
		}

		decision, err := orchestrator.RequestEdit(ctx, capability, tier, governancedomain.TrustStep(input.Step))
		if err != nil {
			return nil, RequestEditResult{}, toolError("request edit", err)
		}
		return nil, RequestEditResult{
			Granted: decision.Granted,
			Reason:  decision.Reason.String(),
		}, nil
	}
}

// RecordEditSuccessInput represents the MCP tool input for edit success marks.
type RecordEditSuccessInput struct {
	SlotID string `json:"slot_id" jsonschema:"slot identifier"`
}

// RecordEditSuccessResult represents the MCP tool output for edit success marks.
type RecordEditSuccessResult struct {
	SlotID string `json:"slot_id" jsonschema:"slot identifier"`
}

// RecordEditSuccessTool defines the MCP tool schema for edit success marks.
func RecordEditSuccessTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "record_edit_success",
		Description: "Records that a tenant's manual edit was accepted, feeding trust progression",
	}
}

// RecordEditSuccessHandler increments a slot's edit success counter.
func RecordEditSuccessHandler(orchestrator *governance.Orchestrator) mcp.ToolHandlerFor[RecordEditSuccessInput, RecordEditSuccessResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RecordEditSuccessInput) (*mcp.CallToolResult, RecordEditSuccessResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, toolTimeout)
		defer cancel()

		if err := orchestrator.RecordEditSuccess(runCtx, input.SlotID); err != nil {
			return nil, RecordEditSuccessResult{}, toolError("record edit success", err)
		}
		return nil, RecordEditSuccessResult{SlotID: input.SlotID}, nil
	}
}

func commitRequestFromInput(input CommitPublishInput) (governance.CommitRequest, error) {
	tier, err := governancedomain.ParseTier(input.Tier)
	if err != nil {
		return governance.CommitRequest{}, err
	}

	capability := governancedomain.CapabilityPartialTitleEdit
	if strings.TrimSpace(input.Capability) != "" {
		capability, err = governancedomain.ParseCapability(input.Capability)
		if err != nil {
			return governance.CommitRequest{}, err
		}
	}

	policy := governance.PolicyAutoCorrect
	switch strings.ToUpper(strings.TrimSpace(input.Policy)) {
	case "", "AUTO_CORRECT":
	case "REJECT_ON_VIOLATION":
		policy = governance.PolicyRejectOnViolation
	default:
		return governance.CommitRequest{}, fmt.Errorf("policy %q is not supported", input.Policy)
	}

	return governance.CommitRequest{
		SlotID:     input.SlotID,
		Tier:       tier,
		Step:       governancedomain.TrustStep(input.Step),
		Capability: capability,
		Content:    input.Content,
		Policy:     policy,
		Bypass:     input.Bypass,
	}, nil
}
