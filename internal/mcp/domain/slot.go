// Package domain defines the MCP tool and resource surface for governance
// operators. Handlers call the orchestrator directly; there is no network
// hop between the MCP server and the governance core.
package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/plumehq/plume/internal/governance"
	governancedomain "github.com/plumehq/plume/internal/governance/domain"
	"github.com/plumehq/plume/internal/governance/plan"
	"github.com/plumehq/plume/internal/governance/storage"
)

const toolTimeout = 5 * time.Second

// TopicInput is one planned topic inside a cluster.
type TopicInput struct {
	Day   int    `json:"day" jsonschema:"day offset within the cluster, starting at 1"`
	Kind  string `json:"kind" jsonschema:"topic kind (PILLAR, SATELLITE)"`
	Title string `json:"title" jsonschema:"topic title"`
}

// ClusterInput is one topic cluster of the publishing plan.
type ClusterInput struct {
	Category string       `json:"category" jsonschema:"cluster category"`
	Topics   []TopicInput `json:"topics" jsonschema:"topics in publish order; first must be the pillar"`
}

// SlotCreateInput represents the MCP tool input for slot creation.
type SlotCreateInput struct {
	TenantID string         `json:"tenant_id" jsonschema:"owning tenant identifier"`
	Timezone string         `json:"timezone" jsonschema:"IANA timezone for the daily gate; empty means UTC"`
	Clusters []ClusterInput `json:"clusters" jsonschema:"topic plan to install"`
}

// SlotCreateResult represents the MCP tool output for slot creation.
type SlotCreateResult struct {
	SlotID   string `json:"slot_id" jsonschema:"slot identifier"`
	TenantID string `json:"tenant_id" jsonschema:"owning tenant identifier"`
	Topics   int    `json:"topics" jsonschema:"number of planned topics"`
	Step     string `json:"step" jsonschema:"initial trust step"`
}

// SlotCreateTool defines the MCP tool schema for creating slots.
func SlotCreateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "slot_create",
		Description: "Creates a content slot with a topic plan for a tenant",
	}
}

// SlotCreateHandler creates a slot and installs its topic plan.
func SlotCreateHandler(store storage.Store) mcp.ToolHandlerFor[SlotCreateInput, SlotCreateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SlotCreateInput) (*mcp.CallToolResult, SlotCreateResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, toolTimeout)
		defer cancel()

		slot, err := governancedomain.NewSlot(governancedomain.NewSlotInput{
			TenantID: input.TenantID,
			Timezone: input.Timezone,
		}, nil, nil)
		if err != nil {
			return nil, SlotCreateResult{}, toolError("slot create", err)
		}

		clusters, err := clustersFromInput(input.Clusters)
		if err != nil {
			return nil, SlotCreateResult{}, toolError("slot create", err)
		}
		if err := slot.PlanTopics(clusters); err != nil {
			return nil, SlotCreateResult{}, toolError("slot create", err)
		}

		if err := store.PutSlot(runCtx, slot); err != nil {
			return nil, SlotCreateResult{}, toolError("slot create", err)
		}

		topics := 0
		for _, cluster := range slot.Clusters {
			topics += len(cluster.Topics)
		}
		return nil, SlotCreateResult{
			SlotID:   slot.ID,
			TenantID: slot.TenantID,
			Topics:   topics,
			Step:     slot.Step.String(),
		}, nil
	}
}

// SlotResetInput represents the MCP tool input for slot resets.
type SlotResetInput struct {
	SlotID         string `json:"slot_id" jsonschema:"slot identifier"`
	AcknowledgedBy string `json:"acknowledged_by" jsonschema:"operator acknowledging the destructive reset"`
}

// SlotResetResult represents the MCP tool output for slot resets.
type SlotResetResult struct {
	SlotID string `json:"slot_id" jsonschema:"slot identifier"`
	Reset  bool   `json:"reset" jsonschema:"whether the plan was rewound"`
}

// SlotResetTool defines the MCP tool schema for rewinding a slot's plan.
func SlotResetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "slot_reset",
		Description: "Rewinds a slot's topic plan to the beginning; requires explicit acknowledgement",
	}
}

// SlotResetHandler rewinds a slot's plan after confirmation.
func SlotResetHandler(orchestrator *governance.Orchestrator) mcp.ToolHandlerFor[SlotResetInput, SlotResetResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SlotResetInput) (*mcp.CallToolResult, SlotResetResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, toolTimeout)
		defer cancel()

		err := orchestrator.ResetSlot(runCtx, input.SlotID, plan.ResetConfirmation{AcknowledgedBy: input.AcknowledgedBy})
		if err != nil {
			return nil, SlotResetResult{}, toolError("slot reset", err)
		}
		return nil, SlotResetResult{SlotID: input.SlotID, Reset: true}, nil
	}
}

// NextTopicInput represents the MCP tool input for previewing the next topic.
type NextTopicInput struct {
	SlotID string `json:"slot_id" jsonschema:"slot identifier"`
}

// NextTopicResult represents the MCP tool output for a topic preview.
type NextTopicResult struct {
	Day   int    `json:"day" jsonschema:"day offset within the cluster"`
	Kind  string `json:"kind" jsonschema:"topic kind"`
	Title string `json:"title" jsonschema:"topic title"`
}

// NextTopicTool defines the MCP tool schema for previewing the next topic.
func NextTopicTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "next_topic",
		Description: "Returns the next unpublished topic in a slot's plan without publishing it",
	}
}

// NextTopicHandler previews the next unpublished topic.
func NextTopicHandler(orchestrator *governance.Orchestrator) mcp.ToolHandlerFor[NextTopicInput, NextTopicResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input NextTopicInput) (*mcp.CallToolResult, NextTopicResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, toolTimeout)
		defer cancel()

		topic, err := orchestrator.NextTopic(runCtx, input.SlotID)
		if err != nil {
			return nil, NextTopicResult{}, toolError("next topic", err)
		}
		return nil, NextTopicResult{
			Day:   topic.Day,
			Kind:  topic.Kind.String(),
			Title: topic.Title,
		}, nil
	}
}

// TrustStatusInput represents the MCP tool input for trust inspection.
type TrustStatusInput struct {
	SlotID string `json:"slot_id" jsonschema:"slot identifier"`
}

// TrustStatusResult represents the MCP tool output for trust inspection.
type TrustStatusResult struct {
	SlotID          string `json:"slot_id" jsonschema:"slot identifier"`
	Step            string `json:"step" jsonschema:"current trust step"`
	Published       int    `json:"published" jsonschema:"verified publishes"`
	EditSuccesses   int    `json:"edit_successes" jsonschema:"accepted manual edits"`
	RiskCorrections int    `json:"risk_corrections" jsonschema:"auto-corrected compliance violations"`
	AccountStatus   string `json:"account_status" jsonschema:"tenant account standing"`
}

// TrustStatusTool defines the MCP tool schema for trust inspection.
func TrustStatusTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "trust_status",
		Description: "Returns a slot's trust step and counters",
	}
}

// TrustStatusHandler reads a slot's trust state.
func TrustStatusHandler(orchestrator *governance.Orchestrator) mcp.ToolHandlerFor[TrustStatusInput, TrustStatusResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input TrustStatusInput) (*mcp.CallToolResult, TrustStatusResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, toolTimeout)
		defer cancel()

		step, counters, err := orchestrator.TrustStatus(runCtx, input.SlotID)
		if err != nil {
			return nil, TrustStatusResult{}, toolError("trust status", err)
		}
		return nil, TrustStatusResult{
			SlotID:          input.SlotID,
			Step:            step.String(),
			Published:       counters.Published,
			EditSuccesses:   counters.EditSuccess,
			RiskCorrections: counters.RiskCorrection,
			AccountStatus:   counters.AccountStatus.String(),
		}, nil
	}
}

// SyncUpgradeInput represents the MCP tool input for plan upgrade syncs.
type SyncUpgradeInput struct {
	SlotID string `json:"slot_id" jsonschema:"slot identifier"`
	Tier   string `json:"tier" jsonschema:"new plan tier (BASIC, PRO, ULTRA)"`
}

// SyncUpgradeResult represents the MCP tool output for plan upgrade syncs.
type SyncUpgradeResult struct {
	SlotID   string `json:"slot_id" jsonschema:"slot identifier"`
	Step     string `json:"step" jsonschema:"trust step after the sync"`
	Advanced bool   `json:"advanced" jsonschema:"whether the sync advanced the step"`
}

// SyncUpgradeTool defines the MCP tool schema for plan upgrade syncs.
func SyncUpgradeTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "sync_upgrade",
		Description: "Re-evaluates a slot's trust step immediately after a plan tier upgrade",
	}
}

// SyncUpgradeHandler re-evaluates trust after a tier change.
func SyncUpgradeHandler(orchestrator *governance.Orchestrator) mcp.ToolHandlerFor[SyncUpgradeInput, SyncUpgradeResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SyncUpgradeInput) (*mcp.CallToolResult, SyncUpgradeResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, toolTimeout)
		defer cancel()

		tier, err := governancedomain.ParseTier(input.Tier)
		if err != nil {
			return nil, SyncUpgradeResult{}, toolError("sync upgrade", err)
		}
		step, advanced, err := orchestrator.SyncUpgrade(runCtx, input.SlotID, tier)
		if err != nil {
			return nil, SyncUpgradeResult{}, toolError("sync upgrade", err)
		}
		return nil, SyncUpgradeResult{
			SlotID:   input.SlotID,
			Step:     step.String(),
			Advanced: advanced,
		}, nil
	}
}

// SlotListEntry represents one slot in the slot listing resource.
type SlotListEntry struct {
	ID             string `json:"id"`
	TenantID       string `json:"tenant_id"`
	Step           string `json:"step"`
	Published      int    `json:"published"`
	LastActionDate string `json:"last_action_date"`
	ActionStatus   string `json:"action_status"`
}

// SlotListPayload represents the MCP resource payload for slot listings.
type SlotListPayload struct {
	Slots []SlotListEntry `json:"slots"`
}

// SlotListResource defines the MCP resource for slot listings.
func SlotListResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "slot_list",
		Title:       "Slots",
		Description: "Readable listing of content slots and their trust state",
		MIMEType:    "application/json",
		URI:         "governance://slots",
	}
}

// SlotListResourceHandler returns a readable slot listing resource.
func SlotListResourceHandler(store storage.Store) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if store == nil {
			return nil, fmt.Errorf("slot store is not configured")
		}

		uri := SlotListResource().URI
		if req != nil && req.Params != nil && req.Params.URI != "" {
			uri = req.Params.URI
		}

		runCtx, cancel := context.WithTimeout(ctx, toolTimeout)
		defer cancel()

		ids, err := store.ListSlotIDs(runCtx)
		if err != nil {
			return nil, toolError("slot list", err)
		}

		payload := SlotListPayload{}
		for _, id := range ids {
			slot, err := store.GetSlot(runCtx, id)
			if err != nil {
				return nil, toolError("slot list", err)
			}
			payload.Slots = append(payload.Slots, SlotListEntry{
				ID:             slot.ID,
				TenantID:       slot.TenantID,
				Step:           slot.Step.String(),
				Published:      slot.Counters.Published,
				LastActionDate: slot.LastActionDate,
				ActionStatus:   slot.ActionStatus.String(),
			})
		}

		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal slot list: %w", err)
		}

		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      uri,
					MIMEType: "application/json",
					Text:     string(data),
				},
			},
		}, nil
	}
}

func clustersFromInput(inputs []ClusterInput) ([]governancedomain.TopicCluster, error) {
	clusters := make([]governancedomain.TopicCluster, 0, len(inputs))
	for _, cluster := range inputs {
		topics := make([]governancedomain.Topic, 0, len(cluster.Topics))
		for _, topic := range cluster.Topics {
			kind, err := governancedomain.ParseTopicKind(topic.Kind)
			if err != nil {
				return nil, err
			}
			topics = append(topics, governancedomain.Topic{
				Day:   topic.Day,
				Kind:  kind,
				Title: topic.Title,
			})
		}
		clusters = append(clusters, governancedomain.TopicCluster{
			Category: cluster.Category,
			Topics:   topics,
		})
	}
	return clusters, nil
}
