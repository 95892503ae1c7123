package domain

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/plumehq/plume/internal/governance"
	"github.com/plumehq/plume/internal/governance/compliance"
	governancedomain "github.com/plumehq/plume/internal/governance/domain"
	"github.com/plumehq/plume/internal/governance/storage/memory"
)

func testOrchestrator(store *memory.Store) *governance.Orchestrator {
	return governance.New(store, compliance.NewFilter(compliance.MedicalRuleSet()))
}

func createTestSlot(t *testing.T, store *memory.Store) string {
	t.Helper()
	handler := SlotCreateHandler(store)
	_, result, err := handler(context.Background(), nil, SlotCreateInput{
		TenantID: "tenant-1",
		Timezone: "Asia/Seoul",
		Clusters: []ClusterInput{
			{
				Category: "recovery",
				Topics: []TopicInput{
					{Day: 1, Kind: "PILLAR", Title: "회복 가이드"},
					{Day: 2, Kind: "SATELLITE", Title: "재활 스트레칭"},
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("slot create: %v", err)
	}
	return result.SlotID
}

func TestSlotCreateHandler(t *testing.T) {
	store := memory.NewStore()
	handler := SlotCreateHandler(store)

	_, result, err := handler(context.Background(), nil, SlotCreateInput{
		TenantID: "tenant-1",
		Clusters: []ClusterInput{
			{
				Category: "recovery",
				Topics: []TopicInput{
					{Day: 1, Kind: "PILLAR", Title: "회복 가이드"},
					{Day: 2, Kind: "SATELLITE", Title: "재활 스트레칭"},
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if result.SlotID == "" || result.TenantID != "tenant-1" {
		t.Errorf("result = %+v", result)
	}
	if result.Topics != 2 || result.Step != "STEP_1" {
		t.Errorf("result = %+v", result)
	}

	slot, err := store.GetSlot(context.Background(), result.SlotID)
	if err != nil {
		t.Fatalf("GetSlot: %v", err)
	}
	if slot.Timezone != "" || len(slot.Clusters) != 1 {
		t.Errorf("stored slot = %+v", slot)
	}
}

func TestSlotCreateHandlerRejectsBadInput(t *testing.T) {
	store := memory.NewStore()
	handler := SlotCreateHandler(store)

	tests := []struct {
		name  string
		input SlotCreateInput
	}{
		{
			name:  "missing tenant",
			input: SlotCreateInput{Clusters: []ClusterInput{{Category: "c", Topics: []TopicInput{{Kind: "PILLAR", Title: "t"}}}}},
		},
		{
			name: "unknown topic kind",
			input: SlotCreateInput{
				TenantID: "tenant-1",
				Clusters: []ClusterInput{{Category: "c", Topics: []TopicInput{{Kind: "KEYSTONE", Title: "t"}}}},
			},
		},
		{
			name: "satellite before pillar",
			input: SlotCreateInput{
				TenantID: "tenant-1",
				Clusters: []ClusterInput{{Category: "c", Topics: []TopicInput{{Kind: "SATELLITE", Title: "t"}}}},
			},
		},
		{
			name:  "no clusters",
			input: SlotCreateInput{TenantID: "tenant-1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := handler(context.Background(), nil, tt.input); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestCommitPublishHandlerRoundTrip(t *testing.T) {
	store := memory.NewStore()
	slotID := createTestSlot(t, store)
	handler := CommitPublishHandler(testOrchestrator(store))

	_, result, err := handler(context.Background(), nil, CommitPublishInput{
		SlotID:  slotID,
		Tier:    "BASIC",
		Step:    1,
		Content: "이 치료는 100% 완치 됩니다",
	})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if result.Topic != "회복 가이드" {
		t.Errorf("Topic = %q", result.Topic)
	}
	if !result.Corrected || !strings.Contains(result.Content, compliance.RedactionMarker) {
		t.Errorf("result = %+v, want auto-corrected content", result)
	}
	if len(result.Violations) == 0 {
		t.Error("expected violations on corrected publish")
	}
}

func TestCommitRequestFromInput(t *testing.T) {
	req, err := commitRequestFromInput(CommitPublishInput{SlotID: "s", Tier: "PRO", Step: 2, Content: "c"})
	if err != nil {
		t.Fatalf("commitRequestFromInput: %v", err)
	}
	if req.Capability != governancedomain.CapabilityPartialTitleEdit {
		t.Errorf("Capability = %v, want default partial title edit", req.Capability)
	}
	if req.Policy != governance.PolicyAutoCorrect {
		t.Errorf("Policy = %v, want default auto-correct", req.Policy)
	}
	if req.Tier != governancedomain.TierPro || req.Step != governancedomain.Step2 {
		t.Errorf("req = %+v", req)
	}

	req, err = commitRequestFromInput(CommitPublishInput{SlotID: "s", Tier: "ULTRA", Policy: "reject_on_violation", Capability: "FULL_BODY_EDIT"})
	if err != nil {
		t.Fatalf("commitRequestFromInput: %v", err)
	}
	if req.Policy != governance.PolicyRejectOnViolation {
		t.Errorf("Policy = %v, want reject", req.Policy)
	}
	if req.Capability != governancedomain.CapabilityFullBodyEdit {
		t.Errorf("Capability = %v", req.Capability)
	}

	if _, err := commitRequestFromInput(CommitPublishInput{Tier: "PLATINUM"}); err == nil {
		t.Error("expected error for unknown tier")
	}
	if _, err := commitRequestFromInput(CommitPublishInput{Tier: "PRO", Policy: "IGNORE"}); err == nil {
		t.Error("expected error for unknown policy")
	}
	if _, err := commitRequestFromInput(CommitPublishInput{Tier: "PRO", Capability: "ROOT"}); err == nil {
		t.Error("expected error for unknown capability")
	}
}

func TestRequestEditHandler(t *testing.T) {
	store := memory.NewStore()
	handler := RequestEditHandler(testOrchestrator(store))

	_, result, err := handler(context.Background(), nil, RequestEditInput{
		Capability: "FULL_BODY_EDIT",
		Tier:       "BASIC",
		Step:       3,
	})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if result.Granted {
		t.Error("BASIC should be denied full body edit")
	}
	if result.Reason != "PLAN" {
		t.Errorf("Reason = %q, want PLAN", result.Reason)
	}

	if _, _, err := handler(context.Background(), nil, RequestEditInput{Capability: "ROOT", Tier: "PRO", Step: 1}); err == nil {
		t.Error("expected error for unknown capability")
	}
}

func TestComplianceCheckHandler(t *testing.T) {
	filter := compliance.NewFilter(compliance.MedicalRuleSet())
	handler := ComplianceCheckHandler(filter)

	_, result, err := handler(context.Background(), nil, ComplianceCheckInput{Content: "무난한 본문"})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if !result.Passed || len(result.Violations) != 0 {
		t.Errorf("result = %+v, want pass", result)
	}
	if result.RuleSet == "" || result.Version == "" {
		t.Errorf("result = %+v, want rule set identity", result)
	}

	_, result, err = handler(context.Background(), nil, ComplianceCheckInput{
		Content: "이 치료는 100% 완치 됩니다",
		Correct: true,
	})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if result.Passed {
		t.Error("expected failure for prohibited phrase")
	}
	if len(result.Violations) != 1 || result.Violations[0].Severity != "HIGH" {
		t.Errorf("Violations = %+v", result.Violations)
	}
	if !strings.Contains(result.Corrected, compliance.RedactionMarker) {
		t.Errorf("Corrected = %q, want redaction", result.Corrected)
	}
}

func TestTrustLifecycleHandlers(t *testing.T) {
	store := memory.NewStore()
	orch := testOrchestrator(store)
	slotID := createTestSlot(t, store)
	ctx := context.Background()

	slot, _ := store.GetSlot(ctx, slotID)
	slot.Counters.Published = 3
	if err := store.PutSlot(ctx, slot); err != nil {
		t.Fatalf("PutSlot: %v", err)
	}

	_, syncResult, err := SyncUpgradeHandler(orch)(ctx, nil, SyncUpgradeInput{SlotID: slotID, Tier: "PRO"})
	if err != nil {
		t.Fatalf("sync upgrade: %v", err)
	}
	if !syncResult.Advanced || syncResult.Step != "STEP_2" {
		t.Errorf("sync result = %+v", syncResult)
	}

	if _, _, err := RecordEditSuccessHandler(orch)(ctx, nil, RecordEditSuccessInput{SlotID: slotID}); err != nil {
		t.Fatalf("record edit success: %v", err)
	}

	_, status, err := TrustStatusHandler(orch)(ctx, nil, TrustStatusInput{SlotID: slotID})
	if err != nil {
		t.Fatalf("trust status: %v", err)
	}
	if status.Step != "STEP_2" || status.Published != 3 || status.EditSuccesses != 1 {
		t.Errorf("status = %+v", status)
	}
}

func TestNextTopicAndResetHandlers(t *testing.T) {
	store := memory.NewStore()
	orch := testOrchestrator(store)
	slotID := createTestSlot(t, store)
	ctx := context.Background()

	_, preview, err := NextTopicHandler(orch)(ctx, nil, NextTopicInput{SlotID: slotID})
	if err != nil {
		t.Fatalf("next topic: %v", err)
	}
	if preview.Title != "회복 가이드" || preview.Kind != "PILLAR" {
		t.Errorf("preview = %+v", preview)
	}

	if _, _, err := SlotResetHandler(orch)(ctx, nil, SlotResetInput{SlotID: slotID}); err == nil {
		t.Error("expected error for unacknowledged reset")
	}

	_, reset, err := SlotResetHandler(orch)(ctx, nil, SlotResetInput{SlotID: slotID, AcknowledgedBy: "operator-1"})
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if !reset.Reset {
		t.Errorf("reset result = %+v", reset)
	}
}

func TestSlotListResourceHandler(t *testing.T) {
	store := memory.NewStore()
	slotID := createTestSlot(t, store)
	handler := SlotListResourceHandler(store)

	result, err := handler(context.Background(), nil)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if len(result.Contents) != 1 {
		t.Fatalf("contents = %d, want 1", len(result.Contents))
	}
	if result.Contents[0].URI != "governance://slots" || result.Contents[0].MIMEType != "application/json" {
		t.Errorf("contents = %+v", result.Contents[0])
	}

	var payload SlotListPayload
	if err := json.Unmarshal([]byte(result.Contents[0].Text), &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if len(payload.Slots) != 1 || payload.Slots[0].ID != slotID {
		t.Errorf("payload = %+v", payload)
	}
	if payload.Slots[0].Step != "STEP_1" {
		t.Errorf("payload step = %q", payload.Slots[0].Step)
	}
}

func TestToolErrorsCarryLocalizedMessages(t *testing.T) {
	store := memory.NewStore()
	orch := testOrchestrator(store)
	handler := NextTopicHandler(orch)

	_, _, err := handler(context.Background(), nil, NextTopicInput{SlotID: "missing"})
	if err == nil {
		t.Fatal("expected error for missing slot")
	}
	if !strings.Contains(err.Error(), "The requested record was not found") {
		t.Errorf("error = %q, want the catalog message", err)
	}
	if !strings.Contains(err.Error(), "[NOT_FOUND]") {
		t.Errorf("error = %q, want the error code", err)
	}

	SetLocale("ko-KR")
	t.Cleanup(func() { SetLocale("en-US") })

	_, _, err = handler(context.Background(), nil, NextTopicInput{SlotID: "missing"})
	if err == nil || !strings.Contains(err.Error(), "요청한 레코드를 찾을 수 없습니다") {
		t.Errorf("error = %q, want the Korean catalog message", err)
	}
}
